// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package openalex

import (
	"context"
	"fmt"
	"strings"

	"github.com/pdiddy/library-tools/apierr"
	"github.com/pdiddy/library-tools/config"
)

// DefaultLimit is the tool-level default page size.
const DefaultLimit = 10

// abstractPreviewRunes bounds the abstract excerpt in formatted output.
const abstractPreviewRunes = 200

// Tool renders scholarly-metadata queries as text for an LLM caller. All
// methods return text: failures are rendered through apierr.LLMMessage.
type Tool struct {
	client *Client
}

// NewTool returns a scholarly-metadata tool.
func NewTool(cfg config.OpenAlexConfig, httpCfg config.HTTPConfig) *Tool {
	return &Tool{client: NewClient(cfg, httpCfg)}
}

// SearchWorks searches publications and formats the results.
func (t *Tool) SearchWorks(ctx context.Context, q WorksQuery) string {
	if q.Limit == 0 {
		q.Limit = DefaultLimit
	}
	works, err := t.client.SearchWorks(ctx, q)
	if err != nil {
		return apierr.LLMMessage(err)
	}
	return formatWorks(works, q.Query)
}

// SearchAuthors searches researchers and formats the results.
func (t *Tool) SearchAuthors(ctx context.Context, q AuthorsQuery) string {
	if q.Limit == 0 {
		q.Limit = DefaultLimit
	}
	authors, err := t.client.SearchAuthors(ctx, q)
	if err != nil {
		return apierr.LLMMessage(err)
	}
	return formatAuthors(authors, q.Name)
}

// AuthorWorks lists a researcher's publications and formats them.
func (t *Tool) AuthorWorks(ctx context.Context, authorID string, limit, page int) string {
	if limit == 0 {
		limit = DefaultLimit
	}
	works, err := t.client.AuthorWorks(ctx, authorID, limit, page)
	if err != nil {
		return apierr.LLMMessage(err)
	}
	return formatWorks(works, "author "+authorID)
}

// SearchJournals searches publication venues and formats the results.
func (t *Tool) SearchJournals(ctx context.Context, name string, limit, page int) string {
	if limit == 0 {
		limit = DefaultLimit
	}
	journals, err := t.client.SearchJournals(ctx, name, limit, page)
	if err != nil {
		return apierr.LLMMessage(err)
	}
	return formatJournals(journals, name)
}

// GetWork fetches one work by identifier and formats it.
func (t *Tool) GetWork(ctx context.Context, workID string) string {
	work, err := t.client.GetWork(ctx, workID)
	if err != nil {
		return apierr.LLMMessage(err)
	}
	return formatWorks([]Work{*work}, workID)
}

func formatWorks(works []Work, query string) string {
	if len(works) == 0 {
		return fmt.Sprintf("0 results found for '%s'. Try broader search terms or check spelling.", query)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d publications for '%s':\n\n", len(works), query)

	for i, work := range works {
		fmt.Fprintf(&b, "%d. %s\n", i+1, work.ID)

		title := work.Title
		if work.PublicationYear > 0 {
			title += fmt.Sprintf(" (%d)", work.PublicationYear)
		}
		if work.Journal != "" {
			title += " - " + work.Journal
		}
		fmt.Fprintf(&b, "   Title: %s\n", title)

		if len(work.Authors) > 0 {
			fmt.Fprintf(&b, "   Authors: %s\n", strings.Join(work.Authors, ", "))
		}

		var meta []string
		if work.CitedByCount > 0 {
			meta = append(meta, fmt.Sprintf("Cited: %d", work.CitedByCount))
		}
		if work.OpenAccess {
			meta = append(meta, "Open Access")
		}
		if work.DOI != "" {
			meta = append(meta, "DOI: "+work.DOI)
		}
		if len(meta) > 0 {
			fmt.Fprintf(&b, "   %s\n", strings.Join(meta, " | "))
		}

		if work.Abstract != "" {
			preview := work.Abstract
			if runes := []rune(preview); len(runes) > abstractPreviewRunes {
				preview = string(runes[:abstractPreviewRunes]) + "..."
			}
			fmt.Fprintf(&b, "   Abstract: %s\n", preview)
		}
		b.WriteString("\n")
	}

	return strings.TrimRight(b.String(), "\n") + "\n"
}

func formatAuthors(authors []Author, query string) string {
	if len(authors) == 0 {
		return fmt.Sprintf("0 results found for '%s'. Try variations of the name.", query)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d researchers for '%s':\n\n", len(authors), query)

	for i, author := range authors {
		fmt.Fprintf(&b, "%d. %s\n", i+1, author.ID)

		name := author.Name
		if author.Institution != "" {
			name += " - " + author.Institution
		}
		fmt.Fprintf(&b, "   Name: %s\n", name)

		var meta []string
		if author.WorksCount > 0 {
			meta = append(meta, fmt.Sprintf("Publications: %d", author.WorksCount))
		}
		if author.CitedByCount > 0 {
			meta = append(meta, fmt.Sprintf("Citations: %d", author.CitedByCount))
		}
		if author.HIndex > 0 {
			meta = append(meta, fmt.Sprintf("h-index: %d", author.HIndex))
		}
		if len(meta) > 0 {
			fmt.Fprintf(&b, "   %s\n", strings.Join(meta, " | "))
		}
		b.WriteString("\n")
	}

	return strings.TrimRight(b.String(), "\n") + "\n"
}

func formatJournals(journals []Journal, query string) string {
	if len(journals) == 0 {
		return fmt.Sprintf("0 results found for '%s'. Try broader search terms.", query)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d journals for '%s':\n\n", len(journals), query)

	for i, journal := range journals {
		fmt.Fprintf(&b, "%d. %s\n", i+1, journal.ID)

		name := journal.Name
		if journal.Publisher != "" {
			name += " - " + journal.Publisher
		}
		fmt.Fprintf(&b, "   Name: %s\n", name)

		var meta []string
		if journal.ISSN != "" {
			meta = append(meta, "ISSN: "+journal.ISSN)
		}
		if journal.WorksCount > 0 {
			meta = append(meta, fmt.Sprintf("Publications: %d", journal.WorksCount))
		}
		if journal.OpenAccess {
			meta = append(meta, "Open Access")
		}
		if len(meta) > 0 {
			fmt.Fprintf(&b, "   %s\n", strings.Join(meta, " | "))
		}
		b.WriteString("\n")
	}

	return strings.TrimRight(b.String(), "\n") + "\n"
}
