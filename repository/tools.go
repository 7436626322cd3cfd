// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package repository

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/pdiddy/library-tools/apierr"
	"github.com/pdiddy/library-tools/config"
)

// DefaultLimit is the tool-level default page size.
const DefaultLimit = 50

var (
	htmlTagPattern    = regexp.MustCompile(`<[^>]+>`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// stripHTML removes markup from abstracts, which are stored as HTML.
func stripHTML(text string) string {
	text = htmlTagPattern.ReplaceAllString(text, "")
	text = whitespacePattern.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// Tool renders repository queries as text for an LLM caller. All methods
// return text: failures, including missing configuration, are rendered
// through apierr.LLMMessage.
type Tool struct {
	cfg     config.RepositoryConfig
	httpCfg config.HTTPConfig
}

// NewTool returns a repository tool. Configuration is validated at call
// time so a misconfigured service still yields a readable message.
func NewTool(cfg config.RepositoryConfig, httpCfg config.HTTPConfig) *Tool {
	return &Tool{cfg: cfg, httpCfg: httpCfg}
}

// Search queries the repository and formats the results.
func (t *Tool) Search(ctx context.Context, req SearchRequest) string {
	if req.Limit == 0 {
		req.Limit = DefaultLimit
	}
	client, err := NewClient(t.cfg, t.httpCfg)
	if err != nil {
		return apierr.LLMMessage(err)
	}
	result, err := client.Search(ctx, req)
	if err != nil {
		return apierr.LLMMessage(err)
	}
	return formatWorks(result, false)
}

// Latest lists the most recently added works and formats them.
func (t *Tool) Latest(ctx context.Context, collection string, limit, start int) string {
	if limit == 0 {
		limit = DefaultLimit
	}
	client, err := NewClient(t.cfg, t.httpCfg)
	if err != nil {
		return apierr.LLMMessage(err)
	}
	result, err := client.Latest(ctx, collection, limit, start)
	if err != nil {
		return apierr.LLMMessage(err)
	}
	return formatWorks(result, false)
}

// Details fetches one work by URL and formats its full record, including
// abstract, keywords, and advisor.
func (t *Tool) Details(ctx context.Context, itemURL string) string {
	client, err := NewClient(t.cfg, t.httpCfg)
	if err != nil {
		return apierr.LLMMessage(err)
	}
	work, err := client.Details(ctx, itemURL)
	if err != nil {
		return apierr.LLMMessage(err)
	}
	if work == nil {
		return fmt.Sprintf("No work found at URL: %s", itemURL)
	}
	return formatWorks(&SearchResult{Works: []Work{*work}, Total: 1}, true)
}

func formatWorks(result *SearchResult, detailed bool) string {
	label := ""
	if result.Query != "" {
		label = fmt.Sprintf(" for '%s'", result.Query)
	}
	if result.Total == 0 {
		return fmt.Sprintf("0 results found%s. Try broader search terms.", label)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d work(s)%s. Showing %d:\n\n", result.Total, label, len(result.Works))

	for i, work := range result.Works {
		id := work.URL
		if id == "" {
			id = "(no URL)"
		}
		fmt.Fprintf(&b, "%d. %s\n", i+1, id)

		docType := work.DocumentType
		if docType == "" {
			docType = "work"
		}
		fmt.Fprintf(&b, "   %s: %s\n", strings.ToUpper(docType), work.Title)

		if len(work.Authors) > 0 {
			fmt.Fprintf(&b, "   Author(s): %s\n", strings.Join(work.Authors, ", "))
		}
		if work.PublicationYear != "" {
			fmt.Fprintf(&b, "   Year: %s\n", work.PublicationYear)
		}
		if work.Collection != "" {
			fmt.Fprintf(&b, "   Collection: %s (%s)\n", work.CollectionName, work.Collection)
		}
		if work.FullTextURL != "" && work.FullTextURL != work.URL {
			fmt.Fprintf(&b, "   Full Text: %s\n", work.FullTextURL)
		}

		if detailed {
			if work.Abstract != "" {
				fmt.Fprintf(&b, "   Abstract: %s\n", work.Abstract)
			}
			if len(work.Keywords) > 0 {
				fmt.Fprintf(&b, "   Keywords: %s\n", strings.Join(work.Keywords, ", "))
			}
			if work.PublicationTitle != "" {
				fmt.Fprintf(&b, "   Published in: %s\n", work.PublicationTitle)
			}
			if work.Advisor != "" {
				fmt.Fprintf(&b, "   Advisor: %s\n", work.Advisor)
			}
		}
		b.WriteString("\n")
	}

	return strings.TrimRight(b.String(), "\n") + "\n"
}
