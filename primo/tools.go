// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package primo

import (
	"context"
	"fmt"
	"strings"

	"github.com/pdiddy/library-tools/apierr"
	"github.com/pdiddy/library-tools/config"
)

// DefaultLimit is the tool-level default page size.
const DefaultLimit = 10

// Tool renders catalog searches as text for an LLM caller. Every method
// returns text: failures, including missing configuration, are rendered
// through apierr.LLMMessage instead of being returned as errors.
type Tool struct {
	cfg     config.PrimoConfig
	httpCfg config.HTTPConfig
}

// NewTool returns a catalog tool. Configuration is validated at call time
// so a misconfigured service still yields a readable message.
func NewTool(cfg config.PrimoConfig, httpCfg config.HTTPConfig) *Tool {
	return &Tool{cfg: cfg, httpCfg: httpCfg}
}

// Search runs a catalog search and formats the results. A zero Limit
// defaults to DefaultLimit.
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
	return formatSearchResult(result)
}

// formatSearchResult renders a fixed-order stanza per document: permalink
// first, then title, authors, and remaining metadata.
func formatSearchResult(result *SearchResult) string {
	if result.Total == 0 {
		return fmt.Sprintf("0 results found for '%s'. Try broader search terms, check spelling, or search the 'any' field.", result.Query)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d results for '%s' (showing %d):\n\n", result.Total, result.Query, len(result.Documents))

	for i, doc := range result.Documents {
		id := doc.Permalink
		if id == "" {
			id = "(no permalink)"
		}
		fmt.Fprintf(&b, "%d. %s\n", i+1, id)

		title := doc.Title
		if doc.PublicationYear != "" {
			title += fmt.Sprintf(" (%s)", doc.PublicationYear)
		}
		if doc.Format != "" {
			title += fmt.Sprintf(" [%s]", doc.Format)
		}
		fmt.Fprintf(&b, "   Title: %s\n", title)

		if len(doc.Authors) > 0 {
			authors := doc.Authors
			suffix := ""
			if len(authors) > 2 {
				authors = authors[:2]
				suffix = " et al."
			}
			fmt.Fprintf(&b, "   Authors: %s%s\n", strings.Join(authors, ", "), suffix)
		}

		var meta []string
		if doc.Publisher != "" {
			meta = append(meta, "Publisher: "+doc.Publisher)
		}
		if doc.ISBN != "" {
			meta = append(meta, "ISBN: "+doc.ISBN)
		}
		if doc.ISSN != "" {
			meta = append(meta, "ISSN: "+doc.ISSN)
		}
		if len(meta) > 0 {
			fmt.Fprintf(&b, "   %s\n", strings.Join(meta, " | "))
		}

		if doc.Available {
			b.WriteString("   Available: yes\n")
		}
		b.WriteString("\n")
	}

	return strings.TrimRight(b.String(), "\n") + "\n"
}
