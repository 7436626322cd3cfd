// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package libguides

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/pdiddy/library-tools/apierr"
	"github.com/pdiddy/library-tools/config"
)

// Tool-level default result counts.
const (
	DefaultDatabaseLimit = 20
	DefaultGuideLimit    = 10
)

// Description previews are truncated to keep formatter output compact.
const (
	databasePreviewRunes = 150
	guidePreviewRunes    = 200
	maxGuidePages        = 10
)

var (
	htmlTagPattern    = regexp.MustCompile(`<[^>]+>`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// Tool renders guide-directory queries as text for an LLM caller. All
// methods return text: failures, including missing credentials, are
// rendered through apierr.LLMMessage.
//
// The client is constructed lazily and kept so the OAuth token cache
// survives across calls.
type Tool struct {
	cfg     config.LibGuidesConfig
	httpCfg config.HTTPConfig

	mu     sync.Mutex
	client *Client
}

// NewTool returns a guide-directory tool. Configuration is validated at
// call time so a misconfigured service still yields a readable message.
func NewTool(cfg config.LibGuidesConfig, httpCfg config.HTTPConfig) *Tool {
	return &Tool{cfg: cfg, httpCfg: httpCfg}
}

func (t *Tool) getClient() (*Client, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.client == nil {
		client, err := NewClient(t.cfg, t.httpCfg)
		if err != nil {
			return nil, err
		}
		t.client = client
	}
	return t.client, nil
}

// SearchDatabases searches the A-Z list and formats the results.
func (t *Tool) SearchDatabases(ctx context.Context, q DatabaseQuery) string {
	if q.Limit == 0 {
		q.Limit = DefaultDatabaseLimit
	}
	client, err := t.getClient()
	if err != nil {
		return apierr.LLMMessage(err)
	}
	databases, err := client.SearchDatabases(ctx, q)
	if err != nil {
		return apierr.LLMMessage(err)
	}
	return formatDatabases(databases, q.Search)
}

// SearchGuides searches the guide directory and formats the results.
func (t *Tool) SearchGuides(ctx context.Context, q GuideQuery) string {
	if q.Limit == 0 {
		q.Limit = DefaultGuideLimit
	}
	client, err := t.getClient()
	if err != nil {
		return apierr.LLMMessage(err)
	}
	guides, err := client.SearchGuides(ctx, q)
	if err != nil {
		return apierr.LLMMessage(err)
	}
	return formatGuides(guides, q.Search)
}

func formatDatabases(databases []Database, search string) string {
	label := ""
	if search != "" {
		label = fmt.Sprintf(" for '%s'", search)
	}
	if len(databases) == 0 {
		return fmt.Sprintf("0 results found%s. Try broader search terms.", label)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d database(s)%s:\n\n", len(databases), label)

	for i, db := range databases {
		fmt.Fprintf(&b, "%d. ID %d\n", i+1, db.ID)
		fmt.Fprintf(&b, "   Name: %s\n", db.Name)

		if db.Description != "" {
			fmt.Fprintf(&b, "   %s\n", preview(stripHTML(db.Description), databasePreviewRunes))
		}

		var meta []string
		if db.Vendor != "" {
			meta = append(meta, "Vendor: "+db.Vendor)
		}
		if len(db.Subjects) > 0 {
			meta = append(meta, "Subjects: "+strings.Join(truncateList(db.Subjects, 3), ", "))
		}
		if len(db.Types) > 0 {
			meta = append(meta, "Types: "+strings.Join(truncateList(db.Types, 2), ", "))
		}
		if db.RequiresProxy {
			meta = append(meta, "Requires authentication")
		}
		if len(meta) > 0 {
			fmt.Fprintf(&b, "   %s\n", strings.Join(meta, " | "))
		}

		if len(db.AltNames) > 0 {
			alt := strings.Join(truncateList(db.AltNames, 3), ", ")
			if len(db.AltNames) > 3 {
				alt += ", ..."
			}
			fmt.Fprintf(&b, "   Also known as: %s\n", alt)
		}
		if db.URL != "" {
			fmt.Fprintf(&b, "   URL: %s\n", db.URL)
		}
		b.WriteString("\n")
	}

	return strings.TrimRight(b.String(), "\n") + "\n"
}

func formatGuides(guides []Guide, search string) string {
	label := ""
	if search != "" {
		label = fmt.Sprintf(" for '%s'", search)
	}
	if len(guides) == 0 {
		return fmt.Sprintf("0 results found%s. Try different search terms.", label)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d guide(s)%s:\n\n", len(guides), label)

	for i, guide := range guides {
		fmt.Fprintf(&b, "%d. ID %d\n", i+1, guide.ID)
		fmt.Fprintf(&b, "   Name: %s\n", guide.Name)

		if guide.Description != "" {
			fmt.Fprintf(&b, "   %s\n", preview(stripHTML(guide.Description), guidePreviewRunes))
		}

		var meta []string
		if guide.StatusLabel != "" {
			meta = append(meta, "Status: "+guide.StatusLabel)
		}
		if guide.OwnerName != "" {
			meta = append(meta, "By: "+guide.OwnerName)
		}
		if len(meta) > 0 {
			fmt.Fprintf(&b, "   %s\n", strings.Join(meta, " | "))
		}

		if guide.URL != "" {
			fmt.Fprintf(&b, "   Guide URL: %s\n", guide.URL)
		}

		if len(guide.Pages) > 0 {
			fmt.Fprintf(&b, "   Pages (%d tabs):\n", len(guide.Pages))
			for _, page := range guide.Pages[:min(len(guide.Pages), maxGuidePages)] {
				fmt.Fprintf(&b, "      - %s\n", page.Name)
				if page.URL != "" {
					fmt.Fprintf(&b, "        URL: %s\n", page.URL)
				}
			}
		}
		b.WriteString("\n")
	}

	return strings.TrimRight(b.String(), "\n") + "\n"
}

// stripHTML removes markup and collapses whitespace; A-Z descriptions are
// frequently authored as HTML.
func stripHTML(text string) string {
	text = htmlTagPattern.ReplaceAllString(text, "")
	text = whitespacePattern.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

func preview(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + "..."
}

func truncateList(items []string, n int) []string {
	if len(items) > n {
		return items[:n]
	}
	return items
}
