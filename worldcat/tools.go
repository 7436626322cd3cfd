// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package worldcat

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/pdiddy/library-tools/apierr"
	"github.com/pdiddy/library-tools/config"
)

// DefaultLimit is the tool-level default page size for book searches.
const DefaultLimit = 25

// Tool renders union-catalog queries as text for an LLM caller. All methods
// return text: failures, including missing credentials, are rendered
// through apierr.LLMMessage.
//
// The client is constructed lazily and kept so the OAuth token cache
// survives across calls.
type Tool struct {
	cfg     config.WorldCatConfig
	httpCfg config.HTTPConfig

	mu     sync.Mutex
	client *Client
}

// NewTool returns a union-catalog tool. Configuration is validated at call
// time so a misconfigured service still yields a readable message.
func NewTool(cfg config.WorldCatConfig, httpCfg config.HTTPConfig) *Tool {
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

// LookupBook identifies one book and formats its record, including all ISBN
// variants and the OCLC number for follow-up queries.
func (t *Tool) LookupBook(ctx context.Context, req LookupRequest) string {
	client, err := t.getClient()
	if err != nil {
		return apierr.LLMMessage(err)
	}
	book, err := client.LookupBook(ctx, req)
	if err != nil {
		return apierr.LLMMessage(err)
	}
	if book == nil {
		return fmt.Sprintf("No book found in WorldCat for %s. Try different search terms or verify the information.", lookupQueryLabel(req))
	}
	return "Book found in WorldCat:\n\n" + formatBook(book)
}

// SearchBooks searches the union catalog and formats the results.
func (t *Tool) SearchBooks(ctx context.Context, req SearchRequest) string {
	if req.Limit == 0 {
		req.Limit = DefaultLimit
	}
	client, err := t.getClient()
	if err != nil {
		return apierr.LLMMessage(err)
	}
	books, err := client.SearchBooks(ctx, req)
	if err != nil {
		return apierr.LLMMessage(err)
	}
	return formatBooks(books, req.Query)
}

// Classification formats LC and Dewey call numbers for an OCLC number.
func (t *Tool) Classification(ctx context.Context, oclcNumber string) string {
	client, err := t.getClient()
	if err != nil {
		return apierr.LLMMessage(err)
	}
	cl, err := client.Classification(ctx, oclcNumber)
	if err != nil {
		return apierr.LLMMessage(err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Classification for OCLC %s:\n\n", cl.OCLCNumber)

	if cl.LC != "" {
		fmt.Fprintf(&b, "LC Classification: %s\n", cl.LC)
		if len(cl.LCAll) > 1 {
			fmt.Fprintf(&b, "  Other LC: %s\n", strings.Join(cl.LCAll[1:], ", "))
		}
	} else {
		b.WriteString("LC Classification: None found\n")
	}

	if cl.Dewey != "" {
		fmt.Fprintf(&b, "Dewey Decimal: %s\n", cl.Dewey)
		if len(cl.DeweyAll) > 1 {
			fmt.Fprintf(&b, "  Other Dewey: %s\n", strings.Join(cl.DeweyAll[1:], ", "))
		}
	} else {
		b.WriteString("Dewey Decimal: None found\n")
	}
	return b.String()
}

// FullBib formats the complete bibliographic record for an OCLC number.
func (t *Tool) FullBib(ctx context.Context, oclcNumber string) string {
	client, err := t.getClient()
	if err != nil {
		return apierr.LLMMessage(err)
	}
	bib, err := client.FullBib(ctx, oclcNumber)
	if err != nil {
		return apierr.LLMMessage(err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Complete Record for OCLC %s:\n\n", bib.OCLCNumber)

	if bib.Title != "" {
		fmt.Fprintf(&b, "Title: %s\n", bib.Title)
	}
	if bib.Creator != "" {
		fmt.Fprintf(&b, "Author: %s\n", bib.Creator)
	}
	if bib.Publisher != "" {
		pub := bib.Publisher
		if bib.PublicationPlace != "" {
			pub = bib.PublicationPlace + ": " + pub
		}
		if bib.PublicationDate != "" {
			pub += ", " + bib.PublicationDate
		}
		fmt.Fprintf(&b, "Publication: %s\n", pub)
	}
	if bib.Edition != "" {
		fmt.Fprintf(&b, "Edition: %s\n", bib.Edition)
	}
	if bib.Series != "" {
		fmt.Fprintf(&b, "Series: %s\n", bib.Series)
	}
	if bib.Language != "" {
		fmt.Fprintf(&b, "Language: %s\n", bib.Language)
	}
	if len(bib.ISBNs) > 0 {
		fmt.Fprintf(&b, "ISBNs: %s\n", strings.Join(bib.ISBNs, ", "))
	}

	if bib.LC != "" || bib.Dewey != "" {
		b.WriteString("\nClassification:\n")
		if bib.LC != "" {
			fmt.Fprintf(&b, "  LC: %s\n", bib.LC)
		}
		if bib.Dewey != "" {
			fmt.Fprintf(&b, "  Dewey: %s\n", bib.Dewey)
		}
	}

	if len(bib.Subjects) > 0 {
		b.WriteString("\nSubjects:\n")
		for _, subj := range bib.Subjects {
			vocab := subj.Vocabulary
			if vocab == "" {
				vocab = "Unknown"
			}
			fmt.Fprintf(&b, "  - %s (%s)\n", subj.Name, vocab)
		}
	}

	if len(bib.Genres) > 0 {
		fmt.Fprintf(&b, "\nGenres: %s\n", strings.Join(bib.Genres, ", "))
	}

	if bib.GeneralFormat != "" || bib.SpecificFormat != "" {
		b.WriteString("\n")
		if bib.GeneralFormat != "" {
			fmt.Fprintf(&b, "Format: %s\n", bib.GeneralFormat)
		}
		if bib.SpecificFormat != "" {
			fmt.Fprintf(&b, "  Specific: %s\n", bib.SpecificFormat)
		}
	}
	if bib.PhysicalDescription != "" {
		fmt.Fprintf(&b, "Physical Description: %s\n", bib.PhysicalDescription)
	}
	return b.String()
}

// formatBook renders a single record, identifier first.
func formatBook(book *Book) string {
	var b strings.Builder
	fmt.Fprintf(&b, "OCLC Number: %s\n", book.OCLCNumber)
	fmt.Fprintf(&b, "Title: %s\n", book.Title)
	if book.Creator != "" {
		fmt.Fprintf(&b, "Author: %s\n", book.Creator)
	}
	if book.Date != "" {
		fmt.Fprintf(&b, "Date: %s\n", book.Date)
	}
	if book.Publisher != "" {
		fmt.Fprintf(&b, "Publisher: %s\n", book.Publisher)
	}
	if len(book.ISBNs) > 0 {
		fmt.Fprintf(&b, "ISBNs: %s\n", strings.Join(book.ISBNs, ", "))
	} else {
		b.WriteString("ISBNs: None found\n")
	}
	if book.Language != "" {
		fmt.Fprintf(&b, "Language: %s\n", book.Language)
	}
	if book.Format != "" {
		fmt.Fprintf(&b, "Format: %s\n", book.Format)
	}
	if book.HoldingsFetched {
		fmt.Fprintf(&b, "Total Holdings: %d\n", book.TotalHoldings)
		if len(book.HoldingInstitutions) > 0 {
			fmt.Fprintf(&b, "Available at: %s\n", strings.Join(book.HoldingInstitutions, ", "))
		}
	}
	return strings.TrimRight(b.String(), "\n") + "\n"
}

func formatBooks(books []Book, query string) string {
	if len(books) == 0 {
		return fmt.Sprintf("0 results found for '%s'. Try broader search terms or check spelling.", query)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d books for '%s':\n\n", len(books), query)

	for i, book := range books {
		fmt.Fprintf(&b, "%d. OCLC %s\n", i+1, book.OCLCNumber)
		fmt.Fprintf(&b, "   Title: %s\n", book.Title)
		if book.Creator != "" {
			fmt.Fprintf(&b, "   Author: %s\n", book.Creator)
		}
		if book.Date != "" {
			fmt.Fprintf(&b, "   Date: %s\n", book.Date)
		}
		if len(book.ISBNs) > 0 {
			fmt.Fprintf(&b, "   ISBNs: %s\n", strings.Join(book.ISBNs, ", "))
		}

		var meta []string
		if book.Language != "" {
			meta = append(meta, "Language: "+book.Language)
		}
		if book.Format != "" {
			meta = append(meta, "Format: "+book.Format)
		}
		if book.HoldingsFetched {
			meta = append(meta, fmt.Sprintf("Total Holdings: %d", book.TotalHoldings))
		}
		if len(meta) > 0 {
			fmt.Fprintf(&b, "   %s\n", strings.Join(meta, " | "))
		}
		if book.HoldingsFetched && len(book.HoldingInstitutions) > 0 {
			fmt.Fprintf(&b, "   Available at: %s\n", strings.Join(book.HoldingInstitutions, ", "))
		}
		b.WriteString("\n")
	}

	return strings.TrimRight(b.String(), "\n") + "\n"
}

func lookupQueryLabel(req LookupRequest) string {
	var parts []string
	if req.ISBN != "" {
		parts = append(parts, "ISBN: "+req.ISBN)
	}
	if req.DOI != "" {
		parts = append(parts, "DOI: "+req.DOI)
	}
	if req.Title != "" {
		parts = append(parts, "Title: "+req.Title)
	}
	if req.Author != "" {
		parts = append(parts, "Author: "+req.Author)
	}
	return strings.Join(parts, ", ")
}
