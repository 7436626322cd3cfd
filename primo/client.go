// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package primo queries an Ex Libris Primo discovery catalog: a library's
// unified search interface over its physical and electronic holdings.
package primo

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/pdiddy/library-tools/apierr"
	"github.com/pdiddy/library-tools/config"
	"github.com/pdiddy/library-tools/internal/httpx"
)

const service = "primo"

// maxLimit is the documented Primo search API cap.
const maxLimit = 100

var (
	searchFields    = map[string]bool{"any": true, "title": true, "creator": true, "subject": true, "isbn": true, "issn": true}
	searchOperators = map[string]bool{"contains": true, "exact": true}
)

// Document is a single record from Primo search results.
type Document struct {
	Title           string
	Permalink       string
	Authors         []string
	PublicationYear string
	Format          string
	Publisher       string
	ISSN            string
	ISBN            string
	Available       bool
}

// SearchResult holds one page of catalog search results. Total is the
// upstream hit count, which can exceed len(Documents).
type SearchResult struct {
	Total     int
	Documents []Document
	Query     string
}

// SearchRequest holds catalog search parameters. Offset is 0-indexed; Limit
// is clamped to 1-100. Zero-valued Field and Operator default to "any" and
// "contains".
type SearchRequest struct {
	Query        string
	Field        string
	Operator     string
	Limit        int
	Offset       int
	JournalsOnly bool
}

// Client searches an Ex Libris Primo instance. A Client is safe for
// concurrent use: it holds no per-call state.
type Client struct {
	cfg  config.PrimoConfig
	http *http.Client
	ua   string
}

// NewClient validates cfg and returns a catalog client.
func NewClient(cfg config.PrimoConfig, httpCfg config.HTTPConfig) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Client{cfg: cfg, http: httpx.NewClient(httpCfg), ua: httpCfg.UserAgent}, nil
}

// Search queries the catalog and returns one page of results.
func (c *Client) Search(ctx context.Context, req SearchRequest) (*SearchResult, error) {
	if strings.TrimSpace(req.Query) == "" {
		return nil, apierr.Validation(service, "query must not be empty")
	}

	field := req.Field
	if field == "" {
		field = "any"
	}
	if !searchFields[field] {
		return nil, apierr.Validation(service, fmt.Sprintf("unknown search field %q", field))
	}

	operator := req.Operator
	if operator == "" {
		operator = "contains"
	}
	if !searchOperators[operator] {
		return nil, apierr.Validation(service, fmt.Sprintf("unknown operator %q", operator))
	}

	limit := req.Limit
	if limit < 1 {
		limit = 1
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	offset := req.Offset
	if offset < 0 {
		offset = 0
	}

	scope := c.cfg.Scope
	if scope == "" {
		scope = "Everything"
	}

	params := url.Values{
		"q":      {fmt.Sprintf("%s,%s,%s", field, operator, req.Query)},
		"vid":    {c.cfg.VID},
		"scope":  {scope},
		"apikey": {c.cfg.APIKey},
		"limit":  {fmt.Sprintf("%d", limit)},
		"offset": {fmt.Sprintf("%d", offset)},
		"sort":   {"rank"},
	}
	if req.JournalsOnly {
		params.Set("tab", "jsearch_slot")
	}

	var pr primoResponse
	if err := httpx.GetJSON(ctx, c.http, service, c.ua, c.cfg.BaseURL, params, nil, &pr); err != nil {
		return nil, err
	}

	result := &SearchResult{Total: pr.Info.Total, Query: req.Query}
	for _, doc := range pr.Docs {
		result.Documents = append(result.Documents, c.parseDocument(doc))
	}
	return result, nil
}

// parseDocument flattens the pnx display/control/addata sections into a
// Document. Missing fields stay zero; a record is never fatal.
func (c *Client) parseDocument(doc primoDoc) Document {
	d := Document{Title: "Untitled"}

	display := doc.PNX.Display
	if len(display.Title) > 0 {
		d.Title = display.Title[0]
	}

	// Contributor values can carry "$$"-delimited metadata suffixes.
	for _, a := range display.Contributor {
		if len(d.Authors) == 5 {
			break
		}
		if name := strings.TrimSpace(strings.SplitN(a, "$$", 2)[0]); name != "" {
			d.Authors = append(d.Authors, name)
		}
	}

	if len(display.CreationDate) > 0 && len(display.CreationDate[0]) >= 4 {
		d.PublicationYear = display.CreationDate[0][:4]
	}
	if len(display.Type) > 0 {
		d.Format = display.Type[0]
	}
	if len(display.Publisher) > 0 {
		d.Publisher = display.Publisher[0]
	}

	if len(doc.PNX.AddData.ISSN) > 0 {
		d.ISSN = doc.PNX.AddData.ISSN[0]
	} else if len(display.Identifier) > 0 {
		d.ISBN = display.Identifier[0]
	}

	if len(doc.PNX.Control.RecordID) > 0 && doc.Context != "" {
		d.Permalink = fmt.Sprintf("https://%s/discovery/fulldisplay?docid=%s&context=%s&vid=%s",
			c.cfg.PermalinkHost, url.QueryEscape(doc.PNX.Control.RecordID[0]),
			url.QueryEscape(doc.Context), url.QueryEscape(c.cfg.VID))
	}

	d.Available = len(doc.Delivery.Availability) > 0
	return d
}

// Primo API JSON structures.
type primoResponse struct {
	Info struct {
		Total int `json:"total"`
	} `json:"info"`
	Docs []primoDoc `json:"docs"`
}

type primoDoc struct {
	Context string `json:"context"`
	PNX     struct {
		Display struct {
			Title        []string `json:"title"`
			Contributor  []string `json:"contributor"`
			CreationDate []string `json:"creationdate"`
			Type         []string `json:"type"`
			Publisher    []string `json:"publisher"`
			Identifier   []string `json:"identifier"`
		} `json:"display"`
		Control struct {
			RecordID []string `json:"recordid"`
		} `json:"control"`
		AddData struct {
			ISSN []string `json:"issn"`
		} `json:"addata"`
	} `json:"pnx"`
	Delivery struct {
		Availability []string `json:"availability"`
	} `json:"delivery"`
}
