// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package repository queries a bePress Digital Commons institutional
// repository through its content-out API: theses, dissertations, and
// faculty publications with landing-page and full-text URLs.
package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/pdiddy/library-tools/apierr"
	"github.com/pdiddy/library-tools/config"
	"github.com/pdiddy/library-tools/internal/httpx"
)

const service = "repository"

// maxLimit is the content-out API page cap.
const maxLimit = 1000

// searchFields is the field list requested for search results. Details
// requests select all fields instead.
const searchFields = "title,author,publication_year,publication_date,document_type,url,fulltext_url,parent_link,abstract,keywords,subject,publication_title,advisor,committee_member"

// Work is a single repository item.
type Work struct {
	Title            string
	Authors          []string
	PublicationYear  string
	DocumentType     string
	URL              string
	FullTextURL      string
	Collection       string
	CollectionName   string
	Abstract         string
	Keywords         []string
	PublicationTitle string
	Advisor          string
}

// SearchResult holds one page of repository results. Total is the upstream
// hit count, which can exceed len(Works).
type SearchResult struct {
	Works []Work
	Total int
	Query string
}

// SearchRequest holds repository search parameters. Start is a 0-indexed
// result offset; Limit is clamped to 1-1000. An empty Query lists items
// newest first.
type SearchRequest struct {
	Query      string
	Collection string
	Year       string
	Limit      int
	Start      int
}

// Client queries a Digital Commons repository. Safe for concurrent use.
type Client struct {
	cfg  config.RepositoryConfig
	http *http.Client
	ua   string
}

// NewClient validates cfg and returns a repository client.
func NewClient(cfg config.RepositoryConfig, httpCfg config.HTTPConfig) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Client{cfg: cfg, http: httpx.NewClient(httpCfg), ua: httpCfg.UserAgent}, nil
}

// Search queries the repository and returns one page of results.
func (c *Client) Search(ctx context.Context, req SearchRequest) (*SearchResult, error) {
	limit := req.Limit
	if limit < 1 {
		limit = 1
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	start := req.Start
	if start < 0 {
		start = 0
	}

	params := url.Values{
		"limit":  {fmt.Sprintf("%d", limit)},
		"start":  {fmt.Sprintf("%d", start)},
		"fields": {searchFields},
	}
	if req.Query != "" {
		params.Set("q", req.Query)
	}
	if req.Collection != "" {
		params.Set("parent_link", c.collectionURL(req.Collection))
	}
	if req.Year != "" && isDigits(req.Year) {
		params.Set("publication_year", req.Year)
	}

	var resp queryResponse
	if err := c.getJSON(ctx, params, &resp); err != nil {
		return nil, err
	}

	result := &SearchResult{Total: resp.QueryMeta.TotalHits, Query: req.Query}
	for _, w := range resp.Results {
		result.Works = append(result.Works, parseWork(w, false))
	}
	return result, nil
}

// Latest returns the most recently added works. The API sorts newest first
// when no query is given.
func (c *Client) Latest(ctx context.Context, collection string, limit, start int) (*SearchResult, error) {
	return c.Search(ctx, SearchRequest{Collection: collection, Limit: limit, Start: start})
}

// Details fetches one work by its landing-page URL, with all fields
// including the abstract. It returns (nil, nil) when the URL matches
// nothing.
func (c *Client) Details(ctx context.Context, itemURL string) (*Work, error) {
	if strings.TrimSpace(itemURL) == "" {
		return nil, apierr.Validation(service, "item URL must not be empty")
	}

	params := url.Values{
		"q":             {fmt.Sprintf("url:%q", itemURL)},
		"select_fields": {"all"},
		"limit":         {"1"},
	}

	var resp queryResponse
	if err := c.getJSON(ctx, params, &resp); err != nil {
		return nil, err
	}
	if len(resp.Results) == 0 {
		return nil, nil
	}
	work := parseWork(resp.Results[0], true)
	return &work, nil
}

func (c *Client) getJSON(ctx context.Context, params url.Values, v any) error {
	header := http.Header{"Authorization": {c.cfg.APIKey}}
	return httpx.GetJSON(ctx, c.http, service, c.ua, c.cfg.BaseURL+"/query", params, header, v)
}

// collectionURL builds the parent_link filter value. The content-out base
// URL ends in the institution's domain, and collections live directly
// under it.
func (c *Client) collectionURL(collection string) string {
	parts := strings.Split(c.cfg.BaseURL, "/")
	domain := parts[len(parts)-1]
	return fmt.Sprintf("http://%s/%s", domain, collection)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// parseWork flattens one result. Upstream is inconsistent about whether
// several fields are strings or arrays, which stringList absorbs.
func parseWork(w workJSON, detailed bool) Work {
	work := Work{
		Title:            w.Title,
		Authors:          w.Author,
		URL:              w.URL,
		FullTextURL:      w.FulltextURL,
		PublicationTitle: w.PublicationTitle,
	}
	if work.Title == "" {
		work.Title = "Untitled"
	}

	year := w.PublicationYear
	if year == "" {
		year = w.PublicationDate
	}
	if len(year) > 4 {
		year = year[:4]
	}
	work.PublicationYear = year

	if len(w.DocumentType) > 0 {
		work.DocumentType = w.DocumentType[0]
	}

	if w.ParentLink != "" {
		parts := strings.Split(w.ParentLink, "/")
		work.Collection = parts[len(parts)-1]
		work.CollectionName = titleCase(work.Collection)
	}

	keywords := []string(w.Keywords)
	if len(keywords) == 0 {
		keywords = w.Subject
	}
	// A single comma-joined string is still one upstream "keyword".
	if len(keywords) == 1 && strings.Contains(keywords[0], ",") {
		var split []string
		for _, k := range strings.Split(keywords[0], ",") {
			if k = strings.TrimSpace(k); k != "" {
				split = append(split, k)
			}
		}
		keywords = split
	}
	work.Keywords = keywords

	advisor := w.Advisor
	if len(advisor) == 0 {
		advisor = w.CommitteeMember
	}
	work.Advisor = strings.Join(advisor, ", ")

	if detailed {
		work.Abstract = stripHTML(w.Abstract)
	}
	return work
}

// titleCase renders a collection code like "gc_etds" as "Gc Etds".
func titleCase(code string) string {
	words := strings.Fields(strings.ReplaceAll(code, "_", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// stringList tolerates upstream fields that are sometimes a bare string
// and sometimes an array of strings.
type stringList []string

func (s *stringList) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var single string
		if err := json.Unmarshal(data, &single); err != nil {
			return err
		}
		*s = stringList{single}
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}
	*s = stringList(list)
	return nil
}

// Content-out API JSON structures.
type queryResponse struct {
	QueryMeta struct {
		TotalHits int `json:"total_hits"`
	} `json:"query_meta"`
	Results []workJSON `json:"results"`
}

type workJSON struct {
	Title            string     `json:"title"`
	Author           stringList `json:"author"`
	PublicationYear  string     `json:"publication_year"`
	PublicationDate  string     `json:"publication_date"`
	DocumentType     stringList `json:"document_type"`
	URL              string     `json:"url"`
	FulltextURL      string     `json:"fulltext_url"`
	ParentLink       string     `json:"parent_link"`
	Abstract         string     `json:"abstract"`
	Keywords         stringList `json:"keywords"`
	Subject          stringList `json:"subject"`
	PublicationTitle string     `json:"publication_title"`
	Advisor          stringList `json:"advisor"`
	CommitteeMember  stringList `json:"committee_member"`
}
