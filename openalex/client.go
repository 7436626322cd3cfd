// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package openalex queries the OpenAlex open scholarly-metadata API for
// works, authors and journals. OpenAlex requires no credentials; setting a
// contact email moves requests into the polite pool for better rate limits.
package openalex

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/pdiddy/library-tools/apierr"
	"github.com/pdiddy/library-tools/config"
	"github.com/pdiddy/library-tools/internal/httpx"
)

const service = "openalex"

// Upstream per-page caps: 100 for searches, 200 when listing a single
// author's works.
const (
	maxLimit            = 100
	maxAuthorWorksLimit = 200
)

// abstractMaxRunes bounds reconstructed abstracts so formatter output stays
// inside an agent's context budget.
const abstractMaxRunes = 500

// Work is a single scholarly work.
type Work struct {
	ID              string
	Title           string
	PublicationYear int
	DOI             string
	CitedByCount    int
	OpenAccess      bool
	Authors         []string
	Journal         string
	Abstract        string
}

// Author is a researcher record. The ID is sufficient to request the
// author's works with AuthorWorks.
type Author struct {
	ID           string
	Name         string
	WorksCount   int
	CitedByCount int
	HIndex       int
	Institution  string
}

// Journal is a publication venue record.
type Journal struct {
	ID         string
	Name       string
	ISSN       string
	Publisher  string
	WorksCount int
	OpenAccess bool
}

// WorksQuery holds work-search parameters. Page is 1-indexed; Limit is
// clamped to 1-100.
type WorksQuery struct {
	Query          string
	Limit          int
	Page           int
	YearFrom       int
	OpenAccessOnly bool
}

// AuthorsQuery holds author-search parameters. Page is 1-indexed; Limit is
// clamped to 1-100.
type AuthorsQuery struct {
	Name          string
	InstitutionID string
	Limit         int
	Page          int
}

// Client queries the OpenAlex API. Safe for concurrent use.
type Client struct {
	cfg  config.OpenAlexConfig
	http *http.Client
	ua   string
}

// NewClient returns an OpenAlex client. OpenAlex has no required settings,
// so construction cannot fail on configuration.
func NewClient(cfg config.OpenAlexConfig, httpCfg config.HTTPConfig) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = config.DefaultOpenAlexBaseURL
	}
	return &Client{cfg: cfg, http: httpx.NewClient(httpCfg), ua: httpCfg.UserAgent}
}

// SearchWorks searches scholarly works and returns one page of results.
func (c *Client) SearchWorks(ctx context.Context, q WorksQuery) ([]Work, error) {
	if strings.TrimSpace(q.Query) == "" {
		return nil, apierr.Validation(service, "query must not be empty")
	}

	params := c.pageParams(clampLimit(q.Limit, maxLimit), q.Page)
	params.Set("search", q.Query)

	var filters []string
	if q.YearFrom > 0 {
		filters = append(filters, fmt.Sprintf("from_publication_date:%d-01-01", q.YearFrom))
	}
	if q.OpenAccessOnly {
		filters = append(filters, "is_oa:true")
	}
	if len(filters) > 0 {
		params.Set("filter", strings.Join(filters, ","))
	}

	var resp worksResponse
	if err := httpx.GetJSON(ctx, c.http, service, c.ua, c.cfg.BaseURL+"/works", params, nil, &resp); err != nil {
		return nil, err
	}
	return parseWorks(resp.Results), nil
}

// SearchAuthors searches researchers by display name, optionally filtered
// to a last-known institution.
func (c *Client) SearchAuthors(ctx context.Context, q AuthorsQuery) ([]Author, error) {
	if strings.TrimSpace(q.Name) == "" {
		return nil, apierr.Validation(service, "author name must not be empty")
	}

	params := c.pageParams(clampLimit(q.Limit, maxLimit), q.Page)
	filters := []string{"display_name.search:" + q.Name}
	if q.InstitutionID != "" {
		filters = append(filters, "last_known_institutions.id:"+q.InstitutionID)
	}
	params.Set("filter", strings.Join(filters, ","))

	var resp authorsResponse
	if err := httpx.GetJSON(ctx, c.http, service, c.ua, c.cfg.BaseURL+"/authors", params, nil, &resp); err != nil {
		return nil, err
	}

	authors := make([]Author, 0, len(resp.Results))
	for _, a := range resp.Results {
		authors = append(authors, parseAuthor(a))
	}
	return authors, nil
}

// AuthorWorks lists a single author's works, newest first. Bare IDs like
// "A1234567890" are normalized to the canonical URL form. Limit is clamped
// to 1-200.
func (c *Client) AuthorWorks(ctx context.Context, authorID string, limit, page int) ([]Work, error) {
	if strings.TrimSpace(authorID) == "" {
		return nil, apierr.Validation(service, "author ID must not be empty")
	}
	if !strings.HasPrefix(authorID, "https://") {
		authorID = "https://openalex.org/" + authorID
	}

	params := c.pageParams(clampLimit(limit, maxAuthorWorksLimit), page)
	params.Set("filter", "author.id:"+authorID)
	params.Set("sort", "publication_date:desc")

	var resp worksResponse
	if err := httpx.GetJSON(ctx, c.http, service, c.ua, c.cfg.BaseURL+"/works", params, nil, &resp); err != nil {
		return nil, err
	}
	return parseWorks(resp.Results), nil
}

// SearchJournals searches publication venues by name.
func (c *Client) SearchJournals(ctx context.Context, name string, limit, page int) ([]Journal, error) {
	if strings.TrimSpace(name) == "" {
		return nil, apierr.Validation(service, "journal name must not be empty")
	}

	params := c.pageParams(clampLimit(limit, maxLimit), page)
	params.Set("search", name)

	var resp sourcesResponse
	if err := httpx.GetJSON(ctx, c.http, service, c.ua, c.cfg.BaseURL+"/sources", params, nil, &resp); err != nil {
		return nil, err
	}

	journals := make([]Journal, 0, len(resp.Results))
	for _, s := range resp.Results {
		journals = append(journals, Journal{
			ID:         s.ID,
			Name:       s.DisplayName,
			ISSN:       s.ISSNL,
			Publisher:  s.HostOrganizationName,
			WorksCount: s.WorksCount,
			OpenAccess: s.IsOA,
		})
	}
	return journals, nil
}

// GetWork fetches a single work by its OpenAlex ID or DOI URL. An unknown
// identifier surfaces as a not-found error.
func (c *Client) GetWork(ctx context.Context, workID string) (*Work, error) {
	if strings.TrimSpace(workID) == "" {
		return nil, apierr.Validation(service, "work ID must not be empty")
	}
	workID = strings.TrimPrefix(workID, "https://openalex.org/")

	// DOI-form identifiers keep their slashes: the /works endpoint expects
	// "/works/https://doi.org/10.x/y" literally.
	path := url.PathEscape(workID)
	if strings.HasPrefix(workID, "https://doi.org/") || strings.HasPrefix(workID, "http://doi.org/") {
		path = workID
	}

	params := url.Values{}
	if c.cfg.Email != "" {
		params.Set("mailto", c.cfg.Email)
	}

	var w openAlexWork
	if err := httpx.GetJSON(ctx, c.http, service, c.ua, c.cfg.BaseURL+"/works/"+path, params, nil, &w); err != nil {
		return nil, err
	}
	work := parseWork(w)
	return &work, nil
}

// pageParams builds the shared pagination and polite-pool parameters.
// OpenAlex pages are 1-indexed.
func (c *Client) pageParams(limit, page int) url.Values {
	if page < 1 {
		page = 1
	}
	params := url.Values{
		"per_page": {fmt.Sprintf("%d", limit)},
		"page":     {fmt.Sprintf("%d", page)},
	}
	if c.cfg.Email != "" {
		params.Set("mailto", c.cfg.Email)
	}
	return params
}

func clampLimit(limit, max int) int {
	if limit < 1 {
		return 1
	}
	if limit > max {
		return max
	}
	return limit
}

func parseWorks(raw []openAlexWork) []Work {
	works := make([]Work, 0, len(raw))
	for _, w := range raw {
		works = append(works, parseWork(w))
	}
	return works
}

func parseWork(w openAlexWork) Work {
	work := Work{
		ID:              w.ID,
		Title:           w.Title,
		PublicationYear: w.PublicationYear,
		DOI:             w.DOI,
		CitedByCount:    w.CitedByCount,
		OpenAccess:      w.OpenAccess.IsOA,
		Journal:         w.PrimaryLocation.Source.DisplayName,
	}
	if work.Title == "" {
		work.Title = "Untitled"
	}

	for _, authorship := range w.Authorships {
		if len(work.Authors) == 5 {
			break
		}
		if authorship.Author.DisplayName != "" {
			work.Authors = append(work.Authors, authorship.Author.DisplayName)
		}
	}

	abstract := reconstructAbstract(w.AbstractInvertedIndex)
	if runes := []rune(abstract); len(runes) > abstractMaxRunes {
		abstract = string(runes[:abstractMaxRunes])
	}
	work.Abstract = abstract
	return work
}

func parseAuthor(a openAlexAuthor) Author {
	author := Author{
		ID:           a.ID,
		Name:         a.DisplayName,
		WorksCount:   a.WorksCount,
		CitedByCount: a.CitedByCount,
		HIndex:       a.SummaryStats.HIndex,
	}
	if len(a.Affiliations) > 0 {
		author.Institution = a.Affiliations[0].Institution.DisplayName
	}
	return author
}

// reconstructAbstract converts OpenAlex's abstract_inverted_index back to
// plain text. The inverted index maps each word to the positions where it
// appears.
func reconstructAbstract(invertedIndex map[string][]int) string {
	if len(invertedIndex) == 0 {
		return ""
	}

	type posWord struct {
		pos  int
		word string
	}
	var pairs []posWord
	for word, positions := range invertedIndex {
		for _, pos := range positions {
			pairs = append(pairs, posWord{pos: pos, word: word})
		}
	}

	sort.Slice(pairs, func(i, j int) bool {
		return pairs[i].pos < pairs[j].pos
	})

	words := make([]string, len(pairs))
	for i, p := range pairs {
		words[i] = p.word
	}
	return strings.Join(words, " ")
}

// OpenAlex API JSON structures.
type worksResponse struct {
	Meta    openAlexMeta   `json:"meta"`
	Results []openAlexWork `json:"results"`
}

type authorsResponse struct {
	Meta    openAlexMeta     `json:"meta"`
	Results []openAlexAuthor `json:"results"`
}

type sourcesResponse struct {
	Meta    openAlexMeta     `json:"meta"`
	Results []openAlexSource `json:"results"`
}

type openAlexMeta struct {
	Count   int `json:"count"`
	PerPage int `json:"per_page"`
	Page    int `json:"page"`
}

type openAlexWork struct {
	ID                    string               `json:"id"`
	Title                 string               `json:"title"`
	DOI                   string               `json:"doi"`
	PublicationYear       int                  `json:"publication_year"`
	CitedByCount          int                  `json:"cited_by_count"`
	Authorships           []openAlexAuthorship `json:"authorships"`
	AbstractInvertedIndex map[string][]int     `json:"abstract_inverted_index"`
	OpenAccess            struct {
		IsOA bool `json:"is_oa"`
	} `json:"open_access"`
	PrimaryLocation struct {
		Source struct {
			DisplayName string `json:"display_name"`
		} `json:"source"`
	} `json:"primary_location"`
}

type openAlexAuthorship struct {
	Author struct {
		ID          string `json:"id"`
		DisplayName string `json:"display_name"`
	} `json:"author"`
}

type openAlexAuthor struct {
	ID           string `json:"id"`
	DisplayName  string `json:"display_name"`
	WorksCount   int    `json:"works_count"`
	CitedByCount int    `json:"cited_by_count"`
	SummaryStats struct {
		HIndex int `json:"h_index"`
	} `json:"summary_stats"`
	Affiliations []struct {
		Institution struct {
			DisplayName string `json:"display_name"`
		} `json:"institution"`
	} `json:"affiliations"`
}

type openAlexSource struct {
	ID                   string `json:"id"`
	DisplayName          string `json:"display_name"`
	ISSNL                string `json:"issn_l"`
	HostOrganizationName string `json:"host_organization_name"`
	WorksCount           int    `json:"works_count"`
	IsOA                 bool   `json:"is_oa"`
}
