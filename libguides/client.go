// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package libguides queries a Springshare LibGuides site: the A-Z database
// list and the research-guide directory. The v1.2 API authenticates with
// OAuth2 client credentials and offers no server-side text search for
// databases, so term filtering happens client-side.
package libguides

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/pdiddy/library-tools/apierr"
	"github.com/pdiddy/library-tools/config"
	"github.com/pdiddy/library-tools/internal/httpx"
)

const service = "libguides"

// maxLimit caps both database and guide result counts.
const maxLimit = 100

const tokenExpiryBuffer = 60 * time.Second

// Database is one entry from the A-Z list.
type Database struct {
	ID            int
	Name          string
	Description   string
	URL           string
	AltNames      []string
	Subjects      []string
	Types         []string
	Vendor        string
	RequiresProxy bool
}

// Page is a tab within a guide.
type Page struct {
	ID   int
	Name string
	URL  string
}

// Guide is a research guide with its pages.
type Guide struct {
	ID          int
	Name        string
	Description string
	URL         string
	Pages       []Page
	OwnerName   string
	StatusLabel string
}

// DatabaseQuery holds A-Z list search parameters. Search filters
// client-side over name, description, and alternate names; Limit is clamped
// to 1-100 and applied after filtering.
type DatabaseQuery struct {
	Search    string
	SubjectID string
	TypeID    string
	Limit     int
}

// GuideQuery holds guide search parameters. A non-zero GuideID fetches that
// guide directly and ignores Search.
type GuideQuery struct {
	Search      string
	GuideID     int
	Limit       int
	ExpandPages bool
}

// Client queries a LibGuides site. Safe for concurrent use; the token cache
// is mutex-guarded.
type Client struct {
	cfg  config.LibGuidesConfig
	http *http.Client
	ua   string

	mu           sync.Mutex
	token        string
	tokenExpires time.Time
}

// NewClient validates cfg and returns a guide-directory client.
func NewClient(cfg config.LibGuidesConfig, httpCfg config.HTTPConfig) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = config.DefaultLibGuidesBaseURL
	}
	return &Client{cfg: cfg, http: httpx.NewClient(httpCfg), ua: httpCfg.UserAgent}, nil
}

// accessToken returns a valid token, fetching a new one only when the
// cached token is absent or inside the expiry buffer.
func (c *Client) accessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && time.Now().Before(c.tokenExpires) {
		return c.token, nil
	}

	// LibGuides takes the credentials in the form body, not basic auth.
	form := url.Values{
		"client_id":     {c.cfg.ClientID},
		"client_secret": {c.cfg.ClientSecret},
		"grant_type":    {"client_credentials"},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/oauth/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", apierr.Wrap(apierr.KindValidation, service, "creating token request", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.ua)

	resp, err := httpx.Do(c.http, service, req)
	if err != nil {
		return "", err
	}
	var tr tokenResponse
	if err := httpx.DecodeJSON(resp, service, &tr); err != nil {
		return "", err
	}
	if tr.AccessToken == "" {
		return "", apierr.New(apierr.KindAuthentication, service, "token response carried no access token")
	}

	expiresIn := tr.ExpiresIn
	if expiresIn == 0 {
		expiresIn = 3600
	}
	c.token = tr.AccessToken
	c.tokenExpires = time.Now().Add(time.Duration(expiresIn)*time.Second - tokenExpiryBuffer)
	return c.token, nil
}

func (c *Client) getJSON(ctx context.Context, rawURL string, params url.Values, v any) error {
	tok, err := c.accessToken(ctx)
	if err != nil {
		return err
	}
	header := http.Header{"Authorization": {"Bearer " + tok}}
	return httpx.GetJSON(ctx, c.http, service, c.ua, rawURL, params, header, v)
}

// SearchDatabases lists the A-Z databases, optionally narrowed by subject
// or type upstream and by a search term client-side.
func (c *Client) SearchDatabases(ctx context.Context, q DatabaseQuery) ([]Database, error) {
	params := url.Values{
		"site_id": {c.cfg.SiteID},
		"expand":  {"subjects,types,vendors"},
	}
	if q.SubjectID != "" {
		params.Set("subject_id", q.SubjectID)
	}
	if q.TypeID != "" {
		params.Set("type_id", q.TypeID)
	}

	var raw []databaseJSON
	if err := c.getJSON(ctx, c.cfg.BaseURL+"/az", params, &raw); err != nil {
		return nil, err
	}

	databases := make([]Database, 0, len(raw))
	for _, d := range raw {
		databases = append(databases, parseDatabase(d))
	}

	if term := strings.ToLower(strings.TrimSpace(q.Search)); term != "" {
		filtered := databases[:0]
		for _, db := range databases {
			if matchesDatabase(db, term) {
				filtered = append(filtered, db)
			}
		}
		databases = filtered
	}

	limit := clampLimit(q.Limit)
	if len(databases) > limit {
		databases = databases[:limit]
	}
	return databases, nil
}

// SearchGuides searches the guide directory, or fetches a single guide when
// q.GuideID is set. Published and unlisted guides only.
func (c *Client) SearchGuides(ctx context.Context, q GuideQuery) ([]Guide, error) {
	params := url.Values{
		"site_id": {c.cfg.SiteID},
		"status":  {"1,2"},
	}
	if q.ExpandPages {
		params.Set("expand", "pages.boxes")
	}
	if q.Search != "" && q.GuideID == 0 {
		params.Set("search_terms", q.Search)
		params.Set("sort_by", "relevance")
	}

	rawURL := c.cfg.BaseURL + "/guides"
	if q.GuideID != 0 {
		rawURL = fmt.Sprintf("%s/guides/%d", c.cfg.BaseURL, q.GuideID)
	}

	// The API returns an array for searches but a bare object for a
	// single-guide fetch.
	var raw json.RawMessage
	if err := c.getJSON(ctx, rawURL, params, &raw); err != nil {
		return nil, err
	}
	var items []guideJSON
	if err := json.Unmarshal(raw, &items); err != nil {
		var single guideJSON
		if err := json.Unmarshal(raw, &single); err != nil {
			return nil, apierr.Wrap(apierr.KindUpstream, service, "parsing guides response", err)
		}
		items = []guideJSON{single}
	}

	limit := clampLimit(q.Limit)
	if len(items) > limit {
		items = items[:limit]
	}

	guides := make([]Guide, 0, len(items))
	for _, g := range items {
		guides = append(guides, parseGuide(g))
	}
	return guides, nil
}

func clampLimit(limit int) int {
	if limit < 1 {
		return 1
	}
	if limit > maxLimit {
		return maxLimit
	}
	return limit
}

func matchesDatabase(db Database, term string) bool {
	if strings.Contains(strings.ToLower(db.Name), term) {
		return true
	}
	if strings.Contains(strings.ToLower(db.Description), term) {
		return true
	}
	for _, alt := range db.AltNames {
		if strings.Contains(strings.ToLower(alt), term) {
			return true
		}
	}
	return false
}

func parseDatabase(d databaseJSON) Database {
	db := Database{
		ID:            d.ID,
		Name:          d.Name,
		Description:   d.Description,
		URL:           d.URL,
		AltNames:      d.AltNames,
		Vendor:        d.Vendor.Name,
		RequiresProxy: d.EnableProxy,
	}
	for _, s := range d.Subjects {
		if s.Name != "" {
			db.Subjects = append(db.Subjects, s.Name)
		}
	}
	for _, t := range d.Types {
		if t.Name != "" {
			db.Types = append(db.Types, t.Name)
		}
	}
	return db
}

func parseGuide(g guideJSON) Guide {
	guide := Guide{
		ID:          g.ID,
		Name:        g.Name,
		Description: g.Description,
		URL:         g.FriendlyURL,
		StatusLabel: g.StatusLabel,
	}
	if guide.URL == "" {
		guide.URL = g.URL
	}
	if name := strings.TrimSpace(g.Owner.FirstName + " " + g.Owner.LastName); name != "" {
		guide.OwnerName = name
	}
	for _, p := range g.Pages {
		guide.Pages = append(guide.Pages, Page{ID: p.ID, Name: p.Name, URL: p.URL})
	}
	return guide
}

// LibGuides API JSON structures.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

type databaseJSON struct {
	ID          int      `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	URL         string   `json:"url"`
	AltNames    []string `json:"alt_names"`
	EnableProxy bool     `json:"enable_proxy"`
	Vendor      struct {
		Name string `json:"name"`
	} `json:"vendor"`
	Subjects []struct {
		Name string `json:"name"`
	} `json:"subjects"`
	Types []struct {
		Name string `json:"name"`
	} `json:"types"`
}

type guideJSON struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	URL         string `json:"url"`
	FriendlyURL string `json:"friendly_url"`
	StatusLabel string `json:"status_label"`
	Owner       struct {
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
	} `json:"owner"`
	Pages []struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
		URL  string `json:"url"`
	} `json:"pages"`
}
