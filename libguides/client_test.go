// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package libguides

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/library-tools/apierr"
	"github.com/pdiddy/library-tools/config"
)

const sampleDatabasesJSON = `[
  {
    "id": 2706147,
    "name": "JSTOR",
    "description": "<p>Full-text &nbsp; scholarly journal archive.</p>",
    "url": "https://www.jstor.org",
    "alt_names": ["Journal Storage"],
    "enable_proxy": true,
    "vendor": {"name": "ITHAKA"},
    "subjects": [{"name": "History"}, {"name": "Literature"}],
    "types": [{"name": "Full Text"}]
  },
  {
    "id": 2706148,
    "name": "PsycINFO",
    "description": "Psychology abstracts and citations.",
    "url": "https://psycnet.apa.org",
    "subjects": [{"name": "Psychology"}]
  }
]`

const sampleGuidesJSON = `[
  {
    "id": 112233,
    "name": "Biology Research Guide",
    "description": "<b>Start here</b> for biology research.",
    "friendly_url": "https://guides.example.edu/biology",
    "url": "https://example.libguides.com/g/112233",
    "status_label": "Published",
    "owner": {"first_name": "Jane", "last_name": "Doe"},
    "pages": [
      {"id": 1, "name": "Home", "url": "https://guides.example.edu/biology/home"},
      {"id": 2, "name": "Articles"}
    ]
  }
]`

type stubRequest struct {
	path   string
	params url.Values
}

type libguidesStub struct {
	srv *httptest.Server

	mu        sync.Mutex
	tokenHits int
	expiresIn int
	requests  []stubRequest

	tokenStatus   int
	databasesBody string
	guidesBody    func(path string) string
}

func newStub(t *testing.T) *libguidesStub {
	t.Helper()
	s := &libguidesStub{
		expiresIn:     3600,
		databasesBody: sampleDatabasesJSON,
		guidesBody:    func(string) string { return sampleGuidesJSON },
	}
	s.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/oauth/token":
			s.mu.Lock()
			s.tokenHits++
			hits, status := s.tokenHits, s.tokenStatus
			s.mu.Unlock()
			if status != 0 {
				w.WriteHeader(status)
				return
			}
			fmt.Fprintf(w, `{"access_token":"tok-%d","expires_in":%d}`, hits, s.expiresIn)
		case r.URL.Path == "/az":
			s.record(r)
			io.WriteString(w, s.databasesBody)
		case r.URL.Path == "/guides" || strings.HasPrefix(r.URL.Path, "/guides/"):
			s.record(r)
			io.WriteString(w, s.guidesBody(r.URL.Path))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(s.srv.Close)
	return s
}

func (s *libguidesStub) record(r *http.Request) {
	s.mu.Lock()
	s.requests = append(s.requests, stubRequest{path: r.URL.Path, params: r.URL.Query()})
	s.mu.Unlock()
}

func (s *libguidesStub) lastRequest(t *testing.T) stubRequest {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	require.NotEmpty(t, s.requests)
	return s.requests[len(s.requests)-1]
}

func (s *libguidesStub) config() config.LibGuidesConfig {
	return config.LibGuidesConfig{
		SiteID:       "4321",
		ClientID:     "cid",
		ClientSecret: "secret",
		BaseURL:      s.srv.URL,
	}
}

func (s *libguidesStub) client(t *testing.T) *Client {
	t.Helper()
	client, err := NewClient(s.config(), testHTTPConfig())
	require.NoError(t, err)
	return client
}

func testHTTPConfig() config.HTTPConfig {
	return config.HTTPConfig{Timeout: 5 * time.Second, UserAgent: "library-tools/test"}
}

func TestNewClientMissingConfig(t *testing.T) {
	_, err := NewClient(config.LibGuidesConfig{}, testHTTPConfig())
	require.Error(t, err)
	assert.Equal(t, apierr.KindConfiguration, apierr.KindOf(err))
	assert.Contains(t, err.Error(), "LIBGUIDES_SITE_ID")
	assert.Contains(t, err.Error(), "LIBGUIDES_CLIENT_ID")
}

func TestTokenCachedAcrossCalls(t *testing.T) {
	stub := newStub(t)
	client := stub.client(t)

	_, err := client.SearchDatabases(context.Background(), DatabaseQuery{Limit: 10})
	require.NoError(t, err)
	_, err = client.SearchGuides(context.Background(), GuideQuery{Limit: 10})
	require.NoError(t, err)

	assert.Equal(t, 1, stub.tokenHits)
}

func TestTokenAuthFailure(t *testing.T) {
	stub := newStub(t)
	stub.tokenStatus = http.StatusUnauthorized
	client := stub.client(t)

	_, err := client.SearchDatabases(context.Background(), DatabaseQuery{Limit: 10})
	assert.Equal(t, apierr.KindAuthentication, apierr.KindOf(err))
}

func TestSearchDatabasesParsesAndExpands(t *testing.T) {
	stub := newStub(t)
	client := stub.client(t)

	databases, err := client.SearchDatabases(context.Background(), DatabaseQuery{Limit: 10})
	require.NoError(t, err)
	require.Len(t, databases, 2)

	jstor := databases[0]
	assert.Equal(t, 2706147, jstor.ID)
	assert.Equal(t, "JSTOR", jstor.Name)
	assert.Equal(t, "ITHAKA", jstor.Vendor)
	assert.Equal(t, []string{"History", "Literature"}, jstor.Subjects)
	assert.Equal(t, []string{"Full Text"}, jstor.Types)
	assert.Equal(t, []string{"Journal Storage"}, jstor.AltNames)
	assert.True(t, jstor.RequiresProxy)

	req := stub.lastRequest(t)
	assert.Equal(t, "/az", req.path)
	assert.Equal(t, "4321", req.params.Get("site_id"))
	assert.Equal(t, "subjects,types,vendors", req.params.Get("expand"))
}

func TestSearchDatabasesClientSideFilter(t *testing.T) {
	stub := newStub(t)
	client := stub.client(t)

	tests := []struct {
		name   string
		search string
		want   []string
	}{
		{"matches name", "jstor", []string{"JSTOR"}},
		{"matches description", "psychology", []string{"PsycINFO"}},
		{"matches alt name", "journal storage", []string{"JSTOR"}},
		{"no match", "zzz_no_such_term_zzz", nil},
		{"empty term returns all", "", []string{"JSTOR", "PsycINFO"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			databases, err := client.SearchDatabases(context.Background(), DatabaseQuery{Search: tt.search, Limit: 10})
			require.NoError(t, err)

			var names []string
			for _, db := range databases {
				names = append(names, db.Name)
			}
			assert.Equal(t, tt.want, names)
		})
	}
}

func TestSearchDatabasesLimitAfterFiltering(t *testing.T) {
	stub := newStub(t)
	client := stub.client(t)

	databases, err := client.SearchDatabases(context.Background(), DatabaseQuery{Limit: 1})
	require.NoError(t, err)
	require.Len(t, databases, 1)
	assert.Equal(t, "JSTOR", databases[0].Name)
}

func TestSearchDatabasesSubjectAndTypeParams(t *testing.T) {
	stub := newStub(t)
	client := stub.client(t)

	_, err := client.SearchDatabases(context.Background(), DatabaseQuery{SubjectID: "77", TypeID: "3", Limit: 10})
	require.NoError(t, err)

	req := stub.lastRequest(t)
	assert.Equal(t, "77", req.params.Get("subject_id"))
	assert.Equal(t, "3", req.params.Get("type_id"))
}

func TestSearchGuidesParams(t *testing.T) {
	stub := newStub(t)
	client := stub.client(t)

	guides, err := client.SearchGuides(context.Background(), GuideQuery{
		Search: "biology", Limit: 10, ExpandPages: true,
	})
	require.NoError(t, err)
	require.Len(t, guides, 1)

	guide := guides[0]
	assert.Equal(t, 112233, guide.ID)
	assert.Equal(t, "Biology Research Guide", guide.Name)
	assert.Equal(t, "https://guides.example.edu/biology", guide.URL, "friendly URL wins over raw URL")
	assert.Equal(t, "Jane Doe", guide.OwnerName)
	assert.Equal(t, "Published", guide.StatusLabel)
	require.Len(t, guide.Pages, 2)
	assert.Equal(t, Page{ID: 1, Name: "Home", URL: "https://guides.example.edu/biology/home"}, guide.Pages[0])

	req := stub.lastRequest(t)
	assert.Equal(t, "/guides", req.path)
	assert.Equal(t, "1,2", req.params.Get("status"))
	assert.Equal(t, "biology", req.params.Get("search_terms"))
	assert.Equal(t, "relevance", req.params.Get("sort_by"))
	assert.Equal(t, "pages.boxes", req.params.Get("expand"))
}

func TestSearchGuidesByIDSingleObject(t *testing.T) {
	stub := newStub(t)
	stub.guidesBody = func(path string) string {
		// Single-guide fetch returns a bare object, not an array.
		return `{"id": 112233, "name": "Biology Research Guide"}`
	}
	client := stub.client(t)

	guides, err := client.SearchGuides(context.Background(), GuideQuery{GuideID: 112233, Search: "ignored", Limit: 10})
	require.NoError(t, err)
	require.Len(t, guides, 1)
	assert.Equal(t, 112233, guides[0].ID)

	req := stub.lastRequest(t)
	assert.Equal(t, "/guides/112233", req.path)
	assert.Empty(t, req.params.Get("search_terms"), "direct fetch ignores search terms")
}

func TestSearchGuidesLimitClamp(t *testing.T) {
	stub := newStub(t)
	var many []string
	for i := 0; i < 120; i++ {
		many = append(many, fmt.Sprintf(`{"id": %d, "name": "Guide %d"}`, i, i))
	}
	stub.guidesBody = func(string) string { return "[" + joinJSON(many) + "]" }
	client := stub.client(t)

	guides, err := client.SearchGuides(context.Background(), GuideQuery{Limit: 500})
	require.NoError(t, err)
	assert.Len(t, guides, 100, "limit clamps to 100")
}

func joinJSON(items []string) string {
	out := ""
	for i, item := range items {
		if i > 0 {
			out += ","
		}
		out += item
	}
	return out
}

func TestSearchDatabasesErrorKinds(t *testing.T) {
	tests := []struct {
		status int
		want   apierr.Kind
	}{
		{http.StatusForbidden, apierr.KindAuthentication},
		{http.StatusNotFound, apierr.KindNotFound},
		{http.StatusTooManyRequests, apierr.KindRateLimit},
	}
	for _, tt := range tests {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/oauth/token" {
				fmt.Fprint(w, `{"access_token":"tok","expires_in":3600}`)
				return
			}
			w.WriteHeader(tt.status)
		}))
		cfg := config.LibGuidesConfig{SiteID: "4321", ClientID: "cid", ClientSecret: "secret", BaseURL: srv.URL}

		client, err := NewClient(cfg, testHTTPConfig())
		require.NoError(t, err)

		_, err = client.SearchDatabases(context.Background(), DatabaseQuery{Limit: 1})
		assert.Equal(t, tt.want, apierr.KindOf(err), "HTTP %d", tt.status)
		srv.Close()
	}
}
