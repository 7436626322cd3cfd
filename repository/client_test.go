// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package repository

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/library-tools/apierr"
	"github.com/pdiddy/library-tools/config"
)

const sampleQueryJSON = `{
  "query_meta": {"total_hits": 327},
  "results": [
    {
      "title": "Urban Heat Islands and Public Health",
      "author": ["Rivera, Ana", "Chen, Wei"],
      "publication_year": "2023",
      "document_type": ["dissertation"],
      "url": "https://academicworks.example.edu/gc_etds/5120",
      "fulltext_url": "https://academicworks.example.edu/gc_etds/5120/download",
      "parent_link": "http://academicworks.example.edu/gc_etds",
      "keywords": ["urban heat, climate adaptation"],
      "advisor": "Monica Varsanyi"
    },
    {
      "title": "A Single-Author Note",
      "author": "Solo, Han",
      "publication_date": "2019-05-01T00:00:00Z",
      "document_type": "article",
      "url": "https://academicworks.example.edu/pubs/88",
      "subject": ["astronomy", "navigation"]
    }
  ]
}`

func testConfig(baseURL string) config.RepositoryConfig {
	return config.RepositoryConfig{BaseURL: baseURL, APIKey: "rk_test"}
}

func testHTTPConfig() config.HTTPConfig {
	return config.HTTPConfig{Timeout: 5 * time.Second, UserAgent: "library-tools/test"}
}

type capturedRequest struct {
	params url.Values
	auth   string
}

func newTestServer(t *testing.T, status int, body string, captured *capturedRequest) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if captured != nil {
			captured.params = r.URL.Query()
			captured.auth = r.Header.Get("Authorization")
		}
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestNewClientMissingConfig(t *testing.T) {
	_, err := NewClient(config.RepositoryConfig{}, testHTTPConfig())
	require.Error(t, err)
	assert.Equal(t, apierr.KindConfiguration, apierr.KindOf(err))
	assert.Contains(t, err.Error(), "REPOSITORY_BASE_URL")
	assert.Contains(t, err.Error(), "REPOSITORY_API_KEY")
}

func TestSearchParsesWorks(t *testing.T) {
	var captured capturedRequest
	srv := newTestServer(t, http.StatusOK, sampleQueryJSON, &captured)

	client, err := NewClient(testConfig(srv.URL), testHTTPConfig())
	require.NoError(t, err)

	result, err := client.Search(context.Background(), SearchRequest{Query: "urban heat", Limit: 10})
	require.NoError(t, err)

	assert.Equal(t, 327, result.Total)
	require.Len(t, result.Works, 2)

	first := result.Works[0]
	assert.Equal(t, "Urban Heat Islands and Public Health", first.Title)
	assert.Equal(t, []string{"Rivera, Ana", "Chen, Wei"}, first.Authors)
	assert.Equal(t, "2023", first.PublicationYear)
	assert.Equal(t, "dissertation", first.DocumentType)
	assert.Equal(t, "gc_etds", first.Collection)
	assert.Equal(t, "Gc Etds", first.CollectionName)
	assert.Equal(t, []string{"urban heat", "climate adaptation"}, first.Keywords, "comma-joined keyword strings are split")
	assert.Equal(t, "Monica Varsanyi", first.Advisor)
	assert.Empty(t, first.Abstract, "abstract is a detailed-view field")

	second := result.Works[1]
	assert.Equal(t, []string{"Solo, Han"}, second.Authors, "bare-string author becomes a one-element list")
	assert.Equal(t, "2019", second.PublicationYear, "publication_date is truncated to the year")
	assert.Equal(t, "article", second.DocumentType)
	assert.Equal(t, []string{"astronomy", "navigation"}, second.Keywords, "subject backfills missing keywords")

	assert.Equal(t, "rk_test", captured.auth)
	assert.Equal(t, "urban heat", captured.params.Get("q"))
	assert.Equal(t, searchFields, captured.params.Get("fields"))
}

func TestSearchPagination(t *testing.T) {
	tests := []struct {
		name      string
		req       SearchRequest
		wantLimit string
		wantStart string
	}{
		{"start is 0-indexed", SearchRequest{Limit: 10}, "10", "0"},
		{"start passes through", SearchRequest{Limit: 10, Start: 50}, "10", "50"},
		{"limit above max clamps to 1000", SearchRequest{Limit: 5000}, "1000", "0"},
		{"limit at max is untouched", SearchRequest{Limit: 1000}, "1000", "0"},
		{"zero limit clamps up", SearchRequest{}, "1", "0"},
		{"negative start clamps to 0", SearchRequest{Limit: 5, Start: -2}, "5", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var captured capturedRequest
			srv := newTestServer(t, http.StatusOK, `{"query_meta":{"total_hits":0},"results":[]}`, &captured)

			client, err := NewClient(testConfig(srv.URL), testHTTPConfig())
			require.NoError(t, err)

			_, err = client.Search(context.Background(), tt.req)
			require.NoError(t, err)
			assert.Equal(t, tt.wantLimit, captured.params.Get("limit"))
			assert.Equal(t, tt.wantStart, captured.params.Get("start"))
		})
	}
}

func TestSearchCollectionFilter(t *testing.T) {
	var captured capturedRequest
	srv := newTestServer(t, http.StatusOK, `{"query_meta":{"total_hits":0},"results":[]}`, &captured)

	// The collection URL is derived from the domain at the end of the
	// base URL path.
	cfg := config.RepositoryConfig{BaseURL: srv.URL + "/v2/academicworks.example.edu", APIKey: "rk"}
	client, err := NewClient(cfg, testHTTPConfig())
	require.NoError(t, err)

	// The stub serves every path, so the extra path segments are fine.
	_, err = client.Search(context.Background(), SearchRequest{Collection: "gc_etds", Year: "2023", Limit: 5})
	require.NoError(t, err)

	assert.Equal(t, "http://academicworks.example.edu/gc_etds", captured.params.Get("parent_link"))
	assert.Equal(t, "2023", captured.params.Get("publication_year"))
}

func TestSearchIgnoresNonNumericYear(t *testing.T) {
	var captured capturedRequest
	srv := newTestServer(t, http.StatusOK, `{"query_meta":{"total_hits":0},"results":[]}`, &captured)

	client, err := NewClient(testConfig(srv.URL), testHTTPConfig())
	require.NoError(t, err)

	_, err = client.Search(context.Background(), SearchRequest{Year: "recent", Limit: 5})
	require.NoError(t, err)
	assert.Empty(t, captured.params.Get("publication_year"))
}

func TestLatestOmitsQuery(t *testing.T) {
	var captured capturedRequest
	srv := newTestServer(t, http.StatusOK, `{"query_meta":{"total_hits":0},"results":[]}`, &captured)

	client, err := NewClient(testConfig(srv.URL), testHTTPConfig())
	require.NoError(t, err)

	_, err = client.Latest(context.Background(), "", 20, 0)
	require.NoError(t, err)
	assert.False(t, captured.params.Has("q"))
	assert.Equal(t, "20", captured.params.Get("limit"))
}

func TestDetailsFetchesAllFields(t *testing.T) {
	var captured capturedRequest
	srv := newTestServer(t, http.StatusOK, `{
	  "query_meta": {"total_hits": 1},
	  "results": [{
	    "title": "Urban Heat Islands and Public Health",
	    "author": ["Rivera, Ana"],
	    "document_type": ["dissertation"],
	    "url": "https://academicworks.example.edu/gc_etds/5120",
	    "abstract": "<p>This dissertation examines  heat exposure.</p>",
	    "keywords": ["urban heat"],
	    "committee_member": ["Monica Varsanyi", "David Harvey"]
	  }]
	}`, &captured)

	client, err := NewClient(testConfig(srv.URL), testHTTPConfig())
	require.NoError(t, err)

	work, err := client.Details(context.Background(), "https://academicworks.example.edu/gc_etds/5120")
	require.NoError(t, err)
	require.NotNil(t, work)

	assert.Equal(t, "This dissertation examines heat exposure.", work.Abstract, "abstract HTML is stripped")
	assert.Equal(t, "Monica Varsanyi, David Harvey", work.Advisor, "committee members backfill a missing advisor")

	assert.Equal(t, `url:"https://academicworks.example.edu/gc_etds/5120"`, captured.params.Get("q"))
	assert.Equal(t, "all", captured.params.Get("select_fields"))
	assert.Equal(t, "1", captured.params.Get("limit"))
}

func TestDetailsNoMatch(t *testing.T) {
	srv := newTestServer(t, http.StatusOK, `{"query_meta":{"total_hits":0},"results":[]}`, nil)

	client, err := NewClient(testConfig(srv.URL), testHTTPConfig())
	require.NoError(t, err)

	work, err := client.Details(context.Background(), "https://academicworks.example.edu/nope")
	require.NoError(t, err)
	assert.Nil(t, work)
}

func TestDetailsValidation(t *testing.T) {
	client, err := NewClient(testConfig("http://unused"), testHTTPConfig())
	require.NoError(t, err)

	_, err = client.Details(context.Background(), "  ")
	assert.Equal(t, apierr.KindValidation, apierr.KindOf(err))
}

func TestSearchErrorKinds(t *testing.T) {
	tests := []struct {
		status int
		want   apierr.Kind
	}{
		{http.StatusUnauthorized, apierr.KindAuthentication},
		{http.StatusNotFound, apierr.KindNotFound},
		{http.StatusTooManyRequests, apierr.KindRateLimit},
		{http.StatusInternalServerError, apierr.KindUpstream},
	}
	for _, tt := range tests {
		srv := newTestServer(t, tt.status, "", nil)
		client, err := NewClient(testConfig(srv.URL), testHTTPConfig())
		require.NoError(t, err)

		_, err = client.Search(context.Background(), SearchRequest{Query: "x", Limit: 1})
		require.Error(t, err, "HTTP %d", tt.status)
		assert.Equal(t, tt.want, apierr.KindOf(err), "HTTP %d", tt.status)
	}
}
