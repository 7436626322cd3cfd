// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package primo

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

const samplePrimoJSON = `{
  "info": {"total": 1289},
  "docs": [
    {
      "context": "L",
      "pnx": {
        "display": {
          "title": ["The Grapes of Wrath"],
          "contributor": ["Steinbeck, John$$QSteinbeck", "DeMott, Robert"],
          "creationdate": ["1992-01-01"],
          "type": ["book"],
          "publisher": ["Penguin Books"],
          "identifier": ["9780140186406"]
        },
        "control": {"recordid": ["alma991012345"]},
        "addata": {}
      },
      "delivery": {"availability": ["available_p"]}
    },
    {
      "context": "PC",
      "pnx": {
        "display": {
          "title": ["Dust Bowl Migration"],
          "contributor": [],
          "creationdate": [],
          "type": ["article"],
          "publisher": []
        },
        "control": {"recordid": []},
        "addata": {"issn": ["1234-5678"]}
      },
      "delivery": {"availability": []}
    }
  ]
}`

func testConfig(baseURL string) config.PrimoConfig {
	return config.PrimoConfig{
		APIKey:        "pk_test",
		BaseURL:       baseURL,
		VID:           "01INST:VIEW",
		PermalinkHost: config.DefaultPrimoPermalinkHost,
	}
}

func testHTTPConfig() config.HTTPConfig {
	return config.HTTPConfig{Timeout: 5 * time.Second, UserAgent: "library-tools/test"}
}

func newTestServer(t *testing.T, status int, body string, captured *url.Values) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if captured != nil {
			*captured = r.URL.Query()
		}
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
}

func TestNewClientMissingConfig(t *testing.T) {
	_, err := NewClient(config.PrimoConfig{}, testHTTPConfig())
	require.Error(t, err)
	assert.Equal(t, apierr.KindConfiguration, apierr.KindOf(err))
	assert.Contains(t, err.Error(), "PRIMO_API_KEY")
}

func TestSearchParsesDocuments(t *testing.T) {
	var params url.Values
	srv := newTestServer(t, http.StatusOK, samplePrimoJSON, &params)
	defer srv.Close()

	client, err := NewClient(testConfig(srv.URL), testHTTPConfig())
	require.NoError(t, err)

	result, err := client.Search(context.Background(), SearchRequest{Query: "grapes of wrath", Limit: 10})
	require.NoError(t, err)

	assert.Equal(t, 1289, result.Total)
	require.Len(t, result.Documents, 2)

	first := result.Documents[0]
	assert.Equal(t, "The Grapes of Wrath", first.Title)
	assert.Equal(t, []string{"Steinbeck, John", "DeMott, Robert"}, first.Authors)
	assert.Equal(t, "1992", first.PublicationYear)
	assert.Equal(t, "book", first.Format)
	assert.Equal(t, "Penguin Books", first.Publisher)
	assert.Equal(t, "9780140186406", first.ISBN)
	assert.True(t, first.Available)
	assert.Contains(t, first.Permalink, "docid=alma991012345")
	assert.Contains(t, first.Permalink, "vid=01INST%3AVIEW")

	second := result.Documents[1]
	assert.Equal(t, "1234-5678", second.ISSN)
	assert.Empty(t, second.Permalink)
	assert.False(t, second.Available)

	// Query string is field,operator,terms with defaults applied.
	assert.Equal(t, "any,contains,grapes of wrath", params.Get("q"))
	assert.Equal(t, "01INST:VIEW", params.Get("vid"))
	assert.Equal(t, "Everything", params.Get("scope"))
	assert.Equal(t, "pk_test", params.Get("apikey"))
	assert.Equal(t, "rank", params.Get("sort"))
}

func TestSearchPagination(t *testing.T) {
	tests := []struct {
		name       string
		req        SearchRequest
		wantLimit  string
		wantOffset string
	}{
		{"defaults are preserved", SearchRequest{Query: "q", Limit: 10}, "10", "0"},
		{"offset passes through 0-indexed", SearchRequest{Query: "q", Limit: 10, Offset: 10}, "10", "10"},
		{"limit above max clamps to 100", SearchRequest{Query: "q", Limit: 500}, "100", "0"},
		{"limit at max is untouched", SearchRequest{Query: "q", Limit: 100}, "100", "0"},
		{"zero limit clamps up", SearchRequest{Query: "q"}, "1", "0"},
		{"negative offset clamps to 0", SearchRequest{Query: "q", Limit: 5, Offset: -3}, "5", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var params url.Values
			srv := newTestServer(t, http.StatusOK, `{"info":{"total":0},"docs":[]}`, &params)
			defer srv.Close()

			client, err := NewClient(testConfig(srv.URL), testHTTPConfig())
			require.NoError(t, err)

			_, err = client.Search(context.Background(), tt.req)
			require.NoError(t, err)
			assert.Equal(t, tt.wantLimit, params.Get("limit"))
			assert.Equal(t, tt.wantOffset, params.Get("offset"))
		})
	}
}

func TestSearchJournalsOnly(t *testing.T) {
	var params url.Values
	srv := newTestServer(t, http.StatusOK, `{"info":{"total":0},"docs":[]}`, &params)
	defer srv.Close()

	client, err := NewClient(testConfig(srv.URL), testHTTPConfig())
	require.NoError(t, err)

	_, err = client.Search(context.Background(), SearchRequest{Query: "nature", Limit: 5, JournalsOnly: true})
	require.NoError(t, err)
	assert.Equal(t, "jsearch_slot", params.Get("tab"))
}

func TestSearchValidation(t *testing.T) {
	client, err := NewClient(testConfig("http://unused"), testHTTPConfig())
	require.NoError(t, err)

	_, err = client.Search(context.Background(), SearchRequest{Query: "   "})
	assert.Equal(t, apierr.KindValidation, apierr.KindOf(err))

	_, err = client.Search(context.Background(), SearchRequest{Query: "x", Field: "bogus"})
	assert.Equal(t, apierr.KindValidation, apierr.KindOf(err))

	_, err = client.Search(context.Background(), SearchRequest{Query: "x", Operator: "fuzzy"})
	assert.Equal(t, apierr.KindValidation, apierr.KindOf(err))
}

func TestSearchErrorKinds(t *testing.T) {
	tests := []struct {
		status int
		want   apierr.Kind
	}{
		{http.StatusUnauthorized, apierr.KindAuthentication},
		{http.StatusForbidden, apierr.KindAuthentication},
		{http.StatusNotFound, apierr.KindNotFound},
		{http.StatusTooManyRequests, apierr.KindRateLimit},
		{http.StatusBadGateway, apierr.KindUpstream},
	}
	for _, tt := range tests {
		srv := newTestServer(t, tt.status, "", nil)
		client, err := NewClient(testConfig(srv.URL), testHTTPConfig())
		require.NoError(t, err)

		_, err = client.Search(context.Background(), SearchRequest{Query: "x", Limit: 1})
		require.Error(t, err, "HTTP %d", tt.status)
		assert.Equal(t, tt.want, apierr.KindOf(err), "HTTP %d", tt.status)
		srv.Close()
	}
}
