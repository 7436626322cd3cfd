// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package primo

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pdiddy/library-tools/config"
)

func TestToolSearchMissingConfigReturnsText(t *testing.T) {
	tool := NewTool(config.PrimoConfig{}, testHTTPConfig())

	out := tool.Search(context.Background(), SearchRequest{Query: "anything"})

	assert.Contains(t, out, "Configuration error")
	assert.Contains(t, out, "PRIMO_API_KEY")
	assert.Contains(t, out, "PRIMO_VID")
}

func TestToolSearchZeroResults(t *testing.T) {
	srv := newTestServer(t, http.StatusOK, `{"info":{"total":0},"docs":[]}`, nil)
	defer srv.Close()

	tool := NewTool(testConfig(srv.URL), testHTTPConfig())
	out := tool.Search(context.Background(), SearchRequest{Query: "zzz_no_such_term_zzz"})

	assert.Contains(t, out, "0 results found for 'zzz_no_such_term_zzz'")
	assert.NotEmpty(t, out)
}

func TestToolSearchStanzaOrder(t *testing.T) {
	srv := newTestServer(t, http.StatusOK, samplePrimoJSON, nil)
	defer srv.Close()

	tool := NewTool(testConfig(srv.URL), testHTTPConfig())
	out := tool.Search(context.Background(), SearchRequest{Query: "grapes"})

	assert.Contains(t, out, "Found 1289 results for 'grapes' (showing 2):")

	// Identifier comes first in each stanza, then title, then authors.
	idIdx := strings.Index(out, "docid=alma991012345")
	titleIdx := strings.Index(out, "Title: The Grapes of Wrath (1992) [book]")
	authorIdx := strings.Index(out, "Authors: Steinbeck, John, DeMott, Robert")
	assert.True(t, idIdx >= 0 && titleIdx > idIdx && authorIdx > titleIdx,
		"stanza order should be identifier, title, authors:\n%s", out)

	assert.Contains(t, out, "Publisher: Penguin Books | ISBN: 9780140186406")
	assert.Contains(t, out, "Available: yes")
	assert.Contains(t, out, "ISSN: 1234-5678")
}

func TestToolSearchErrorText(t *testing.T) {
	srv := newTestServer(t, http.StatusUnauthorized, "", nil)
	defer srv.Close()

	tool := NewTool(testConfig(srv.URL), testHTTPConfig())
	out := tool.Search(context.Background(), SearchRequest{Query: "x"})

	assert.Contains(t, out, "Authentication failed")
	assert.Contains(t, out, "HTTP 401")
}

func TestToolSearchDefaultLimit(t *testing.T) {
	var params url.Values
	srv := newTestServer(t, http.StatusOK, `{"info":{"total":0},"docs":[]}`, &params)
	defer srv.Close()

	tool := NewTool(testConfig(srv.URL), testHTTPConfig())
	tool.Search(context.Background(), SearchRequest{Query: "x"})

	assert.Equal(t, "10", params.Get("limit"))
}
