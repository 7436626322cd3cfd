// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httpx provides the HTTP request helpers shared by every service
// client: request execution with failure classification and JSON decoding.
// Requests are never retried; rate limiting and throttling are surfaced to
// the caller as classified errors.
package httpx

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"

	"github.com/pdiddy/library-tools/apierr"
	"github.com/pdiddy/library-tools/config"
)

// NewClient returns an http.Client with the configured per-request timeout.
func NewClient(cfg config.HTTPConfig) *http.Client {
	return &http.Client{Timeout: cfg.Timeout}
}

// Do executes req and classifies failures: transport errors become
// network-kind errors, non-2xx statuses map through apierr.FromStatus. On
// success the caller owns the response body.
func Do(client *http.Client, service string, req *http.Request) (*http.Response, error) {
	resp, err := client.Do(req)
	if err != nil {
		return nil, apierr.Wrap(apierr.KindNetwork, service, "request failed", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		return nil, apierr.FromStatus(service, resp.StatusCode)
	}
	return resp, nil
}

// DecodeJSON decodes the response body into v and closes it. A body that
// does not parse is an upstream-kind error.
func DecodeJSON(resp *http.Response, service string, v any) error {
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return apierr.Wrap(apierr.KindUpstream, service, "parsing response body", err)
	}
	return nil
}

// GetJSON issues a GET for rawURL with the given query parameters and
// headers and decodes the 2xx response body into v.
func GetJSON(ctx context.Context, client *http.Client, service, userAgent, rawURL string, params url.Values, header http.Header, v any) error {
	if len(params) > 0 {
		rawURL = rawURL + "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return apierr.Wrap(apierr.KindValidation, service, "creating request", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")
	for k, vals := range header {
		for _, val := range vals {
			req.Header.Set(k, val)
		}
	}

	resp, err := Do(client, service, req)
	if err != nil {
		return err
	}
	return DecodeJSON(resp, service, v)
}
