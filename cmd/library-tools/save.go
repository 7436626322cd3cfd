// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"time"

	"go.yaml.in/yaml/v3"
)

// queryRecord is one saved query and its response, appended to the --save
// file as a YAML document.
type queryRecord struct {
	Tool     string         `yaml:"tool"`
	RunAt    time.Time      `yaml:"run_at"`
	Params   map[string]any `yaml:"params,omitempty"`
	Response string         `yaml:"response"`
}

// saveRecord appends a YAML document for the query to path, creating the
// file if needed.
func saveRecord(path, tool string, params map[string]any, response string) error {
	rec := queryRecord{
		Tool:     tool,
		RunAt:    time.Now().UTC().Truncate(time.Second),
		Params:   params,
		Response: response,
	}

	data, err := yaml.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encoding query record: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening record file %s: %w", path, err)
	}
	defer f.Close()

	if _, err := fmt.Fprintf(f, "---\n%s", data); err != nil {
		return fmt.Errorf("writing record file %s: %w", path, err)
	}
	return nil
}
