// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package config resolves per-service settings from the process environment.
//
// Resolution order: environment variables win over a .env file in the
// working directory, which wins over key files in the .secrets/ directory
// (filename is the variable name in lower-kebab form, contents the value).
// Load never fails on missing credentials; each service config exposes
// Validate, which reports missing required variables as configuration
// errors, so a service is only rejected at first use.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/pdiddy/library-tools/apierr"
)

// Default endpoints and HTTP settings. Overridable through the environment
// so tests can point clients at stub servers.
const (
	DefaultPrimoBaseURL         = "https://api-na.hosted.exlibrisgroup.com/primo/v1/search"
	DefaultPrimoPermalinkHost   = "primo.exlibrisgroup.com"
	DefaultOpenAlexBaseURL      = "https://api.openalex.org"
	DefaultOCLCTokenURL         = "https://oauth.oclc.org/token"
	DefaultOCLCMetadataBaseURL  = "https://metadata.api.oclc.org/worldcat"
	DefaultOCLCDiscoveryBaseURL = "https://americas.discovery.api.oclc.org/worldcat/search/v2"
	DefaultLibGuidesBaseURL     = "https://lgapi-us.libapps.com/1.2"

	DefaultTimeout   = 30 * time.Second
	DefaultUserAgent = "library-tools/0.1"
)

// envVars lists every variable the resolver reads.
var envVars = []string{
	"PRIMO_API_KEY", "PRIMO_VID", "PRIMO_BASE_URL", "PRIMO_SCOPE", "PRIMO_PERMALINK_HOST",
	"OPENALEX_EMAIL", "OPENALEX_BASE_URL",
	"OCLC_CLIENT_ID", "OCLC_CLIENT_SECRET", "OCLC_INSTITUTION_ID",
	"OCLC_TOKEN_URL", "OCLC_METADATA_BASE_URL", "OCLC_DISCOVERY_BASE_URL",
	"LIBGUIDES_SITE_ID", "LIBGUIDES_CLIENT_ID", "LIBGUIDES_CLIENT_SECRET", "LIBGUIDES_BASE_URL",
	"REPOSITORY_BASE_URL", "REPOSITORY_API_KEY",
	"LIBRARY_TOOLS_TIMEOUT", "LIBRARY_TOOLS_USER_AGENT",
}

// HTTPConfig holds shared HTTP settings used by every client.
type HTTPConfig struct {
	// Timeout is the per-request HTTP timeout.
	Timeout time.Duration

	// UserAgent is the User-Agent header sent with HTTP requests.
	UserAgent string
}

// PrimoConfig holds settings for the Primo discovery catalog.
type PrimoConfig struct {
	APIKey  string
	BaseURL string
	// VID is the Primo view ID (e.g. "01INST:VIEW").
	VID   string
	Scope string
	// PermalinkHost is the host used when building record permalinks.
	PermalinkHost string
}

// Validate reports missing required Primo settings.
func (c PrimoConfig) Validate() error {
	var missing []string
	if c.APIKey == "" {
		missing = append(missing, "PRIMO_API_KEY")
	}
	if c.VID == "" {
		missing = append(missing, "PRIMO_VID")
	}
	if len(missing) > 0 {
		return apierr.Configuration("primo", missing...)
	}
	return nil
}

// OpenAlexConfig holds settings for OpenAlex. Everything is optional:
// Email only moves requests into the polite pool.
type OpenAlexConfig struct {
	Email   string
	BaseURL string
}

// Validate always succeeds; OpenAlex requires no credentials.
func (c OpenAlexConfig) Validate() error { return nil }

// WorldCatConfig holds settings for the OCLC WorldCat APIs.
type WorldCatConfig struct {
	ClientID      string
	ClientSecret  string
	InstitutionID string

	TokenURL         string
	MetadataBaseURL  string
	DiscoveryBaseURL string
}

// Validate reports missing required OCLC credentials.
func (c WorldCatConfig) Validate() error {
	var missing []string
	if c.ClientID == "" {
		missing = append(missing, "OCLC_CLIENT_ID")
	}
	if c.ClientSecret == "" {
		missing = append(missing, "OCLC_CLIENT_SECRET")
	}
	if len(missing) > 0 {
		return apierr.Configuration("worldcat", missing...)
	}
	return nil
}

// LibGuidesConfig holds settings for the Springshare LibGuides API.
type LibGuidesConfig struct {
	SiteID       string
	ClientID     string
	ClientSecret string
	BaseURL      string
}

// Validate reports missing required LibGuides settings.
func (c LibGuidesConfig) Validate() error {
	var missing []string
	if c.SiteID == "" {
		missing = append(missing, "LIBGUIDES_SITE_ID")
	}
	if c.ClientID == "" {
		missing = append(missing, "LIBGUIDES_CLIENT_ID")
	}
	if c.ClientSecret == "" {
		missing = append(missing, "LIBGUIDES_CLIENT_SECRET")
	}
	if len(missing) > 0 {
		return apierr.Configuration("libguides", missing...)
	}
	return nil
}

// RepositoryConfig holds settings for a bePress/Digital Commons repository.
type RepositoryConfig struct {
	// BaseURL is the content-out endpoint, e.g.
	// "https://content-out.bepress.com/v2/institution.edu".
	BaseURL string
	APIKey  string
}

// Validate reports missing required repository settings.
func (c RepositoryConfig) Validate() error {
	var missing []string
	if c.BaseURL == "" {
		missing = append(missing, "REPOSITORY_BASE_URL")
	}
	if c.APIKey == "" {
		missing = append(missing, "REPOSITORY_API_KEY")
	}
	if len(missing) > 0 {
		return apierr.Configuration("repository", missing...)
	}
	return nil
}

// Config groups all service settings. Build it once with Load and pass it by
// reference into client constructors.
type Config struct {
	HTTP       HTTPConfig
	Primo      PrimoConfig
	OpenAlex   OpenAlexConfig
	WorldCat   WorldCatConfig
	LibGuides  LibGuidesConfig
	Repository RepositoryConfig
}

// Load resolves all settings from the environment, an optional .env file in
// the working directory, and an optional .secrets/ directory. Missing
// credentials are not an error here; clients validate at construction.
func Load() (*Config, error) {
	v := viper.New()

	// Lowest precedence: .secrets/ key files, then the .env file. viper
	// keeps the last default set, so apply secrets before .env.
	secrets, err := loadSecrets(".secrets/")
	if err != nil {
		return nil, err
	}
	for k, val := range secrets {
		v.SetDefault(k, val)
	}
	if env, err := godotenv.Read(".env"); err == nil {
		for k, val := range env {
			v.SetDefault(k, val)
		}
	}

	v.AutomaticEnv()
	for _, key := range envVars {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("binding %s: %w", key, err)
		}
	}

	cfg := &Config{
		HTTP: HTTPConfig{
			Timeout:   DefaultTimeout,
			UserAgent: stringOr(v, "LIBRARY_TOOLS_USER_AGENT", DefaultUserAgent),
		},
		Primo: PrimoConfig{
			APIKey:        v.GetString("PRIMO_API_KEY"),
			BaseURL:       stringOr(v, "PRIMO_BASE_URL", DefaultPrimoBaseURL),
			VID:           v.GetString("PRIMO_VID"),
			Scope:         v.GetString("PRIMO_SCOPE"),
			PermalinkHost: stringOr(v, "PRIMO_PERMALINK_HOST", DefaultPrimoPermalinkHost),
		},
		OpenAlex: OpenAlexConfig{
			Email:   v.GetString("OPENALEX_EMAIL"),
			BaseURL: stringOr(v, "OPENALEX_BASE_URL", DefaultOpenAlexBaseURL),
		},
		WorldCat: WorldCatConfig{
			ClientID:         v.GetString("OCLC_CLIENT_ID"),
			ClientSecret:     v.GetString("OCLC_CLIENT_SECRET"),
			InstitutionID:    v.GetString("OCLC_INSTITUTION_ID"),
			TokenURL:         stringOr(v, "OCLC_TOKEN_URL", DefaultOCLCTokenURL),
			MetadataBaseURL:  stringOr(v, "OCLC_METADATA_BASE_URL", DefaultOCLCMetadataBaseURL),
			DiscoveryBaseURL: stringOr(v, "OCLC_DISCOVERY_BASE_URL", DefaultOCLCDiscoveryBaseURL),
		},
		LibGuides: LibGuidesConfig{
			SiteID:       v.GetString("LIBGUIDES_SITE_ID"),
			ClientID:     v.GetString("LIBGUIDES_CLIENT_ID"),
			ClientSecret: v.GetString("LIBGUIDES_CLIENT_SECRET"),
			BaseURL:      stringOr(v, "LIBGUIDES_BASE_URL", DefaultLibGuidesBaseURL),
		},
		Repository: RepositoryConfig{
			BaseURL: strings.TrimRight(v.GetString("REPOSITORY_BASE_URL"), "/"),
			APIKey:  v.GetString("REPOSITORY_API_KEY"),
		},
	}

	if raw := v.GetString("LIBRARY_TOOLS_TIMEOUT"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("parsing LIBRARY_TOOLS_TIMEOUT %q: %w", raw, err)
		}
		cfg.HTTP.Timeout = d
	}

	return cfg, nil
}

func stringOr(v *viper.Viper, key, fallback string) string {
	if s := v.GetString(key); s != "" {
		return s
	}
	return fallback
}

// loadSecrets reads key files from dir and returns them keyed by variable
// name: "primo-api-key" becomes "PRIMO_API_KEY". A missing directory is not
// an error. Unreadable files produce a warning on stderr but do not abort.
func loadSecrets(dir string) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not read secret %s: %v\n", entry.Name(), err)
			continue
		}

		value := strings.TrimSpace(string(data))
		if value == "" {
			continue
		}
		key := strings.ToUpper(strings.ReplaceAll(entry.Name(), "-", "_"))
		secrets[key] = value
	}

	return secrets, nil
}
