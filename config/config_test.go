// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/library-tools/apierr"
)

// chdir switches to dir for the duration of the test, matching t.Chdir,
// which is unavailable on Go toolchains older than 1.24.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() {
		require.NoError(t, os.Chdir(prev))
	})
}

// clearEnv unsets every resolver variable so tests see a clean environment.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range envVars {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	chdir(t, t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DefaultPrimoBaseURL, cfg.Primo.BaseURL)
	assert.Equal(t, DefaultOpenAlexBaseURL, cfg.OpenAlex.BaseURL)
	assert.Equal(t, DefaultOCLCTokenURL, cfg.WorldCat.TokenURL)
	assert.Equal(t, DefaultLibGuidesBaseURL, cfg.LibGuides.BaseURL)
	assert.Equal(t, DefaultTimeout, cfg.HTTP.Timeout)
	assert.Equal(t, DefaultUserAgent, cfg.HTTP.UserAgent)

	// Credentials are absent but Load does not fail.
	assert.Empty(t, cfg.Primo.APIKey)
	assert.Empty(t, cfg.WorldCat.ClientID)
}

func TestLoadFromEnvironment(t *testing.T) {
	clearEnv(t)
	chdir(t, t.TempDir())

	t.Setenv("PRIMO_API_KEY", "pk_123")
	t.Setenv("PRIMO_VID", "01INST:VIEW")
	t.Setenv("OPENALEX_EMAIL", "lib@example.edu")
	t.Setenv("REPOSITORY_BASE_URL", "https://content-out.example.com/v2/inst.edu/")
	t.Setenv("LIBRARY_TOOLS_TIMEOUT", "5s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "pk_123", cfg.Primo.APIKey)
	assert.Equal(t, "01INST:VIEW", cfg.Primo.VID)
	assert.Equal(t, "lib@example.edu", cfg.OpenAlex.Email)
	// Trailing slash is trimmed so URL joining stays predictable.
	assert.Equal(t, "https://content-out.example.com/v2/inst.edu", cfg.Repository.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.HTTP.Timeout)
}

func TestLoadBadTimeout(t *testing.T) {
	clearEnv(t)
	chdir(t, t.TempDir())
	t.Setenv("LIBRARY_TOOLS_TIMEOUT", "not-a-duration")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LIBRARY_TOOLS_TIMEOUT")
}

func TestLoadPrecedence(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	chdir(t, dir)

	// .secrets/ is the lowest layer.
	require.NoError(t, os.Mkdir(filepath.Join(dir, ".secrets"), 0o755))
	writeFile(t, filepath.Join(dir, ".secrets"), "primo-api-key", "from-secrets\n")
	writeFile(t, filepath.Join(dir, ".secrets"), "oclc-client-id", "secret-oclc")

	// .env overrides secrets.
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"),
		[]byte("PRIMO_API_KEY=from-dotenv\nPRIMO_VID=01DOT:ENV\n"), 0o644))

	// The process environment overrides both.
	t.Setenv("PRIMO_VID", "01ENV:VIEW")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "from-dotenv", cfg.Primo.APIKey)
	assert.Equal(t, "01ENV:VIEW", cfg.Primo.VID)
	assert.Equal(t, "secret-oclc", cfg.WorldCat.ClientID)
}

func TestLoadSecretsSkipsJunk(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "repository-api-key", "  tok_abc  \n")
	writeFile(t, dir, ".hidden", "nope")
	writeFile(t, dir, "empty-key", "   \n")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "subdir"), 0o755))

	secrets, err := loadSecrets(dir)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"REPOSITORY_API_KEY": "tok_abc"}, secrets)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		missing []string
	}{
		{"primo missing both", PrimoConfig{}.Validate(), []string{"PRIMO_API_KEY", "PRIMO_VID"}},
		{"primo missing vid", PrimoConfig{APIKey: "k"}.Validate(), []string{"PRIMO_VID"}},
		{"worldcat missing secret", WorldCatConfig{ClientID: "id"}.Validate(), []string{"OCLC_CLIENT_SECRET"}},
		{"libguides missing all", LibGuidesConfig{}.Validate(), []string{"LIBGUIDES_SITE_ID", "LIBGUIDES_CLIENT_ID", "LIBGUIDES_CLIENT_SECRET"}},
		{"repository missing key", RepositoryConfig{BaseURL: "https://x"}.Validate(), []string{"REPOSITORY_API_KEY"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Error(t, tt.err)
			assert.Equal(t, apierr.KindConfiguration, apierr.KindOf(tt.err))
			for _, m := range tt.missing {
				assert.Contains(t, tt.err.Error(), m)
			}
		})
	}

	assert.NoError(t, PrimoConfig{APIKey: "k", VID: "v"}.Validate())
	assert.NoError(t, OpenAlexConfig{}.Validate())
	assert.NoError(t, WorldCatConfig{ClientID: "a", ClientSecret: "b"}.Validate())
	assert.NoError(t, RepositoryConfig{BaseURL: "https://x", APIKey: "y"}.Validate())
}

func writeFile(t *testing.T, dir, name, contents string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(contents), 0o644))
}
