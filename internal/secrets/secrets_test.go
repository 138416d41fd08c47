// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package secrets

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/pdiddy/research-funnel/pkg/types"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name   string
		setup  func(t *testing.T) string
		want   map[string]string
		errMsg string
	}{
		{
			name: "reads key files and trims whitespace",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, PubMedAPIKey, "  pm_abc123  \n")
				writeFile(t, dir, OpenAIAPIKey, "sk_xyz789")
				writeFile(t, dir, OpenAlexEmail, "user@example.com\n")
				return dir
			},
			want: map[string]string{
				PubMedAPIKey:  "pm_abc123",
				OpenAIAPIKey:  "sk_xyz789",
				OpenAlexEmail: "user@example.com",
			},
		},
		{
			name: "returns empty map for nonexistent directory",
			setup: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "does-not-exist")
			},
			want: map[string]string{},
		},
		{
			name: "skips empty files",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, "anthropic-api-key", "valid-key")
				writeFile(t, dir, "empty-key", "")
				writeFile(t, dir, "whitespace-only", "   \n\t  ")
				return dir
			},
			want: map[string]string{
				"anthropic-api-key": "valid-key",
			},
		},
		{
			name: "skips dotfiles",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, ".gitkeep", "")
				writeFile(t, dir, ".hidden-key", "secret")
				writeFile(t, dir, GeminiAPIKey, "gm_real")
				return dir
			},
			want: map[string]string{
				GeminiAPIKey: "gm_real",
			},
		},
		{
			name: "skips subdirectories",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, "anthropic-api-key", "ak_123")
				require.NoError(t, os.Mkdir(filepath.Join(dir, "subdir"), 0o755))
				return dir
			},
			want: map[string]string{
				"anthropic-api-key": "ak_123",
			},
		},
		{
			name: "returns empty map for empty directory",
			setup: func(t *testing.T) string {
				return t.TempDir()
			},
			want: map[string]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := tt.setup(t)
			got, err := Load(dir, nil)
			if tt.errMsg != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadUnreadableFile(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root can read files without permission bits")
	}
	dir := t.TempDir()
	writeFile(t, dir, "good-key", "value123")

	badPath := filepath.Join(dir, "bad-key")
	require.NoError(t, os.WriteFile(badPath, []byte("secret"), 0o000))
	t.Cleanup(func() { os.Chmod(badPath, 0o644) })

	core, logs := observer.New(zap.WarnLevel)
	got, err := Load(dir, zap.New(core))
	require.NoError(t, err)
	assert.Equal(t, "value123", got["good-key"])
	_, hasBad := got["bad-key"]
	assert.False(t, hasBad, "unreadable file should not appear in result")
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "bad-key", logs.All()[0].ContextMap()["name"])
}

func TestApply(t *testing.T) {
	secrets := map[string]string{
		AnthropicAPIKey: "ak",
		OpenAIAPIKey:    "ok",
		PubMedAPIKey:    "pk",
		PubMedEmail:     "pm@example.com",
		OpenAlexEmail:   "oa@example.com",
	}
	tests := []struct {
		name     string
		provider string
		preset   string
		wantKey  string
	}{
		{"anthropic", "anthropic", "", "ak"},
		{"claude alias", "Claude", "", "ak"},
		{"openai", "openai", "", "ok"},
		{"gemini without key file", "gemini", "", ""},
		{"no provider", "none", "", ""},
		{"configured key wins", "openai", "from-env", "from-env"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := types.DefaultPipelineConfig()
			cfg.AI.Provider = tt.provider
			cfg.AI.APIKey = tt.preset
			cfg.Search.OpenAlexEmail = "set@example.com"

			Apply(&cfg, secrets)

			assert.Equal(t, tt.wantKey, cfg.AI.APIKey)
			assert.Equal(t, "pk", cfg.Search.PubMedAPIKey)
			assert.Equal(t, "pm@example.com", cfg.Search.PubMedEmail)
			assert.Equal(t, "set@example.com", cfg.Search.OpenAlexEmail)
		})
	}
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}
