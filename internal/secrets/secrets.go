// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads API keys and contact details from a directory of
// plain-text files. Each file holds one secret: the filename is the key name
// and the trimmed file contents are the value.
//
// Recognized key files: anthropic-api-key, openai-api-key, gemini-api-key,
// pubmed-api-key, pubmed-email, openalex-email.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/research-funnel/pkg/types"
)

// Key file names.
const (
	AnthropicAPIKey = "anthropic-api-key"
	OpenAIAPIKey    = "openai-api-key"
	GeminiAPIKey    = "gemini-api-key"
	PubMedAPIKey    = "pubmed-api-key"
	PubMedEmail     = "pubmed-email"
	OpenAlexEmail   = "openalex-email"
)

// providerKeys maps a language provider to its key file.
var providerKeys = map[string]string{
	"anthropic": AnthropicAPIKey,
	"claude":    AnthropicAPIKey,
	"openai":    OpenAIAPIKey,
	"gemini":    GeminiAPIKey,
}

// Load reads all files in dir and returns a map of filename to trimmed
// contents. A missing directory is not an error; Load returns an empty map.
// Unreadable files are logged and skipped.
func Load(dir string, logger *zap.Logger) (map[string]string, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			logger.Warn("could not read secret", zap.String("name", name), zap.Error(err))
			continue
		}

		value := strings.TrimSpace(string(data))
		if value != "" {
			secrets[name] = value
		}
	}

	return secrets, nil
}

// Apply copies secrets into cfg where the configuration leaves the field
// empty. Values already set by flags, environment or config file win.
func Apply(cfg *types.PipelineConfig, secrets map[string]string) {
	setIfEmpty(&cfg.Search.PubMedAPIKey, secrets[PubMedAPIKey])
	setIfEmpty(&cfg.Search.PubMedEmail, secrets[PubMedEmail])
	setIfEmpty(&cfg.Search.OpenAlexEmail, secrets[OpenAlexEmail])

	provider := strings.ToLower(strings.TrimSpace(cfg.AI.Provider))
	if key, ok := providerKeys[provider]; ok {
		setIfEmpty(&cfg.AI.APIKey, secrets[key])
	}
}

func setIfEmpty(dst *string, v string) {
	if *dst == "" {
		*dst = v
	}
}
