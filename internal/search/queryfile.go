// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"fmt"
	"os"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/research-funnel/pkg/types"
)

// RunFile is the on-disk record of one funnel run. It can be reloaded to
// inspect or re-render a run without re-querying the sources.
type RunFile struct {
	Request   types.ResearchRequest `yaml:"request"`
	Result    *types.ResearchResult `yaml:"result"`
	Timestamp time.Time             `yaml:"timestamp"`
}

// WriteRunFile saves the request and its result to a YAML file.
func WriteRunFile(path string, req types.ResearchRequest, res *types.ResearchResult) error {
	rf := RunFile{
		Request:   req,
		Result:    res,
		Timestamp: time.Now(),
	}
	data, err := yaml.Marshal(&rf)
	if err != nil {
		return fmt.Errorf("marshaling run file: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadRunFile loads a previously saved run file from disk.
func ReadRunFile(path string) (*RunFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading run file: %w", err)
	}
	var rf RunFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("parsing run file: %w", err)
	}
	return &rf, nil
}
