// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pdiddy/research-funnel/internal/search"
	"github.com/pdiddy/research-funnel/internal/synthesis"
)

var validateCmd = &cobra.Command{
	Use:   "validate <report.md|run.yaml>",
	Short: "Check a synthesis report against the report format",
	Long: `Validate checks a synthesis report for the required sections, the Main
synthesis word range, the hypothesis limit, '~' used for approximation and
inline citations missing from References. Use "-" to read from stdin. A
.yaml or .yml file is read as a run file saved by research --output and its
synthesis is checked.

The command exits non-zero when the report has issues.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := readReport(cmd, args[0])
		if err != nil {
			return err
		}
		res := synthesis.Validate(text)
		writeValidation(cmd.OutOrStdout(), res)
		if len(res.Issues) > 0 {
			return fmt.Errorf("report has %d issues", len(res.Issues))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

// readReport returns the report text from stdin, a run file or a Markdown
// file.
func readReport(cmd *cobra.Command, path string) (string, error) {
	if ext := filepath.Ext(path); ext == ".yaml" || ext == ".yml" {
		rf, err := search.ReadRunFile(path)
		if err != nil {
			return "", err
		}
		if rf.Result == nil || rf.Result.Synthesis == "" {
			return "", fmt.Errorf("run file %s has no synthesis", path)
		}
		return rf.Result.Synthesis, nil
	}

	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("reading report: %w", err)
	}
	return string(data), nil
}
