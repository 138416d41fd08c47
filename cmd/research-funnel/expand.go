// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/research-funnel/internal/expand"
	"github.com/pdiddy/research-funnel/internal/funnel"
	"github.com/pdiddy/research-funnel/pkg/types"
)

var expandCmd = &cobra.Command{
	Use:   "expand <query>",
	Short: "Show the expanded terminology and query list for a query",
	Long: `Expand prints the categorized search terms and the fan-out query list the
research command would use, without contacting any source.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		if noAI, _ := cmd.Flags().GetBool("no-ai"); noAI {
			cfg.AI.Provider = "none"
		}
		f, err := newFunnel(cmd.Context(), cfg)
		if err != nil {
			return err
		}

		req := researchRequest(cmd, args)
		dc, unknown := funnel.DomainContext(req)
		for _, name := range unknown {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: unknown domain %q ignored\n", name)
		}
		terms, queries := f.Plan(cmd.Context(), req.Query, dc)
		return writePlan(cmd.OutOrStdout(), plan{
			Field:       expand.DetectField(req.Query),
			Terminology: terms,
			Queries:     queries,
		})
	},
}

func init() {
	expandCmd.Flags().StringSlice("domain", nil, "primary research domains")
	expandCmd.Flags().StringSlice("exclude-domain", nil, "research domains to exclude")
	expandCmd.Flags().StringSlice("focus", nil, "focus keywords added to the search terms")
	expandCmd.Flags().Bool("no-ai", false, "use the static expansion tables only")

	rootCmd.AddCommand(expandCmd)
}

// plan is the printed form of an expansion.
type plan struct {
	Field       string                    `yaml:"field"`
	Terminology types.ExpandedTerminology `yaml:"terminology"`
	Queries     []string                  `yaml:"queries"`
}

func writePlan(w io.Writer, p plan) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(p); err != nil {
		return fmt.Errorf("encoding plan: %w", err)
	}
	return enc.Close()
}

// joinOrNone renders a list for one-line output.
func joinOrNone(items []string) string {
	if len(items) == 0 {
		return "none"
	}
	return strings.Join(items, ", ")
}
