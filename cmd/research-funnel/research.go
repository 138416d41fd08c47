// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/research-funnel/internal/search"
	"github.com/pdiddy/research-funnel/internal/synthesis"
	"github.com/pdiddy/research-funnel/pkg/types"
)

var researchCmd = &cobra.Command{
	Use:   "research <query>",
	Short: "Run the full research funnel for a query",
	Long: `Research expands the query, searches every selected source, removes
duplicates, filters papers by domain and relevance, keeps the best
--max-results per source and writes a synthesis report with validator
diagnostics.

Output is human-readable text by default; --json, --csl and --html select
other formats. --output also saves the request and result as a YAML run file.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runResearch,
}

func init() {
	researchCmd.Flags().StringSlice("sources", nil, "sources to search: arxiv, pubmed, openalex (default from config)")
	researchCmd.Flags().Int("max-results", 0, "papers kept per source after ranking (default from config)")
	researchCmd.Flags().StringSlice("domain", nil, "primary research domains")
	researchCmd.Flags().StringSlice("exclude-domain", nil, "research domains to exclude")
	researchCmd.Flags().StringSlice("focus", nil, "focus keywords added to the search terms")
	researchCmd.Flags().Bool("json", false, "print the full result as JSON")
	researchCmd.Flags().Bool("csl", false, "print the ranked papers as CSL-YAML")
	researchCmd.Flags().Bool("html", false, "print the synthesis report as HTML")
	researchCmd.Flags().String("output", "", "save the run to a YAML file")
	researchCmd.Flags().Bool("no-ai", false, "run every stage on its rule-based path")
	researchCmd.Flags().Bool("no-synthesis", false, "skip the synthesis report")

	rootCmd.AddCommand(researchCmd)
}

// researchRequest builds the request from the command's args and flags.
// Flags the command does not define read as zero values.
func researchRequest(cmd *cobra.Command, args []string) types.ResearchRequest {
	sources, _ := cmd.Flags().GetStringSlice("sources")
	maxResults, _ := cmd.Flags().GetInt("max-results")
	primary, _ := cmd.Flags().GetStringSlice("domain")
	exclude, _ := cmd.Flags().GetStringSlice("exclude-domain")
	focus, _ := cmd.Flags().GetStringSlice("focus")
	skip, _ := cmd.Flags().GetBool("no-synthesis")
	return types.ResearchRequest{
		Query:          strings.Join(args, " "),
		MaxResults:     maxResults,
		Sources:        sources,
		PrimaryDomains: primary,
		ExcludeDomains: exclude,
		FocusKeywords:  focus,
		SkipSynthesis:  skip,
	}
}

func runResearch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := loadConfig()
	if noAI, _ := cmd.Flags().GetBool("no-ai"); noAI {
		cfg.AI.Provider = "none"
	}

	f, err := newFunnel(ctx, cfg)
	if err != nil {
		return err
	}
	req := researchRequest(cmd, args)
	res, err := f.Research(ctx, req)
	if err != nil {
		return err
	}

	if path, _ := cmd.Flags().GetString("output"); path != "" {
		if err := search.WriteRunFile(path, req, res); err != nil {
			return err
		}
		fmt.Fprintln(os.Stderr, "Saved run to", path)
	}

	out := cmd.OutOrStdout()
	asJSON, _ := cmd.Flags().GetBool("json")
	asCSL, _ := cmd.Flags().GetBool("csl")
	asHTML, _ := cmd.Flags().GetBool("html")
	switch {
	case asJSON:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	case asCSL:
		return search.FormatCSL(res.Ranked, out)
	case asHTML:
		html, err := synthesis.RenderHTML(res.Synthesis)
		if err != nil {
			return err
		}
		_, err = io.WriteString(out, html)
		return err
	default:
		writeResult(out, res)
		return nil
	}
}

// writeResult prints a run for reading in a terminal.
func writeResult(w io.Writer, res *types.ResearchResult) {
	fmt.Fprintf(w, "Query: %s\n", res.Query)
	fmt.Fprintf(w, "Queries: %d across %d sources; %d unique papers, %d duplicates removed\n",
		len(res.Queries), len(res.Sources), res.UniquePapers, res.DuplicatesRemoved)
	if res.Relevance != nil {
		fmt.Fprintf(w, "Relevance: %d of %d papers kept\n", res.Relevance.FilteredCount, res.Relevance.OriginalCount)
	}

	for _, set := range res.Ranked {
		fmt.Fprintf(w, "\n=== %s (%d) ===\n", strings.ToUpper(string(set.Source)), len(set.Entries))
		if len(set.Entries) == 0 {
			fmt.Fprintln(w, types.NoPapersFound)
			continue
		}
		for i, e := range set.Entries {
			fmt.Fprintf(w, "%2d. [%.1f] %s (%s)\n", i+1, e.Score, e.Title, e.Year)
		}
	}

	if res.Synthesis != "" {
		fmt.Fprintf(w, "\n%s\n", res.Synthesis)
	}
	if v := res.Validation; v != nil {
		writeValidation(w, *v)
	}
	if len(res.Notes) > 0 {
		fmt.Fprintln(w, "\nNotes:")
		for _, n := range res.Notes {
			fmt.Fprintf(w, "  - %s\n", n)
		}
	}
	fmt.Fprintf(w, "\nBudget: %d/%d calls, %.1fs\n", res.Budget.Calls, res.Budget.MaxCalls, res.Budget.ElapsedSeconds)
}

func writeValidation(w io.Writer, v types.ValidationResult) {
	fmt.Fprintf(w, "\nValidation: main synthesis %d words (target %d–%d)\n", v.WordCount, v.TargetRange[0], v.TargetRange[1])
	if len(v.Issues) == 0 {
		fmt.Fprintln(w, "  no issues")
	}
	for _, issue := range v.Issues {
		fmt.Fprintf(w, "  issue: %s\n", issue)
	}
	for _, note := range v.Notes {
		fmt.Fprintf(w, "  note: %s\n", note)
	}
}
