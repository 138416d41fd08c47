// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/pdiddy/research-funnel/internal/domain"
)

var domainsCmd = &cobra.Command{
	Use:   "domains [arxiv-category...]",
	Short: "List research domains or resolve arXiv categories",
	Long: `Domains lists the research domains accepted by --domain and
--exclude-domain with their arXiv archives. Given arXiv categories such as
cs.LG or quant-ph, it prints the domain each one maps to.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		if len(args) > 0 {
			for _, cat := range args {
				d, ok := domain.FromArxivCategory(cat)
				if !ok {
					fmt.Fprintf(w, "%s\t(unknown)\n", cat)
					continue
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", cat, d, d.Label())
			}
			return w.Flush()
		}

		fmt.Fprintln(w, "NAME\tLABEL\tARXIV\tDESCRIPTION")
		for _, info := range domain.All() {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", info.Name, info.Label, joinOrNone(info.ArxivArchives), info.Description)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(domainsCmd)
}
