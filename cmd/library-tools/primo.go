// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/library-tools/primo"
)

var primoCmd = &cobra.Command{
	Use:   "primo [query]",
	Short: "Search the Primo discovery catalog",
	Long: `Primo searches a library's Ex Libris Primo discovery catalog for books,
journals, articles, and other resources. Requires PRIMO_API_KEY, PRIMO_VID,
and PRIMO_SCOPE.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		field, _ := cmd.Flags().GetString("field")
		operator, _ := cmd.Flags().GetString("operator")
		limit, _ := cmd.Flags().GetInt("limit")
		start, _ := cmd.Flags().GetInt("start")
		journalsOnly, _ := cmd.Flags().GetBool("journals-only")

		query := strings.Join(args, " ")
		tool := primo.NewTool(cfg.Primo, cfg.HTTP)
		text := tool.Search(cmd.Context(), primo.SearchRequest{
			Query:        query,
			Field:        field,
			Operator:     operator,
			Limit:        limit,
			Offset:       start,
			JournalsOnly: journalsOnly,
		})
		return emit(cmd, "search_primo", map[string]any{"query": query}, text)
	},
}

func init() {
	primoCmd.Flags().String("field", "", "search field: any, title, creator, subject, isbn, issn")
	primoCmd.Flags().String("operator", "", "match operator: contains or exact")
	primoCmd.Flags().Int("limit", 0, "maximum results per page (1-100)")
	primoCmd.Flags().Int("start", 0, "result offset, 0-based")
	primoCmd.Flags().Bool("journals-only", false, "restrict results to journals")

	rootCmd.AddCommand(primoCmd)
}
