// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/library-tools/repository"
)

var repositoryCmd = &cobra.Command{
	Use:   "repository",
	Short: "Search the institutional repository",
	Long: `Repository searches a bePress Digital Commons institutional repository
for theses, dissertations, and faculty works. Requires REPOSITORY_BASE_URL
and REPOSITORY_API_KEY.`,
}

var repositorySearchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search works by keyword",
	RunE: func(cmd *cobra.Command, args []string) error {
		collection, _ := cmd.Flags().GetString("collection")
		year, _ := cmd.Flags().GetString("year")
		limit, _ := cmd.Flags().GetInt("limit")
		start, _ := cmd.Flags().GetInt("start")

		query := strings.Join(args, " ")
		text := repositoryTool().Search(cmd.Context(), repository.SearchRequest{
			Query:      query,
			Collection: collection,
			Year:       year,
			Limit:      limit,
			Start:      start,
		})
		return emit(cmd, "search_repository", map[string]any{"query": query}, text)
	},
}

var repositoryLatestCmd = &cobra.Command{
	Use:   "latest",
	Short: "List the most recently added works",
	RunE: func(cmd *cobra.Command, args []string) error {
		collection, _ := cmd.Flags().GetString("collection")
		limit, _ := cmd.Flags().GetInt("limit")
		start, _ := cmd.Flags().GetInt("start")

		text := repositoryTool().Latest(cmd.Context(), collection, limit, start)
		return emit(cmd, "get_latest_repository_works", map[string]any{"collection": collection}, text)
	},
}

var repositoryDetailsCmd = &cobra.Command{
	Use:   "details [item-url]",
	Short: "Show the full record for a work by its URL",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text := repositoryTool().Details(cmd.Context(), args[0])
		return emit(cmd, "get_repository_work_details", map[string]any{"item_url": args[0]}, text)
	},
}

func repositoryTool() *repository.Tool {
	return repository.NewTool(cfg.Repository, cfg.HTTP)
}

func init() {
	for _, c := range []*cobra.Command{repositorySearchCmd, repositoryLatestCmd} {
		c.Flags().String("collection", "", "collection code to filter by")
		c.Flags().Int("limit", 0, "maximum results (1-1000)")
		c.Flags().Int("start", 0, "result offset, 0-based")
	}
	repositorySearchCmd.Flags().String("year", "", "publication year to filter by")

	repositoryCmd.AddCommand(repositorySearchCmd)
	repositoryCmd.AddCommand(repositoryLatestCmd)
	repositoryCmd.AddCommand(repositoryDetailsCmd)

	rootCmd.AddCommand(repositoryCmd)
}
