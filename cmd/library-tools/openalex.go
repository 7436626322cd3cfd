// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/library-tools/openalex"
)

var openalexCmd = &cobra.Command{
	Use:   "openalex",
	Short: "Search OpenAlex for works, authors, and journals",
	Long: `OpenAlex queries the OpenAlex scholarly metadata API. No credentials are
required; set OPENALEX_EMAIL to join the polite pool.`,
}

var openalexWorksCmd = &cobra.Command{
	Use:   "works [query]",
	Short: "Search publications by topic or keywords",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		page, _ := cmd.Flags().GetInt("page")
		yearFrom, _ := cmd.Flags().GetInt("year-from")
		oaOnly, _ := cmd.Flags().GetBool("open-access")

		query := strings.Join(args, " ")
		text := openalexTool().SearchWorks(cmd.Context(), openalex.WorksQuery{
			Query:          query,
			Limit:          limit,
			Page:           page,
			YearFrom:       yearFrom,
			OpenAccessOnly: oaOnly,
		})
		return emit(cmd, "search_works", map[string]any{"query": query}, text)
	},
}

var openalexAuthorsCmd = &cobra.Command{
	Use:   "authors [name]",
	Short: "Search researchers by name",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		institutionID, _ := cmd.Flags().GetString("institution")
		limit, _ := cmd.Flags().GetInt("limit")
		page, _ := cmd.Flags().GetInt("page")

		name := strings.Join(args, " ")
		text := openalexTool().SearchAuthors(cmd.Context(), openalex.AuthorsQuery{
			Name:          name,
			InstitutionID: institutionID,
			Limit:         limit,
			Page:          page,
		})
		return emit(cmd, "search_authors", map[string]any{"name": name}, text)
	},
}

var openalexAuthorWorksCmd = &cobra.Command{
	Use:   "author-works [author-id]",
	Short: "List publications by an OpenAlex author ID",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		page, _ := cmd.Flags().GetInt("page")

		text := openalexTool().AuthorWorks(cmd.Context(), args[0], limit, page)
		return emit(cmd, "get_author_works", map[string]any{"author_id": args[0]}, text)
	},
}

var openalexJournalsCmd = &cobra.Command{
	Use:   "journals [name]",
	Short: "Search academic journals by name",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		page, _ := cmd.Flags().GetInt("page")

		name := strings.Join(args, " ")
		text := openalexTool().SearchJournals(cmd.Context(), name, limit, page)
		return emit(cmd, "search_journals", map[string]any{"name": name}, text)
	},
}

var openalexWorkCmd = &cobra.Command{
	Use:   "work [work-id]",
	Short: "Fetch one work by its OpenAlex ID",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text := openalexTool().GetWork(cmd.Context(), args[0])
		return emit(cmd, "get_work", map[string]any{"work_id": args[0]}, text)
	},
}

func openalexTool() *openalex.Tool {
	return openalex.NewTool(cfg.OpenAlex, cfg.HTTP)
}

func init() {
	for _, c := range []*cobra.Command{openalexWorksCmd, openalexAuthorsCmd, openalexAuthorWorksCmd, openalexJournalsCmd} {
		c.Flags().Int("limit", 0, "maximum results per page")
		c.Flags().Int("page", 0, "page number, 1-based")
	}
	openalexWorksCmd.Flags().Int("year-from", 0, "only works published from this year onwards")
	openalexWorksCmd.Flags().Bool("open-access", false, "return only open access works")
	openalexAuthorsCmd.Flags().String("institution", "", "OpenAlex institution ID to filter by")

	openalexCmd.AddCommand(openalexWorksCmd)
	openalexCmd.AddCommand(openalexAuthorsCmd)
	openalexCmd.AddCommand(openalexAuthorWorksCmd)
	openalexCmd.AddCommand(openalexJournalsCmd)
	openalexCmd.AddCommand(openalexWorkCmd)

	rootCmd.AddCommand(openalexCmd)
}
