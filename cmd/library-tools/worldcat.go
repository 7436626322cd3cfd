// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/library-tools/worldcat"
)

var worldcatCmd = &cobra.Command{
	Use:   "worldcat",
	Short: "Query the WorldCat union catalog",
	Long: `WorldCat queries OCLC's union catalog for bibliographic records,
classification, and holdings. Requires OCLC_CLIENT_ID, OCLC_CLIENT_SECRET,
and OCLC_INSTITUTION_ID.`,
}

var worldcatLookupCmd = &cobra.Command{
	Use:   "lookup",
	Short: "Look up one book by ISBN, DOI, or title and author",
	RunE: func(cmd *cobra.Command, args []string) error {
		isbn, _ := cmd.Flags().GetString("isbn")
		doi, _ := cmd.Flags().GetString("doi")
		title, _ := cmd.Flags().GetString("title")
		author, _ := cmd.Flags().GetString("author")
		year, _ := cmd.Flags().GetInt("year")
		holdings, _ := cmd.Flags().GetBool("holdings")

		text := worldcatTool().LookupBook(cmd.Context(), worldcat.LookupRequest{
			ISBN:          isbn,
			DOI:           doi,
			Title:         title,
			Author:        author,
			Year:          year,
			FetchHoldings: holdings,
		})
		return emit(cmd, "lookup_worldcat_isbn", map[string]any{
			"isbn": isbn, "doi": doi, "title": title,
		}, text)
	},
}

var worldcatSearchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search books by keyword or subject",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		yearFrom, _ := cmd.Flags().GetInt("year-from")
		yearTo, _ := cmd.Flags().GetInt("year-to")
		language, _ := cmd.Flags().GetString("language")
		limit, _ := cmd.Flags().GetInt("limit")
		offset, _ := cmd.Flags().GetInt("offset")

		query := strings.Join(args, " ")
		text := worldcatTool().SearchBooks(cmd.Context(), worldcat.SearchRequest{
			Query:    query,
			YearFrom: yearFrom,
			YearTo:   yearTo,
			Language: language,
			Limit:    limit,
			Offset:   offset,
		})
		return emit(cmd, "search_worldcat_books", map[string]any{"query": query}, text)
	},
}

var worldcatClassifyCmd = &cobra.Command{
	Use:   "classify [oclc-number]",
	Short: "Get LC and Dewey classification for an OCLC number",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text := worldcatTool().Classification(cmd.Context(), args[0])
		return emit(cmd, "get_worldcat_classification", map[string]any{"oclc_number": args[0]}, text)
	},
}

var worldcatRecordCmd = &cobra.Command{
	Use:   "record [oclc-number]",
	Short: "Get the complete bibliographic record for an OCLC number",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text := worldcatTool().FullBib(cmd.Context(), args[0])
		return emit(cmd, "get_worldcat_full_record", map[string]any{"oclc_number": args[0]}, text)
	},
}

// worldcatToolInstance is shared across a single CLI invocation so the
// OAuth token is fetched once.
var worldcatToolInstance *worldcat.Tool

func worldcatTool() *worldcat.Tool {
	if worldcatToolInstance == nil {
		worldcatToolInstance = worldcat.NewTool(cfg.WorldCat, cfg.HTTP)
	}
	return worldcatToolInstance
}

func init() {
	worldcatLookupCmd.Flags().String("isbn", "", "ISBN to verify or enrich with all variants")
	worldcatLookupCmd.Flags().String("doi", "", "DOI of the book")
	worldcatLookupCmd.Flags().String("title", "", "book title")
	worldcatLookupCmd.Flags().String("author", "", "author name")
	worldcatLookupCmd.Flags().Int("year", 0, "publication year, exact match")
	worldcatLookupCmd.Flags().Bool("holdings", false, "include library holdings for the match")

	worldcatSearchCmd.Flags().Int("year-from", 0, "filter by start year")
	worldcatSearchCmd.Flags().Int("year-to", 0, "filter by end year")
	worldcatSearchCmd.Flags().String("language", "", "ISO 639-2 language code, e.g. eng")
	worldcatSearchCmd.Flags().Int("limit", 0, "maximum results (1-50)")
	worldcatSearchCmd.Flags().Int("offset", 0, "result offset, 1-based")

	worldcatCmd.AddCommand(worldcatLookupCmd)
	worldcatCmd.AddCommand(worldcatSearchCmd)
	worldcatCmd.AddCommand(worldcatClassifyCmd)
	worldcatCmd.AddCommand(worldcatRecordCmd)

	rootCmd.AddCommand(worldcatCmd)
}
