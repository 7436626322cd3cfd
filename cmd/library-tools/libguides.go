// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/library-tools/libguides"
)

var libguidesCmd = &cobra.Command{
	Use:   "libguides",
	Short: "Search LibGuides databases and research guides",
	Long: `LibGuides searches a Springshare LibGuides site for licensed databases
and research guides. Requires LIBGUIDES_SITE_ID, LIBGUIDES_CLIENT_ID, and
LIBGUIDES_CLIENT_SECRET.`,
}

var libguidesDatabasesCmd = &cobra.Command{
	Use:   "databases [search]",
	Short: "Search the A-Z database list",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		search := strings.Join(args, " ")
		text := libguidesTool().SearchDatabases(cmd.Context(), libguides.DatabaseQuery{
			Search: search,
			Limit:  limit,
		})
		return emit(cmd, "search_databases", map[string]any{"search": search}, text)
	},
}

var libguidesGuidesCmd = &cobra.Command{
	Use:   "guides [search]",
	Short: "Search research guides, or fetch one with --id",
	RunE: func(cmd *cobra.Command, args []string) error {
		guideID, _ := cmd.Flags().GetInt("id")
		limit, _ := cmd.Flags().GetInt("limit")

		search := strings.Join(args, " ")
		text := libguidesTool().SearchGuides(cmd.Context(), libguides.GuideQuery{
			Search:      search,
			GuideID:     guideID,
			Limit:       limit,
			ExpandPages: true,
		})
		return emit(cmd, "search_guides", map[string]any{"search": search}, text)
	},
}

var libguidesToolInstance *libguides.Tool

func libguidesTool() *libguides.Tool {
	if libguidesToolInstance == nil {
		libguidesToolInstance = libguides.NewTool(cfg.LibGuides, cfg.HTTP)
	}
	return libguidesToolInstance
}

func init() {
	libguidesDatabasesCmd.Flags().Int("limit", 0, "maximum results (1-100)")
	libguidesGuidesCmd.Flags().Int("id", 0, "fetch a specific guide by ID")
	libguidesGuidesCmd.Flags().Int("limit", 0, "maximum results (1-100)")

	libguidesCmd.AddCommand(libguidesDatabasesCmd)
	libguidesCmd.AddCommand(libguidesGuidesCmd)

	rootCmd.AddCommand(libguidesCmd)
}
