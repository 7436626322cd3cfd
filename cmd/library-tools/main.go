// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the library-tools CLI. Each service
// is a subcommand group; every leaf command prints the same text an LLM
// agent would receive from the corresponding tool.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/library-tools/config"
)

// version is set at build time via ldflags.
var version = "dev"

// cfg is resolved once before any subcommand runs.
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "library-tools",
	Short: "Query library and scholarly APIs as an LLM agent would",
	Long: `library-tools queries library and scholarly APIs and prints results as
readable text. The same formatters back the agent tool definitions, so the
CLI shows exactly what an LLM agent sees.

Services are subcommand groups: primo (discovery catalog), openalex
(scholarly metadata), worldcat (union catalog), libguides (database and
guide directory), and repository (institutional repository).

Credentials come from the environment, a .env file in the working
directory, or key files under .secrets/.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return err
		}
		cfg = c
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("save", "", "append the query and response to a YAML record file")
}

// emit prints the tool response and records it when --save is set.
func emit(cmd *cobra.Command, tool string, params map[string]any, text string) error {
	fmt.Println(text)

	savePath, _ := cmd.Flags().GetString("save")
	if savePath == "" {
		return nil
	}
	return saveRecord(savePath, tool, params, text)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
