// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package agentsdk exposes the service tools as Anthropic tool-use
// definitions: one named tool with a JSON schema and a text-returning
// handler per formatter operation. Importing this package is optional; no
// other package in the module depends on it.
package agentsdk

import (
	"context"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/packages/param"
	"github.com/anthropics/anthropic-sdk-go/shared/constant"

	"github.com/pdiddy/library-tools/config"
	"github.com/pdiddy/library-tools/libguides"
	"github.com/pdiddy/library-tools/openalex"
	"github.com/pdiddy/library-tools/primo"
	"github.com/pdiddy/library-tools/repository"
	"github.com/pdiddy/library-tools/worldcat"
)

// Tool is one agent-callable operation. Handle always returns text; errors
// are rendered into the text by the underlying service tool.
type Tool struct {
	Name        string
	Description string
	Properties  map[string]any
	Required    []string
	Handle      func(ctx context.Context, args map[string]any) string
}

// Param converts the tool into the SDK's tool-use parameter form.
func (t Tool) Param() anthropic.ToolUnionParam {
	schema := anthropic.ToolInputSchemaParam{
		Type:       constant.ValueOf[constant.Object]().Default(),
		Properties: t.Properties,
	}
	if len(t.Required) > 0 {
		schema.ExtraFields = map[string]any{"required": t.Required}
	}
	union := anthropic.ToolUnionParamOfTool(schema, t.Name)
	union.OfTool.Description = param.NewOpt(t.Description)
	return union
}

// Toolset wires every service tool behind the agent-facing definitions.
type Toolset struct {
	primo      *primo.Tool
	openalex   *openalex.Tool
	worldcat   *worldcat.Tool
	libguides  *libguides.Tool
	repository *repository.Tool
}

// NewToolset builds the full toolset from resolved configuration.
func NewToolset(cfg *config.Config) *Toolset {
	return &Toolset{
		primo:      primo.NewTool(cfg.Primo, cfg.HTTP),
		openalex:   openalex.NewTool(cfg.OpenAlex, cfg.HTTP),
		worldcat:   worldcat.NewTool(cfg.WorldCat, cfg.HTTP),
		libguides:  libguides.NewTool(cfg.LibGuides, cfg.HTTP),
		repository: repository.NewTool(cfg.Repository, cfg.HTTP),
	}
}

// Call dispatches an invocation by tool name. The second return reports
// whether the name is known.
func (ts *Toolset) Call(ctx context.Context, name string, args map[string]any) (string, bool) {
	for _, tool := range ts.Tools() {
		if tool.Name == name {
			return tool.Handle(ctx, args), true
		}
	}
	return "", false
}

// Params returns every tool in the SDK's parameter form, ready to attach
// to a message request.
func (ts *Toolset) Params() []anthropic.ToolUnionParam {
	tools := ts.Tools()
	params := make([]anthropic.ToolUnionParam, len(tools))
	for i, tool := range tools {
		params[i] = tool.Param()
	}
	return params
}

// Tools returns the full set of agent-callable tool definitions.
func (ts *Toolset) Tools() []Tool {
	return []Tool{
		{
			Name:        "search_primo",
			Description: "Search a library catalog using Ex Libris Primo to find books, journals, articles, and other resources",
			Properties: map[string]any{
				"query":         prop("string", "Search terms"),
				"field":         prop("string", "Search field: any, title, creator, subject, isbn, issn"),
				"operator":      prop("string", "Match operator: contains or exact"),
				"limit":         prop("integer", "Maximum results per page (1-100)"),
				"start":         prop("integer", "Result offset, 0-based"),
				"journals_only": prop("boolean", "Restrict results to journals"),
			},
			Required: []string{"query"},
			Handle: func(ctx context.Context, args map[string]any) string {
				return ts.primo.Search(ctx, primo.SearchRequest{
					Query:        argString(args, "query"),
					Field:        argString(args, "field"),
					Operator:     argString(args, "operator"),
					Limit:        argInt(args, "limit"),
					Offset:       argInt(args, "start"),
					JournalsOnly: argBool(args, "journals_only"),
				})
			},
		},
		{
			Name:        "search_works",
			Description: "Search for academic publications using OpenAlex to find research papers, articles, and scholarly works",
			Properties: map[string]any{
				"query":            prop("string", "Research topic or keywords"),
				"limit":            prop("integer", "Maximum results per page (1-100)"),
				"page":             prop("integer", "Page number, 1-based"),
				"year_from":        prop("integer", "Only works published from this year onwards"),
				"open_access_only": prop("boolean", "Return only open access works"),
			},
			Required: []string{"query"},
			Handle: func(ctx context.Context, args map[string]any) string {
				return ts.openalex.SearchWorks(ctx, openalex.WorksQuery{
					Query:          argString(args, "query"),
					Limit:          argInt(args, "limit"),
					Page:           argInt(args, "page"),
					YearFrom:       argInt(args, "year_from"),
					OpenAccessOnly: argBool(args, "open_access_only"),
				})
			},
		},
		{
			Name:        "search_authors",
			Description: "Search for researchers and academics using OpenAlex by name or institution",
			Properties: map[string]any{
				"name":           prop("string", "Researcher name, full or partial"),
				"institution_id": prop("string", "OpenAlex institution ID to filter by"),
				"limit":          prop("integer", "Maximum results per page (1-100)"),
				"page":           prop("integer", "Page number, 1-based"),
			},
			Required: []string{"name"},
			Handle: func(ctx context.Context, args map[string]any) string {
				return ts.openalex.SearchAuthors(ctx, openalex.AuthorsQuery{
					Name:          argString(args, "name"),
					InstitutionID: argString(args, "institution_id"),
					Limit:         argInt(args, "limit"),
					Page:          argInt(args, "page"),
				})
			},
		},
		{
			Name:        "get_author_works",
			Description: "Get publications by a specific researcher using their OpenAlex author ID",
			Properties: map[string]any{
				"author_id": prop("string", "OpenAlex author ID, bare or as a URL"),
				"limit":     prop("integer", "Maximum results per page (1-200)"),
				"page":      prop("integer", "Page number, 1-based"),
			},
			Required: []string{"author_id"},
			Handle: func(ctx context.Context, args map[string]any) string {
				return ts.openalex.AuthorWorks(ctx, argString(args, "author_id"), argInt(args, "limit"), argInt(args, "page"))
			},
		},
		{
			Name:        "search_journals",
			Description: "Search for academic journals and periodicals using OpenAlex",
			Properties: map[string]any{
				"name":  prop("string", "Journal name or keywords"),
				"limit": prop("integer", "Maximum results per page (1-100)"),
				"page":  prop("integer", "Page number, 1-based"),
			},
			Required: []string{"name"},
			Handle: func(ctx context.Context, args map[string]any) string {
				return ts.openalex.SearchJournals(ctx, argString(args, "name"), argInt(args, "limit"), argInt(args, "page"))
			},
		},
		{
			Name:        "search_databases",
			Description: "Search library databases using the LibGuides A-Z list to find available databases by name or subject",
			Properties: map[string]any{
				"search": prop("string", "Database name or topic"),
				"limit":  prop("integer", "Maximum results (1-100)"),
			},
			Handle: func(ctx context.Context, args map[string]any) string {
				return ts.libguides.SearchDatabases(ctx, libguides.DatabaseQuery{
					Search: argString(args, "search"),
					Limit:  argInt(args, "limit"),
				})
			},
		},
		{
			Name:        "search_guides",
			Description: "Search LibGuides to find research guides for subjects, courses, and topics",
			Properties: map[string]any{
				"search":   prop("string", "Subject, course, or topic"),
				"guide_id": prop("integer", "Specific guide ID to fetch"),
				"limit":    prop("integer", "Maximum results (1-100)"),
			},
			Handle: func(ctx context.Context, args map[string]any) string {
				return ts.libguides.SearchGuides(ctx, libguides.GuideQuery{
					Search:      argString(args, "search"),
					GuideID:     argInt(args, "guide_id"),
					Limit:       argInt(args, "limit"),
					ExpandPages: true,
				})
			},
		},
		{
			Name:        "search_repository",
			Description: "Search an institutional repository (bePress Digital Commons) for theses, dissertations, and scholarly works",
			Properties: map[string]any{
				"query":      prop("string", "Keywords for title and abstract search"),
				"collection": prop("string", "Collection code to filter by"),
				"year":       prop("string", "Publication year to filter by"),
				"limit":      prop("integer", "Maximum results (1-1000)"),
				"start":      prop("integer", "Result offset, 0-based"),
			},
			Handle: func(ctx context.Context, args map[string]any) string {
				return ts.repository.Search(ctx, repository.SearchRequest{
					Query:      argString(args, "query"),
					Collection: argString(args, "collection"),
					Year:       argString(args, "year"),
					Limit:      argInt(args, "limit"),
					Start:      argInt(args, "start"),
				})
			},
		},
		{
			Name:        "get_latest_repository_works",
			Description: "Get the most recently added works from the institutional repository",
			Properties: map[string]any{
				"collection": prop("string", "Collection code to filter by"),
				"limit":      prop("integer", "Maximum results (1-1000)"),
				"start":      prop("integer", "Result offset, 0-based"),
			},
			Handle: func(ctx context.Context, args map[string]any) string {
				return ts.repository.Latest(ctx, argString(args, "collection"), argInt(args, "limit"), argInt(args, "start"))
			},
		},
		{
			Name:        "get_repository_work_details",
			Description: "Get detailed information about a specific work in the repository using its URL",
			Properties: map[string]any{
				"item_url": prop("string", "Full URL of the repository work"),
			},
			Required: []string{"item_url"},
			Handle: func(ctx context.Context, args map[string]any) string {
				return ts.repository.Details(ctx, argString(args, "item_url"))
			},
		},
		{
			Name:        "lookup_worldcat_isbn",
			Description: "Look up books in WorldCat to find ISBNs and bibliographic data using DOI, title, author, or ISBN",
			Properties: map[string]any{
				"doi":    prop("string", "DOI of the book"),
				"title":  prop("string", "Book title"),
				"author": prop("string", "Author name"),
				"year":   prop("integer", "Publication year, exact match"),
				"isbn":   prop("string", "ISBN to verify or enrich with all variants"),
			},
			Handle: func(ctx context.Context, args map[string]any) string {
				return ts.worldcat.LookupBook(ctx, worldcat.LookupRequest{
					DOI:    argString(args, "doi"),
					Title:  argString(args, "title"),
					Author: argString(args, "author"),
					Year:   argInt(args, "year"),
					ISBN:   argString(args, "isbn"),
				})
			},
		},
		{
			Name:        "search_worldcat_books",
			Description: "Search WorldCat for books by keyword or subject with optional filters for year and language",
			Properties: map[string]any{
				"query":     prop("string", "Keyword or subject search"),
				"year_from": prop("integer", "Filter by start year"),
				"year_to":   prop("integer", "Filter by end year"),
				"language":  prop("string", "ISO 639-2 language code, e.g. eng"),
				"limit":     prop("integer", "Maximum results (1-50)"),
				"offset":    prop("integer", "Result offset, 1-based"),
			},
			Required: []string{"query"},
			Handle: func(ctx context.Context, args map[string]any) string {
				return ts.worldcat.SearchBooks(ctx, worldcat.SearchRequest{
					Query:    argString(args, "query"),
					YearFrom: argInt(args, "year_from"),
					YearTo:   argInt(args, "year_to"),
					Language: argString(args, "language"),
					Limit:    argInt(args, "limit"),
					Offset:   argInt(args, "offset"),
				})
			},
		},
		{
			Name:        "get_worldcat_classification",
			Description: "Get Library of Congress and Dewey Decimal classification for a book using its OCLC number",
			Properties: map[string]any{
				"oclc_number": prop("string", "OCLC number from another WorldCat tool"),
			},
			Required: []string{"oclc_number"},
			Handle: func(ctx context.Context, args map[string]any) string {
				return ts.worldcat.Classification(ctx, argString(args, "oclc_number"))
			},
		},
		{
			Name:        "get_worldcat_full_record",
			Description: "Get a complete bibliographic record with subjects, genres, and classification using an OCLC number",
			Properties: map[string]any{
				"oclc_number": prop("string", "OCLC number from another WorldCat tool"),
			},
			Required: []string{"oclc_number"},
			Handle: func(ctx context.Context, args map[string]any) string {
				return ts.worldcat.FullBib(ctx, argString(args, "oclc_number"))
			},
		},
	}
}

func prop(typ, description string) map[string]any {
	return map[string]any{"type": typ, "description": description}
}

func argString(args map[string]any, key string) string {
	if v, ok := args[key].(string); ok {
		return v
	}
	return ""
}

// argInt reads an integer argument. Decoded JSON numbers arrive as
// float64.
func argInt(args map[string]any, key string) int {
	switch v := args[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	}
	return 0
}

func argBool(args map[string]any, key string) bool {
	if v, ok := args[key].(bool); ok {
		return v
	}
	return false
}
