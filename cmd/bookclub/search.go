package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/bookclub/internal/domain"
	"github.com/kailas-cloud/bookclub/internal/domain/category"
	"github.com/kailas-cloud/bookclub/internal/domain/search/mode"
	ucsearch "github.com/kailas-cloud/bookclub/internal/usecase/search"
)

type searchOptions struct {
	category string
	author   string
	mode     string
	limit    int
	json     bool
}

func newSearchCmd(root *rootOptions) *cobra.Command {
	opts := &searchOptions{}

	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Retrieve reviews without generating an answer",
		Long: `Runs text, vector or hybrid retrieval with search.offline_result_cap
and prints the hits. No language model is called.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := mode.Parse(opts.mode)
			if err != nil {
				return fmt.Errorf("%w: %w", domain.ErrInvalidRequest, err)
			}

			a, err := newApp(cmd.Context(), root.env, appOptions{resultCap: opts.limit, offline: true, preload: true})
			if err != nil {
				return err
			}
			defer a.Close()

			hits, err := a.search.Search(cmd.Context(), ucsearch.Query{
				Text:       strings.Join(args, " "),
				Category:   category.Resolve(opts.category).Code,
				Mode:       m,
				AuthorHint: opts.author,
			})
			if err != nil {
				return fmt.Errorf("search: %w", err)
			}

			views := toHitViews(hits)
			if opts.json {
				return writeJSON(cmd.OutOrStdout(), views)
			}
			printHits(cmd.OutOrStdout(), views)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.category, "category", "c", "", "category name or code (default Business & Money)")
	f.StringVarP(&opts.author, "author", "a", "", "author hint, logged with the query")
	f.StringVar(&opts.mode, "mode", "text", "retrieval mode: text, vector or hybrid")
	f.IntVarP(&opts.limit, "limit", "n", 0, "hits per retrieval mode (default search.offline_result_cap)")
	f.BoolVar(&opts.json, "json", false, "print hits as JSON")
	return cmd
}
