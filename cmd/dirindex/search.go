package main

import (
	"path/filepath"
	"strings"

	"github.com/justyntemme/dirindex/internal/app"
	"github.com/justyntemme/dirindex/internal/search"
	"github.com/spf13/cobra"
)

// NewSearchCmd creates the search command
func NewSearchCmd() *cobra.Command {
	var (
		root  string
		limit int
	)

	cmd := &cobra.Command{
		Use:   "search QUERY...",
		Short: "Search the saved index",
		Long: `Search queries the most recently saved index. Bare words must all
appear in a file's name or contents; directives narrow the results:

  filename:*.go   ext:md   size:>1MB   modified:<2024-01-01   contents:word`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := app.NewOrchestrator(cfg, nil)
			if err != nil {
				return err
			}
			defer o.Close()

			if limit > 0 {
				o.Search.Limit = limit
			}
			query := strings.Join(args, " ")

			var hits []search.Hit
			if root != "" {
				abs, err := filepath.Abs(root)
				if err != nil {
					return err
				}
				hits, err = o.Search.SearchIn(abs, query)
				if err != nil {
					return err
				}
			} else if hits, err = o.Search.Search(query); err != nil {
				return err
			}
			newShellPresenter(cmd.OutOrStdout()).showHits(hits)
			return nil
		},
	}

	cmd.Flags().StringVar(&root, "root", "", "only use the index if it was built for this directory")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "maximum number of results")
	return cmd
}
