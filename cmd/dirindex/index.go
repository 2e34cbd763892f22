package main

import (
	"fmt"
	"path/filepath"

	"github.com/justyntemme/dirindex/internal/app"
	"github.com/justyntemme/dirindex/internal/debug"
	"github.com/spf13/cobra"
)

// NewIndexCmd creates the index command
func NewIndexCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "index [path]",
		Short: "Build the search index for a directory",
		Long: `Index walks a directory tree and builds the search index for it,
waiting for the job to finish. With persistence enabled the result
replaces the saved index.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := "."
			if len(args) == 1 {
				target = args[0]
			}
			abs, err := filepath.Abs(target)
			if err != nil {
				return err
			}

			p := newShellPresenter(cmd.OutOrStdout())
			o, err := app.NewOrchestrator(cfg, p)
			if err != nil {
				return err
			}
			defer func() {
				if err := o.Close(); err != nil {
					debug.Error(debug.APP, err, "shutdown")
				}
			}()

			job := o.Trigger.Start(abs)
			if err := job.Wait(cmd.Context()); err != nil {
				return err
			}
			if job.State() == app.JobFailed {
				return job.Err()
			}

			ix := job.Result()
			fmt.Fprintf(cmd.OutOrStdout(), "%d files, %d terms\n", ix.DocCount(), ix.TermCount())
			return nil
		},
	}
}
