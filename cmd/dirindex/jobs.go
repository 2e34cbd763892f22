package main

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/justyntemme/dirindex/internal/store"
	"github.com/spf13/cobra"
)

// NewJobsCmd creates the jobs command
func NewJobsCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "List recent index jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := store.Open(cfg.Store.Path)
			if err != nil {
				return err
			}
			defer db.Close()

			jobs, err := db.Jobs(limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(jobs) == 0 {
				fmt.Fprintln(out, "no index jobs recorded")
				return nil
			}
			for _, j := range jobs {
				line := fmt.Sprintf("%-7s %-14s %s", j.State, humanize.Time(j.FinishedAt), j.Target)
				if j.Err != "" {
					line += ": " + j.Err
				} else {
					line += fmt.Sprintf(" (%s files, %s)", humanize.Comma(int64(j.Docs)),
						j.FinishedAt.Sub(j.StartedAt).Round(time.Millisecond))
				}
				fmt.Fprintln(out, line)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of jobs to show")
	return cmd
}
