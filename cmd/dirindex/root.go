package main

import (
	"os"

	"github.com/justyntemme/dirindex/internal/config"
	"github.com/justyntemme/dirindex/internal/debug"
	"github.com/spf13/cobra"
)

var (
	cfgFile   string
	debugMode bool
	cfgMgr    *config.Manager
	cfg       *config.Config
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "dirindex",
		Short:         "Browse directories and build searchable indexes of them",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfgMgr, err = config.NewManager(cfgFile)
			if err != nil {
				return err
			}
			loaded := cfgMgr.Get()
			cfg = &loaded

			level := cfg.Log.Level
			if debugMode {
				level = "debug"
			}
			debug.Init(level, os.Stderr)
			if cats := cfg.DebugCategories(); cats != nil {
				debug.SetCategories(cats)
			}
			debug.Log(debug.APP, "debug categories: %v", debug.ListEnabled())
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/dirindex/config.toml)")
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "enable debug logging")

	rootCmd.AddCommand(NewBrowseCmd())
	rootCmd.AddCommand(NewIndexCmd())
	rootCmd.AddCommand(NewSearchCmd())
	rootCmd.AddCommand(NewJobsCmd())
	rootCmd.AddCommand(NewConfigCmd())

	return rootCmd
}
