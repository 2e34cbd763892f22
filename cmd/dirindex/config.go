package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/justyntemme/dirindex/internal/config"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
)

// NewConfigCmd creates the config command
func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect, edit or generate the configuration file",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the config file location",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), cfgMgr.Path())
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			current := cfgMgr.Get()
			data, err := toml.Marshal(&current)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Change one setting and save the config file",
		Long: `Set changes a single setting and writes the config file. Keys:
  home, store.path, log.level, watch.enabled, watch.debounce_ms,
  index.persist, index.max_depth, index.max_file_size`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, value := strings.ToLower(args[0]), args[1]
			if err := cfgMgr.Update(func(c *config.Config) error {
				return setKey(c, key, value)
			}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s = %s (saved to %s)\n", key, value, cfgMgr.Path())
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Write a default config file, backing up any existing one",
		RunE: func(cmd *cobra.Command, args []string) error {
			backup, err := config.GenerateConfig(cfgMgr.Path())
			if err != nil {
				return err
			}
			if backup != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "previous config saved to %s\n", backup)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote default config to %s\n", cfgMgr.Path())
			return nil
		},
	})

	return cmd
}

func setKey(c *config.Config, key, value string) error {
	var err error
	switch key {
	case "home":
		c.Home = value
	case "store.path":
		c.Store.Path = value
	case "log.level":
		c.Log.Level = value
	case "watch.enabled":
		c.Watch.Enabled, err = strconv.ParseBool(value)
	case "watch.debounce_ms":
		c.Watch.DebounceMs, err = strconv.Atoi(value)
	case "index.persist":
		c.Index.Persist, err = strconv.ParseBool(value)
	case "index.max_depth":
		c.Index.MaxDepth, err = strconv.Atoi(value)
	case "index.max_file_size":
		c.Index.MaxFileSize, err = strconv.ParseInt(value, 10, 64)
	default:
		return fmt.Errorf("unknown config key %q", key)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	return nil
}
