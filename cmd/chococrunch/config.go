// ABOUTME: CLI commands for inspecting and initializing configuration.
// ABOUTME: Shows the resolved settings and writes a starter config file.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/harperreed/chococrunch/internal/config"
	"github.com/spf13/cobra"
)

var configForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect or create the config file",
	Long: `Inspect or create the chococrunch config file.

Precedence, lowest first: config file, .env, CHOCO_* environment variables,
command-line flags.

ENVIRONMENT:

  CHOCO_CSV          input CSV path
  CHOCO_DB           materialized database path
  CHOCO_ADDR         dashboard listen address
  CHOCO_SAVE_DB      save a materialized copy after loading the CSV
  CHOCO_LOG_FORMAT   json or console

EXAMPLES:

  chococrunch config show
  chococrunch config init --force`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the resolved configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		resolved := struct {
			ConfigFile string `json:"config_file"`
			CSVPath    string `json:"csv_path"`
			DBPath     string `json:"db_path,omitempty"`
			SaveDB     string `json:"save_db,omitempty"`
			Addr       string `json:"addr"`
			LogFormat  string `json:"log_format"`
		}{
			ConfigFile: configFile(),
			CSVPath:    cfg.GetCSVPath(),
			DBPath:     cfg.GetDBPath(),
			SaveDB:     cfg.GetSaveDB(),
			Addr:       cfg.GetAddr(),
			LogFormat:  cfg.GetLogFormat(),
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(resolved)
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file with the current settings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configFile()
		if _, err := os.Stat(path); err == nil && !configForce {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}

		c := &config.Config{
			CSVPath:   cfg.GetCSVPath(),
			DBPath:    cfg.DBPath,
			SaveDB:    cfg.SaveDB,
			Addr:      cfg.GetAddr(),
			LogFormat: cfg.GetLogFormat(),
		}
		if err := c.SaveTo(path); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), color.GreenString("✓ Wrote %s", path))
		return nil
	},
}

func configFile() string {
	if configPath != "" {
		return config.ExpandPath(configPath)
	}
	return config.GetConfigPath()
}

func init() {
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "overwrite an existing config file")
	configCmd.AddCommand(configShowCmd, configInitCmd)
	rootCmd.AddCommand(configCmd)
}
