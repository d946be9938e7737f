// ABOUTME: Root Cobra command for the chococrunch CLI.
// ABOUTME: Resolves configuration, builds the logger and loads the dataset via PersistentPre/PostRun.
package main

import (
	"fmt"

	"github.com/harperreed/chococrunch/internal/app"
	"github.com/harperreed/chococrunch/internal/config"
	"github.com/harperreed/chococrunch/internal/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	configPath string
	csvPath    string
	dbPath     string
	saveDBPath string
	logFormat  string
	verbose    bool

	cfg     *config.Config
	logger  *zap.Logger
	session *app.App
)

// needsDataset marks commands that run against a loaded dataset.
const needsDataset = "dataset"

var rootCmd = &cobra.Command{
	Use:   "chococrunch",
	Short: "Chocolate nutrition analytics",
	Long: `ChocoCrunch loads a cleaned chocolate product dataset, normalizes it into
SQLite tables and answers a fixed catalog of analytics queries.

WHAT IT ANALYZES:

  product_info      brand, name, countries, manufacturer, cacao, price
  nutrient_info     energy, sugars, fat, proteins, sodium, NOVA group
  derived_metrics   calorie/sugar/fat tiers, ultra-processed flag, ratios
  market_analysis   regional sales, share and rating (when present)

QUICK START:

  $ chococrunch serve                          # Dashboard on http://127.0.0.1:8501
  $ chococrunch query list                     # Every catalog query
  $ chococrunch query run top-brands           # Run one query
  $ chococrunch export top-brands -f csv       # Export a result
  $ chococrunch summary                        # Load report and column stats

DATA SOURCE:

  By default the CSV ChocoCrunch_Cleaned_Dataset.csv in the current directory
  is loaded into an in-memory database. Use --csv to pick another file, or
  --db to open a database written by 'chococrunch materialize'.

MCP INTEGRATION:

  Run 'chococrunch mcp' to expose the query catalog to MCP-compatible AI
  assistants over stdio:

  {
    "mcpServers": {
      "chococrunch": { "command": "chococrunch", "args": ["mcp"] }
    }
  }

CONFIGURATION:

  Settings are read from ~/.config/chococrunch/config.json, then .env, then
  CHOCO_* environment variables, then command-line flags.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" {
			return nil
		}

		var err error
		cfg, err = resolveConfig(cmd)
		if err != nil {
			return err
		}

		logger, err = logging.New(verbose, cfg.GetLogFormat())
		if err != nil {
			return err
		}

		if cmd.Annotations[needsDataset] == "" {
			return nil
		}
		session, err = app.Load(cmd.Context(), cfg, logger)
		return err
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return closeSession()
	},
}

// resolveConfig layers flags that were set explicitly over the loaded config.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	c, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("csv") {
		c.CSVPath = csvPath
		if !flags.Changed("db") {
			c.DBPath = ""
		}
	}
	if flags.Changed("db") {
		c.DBPath = dbPath
	}
	if flags.Changed("save-db") {
		c.SaveDB = saveDBPath
	}
	if flags.Changed("log-format") {
		if !logging.ValidFormat(logFormat) {
			return nil, fmt.Errorf("unknown log format %q (use %s or %s)", logFormat, logging.FormatJSON, logging.FormatConsole)
		}
		c.LogFormat = logFormat
	}
	return c, nil
}

func closeSession() error {
	var err error
	if session != nil {
		err = session.Close()
		session = nil
	}
	if logger != nil {
		_ = logger.Sync()
	}
	return err
}

// withDataset marks cmd as needing the loaded dataset.
func withDataset(cmd *cobra.Command) *cobra.Command {
	if cmd.Annotations == nil {
		cmd.Annotations = map[string]string{}
	}
	cmd.Annotations[needsDataset] = "true"
	return cmd
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "config file (default ~/.config/chococrunch/config.json)")
	pf.StringVar(&csvPath, "csv", "", "input CSV file (default "+config.DefaultCSVPath+")")
	pf.StringVar(&dbPath, "db", "", "open a materialized SQLite database instead of the CSV")
	pf.StringVar(&saveDBPath, "save-db", "", "also write the materialized database to this path")
	pf.StringVar(&logFormat, "log-format", config.DefaultLogFormat, "log format: json or console")
	pf.BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}
