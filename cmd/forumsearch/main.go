package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/pders01/forumsearch/internal/config"
	"github.com/pders01/forumsearch/internal/debuglog"
	"github.com/pders01/forumsearch/internal/validation"
)

// Version is the version of the application, set at build time
var Version = "dev"

var (
	configPath string
	dbPath     string
	indexPath  string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:           "forumsearch",
	Short:         "Full-text search over forum articles",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, _ []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "forumsearch %s\n", Version)
		fmt.Fprintln(out, "Full-text forum search")
		fmt.Fprintln(out, "github.com/pders01/forumsearch")
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the configuration file",
}

var configGenCmd = &cobra.Command{
	Use:   "generate",
	Short: "Write a default configuration file",
	RunE: func(cmd *cobra.Command, _ []string) error {
		target := configPath
		if target == "" {
			target = config.DefaultPath()
		}
		if err := config.GenerateDefaultConfig(target); err != nil {
			return fmt.Errorf("failed to generate config: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Generated default configuration at: %s\n", target)
		return nil
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", "", "Path to configuration file")
	flags.StringVar(&dbPath, "db", "", "Path to database file (overrides config)")
	flags.StringVar(&indexPath, "index", "", "Path to search index directory (overrides config)")
	flags.StringVar(&logLevel, "log-level", "", "Log level: DEBUG, INFO, WARN, ERROR or OFF")

	configCmd.AddCommand(configGenCmd)
	rootCmd.AddCommand(versionCmd, configCmd, serveCmd, searchCmd, reindexCmd, importCmd, tuiCmd)
}

// loadConfig reads the config file, applies flag overrides, validates the
// data paths and sets up logging.
func loadConfig() (*config.Config, error) {
	// FORUMSEARCH_* values from a local .env file; real env vars win.
	_ = godotenv.Load()

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if dbPath != "" {
		cfg.Database.Path = dbPath
	}
	if indexPath != "" {
		cfg.Index.Path = indexPath
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}

	if cfg.Database.Path, err = validation.DBFile(cfg.Database.Path); err != nil {
		return nil, fmt.Errorf("invalid database path: %w", err)
	}
	if cfg.Index.Path != "" {
		if cfg.Index.Path, err = validation.IndexDir(cfg.Index.Path); err != nil {
			return nil, fmt.Errorf("invalid index path: %w", err)
		}
	}

	if err := debuglog.Setup(debuglog.ParseLogLevel(cfg.Log.Level), cfg.Log.File); err != nil {
		return nil, err
	}
	return cfg, nil
}

func main() {
	err := rootCmd.Execute()
	_ = debuglog.Close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
