package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"michelin-scraper/config"
	applog "michelin-scraper/log"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const (
	appName           = "michelin-scraper"
	defaultConfigPath = "config.yaml"
)

// AppFlags holds the persistent flags. Empty values leave the config as is.
type AppFlags struct {
	ConfigPath  string
	Output      string
	SheetName   string
	Spreadsheet string
	Credentials string
	DatabaseURL string
	Backend     string
	LogLevel    string
	LogFile     string
}

var (
	Flags AppFlags

	cfg       *config.Config
	logger    *zap.Logger
	logCloser io.Closer
)

var rootCmd = &cobra.Command{
	Use:   appName,
	Short: "Collects Michelin-starred restaurants from Wikipedia list pages",
	Long: `Crawls the Wikipedia lists of Michelin-starred restaurants, keeps the European
pages, extracts every restaurant table into one dataset and writes it to an
xlsx file and, when configured, to Google Sheets and Postgres.`,
	SilenceUsage:       true,
	PersistentPreRunE:  initApp,
	PersistentPostRunE: closeApp,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&Flags.ConfigPath, "config", defaultConfigPath, "path to the YAML configuration file")
	pf.StringVarP(&Flags.Output, "output", "o", "", "xlsx output file")
	pf.StringVar(&Flags.SheetName, "sheet", "", "sheet name used by every output")
	pf.StringVar(&Flags.Spreadsheet, "spreadsheet", "", "Google Sheets URL to add a tab to")
	pf.StringVar(&Flags.Credentials, "credentials", "", "Google service account JSON file (or GOOGLE_SHEETS_CREDENTIALS)")
	pf.StringVar(&Flags.DatabaseURL, "db", "", "Postgres connection string")
	pf.StringVar(&Flags.Backend, "backend", "", "fetch backend: colly or rod")
	pf.StringVar(&Flags.LogLevel, "log-level", "", "log level (debug, info, warn, error)")
	pf.StringVar(&Flags.LogFile, "log-file", "", "also write logs to this rotating file")

	rootCmd.AddCommand(runCmd, serveCmd)
}

// initApp loads .env and the configuration and builds the logger
func initApp(cmd *cobra.Command, args []string) error {
	// .env is optional
	_ = godotenv.Load()

	c, err := loadConfig(Flags.ConfigPath, cmd.Flags().Changed("config"))
	if err != nil {
		return err
	}
	applyFlags(c, Flags)
	if err := c.Validate(); err != nil {
		return err
	}

	l, closer, err := applog.New(c.Log.Level, c.Log.File)
	if err != nil {
		return err
	}

	cfg, logger, logCloser = c, l, closer
	return nil
}

func closeApp(cmd *cobra.Command, args []string) error {
	if logger != nil {
		_ = logger.Sync()
	}
	if logCloser != nil {
		return logCloser.Close()
	}
	return nil
}

// loadConfig reads path. A missing default config file is not an error:
// the built-in configuration is used instead.
func loadConfig(path string, explicit bool) (*config.Config, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) && !explicit {
		return config.GetDefaultConfig(), nil
	}
	c, err := config.LoadConfig(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config %s: %w", path, err)
	}
	return c, nil
}

func applyFlags(c *config.Config, f AppFlags) {
	if f.Output != "" {
		c.Output.File = f.Output
	}
	if f.SheetName != "" {
		c.Output.SheetName = f.SheetName
	}
	if f.Spreadsheet != "" {
		c.Output.SpreadsheetURL = f.Spreadsheet
	}
	if f.Credentials != "" {
		c.Output.Credentials = f.Credentials
	}
	if f.DatabaseURL != "" {
		c.Output.DatabaseURL = f.DatabaseURL
	}
	if f.Backend != "" {
		c.Fetch.Backend = f.Backend
	}
	if f.LogLevel != "" {
		c.Log.Level = f.LogLevel
	}
	if f.LogFile != "" {
		c.Log.File = f.LogFile
	}
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
