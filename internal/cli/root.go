// Package cli implements the termbase command tree.
package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/developer-hhiotsystems/termbase/internal/logger"
	"github.com/developer-hhiotsystems/termbase/internal/model"
)

var (
	cfgFile   string
	verbose   bool
	logFormat string
	logLevel  string
	dataDir   string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "termbase",
	Short: "Termbase - bilingual terminology extraction from technical documents",
	Long: `Termbase builds a validated bilingual glossary from extracted document text.

It normalizes rendering artifacts, generates candidate terms per language,
locates definition sentences, validates candidates against ordered quality
rules, aggregates accepted terms across documents, and synthesizes
relationships (compounds, containment, similarity, translations) into a
graph store.

Every rejection carries a reason; every count in a report is measured.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("termbase v0.1.0")
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.termbase/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "console", "log format (console, json)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level override (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "term database directory (default: ./termbase-data)")

	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}
		viper.AddConfigPath(filepath.Join(home, ".termbase"))
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// Read in environment variables that match TERMBASE_*
	viper.SetEnvPrefix("TERMBASE")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// loadConfig assembles the effective configuration: defaults, then the
// config file, then environment variables, then flags.
func loadConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()

	if path := viper.ConfigFileUsed(); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if v := os.Getenv("TERMBASE_NEO4J_URI"); v != "" {
		cfg.Sync.Neo4j.URI = v
	}
	if v := os.Getenv("TERMBASE_NEO4J_USER"); v != "" {
		cfg.Sync.Neo4j.User = v
	}
	if v := os.Getenv("TERMBASE_NEO4J_PASSWORD"); v != "" {
		cfg.Sync.Neo4j.Password = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.LLM.APIKey = v
	}

	if dataDir != "" {
		cfg.Storage.Dir = dataDir
	}
	cfg.Output.Verbose = verbose

	return cfg, nil
}

// newLogger builds the process logger from the global flags.
func newLogger() (*zap.Logger, error) {
	return logger.New(logFormat, logLevel)
}
