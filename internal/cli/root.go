package cli

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/papercheck/papercheck/internal/model"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Version is stamped into `papercheck version` and the MCP handshake.
const Version = "0.1.0"

// ErrChecksFailed signals a completed run whose report did not pass. The
// report has already been written when a command returns it; main exits
// nonzero without printing a second error.
var ErrChecksFailed = errors.New("checks failed")

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "papercheck",
	Short: "Papercheck - automated paper quality and bibliography checks",
	Long: `Papercheck inspects a paper manuscript for the structural defects that
show up in low-effort or machine-generated submissions.

It scans the markup source for sparse content, templated phrasing,
unrendered formulas, malformed citations, broken image links, stray
code fences and thin bibliographies, then verifies that each cited
work can actually be found by a public web search.

Papercheck flags suspicious papers; it does not prove fraud.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		zerolog.TimeFieldFormat = time.RFC3339
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
		if verbose {
			zerolog.SetGlobalLevel(zerolog.DebugLevel)
		} else {
			zerolog.SetGlobalLevel(zerolog.WarnLevel)
		}
	},
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
		fmt.Println("papercheck v" + Version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.papercheck.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Bind flags to viper
	_ = viper.BindPFlag("output.verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Search for .papercheck.yaml in the home directory
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}
		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".papercheck")
	}

	// Read in environment variables that match PAPERCHECK_*
	viper.SetEnvPrefix("PAPERCHECK")
	viper.AutomaticEnv()

	// If a config file is found, read it in
	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// loadConfig assembles the effective configuration: built-in defaults, then
// the config file, then environment variables. Command flags layer on top in
// each RunE.
func loadConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()

	if viper.ConfigFileUsed() != "" {
		// The config tree is tagged for YAML; reuse those tags when
		// decoding viper's merged settings.
		yamlTags := func(dc *mapstructure.DecoderConfig) { dc.TagName = "yaml" }
		if err := viper.Unmarshal(&cfg, yamlTags); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", viper.ConfigFileUsed(), err)
		}
	}

	if key := os.Getenv("PAPERCHECK_SEARCH_API_KEY"); key != "" {
		cfg.Search.APIKey = key
	} else if key := os.Getenv("SERPER_API_KEY"); key != "" {
		cfg.Search.APIKey = key
	}

	cfg.Output.Verbose = cfg.Output.Verbose || verbose

	return &cfg, nil
}
