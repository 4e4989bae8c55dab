package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const version = "0.3.0"

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "socialconnect",
	Short: "SocialConnect - sector classification and case-note tagging",
	Long: `SocialConnect resolves the neighbourhood sector of social-service case
records from their street address and tags free-text case notes with
problématiques and follow-up actions.

Configuration hierarchy (highest to lowest priority):
  1. CLI flags
  2. Environment variables (SOCIALCONNECT_*)
  3. Config file (./config.yaml or --config)
  4. Defaults`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "socialconnect v%s\n", version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default: ./config.yaml)")
	pf.String("db", "", "SQLite database path")
	pf.String("tables", "", "YAML table file overriding the built-in tables")
	pf.String("log-level", "", "log level (debug, info, warn, error)")

	_ = viper.BindPFlag("db_path", pf.Lookup("db"))
	_ = viper.BindPFlag("tables_file", pf.Lookup("tables"))
	_ = viper.BindPFlag("log_level", pf.Lookup("log-level"))

	rootCmd.AddCommand(versionCmd)
}

// initConfig reads the config file and SOCIALCONNECT_* variables.
func initConfig() {
	setDefaults(viper.GetViper())

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// SOCIALCONNECT_RATE_LIMIT_RPS maps to rate_limit.rps.
	viper.SetEnvPrefix("SOCIALCONNECT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			fmt.Fprintf(os.Stderr, "Error reading config: %v\n", err)
			os.Exit(1)
		}
	}
}
