package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/galaxykit/rolefix/internal/config"
	"github.com/galaxykit/rolefix/internal/logging"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "rolefix",
	Short: "Normalize Ansible Galaxy role names across a collection tree",
	Long: `Rolefix renames role directories whose names Galaxy rejects (hyphens,
uppercase, leading digits) to valid underscore names, and rewrites every
reference to them: playbook role lists, import_role/include_role targets,
and meta/main.yml dependencies.

Key Features:
  • Deepest-first directory renaming, safe for nested roles
  • Reference rewriting in bare, namespace/role and collection.role forms
  • Kubernetes and other foreign YAML left byte-identical
  • Timestamped backups before every rewritten document
  • Dry-run mode that reports without touching anything

Quick Start:
  rolefix scan                    List roles and proposed renames
  rolefix fix --dry-run           Preview a full normalization run
  rolefix fix                     Normalize the tree in place
  rolefix watch                   Re-run normalization on changes`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .rolefix.yml, can also use ROLEFIX_CONFIG_FILE env var)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "text", "log format (text, json)")
	viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log.format", rootCmd.PersistentFlags().Lookup("log-format"))
}

// initConfig initializes the configuration system.
//
// Configuration Loading Priority (highest to lowest):
//  1. --config flag: Explicitly specified config file path
//  2. ROLEFIX_CONFIG_FILE environment variable: Custom config file path
//  3. Default: .rolefix.yml in current directory
//
// Environment variables with the ROLEFIX_ prefix override file values, for
// example ROLEFIX_NAMESPACE_DIR or ROLEFIX_BACKUP_ENABLED.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if envConfigFile := os.Getenv("ROLEFIX_CONFIG_FILE"); envConfigFile != "" {
		viper.SetConfigFile(envConfigFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".rolefix")
	}

	viper.SetEnvPrefix("ROLEFIX")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// A missing or unreadable config file is not an error; defaults apply
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// newLogger builds the process logger from loaded configuration.
func newLogger(cfg *config.Config) logging.Logger {
	logCfg := logging.DefaultConfig()
	logCfg.Level = logging.ParseLevel(cfg.Log.Level)
	logCfg.Format = cfg.Log.Format
	logCfg.Output = os.Stderr
	return logging.NewLogger(logCfg)
}
