// Package cmd wires impalab's CLI surface with spf13/cobra and binds
// its flags into internal/config via spf13/viper.
package cmd

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/impalab/impalab/internal/config"
)

var (
	version = "dev"
	cfgFile string
	cfg     config.Config
)

var rootCmd = &cobra.Command{
	Use:          "impalab",
	Short:        "Micro-benchmark orchestration engine",
	Long:         `impalab discovers benchmark generator/algorithm components, builds them, and drives a run wiring their pipes together.`,
	Version:      version,
	SilenceUsage: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: .impalab/config.yaml, then ~/.config/impalab/config.yaml)")

	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(runCmd)
}

func initConfig() {
	defaults := config.Defaults()
	viper.SetDefault("manifest_path", defaults.ManifestPath)
	viper.SetDefault("log_level", defaults.LogLevel)

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		if _, err := os.Stat(".impalab/config.yaml"); err == nil {
			viper.SetConfigFile(".impalab/config.yaml")
		} else {
			home, _ := os.UserHomeDir()
			viper.AddConfigPath(filepath.Join(home, ".config", "impalab"))
			viper.SetConfigName("config")
			viper.SetConfigType("yaml")
		}
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			defaultPath := ".impalab/config.yaml"
			if writeErr := config.WriteDefaultConfig(defaultPath); writeErr == nil {
				viper.SetConfigFile(defaultPath)
				_ = viper.ReadInConfig()
			}
		}
	}

	_ = viper.Unmarshal(&cfg)
}

// validateConfig confirms the unmarshaled config is usable. Cobra's
// OnInitialize hooks can't return an error themselves, so each
// subcommand's RunE calls this before doing anything else, the same
// way the teacher validates its own config inside runApp rather than
// initConfig.
func validateConfig() error {
	return config.Validate(cfg)
}

// Execute runs the root command and returns its exit code.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		if code, ok := err.(exitCoder); ok {
			return code.ExitCode()
		}
		return 2
	}
	return 0
}

// SetVersion sets the version string, called from main with ldflags.
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// exitCoder lets a subcommand's RunE carry a specific process exit
// code (e.g. 1 for a child's nonzero exit) through cobra's plain
// error-returning contract.
type exitCoder interface {
	error
	ExitCode() int
}

type cliError struct {
	code int
	err  error
}

func (e *cliError) Error() string { return e.err.Error() }
func (e *cliError) Unwrap() error { return e.err }
func (e *cliError) ExitCode() int { return e.code }

func exitError(code int, err error) error {
	if err == nil {
		return nil
	}
	return &cliError{code: code, err: err}
}
