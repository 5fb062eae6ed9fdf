package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/impalab/impalab/internal/discovery"
	"github.com/impalab/impalab/internal/log"
	"github.com/impalab/impalab/internal/manifest"
)

var buildManifestPath string

var buildCmd = &cobra.Command{
	Use:   "build <root-dir>",
	Short: "Discover components under root-dir, build them, and write the manifest",
	Args:  cobra.ExactArgs(1),
	RunE:  runBuild,
}

func init() {
	buildCmd.Flags().StringVar(&buildManifestPath, "manifest-path", "", "path to write the manifest (default from config)")
}

func runBuild(cmd *cobra.Command, args []string) error {
	if err := validateConfig(); err != nil {
		return exitError(2, fmt.Errorf("config: %w", err))
	}
	defer log.InitFromEnv(cfg.LogLevel)()

	root := args[0]
	manifestPath := buildManifestPath
	if manifestPath == "" {
		manifestPath = viper.GetString("manifest_path")
	}

	m, err := discovery.Discover(context.Background(), root)
	if err != nil {
		return exitError(2, fmt.Errorf("discover components in %s: %w", root, err))
	}

	if err := manifest.Save(manifestPath, m); err != nil {
		return exitError(2, fmt.Errorf("save manifest: %w", err))
	}

	fmt.Fprintf(cmd.OutOrStdout(), "discovered %d components, manifest written to %s\n", len(m.Components), manifestPath)
	return nil
}
