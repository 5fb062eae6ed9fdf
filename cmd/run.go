package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/impalab/impalab/internal/log"
	"github.com/impalab/impalab/internal/manifest"
	"github.com/impalab/impalab/internal/orchestrator"
)

var (
	runGenerator          string
	runAlgorithms         string
	runManifestPath       string
	runSeed               uint64
	runSeedSet            bool
	runGeneratorOverride  string
	runAlgorithmOverrides []string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Resolve a run plan and execute the generator/algorithms, streaming benchmark events to stdout",
	RunE:  runRun,
}

func init() {
	runCmd.Flags().StringVar(&runGenerator, "generator", "none", `generator component name, or "none"`)
	runCmd.Flags().StringVar(&runAlgorithms, "algorithms", "", "algorithm selection, e.g. go:fn1,fn2;rust:fn3")
	runCmd.Flags().StringVar(&runManifestPath, "manifest-path", "", "path to the manifest (default from config)")
	runCmd.Flags().Uint64Var(&runSeed, "seed", 0, "explicit generator seed (default: random, logged for reproducibility)")
	runCmd.Flags().StringVar(&runGeneratorOverride, "generator-override", "", "run this executable as the generator instead of resolving from the manifest")
	runCmd.Flags().StringArrayVar(&runAlgorithmOverrides, "algorithm-override", nil, "lang=path, repeatable; runs path as that language's algorithm instead of resolving from the manifest")

	_ = viper.BindPFlag("generator", runCmd.Flags().Lookup("generator"))
	_ = viper.BindPFlag("algorithms", runCmd.Flags().Lookup("algorithms"))
}

func runRun(cmd *cobra.Command, args []string) error {
	if err := validateConfig(); err != nil {
		return exitError(2, fmt.Errorf("config: %w", err))
	}
	defer log.InitFromEnv(cfg.LogLevel)()

	runSeedSet = cmd.Flags().Changed("seed")

	manifestPath := runManifestPath
	if manifestPath == "" {
		manifestPath = viper.GetString("manifest_path")
	}

	selection, err := orchestrator.ParseAlgorithms(runAlgorithms)
	if err != nil {
		return exitError(2, fmt.Errorf("parse --algorithms: %w", err))
	}

	algoOverrides, err := orchestrator.ParseAlgorithmOverrides(runAlgorithmOverrides)
	if err != nil {
		return exitError(2, fmt.Errorf("parse --algorithm-override: %w", err))
	}

	var m manifest.Manifest
	if manifestNeeded(runGenerator, runGeneratorOverride, selection, algoOverrides) {
		loaded, err := manifest.Load(manifestPath)
		if err != nil {
			return exitError(2, fmt.Errorf("load manifest: %w", err))
		}
		m = loaded
	}

	plan, err := orchestrator.Resolve(m, orchestrator.ResolveOptions{
		Generator: runGenerator,
		Selection: selection,
		Overrides: orchestrator.Overrides{
			GeneratorPath:       runGeneratorOverride,
			AlgorithmPathByLang: algoOverrides,
		},
	})
	if err != nil {
		return exitError(2, fmt.Errorf("resolve run plan: %w", err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	passthrough := passthroughArgs(cmd, args)

	report, runErr := orchestrator.Run(ctx, orchestrator.Config{
		Plan:        plan,
		Seed:        runSeed,
		SeedSet:     runSeedSet,
		Passthrough: passthrough,
		Stdout:      cmd.OutOrStdout(),
		Stderr:      cmd.ErrOrStderr(),
	})

	code := orchestrator.ExitCode(report, runErr)
	if code == 0 {
		return nil
	}

	summary := summarizeFailure(report, runErr)
	return exitError(code, summary)
}

// manifestNeeded reports whether resolving this run requires
// consulting the manifest: true unless every referenced component
// (generator and each selected language) has an override.
func manifestNeeded(generator, generatorOverride string, selection orchestrator.Selection, algoOverrides map[string]string) bool {
	if generator != "none" && generatorOverride == "" {
		return true
	}
	for _, group := range selection {
		if _, ok := algoOverrides[group.Language]; !ok {
			return true
		}
	}
	return false
}

// passthroughArgs returns everything after "--" on the command line.
func passthroughArgs(cmd *cobra.Command, args []string) []string {
	idx := cmd.ArgsLenAtDash()
	if idx < 0 || idx >= len(args) {
		return nil
	}
	return args[idx:]
}

func summarizeFailure(report orchestrator.Report, runErr error) error {
	if runErr != nil {
		return fmt.Errorf("run: %w", runErr)
	}
	msg := "run: "
	first := true
	appendFailure := func(name string, code int) {
		if !first {
			msg += "; "
		}
		msg += fmt.Sprintf("%s exited %s", name, strconv.Itoa(code))
		first = false
	}
	if report.Generator != nil && report.Generator.Exit.ExitCode != 0 {
		appendFailure("generator", report.Generator.Exit.ExitCode)
	}
	for _, a := range report.Algorithms {
		if a.Exit.ExitCode != 0 {
			appendFailure(a.Language, a.Exit.ExitCode)
		}
	}
	for _, e := range report.Errors {
		if !first {
			msg += "; "
		}
		msg += e.Error()
		first = false
	}
	return fmt.Errorf("%s", msg)
}
