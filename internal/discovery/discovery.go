// Package discovery walks a component tree, runs each component's
// build step, and produces the manifest the run orchestrator consumes.
package discovery

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/impalab/impalab/internal/log"
	"github.com/impalab/impalab/internal/manifest"
	"github.com/impalab/impalab/internal/procio"
)

// BuildError reports a component's build step exiting nonzero.
type BuildError struct {
	Component string
	Dir       string
	Err       error
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("build failed for component %q in %s: %v", e.Component, e.Dir, e.Err)
}

func (e *BuildError) Unwrap() error { return e.Err }

// Discover walks root looking for directories containing impala.yaml,
// runs each component's build step (if any), and returns the
// resulting manifest. Walk order across sibling directories is
// whatever filepath.WalkDir yields, which is deterministic for a
// fixed filesystem but not otherwise meaningful.
func Discover(ctx context.Context, root string) (manifest.Manifest, error) {
	var entries []manifest.Entry

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if d.Name() != descriptorFileName {
			return nil
		}

		componentDir := filepath.Dir(path)
		absDir, err := filepath.Abs(componentDir)
		if err != nil {
			return fmt.Errorf("resolve absolute path for %s: %w", componentDir, err)
		}

		desc, err := parseDescriptor(path)
		if err != nil {
			return err
		}

		if desc.Build != nil {
			if err := runBuild(ctx, desc, absDir); err != nil {
				return &BuildError{Component: desc.Name, Dir: absDir, Err: err}
			}
		}

		entries = append(entries, manifest.Entry{
			Name:     desc.Name,
			Kind:     desc.Type,
			Language: desc.Language,
			Run: manifest.RunCommand{
				Command: desc.Run.Command,
				Args:    desc.Run.Args,
				Dir:     absDir,
			},
		})

		log.Info(log.CatDiscovery, "discovered component", "name", desc.Name, "type", string(desc.Type), "dir", absDir)
		return nil
	})
	if err != nil {
		if be, ok := err.(*BuildError); ok {
			return manifest.Manifest{}, be
		}
		return manifest.Manifest{}, &manifest.ManifestError{Path: root, Op: "discover", Err: err}
	}

	m := manifest.Manifest{Components: entries}
	if err := m.Validate(); err != nil {
		return manifest.Manifest{}, &manifest.ManifestError{Path: root, Op: "validate", Err: err}
	}

	return m, nil
}

func runBuild(ctx context.Context, desc Descriptor, dir string) error {
	log.Info(log.CatDiscovery, "running build step", "component", desc.Name, "command", desc.Build.Command)

	h, err := procio.Launch(ctx, procio.LaunchSpec{
		Name:    desc.Name,
		Command: desc.Build.Command,
		Args:    desc.Build.Args,
		Dir:     dir,
		Stdin:   procio.Inherit,
		Stdout:  procio.Inherit,
		Stderr:  procio.Inherit,
	})
	if err != nil {
		return err
	}

	result := h.Wait()
	if result.Status != procio.StatusCompleted || result.ExitCode != 0 {
		if result.Err != nil {
			return result.Err
		}
		return fmt.Errorf("exit code %d", result.ExitCode)
	}
	return nil
}
