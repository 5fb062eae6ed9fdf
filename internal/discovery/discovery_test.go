package discovery

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/impalab/impalab/internal/manifest"
)

func writeDescriptor(t *testing.T, dir, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, descriptorFileName), []byte(content), 0o644))
}

func TestDiscoverFindsComponentsAcrossSubdirectories(t *testing.T) {
	root := t.TempDir()
	writeDescriptor(t, filepath.Join(root, "gen"), `
name: gen1
type: generator
run:
  command: ./gen1
`)
	writeDescriptor(t, filepath.Join(root, "algos", "quicksort"), `
name: quicksort-go
type: algorithm
language: go
run:
  command: ./quicksort-go
`)

	m, err := Discover(context.Background(), root)
	require.NoError(t, err)
	require.Len(t, m.Components, 2)

	gen, ok := m.ByName("gen1")
	require.True(t, ok, "expected to find gen1")
	assert.True(t, filepath.IsAbs(gen.Run.Dir), "expected absolute dir, got %q", gen.Run.Dir)
}

func TestDiscoverRunsBuildStep(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "algo")
	writeDescriptor(t, dir, `
name: algo-go
type: algorithm
language: go
build:
  command: sh
  args: ["-c", "touch built.marker"]
run:
  command: ./algo-go
`)

	_, err := Discover(context.Background(), root)
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, "built.marker"))
	assert.NoError(t, err, "expected build step to have run")
}

func TestDiscoverBuildFailureAborts(t *testing.T) {
	root := t.TempDir()
	writeDescriptor(t, filepath.Join(root, "algo"), `
name: algo-fail
type: algorithm
language: go
build:
  command: sh
  args: ["-c", "exit 3"]
run:
  command: ./algo-fail
`)

	_, err := Discover(context.Background(), root)
	require.Error(t, err)
	assert.IsType(t, &BuildError{}, err)
}

func TestDiscoverDuplicateNamesRejected(t *testing.T) {
	root := t.TempDir()
	writeDescriptor(t, filepath.Join(root, "a"), `
name: dup
type: generator
run: {command: ./a}
`)
	writeDescriptor(t, filepath.Join(root, "b"), `
name: dup
type: generator
run: {command: ./b}
`)

	_, err := Discover(context.Background(), root)
	require.Error(t, err)
	assert.IsType(t, &manifest.ManifestError{}, err)
}

func TestDiscoverDuplicateLanguageRejected(t *testing.T) {
	root := t.TempDir()
	writeDescriptor(t, filepath.Join(root, "a"), `
name: algo-a
type: algorithm
language: go
run: {command: ./a}
`)
	writeDescriptor(t, filepath.Join(root, "b"), `
name: algo-b
type: algorithm
language: go
run: {command: ./b}
`)

	_, err := Discover(context.Background(), root)
	assert.Error(t, err, "expected duplicate-language error")
}

func TestDiscoverEmptyRootYieldsEmptyManifest(t *testing.T) {
	root := t.TempDir()
	m, err := Discover(context.Background(), root)
	require.NoError(t, err)
	assert.Empty(t, m.Components)
}
