package manifest

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/impalab/impalab/internal/log"
)

// ManifestError wraps failures reading, parsing, or validating the
// manifest file. Callers use it to distinguish orchestrator-side
// setup failures from downstream process failures.
type ManifestError struct {
	Path string
	Op   string
	Err  error
}

func (e *ManifestError) Error() string {
	return fmt.Sprintf("manifest: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *ManifestError) Unwrap() error { return e.Err }

// Load reads and validates the manifest at path.
func Load(path string) (Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, &ManifestError{Path: path, Op: "read", Err: err}
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return Manifest{}, &ManifestError{Path: path, Op: "parse", Err: err}
	}

	if err := m.Validate(); err != nil {
		return Manifest{}, &ManifestError{Path: path, Op: "validate", Err: err}
	}

	log.Debug(log.CatManifest, "loaded manifest", "path", path, "components", len(m.Components))
	return m, nil
}

// Save validates m and writes it to path atomically: the document is
// marshaled and written to a temp file in the destination directory,
// then renamed into place, so readers never observe a partial write.
func Save(path string, m Manifest) error {
	if err := m.Validate(); err != nil {
		return &ManifestError{Path: path, Op: "validate", Err: err}
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(m); err != nil {
		return &ManifestError{Path: path, Op: "encode", Err: err}
	}
	if err := enc.Close(); err != nil {
		return &ManifestError{Path: path, Op: "encode", Err: err}
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &ManifestError{Path: path, Op: "mkdir", Err: err}
	}

	tmp, err := os.CreateTemp(dir, ".manifest-*.tmp")
	if err != nil {
		return &ManifestError{Path: path, Op: "create-temp", Err: err}
	}
	tmpPath := tmp.Name()
	defer func() {
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		_ = tmp.Close()
		return &ManifestError{Path: path, Op: "write", Err: err}
	}
	if err := tmp.Close(); err != nil {
		return &ManifestError{Path: path, Op: "close", Err: err}
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return &ManifestError{Path: path, Op: "rename", Err: err}
	}

	log.Info(log.CatManifest, "saved manifest", "path", path, "components", len(m.Components))
	return nil
}

// Exists reports whether a manifest file exists at path.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// IsNotExist reports whether err indicates a missing manifest file.
func IsNotExist(err error) bool {
	var me *ManifestError
	if errors.As(err, &me) {
		return os.IsNotExist(me.Err)
	}
	return os.IsNotExist(err)
}
