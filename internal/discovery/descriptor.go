package discovery

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/impalab/impalab/internal/manifest"
)

// BuildStep is the optional build command a component runs before it
// is considered ready to be added to the manifest.
type BuildStep struct {
	Command string   `yaml:"command"`
	Args    []string `yaml:"args,omitempty"`
}

// RunStep mirrors manifest.RunCommand in descriptor form; Dir is
// filled in by discovery, never read from the descriptor itself.
type RunStep struct {
	Command string   `yaml:"command"`
	Args    []string `yaml:"args,omitempty"`
}

// Descriptor is the parsed shape of one component's impala.yaml.
type Descriptor struct {
	Name     string                 `yaml:"name"`
	Type     manifest.ComponentKind `yaml:"type"`
	Language string                 `yaml:"language,omitempty"`
	Build    *BuildStep             `yaml:"build,omitempty"`
	Run      RunStep                `yaml:"run"`
}

func (d Descriptor) validate() error {
	if d.Name == "" {
		return fmt.Errorf("descriptor has empty name")
	}
	switch d.Type {
	case manifest.KindGenerator:
		if d.Language != "" {
			return fmt.Errorf("component %q: generator must not declare a language", d.Name)
		}
	case manifest.KindAlgorithm:
		if d.Language == "" {
			return fmt.Errorf("component %q: algorithm requires a language", d.Name)
		}
	default:
		return fmt.Errorf("component %q: unknown type %q", d.Name, d.Type)
	}
	if d.Run.Command == "" {
		return fmt.Errorf("component %q: run.command is empty", d.Name)
	}
	return nil
}

const descriptorFileName = "impala.yaml"

func parseDescriptor(path string) (Descriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Descriptor{}, fmt.Errorf("read %s: %w", path, err)
	}
	var d Descriptor
	if err := yaml.Unmarshal(data, &d); err != nil {
		return Descriptor{}, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := d.validate(); err != nil {
		return Descriptor{}, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}
