// Package manifest holds the name/language -> run-command lookup table
// produced by component discovery and consumed at run start.
package manifest

import "fmt"

// ComponentKind distinguishes the two roles a component can play.
type ComponentKind string

const (
	KindGenerator ComponentKind = "generator"
	KindAlgorithm ComponentKind = "algorithm"
)

// RunCommand is an executable path plus its ordered arguments and the
// working directory it should be launched in. Immutable once
// constructed; the child inherits the parent's full environment.
type RunCommand struct {
	Command string   `yaml:"command"`
	Args    []string `yaml:"args,omitempty"`
	Dir     string   `yaml:"dir,omitempty"`
}

func (r RunCommand) validate() error {
	if r.Command == "" {
		return fmt.Errorf("run command is empty")
	}
	return nil
}

// Entry is one component's manifest record.
type Entry struct {
	Name     string        `yaml:"name"`
	Kind     ComponentKind `yaml:"type"`
	Language string        `yaml:"language,omitempty"`
	Run      RunCommand    `yaml:"run"`
}

func (e Entry) validate() error {
	if e.Name == "" {
		return fmt.Errorf("entry has empty name")
	}
	switch e.Kind {
	case KindGenerator:
		if e.Language != "" {
			return fmt.Errorf("component %q: generator must not declare a language", e.Name)
		}
	case KindAlgorithm:
		if e.Language == "" {
			return fmt.Errorf("component %q: algorithm requires a language", e.Name)
		}
	default:
		return fmt.Errorf("component %q: unknown kind %q", e.Name, e.Kind)
	}
	if err := e.Run.validate(); err != nil {
		return fmt.Errorf("component %q: %w", e.Name, err)
	}
	return nil
}

// Manifest is the full set of discovered components.
type Manifest struct {
	Components []Entry `yaml:"components"`
}

// ByName returns the entry with the given name.
func (m Manifest) ByName(name string) (Entry, bool) {
	for _, e := range m.Components {
		if e.Name == name {
			return e, true
		}
	}
	return Entry{}, false
}

// ByLanguage returns the algorithm entry for the given language.
func (m Manifest) ByLanguage(language string) (Entry, bool) {
	for _, e := range m.Components {
		if e.Kind == KindAlgorithm && e.Language == language {
			return e, true
		}
	}
	return Entry{}, false
}

// Validate checks every invariant from the data model: well-formed run
// commands, globally unique names, and at most one algorithm per
// language.
func (m Manifest) Validate() error {
	names := make(map[string]bool, len(m.Components))
	languages := make(map[string]string, len(m.Components))

	for _, e := range m.Components {
		if err := e.validate(); err != nil {
			return err
		}
		if names[e.Name] {
			return fmt.Errorf("duplicate component name %q", e.Name)
		}
		names[e.Name] = true

		if e.Kind == KindAlgorithm {
			if owner, ok := languages[e.Language]; ok {
				return fmt.Errorf("language %q claimed by both %q and %q", e.Language, owner, e.Name)
			}
			languages[e.Language] = e.Name
		}
	}
	return nil
}
