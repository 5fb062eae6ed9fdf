package orchestrator

import (
	"fmt"

	"github.com/impalab/impalab/internal/manifest"
)

// ResolutionError reports a name or language that could not be
// resolved against the manifest and had no override supplied.
type ResolutionError struct {
	Kind string // "generator" or "algorithm"
	Ref  string
	Err  error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("resolve %s %q: %v", e.Kind, e.Ref, e.Err)
}

func (e *ResolutionError) Unwrap() error { return e.Err }

// GeneratorSpec is the resolved generator to run, or the zero value
// with Present=false when the run uses generator=none.
type GeneratorSpec struct {
	Present bool
	Run     manifest.RunCommand
}

// AlgorithmSpec is one resolved algorithm and the functions it should
// benchmark, in selection order.
type AlgorithmSpec struct {
	Language  string
	Run       manifest.RunCommand
	Functions []string
}

// RunPlan is the fully resolved set of components a run will spawn.
type RunPlan struct {
	Generator  GeneratorSpec
	Algorithms []AlgorithmSpec
}

// ResolveOptions carries everything needed to turn a manifest plus
// CLI selection into a RunPlan.
type ResolveOptions struct {
	Generator string // component name, or "none"
	Selection Selection
	Overrides Overrides
}

// Resolve merges m with opts into a RunPlan. Override commands are
// relative to the orchestrator's own working directory: they carry
// no Dir, unlike manifest-sourced commands whose Dir is the
// component's own discovered directory.
func Resolve(m manifest.Manifest, opts ResolveOptions) (RunPlan, error) {
	plan := RunPlan{}

	if opts.Generator != "" && opts.Generator != "none" {
		if opts.Overrides.GeneratorPath != "" {
			plan.Generator = GeneratorSpec{Present: true, Run: manifest.RunCommand{Command: opts.Overrides.GeneratorPath}}
		} else {
			entry, ok := m.ByName(opts.Generator)
			if !ok {
				return RunPlan{}, &ResolutionError{Kind: "generator", Ref: opts.Generator, Err: fmt.Errorf("not found in manifest and no override given")}
			}
			if entry.Kind != manifest.KindGenerator {
				return RunPlan{}, &ResolutionError{Kind: "generator", Ref: opts.Generator, Err: fmt.Errorf("component is not a generator")}
			}
			plan.Generator = GeneratorSpec{Present: true, Run: entry.Run}
		}
	}

	// Algorithms are spawned in the order the caller selected them,
	// not any resolved or alphabetical order (spec.md §3).
	for _, group := range opts.Selection {
		lang, fns := group.Language, group.Functions

		if override, ok := opts.Overrides.AlgorithmPathByLang[lang]; ok {
			plan.Algorithms = append(plan.Algorithms, AlgorithmSpec{
				Language:  lang,
				Run:       manifest.RunCommand{Command: override},
				Functions: fns,
			})
			continue
		}

		entry, ok := m.ByLanguage(lang)
		if !ok {
			return RunPlan{}, &ResolutionError{Kind: "algorithm", Ref: lang, Err: fmt.Errorf("no algorithm found for this language and no override given")}
		}
		plan.Algorithms = append(plan.Algorithms, AlgorithmSpec{
			Language:  lang,
			Run:       entry.Run,
			Functions: fns,
		})
	}

	return plan, nil
}
