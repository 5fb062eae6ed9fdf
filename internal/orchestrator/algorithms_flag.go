package orchestrator

import (
	"fmt"
	"strings"
)

// LanguageSelection is one "lang:fn1,fn2" group from --algorithms, in
// the order its function names were given.
type LanguageSelection struct {
	Language  string
	Functions []string
}

// Selection is the parsed shape of --algorithms: an ordered list of
// per-language groups. Order is significant — it is the caller's
// selection order, which fixes the spawn order of the resolved
// RunPlan's algorithms (spec.md §3: "The list order is fixed by the
// caller's selection ... it does not determine output event order").
type Selection []LanguageSelection

// ParseAlgorithms parses the compact grammar "lang:fn1,fn2;lang2:fn3"
// into a Selection, preserving the order groups appear in spec.
// Languages and function names must be non-empty; a language listed
// more than once is an error rather than silently merged, since a
// merge order would be ambiguous.
func ParseAlgorithms(spec string) (Selection, error) {
	var sel Selection
	seen := make(map[string]bool)
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return sel, nil
	}

	for _, group := range strings.Split(spec, ";") {
		group = strings.TrimSpace(group)
		if group == "" {
			continue
		}
		lang, fnList, ok := strings.Cut(group, ":")
		if !ok {
			return nil, fmt.Errorf("invalid --algorithms group %q: missing ':'", group)
		}
		lang = strings.TrimSpace(lang)
		if lang == "" {
			return nil, fmt.Errorf("invalid --algorithms group %q: empty language", group)
		}
		if seen[lang] {
			return nil, fmt.Errorf("language %q specified more than once in --algorithms", lang)
		}

		var fns []string
		for _, fn := range strings.Split(fnList, ",") {
			fn = strings.TrimSpace(fn)
			if fn == "" {
				return nil, fmt.Errorf("invalid --algorithms group %q: empty function name", group)
			}
			fns = append(fns, fn)
		}
		if len(fns) == 0 {
			return nil, fmt.Errorf("invalid --algorithms group %q: no function names", group)
		}
		seen[lang] = true
		sel = append(sel, LanguageSelection{Language: lang, Functions: fns})
	}
	return sel, nil
}

// Overrides carries CLI-supplied run command overrides, keyed by
// language for algorithms and separately for the generator.
type Overrides struct {
	GeneratorPath       string
	AlgorithmPathByLang map[string]string
}

// ParseAlgorithmOverrides parses a repeated --algorithm-override
// lang=path flag list into a map.
func ParseAlgorithmOverrides(values []string) (map[string]string, error) {
	out := make(map[string]string, len(values))
	for _, v := range values {
		lang, path, ok := strings.Cut(v, "=")
		if !ok || lang == "" || path == "" {
			return nil, fmt.Errorf("invalid --algorithm-override %q: expected lang=path", v)
		}
		out[lang] = path
	}
	return out, nil
}
