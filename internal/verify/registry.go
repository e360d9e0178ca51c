// Package verify holds the registry of named verification predicates run
// against a question group's answer map at submission time.
package verify

import "strings"

// Func is a pure predicate over a group's full answer map, keyed by question
// text. It returns ok=false with a human-readable message to reject the
// whole group submission. Implementations must be side-effect free and total
// over valid option values.
type Func func(answers map[string]string) (ok bool, message string)

// Registry maps verification function names to predicates. Group creation
// validates names against the registry so unknown names fail before any
// submission occurs.
type Registry struct {
	funcs map[string]Func
}

// NewRegistry returns a registry seeded with the built-in predicates.
func NewRegistry() *Registry {
	r := &Registry{funcs: make(map[string]Func)}
	r.Register("all_non_empty", allNonEmpty)
	r.Register("descriptions_match_counts", descriptionsMatchCounts)
	return r
}

// Register adds or replaces a predicate under the given name.
func (r *Registry) Register(name string, fn Func) {
	r.funcs[name] = fn
}

// Lookup returns the predicate registered under name.
func (r *Registry) Lookup(name string) (Func, bool) {
	fn, ok := r.funcs[name]
	return fn, ok
}

// Has reports whether a predicate is registered under name.
func (r *Registry) Has(name string) bool {
	_, ok := r.funcs[name]
	return ok
}

// allNonEmpty rejects the group when any answer is blank.
func allNonEmpty(answers map[string]string) (bool, string) {
	for text, value := range answers {
		if strings.TrimSpace(value) == "" {
			return false, "answer for " + quote(text) + " must not be empty"
		}
	}
	return true, ""
}

// descriptionsMatchCounts enforces the pairing rule between count questions
// and their companion descriptions: a description answer must be non-empty
// exactly when its count question's answer is something other than "0".
func descriptionsMatchCounts(answers map[string]string) (bool, string) {
	for text, value := range answers {
		if !strings.HasPrefix(text, "Describe") {
			continue
		}
		for countText, countValue := range answers {
			if countText == text || !strings.HasPrefix(countText, "Number of") {
				continue
			}
			empty := strings.TrimSpace(value) == ""
			if countValue == "0" && !empty {
				return false, quote(text) + " must be empty when " + quote(countText) + " is 0"
			}
			if countValue != "0" && empty {
				return false, quote(text) + " is required when " + quote(countText) + " is " + countValue
			}
		}
	}
	return true, ""
}

func quote(s string) string {
	return "\"" + s + "\""
}
