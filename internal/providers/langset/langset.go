// Package langset builds the per-provider SupportedLanguages sets every
// Capability carries, starting from the full catalog and subtracting (or
// selecting) what a given provider actually covers.
package langset

import "github.com/transgate/gatewaycore/sdk/translate"

// AllExcept returns every catalog language except those listed.
func AllExcept(excluded ...translate.Language) map[translate.Language]bool {
	skip := make(map[translate.Language]bool, len(excluded))
	for _, l := range excluded {
		skip[l] = true
	}
	m := make(map[translate.Language]bool)
	for _, l := range translate.All() {
		if !skip[l] {
			m[l] = true
		}
	}
	return m
}

// Only returns a set containing exactly the listed languages.
func Only(included ...translate.Language) map[translate.Language]bool {
	m := make(map[translate.Language]bool, len(included))
	for _, l := range included {
		m[l] = true
	}
	return m
}
