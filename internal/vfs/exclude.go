package vfs

import "github.com/bmatcuk/doublestar/v4"

// ExcludeSet is a set of glob patterns (doublestar syntax: "**" for
// arbitrary depth) naming guest paths that must never be rewritten,
// regardless of what the context/rule chain would otherwise produce.
// This is an opt-in fast-path bypass for paths an operator knows should
// always pass straight through — a build tool's lockfile, a VCS
// directory — without needing a dedicated rule in every context.
type ExcludeSet struct {
	patterns []string
}

// NewExcludeSet validates each pattern eagerly so a typo'd glob fails at
// startup (config-fatal, like every other configuration error) instead
// of silently never matching at request time.
func NewExcludeSet(patterns []string) (*ExcludeSet, error) {
	for _, p := range patterns {
		if !doublestar.ValidatePattern(p) {
			return nil, &invalidGlobError{pattern: p}
		}
	}
	return &ExcludeSet{patterns: append([]string(nil), patterns...)}, nil
}

// Excluded reports whether guestPath — the full guest path as delivered
// by the kernel request, leading "/" and all — matches any configured
// pattern. Patterns are matched against this raw form, not the
// engine's slash-stripped rewrite subject: exclude globs are an
// operator-facing bypass of the engine entirely (SPEC_FULL.md's
// "guest-path globs"), so they never go through the engine's relative
// subject conversion in the first place.
func (e *ExcludeSet) Excluded(guestPath string) bool {
	if e == nil {
		return false
	}
	for _, p := range e.patterns {
		if ok, _ := doublestar.Match(p, guestPath); ok {
			return true
		}
	}
	return false
}

type invalidGlobError struct {
	pattern string
}

func (e *invalidGlobError) Error() string {
	return "vfs: invalid exclude glob: " + e.pattern
}
