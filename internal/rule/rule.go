// Package rule holds the in-memory data model the configuration parser
// builds and the rewrite engine consumes: rules, contexts, and the
// top-level config. All of it is immutable once constructed.
package rule

import (
	"rewritefs/internal/rxregex"
	"rewritefs/internal/template"
)

// Rule is an immutable (filename pattern, replacement template) pair.
// Rewrite is nil for a "." template, meaning "pass through unchanged".
type Rule struct {
	FilenameRegex *rxregex.Regex
	Rewrite       *template.Template
}

// Context is an ordered list of rules gated by an optional caller-cmdline
// pattern. Caller is nil for the default context, which matches every
// caller and every request regardless of whether a caller cmdline could be
// obtained.
type Context struct {
	Caller *rxregex.Regex
	Rules  []Rule
}

// IsDefault reports whether this context matches every caller.
func (c Context) IsDefault() bool { return c.Caller == nil }

// Config is the full parsed engine state: the ordered list of contexts, in
// declared order. The first matching context wins; within it, the first
// matching rule wins.
type Config struct {
	Contexts []Context
}

// Concat joins the given configs' contexts in argument order, preserving
// each config's internal ordering. Used to build the context chain from
// global, project, and explicit config files (see internal/discover).
func Concat(configs ...Config) Config {
	var out Config
	for _, c := range configs {
		out.Contexts = append(out.Contexts, c.Contexts...)
	}
	return out
}
