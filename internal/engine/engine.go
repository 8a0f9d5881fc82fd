// Package engine implements the rewrite decision itself: given a request's
// path and caller, find the first matching context, then the first
// matching rule within it, and produce the rewritten path.
package engine

import (
	"bytes"
	"log"
	"os"
	"strings"

	"rewritefs/internal/callerprobe"
	"rewritefs/internal/rule"
	"rewritefs/internal/rxregex"
	"rewritefs/internal/template"
)

// debug controls verbose per-request tracing, toggled by the REWRITEFS_DEBUG
// environment variable so it can be flipped without a rebuild, matching the
// teacher's logDebug convention.
var debug = os.Getenv("REWRITEFS_DEBUG") != ""

func logDebug(format string, args ...any) {
	if debug {
		log.Printf("[rewritefs] "+format, args...)
	}
}

// Engine holds an immutable, already-parsed configuration and rewrites
// paths against it. Safe for concurrent use: Rewrite mutates no shared
// state, and a Probe is per-call.
type Engine struct {
	cfg rule.Config
}

// New wraps a parsed configuration as a rewrite engine.
func New(cfg rule.Config) *Engine {
	return &Engine{cfg: cfg}
}

// Rewrite translates guestPath for the request made by callerPID, applying
// the first matching context's first matching rule. guestPath always
// begins with "/"; the subject used for matching and returned on
// passthrough is guestPath with that leading slash stripped, mapping the
// root "/" to ".", per spec.md §4.6 and §8's boundary behavior.
func (e *Engine) Rewrite(guestPath string, callerPID int) string {
	path := relativeSubject(guestPath)
	probe := callerprobe.New(callerPID)

	for _, ctx := range e.cfg.Contexts {
		if !e.contextMatches(ctx, probe) {
			continue
		}
		for _, r := range ctx.Rules {
			if out, ok := e.applyRule(r, path); ok {
				logDebug("rewrite %q -> %q (context default=%v)", guestPath, out, ctx.IsDefault())
				return out
			}
		}
		// First matching context is authoritative even if none of its
		// rules matched this particular path: later contexts are not
		// consulted, matching spec.md's "first context wins" invariant.
		return path
	}
	return path
}

// relativeSubject strips guestPath's leading "/" so rule regexes match
// against a host-relative path, mapping the root to "." instead of "".
func relativeSubject(guestPath string) string {
	rel := strings.TrimPrefix(guestPath, "/")
	if rel == "" {
		return "."
	}
	return rel
}

func (e *Engine) contextMatches(ctx rule.Context, probe *callerprobe.Probe) bool {
	if ctx.IsDefault() {
		return true
	}
	return probe.MatchString(ctx.Caller.MatchString)
}

// applyRule reports whether r's pattern matches path, and if so the
// rewritten result. A "." template (Rewrite == nil) means the rule matches
// but leaves the path untouched, which still counts as a match — it stops
// further rule and context evaluation, the same as any other rule.
func (e *Engine) applyRule(r rule.Rule, path string) (string, bool) {
	re := r.FilenameRegex
	subject := re.Subject([]byte(path))

	if !re.Global() {
		loc := re.Find(subject, 0)
		if loc == nil {
			return "", false
		}
		if template.IsNone(r.Rewrite) {
			return path, true
		}
		return string(substituteOne(subject, loc, r.Rewrite)), true
	}

	loc := re.Find(subject, 0)
	if loc == nil {
		return "", false
	}
	if template.IsNone(r.Rewrite) {
		return path, true
	}
	return string(substituteAll(re, subject, r.Rewrite)), true
}

// substituteOne applies the template to a single match, keeping everything
// outside the match span unchanged.
func substituteOne(subject []byte, loc []int, tpl *template.Template) []byte {
	var out bytes.Buffer
	out.Write(subject[:loc[0]])
	out.Write(template.Apply(tpl, loc, subject))
	out.Write(subject[loc[1]:])
	return out.Bytes()
}

// substituteAll applies the template to every non-overlapping match,
// left to right. A zero-width match still advances by at least one byte
// so the loop is guaranteed to terminate — the alternative (refusing to
// advance) would hang on any pattern capable of matching empty.
func substituteAll(re *rxregex.Regex, subject []byte, tpl *template.Template) []byte {
	var out bytes.Buffer
	pos := 0
	for pos <= len(subject) {
		loc := re.Find(subject, pos)
		if loc == nil {
			break
		}
		out.Write(subject[pos:loc[0]])
		out.Write(template.Apply(tpl, loc, subject))
		if loc[1] > loc[0] {
			pos = loc[1]
			continue
		}
		// Zero-width match: emit the byte we're standing on (if any) and
		// step past it before searching again.
		if loc[1] < len(subject) {
			out.WriteByte(subject[loc[1]])
		}
		pos = loc[1] + 1
	}
	if pos < len(subject) {
		out.Write(subject[pos:])
	}
	return out.Bytes()
}
