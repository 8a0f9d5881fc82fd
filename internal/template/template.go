// Package template implements the replacement-template half of a rewrite
// rule: parsing a substitution string into literal chunks and
// backreferences, and applying a parsed template against a regex match.
package template

import (
	"strings"
)

// Part is one piece of a parsed template: either a literal byte run or a
// backreference to a capture group (0-9).
type Part struct {
	Literal []byte
	Group   int  // valid only when IsRef
	IsRef   bool
}

// Template is a parsed replacement string, or the None sentinel meaning
// "pass the subject through unchanged" (config spelling: ".").
type Template struct {
	Parts []Part
	Raw   string
}

// None is returned by Parse for the literal template string ".". Engine
// code tests for it with IsNone.
func IsNone(t *Template) bool { return t == nil }

// Parse parses a template string. The grammar has one escape: "\\" is a
// literal backslash, "\0".."\9" are backreferences, any other "\X" is
// passed through as the two literal bytes "\X". Adjacent literal bytes are
// coalesced into a single Part, matching the canonical parse of
// "abc\1def" -> [lit("abc"), ref(1), lit("def")].
func Parse(raw string) *Template {
	if raw == "." {
		return nil
	}

	var parts []Part
	var lit strings.Builder

	flush := func() {
		if lit.Len() > 0 {
			parts = append(parts, Part{Literal: []byte(lit.String())})
			lit.Reset()
		}
	}

	escaped := false
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		if escaped {
			switch {
			case c == '\\':
				lit.WriteByte('\\')
			case c >= '0' && c <= '9':
				flush()
				parts = append(parts, Part{IsRef: true, Group: int(c - '0')})
			default:
				lit.WriteByte('\\')
				lit.WriteByte(c)
			}
			escaped = false
			continue
		}
		if c == '\\' {
			escaped = true
			continue
		}
		lit.WriteByte(c)
	}
	if escaped {
		lit.WriteByte('\\')
	}
	flush()

	return &Template{Parts: parts, Raw: raw}
}

// Apply concatenates the template's parts against a match's capture
// offsets (an ovector as produced by rxregex.Regex.Find, relative to
// subject) and the subject bytes the match ran against. A backreference to
// a group at or beyond the number of groups actually present in ovector
// (or to a group that didn't participate, i.e. offset -1) contributes
// nothing, per spec.
func Apply(t *Template, ovector []int, subject []byte) []byte {
	groupCount := len(ovector) / 2
	var out []byte
	for _, p := range t.Parts {
		if !p.IsRef {
			out = append(out, p.Literal...)
			continue
		}
		if p.Group >= groupCount {
			continue
		}
		start, end := ovector[p.Group*2], ovector[p.Group*2+1]
		if start < 0 || end < 0 {
			continue
		}
		out = append(out, subject[start:end]...)
	}
	return out
}
