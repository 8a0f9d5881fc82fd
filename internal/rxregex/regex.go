// Package rxregex wraps the stdlib regexp engine with the small amount of
// extra behavior the rewrite engine needs: flag letters parsed from config
// (i, x, u, g), byte-offset capture extraction, and Unicode normalization of
// the match subject under the "u" flag.
package rxregex

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// ErrInvalidPattern indicates the pattern body failed to compile. Fatal at
// parse time; never raised at request time.
var ErrInvalidPattern = errors.New("invalid regular expression")

// Regex is a compiled pattern plus the attributes carried alongside it:
// capture count, flags, and the original source text (kept for diagnostics
// and for equality-by-text comparisons against the empty pattern).
type Regex struct {
	re       *regexp.Regexp
	flags    Flags
	captures int
	raw      string
}

// Compile compiles pattern with the given flag letters. A bad pattern or an
// unknown flag letter is a fatal configuration error — this is only ever
// called during config parsing, never at request time.
func Compile(pattern, flagLetters string) (*Regex, error) {
	flags, err := ParseFlags(flagLetters)
	if err != nil {
		return nil, err
	}
	return CompileFlags(pattern, flags)
}

// CompileFlags is Compile with already-parsed flags.
func CompileFlags(pattern string, flags Flags) (*Regex, error) {
	body := pattern
	if flags.Extended {
		body = stripExtended(body)
	}

	goPattern := body
	if flags.CaseInsensitive {
		goPattern = "(?i)" + goPattern
	}

	re, err := regexp.Compile(goPattern)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidPattern, pattern, err)
	}

	return &Regex{
		re:       re,
		flags:    flags,
		captures: re.NumSubexp(),
		raw:      pattern,
	}, nil
}

// stripExtended implements the "x" flag: unescaped whitespace and
// '#'-to-end-of-line comments are removed before compilation, mirroring
// PCRE_EXTENDED. A backslash escapes the following character verbatim; a
// character class ("[...]") is copied through untouched, since whitespace
// and '#' are literal inside one.
func stripExtended(pattern string) string {
	var b strings.Builder
	b.Grow(len(pattern))
	escaped := false
	inClass := false
	inComment := false
	for _, r := range pattern {
		if inComment {
			if r == '\n' {
				inComment = false
			}
			continue
		}
		if escaped {
			b.WriteRune('\\')
			b.WriteRune(r)
			escaped = false
			continue
		}
		switch {
		case r == '\\':
			escaped = true
		case r == '[':
			inClass = true
			b.WriteRune(r)
		case r == ']':
			inClass = false
			b.WriteRune(r)
		case inClass:
			b.WriteRune(r)
		case r == '#':
			inComment = true
		case unicode.IsSpace(r):
			// dropped
		default:
			b.WriteRune(r)
		}
	}
	if escaped {
		b.WriteRune('\\')
	}
	return b.String()
}

// NumSubexp returns the number of capture groups in the pattern.
func (r *Regex) NumSubexp() int { return r.captures }

// Raw returns the original, unprocessed pattern source text.
func (r *Regex) Raw() string { return r.raw }

// Global reports whether the "g" flag was set.
func (r *Regex) Global() bool { return r.flags.Global }

// Unicode reports whether the "u" flag was set.
func (r *Regex) Unicode() bool { return r.flags.Unicode }

// Subject returns the byte slice that matching should actually run
// against: the input unchanged, unless the "u" flag requests Unicode
// normalization, in which case the NFC-normalized form is returned. The
// engine must use the returned subject (not the original) for slicing
// prefix/match/suffix, so offsets stay consistent.
func (r *Regex) Subject(input []byte) []byte {
	if !r.flags.Unicode {
		return input
	}
	return norm.NFC.Bytes(input)
}

// Find runs the pattern against subject starting at pos and returns the
// ovector: index 0 is the whole match's (start, end), indices 1..NumSubexp
// are capture groups, using -1 for an unmatched optional group. A nil
// return means no match.
func (r *Regex) Find(subject []byte, pos int) []int {
	loc := r.re.FindSubmatchIndex(subject[pos:])
	if loc == nil {
		return nil
	}
	out := make([]int, len(loc))
	for i, v := range loc {
		if v < 0 {
			out[i] = -1
		} else {
			out[i] = v + pos
		}
	}
	return out
}

// MatchString reports only whether subject matches, for callers (the
// context-caller check) that never need capture offsets.
func (r *Regex) MatchString(subject string) bool {
	return r.re.MatchString(subject)
}
