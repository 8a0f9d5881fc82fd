// Package config parses the rewritefs configuration grammar (comments,
// context headers, and rewrite rules) into an internal/rule.Config.
//
// Grammar (see SPEC_FULL.md §4.4):
//
//	config         := (blank | comment | directive)*
//	comment        := '#' <to newline>
//	directive      := context-header | rule
//	context-header := '-' blank regex
//	rule           := regex blank template-line
//	regex          := '/' body '/' flags | 'm' delim body delim flags
//	template-line  := <bytes to newline, '\' escape>
package config

import (
	"fmt"
	"os"

	"rewritefs/internal/rule"
	"rewritefs/internal/rxregex"
	"rewritefs/internal/template"
)

// Parse parses config file contents into an engine Config. Rules declared
// before any context header belong to an implicit initial default context.
// That implicit context is never pushed ahead of an explicit one: an
// explicit context header as the first directive starts the context list
// itself, so it is free to precede other contexts. An empty file (or one
// consisting only of comments) still produces exactly one context, the
// implicit empty default.
func Parse(data []byte) (rule.Config, error) {
	p := &parser{data: data}
	var cfg rule.Config

	for {
		p.skipBlanks()
		if p.eof() {
			if len(cfg.Contexts) == 0 {
				cfg.Contexts = []rule.Context{{}}
			}
			return cfg, nil
		}

		start := p.pos
		c := p.advance()
		switch {
		case c == '#':
			p.skipComment()

		case c == '-':
			p.skipBlanks()
			body, flags, err := p.readRegex(0)
			if err != nil {
				return rule.Config{}, err
			}
			var caller *rxregex.Regex
			if body != "" {
				caller, err = rxregex.Compile(body, flags)
				if err != nil {
					return rule.Config{}, p.wrapAt(start, err)
				}
			}
			cfg.Contexts = append(cfg.Contexts, rule.Context{Caller: caller})

		case c == '/':
			p.ensureImplicitDefault(&cfg)
			if err := p.parseRule(&cfg, start, '/'); err != nil {
				return rule.Config{}, err
			}

		case c == 'm':
			if p.eof() {
				return rule.Config{}, p.errf(ErrUnexpectedEOF)
			}
			sep := p.advance()
			p.ensureImplicitDefault(&cfg)
			if err := p.parseRule(&cfg, start, sep); err != nil {
				return rule.Config{}, err
			}

		default:
			return rule.Config{}, p.errAt(start, fmt.Errorf("%w: %q", ErrUnexpectedChar, string(c)))
		}
	}
}

// ensureImplicitDefault pushes the implicit default context the first time
// a rule directive is seen with no preceding context header.
func (p *parser) ensureImplicitDefault(cfg *rule.Config) {
	if len(cfg.Contexts) == 0 {
		cfg.Contexts = append(cfg.Contexts, rule.Context{})
	}
}

// parseRule reads a rule's regex, flags, and template line and appends it
// to the current (most recently declared) context.
func (p *parser) parseRule(cfg *rule.Config, start int, sep byte) error {
	body, flags, err := p.readRegex(sep)
	if err != nil {
		return err
	}
	p.skipBlanks()
	tplRaw, err := p.readDelimited('\n')
	if err != nil {
		return err
	}

	re, err := rxregex.Compile(body, flags)
	if err != nil {
		return p.wrapAt(start, err)
	}
	tpl := template.Parse(tplRaw)

	last := &cfg.Contexts[len(cfg.Contexts)-1]
	last.Rules = append(last.Rules, rule.Rule{FilenameRegex: re, Rewrite: tpl})
	return nil
}

// ParseFile reads and parses a config file from disk.
func ParseFile(path string) (rule.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return rule.Config{}, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return rule.Config{}, fmt.Errorf("%w: %s: %v", ErrRead, path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return rule.Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// parser is a byte-oriented scanner over an in-memory config file. Line/col
// for diagnostics are computed lazily from a byte offset, since fatal parse
// errors are rare and never on a hot path.
type parser struct {
	data []byte
	pos  int
}

func (p *parser) eof() bool { return p.pos >= len(p.data) }

func (p *parser) peek() byte { return p.data[p.pos] }

func (p *parser) advance() byte {
	c := p.data[p.pos]
	p.pos++
	return c
}

func isBlank(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}

// skipBlanks consumes a run of whitespace, per spec.md's "blank := whitespace".
func (p *parser) skipBlanks() {
	for !p.eof() && isBlank(p.peek()) {
		p.pos++
	}
}

// skipComment consumes through (and including) the next newline, or EOF.
func (p *parser) skipComment() {
	for !p.eof() {
		if p.advance() == '\n' {
			return
		}
	}
}

// readDelimited consumes bytes up to an unescaped sep, applying the
// grammar's one escape rule: "\\" -> "\", "\<sep>" -> "<sep>", "\<other>"
// passes both bytes through unchanged. EOF before sep is fatal.
func (p *parser) readDelimited(sep byte) (string, error) {
	var out []byte
	for {
		if p.eof() {
			return "", p.errf(ErrUnexpectedEOF)
		}
		c := p.advance()
		if c == '\\' {
			if p.eof() {
				return "", p.errf(ErrUnexpectedEOF)
			}
			e := p.advance()
			if e == '\\' || e == sep {
				out = append(out, e)
			} else {
				out = append(out, '\\', e)
			}
			continue
		}
		if c == sep {
			return string(out), nil
		}
		out = append(out, c)
	}
}

// readFlags consumes a run of non-whitespace flag letters, terminated by
// (and discarding) the next whitespace byte. EOF before a terminator is
// fatal, matching the original parser's unbuffered getc loop.
func (p *parser) readFlags() (string, error) {
	var out []byte
	for {
		if p.eof() {
			return "", p.errf(ErrUnexpectedEOF)
		}
		c := p.advance()
		if isBlank(c) {
			return string(out), nil
		}
		out = append(out, c)
	}
}

// readRegex reads a regex's body and flags. When sep is 0 the delimiter is
// auto-detected from the stream: '/' for a plain body, or 'm' followed by
// one more byte naming an arbitrary delimiter. When sep is already known
// (the dispatcher already consumed the opening marker), it reads straight
// from there.
func (p *parser) readRegex(sep byte) (body, flags string, err error) {
	if sep == 0 {
		if p.eof() {
			return "", "", p.errf(ErrUnexpectedEOF)
		}
		c := p.advance()
		switch {
		case c == 'm':
			if p.eof() {
				return "", "", p.errf(ErrUnexpectedEOF)
			}
			sep = p.advance()
		case c == '/':
			sep = '/'
		default:
			return "", "", p.errf(fmt.Errorf("%w: %q", ErrUnexpectedChar, string(c)))
		}
	}

	body, err = p.readDelimited(sep)
	if err != nil {
		return "", "", err
	}
	flags, err = p.readFlags()
	if err != nil {
		return "", "", err
	}
	return body, flags, nil
}

func (p *parser) errf(err error) error { return p.errAt(p.pos, err) }

func (p *parser) errAt(pos int, err error) error {
	line, col := locate(p.data, pos)
	return &SyntaxError{Err: err, Line: line, Col: col}
}

func (p *parser) wrapAt(pos int, err error) error { return p.errAt(pos, err) }

// locate computes the 1-based (line, col) of a byte offset.
func locate(data []byte, pos int) (line, col int) {
	line, col = 1, 1
	for i := 0; i < pos && i < len(data); i++ {
		if data[i] == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return line, col
}
