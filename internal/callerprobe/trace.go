package callerprobe

import (
	"fmt"
	"strings"

	"mvdan.cc/sh/v3/syntax"
)

// TraceTokens splits a caller cmdline into shell-style tokens for
// diagnostic display (rewritefs-trace), using the same tokenizer the
// original config tooling used for parsing shell fragments. This is purely
// cosmetic: the rewrite engine itself matches the cmdline as one flat
// string, never shell-parsed, since a caller's argv[] already comes
// pre-split from /proc and re-interpreting it as shell syntax would invent
// quoting the caller never had.
func TraceTokens(cmdline string) ([]string, error) {
	parser := syntax.NewParser(syntax.Variant(syntax.LangBash))
	f, err := parser.Parse(strings.NewReader(cmdline), "")
	if err != nil {
		return nil, fmt.Errorf("callerprobe: tokenize %q: %w", cmdline, err)
	}

	var words []string
	syntax.Walk(f, func(node syntax.Node) bool {
		if lit, ok := node.(*syntax.Lit); ok {
			words = append(words, lit.Value)
		}
		return true
	})
	return words, nil
}
