package config

import (
	"bytes"

	"github.com/BurntSushi/toml"

	"rewritefs/internal/rule"
)

// Dump is a diagnostic, serializable projection of a parsed Config. It is
// never read back by Parse — the rewrite grammar stays the one true config
// format — but rewritefs-lint renders it as TOML so operators can inspect
// how their rules were understood: each rule's pattern body (delimiter
// escapes already resolved), its g and u flags, and its replacement text.
// The delimiter used in the source file and the i and x flags are not
// recorded.
type Dump struct {
	Contexts []ContextDump `toml:"context"`
}

// ContextDump is one context's diagnostic projection.
type ContextDump struct {
	Default bool      `toml:"default"`
	Caller  string    `toml:"caller,omitempty"`
	Rules   []RuleDump `toml:"rule"`
}

// RuleDump is one rule's diagnostic projection.
type RuleDump struct {
	Pattern string `toml:"pattern"`
	Global  bool   `toml:"global"`
	Unicode bool   `toml:"unicode"`
	Replace string `toml:"replace"`
}

// ToDump projects a parsed Config into its diagnostic form.
func ToDump(cfg rule.Config) Dump {
	d := Dump{Contexts: make([]ContextDump, 0, len(cfg.Contexts))}
	for _, ctx := range cfg.Contexts {
		cd := ContextDump{
			Default: ctx.IsDefault(),
			Rules:   make([]RuleDump, 0, len(ctx.Rules)),
		}
		if ctx.Caller != nil {
			cd.Caller = ctx.Caller.Raw()
		}
		for _, r := range ctx.Rules {
			rd := RuleDump{
				Pattern: r.FilenameRegex.Raw(),
				Global:  r.FilenameRegex.Global(),
				Unicode: r.FilenameRegex.Unicode(),
			}
			if r.Rewrite != nil {
				rd.Replace = r.Rewrite.Raw
			} else {
				rd.Replace = "."
			}
			cd.Rules = append(cd.Rules, rd)
		}
		d.Contexts = append(d.Contexts, cd)
	}
	return d
}

// WriteTOML renders a Config's diagnostic dump as TOML.
func WriteTOML(cfg rule.Config) ([]byte, error) {
	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	if err := enc.Encode(ToDump(cfg)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
