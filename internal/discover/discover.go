// Package discover locates and loads rewritefs configuration files from
// their standard locations and concatenates them into a single engine
// configuration, preserving ordered first-match-wins semantics across
// files: system rules come first, then the user's global rules, then
// project rules, then whatever an explicit -o config= path contributes.
package discover

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"rewritefs/internal/config"
	"rewritefs/internal/rule"
)

// ChainPaths is every path consulted while building a chain, in load
// order, annotated with whether it actually existed. Used for
// rewritefs-lint's diagnostic output.
type ChainPaths struct {
	System   string
	Global   string
	Project  string
	Explicit string
	Found    map[string]bool
}

// Load resolves and parses, in order, the system config
// (/etc/rewritefs/config), the user config ($XDG_CONFIG_HOME or
// ~/.config/rewritefs/config), the nearest project config (walking up
// from cwd to the filesystem root, or to $HOME — the user config's own
// territory — whichever comes first), and, if explicitPath is
// non-empty, that file too. It returns their concatenation in that
// order. A missing system, user, or project file is skipped; a missing
// explicit file is an error, and so is a present-but-invalid file at any
// stage, per SPEC_FULL.md's "configuration fatal"
// class (grounded on the teacher's LoadConfigChain in
// cmd/cc-allow/config_load.go, adapted from TOML's file layout to this
// grammar's single-file-per-location model).
func Load(explicitPath string) (rule.Config, ChainPaths, error) {
	var chain []rule.Config
	paths := ChainPaths{Found: map[string]bool{}}

	tiers := []struct {
		path   func() string
		record func(string)
	}{
		{systemConfigPath, func(p string) { paths.System = p }},
		{globalConfigPath, func(p string) { paths.Global = p }},
		{projectConfigPath, func(p string) { paths.Project = p }},
	}
	for _, tier := range tiers {
		p := tier.path()
		if p == "" {
			continue
		}
		tier.record(p)
		cfg, ok, err := loadIfExists(p)
		if err != nil {
			return rule.Config{}, paths, err
		}
		if ok {
			paths.Found[p] = true
			chain = append(chain, cfg)
		}
	}

	if explicitPath != "" {
		paths.Explicit = explicitPath
		cfg, err := config.ParseFile(explicitPath)
		if err != nil {
			return rule.Config{}, paths, err
		}
		paths.Found[explicitPath] = true
		chain = append(chain, cfg)
	}

	return rule.Concat(chain...), paths, nil
}

func loadIfExists(path string) (rule.Config, bool, error) {
	cfg, err := config.ParseFile(path)
	if err != nil {
		if errors.Is(err, config.ErrNotFound) {
			return rule.Config{}, false, nil
		}
		return rule.Config{}, false, err
	}
	return cfg, true, nil
}

// systemConfigPath returns /etc/rewritefs/config, the machine-wide
// config consulted before any per-user file.
func systemConfigPath() string {
	return filepath.Join("/etc", "rewritefs", "config")
}

// globalConfigPath returns $XDG_CONFIG_HOME/rewritefs/config, falling
// back to ~/.config/rewritefs/config when $XDG_CONFIG_HOME is unset,
// per the XDG base directory spec's own fallback rule.
func globalConfigPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "rewritefs", "config")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "rewritefs", "config")
}

// projectConfigPath walks up from the current working directory looking
// for .rewritefs/config, stopping at $HOME or the filesystem root.
func projectConfigPath() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}
	home, _ := os.UserHomeDir()

	dir := cwd
	for {
		if home != "" && dir == home {
			return ""
		}
		candidate := filepath.Join(dir, ".rewritefs", "config")
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// DescribeChain renders the resolved chain paths for diagnostics.
func DescribeChain(p ChainPaths) string {
	describe := func(label, path string) string {
		if path == "" {
			return fmt.Sprintf("%s: (not searched)", label)
		}
		if p.Found[path] {
			return fmt.Sprintf("%s: %s", label, path)
		}
		return fmt.Sprintf("%s: %s (not found)", label, path)
	}
	return describe("system", p.System) + "\n" +
		describe("global", p.Global) + "\n" +
		describe("project", p.Project) + "\n" +
		describe("explicit", p.Explicit)
}
