package discover

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadExplicitOnly(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config")
	if err := os.WriteFile(path, []byte("/foo/ bar\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, paths, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if len(cfg.Contexts) != 1 || len(cfg.Contexts[0].Rules) != 1 {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if paths.Explicit != path || !paths.Found[path] {
		t.Errorf("expected explicit path recorded as found, got %+v", paths)
	}
}

func TestLoadMissingExplicitIsError(t *testing.T) {
	_, _, err := Load(filepath.Join(t.TempDir(), "does-not-exist"))
	if err == nil {
		t.Error("expected an error for a missing explicit config path")
	}
}

func TestLoadNoExplicitNoPanic(t *testing.T) {
	// With HOME pointed somewhere empty and no explicit path, global and
	// project lookups should both miss cleanly rather than erroring.
	home := t.TempDir()
	t.Setenv("HOME", home)
	cfg, paths, err := Load("")
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if len(cfg.Contexts) != 0 {
		t.Errorf("expected empty config, got %+v", cfg)
	}
	if paths.Explicit != "" {
		t.Errorf("expected no explicit path, got %q", paths.Explicit)
	}
}

func TestLoadReadsXDGConfigHomeBeforeDotConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)

	dir := filepath.Join(xdg, "rewritefs")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config"), []byte("/foo/ bar\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, paths, err := Load("")
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if len(cfg.Contexts) != 1 || len(cfg.Contexts[0].Rules) != 1 {
		t.Fatalf("expected the XDG_CONFIG_HOME config to be loaded, got %+v", cfg)
	}
	wantGlobal := filepath.Join(xdg, "rewritefs", "config")
	if paths.Global != wantGlobal || !paths.Found[wantGlobal] {
		t.Errorf("expected global path %q found, got %+v", wantGlobal, paths)
	}
}

func TestDescribeChainReportsNotFound(t *testing.T) {
	paths := ChainPaths{Global: "/etc/rewritefs/config", Found: map[string]bool{}}
	desc := DescribeChain(paths)
	if !contains(desc, "not found") {
		t.Errorf("expected DescribeChain to flag missing global path, got %q", desc)
	}
}

func contains(s, sub string) bool {
	return len(s) >= len(sub) && (func() bool {
		for i := 0; i+len(sub) <= len(s); i++ {
			if s[i:i+len(sub)] == sub {
				return true
			}
		}
		return false
	})()
}
