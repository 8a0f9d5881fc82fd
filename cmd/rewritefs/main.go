// Command rewritefs mounts a caller-aware, regex-rewriting pass-through
// view of a source directory. The actual kernel-request dispatch loop is
// an external collaborator (see internal/vfs); this binary's job is
// argument parsing, config discovery, and wiring the engine, guard, and
// operation layer together before handing off to it.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"rewritefs/internal/discover"
	"rewritefs/internal/engine"
	"rewritefs/internal/guard"
	"rewritefs/internal/vfs"
	"rewritefs/pkg/pathutil"
)

// Version info set via ldflags, same convention as the teacher's main.go.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var debugLog = false

func logDebug(format string, args ...any) {
	if debugLog {
		fmt.Fprintf(os.Stderr, "[rewritefs] "+format+"\n", args...)
	}
}

// mountOptions accumulates "-o key=value[,key=value...]" pairs, usable
// as a repeated flag. Values containing a literal comma (currently only
// "exclude") use ":" as their own internal separator to avoid colliding
// with the top-level comma split.
type mountOptions map[string]string

func (o mountOptions) String() string {
	var parts []string
	for k, v := range o {
		parts = append(parts, k+"="+v)
	}
	return strings.Join(parts, ",")
}

func (o mountOptions) Set(s string) error {
	for _, pair := range strings.Split(s, ",") {
		if pair == "" {
			continue
		}
		k, v, has := strings.Cut(pair, "=")
		if !has {
			o[k] = ""
			continue
		}
		o[k] = v
	}
	return nil
}

func main() {
	options := mountOptions{}
	flag.Var(options, "o", "mount options: config=PATH, verbose=0..4, autocreate, exclude=GLOB[:GLOB...]")
	showVersion := flag.Bool("V", false, "print version and exit")
	flag.BoolVar(showVersion, "version", false, "print version and exit")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [options] <source> <mountpoint>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if *showVersion {
		fmt.Printf("rewritefs %s (commit: %s, built: %s)\n", version, commit, date)
		os.Exit(0)
	}

	if level, err := strconv.Atoi(options["verbose"]); err == nil && level > 0 {
		debugLog = true
	}

	args := flag.Args()
	if len(args) != 2 {
		flag.Usage()
		os.Exit(1)
	}
	cwd, _ := os.Getwd()
	home, _ := os.UserHomeDir()
	source := pathutil.ResolvePath(args[0], cwd, home)
	mountpoint := pathutil.ResolvePath(args[1], cwd, home)

	cfg, chain, err := discover.Load(options["config"])
	if err != nil {
		fmt.Fprintf(os.Stderr, "rewritefs: config error: %v\n", err)
		os.Exit(1)
	}
	logDebug("config chain:\n%s", discover.DescribeChain(chain))
	logDebug("%d context(s) loaded", len(cfg.Contexts))

	var exclude *vfs.ExcludeSet
	if raw := options["exclude"]; raw != "" {
		globs := strings.Split(raw, ":")
		exclude, err = vfs.NewExcludeSet(globs)
		if err != nil {
			fmt.Fprintf(os.Stderr, "rewritefs: %v\n", err)
			os.Exit(1)
		}
	}

	ops, err := vfs.NewPassthrough(source)
	if err != nil {
		fmt.Fprintf(os.Stderr, "rewritefs: cannot open source %q: %v\n", source, err)
		os.Exit(1)
	}
	defer ops.Close()

	if _, err := os.Stat(mountpoint); err != nil {
		fmt.Fprintf(os.Stderr, "rewritefs: mountpoint %q: %v\n", mountpoint, err)
		os.Exit(1)
	}

	dispatcher := vfs.NewDispatcher(engine.New(cfg), &guard.Guard{}, ops, exclude)
	runForeground(dispatcher, source, mountpoint)
}

// runForeground blocks until interrupted, mirroring a real FUSE daemon's
// foreground loop. With no vendored kernel binding in this repo's
// dependency pack (see DESIGN.md), this is the contract boundary: a
// production build would hand dispatcher to that binding's Serve loop
// here instead of just waiting on a signal.
func runForeground(dispatcher *vfs.Dispatcher, source, mountpoint string) {
	_ = dispatcher // the boundary a real kernel-request binding would call into
	logDebug("mounted %s at %s", source, mountpoint)
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	logDebug("unmounting %s", mountpoint)
}
