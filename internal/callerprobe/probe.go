// Package callerprobe identifies the process issuing a filesystem request
// by reading its /proc/<pid>/cmdline, so context caller patterns can match
// against it. A probe is lazy and memoized: the cmdline is read from /proc
// at most once per call, only if some context actually has a caller
// pattern to test it against.
package callerprobe

import (
	"bytes"
	"fmt"
	"os"
	"strings"
)

// Probe resolves and caches a single request's caller cmdline. Not safe for
// concurrent use by multiple goroutines — the engine constructs one Probe
// per dispatched request.
type Probe struct {
	pid int

	resolved bool
	cmdline  string
	err      error
}

// New returns a probe for the given caller pid. Nothing is read from /proc
// until Cmdline is first called.
func New(pid int) *Probe {
	return &Probe{pid: pid}
}

// Cmdline returns the caller's command line, space-joined from the NUL
// separated argv recorded in /proc/<pid>/cmdline. The result is cached: a
// second call never touches /proc again, even if the first call failed.
func (p *Probe) Cmdline() (string, error) {
	if p.resolved {
		return p.cmdline, p.err
	}
	p.resolved = true
	p.cmdline, p.err = readCmdline(p.pid)
	return p.cmdline, p.err
}

// MatchString reports whether the caller's cmdline satisfies matches. A probe
// error (caller exited, /proc unavailable) is treated as no-match rather
// than a fatal error, since the caller that triggered the original request
// may legitimately be gone by the time it's probed.
func (p *Probe) MatchString(matches func(string) bool) bool {
	cmdline, err := p.Cmdline()
	if err != nil {
		return false
	}
	return matches(cmdline)
}

func readCmdline(pid int) (string, error) {
	path := fmt.Sprintf("/proc/%d/cmdline", pid)
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("callerprobe: read %s: %w", path, err)
	}
	data = bytes.TrimRight(data, "\x00")
	if len(data) == 0 {
		return "", nil
	}
	args := strings.Split(string(data), "\x00")
	return strings.Join(args, " "), nil
}
