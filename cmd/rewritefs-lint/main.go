// Command rewritefs-lint loads a rewritefs configuration chain, checks
// it for syntax errors, and prints every context and rule in declared
// order — unlike cc-fmt's specificity sort, order is the whole point of
// this grammar, since the first matching context and rule always wins.
package main

import (
	"flag"
	"fmt"
	"os"

	"rewritefs/internal/config"
	"rewritefs/internal/discover"
)

func main() {
	configPath := flag.String("config", "", "explicit config file (adds to the discovery chain)")
	dumpTOML := flag.Bool("dump-toml", false, "print the config as structured TOML instead of the human-readable listing")
	flag.Parse()

	cfg, chain, err := discover.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "rewritefs-lint: %v\n", err)
		os.Exit(1)
	}

	fmt.Fprintln(os.Stderr, discover.DescribeChain(chain))
	fmt.Fprintln(os.Stderr)

	if *dumpTOML {
		out, err := config.WriteTOML(cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "rewritefs-lint: %v\n", err)
			os.Exit(1)
		}
		os.Stdout.Write(out)
		return
	}

	dump := config.ToDump(cfg)
	for i, ctx := range dump.Contexts {
		if ctx.Default {
			fmt.Printf("context %d: default (matches every caller)\n", i)
		} else {
			fmt.Printf("context %d: caller ~= /%s/\n", i, ctx.Caller)
		}
		for j, r := range ctx.Rules {
			flags := ""
			if r.Global {
				flags += "g"
			}
			if r.Unicode {
				flags += "u"
			}
			fmt.Printf("  rule %d: /%s/%s -> %q\n", j, r.Pattern, flags, r.Replace)
		}
	}
	fmt.Printf("\n%d context(s) total.\n", len(dump.Contexts))
}
