// Command rewritefs-trace reads a candidate caller command line from
// stdin (or its positional argument) and prints both its raw form and
// its shell tokenization, to help an operator write a correct
// "- /regex/" context header without guessing how cmdline text splits.
package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"rewritefs/internal/callerprobe"
)

func main() {
	var cmdline string
	if flag := strings.Join(os.Args[1:], " "); flag != "" {
		cmdline = flag
	} else {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			fmt.Fprintf(os.Stderr, "rewritefs-trace: reading stdin: %v\n", err)
			os.Exit(1)
		}
		cmdline = strings.TrimRight(string(data), "\n")
	}

	fmt.Printf("cmdline: %q\n", cmdline)

	tokens, err := callerprobe.TraceTokens(cmdline)
	if err != nil {
		fmt.Fprintf(os.Stderr, "rewritefs-trace: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("tokens:")
	for i, tok := range tokens {
		fmt.Printf("  [%d] %q\n", i, tok)
	}
}
