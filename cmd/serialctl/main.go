// Command serialctl converts a catalog object between the binary, text and
// framed formats, and renders it as XML for inspection.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "serialctl: %v\n", err)
		os.Exit(1)
	}
}
