// Command filterql parses and compiles query filter strings and serves
// filtered scans of a DuckDB database over Arrow Flight.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
