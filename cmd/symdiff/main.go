// Command symdiff differentiates expressions from the command line.
//
// Usage:
//
//	symdiff derive "3x*4x^6" --steps
//	symdiff derive "sin(x*y)" --var y --json
//	symdiff simplify "x + x"
//	symdiff tokens "2x(x+1)"
//	symdiff serve --config symdiff.yaml
package main

import (
	"fmt"
	"os"

	symdiff "github.com/njchilds90/symdiff"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if kind := symdiff.ErrorKind(err); kind != symdiff.KindUnknown {
			fmt.Fprintf(os.Stderr, "symdiff: %v (%s)\n", err, kind)
		} else {
			fmt.Fprintf(os.Stderr, "symdiff: %v\n", err)
		}
		os.Exit(1)
	}
}
