package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/mattn/go-isatty"

	symdiff "github.com/njchilds90/symdiff"
)

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// writeSteps prints a step trace. On a terminal the steps are numbered and
// aligned; otherwise each step is one tab-separated rule/before/after line.
func writeSteps(w io.Writer, steps []symdiff.RenderedStep, terminal bool) error {
	if !terminal {
		for _, s := range steps {
			if _, err := fmt.Fprintf(w, "%s\t%s\t%s\n", s.Rule, s.Before, s.After); err != nil {
				return err
			}
		}
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for i, s := range steps {
		fmt.Fprintf(tw, "%3d.\t%s\t%s\t=>\t%s\n", i+1, s.Rule, s.Before, s.After)
	}
	return tw.Flush()
}
