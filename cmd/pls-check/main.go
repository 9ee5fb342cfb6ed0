// Command pls-check loads a positionlist file, runs the validation rules,
// and prints the entries as an aligned table. It exits non-zero when any
// blocking violation is found, so it slots into pre-write shell scripts.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"beamplan/internal/core"
	"beamplan/pkg/domain"
)

var exitFunc = os.Exit

func main() {
	code := cli(os.Args[1:], os.Stdout, os.Stderr)
	exitFunc(code)
}

func cli(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("pls-check", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		columns string
		sel     string
		quiet   bool
	)
	fs.StringVar(&columns, "columns", "", "comma-separated columns to tabulate (default ID,U,V,Comment,Layer,DoseFactor)")
	fs.StringVar(&sel, "select", "", "selection expression restricting the tabulated entries")
	fs.BoolVar(&quiet, "quiet", false, "suppress the entry table, report violations only")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(stderr, "usage: pls-check [flags] <positionlist file>")
		return 2
	}

	if err := run(fs.Arg(0), columns, sel, quiet, stdout, stderr); err != nil {
		fmt.Fprintf(stderr, "pls-check: %v\n", err)
		return 1
	}
	return 0
}

func run(path, columns, sel string, quiet bool, stdout, stderr io.Writer) error {
	list, err := core.ReadFile(path)
	if err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}

	result := list.Check(nil)
	for _, v := range result.Violations {
		level := "warning"
		if v.Severity == domain.SeverityBlock {
			level = "blocking"
		}
		fmt.Fprintf(stderr, "%s: %s: %s\n", level, v.Rule, v.Message)
	}

	if !quiet {
		var cols []string
		if columns != "" {
			for _, c := range strings.Split(columns, ",") {
				cols = append(cols, strings.TrimSpace(c))
			}
		}
		if err := list.Tabulate(stdout, sel, cols); err != nil {
			return err
		}
	}

	if result.HasBlocking() {
		return fmt.Errorf("%d blocking violation(s) in %s", countBlocking(result), path)
	}
	return nil
}

func countBlocking(res domain.Result) int {
	n := 0
	for _, v := range res.Violations {
		if v.Severity == domain.SeverityBlock {
			n++
		}
	}
	return n
}
