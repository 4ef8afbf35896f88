package main

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/chazu/jniaccess/pkg/codegen"
)

const (
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorReset  = "\033[0m"
)

// useColor reports whether w is a terminal that should get ANSI colours.
func useColor(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// reportDiagnostics prints every diagnostic and returns the error count.
func reportDiagnostics(w io.Writer, diags []codegen.Diagnostic) int {
	color := useColor(w)
	errors := 0
	for _, d := range diags {
		text := d.String()
		if d.Severity == codegen.SeverityError {
			errors++
		}
		if color {
			c := colorYellow
			if d.Severity == codegen.SeverityError {
				c = colorRed
			}
			text = c + text + colorReset
		}
		fmt.Fprintln(w, text)
	}
	return errors
}
