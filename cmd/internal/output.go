// Package internal provides output formatting shared by every
// subcommand: TTY-aware color helpers so piped output stays plain
// while an interactive terminal gets highlighted status.
package internal

import (
	"io"
	"os"

	"github.com/fatih/color"
	"golang.org/x/term"
)

// IsTerminal reports whether w is an interactive terminal. Non-file
// writers (buffers, pipes captured by tests) are never terminals.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// Colors bundles the color functions used across cmd/. When w is not a
// terminal, or NO_COLOR is set, every function returns its input
// unstyled (https://no-color.org/).
type Colors struct {
	Success func(format string, a ...interface{}) string
	Failure func(format string, a ...interface{}) string
	Warn    func(format string, a ...interface{}) string
	Dim     func(format string, a ...interface{}) string
}

// NewColors builds a Colors bundle appropriate for writer w.
func NewColors(w io.Writer) Colors {
	_, noColor := os.LookupEnv("NO_COLOR")
	enabled := IsTerminal(w) && !noColor

	success := color.New(color.FgGreen)
	failure := color.New(color.FgRed)
	warn := color.New(color.FgYellow)
	dim := color.New(color.Faint)

	if !enabled {
		success.DisableColor()
		failure.DisableColor()
		warn.DisableColor()
		dim.DisableColor()
	}

	return Colors{
		Success: success.Sprintf,
		Failure: failure.Sprintf,
		Warn:    warn.Sprintf,
		Dim:     dim.Sprintf,
	}
}
