package console

import (
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

type colorKind int

const (
	colorYellow colorKind = iota
	colorGreen
)

var (
	yellow = color.New(color.FgYellow)
	green  = color.New(color.FgGreen)

	// stdoutIsTTY gates colourisation the same way terminal-aware CLIs in
	// the pack do: check the underlying fd, not just whether a color
	// override was requested.
	stdoutIsTTY = isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
)

func colorize(s string, kind colorKind, opts InspectOptions) string {
	if !opts.Colors || !stdoutIsTTY {
		return s
	}
	switch kind {
	case colorYellow:
		return yellow.Sprint(s)
	case colorGreen:
		return green.Sprint(s)
	default:
		return s
	}
}
