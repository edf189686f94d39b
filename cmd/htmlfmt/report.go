package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"

	"htmlfmt/internal/diag"
	"htmlfmt/internal/diagfmt"
	"htmlfmt/internal/driver"
)

var (
	errorColor = color.New(color.FgRed, color.Bold)
	pathColor  = color.New(color.Bold)
)

// renderDiagnostics prints the diagnostics of one result with source
// excerpts. Warnings and infos are skipped unless all is set.
func renderDiagnostics(w io.Writer, res driver.FormatResult, all bool) {
	opts := diagfmt.PrettyOpts{
		Color:       !color.NoColor,
		Context:     true,
		ShowNotes:   true,
		MinSeverity: diag.SevError,
	}
	if all {
		opts.MinSeverity = diag.SevInfo
	}
	diagfmt.Pretty(w, res.Path, res.File, res.Diagnostics, opts)
}

// renderFailure reports a file that produced no output.
func renderFailure(w io.Writer, res driver.FormatResult) {
	if errors.Is(res.Err, driver.ErrCouldNotParse) {
		fmt.Fprintf(w, "%s %s\n", errorColor.Sprint("Could not parse HTML from:"), res.Path)
		return
	}
	fmt.Fprintf(w, "%s %s: %v\n", errorColor.Sprint("error:"), res.Path, res.Err)
}
