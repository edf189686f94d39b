package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"htmlfmt/internal/diag"
	"htmlfmt/internal/source"
)

type palette struct {
	err, warn, info, path, gutter *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		err:    color.New(color.FgRed, color.Bold),
		warn:   color.New(color.FgYellow, color.Bold),
		info:   color.New(color.FgCyan),
		path:   color.New(color.Bold),
		gutter: color.New(color.FgBlue),
	}
	for _, c := range []*color.Color{p.err, p.warn, p.info, p.path, p.gutter} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p palette) severity(sev diag.Severity) *color.Color {
	switch sev {
	case diag.SevError:
		return p.err
	case diag.SevWarning:
		return p.warn
	default:
		return p.info
	}
}

// Pretty форматирует диагностики одного файла в человекочитаемый вид:
//
//	<path>:<line>:<col>: <SEV> <CODE>: <Message>
//
// then, with Context, the source line with ^~~~ under the span, then notes.
// sf may be nil, in which case positions and context are omitted.
// Diagnostics are printed in the given order; callers sort the bag first.
func Pretty(w io.Writer, path string, sf *source.File, diags []diag.Diagnostic, opts PrettyOpts) {
	p := newPalette(opts.Color)
	shown := formatPath(path, opts.PathMode, opts.BaseDir)

	for _, d := range diags {
		if !d.Severity.AtLeast(opts.MinSeverity) {
			continue
		}
		fmt.Fprintf(w, "%s: %s %s: %s\n",
			p.path.Sprint(location(shown, sf, d.Primary.Start)),
			p.severity(d.Severity).Sprint(d.Severity),
			d.Code.ID(),
			d.Message)
		if opts.Context && sf != nil {
			writeExcerpt(w, p, sf, d.Primary, p.severity(d.Severity))
		}
		if !opts.ShowNotes {
			continue
		}
		for _, n := range d.Notes {
			fmt.Fprintf(w, "    %s: %s: %s\n", p.info.Sprint("note"), location(shown, sf, n.Span.Start), n.Msg)
		}
	}
}

func location(path string, sf *source.File, off uint32) string {
	if sf == nil {
		return path
	}
	pos := sf.Position(off)
	return fmt.Sprintf("%s:%d:%d", path, pos.Line, pos.Col)
}

// writeExcerpt prints the first line of span with an underline. Columns are
// display cells, so wide runes keep the marker aligned.
func writeExcerpt(w io.Writer, p palette, sf *source.File, span source.Span, mark *color.Color) {
	start, end := sf.Position(span.Start), sf.Position(span.End)
	line := lineText(sf, start.Line)
	if line == "" {
		return
	}
	startCol := int(start.Col) - 1
	endCol := len(line)
	if end.Line == start.Line && int(end.Col)-1 < endCol {
		endCol = int(end.Col) - 1
	}
	startCol = min(startCol, len(line))
	endCol = max(endCol, startCol)

	gutter := fmt.Sprintf("%4d | ", start.Line)
	fmt.Fprintf(w, "%s%s\n", p.gutter.Sprint(gutter), line)

	width := max(runewidth.StringWidth(line[startCol:endCol]), 1)
	underline := "^" + strings.Repeat("~", width-1)
	fmt.Fprintf(w, "%s%s%s\n",
		p.gutter.Sprint(strings.Repeat(" ", len(gutter)-2)+"| "),
		pad(line[:startCol]),
		mark.Sprint(underline))
}

// pad keeps tabs and turns everything else into spaces of the same width.
func pad(prefix string) string {
	var sb strings.Builder
	for _, r := range prefix {
		if r == '\t' {
			sb.WriteByte('\t')
			continue
		}
		sb.WriteString(strings.Repeat(" ", runewidth.RuneWidth(r)))
	}
	return sb.String()
}

func lineText(sf *source.File, line uint32) string {
	if line == 0 {
		return ""
	}
	var startOff uint32
	if line > 1 {
		if int(line-2) >= len(sf.LineIdx) {
			return ""
		}
		startOff = sf.LineIdx[line-2] + 1
	}
	endOff := uint32(len(sf.Content)) //nolint:gosec // file sizes are bounded by FileSet
	if int(line-1) < len(sf.LineIdx) {
		endOff = sf.LineIdx[line-1]
	}
	if startOff > endOff {
		return ""
	}
	return strings.TrimRight(string(sf.Content[startOff:endOff]), "\r")
}
