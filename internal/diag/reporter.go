package diag

import "htmlfmt/internal/source"

// Reporter receives finished diagnostics from the parser and the AST builder.
type Reporter interface {
	Report(d Diagnostic)
}

// Builder collects notes for one diagnostic until Emit.
type Builder struct {
	reporter Reporter
	diag     Diagnostic
	emitted  bool
}

func newBuilder(r Reporter, sev Severity, code Code, primary source.Span, msg string) *Builder {
	return &Builder{
		reporter: r,
		diag:     Diagnostic{Severity: sev, Code: code, Message: msg, Primary: primary},
	}
}

// Error starts a SevError diagnostic.
func Error(r Reporter, code Code, primary source.Span, msg string) *Builder {
	return newBuilder(r, SevError, code, primary, msg)
}

// Warning starts a SevWarning diagnostic.
func Warning(r Reporter, code Code, primary source.Span, msg string) *Builder {
	return newBuilder(r, SevWarning, code, primary, msg)
}

// Note attaches a secondary location, e.g. where an element was opened.
func (b *Builder) Note(sp source.Span, msg string) *Builder {
	if b != nil {
		b.diag.Notes = append(b.diag.Notes, Note{Span: sp, Msg: msg})
	}
	return b
}

// Emit hands the diagnostic over; repeated calls are no-ops.
func (b *Builder) Emit() {
	if b == nil || b.emitted {
		return
	}
	b.emitted = true
	if b.reporter != nil {
		b.reporter.Report(b.diag)
	}
}

// BagReporter stores into Bag; a nil Bag drops everything.
type BagReporter struct{ Bag *Bag }

func (r BagReporter) Report(d Diagnostic) {
	if r.Bag != nil {
		r.Bag.Add(d)
	}
}

// NopReporter drops everything.
type NopReporter struct{}

func (NopReporter) Report(Diagnostic) {}
