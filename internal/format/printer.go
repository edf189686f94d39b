package format

import (
	"errors"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"

	"htmlfmt/internal/ast"
	"htmlfmt/internal/diag"
	"htmlfmt/internal/source"
	"htmlfmt/internal/trace"
)

// maxDiagnostics caps parser findings kept per run.
const maxDiagnostics = 128

// Result is the outcome of one run. On a parse failure Output is empty, AST
// is an empty Root and Err is set.
type Result struct {
	RunID       string
	Output      string
	Traces      []*trace.Record
	AST         *ast.Root
	Diagnostics []diag.Diagnostic
	Err         error
}

// Printer formats documents. A Printer owns the trace collector of its runs
// and must not be shared between goroutines; use one Printer per worker.
// Extra tracers passed to NewPrinter may be shared if they are safe for
// concurrent use.
type Printer struct {
	opts      Options
	collector *trace.Collector
	extra     []trace.Tracer
}

func NewPrinter(opts Options, tracers ...trace.Tracer) *Printer {
	opts = opts.withDefaults()
	level := trace.LevelDebug
	if opts.NoTrace {
		level = trace.LevelOff
	}
	return &Printer{
		opts:      opts,
		collector: trace.NewCollector(level),
		extra:     tracers,
	}
}

func (p *Printer) Options() Options { return p.opts }

// Run formats an in-memory document.
func (p *Printer) Run(src string) Result {
	if p.opts.NormalizeUnicode {
		src = norm.NFC.String(src)
	}
	fs := source.NewFileSet()
	id := fs.AddVirtual("<input>", []byte(src))
	return p.RunFile(fs.Get(id))
}

// RunFile formats sf. Diagnostic spans point into sf.Content, so any
// normalisation must happen before the file is added to its FileSet.
func (p *Printer) RunFile(sf *source.File) Result {
	p.collector.Reset()
	res := Result{RunID: uuid.NewString()}
	if sf == nil {
		res.AST = &ast.Root{}
		res.Err = errors.New("format: nil source file")
		return res
	}

	bag := diag.NewBag(maxDiagnostics)
	root, err := ast.BuildFile(sf, diag.BagReporter{Bag: bag})
	if err != nil {
		bag.Sort()
		res.AST = &ast.Root{}
		res.Err = err
		res.Diagnostics = bag.Items()
		res.Traces = p.collector.Records()
		return res
	}

	tracers := append([]trace.Tracer{p.collector}, p.extra...)
	level := trace.MaxLevel(tracers...)
	f := &formatter{
		opts:      p.opts,
		rules:     defaultRules(),
		tracer:    trace.NewMultiTracer(level, tracers...),
		snapshots: level.WantsNodes(),
		runID:     res.RunID,
		path:      pathOf(sf),
	}

	res.AST = root
	res.Output = f.root(root)
	bag.Sort()
	res.Diagnostics = bag.Items()
	res.Traces = p.collector.Records()
	return res
}

func pathOf(sf *source.File) string {
	if sf.Flags&source.FileVirtual != 0 {
		return ""
	}
	return sf.Path
}

// Format is a one-shot helper without tracing.
func Format(src string, opts Options) (string, error) {
	opts.NoTrace = true
	res := NewPrinter(opts).Run(src)
	return res.Output, res.Err
}
