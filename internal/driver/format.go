package driver

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/unicode/norm"

	"htmlfmt/internal/diag"
	"htmlfmt/internal/format"
	"htmlfmt/internal/observ"
	"htmlfmt/internal/source"
	"htmlfmt/internal/trace"
)

// Mode selects what happens with formatted output.
type Mode uint8

const (
	// ModeOutFile writes out_<name> next to each source (default).
	ModeOutFile Mode = iota
	// ModeWrite rewrites changed sources in place.
	ModeWrite
	// ModeCheck only reports whether sources would change.
	ModeCheck
	// ModeStdout returns output in FormatResult.Formatted.
	ModeStdout
)

func (m Mode) String() string {
	switch m {
	case ModeOutFile:
		return "out-file"
	case ModeWrite:
		return "write"
	case ModeCheck:
		return "check"
	case ModeStdout:
		return "stdout"
	}
	return "unknown"
}

// ErrCouldNotParse marks a file whose formatted output came back empty
// although the source was not.
var ErrCouldNotParse = errors.New("could not parse")

// FormatOptions configures a batch.
type FormatOptions struct {
	Mode    Mode
	Options format.Options
	// Jobs limits concurrent files; 0 means GOMAXPROCS.
	Jobs int
	// Debug writes rule-trace and AST dumps next to each source.
	Debug bool
	// Cache is optional; it is bypassed in debug runs.
	Cache *DiskCache
	// Tracer receives rule selections of every file.
	Tracer   trace.Tracer
	Progress ProgressSink
	// Timings records per-file phase durations in FormatResult.Timing.
	Timings bool
}

// FormatResult captures the result of formatting a single file.
type FormatResult struct {
	Path        string
	OutPath     string // file written, if any
	Changed     bool
	Cached      bool
	Formatted   []byte
	File        *source.File
	Diagnostics []diag.Diagnostic
	DebugFiles  []string
	Timing      *observ.Report
	Err         error
}

// FormatPaths formats files, directories and glob patterns. Per-file
// failures are reported in FormatResult.Err and never stop the batch;
// the returned error is for collection failures and cancellation only.
func FormatPaths(ctx context.Context, paths []string, opts FormatOptions) ([]FormatResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	files, err := CollectFiles(ctx, paths)
	if err != nil {
		return nil, err
	}
	return FormatFiles(ctx, files, opts)
}

// FormatFiles formats an already collected file list in parallel. Results
// keep the order of files. Without opts.Tracer the tracer attached to ctx
// (trace.WithTracer) is used.
func FormatFiles(ctx context.Context, files []string, opts FormatOptions) ([]FormatResult, error) {
	if opts.Tracer == nil {
		if t := trace.FromContext(ctx); t.Enabled() {
			opts.Tracer = t
		}
	}
	for _, f := range files {
		emit(opts.Progress, Event{File: f, Stage: StageRead, Status: StatusQueued})
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	// индексы уникальны для каждой горутины, мьютекс не нужен
	results := make([]FormatResult, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, min(jobs, len(files))))
	for i, path := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				results[i] = FormatResult{Path: path, Err: err}
				return err
			}
			results[i] = formatSingleFile(path, opts)
			return nil
		})
	}
	err := g.Wait()
	return results, err
}

func formatSingleFile(path string, opts FormatOptions) FormatResult {
	result := FormatResult{Path: path}
	timer := observ.NewTimer()
	defer func() {
		if opts.Timings {
			rep := timer.Report()
			result.Timing = &rep
		}
		status := StatusDone
		if result.Err != nil {
			status = StatusError
		}
		emit(opts.Progress, Event{File: path, Stage: StageWrite, Status: status, Err: result.Err, Elapsed: timer.Total()})
	}()

	emit(opts.Progress, Event{File: path, Stage: StageRead, Status: StatusWorking})
	idx := timer.Begin(string(StageRead))
	data, err := os.ReadFile(path)
	timer.End(idx, "")
	if err != nil {
		result.Err = err
		return result
	}

	emit(opts.Progress, Event{File: path, Stage: StageFormat, Status: StatusWorking})
	idx = timer.Begin(string(StageFormat))
	formatted, err := formatContent(path, data, opts, &result)
	timer.End(idx, cacheNote(result.Cached))
	if err != nil {
		result.Err = err
		return result
	}
	result.Changed = !bytes.Equal(data, formatted)

	idx = timer.Begin(string(StageWrite))
	defer timer.End(idx, opts.Mode.String())
	switch opts.Mode {
	case ModeCheck:
	case ModeStdout:
		result.Formatted = formatted
	case ModeWrite:
		if result.Changed {
			if err := writeFile(path, formatted); err != nil {
				result.Err = err
				return result
			}
			result.OutPath = path
		}
	default:
		out := OutputPath(path)
		if err := writeFile(out, formatted); err != nil {
			result.Err = err
			return result
		}
		result.OutPath = out
	}
	return result
}

func cacheNote(hit bool) string {
	if hit {
		return "cached"
	}
	return ""
}

// FormatSource formats in-memory content (stdin) without touching disk.
func FormatSource(name string, data []byte, opts FormatOptions) FormatResult {
	result := FormatResult{Path: name}
	formatted, err := formatContent(name, data, opts, &result)
	if err != nil {
		result.Err = err
		return result
	}
	result.Changed = !bytes.Equal(data, formatted)
	result.Formatted = formatted
	return result
}

// formatContent runs the printer, consulting the cache when allowed, and
// writes debug dumps when requested.
func formatContent(path string, data []byte, opts FormatOptions, result *FormatResult) ([]byte, error) {
	fopts := opts.Options
	useCache := opts.Cache != nil && !opts.Debug && opts.Tracer == nil
	var key Digest
	if useCache {
		key = CacheKey(data, fopts)
		var payload CachePayload
		if ok, err := opts.Cache.Get(key, &payload); err == nil && ok {
			result.Cached = true
			return payload.Output, nil
		}
	}

	content := data
	if fopts.NormalizeUnicode {
		content = norm.NFC.Bytes(content)
	}
	fileSet := source.NewFileSet()
	sf := fileSet.Get(fileSet.AddNormalized(path, content))
	result.File = sf

	fopts.NoTrace = !opts.Debug
	var tracers []trace.Tracer
	if opts.Tracer != nil {
		tracers = append(tracers, opts.Tracer)
	}
	res := format.NewPrinter(fopts, tracers...).RunFile(sf)
	result.Diagnostics = res.Diagnostics

	if opts.Debug {
		files, err := writeDebugDumps(path, res)
		result.DebugFiles = files
		if err != nil {
			return nil, err
		}
	}
	if res.Err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCouldNotParse, res.Err)
	}
	if res.Output == "" && len(bytes.TrimSpace(sf.Content)) > 0 {
		return nil, ErrCouldNotParse
	}

	out := []byte(res.Output)
	if useCache {
		// кэш best effort: ошибка записи не ломает форматирование
		_ = opts.Cache.Put(key, &CachePayload{Path: path, Output: out}) //nolint:errcheck
	}
	return out, nil
}
