package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"htmlfmt/internal/diagfmt"
	"htmlfmt/internal/driver"
	"htmlfmt/internal/format"
	"htmlfmt/internal/observ"
)

var fmtCmd = &cobra.Command{
	Use:   "fmt [flags] <path|glob|-> [...]",
	Short: "Format HTML files",
	Long: `Format HTML files, directories and glob patterns.

By default the result for page.html is written to out_page.html next to it.
Use --write to rewrite sources in place, --check to list files that would
change, or --stdout to print the results. A single "-" reads standard input.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runFmt,
}

func init() {
	f := fmtCmd.Flags()
	f.Bool("check", false, "report files whose formatting would change, write nothing")
	f.Bool("stdout", false, "print formatted output instead of writing files")
	f.BoolP("write", "w", false, "rewrite source files in place")
	f.Bool("debug", false, "write out_rt_<name>.json rule traces and out_ast_<name>.json trees")
	f.Bool("json", false, "print machine-readable results")
	ui := uiModeAuto
	f.Var(&ui, "ui", "progress UI")
	f.IntP("jobs", "j", 0, "files formatted in parallel (0 = GOMAXPROCS)")
	f.Bool("no-cache", false, "do not read or write the result cache")
	f.Bool("timings", false, "print phase timings")
	f.Bool("watch", false, "keep running and reformat files as they change")

	f.Int("indent", format.DefaultIndentWidth, "spaces per indentation level")
	f.Bool("tabs", false, "indent with tabs")
	f.Int("max-line", format.DefaultMaxLineLength, "maximum line length for inline elements")
	f.Int("max-attr", format.DefaultMaxAttributeLength, "attribute length that forces one attribute per line")
	f.Bool("nfc", false, "normalize input to Unicode NFC before formatting")
}

type fmtFlags struct {
	check, stdout, write bool
	debug, json, timings bool
	noCache, watch       bool
	quiet, verbose       bool
	ui                   uiMode
	jobs                 int
}

func readFmtFlags(cmd *cobra.Command) (fmtFlags, error) {
	var ff fmtFlags
	f := cmd.Flags()
	bools := []struct {
		name string
		dst  *bool
	}{
		{"check", &ff.check},
		{"stdout", &ff.stdout},
		{"write", &ff.write},
		{"debug", &ff.debug},
		{"json", &ff.json},
		{"timings", &ff.timings},
		{"no-cache", &ff.noCache},
		{"watch", &ff.watch},
	}
	for _, b := range bools {
		v, err := f.GetBool(b.name)
		if err != nil {
			return ff, err
		}
		*b.dst = v
	}
	root := cmd.Root().PersistentFlags()
	var err error
	if ff.quiet, err = root.GetBool("quiet"); err != nil {
		return ff, err
	}
	if ff.verbose, err = root.GetBool("verbose"); err != nil {
		return ff, err
	}
	if ff.jobs, err = f.GetInt("jobs"); err != nil {
		return ff, err
	}
	ff.ui = uiFlag(f)

	exclusive := 0
	for _, on := range []bool{ff.check, ff.stdout, ff.write} {
		if on {
			exclusive++
		}
	}
	if exclusive > 1 {
		return ff, errors.New("fmt: --check, --stdout and --write are mutually exclusive")
	}
	if ff.stdout && ff.json {
		return ff, errors.New("fmt: --stdout cannot be combined with --json")
	}
	return ff, nil
}

func (ff fmtFlags) mode() driver.Mode {
	switch {
	case ff.check:
		return driver.ModeCheck
	case ff.stdout:
		return driver.ModeStdout
	case ff.write:
		return driver.ModeWrite
	}
	return driver.ModeOutFile
}

// formatOptions layers flags that were set explicitly over the config file.
func formatOptions(cmd *cobra.Command) (format.Options, error) {
	opts := format.DefaultOptions()
	logger := loggerFromContext(cmd.Context())

	root := cmd.Root().PersistentFlags()
	noConfig, err := root.GetBool("no-config")
	if err != nil {
		return opts, err
	}
	if !noConfig {
		path, err := root.GetString("config")
		if err != nil {
			return opts, err
		}
		if path == "" {
			if path, _, err = findConfig("."); err != nil {
				return opts, err
			}
		}
		if path != "" {
			cfg, err := loadConfig(path)
			if err != nil {
				return opts, err
			}
			cfg.apply(&opts)
			logger.Debug("loaded config", "path", path)
		}
	}

	f := cmd.Flags()
	if f.Changed("indent") {
		if opts.IndentWidth, err = f.GetInt("indent"); err != nil {
			return opts, err
		}
	}
	if f.Changed("tabs") {
		if opts.UseTabs, err = f.GetBool("tabs"); err != nil {
			return opts, err
		}
	}
	if f.Changed("max-line") {
		if opts.MaxLineLength, err = f.GetInt("max-line"); err != nil {
			return opts, err
		}
	}
	if f.Changed("max-attr") {
		if opts.MaxAttributeLength, err = f.GetInt("max-attr"); err != nil {
			return opts, err
		}
	}
	if f.Changed("nfc") {
		if opts.NormalizeUnicode, err = f.GetBool("nfc"); err != nil {
			return opts, err
		}
	}
	return opts, nil
}

func runFmt(cmd *cobra.Command, args []string) error {
	ff, err := readFmtFlags(cmd)
	if err != nil {
		return err
	}
	opts, err := formatOptions(cmd)
	if err != nil {
		return err
	}
	logger := loggerFromContext(cmd.Context())

	stopProfiling, err := setupProfiling(cmd)
	if err != nil {
		return err
	}
	defer stopProfiling()

	tracer, stopTracing, err := setupTracing(cmd)
	if err != nil {
		return err
	}
	defer stopTracing()

	dopts := driver.FormatOptions{
		Mode:    ff.mode(),
		Options: opts,
		Jobs:    ff.jobs,
		Debug:   ff.debug,
		Timings: ff.timings,
	}

	if len(args) == 1 && args[0] == "-" {
		if tracer.Enabled() {
			dopts.Tracer = tracer
		}
		if ff.watch {
			return errors.New("fmt: --watch needs file arguments")
		}
		return runFmtStdin(cmd, ff, dopts)
	}

	if !ff.noCache && !ff.debug {
		cache, err := driver.OpenDiskCache("htmlfmt")
		if err != nil {
			logger.Debug("result cache disabled", "err", err)
		} else {
			dopts.Cache = cache
		}
	}

	ctx := cmd.Context()
	files, err := driver.CollectFiles(ctx, args)
	if err != nil {
		return err
	}
	logger.Debug("collected files", "count", len(files), "mode", dopts.Mode)

	p := newProgress(logger)
	var results []driver.FormatResult
	if !ff.json && !ff.stdout && shouldUseTUI(ff.ui, len(files)) {
		results, err = runFormatWithUI(ctx, "formatting", files, dopts)
	} else {
		results, err = driver.FormatFiles(ctx, files, dopts)
	}
	if err != nil {
		return err
	}

	out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()
	var failed, changed int
	if ff.json {
		if err := renderFmtJSON(out, results, dopts.Mode); err != nil {
			return err
		}
		failed, changed = countResults(results)
	} else {
		failed, changed = renderFmtText(out, errOut, results, ff)
	}
	if ff.timings {
		printTimings(errOut, results, ff.verbose)
	}
	if !ff.quiet && !ff.json && !ff.stdout {
		p.done("Done!", "files", len(results), "changed", changed, "failed", failed)
	}

	if ff.watch {
		return watchFmt(ctx, cmd, args, ff, dopts)
	}
	if failed > 0 {
		return errReported
	}
	if ff.check && changed > 0 {
		return errReported
	}
	return nil
}

// watchFmt reformats files as they change until interrupted.
func watchFmt(ctx context.Context, cmd *cobra.Command, args []string, ff fmtFlags, dopts driver.FormatOptions) error {
	logger := loggerFromContext(ctx)
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	dopts.Progress = nil
	w, err := driver.NewWatcher(args, driver.WatchOptions{
		FormatOptions: dopts,
		OnError: func(err error) {
			logger.Warn("watch error", "err", err)
		},
	})
	if err != nil {
		return err
	}
	if !ff.quiet {
		logger.Info("watching for changes", "paths", len(args))
	}
	out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()
	return w.Run(ctx, func(results []driver.FormatResult) {
		if ff.json {
			if err := renderFmtJSON(out, results, dopts.Mode); err != nil {
				logger.Warn("render results", "err", err)
			}
			return
		}
		failed, changed := renderFmtText(out, errOut, results, ff)
		logger.Debug("reformatted", "files", len(results), "changed", changed, "failed", failed)
	})
}

func runFmtStdin(cmd *cobra.Command, ff fmtFlags, dopts driver.FormatOptions) error {
	if ff.write || ff.debug {
		return errors.New("fmt: --write and --debug need file arguments")
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return err
	}
	res := driver.FormatSource("<stdin>", data, dopts)
	out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()

	if ff.json {
		if err := renderFmtJSON(out, []driver.FormatResult{res}, driver.ModeStdout); err != nil {
			return err
		}
	} else {
		renderDiagnostics(errOut, res, ff.verbose)
		if res.Err != nil {
			renderFailure(errOut, res)
		} else if !ff.check {
			if _, err := out.Write(res.Formatted); err != nil {
				return err
			}
		}
	}
	if res.Err != nil || (ff.check && res.Changed) {
		return errReported
	}
	return nil
}

func countResults(results []driver.FormatResult) (failed, changed int) {
	for _, res := range results {
		if res.Err != nil {
			failed++
		} else if res.Changed {
			changed++
		}
	}
	return failed, changed
}

func renderFmtText(out, errOut io.Writer, results []driver.FormatResult, ff fmtFlags) (failed, changed int) {
	for _, res := range results {
		renderDiagnostics(errOut, res, ff.verbose)
		if res.Err != nil {
			failed++
			renderFailure(errOut, res)
			continue
		}
		if res.Changed {
			changed++
		}

		switch {
		case ff.stdout:
			_, _ = out.Write(res.Formatted)
		case ff.quiet:
		case ff.check:
			if res.Changed {
				fmt.Fprintln(out, res.Path)
			}
		case res.OutPath != "":
			fmt.Fprintf(out, "%s -> %s\n", res.Path, res.OutPath)
		}
		for _, dump := range res.DebugFiles {
			fmt.Fprintf(errOut, "debug: %s\n", dump)
		}
	}
	return failed, changed
}

type jsonResult struct {
	Path        string                   `json:"path"`
	Mode        string                   `json:"mode"`
	Changed     bool                     `json:"changed"`
	Cached      bool                     `json:"cached,omitempty"`
	OutPath     string                   `json:"out_path,omitempty"`
	Output      string                   `json:"output,omitempty"`
	DebugFiles  []string                 `json:"debug_files,omitempty"`
	Diagnostics []diagfmt.DiagnosticJSON `json:"diagnostics,omitempty"`
	Timing      *observ.Report           `json:"timing,omitempty"`
	Error       string                   `json:"error,omitempty"`
}

func renderFmtJSON(w io.Writer, results []driver.FormatResult, mode driver.Mode) error {
	payload := make([]jsonResult, 0, len(results))
	for _, res := range results {
		jr := jsonResult{
			Path:       res.Path,
			Mode:       mode.String(),
			Changed:    res.Changed,
			Cached:     res.Cached,
			OutPath:    res.OutPath,
			Output:     string(res.Formatted),
			DebugFiles: res.DebugFiles,
			Timing:     res.Timing,
		}
		if res.Err != nil {
			jr.Error = res.Err.Error()
		}
		if len(res.Diagnostics) > 0 {
			jr.Diagnostics = diagfmt.BuildJSON(res.Path, res.File, res.Diagnostics, diagfmt.JSONOpts{
				IncludePositions: true,
				IncludeNotes:     true,
			})
		}
		payload = append(payload, jr)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}
