package driver

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/goleak"

	"htmlfmt/internal/diag"
	"htmlfmt/internal/format"
	"htmlfmt/internal/markup"
	"htmlfmt/internal/trace"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		p := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(b)
}

func rel(t *testing.T, dir string, paths []string) []string {
	t.Helper()
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		r, err := filepath.Rel(dir, p)
		if err != nil {
			t.Fatal(err)
		}
		out = append(out, filepath.ToSlash(r))
	}
	sort.Strings(out)
	return out
}

func TestCollectSourceFiles(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"a.html":         "",
		"b.HTM":          "",
		"out_a.html":     "",
		"notes.txt":      "",
		"sub/c.html":     "",
		".hidden/d.html": "",
		"glob/e.html":    "",
		"glob/f.htm":     "",
		"explicit.tmpl":  "",
	})

	tests := []struct {
		name  string
		paths []string
		want  []string
	}{
		{"directory", []string{dir}, []string{"a.html", "b.HTM", "glob/e.html", "glob/f.htm", "sub/c.html"}},
		{"glob", []string{filepath.Join(dir, "glob", "*")}, []string{"glob/e.html", "glob/f.htm"}},
		{"explicit file of any extension", []string{filepath.Join(dir, "explicit.tmpl")}, []string{"explicit.tmpl"}},
		{"duplicates collapse", []string{filepath.Join(dir, "a.html"), dir + "/./a.html"}, []string{"a.html"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := collectSourceFiles(context.Background(), tt.paths)
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tt.want, rel(t, dir, got)); diff != "" {
				t.Errorf("files (-want +got):\n%s", diff)
			}
		})
	}

	if _, err := collectSourceFiles(context.Background(), []string{filepath.Join(dir, "missing.html")}); err == nil {
		t.Error("expected error for missing path")
	}
}

const messy = "<div a=\"1\"><p>hi</p>\n\n\n<br></div>"
const tidy = "<div a=\"1\">\n  <p>hi</p>\n  <br/>\n</div>\n"

func TestFormatPathsModes(t *testing.T) {
	tests := []struct {
		mode        Mode
		wantSource  string
		wantOutFile bool
		wantBuf     bool
	}{
		{ModeOutFile, messy, true, false},
		{ModeWrite, tidy, false, false},
		{ModeCheck, messy, false, false},
		{ModeStdout, messy, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.mode.String(), func(t *testing.T) {
			dir := writeTree(t, map[string]string{"page.html": messy})
			src := filepath.Join(dir, "page.html")

			results, err := FormatPaths(context.Background(), []string{dir}, FormatOptions{Mode: tt.mode})
			if err != nil {
				t.Fatal(err)
			}
			if len(results) != 1 {
				t.Fatalf("results = %d, want 1", len(results))
			}
			r := results[0]
			if r.Err != nil {
				t.Fatal(r.Err)
			}
			if !r.Changed {
				t.Error("Changed = false for an unformatted file")
			}
			if got := readFile(t, src); got != tt.wantSource {
				t.Errorf("source after run = %q", got)
			}

			_, statErr := os.Stat(OutputPath(src))
			if tt.wantOutFile {
				if statErr != nil {
					t.Fatalf("out file missing: %v", statErr)
				}
				if got := readFile(t, OutputPath(src)); got != tidy {
					t.Errorf("out file = %q, want %q", got, tidy)
				}
			} else if statErr == nil {
				t.Error("unexpected out file")
			}
			if tt.wantBuf != (string(r.Formatted) == tidy) {
				t.Errorf("Formatted = %q", r.Formatted)
			}
		})
	}
}

func TestWriteModeKeepsPermissions(t *testing.T) {
	dir := writeTree(t, map[string]string{"x.html": messy})
	src := filepath.Join(dir, "x.html")
	if err := os.Chmod(src, 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := FormatPaths(context.Background(), []string{src}, FormatOptions{Mode: ModeWrite}); err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(src)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("mode = %v, want 0600", info.Mode().Perm())
	}
}

// unparseable is a document the tokenizer rejects: one text run longer
// than the token limit.
var unparseable = "<div>" + strings.Repeat("x", markup.MaxTokenBytes+1)

func TestStrayEndTagIsDropped(t *testing.T) {
	dir := writeTree(t, map[string]string{"page.html": "<div></span><p>x</p></div>"})
	results, err := FormatPaths(context.Background(), []string{dir}, FormatOptions{Mode: ModeStdout})
	if err != nil {
		t.Fatal(err)
	}
	r := results[0]
	if r.Err != nil {
		t.Fatalf("Err = %v", r.Err)
	}
	if got, want := string(r.Formatted), "<div>\n  <p>x</p>\n</div>\n"; got != want {
		t.Errorf("Formatted = %q, want %q", got, want)
	}
	if !hasCode(r.Diagnostics, diag.ParseStrayEndTag) {
		t.Errorf("diagnostics = %+v", r.Diagnostics)
	}
}

func TestBatchContinuesAfterParseFailure(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"bad.html":  unparseable,
		"good.html": "<p>ok</p>",
	})
	results, err := FormatPaths(context.Background(), []string{dir}, FormatOptions{Mode: ModeCheck, Jobs: 2})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("results = %d", len(results))
	}
	bad, good := results[0], results[1]
	if !errors.Is(bad.Err, ErrCouldNotParse) {
		t.Errorf("bad.Err = %v, want ErrCouldNotParse", bad.Err)
	}
	if !hasCode(bad.Diagnostics, diag.ParseTokenizer) {
		t.Errorf("bad diagnostics = %+v", bad.Diagnostics)
	}
	if good.Err != nil || !good.Changed {
		t.Errorf("good = %+v", good)
	}
}

func hasCode(ds []diag.Diagnostic, code diag.Code) bool {
	for _, d := range ds {
		if d.Code == code {
			return true
		}
	}
	return false
}

func TestDebugDumps(t *testing.T) {
	dir := writeTree(t, map[string]string{"page.html": `<a href="x">y</a>`})
	src := filepath.Join(dir, "page.html")
	results, err := FormatPaths(context.Background(), []string{src}, FormatOptions{Mode: ModeCheck, Debug: true})
	if err != nil || results[0].Err != nil {
		t.Fatalf("err = %v / %v", err, results[0].Err)
	}

	rtPath, astPath := DebugPaths(src)
	if diff := cmp.Diff([]string{rtPath, astPath}, results[0].DebugFiles); diff != "" {
		t.Errorf("DebugFiles (-want +got):\n%s", diff)
	}

	var rt struct {
		RuleTraces []struct {
			Rule string         `json:"rule_name"`
			Node map[string]any `json:"node"`
		} `json:"ruleTraces"`
	}
	if err := json.Unmarshal([]byte(readFile(t, rtPath)), &rt); err != nil {
		t.Fatal(err)
	}
	if len(rt.RuleTraces) != 3 || rt.RuleTraces[0].Rule != "single-text-child" {
		t.Fatalf("rule traces = %+v", rt.RuleTraces)
	}
	if _, has := rt.RuleTraces[0].Node["children"]; has {
		t.Error("tag snapshot must not carry children")
	}

	if tree := readFile(t, astPath); !strings.Contains(tree, `"type": "root"`) {
		t.Errorf("ast dump = %s", tree)
	}

	// dumps are outputs, not inputs, of the next directory run
	files, err := collectSourceFiles(context.Background(), []string{dir})
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 1 {
		t.Errorf("collected %v", files)
	}
}

func TestTracerFromContext(t *testing.T) {
	dir := writeTree(t, map[string]string{"page.html": `<a href="x">y</a>`})
	ring := trace.NewRingTracer(16, trace.LevelRules)
	ctx := trace.WithTracer(context.Background(), ring)

	results, err := FormatPaths(ctx, []string{dir}, FormatOptions{Mode: ModeCheck})
	if err != nil || results[0].Err != nil {
		t.Fatalf("err = %v / %v", err, results[0].Err)
	}
	var rules []string
	for _, rec := range ring.Snapshot() {
		rules = append(rules, rec.Rule)
	}
	if diff := cmp.Diff([]string{"single-text-child", "same-line", "same-line"}, rules); diff != "" {
		t.Errorf("traced rules (-want +got):\n%s", diff)
	}
}

func TestCacheHit(t *testing.T) {
	cache, err := OpenDiskCacheAt(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	dir := writeTree(t, map[string]string{"a.html": messy, "b.html": messy})
	opts := FormatOptions{Mode: ModeStdout, Cache: cache}

	first, err := FormatPaths(context.Background(), []string{filepath.Join(dir, "a.html")}, opts)
	if err != nil || first[0].Cached {
		t.Fatalf("first run: %v cached=%v", err, first[0].Cached)
	}
	second, err := FormatPaths(context.Background(), []string{filepath.Join(dir, "b.html")}, opts)
	if err != nil {
		t.Fatal(err)
	}
	if !second[0].Cached || string(second[0].Formatted) != tidy {
		t.Errorf("second run = cached:%v %q", second[0].Cached, second[0].Formatted)
	}

	opts.Options = format.Options{IndentWidth: 4}
	third, err := FormatPaths(context.Background(), []string{filepath.Join(dir, "b.html")}, opts)
	if err != nil {
		t.Fatal(err)
	}
	if third[0].Cached {
		t.Error("different options must miss the cache")
	}
}

func TestProgressEvents(t *testing.T) {
	dir := writeTree(t, map[string]string{"a.html": "<p></p>", "b.html": "<p></p>"})
	ch := make(chan Event, 64)
	_, err := FormatPaths(context.Background(), []string{dir}, FormatOptions{
		Mode: ModeCheck, Progress: ChannelSink{Ch: ch}, Timings: true,
	})
	if err != nil {
		t.Fatal(err)
	}
	close(ch)

	done := map[string]bool{}
	for ev := range ch {
		if ev.Status == StatusDone {
			done[filepath.Base(ev.File)] = true
		}
	}
	if !done["a.html"] || !done["b.html"] {
		t.Errorf("done events = %v", done)
	}
}

func TestFormatSource(t *testing.T) {
	r := FormatSource("<stdin>", []byte(messy), FormatOptions{})
	if r.Err != nil || string(r.Formatted) != tidy {
		t.Fatalf("FormatSource = %q, %v", r.Formatted, r.Err)
	}
	empty := FormatSource("<stdin>", []byte("  \n"), FormatOptions{})
	if empty.Err != nil {
		t.Errorf("whitespace-only input must not be a parse failure: %v", empty.Err)
	}
}

func TestFormatPathsCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := FormatPaths(ctx, []string{"."}, FormatOptions{}); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestCollectFilesEmpty(t *testing.T) {
	dir := writeTree(t, map[string]string{"readme.md": ""})
	if _, err := CollectFiles(context.Background(), []string{dir}); !errors.Is(err, ErrNoSourceFiles) {
		t.Errorf("err = %v, want ErrNoSourceFiles", err)
	}
}
