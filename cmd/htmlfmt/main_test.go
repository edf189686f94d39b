package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"htmlfmt/internal/markup"
)

// resetFlags puts every flag of the command tree back to its default so
// consecutive executions of the package-level rootCmd do not leak state.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.PersistentFlags().VisitAll(reset)
	cmd.Flags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func execute(t *testing.T, stdin string, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	resetFlags(rootCmd)
	t.Cleanup(func() { resetFlags(rootCmd) })

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(append([]string{"--color=off"}, args...))
	err = rootCmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

const (
	messyDoc = "<div a=\"1\"><p>hi</p><br></div>"
	tidyDoc  = "<div a=\"1\">\n  <p>hi</p>\n  <br/>\n</div>\n"
)

func TestFmtStdout(t *testing.T) {
	src := writeFile(t, t.TempDir(), "page.html", messyDoc)
	out, _, err := execute(t, "", "fmt", "--no-config", "--no-cache", "--stdout", src)
	if err != nil {
		t.Fatal(err)
	}
	if out != tidyDoc {
		t.Errorf("stdout = %q, want %q", out, tidyDoc)
	}
}

func TestFmtDefaultWritesOutFile(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, dir, "page.html", messyDoc)
	out, _, err := execute(t, "", "fmt", "--no-config", "--no-cache", "--quiet", dir)
	if err != nil {
		t.Fatal(err)
	}
	if out != "" {
		t.Errorf("quiet run printed %q", out)
	}
	got, err := os.ReadFile(filepath.Join(dir, "out_page.html"))
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != tidyDoc {
		t.Errorf("out file = %q", got)
	}
	if orig, _ := os.ReadFile(src); string(orig) != messyDoc {
		t.Error("source was modified")
	}
}

func TestFmtCheck(t *testing.T) {
	dir := t.TempDir()
	messy := writeFile(t, dir, "messy.html", messyDoc)
	writeFile(t, dir, "tidy.html", tidyDoc)

	out, _, err := execute(t, "", "fmt", "--no-config", "--no-cache", "--check", dir)
	if !errors.Is(err, errReported) {
		t.Fatalf("err = %v, want errReported", err)
	}
	if strings.TrimSpace(out) != messy {
		t.Errorf("check listed %q, want only %q", out, messy)
	}

	if _, _, err := execute(t, "", "fmt", "--no-config", "--no-cache", "--check", filepath.Join(dir, "tidy.html")); err != nil {
		t.Errorf("formatted file failed check: %v", err)
	}
}

func TestFmtCouldNotParse(t *testing.T) {
	dir := t.TempDir()
	bad := writeFile(t, dir, "bad.html", "<div>"+strings.Repeat("x", markup.MaxTokenBytes+1))
	writeFile(t, dir, "good.html", "<p>ok</p>")

	_, stderr, err := execute(t, "", "fmt", "--no-config", "--no-cache", "--check", dir)
	if !errors.Is(err, errReported) {
		t.Fatalf("err = %v", err)
	}
	if !strings.Contains(stderr, "Could not parse HTML from: "+bad) {
		t.Errorf("stderr lacks parse failure:\n%s", stderr)
	}
	if !strings.Contains(stderr, bad+":1:") || !strings.Contains(stderr, "ERROR PRS2001:") {
		t.Errorf("stderr lacks positioned diagnostic:\n%s", stderr)
	}
}

func TestFmtStdin(t *testing.T) {
	out, _, err := execute(t, messyDoc, "fmt", "--no-config", "-")
	if err != nil {
		t.Fatal(err)
	}
	if out != tidyDoc {
		t.Errorf("stdout = %q", out)
	}

	_, _, err = execute(t, messyDoc, "fmt", "--no-config", "--check", "-")
	if !errors.Is(err, errReported) {
		t.Errorf("check on unformatted stdin: err = %v", err)
	}
}

func TestFmtFlagsOverrideConfig(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "htmlfmt.toml", "[format]\nindent_width = 4\n")

	out, _, err := execute(t, messyDoc, "fmt", "--config", cfg, "-")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "\n    <p>hi</p>\n") {
		t.Errorf("config indent not applied:\n%s", out)
	}

	out, _, err = execute(t, messyDoc, "fmt", "--config", cfg, "--indent", "1", "-")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "\n <p>hi</p>\n") {
		t.Errorf("flag did not override config:\n%s", out)
	}
}

func TestFmtExclusiveModes(t *testing.T) {
	_, _, err := execute(t, "", "fmt", "--check", "--write", "x.html")
	if err == nil || !strings.Contains(err.Error(), "mutually exclusive") {
		t.Errorf("err = %v", err)
	}
}

func TestFmtJSON(t *testing.T) {
	src := writeFile(t, t.TempDir(), "page.html", messyDoc)
	out, _, err := execute(t, "", "fmt", "--no-config", "--no-cache", "--check", "--json", src)
	if !errors.Is(err, errReported) {
		t.Fatalf("err = %v", err)
	}
	for _, want := range []string{`"path": "` + src + `"`, `"mode": "check"`, `"changed": true`} {
		if !strings.Contains(out, want) {
			t.Errorf("json lacks %s:\n%s", want, out)
		}
	}
}

func TestASTCommand(t *testing.T) {
	out, _, err := execute(t, `<p class="x">hi</p>`, "ast", "--compact", "-")
	if err != nil {
		t.Fatal(err)
	}
	want := `{"type":"root","children":[{"type":"tag","name":"p","attributes":[{"key":"class","value":"x"}],"children":[{"type":"text","value":"hi"}]}]}` + "\n"
	if out != want {
		t.Errorf("ast =\n%s\nwant\n%s", out, want)
	}
}

func TestRulesCommand(t *testing.T) {
	out, _, err := execute(t, "", "rules")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"tag:\n  1. void\n", "attribute:\n", "text:\n", "comment:\n"} {
		if !strings.Contains(out, want) {
			t.Errorf("rules output lacks %q:\n%s", want, out)
		}
	}
}

func TestRulesDocs(t *testing.T) {
	out, _, err := execute(t, "", "rules", "--docs")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"# Formatting rules\n", "## tag\n", "1. **void**: ", "## comment\n\n1. **comment**: "} {
		if !strings.Contains(out, want) {
			t.Errorf("rules --docs output lacks %q:\n%s", want, out)
		}
	}
}

func TestVersionJSON(t *testing.T) {
	out, _, err := execute(t, "", "version", "--format", "json", "--hash")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, `"tool": "htmlfmt"`) || !strings.Contains(out, `"git_commit": "unknown"`) {
		t.Errorf("version json = %s", out)
	}
}
