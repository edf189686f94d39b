package format

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/net/html"

	"htmlfmt/internal/ast"
	"htmlfmt/internal/diag"
	"htmlfmt/internal/markup"
	"htmlfmt/internal/trace"
)

type formatCase struct {
	name string
	in   string
	want string
	opts Options
}

var formatCases = []formatCase{
	{
		name: "void keeps attribute",
		in:   `<input a="whatAnAttribute">`,
		want: "<input a=\"whatAnAttribute\"/>\n",
	},
	{
		name: "void with three attributes",
		in:   `<input a="whatAnAttribute" b="2" c="3">`,
		want: "<input\n  a=\"whatAnAttribute\"\n  b=\"2\"\n  c=\"3\"/>\n",
	},
	{
		name: "void at depth",
		in:   `<div><p>x</p><br><IMG src="a.png"></div>`,
		want: "<div>\n  <p>x</p>\n  <br/>\n  <IMG src=\"a.png\"/>\n</div>\n",
	},
	{
		name: "two childless siblings",
		in:   `<div a="whatAnAttribute"></div><div></div>`,
		want: "<div a=\"whatAnAttribute\"></div>\n<div></div>\n",
	},
	{
		name: "simple text child",
		in:   `<div a="1">This is text</div>`,
		want: "<div a=\"1\">This is text</div>\n",
	},
	{
		name: "long text breaks onto its own line",
		in:   `<div a="1">Super long ` + strings.Repeat("g", 100) + `</div>`,
		want: "<div a=\"1\">\n  Super long " + strings.Repeat("g", 100) + "\n</div>\n",
	},
	{
		name: "text lines are squashed when inlined",
		in:   "<i>icon\nWith Newline\n What Happens</i>",
		want: "<i>icon With Newline What Happens</i>\n",
	},
	{
		name: "default print with one attribute per line",
		in: "<button ng-click=\"$ctrl.openTagForm()\"\n" +
			"                ff-show=\">developer\" class=\"flex btn btn-primary mt2\"\n" +
			"                style=\"white-space: nowrap;\">Create Tag</button>",
		want: "<button\n" +
			"  ng-click=\"$ctrl.openTagForm()\"\n" +
			"  ff-show=\">developer\"\n" +
			"  class=\"flex btn btn-primary mt2\"\n" +
			"  style=\"white-space: nowrap;\">\n" +
			"  Create Tag\n" +
			"</button>\n",
	},
	{
		name: "attributes pulled onto one line",
		in:   "<div \n  a=\"1\" \n  b=\"2\"></div>",
		want: "<div a=\"1\" b=\"2\"></div>\n",
	},
	{
		name: "nested block",
		in:   "<ul>\n  <li>One</li>\n\n  <li>Two</li>\n</ul>",
		want: "<ul>\n  <li>One</li>\n  <li>Two</li>\n</ul>\n",
	},
	{
		name: "mixed content",
		in:   `<div>Hello <b>World</b></div>`,
		want: "<div>\n  Hello\n  <b>World</b>\n</div>\n",
	},
	{
		name: "blank lines between top-level siblings collapse",
		in:   "<p>a</p>\n\n\n\n<p>b</p>\n",
		want: "<p>a</p>\n\n<p>b</p>\n",
	},
	{
		name: "leading blank lines dropped",
		in:   "\n\n\n<p>a</p>\n\n",
		want: "<p>a</p>\n",
	},
	{
		name: "empty document",
		in:   "",
		want: "",
	},
	{
		name: "whitespace only document",
		in:   "   \n  ",
		want: "",
	},
	{
		name: "comment trimmed",
		in:   "<!--   hi   -->",
		want: "<!-- hi -->\n",
	},
	{
		name: "empty comment",
		in:   "<div><!----></div>",
		want: "<div>\n  <!--  -->\n</div>\n",
	},
	{
		name: "empty value and directive",
		in:   `<div c="" d></div>`,
		want: "<div c=\"\" d></div>\n",
	},
	{
		name: "root text",
		in:   "  hello  ",
		want: "hello\n",
	},
	{
		name: "doctype and document",
		in:   "<!DOCTYPE html>\n<html><body><p>x</p></body></html>",
		want: "<!DOCTYPE html>\n<html>\n  <body>\n    <p>x</p>\n  </body>\n</html>\n",
	},
	{
		name: "long single attribute stays on the line",
		in:   `<div single-attribute-though-it-is-very-long-oh-yes-it-is-very-long-oh-deary-me></div>`,
		want: "<div single-attribute-though-it-is-very-long-oh-yes-it-is-very-long-oh-deary-me></div>\n",
	},
	{
		name: "two attributes with a long token break",
		in:   `<div a="1" data-description="a value long enough to pass the limit"></div>`,
		want: "<div\n  a=\"1\"\n  data-description=\"a value long enough to pass the limit\"></div>\n",
	},
	{
		name: "multi-line attributes glue the open bracket",
		in:   `<a x="1" y="2" z="3">go</a>`,
		want: "<a\n  x=\"1\"\n  y=\"2\"\n  z=\"3\">\n  go\n</a>\n",
	},
	{
		name: "entities kept verbatim",
		in:   `<p title="a&amp;b">x &lt; y</p>`,
		want: "<p title=\"a&b\">x &lt; y</p>\n",
	},
	{
		name: "display width not bytes",
		in:   "<p>" + strings.Repeat("é", 70) + "</p>",
		want: "<p>" + strings.Repeat("é", 70) + "</p>\n",
	},
	{
		name: "tabs",
		in:   "<ul><li>x</li></ul>",
		want: "<ul>\n\t<li>x</li>\n</ul>\n",
		opts: Options{UseTabs: true},
	},
	{
		name: "indent width and line length",
		in:   `<div><p>abcdefghij</p></div>`,
		want: "<div>\n    <p>\n        abcdefghij\n    </p>\n</div>\n",
		opts: Options{IndentWidth: 4, MaxLineLength: 20},
	},
	{
		name: "blank marker inside a tag disappears",
		in:   "<div>\n\n</div>",
		want: "<div></div>\n",
	},
}

func TestPrinterRun(t *testing.T) {
	for _, tt := range formatCases {
		t.Run(tt.name, func(t *testing.T) {
			res := NewPrinter(tt.opts).Run(tt.in)
			if res.Err != nil {
				t.Fatalf("Run: %v", res.Err)
			}
			if diff := cmp.Diff(tt.want, res.Output); diff != "" {
				t.Errorf("output mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestIdempotence(t *testing.T) {
	for _, tt := range formatCases {
		t.Run(tt.name, func(t *testing.T) {
			once, err := Format(tt.in, tt.opts)
			if err != nil {
				t.Fatal(err)
			}
			twice, err := Format(once, tt.opts)
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(once, twice); diff != "" {
				t.Errorf("second pass changed output (-first +second):\n%s", diff)
			}
		})
	}
}

func TestCompleteness(t *testing.T) {
	attrs := func(n int) string {
		var sb strings.Builder
		for i := range n {
			sb.WriteString(` a`)
			sb.WriteString(strings.Repeat("x", i))
			sb.WriteString(`="v"`)
		}
		return sb.String()
	}
	inputs := map[string]string{
		"0 attributes":  "<div></div>",
		"1 attribute":   "<div" + attrs(1) + "></div>",
		"2 attributes":  "<div" + attrs(2) + "></div>",
		"50 attributes": "<div" + attrs(50) + "><p>x</p></div>",
		"newlines":      "<p>\n\n\n</p>\n\n\n",
		"empty comment": "<!---->",
	}
	for name, in := range inputs {
		t.Run(name, func(t *testing.T) {
			defer func() {
				if r := recover(); r != nil {
					t.Fatalf("formatting panicked: %v", r)
				}
			}()
			res := NewPrinter(Options{}).Run(in)
			if res.Err != nil {
				t.Fatal(res.Err)
			}
			if len(res.Traces) == 0 {
				t.Error("expected at least one rule selection")
			}
		})
	}
}

func TestFiftyAttributesOnePerLine(t *testing.T) {
	var in strings.Builder
	in.WriteString("<div")
	for i := range 50 {
		in.WriteString(" d")
		in.WriteString(strings.Repeat("i", i%3+1))
	}
	in.WriteString("></div>")
	out, err := Format(in.String(), Options{})
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.Count(out, "\n"); got != 51 {
		t.Errorf("line count = %d, want 51:\n%s", got, out)
	}
}

func TestRunParseFailure(t *testing.T) {
	res := NewPrinter(Options{}).Run("<div>" + strings.Repeat("x", markup.MaxTokenBytes+1))
	if res.Output != "" {
		t.Errorf("Output = %q, want empty", res.Output)
	}
	if !errors.Is(res.Err, html.ErrBufferExceeded) {
		t.Errorf("Err = %v, want ErrBufferExceeded", res.Err)
	}
	if res.AST == nil || len(res.AST.Children) != 0 {
		t.Errorf("AST = %+v, want empty root", res.AST)
	}
	if len(res.Diagnostics) != 1 || res.Diagnostics[0].Code != diag.ParseTokenizer {
		t.Fatalf("Diagnostics = %+v", res.Diagnostics)
	}
}

func TestAttributeQuoting(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"decoded double quotes", `<a title="&quot;x&quot;"></a>`, `<a title='"x"'></a>` + "\n"},
		{"single quoted source", `<p class='x "y'></p>`, `<p class='x "y'></p>` + "\n"},
		{"both quote kinds", `<p title="it's &quot;q&quot;"></p>`, `<p title="it's &quot;q&quot;"></p>` + "\n"},
		{"apostrophe only", `<p title="it's"></p>`, `<p title="it's"></p>` + "\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Format(tt.in, Options{})
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Fatalf("Format = %q, want %q", got, tt.want)
			}
			again, err := Format(got, Options{})
			if err != nil {
				t.Fatal(err)
			}
			if again != got {
				t.Errorf("second pass = %q, want %q", again, got)
			}
		})
	}
}

func TestRunDropsStrayEndTag(t *testing.T) {
	res := NewPrinter(Options{}).Run(`<div></span></div>`)
	if res.Err != nil {
		t.Fatal(res.Err)
	}
	if res.Output != "<div></div>\n" {
		t.Errorf("Output = %q", res.Output)
	}
	if len(res.Diagnostics) != 1 || res.Diagnostics[0].Code != diag.ParseStrayEndTag || res.Diagnostics[0].Severity != diag.SevWarning {
		t.Fatalf("Diagnostics = %+v", res.Diagnostics)
	}
	if sp := res.Diagnostics[0].Primary; sp.Start != 5 || sp.End != 12 {
		t.Errorf("span = %v, want 5-12", sp)
	}
}

func TestRunReportsImplicitClose(t *testing.T) {
	res := NewPrinter(Options{}).Run(`<div><p>x</div>`)
	if res.Err != nil {
		t.Fatal(res.Err)
	}
	if want := "<div>\n  <p>x</p>\n</div>\n"; res.Output != want {
		t.Errorf("Output = %q, want %q", res.Output, want)
	}
	if len(res.Diagnostics) != 1 || res.Diagnostics[0].Severity != diag.SevWarning {
		t.Errorf("Diagnostics = %+v", res.Diagnostics)
	}
}

func TestTracesPerRun(t *testing.T) {
	p := NewPrinter(Options{})
	first := p.Run(`<div a="1">hi</div>`)

	type sel struct {
		Category trace.Category
		Rule     string
		Level    int
	}
	var got []sel
	for _, r := range first.Traces {
		got = append(got, sel{r.Category, r.Rule, r.Level})
		if r.RunID != first.RunID {
			t.Errorf("record run id %q != result run id %q", r.RunID, first.RunID)
		}
	}
	want := []sel{
		{trace.CategoryTag, "single-text-child", 0},
		{trace.CategoryAttribute, "same-line", 0},
		{trace.CategoryText, "same-line", 0},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("selections (-want +got):\n%s", diff)
	}

	tag, ok := first.Traces[0].Node.(*ast.Tag)
	if !ok || tag.Children != nil || tag.Name != "div" {
		t.Errorf("tag snapshot = %#v, want div without children", first.Traces[0].Node)
	}

	second := p.Run(`<br>`)
	if len(second.Traces) != 2 {
		t.Errorf("second run traces = %d, want 2 (collector must reset)", len(second.Traces))
	}
	if second.RunID == first.RunID {
		t.Error("run ids must differ")
	}
	if len(first.Traces) != 3 {
		t.Error("earlier result must not be affected by a later run")
	}
}

func TestSharedStreamTracer(t *testing.T) {
	var buf bytes.Buffer
	stream := trace.NewStreamTracer(&buf, trace.LevelRules, trace.FormatNDJSON)
	res := NewPrinter(Options{NoTrace: true}, stream).Run(`<p>x</p>`)
	if len(res.Traces) != 0 {
		t.Errorf("NoTrace run kept %d records", len(res.Traces))
	}
	if got := strings.Count(buf.String(), "\n"); got != 3 {
		t.Errorf("stream lines = %d, want 3:\n%s", got, buf.String())
	}
	if !strings.Contains(buf.String(), res.RunID) {
		t.Error("stream records must carry the run id")
	}
}

func TestNormalizeUnicode(t *testing.T) {
	decomposed := "<p>e\u0301</p>"
	out, err := Format(decomposed, Options{NormalizeUnicode: true})
	if err != nil {
		t.Fatal(err)
	}
	if want := "<p>\u00e9</p>\n"; out != want {
		t.Errorf("got %q, want %q", out, want)
	}
}
