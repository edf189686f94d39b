package lsp

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestApplyChanges(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		changes []textDocumentContentChangeEvent
		want    string
	}{
		{
			name:    "full replace",
			text:    "<p>a</p>",
			changes: []textDocumentContentChangeEvent{{Text: "<b>b</b>"}},
			want:    "<b>b</b>",
		},
		{
			name: "insert on second line",
			text: "<div>\n<p>x</p>\n</div>",
			changes: []textDocumentContentChangeEvent{{
				Range: &lspRange{Start: position{Line: 1, Character: 3}, End: position{Line: 1, Character: 4}},
				Text:  "yy",
			}},
			want: "<div>\n<p>yy</p>\n</div>",
		},
		{
			name: "utf16 columns after astral rune",
			text: "<p>😀x</p>",
			changes: []textDocumentContentChangeEvent{{
				Range: &lspRange{Start: position{Line: 0, Character: 5}, End: position{Line: 0, Character: 6}},
				Text:  "z",
			}},
			want: "<p>😀z</p>",
		},
		{
			name: "past end clamps",
			text: "<p>",
			changes: []textDocumentContentChangeEvent{{
				Range: &lspRange{Start: position{Line: 9, Character: 0}, End: position{Line: 9, Character: 0}},
				Text:  "</p>",
			}},
			want: "<p></p>",
		},
		{
			name: "sequential edits",
			text: "ab",
			changes: []textDocumentContentChangeEvent{
				{Range: &lspRange{Start: position{Character: 0}, End: position{Character: 0}}, Text: "<"},
				{Range: &lspRange{Start: position{Character: 3}, End: position{Character: 3}}, Text: ">"},
			},
			want: "<ab>",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := applyChanges(tt.text, tt.changes); got != tt.want {
				t.Fatalf("applyChanges = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPositionForOffset(t *testing.T) {
	text := "<a>\n😀é\n"
	tests := []struct {
		offset int
		want   position
	}{
		{0, position{}},
		{3, position{Line: 0, Character: 3}},
		{4, position{Line: 1}},
		{8, position{Line: 1, Character: 2}},
		{10, position{Line: 1, Character: 3}},
		{len(text), position{Line: 2}},
		{100, position{Line: 2}},
	}
	for _, tt := range tests {
		got := positionForOffset(text, tt.offset)
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("positionForOffset(%d) mismatch (-want +got):\n%s", tt.offset, diff)
		}
		if tt.offset <= len(text) {
			if back := offsetForPosition(text, got); back != tt.offset {
				t.Errorf("offsetForPosition(%+v) = %d, want %d", got, back, tt.offset)
			}
		}
	}
}

func TestCanonicalURI(t *testing.T) {
	if got, want := canonicalURI("file:///tmp/a/../b/x%20y.html"), "file:///tmp/b/x%20y.html"; got != want {
		t.Errorf("canonicalURI = %q, want %q", got, want)
	}
	if got := canonicalURI("untitled:Untitled-1"); got != "untitled:Untitled-1" {
		t.Errorf("non-file uri changed: %q", got)
	}
}
