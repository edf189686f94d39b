package ui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"htmlfmt/internal/driver"
)

func newModel(files ...string) *progressModel {
	return NewProgressModel("formatting", files, nil).(*progressModel)
}

func TestApplyEventTracksStages(t *testing.T) {
	m := newModel("a.html", "b.html")

	steps := []struct {
		ev     driver.Event
		status string
	}{
		{driver.Event{File: "a.html", Stage: driver.StageRead, Status: driver.StatusWorking}, "reading"},
		{driver.Event{File: "a.html", Stage: driver.StageFormat, Status: driver.StatusWorking}, "formatting"},
		{driver.Event{File: "a.html", Stage: driver.StageWrite, Status: driver.StatusDone}, "done"},
		// a late event for a finished file is ignored
		{driver.Event{File: "a.html", Stage: driver.StageRead, Status: driver.StatusQueued}, "done"},
	}
	for _, s := range steps {
		m.applyEvent(s.ev)
		if got := m.items[0].status; got != s.status {
			t.Fatalf("after %+v status = %q, want %q", s.ev, got, s.status)
		}
	}
	if got := m.percent(); got != 0.5 {
		t.Errorf("percent = %v, want 0.5", got)
	}

	m.applyEvent(driver.Event{File: "b.html", Stage: driver.StageWrite, Status: driver.StatusError, Err: errors.New("boom")})
	if m.failed != 1 || m.finished() != 2 || m.percent() != 1 {
		t.Errorf("failed=%d finished=%d percent=%v", m.failed, m.finished(), m.percent())
	}
}

func TestUnknownFileIgnored(t *testing.T) {
	m := newModel("a.html")
	if cmd := m.applyEvent(driver.Event{File: "zzz.html", Status: driver.StatusDone}); cmd != nil {
		t.Error("unexpected command for unknown file")
	}
}

func TestViewHeader(t *testing.T) {
	m := newModel("a.html")
	m.applyEvent(driver.Event{File: "a.html", Stage: driver.StageWrite, Status: driver.StatusError})
	m.Update(doneMsg{})
	view := m.View()
	if !strings.Contains(view, "done: formatting (1/1), 1 failed") {
		t.Errorf("view header missing:\n%s", view)
	}
	if !strings.Contains(view, "a.html") {
		t.Errorf("view lacks file row:\n%s", view)
	}
}

func TestWindowResize(t *testing.T) {
	m := newModel("a.html")
	m.Update(tea.WindowSizeMsg{Width: 40, Height: 10})
	if m.width != 40 || m.prog.Width != 36 {
		t.Errorf("width=%d prog=%d", m.width, m.prog.Width)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"short.html", 20, "short.html"},
		{"very/long/path/index.html", 10, "very/lo..."},
		{"абвгд", 3, "абв"},
		{"漢字漢字", 5, "漢..."},
		{"anything", 0, "anything"},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.width); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
		}
	}
}
