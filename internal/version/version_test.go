package version

import (
	"testing"

	"github.com/fatih/color"
)

func TestVersion_DefaultValues(t *testing.T) {
	if Version == "" {
		t.Error("Version should have a default value")
	}
	// GitCommit, GitMessage and BuildDate are optional and empty unless set
	// by the linker.
	for name, v := range map[string]string{"GitCommit": GitCommit, "GitMessage": GitMessage, "BuildDate": BuildDate} {
		if v != "" {
			t.Errorf("%s = %q, want empty default", name, v)
		}
	}
}

func TestColored_Plain(t *testing.T) {
	prev := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = prev })

	tests := []string{"0.1.0-dev", "1.2.3", "2.0", "v3", "1.2.3+build.7", ""}
	for _, v := range tests {
		if got := Colored(v); got != v {
			t.Errorf("Colored(%q) = %q without colour, want unchanged", v, got)
		}
	}
}

func TestColored_Painted(t *testing.T) {
	prev := color.NoColor
	color.NoColor = false
	t.Cleanup(func() { color.NoColor = prev })

	got := Colored("1.2.3-rc1")
	if got == "1.2.3-rc1" {
		t.Fatal("expected escape sequences in coloured output")
	}
	if want := "-rc1"; got[len(got)-len(want):] != want {
		t.Errorf("suffix lost: %q", got)
	}
}
