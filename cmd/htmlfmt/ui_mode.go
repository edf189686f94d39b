package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"
)

type uiMode string

const (
	uiModeAuto uiMode = "auto"
	uiModeOn   uiMode = "on"
	uiModeOff  uiMode = "off"
)

var _ pflag.Value = (*uiMode)(nil)

func (m *uiMode) String() string { return string(*m) }

func (m *uiMode) Type() string { return "auto|on|off" }

// Set rejects unknown values while flags are parsed, so a typo fails
// before any file is touched.
func (m *uiMode) Set(value string) error {
	parsed, err := readUIMode(value)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

func readUIMode(value string) (uiMode, error) {
	switch mode := uiMode(strings.ToLower(strings.TrimSpace(value))); mode {
	case "":
		return uiModeAuto, nil
	case uiModeAuto, uiModeOn, uiModeOff:
		return mode, nil
	}
	return "", fmt.Errorf("invalid --ui value %q (expected auto|on|off)", value)
}

// shouldUseTUI resolves auto to "stdout is a terminal and there is more than
// one file to show".
func shouldUseTUI(mode uiMode, files int) bool {
	if mode == uiModeAuto {
		return files > 1 && isTerminal(os.Stdout)
	}
	return mode == uiModeOn
}

func uiFlag(fs *pflag.FlagSet) uiMode {
	if m, ok := fs.Lookup("ui").Value.(*uiMode); ok {
		return *m
	}
	return uiModeAuto
}
