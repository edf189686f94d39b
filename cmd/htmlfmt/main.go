package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"htmlfmt/internal/version"
)

// errReported means the command already printed its failure.
var errReported = errors.New("reported")

var rootCmd = &cobra.Command{
	Use:   "htmlfmt",
	Short: "Rule-driven formatter for HTML fragments and templates",
	Long: `htmlfmt re-indents HTML fragments and framework templates with a fixed
cascade of rules, keeping bare directive attributes such as ng-if untouched.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setupRoot,
}

func init() {
	rootCmd.Version = version.Version
	rootCmd.SetVersionTemplate("htmlfmt {{.Version}}\n")

	rootCmd.AddCommand(fmtCmd)
	rootCmd.AddCommand(astCmd)
	rootCmd.AddCommand(rulesCmd)
	rootCmd.AddCommand(lspCmd)
	rootCmd.AddCommand(versionCmd)

	// Глобальные флаги
	pf := rootCmd.PersistentFlags()
	pf.BoolP("verbose", "v", false, "enable debug logging")
	pf.Bool("quiet", false, "suppress non-essential output")
	pf.String("color", "auto", "colorize output (auto|on|off)")
	pf.String("config", "", "config file (default: htmlfmt.toml or .htmlfmt.yaml found upwards)")
	pf.Bool("no-config", false, "ignore config files")

	pf.String("trace", "", "stream rule selections to file (- for stderr)")
	pf.String("trace-level", "off", "trace level (off|rules|debug)")
	pf.String("trace-mode", "stream", "trace storage (stream|ring|both)")
	pf.String("trace-format", "auto", "trace output format (auto|text|ndjson)")
	pf.Int("trace-ring-size", 4096, "records kept in ring mode")

	pf.String("cpu-profile", "", "write CPU profile to file")
	pf.String("mem-profile", "", "write heap profile to file")
	pf.String("runtime-trace", "", "write Go runtime trace to file")
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintf(os.Stderr, "htmlfmt: %v\n", err)
		}
		os.Exit(1)
	}
}

func setupRoot(cmd *cobra.Command, _ []string) error {
	flags := cmd.Root().PersistentFlags()
	verbose, err := flags.GetBool("verbose")
	if err != nil {
		return err
	}
	colorMode, err := flags.GetString("color")
	if err != nil {
		return err
	}
	if err := applyColorMode(colorMode); err != nil {
		return err
	}

	level := log.InfoLevel
	if verbose {
		level = log.DebugLevel
	}
	cmd.SetContext(withLogger(cmd.Context(), newLogger(os.Stderr, level)))
	return nil
}

func applyColorMode(mode string) error {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", "auto":
		color.NoColor = os.Getenv("NO_COLOR") != "" || !isTerminal(os.Stdout)
	case "on":
		color.NoColor = false
	case "off":
		color.NoColor = true
	default:
		return fmt.Errorf("invalid --color value %q (expected auto|on|off)", mode)
	}
	return nil
}

// isTerminal проверяет, является ли файл терминалом
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
