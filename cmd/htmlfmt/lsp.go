package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"htmlfmt/internal/format"
	"htmlfmt/internal/lsp"
)

var lspCmd = &cobra.Command{
	Use:   "lsp",
	Short: "Run the htmlfmt language server over stdio",
	Long: `Serve document formatting and parse diagnostics to an editor over
stdio JSON-RPC. Each document uses the nearest htmlfmt.toml or .htmlfmt.yaml
above it; without one the editor's tab settings apply.`,
	Args: cobra.NoArgs,
	RunE: runLSP,
}

func init() {
	lspCmd.Flags().Duration("debounce", 200*time.Millisecond, "delay before re-checking an edited document")
}

func runLSP(cmd *cobra.Command, _ []string) error {
	debounce, err := cmd.Flags().GetDuration("debounce")
	if err != nil {
		return err
	}
	resolve, err := lspResolver(cmd)
	if err != nil {
		return err
	}
	server := lsp.NewServer(cmd.InOrStdin(), cmd.OutOrStdout(), lsp.ServerOptions{
		Debounce: debounce,
		Options:  format.DefaultOptions(),
		Resolve:  resolve,
		Logger:   loggerFromContext(cmd.Context()),
	})
	if err := server.Run(cmd.Context()); err != nil {
		if errors.Is(err, lsp.ErrExit) {
			return nil
		}
		if errors.Is(err, lsp.ErrExitWithoutShutdown) {
			return fmt.Errorf("lsp exit without shutdown")
		}
		return err
	}
	return nil
}

// lspResolver honours --no-config and --config; otherwise each document
// looks for its own project config.
func lspResolver(cmd *cobra.Command) (lsp.ResolveFunc, error) {
	root := cmd.Root().PersistentFlags()
	noConfig, err := root.GetBool("no-config")
	if err != nil {
		return nil, err
	}
	if noConfig {
		return nil, nil
	}
	explicit, err := root.GetString("config")
	if err != nil {
		return nil, err
	}
	if explicit != "" {
		cfg, err := loadConfig(explicit)
		if err != nil {
			return nil, err
		}
		opts := format.DefaultOptions()
		cfg.apply(&opts)
		return func(string) (format.Options, bool, error) { return opts, true, nil }, nil
	}
	return resolveProjectOptions, nil
}

func resolveProjectOptions(path string) (format.Options, bool, error) {
	opts := format.DefaultOptions()
	cfgPath, found, err := findConfig(filepath.Dir(path))
	if err != nil || !found {
		return opts, false, err
	}
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return opts, false, nil
		}
		return opts, false, err
	}
	cfg.apply(&opts)
	return opts, true, nil
}
