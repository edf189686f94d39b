package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"golang.org/x/text/unicode/norm"

	"htmlfmt/internal/ast"
	"htmlfmt/internal/diag"
	"htmlfmt/internal/driver"
	"htmlfmt/internal/source"
)

var astCmd = &cobra.Command{
	Use:   "ast [flags] <file|->",
	Short: "Print the document tree the formatter sees, as JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runAST,
}

func init() {
	astCmd.Flags().Bool("compact", false, "print JSON on one line")
	astCmd.Flags().Bool("nfc", false, "normalize input to Unicode NFC first")
}

func runAST(cmd *cobra.Command, args []string) error {
	compact, err := cmd.Flags().GetBool("compact")
	if err != nil {
		return err
	}
	nfc, err := cmd.Flags().GetBool("nfc")
	if err != nil {
		return err
	}

	fileSet := source.NewFileSet()
	var id source.FileID
	if args[0] == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return err
		}
		if nfc {
			data = norm.NFC.Bytes(data)
		}
		id = fileSet.AddVirtual("<stdin>", data)
	} else {
		if id, err = fileSet.Load(args[0]); err != nil {
			return err
		}
		if nfc {
			sf := fileSet.Get(id)
			id = fileSet.AddNormalized(sf.Path, norm.NFC.Bytes(sf.Content))
		}
	}
	sf := fileSet.Get(id)

	bag := diag.NewBag(128)
	root, buildErr := ast.BuildFile(sf, diag.BagReporter{Bag: bag})
	bag.Sort()
	renderDiagnostics(cmd.ErrOrStderr(), driver.FormatResult{
		Path:        sf.Path,
		File:        sf,
		Diagnostics: bag.Items(),
	}, true)
	if buildErr != nil {
		return fmt.Errorf("%s: %w", sf.Path, buildErr)
	}

	var out []byte
	if compact {
		out, err = json.Marshal(root)
	} else {
		out, err = json.MarshalIndent(root, "", "  ")
	}
	if err != nil {
		return err
	}
	out = append(out, '\n')
	_, err = cmd.OutOrStdout().Write(out)
	return err
}
