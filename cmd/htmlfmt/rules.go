package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"htmlfmt/internal/format"
	"htmlfmt/internal/trace"
)

var ruleCategories = []trace.Category{
	trace.CategoryTag,
	trace.CategoryAttribute,
	trace.CategoryText,
	trace.CategoryComment,
}

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "List the formatting rules in cascade order",
	Long: `List the rules of each cascade in the order they are tried. With --docs
every rule is described; on a terminal the description is rendered, elsewhere
it is printed as markdown.`,
	Args: cobra.NoArgs,
	RunE: runRules,
}

func init() {
	rulesCmd.Flags().Bool("docs", false, "describe each rule")
	rulesCmd.Flags().Bool("markdown", false, "print descriptions as raw markdown even on a terminal")
}

func runRules(cmd *cobra.Command, _ []string) error {
	f := cmd.Flags()
	docs, err := f.GetBool("docs")
	if err != nil {
		return err
	}
	raw, err := f.GetBool("markdown")
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if !docs && !raw {
		names := format.RuleNames()
		for _, cat := range ruleCategories {
			fmt.Fprintf(out, "%s:\n", pathColor.Sprint(cat))
			for i, name := range names[cat] {
				fmt.Fprintf(out, "  %d. %s\n", i+1, name)
			}
		}
		return nil
	}

	md := rulesMarkdown(format.RuleDocs())
	if raw || !stdoutIsTerminal(out) {
		_, err := io.WriteString(out, md)
		return err
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return err
	}
	rendered, err := renderer.Render(md)
	if err != nil {
		return err
	}
	_, err = io.WriteString(out, rendered)
	return err
}

func rulesMarkdown(docs map[trace.Category][]format.RuleDoc) string {
	var b strings.Builder
	b.WriteString("# Formatting rules\n\nEach cascade is tried top to bottom; the first rule that applies renders the node.\n")
	for _, cat := range ruleCategories {
		fmt.Fprintf(&b, "\n## %s\n\n", cat)
		for i, d := range docs[cat] {
			fmt.Fprintf(&b, "%d. **%s**: %s\n", i+1, d.Name, d.Doc)
		}
	}
	return b.String()
}

func stdoutIsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && isTerminal(f)
}
