package main

import (
	"fmt"
	"io"
	"path/filepath"

	"htmlfmt/internal/driver"
	"htmlfmt/internal/observ"
)

// printTimings writes per-file phase timings when verbose, then the batch total.
func printTimings(out io.Writer, results []driver.FormatResult, perFile bool) {
	reports := make([]observ.Report, 0, len(results))
	for _, res := range results {
		if res.Timing == nil {
			continue
		}
		reports = append(reports, *res.Timing)
		if perFile {
			fmt.Fprintf(out, "%s\n%s", filepath.ToSlash(res.Path), res.Timing.Summary())
		}
	}
	if len(reports) == 0 {
		return
	}
	fmt.Fprintf(out, "%d file(s)\n%s", len(reports), observ.Merge(reports...).Summary())
}
