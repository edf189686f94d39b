package fuzztests

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

const (
	maxSeedBytes = 64 << 10 // 64 KiB, ограничение для тестового корпуса
	maxFuzzInput = 1 << 16
)

var builtinSeeds = []string{
	"",
	"   \n  ",
	`<input a="whatAnAttribute">`,
	`<div a="whatAnAttribute"></div><div></div>`,
	"<i>icon\nWith Newline\n What Happens</i>",
	"<button ng-click=\"$ctrl.openTagForm()\"\n ff-show=\">developer\" class=\"flex btn\">Create Tag</button>",
	`<div ng-if class="x" [prop]="y" (click)="go()" *ngFor="let i of xs"></div>`,
	"<ul>\n  <li>One</li>\n\n  <li>Two</li>\n</ul>",
	"<p>a</p>\n\n\n\n<p>b</p>\n",
	"<!--   hi   --><div><!----></div>",
	"<!DOCTYPE html>\n<html><body><p>x</p></body></html>",
	"<div>Hello <b>World</b> &amp; friends</div>",
	"<p>é</p>",
	"<div></span>",
}

func addCorpusSeeds(f *testing.F) {
	for _, s := range builtinSeeds {
		f.Add([]byte(s))
	}
	addTestdataSeeds(f)
}

// addTestdataSeeds adds the golden sources of the format package.
func addTestdataSeeds(f *testing.F) {
	root := filepath.Join("..", "format", "testdata")
	if _, err := os.Stat(root); err != nil {
		return
	}
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil || d.IsDir() || filepath.Ext(path) != ".html" {
			return nil
		}
		// #nosec G304 -- path comes from repository testdata walk
		src, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		f.Add(clampSeed(src))
		return nil
	})
}

func clampSeed(src []byte) []byte {
	if len(src) <= maxSeedBytes {
		return append([]byte(nil), src...)
	}
	return append([]byte(nil), src[:maxSeedBytes]...)
}

func clampInput(input []byte) []byte {
	if len(input) > maxFuzzInput {
		return append([]byte(nil), input[:maxFuzzInput]...)
	}
	return append([]byte(nil), input...)
}
