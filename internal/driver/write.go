package driver

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/google/renameio"

	"htmlfmt/internal/format"
	"htmlfmt/internal/trace"
)

// writeFile replaces path atomically, keeping the mode of an existing file.
func writeFile(path string, data []byte) error {
	mode := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	if err := renameio.WriteFile(path, data, mode); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

type ruleTraceDump struct {
	RuleTraces []trace.PrettyRecord `json:"ruleTraces"`
}

// writeDebugDumps writes out_rt_<base>.json and out_ast_<base>.json next to
// src and returns the paths written.
func writeDebugDumps(src string, res format.Result) ([]string, error) {
	rtPath, astPath := DebugPaths(src)

	rt, err := json.MarshalIndent(ruleTraceDump{RuleTraces: trace.Pretty(res.Traces)}, "", "  ")
	if err != nil {
		return nil, err
	}
	if err := writeFile(rtPath, rt); err != nil {
		return nil, err
	}

	tree, err := json.MarshalIndent(res.AST, "", "  ")
	if err != nil {
		return []string{rtPath}, err
	}
	if err := writeFile(astPath, tree); err != nil {
		return []string{rtPath}, err
	}
	return []string{rtPath, astPath}, nil
}
