package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"htmlfmt/internal/format"
)

// Config file names, in lookup order within one directory.
var configNames = []string{"htmlfmt.toml", ".htmlfmt.yaml", ".htmlfmt.yml"}

// projectConfig is the [format] table of htmlfmt.toml or the format: mapping
// of .htmlfmt.yaml. Unset keys keep the formatter defaults.
type projectConfig struct {
	Path   string        `toml:"-" yaml:"-"`
	Format formatSection `toml:"format" yaml:"format"`
}

type formatSection struct {
	IndentWidth        *int  `toml:"indent_width" yaml:"indent_width"`
	UseTabs            *bool `toml:"use_tabs" yaml:"use_tabs"`
	MaxLineLength      *int  `toml:"max_line_length" yaml:"max_line_length"`
	MaxAttributeLength *int  `toml:"max_attribute_length" yaml:"max_attribute_length"`
	NormalizeUnicode   *bool `toml:"normalize_unicode" yaml:"normalize_unicode"`
}

// findConfig walks up from startDir to the first directory holding a config file.
func findConfig(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		for _, name := range configNames {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, true, nil
			} else if !errors.Is(err, os.ErrNotExist) {
				return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

func loadConfig(path string) (*projectConfig, error) {
	var (
		cfg projectConfig
		err error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		err = loadTOMLConfig(path, &cfg)
	case ".yaml", ".yml":
		err = loadYAMLConfig(path, &cfg)
	default:
		err = fmt.Errorf("%s: unsupported config format", path)
	}
	if err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	cfg.Path = path
	return &cfg, nil
}

func loadTOMLConfig(path string, cfg *projectConfig) error {
	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if !meta.IsDefined("format") {
		return fmt.Errorf("%s: missing [format]", path)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("%s: unknown key %s", path, undecoded[0])
	}
	return nil
}

func loadYAMLConfig(path string, cfg *projectConfig) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return fmt.Errorf("%s: failed to parse YAML: %w", path, err)
	}
	return nil
}

func (c *projectConfig) validate() error {
	f := c.Format
	if f.IndentWidth != nil && (*f.IndentWidth < 1 || *f.IndentWidth > 16) {
		return fmt.Errorf("format.indent_width must be in 1..16, got %d", *f.IndentWidth)
	}
	if f.MaxLineLength != nil && *f.MaxLineLength < 1 {
		return fmt.Errorf("format.max_line_length must be positive, got %d", *f.MaxLineLength)
	}
	if f.MaxAttributeLength != nil && *f.MaxAttributeLength < 1 {
		return fmt.Errorf("format.max_attribute_length must be positive, got %d", *f.MaxAttributeLength)
	}
	return nil
}

// apply copies the keys set in the file onto opts.
func (c *projectConfig) apply(opts *format.Options) {
	if c == nil {
		return
	}
	f := c.Format
	if f.IndentWidth != nil {
		opts.IndentWidth = *f.IndentWidth
	}
	if f.UseTabs != nil {
		opts.UseTabs = *f.UseTabs
	}
	if f.MaxLineLength != nil {
		opts.MaxLineLength = *f.MaxLineLength
	}
	if f.MaxAttributeLength != nil {
		opts.MaxAttributeLength = *f.MaxAttributeLength
	}
	if f.NormalizeUnicode != nil {
		opts.NormalizeUnicode = *f.NormalizeUnicode
	}
}
