package trace

import (
	"fmt"
	"strings"
)

// Level controls tracing verbosity.
type Level uint8

const (
	LevelOff   Level = iota // no tracing
	LevelRules              // rule names, categories and nesting
	LevelDebug              // plus node snapshots
)

// String returns the string representation of Level.
func (l Level) String() string {
	switch l {
	case LevelOff:
		return "off"
	case LevelRules:
		return "rules"
	case LevelDebug:
		return "debug"
	default:
		return "unknown"
	}
}

// ParseLevel converts a string to a Level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(s) {
	case "off":
		return LevelOff, nil
	case "rules":
		return LevelRules, nil
	case "debug":
		return LevelDebug, nil
	default:
		return LevelOff, fmt.Errorf("invalid trace level: %q (expected: off|rules|debug)", s)
	}
}

// WantsNodes reports whether records at this level carry node snapshots.
func (l Level) WantsNodes() bool {
	return l >= LevelDebug
}

// strip drops what the level does not keep.
func (l Level) strip(rec *Record) *Record {
	if l.WantsNodes() || rec.Node == nil {
		return rec
	}
	cp := *rec
	cp.Node = nil
	return &cp
}
