package trace

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Format represents the output format for trace records.
type Format uint8

const (
	FormatAuto   Format = iota // pick by output path
	FormatText                 // human-readable text
	FormatNDJSON               // newline-delimited JSON
)

// ParseFormat converts a string to Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "auto":
		return FormatAuto, nil
	case "text":
		return FormatText, nil
	case "ndjson", "json":
		return FormatNDJSON, nil
	}
	return FormatAuto, fmt.Errorf("invalid trace format: %q (expected: auto|text|ndjson)", s)
}

// FormatRecord formats a record according to the specified format.
func FormatRecord(rec *Record, format Format) []byte {
	switch format {
	case FormatNDJSON:
		return formatNDJSON(rec)
	default:
		return formatText(rec)
	}
}

type jsonRecord struct {
	Time     string `json:"time,omitempty"`
	Seq      uint64 `json:"seq"`
	RunID    string `json:"run_id,omitempty"`
	Path     string `json:"path,omitempty"`
	Rule     string `json:"rule_name"`
	Category string `json:"category"`
	Level    int    `json:"level"`
	Node     any    `json:"node,omitempty"`
}

func toJSON(rec *Record) jsonRecord {
	j := jsonRecord{
		Seq:      rec.Seq,
		RunID:    rec.RunID,
		Path:     rec.Path,
		Rule:     rec.Rule,
		Category: string(rec.Category),
		Level:    rec.Level,
		Node:     rec.Node,
	}
	if !rec.Time.IsZero() {
		j.Time = rec.Time.Format("2006-01-02T15:04:05.000000Z07:00")
	}
	return j
}

// formatNDJSON formats a record as newline-delimited JSON.
func formatNDJSON(rec *Record) []byte {
	data, err := json.Marshal(toJSON(rec))
	if err != nil {
		data = fmt.Appendf(nil, `{"seq":%d,"rule_name":%q,"error":%q}`, rec.Seq, rec.Rule, err.Error())
	}
	return append(data, '\n')
}

// formatText formats a record as human-readable text.
// Format: [run #seq] <indent>category/rule path {node}
func formatText(rec *Record) []byte {
	var sb strings.Builder

	run := rec.RunID
	if len(run) > 8 {
		run = run[:8]
	}
	fmt.Fprintf(&sb, "[%s #%04d] ", run, rec.Seq)
	sb.WriteString(strings.Repeat("  ", max(rec.Level, 0)))
	sb.WriteString(string(rec.Category))
	sb.WriteByte('/')
	sb.WriteString(rec.Rule)

	if rec.Path != "" {
		sb.WriteString("  ")
		sb.WriteString(rec.Path)
	}
	if rec.Node != nil {
		if b, err := json.Marshal(rec.Node); err == nil {
			sb.WriteString(" ")
			sb.Write(b)
		}
	}
	sb.WriteString("\n")
	return []byte(sb.String())
}
