package trace

// PrettyRecord is the dump shape of one record, as written to
// out_rt_<name>.json.
type PrettyRecord struct {
	Rule     string `json:"rule_name"`
	Category string `json:"category"`
	Level    int    `json:"level"`
	Node     any    `json:"node,omitempty"`
}

// Pretty converts records into their dump form. Node snapshots are already
// children-elided when recorded, so Pretty only reshapes.
func Pretty(records []*Record) []PrettyRecord {
	out := make([]PrettyRecord, 0, len(records))
	for _, rec := range records {
		if rec == nil {
			continue
		}
		out = append(out, PrettyRecord{
			Rule:     rec.Rule,
			Category: string(rec.Category),
			Level:    rec.Level,
			Node:     rec.Node,
		})
	}
	return out
}
