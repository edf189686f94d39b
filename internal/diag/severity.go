package diag

// Severity orders diagnostics; larger is worse.
type Severity uint8

const (
	SevInfo Severity = iota
	// SevWarning marks input the parser repaired, e.g. an implicitly closed tag.
	SevWarning
	// SevError marks input the formatter refuses to rewrite.
	SevError
)

var severityNames = [...]string{
	SevInfo:    "INFO",
	SevWarning: "WARNING",
	SevError:   "ERROR",
}

func (s Severity) String() string {
	if int(s) < len(severityNames) {
		return severityNames[s]
	}
	return "UNKNOWN"
}

// AtLeast reports whether s is min or worse.
func (s Severity) AtLeast(min Severity) bool { return s >= min }
