package trace

import "time"

// Category names the rule set a selection was made from.
type Category string

const (
	CategoryTag       Category = "tag"
	CategoryAttribute Category = "attribute"
	CategoryText      Category = "text"
	CategoryComment   Category = "comment"
)

// Record is one rule selection.
type Record struct {
	Time     time.Time // wall-clock timestamp
	Seq      uint64    // position within the run, starting at 1
	RunID    string    // printer run that produced the record
	Path     string    // source path, empty for in-memory input
	Rule     string    // selected rule name
	Category Category
	Level    int // nesting depth of the node being formatted
	// Node is a children-elided snapshot of the input, present at LevelDebug.
	Node any
}
