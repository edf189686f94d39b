package diag

import (
	"fmt"
)

type Code uint16

const (
	// Неизвестная ошибка
	UnknownCode Code = 0

	// Parse-level findings reported by the markup collaborator.
	ParseInfo          Code = 2000
	ParseTokenizer     Code = 2001
	ParseStrayEndTag   Code = 2002
	ParseUnclosedTag   Code = 2003
	ParseImplicitClose Code = 2004

	// Formatting outcomes.
	FmtInfo         Code = 3000
	FmtEmptyOutput  Code = 3001
	FmtNotCanonical Code = 3002

	// IO errors
	IOLoadFileError  Code = 4001
	IOWriteFileError Code = 4002
)

var codeDescription = map[Code]string{
	UnknownCode:        "Unknown error",
	ParseInfo:          "Parse information",
	ParseTokenizer:     "Markup tokenizer failed",
	ParseStrayEndTag:   "End tag without matching start tag",
	ParseUnclosedTag:   "Element left open at end of input",
	ParseImplicitClose: "Element closed implicitly by an outer end tag",
	FmtInfo:            "Formatting information",
	FmtEmptyOutput:     "Could not format document",
	FmtNotCanonical:    "Document is not formatted",
	IOLoadFileError:    "Failed to read file",
	IOWriteFileError:   "Failed to write file",
}

// ID returns the stable short identifier, e.g. PRS2002.
func (c Code) ID() string {
	ic := int(c)
	switch {
	case ic == 0:
		return "E0000"
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("PRS%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("FMT%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
