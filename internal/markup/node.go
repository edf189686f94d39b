package markup

type Kind uint8

const (
	KindElement Kind = iota + 1
	KindText
	KindComment
	KindDoctype
)

func (k Kind) String() string {
	switch k {
	case KindElement:
		return "element"
	case KindText:
		return "text"
	case KindComment:
		return "comment"
	case KindDoctype:
		return "doctype"
	}
	return "unknown"
}

// Attr is a parser-level attribute: Val is always the decoded value, a
// valueless attribute reports "".
type Attr struct {
	Key string
	Val string
}

// Node is one raw tree node. Offsets are byte positions in the parsed input.
type Node struct {
	Kind Kind
	// Name holds the tag name as written in the source.
	Name  string
	Attrs []Attr
	// Raw is the source of the opening tag for elements, and the whole
	// token for text, comments and doctypes.
	Raw string
	// Data is the comment body for comments.
	Data string

	Start uint32
	End   uint32
	// OpenEnd is the offset right after the opening tag.
	OpenEnd uint32

	SelfClosing bool
	Children    []*Node
}

var voidElements = map[string]struct{}{
	"area": {}, "base": {}, "br": {}, "col": {}, "embed": {}, "hr": {}, "img": {},
	"input": {}, "link": {}, "meta": {}, "param": {}, "source": {}, "track": {}, "wbr": {},
}

// IsVoid reports whether name (any case) is an HTML void element.
func IsVoid(name string) bool {
	_, ok := voidElements[lowerASCII(name)]
	return ok
}

func lowerASCII(s string) string {
	for i := 0; i < len(s); i++ {
		if c := s[i]; c >= 'A' && c <= 'Z' {
			b := []byte(s)
			for j := i; j < len(b); j++ {
				if b[j] >= 'A' && b[j] <= 'Z' {
					b[j] += 'a' - 'A'
				}
			}
			return string(b)
		}
	}
	return s
}
