package format

// Options configures rendering. Zero fields take defaults.
type Options struct {
	IndentWidth        int
	UseTabs            bool
	MaxLineLength      int
	MaxAttributeLength int
	// NormalizeUnicode applies NFC to input passed to Run.
	NormalizeUnicode bool
	// NoTrace disables the per-run collector; Result.Traces stays empty.
	NoTrace bool
}

const (
	DefaultIndentWidth        = 2
	DefaultMaxLineLength      = 80
	DefaultMaxAttributeLength = 40
)

func DefaultOptions() Options {
	return Options{}.withDefaults()
}

func (o Options) withDefaults() Options {
	if o.IndentWidth <= 0 {
		o.IndentWidth = DefaultIndentWidth
	}
	if o.MaxLineLength <= 0 {
		o.MaxLineLength = DefaultMaxLineLength
	}
	if o.MaxAttributeLength <= 0 {
		o.MaxAttributeLength = DefaultMaxAttributeLength
	}
	return o
}
