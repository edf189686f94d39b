package markup

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"fortio.org/safecast"
	"golang.org/x/net/html"

	"htmlfmt/internal/diag"
	"htmlfmt/internal/source"
)

var ErrTooLarge = errors.New("input exceeds 4GiB")

// MaxTokenBytes bounds one token (a text run, tag or comment). A longer
// token fails the parse with html.ErrBufferExceeded.
const MaxTokenBytes = 4 << 20

// parser keeps the open-element stack while walking tokenizer output.
type parser struct {
	src   string
	z     *html.Tokenizer
	pos   uint32
	rep   diag.Reporter
	root  []*Node
	stack []*Node
}

// Parse tokenizes src and builds the raw tree. Recoverable problems go to r
// (nil is allowed); an unrecoverable one is returned as error.
func Parse(src string, r diag.Reporter) ([]*Node, error) {
	if _, err := safecast.Conv[uint32](len(src)); err != nil {
		return nil, ErrTooLarge
	}
	if r == nil {
		r = diag.NopReporter{}
	}
	p := &parser{
		src: src,
		z:   html.NewTokenizer(strings.NewReader(src)),
		rep: r,
	}
	p.z.SetMaxBuf(MaxTokenBytes)
	if err := p.run(); err != nil {
		return nil, err
	}
	return p.root, nil
}

func (p *parser) run() error {
	for {
		tt := p.z.Next()
		if tt == html.ErrorToken {
			err := p.z.Err()
			if errors.Is(err, io.EOF) {
				p.closeAll()
				return nil
			}
			diag.Error(p.rep, diag.ParseTokenizer, p.span(p.pos, p.pos), err.Error()).Emit()
			return fmt.Errorf("tokenize at offset %d: %w", p.pos, err)
		}

		// Raw must be copied first: TagName and TagAttr lower-case the
		// underlying buffer in place.
		raw := string(p.z.Raw())
		start := p.pos
		end := start + uint32(len(raw)) //nolint:gosec // total length checked in Parse
		p.pos = end

		switch tt {
		case html.TextToken:
			p.append(&Node{Kind: KindText, Raw: raw, Start: start, End: end})
		case html.CommentToken:
			p.append(&Node{Kind: KindComment, Raw: raw, Data: string(p.z.Text()), Start: start, End: end})
		case html.DoctypeToken:
			p.append(&Node{Kind: KindDoctype, Raw: raw, Start: start, End: end})
		case html.StartTagToken, html.SelfClosingTagToken:
			n := p.element(raw, start, end)
			n.SelfClosing = tt == html.SelfClosingTagToken
			p.append(n)
			if !n.SelfClosing && !IsVoid(n.Name) {
				p.stack = append(p.stack, n)
			}
		case html.EndTagToken:
			p.closeTag(rawTagName(raw), start, end)
		}
	}
}

func (p *parser) element(raw string, start, end uint32) *Node {
	n := &Node{
		Kind:    KindElement,
		Name:    rawTagName(raw),
		Raw:     raw,
		Start:   start,
		End:     end,
		OpenEnd: end,
	}
	_, hasAttr := p.z.TagName()
	names := AttributeNames(raw)
	i := 0
	for hasAttr {
		var k, v []byte
		k, v, hasAttr = p.z.TagAttr()
		key := string(k)
		// x/net/html lower-cases keys; take the written spelling when the
		// quote-aware walk agrees on the name.
		if i < len(names) && strings.EqualFold(names[i], key) {
			key = names[i]
		}
		n.Attrs = append(n.Attrs, Attr{Key: key, Val: string(v)})
		i++
	}
	return n
}

// closeTag pops up to the nearest open element called name. An end tag that
// matches nothing is dropped.
func (p *parser) closeTag(name string, start, end uint32) {
	for i := len(p.stack) - 1; i >= 0; i-- {
		if !strings.EqualFold(p.stack[i].Name, name) {
			continue
		}
		for j := len(p.stack) - 1; j > i; j-- {
			inner := p.stack[j]
			inner.End = start
			diag.Warning(p.rep, diag.ParseImplicitClose, p.span(inner.Start, inner.OpenEnd),
				fmt.Sprintf("<%s> closed implicitly by </%s>", inner.Name, name)).Emit()
		}
		p.stack[i].End = end
		p.stack = p.stack[:i]
		return
	}
	if IsVoid(name) {
		// </br> and friends carry no structure.
		return
	}
	diag.Warning(p.rep, diag.ParseStrayEndTag, p.span(start, end),
		fmt.Sprintf("</%s> has no matching start tag", name)).Emit()
}

func (p *parser) closeAll() {
	for j := len(p.stack) - 1; j >= 0; j-- {
		n := p.stack[j]
		n.End = p.pos
		diag.Warning(p.rep, diag.ParseUnclosedTag, p.span(n.Start, n.OpenEnd),
			fmt.Sprintf("<%s> is never closed", n.Name)).Emit()
	}
	p.stack = nil
}

func (p *parser) append(n *Node) {
	if len(p.stack) == 0 {
		p.root = append(p.root, n)
		return
	}
	top := p.stack[len(p.stack)-1]
	top.Children = append(top.Children, n)
}

func (p *parser) span(start, end uint32) source.Span {
	return source.Span{Start: start, End: end}
}

// rawTagName extracts the tag name as written from "<name ...>" or "</name>".
func rawTagName(raw string) string {
	i := 1
	if i < len(raw) && raw[i] == '/' {
		i++
	}
	j := i
	for j < len(raw) {
		c := raw[j]
		if c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f' || c == '/' || c == '>' {
			break
		}
		j++
	}
	return raw[i:j]
}
