// Package markup is a thin tolerant parser over the golang.org/x/net/html
// tokenizer. It produces a raw element tree that keeps byte offsets into the
// input, verbatim tag names and attribute keys, and the raw source of every
// opening tag so later stages can inspect exactly what was written.
//
// The parser does not apply HTML5 tree construction rules. Void elements
// never take children, elements left open are closed implicitly with a
// warning, and an end tag with no matching start tag is dropped with a
// warning. Only a tokenizer failure, such as a token longer than
// MaxTokenBytes, fails the parse.
package markup
