// Package diag is the diagnostic model shared by the markup parser, the AST
// builder, the driver and the language server.
//
// A Diagnostic carries a Severity, a stable Code (PRS/FMT/IO), a Message, the
// Primary span and optional Notes. Producers go through a Reporter, usually a
// BagReporter over a per-document Bag, so they never know how diagnostics are
// rendered. Rendering lives in diagfmt and the lsp package.
package diag
