// Package format renders an ast tree into its canonical indented text.
//
// Every node category (tag, attribute list, text, comment) has an ordered
// rule cascade held by an Engine. The first rule whose predicate matches
// renders the node; the last rule of every cascade is an unconditional
// fallback, so a missing match is a programming error and panics with
// *NoRuleError instead of producing partial output.
//
// Назначение: единственный источник форматирования HTML-фрагментов.
// Не делает: IO, кэширование, обход директорий (это internal/driver).
// Зависимости: internal/ast, internal/trace, internal/diag, internal/source.
package format
