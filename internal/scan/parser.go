// Package scan builds a CodeGraph from source on disk: it walks a
// repository, parses supported files with tree-sitter, and assembles the
// system/package/file/symbol hierarchy with depends_on and calls
// relations. It also rechecks source-reference drift for graphs built
// earlier.
package scan

import (
	"github.com/lenshq/codelens/internal/graph"
)

// Language identifies a supported source language.
type Language string

const (
	LangGo         Language = "go"
	LangTypeScript Language = "typescript"
	LangPython     Language = "python"
	LangRust       Language = "rust"
)

// Tier1Languages are the languages scanned when no explicit selection is
// given.
var Tier1Languages = []Language{LangGo, LangTypeScript, LangPython, LangRust}

// extToLanguage maps file extensions to languages.
var extToLanguage = map[string]Language{
	".go":  LangGo,
	".ts":  LangTypeScript,
	".tsx": LangTypeScript,
	".py":  LangPython,
	".rs":  LangRust,
}

// Symbol is one declaration found in a file. Line numbers are 1-based and
// inclusive; member symbols sit lexically inside another symbol's range.
type Symbol struct {
	Name      string
	Kind      graph.NodeKind
	Exported  bool
	StartLine int
	EndLine   int
}

// Import is a raw import specifier before resolution.
type Import struct {
	Spec string
	Line int
}

// Call is a call site with the callee expression text. The enclosing
// symbol is recovered later from the line number.
type Call struct {
	Callee string
	Line   int
}

// ParseResult holds everything extracted from a single file.
type ParseResult struct {
	Path     string
	Language Language
	LOC      int
	Hash     string
	Symbols  []Symbol
	Imports  []Import
	Calls    []Call
}
