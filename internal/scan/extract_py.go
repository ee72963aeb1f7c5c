package scan

import (
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/lenshq/codelens/internal/graph"
)

// pyExtractor extracts declarations from Python source. Functions and
// classes are taken at any nesting level; methods inside classes fold
// into members by line containment during assembly.
type pyExtractor struct{}

func (e *pyExtractor) Extract(root *tree_sitter.Node, source []byte) ([]Symbol, []Import, []Call) {
	var symbols []Symbol
	var imports []Import
	var calls []Call

	cursor := root.Walk()
	defer cursor.Close()

	e.walk(cursor, source, &symbols, &imports, &calls)
	return symbols, imports, calls
}

func (e *pyExtractor) walk(
	cursor *tree_sitter.TreeCursor,
	source []byte,
	symbols *[]Symbol,
	imports *[]Import,
	calls *[]Call,
) {
	node := cursor.Node()

	switch node.Kind() {
	case "function_definition":
		kind := graph.NodeKindFunction
		if insidePyClass(node) {
			kind = graph.NodeKindMethod
		}
		if sym, ok := namedSymbol(node, source, kind, isPyExported); ok {
			*symbols = append(*symbols, sym)
		}

	case "class_definition":
		if sym, ok := namedSymbol(node, source, graph.NodeKindClass, isPyExported); ok {
			*symbols = append(*symbols, sym)
		}

	case "import_statement":
		*imports = append(*imports, e.importNames(node, source)...)

	case "import_from_statement":
		if imp, ok := e.fromImport(node, source); ok {
			*imports = append(*imports, imp)
		}

	case "call":
		if call, ok := callSite(node, source, "identifier", "attribute"); ok {
			*calls = append(*calls, call)
		}
	}

	if cursor.GotoFirstChild() {
		e.walk(cursor, source, symbols, imports, calls)
		for cursor.GotoNextSibling() {
			e.walk(cursor, source, symbols, imports, calls)
		}
		cursor.GotoParent()
	}
}

// importNames handles "import a.b, c" which carries one dotted_name per
// imported module.
func (e *pyExtractor) importNames(node *tree_sitter.Node, source []byte) []Import {
	var out []Import
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child == nil || child.Kind() != "dotted_name" {
			continue
		}
		if name := child.Utf8Text(source); name != "" {
			out = append(out, Import{Spec: name, Line: startLine(node)})
		}
	}
	return out
}

func (e *pyExtractor) fromImport(node *tree_sitter.Node, source []byte) (Import, bool) {
	moduleNode := node.ChildByFieldName("module_name")
	if moduleNode == nil {
		for i := uint(0); i < node.ChildCount(); i++ {
			child := node.Child(i)
			if child != nil && child.Kind() == "dotted_name" {
				moduleNode = child
				break
			}
		}
	}
	if moduleNode == nil {
		return Import{}, false
	}

	name := moduleNode.Utf8Text(source)
	if name == "" {
		return Import{}, false
	}
	return Import{Spec: name, Line: startLine(node)}, true
}

// insidePyClass walks ancestors looking for a class_definition before the
// module root.
func insidePyClass(node *tree_sitter.Node) bool {
	for p := node.Parent(); p != nil; p = p.Parent() {
		switch p.Kind() {
		case "class_definition":
			return true
		case "module":
			return false
		}
	}
	return false
}

// isPyExported reports whether name lacks a leading underscore.
func isPyExported(name string) bool {
	return !strings.HasPrefix(name, "_")
}
