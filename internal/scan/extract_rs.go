package scan

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/lenshq/codelens/internal/graph"
)

// rsExtractor extracts declarations from Rust source.
type rsExtractor struct{}

func (e *rsExtractor) Extract(root *tree_sitter.Node, source []byte) ([]Symbol, []Import, []Call) {
	var symbols []Symbol
	var imports []Import
	var calls []Call

	cursor := root.Walk()
	defer cursor.Close()

	e.walk(cursor, source, &symbols, &imports, &calls)
	return symbols, imports, calls
}

func (e *rsExtractor) walk(
	cursor *tree_sitter.TreeCursor,
	source []byte,
	symbols *[]Symbol,
	imports *[]Import,
	calls *[]Call,
) {
	node := cursor.Node()

	switch node.Kind() {
	case "function_item":
		kind := graph.NodeKindFunction
		if insideImpl(node) {
			kind = graph.NodeKindMethod
		}
		if sym, ok := namedSymbol(node, source, kind, func(string) bool { return isRustPub(node) }); ok {
			*symbols = append(*symbols, sym)
		}

	case "struct_item", "enum_item", "type_item":
		if sym, ok := namedSymbol(node, source, graph.NodeKindClass, func(string) bool { return isRustPub(node) }); ok {
			*symbols = append(*symbols, sym)
		}

	case "trait_item":
		if sym, ok := namedSymbol(node, source, graph.NodeKindInterface, func(string) bool { return isRustPub(node) }); ok {
			*symbols = append(*symbols, sym)
		}

	case "use_declaration":
		if imp, ok := e.useDeclaration(node, source); ok {
			*imports = append(*imports, imp)
		}

	case "call_expression":
		if call, ok := callSite(node, source, "identifier", "scoped_identifier", "field_expression"); ok {
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

func (e *rsExtractor) useDeclaration(node *tree_sitter.Node, source []byte) (Import, bool) {
	argNode := node.ChildByFieldName("argument")
	var spec string
	if argNode != nil {
		spec = argNode.Utf8Text(source)
	} else {
		spec = node.Utf8Text(source)
	}
	if spec == "" {
		return Import{}, false
	}
	return Import{Spec: spec, Line: startLine(node)}, true
}

// insideImpl walks ancestors looking for an impl or trait block before
// the source_file root.
func insideImpl(node *tree_sitter.Node) bool {
	for p := node.Parent(); p != nil; p = p.Parent() {
		switch p.Kind() {
		case "impl_item", "trait_item":
			return true
		case "source_file":
			return false
		}
	}
	return false
}

// isRustPub reports whether the item's first child is a visibility
// modifier ("pub").
func isRustPub(node *tree_sitter.Node) bool {
	first := node.Child(0)
	return first != nil && first.Kind() == "visibility_modifier"
}
