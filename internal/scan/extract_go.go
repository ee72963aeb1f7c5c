package scan

import (
	"strings"
	"unicode"
	"unicode/utf8"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/lenshq/codelens/internal/graph"
)

// goExtractor extracts declarations from Go source.
type goExtractor struct{}

func (e *goExtractor) Extract(root *tree_sitter.Node, source []byte) ([]Symbol, []Import, []Call) {
	var symbols []Symbol
	var imports []Import
	var calls []Call

	cursor := root.Walk()
	defer cursor.Close()

	e.walk(cursor, source, &symbols, &imports, &calls)
	return symbols, imports, calls
}

func (e *goExtractor) walk(
	cursor *tree_sitter.TreeCursor,
	source []byte,
	symbols *[]Symbol,
	imports *[]Import,
	calls *[]Call,
) {
	node := cursor.Node()

	switch node.Kind() {
	case "function_declaration":
		if sym, ok := namedSymbol(node, source, graph.NodeKindFunction, isGoExported); ok {
			*symbols = append(*symbols, sym)
		}

	case "method_declaration":
		if sym, ok := namedSymbol(node, source, graph.NodeKindMethod, isGoExported); ok {
			*symbols = append(*symbols, sym)
		}

	case "type_declaration":
		*symbols = append(*symbols, e.typeSpecs(node, source)...)

	case "import_spec":
		if imp, ok := e.importSpec(node, source); ok {
			*imports = append(*imports, imp)
		}

	case "call_expression":
		if call, ok := callSite(node, source, "identifier", "selector_expression"); ok {
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

// typeSpecs handles type_declaration, which carries one or more type_spec
// children (grouped type blocks).
func (e *goExtractor) typeSpecs(node *tree_sitter.Node, source []byte) []Symbol {
	var out []Symbol
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child == nil || child.Kind() != "type_spec" {
			continue
		}

		kind := graph.NodeKindClass
		if t := child.ChildByFieldName("type"); t != nil && t.Kind() == "interface_type" {
			kind = graph.NodeKindInterface
		}
		if sym, ok := namedSymbol(child, source, kind, isGoExported); ok {
			out = append(out, sym)
		}
	}
	return out
}

func (e *goExtractor) importSpec(node *tree_sitter.Node, source []byte) (Import, bool) {
	pathNode := node.ChildByFieldName("path")
	if pathNode == nil {
		for i := uint(0); i < node.ChildCount(); i++ {
			child := node.Child(i)
			if child != nil && child.Kind() == "interpreted_string_literal" {
				pathNode = child
				break
			}
		}
	}
	if pathNode == nil {
		return Import{}, false
	}

	spec := strings.Trim(pathNode.Utf8Text(source), "\"")
	if spec == "" {
		return Import{}, false
	}
	return Import{Spec: spec, Line: startLine(node)}, true
}

// isGoExported reports whether name starts with an uppercase letter.
func isGoExported(name string) bool {
	r, _ := utf8.DecodeRuneInString(name)
	return unicode.IsUpper(r)
}

// namedSymbol builds a Symbol from any node with a "name" field child.
func namedSymbol(
	node *tree_sitter.Node,
	source []byte,
	kind graph.NodeKind,
	exported func(string) bool,
) (Symbol, bool) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return Symbol{}, false
	}
	name := nameNode.Utf8Text(source)
	if name == "" {
		return Symbol{}, false
	}
	return Symbol{
		Name:      name,
		Kind:      kind,
		Exported:  exported(name),
		StartLine: startLine(node),
		EndLine:   endLine(node),
	}, true
}

// callSite builds a Call from a call node whose "function" child is one of
// the given AST kinds. Anything else (computed callees, literals) is
// skipped.
func callSite(node *tree_sitter.Node, source []byte, fnKinds ...string) (Call, bool) {
	fnNode := node.ChildByFieldName("function")
	if fnNode == nil {
		return Call{}, false
	}

	matched := false
	for _, k := range fnKinds {
		if fnNode.Kind() == k {
			matched = true
			break
		}
	}
	if !matched {
		return Call{}, false
	}

	callee := fnNode.Utf8Text(source)
	if callee == "" {
		return Call{}, false
	}
	return Call{Callee: callee, Line: startLine(node)}, true
}
