package scan

import (
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/lenshq/codelens/internal/graph"
)

// tsExtractor extracts declarations from TypeScript source.
type tsExtractor struct{}

func (e *tsExtractor) Extract(root *tree_sitter.Node, source []byte) ([]Symbol, []Import, []Call) {
	var symbols []Symbol
	var imports []Import
	var calls []Call

	cursor := root.Walk()
	defer cursor.Close()

	e.walk(cursor, source, &symbols, &imports, &calls)
	return symbols, imports, calls
}

func (e *tsExtractor) walk(
	cursor *tree_sitter.TreeCursor,
	source []byte,
	symbols *[]Symbol,
	imports *[]Import,
	calls *[]Call,
) {
	node := cursor.Node()

	switch node.Kind() {
	case "function_declaration":
		e.appendNamed(node, source, graph.NodeKindFunction, symbols)

	case "class_declaration":
		e.appendNamed(node, source, graph.NodeKindClass, symbols)

	case "interface_declaration":
		e.appendNamed(node, source, graph.NodeKindInterface, symbols)

	case "type_alias_declaration", "enum_declaration":
		e.appendNamed(node, source, graph.NodeKindClass, symbols)

	case "method_definition":
		e.appendNamed(node, source, graph.NodeKindMethod, symbols)

	case "lexical_declaration":
		*symbols = append(*symbols, e.arrowFunctions(node, source)...)

	case "import_statement":
		if imp, ok := e.importStatement(node, source); ok {
			*imports = append(*imports, imp)
		}

	case "call_expression":
		if call, ok := callSite(node, source, "identifier", "member_expression"); ok {
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

func (e *tsExtractor) appendNamed(node *tree_sitter.Node, source []byte, kind graph.NodeKind, symbols *[]Symbol) {
	exported := isTSExported(node)
	if sym, ok := namedSymbol(node, source, kind, func(string) bool { return exported }); ok {
		*symbols = append(*symbols, sym)
	}
}

// arrowFunctions pulls named arrow functions out of a lexical_declaration
// ("const foo = () => ...").
func (e *tsExtractor) arrowFunctions(node *tree_sitter.Node, source []byte) []Symbol {
	var out []Symbol
	exported := isTSExported(node)

	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child == nil || child.Kind() != "variable_declarator" {
			continue
		}
		value := child.ChildByFieldName("value")
		if value == nil || value.Kind() != "arrow_function" {
			continue
		}
		nameNode := child.ChildByFieldName("name")
		if nameNode == nil {
			continue
		}
		out = append(out, Symbol{
			Name:      nameNode.Utf8Text(source),
			Kind:      graph.NodeKindFunction,
			Exported:  exported,
			StartLine: startLine(child),
			EndLine:   endLine(child),
		})
	}
	return out
}

func (e *tsExtractor) importStatement(node *tree_sitter.Node, source []byte) (Import, bool) {
	sourceNode := node.ChildByFieldName("source")
	if sourceNode == nil {
		for i := uint(0); i < node.ChildCount(); i++ {
			child := node.Child(i)
			if child != nil && child.Kind() == "string" {
				sourceNode = child
				break
			}
		}
	}
	if sourceNode == nil {
		return Import{}, false
	}

	spec := strings.Trim(sourceNode.Utf8Text(source), "\"'`")
	if spec == "" {
		return Import{}, false
	}
	return Import{Spec: spec, Line: startLine(node)}, true
}

// isTSExported reports whether the declaration's parent is an
// export_statement.
func isTSExported(node *tree_sitter.Node) bool {
	parent := node.Parent()
	return parent != nil && parent.Kind() == "export_statement"
}
