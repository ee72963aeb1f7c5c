// Package render compiles lens-filtered subgraphs into Mermaid flowchart
// text. Output is deterministic: for a fixed graph, lens and focus the
// emitted text is byte-identical across runs.
package render

import (
	"fmt"
	"strings"

	"github.com/lenshq/codelens/internal/graph"
	"github.com/lenshq/codelens/internal/lens"
)

// placeholderLine is emitted instead of invalid empty diagram syntax when
// a lens yields zero visible nodes on a non-empty graph.
const placeholderLine = `  empty["No visible nodes"]` + "\n"

// arrowByType maps relation types to Mermaid edge syntax.
var arrowByType = map[graph.RelationType]string{
	graph.RelationDependsOn:  "-->",
	graph.RelationCalls:      "-->",
	graph.RelationReads:      "-->",
	graph.RelationWrites:     "==>",
	graph.RelationInherits:   "==>",
	graph.RelationImplements: "-.->",
	graph.RelationEmits:      "-.->",
	graph.RelationSubscribes: "-.->",
}

// Mermaid compiles the subgraph visible under lens (optionally scoped to a
// focus node and a depth override) into nested-subgraph flowchart text.
// Domain lenses delegate to DomainView.
func Mermaid(g graph.CodeGraph, viewLens graph.ViewLens, focusID string, depthOverride *graph.DepthRange) string {
	if viewLens.Type == graph.LensDomain {
		return DomainView(g)
	}

	var sb strings.Builder
	sb.WriteString("flowchart " + direction(viewLens.Direction) + "\n")

	nodes := lens.VisibleNodes(g, viewLens, focusID, depthOverride)
	if len(nodes) == 0 {
		sb.WriteString(placeholderLine)
		return sb.String()
	}

	visible := lens.VisibleSet(nodes)
	relations := lens.VisibleRelations(g, viewLens, visible)

	// Partition into roots (no visible parent) and a parent -> children
	// map. Both preserve pre-order, so emission order never depends on
	// map iteration.
	childrenOf := make(map[string][]string)
	var roots []string
	for _, n := range nodes {
		if visible[n.ParentID] {
			childrenOf[n.ParentID] = append(childrenOf[n.ParentID], n.ID)
		} else {
			roots = append(roots, n.ID)
		}
	}

	for _, id := range roots {
		writeNode(&sb, g, viewLens, id, childrenOf, "  ")
	}

	// Contains relations are expressed structurally by the nesting above.
	for _, rel := range relations {
		if rel.Type == graph.RelationContains {
			continue
		}
		arrow, ok := arrowByType[rel.Type]
		if !ok {
			arrow = "-->"
		}
		if rel.Label != "" {
			fmt.Fprintf(&sb, "  %s %s|\"%s\"| %s\n",
				mermaidID(rel.SourceID), arrow, escapeLabel(rel.Label), mermaidID(rel.TargetID))
		} else {
			fmt.Fprintf(&sb, "  %s %s %s\n", mermaidID(rel.SourceID), arrow, mermaidID(rel.TargetID))
		}
	}

	// Style directives go last, decoupled from declaration order, so a
	// node declared deep inside nested subgraphs can still be styled.
	for _, n := range nodes {
		_, style := appearance(viewLens, n)
		if style != "" {
			fmt.Fprintf(&sb, "  style %s %s\n", mermaidID(n.ID), style)
		}
	}

	return sb.String()
}

// writeNode emits one visible node: a named subgraph wrapping its visible
// children, or a single shape-wrapped declaration when childless.
func writeNode(sb *strings.Builder, g graph.CodeGraph, viewLens graph.ViewLens, id string, childrenOf map[string][]string, indent string) {
	node := g.Nodes[id]
	kids := childrenOf[id]

	if len(kids) > 0 {
		fmt.Fprintf(sb, "%ssubgraph %s[\"%s\"]\n", indent, mermaidID(id), escapeLabel(node.Name))
		for _, kid := range kids {
			writeNode(sb, g, viewLens, kid, childrenOf, indent+"  ")
		}
		sb.WriteString(indent + "end\n")
		return
	}

	shape, _ := appearance(viewLens, node)
	opening, closing := shapeDelims(shape)
	fmt.Fprintf(sb, "%s%s%s\"%s\"%s\n", indent, mermaidID(id), opening, escapeLabel(node.Name), closing)
}

// appearance resolves the shape and style for a node: the node's per-lens
// override wins, then the first matching style rule, then a default box
// with no style.
func appearance(viewLens graph.ViewLens, node graph.GraphNode) (graph.NodeShape, string) {
	shape := graph.ShapeBox
	style := ""
	for _, rule := range viewLens.StyleRules {
		if ruleMatches(rule.Match, node) {
			if rule.Shape != "" {
				shape = rule.Shape
			}
			style = rule.Style
			break
		}
	}
	if override, ok := node.LensOverrides[viewLens.ID]; ok {
		if override.Shape != "" {
			shape = override.Shape
		}
		if override.Style != "" {
			style = override.Style
		}
	}
	return shape, style
}

func ruleMatches(m graph.StyleMatch, node graph.GraphNode) bool {
	if len(m.Kinds) > 0 {
		found := false
		for _, k := range m.Kinds {
			if k == node.Kind {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if m.Depths != nil && !m.Depths.Contains(node.Depth) {
		return false
	}
	if len(m.Tags) > 0 {
		found := false
		for _, want := range m.Tags {
			for _, have := range node.Tags {
				if want == have {
					found = true
					break
				}
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// shapeDelims returns the Mermaid bracket pair for a shape.
func shapeDelims(shape graph.NodeShape) (string, string) {
	switch shape {
	case graph.ShapeRounded:
		return "(", ")"
	case graph.ShapeStadium:
		return "([", "])"
	case graph.ShapeSubroutine:
		return "[[", "]]"
	case graph.ShapeCircle:
		return "((", "))"
	case graph.ShapeRhombus:
		return "{", "}"
	case graph.ShapeHexagon:
		return "{{", "}}"
	case graph.ShapeCylinder:
		return "[(", ")]"
	default:
		return "[", "]"
	}
}

func direction(d string) string {
	switch d {
	case "LR", "RL", "BT", "TD", "TB":
		return d
	default:
		return "TD"
	}
}

// mermaidID sanitizes an id to the restricted character set Mermaid
// accepts for node identifiers. The mapping is stable, so the same input
// id always yields the same identifier.
func mermaidID(id string) string {
	var b strings.Builder
	b.Grow(len(id) + 1)
	b.WriteByte('n')
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

// escapeLabel neutralizes quote characters, which Mermaid treats as label
// delimiters.
func escapeLabel(s string) string {
	return strings.ReplaceAll(s, `"`, "#quot;")
}
