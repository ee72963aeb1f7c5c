package render

import (
	"fmt"
	"sort"
	"strings"

	"github.com/lenshq/codelens/internal/graph"
)

// domainPlaceholder is emitted when the domain model is empty, so the
// output is still a valid diagram.
const domainPlaceholder = `  empty["No domain concepts"]` + "\n"

// domainStyle is applied uniformly to every domain concept.
const domainStyle = "fill:#3b0764,stroke:#c084fc,color:#faf5ff"

// domainArrowByType maps domain relation types to Mermaid edge syntax.
// Unknown types fall back to a plain arrow.
var domainArrowByType = map[string]string{
	"uses":       "-->",
	"triggers":   "-.->",
	"extends":    "==>",
	"depends_on": "-->",
}

// DomainView renders the domain node/relation structures with the same
// nested-subgraph recursion as the technical view but its own arrow table
// and a fixed style for all concepts.
func DomainView(g graph.CodeGraph) string {
	var sb strings.Builder
	sb.WriteString("flowchart TD\n")

	if len(g.DomainNodes) == 0 {
		sb.WriteString(domainPlaceholder)
		return sb.String()
	}

	// Domain nodes live in a map; sort roots by name (id as tiebreak) so
	// the emission order never depends on map iteration.
	roots := graph.DomainRoots(g)
	sort.Slice(roots, func(i, j int) bool {
		if roots[i].Name != roots[j].Name {
			return roots[i].Name < roots[j].Name
		}
		return roots[i].ID < roots[j].ID
	})

	var leaves []string
	for _, root := range roots {
		writeDomainNode(&sb, g, root.ID, "  ", &leaves)
	}

	relIDs := make([]string, 0, len(g.DomainRelations))
	for id := range g.DomainRelations {
		relIDs = append(relIDs, id)
	}
	sort.Strings(relIDs)

	for _, id := range relIDs {
		rel := g.DomainRelations[id]
		if _, ok := g.DomainNodes[rel.SourceID]; !ok {
			continue
		}
		if _, ok := g.DomainNodes[rel.TargetID]; !ok {
			continue
		}
		arrow, ok := domainArrowByType[rel.Type]
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

	for _, id := range leaves {
		fmt.Fprintf(&sb, "  style %s %s\n", mermaidID(id), domainStyle)
	}

	return sb.String()
}

// writeDomainNode emits one domain concept as a subgraph (when it has
// children) or a stadium-shaped leaf, collecting leaf ids for styling.
func writeDomainNode(sb *strings.Builder, g graph.CodeGraph, id string, indent string, leaves *[]string) {
	node, ok := g.DomainNodes[id]
	if !ok {
		return
	}

	if len(node.Children) > 0 {
		fmt.Fprintf(sb, "%ssubgraph %s[\"%s\"]\n", indent, mermaidID(id), escapeLabel(node.Name))
		for _, child := range node.Children {
			writeDomainNode(sb, g, child, indent+"  ", leaves)
		}
		sb.WriteString(indent + "end\n")
		return
	}

	fmt.Fprintf(sb, "%s%s([\"%s\"])\n", indent, mermaidID(id), escapeLabel(node.Name))
	*leaves = append(*leaves, id)
}
