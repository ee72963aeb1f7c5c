package graph

import "time"

// --- Enums ---

// NodeKind classifies nodes in the containment hierarchy.
type NodeKind string

const (
	NodeKindSystem    NodeKind = "system"
	NodeKindPackage   NodeKind = "package"
	NodeKindModule    NodeKind = "module"
	NodeKindClass     NodeKind = "class"
	NodeKindFunction  NodeKind = "function"
	NodeKindInterface NodeKind = "interface"
	NodeKindVariable  NodeKind = "variable"
	NodeKindMethod    NodeKind = "method"
	NodeKindField     NodeKind = "field"
)

// RelationType classifies edges between graph nodes. Contains relations
// mirror the node tree and are excluded from dependency and cycle analysis.
type RelationType string

const (
	RelationContains   RelationType = "contains"
	RelationDependsOn  RelationType = "depends_on"
	RelationImplements RelationType = "implements"
	RelationInherits   RelationType = "inherits"
	RelationCalls      RelationType = "calls"
	RelationEmits      RelationType = "emits"
	RelationSubscribes RelationType = "subscribes"
	RelationReads      RelationType = "reads"
	RelationWrites     RelationType = "writes"
)

// LensType identifies which projection a lens produces.
type LensType string

const (
	LensComponent LensType = "component"
	LensFlow      LensType = "flow"
	LensDomain    LensType = "domain"
	LensCustom    LensType = "custom"
)

// NodeShape selects the Mermaid shape used when a node is rendered.
type NodeShape string

const (
	ShapeBox        NodeShape = "box"
	ShapeRounded    NodeShape = "rounded"
	ShapeStadium    NodeShape = "stadium"
	ShapeSubroutine NodeShape = "subroutine"
	ShapeCircle     NodeShape = "circle"
	ShapeRhombus    NodeShape = "rhombus"
	ShapeHexagon    NodeShape = "hexagon"
	ShapeCylinder   NodeShape = "cylinder"
)

// ProjectionRole describes how strongly a domain concept maps onto a
// technical node.
type ProjectionRole string

const (
	RolePrimary    ProjectionRole = "primary"
	RoleSupporting ProjectionRole = "supporting"
	RoleReferenced ProjectionRole = "referenced"
)

// SyncStatus tracks drift between a node and its underlying source file.
type SyncStatus string

const (
	SyncLocked   SyncStatus = "locked"
	SyncModified SyncStatus = "modified"
	SyncMissing  SyncStatus = "missing"
)

// Depth levels of the containment hierarchy.
const (
	DepthSystem  = 0
	DepthPackage = 1
	DepthFile    = 2
	DepthSymbol  = 3
	DepthMember  = 4

	// MaxDepth bounds the hierarchy; AddNode refuses children below it.
	MaxDepth = 4
)

// --- Models ---

// SourceRef points a node at the code it was derived from.
type SourceRef struct {
	FilePath    string `json:"filePath"`
	LineStart   int    `json:"lineStart"`
	LineEnd     int    `json:"lineEnd"`
	ContentHash string `json:"contentHash,omitempty"`
}

// NodeOverride adjusts how one node appears under one lens.
type NodeOverride struct {
	Hidden bool      `json:"hidden,omitempty"`
	Shape  NodeShape `json:"shape,omitempty"`
	Style  string    `json:"style,omitempty"`
}

// GraphNode is one node of the containment tree. Every node except the
// root has a ParentID resolving to a node whose Children list contains it,
// and Depth equal to its parent's Depth plus one.
type GraphNode struct {
	ID            string                  `json:"id"`
	Name          string                  `json:"name"`
	Kind          NodeKind                `json:"kind"`
	Depth         int                     `json:"depth"`
	ParentID      string                  `json:"parentId,omitempty"` // empty only for the root
	Children      []string                `json:"children,omitempty"` // ordered child ids
	SourceRef     *SourceRef              `json:"sourceRef,omitempty"`
	Tags          []string                `json:"tags,omitempty"`
	LensOverrides map[string]NodeOverride `json:"lensOverrides,omitempty"` // lens id -> override
	DomainIDs     []string                `json:"domainIds,omitempty"`
}

// GraphRelation is a typed edge between two graph nodes.
type GraphRelation struct {
	ID             string          `json:"id"`
	SourceID       string          `json:"sourceId"`
	TargetID       string          `json:"targetId"`
	Type           RelationType    `json:"type"`
	Label          string          `json:"label,omitempty"`
	LensVisibility map[string]bool `json:"lensVisibility,omitempty"` // lens id -> visible
}

// DepthRange is an inclusive [Min, Max] depth window.
type DepthRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// Contains reports whether depth falls within the range.
func (r DepthRange) Contains(depth int) bool {
	return depth >= r.Min && depth <= r.Max
}

// StyleMatch is the predicate half of a style rule. Empty fields match
// everything.
type StyleMatch struct {
	Kinds  []NodeKind  `json:"kinds,omitempty"`
	Depths *DepthRange `json:"depths,omitempty"`
	Tags   []string    `json:"tags,omitempty"`
}

// StyleRule pairs a match predicate with the shape and style applied to
// matching nodes. Rules are evaluated in order; the first match wins.
type StyleRule struct {
	Match StyleMatch `json:"match"`
	Shape NodeShape  `json:"shape,omitempty"`
	Style string     `json:"style,omitempty"` // Mermaid style fragment
}

// ViewLens is a named filter plus style configuration producing one visual
// projection of the graph. Lenses are configuration: they never reference
// specific node or relation instances.
type ViewLens struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	Type          LensType       `json:"type"`
	Kinds         []NodeKind     `json:"kinds,omitempty"` // empty = all kinds
	Depths        DepthRange     `json:"depths"`
	Tags          []string       `json:"tags,omitempty"`          // empty = all tags
	RelationTypes []RelationType `json:"relationTypes,omitempty"` // empty = all types
	StyleRules    []StyleRule    `json:"styleRules,omitempty"`
	Direction     string         `json:"direction,omitempty"` // layout hint: TD or LR
}

// DomainProjection maps a domain concept onto one technical node.
type DomainProjection struct {
	NodeID string         `json:"nodeId"`
	Role   ProjectionRole `json:"role"`
}

// DomainNode is one business concept in the domain tree, parallel to and
// independent of the technical graph.
type DomainNode struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Description string             `json:"description,omitempty"`
	ParentID    string             `json:"parentId,omitempty"` // empty for domain roots
	Children    []string           `json:"children,omitempty"`
	Projections []DomainProjection `json:"projections,omitempty"`
}

// DomainRelation is an edge between two domain concepts.
type DomainRelation struct {
	ID       string `json:"id"`
	SourceID string `json:"sourceId"`
	TargetID string `json:"targetId"`
	Type     string `json:"type,omitempty"`
	Label    string `json:"label,omitempty"`
}

// SyncLockEntry records whether a node's source reference is still current.
// Entries are produced by the sync scanner and consumed read-only.
type SyncLockEntry struct {
	NodeID      string     `json:"nodeId"`
	SourceRef   SourceRef  `json:"sourceRef"`
	Status      SyncStatus `json:"status"`
	LastChecked time.Time  `json:"lastChecked"`
}

// FlowStep is one ordered step of a flow.
type FlowStep struct {
	NodeID string `json:"nodeId"`
	Label  string `json:"label,omitempty"`
	Order  int    `json:"order"`
}

// GraphFlow is a named, ordered path of nodes representing a runtime
// scenario, scoped to the root or one depth-1 node.
type GraphFlow struct {
	ID      string     `json:"id"`
	Name    string     `json:"name"`
	ScopeID string     `json:"scopeId"`
	Steps   []FlowStep `json:"steps"`
	Diagram string     `json:"diagram,omitempty"` // externally supplied narrative diagram
}

// CodeGraph is the aggregate root. All mutation operations are pure
// functions returning a new CodeGraph value; nothing mutates one in place.
type CodeGraph struct {
	ID              string                    `json:"id"`
	OwnerID         string                    `json:"ownerId"`
	Name            string                    `json:"name"`
	RootID          string                    `json:"rootId"`
	Nodes           map[string]GraphNode      `json:"nodes"`
	Relations       map[string]GraphRelation  `json:"relations"`
	DomainNodes     map[string]DomainNode     `json:"domainNodes,omitempty"`
	DomainRelations map[string]DomainRelation `json:"domainRelations,omitempty"`
	Lenses          []ViewLens                `json:"lenses"`
	ActiveLensID    string                    `json:"activeLensId,omitempty"`
	SyncLocks       map[string]SyncLockEntry  `json:"syncLocks,omitempty"`
	Flows           map[string]GraphFlow      `json:"flows,omitempty"`
}

// Root returns the root node. The second result is false if the root id
// does not resolve, which only happens on a hand-built broken graph.
func (g CodeGraph) Root() (GraphNode, bool) {
	n, ok := g.Nodes[g.RootID]
	return n, ok
}

// Lens returns the lens with the given id.
func (g CodeGraph) Lens(id string) (ViewLens, bool) {
	for _, l := range g.Lenses {
		if l.ID == id {
			return l, true
		}
	}
	return ViewLens{}, false
}

// ActiveLens returns the currently active lens, falling back to the first
// lens when no active id is set.
func (g CodeGraph) ActiveLens() (ViewLens, bool) {
	if l, ok := g.Lens(g.ActiveLensID); ok {
		return l, true
	}
	if len(g.Lenses) > 0 {
		return g.Lenses[0], true
	}
	return ViewLens{}, false
}

// GraphStats summarizes a code graph.
type GraphStats struct {
	NodeCount       int `json:"nodeCount"`
	RelationCount   int `json:"relationCount"`
	DomainNodeCount int `json:"domainNodeCount"`
	LensCount       int `json:"lensCount"`
	FlowCount       int `json:"flowCount"`
}

// Stats returns counts of the graph's contents.
func (g CodeGraph) Stats() GraphStats {
	return GraphStats{
		NodeCount:       len(g.Nodes),
		RelationCount:   len(g.Relations),
		DomainNodeCount: len(g.DomainNodes),
		LensCount:       len(g.Lenses),
		FlowCount:       len(g.Flows),
	}
}
