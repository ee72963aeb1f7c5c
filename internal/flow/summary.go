// Package flow derives the compact structural digest handed to the
// external narrative generator, and validates the flow records that come
// back. The builder never produces prose and never calls any external
// service.
package flow

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/lenshq/codelens/internal/graph"
)

// Summary is the digest consumed by the external generator: the
// module -> file -> symbol hierarchy, labelled import edges, call edges
// resolved to their owning files, and ranked entry-point candidates.
type Summary struct {
	GraphID     string          `json:"graphId"`
	ScopeID     string          `json:"scopeId,omitempty"`
	Modules     []ModuleSummary `json:"modules"`
	Imports     []ImportEdge    `json:"imports,omitempty"`
	Calls       []CallEdge      `json:"calls,omitempty"`
	EntryPoints []EntryPoint    `json:"entryPoints,omitempty"`
}

// ModuleSummary is one depth-1 node with its files.
type ModuleSummary struct {
	ID    string        `json:"id"`
	Name  string        `json:"name"`
	Files []FileSummary `json:"files,omitempty"`
}

// FileSummary is one depth-2 node with its symbol inventory.
type FileSummary struct {
	ID      string          `json:"id"`
	Name    string          `json:"name"`
	Path    string          `json:"path,omitempty"`
	Symbols []SymbolSummary `json:"symbols,omitempty"`
}

// SymbolSummary is one symbol or member belonging to a file.
type SymbolSummary struct {
	ID   string         `json:"id"`
	Name string         `json:"name"`
	Kind graph.NodeKind `json:"kind"`
}

// ImportEdge is a file-to-file dependency. Symbol carries the relation's
// label, treated as the imported symbol name when available.
type ImportEdge struct {
	FromFileID string `json:"fromFileId"`
	ToFileID   string `json:"toFileId"`
	FromFile   string `json:"fromFile"`
	ToFile     string `json:"toFile"`
	Symbol     string `json:"symbol,omitempty"`
	FromModule string `json:"fromModule,omitempty"`
	ToModule   string `json:"toModule,omitempty"`
}

// CallEdge is a symbol-to-symbol call resolved back to the owning files.
type CallEdge struct {
	FromSymbolID string `json:"fromSymbolId"`
	ToSymbolID   string `json:"toSymbolId"`
	FromSymbol   string `json:"fromSymbol"`
	ToSymbol     string `json:"toSymbol"`
	FromFileID   string `json:"fromFileId,omitempty"`
	ToFileID     string `json:"toFileId,omitempty"`
}

// EntryPoint is a candidate starting file for a narrative walk.
type EntryPoint struct {
	FileID   string `json:"fileId"`
	Name     string `json:"name"`
	Incoming int    `json:"incoming"`
	Reason   string `json:"reason"` // no_incoming | conventional_name | fewest_incoming
}

// entryPointNames are conventional entry-point file basenames.
var entryPointNames = map[string]bool{
	"index": true,
	"main":  true,
	"app":   true,
}

// fallbackEntryPoints caps the fewest-incoming fallback list.
const fallbackEntryPoints = 3

// Build produces the digest for g, optionally restricted to one depth-1
// module and its descendants. A scopeID that is empty, the root, or not a
// depth-1 node means the whole graph.
func Build(g graph.CodeGraph, scopeID string) Summary {
	s := Summary{GraphID: g.ID}

	var moduleNodes []graph.GraphNode
	if scope, ok := g.Nodes[scopeID]; ok && scope.Depth == graph.DepthPackage {
		s.ScopeID = scopeID
		moduleNodes = []graph.GraphNode{scope}
	} else {
		moduleNodes = nodesAtDepth(g, graph.DepthPackage)
	}

	inScopeFiles := map[string]bool{}
	symbolToFile := map[string]string{}

	for _, mod := range moduleNodes {
		ms := ModuleSummary{ID: mod.ID, Name: mod.Name}
		for _, file := range graph.Children(g, mod.ID) {
			if file.Depth != graph.DepthFile {
				continue
			}
			fs := FileSummary{ID: file.ID, Name: file.Name}
			if file.SourceRef != nil {
				fs.Path = file.SourceRef.FilePath
			}
			for _, sym := range graph.Descendants(g, file.ID) {
				fs.Symbols = append(fs.Symbols, SymbolSummary{ID: sym.ID, Name: sym.Name, Kind: sym.Kind})
				symbolToFile[sym.ID] = file.ID
			}
			inScopeFiles[file.ID] = true
			ms.Files = append(ms.Files, fs)
		}
		s.Modules = append(s.Modules, ms)
	}

	incoming := map[string]int{}
	for _, relID := range sortedRelationIDs(g) {
		rel := g.Relations[relID]
		switch rel.Type {
		case graph.RelationDependsOn:
			if !inScopeFiles[rel.SourceID] || !inScopeFiles[rel.TargetID] {
				continue
			}
			edge := ImportEdge{
				FromFileID: rel.SourceID,
				ToFileID:   rel.TargetID,
				FromFile:   g.Nodes[rel.SourceID].Name,
				ToFile:     g.Nodes[rel.TargetID].Name,
				Symbol:     rel.Label,
			}
			if m, ok := graph.AncestorAt(g, rel.SourceID, graph.DepthPackage); ok {
				edge.FromModule = m.Name
			}
			if m, ok := graph.AncestorAt(g, rel.TargetID, graph.DepthPackage); ok {
				edge.ToModule = m.Name
			}
			s.Imports = append(s.Imports, edge)
			incoming[rel.TargetID]++

		case graph.RelationCalls:
			fromFile, fromOK := symbolToFile[rel.SourceID]
			toFile, toOK := symbolToFile[rel.TargetID]
			if !fromOK || !toOK {
				continue
			}
			s.Calls = append(s.Calls, CallEdge{
				FromSymbolID: rel.SourceID,
				ToSymbolID:   rel.TargetID,
				FromSymbol:   g.Nodes[rel.SourceID].Name,
				ToSymbol:     g.Nodes[rel.TargetID].Name,
				FromFileID:   fromFile,
				ToFileID:     toFile,
			})
		}
	}

	s.EntryPoints = rankEntryPoints(g, inScopeFiles, incoming)
	return s
}

// rankEntryPoints selects candidate entry files: zero incoming dependency
// edges or a conventional name. When nothing qualifies, the three files
// with the fewest incoming edges stand in.
func rankEntryPoints(g graph.CodeGraph, files map[string]bool, incoming map[string]int) []EntryPoint {
	ids := make([]string, 0, len(files))
	for id := range files {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		if incoming[ids[i]] != incoming[ids[j]] {
			return incoming[ids[i]] < incoming[ids[j]]
		}
		return g.Nodes[ids[i]].Name < g.Nodes[ids[j]].Name
	})

	var out []EntryPoint
	for _, id := range ids {
		node := g.Nodes[id]
		switch {
		case incoming[id] == 0:
			out = append(out, EntryPoint{FileID: id, Name: node.Name, Reason: "no_incoming"})
		case conventionalName(node.Name):
			out = append(out, EntryPoint{FileID: id, Name: node.Name, Incoming: incoming[id], Reason: "conventional_name"})
		}
	}
	if len(out) > 0 {
		return out
	}

	for _, id := range ids {
		if len(out) == fallbackEntryPoints {
			break
		}
		out = append(out, EntryPoint{FileID: id, Name: g.Nodes[id].Name, Incoming: incoming[id], Reason: "fewest_incoming"})
	}
	return out
}

// conventionalName reports whether a file basename (extension stripped)
// matches an entry-point convention.
func conventionalName(name string) bool {
	base := strings.ToLower(strings.TrimSuffix(name, filepath.Ext(name)))
	return entryPointNames[base]
}

func nodesAtDepth(g graph.CodeGraph, depth int) []graph.GraphNode {
	var out []graph.GraphNode
	for _, n := range graph.PreOrder(g) {
		if n.Depth == depth {
			out = append(out, n)
		}
	}
	return out
}

func sortedRelationIDs(g graph.CodeGraph) []string {
	ids := make([]string, 0, len(g.Relations))
	for id := range g.Relations {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
