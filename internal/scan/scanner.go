package scan

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	gitignore "github.com/sabhiram/go-gitignore"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/lenshq/codelens/internal/graph"
)

// skipDirs are directory names never descended into, independent of
// .gitignore.
var skipDirs = map[string]bool{
	".git":         true,
	"node_modules": true,
	"vendor":       true,
	"__pycache__":  true,
	".venv":        true,
	"dist":         true,
	"build":        true,
	".next":        true,
	"target":       true,
}

// Options configures a scan.
type Options struct {
	// OwnerID is recorded on the produced graph. Empty means "scanner".
	OwnerID string

	// Name overrides the graph name. Empty means the root directory's
	// base name.
	Name string

	// Languages restricts parsing. Empty means all supported languages.
	Languages []string

	// ExcludeDirs are directory names skipped in addition to skipDirs.
	ExcludeDirs []string

	Log *logrus.Logger
}

// Scan walks rootDir, parses every supported source file, and assembles a
// CodeGraph: one package node per top-level directory, file nodes with
// hashed source references, symbol and member nodes, depends_on relations
// for imports that resolve inside the repository, and calls relations
// between symbols. The result is deterministic for a given tree.
func Scan(ctx context.Context, rootDir string, opts Options) (graph.CodeGraph, error) {
	log := opts.Log
	if log == nil {
		log = logrus.StandardLogger()
	}

	info, err := os.Stat(rootDir)
	if err != nil {
		return graph.CodeGraph{}, fmt.Errorf("stat root: %w", err)
	}
	if !info.IsDir() {
		return graph.CodeGraph{}, fmt.Errorf("not a directory: %s", rootDir)
	}

	paths, err := collectFiles(rootDir, opts)
	if err != nil {
		return graph.CodeGraph{}, fmt.Errorf("collect files: %w", err)
	}
	log.WithFields(logrus.Fields{"root": rootDir, "files": len(paths)}).Debug("scan: collected source files")

	results, err := parseAll(ctx, rootDir, paths, log)
	if err != nil {
		return graph.CodeGraph{}, err
	}

	return assemble(rootDir, results, opts), nil
}

// collectFiles walks the tree and returns repo-relative paths of parseable
// files, honoring .gitignore, skipDirs, and the configured excludes.
func collectFiles(rootDir string, opts Options) ([]string, error) {
	allowed := map[Language]bool{}
	if len(opts.Languages) == 0 {
		for _, l := range Tier1Languages {
			allowed[l] = true
		}
	} else {
		for _, l := range opts.Languages {
			allowed[Language(strings.ToLower(l))] = true
		}
	}

	exclude := map[string]bool{}
	for _, d := range opts.ExcludeDirs {
		exclude[d] = true
	}

	// A missing or unreadable .gitignore means nothing is ignored.
	ignore, _ := gitignore.CompileIgnoreFile(filepath.Join(rootDir, ".gitignore"))

	var paths []string
	err := filepath.WalkDir(rootDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // skip inaccessible paths
		}

		rel, relErr := filepath.Rel(rootDir, path)
		if relErr != nil || rel == "." {
			return nil
		}

		if d.IsDir() {
			name := d.Name()
			if skipDirs[name] || exclude[name] {
				return filepath.SkipDir
			}
			if ignore != nil && ignore.MatchesPath(rel+"/") {
				return filepath.SkipDir
			}
			return nil
		}

		if ignore != nil && ignore.MatchesPath(rel) {
			return nil
		}
		lang, ok := extToLanguage[filepath.Ext(path)]
		if !ok || !allowed[lang] {
			return nil
		}

		paths = append(paths, rel)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(paths)
	return paths, nil
}

// parseAll parses the collected files concurrently. Unreadable or
// unparseable files are skipped, not fatal.
func parseAll(ctx context.Context, rootDir string, paths []string, log *logrus.Logger) ([]*ParseResult, error) {
	parser := NewParser()
	results := make([]*ParseResult, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i, rel := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			source, err := os.ReadFile(filepath.Join(rootDir, rel))
			if err != nil {
				log.WithField("file", rel).WithError(err).Debug("scan: skipping unreadable file")
				return nil
			}

			result, err := parser.Parse(rel, source, extToLanguage[filepath.Ext(rel)])
			if err != nil {
				log.WithField("file", rel).WithError(err).Debug("scan: skipping unparseable file")
				return nil
			}
			results[i] = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}

	parsed := results[:0]
	for _, r := range results {
		if r != nil {
			parsed = append(parsed, r)
		}
	}
	return parsed, nil
}

// symbolSpan locates a symbol node within its file for call attribution.
type symbolSpan struct {
	nodeID    string
	startLine int
	endLine   int
}

// assemble builds the graph from parse results. Files arrive sorted by
// path and symbols in source order, so node ids and child orders are
// stable across runs of the same tree.
func assemble(rootDir string, results []*ParseResult, opts Options) graph.CodeGraph {
	ownerID := opts.OwnerID
	if ownerID == "" {
		ownerID = "scanner"
	}
	name := opts.Name
	if name == "" {
		name = filepath.Base(rootDir)
	}

	g := graph.NewGraph(ownerID, name)
	rootNode, _ := g.Root()

	packageIDs := map[string]string{} // top-level dir -> node id
	fileIDs := map[string]string{}    // repo-relative path -> node id
	spansByFile := map[string][]symbolSpan{}
	symbolsByName := map[string][]string{} // base name -> node ids

	for _, res := range results {
		pkgName := topLevelDir(res.Path)
		if pkgName == "." {
			pkgName = name
		}
		pkgID, ok := packageIDs[pkgName]
		if !ok {
			g, pkgID = graph.AddNode(g, graph.GraphNode{
				Name: pkgName,
				Kind: graph.NodeKindPackage,
			}, rootNode.ID)
			packageIDs[pkgName] = pkgID
		}

		var fileID string
		g, fileID = graph.AddNode(g, graph.GraphNode{
			Name: filepath.Base(res.Path),
			Kind: graph.NodeKindModule,
			Tags: []string{string(res.Language)},
			SourceRef: &graph.SourceRef{
				FilePath:    res.Path,
				LineStart:   1,
				LineEnd:     res.LOC,
				ContentHash: res.Hash,
			},
		}, pkgID)
		fileIDs[res.Path] = fileID

		// A symbol lexically inside an earlier symbol's span becomes a
		// member of it; one level only.
		type placed struct {
			id        string
			depth     int
			startLine int
			endLine   int
		}
		var placedSyms []placed

		for _, sym := range res.Symbols {
			parentID := fileID
			parentDepth := graph.DepthFile
			for i := len(placedSyms) - 1; i >= 0; i-- {
				p := placedSyms[i]
				if p.startLine <= sym.StartLine && p.endLine >= sym.EndLine && p.depth == graph.DepthSymbol {
					parentID = p.id
					parentDepth = p.depth
					break
				}
			}

			var tags []string
			if sym.Exported {
				tags = []string{"exported"}
			}

			var symID string
			g, symID = graph.AddNode(g, graph.GraphNode{
				Name: sym.Name,
				Kind: sym.Kind,
				Tags: tags,
				SourceRef: &graph.SourceRef{
					FilePath:  res.Path,
					LineStart: sym.StartLine,
					LineEnd:   sym.EndLine,
				},
			}, parentID)
			if symID == "" {
				continue
			}

			placedSyms = append(placedSyms, placed{
				id:        symID,
				depth:     parentDepth + 1,
				startLine: sym.StartLine,
				endLine:   sym.EndLine,
			})
			spansByFile[res.Path] = append(spansByFile[res.Path], symbolSpan{
				nodeID:    symID,
				startLine: sym.StartLine,
				endLine:   sym.EndLine,
			})
			symbolsByName[sym.Name] = append(symbolsByName[sym.Name], symID)
		}
	}

	g = addImportRelations(g, rootDir, results, fileIDs)
	g = addCallRelations(g, results, spansByFile, symbolsByName)
	g = lockScannedFiles(g, fileIDs)
	return g
}

// addImportRelations resolves import specifiers against the scanned file
// set and links the files that resolve. Unresolvable specifiers are
// dropped.
func addImportRelations(g graph.CodeGraph, rootDir string, results []*ParseResult, fileIDs map[string]string) graph.CodeGraph {
	paths := make([]string, 0, len(fileIDs))
	for p := range fileIDs {
		paths = append(paths, p)
	}
	r := newResolver(rootDir, paths)

	seen := map[string]bool{}
	for _, res := range results {
		for _, imp := range res.Imports {
			target, ok := r.resolve(imp.Spec, res.Path, res.Language)
			if !ok || target == res.Path {
				continue
			}

			label := labelTail(imp.Spec)
			key := res.Path + "\x00" + target + "\x00" + label
			if seen[key] {
				continue
			}
			seen[key] = true

			g, _ = graph.AddRelation(g, fileIDs[res.Path], fileIDs[target], graph.RelationDependsOn, label)
		}
	}
	return g
}

// addCallRelations links call sites to symbols. The caller is the symbol
// whose span covers the call line; the callee resolves by base name and
// only when that name is unambiguous across the graph.
func addCallRelations(
	g graph.CodeGraph,
	results []*ParseResult,
	spansByFile map[string][]symbolSpan,
	symbolsByName map[string][]string,
) graph.CodeGraph {
	seen := map[string]bool{}
	for _, res := range results {
		for _, call := range res.Calls {
			callerID := enclosingSymbol(spansByFile[res.Path], call.Line)
			if callerID == "" {
				continue
			}

			callee := calleeBase(call.Callee)
			targets := symbolsByName[callee]
			if len(targets) != 1 || targets[0] == callerID {
				continue
			}

			key := callerID + "\x00" + targets[0]
			if seen[key] {
				continue
			}
			seen[key] = true

			g, _ = graph.AddRelation(g, callerID, targets[0], graph.RelationCalls, callee)
		}
	}
	return g
}

// enclosingSymbol picks the narrowest span covering line.
func enclosingSymbol(spans []symbolSpan, line int) string {
	best := ""
	bestSize := int(^uint(0) >> 1)
	for _, s := range spans {
		if s.startLine <= line && line <= s.endLine {
			if size := s.endLine - s.startLine; size < bestSize {
				best = s.nodeID
				bestSize = size
			}
		}
	}
	return best
}

// calleeBase strips qualifiers from a callee expression: "pkg.Fn" -> "Fn",
// "mod::Fn" -> "Fn", "obj.method" -> "method".
func calleeBase(callee string) string {
	base := callee
	if idx := strings.LastIndex(base, "::"); idx != -1 {
		base = base[idx+2:]
	}
	if idx := strings.LastIndex(base, "."); idx != -1 {
		base = base[idx+1:]
	}
	return base
}

// lockScannedFiles attaches locked sync entries for every file node; a
// later RefreshSyncLocks detects drift against these hashes.
func lockScannedFiles(g graph.CodeGraph, fileIDs map[string]string) graph.CodeGraph {
	now := time.Now().UTC()
	entries := make([]graph.SyncLockEntry, 0, len(fileIDs))
	for _, id := range fileIDs {
		node := g.Nodes[id]
		if node.SourceRef == nil {
			continue
		}
		entries = append(entries, graph.SyncLockEntry{
			NodeID:      id,
			SourceRef:   *node.SourceRef,
			Status:      graph.SyncLocked,
			LastChecked: now,
		})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].NodeID < entries[j].NodeID })
	return graph.SetSyncLocks(g, entries)
}

// topLevelDir maps a repo-relative path to its package name: the first
// path element, or "." for files at the repository root.
func topLevelDir(rel string) string {
	rel = filepath.ToSlash(rel)
	if idx := strings.Index(rel, "/"); idx != -1 {
		return rel[:idx]
	}
	return "."
}
