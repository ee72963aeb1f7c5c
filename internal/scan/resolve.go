package scan

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// resolver rewrites raw import specifiers into repo-relative file paths
// matching scanned files. Specifiers that point outside the repository
// (stdlib, external packages) do not resolve and the import is dropped.
type resolver struct {
	rootDir    string
	fileSet    map[string]bool
	dirIndex   map[string][]string
	goModule   string
	tsPackages map[string]string // package.json name -> repo-relative dir
}

// newResolver indexes the known repo-relative file paths and reads any
// module metadata (go.mod, package.json) found next to them.
func newResolver(rootDir string, files []string) *resolver {
	r := &resolver{
		rootDir:    rootDir,
		fileSet:    make(map[string]bool, len(files)),
		dirIndex:   make(map[string][]string),
		tsPackages: make(map[string]string),
	}
	for _, f := range files {
		r.fileSet[f] = true
		dir := filepath.Dir(f)
		r.dirIndex[dir] = append(r.dirIndex[dir], f)
	}
	r.readGoModule()
	r.readTSPackages()
	return r
}

// resolve maps one import specifier to a repo-relative file path.
func (r *resolver) resolve(spec, sourceFile string, lang Language) (string, bool) {
	switch lang {
	case LangGo:
		return r.resolveGo(spec)
	case LangTypeScript:
		return r.resolveTS(spec, sourceFile)
	case LangPython:
		return r.resolvePython(spec, sourceFile)
	case LangRust:
		return r.resolveRust(spec, sourceFile)
	default:
		return "", false
	}
}

func (r *resolver) resolveGo(spec string) (string, bool) {
	if r.goModule == "" || !strings.HasPrefix(spec, r.goModule) {
		return "", false
	}
	relDir := strings.TrimPrefix(strings.TrimPrefix(spec, r.goModule), "/")
	if relDir == "" {
		relDir = "."
	}

	files := append([]string(nil), r.dirIndex[relDir]...)
	sort.Strings(files)
	for _, f := range files {
		if strings.HasSuffix(f, ".go") && !strings.HasSuffix(f, "_test.go") {
			return f, true
		}
	}
	return "", false
}

var tsExtensions = []string{".ts", ".tsx", "/index.ts", "/index.tsx"}

func (r *resolver) resolveTS(spec, sourceFile string) (string, bool) {
	if strings.HasPrefix(spec, "./") || strings.HasPrefix(spec, "../") {
		base := filepath.Clean(filepath.Join(filepath.Dir(sourceFile), spec))
		return r.probe(base, tsExtensions)
	}

	// Workspace package: exact name match, then name/subpath.
	if dir, ok := r.tsPackages[spec]; ok {
		if resolved, ok := r.probe(filepath.Join(dir, "src", "index"), tsExtensions); ok {
			return resolved, true
		}
		return r.probe(filepath.Join(dir, "index"), tsExtensions)
	}
	for name, dir := range r.tsPackages {
		if strings.HasPrefix(spec, name+"/") {
			sub := strings.TrimPrefix(spec, name+"/")
			if resolved, ok := r.probe(filepath.Join(dir, "src", sub), tsExtensions); ok {
				return resolved, true
			}
			return r.probe(filepath.Join(dir, sub), tsExtensions)
		}
	}
	return "", false
}

func (r *resolver) resolvePython(spec, sourceFile string) (string, bool) {
	if !strings.HasPrefix(spec, ".") {
		// Absolute import: try it as a repo-relative module path.
		return r.probe(strings.ReplaceAll(spec, ".", "/"), []string{".py", "/__init__.py"})
	}

	dots := 0
	for _, c := range spec {
		if c != '.' {
			break
		}
		dots++
	}

	baseDir := filepath.Dir(sourceFile)
	for i := 1; i < dots; i++ {
		baseDir = filepath.Dir(baseDir)
	}

	modulePart := spec[dots:]
	if modulePart == "" {
		return r.probe(filepath.Join(baseDir, "__init__"), []string{".py"})
	}
	rel := strings.ReplaceAll(modulePart, ".", "/")
	return r.probe(filepath.Join(baseDir, rel), []string{".py", "/__init__.py"})
}

func (r *resolver) resolveRust(spec, sourceFile string) (string, bool) {
	// Strip use-list braces: "crate::model::{A, B}" -> "crate::model".
	if idx := strings.Index(spec, "::{"); idx != -1 {
		spec = spec[:idx]
	}

	switch {
	case strings.HasPrefix(spec, "crate::"):
		return r.probeRustModule("", sourceFile, strings.TrimPrefix(spec, "crate::"))
	case strings.HasPrefix(spec, "self::"):
		return r.probeRustModule(filepath.Dir(sourceFile), sourceFile, strings.TrimPrefix(spec, "self::"))
	case strings.HasPrefix(spec, "super::"):
		return r.probeRustModule(filepath.Dir(filepath.Dir(sourceFile)), sourceFile, strings.TrimPrefix(spec, "super::"))
	default:
		return "", false
	}
}

// probeRustModule resolves a :: module path relative to baseDir, or for
// crate paths (empty baseDir) relative to src/, the repo root, and the
// source file's crate root. A trailing segment that is an imported symbol
// rather than a module is dropped and the parent retried.
func (r *resolver) probeRustModule(baseDir, sourceFile, modulePath string) (string, bool) {
	rustExts := []string{".rs", "/mod.rs"}

	for _, rel := range []string{
		strings.ReplaceAll(modulePath, "::", "/"),
		strings.ReplaceAll(parentModule(modulePath), "::", "/"),
	} {
		if rel == "" {
			continue
		}
		if baseDir != "" {
			if resolved, ok := r.probe(filepath.Join(baseDir, rel), rustExts); ok {
				return resolved, true
			}
			continue
		}
		for _, base := range []string{filepath.Join("src", rel), rel} {
			if resolved, ok := r.probe(base, rustExts); ok {
				return resolved, true
			}
		}
		if srcDir := rustCrateRoot(sourceFile); srcDir != "" {
			if resolved, ok := r.probe(filepath.Join(srcDir, rel), rustExts); ok {
				return resolved, true
			}
		}
	}
	return "", false
}

// parentModule drops the last :: segment: "model::User" -> "model".
func parentModule(modulePath string) string {
	if idx := strings.LastIndex(modulePath, "::"); idx != -1 {
		return modulePath[:idx]
	}
	return ""
}

// rustCrateRoot walks up to the nearest "src" directory.
func rustCrateRoot(filePath string) string {
	dir := filepath.Dir(filePath)
	for dir != "." && dir != "/" && dir != "" {
		if filepath.Base(dir) == "src" {
			return dir
		}
		dir = filepath.Dir(dir)
	}
	return ""
}

// probe checks basePath, then basePath with each extension appended,
// against the known file set. No filesystem access.
func (r *resolver) probe(basePath string, extensions []string) (string, bool) {
	if r.fileSet[basePath] {
		return basePath, true
	}
	for _, ext := range extensions {
		if candidate := basePath + ext; r.fileSet[candidate] {
			return candidate, true
		}
	}
	return "", false
}

func (r *resolver) readGoModule() {
	f, err := os.Open(filepath.Join(r.rootDir, "go.mod"))
	if err != nil {
		return
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if strings.HasPrefix(line, "module ") {
			r.goModule = strings.TrimSpace(strings.TrimPrefix(line, "module"))
			return
		}
	}
}

// readTSPackages reads a package.json from every directory holding
// scanned files and their ancestors, mapping package names to their
// directories for workspace-style imports.
func (r *resolver) readTSPackages() {
	dirs := map[string]bool{}
	for dir := range r.dirIndex {
		for dir != "." && dir != "/" && dir != "" {
			dirs[dir] = true
			dir = filepath.Dir(dir)
		}
	}

	for dir := range dirs {
		data, err := os.ReadFile(filepath.Join(r.rootDir, dir, "package.json"))
		if err != nil {
			continue
		}
		var pkg struct {
			Name string `json:"name"`
		}
		if err := json.Unmarshal(data, &pkg); err != nil || pkg.Name == "" {
			continue
		}
		r.tsPackages[pkg.Name] = dir
	}
}

// labelTail derives the relation label from an import specifier: the last
// path element across "/", "::", and "." separators.
func labelTail(spec string) string {
	tail := spec
	for _, sep := range []string{"/", "::", "."} {
		if idx := strings.LastIndex(tail, sep); idx != -1 {
			tail = tail[idx+len(sep):]
		}
	}
	if tail == "" {
		return spec
	}
	return tail
}
