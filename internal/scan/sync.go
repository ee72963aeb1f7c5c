package scan

import (
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/lenshq/codelens/internal/graph"
)

// RefreshSyncLocks rechecks every node carrying a source reference
// against the files under rootDir. A node whose file is gone is missing;
// one whose content hash changed is modified; otherwise it is locked.
// Nodes without a content hash are considered locked as long as the file
// exists. The graph itself is not modified.
func RefreshSyncLocks(g graph.CodeGraph, rootDir string) []graph.SyncLockEntry {
	now := time.Now().UTC()

	var entries []graph.SyncLockEntry
	for _, node := range graph.PreOrder(g) {
		if node.SourceRef == nil {
			continue
		}
		ref := *node.SourceRef

		status := graph.SyncLocked
		source, err := os.ReadFile(filepath.Join(rootDir, ref.FilePath))
		switch {
		case err != nil:
			status = graph.SyncMissing
		case ref.ContentHash != "" && hashBytes(source) != ref.ContentHash:
			status = graph.SyncModified
		}

		entries = append(entries, graph.SyncLockEntry{
			NodeID:      node.ID,
			SourceRef:   ref,
			Status:      status,
			LastChecked: now,
		})
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].NodeID < entries[j].NodeID })
	return entries
}
