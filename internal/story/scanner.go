package story

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"kahani-ai/internal/contextutil"
)

// RootLocation is the id prefix of documents stored directly in the stories directory.
const RootLocation = "root"

// Scan walks root and loads every *.json story file.
// Files directly inside root get the id "root/<name>"; files inside a
// subdirectory get "<subdir>/<name>". Hidden directories are skipped.
// Malformed files are logged and skipped; only a failure to walk root is an error.
// The result is sorted by id so repeated scans of the same tree are identical.
func Scan(ctx context.Context, root string) ([]Document, error) {
	logger := contextutil.LoggerFromContext(ctx)

	var docs []Document
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("failed to access path %s: %w", p, err)
		}

		// Check for context cancellation
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if d.IsDir() {
			if p != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}

		if filepath.Ext(p) != ".json" {
			return nil
		}

		relPath, err := filepath.Rel(root, p)
		if err != nil {
			return fmt.Errorf("failed to compute relative path for %s: %w", p, err)
		}

		doc, err := LoadFile(p)
		if err != nil {
			logger.WarnContext(ctx, "skipping unreadable story file", "path", p, "error", err)
			return nil
		}
		doc.ID = IDFromPath(relPath)
		docs = append(docs, doc)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan stories directory %s: %w", root, err)
	}

	sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })

	logger.InfoContext(ctx, "scanned stories directory", "root", root, "documents", len(docs))
	return docs, nil
}

// LoadFile reads and decodes a single story file. The returned document has no id.
func LoadFile(p string) (Document, error) {
	content, err := os.ReadFile(p)
	if err != nil {
		return Document{}, fmt.Errorf("failed to read file %s: %w", p, err)
	}

	var doc Document
	if err := json.Unmarshal(content, &doc); err != nil {
		return Document{}, fmt.Errorf("failed to decode story %s: %w", p, err)
	}
	doc.ID = ""
	return doc, nil
}

// IDFromPath derives a document id from a path relative to the stories directory.
func IDFromPath(relPath string) string {
	relPath = filepath.ToSlash(relPath)
	name := strings.TrimSuffix(path.Base(relPath), path.Ext(relPath))

	dir := path.Dir(relPath)
	if dir == "." || dir == "" {
		dir = RootLocation
	}
	return dir + "/" + name
}

// CandidateIDs returns the ids to try, in order, when looking up a
// user-supplied story id:
//  1. the id as given
//  2. "root/<id>" when the id has no location
//  3. the name with underscores replaced by hyphens
//  4. the name with hyphens replaced by underscores
//
// Duplicates are removed while preserving order.
func CandidateIDs(id string) []string {
	id = strings.Trim(strings.TrimSpace(id), "/")
	if id == "" {
		return nil
	}

	location, name := RootLocation, id
	if i := strings.LastIndex(id, "/"); i >= 0 {
		location, name = id[:i], id[i+1:]
	}

	candidates := []string{
		id,
		location + "/" + name,
		location + "/" + strings.ReplaceAll(name, "_", "-"),
		location + "/" + strings.ReplaceAll(name, "-", "_"),
	}

	seen := make(map[string]bool, len(candidates))
	result := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if !seen[c] {
			seen[c] = true
			result = append(result, c)
		}
	}
	return result
}
