// Package file loads dialogue trees from plain JSON or YAML documents
// on disk, one tree per file.
package file

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mojomast/arbor/pkg/domain"
	"github.com/mojomast/arbor/pkg/ports"
)

// Loader implements ports.TreeLoader over a directory (or a single
// file) of tree documents. Trees are parsed eagerly at construction so
// authoring errors surface at content-load time, not mid-conversation.
type Loader struct {
	trees map[string]*domain.DialogTree
}

// NewLoader scans the given path. A directory loads every *.json,
// *.yaml and *.yml file in it (non-recursive); a file loads just that
// tree. Tree ids default to the file name stem when the document does
// not carry one.
func NewLoader(path string) (*Loader, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("invalid tree path: %w", err)
	}

	var files []string
	if info.IsDir() {
		entries, err := os.ReadDir(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read tree directory: %w", err)
		}
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			switch strings.ToLower(filepath.Ext(e.Name())) {
			case ".json", ".yaml", ".yml":
				files = append(files, filepath.Join(path, e.Name()))
			}
		}
		if len(files) == 0 {
			return nil, fmt.Errorf("no tree documents found in %s", path)
		}
	} else {
		files = []string{path}
	}

	l := &Loader{trees: make(map[string]*domain.DialogTree, len(files))}
	for _, f := range files {
		tree, err := loadTree(f)
		if err != nil {
			return nil, err
		}
		if _, dup := l.trees[tree.ID]; dup {
			return nil, fmt.Errorf("duplicate tree ID %q (from %s)", tree.ID, f)
		}
		l.trees[tree.ID] = tree
	}
	return l, nil
}

func loadTree(path string) (*domain.DialogTree, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var tree *domain.DialogTree
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		tree, err = domain.TreeFromYAML(raw)
	default:
		tree, err = domain.TreeFromJSON(raw)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	if tree.ID == "" {
		tree.ID = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return tree, nil
}

// GetTree returns the tree with the given id.
func (l *Loader) GetTree(id string) (*domain.DialogTree, error) {
	t, ok := l.trees[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrTreeNotFound, id)
	}
	return t, nil
}

// ListTrees returns all tree ids in deterministic order.
func (l *Loader) ListTrees() ([]string, error) {
	ids := make([]string, 0, len(l.trees))
	for id := range l.trees {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

var _ ports.TreeLoader = (*Loader)(nil)
