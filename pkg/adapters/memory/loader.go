// Package memory provides in-memory implementations of the tree loader
// and session store ports, used by tests and embedded callers.
package memory

import (
	"fmt"
	"sort"

	"github.com/mojomast/arbor/pkg/domain"
	"github.com/mojomast/arbor/pkg/ports"
)

// Loader implements ports.TreeLoader over a map of parsed trees.
type Loader struct {
	trees map[string]*domain.DialogTree
}

// NewLoader creates a loader from already-parsed trees.
func NewLoader(trees ...*domain.DialogTree) (*Loader, error) {
	m := make(map[string]*domain.DialogTree, len(trees))
	for _, t := range trees {
		if t.ID == "" {
			return nil, fmt.Errorf("tree missing ID")
		}
		if _, dup := m[t.ID]; dup {
			return nil, fmt.Errorf("duplicate tree ID %q", t.ID)
		}
		// Struct-built trees may not carry node ids; restore them from
		// the map keys like the document parsers do.
		for id, n := range t.Nodes {
			if n != nil && n.ID == "" {
				n.ID = id
			}
		}
		m[t.ID] = t
	}
	return &Loader{trees: m}, nil
}

// NewLoaderFromJSON parses raw tree documents and builds a loader.
func NewLoaderFromJSON(docs ...[]byte) (*Loader, error) {
	trees := make([]*domain.DialogTree, 0, len(docs))
	for _, doc := range docs {
		t, err := domain.TreeFromJSON(doc)
		if err != nil {
			return nil, err
		}
		trees = append(trees, t)
	}
	return NewLoader(trees...)
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
