package ports

import "github.com/mojomast/arbor/pkg/domain"

// TreeLoader defines how the engine retrieves dialogue trees. This
// decouples the content source (files, memory, a CMS) from traversal.
type TreeLoader interface {
	// GetTree returns the tree with the given id, or
	// domain.ErrTreeNotFound.
	GetTree(id string) (*domain.DialogTree, error)

	// ListTrees returns the ids of all available trees, for
	// introspection and tooling.
	ListTrees() ([]string, error)
}
