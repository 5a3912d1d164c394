// notebook/domain/errors.go
package domain

import "errors"

var (
	// ErrSystemFolder is returned when a system folder would be moved, removed or nested.
	ErrSystemFolder = errors.New("system folder cannot be changed")

	// ErrCycle is returned when a folder would become its own descendant.
	ErrCycle = errors.New("folder cannot contain itself")

	// ErrAttached is returned when an item already has a parent folder.
	ErrAttached = errors.New("item already belongs to a folder")

	// ErrNotAttached is returned when an item or folder is not part of the document.
	ErrNotAttached = errors.New("item does not belong to this document")

	// ErrDuplicateIcon is returned when a custom icon name is already taken.
	ErrDuplicateIcon = errors.New("icon name already in use")

	// ErrEmptyName is returned for tags and icons without a name.
	ErrEmptyName = errors.New("name cannot be empty")

	// ErrInconsistent is returned by Validate when the graph breaks an invariant.
	ErrInconsistent = errors.New("document graph is inconsistent")
)
