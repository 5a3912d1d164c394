// notebook/domain/folder.go
package domain

import "time"

// SystemKind identifies the three folders every document carries.
type SystemKind uint8

const (
	NotSystem SystemKind = iota
	SystemRoot
	SystemTemp
	SystemTrash
)

type Folder struct {
	Name       string
	IconName   string
	CreatedAt  time.Time
	ModifiedAt time.Time
	Expanded   bool

	system SystemKind
	parent *Folder
	items  []Item
}

// NewFolder returns a detached user folder. It becomes part of a document
// once passed to Document.Attach or created through Document.AddFolder.
func NewFolder(name string) *Folder {
	now := time.Now().UTC()
	return &Folder{
		Name:       name,
		CreatedAt:  now,
		ModifiedAt: now,
	}
}

func newSystemFolder(kind SystemKind, name, icon string, now time.Time) *Folder {
	return &Folder{
		Name:       name,
		IconName:   icon,
		CreatedAt:  now,
		ModifiedAt: now,
		Expanded:   true,
		system:     kind,
	}
}

func (f *Folder) Kind() ItemKind { return KindFolder }
func (f *Folder) DisplayName() string { return f.Name }
func (f *Folder) Icon() string { return f.IconName }
func (f *Folder) Parent() *Folder { return f.parent }
func (f *Folder) setParent(p *Folder) { f.parent = p }
func (f *Folder) System() SystemKind { return f.system }
func (f *Folder) IsSystem() bool { return f.system != NotSystem }
func (f *Folder) Len() int { return len(f.items) }
func (f *Folder) ItemAt(i int) Item { return f.items[i] }

// Items returns a copy of the child sequence in order.
func (f *Folder) Items() []Item {
	out := make([]Item, len(f.items))
	copy(out, f.items)
	return out
}

// Contains reports whether item is a direct child of f.
func (f *Folder) Contains(item Item) bool {
	return f.indexOf(item) >= 0
}

// IsAncestorOf reports whether f appears on the parent chain of item.
func (f *Folder) IsAncestorOf(item Item) bool {
	for p := item.Parent(); p != nil; p = p.parent {
		if p == f {
			return true
		}
	}
	return false
}

func (f *Folder) indexOf(item Item) int {
	for i, it := range f.items {
		if it == item {
			return i
		}
	}
	return -1
}

func (f *Folder) append(item Item) {
	f.items = append(f.items, item)
	item.setParent(f)
}

func (f *Folder) remove(item Item) bool {
	i := f.indexOf(item)
	if i < 0 {
		return false
	}
	f.items = append(f.items[:i], f.items[i+1:]...)
	item.setParent(nil)
	return true
}
