// notebook/domain/item.go
package domain

import "fmt"

// ItemKind is the discriminant of a folder child. The numeric values are
// part of the file format.
type ItemKind uint8

const (
	KindFolder ItemKind = 1
	KindNote   ItemKind = 2
)

func (k ItemKind) String() string {
	switch k {
	case KindFolder:
		return "folder"
	case KindNote:
		return "note"
	default:
		return fmt.Sprintf("ItemKind(%d)", uint8(k))
	}
}

// Valid reports whether k names one of the known item kinds.
func (k ItemKind) Valid() bool {
	return k == KindFolder || k == KindNote
}

// Item is a member of a folder's child sequence. It is implemented only by
// *Folder and *Note; switch on Kind (or a type switch) to tell them apart.
type Item interface {
	Kind() ItemKind
	DisplayName() string
	Icon() string
	Parent() *Folder

	setParent(*Folder)
}
