// notebook/domain/icon.go
package domain

// Icon is a named bitmap supplied by the user.
type Icon struct {
	Name string
	Data []byte
}

// Built-in icon names. The order of StableIcons is part of the file format:
// the icon index table lists these first, in this order.
const (
	IconFolder     = "folder"
	IconFolderOpen = "folder-open"
	IconNote       = "note"
	IconNoteText   = "note-text"
	IconNoteLocked = "note-locked"
	IconRoot       = "root"
	IconTemporary  = "temporary"
	IconTrash      = "trash"
	IconTag        = "tag"
	IconStar       = "star"
	IconFlag       = "flag"
	IconBookmark   = "bookmark"
)

var StableIcons = []string{
	IconFolder,
	IconFolderOpen,
	IconNote,
	IconNoteText,
	IconNoteLocked,
	IconRoot,
	IconTemporary,
	IconTrash,
	IconTag,
	IconStar,
	IconFlag,
	IconBookmark,
}

func IsStableIcon(name string) bool {
	for _, s := range StableIcons {
		if s == name {
			return true
		}
	}
	return false
}
