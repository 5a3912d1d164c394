// notebook/domain/note.go
package domain

import "time"

type Note struct {
	Title      string
	IconName   string
	CreatedAt  time.Time
	ModifiedAt time.Time
	Text       string

	parent *Folder
	tags   []*Tag
}

// NewNote returns a detached note with no tags.
func NewNote(title string) *Note {
	now := time.Now().UTC()
	return &Note{
		Title:      title,
		CreatedAt:  now,
		ModifiedAt: now,
	}
}

func (n *Note) Kind() ItemKind { return KindNote }
func (n *Note) DisplayName() string { return n.Title }
func (n *Note) Icon() string { return n.IconName }
func (n *Note) Parent() *Folder { return n.parent }
func (n *Note) setParent(p *Folder) { n.parent = p }

// Tags returns a copy of the note's tag set in the order tags were added.
func (n *Note) Tags() []*Tag {
	out := make([]*Tag, len(n.tags))
	copy(out, n.tags)
	return out
}

func (n *Note) HasTag(t *Tag) bool {
	for _, x := range n.tags {
		if x == t {
			return true
		}
	}
	return false
}

// Tag is a unique label. Owners is the reverse side of Note.Tags and never
// keeps a note alive on its own.
type Tag struct {
	Name string

	owners []*Note
}

func (t *Tag) Owners() []*Note {
	out := make([]*Note, len(t.owners))
	copy(out, t.owners)
	return out
}

func (t *Tag) OwnerCount() int { return len(t.owners) }

func link(n *Note, t *Tag) {
	if n.HasTag(t) {
		return
	}
	n.tags = append(n.tags, t)
	t.owners = append(t.owners, n)
}

func unlink(n *Note, t *Tag) {
	for i, x := range n.tags {
		if x == t {
			n.tags = append(n.tags[:i], n.tags[i+1:]...)
			break
		}
	}
	for i, x := range t.owners {
		if x == n {
			t.owners = append(t.owners[:i], t.owners[i+1:]...)
			break
		}
	}
}
