// notebook/domain/document.go

// Package domain holds the in-memory notebook graph: folders, notes, tags,
// custom icons and the saved UI state. A Document owns its folder tree; tags
// only point back at the notes that carry them.
package domain

import (
	"fmt"
	"time"
)

// Version is a two-level file format version.
type Version struct {
	Major uint8
	Minor uint8
}

func (v Version) String() string { return fmt.Sprintf("%d.%d", v.Major, v.Minor) }

// Uint16 packs the version with the major number in the high byte.
func (v Version) Uint16() uint16 { return uint16(v.Major)<<8 | uint16(v.Minor) }

func VersionFromUint16(u uint16) Version {
	return Version{Major: uint8(u >> 8), Minor: uint8(u)}
}

// OpenNote is an editor tab restored on load.
type OpenNote struct {
	Note     *Note
	Position int
}

type VisualState struct {
	ActiveTab  int
	ActiveNote *Note
	Open       []OpenNote
}

type Document struct {
	CreatedAt         time.Time
	ModifiedAt        time.Time
	DefaultFolderIcon string
	DefaultNoteIcon   string

	// Persistence settings, filled in by the codec on open and consulted on save.
	Version          Version
	CompressionLevel int
	CipherID         uint8
	HashID           uint8
	SecureHashID     uint8
	Password         []byte

	Visual VisualState

	root    *Folder
	temp    *Folder
	trash   *Folder
	folders []*Folder
	notes   []*Note
	tags    []*Tag
	icons   []*Icon
}

// NewDocument returns an empty document holding only the system folders.
func NewDocument() *Document {
	now := time.Now().UTC()
	return &Document{
		CreatedAt:         now,
		ModifiedAt:        now,
		DefaultFolderIcon: IconFolder,
		DefaultNoteIcon:   IconNote,
		root:              newSystemFolder(SystemRoot, "Notes", IconRoot, now),
		temp:              newSystemFolder(SystemTemp, "Temporary", IconTemporary, now),
		trash:             newSystemFolder(SystemTrash, "Trash", IconTrash, now),
	}
}

func (d *Document) Root() *Folder  { return d.root }
func (d *Document) Temp() *Folder  { return d.temp }
func (d *Document) Trash() *Folder { return d.trash }

// SystemFolders returns root, temporary and trash, in that order.
func (d *Document) SystemFolders() [3]*Folder {
	return [3]*Folder{d.root, d.temp, d.trash}
}

// Folders returns the user folders in registration order.
func (d *Document) Folders() []*Folder {
	out := make([]*Folder, len(d.folders))
	copy(out, d.folders)
	return out
}

func (d *Document) Notes() []*Note {
	out := make([]*Note, len(d.notes))
	copy(out, d.notes)
	return out
}

func (d *Document) Tags() []*Tag {
	out := make([]*Tag, len(d.tags))
	copy(out, d.tags)
	return out
}

func (d *Document) Icons() []*Icon {
	out := make([]*Icon, len(d.icons))
	copy(out, d.icons)
	return out
}

// Touch sets the modification time to now.
func (d *Document) Touch() {
	d.ModifiedAt = time.Now().UTC()
}

// AddFolder creates a folder named name at the end of parent.
func (d *Document) AddFolder(parent *Folder, name string) (*Folder, error) {
	f := NewFolder(name)
	f.IconName = d.DefaultFolderIcon
	if err := d.Attach(parent, f); err != nil {
		return nil, err
	}
	return f, nil
}

// AddNote creates a note titled title at the end of parent.
func (d *Document) AddNote(parent *Folder, title string) (*Note, error) {
	n := NewNote(title)
	n.IconName = d.DefaultNoteIcon
	if err := d.Attach(parent, n); err != nil {
		return nil, err
	}
	return n, nil
}

// Register adds a detached item to the document's note or folder list
// without placing it in the tree. Registering twice is a no-op.
func (d *Document) Register(item Item) error {
	switch it := item.(type) {
	case *Folder:
		if it.IsSystem() {
			return ErrSystemFolder
		}
		if !d.hasFolder(it) {
			d.folders = append(d.folders, it)
		}
	case *Note:
		if !d.hasNote(it) {
			d.notes = append(d.notes, it)
		}
	default:
		return fmt.Errorf("register %T: %w", item, ErrNotAttached)
	}
	return nil
}

// Attach appends a parentless item to parent's children, registering it
// first if needed.
func (d *Document) Attach(parent *Folder, item Item) error {
	if !d.owns(parent) {
		return fmt.Errorf("attach to %q: %w", parent.Name, ErrNotAttached)
	}
	if item.Parent() != nil {
		return ErrAttached
	}
	if f, ok := item.(*Folder); ok {
		if f.IsSystem() {
			return ErrSystemFolder
		}
		if f == parent || f.IsAncestorOf(parent) {
			return ErrCycle
		}
	}
	if err := d.Register(item); err != nil {
		return err
	}
	parent.append(item)
	return nil
}

// Move re-parents item to the end of dest.
func (d *Document) Move(item Item, dest *Folder) error {
	if !d.owns(dest) {
		return fmt.Errorf("move to %q: %w", dest.Name, ErrNotAttached)
	}
	if f, ok := item.(*Folder); ok {
		if f.IsSystem() {
			return ErrSystemFolder
		}
		if f == dest || f.IsAncestorOf(dest) {
			return ErrCycle
		}
	}
	parent := item.Parent()
	if parent == nil {
		return ErrNotAttached
	}
	parent.remove(item)
	dest.append(item)
	return nil
}

// MoveToTrash moves item into the trash folder.
func (d *Document) MoveToTrash(item Item) error {
	return d.Move(item, d.trash)
}

// RemoveNote deletes a note: it leaves its folder, every tag it carries and
// the saved editor state. Tags left without owners are dropped.
func (d *Document) RemoveNote(n *Note) error {
	if !d.hasNote(n) {
		return ErrNotAttached
	}
	for _, t := range n.Tags() {
		d.UntagNote(n, t)
	}
	if p := n.parent; p != nil {
		p.remove(n)
	}
	for i, x := range d.notes {
		if x == n {
			d.notes = append(d.notes[:i], d.notes[i+1:]...)
			break
		}
	}
	d.forgetVisual(n)
	return nil
}

// RemoveFolder deletes a user folder together with everything below it.
func (d *Document) RemoveFolder(f *Folder) error {
	if f.IsSystem() {
		return ErrSystemFolder
	}
	if !d.hasFolder(f) {
		return ErrNotAttached
	}
	for _, child := range f.Items() {
		var err error
		switch c := child.(type) {
		case *Folder:
			err = d.RemoveFolder(c)
		case *Note:
			err = d.RemoveNote(c)
		}
		if err != nil {
			return err
		}
	}
	if p := f.parent; p != nil {
		p.remove(f)
	}
	for i, x := range d.folders {
		if x == f {
			d.folders = append(d.folders[:i], d.folders[i+1:]...)
			break
		}
	}
	return nil
}

// EmptyTrash removes everything in the trash folder.
func (d *Document) EmptyTrash() error {
	for _, item := range d.trash.Items() {
		var err error
		switch it := item.(type) {
		case *Folder:
			err = d.RemoveFolder(it)
		case *Note:
			err = d.RemoveNote(it)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// FindTag returns the tag named name, or nil.
func (d *Document) FindTag(name string) *Tag {
	for _, t := range d.tags {
		if t.Name == name {
			return t
		}
	}
	return nil
}

// TagNote gives n the tag named name, creating the tag if the document has
// none by that name.
func (d *Document) TagNote(n *Note, name string) (*Tag, error) {
	if name == "" {
		return nil, ErrEmptyName
	}
	if !d.hasNote(n) {
		return nil, ErrNotAttached
	}
	t := d.FindTag(name)
	if t == nil {
		t = &Tag{Name: name}
		d.tags = append(d.tags, t)
	}
	link(n, t)
	return t, nil
}

// UntagNote removes t from n. A tag that loses its last owner leaves the
// document.
func (d *Document) UntagNote(n *Note, t *Tag) {
	unlink(n, t)
	if len(t.owners) > 0 {
		return
	}
	for i, x := range d.tags {
		if x == t {
			d.tags = append(d.tags[:i], d.tags[i+1:]...)
			return
		}
	}
}

// Icon returns the custom icon named name, or nil.
func (d *Document) Icon(name string) *Icon {
	for _, ic := range d.icons {
		if ic.Name == name {
			return ic
		}
	}
	return nil
}

// AddIcon registers a custom icon. Names must not collide with built-in
// icons or other custom icons.
func (d *Document) AddIcon(name string, data []byte) (*Icon, error) {
	if name == "" {
		return nil, ErrEmptyName
	}
	if IsStableIcon(name) || d.Icon(name) != nil {
		return nil, fmt.Errorf("add icon %q: %w", name, ErrDuplicateIcon)
	}
	ic := &Icon{Name: name, Data: append([]byte(nil), data...)}
	d.icons = append(d.icons, ic)
	return ic, nil
}

// RemoveIcon drops a custom icon. Items still using it fall back to the
// document defaults.
func (d *Document) RemoveIcon(name string) bool {
	for i, ic := range d.icons {
		if ic.Name != name {
			continue
		}
		d.icons = append(d.icons[:i], d.icons[i+1:]...)
		for _, f := range d.folders {
			if f.IconName == name {
				f.IconName = d.DefaultFolderIcon
			}
		}
		for _, n := range d.notes {
			if n.IconName == name {
				n.IconName = d.DefaultNoteIcon
			}
		}
		return true
	}
	return false
}

// Path returns the slash-separated names from the item's system folder down
// to the item.
func (d *Document) Path(item Item) string {
	path := item.DisplayName()
	for p := item.Parent(); p != nil; p = p.parent {
		path = p.Name + "/" + path
	}
	return path
}

// Walk visits every item below f depth-first, in child order. Returning
// false from fn skips the children of a folder.
func Walk(f *Folder, fn func(item Item, depth int) bool) {
	walk(f, 0, fn)
}

func walk(f *Folder, depth int, fn func(Item, int) bool) {
	for _, item := range f.items {
		descend := fn(item, depth)
		if sub, ok := item.(*Folder); ok && descend {
			walk(sub, depth+1, fn)
		}
	}
}

// Validate checks the graph invariants: every registered item is reachable
// from exactly one system folder, nothing unregistered hangs in the tree, and
// note tags and tag owners mirror each other.
func (d *Document) Validate() error {
	seen := make(map[Item]bool, len(d.notes)+len(d.folders))
	for _, sys := range d.SystemFolders() {
		if sys.parent != nil {
			return fmt.Errorf("%w: system folder %q has a parent", ErrInconsistent, sys.Name)
		}
		var err error
		Walk(sys, func(item Item, _ int) bool {
			if seen[item] {
				err = fmt.Errorf("%w: %s %q listed twice", ErrInconsistent, item.Kind(), item.DisplayName())
				return false
			}
			seen[item] = true
			return true
		})
		if err != nil {
			return err
		}
	}
	for _, f := range d.folders {
		if !seen[f] {
			return fmt.Errorf("%w: folder %q is orphaned", ErrInconsistent, f.Name)
		}
	}
	for _, n := range d.notes {
		if !seen[n] {
			return fmt.Errorf("%w: note %q is orphaned", ErrInconsistent, n.Title)
		}
		for _, t := range n.tags {
			if !containsNote(t.owners, n) {
				return fmt.Errorf("%w: tag %q misses owner %q", ErrInconsistent, t.Name, n.Title)
			}
		}
	}
	if len(seen) != len(d.notes)+len(d.folders) {
		return fmt.Errorf("%w: tree holds unregistered items", ErrInconsistent)
	}
	for _, t := range d.tags {
		if len(t.owners) == 0 {
			return fmt.Errorf("%w: tag %q has no owners", ErrInconsistent, t.Name)
		}
		for _, n := range t.owners {
			if !n.HasTag(t) {
				return fmt.Errorf("%w: note %q misses tag %q", ErrInconsistent, n.Title, t.Name)
			}
		}
	}
	return nil
}

func (d *Document) owns(f *Folder) bool {
	if f == nil {
		return false
	}
	return f == d.root || f == d.temp || f == d.trash || d.hasFolder(f)
}

func (d *Document) hasFolder(f *Folder) bool {
	for _, x := range d.folders {
		if x == f {
			return true
		}
	}
	return false
}

func (d *Document) hasNote(n *Note) bool {
	return containsNote(d.notes, n)
}

func (d *Document) forgetVisual(n *Note) {
	if d.Visual.ActiveNote == n {
		d.Visual.ActiveNote = nil
	}
	open := d.Visual.Open[:0]
	for _, o := range d.Visual.Open {
		if o.Note != n {
			open = append(open, o)
		}
	}
	d.Visual.Open = open
}

func containsNote(list []*Note, n *Note) bool {
	for _, x := range list {
		if x == n {
			return true
		}
	}
	return false
}
