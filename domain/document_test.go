package domain

import (
	"errors"
	"testing"
)

func TestNewDocumentSystemFolders(t *testing.T) {
	d := NewDocument()

	sys := d.SystemFolders()
	want := []SystemKind{SystemRoot, SystemTemp, SystemTrash}
	for i, f := range sys {
		if f.System() != want[i] {
			t.Errorf("SystemFolders()[%d].System() = %d, want %d", i, f.System(), want[i])
		}
		if f.Parent() != nil {
			t.Errorf("system folder %q has a parent", f.Name)
		}
	}
	if len(d.Folders()) != 0 || len(d.Notes()) != 0 {
		t.Errorf("new document should have no user items")
	}
	if err := d.Validate(); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
}

func TestTagDualInvariant(t *testing.T) {
	d := NewDocument()
	a, _ := d.AddNote(d.Root(), "A")
	b, _ := d.AddNote(d.Root(), "B")

	x, err := d.TagNote(a, "x")
	if err != nil {
		t.Fatalf("TagNote failed: %v", err)
	}
	if again, _ := d.TagNote(b, "x"); again != x {
		t.Fatalf("TagNote created a second tag named x")
	}
	if x.OwnerCount() != 2 {
		t.Fatalf("OwnerCount = %d, want 2", x.OwnerCount())
	}

	d.UntagNote(a, x)
	if d.FindTag("x") != x {
		t.Fatalf("tag removed while it still has an owner")
	}
	if owners := x.Owners(); len(owners) != 1 || owners[0] != b {
		t.Fatalf("Owners = %v, want [B]", owners)
	}
	if a.HasTag(x) {
		t.Errorf("note A still carries tag x")
	}

	d.UntagNote(b, x)
	if d.FindTag("x") != nil {
		t.Errorf("tag without owners should leave the document")
	}
	if len(d.Tags()) != 0 {
		t.Errorf("Tags() = %d entries, want 0", len(d.Tags()))
	}
}

func TestTagNoteTwiceIsIdempotent(t *testing.T) {
	d := NewDocument()
	n, _ := d.AddNote(d.Root(), "A")
	d.TagNote(n, "x")
	x, _ := d.TagNote(n, "x")

	if len(n.Tags()) != 1 || x.OwnerCount() != 1 {
		t.Errorf("duplicate tagging: note tags %d, owners %d", len(n.Tags()), x.OwnerCount())
	}
}

func TestTagNoteRejectsEmptyName(t *testing.T) {
	d := NewDocument()
	n, _ := d.AddNote(d.Root(), "A")
	if _, err := d.TagNote(n, ""); !errors.Is(err, ErrEmptyName) {
		t.Errorf("TagNote(\"\") error = %v, want ErrEmptyName", err)
	}
}

func TestRemoveNoteDropsTagsAndVisualState(t *testing.T) {
	d := NewDocument()
	a, _ := d.AddNote(d.Root(), "A")
	b, _ := d.AddNote(d.Root(), "B")
	d.TagNote(a, "only-a")
	d.TagNote(a, "shared")
	d.TagNote(b, "shared")
	d.Visual.ActiveNote = a
	d.Visual.Open = []OpenNote{{Note: a, Position: 3}, {Note: b, Position: 7}}

	if err := d.RemoveNote(a); err != nil {
		t.Fatalf("RemoveNote failed: %v", err)
	}
	if d.FindTag("only-a") != nil {
		t.Errorf("tag only-a should be gone")
	}
	if shared := d.FindTag("shared"); shared == nil || shared.OwnerCount() != 1 {
		t.Errorf("tag shared should keep one owner")
	}
	if d.Visual.ActiveNote != nil {
		t.Errorf("active note still points at removed note")
	}
	if len(d.Visual.Open) != 1 || d.Visual.Open[0].Note != b {
		t.Errorf("open editors = %v, want only B", d.Visual.Open)
	}
	if d.Root().Contains(a) {
		t.Errorf("removed note is still in root")
	}
	if err := d.Validate(); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
}

func TestMovePreventsCycles(t *testing.T) {
	d := NewDocument()
	outer, _ := d.AddFolder(d.Root(), "outer")
	inner, _ := d.AddFolder(outer, "inner")

	tests := []struct {
		name string
		item Item
		dest *Folder
		want error
	}{
		{"into itself", outer, outer, ErrCycle},
		{"into descendant", outer, inner, ErrCycle},
		{"system folder", d.Trash(), d.Root(), ErrSystemFolder},
		{"valid", inner, d.Temp(), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := d.Move(tt.item, tt.dest)
			if !errors.Is(err, tt.want) {
				t.Errorf("Move error = %v, want %v", err, tt.want)
			}
		})
	}
	if inner.Parent() != d.Temp() {
		t.Errorf("inner parent = %v, want temp", inner.Parent())
	}
	if err := d.Validate(); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
}

func TestAttachRejectsAttachedItem(t *testing.T) {
	d := NewDocument()
	n, _ := d.AddNote(d.Root(), "A")
	if err := d.Attach(d.Temp(), n); !errors.Is(err, ErrAttached) {
		t.Errorf("Attach error = %v, want ErrAttached", err)
	}
	stranger := NewFolder("elsewhere")
	if err := d.Attach(stranger, NewNote("B")); !errors.Is(err, ErrNotAttached) {
		t.Errorf("Attach to foreign folder error = %v, want ErrNotAttached", err)
	}
}

func TestRemoveFolderRecursive(t *testing.T) {
	d := NewDocument()
	f, _ := d.AddFolder(d.Root(), "f")
	sub, _ := d.AddFolder(f, "sub")
	n, _ := d.AddNote(sub, "deep")
	d.TagNote(n, "x")

	if err := d.RemoveFolder(f); err != nil {
		t.Fatalf("RemoveFolder failed: %v", err)
	}
	if len(d.Folders()) != 0 || len(d.Notes()) != 0 || len(d.Tags()) != 0 {
		t.Errorf("folders=%d notes=%d tags=%d, want all zero",
			len(d.Folders()), len(d.Notes()), len(d.Tags()))
	}
	if err := d.RemoveFolder(d.Root()); !errors.Is(err, ErrSystemFolder) {
		t.Errorf("RemoveFolder(root) error = %v, want ErrSystemFolder", err)
	}
}

func TestEmptyTrash(t *testing.T) {
	d := NewDocument()
	n, _ := d.AddNote(d.Root(), "gone")
	f, _ := d.AddFolder(d.Root(), "gone too")
	d.AddNote(f, "child")
	d.MoveToTrash(n)
	d.MoveToTrash(f)

	if err := d.EmptyTrash(); err != nil {
		t.Fatalf("EmptyTrash failed: %v", err)
	}
	if d.Trash().Len() != 0 || len(d.Notes()) != 0 {
		t.Errorf("trash len %d, notes %d, want 0", d.Trash().Len(), len(d.Notes()))
	}
}

func TestValidateDetectsOrphans(t *testing.T) {
	d := NewDocument()
	d.Register(NewNote("orphan"))
	if err := d.Validate(); !errors.Is(err, ErrInconsistent) {
		t.Errorf("Validate error = %v, want ErrInconsistent", err)
	}
}

func TestIcons(t *testing.T) {
	d := NewDocument()
	if _, err := d.AddIcon(IconFolder, nil); !errors.Is(err, ErrDuplicateIcon) {
		t.Errorf("AddIcon(built-in) error = %v, want ErrDuplicateIcon", err)
	}
	if _, err := d.AddIcon("custom", []byte{1, 2, 3}); err != nil {
		t.Fatalf("AddIcon failed: %v", err)
	}
	n, _ := d.AddNote(d.Root(), "A")
	n.IconName = "custom"

	if !d.RemoveIcon("custom") {
		t.Fatalf("RemoveIcon returned false")
	}
	if n.IconName != d.DefaultNoteIcon {
		t.Errorf("IconName = %q, want default %q", n.IconName, d.DefaultNoteIcon)
	}
}

func TestPathAndWalk(t *testing.T) {
	d := NewDocument()
	f, _ := d.AddFolder(d.Root(), "work")
	n, _ := d.AddNote(f, "plan")
	d.AddNote(d.Root(), "loose")

	if got := d.Path(n); got != "Notes/work/plan" {
		t.Errorf("Path = %q, want %q", got, "Notes/work/plan")
	}

	var names []string
	Walk(d.Root(), func(item Item, depth int) bool {
		names = append(names, item.DisplayName())
		return true
	})
	want := []string{"work", "plan", "loose"}
	if len(names) != len(want) {
		t.Fatalf("Walk visited %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("Walk[%d] = %q, want %q", i, names[i], want[i])
		}
	}
}

func TestVersionPacking(t *testing.T) {
	v := Version{Major: 2, Minor: 7}
	if v.Uint16() != 0x0207 {
		t.Errorf("Uint16 = %#x, want 0x0207", v.Uint16())
	}
	if VersionFromUint16(0x0207) != v {
		t.Errorf("VersionFromUint16 round trip failed")
	}
}
