package index

import (
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/vinizap/lumi/notebook/domain"
)

func sampleDocument() *domain.Document {
	d := domain.NewDocument()
	work, _ := d.AddFolder(d.Root(), "work")
	a, _ := d.AddNote(work, "A")
	b, _ := d.AddNote(d.Root(), "B")
	c, _ := d.AddNote(d.Trash(), "C")
	d.TagNote(a, "x")
	d.TagNote(b, "x")
	d.TagNote(c, "y")
	return d
}

func TestExport(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "index.db")
	if err := Export(sampleDocument(), dbPath); err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	s, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer s.Close()

	n, err := s.CountNotes()
	if err != nil {
		t.Fatalf("CountNotes failed: %v", err)
	}
	if n != 3 {
		t.Errorf("CountNotes = %d, want 3", n)
	}

	titles, err := s.NotesWithTag("x")
	if err != nil {
		t.Fatalf("NotesWithTag failed: %v", err)
	}
	// work/A is visited before B because the folder comes first in root
	if diff := cmp.Diff([]string{"A", "B"}, titles); diff != "" {
		t.Errorf("NotesWithTag(x) (-want +got):\n%s", diff)
	}

	folders, err := s.Folders()
	if err != nil {
		t.Fatalf("Folders failed: %v", err)
	}
	var got []string
	for _, f := range folders {
		got = append(got, f.System+":"+f.Name)
	}
	want := []string{"root:Notes", "temp:Temporary", "trash:Trash", ":work"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("folders (-want +got):\n%s", diff)
	}
	if folders[3].ParentID.Int64 != folders[0].ID {
		t.Errorf("work parent = %v, want root", folders[3].ParentID)
	}
}

func TestExportReplacesRows(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "index.db")
	if err := Export(sampleDocument(), dbPath); err != nil {
		t.Fatalf("first Export failed: %v", err)
	}

	d := domain.NewDocument()
	n, _ := d.AddNote(d.Root(), "only")
	d.TagNote(n, "x")
	if err := Export(d, dbPath); err != nil {
		t.Fatalf("second Export failed: %v", err)
	}

	s, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer s.Close()
	if count, _ := s.CountNotes(); count != 1 {
		t.Errorf("CountNotes = %d, want 1", count)
	}
	if titles, _ := s.NotesWithTag("y"); len(titles) != 0 {
		t.Errorf("stale tag y still has notes: %v", titles)
	}
}
