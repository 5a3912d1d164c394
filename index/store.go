// notebook/index/store.go

// Package index mirrors a document into a SQLite database for ad-hoc
// queries. The database is a one-way export; the notebook file stays the
// source of truth.
package index

import (
	"database/sql"
	_ "embed"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/vinizap/lumi/notebook/domain"
)

//go:embed schema.sql
var schema string

// Store handles database operations
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at dbPath and applies the schema.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Export opens dbPath and replaces its contents with doc.
func Export(doc *domain.Document, dbPath string) error {
	s, err := Open(dbPath)
	if err != nil {
		return err
	}
	defer s.Close()
	return s.Replace(doc)
}

// Replace deletes every row and writes doc in one transaction. Row IDs
// follow tree order: system folders first, then a depth-first walk.
func (s *Store) Replace(doc *domain.Document) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin export: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"note_tags", "tags", "notes", "folders"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	w := &writer{
		tx:      tx,
		folders: make(map[*domain.Folder]int64),
		notes:   make(map[*domain.Note]int64),
	}
	for i, f := range doc.SystemFolders() {
		if err := w.folder(f, nil, i); err != nil {
			return err
		}
	}
	for _, f := range doc.SystemFolders() {
		if err := w.children(f); err != nil {
			return err
		}
	}
	if err := w.tags(doc.Tags()); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit export: %w", err)
	}
	return nil
}

type writer struct {
	tx      *sql.Tx
	folders map[*domain.Folder]int64
	notes   map[*domain.Note]int64
	nextID  int64
}

func (w *writer) id() int64 {
	w.nextID++
	return w.nextID
}

func (w *writer) folder(f *domain.Folder, parent *int64, position int) error {
	id := w.id()
	_, err := w.tx.Exec(
		`INSERT INTO folders (id, parent_id, system, name, icon, position, expanded, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, parent, systemName(f.System()), f.Name, f.IconName, position, f.Expanded, f.CreatedAt, f.ModifiedAt,
	)
	if err != nil {
		return fmt.Errorf("insert folder %q: %w", f.Name, err)
	}
	w.folders[f] = id
	return nil
}

func (w *writer) children(f *domain.Folder) error {
	parent := w.folders[f]
	for i, item := range f.Items() {
		switch it := item.(type) {
		case *domain.Folder:
			if err := w.folder(it, &parent, i); err != nil {
				return err
			}
			if err := w.children(it); err != nil {
				return err
			}
		case *domain.Note:
			id := w.id()
			_, err := w.tx.Exec(
				`INSERT INTO notes (id, folder_id, title, icon, position, content, created_at, updated_at)
				 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
				id, parent, it.Title, it.IconName, i, it.Text, it.CreatedAt, it.ModifiedAt,
			)
			if err != nil {
				return fmt.Errorf("insert note %q: %w", it.Title, err)
			}
			w.notes[it] = id
		}
	}
	return nil
}

func (w *writer) tags(tags []*domain.Tag) error {
	for i, t := range tags {
		tagID := int64(i + 1)
		if _, err := w.tx.Exec("INSERT INTO tags (id, name) VALUES (?, ?)", tagID, t.Name); err != nil {
			return fmt.Errorf("insert tag %q: %w", t.Name, err)
		}
		for _, n := range t.Owners() {
			noteID, ok := w.notes[n]
			if !ok {
				return fmt.Errorf("tag %q owner %q: %w", t.Name, n.Title, domain.ErrNotAttached)
			}
			if _, err := w.tx.Exec("INSERT INTO note_tags (note_id, tag_id) VALUES (?, ?)", noteID, tagID); err != nil {
				return fmt.Errorf("link tag %q: %w", t.Name, err)
			}
		}
	}
	return nil
}

func systemName(k domain.SystemKind) string {
	switch k {
	case domain.SystemRoot:
		return "root"
	case domain.SystemTemp:
		return "temp"
	case domain.SystemTrash:
		return "trash"
	default:
		return ""
	}
}

// CountNotes returns the number of exported notes.
func (s *Store) CountNotes() (int, error) {
	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM notes").Scan(&n); err != nil {
		return 0, fmt.Errorf("count notes: %w", err)
	}
	return n, nil
}

// NotesWithTag returns the titles of the notes carrying the named tag, in
// tree order.
func (s *Store) NotesWithTag(name string) ([]string, error) {
	rows, err := s.db.Query(
		`SELECT n.title FROM notes n
		 JOIN note_tags nt ON nt.note_id = n.id
		 JOIN tags t ON t.id = nt.tag_id
		 WHERE t.name = ?
		 ORDER BY n.id`,
		name,
	)
	if err != nil {
		return nil, fmt.Errorf("notes with tag: %w", err)
	}
	defer rows.Close()

	var titles []string
	for rows.Next() {
		var title string
		if err := rows.Scan(&title); err != nil {
			return nil, fmt.Errorf("scan note: %w", err)
		}
		titles = append(titles, title)
	}
	return titles, rows.Err()
}

// Folder is a row of the folders table.
type Folder struct {
	ID       int64
	ParentID sql.NullInt64
	System   string
	Name     string
	Position int
}

// Folders lists folders in ID order.
func (s *Store) Folders() ([]Folder, error) {
	rows, err := s.db.Query("SELECT id, parent_id, system, name, position FROM folders ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("list folders: %w", err)
	}
	defer rows.Close()

	var folders []Folder
	for rows.Next() {
		var f Folder
		if err := rows.Scan(&f.ID, &f.ParentID, &f.System, &f.Name, &f.Position); err != nil {
			return nil, fmt.Errorf("scan folder: %w", err)
		}
		folders = append(folders, f)
	}
	return folders, rows.Err()
}
