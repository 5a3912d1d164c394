// notebook/filesystem/import.go
package filesystem

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/vinizap/lumi/notebook/domain"
)

// Directory names that map onto the system folders. Any other hidden entry
// is skipped.
const (
	TempDir  = ".temp"
	TrashDir = ".trash"
)

// ImportDir builds a document from a tree of markdown files. Directories
// become folders and *.md files become notes; frontmatter tags are linked
// through the document so both sides of the relation are set.
func ImportDir(root string) (*domain.Document, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("import %s: not a directory", root)
	}

	doc := domain.NewDocument()
	if err := importFolder(doc, doc.Root(), root, true); err != nil {
		return nil, err
	}
	return doc, nil
}

func importFolder(doc *domain.Document, parent *domain.Folder, dir string, top bool) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		name := entry.Name()
		path := filepath.Join(dir, name)

		if entry.IsDir() {
			target, err := folderFor(doc, parent, entry, top)
			if err != nil {
				return err
			}
			if target == nil {
				continue
			}
			if err := importFolder(doc, target, path, false); err != nil {
				return err
			}
			continue
		}

		if strings.HasPrefix(name, ".") || !strings.HasSuffix(name, ".md") {
			continue
		}
		if err := importNote(doc, parent, path); err != nil {
			return err
		}
	}
	return nil
}

// folderFor returns the folder a directory's contents go into, or nil when
// the directory is skipped.
func folderFor(doc *domain.Document, parent *domain.Folder, entry os.DirEntry, top bool) (*domain.Folder, error) {
	name := entry.Name()
	if top {
		switch name {
		case TempDir:
			return doc.Temp(), nil
		case TrashDir:
			return doc.Trash(), nil
		}
	}
	if strings.HasPrefix(name, ".") {
		return nil, nil
	}

	f, err := doc.AddFolder(parent, name)
	if err != nil {
		return nil, fmt.Errorf("import folder %s: %w", name, err)
	}
	if info, err := entry.Info(); err == nil {
		f.CreatedAt = info.ModTime().UTC()
		f.ModifiedAt = f.CreatedAt
	}
	return f, nil
}

func importNote(doc *domain.Document, parent *domain.Folder, path string) error {
	file, err := ReadNote(path)
	if err != nil {
		return err
	}

	title := file.Meta.Title
	if title == "" {
		title = strings.TrimSuffix(filepath.Base(path), ".md")
	}
	n, err := doc.AddNote(parent, title)
	if err != nil {
		return fmt.Errorf("import note %s: %w", path, err)
	}
	n.Text = file.Content

	if file.HasFrontmatter {
		if !file.Meta.CreatedAt.IsZero() {
			n.CreatedAt = file.Meta.CreatedAt.UTC()
		}
		if !file.Meta.UpdatedAt.IsZero() {
			n.ModifiedAt = file.Meta.UpdatedAt.UTC()
		}
		if file.Meta.Icon != "" && (domain.IsStableIcon(file.Meta.Icon) || doc.Icon(file.Meta.Icon) != nil) {
			n.IconName = file.Meta.Icon
		}
		for _, tag := range file.Meta.Tags {
			if tag == "" {
				continue
			}
			if _, err := doc.TagNote(n, tag); err != nil {
				return fmt.Errorf("import note %s: tag %q: %w", path, tag, err)
			}
		}
	} else if info, err := os.Stat(path); err == nil {
		n.CreatedAt = info.ModTime().UTC()
		n.ModifiedAt = n.CreatedAt
	}
	return nil
}
