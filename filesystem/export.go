// notebook/filesystem/export.go
package filesystem

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode"

	"github.com/vinizap/lumi/notebook/domain"
)

// ExportDir writes doc as a tree of markdown files under dir, the inverse
// of ImportDir. Temporary and trash contents go to .temp and .trash when
// they are not empty.
func ExportDir(doc *domain.Document, dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	if err := exportFolder(doc.Root(), dir); err != nil {
		return err
	}
	for _, sys := range []struct {
		folder *domain.Folder
		name   string
	}{
		{doc.Temp(), TempDir},
		{doc.Trash(), TrashDir},
	} {
		if sys.folder.Len() == 0 {
			continue
		}
		path := filepath.Join(dir, sys.name)
		if err := os.MkdirAll(path, 0755); err != nil {
			return fmt.Errorf("export: %w", err)
		}
		if err := exportFolder(sys.folder, path); err != nil {
			return err
		}
	}
	return nil
}

// exportFolder never replaces what is already in dir: names taken by
// existing entries get a numeric suffix like sibling collisions do.
func exportFolder(f *domain.Folder, dir string) error {
	existing, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	used := make(map[string]bool, len(existing))
	for _, e := range existing {
		used[strings.ToLower(e.Name())] = true
	}
	for _, item := range f.Items() {
		switch it := item.(type) {
		case *domain.Folder:
			name := unique(used, folderName(it.Name), "")
			path := filepath.Join(dir, name)
			if err := os.MkdirAll(path, 0755); err != nil {
				return fmt.Errorf("export folder %q: %w", it.Name, err)
			}
			if err := exportFolder(it, path); err != nil {
				return err
			}
			if !it.ModifiedAt.IsZero() {
				if err := os.Chtimes(path, it.ModifiedAt, it.ModifiedAt); err != nil {
					return fmt.Errorf("export folder %q: %w", it.Name, err)
				}
			}
		case *domain.Note:
			name := unique(used, Slug(it.Title), ".md")
			if err := WriteNote(filepath.Join(dir, name), it); err != nil {
				return fmt.Errorf("export note %q: %w", it.Title, err)
			}
		}
	}
	return nil
}

// unique returns base+ext, or base-2+ext, base-3+ext... if taken. Names are
// compared case-insensitively so exports survive case-folding filesystems.
func unique(used map[string]bool, base, ext string) string {
	name := base + ext
	for i := 2; used[strings.ToLower(name)]; i++ {
		name = base + "-" + strconv.Itoa(i) + ext
	}
	used[strings.ToLower(name)] = true
	return name
}

// Slug turns a title into a file name: lower case letters and digits
// separated by single dashes.
func Slug(title string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(title) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r)
			dash = false
			continue
		}
		dash = true
	}
	if b.Len() == 0 {
		return "untitled"
	}
	return b.String()
}

// folderName keeps a folder's name as its directory name where the
// filesystem allows it.
func folderName(name string) string {
	name = strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || r == 0 {
			return '-'
		}
		return r
	}, name)
	name = strings.TrimSpace(name)
	if strings.HasPrefix(name, ".") {
		name = "_" + name
	}
	if name == "" {
		return "untitled"
	}
	return name
}
