// notebook/codec/decode.go
package codec

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/vinizap/lumi/notebook/domain"
	"github.com/vinizap/lumi/notebook/wire"
)

// decoder carries the per-load ID tables. Sections up to folders only fill
// the tables; hierarchy, tag owners and visual state only resolve IDs
// against them.
type decoder struct {
	doc   *domain.Document
	r     *wire.Cursor
	icons map[uint32]string
	tags  map[uint32]string
	items map[uint32]domain.Item
	log   zerolog.Logger
}

func decodeInner(data []byte, log zerolog.Logger) (*domain.Document, error) {
	doc := domain.NewDocument()
	d := &decoder{
		doc:   doc,
		r:     wire.NewReader(data),
		icons: make(map[uint32]string),
		tags:  make(map[uint32]string),
		items: map[uint32]domain.Item{
			rootID:  doc.Root(),
			tempID:  doc.Temp(),
			trashID: doc.Trash(),
		},
		log: log,
	}

	sections := []struct {
		name string
		read func(*wire.Cursor) error
	}{
		{"metadata", d.readMetadata},
		{"icons", d.readIcons},
		{"icon-index", d.readIconIndex},
		{"tags", d.readTags},
		{"notes", d.readNotes},
		{"folders", d.readFolders},
		{"hierarchy", d.readHierarchy},
		{"tag-owners", d.readTagOwners},
		{"visual", d.readVisual},
	}
	for _, s := range sections {
		sec, err := d.r.ReadSection()
		if err != nil {
			return nil, fmt.Errorf("read %s section: %w", s.name, err)
		}
		if err := s.read(sec); err != nil {
			return nil, fmt.Errorf("read %s section: %w", s.name, err)
		}
		if sec.Remaining() > 0 {
			d.log.Debug().Str("section", s.name).Int("skipped", sec.Remaining()).Msg("unknown trailing bytes")
		}
	}
	if d.r.Remaining() > 0 {
		d.log.Debug().Int("skipped", d.r.Remaining()).Msg("unknown trailing sections")
	}

	if err := doc.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedData, err)
	}
	d.log.Debug().Int("notes", len(doc.Notes())).Int("folders", len(doc.Folders())).
		Int("tags", len(doc.Tags())).Msg("document linked")
	return doc, nil
}

func (d *decoder) readMetadata(r *wire.Cursor) error {
	var err error
	if d.doc.CreatedAt, err = r.ReadTime(); err != nil {
		return err
	}
	if d.doc.ModifiedAt, err = r.ReadTime(); err != nil {
		return err
	}
	if d.doc.DefaultFolderIcon, err = r.ReadString(); err != nil {
		return err
	}
	d.doc.DefaultNoteIcon, err = r.ReadString()
	return err
}

func (d *decoder) readIcons(r *wire.Cursor) error {
	n, err := r.ReadU32()
	if err != nil {
		return err
	}
	for i := uint32(0); i < n; i++ {
		name, err := r.ReadString()
		if err != nil {
			return err
		}
		data, err := r.ReadBlock()
		if err != nil {
			return err
		}
		if _, err := d.doc.AddIcon(name, data); err != nil {
			return fmt.Errorf("%w: %w", ErrMalformedData, err)
		}
	}
	return nil
}

func (d *decoder) readIconIndex(r *wire.Cursor) error {
	n, err := r.ReadU32()
	if err != nil {
		return err
	}
	for i := uint32(0); i < n; i++ {
		idx, err := r.ReadU32()
		if err != nil {
			return err
		}
		name, err := r.ReadString()
		if err != nil {
			return err
		}
		if _, dup := d.icons[idx]; dup || idx == noIcon {
			return malformed("icon index %d", idx)
		}
		d.icons[idx] = name
	}
	return nil
}

func (d *decoder) icon(idx uint32) (string, error) {
	if idx == noIcon {
		return "", nil
	}
	name, ok := d.icons[idx]
	if !ok {
		return "", malformed("unknown icon index %d", idx)
	}
	return name, nil
}

func (d *decoder) readTags(r *wire.Cursor) error {
	n, err := r.ReadU32()
	if err != nil {
		return err
	}
	names := make(map[string]bool)
	for i := uint32(0); i < n; i++ {
		id, err := r.ReadU32()
		if err != nil {
			return err
		}
		payload, err := r.ReadSection()
		if err != nil {
			return err
		}
		name, err := payload.ReadString()
		if err != nil {
			return err
		}
		if _, dup := d.tags[id]; dup {
			return malformed("duplicate tag id %d", id)
		}
		if name == "" || names[name] {
			return malformed("tag %d name %q", id, name)
		}
		names[name] = true
		d.tags[id] = name
	}
	return nil
}

func (d *decoder) readNotes(r *wire.Cursor) error {
	return d.readItems(r, domain.KindNote)
}

func (d *decoder) readFolders(r *wire.Cursor) error {
	return d.readItems(r, domain.KindFolder)
}

// readItems materialises the entries of the notes or folders section and
// registers them in file order. None of them has a parent yet.
func (d *decoder) readItems(r *wire.Cursor, want domain.ItemKind) error {
	n, err := r.ReadU32()
	if err != nil {
		return err
	}
	for i := uint32(0); i < n; i++ {
		id, err := r.ReadU32()
		if err != nil {
			return err
		}
		if id < firstItemID {
			return malformed("%s id %d is reserved", want, id)
		}
		if _, dup := d.items[id]; dup {
			return malformed("duplicate item id %d", id)
		}
		payload, err := r.ReadSection()
		if err != nil {
			return err
		}
		item, err := d.readItemPayload(payload, want)
		if err != nil {
			return fmt.Errorf("item %d: %w", id, err)
		}
		if err := d.doc.Register(item); err != nil {
			return fmt.Errorf("%w: %w", ErrMalformedData, err)
		}
		d.items[id] = item
	}
	return nil
}

func (d *decoder) readItemPayload(r *wire.Cursor, want domain.ItemKind) (domain.Item, error) {
	k, err := r.ReadU8()
	if err != nil {
		return nil, err
	}
	kind := domain.ItemKind(k)
	if kind != want {
		return nil, malformed("discriminant %s in %s section", kind, want)
	}
	switch kind {
	case domain.KindFolder:
		return d.readFolderFields(r)
	case domain.KindNote:
		return d.readNoteFields(r)
	default:
		return nil, malformed("discriminant %s", kind)
	}
}

func (d *decoder) readFolderFields(r *wire.Cursor) (*domain.Folder, error) {
	name, err := r.ReadString()
	if err != nil {
		return nil, err
	}
	f := domain.NewFolder(name)
	idx, err := r.ReadU32()
	if err != nil {
		return nil, err
	}
	if f.IconName, err = d.icon(idx); err != nil {
		return nil, err
	}
	if f.CreatedAt, err = r.ReadTime(); err != nil {
		return nil, err
	}
	if f.ModifiedAt, err = r.ReadTime(); err != nil {
		return nil, err
	}
	flags, err := r.ReadU8()
	if err != nil {
		return nil, err
	}
	f.Expanded = flags&folderExpanded != 0
	return f, nil
}

func (d *decoder) readNoteFields(r *wire.Cursor) (*domain.Note, error) {
	title, err := r.ReadString()
	if err != nil {
		return nil, err
	}
	n := domain.NewNote(title)
	idx, err := r.ReadU32()
	if err != nil {
		return nil, err
	}
	if n.IconName, err = d.icon(idx); err != nil {
		return nil, err
	}
	if n.CreatedAt, err = r.ReadTime(); err != nil {
		return nil, err
	}
	if n.ModifiedAt, err = r.ReadTime(); err != nil {
		return nil, err
	}
	if n.Text, err = r.ReadString(); err != nil {
		return nil, err
	}
	return n, nil
}

// readHierarchy appends every listed child to its parent in listed order.
// Attach rejects a second parent, a system folder as child, and cycles.
func (d *decoder) readHierarchy(r *wire.Cursor) error {
	groups, err := r.ReadU32()
	if err != nil {
		return err
	}
	for g := uint32(0); g < groups; g++ {
		parentID, err := r.ReadU32()
		if err != nil {
			return err
		}
		parent, err := d.folder(parentID)
		if err != nil {
			return err
		}
		count, err := r.ReadU32()
		if err != nil {
			return err
		}
		for i := uint32(0); i < count; i++ {
			childID, err := r.ReadU32()
			if err != nil {
				return err
			}
			child, ok := d.items[childID]
			if !ok {
				return malformed("unknown child id %d of folder %d", childID, parentID)
			}
			if err := d.doc.Attach(parent, child); err != nil {
				return fmt.Errorf("%w: child %d of folder %d: %w", ErrMalformedData, childID, parentID, err)
			}
		}
	}
	return nil
}

func (d *decoder) folder(id uint32) (*domain.Folder, error) {
	item, ok := d.items[id]
	if !ok {
		return nil, malformed("unknown folder id %d", id)
	}
	switch it := item.(type) {
	case *domain.Folder:
		return it, nil
	case *domain.Note:
		return nil, malformed("id %d is a note, not a folder", id)
	default:
		return nil, malformed("id %d has unknown kind", id)
	}
}

func (d *decoder) note(id uint32) (*domain.Note, bool) {
	item, ok := d.items[id]
	if !ok {
		return nil, false
	}
	switch it := item.(type) {
	case *domain.Note:
		return it, true
	case *domain.Folder:
		return nil, false
	default:
		return nil, false
	}
}

func (d *decoder) readTagOwners(r *wire.Cursor) error {
	groups, err := r.ReadU32()
	if err != nil {
		return err
	}
	for g := uint32(0); g < groups; g++ {
		tagID, err := r.ReadU32()
		if err != nil {
			return err
		}
		name, ok := d.tags[tagID]
		if !ok {
			return malformed("unknown tag id %d", tagID)
		}
		count, err := r.ReadU32()
		if err != nil {
			return err
		}
		for i := uint32(0); i < count; i++ {
			noteID, err := r.ReadU32()
			if err != nil {
				return err
			}
			n, ok := d.note(noteID)
			if !ok {
				return malformed("tag %d owner %d is not a note", tagID, noteID)
			}
			if _, err := d.doc.TagNote(n, name); err != nil {
				return fmt.Errorf("%w: %w", ErrMalformedData, err)
			}
		}
	}
	return nil
}

// readVisual restores editor state. Note IDs that do not resolve are
// dropped rather than failing the load.
func (d *decoder) readVisual(r *wire.Cursor) error {
	tab, err := r.ReadU32()
	if err != nil {
		return err
	}
	d.doc.Visual.ActiveTab = int(tab)

	activeID, err := r.ReadU32()
	if err != nil {
		return err
	}
	if activeID != noNote {
		if n, ok := d.note(activeID); ok {
			d.doc.Visual.ActiveNote = n
		} else {
			d.log.Warn().Uint32("id", activeID).Msg("active note not found, dropped")
		}
	}

	count, err := r.ReadU32()
	if err != nil {
		return err
	}
	for i := uint32(0); i < count; i++ {
		id, err := r.ReadU32()
		if err != nil {
			return err
		}
		pos, err := r.ReadU32()
		if err != nil {
			return err
		}
		n, ok := d.note(id)
		if !ok {
			d.log.Warn().Uint32("id", id).Msg("open editor note not found, dropped")
			continue
		}
		d.doc.Visual.Open = append(d.doc.Visual.Open, domain.OpenNote{Note: n, Position: int(pos)})
	}
	return nil
}
