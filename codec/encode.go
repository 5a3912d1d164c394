// notebook/codec/encode.go
package codec

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/vinizap/lumi/notebook/domain"
	"github.com/vinizap/lumi/notebook/wire"
)

// Reserved surrogate IDs. Notes and folders share one counter starting at
// firstItemID; tags have their own counter starting at firstTagID.
const (
	rootID      uint32 = 0
	tempID      uint32 = 1
	trashID     uint32 = 2
	firstItemID uint32 = 10
	firstTagID  uint32 = 1

	// noNote is the visual-state sentinel for "no active note".
	noNote uint32 = 0
)

// encoder carries the per-save state: the ID tables exist only for the
// duration of one encodeInner call.
type encoder struct {
	doc    *domain.Document
	w      *wire.Cursor
	icons  *iconTable
	items  map[domain.Item]uint32
	tags   map[*domain.Tag]uint32
	nextID uint32
	log    zerolog.Logger
}

func encodeInner(doc *domain.Document, log zerolog.Logger) ([]byte, error) {
	e := &encoder{
		doc:    doc,
		w:      wire.NewWriter(4096),
		icons:  buildIconTable(doc),
		items:  make(map[domain.Item]uint32),
		tags:   make(map[*domain.Tag]uint32),
		nextID: firstItemID,
		log:    log,
	}
	e.items[doc.Root()] = rootID
	e.items[doc.Temp()] = tempID
	e.items[doc.Trash()] = trashID

	sections := []struct {
		name  string
		write func() error
	}{
		{"metadata", e.writeMetadata},
		{"icons", e.writeIcons},
		{"icon-index", e.writeIconIndex},
		{"tags", e.writeTags},
		{"notes", e.writeNotes},
		{"folders", e.writeFolders},
		{"hierarchy", e.writeHierarchy},
		{"tag-owners", e.writeTagOwners},
		{"visual", e.writeVisual},
	}
	for _, s := range sections {
		start := e.w.Pos()
		mark := e.w.BeginLength()
		if err := s.write(); err != nil {
			return nil, fmt.Errorf("write %s section: %w", s.name, err)
		}
		if err := e.w.EndLength(mark); err != nil {
			return nil, fmt.Errorf("write %s section: %w", s.name, err)
		}
		e.log.Debug().Str("section", s.name).Int("bytes", e.w.Pos()-start).Msg("section written")
	}
	return e.w.Bytes(), nil
}

func (e *encoder) writeMetadata() error {
	e.w.WriteTime(e.doc.CreatedAt)
	e.w.WriteTime(e.doc.ModifiedAt)
	if err := e.w.WriteString(e.doc.DefaultFolderIcon); err != nil {
		return err
	}
	return e.w.WriteString(e.doc.DefaultNoteIcon)
}

func (e *encoder) writeIcons() error {
	icons := e.doc.Icons()
	e.w.WriteU32(uint32(len(icons)))
	for _, ic := range icons {
		if err := e.w.WriteString(ic.Name); err != nil {
			return err
		}
		if err := e.w.WriteBlock(ic.Data); err != nil {
			return err
		}
	}
	return nil
}

func (e *encoder) writeIconIndex() error {
	e.w.WriteU32(uint32(len(e.icons.names)))
	for i, name := range e.icons.names {
		e.w.WriteU32(uint32(i))
		if err := e.w.WriteString(name); err != nil {
			return err
		}
	}
	return nil
}

func (e *encoder) writeTags() error {
	tags := e.doc.Tags()
	e.w.WriteU32(uint32(len(tags)))
	id := firstTagID
	for _, t := range tags {
		e.tags[t] = id
		e.w.WriteU32(id)
		mark := e.w.BeginLength()
		if err := e.w.WriteString(t.Name); err != nil {
			return err
		}
		if err := e.w.EndLength(mark); err != nil {
			return err
		}
		id++
	}
	return nil
}

func (e *encoder) assign(item domain.Item) uint32 {
	id := e.nextID
	e.items[item] = id
	e.nextID++
	return id
}

func (e *encoder) iconIndex(item domain.Item) uint32 {
	idx, ok := e.icons.lookup(item.Icon())
	if !ok {
		e.log.Warn().Str("icon", item.Icon()).Str("item", item.DisplayName()).
			Msg("unknown icon replaced by default")
	}
	return idx
}

func (e *encoder) writeNotes() error {
	notes := e.doc.Notes()
	e.w.WriteU32(uint32(len(notes)))
	for _, n := range notes {
		e.w.WriteU32(e.assign(n))
		if err := e.writeItemPayload(n); err != nil {
			return err
		}
	}
	return nil
}

func (e *encoder) writeFolders() error {
	folders := e.doc.Folders()
	e.w.WriteU32(uint32(len(folders)))
	for _, f := range folders {
		e.w.WriteU32(e.assign(f))
		if err := e.writeItemPayload(f); err != nil {
			return err
		}
	}
	return nil
}

// writeItemPayload writes a length-prefixed payload that starts with the
// item discriminant.
func (e *encoder) writeItemPayload(item domain.Item) error {
	mark := e.w.BeginLength()
	e.w.WriteU8(uint8(item.Kind()))

	var err error
	switch it := item.(type) {
	case *domain.Folder:
		err = e.writeFolderFields(it)
	case *domain.Note:
		err = e.writeNoteFields(it)
	default:
		err = fmt.Errorf("item %T: %w", item, ErrMalformedData)
	}
	if err != nil {
		return err
	}
	return e.w.EndLength(mark)
}

const folderExpanded = 1 << 0

func (e *encoder) writeFolderFields(f *domain.Folder) error {
	if err := e.w.WriteString(f.Name); err != nil {
		return err
	}
	e.w.WriteU32(e.iconIndex(f))
	e.w.WriteTime(f.CreatedAt)
	e.w.WriteTime(f.ModifiedAt)
	var flags uint8
	if f.Expanded {
		flags |= folderExpanded
	}
	e.w.WriteU8(flags)
	return nil
}

func (e *encoder) writeNoteFields(n *domain.Note) error {
	if err := e.w.WriteString(n.Title); err != nil {
		return err
	}
	e.w.WriteU32(e.iconIndex(n))
	e.w.WriteTime(n.CreatedAt)
	e.w.WriteTime(n.ModifiedAt)
	return e.w.WriteString(n.Text)
}

// writeHierarchy walks the tree with an explicit stack seeded with root,
// temporary and trash, so groups come out trash first. Only folders with
// children produce a group.
func (e *encoder) writeHierarchy() error {
	var groups []*domain.Folder
	sys := e.doc.SystemFolders()
	stack := []*domain.Folder{sys[0], sys[1], sys[2]}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if f.Len() > 0 {
			groups = append(groups, f)
		}
		for _, item := range f.Items() {
			if sub, ok := item.(*domain.Folder); ok {
				stack = append(stack, sub)
			}
		}
	}

	e.w.WriteU32(uint32(len(groups)))
	for _, f := range groups {
		e.w.WriteU32(e.items[f])
		e.w.WriteU32(uint32(f.Len()))
		for _, item := range f.Items() {
			id, ok := e.items[item]
			if !ok {
				return fmt.Errorf("%w: %s %q is not registered", ErrMalformedData, item.Kind(), item.DisplayName())
			}
			e.w.WriteU32(id)
		}
	}
	return nil
}

func (e *encoder) writeTagOwners() error {
	tags := e.doc.Tags()
	e.w.WriteU32(uint32(len(tags)))
	for _, t := range tags {
		owners := t.Owners()
		e.w.WriteU32(e.tags[t])
		e.w.WriteU32(uint32(len(owners)))
		for _, n := range owners {
			id, ok := e.items[n]
			if !ok {
				return fmt.Errorf("%w: tag %q owner %q is not registered", ErrMalformedData, t.Name, n.Title)
			}
			e.w.WriteU32(id)
		}
	}
	return nil
}

func (e *encoder) writeVisual() error {
	v := e.doc.Visual
	tab := v.ActiveTab
	if tab < 0 {
		tab = 0
	}
	e.w.WriteU32(uint32(tab))

	active := noNote
	if v.ActiveNote != nil {
		if id, ok := e.items[v.ActiveNote]; ok {
			active = id
		}
	}
	e.w.WriteU32(active)

	var open []domain.OpenNote
	for _, o := range v.Open {
		if _, ok := e.items[o.Note]; ok && o.Note != nil {
			open = append(open, o)
		}
	}
	e.w.WriteU32(uint32(len(open)))
	for _, o := range open {
		pos := o.Position
		if pos < 0 {
			pos = 0
		}
		e.w.WriteU32(e.items[o.Note])
		e.w.WriteU32(uint32(pos))
	}
	return nil
}
