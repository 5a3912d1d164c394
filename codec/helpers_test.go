package codec

import (
	"fmt"
	"sort"
	"time"

	"github.com/vinizap/lumi/notebook/domain"
	"github.com/vinizap/lumi/notebook/wire"
)

var testTime = time.UnixMilli(1700000000000).UTC()

// itemSnap and docSnap describe a document independently of pointers and
// surrogate IDs, so two graphs compare equal when they are isomorphic.
type itemSnap struct {
	Kind     string
	Name     string
	Icon     string
	Text     string
	Tags     []string
	Expanded bool
	Created  int64
	Modified int64
	Children []itemSnap
}

type docSnap struct {
	Created           int64
	Modified          int64
	DefaultFolderIcon string
	DefaultNoteIcon   string
	Systems           []itemSnap
	TagOwners         map[string][]string
	Icons             map[string]string
	ActiveTab         int
	ActiveNote        string
	Open              []string
}

func snapshot(d *domain.Document) docSnap {
	s := docSnap{
		Created:           d.CreatedAt.UnixMilli(),
		Modified:          d.ModifiedAt.UnixMilli(),
		DefaultFolderIcon: d.DefaultFolderIcon,
		DefaultNoteIcon:   d.DefaultNoteIcon,
		TagOwners:         make(map[string][]string),
		Icons:             make(map[string]string),
		ActiveTab:         d.Visual.ActiveTab,
	}
	for _, f := range d.SystemFolders() {
		s.Systems = append(s.Systems, snapItem(f))
	}
	for _, t := range d.Tags() {
		for _, n := range t.Owners() {
			s.TagOwners[t.Name] = append(s.TagOwners[t.Name], d.Path(n))
		}
	}
	for _, ic := range d.Icons() {
		s.Icons[ic.Name] = fmt.Sprintf("%x", ic.Data)
	}
	if d.Visual.ActiveNote != nil {
		s.ActiveNote = d.Path(d.Visual.ActiveNote)
	}
	for _, o := range d.Visual.Open {
		s.Open = append(s.Open, fmt.Sprintf("%s@%d", d.Path(o.Note), o.Position))
	}
	return s
}

func snapItem(item domain.Item) itemSnap {
	switch it := item.(type) {
	case *domain.Folder:
		s := itemSnap{Kind: "folder", Name: it.Name, Expanded: it.Expanded}
		if !it.IsSystem() {
			s.Icon = it.IconName
			s.Created = it.CreatedAt.UnixMilli()
			s.Modified = it.ModifiedAt.UnixMilli()
		}
		for _, c := range it.Items() {
			s.Children = append(s.Children, snapItem(c))
		}
		return s
	case *domain.Note:
		s := itemSnap{
			Kind:     "note",
			Name:     it.Title,
			Icon:     it.IconName,
			Text:     it.Text,
			Created:  it.CreatedAt.UnixMilli(),
			Modified: it.ModifiedAt.UnixMilli(),
		}
		for _, t := range it.Tags() {
			s.Tags = append(s.Tags, t.Name)
		}
		sort.Strings(s.Tags)
		return s
	default:
		panic(fmt.Sprintf("unexpected item %T", item))
	}
}

// sampleDocument builds a graph with nesting, shared tags, custom icons,
// items in every system folder and editor state.
func sampleDocument() *domain.Document {
	d := domain.NewDocument()
	d.CreatedAt = testTime
	d.ModifiedAt = testTime.Add(time.Hour)
	d.AddIcon("rocket", []byte{0x89, 'P', 'N', 'G', 1, 2, 3})

	work, _ := d.AddFolder(d.Root(), "work")
	work.Expanded = true
	work.IconName = "rocket"
	plans, _ := d.AddFolder(work, "plans")
	a, _ := d.AddNote(work, "A")
	a.Text = "# Heading\n\nsome *markdown*"
	b, _ := d.AddNote(plans, "B")
	b.IconName = domain.IconStar
	c, _ := d.AddNote(d.Root(), "C")
	c.IconName = ""
	scratch, _ := d.AddNote(d.Temp(), "scratch")
	old, _ := d.AddFolder(d.Trash(), "old")
	d.AddNote(old, "deleted")

	d.TagNote(a, "x")
	d.TagNote(b, "x")
	d.TagNote(b, "y")
	d.TagNote(scratch, "z")

	for _, n := range d.Notes() {
		n.CreatedAt = testTime
		n.ModifiedAt = testTime.Add(time.Minute)
	}
	for _, f := range d.Folders() {
		f.CreatedAt = testTime
		f.ModifiedAt = testTime.Add(2 * time.Minute)
	}

	d.Visual.ActiveTab = 2
	d.Visual.ActiveNote = b
	d.Visual.Open = []domain.OpenNote{{Note: a, Position: 12}, {Note: b, Position: 0}}
	return d
}

// rawSections overrides individual inner sections; nil entries are written
// as empty sections.
type rawSections [9]func(w *wire.Cursor)

func buildInner(s rawSections) []byte {
	w := wire.NewWriter(0)
	for i := range s {
		mark := w.BeginLength()
		if s[i] != nil {
			s[i](w)
		} else {
			writeEmptySection(i, w)
		}
		w.EndLength(mark)
	}
	return w.Bytes()
}

func writeEmptySection(i int, w *wire.Cursor) {
	switch i {
	case 0:
		w.WriteTime(testTime)
		w.WriteTime(testTime)
		w.WriteString(domain.IconFolder)
		w.WriteString(domain.IconNote)
	case 8:
		w.WriteU32(0)
		w.WriteU32(noNote)
		w.WriteU32(0)
	default:
		w.WriteU32(0)
	}
}

func writeRawNote(w *wire.Cursor, id uint32, title string) {
	w.WriteU32(id)
	mark := w.BeginLength()
	w.WriteU8(uint8(domain.KindNote))
	w.WriteString(title)
	w.WriteU32(noIcon)
	w.WriteTime(testTime)
	w.WriteTime(testTime)
	w.WriteString("")
	w.EndLength(mark)
}

func writeRawFolder(w *wire.Cursor, id uint32, name string) {
	w.WriteU32(id)
	mark := w.BeginLength()
	w.WriteU8(uint8(domain.KindFolder))
	w.WriteString(name)
	w.WriteU32(noIcon)
	w.WriteTime(testTime)
	w.WriteTime(testTime)
	w.WriteU8(0)
	w.EndLength(mark)
}

func frame(inner []byte, v domain.Version) []byte {
	file, err := writeHeader(&Header{Version: v, Data: inner})
	if err != nil {
		panic(err)
	}
	return file
}

// innerSections splits a plain (uncompressed, unencrypted) file into its
// nine section cursors.
func innerSections(file []byte) ([]*wire.Cursor, error) {
	h, err := ReadHeader(file)
	if err != nil {
		return nil, err
	}
	r := wire.NewReader(h.Data)
	var out []*wire.Cursor
	for i := 0; i < 9; i++ {
		sec, err := r.ReadSection()
		if err != nil {
			return nil, err
		}
		out = append(out, sec)
	}
	return out, nil
}
