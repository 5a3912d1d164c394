// notebook/codec/icons.go
package codec

import "github.com/vinizap/lumi/notebook/domain"

// noIcon marks an item that uses the document's default icon.
const noIcon = 0xFFFFFFFF

// iconTable maps icon names to the compact indices stored in item payloads.
// Built-in names come first in their fixed order, then custom icons in
// document order, so the table is deterministic for a given document.
type iconTable struct {
	names []string
	index map[string]uint32
}

func buildIconTable(doc *domain.Document) *iconTable {
	t := &iconTable{index: make(map[string]uint32)}
	for _, name := range domain.StableIcons {
		t.add(name)
	}
	for _, ic := range doc.Icons() {
		t.add(ic.Name)
	}
	return t
}

func (t *iconTable) add(name string) {
	if _, ok := t.index[name]; ok {
		return
	}
	t.index[name] = uint32(len(t.names))
	t.names = append(t.names, name)
}

// lookup returns the index for name; empty or unknown names map to noIcon.
func (t *iconTable) lookup(name string) (uint32, bool) {
	if name == "" {
		return noIcon, true
	}
	i, ok := t.index[name]
	if !ok {
		return noIcon, false
	}
	return i, true
}
