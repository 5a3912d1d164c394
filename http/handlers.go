// notebook/http/handlers.go
package http

import (
	"bytes"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/yuin/goldmark"

	"github.com/vinizap/lumi/notebook/domain"
)

// Server answers read-only queries over one loaded document. Handlers never
// mutate the document, so concurrent requests need no locking.
type Server struct {
	doc *domain.Document
	log zerolog.Logger
	md  goldmark.Markdown
}

func NewServer(doc *domain.Document, log zerolog.Logger) *Server {
	return &Server{doc: doc, log: log, md: newMarkdown()}
}

type treeNode struct {
	Kind     string     `json:"kind"`
	Name     string     `json:"name"`
	Icon     string     `json:"icon,omitempty"`
	Expanded bool       `json:"expanded,omitempty"`
	Note     *int       `json:"note,omitempty"`
	Children []treeNode `json:"children,omitempty"`
}

type noteSummary struct {
	Index     int       `json:"index"`
	Title     string    `json:"title"`
	Path      string    `json:"path"`
	Icon      string    `json:"icon,omitempty"`
	Tags      []string  `json:"tags"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type noteDetail struct {
	noteSummary
	Content string `json:"content"`
}

type tagEntry struct {
	Name  string `json:"name"`
	Notes []int  `json:"notes"`
}

type openEditor struct {
	Note     int `json:"note"`
	Position int `json:"position"`
}

type visualState struct {
	ActiveTab  int          `json:"active_tab"`
	ActiveNote *int         `json:"active_note"`
	Open       []openEditor `json:"open"`
}

// noteIndex maps each note to its position in the document's note list,
// which is the :index used by the note routes.
func (s *Server) noteIndex() map[*domain.Note]int {
	notes := s.doc.Notes()
	idx := make(map[*domain.Note]int, len(notes))
	for i, n := range notes {
		idx[n] = i
	}
	return idx
}

func (s *Server) HandleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

func (s *Server) HandleTree(c *fiber.Ctx) error {
	idx := s.noteIndex()
	var roots []treeNode
	for _, f := range s.doc.SystemFolders() {
		roots = append(roots, s.treeOf(f, idx))
	}
	return c.JSON(roots)
}

func (s *Server) treeOf(item domain.Item, idx map[*domain.Note]int) treeNode {
	node := treeNode{
		Kind: item.Kind().String(),
		Name: item.DisplayName(),
		Icon: item.Icon(),
	}
	switch it := item.(type) {
	case *domain.Folder:
		node.Expanded = it.Expanded
		for _, child := range it.Items() {
			node.Children = append(node.Children, s.treeOf(child, idx))
		}
	case *domain.Note:
		i := idx[it]
		node.Note = &i
	}
	return node
}

func (s *Server) summary(i int, n *domain.Note) noteSummary {
	sum := noteSummary{
		Index:     i,
		Title:     n.Title,
		Path:      s.doc.Path(n),
		Icon:      n.IconName,
		Tags:      []string{},
		CreatedAt: n.CreatedAt,
		UpdatedAt: n.ModifiedAt,
	}
	for _, t := range n.Tags() {
		sum.Tags = append(sum.Tags, t.Name)
	}
	return sum
}

func (s *Server) HandleNotes(c *fiber.Ctx) error {
	tag := c.Query("tag")
	notes := []noteSummary{}
	for i, n := range s.doc.Notes() {
		if tag != "" && !hasTagNamed(n, tag) {
			continue
		}
		notes = append(notes, s.summary(i, n))
	}
	return c.JSON(notes)
}

func hasTagNamed(n *domain.Note, name string) bool {
	for _, t := range n.Tags() {
		if t.Name == name {
			return true
		}
	}
	return false
}

// note resolves the :index route parameter.
func (s *Server) note(c *fiber.Ctx) (int, *domain.Note, error) {
	i, err := c.ParamsInt("index")
	if err != nil {
		return 0, nil, fiber.NewError(fiber.StatusBadRequest, "Note index required")
	}
	notes := s.doc.Notes()
	if i < 0 || i >= len(notes) {
		return 0, nil, fiber.NewError(fiber.StatusNotFound, "Note not found")
	}
	return i, notes[i], nil
}

func (s *Server) HandleGetNote(c *fiber.Ctx) error {
	i, n, err := s.note(c)
	if err != nil {
		return err
	}
	return c.JSON(noteDetail{noteSummary: s.summary(i, n), Content: n.Text})
}

func (s *Server) HandleNoteHTML(c *fiber.Ctx) error {
	_, n, err := s.note(c)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := s.md.Convert([]byte(n.Text), &buf); err != nil {
		s.log.Error().Err(err).Str("note", n.Title).Msg("render markdown")
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	c.Type("html", "utf-8")
	return c.Send(buf.Bytes())
}

func (s *Server) HandleTags(c *fiber.Ctx) error {
	idx := s.noteIndex()
	tags := []tagEntry{}
	for _, t := range s.doc.Tags() {
		e := tagEntry{Name: t.Name, Notes: []int{}}
		for _, n := range t.Owners() {
			e.Notes = append(e.Notes, idx[n])
		}
		tags = append(tags, e)
	}
	return c.JSON(tags)
}

func (s *Server) HandleVisual(c *fiber.Ctx) error {
	idx := s.noteIndex()
	v := s.doc.Visual
	out := visualState{ActiveTab: v.ActiveTab, Open: []openEditor{}}
	if v.ActiveNote != nil {
		if i, ok := idx[v.ActiveNote]; ok {
			out.ActiveNote = &i
		}
	}
	for _, o := range v.Open {
		if i, ok := idx[o.Note]; ok {
			out.Open = append(out.Open, openEditor{Note: i, Position: o.Position})
		}
	}
	return c.JSON(out)
}
