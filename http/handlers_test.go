package http

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"

	"github.com/vinizap/lumi/notebook/auth"
	"github.com/vinizap/lumi/notebook/domain"
)

const testToken = "secret"

func newTestApp(t *testing.T) (*domain.Document, func(path string) (int, []byte)) {
	t.Helper()
	d := domain.NewDocument()
	work, _ := d.AddFolder(d.Root(), "work")
	a, _ := d.AddNote(work, "A")
	a.Text = "# Title\n\nsome *emphasis*\n\n<script>alert(1)</script>\n"
	b, _ := d.AddNote(d.Root(), "B")
	d.AddNote(d.Trash(), "C")
	d.TagNote(a, "x")
	d.TagNote(b, "x")
	d.Visual.ActiveTab = 1
	d.Visual.ActiveNote = b
	d.Visual.Open = []domain.OpenNote{{Note: a, Position: 7}}

	app := NewApp(NewServer(d, zerolog.Nop()), testToken)
	get := func(path string) (int, []byte) {
		req := httptest.NewRequest("GET", path, nil)
		req.Header.Set(auth.Header, testToken)
		resp, err := app.Test(req, -1)
		if err != nil {
			t.Fatalf("GET %s failed: %v", path, err)
		}
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			t.Fatalf("read body: %v", err)
		}
		return resp.StatusCode, body
	}
	return d, get
}

func decode[T any](t *testing.T, body []byte) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(body, &v); err != nil {
		t.Fatalf("decode %s: %v", body, err)
	}
	return v
}

func TestHealthIsOpen(t *testing.T) {
	app := NewApp(NewServer(domain.NewDocument(), zerolog.Nop()), testToken)
	resp, err := app.Test(httptest.NewRequest("GET", "/health", nil), -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}

	resp, err = app.Test(httptest.NewRequest("GET", "/api/tree", nil), -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != 401 {
		t.Errorf("/api/tree without token: status = %d, want 401", resp.StatusCode)
	}
}

func TestHandleTree(t *testing.T) {
	_, get := newTestApp(t)
	status, body := get("/api/tree")
	if status != 200 {
		t.Fatalf("status = %d: %s", status, body)
	}
	tree := decode[[]treeNode](t, body)
	if len(tree) != 3 {
		t.Fatalf("roots = %d, want 3", len(tree))
	}

	var names []string
	var walk func(prefix string, n treeNode)
	walk = func(prefix string, n treeNode) {
		names = append(names, prefix+n.Name)
		for _, c := range n.Children {
			walk(prefix+n.Name+"/", c)
		}
	}
	for _, r := range tree {
		walk("", r)
	}
	want := []string{"Notes", "Notes/work", "Notes/work/A", "Notes/B", "Temporary", "Trash", "Trash/C"}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Errorf("tree (-want +got):\n%s", diff)
	}
	if a := tree[0].Children[0].Children[0]; a.Note == nil || *a.Note != 0 {
		t.Errorf("A note index = %v, want 0", a.Note)
	}
}

func TestHandleNotes(t *testing.T) {
	_, get := newTestApp(t)

	status, body := get("/api/notes")
	if status != 200 {
		t.Fatalf("status = %d: %s", status, body)
	}
	notes := decode[[]noteSummary](t, body)
	var titles []string
	for _, n := range notes {
		titles = append(titles, n.Path)
	}
	if diff := cmp.Diff([]string{"Notes/work/A", "Notes/B", "Trash/C"}, titles); diff != "" {
		t.Errorf("notes (-want +got):\n%s", diff)
	}

	_, body = get("/api/notes?tag=x")
	if got := decode[[]noteSummary](t, body); len(got) != 2 {
		t.Errorf("notes tagged x = %d, want 2", len(got))
	}
	_, body = get("/api/notes?tag=missing")
	if strings.TrimSpace(string(body)) != "[]" {
		t.Errorf("notes tagged missing = %s, want []", body)
	}
}

func TestHandleGetNote(t *testing.T) {
	_, get := newTestApp(t)

	status, body := get("/api/notes/0")
	if status != 200 {
		t.Fatalf("status = %d: %s", status, body)
	}
	n := decode[noteDetail](t, body)
	if n.Title != "A" || !strings.HasPrefix(n.Content, "# Title") {
		t.Errorf("note = %+v", n)
	}
	if diff := cmp.Diff([]string{"x"}, n.Tags); diff != "" {
		t.Errorf("tags (-want +got):\n%s", diff)
	}

	for path, want := range map[string]int{
		"/api/notes/3":   404,
		"/api/notes/-1":  404,
		"/api/notes/abc": 400,
	} {
		if status, _ := get(path); status != want {
			t.Errorf("GET %s: status = %d, want %d", path, status, want)
		}
	}
}

func TestHandleNoteHTML(t *testing.T) {
	_, get := newTestApp(t)
	status, body := get("/api/notes/0/html")
	if status != 200 {
		t.Fatalf("status = %d: %s", status, body)
	}
	html := string(body)
	if !strings.Contains(html, "<h1>Title</h1>") || !strings.Contains(html, "<em>emphasis</em>") {
		t.Errorf("rendered html = %s", html)
	}
	if strings.Contains(html, "<script>") {
		t.Errorf("raw script tag rendered: %s", html)
	}
}

func TestHandleTagsAndVisual(t *testing.T) {
	_, get := newTestApp(t)

	_, body := get("/api/tags")
	tags := decode[[]tagEntry](t, body)
	if diff := cmp.Diff([]tagEntry{{Name: "x", Notes: []int{0, 1}}}, tags); diff != "" {
		t.Errorf("tags (-want +got):\n%s", diff)
	}

	_, body = get("/api/visual")
	v := decode[visualState](t, body)
	if v.ActiveTab != 1 || v.ActiveNote == nil || *v.ActiveNote != 1 {
		t.Errorf("visual = %+v", v)
	}
	if diff := cmp.Diff([]openEditor{{Note: 0, Position: 7}}, v.Open); diff != "" {
		t.Errorf("open editors (-want +got):\n%s", diff)
	}
}
