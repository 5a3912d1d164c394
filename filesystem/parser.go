// notebook/filesystem/parser.go
package filesystem

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vinizap/lumi/notebook/domain"
)

var ErrFrontmatter = errors.New("invalid frontmatter format")

var delimiter = []byte("---\n")

// Frontmatter is the YAML header of a markdown note file.
type Frontmatter struct {
	Title     string    `yaml:"title"`
	Icon      string    `yaml:"icon,omitempty"`
	CreatedAt time.Time `yaml:"created_at"`
	UpdatedAt time.Time `yaml:"updated_at"`
	Tags      []string  `yaml:"tags"`
}

// File is a parsed note file. HasFrontmatter is false for plain markdown,
// in which case Meta is zero and Content is the whole file.
type File struct {
	Path           string
	Meta           Frontmatter
	HasFrontmatter bool
	Content        string
}

func ReadNote(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Notes saved by Windows editors use CRLF line endings throughout.
	if bytes.HasPrefix(data, []byte("---\r\n")) {
		data = bytes.ReplaceAll(data, []byte("\r\n"), []byte("\n"))
	}

	file := &File{Path: path}
	header, body, ok, err := splitFrontmatter(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if !ok {
		file.Content = string(data)
		return file, nil
	}

	if err := yaml.Unmarshal(header, &file.Meta); err != nil {
		return nil, fmt.Errorf("failed to parse frontmatter of %s: %w", path, err)
	}
	file.HasFrontmatter = true
	file.Content = string(body)
	return file, nil
}

// splitFrontmatter separates a leading "---" block from the body. The blank
// line WriteNote puts after the closing delimiter is not part of the body.
func splitFrontmatter(data []byte) (header, body []byte, ok bool, err error) {
	if !bytes.HasPrefix(data, delimiter) {
		return nil, nil, false, nil
	}
	rest := data[len(delimiter):]

	var end int
	switch {
	case bytes.HasPrefix(rest, delimiter):
		end = 0
	default:
		i := bytes.Index(rest, []byte("\n---\n"))
		if i < 0 {
			if !bytes.HasSuffix(rest, []byte("\n---")) {
				return nil, nil, false, ErrFrontmatter
			}
			return rest[:len(rest)-len("---")], nil, true, nil
		}
		end = i + 1
	}

	header = rest[:end]
	body = rest[end+len(delimiter):]
	body = bytes.TrimPrefix(body, []byte("\n"))
	return header, body, true, nil
}

// WriteNote stores n as a markdown file with a YAML frontmatter header.
func WriteNote(path string, n *domain.Note) error {
	meta := Frontmatter{
		Title:     n.Title,
		Icon:      n.IconName,
		CreatedAt: n.CreatedAt,
		UpdatedAt: n.ModifiedAt,
		Tags:      []string{},
	}
	for _, t := range n.Tags() {
		meta.Tags = append(meta.Tags, t.Name)
	}

	var buf bytes.Buffer
	buf.Write(delimiter)

	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(&meta); err != nil {
		return fmt.Errorf("failed to encode frontmatter: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return fmt.Errorf("failed to encode frontmatter: %w", err)
	}

	buf.Write(delimiter)
	buf.WriteString("\n")
	buf.WriteString(n.Text)

	return os.WriteFile(path, buf.Bytes(), 0644)
}
