package templates

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

var ErrTemplateNotFound = errors.New("template not found")

// Blueprint is one section a template creates.
type Blueprint struct {
	Title   string `yaml:"title" json:"title"`
	Content string `yaml:"content" json:"content"`
}

// Template is a reusable response outline, e.g. a standard technical volume.
type Template struct {
	ID          string      `yaml:"id" json:"id"`
	Name        string      `yaml:"name" json:"name"`
	Description string      `yaml:"description" json:"description"`
	Sections    []Blueprint `yaml:"sections" json:"sections"`
}

type file struct {
	Templates []Template `yaml:"templates"`
}

// Library is an immutable, validated set of templates keyed by id.
type Library struct {
	byID map[string]Template
}

// Load reads a template library from a YAML file. A missing file yields an
// empty library so the server can run without one.
func Load(path string) (*Library, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Empty(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("templates: read %s: %w", path, err)
	}
	return Parse(data)
}

// Empty returns a library with no templates.
func Empty() *Library {
	return &Library{byID: map[string]Template{}}
}

func Parse(data []byte) (*Library, error) {
	var f file
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("templates: parse: %w", err)
	}
	if err := Validate(f.Templates); err != nil {
		return nil, err
	}
	lib := &Library{byID: make(map[string]Template, len(f.Templates))}
	for _, t := range f.Templates {
		t.ID = strings.TrimSpace(t.ID)
		lib.byID[t.ID] = t
	}
	return lib, nil
}

// Validate checks ids are present and unique and every blueprint has a title.
func Validate(ts []Template) error {
	seen := map[string]bool{}
	for i, t := range ts {
		id := strings.TrimSpace(t.ID)
		if id == "" {
			return fmt.Errorf("templates: entry %d: missing id", i)
		}
		if seen[id] {
			return fmt.Errorf("templates: duplicate id %q", id)
		}
		seen[id] = true
		if len(t.Sections) == 0 {
			return fmt.Errorf("templates: %q has no sections", id)
		}
		for j, b := range t.Sections {
			if strings.TrimSpace(b.Title) == "" {
				return fmt.Errorf("templates: %q section %d: missing title", id, j)
			}
		}
	}
	return nil
}

func (l *Library) Get(id string) (Template, error) {
	t, ok := l.byID[id]
	if !ok {
		return Template{}, fmt.Errorf("%w: %s", ErrTemplateNotFound, id)
	}
	return t, nil
}

// List returns all templates sorted by name.
func (l *Library) List() []Template {
	out := make([]Template, 0, len(l.byID))
	for _, t := range l.byID {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
