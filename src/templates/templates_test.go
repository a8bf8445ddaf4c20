package templates

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
templates:
  - id: tech-volume
    name: Technical Volume
    description: Standard federal technical volume
    sections:
      - title: Executive Summary
        content: "<p>Summarize the approach.</p>"
      - title: Technical Approach
      - title: Management Plan
  - id: past-performance
    name: Past Performance
    sections:
      - title: Contract References
`

func TestParse(t *testing.T) {
	lib, err := Parse([]byte(sampleYAML))
	require.NoError(t, err)

	tv, err := lib.Get("tech-volume")
	require.NoError(t, err)
	require.Len(t, tv.Sections, 3)
	assert.Equal(t, "Executive Summary", tv.Sections[0].Title)
	assert.Equal(t, "<p>Summarize the approach.</p>", tv.Sections[0].Content)

	list := lib.List()
	require.Len(t, list, 2)
	assert.Equal(t, "Past Performance", list[0].Name)

	_, err = lib.Get("nope")
	assert.ErrorIs(t, err, ErrTemplateNotFound)
}

func TestParse_TrimsIDs(t *testing.T) {
	lib, err := Parse([]byte(`
templates:
  - id: " std "
    name: Standard
    sections:
      - title: Overview
`))
	require.NoError(t, err)

	tpl, err := lib.Get("std")
	require.NoError(t, err)
	assert.Equal(t, "std", tpl.ID)
	assert.Equal(t, "std", lib.List()[0].ID)
}

func TestParse_RejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"duplicate id": `
templates:
  - id: a
    sections: [{title: x}]
  - id: a
    sections: [{title: y}]
`,
		"missing title": `
templates:
  - id: a
    sections: [{content: body}]
`,
		"no sections": `
templates:
  - id: a
`,
		"unknown field": `
templates:
  - id: a
    colour: red
    sections: [{title: x}]
`,
	}
	for name, doc := range cases {
		_, err := Parse([]byte(doc))
		assert.Error(t, err, name)
	}
}

func TestLoad_MissingFileIsEmpty(t *testing.T) {
	lib, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Empty(t, lib.List())
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "templates.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleYAML), 0o644))

	lib, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, lib.List(), 2)
}
