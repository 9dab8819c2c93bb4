package templates

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/outline/pkg/outline/internalerr"
	"github.com/cognicore/outline/pkg/outline/validate"
)

func TestBuiltinAvailable(t *testing.T) {
	names, err := New(nil).Available()
	require.NoError(t, err)
	assert.Equal(t, []string{"faction", "location", "npc"}, names)
}

func TestRenderLocation(t *testing.T) {
	out, err := New(nil).Render("location", Data{"name": "Salem", "region": "Essex"})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "type:: location\nname:: Salem\nregion:: [[Essex]]\ntags:: #location\n\n- # Salem\n"), out)
	assert.Contains(t, out, "\t\t- Features:\n\t\t\t- Notable landmark\n")
}

func TestRenderOmitsEmptyOptionalProperties(t *testing.T) {
	out, err := New(nil).Render("npc", Data{"name": "Athena"})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "type:: npc\nname:: Athena\ntags:: #npc\n\n"), out)
	assert.NotContains(t, out, "role::")
	assert.NotContains(t, out, "<no value>")
}

func TestBuiltinsAreValidNotes(t *testing.T) {
	engine := New(nil)
	names, err := engine.Available()
	require.NoError(t, err)

	v := validate.New()
	for _, name := range names {
		out, err := engine.Render(name, Data{"name": "Test " + name, "leader": "Lord Krolus", "faction": "Order of Krolus"})
		require.NoError(t, err, name)

		res := v.Validate(out)
		assert.True(t, res.Valid, "%s: %v", name, res.Errors)
		assert.Empty(t, res.Warnings, name)
	}
}

func TestRenderNotFound(t *testing.T) {
	engine := New(nil)

	for _, name := range []string{"dragon", "", "../npc", "sub/npc"} {
		_, err := engine.Render(name, nil)
		assert.ErrorIs(t, err, internalerr.ErrTemplateNotFound, name)
	}
}

func TestCustomFS(t *testing.T) {
	fsys := fstest.MapFS{
		"ship.tmpl":   {Data: []byte(`{{property "type" "ship"}}` + "\n- # {{.name}}\n\t- Captain {{link .captain}} {{tag .class}}")},
		"notes.txt":   {Data: []byte("ignored")},
		"broken.tmpl": {Data: []byte("{{if}")},
	}
	engine := New(fsys)

	names, err := engine.Available()
	require.NoError(t, err)
	assert.Equal(t, []string{"broken", "ship"}, names)

	out, err := engine.Render("ship", Data{"name": "Black Gull", "captain": "Mara Vane", "class": "Deep  Water Sloop"})
	require.NoError(t, err)
	assert.Equal(t, "type:: ship\n- # Black Gull\n\t- Captain [[Mara Vane]] #deep-water-sloop", out)

	_, err = engine.Render("broken", nil)
	require.Error(t, err)
	assert.NotErrorIs(t, err, internalerr.ErrTemplateNotFound)
}

func TestDirEngine(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "quest.tmpl"), []byte("- # {{.name}}"), 0644))

	out, err := Dir(dir).Render("quest", Data{"name": "Find the Gull"})
	require.NoError(t, err)
	assert.Equal(t, "- # Find the Gull", out)
}

func TestCreate(t *testing.T) {
	out := filepath.Join(t.TempDir(), "npcs", "athena.md")

	require.NoError(t, New(nil).Create("npc", out, Data{"name": "Athena"}))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "type:: npc\n"))
	assert.True(t, strings.HasSuffix(string(data), "\n"))

	err = New(nil).Create("dragon", out, nil)
	assert.ErrorIs(t, err, internalerr.ErrTemplateNotFound)
}

func TestHelpers(t *testing.T) {
	assert.Equal(t, "[[Salem]]", Link("Salem"))
	assert.Equal(t, "#lynn-woods", Tag(" Lynn Woods "))
	assert.Equal(t, "type:: npc", Property("type", "npc"))
}
