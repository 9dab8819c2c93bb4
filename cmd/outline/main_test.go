package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/outline/pkg/outline/internalerr"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

const salemNote = "---\nname: Salem\ntags: [port, coastal]\n---\n# Overview\nSalem is a port city.\nFeatures:\n- Busy harbor\n"

const salemConverted = "name:: Salem\ntags:: port, coastal\n\n- # Overview\n\t- [[Salem]] is a port city.\n\t- Features:\n\t\t- Busy harbor\n"

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := run(context.Background(), args, &out, &out)
	return out.String(), err
}

func writeNote(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func readNote(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestConvertFile(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "salem.md")
	out := filepath.Join(dir, "converted", "salem.md")
	writeNote(t, in, salemNote)

	stdout, err := execute(t, "convert", in, "--out", out)
	require.NoError(t, err)
	assert.Contains(t, stdout, "✓ "+in+" → "+out)
	assert.Contains(t, stdout, "Converted 1 of 1 notes")
	assert.Equal(t, salemConverted, readNote(t, out))
}

func TestConvertDirInPlace(t *testing.T) {
	dir := t.TempDir()
	writeNote(t, filepath.Join(dir, "a.md"), "# A\nBoston")
	writeNote(t, filepath.Join(dir, "sub", "b.md"), "# B")

	stdout, err := execute(t, "convert", dir)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Converted 2 of 2 notes")
	assert.Equal(t, "- # A\n\t- [[Boston]]\n", readNote(t, filepath.Join(dir, "a.md")))
	assert.Equal(t, "- # B\n", readNote(t, filepath.Join(dir, "sub", "b.md")))
}

func TestConvertMissingPath(t *testing.T) {
	_, err := execute(t, "convert", filepath.Join(t.TempDir(), "missing.md"))
	assert.Error(t, err)
}

func TestConvertFailureExitsWithErrFailed(t *testing.T) {
	dir := t.TempDir()
	out := t.TempDir()
	writeNote(t, filepath.Join(dir, "a.md"), "# A")
	require.NoError(t, os.MkdirAll(filepath.Join(out, "a.md"), 0755))

	stdout, err := execute(t, "convert", dir, "--out", out)
	assert.ErrorIs(t, err, errFailed)
	assert.Contains(t, stdout, "✗ "+filepath.Join(dir, "a.md"))
	assert.Contains(t, stdout, "1 failed")
}

func TestDryRun(t *testing.T) {
	in := filepath.Join(t.TempDir(), "salem.md")
	writeNote(t, in, salemNote)

	stdout, err := execute(t, "dry-run", in, "--entities")
	require.NoError(t, err)
	assert.Contains(t, stdout, salemConverted)
	assert.Contains(t, stdout, "Entities:")
	assert.Regexp(t, regexp.MustCompile(`locations\s+Salem \(\d+\)`), stdout)
	assert.Equal(t, salemNote, readNote(t, in))
}

func TestValidate(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.md")
	writeNote(t, good, salemConverted)

	stdout, err := execute(t, "validate", good)
	require.NoError(t, err)
	assert.Contains(t, stdout, "✓ "+good)
	assert.Contains(t, stdout, "1 of 1 notes valid, 0 errors, 0 warnings")

	writeNote(t, filepath.Join(dir, "raw.md"), "Type: NPC\n")
	stdout, err = execute(t, "validate", dir)
	assert.ErrorIs(t, err, errFailed)
	assert.Contains(t, stdout, "error: Line 1: Property should use '::' not ':'")
	assert.Contains(t, stdout, "warning: 1 lines without bullet points found")
	assert.Contains(t, stdout, "1 of 2 notes valid")
}

func TestTemplatesAndNew(t *testing.T) {
	stdout, err := execute(t, "templates")
	require.NoError(t, err)
	assert.Equal(t, "faction\nlocation\nnpc\n", stdout)

	out := filepath.Join(t.TempDir(), "npcs", "Athena.md")
	stdout, err = execute(t, "new", "npc", out, "--set", "role=Oracle", "--set", "faction=Coven Sisters")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Created "+out)

	note := readNote(t, out)
	assert.Contains(t, note, "name:: Athena\n")
	assert.Contains(t, note, "role:: Oracle\n")
	assert.Contains(t, note, "faction:: [[Coven Sisters]]\n")

	_, err = execute(t, "new", "dragon", out)
	assert.ErrorIs(t, err, internalerr.ErrTemplateNotFound)

	_, err = execute(t, "new", "npc", out, "--set", "novalue")
	assert.ErrorIs(t, err, internalerr.ErrInvalidInput)
}

func TestTemplatesDirSetting(t *testing.T) {
	dir := t.TempDir()
	writeNote(t, filepath.Join(dir, "ship.tmpl"), "- # {{.name}}")
	t.Setenv("OUTLINE_TEMPLATES_DIR", dir)

	stdout, err := execute(t, "templates")
	require.NoError(t, err)
	assert.Equal(t, "ship\n", stdout)
}

func TestImportHTML(t *testing.T) {
	dir := t.TempDir()
	page := filepath.Join(dir, "salem.html")
	writeNote(t, page, "<h1>Overview</h1><p>Salem is a port city.</p><ul><li>Busy harbor</li></ul>")

	stdout, err := execute(t, "import-html", page)
	require.NoError(t, err)
	assert.Equal(t, "# Overview\nSalem is a port city.\n- Busy harbor\n", stdout)

	out := filepath.Join(dir, "salem.md")
	_, err = execute(t, "import-html", page, "--convert", "--out", out)
	require.NoError(t, err)
	assert.Equal(t, "- # Overview\n\t- [[Salem]] is a port city.\n\t- Busy harbor\n", readNote(t, out))
}

func TestRunsRequireReportDB(t *testing.T) {
	_, err := execute(t, "runs")
	assert.ErrorIs(t, err, internalerr.ErrStoreUnavailable)
}

func TestRunHistory(t *testing.T) {
	dir := t.TempDir()
	writeNote(t, filepath.Join(dir, "notes", "a.md"), "# A")
	t.Setenv("OUTLINE_REPORT_DB", filepath.Join(dir, "runs.db"))

	_, err := execute(t, "convert", filepath.Join(dir, "notes"))
	require.NoError(t, err)

	stdout, err := execute(t, "runs")
	require.NoError(t, err)
	assert.Contains(t, stdout, "convert")
	assert.Contains(t, stdout, "1 files")

	id := regexp.MustCompile(`[0-9A-Z]{26}`).FindString(stdout)
	require.NotEmpty(t, id, stdout)

	stdout, err = execute(t, "run", id)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Run "+id)
	assert.Contains(t, stdout, "✓ "+filepath.Join(dir, "notes", "a.md"))

	_, err = execute(t, "run", "01ARZ3NDEKTSV4RRFFQ69G5FAV")
	assert.ErrorIs(t, err, internalerr.ErrNotFound)
}

func TestConfigFlag(t *testing.T) {
	dir := t.TempDir()
	vocab := filepath.Join(dir, "vocab.yaml")
	writeNote(t, vocab, "categories:\n  - category: ships\n    names: [Black Gull]\n")
	settings := filepath.Join(dir, "outline.yaml")
	writeNote(t, settings, "vocabulary: "+vocab+"\ncolor: false\n")

	in := filepath.Join(dir, "ship.md")
	writeNote(t, in, "# Log\nThe Black Gull left Salem.")

	stdout, err := execute(t, "--config", settings, "dry-run", in)
	require.NoError(t, err)
	assert.Contains(t, stdout, "\t- The [[Black Gull]] left Salem.")
}

func TestParseSets(t *testing.T) {
	data, err := parseSets([]string{"name=Salem", "region=North = Shore"})
	require.NoError(t, err)
	assert.Equal(t, "Salem", data["name"])
	assert.Equal(t, "North = Shore", data["region"])

	_, err = parseSets([]string{"=x"})
	assert.ErrorIs(t, err, internalerr.ErrInvalidInput)
}
