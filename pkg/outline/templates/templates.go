// Package templates renders new notes from text/template files.
//
// Templates are named by their file name without the .tmpl extension and
// see three helpers: link wraps text in [[ ]], tag makes a #lower-hyphen
// tag and property writes a "key:: value" line.
package templates

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"regexp"
	"sort"
	"strings"
	"text/template"

	"github.com/cognicore/outline/internal/notes"
	"github.com/cognicore/outline/pkg/outline/internalerr"
)

const ext = ".tmpl"

//go:embed builtin/*.tmpl
var builtinFS embed.FS

// Data is the set of values a template is rendered with. Missing keys
// render as empty strings.
type Data map[string]string

// Engine renders templates from a file system
type Engine struct {
	fsys fs.FS
}

// New creates an engine over fsys. A nil fsys means the built-in templates.
func New(fsys fs.FS) *Engine {
	if fsys == nil {
		fsys = Builtin()
	}
	return &Engine{fsys: fsys}
}

// Dir creates an engine reading templates from a directory
func Dir(dir string) *Engine {
	return New(os.DirFS(dir))
}

// Builtin returns the embedded location, npc and faction templates
func Builtin() fs.FS {
	sub, err := fs.Sub(builtinFS, "builtin")
	if err != nil {
		panic(err)
	}
	return sub
}

// Available returns the sorted template names
func (e *Engine) Available() ([]string, error) {
	matches, err := fs.Glob(e.fsys, "*"+ext)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, strings.TrimSuffix(m, ext))
	}
	sort.Strings(names)
	return names, nil
}

// Render executes the named template
func (e *Engine) Render(name string, data Data) (string, error) {
	if name == "" || strings.ContainsAny(name, `/\`) || name != path.Clean(name) {
		return "", fmt.Errorf("%w: %q", internalerr.ErrTemplateNotFound, name)
	}

	src, err := fs.ReadFile(e.fsys, name+ext)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", internalerr.ErrTemplateNotFound, name)
		}
		return "", fmt.Errorf("read template %s: %w", name, err)
	}

	tmpl, err := template.New(name).
		Option("missingkey=zero").
		Funcs(Funcs()).
		Parse(string(src))
	if err != nil {
		return "", fmt.Errorf("parse template %s: %w", name, err)
	}

	if data == nil {
		data = Data{}
	}
	var b strings.Builder
	if err := tmpl.Execute(&b, data); err != nil {
		return "", fmt.Errorf("render template %s: %w", name, err)
	}
	return b.String(), nil
}

// Create renders the named template and writes it to out
func (e *Engine) Create(name, out string, data Data) error {
	content, err := e.Render(name, data)
	if err != nil {
		return err
	}
	return notes.Write(out, content)
}

var whitespace = regexp.MustCompile(`\s+`)

// Funcs returns the helper functions available to templates
func Funcs() template.FuncMap {
	return template.FuncMap{
		"link":     Link,
		"tag":      Tag,
		"property": Property,
	}
}

// Link wraps text in double brackets
func Link(text string) string {
	return "[[" + text + "]]"
}

// Tag turns text into a #lower-hyphenated tag
func Tag(text string) string {
	return "#" + whitespace.ReplaceAllString(strings.ToLower(strings.TrimSpace(text)), "-")
}

// Property renders a double-colon property line
func Property(key, value string) string {
	return key + ":: " + value
}
