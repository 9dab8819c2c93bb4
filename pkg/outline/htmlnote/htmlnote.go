// Package htmlnote converts HTML note exports into the plain note dialect
// the outline pipeline consumes.
package htmlnote

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"gopkg.in/yaml.v3"
)

var headerLevels = map[atom.Atom]int{
	atom.H1: 1, atom.H2: 2, atom.H3: 3,
	atom.H4: 4, atom.H5: 5, atom.H6: 6,
}

var blocks = map[atom.Atom]bool{
	atom.P: true, atom.Div: true, atom.Section: true, atom.Article: true,
	atom.Blockquote: true, atom.Pre: true, atom.Tr: true, atom.Dt: true,
	atom.Dd: true, atom.Main: true, atom.Header: true, atom.Footer: true,
}

var skipped = map[atom.Atom]bool{
	atom.Script: true, atom.Style: true, atom.Head: true,
	atom.Noscript: true, atom.Template: true,
}

// meta is emitted as front matter when the document has a title or
// description
type meta struct {
	Title       string `yaml:"title,omitempty"`
	Description string `yaml:"description,omitempty"`
}

// ConvertFile converts the HTML file at path
func ConvertFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	return Convert(f)
}

// Convert parses HTML and renders it as note lines: h1-h6 become '#'
// headers, list items become '- ' bullets indented one tab per enclosing
// list, block elements and <br> end a line. The <title> and description
// meta tag become front matter.
func Convert(r io.Reader) (string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return "", fmt.Errorf("parsing HTML: %w", err)
	}

	var c converter
	c.walk(doc)
	c.flush()

	var b strings.Builder
	m := extractMeta(doc)
	if m.Title != "" || m.Description != "" {
		front, err := yaml.Marshal(m)
		if err != nil {
			return "", fmt.Errorf("encoding front matter: %w", err)
		}
		b.WriteString("---\n")
		b.Write(front)
		b.WriteString("---\n")
	}
	for _, line := range c.lines {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String(), nil
}

type converter struct {
	lines  []string
	buf    strings.Builder
	depth  int    // enclosing ul/ol count
	prefix string // bullet prefix of the enclosing li
}

// flush emits the buffered inline text as one line
func (c *converter) flush() {
	text := collapse(c.buf.String())
	c.buf.Reset()
	if text == "" {
		return
	}
	c.lines = append(c.lines, c.prefix+text)
}

func (c *converter) children(n *html.Node) {
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		c.walk(child)
	}
}

func (c *converter) walk(n *html.Node) {
	switch n.Type {
	case html.TextNode:
		c.buf.WriteString(n.Data)
		return
	case html.ElementNode:
	default:
		c.children(n)
		return
	}

	if skipped[n.DataAtom] {
		return
	}

	if level, ok := headerLevels[n.DataAtom]; ok {
		c.flush()
		if text := collapse(textContent(n)); text != "" {
			c.lines = append(c.lines, strings.Repeat("#", level)+" "+text)
		}
		return
	}

	switch n.DataAtom {
	case atom.Br:
		c.flush()
	case atom.Ul, atom.Ol:
		c.flush()
		c.depth++
		c.children(n)
		c.flush()
		c.depth--
	case atom.Li:
		c.flush()
		saved := c.prefix
		c.prefix = strings.Repeat("\t", max(c.depth-1, 0)) + "- "
		c.children(n)
		c.flush()
		c.prefix = saved
	default:
		if blocks[n.DataAtom] {
			c.flush()
			c.children(n)
			c.flush()
			return
		}
		c.children(n)
	}
}

func extractMeta(doc *html.Node) meta {
	var m meta
	var visit func(*html.Node)
	visit = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.DataAtom {
			case atom.Title:
				if m.Title == "" {
					m.Title = collapse(textContent(n))
				}
			case atom.Meta:
				if strings.EqualFold(attr(n, "name"), "description") && m.Description == "" {
					m.Description = collapse(attr(n, "content"))
				}
			case atom.Body:
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}
	visit(doc)
	return m
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func textContent(n *html.Node) string {
	var b strings.Builder
	var visit func(*html.Node)
	visit = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			return
		}
		if n.Type == html.ElementNode && skipped[n.DataAtom] {
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}
	visit(n)
	return b.String()
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
