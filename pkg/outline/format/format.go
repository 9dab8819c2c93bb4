// Package format rebuilds a note's hierarchy as tab-indented outliner bullets.
//
// The formatter is a left-to-right fold over classified lines. Its only
// state is the heading indent stack and the list-section flag, both held in
// a per-call foldState, so a Formatter can be shared between goroutines.
package format

import (
	"strings"

	"github.com/cognicore/outline/pkg/outline/classify"
	"github.com/cognicore/outline/pkg/outline/frontmatter"
)

// Line is a single output line: Depth tab characters followed by Text.
// Blank lines have an empty Text and zero Depth.
type Line struct {
	Depth int
	Text  string
}

// String renders the line with tab indentation
func (l Line) String() string {
	if l.Text == "" {
		return ""
	}
	return strings.Repeat("\t", l.Depth) + l.Text
}

// Formatter converts note lines into outliner bullets
type Formatter struct {
	classifier *classify.Classifier
}

// New creates a formatter using the given classifier.
// A nil classifier means classify.Default().
func New(classifier *classify.Classifier) *Formatter {
	if classifier == nil {
		classifier = classify.Default()
	}
	return &Formatter{classifier: classifier}
}

// foldState carries the indent stack and list-section flag across lines.
// stack[L-1] holds the depth opened by the most recent level-L header.
type foldState struct {
	stack  []int
	inList bool
}

// depth is where non-header content of the current section goes
func (s *foldState) depth() int {
	return len(s.stack)
}

// contentDepth adds the list-section bump
func (s *foldState) contentDepth() int {
	if s.inList {
		return len(s.stack) + 1
	}
	return len(s.stack)
}

// openHeader drops every entry at or below level and records level.
// Missing parent levels are padded so len(stack) == level afterwards.
func (s *foldState) openHeader(level int) {
	if len(s.stack) > level-1 {
		s.stack = s.stack[:level-1]
	}
	for len(s.stack) < level-1 {
		s.stack = append(s.stack, 0)
	}
	s.stack = append(s.stack, level)
}

// Format converts body lines into output lines. When props is non-nil the
// properties are emitted first in double-colon syntax followed by one blank
// line. Format never fails; unknown shapes become plain bullets.
func (f *Formatter) Format(body []string, props frontmatter.Properties) []Line {
	out := make([]Line, 0, len(body)+len(props)+1)

	if props != nil {
		for _, p := range props {
			out = append(out, Line{Text: p.String()})
		}
		out = append(out, Line{})
	}

	var st foldState
	for _, raw := range body {
		out = append(out, f.step(&st, f.classifier.Classify(raw)))
	}
	return out
}

func (f *Formatter) step(st *foldState, line classify.Line) Line {
	switch line.Kind {
	case classify.Blank:
		return Line{}

	case classify.Header:
		st.openHeader(line.Level)
		st.inList = false
		return Line{
			Depth: line.Level - 1,
			Text:  "- " + strings.Repeat("#", line.Level) + " " + line.Text,
		}

	case classify.ListSection:
		st.inList = true
		return Line{Depth: st.depth(), Text: "- " + line.Text}

	case classify.Property:
		st.inList = false
		return Line{Depth: st.depth(), Text: "- " + line.Text}

	case classify.Bullet:
		return Line{Depth: st.contentDepth() + line.Tabs, Text: "- " + line.Text}

	default:
		return Line{Depth: st.contentDepth(), Text: "- " + line.Text}
	}
}

// FormatText splits off any front matter, formats the body and joins the
// result with newlines.
func (f *Formatter) FormatText(text string) string {
	props, body := frontmatter.Split(text)
	return Join(f.Format(SplitLines(body), props))
}

// SplitLines splits a document into lines. A single trailing newline does
// not produce an extra empty line.
func SplitLines(text string) []string {
	if text == "" {
		return nil
	}
	text = strings.TrimSuffix(text, "\n")
	return strings.Split(text, "\n")
}

// Join renders output lines separated by newlines
func Join(lines []Line) string {
	var b strings.Builder
	for i, l := range lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(l.String())
	}
	return b.String()
}
