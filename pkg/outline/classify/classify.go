// Package classify tags single note lines with their structural kind.
//
// Classification is pure: the same line always yields the same Line, and no
// state is carried between calls. The stateful re-indentation happens in the
// format package, which switches over the Kind produced here.
package classify

import (
	"fmt"
	"regexp"
	"strings"
)

// Kind is the structural shape of a line
type Kind int

const (
	Blank       Kind = iota
	Header           // # Title, ## Title, ...
	ListSection      // Features:, Hooks:, ...
	Property         // key: value
	Bullet           // - item, * item
	Plain            // anything else
)

// String returns a string representation of the kind
func (k Kind) String() string {
	switch k {
	case Blank:
		return "blank"
	case Header:
		return "header"
	case ListSection:
		return "list-section"
	case Property:
		return "property"
	case Bullet:
		return "bullet"
	case Plain:
		return "plain"
	default:
		return "unknown"
	}
}

// Line is a classified input line
type Line struct {
	Kind Kind

	// Level is the number of '#' characters for headers
	Level int

	// Tabs is the count of leading tab characters on bullet lines
	Tabs int

	// Marker is the bullet character as written ('-' or '*')
	Marker byte

	// Text is the payload: header text, cleaned label, bullet content or
	// the trimmed line
	Text string

	// Raw is the line as given
	Raw string
}

// DefaultListSections are the label patterns that open a named list section.
// Each entry is a case-insensitive regular expression fragment matched
// against the whole label.
var DefaultListSections = []string{
	`Features?`,
	`Hooks?`,
	`Adventure Hooks?`,
	`Dangers?`,
	`Equipment`,
	`Abilities`,
	`Skills`,
	`Special Abilities`,
	`Conversation Starters`,
	`Plot Hooks?`,
	`Character Arc Opportunities`,
	`Risks?`,
	`Vulnerabilities`,
}

var (
	headerPattern   = regexp.MustCompile(`^(#+)\s+(\S.*)$`)
	propertyPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_ -]*?:\s+\S`)
	labelLead       = regexp.MustCompile(`^-\s*`)
	labelTrail      = regexp.MustCompile(`\s*:+\s*$`)
)

// Classifier tags lines. It is safe for concurrent use.
type Classifier struct {
	sections *regexp.Regexp
	labels   []string
}

// New creates a classifier recognizing the given list-section labels.
// An empty label set disables list-section detection.
func New(labels []string) (*Classifier, error) {
	c := &Classifier{labels: append([]string(nil), labels...)}

	var parts []string
	for _, label := range labels {
		label = strings.TrimSpace(label)
		if label == "" {
			continue
		}
		if _, err := regexp.Compile(label); err != nil {
			return nil, fmt.Errorf("list section %q: %w", label, err)
		}
		parts = append(parts, "(?:"+label+")")
	}
	if len(parts) == 0 {
		return c, nil
	}

	pattern := `(?i)^-?\s*(?:` + strings.Join(parts, "|") + `)\s*:+\s*$`
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("list sections: %w", err)
	}
	c.sections = re
	return c, nil
}

// Default returns a classifier using DefaultListSections
func Default() *Classifier {
	c, err := New(DefaultListSections)
	if err != nil {
		panic(err)
	}
	return c
}

// Labels returns the configured list-section labels
func (c *Classifier) Labels() []string {
	return append([]string(nil), c.labels...)
}

// IsListSection reports whether the line is a recognized list-section label
func (c *Classifier) IsListSection(line string) bool {
	return c.sections != nil && c.sections.MatchString(strings.TrimSpace(line))
}

// Classify tags a single line. Checks run in precedence order: blank,
// header, list section, property, bullet, plain.
func (c *Classifier) Classify(line string) Line {
	line = strings.TrimSuffix(line, "\r")
	trimmed := strings.TrimSpace(line)
	out := Line{Raw: line}

	if trimmed == "" {
		out.Kind = Blank
		return out
	}

	if m := headerPattern.FindStringSubmatch(line); m != nil {
		out.Kind = Header
		out.Level = len(m[1])
		out.Text = strings.TrimRight(m[2], " \t")
		return out
	}

	if c.IsListSection(trimmed) {
		label := labelLead.ReplaceAllString(trimmed, "")
		label = labelTrail.ReplaceAllString(label, "")
		out.Kind = ListSection
		out.Text = label + ":"
		return out
	}

	if propertyPattern.MatchString(trimmed) {
		out.Kind = Property
		out.Text = trimmed
		return out
	}

	if marker, content, ok := splitBullet(trimmed); ok {
		out.Kind = Bullet
		out.Marker = marker
		out.Text = content
		out.Tabs = len(line) - len(strings.TrimLeft(line, "\t"))
		return out
	}

	out.Kind = Plain
	out.Text = trimmed
	return out
}

// splitBullet strips a leading "- " or "* " marker
func splitBullet(trimmed string) (byte, string, bool) {
	if trimmed == "-" || trimmed == "*" {
		return trimmed[0], "", true
	}
	if len(trimmed) < 2 || trimmed[1] != ' ' {
		return 0, "", false
	}
	switch trimmed[0] {
	case '-', '*':
		return trimmed[0], strings.TrimLeft(trimmed[2:], " \t"), true
	}
	return 0, "", false
}
