// Package annotate wraps known entity names in [[double bracket]] links.
//
// Categories are applied in declaration order. A match is left alone when
// it already sits inside a link, so running the annotator over its own
// output changes nothing.
package annotate

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode"
)

// Spec declares one entity category and its vocabulary
type Spec struct {
	Name  string   `yaml:"category"`
	Names []string `yaml:"names"`
}

// DefaultCategories is the built-in vocabulary, in application order
var DefaultCategories = []Spec{
	{Name: "locations", Names: []string{
		"Salem", "Lynn Woods", "Boston", "Mascas", "Eliozor", "Narrow Sectarian",
		"Saljaimer", "Estonia", "Grimore", "Jorbundo", "Ice Goblin Mountain", "Kepharion",
	}},
	{Name: "npcs", Names: []string{
		"Beverly Martinez", "Madison Scott", "Athena", "Lord Krolus", "King Everec",
		"Princess Katzen", "Queen Elsuon", "Trebor Nodrog", "Botan", "Ikerdal", "King Shabaku",
	}},
	{Name: "factions", Names: []string{
		"Order of Krolus", "Coven Sisters", "The Heretical", "House of Blackrock Crow",
	}},
	{Name: "concepts", Names: []string{
		"xenocortex", "bio-crystalline", "pattern-locking", "dual cognition",
	}},
}

var (
	openRun      = regexp.MustCompile(`\[{3,}`)
	closeRun     = regexp.MustCompile(`\]{3,}`)
	linkSpan     = regexp.MustCompile(`\[\[.*?\]\]`)
	propertyLine = regexp.MustCompile(`^\w[\w -]*::`)
)

// Category is a compiled entity category
type Category struct {
	Name    string
	Pattern *regexp.Regexp
	names   []string
}

// Names returns the vocabulary of the category
func (c Category) Names() []string {
	return append([]string(nil), c.names...)
}

// Entity is a distinct entity name found in a text
type Entity struct {
	Category string
	Name     string
	Count    int
}

// Annotator links entity names. It is safe for concurrent use once built.
type Annotator struct {
	categories []Category
}

// New creates an annotator with no categories
func New() *Annotator {
	return &Annotator{}
}

// Default returns an annotator loaded with DefaultCategories
func Default() *Annotator {
	a := New()
	for _, spec := range DefaultCategories {
		if err := a.AddCategory(spec.Name, spec.Names); err != nil {
			panic(err)
		}
	}
	return a
}

// AddCategory appends a category. Categories added later are applied later.
// Names are matched case-insensitively on word boundaries, longest first;
// a space or hyphen inside a name matches either separator.
func (a *Annotator) AddCategory(name string, names []string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("category name is required")
	}

	cleaned := make([]string, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		key := strings.ToLower(n)
		if n == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		cleaned = append(cleaned, n)
	}

	cat := Category{Name: name, names: cleaned}
	if len(cleaned) > 0 {
		re, err := compile(cleaned)
		if err != nil {
			return fmt.Errorf("category %s: %w", name, err)
		}
		cat.Pattern = re
	}
	a.categories = append(a.categories, cat)
	return nil
}

// Categories returns the categories in application order
func (a *Annotator) Categories() []Category {
	return append([]Category(nil), a.categories...)
}

func compile(names []string) (*regexp.Regexp, error) {
	sorted := append([]string(nil), names...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return len(sorted[i]) > len(sorted[j])
	})

	alts := make([]string, len(sorted))
	for i, n := range sorted {
		alts[i] = namePattern(n)
	}
	return regexp.Compile(`(?i)(?:` + strings.Join(alts, "|") + `)`)
}

// namePattern escapes a name, loosens its separators and adds word
// boundaries on the sides that end in a word character.
func namePattern(name string) string {
	var b strings.Builder
	runes := []rune(name)
	if isWord(runes[0]) {
		b.WriteString(`\b`)
	}
	for _, r := range runes {
		if r == ' ' || r == '-' {
			b.WriteString(`[- ]`)
			continue
		}
		b.WriteString(regexp.QuoteMeta(string(r)))
	}
	if isWord(runes[len(runes)-1]) {
		b.WriteString(`\b`)
	}
	return b.String()
}

func isWord(r rune) bool {
	return r == '_' || (r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)))
}

// Annotate links every unlinked entity occurrence and then collapses
// bracket runs longer than two. Lines holding double-colon properties are
// left as they are.
func (a *Annotator) Annotate(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if propertyLine.MatchString(line) {
			continue
		}
		for _, cat := range a.categories {
			if cat.Pattern == nil {
				continue
			}
			line = linkAll(line, cat.Pattern)
		}
		lines[i] = line
	}

	out := strings.Join(lines, "\n")
	out = openRun.ReplaceAllString(out, "[[")
	out = closeRun.ReplaceAllString(out, "]]")
	return out
}

func linkAll(line string, pattern *regexp.Regexp) string {
	matches := pattern.FindAllStringIndex(line, -1)
	if len(matches) == 0 {
		return line
	}
	spans := linkSpan.FindAllStringIndex(line, -1)

	var b strings.Builder
	last := 0
	for _, m := range matches {
		if alreadyLinked(line, m[0], m[1], spans) {
			continue
		}
		b.WriteString(line[last:m[0]])
		b.WriteString("[[")
		b.WriteString(line[m[0]:m[1]])
		b.WriteString("]]")
		last = m[1]
	}
	if last == 0 {
		return line
	}
	b.WriteString(line[last:])
	return b.String()
}

// alreadyLinked checks the match at its own position: brackets directly
// around it, or an enclosing [[...]] span.
func alreadyLinked(line string, start, end int, spans [][]int) bool {
	if start >= 2 && line[start-2:start] == "[[" {
		return true
	}
	if end+2 <= len(line) && line[end:end+2] == "]]" {
		return true
	}
	for _, s := range spans {
		if s[0] <= start && end <= s[1] {
			return true
		}
	}
	return false
}

// Matches lists the distinct entity names found in text, per category in
// application order. Names are grouped case-insensitively and reported in
// the form first seen.
func (a *Annotator) Matches(text string) []Entity {
	var found []Entity
	for _, cat := range a.categories {
		if cat.Pattern == nil {
			continue
		}
		index := make(map[string]int)
		for _, m := range cat.Pattern.FindAllString(text, -1) {
			key := strings.ToLower(m)
			if i, ok := index[key]; ok {
				found[i].Count++
				continue
			}
			index[key] = len(found)
			found = append(found, Entity{Category: cat.Name, Name: m, Count: 1})
		}
	}
	return found
}
