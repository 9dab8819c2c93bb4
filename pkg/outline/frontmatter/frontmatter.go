// Package frontmatter splits a leading YAML block off a note and renders its
// keys as ordered outliner properties.
//
// Parsing is soft-fail: a missing, unterminated or malformed block, or a
// block whose body is not a mapping, is reported as absent and the note is
// returned untouched so the block is processed as ordinary body text.
package frontmatter

import (
	"strings"

	"github.com/adrg/frontmatter"
	"gopkg.in/yaml.v3"
)

const delimiter = "---"

// yamlFormat restricts detection to the plain --- delimiters and decodes with
// yaml.v3 so mapping key order survives.
var yamlFormat = frontmatter.NewFormat(delimiter, delimiter, yaml.Unmarshal)

// Property is a single front matter key with its rendered value
type Property struct {
	Key   string
	Value string
}

// String renders the property in double-colon syntax
func (p Property) String() string {
	return p.Key + ":: " + p.Value
}

// Properties is an ordered set of front matter keys. A nil value means the
// note had no usable front matter.
type Properties []Property

// Get returns the rendered value for key
func (ps Properties) Get(key string) (string, bool) {
	for _, p := range ps {
		if p.Key == key {
			return p.Value, true
		}
	}
	return "", false
}

// Keys returns the keys in document order
func (ps Properties) Keys() []string {
	keys := make([]string, len(ps))
	for i, p := range ps {
		keys[i] = p.Key
	}
	return keys
}

// Split separates the front matter from the body. The block is honoured only
// when the note starts with the delimiter at its very first byte.
func Split(text string) (Properties, string) {
	if !strings.HasPrefix(text, delimiter) {
		return nil, text
	}

	var node yaml.Node
	body, err := frontmatter.Parse(strings.NewReader(text), &node, yamlFormat)
	if err != nil {
		return nil, text
	}

	props, ok := fromNode(&node)
	if !ok {
		return nil, text
	}
	return props, string(body)
}

// Parse decodes a front matter body (without delimiters)
func Parse(data []byte) (Properties, bool) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, false
	}
	return fromNode(&node)
}

func fromNode(node *yaml.Node) (Properties, bool) {
	if node.Kind == yaml.DocumentNode {
		if len(node.Content) == 0 {
			return nil, false
		}
		node = node.Content[0]
	}
	if node.Kind != yaml.MappingNode {
		return nil, false
	}

	props := make(Properties, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		props = append(props, Property{
			Key:   RenderValue(node.Content[i]),
			Value: RenderValue(node.Content[i+1]),
		})
	}
	return props, true
}

// RenderValue renders a YAML value on a single line: sequences are joined
// with ", ", mappings become a flow literal like {a: 1, b: [x, y]}, null is
// empty and other scalars keep their literal text.
func RenderValue(node *yaml.Node) string {
	if node == nil {
		return ""
	}

	switch node.Kind {
	case yaml.AliasNode:
		return RenderValue(node.Alias)
	case yaml.DocumentNode:
		if len(node.Content) == 0 {
			return ""
		}
		return RenderValue(node.Content[0])
	case yaml.SequenceNode:
		parts := make([]string, len(node.Content))
		for i, child := range node.Content {
			parts[i] = RenderValue(child)
		}
		return strings.Join(parts, ", ")
	case yaml.MappingNode:
		return renderMapping(node)
	case yaml.ScalarNode:
		if node.ShortTag() == "!!null" {
			return ""
		}
		return singleLine(node.Value)
	}
	return ""
}

func renderMapping(node *yaml.Node) string {
	out, err := yaml.Marshal(flowCopy(node))
	if err != nil {
		// Fall back to a hand-built literal; the value is informational only.
		parts := make([]string, 0, len(node.Content)/2)
		for i := 0; i+1 < len(node.Content); i += 2 {
			parts = append(parts, RenderValue(node.Content[i])+": "+RenderValue(node.Content[i+1]))
		}
		return "{" + strings.Join(parts, ", ") + "}"
	}
	return singleLine(string(out))
}

// flowCopy deep-copies node with flow style applied throughout and comments
// dropped, so the encoder emits a single inline literal.
func flowCopy(node *yaml.Node) *yaml.Node {
	if node == nil {
		return nil
	}
	if node.Kind == yaml.AliasNode {
		return flowCopy(node.Alias)
	}

	cp := &yaml.Node{
		Kind:  node.Kind,
		Tag:   node.Tag,
		Value: node.Value,
	}
	switch node.Kind {
	case yaml.MappingNode, yaml.SequenceNode:
		cp.Style = yaml.FlowStyle
	case yaml.ScalarNode:
		cp.Style = node.Style &^ (yaml.LiteralStyle | yaml.FoldedStyle)
	}
	for _, child := range node.Content {
		cp.Content = append(cp.Content, flowCopy(child))
	}
	return cp
}

func singleLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	parts := lines[:0]
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			parts = append(parts, line)
		}
	}
	return strings.Join(parts, " ")
}
