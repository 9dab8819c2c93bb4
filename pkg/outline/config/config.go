package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/outline/pkg/outline/annotate"
	"github.com/cognicore/outline/pkg/outline/classify"
)

// Vocabulary is the data the pipeline is parameterized by: entity
// categories in application order and the list-section labels.
//
//	categories:
//	  - category: locations
//	    names: [Salem, Boston]
//	list_sections:
//	  - Features?
//	  - Hooks?
type Vocabulary struct {
	Categories   []annotate.Spec `yaml:"categories"`
	ListSections []string        `yaml:"list_sections"`
}

// DefaultVocabulary returns the built-in categories and list sections
func DefaultVocabulary() *Vocabulary {
	v := &Vocabulary{
		ListSections: append([]string(nil), classify.DefaultListSections...),
	}
	for _, spec := range annotate.DefaultCategories {
		v.Categories = append(v.Categories, annotate.Spec{
			Name:  spec.Name,
			Names: append([]string(nil), spec.Names...),
		})
	}
	return v
}

// LoadVocabulary loads a vocabulary from a YAML file. A file that leaves
// list_sections out gets the default labels.
func LoadVocabulary(path string) (*Vocabulary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var vocab Vocabulary
	if err := yaml.Unmarshal(data, &vocab); err != nil {
		return nil, err
	}

	for i, c := range vocab.Categories {
		if c.Name == "" {
			return nil, fmt.Errorf("category %d has no name", i+1)
		}
	}
	if vocab.ListSections == nil {
		vocab.ListSections = append([]string(nil), classify.DefaultListSections...)
	}

	return &vocab, nil
}
