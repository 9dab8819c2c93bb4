package config

import (
	"fmt"

	"github.com/cognicore/outline/pkg/outline/annotate"
	"github.com/cognicore/outline/pkg/outline/classify"
	"github.com/cognicore/outline/pkg/outline/format"
	"github.com/cognicore/outline/pkg/outline/internalerr"
	"github.com/cognicore/outline/pkg/outline/validate"
)

// Loader loads the vocabulary file and constructs the pipeline components
type Loader struct {
	VocabularyPath string
}

// Components holds the constructed pipeline stages
type Components struct {
	Classifier *classify.Classifier
	Formatter  *format.Formatter
	Annotator  *annotate.Annotator
	Validator  *validate.Validator
}

// Load reads the vocabulary and returns initialized components.
// With no path the built-in vocabulary is used.
func (l *Loader) Load() (*Components, error) {
	vocab := DefaultVocabulary()
	if l.VocabularyPath != "" {
		loaded, err := LoadVocabulary(l.VocabularyPath)
		if err != nil {
			return nil, fmt.Errorf("load vocabulary: %w", err)
		}
		vocab = loaded
	}
	return Build(vocab)
}

// Build constructs components from an in-memory vocabulary
func Build(vocab *Vocabulary) (*Components, error) {
	classifier, err := classify.New(vocab.ListSections)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", internalerr.ErrInvalidConfig, err)
	}

	annotator := annotate.New()
	for _, spec := range vocab.Categories {
		if err := annotator.AddCategory(spec.Name, spec.Names); err != nil {
			return nil, fmt.Errorf("%w: %v", internalerr.ErrInvalidConfig, err)
		}
	}

	return &Components{
		Classifier: classifier,
		Formatter:  format.New(classifier),
		Annotator:  annotator,
		Validator:  validate.New(),
	}, nil
}
