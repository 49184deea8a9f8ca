package core

import (
	"fmt"
	"sort"
	"strings"
)

// LanguageSchema names the entity types and child collections used to build
// a story in one language's namespace.
type LanguageSchema struct {
	Language   string // "Marathi"
	ThemeType  string // "Marathi themes"
	ThemeLinks string // "marathi_themes"
	TagType    string // "Marathi tags"
	TagLinks   string // "marathi_tags"
	RTL        bool   // text is written right to left
}

// Direction returns the HTML dir attribute value for the language.
func (l LanguageSchema) Direction() string {
	if l.RTL {
		return "rtl"
	}
	return "ltr"
}

// Languages is an immutable lookup from language label to schema.
type Languages struct {
	byLabel map[string]LanguageSchema
}

// NewLanguages builds a lookup from the given schemas.
// Labels must be non-empty and unique.
func NewLanguages(schemas ...LanguageSchema) (*Languages, error) {
	byLabel := make(map[string]LanguageSchema, len(schemas))
	for _, s := range schemas {
		if s.Language == "" {
			return nil, fmt.Errorf("language schema with empty label")
		}
		if s.ThemeType == "" || s.ThemeLinks == "" || s.TagType == "" || s.TagLinks == "" {
			return nil, fmt.Errorf("language schema %q is incomplete", s.Language)
		}
		if _, exists := byLabel[s.Language]; exists {
			return nil, fmt.Errorf("language already registered: %s", s.Language)
		}
		byLabel[s.Language] = s
	}
	return &Languages{byLabel: byLabel}, nil
}

// DefaultLanguages returns the four languages stories are published in.
func DefaultLanguages() *Languages {
	var schemas []LanguageSchema
	for _, label := range []string{"English", "Kannada", "Marathi", "Urdu"} {
		lower := strings.ToLower(label)
		schemas = append(schemas, LanguageSchema{
			Language:   label,
			ThemeType:  label + " themes",
			ThemeLinks: lower + "_themes",
			TagType:    label + " tags",
			TagLinks:   lower + "_tags",
			RTL:        label == "Urdu",
		})
	}

	langs, err := NewLanguages(schemas...)
	if err != nil {
		panic(err)
	}
	return langs
}

// Lookup returns the schema for label.
// Returns *UnsupportedLanguageError if the label is unknown.
func (l *Languages) Lookup(label string) (LanguageSchema, error) {
	s, ok := l.byLabel[label]
	if !ok {
		return LanguageSchema{}, &UnsupportedLanguageError{Language: label}
	}
	return s, nil
}

// Labels returns all supported labels, sorted.
func (l *Languages) Labels() []string {
	labels := make([]string, 0, len(l.byLabel))
	for label := range l.byLabel {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}

// All returns every schema sorted by label.
func (l *Languages) All() []LanguageSchema {
	out := make([]LanguageSchema, 0, len(l.byLabel))
	for _, label := range l.Labels() {
		out = append(out, l.byLabel[label])
	}
	return out
}

// Len returns the number of supported languages.
func (l *Languages) Len() int {
	return len(l.byLabel)
}
