package core

import (
	"errors"
	"reflect"
	"testing"
)

func TestDefaultLanguages(t *testing.T) {
	langs := DefaultLanguages()

	if got := langs.Labels(); !reflect.DeepEqual(got, []string{"English", "Kannada", "Marathi", "Urdu"}) {
		t.Fatalf("Labels() = %v", got)
	}

	tests := []struct {
		label string
		want  LanguageSchema
	}{
		{"English", LanguageSchema{"English", "English themes", "english_themes", "English tags", "english_tags", false}},
		{"Kannada", LanguageSchema{"Kannada", "Kannada themes", "kannada_themes", "Kannada tags", "kannada_tags", false}},
		{"Marathi", LanguageSchema{"Marathi", "Marathi themes", "marathi_themes", "Marathi tags", "marathi_tags", false}},
		{"Urdu", LanguageSchema{"Urdu", "Urdu themes", "urdu_themes", "Urdu tags", "urdu_tags", true}},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			got, err := langs.Lookup(tt.label)
			if err != nil {
				t.Fatalf("Lookup(%q) error = %v", tt.label, err)
			}
			if got != tt.want {
				t.Errorf("Lookup(%q) = %+v, want %+v", tt.label, got, tt.want)
			}
		})
	}
}

func TestLanguagesLookupUnsupported(t *testing.T) {
	langs := DefaultLanguages()

	for _, label := range []string{"", "Hindi", "english", "Marathi "} {
		_, err := langs.Lookup(label)

		var unsupported *UnsupportedLanguageError
		if !errors.As(err, &unsupported) {
			t.Fatalf("Lookup(%q) error = %v, want *UnsupportedLanguageError", label, err)
		}
		if unsupported.Language != label {
			t.Errorf("Language = %q, want %q", unsupported.Language, label)
		}
	}
}

func TestNewLanguages(t *testing.T) {
	valid := LanguageSchema{"Tulu", "Tulu themes", "tulu_themes", "Tulu tags", "tulu_tags", false}

	if _, err := NewLanguages(valid, valid); err == nil {
		t.Error("expected error for duplicate label")
	}
	if _, err := NewLanguages(LanguageSchema{ThemeType: "x"}); err == nil {
		t.Error("expected error for empty label")
	}
	if _, err := NewLanguages(LanguageSchema{Language: "Tulu"}); err == nil {
		t.Error("expected error for incomplete schema")
	}

	langs, err := NewLanguages(valid)
	if err != nil {
		t.Fatalf("NewLanguages() error = %v", err)
	}
	if langs.Len() != 1 {
		t.Errorf("Len() = %d, want 1", langs.Len())
	}
	if _, err := langs.Lookup("English"); err == nil {
		t.Error("custom registry should not know English")
	}
}

func TestLanguageSchemaDirection(t *testing.T) {
	langs := DefaultLanguages()
	urdu, _ := langs.Lookup("Urdu")
	marathi, _ := langs.Lookup("Marathi")

	if urdu.Direction() != "rtl" {
		t.Errorf("Urdu direction = %q, want rtl", urdu.Direction())
	}
	if marathi.Direction() != "ltr" {
		t.Errorf("Marathi direction = %q, want ltr", marathi.Direction())
	}
}
