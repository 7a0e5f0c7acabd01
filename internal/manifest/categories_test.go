package manifest

import (
	"reflect"
	"testing"
)

func TestParseCategories(t *testing.T) {
	tests := []struct {
		input string
		names []string
	}{
		{"fun", []string{"fun"}},
		{"fun,other", []string{"fun", "other"}},
		{"", []string{""}},
		{"fun,", []string{"fun", ""}},
		{",fun", []string{"", "fun"}},
		{"fun,,fun", []string{"fun", ""}},
		{"Fun, fun", []string{"Fun", " fun"}},
	}

	for _, tt := range tests {
		cs := ParseCategories(tt.input)
		if got := cs.Names(); !reflect.DeepEqual(got, tt.names) {
			t.Errorf("ParseCategories(%q).Names() = %q, want %q", tt.input, got, tt.names)
		}
		if cs.Len() != len(tt.names) {
			t.Errorf("ParseCategories(%q).Len() = %d, want %d", tt.input, cs.Len(), len(tt.names))
		}
	}
}

func TestCategorySetContains(t *testing.T) {
	cs := ParseCategories("Blobs,cats")

	tests := []struct {
		category string
		want     bool
	}{
		{"Blobs", true},
		{"cats", true},
		{"blobs", false},
		{"Cats", false},
		{"", false},
		{"Blobs,cats", false},
	}

	for _, tt := range tests {
		if got := cs.Contains(tt.category); got != tt.want {
			t.Errorf("Contains(%q) = %v, want %v", tt.category, got, tt.want)
		}
	}
}

func TestEmptyCategoryIsMember(t *testing.T) {
	cs := ParseCategories("")
	if !cs.Contains("") {
		t.Error("expected empty category to be a member")
	}
	if cs.Contains("fun") {
		t.Error("unexpected member fun")
	}
}

func TestCategorySetNamesIsCopy(t *testing.T) {
	cs := NewCategorySet("a", "b")
	names := cs.Names()
	names[0] = "mutated"

	if !cs.Contains("a") || cs.Names()[0] != "a" {
		t.Error("CategorySet was mutated through Names()")
	}
}

func TestZeroCategorySet(t *testing.T) {
	var cs CategorySet
	if cs.Contains("") || cs.Len() != 0 {
		t.Error("zero CategorySet must be empty")
	}
}
