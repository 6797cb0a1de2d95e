package nav

import (
	"errors"
	"testing"
)

func TestNewRegistry(t *testing.T) {
	tests := []struct {
		name     string
		sections []Section
		wantErr  error
	}{
		{"empty", nil, ErrNoSections},
		{"empty id", []Section{{ID: "about"}, {ID: ""}}, ErrEmptySectionID},
		{"duplicate", []Section{{ID: "about"}, {ID: "about"}}, ErrDuplicateSection},
		{"ok", []Section{{ID: "about"}, {ID: "contact", Placement: PlacementRight}}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewRegistry(tt.sections)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if r.Len() != len(tt.sections) {
				t.Errorf("expected %d sections, got %d", len(tt.sections), r.Len())
			}
		})
	}
}

func TestRegistry_DefaultsLabelToID(t *testing.T) {
	r := MustRegistry([]Section{{ID: "about"}})
	s, ok := r.Get("about")
	if !ok {
		t.Fatal("expected about to be registered")
	}
	if s.Label != "about" {
		t.Errorf("expected label 'about', got '%s'", s.Label)
	}
}

func TestRegistry_Placement(t *testing.T) {
	r := MustRegistry([]Section{
		{ID: "home", Placement: PlacementHidden},
		{ID: "about", Label: "About"},
		{ID: "projects", Label: "Projects"},
		{ID: "experience", Label: "Experience", Placement: PlacementRight},
		{ID: "contact", Label: "Contact", Placement: PlacementRight},
	})

	left := r.Placed(PlacementLeft)
	if len(left) != 2 || left[0].ID != "about" || left[1].ID != "projects" {
		t.Errorf("unexpected left group: %+v", left)
	}
	right := r.Placed(PlacementRight)
	if len(right) != 2 || right[0].ID != "experience" || right[1].ID != "contact" {
		t.Errorf("unexpected right group: %+v", right)
	}

	visible := r.Visible()
	if len(visible) != 4 {
		t.Fatalf("expected 4 visible sections, got %d", len(visible))
	}
	for _, s := range visible {
		if s.ID == "home" {
			t.Error("hidden section should not be visible")
		}
	}
}

func TestRegistry_Valid(t *testing.T) {
	r := MustRegistry([]Section{{ID: "about"}}, WithHome("top"))

	if !r.Valid("top") {
		t.Error("home id should be valid even when unregistered")
	}
	if !r.Valid("about") {
		t.Error("registered id should be valid")
	}
	if r.Valid("missing") {
		t.Error("unknown id should not be valid")
	}
}

func TestRegistry_SectionsIsCopy(t *testing.T) {
	r := MustRegistry([]Section{{ID: "about"}})
	s := r.Sections()
	s[0].ID = "mutated"

	if !r.Has("about") || r.IDs()[0] != "about" {
		t.Error("Sections should return a copy")
	}
}

func TestParsePlacement(t *testing.T) {
	tests := []struct {
		in      string
		want    Placement
		wantErr bool
	}{
		{"", PlacementLeft, false},
		{"left", PlacementLeft, false},
		{"right", PlacementRight, false},
		{"hidden", PlacementHidden, false},
		{"middle", PlacementLeft, true},
	}

	for _, tt := range tests {
		got, err := ParsePlacement(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParsePlacement(%q) error = %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParsePlacement(%q) = %v, want %v", tt.in, got, tt.want)
		}
		if !tt.wantErr && tt.in != "" && got.String() != tt.in {
			t.Errorf("String() = %q, want %q", got.String(), tt.in)
		}
	}
}
