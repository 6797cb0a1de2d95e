package nav

import "testing"

func TestScrollSpy_Match(t *testing.T) {
	reg := MustRegistry([]Section{
		{ID: "zero", Placement: PlacementHidden},
		{ID: "home", Placement: PlacementHidden},
		{ID: "about", Label: "About"},
		{ID: "projects", Label: "Projects"},
	})
	layout := StaticLayout{
		"zero":     {OffsetTop: 500, OffsetHeight: 0},
		"home":     {OffsetTop: 0, OffsetHeight: 500},
		"about":    {OffsetTop: 500, OffsetHeight: 700},
		"projects": {OffsetTop: 1200, OffsetHeight: 800},
	}
	spy := NewScrollSpy(reg, DefaultThresholds())

	tests := []struct {
		name   string
		y      float64
		wantID string
		wantOK bool
	}{
		{"shared edge skips the zero-height section and takes the later one", 400, "about", true},
		{"just before the edge", 399.5, "home", true},
		{"next shared edge", 1100, "projects", true},
		{"past the last section", 2100, "", false},
		{"above the first section", -200, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, ok := spy.Match(tt.y, layout)
			if id != tt.wantID || ok != tt.wantOK {
				t.Errorf("Match(%v) = %q, %v; want %q, %v", tt.y, id, ok, tt.wantID, tt.wantOK)
			}
		})
	}
}

func TestScrollSpy_ZeroHeightAlone(t *testing.T) {
	reg := MustRegistry([]Section{
		{ID: "home", Placement: PlacementHidden},
		{ID: "empty", Label: "Empty"},
	})
	layout := StaticLayout{
		"home":  {OffsetTop: 0, OffsetHeight: 400},
		"empty": {OffsetTop: 500, OffsetHeight: 0},
	}
	spy := NewScrollSpy(reg, DefaultThresholds())

	prev := InitialState("home")
	next := spy.Observe(400, layout, prev)
	if next.ActiveSectionID != "home" {
		t.Errorf("a zero-height section must not become active, got %q", next.ActiveSectionID)
	}
	if !next.IsCompact {
		t.Error("expected compact at y=400")
	}
}
