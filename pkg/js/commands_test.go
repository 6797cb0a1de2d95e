package js

import (
	"testing"
)

func TestScrollTo(t *testing.T) {
	tests := []struct {
		name     string
		cmd      Command
		top      float64
		behavior string
	}{
		{"smooth by default", JS.ScrollTo(2920), 2920, BehaviorSmooth},
		{"instant", JS.ScrollTo(-80, Instant()), -80, BehaviorInstant},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := tt.cmd.Map()
			if m["op"] != OpScrollTo {
				t.Errorf("expected op %q, got %v", OpScrollTo, m["op"])
			}
			if m["top"] != tt.top {
				t.Errorf("expected top %v, got %v", tt.top, m["top"])
			}
			if m["behavior"] != tt.behavior {
				t.Errorf("expected behavior %q, got %v", tt.behavior, m["behavior"])
			}
			if _, ok := m["target"]; ok {
				t.Error("scrollTo has no target")
			}
		})
	}
}

func TestCommands_PayloadKeepsOrder(t *testing.T) {
	cmds := Commands{
		JS.ScrollTo(420),
		JS.Patch("#about", Replace()),
	}

	payload := cmds.Payload()
	if len(payload) != 2 {
		t.Fatalf("expected 2 ops, got %d", len(payload))
	}

	wantOps := []string{OpScrollTo, OpPatch}
	for i, want := range wantOps {
		m := payload[i].(map[string]any)
		if m["op"] != want {
			t.Errorf("op %d: expected %q, got %v", i, want, m["op"])
		}
	}

	patch := payload[1].(map[string]any)
	if patch["path"] != "#about" || patch["replace"] != true {
		t.Errorf("unexpected patch: %v", patch)
	}

	if got := cmds.String(); got != "scrollTo();patch(#about)" {
		t.Errorf("unexpected String(): %s", got)
	}
}

func TestPatchPushesByDefault(t *testing.T) {
	m := JS.Patch("#contact").Map()
	if m["replace"] != false {
		t.Errorf("expected a history push, got %v", m)
	}
}

func TestMapDoesNotAliasArgs(t *testing.T) {
	cmd := JS.Patch("#about")
	m := cmd.Map()
	m["path"] = "changed"
	if cmd.Args["path"] != "#about" {
		t.Error("Map must copy args")
	}
}
