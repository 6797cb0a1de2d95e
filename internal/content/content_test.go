package content

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aderemi/folionav/pkg/nav"
)

const minimalSite = `title: Test
sections:
  - id: home
    placement: hidden
  - id: about
    label: About
    body: "Hello **world**"
`

func TestDefault(t *testing.T) {
	site, err := Default()
	if err != nil {
		t.Fatalf("Default() error: %v", err)
	}

	reg := site.Registry()
	if reg.Home() != "home" {
		t.Errorf("home = %q", reg.Home())
	}
	want := []string{"home", "about", "projects", "experience", "contact"}
	if got := reg.IDs(); strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("IDs() = %v, want %v", got, want)
	}
	if left := reg.Placed(nav.PlacementLeft); len(left) != 2 || left[0].ID != "about" {
		t.Errorf("left group = %v", left)
	}
	if right := reg.Placed(nav.PlacementRight); len(right) != 2 || right[1].ID != "contact" {
		t.Errorf("right group = %v", right)
	}

	exp, _ := site.Section("experience")
	if !strings.Contains(string(exp.HTML), "<table>") {
		t.Errorf("experience body not rendered as a table: %s", exp.HTML)
	}
}

func TestParse(t *testing.T) {
	site, err := Parse([]byte(minimalSite))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	home, ok := site.Section("home")
	if !ok || home.Label != "home" {
		t.Errorf("home section = %+v, %v", home, ok)
	}
	about, _ := site.Section("about")
	if !strings.Contains(string(about.HTML), "<strong>world</strong>") {
		t.Errorf("about HTML = %q", about.HTML)
	}
	if _, ok := site.Section("missing"); ok {
		t.Error("Section(missing) found something")
	}
	if site.Registry().Home() != "home" {
		t.Errorf("default home = %q", site.Registry().Home())
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want error
	}{
		{"no title", "sections:\n  - id: a\n", ErrNoTitle},
		{"no sections", "title: x\n", nav.ErrNoSections},
		{"duplicate", "title: x\nsections:\n  - id: a\n  - id: a\n", nav.ErrDuplicateSection},
		{"empty id", "title: x\nsections:\n  - label: A\n", nav.ErrEmptySectionID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			if !errors.Is(err, tt.want) {
				t.Errorf("Parse() error = %v, want %v", err, tt.want)
			}
		})
	}

	if _, err := Parse([]byte("title: x\nsections:\n  - id: a\n    placement: top\n")); err == nil {
		t.Error("expected error for unknown placement")
	}
	if _, err := Parse([]byte("title: [")); err == nil {
		t.Error("expected error for invalid yaml")
	}
}

func TestRenderMarkdown_DropsRawHTML(t *testing.T) {
	out, err := renderMarkdown("<script>alert(1)</script>\n\ntext")
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(out), "<script>") {
		t.Errorf("raw HTML passed through: %s", out)
	}
}

func TestLoadOrDefault(t *testing.T) {
	dir := t.TempDir()

	site, fallback, err := LoadOrDefault(filepath.Join(dir, "site.yaml"))
	if err != nil || !fallback || site.Registry().Len() != 5 {
		t.Errorf("missing file: site=%v fallback=%v err=%v", site != nil, fallback, err)
	}

	path := filepath.Join(dir, "mine.yaml")
	if err := os.WriteFile(path, []byte(minimalSite), 0644); err != nil {
		t.Fatal(err)
	}
	site, fallback, err = LoadOrDefault(path)
	if err != nil || fallback || site.Title != "Test" {
		t.Errorf("existing file: fallback=%v err=%v", fallback, err)
	}
}

func TestWatcher_ReloadsStore(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "site.yaml")
	if err := os.WriteFile(path, []byte(minimalSite), 0644); err != nil {
		t.Fatal(err)
	}

	initial, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	store := NewStore(initial)

	reloaded := make(chan *Site, 4)
	w, err := NewWatcher(path, store,
		WithDebounce(20*time.Millisecond),
		WithOnReload(func(s *Site) { reloaded <- s }),
	)
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	updated := strings.Replace(minimalSite, "title: Test", "title: Updated", 1)
	deadline := time.After(3 * time.Second)
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	// Keep writing until the watcher has picked up the directory.
wait:
	for {
		select {
		case s := <-reloaded:
			if s.Title != "Updated" {
				t.Errorf("reloaded title = %q", s.Title)
			}
			break wait
		case <-ticker.C:
			if err := os.WriteFile(path, []byte(updated), 0644); err != nil {
				t.Fatal(err)
			}
		case <-deadline:
			t.Fatal("watcher did not reload")
		}
	}

	if store.Site().Title != "Updated" {
		t.Errorf("store title = %q", store.Site().Title)
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("Run() error: %v", err)
	}
}

func TestWatcher_BadFileKeepsStore(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "site.yaml")
	if err := os.WriteFile(path, []byte(minimalSite), 0644); err != nil {
		t.Fatal(err)
	}
	initial, _ := Load(path)
	store := NewStore(initial)

	errs := make(chan error, 1)
	w, err := NewWatcher(path, store, WithOnError(func(err error) {
		select {
		case errs <- err:
		default:
		}
	}))
	if err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(path, []byte("title: ["), 0644); err != nil {
		t.Fatal(err)
	}
	w.reload()

	select {
	case <-errs:
	default:
		t.Error("expected parse error to be reported")
	}
	if store.Site() != initial {
		t.Error("store replaced by a broken site")
	}
}
