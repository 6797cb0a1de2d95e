package site

import (
	"strings"
	"testing"

	"github.com/aderemi/folionav/internal/content"
)

func TestPageConfigFor(t *testing.T) {
	s, err := content.Default()
	if err != nil {
		t.Fatalf("default site: %v", err)
	}

	cfg := PageConfigFor(s, 0)
	if cfg.Title != s.Title {
		t.Errorf("expected title %q, got %q", s.Title, cfg.Title)
	}
	if cfg.Author != "AM" {
		t.Errorf("expected author AM, got %q", cfg.Author)
	}
	if cfg.Description != "Hi, I'm Alex Morgan" {
		t.Errorf("unexpected description %q", cfg.Description)
	}
	if cfg.Breakpoint != 768 {
		t.Errorf("expected default breakpoint, got %d", cfg.Breakpoint)
	}

	if got := PageConfigFor(s, 1024).Breakpoint; got != 1024 {
		t.Errorf("expected breakpoint 1024, got %d", got)
	}
}

func TestLinks(t *testing.T) {
	links := Links([]content.Link{
		{Label: "Email", URL: "mailto:a@example.com"},
		{Label: "GitHub", URL: "https://github.com/example"},
		{Label: "Projects", URL: "#projects"},
	})

	want := []bool{false, true, false}
	for i, l := range links {
		if l.External != want[i] {
			t.Errorf("%s: expected external %v", l.Label, want[i])
		}
	}
}

func TestRenderHead(t *testing.T) {
	head := RenderHead(PageConfig{
		Title:       `Alex "AM" Morgan`,
		Description: "</script><b>",
		Author:      "AM",
		Breakpoint:  900,
	}, "n0nce", ".extra{}")

	for _, want := range []string{
		"<title>Alex &#34;AM&#34; Morgan</title>",
		`<style nonce="n0nce">`,
		`<script type="application/ld+json" nonce="n0nce">`,
		"@media(min-width:900px)",
		".extra{}",
	} {
		if !strings.Contains(head, want) {
			t.Errorf("head missing %q", want)
		}
	}

	ld := head[strings.Index(head, "application/ld+json"):]
	ld = ld[:strings.Index(ld, "</script>")]
	if strings.Contains(ld, "<b>") {
		t.Error("JSON-LD must not carry raw markup")
	}
}

func TestRenderDocument(t *testing.T) {
	doc := RenderDocument(PageConfig{Title: "T"}, "", "", "<main></main>")
	if !strings.HasPrefix(doc, "<!DOCTYPE html>\n<html lang=\"en\">") {
		t.Errorf("unexpected document start: %.40q", doc)
	}
	if !strings.Contains(doc, "<body>\n<main></main>\n</body>") {
		t.Error("body not placed")
	}
}

func TestRenderStyles(t *testing.T) {
	css := RenderStyles(WithReset(false), WithCustomColors(map[string]string{"primary": "#123456"}))

	if strings.Contains(css, "box-sizing:border-box") {
		t.Error("reset should be omitted")
	}
	if !strings.Contains(css, "#123456") {
		t.Error("custom color not applied")
	}
	for _, rule := range []string{".nav-compact", ".nav-link.is-active", ".nav-toggle", ".sr-only"} {
		if !strings.Contains(css, rule) {
			t.Errorf("missing rule %s", rule)
		}
	}
	if !strings.Contains(css, "@media(min-width:768px)") {
		t.Error("expected the default breakpoint")
	}
}
