package livetest

import (
	"fmt"
	"regexp"
	"strings"
	"testing"
)

// HTMLAssert provides HTML-specific assertions.
type HTMLAssert struct {
	t    *testing.T
	html string
}

// NewHTMLAssert creates a new HTML assertion helper.
func NewHTMLAssert(t *testing.T, html string) *HTMLAssert {
	return &HTMLAssert{t: t, html: html}
}

// HasElement asserts that the HTML contains an element with all of attrs.
func (ha *HTMLAssert) HasElement(tag string, attrs ...string) *HTMLAssert {
	ha.t.Helper()

	if !strings.Contains(ha.html, "<"+tag) {
		ha.fail(fmt.Sprintf("Element <%s> not found", tag))
		return ha
	}
	for _, attr := range attrs {
		if !strings.Contains(ha.html, attr) {
			ha.fail(fmt.Sprintf("Attribute %q not found", attr))
		}
	}
	return ha
}

// HasText asserts that the HTML contains text.
func (ha *HTMLAssert) HasText(text string) *HTMLAssert {
	ha.t.Helper()
	if !strings.Contains(ha.html, text) {
		ha.fail(fmt.Sprintf("Expected text %q", text))
	}
	return ha
}

// HasClass asserts that some element has class.
func (ha *HTMLAssert) HasClass(class string) *HTMLAssert {
	ha.t.Helper()
	if !ha.matches(`class="([^"]*\s)?` + regexp.QuoteMeta(class) + `(\s[^"]*)?"`) {
		ha.fail(fmt.Sprintf("No element with class %q", class))
	}
	return ha
}

// NoClass asserts that no element has class.
func (ha *HTMLAssert) NoClass(class string) *HTMLAssert {
	ha.t.Helper()
	if ha.matches(`class="([^"]*\s)?` + regexp.QuoteMeta(class) + `(\s[^"]*)?"`) {
		ha.fail(fmt.Sprintf("Unexpected element with class %q", class))
	}
	return ha
}

// HasID asserts that the HTML contains an element with id.
func (ha *HTMLAssert) HasID(id string) *HTMLAssert {
	ha.t.Helper()
	if !strings.Contains(ha.html, fmt.Sprintf(`id="%s"`, id)) {
		ha.fail(fmt.Sprintf("No element with id %q", id))
	}
	return ha
}

// AttrOf returns the value of attr on the first element whose opening tag
// contains marker, e.g. AttrOf(`data-section="about"`, "aria-current").
func (ha *HTMLAssert) AttrOf(marker, attr string) (string, bool) {
	idx := strings.Index(ha.html, marker)
	if idx == -1 {
		return "", false
	}
	start := strings.LastIndexByte(ha.html[:idx], '<')
	end := strings.IndexByte(ha.html[idx:], '>')
	if start == -1 || end == -1 {
		return "", false
	}
	tag := ha.html[start : idx+end]

	m := regexp.MustCompile(`\s` + regexp.QuoteMeta(attr) + `="([^"]*)"`).FindStringSubmatch(tag)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// Count returns how many times s occurs.
func (ha *HTMLAssert) Count(s string) int {
	return strings.Count(ha.html, s)
}

func (ha *HTMLAssert) matches(pattern string) bool {
	return regexp.MustCompile(pattern).MatchString(ha.html)
}

func (ha *HTMLAssert) fail(message string) {
	ha.t.Helper()
	ha.t.Errorf("%s\nHTML:\n%s", message, ha.html)
}
