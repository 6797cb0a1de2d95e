// Package content loads the portfolio site file: the ordered sections that
// make up the navigation registry and their markdown bodies.
package content

import (
	_ "embed"
	"errors"
	"fmt"
	"html/template"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/aderemi/folionav/pkg/nav"
)

//go:embed default.yaml
var defaultSite []byte

// ErrNoTitle is returned for a site file without a title.
var ErrNoTitle = errors.New("site title is required")

// Site is a parsed site file.
type Site struct {
	Title    string    `yaml:"title"`
	Brand    string    `yaml:"brand"`
	Home     string    `yaml:"home"`
	Sections []Section `yaml:"sections"`

	registry *nav.Registry
}

// Section is one page section.
type Section struct {
	ID        string `yaml:"id"`
	Label     string `yaml:"label"`
	Placement string `yaml:"placement"`
	Heading   string `yaml:"heading"`
	Body      string `yaml:"body"`
	Links     []Link `yaml:"links"`

	// HTML is Body rendered from markdown.
	HTML template.HTML `yaml:"-"`
}

// Link is an outbound link shown under a section.
type Link struct {
	Label string `yaml:"label"`
	URL   string `yaml:"url"`
}

// Load reads and parses the site file at path.
func Load(path string) (*Site, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading site %s: %w", path, err)
	}
	site, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing site %s: %w", path, err)
	}
	return site, nil
}

// LoadOrDefault loads path, falling back to the built-in sample site when
// the file does not exist.
func LoadOrDefault(path string) (*Site, bool, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		site, err := Default()
		return site, true, err
	}
	site, err := Load(path)
	return site, false, err
}

// Default returns the built-in sample site.
func Default() (*Site, error) {
	return Parse(defaultSite)
}

// Parse parses site YAML, renders section bodies and builds the registry.
func Parse(data []byte) (*Site, error) {
	var site Site
	if err := yaml.Unmarshal(data, &site); err != nil {
		return nil, fmt.Errorf("decoding yaml: %w", err)
	}
	if site.Title == "" {
		return nil, ErrNoTitle
	}
	if site.Home == "" {
		site.Home = "home"
	}

	sections := make([]nav.Section, len(site.Sections))
	for i := range site.Sections {
		s := &site.Sections[i]
		placement, err := nav.ParsePlacement(s.Placement)
		if err != nil {
			return nil, fmt.Errorf("section %q: %w", s.ID, err)
		}
		if s.Label == "" {
			s.Label = s.ID
		}
		sections[i] = nav.Section{ID: s.ID, Label: s.Label, Placement: placement}

		if s.HTML, err = renderMarkdown(s.Body); err != nil {
			return nil, fmt.Errorf("section %q: %w", s.ID, err)
		}
	}

	registry, err := nav.NewRegistry(sections, nav.WithHome(site.Home))
	if err != nil {
		return nil, err
	}
	site.registry = registry
	return &site, nil
}

// Registry returns the navigation registry built from the sections.
func (s *Site) Registry() *nav.Registry {
	return s.registry
}

// Section returns the section with id.
func (s *Site) Section(id string) (Section, bool) {
	for _, sec := range s.Sections {
		if sec.ID == id {
			return sec, true
		}
	}
	return Section{}, false
}
