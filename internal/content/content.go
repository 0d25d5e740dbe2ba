// Package content holds the static site content the API serves: the gallery
// category table and the services catalog.
package content

import (
	_ "embed"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"gopkg.in/yaml.v3"
)

//go:embed site.yaml
var siteYAML []byte

type Category struct {
	Key   string `yaml:"key" json:"key"`
	Label string `yaml:"label" json:"label"`
	Color string `yaml:"color" json:"color"`
}

type Service struct {
	Title       string `yaml:"title" json:"title"`
	Description string `yaml:"description" json:"description"`
	Icon        string `yaml:"icon" json:"icon"`
}

type Site struct {
	BaseFolder string     `yaml:"base_folder"`
	Categories []Category `yaml:"categories"`
	Services   []Service  `yaml:"services"`
}

// Load parses the embedded site content.
func Load() (*Site, error) {
	return Parse(siteYAML)
}

func Parse(data []byte) (*Site, error) {
	var site Site
	if err := yaml.Unmarshal(data, &site); err != nil {
		return nil, fmt.Errorf("failed to parse site content: %w", err)
	}
	seen := make(map[string]bool, len(site.Categories))
	for i, c := range site.Categories {
		key := strings.ToLower(strings.TrimSpace(c.Key))
		if key == "" {
			return nil, fmt.Errorf("category %d has no key", i)
		}
		if seen[key] {
			return nil, fmt.Errorf("duplicate category %q", key)
		}
		seen[key] = true
		site.Categories[i].Key = key
	}
	return &site, nil
}

// CategoryKeys returns the known category folders in table order.
func (s *Site) CategoryKeys() []string {
	keys := make([]string, len(s.Categories))
	for i, c := range s.Categories {
		keys[i] = c.Key
	}
	return keys
}

// Label returns the display label for a category, falling back to the
// capitalized raw category when it is not in the table.
func (s *Site) Label(category string) string {
	for _, c := range s.Categories {
		if c.Key == category {
			return c.Label
		}
	}
	return Capitalize(category)
}

// Color returns the badge color class for a category, empty when unknown.
func (s *Site) Color(category string) string {
	for _, c := range s.Categories {
		if c.Key == category {
			return c.Color
		}
	}
	return ""
}

// Capitalize upper-cases the first rune and leaves the rest untouched.
func Capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
