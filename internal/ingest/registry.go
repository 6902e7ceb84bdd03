// Package ingest imports sync briefs published on external listing pages
// into the opportunity catalog.
package ingest

import (
	"embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/david/syncscout/internal/models"
)

//go:embed config/feeds.yaml
var feedsYAML embed.FS

// Registry holds every configured brief feed.
type Registry struct {
	Feeds []FeedConfig `yaml:"feeds"`
}

// FetchConfig tunes HTTP fetching for one feed.
type FetchConfig struct {
	TimeoutSeconds int    `yaml:"timeout_seconds,omitempty"` // Default: 30
	MaxRetries     int    `yaml:"max_retries,omitempty"`
	DelayMillis    int    `yaml:"delay_ms,omitempty"`
	UserAgent      string `yaml:"user_agent,omitempty"`
}

type SelectorConfig struct {
	Container   string `yaml:"container"` // CSS selector for one brief
	Title       string `yaml:"title"`
	Link        string `yaml:"link,omitempty"`
	LinkAttr    string `yaml:"link_attr,omitempty"` // default: href
	Description string `yaml:"description,omitempty"`
	Budget      string `yaml:"budget,omitempty"`
	Deadline    string `yaml:"deadline,omitempty"`
	Genres      string `yaml:"genres,omitempty"` // comma or pipe separated
	Moods       string `yaml:"moods,omitempty"`
}

// FeedConfig describes one listing page.
type FeedConfig struct {
	ID       string `yaml:"id"`
	Name     string `yaml:"name"`
	URL      string `yaml:"url"`
	Category string `yaml:"category"`
	Source   string `yaml:"source,omitempty"`
	Disabled bool   `yaml:"disabled,omitempty"`
	// DeadlineFromPDF reads the deadline from a linked PDF brief when the
	// listing does not show one.
	DeadlineFromPDF bool `yaml:"deadline_from_pdf,omitempty"`

	Fetch     FetchConfig    `yaml:"fetch,omitempty"`
	Selectors SelectorConfig `yaml:"selectors"`
}

// LoadRegistry reads feeds from path, or the embedded feeds.yaml when path is empty.
func LoadRegistry(path string) (*Registry, error) {
	var data []byte
	var err error
	if path == "" {
		data, err = feedsYAML.ReadFile("config/feeds.yaml")
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, err
	}
	return ParseRegistry(data)
}

// ParseRegistry decodes a feed registry. Environment variables such as
// ${BRIEFS_URL} are expanded first.
func ParseRegistry(data []byte) (*Registry, error) {
	expanded := os.ExpandEnv(string(data))

	var reg Registry
	if err := yaml.Unmarshal([]byte(expanded), &reg); err != nil {
		return nil, fmt.Errorf("decode feed registry: %w", err)
	}

	seen := make(map[string]bool, len(reg.Feeds))
	var errs []error
	for i, f := range reg.Feeds {
		switch {
		case strings.TrimSpace(f.ID) == "":
			errs = append(errs, fmt.Errorf("feed %d: missing id", i))
			continue
		case seen[f.ID]:
			errs = append(errs, fmt.Errorf("feed %s: duplicate id", f.ID))
		case f.URL == "":
			errs = append(errs, fmt.Errorf("feed %s: missing url", f.ID))
		case f.Selectors.Container == "" || f.Selectors.Title == "":
			errs = append(errs, fmt.Errorf("feed %s: container and title selectors are required", f.ID))
		}
		seen[f.ID] = true
		if _, err := models.ParseCategory(f.Category); err != nil {
			errs = append(errs, fmt.Errorf("feed %s: %w", f.ID, err))
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return &reg, nil
}

// Enabled returns the feeds that are not disabled.
func (r *Registry) Enabled() []FeedConfig {
	out := make([]FeedConfig, 0, len(r.Feeds))
	for _, f := range r.Feeds {
		if !f.Disabled {
			out = append(out, f)
		}
	}
	return out
}
