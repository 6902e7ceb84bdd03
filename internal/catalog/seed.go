package catalog

import (
	"context"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/david/syncscout/internal/models"
)

// Seeder supplies the initial catalog contents.
type Seeder interface {
	SeedOpportunities(ctx context.Context, now time.Time) ([]models.Opportunity, error)
}

type seedEntry struct {
	ID           string              `yaml:"id"`
	Title        string              `yaml:"title"`
	Category     string              `yaml:"category"`
	Source       string              `yaml:"source"`
	Description  string              `yaml:"description"`
	Budget       string              `yaml:"budget"`
	DeadlineDays int                 `yaml:"deadline_days"`
	Genres       []string            `yaml:"genres"`
	Moods        []string            `yaml:"moods"`
	Duration     string              `yaml:"duration"`
	Usage        string              `yaml:"usage"`
	Exclusivity  string              `yaml:"exclusivity"`
	Territories  []string            `yaml:"territories"`
	Priority     string              `yaml:"priority"`
	Contact      string              `yaml:"contact"`
	Requirements models.Requirements `yaml:"requirements"`
}

type seedFile struct {
	Opportunities []seedEntry `yaml:"opportunities"`
}

// YAMLSeeder reads seed opportunities from a YAML document. An empty Path
// uses the embedded seed set.
type YAMLSeeder struct {
	Path string
}

func (s YAMLSeeder) SeedOpportunities(ctx context.Context, now time.Time) ([]models.Opportunity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var data []byte
	var err error
	if s.Path == "" {
		data, err = catalogYAML.ReadFile("config/seed.yaml")
	} else {
		data, err = os.ReadFile(s.Path)
	}
	if err != nil {
		return nil, err
	}
	return ParseSeed(data, now)
}

// ParseSeed decodes a seed document, resolving relative deadlines against now.
func ParseSeed(data []byte, now time.Time) ([]models.Opportunity, error) {
	var f seedFile
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &f); err != nil {
		return nil, fmt.Errorf("decode seed: %w", err)
	}

	out := make([]models.Opportunity, 0, len(f.Opportunities))
	for _, e := range f.Opportunities {
		cat, err := models.ParseCategory(e.Category)
		if err != nil {
			return nil, fmt.Errorf("seed %q: %w", e.Title, err)
		}
		out = append(out, models.Opportunity{
			ID:           e.ID,
			Title:        e.Title,
			Category:     cat,
			Source:       e.Source,
			Description:  e.Description,
			Genres:       e.Genres,
			Moods:        e.Moods,
			Budget:       e.Budget,
			Requirements: e.Requirements,
			Deadline:     now.Add(time.Duration(e.DeadlineDays) * 24 * time.Hour).UTC(),
			Status:       models.StatusAvailable,
			Priority:     e.Priority,
			Contact:      e.Contact,
			Usage:        e.Usage,
			Exclusivity:  e.Exclusivity,
			Territories:  e.Territories,
			Duration:     e.Duration,
			CreatedAt:    now.UTC(),
		})
	}
	return out, nil
}
