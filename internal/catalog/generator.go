package catalog

import (
	"embed"
	"fmt"
	"math/rand/v2"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/david/syncscout/internal/models"
)

//go:embed config/templates.yaml config/seed.yaml
var catalogYAML embed.FS

// Template is the fixed part of a generated opportunity.
type Template struct {
	Title       string   `yaml:"title"`
	Category    string   `yaml:"category"`
	Source      string   `yaml:"source"`
	Budget      string   `yaml:"budget"`
	Genres      []string `yaml:"genres"`
	Moods       []string `yaml:"moods"`
	Usage       string   `yaml:"usage"`
	Exclusivity string   `yaml:"exclusivity"`
	Territories []string `yaml:"territories"`
	Duration    string   `yaml:"duration"`
}

type templateFile struct {
	Templates []Template `yaml:"templates"`
}

// LoadTemplates reads generator templates from path, or the embedded set
// when path is empty.
func LoadTemplates(path string) ([]Template, error) {
	var data []byte
	var err error
	if path == "" {
		data, err = catalogYAML.ReadFile("config/templates.yaml")
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, err
	}

	var f templateFile
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &f); err != nil {
		return nil, fmt.Errorf("decode templates: %w", err)
	}
	for _, t := range f.Templates {
		if _, err := models.ParseCategory(t.Category); err != nil {
			return nil, fmt.Errorf("template %q: %w", t.Title, err)
		}
	}
	return f.Templates, nil
}

var priorities = []string{"low", "medium", "high"}

// Generator produces new opportunities from templates.
type Generator struct {
	templates []Template

	mu  sync.Mutex
	rng *rand.Rand
}

func NewGenerator(templates []Template, seed uint64) *Generator {
	return &Generator{
		templates: templates,
		rng:       rand.New(rand.NewPCG(seed, seed>>1|1)),
	}
}

// Generate returns between one and three opportunities with deadlines
// 7 to 36 days after now.
func (g *Generator) Generate(now time.Time) []models.Opportunity {
	if len(g.templates) == 0 {
		return nil
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	n := g.rng.IntN(3) + 1
	out := make([]models.Opportunity, 0, n)
	for i := 0; i < n; i++ {
		t := g.templates[g.rng.IntN(len(g.templates))]
		cat, _ := models.ParseCategory(t.Category)

		tempo := models.Range{
			Min: float64(100 + g.rng.IntN(60)),
			Max: float64(140 + g.rng.IntN(40)),
		}
		if tempo.Min > tempo.Max {
			tempo.Min, tempo.Max = tempo.Max, tempo.Min
		}
		energy := models.Range{
			Min: 0.5 + g.rng.Float64()*0.3,
			Max: 0.8 + g.rng.Float64()*0.2,
		}

		out = append(out, models.Opportunity{
			ID:          uuid.New().String(),
			Title:       t.Title,
			Category:    cat,
			Source:      t.Source,
			Description: fmt.Sprintf("New %s opportunity - %s", cat, t.Title),
			Genres:      t.Genres,
			Moods:       t.Moods,
			Budget:      t.Budget,
			Requirements: models.Requirements{
				Tempo:  &tempo,
				Energy: &energy,
			},
			Deadline:    now.Add(time.Duration(7+g.rng.IntN(30)) * 24 * time.Hour).UTC(),
			Status:      models.StatusAvailable,
			Priority:    priorities[g.rng.IntN(len(priorities))],
			Contact:     contactFor(t.Source),
			Usage:       t.Usage,
			Exclusivity: t.Exclusivity,
			Territories: t.Territories,
			Duration:    t.Duration,
			CreatedAt:   now.UTC(),
		})
	}
	return out
}

func contactFor(source string) string {
	host := strings.ToLower(strings.Join(strings.Fields(source), ""))
	if host == "" {
		return ""
	}
	return "music@" + host + ".com"
}
