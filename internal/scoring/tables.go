package scoring

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync/atomic"

	"gopkg.in/yaml.v3"

	"github.com/david/syncscout/internal/models"
)

//go:embed config/market.yaml
var marketYAML embed.FS

// ErrEmptyMarketTable is a configuration error: the classifier has nothing to choose from.
var ErrEmptyMarketTable = errors.New("market table has no genres")

// GenreEntry is one row of the genre market table.
type GenreEntry struct {
	Name         string       `yaml:"name"`
	Popularity   float64      `yaml:"popularity"` // market share %
	Growth       float64      `yaml:"growth"`     // year over year %
	AvgStreams   int64        `yaml:"avg_streams"`
	Tempo        models.Range `yaml:"tempo"`
	Energy       models.Range `yaml:"energy"`
	Danceability models.Range `yaml:"danceability"`
}

// TrendEntry is an active market trend with a default relevance and
// optional per-genre overrides.
type TrendEntry struct {
	Name            string             `yaml:"name"`
	Impact          float64            `yaml:"impact"`
	Active          bool               `yaml:"active"`
	Relevance       float64            `yaml:"relevance"`
	GenreRelevance  map[string]float64 `yaml:"genre_relevance,omitempty"`
	Recommendations []string           `yaml:"recommendations,omitempty"`
}

// RelevanceFor returns the trend's relevance to genre.
func (t TrendEntry) RelevanceFor(genre string) float64 {
	if r, ok := t.GenreRelevance[genre]; ok {
		return r
	}
	return t.Relevance
}

type ReferenceHit struct {
	Position int    `yaml:"position"`
	Title    string `yaml:"title"`
	Artist   string `yaml:"artist"`
}

// Tables is the injected market data the scorers read. A Tables value is
// never modified after it is published.
type Tables struct {
	Genres               []GenreEntry        `yaml:"genres"`
	Trends               []TrendEntry        `yaml:"trends"`
	ReferenceHits        []ReferenceHit      `yaml:"reference_hits"`
	GenreRecommendations map[string][]string `yaml:"genre_recommendations"`
}

// ParseTables decodes and checks a market table document.
func ParseTables(data []byte) (*Tables, error) {
	// Expand environment variables the same way the source registry does.
	expanded := os.ExpandEnv(string(data))

	var t Tables
	if err := yaml.Unmarshal([]byte(expanded), &t); err != nil {
		return nil, fmt.Errorf("decode market tables: %w", err)
	}
	if len(t.Genres) == 0 {
		return nil, ErrEmptyMarketTable
	}
	for _, g := range t.Genres {
		if strings.TrimSpace(g.Name) == "" {
			return nil, errors.New("market table genre without a name")
		}
		if g.Tempo.Min > g.Tempo.Max || g.Energy.Min > g.Energy.Max || g.Danceability.Min > g.Danceability.Max {
			return nil, fmt.Errorf("genre %q has an inverted range", g.Name)
		}
	}
	return &t, nil
}

// DefaultTables returns the embedded market tables.
func DefaultTables() (*Tables, error) {
	data, err := marketYAML.ReadFile("config/market.yaml")
	if err != nil {
		return nil, err
	}
	return ParseTables(data)
}

// TableStore publishes the current market tables and swaps them atomically
// on reload, so readers never see a partially loaded table.
type TableStore struct {
	path    string
	current atomic.Pointer[Tables]
}

// NewTableStore loads tables from path, or from the embedded defaults when
// path is empty.
func NewTableStore(path string) (*TableStore, error) {
	s := &TableStore{path: path}
	if err := s.Reload(context.Background()); err != nil {
		return nil, err
	}
	return s, nil
}

// StaticTables wraps an already-built table set. Reload is a no-op.
func StaticTables(t *Tables) *TableStore {
	s := &TableStore{}
	s.current.Store(t)
	return s
}

// Current returns the published tables.
func (s *TableStore) Current() *Tables {
	return s.current.Load()
}

// Reload re-reads the table source. On failure the previous tables stay published.
func (s *TableStore) Reload(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.path == "" {
		if s.current.Load() != nil {
			return nil
		}
		t, err := DefaultTables()
		if err != nil {
			return err
		}
		s.current.Store(t)
		return nil
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("read market tables %s: %w", s.path, err)
	}
	t, err := ParseTables(data)
	if err != nil {
		return err
	}
	s.current.Store(t)
	return nil
}
