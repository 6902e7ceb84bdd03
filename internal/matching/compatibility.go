package matching

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed config/compatibility.yaml
var compatibilityYAML []byte

// Compatibility is a symmetric relation between lower-case genre names.
type Compatibility struct {
	pairs map[string]map[string]struct{}
}

// ParseCompatibility decodes a genre -> compatible genres document.
func ParseCompatibility(data []byte) (Compatibility, error) {
	raw := map[string][]string{}
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &raw); err != nil {
		return Compatibility{}, fmt.Errorf("decode genre compatibility: %w", err)
	}

	c := Compatibility{pairs: make(map[string]map[string]struct{})}
	for g, others := range raw {
		for _, o := range others {
			c.add(g, o)
			c.add(o, g)
		}
	}
	return c, nil
}

// DefaultCompatibility returns the embedded compatibility map.
func DefaultCompatibility() Compatibility {
	c, err := ParseCompatibility(compatibilityYAML)
	if err != nil {
		panic(err)
	}
	return c
}

func (c Compatibility) add(a, b string) {
	a, b = normGenre(a), normGenre(b)
	if a == "" || b == "" {
		return
	}
	if c.pairs[a] == nil {
		c.pairs[a] = make(map[string]struct{})
	}
	c.pairs[a][b] = struct{}{}
}

// Compatible reports whether a and b are listed together, in either order.
func (c Compatibility) Compatible(a, b string) bool {
	_, ok := c.pairs[normGenre(a)][normGenre(b)]
	return ok
}

func normGenre(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
