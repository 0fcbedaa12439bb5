// Package fragmentation maps industries to a 0-100 fragmentation index.
package fragmentation

import (
	_ "embed"
	"hash/fnv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Bounds of the default index assigned to industries missing from the table.
const (
	DefaultMin = 70
	DefaultMax = 99
)

//go:embed industries.yaml
var industriesYAML []byte

var table = mustParse(industriesYAML)

func mustParse(data []byte) map[string]float64 {
	var doc struct {
		Industries map[string]float64 `yaml:"industries"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		panic("fragmentation: parse embedded table: " + err.Error())
	}
	out := make(map[string]float64, len(doc.Industries))
	for k, v := range doc.Industries {
		out[Normalize(k)] = v
	}
	return out
}

// Normalize lowercases and collapses whitespace in an industry name.
func Normalize(industry string) string {
	return strings.Join(strings.Fields(strings.ToLower(industry)), " ")
}

// Lookup returns the table value for an industry.
func Lookup(industry string) (float64, bool) {
	v, ok := table[Normalize(industry)]
	return v, ok
}

// Index returns the table value for an industry, or a default in
// [DefaultMin, DefaultMax] derived from the industry name. The default is
// stable across runs for the same name.
func Index(industry string) float64 {
	if v, ok := Lookup(industry); ok {
		return v
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(Normalize(industry)))
	return float64(DefaultMin + int(h.Sum32()%uint32(DefaultMax-DefaultMin+1)))
}

// Industries returns the number of industries in the table.
func Industries() int { return len(table) }
