// Package nomenclature maps the names list builders print onto catalog names.
//
// All lookups are pure table reads: a miss returns the input unchanged.
package nomenclature

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"listbuilder/internal/catalog"
)

//go:embed tables.yaml
var defaultTables []byte

// scrubbed are removed from piece names by Canonicalize
const scrubbed = " :!-'(),\"+.\t\r\n·[]•"

var scrubber = func() *strings.Replacer {
	pairs := make([]string, 0, 2*len(scrubbed))
	for _, r := range scrubbed {
		pairs = append(pairs, string(r), "")
	}
	return strings.NewReplacer(pairs...)
}()

// Canonicalize reduces a raw piece name to its lookup form. Engine-style paths
// ("a/b;c") keep the part after the last ';' of the first path segment.
func Canonicalize(raw string) string {
	name := strings.ReplaceAll(raw, `\/`, "")
	name, _, _ = strings.Cut(name, "/")
	if i := strings.LastIndex(name, ";"); i >= 0 {
		name = name[i+1:]
	}
	return strings.ToLower(scrubber.Replace(name))
}

// Alias is the catalog entry an ambiguous name resolves to
type Alias struct {
	Name string
	Type catalog.PieceType
}

// AmbiguousEntry is one row of the ambiguous-name table
type AmbiguousEntry struct {
	Name      string            `yaml:"name"`
	Cost      string            `yaml:"cost"`
	Canonical string            `yaml:"canonical"`
	Type      catalog.PieceType `yaml:"type"`
}

// Tables holds the static lookup data
type Tables struct {
	Translations map[string]string `yaml:"translations"`
	Ambiguous    []AmbiguousEntry  `yaml:"ambiguous"`
	ShipTokens   map[string]string `yaml:"ship_tokens"`
}

// ParseTables decodes YAML tables
func ParseTables(data []byte) (Tables, error) {
	var t Tables
	if err := yaml.Unmarshal(data, &t); err != nil {
		return Tables{}, fmt.Errorf("failed to parse nomenclature tables: %w", err)
	}
	return t, nil
}

// LoadTables reads YAML tables from path
func LoadTables(path string) (Tables, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Tables{}, fmt.Errorf("failed to read nomenclature tables: %w", err)
	}
	return ParseTables(data)
}

// Merge returns t with every entry of other added; other wins on conflicts
func (t Tables) Merge(other Tables) Tables {
	out := Tables{
		Translations: make(map[string]string, len(t.Translations)+len(other.Translations)),
		ShipTokens:   make(map[string]string, len(t.ShipTokens)+len(other.ShipTokens)),
	}
	for k, v := range t.Translations {
		out.Translations[k] = v
	}
	for k, v := range other.Translations {
		out.Translations[k] = v
	}
	for k, v := range t.ShipTokens {
		out.ShipTokens[k] = v
	}
	for k, v := range other.ShipTokens {
		out.ShipTokens[k] = v
	}
	out.Ambiguous = append(append(out.Ambiguous, t.Ambiguous...), other.Ambiguous...)
	return out
}

type costKey struct {
	name string
	cost string
}

// Resolver answers translation, disambiguation and ship-token questions.
// It is immutable once built.
type Resolver struct {
	translations map[string]string
	ambiguous    map[costKey]Alias
	shipTokens   map[string]string
}

// New validates tables and builds a Resolver. Later ambiguous rows replace earlier
// rows with the same name and cost.
func New(t Tables) (*Resolver, error) {
	r := &Resolver{
		translations: make(map[string]string, len(t.Translations)),
		ambiguous:    make(map[costKey]Alias, len(t.Ambiguous)),
		shipTokens:   make(map[string]string, len(t.ShipTokens)),
	}
	for from, to := range t.Translations {
		if from == "" || to == "" {
			return nil, fmt.Errorf("translation %q -> %q: empty name", from, to)
		}
		r.translations[from] = to
	}
	for i, e := range t.Ambiguous {
		if e.Name == "" || e.Canonical == "" {
			return nil, fmt.Errorf("ambiguous entry %d: name and canonical are required", i)
		}
		if _, err := catalog.ParsePieceType(string(e.Type)); err != nil {
			return nil, fmt.Errorf("ambiguous entry %d (%s): %w", i, e.Name, err)
		}
		r.ambiguous[costKey{e.Name, e.Cost}] = Alias{Name: e.Canonical, Type: e.Type}
	}
	for card, token := range t.ShipTokens {
		r.shipTokens[card] = token
	}
	return r, nil
}

// DefaultTables returns the built-in tables
func DefaultTables() Tables {
	t, err := ParseTables(defaultTables)
	if err != nil {
		panic(err)
	}
	return t
}

// Default returns a Resolver over the built-in tables
func Default() *Resolver {
	r, err := New(DefaultTables())
	if err != nil {
		panic(fmt.Sprintf("built-in nomenclature tables are invalid: %v", err))
	}
	return r
}

// WithOverrides builds a Resolver from the built-in tables merged with the file at path.
// An empty path yields Default().
func WithOverrides(path string) (*Resolver, error) {
	if path == "" {
		return Default(), nil
	}
	extra, err := LoadTables(path)
	if err != nil {
		return nil, err
	}
	return New(DefaultTables().Merge(extra))
}

// Translate maps a canonicalized name to the catalog's spelling
func (r *Resolver) Translate(name string) (string, bool) {
	to, ok := r.translations[name]
	if !ok {
		return name, false
	}
	return to, true
}

// Disambiguate resolves a name shared by several cards using its printed cost
func (r *Resolver) Disambiguate(name, cost string) (Alias, bool) {
	alias, ok := r.ambiguous[costKey{name, cost}]
	if !ok {
		return Alias{Name: name}, false
	}
	return alias, true
}

// ShipToken returns the token name for ship cards whose catchall is wrong or empty
func (r *Resolver) ShipToken(card string) (string, bool) {
	token, ok := r.shipTokens[card]
	return token, ok
}
