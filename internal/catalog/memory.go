package catalog

import (
	"fmt"
	"sort"
)

// Memory is an immutable in-memory catalog. Build it once, then share it freely.
type Memory struct {
	byName map[PieceType]map[string]Template
	sorted map[PieceType][]Template
	size   int
}

// NewMemory indexes the given templates. Later duplicates of a type+name replace earlier ones.
func NewMemory(templates []Template) (*Memory, error) {
	m := &Memory{
		byName: make(map[PieceType]map[string]Template),
		sorted: make(map[PieceType][]Template),
	}
	for _, tpl := range templates {
		if _, err := ParsePieceType(string(tpl.Type)); err != nil {
			return nil, fmt.Errorf("template %q: %w", tpl.Name, err)
		}
		if tpl.Name == "" {
			return nil, fmt.Errorf("template of type %s has no name", tpl.Type)
		}
		if m.byName[tpl.Type] == nil {
			m.byName[tpl.Type] = make(map[string]Template)
		}
		m.byName[tpl.Type][tpl.Name] = tpl
	}
	for t, names := range m.byName {
		list := make([]Template, 0, len(names))
		for _, tpl := range names {
			list = append(list, tpl)
		}
		sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
		m.sorted[t] = list
		m.size += len(list)
	}
	return m, nil
}

// Lookup implements Catalog
func (m *Memory) Lookup(t PieceType, name string, mode MatchMode) (Template, bool, error) {
	if mode == Exact {
		tpl, ok := m.byName[t][name]
		return tpl, ok, nil
	}
	var candidates []Template
	for _, tpl := range m.sorted[t] {
		if mode.Matches(tpl.Name, name) {
			candidates = append(candidates, tpl)
		}
	}
	tpl, ok := pick(candidates, name)
	return tpl, ok, nil
}

// Len returns the number of templates held
func (m *Memory) Len() int {
	return m.size
}

// Templates returns every template ordered by type then name
func (m *Memory) Templates() []Template {
	out := make([]Template, 0, m.size)
	for _, t := range PieceTypes {
		out = append(out, m.sorted[t]...)
	}
	return out
}

// Enumerator is implemented by stores that can list all of their templates
type Enumerator interface {
	All() ([]Template, error)
}

// Preload snapshots an enumerable store into memory
func Preload(src Enumerator) (*Memory, error) {
	templates, err := src.All()
	if err != nil {
		return nil, fmt.Errorf("preload catalog: %w", err)
	}
	return NewMemory(templates)
}
