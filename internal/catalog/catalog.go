// Package catalog provides read access to the piece templates the engine module
// defines: ship cards, tokens, command stacks, upgrades, squadrons and objectives.
//
// Templates are keyed by piece type and scrubbed piece name. A template's content
// still carries the vlb_GUID / vlb_x_axis / vlb_y_axis placeholders; the fleet
// package instantiates them.
package catalog

import (
	"fmt"
	"sort"
	"strings"
)

// PieceType is the catalog's piece category
type PieceType string

const (
	Ship         PieceType = "ship" // ship token
	ShipCard     PieceType = "shipcard"
	Squadron     PieceType = "squadron" // squadron token
	SquadronCard PieceType = "squadroncard"
	UpgradeCard  PieceType = "upgradecard"
	Objective    PieceType = "objective"
	Other        PieceType = "other" // command stacks and similar
)

// PieceTypes lists every known piece type
var PieceTypes = []PieceType{Ship, ShipCard, Squadron, SquadronCard, UpgradeCard, Objective, Other}

// ParsePieceType validates a piece type string
func ParsePieceType(s string) (PieceType, error) {
	for _, t := range PieceTypes {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown piece type %q", s)
}

// MatchMode selects how a name is compared against catalog names
type MatchMode int

const (
	Exact MatchMode = iota
	Prefix
	Suffix
	Substring
)

func (m MatchMode) String() string {
	switch m {
	case Exact:
		return "exact"
	case Prefix:
		return "prefix"
	case Suffix:
		return "suffix"
	case Substring:
		return "substring"
	default:
		return "unknown"
	}
}

// Matches reports whether candidate satisfies the mode for name
func (m MatchMode) Matches(candidate, name string) bool {
	switch m {
	case Exact:
		return candidate == name
	case Prefix:
		return strings.HasPrefix(candidate, name)
	case Suffix:
		return strings.HasSuffix(candidate, name)
	case Substring:
		return strings.Contains(candidate, name)
	}
	return false
}

// Template is an immutable catalog record
type Template struct {
	Type    PieceType `yaml:"type"`
	Name    string    `yaml:"name"`
	Content string    `yaml:"content"`
	Token   string    `yaml:"token,omitempty"` // catchall: associated token name for cards
}

// Catalog looks up piece templates. Implementations must be safe for concurrent use.
type Catalog interface {
	// Lookup returns the best template of type t matching name under mode.
	// The boolean is false when nothing matches; err is reserved for store failures.
	Lookup(t PieceType, name string, mode MatchMode) (Template, bool, error)
}

// pick chooses among several matches: an exact name wins, then the shortest
// name, then lexicographic order.
func pick(candidates []Template, name string) (Template, bool) {
	if len(candidates) == 0 {
		return Template{}, false
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if (a.Name == name) != (b.Name == name) {
			return a.Name == name
		}
		if len(a.Name) != len(b.Name) {
			return len(a.Name) < len(b.Name)
		}
		return a.Name < b.Name
	})
	return candidates[0], true
}
