package fleet

import (
	"errors"
	"fmt"

	"listbuilder/internal/catalog"
)

// ErrUnresolved matches every UnresolvedError
var ErrUnresolved = errors.New("piece not found in catalog")

// ErrInvalidCategory is returned for objective categories outside the closed set
var ErrInvalidCategory = errors.New("invalid objective category")

// UnresolvedError means a name from the list matched no catalog entry. Parsers
// record it and carry on.
type UnresolvedError struct {
	Type catalog.PieceType
	Name string
}

func (e *UnresolvedError) Error() string {
	return fmt.Sprintf("%s %q not found in catalog", e.Type, e.Name)
}

func (e *UnresolvedError) Is(target error) bool {
	return target == ErrUnresolved
}

// CatalogMissError means a piece that must exist for an already resolved card
// (its token or command stack) is missing. The catalog is incomplete, so the
// conversion cannot continue.
type CatalogMissError struct {
	Type  catalog.PieceType
	Name  string
	Owner string
}

func (e *CatalogMissError) Error() string {
	return fmt.Sprintf("catalog has no %s %q required by %s", e.Type, e.Name, e.Owner)
}

// Unresolved is a collected warning about a piece that could not be placed
type Unresolved struct {
	LineNo int
	Line   string
	Type   catalog.PieceType
	Name   string
	Reason string
}

func (u Unresolved) String() string {
	if u.LineNo > 0 {
		return fmt.Sprintf("line %d: %s %q: %s", u.LineNo, u.Type, u.Name, u.Reason)
	}
	return fmt.Sprintf("%s %q: %s", u.Type, u.Name, u.Reason)
}
