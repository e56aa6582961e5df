package listbuilder

import (
	"fmt"
	"strings"

	"listbuilder/internal/fleet"
)

// UnresolvedListError fails a conversion under the strict policy
type UnresolvedListError struct {
	Pieces []fleet.Unresolved
}

func (e *UnresolvedListError) Error() string {
	names := make([]string, 0, len(e.Pieces))
	for _, u := range e.Pieces {
		names = append(names, u.Name)
	}
	return fmt.Sprintf("%d unresolved pieces: %s", len(e.Pieces), strings.Join(names, ", "))
}

// Unwrap lets errors.Is match fleet.ErrUnresolved
func (e *UnresolvedListError) Unwrap() error {
	return fleet.ErrUnresolved
}
