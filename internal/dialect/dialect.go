// Package dialect parses the text exports of the supported list builders into
// a fleet.Fleet. Each dialect is a single pass over the lines of the list with
// a little state, such as whether the next line names a ship or which objective
// category comes next.
package dialect

import (
	"errors"
	"fmt"
	"log/slog"

	"listbuilder/internal/catalog"
	"listbuilder/internal/classify"
	"listbuilder/internal/fleet"
	"listbuilder/internal/log"
	"listbuilder/internal/nomenclature"
)

// ErrMalformedLine is wrapped by failures caused by a line the dialect cannot read
var ErrMalformedLine = errors.New("malformed line")

// Env carries the collaborators a parse needs
type Env struct {
	Catalog  catalog.Catalog
	Resolver *nomenclature.Resolver
	GUIDs    fleet.GUIDSource // nil means random
	Logger   *slog.Logger     // nil means the global logger
}

func (e Env) logger() *slog.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return log.Logger()
}

func (e Env) newFleet() *fleet.Fleet {
	opts := []fleet.Option{fleet.WithLogger(e.logger())}
	if e.GUIDs != nil {
		opts = append(opts, fleet.WithGUIDSource(e.GUIDs))
	}
	return fleet.New(e.Catalog, e.Resolver, opts...)
}

// Parser turns one dialect's text into a fleet. The set of parsers is closed;
// obtain one with For.
type Parser interface {
	Dialect() classify.Dialect
	// Parse returns the populated fleet, or a *ParseFailure naming the line it stopped at.
	// Pieces that could not be resolved are recorded on Fleet.Unresolved instead.
	Parse(text string, env Env) (*fleet.Fleet, error)

	sealed()
}

// For returns the parser for d
func For(d classify.Dialect) (Parser, error) {
	switch d {
	case classify.Fab:
		return fabs{}, nil
	case classify.Warlord:
		return warlords{}, nil
	case classify.AFD:
		return afd{}, nil
	case classify.Kingston:
		return kingston{}, nil
	case classify.AFF:
		return aff{}, nil
	}
	return nil, fmt.Errorf("no parser for dialect %d", int(d))
}

// Parse identifies the dialect of text and parses it
func Parse(text string, env Env) (*fleet.Fleet, classify.Dialect, error) {
	d, scores := classify.IdentifyWithScores(text)
	if scores.Ambiguous() {
		env.logger().Warn("could not identify list format, assuming default", "dialect", d)
	} else {
		env.logger().Info("identified list format", "dialect", d, "scores", scores.String())
	}
	return ParseAs(d, text, env)
}

// ParseAs parses text with the parser for d, skipping identification
func ParseAs(d classify.Dialect, text string, env Env) (*fleet.Fleet, classify.Dialect, error) {
	p, err := For(d)
	if err != nil {
		return nil, d, err
	}
	f, err := p.Parse(text, env)
	return f, d, err
}

// ParseFailure aborts a parse. Line is the input line being processed.
type ParseFailure struct {
	Dialect classify.Dialect
	LineNo  int
	Line    string
	Hint    string
	Err     error
}

func (e *ParseFailure) Error() string {
	return fmt.Sprintf("%s list: line %d %q: %v", e.Dialect, e.LineNo, e.Line, e.Err)
}

func (e *ParseFailure) Unwrap() error {
	return e.Err
}

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformedLine, fmt.Sprintf(format, args...))
}
