package dialect

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"listbuilder/internal/catalog"
	"listbuilder/internal/classify"
	"listbuilder/internal/fleet"
	"listbuilder/internal/nomenclature"
	"listbuilder/internal/textutil"
)

// session is the state shared by every dialect while one list is parsed
type session struct {
	dialect  classify.Dialect
	env      Env
	fleet    *fleet.Fleet
	logger   *slog.Logger
	lineNo   int
	line     string
	hint     string
	ship     *fleet.Ship
	shipSeen bool
}

func newSession(d classify.Dialect, env Env) *session {
	logger := env.logger().With("dialect", d.String())
	env.Logger = logger
	return &session{
		dialect: d,
		env:     env,
		fleet:   env.newFleet(),
		logger:  logger,
	}
}

// run feeds lines to step in order. An error or panic from step ends the parse.
func (s *session) run(lines []string, step func(line string) error) (*fleet.Fleet, error) {
	for i, line := range lines {
		s.lineNo = i + 1
		s.line = line
		s.logger.Debug("parsing line", "line", s.lineNo, "text", line)
		if err := s.guard(step, line); err != nil {
			return nil, &ParseFailure{
				Dialect: s.dialect,
				LineNo:  s.lineNo,
				Line:    s.line,
				Hint:    s.hint,
				Err:     err,
			}
		}
	}
	return s.fleet, nil
}

func (s *session) guard(step func(string) error, line string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("panic while parsing line", "line", s.lineNo, "panic", r)
			err = fmt.Errorf("%w: %v", ErrMalformedLine, r)
		}
	}()
	return step(line)
}

func lines(text string) []string {
	out := textutil.Lines(text)
	for i, line := range out {
		out[i] = textutil.RepairMojibake(line)
	}
	return out
}

// unresolved turns an UnresolvedError into a warning; other errors pass through
func (s *session) unresolved(err error, reason string) error {
	var ue *fleet.UnresolvedError
	if !errors.As(err, &ue) {
		return err
	}
	s.fleet.Warn(fleet.Unresolved{
		LineNo: s.lineNo,
		Line:   s.line,
		Type:   ue.Type,
		Name:   ue.Name,
		Reason: reason,
	})
	return nil
}

func (s *session) addShip(name string) error {
	s.shipSeen = true
	ship, err := s.fleet.AddShip(name)
	if err != nil {
		s.ship = nil
		return s.unresolved(err, "no matching ship card")
	}
	s.ship = ship
	return nil
}

func (s *session) addUpgrade(name string) error {
	if s.ship == nil {
		if !s.shipSeen {
			return malformed("upgrade %q before any ship", name)
		}
		s.fleet.Warn(fleet.Unresolved{
			LineNo: s.lineNo,
			Line:   s.line,
			Type:   catalog.UpgradeCard,
			Name:   nomenclature.Canonicalize(name),
			Reason: "its ship was not resolved",
		})
		return nil
	}
	_, err := s.ship.AddUpgrade(name)
	if err != nil {
		return s.unresolved(err, "no matching upgrade card")
	}
	return nil
}

func (s *session) addSquadron(name string) error {
	_, err := s.fleet.AddSquadron(name)
	if err != nil {
		return s.unresolved(err, "no matching squadron card")
	}
	return nil
}

func (s *session) addObjective(category, name string) error {
	_, err := s.fleet.AddObjective(category, name)
	if err != nil {
		return s.unresolved(err, "no matching objective")
	}
	return nil
}

// unknown records a line that looked like a piece but matched neither a ship nor a squadron
func (s *session) unknown(name string) {
	s.fleet.Warn(fleet.Unresolved{
		LineNo: s.lineNo,
		Line:   s.line,
		Name:   name,
		Reason: "matches neither a ship nor a squadron",
	})
}

func (s *session) translate(name string) string {
	if to, ok := s.env.Resolver.Translate(name); ok {
		s.logger.Info("translated piece name", "from", name, "to", to)
		return to
	}
	return name
}

func (s *session) disambiguate(name, cost string) string {
	if alias, ok := s.env.Resolver.Disambiguate(name, cost); ok {
		s.logger.Info("disambiguated piece name", "name", name, "cost", cost, "to", alias.Name, "type", alias.Type)
		return alias.Name
	}
	return name
}

// inCatalog reports whether any piece of type t matches name under mode
func (s *session) inCatalog(t catalog.PieceType, name string, mode catalog.MatchMode) (bool, error) {
	if name == "" {
		return false, nil
	}
	_, ok, err := s.env.Catalog.Lookup(t, name, mode)
	if err != nil {
		return false, fmt.Errorf("catalog lookup %s %q: %w", t, name, err)
	}
	return ok, nil
}

// metadata records "Key: value" header lines. It reports whether key was recognised.
func (s *session) metadata(key, value string) bool {
	value = strings.TrimSpace(value)
	switch strings.ToLower(strings.TrimSpace(key)) {
	case "name":
		s.fleet.Name = value
	case "faction":
		s.fleet.Faction = value
	case "points":
		s.fleet.SetPoints(value)
	case "commander":
		s.fleet.Commander = value
	case "author":
		s.fleet.Author = value
	case "version":
		s.fleet.Version = value
	default:
		return false
	}
	return true
}

// metadataLine splits a "Key: value" line and records it
func (s *session) metadataLine(line string) bool {
	key, value, ok := strings.Cut(line, ":")
	if !ok {
		return false
	}
	return s.metadata(key, value)
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

// lastField returns the part of s after the final sep
func lastField(s, sep string) string {
	if i := strings.LastIndex(s, sep); i >= 0 {
		return s[i+len(sep):]
	}
	return s
}

// allButLast joins every sep-separated part of s except the final one
func allButLast(s, sep, join string) string {
	parts := strings.Split(s, sep)
	return strings.Join(parts[:len(parts)-1], join)
}

// firstField returns the first whitespace-separated word of s, or ""
func firstField(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
