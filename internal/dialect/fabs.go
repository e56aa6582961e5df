package dialect

import (
	"strings"

	"listbuilder/internal/catalog"
	"listbuilder/internal/classify"
	"listbuilder/internal/fleet"
	"listbuilder/internal/nomenclature"
)

// fabs reads Fab's Armada Fleet Builder exports. Entries are numbered
// "N • Ship - Upgrade - Upgrade (cost)"; squadrons and upgradeless ships look
// the same, so the catalog decides which is which.
type fabs struct{}

func (fabs) Dialect() classify.Dialect { return classify.Fab }
func (fabs) sealed()                   {}

func (fabs) Parse(text string, env Env) (*fleet.Fleet, error) {
	s := newSession(classify.Fab, env)
	return s.run(lines(text), func(line string) error {
		line = strings.TrimSpace(line)
		if line == "" {
			return nil
		}
		if !isDigit(line[0]) {
			s.metadataLine(line)
			return nil
		}

		_, entry, _ := strings.Cut(line, " • ")
		entry = strings.ReplaceAll(entry, " • ", "")
		entry = allButLast(entry, " (", "")

		if strings.Contains(entry, " - ") {
			if strings.HasPrefix(entry, "Objective") {
				return nil
			}
			parts := strings.Split(entry, " - ")
			if err := s.addShip(strings.TrimSpace(parts[0])); err != nil {
				return err
			}
			for _, upgrade := range parts[1:] {
				if err := s.addUpgrade(strings.TrimSpace(upgrade)); err != nil {
					return err
				}
			}
			return nil
		}
		return s.fabsSingle(entry)
	})
}

// fabsSingle places an entry with no upgrades: a squadron or a bare ship
func (s *session) fabsSingle(entry string) error {
	name := s.translate(nomenclature.Canonicalize(entry))
	if name == "" {
		s.logger.Debug("skipping numbered line without an entry", "line", s.lineNo)
		return nil
	}

	isSquadron, err := s.inCatalog(catalog.SquadronCard, name, catalog.Substring)
	if err != nil {
		return err
	}
	if isSquadron {
		return s.addSquadron(name)
	}

	if short, ok := strings.CutSuffix(name, "squadron"); ok {
		short = nomenclature.Canonicalize(short)
		found, err := s.inCatalog(catalog.SquadronCard, short, catalog.Substring)
		if err != nil {
			return err
		}
		if found {
			return s.addSquadron(short)
		}
	}

	isShip, err := s.inCatalog(catalog.ShipCard, name, catalog.Suffix)
	if err != nil {
		return err
	}
	if isShip {
		return s.addShip(name)
	}
	s.unknown(name)
	return nil
}
