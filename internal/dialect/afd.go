package dialect

import (
	"strings"

	"listbuilder/internal/catalog"
	"listbuilder/internal/classify"
	"listbuilder/internal/fleet"
	"listbuilder/internal/nomenclature"
)

// afd reads Armada Fleets Designer exports: a title underlined with '=', then
// ships, "· upgrade" lines, squadrons and finally bare objective names
type afd struct{}

func (afd) Dialect() classify.Dialect { return classify.AFD }
func (afd) sealed()                   {}

func (afd) Parse(text string, env Env) (*fleet.Fleet, error) {
	s := newSession(classify.AFD, env)
	started := false
	category := fleet.Assault

	return s.run(lines(strings.TrimSpace(text)), func(line string) error {
		card := strings.TrimSpace(line)
		if _, after, ok := strings.Cut(card, " x "); ok {
			card = after
		}

		switch {
		case strings.HasPrefix(card, "==="):
			started = true

		case !started:
			if s.lineNo == 1 {
				s.afdTitle(card)
			}

		case card == "":

		case strings.HasPrefix(card, "·"):
			parts := strings.Split(card, "(")
			if len(parts) != 2 {
				return malformed("upgrade line needs exactly one cost")
			}
			cost, _, _ := strings.Cut(parts[1], ")")
			return s.addUpgrade(s.afdResolve(nomenclature.Canonicalize(parts[0]), cost))

		case !strings.Contains(card, "("):
			err := s.addObjective(string(category), nomenclature.Canonicalize(card))
			if category == fleet.Assault {
				category = fleet.Defense
			} else {
				category = fleet.Navigation
			}
			return err

		default:
			name, rest, ok := strings.Cut(card, " (")
			if !ok {
				return malformed("cost is not separated from the name")
			}
			cost, _, _ := strings.Cut(lastField(rest, " x "), ")")
			return s.afdPiece(s.afdResolve(nomenclature.Canonicalize(name), cost))
		}
		return nil
	})
}

// afdTitle records "Fleet name (392/400)"
func (s *session) afdTitle(title string) {
	name, rest, ok := strings.Cut(title, " (")
	if !ok {
		return
	}
	s.fleet.Name = strings.TrimSpace(name)
	points, _, _ := strings.Cut(rest, ")")
	s.fleet.SetPoints(points)
}

// afdResolve checks for a cost-ambiguous name both before and after translation,
// since either spelling may be the ambiguous one
func (s *session) afdResolve(name, cost string) string {
	name = s.disambiguate(name, cost)
	name = s.translate(name)
	return s.disambiguate(name, cost)
}

func (s *session) afdPiece(name string) error {
	isSquadron, err := s.inCatalog(catalog.SquadronCard, name, catalog.Substring)
	if err != nil {
		return err
	}
	if isSquadron {
		return s.addSquadron(name)
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
