package dialect

import (
	"strings"

	"listbuilder/internal/classify"
	"listbuilder/internal/fleet"
	"listbuilder/internal/nomenclature"
)

// Imperial and Republic variants of these ships print identically, cost included
var imperialVariants = map[string]string{
	"Venator II (100)": "Venator II Imp",
	"Victory I (73)":   "Victory I Imp",
}

// kingston reads Ryan Kingston's Armada Fleet Builder exports: header lines,
// objectives, ships with "• upgrade" lines, then a "Squadrons:" section
type kingston struct{}

func (kingston) Dialect() classify.Dialect { return classify.Kingston }
func (kingston) sealed()                   {}

func (kingston) Parse(text string, env Env) (*fleet.Fleet, error) {
	s := newSession(classify.Kingston, env)
	shipNext := true

	return s.run(lines(text), func(line string) error {
		card := strings.TrimSpace(line)
		if card == "" {
			return nil
		}
		head, tail, _ := strings.Cut(card, ":")
		key := strings.TrimSpace(head)

		switch {
		case key == "Name" || key == "Commander" || key == "Author" || key == "Version":
			s.metadata(key, tail)

		case key == "Faction":
			s.metadata(key, lastField(card, ":"))
			s.logger.Info("faction identified", "faction", s.fleet.Faction)

		case head == "Assault" || head == "Defense" || head == "Navigation":
			if strings.HasSuffix(card, ":") {
				return nil
			}
			objective, _, _ := strings.Cut(tail, ":")
			return s.addObjective(strings.ToLower(key), strings.ToLower(strings.TrimSpace(objective)))

		case shipNext:
			return s.kingstonShipSection(card, &shipNext)

		case strings.Contains(card, "•") && card[0] != '=':
			cost, _, _ := strings.Cut(lastField(card, " ("), ")")
			name := allButLast(lastField(card, " x "), " (", "")
			name = nomenclature.Canonicalize(name)
			return s.addSquadron(s.disambiguate(name, cost))
		}
		return nil
	})
}

func (s *session) kingstonShipSection(card string, shipNext *bool) error {
	switch {
	case strings.ToLower(card) == "squadrons:":
		s.logger.Debug("squadrons next")
		*shipNext = false

	case strings.Contains(card, "•"):
		name, rest, ok := strings.Cut(card, " (")
		if !ok {
			return malformed("upgrade without a cost")
		}
		cost, _, _ := strings.Cut(rest, ")")
		return s.addUpgrade(s.disambiguate(nomenclature.Canonicalize(name), cost))

	case card[0] == '=':

	default:
		if s.fleet.Faction == "Imperial" {
			if variant, ok := imperialVariants[card]; ok {
				s.logger.Info("using Imperial variant", "ship", card, "variant", variant)
				card = variant
			}
		}
		name, _, _ := strings.Cut(card, " (")
		return s.addShip(strings.TrimSpace(name))
	}
	return nil
}
