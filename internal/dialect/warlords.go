package dialect

import (
	"regexp"
	"strconv"
	"strings"

	"listbuilder/internal/catalog"
	"listbuilder/internal/classify"
	"listbuilder/internal/fleet"
	"listbuilder/internal/nomenclature"
)

var (
	// Flagship exports look like Warlords but total each ship on its own line
	flagshipPattern = regexp.MustCompile(`\)\n= [\d]{1,3} points\n`)
	warlordShip     = regexp.MustCompile(`.*\([\d]{1,3} points\)`)
	warlordSquadron = regexp.MustCompile(`^[\d]{1,2}.*\(.*[\d]{1,3} points\)`)
)

const flagshipHint = "This appears to be a Flagship list. Flagship is supported only insofar as " +
	"it matches the Warlords format; removing the squadrons and spawning them by hand usually works."

var warlordMetadata = []string{"Faction:", "Points:", "Commander:", "Author:"}

// warlords reads Armada Warlords exports (and Flagship exports that match them)
type warlords struct{}

func (warlords) Dialect() classify.Dialect { return classify.Warlord }
func (warlords) sealed()                   {}

func (warlords) Parse(text string, env Env) (*fleet.Fleet, error) {
	s := newSession(classify.Warlord, env)
	input := lines(text)
	if flagshipPattern.MatchString(strings.Join(input, "\n")) {
		s.logger.Info("list looks like a Flagship export")
		s.hint = flagshipHint
	}

	shipNext, err := s.startsWithShip(input[0])
	if err != nil {
		return nil, &ParseFailure{Dialect: classify.Warlord, LineNo: 1, Line: input[0], Hint: s.hint, Err: err}
	}

	return s.run(input, func(line string) error {
		card := strings.TrimSpace(line)
		fields := strings.Fields(card)

		switch {
		case len(fields) <= 1:
			shipNext = true

		case isWarlordMetadata(fields[0]):
			key, value, _ := strings.Cut(card, ":")
			s.metadata(key, value)

		case fields[1] == "Objective:":
			shipNext = false
			return s.addObjective(fields[0], strings.Split(card, ":")[1])

		case warlordSquadron.MatchString(card):
			shipNext = false
			return s.warlordSquadron(card, fields)

		case card[0] == '=':
			shipNext = true

		case shipNext:
			shipNext = false
			return s.warlordShip(card)

		case card[0] == '-':
			shipNext = false
			return s.warlordUpgrade(card)
		}
		return nil
	})
}

// startsWithShip handles pastes that drop the header and begin at the first ship.
// The first word must begin a ship or ship card name.
func (s *session) startsWithShip(first string) (bool, error) {
	first = strings.TrimSpace(first)
	if !warlordShip.MatchString(first) {
		return false, nil
	}
	word := nomenclature.Canonicalize(firstField(first))
	for _, t := range []catalog.PieceType{catalog.Ship, catalog.ShipCard} {
		found, err := s.inCatalog(t, word, catalog.Prefix)
		if err != nil || found {
			return found, err
		}
	}
	return false, nil
}

func isWarlordMetadata(field string) bool {
	for _, key := range warlordMetadata {
		if field == key {
			return true
		}
	}
	return false
}

// warlordSquadron reads "2 TIE Fighter Squadrons ( 16 points)"; counts above one pluralize the name
func (s *session) warlordSquadron(card string, fields []string) error {
	before, _, _ := strings.Cut(card, "(")
	words := strings.Fields(before)
	name := nomenclature.Canonicalize(strings.Join(words[1:], ""))
	cost := nomenclature.Canonicalize(firstField(lastField(card, "(")))
	if n, err := strconv.Atoi(fields[0]); err == nil && n > 1 && name != "" {
		name = name[:len(name)-1]
	}
	return s.addSquadron(s.disambiguate(name, cost))
}

// warlordShip reads "[ flagship ] Victory II-class Star Destroyer (85 points)"
func (s *session) warlordShip(card string) error {
	rest := lastField(card, "]")
	name, cost := rest, ""
	if strings.Contains(rest, "(") {
		name = allButLast(rest, "(", "(")
		cost = nomenclature.Canonicalize(firstField(lastField(rest, "(")))
	}
	name = nomenclature.Canonicalize(strings.Trim(name, " -\t"))
	return s.addShip(s.disambiguate(name, cost))
}

// warlordUpgrade reads "-  Gunnery Team  ( 7  points)"
func (s *session) warlordUpgrade(card string) error {
	i := strings.LastIndex(card, "(")
	if i < 0 {
		return malformed("upgrade without a cost")
	}
	name := nomenclature.Canonicalize(card[:i])
	cost := nomenclature.Canonicalize(firstField(card[i+1:]))
	return s.addUpgrade(s.disambiguate(name, cost))
}
