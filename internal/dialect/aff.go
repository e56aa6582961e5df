package dialect

import (
	"strings"

	"listbuilder/internal/classify"
	"listbuilder/internal/fleet"
)

// aff reads the Armada Fleet Format: one "kind:name" pair per line
type aff struct{}

func (aff) Dialect() classify.Dialect { return classify.AFF }
func (aff) sealed()                   {}

func (aff) Parse(text string, env Env) (*fleet.Fleet, error) {
	s := newSession(classify.AFF, env)
	return s.run(lines(text), func(line string) error {
		line = strings.TrimSpace(line)
		value := strings.TrimSpace(lastField(line, ":"))
		lower := strings.ToLower(line)
		switch {
		case strings.HasPrefix(lower, "ship:"):
			return s.addShip(value)
		case strings.HasPrefix(lower, "upgrade:"):
			return s.addUpgrade(value)
		case strings.HasPrefix(lower, "squadron:"):
			return s.addSquadron(value)
		default:
			s.metadataLine(line)
		}
		return nil
	})
}
