// Package classify works out which list builder produced a pasted fleet list.
package classify

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"listbuilder/internal/textutil"
)

// Dialect identifies a list builder's export format
type Dialect int

// Order matters: ties go to the earliest dialect.
const (
	Fab Dialect = iota
	Warlord
	AFD
	Kingston
	AFF
)

// Dialects lists every dialect in tie-break order
var Dialects = []Dialect{Fab, Warlord, AFD, Kingston, AFF}

func (d Dialect) String() string {
	switch d {
	case Fab:
		return "fab"
	case Warlord:
		return "warlord"
	case AFD:
		return "afd"
	case Kingston:
		return "kingston"
	case AFF:
		return "aff"
	default:
		return "unknown"
	}
}

// Title returns the human-readable name of the list builder
func (d Dialect) Title() string {
	switch d {
	case Fab:
		return "Fab's Armada Fleet Builder"
	case Warlord:
		return "Armada Warlords"
	case AFD:
		return "Armada Fleets Designer"
	case Kingston:
		return "Ryan Kingston's Armada Fleet Builder"
	case AFF:
		return "Armada Fleet Format"
	default:
		return "unknown"
	}
}

// ParseDialect accepts the short names returned by String
func ParseDialect(s string) (Dialect, error) {
	for _, d := range Dialects {
		if d.String() == strings.ToLower(strings.TrimSpace(s)) {
			return d, nil
		}
	}
	return 0, fmt.Errorf("unknown dialect %q", s)
}

// Scores holds the heuristic score of every dialect
type Scores [AFF + 1]float64

// Best returns the highest scoring dialect, earliest first on ties
func (s Scores) Best() Dialect {
	best := Fab
	for _, d := range Dialects {
		if s[d] > s[best] {
			best = d
		}
	}
	return best
}

// Ambiguous reports whether no heuristic fired at all
func (s Scores) Ambiguous() bool {
	for _, v := range s {
		if v != 0 {
			return false
		}
	}
	return true
}

func (s Scores) String() string {
	parts := make([]string, 0, len(s))
	for _, d := range Dialects {
		parts = append(parts, fmt.Sprintf("%s=%g", d, s[d]))
	}
	return strings.Join(parts, " ")
}

// signal adds to one dialect's score
type signal struct {
	dialect Dialect
	score   func(text string, lines []string) float64
}

var signals = []signal{
	{Fab, scoreFab},
	{Warlord, scoreWarlord},
	{AFD, scoreAFD},
	{Kingston, scoreKingston},
	{AFF, scoreAFF},
}

// Score evaluates every heuristic against text
func Score(text string) Scores {
	lines := textutil.Lines(text)
	text = strings.Join(lines, "\n")
	var s Scores
	for _, sig := range signals {
		s[sig.dialect] += sig.score(text, lines)
	}
	return s
}

// Identify returns the dialect text was most likely exported in. A first line
// naming Fab's site always wins. Never fails: unrecognised text yields Fab.
func Identify(text string) Dialect {
	d, _ := IdentifyWithScores(text)
	return d
}

// IdentifyWithScores is Identify plus the scores it was decided on
func IdentifyWithScores(text string) (Dialect, Scores) {
	s := Score(text)
	first := textutil.Lines(text)[0]
	if strings.Contains(strings.ToLower(first), "armada.fabpsb.net") {
		return Fab, s
	}
	return s.Best(), s
}

func leadingDigit(line string) (int, bool) {
	if line == "" || line[0] < '0' || line[0] > '9' {
		return 0, false
	}
	return int(line[0] - '0'), true
}

func scoreFab(text string, lines []string) float64 {
	var score float64
	if strings.Contains(text, " • ") {
		score++
	}
	if strings.Contains(lines[0], "FLEET") {
		score++
	}
	if strings.Contains(strings.ToLower(text), "armada.fabpsb.net") {
		score += 5
	}
	// Fab's numbers its entries; count how often the leading digit continues the sequence.
	next := 0
	for _, line := range lines {
		digit, ok := leadingDigit(line)
		if !ok || !strings.Contains(line, " • ") {
			continue
		}
		if digit == next+1 {
			score++
		}
		next += digit
	}
	return score
}

func scoreWarlord(text string, _ []string) float64 {
	text = strings.ReplaceAll(text, "â€¢", "•")
	var score float64
	if strings.Contains(strings.ReplaceAll(text, " ", ""), "[flagship]") {
		score += 5
	}
	if strings.Contains(text, "Armada Warlords") {
		score += 5
	}
	if strings.Contains(text, "Commander: ") {
		score += 2
	}
	for _, line := range strings.Split(text, "\n") {
		if strings.Contains(line, "\t points)") {
			score++
		}
		if strings.HasPrefix(strings.TrimSpace(line), "-  ") {
			score += 0.5
		}
	}
	return score
}

func scoreAFD(text string, lines []string) float64 {
	var score float64
	if strings.Contains(text, "+") {
		score++
	}
	if strings.Contains(lines[0], "/400)") {
		score += 2
	}
	for i := 1; i < len(lines); i++ {
		line := lines[i]
		// A title underlined with '='; the line endings may or may not have been counted.
		bars := strings.Count(line, "=")
		prev := utf8.RuneCountInString(lines[i-1])
		if bars > 3 && (prev == bars+1 || prev == bars) {
			score += 5
		}
		if strings.HasPrefix(strings.TrimSpace(line), "· ") {
			score++
		}
	}
	return score
}

func scoreKingston(text string, _ []string) float64 {
	text = strings.ReplaceAll(text, "â€¢", "•")
	var score float64
	if strings.Contains(text, "Faction:") {
		score++
	}
	if strings.Contains(text, "Commander: ") {
		score += 2
	}
	for _, line := range strings.Split(text, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "•") {
			score++
		}
	}
	return score
}

func scoreAFF(text string, _ []string) float64 {
	var score float64
	if strings.HasPrefix(text, "{") {
		score += 30
	}
	if strings.HasPrefix(text, "ship:") {
		score += 30
	}
	if strings.HasPrefix(text, "squadron:") {
		score += 30
	}
	return score
}
