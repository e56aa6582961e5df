package fleet

import (
	"fmt"
	"math/rand/v2"
	"regexp"
	"strconv"
	"strings"
	"sync/atomic"

	"listbuilder/internal/catalog"
)

const (
	guidPlaceholder  = "vlb_GUID"
	xAxisPlaceholder = "vlb_x_axis"
	yAxisPlaceholder = "vlb_y_axis"
)

var tablePosition = regexp.MustCompile(`Table;\d{1,4};\d{1,4}`)

// Coords is a position on the engine's table
type Coords struct {
	X int
	Y int
}

// Piece is one placed game object
type Piece struct {
	Type    catalog.PieceType
	Name    string
	GUID    string
	Coords  Coords
	Content string
}

func newPiece(tpl catalog.Template, guid string) *Piece {
	content := strings.ReplaceAll(tpl.Content, guidPlaceholder, guid)
	content = strings.ReplaceAll(content, xAxisPlaceholder, "0")
	content = strings.ReplaceAll(content, yAxisPlaceholder, "0")
	return &Piece{
		Type:    tpl.Type,
		Name:    tpl.Name,
		GUID:    guid,
		Content: content,
	}
}

// place moves the piece by rewriting the Table;x;y marker in its content
func (p *Piece) place(c Coords) {
	p.Content = tablePosition.ReplaceAllLiteralString(p.Content, fmt.Sprintf("Table;%d;%d", c.X, c.Y))
	p.Coords = c
}

// flipObjectiveSide rewrites the piece field of objective content so the engine
// spawns the card on the second player's side
func flipObjectiveSide(content string) string {
	var b strings.Builder
	for _, field := range strings.Split(content, "\t") {
		if strings.HasPrefix(strings.TrimSpace(field), "piece;;;;") {
			field = strings.ReplaceAll(field, "1", "2")
		}
		b.WriteString(field)
		b.WriteByte('\t')
	}
	return b.String()
}

// GUIDSource hands out per-piece identifiers
type GUIDSource interface {
	Next() string
}

const guidLimit = 10_000_000_000_000

// RandomGUIDs draws identifiers below 10^13, the range the engine's own pieces use
type RandomGUIDs struct{}

func (RandomGUIDs) Next() string {
	return strconv.FormatInt(rand.Int64N(guidLimit), 10)
}

// SequentialGUIDs counts up from Start; safe for concurrent use
type SequentialGUIDs struct {
	Start int64
	n     atomic.Int64
}

// NewSequentialGUIDs returns a source whose first identifier is start
func NewSequentialGUIDs(start int64) *SequentialGUIDs {
	return &SequentialGUIDs{Start: start}
}

func (s *SequentialGUIDs) Next() string {
	return strconv.FormatInt(s.Start+s.n.Add(1)-1, 10)
}
