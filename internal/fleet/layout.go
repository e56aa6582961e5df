package fleet

// Table layout, in engine coordinates. Ships run left to right along shipY with
// their upgrades stacked in two rows beside them; squadrons follow in two rows.
const (
	startX = 200
	shipY  = 850

	objectiveOffsetX = -100
	objectiveStepX   = 25
	objectiveStepY   = 25

	cmdStackOffsetX = 90
	cmdStackOffsetY = -10

	cardToTokenX    = 173
	tokenToUpgradeX = 50
	upgradeStepX    = 145
	upgradeUpperY   = 775
	upgradeLowerY   = upgradeUpperY + 225
	toNextShipX     = 195

	squadronStepX  = 175
	squadronUpperY = shipY - 120
	squadronLowerY = squadronUpperY + 240
)

// cursor is the fleet-wide layout state. Placement depends only on call order.
type cursor struct {
	x          int
	upgradeRow int
	squadRow   int
	objX       int
	objY       int
}

func newCursor() cursor {
	return cursor{
		x:          startX,
		upgradeRow: 1,
		squadRow:   1,
		objX:       startX + objectiveOffsetX,
		objY:       shipY,
	}
}

// ship returns card, command stack and token positions
func (c *cursor) ship() (card, cmdStack, token Coords) {
	c.x += toNextShipX
	card = Coords{c.x, shipY}
	cmdStack = Coords{c.x + cmdStackOffsetX, shipY + cmdStackOffsetY}
	c.x += cardToTokenX
	token = Coords{c.x, shipY}
	c.x += tokenToUpgradeX
	c.upgradeRow = 1
	return card, cmdStack, token
}

// upgrade alternates between the upper and lower row, moving right before each upper one
func (c *cursor) upgrade() Coords {
	defer func() { c.upgradeRow++ }()
	if c.upgradeRow%2 == 1 {
		c.x += upgradeStepX
		return Coords{c.x, upgradeUpperY}
	}
	return Coords{c.x, upgradeLowerY}
}

func (c *cursor) squadron() Coords {
	defer func() { c.squadRow++ }()
	if c.squadRow%2 == 1 {
		c.x += squadronStepX
		return Coords{c.x, squadronUpperY}
	}
	return Coords{c.x, squadronLowerY}
}

func (c *cursor) objective() Coords {
	pos := Coords{c.objX, c.objY}
	c.objX += objectiveStepX
	c.objY += objectiveStepY
	return pos
}

// Placement is a piece's position without its content, for comparing layouts
type Placement struct {
	Type   string
	Name   string
	Coords Coords
}

// Layout lists every piece's placement in serialization order
func (f *Fleet) Layout() []Placement {
	pieces := f.Pieces()
	out := make([]Placement, 0, len(pieces))
	for _, p := range pieces {
		out = append(out, Placement{Type: string(p.Type), Name: p.Name, Coords: p.Coords})
	}
	return out
}
