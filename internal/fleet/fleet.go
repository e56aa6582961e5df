// Package fleet holds the in-memory model of a parsed fleet list and lays its
// pieces out on the engine's table as they are added.
package fleet

import (
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"listbuilder/internal/catalog"
	"listbuilder/internal/log"
	"listbuilder/internal/nomenclature"
)

// Category is an objective slot
type Category string

const (
	Assault    Category = "assault"
	Defense    Category = "defense"
	Navigation Category = "navigation"
	Campaign   Category = "campaign"
	OtherObj   Category = "other"
)

// Categories is the closed set of objective categories
var Categories = []Category{Assault, Defense, Navigation, Campaign, OtherObj}

// ParseCategory canonicalizes and validates a category name
func ParseCategory(s string) (Category, error) {
	c := Category(nomenclature.Canonicalize(s))
	if slices.Contains(Categories, c) {
		return c, nil
	}
	return "", fmt.Errorf("%w: %q (valid: %v)", ErrInvalidCategory, s, Categories)
}

// Ship is a ship card with its token, command stack and upgrades
type Ship struct {
	Name     string
	Card     *Piece
	Token    *Piece
	CmdStack *Piece
	Upgrades []*Piece

	fleet *Fleet
}

// Squadron is a squadron card and its token
type Squadron struct {
	Name  string
	Card  *Piece
	Token *Piece
}

// Objective fills one category
type Objective struct {
	Category Category
	Piece    *Piece
}

// Fleet is the aggregate a parser builds. It is not safe for concurrent use.
type Fleet struct {
	Name      string
	Faction   string
	Points    int
	Commander string
	Author    string
	Version   string

	Ships      []*Ship
	Squadrons  []*Squadron
	Unresolved []Unresolved

	objectives []*Objective
	cursor     cursor

	catalog  catalog.Catalog
	resolver *nomenclature.Resolver
	guids    GUIDSource
	logger   *slog.Logger
}

// Option configures a Fleet
type Option func(*Fleet)

// WithGUIDSource replaces the random GUID source
func WithGUIDSource(src GUIDSource) Option {
	return func(f *Fleet) { f.guids = src }
}

// WithLogger sets the logger translations and placements are reported to
func WithLogger(l *slog.Logger) Option {
	return func(f *Fleet) { f.logger = l }
}

// New creates an empty fleet resolving pieces against cat
func New(cat catalog.Catalog, resolver *nomenclature.Resolver, opts ...Option) *Fleet {
	f := &Fleet{
		cursor:   newCursor(),
		catalog:  cat,
		resolver: resolver,
		guids:    RandomGUIDs{},
		logger:   log.Logger(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// SetPoints records the points line of a list ("400" or "392/400"); anything
// unparseable leaves zero
func (f *Fleet) SetPoints(s string) {
	s, _, _ = strings.Cut(strings.TrimSpace(s), "/")
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		f.logger.Info("failed to set points", "value", s)
		n = 0
	}
	f.Points = n
}

// Warn records an unresolved piece
func (f *Fleet) Warn(u Unresolved) {
	f.logger.Warn("unresolved piece", "type", u.Type, "name", u.Name, "line", u.LineNo, "reason", u.Reason)
	f.Unresolved = append(f.Unresolved, u)
}

// resolve canonicalizes and translates a list name
func (f *Fleet) resolve(raw string) string {
	name := nomenclature.Canonicalize(raw)
	if to, ok := f.resolver.Translate(name); ok {
		f.logger.Info("translated piece name", "from", name, "to", to)
		return to
	}
	return name
}

func (f *Fleet) lookup(t catalog.PieceType, name string, mode catalog.MatchMode) (catalog.Template, bool, error) {
	f.logger.Debug("catalog lookup", "type", t, "name", name, "mode", mode)
	tpl, ok, err := f.catalog.Lookup(t, name, mode)
	if err != nil {
		return catalog.Template{}, false, fmt.Errorf("catalog lookup %s %q: %w", t, name, err)
	}
	return tpl, ok, nil
}

// require fetches a piece that an already resolved card depends on
func (f *Fleet) require(t catalog.PieceType, name, owner string) (*Piece, error) {
	tpl, ok, err := f.lookup(t, name, catalog.Exact)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &CatalogMissError{Type: t, Name: name, Owner: owner}
	}
	return newPiece(tpl, f.guids.Next()), nil
}

const commandMarker = "/placemark;Spawn Command "

// commandStackName reads the command value printed after the card's spawn marker
func commandStackName(card *Piece) (string, bool) {
	i := strings.LastIndex(card.Content, commandMarker)
	if i < 0 || i+len(commandMarker) >= len(card.Content) {
		return "", false
	}
	return "commandstack" + card.Content[i+len(commandMarker):i+len(commandMarker)+1], true
}

// AddShip resolves a ship card plus its token and command stack and places them
// to the right of the previous ship
func (f *Fleet) AddShip(raw string) (*Ship, error) {
	name := f.resolve(raw)
	tpl, ok, err := f.lookup(catalog.ShipCard, name, catalog.Exact)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &UnresolvedError{Type: catalog.ShipCard, Name: name}
	}
	card := newPiece(tpl, f.guids.Next())

	// The catchall already holds the catalog's token name; list-name translations do not apply.
	tokenName, ok := f.resolver.ShipToken(tpl.Name)
	if !ok {
		tokenName = nomenclature.Canonicalize(tpl.Token)
	}
	token, err := f.require(catalog.Ship, tokenName, "ship card "+tpl.Name)
	if err != nil {
		return nil, err
	}

	stackName, ok := commandStackName(card)
	if !ok {
		return nil, &CatalogMissError{Type: catalog.Other, Name: "commandstack", Owner: "ship card " + tpl.Name}
	}
	stack, err := f.require(catalog.Other, nomenclature.Canonicalize(stackName), "ship card "+tpl.Name)
	if err != nil {
		return nil, err
	}

	cardAt, stackAt, tokenAt := f.cursor.ship()
	card.place(cardAt)
	stack.place(stackAt)
	token.place(tokenAt)

	ship := &Ship{Name: tpl.Name, Card: card, Token: token, CmdStack: stack, fleet: f}
	f.Ships = append(f.Ships, ship)
	f.logger.Debug("added ship", "name", ship.Name, "x", cardAt.X)
	return ship, nil
}

// RemoveShip drops a ship and its upgrades. Remaining pieces keep their places.
func (f *Fleet) RemoveShip(s *Ship) bool {
	i := slices.Index(f.Ships, s)
	if i < 0 {
		return false
	}
	f.Ships = slices.Delete(f.Ships, i, i+1)
	return true
}

// AddUpgrade resolves an upgrade card and places it in the next upgrade slot
func (s *Ship) AddUpgrade(raw string) (*Piece, error) {
	f := s.fleet
	name := f.resolve(raw)
	tpl, ok, err := f.lookup(catalog.UpgradeCard, name, catalog.Exact)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &UnresolvedError{Type: catalog.UpgradeCard, Name: name}
	}
	u := newPiece(tpl, f.guids.Next())
	u.place(f.cursor.upgrade())
	s.Upgrades = append(s.Upgrades, u)
	return u, nil
}

// RemoveUpgrade drops one upgrade from the ship
func (s *Ship) RemoveUpgrade(u *Piece) bool {
	i := slices.Index(s.Upgrades, u)
	if i < 0 {
		return false
	}
	s.Upgrades = slices.Delete(s.Upgrades, i, i+1)
	return true
}

// AddSquadron resolves a squadron card by partial name, retrying without the
// word "squadron" since some builders append it to every squadron name
func (f *Fleet) AddSquadron(raw string) (*Squadron, error) {
	name := f.resolve(raw)
	tpl, ok, err := f.findSquadron(name)
	if err != nil {
		return nil, err
	}
	if !ok {
		stripped := nomenclature.Canonicalize(strings.ReplaceAll(name, "squadron", ""))
		if stripped != name {
			f.logger.Info("retrying squadron without suffix", "from", name, "to", stripped)
			if tpl, ok, err = f.findSquadron(stripped); err != nil {
				return nil, err
			}
		}
	}
	if !ok {
		return nil, &UnresolvedError{Type: catalog.SquadronCard, Name: name}
	}

	card := newPiece(tpl, f.guids.Next())
	token, err := f.require(catalog.Squadron, nomenclature.Canonicalize(tpl.Token), "squadron card "+tpl.Name)
	if err != nil {
		return nil, err
	}
	at := f.cursor.squadron()
	card.place(at)
	token.place(at)

	sq := &Squadron{Name: tpl.Name, Card: card, Token: token}
	f.Squadrons = append(f.Squadrons, sq)
	return sq, nil
}

func (f *Fleet) findSquadron(name string) (catalog.Template, bool, error) {
	if name == "" {
		return catalog.Template{}, false, nil
	}
	return f.lookup(catalog.SquadronCard, name, catalog.Substring)
}

// RemoveSquadron drops a squadron
func (f *Fleet) RemoveSquadron(sq *Squadron) bool {
	i := slices.Index(f.Squadrons, sq)
	if i < 0 {
		return false
	}
	f.Squadrons = slices.Delete(f.Squadrons, i, i+1)
	return true
}

// AddObjective fills a category. A category that is already filled is replaced
// in place. Custom objectives have no card and return nil without error.
func (f *Fleet) AddObjective(category, raw string) (*Objective, error) {
	name := f.resolve(raw)
	if strings.Contains(name, "custom") {
		f.logger.Info("skipping custom objective", "name", name)
		return nil, nil
	}
	cat, err := ParseCategory(category)
	if err != nil {
		return nil, err
	}
	tpl, ok, err := f.lookup(catalog.Objective, name, catalog.Exact)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &UnresolvedError{Type: catalog.Objective, Name: name}
	}

	p := newPiece(tpl, f.guids.Next())
	p.Content = flipObjectiveSide(p.Content)
	p.place(f.cursor.objective())

	obj := &Objective{Category: cat, Piece: p}
	if i := slices.IndexFunc(f.objectives, func(o *Objective) bool { return o.Category == cat }); i >= 0 {
		f.objectives[i] = obj
	} else {
		f.objectives = append(f.objectives, obj)
	}
	return obj, nil
}

// RemoveObjective empties a category if it still holds obj
func (f *Fleet) RemoveObjective(category Category, obj *Objective) bool {
	i := slices.IndexFunc(f.objectives, func(o *Objective) bool { return o.Category == category })
	if i < 0 || f.objectives[i] != obj {
		return false
	}
	f.objectives = slices.Delete(f.objectives, i, i+1)
	return true
}

// Objectives returns objectives in the order their categories were first filled
func (f *Fleet) Objectives() []*Objective {
	return slices.Clone(f.objectives)
}

// Objective returns the objective filling category
func (f *Fleet) Objective(category Category) (*Objective, bool) {
	for _, o := range f.objectives {
		if o.Category == category {
			return o, true
		}
	}
	return nil, false
}

// Pieces flattens the fleet: each ship's card, token, command stack and upgrades,
// then each squadron's card and token, then objectives
func (f *Fleet) Pieces() []*Piece {
	var out []*Piece
	for _, s := range f.Ships {
		out = append(out, s.Card, s.Token, s.CmdStack)
		out = append(out, s.Upgrades...)
	}
	for _, sq := range f.Squadrons {
		out = append(out, sq.Card, sq.Token)
	}
	for _, o := range f.objectives {
		out = append(out, o.Piece)
	}
	return out
}

// Counts summarises the fleet for reports
type Counts struct {
	Ships      int
	Upgrades   int
	Squadrons  int
	Objectives int
	Unresolved int
}

// Counts returns the number of each kind of piece
func (f *Fleet) Counts() Counts {
	c := Counts{
		Ships:      len(f.Ships),
		Squadrons:  len(f.Squadrons),
		Objectives: len(f.objectives),
		Unresolved: len(f.Unresolved),
	}
	for _, s := range f.Ships {
		c.Upgrades += len(s.Upgrades)
	}
	return c
}
