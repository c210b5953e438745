package board

import (
	"errors"
	"fmt"

	"github.com/hexclash/hexclash-server-go/internal/game/player"
)

// Placement errors.
var (
	ErrOutOfBounds   = errors.New("coordinate outside the board")
	ErrOccupied      = errors.New("tile already occupied")
	ErrNotOccupied   = errors.New("tile is empty")
	ErrAlreadyPlaced = errors.New("card already on the board")
)

// Occupant is the card standing on a tile.
type Occupant struct {
	Side   player.Side
	CardID string
}

// Tile is one addressable cell. Highlighted and Selectable are UI hints only.
type Tile struct {
	Coord       Coord
	Zone        Zone
	Occupant    *Occupant
	Highlighted bool
	Selectable  bool
}

// Occupied reports whether a card stands on the tile.
func (t *Tile) Occupied() bool {
	return t.Occupant != nil
}

// Board is a fixed set of tiles plus an index of which card stands where.
type Board struct {
	geometry Geometry
	order    []Coord
	tiles    map[Coord]*Tile
	cards    map[string]Coord
}

// New enumerates every cell of g as an empty tile.
func New(g Geometry) *Board {
	order := g.Cells()
	b := &Board{
		geometry: g,
		order:    order,
		tiles:    make(map[Coord]*Tile, len(order)),
		cards:    make(map[string]Coord),
	}
	for _, c := range order {
		b.tiles[c] = &Tile{Coord: c, Zone: g.ZoneOf(c)}
	}
	return b
}

// Geometry returns the board's shape.
func (b *Board) Geometry() Geometry {
	return b.geometry
}

// Tile returns the tile at c.
func (b *Board) Tile(c Coord) (*Tile, bool) {
	t, ok := b.tiles[c]
	return t, ok
}

// Tiles returns every tile in enumeration order.
func (b *Board) Tiles() []*Tile {
	out := make([]*Tile, 0, len(b.order))
	for _, c := range b.order {
		out = append(out, b.tiles[c])
	}
	return out
}

// Place puts a card on an empty tile.
func (b *Board) Place(c Coord, side player.Side, cardID string) error {
	t, ok := b.tiles[c]
	if !ok {
		return fmt.Errorf("place %s: %w", c, ErrOutOfBounds)
	}
	if t.Occupied() {
		return fmt.Errorf("place %s: %w", c, ErrOccupied)
	}
	if _, placed := b.cards[cardID]; placed {
		return fmt.Errorf("place %s at %s: %w", cardID, c, ErrAlreadyPlaced)
	}
	t.Occupant = &Occupant{Side: side, CardID: cardID}
	b.cards[cardID] = c
	return nil
}

// Vacate clears a tile and returns who stood there.
func (b *Board) Vacate(c Coord) (Occupant, error) {
	t, ok := b.tiles[c]
	if !ok {
		return Occupant{}, fmt.Errorf("vacate %s: %w", c, ErrOutOfBounds)
	}
	if !t.Occupied() {
		return Occupant{}, fmt.Errorf("vacate %s: %w", c, ErrNotOccupied)
	}
	occ := *t.Occupant
	t.Occupant = nil
	delete(b.cards, occ.CardID)
	return occ, nil
}

// Locate returns the tile coordinate of a card on the board.
func (b *Board) Locate(cardID string) (Coord, bool) {
	c, ok := b.cards[cardID]
	return c, ok
}

// Distance between two coordinates in board metric.
func (b *Board) Distance(from, to Coord) int {
	return b.geometry.Distance(from, to)
}

// TilesInRange returns tiles within radius of center, center included.
func (b *Board) TilesInRange(center Coord, radius int) []*Tile {
	return b.filter(func(t *Tile) bool {
		return b.geometry.Distance(center, t.Coord) <= radius
	})
}

// Adjacent returns the neighbouring tiles of c.
func (b *Board) Adjacent(c Coord) []*Tile {
	ns := b.geometry.Neighbors(c)
	out := make([]*Tile, 0, len(ns))
	for _, n := range ns {
		out = append(out, b.tiles[n])
	}
	return out
}

// Empty returns every unoccupied tile.
func (b *Board) Empty() []*Tile {
	return b.filter(func(t *Tile) bool { return !t.Occupied() })
}

// OwnedBy returns the tiles holding cards of side.
func (b *Board) OwnedBy(side player.Side) []*Tile {
	return b.filter(func(t *Tile) bool { return t.Occupied() && t.Occupant.Side == side })
}

// ZoneTiles returns the tiles of a zone.
func (b *Board) ZoneTiles(z Zone) []*Tile {
	return b.filter(func(t *Tile) bool { return t.Zone == z })
}

// IsFull reports whether every tile is occupied.
func (b *Board) IsFull() bool {
	return len(b.cards) == len(b.tiles)
}

// Highlight marks tiles as highlighted and selectable.
func (b *Board) Highlight(cs ...Coord) {
	for _, c := range cs {
		if t, ok := b.tiles[c]; ok {
			t.Highlighted = true
			t.Selectable = true
		}
	}
}

// ClearHighlights resets every transient UI flag in one pass.
func (b *Board) ClearHighlights() {
	for _, t := range b.tiles {
		t.Highlighted = false
		t.Selectable = false
	}
}

// Clone returns a deep copy of the board.
func (b *Board) Clone() *Board {
	out := &Board{
		geometry: b.geometry,
		order:    b.order,
		tiles:    make(map[Coord]*Tile, len(b.tiles)),
		cards:    make(map[string]Coord, len(b.cards)),
	}
	for c, t := range b.tiles {
		cp := *t
		if t.Occupant != nil {
			occ := *t.Occupant
			cp.Occupant = &occ
		}
		out.tiles[c] = &cp
	}
	for id, c := range b.cards {
		out.cards[id] = c
	}
	return out
}

func (b *Board) filter(keep func(*Tile) bool) []*Tile {
	var out []*Tile
	for _, c := range b.order {
		if t := b.tiles[c]; keep(t) {
			out = append(out, t)
		}
	}
	return out
}
