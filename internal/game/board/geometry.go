package board

import (
	"fmt"

	"github.com/hexclash/hexclash-server-go/internal/game/player"
)

// Coord addresses a cell. Square boards use column/row; hex boards use axial
// (q, r) stored as (X, Y).
type Coord struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func (c Coord) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}

// Zone marks which side may place cards on a tile.
type Zone string

const (
	ZoneSideA   Zone = "side-a"
	ZoneSideB   Zone = "side-b"
	ZoneNeutral Zone = "neutral"
)

// ZoneFor returns the placement zone of a side.
func ZoneFor(side player.Side) Zone {
	if side == player.SideB {
		return ZoneSideB
	}
	return ZoneSideA
}

// Geometry describes the shape of a board.
type Geometry interface {
	// Cells enumerates every coordinate in a stable order.
	Cells() []Coord
	Contains(c Coord) bool
	Distance(a, b Coord) int
	Neighbors(c Coord) []Coord
	ZoneOf(c Coord) Zone
}

// Square is a width x height grid with Manhattan distance.
type Square struct {
	Width  int
	Height int
}

func (s Square) Cells() []Coord {
	out := make([]Coord, 0, s.Width*s.Height)
	for y := 0; y < s.Height; y++ {
		for x := 0; x < s.Width; x++ {
			out = append(out, Coord{X: x, Y: y})
		}
	}
	return out
}

func (s Square) Contains(c Coord) bool {
	return c.X >= 0 && c.X < s.Width && c.Y >= 0 && c.Y < s.Height
}

func (s Square) Distance(a, b Coord) int {
	return abs(a.X-b.X) + abs(a.Y-b.Y)
}

func (s Square) Neighbors(c Coord) []Coord {
	return filterInside(s, []Coord{
		{X: c.X, Y: c.Y - 1},
		{X: c.X + 1, Y: c.Y},
		{X: c.X, Y: c.Y + 1},
		{X: c.X - 1, Y: c.Y},
	})
}

// ZoneOf splits rows: the lower half belongs to side A, the upper half to side
// B, and the middle row of an odd-height board is neutral.
func (s Square) ZoneOf(c Coord) Zone {
	half := s.Height / 2
	switch {
	case c.Y < half:
		return ZoneSideA
	case s.Height%2 == 1 && c.Y == half:
		return ZoneNeutral
	default:
		return ZoneSideB
	}
}

// Hex is a hexagon of axial cells with max(|q|,|r|,|q+r|) <= Radius.
type Hex struct {
	Radius int
}

var hexDirections = []Coord{
	{X: 1, Y: 0}, {X: 1, Y: -1}, {X: 0, Y: -1},
	{X: -1, Y: 0}, {X: -1, Y: 1}, {X: 0, Y: 1},
}

func (h Hex) Cells() []Coord {
	out := make([]Coord, 0, 3*h.Radius*(h.Radius+1)+1)
	for r := -h.Radius; r <= h.Radius; r++ {
		for q := -h.Radius; q <= h.Radius; q++ {
			c := Coord{X: q, Y: r}
			if h.Contains(c) {
				out = append(out, c)
			}
		}
	}
	return out
}

func (h Hex) Contains(c Coord) bool {
	return abs(c.X) <= h.Radius && abs(c.Y) <= h.Radius && abs(c.X+c.Y) <= h.Radius
}

func (h Hex) Distance(a, b Coord) int {
	dq, dr := a.X-b.X, a.Y-b.Y
	return (abs(dq) + abs(dr) + abs(dq+dr)) / 2
}

func (h Hex) Neighbors(c Coord) []Coord {
	out := make([]Coord, 0, len(hexDirections))
	for _, d := range hexDirections {
		out = append(out, Coord{X: c.X + d.X, Y: c.Y + d.Y})
	}
	return filterInside(h, out)
}

// ZoneOf gives rows with r > 0 to side A and r < 0 to side B.
func (h Hex) ZoneOf(c Coord) Zone {
	switch {
	case c.Y > 0:
		return ZoneSideA
	case c.Y < 0:
		return ZoneSideB
	default:
		return ZoneNeutral
	}
}

// Kind selects a geometry.
type Kind string

const (
	KindSquare Kind = "square"
	KindHex    Kind = "hex"
)

// Spec is the configuration form of a geometry.
type Spec struct {
	Kind   Kind
	Width  int
	Height int
	Radius int
}

// Geometry builds the geometry described by the spec.
func (s Spec) Geometry() (Geometry, error) {
	switch s.Kind {
	case KindSquare, "":
		if s.Width <= 0 || s.Height <= 0 {
			return nil, fmt.Errorf("square board needs positive width and height, got %dx%d", s.Width, s.Height)
		}
		return Square{Width: s.Width, Height: s.Height}, nil
	case KindHex:
		if s.Radius <= 0 {
			return nil, fmt.Errorf("hex board needs a positive radius, got %d", s.Radius)
		}
		return Hex{Radius: s.Radius}, nil
	default:
		return nil, fmt.Errorf("unknown board geometry %q", s.Kind)
	}
}

func filterInside(g Geometry, cs []Coord) []Coord {
	out := cs[:0]
	for _, c := range cs {
		if g.Contains(c) {
			out = append(out, c)
		}
	}
	return out
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
