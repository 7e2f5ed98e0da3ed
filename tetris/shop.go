package tetris

import (
	"math/rand/v2"
	"slices"

	"github.com/kamstrup/intmap"
)

// ShopSlot is an outline painted in the shop region. Filling every cell of
// Cells with locked blocks buys the slot.
type ShopSlot struct {
	Shape Shape
	// Origin is the board coordinate of the top left corner of the shape.
	Origin Point
	// Cells are relative to Origin.
	Cells []Point
	// Walls are board coordinates.
	Walls     []Point
	Width     int
	Completed bool
}

func (s *ShopSlot) absCells() []Point {
	cells := make([]Point, len(s.Cells))
	for i, c := range s.Cells {
		cells[i] = Point{X: s.Origin.X + c.X, Y: s.Origin.Y + c.Y}
	}
	return cells
}

func (s *ShopSlot) copy() ShopSlot {
	c := *s
	c.Cells = slices.Clone(s.Cells)
	c.Walls = slices.Clone(s.Walls)
	return c
}

type shop struct {
	levels  map[int]bool
	slots   *intmap.Map[int, *ShopSlot]
	count   int
	active  bool
	want    int
	bandTop int
	bandBot int
	rng     *rand.Rand
}

func newShop(o *Options, rng *rand.Rand) *shop {
	levels := make(map[int]bool, len(o.ShopLevels))
	for _, l := range o.ShopLevels {
		levels[l] = true
	}
	return &shop{
		levels:  levels,
		slots:   intmap.New[int, *ShopSlot](o.ShopSlots),
		want:    o.ShopSlots,
		bandTop: o.ShopBandTop,
		bandBot: o.ShopBandBottom,
		rng:     rng,
	}
}

// update opens or closes the shop for the given level and reports whether
// the shop changed state.
func (s *shop) update(b *Board, level int) bool {
	switch {
	case s.levels[level] && !s.active:
		s.open(b)
		return true
	case !s.levels[level] && s.active:
		s.close(b)
		return true
	}
	return false
}

func (s *shop) open(b *Board) {
	s.active = true
	b.OpenShop(s.bandBot)

	// outlines are laid out left to right with a free column between them,
	// leaving the first shop column as the lane into the shop.
	cursor := b.Width + 1
	end := b.Width + b.ShopWidth - 1
	for range s.want {
		shape := Shapes[s.rng.IntN(len(Shapes))]
		cells, w, h := trimmed(shape)
		if cursor+w+2 > end {
			break
		}
		top := s.bandTop
		if bot := min(s.bandBot, b.Height-h-1); bot > top {
			top += s.rng.IntN(bot - top + 1)
		}
		slot := &ShopSlot{
			Shape:  shape,
			Origin: Point{X: cursor + 1, Y: top},
			Cells:  cells,
			Width:  w + 2,
		}
		slot.Walls = outline(slot.absCells())
		b.MarkOutline(slot.Walls)
		s.slots.Put(s.count, slot)
		s.count++
		cursor += slot.Width + 1
	}
}

func (s *shop) close(b *Board) {
	s.active = false
	for i := range s.count {
		s.slots.Del(i)
	}
	s.count = 0
	b.CloseShop()
}

// onPieceLocked buys every slot whose cells are all locked, freeing its
// region, and returns the shapes bought.
func (s *shop) onPieceLocked(b *Board) []Shape {
	if !s.active {
		return nil
	}
	var bought []Shape
	for i := range s.count {
		slot, ok := s.slots.Get(i)
		if !ok || slot.Completed {
			continue
		}
		cells := slot.absCells()
		filled := true
		for _, p := range cells {
			if b.Cell(p.X, p.Y) != Locked {
				filled = false
				break
			}
		}
		if !filled {
			continue
		}
		b.clearCells(slot.Walls)
		b.clearCells(cells)
		slot.Completed = true
		bought = append(bought, slot.Shape)
	}
	return bought
}

func (s *shop) list() []ShopSlot {
	var out []ShopSlot
	for i := range s.count {
		if slot, ok := s.slots.Get(i); ok {
			out = append(out, slot.copy())
		}
	}
	return out
}

// outline returns the cells left, right and below the shape that have no
// shape cell beneath them, so a piece can drop into the outline from above.
func outline(shape []Point) []Point {
	in := make(map[Point]bool, len(shape))
	for _, p := range shape {
		in[p] = true
	}
	covers := func(c Point) bool {
		for _, p := range shape {
			if p.X == c.X && p.Y >= c.Y {
				return true
			}
		}
		return false
	}

	seen := make(map[Point]bool)
	var walls []Point
	for _, p := range shape {
		for _, d := range []Point{{-1, 0}, {1, 0}, {0, 1}, {-1, 1}, {1, 1}} {
			c := Point{X: p.X + d.X, Y: p.Y + d.Y}
			if in[c] || seen[c] || covers(c) {
				continue
			}
			seen[c] = true
			walls = append(walls, c)
		}
	}
	return walls
}
