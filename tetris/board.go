package tetris

type Cell uint8

const (
	Empty  Cell = iota
	Locked      // a settled piece block
	Wall        // shop outline, never part of a line
)

// BufferRows is the number of hidden rows at the top of the board where
// pieces spawn.
const BufferRows = 2

// Board is the play field plus the shop region appended to its right.
//
//	.	0 ... Width-1 | Width ... Width+ShopWidth-1
//	0	  play field  |  shop region (reachable while the shop is open)
//
// Rows go from 0 (top buffer row) to Height-1 (floor).
type Board struct {
	Width, Height, ShopWidth int

	cells    [][]Cell
	shopOpen bool
	// shopDepth is the deepest origin row a piece may have while any of
	// its cells is in the shop region.
	shopDepth int
}

func NewBoard(width, height, shopWidth int) *Board {
	b := &Board{Width: width, Height: height, ShopWidth: shopWidth}
	b.cells = make([][]Cell, height)
	for y := range b.cells {
		b.cells[y] = make([]Cell, width+shopWidth)
	}
	return b
}

// bound is the first column a piece may not occupy.
func (b *Board) bound() int {
	if b.shopOpen && b.ShopWidth > 0 {
		// the last shop column is kept as a margin
		return b.Width + b.ShopWidth - 1
	}
	return b.Width
}

// CanPlace reports whether t shifted by dx, dy fits on the board.
// Rows above the board are always free so pieces can spawn there.
func (b *Board) CanPlace(t *Tetromino, dx, dy int) bool {
	inShop := false
	for _, p := range t.Cells(dx, dy) {
		if p.X < 0 || p.X >= b.bound() || p.Y >= b.Height {
			return false
		}
		if p.X >= b.Width {
			inShop = true
		}
		if p.Y < 0 {
			continue
		}
		if b.cells[p.Y][p.X] != Empty {
			return false
		}
	}
	if inShop && t.Y+dy > b.shopDepth {
		return false
	}
	return true
}

// DropDistance returns how many rows t can fall before it's blocked.
func (b *Board) DropDistance(t *Tetromino) int {
	d := 0
	for b.CanPlace(t, 0, d+1) {
		d++
	}
	return d
}

// Stamp writes t into the board. Cells above the board are dropped.
func (b *Board) Stamp(t *Tetromino) {
	for _, p := range t.Cells(0, 0) {
		if p.Y < 0 || p.Y >= b.Height || p.X < 0 || p.X >= len(b.cells[p.Y]) {
			continue
		}
		b.cells[p.Y][p.X] = Locked
	}
}

// ClearFullRows removes every full play field row and returns how many were
// removed. Only the play field columns shift; the shop region stays put.
func (b *Board) ClearFullRows() int {
	var full []int
	for y := range b.cells {
		if b.isFull(y) {
			full = append(full, y)
		}
	}
	if len(full) == 0 {
		return 0
	}

	// walk the rows bottom to top copying every row that survives onto the
	// next free destination row.
	dst := b.Height - 1
	next := len(full) - 1
	for src := b.Height - 1; src >= 0; src-- {
		if next >= 0 && full[next] == src {
			next--
			continue
		}
		if dst != src {
			copy(b.cells[dst][:b.Width], b.cells[src][:b.Width])
		}
		dst--
	}
	for ; dst >= 0; dst-- {
		clear(b.cells[dst][:b.Width])
	}
	return len(full)
}

func (b *Board) isFull(y int) bool {
	for _, c := range b.cells[y][:b.Width] {
		if c == Empty {
			return false
		}
	}
	return true
}

func (b *Board) inShop(p Point) bool {
	return p.X >= b.Width && p.X < b.Width+b.ShopWidth && p.Y >= 0 && p.Y < b.Height
}

// MarkOutline sets cells of the shop region to Wall. Cells outside the shop
// region are ignored.
func (b *Board) MarkOutline(cells []Point) {
	for _, p := range cells {
		if b.inShop(p) {
			b.cells[p.Y][p.X] = Wall
		}
	}
}

// ClearRegion empties columns [xStart, xEnd) of the shop region.
func (b *Board) ClearRegion(xStart, xEnd int) {
	xStart = max(xStart, b.Width)
	xEnd = min(xEnd, b.Width+b.ShopWidth)
	if xStart >= xEnd {
		return
	}
	for y := range b.cells {
		clear(b.cells[y][xStart:xEnd])
	}
}

// clearCells empties the given shop region cells.
func (b *Board) clearCells(cells []Point) {
	for _, p := range cells {
		if b.inShop(p) {
			b.cells[p.Y][p.X] = Empty
		}
	}
}

// OpenShop extends the legal columns into the shop region.
func (b *Board) OpenShop(depth int) {
	b.shopOpen = true
	b.shopDepth = depth
}

// CloseShop empties the shop region and restricts pieces to the play field.
func (b *Board) CloseShop() {
	b.ClearRegion(b.Width, b.Width+b.ShopWidth)
	b.shopOpen = false
}

func (b *Board) ShopOpen() bool { return b.shopOpen }

// Cell returns the cell at x, y. Coordinates off the board read as Empty.
func (b *Board) Cell(x, y int) Cell {
	if y < 0 || y >= b.Height || x < 0 || x >= b.Width+b.ShopWidth {
		return Empty
	}
	return b.cells[y][x]
}

// SetCell writes c at x, y. Coordinates off the board are ignored.
func (b *Board) SetCell(x, y int, c Cell) {
	if y < 0 || y >= b.Height || x < 0 || x >= b.Width+b.ShopWidth {
		return
	}
	b.cells[y][x] = c
}

// Cells returns a copy of the whole grid, shop region included.
func (b *Board) Cells() [][]Cell {
	out := make([][]Cell, len(b.cells))
	for y := range b.cells {
		out[y] = make([]Cell, len(b.cells[y]))
		copy(out[y], b.cells[y])
	}
	return out
}

// topOccupied reports whether any play field cell in the buffer rows or the
// topmost visible row is set.
func (b *Board) topOccupied() bool {
	for y := 0; y <= BufferRows && y < b.Height; y++ {
		for _, c := range b.cells[y][:b.Width] {
			if c != Empty {
				return true
			}
		}
	}
	return false
}
