package tetris

type Direction int

const (
	Clockwise        Direction = 1
	CounterClockwise Direction = -1
)

type kickGroup string

const (
	groupI     kickGroup = "I"
	groupO     kickGroup = "O"
	groupJLSTZ kickGroup = "JLSTZ"
)

type transition struct{ from, to int }

// kicks holds the candidate offsets tried, in order, for every rotation.
// Offsets are applied in board coordinates: x to the right, y downward.
var kicks = map[kickGroup]map[transition][]Point{
	groupJLSTZ: {
		{0, 1}: {{0, 0}, {-1, 0}, {-1, 1}, {0, -2}, {-1, -2}},
		{1, 0}: {{0, 0}, {1, 0}, {1, -1}, {0, 2}, {1, 2}},
		{1, 2}: {{0, 0}, {1, 0}, {1, -1}, {0, 2}, {1, 2}},
		{2, 1}: {{0, 0}, {-1, 0}, {-1, 1}, {0, -2}, {-1, -2}},
		{2, 3}: {{0, 0}, {1, 0}, {1, 1}, {0, -2}, {1, -2}},
		{3, 2}: {{0, 0}, {-1, 0}, {-1, -1}, {0, 2}, {-1, 2}},
		{3, 0}: {{0, 0}, {-1, 0}, {-1, -1}, {0, 2}, {-1, 2}},
		{0, 3}: {{0, 0}, {1, 0}, {1, 1}, {0, -2}, {1, -2}},
	},
	groupI: {
		{0, 1}: {{0, 0}, {-2, 0}, {1, 0}, {-2, -1}, {1, 2}},
		{1, 0}: {{0, 0}, {2, 0}, {-1, 0}, {2, 1}, {-1, -2}},
		{1, 2}: {{0, 0}, {-1, 0}, {2, 0}, {-1, 2}, {2, -1}},
		{2, 1}: {{0, 0}, {1, 0}, {-2, 0}, {1, -2}, {-2, 1}},
		{2, 3}: {{0, 0}, {2, 0}, {-1, 0}, {2, 1}, {-1, -2}},
		{3, 2}: {{0, 0}, {-2, 0}, {1, 0}, {-2, -1}, {1, 2}},
		{3, 0}: {{0, 0}, {1, 0}, {-2, 0}, {1, -2}, {-2, 1}},
		{0, 3}: {{0, 0}, {-1, 0}, {2, 0}, {-1, 2}, {2, -1}},
	},
	groupO: {},
}

var noKick = []Point{{0, 0}}

func groupOf(s Shape) kickGroup {
	switch s {
	case I:
		return groupI
	case O:
		return groupO
	default:
		return groupJLSTZ
	}
}

// kickOffsets returns the offsets to try for shape s rotating from one state
// to another. Missing entries fall back to no kick.
func kickOffsets(s Shape, from, to int) []Point {
	if k, ok := kicks[groupOf(s)][transition{from, to}]; ok {
		return k
	}
	return noKick
}

// Rotate turns t one step in direction d, trying every kick offset in order.
// Either the full rotation and offset is applied or t is left untouched.
func Rotate(b *Board, t *Tetromino, d Direction) bool {
	n := len(t.States)
	if n < 2 {
		return false
	}
	from := t.State
	to := ((from+int(d))%n + n) % n

	t.State = to
	for _, k := range kickOffsets(t.Shape, from, to) {
		if b.CanPlace(t, k.X, k.Y) {
			t.X += k.X
			t.Y += k.Y
			return true
		}
	}
	t.State = from
	return false
}
