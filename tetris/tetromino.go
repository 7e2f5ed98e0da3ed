package tetris

type Shape string

const (
	I Shape = "I"
	J Shape = "J"
	L Shape = "L"
	O Shape = "O"
	S Shape = "S"
	T Shape = "T"
	Z Shape = "Z"
)

// Shapes lists every piece class in catalog order.
var Shapes = []Shape{I, J, L, O, S, T, Z}

type catalogEntry struct {
	states [][][]bool
	// spawnY is the origin row that places the first filled row of
	// state 0 in the top buffer row.
	spawnY int
	color  string
}

// grid builds a rotation state from rows of 0 and 1.
func grid(rows ...[]int) [][]bool {
	g := make([][]bool, len(rows))
	for y, r := range rows {
		g[y] = make([]bool, len(r))
		for x, c := range r {
			g[y][x] = c == 1
		}
	}
	return g
}

// catalog holds the rotation states of every shape, indexed 0 (spawn), R, 2, L.
// Rows go top to bottom, columns left to right.
var catalog = map[Shape]catalogEntry{
	/*
		.	0 1 2 3 4 5 6 7 8 9		.	0 1 2 3
		0	. . . O O O O . . .		0	. . . .
		1	. . . . . . . . . .		1	O O O O
	*/
	I: {
		states: [][][]bool{
			grid([]int{0, 0, 0, 0}, []int{1, 1, 1, 1}, []int{0, 0, 0, 0}, []int{0, 0, 0, 0}),
			grid([]int{0, 0, 1, 0}, []int{0, 0, 1, 0}, []int{0, 0, 1, 0}, []int{0, 0, 1, 0}),
			grid([]int{0, 0, 0, 0}, []int{0, 0, 0, 0}, []int{1, 1, 1, 1}, []int{0, 0, 0, 0}),
			grid([]int{0, 1, 0, 0}, []int{0, 1, 0, 0}, []int{0, 1, 0, 0}, []int{0, 1, 0, 0}),
		},
		spawnY: -1,
		color:  "cyan",
	},
	/*
		.	0 1 2 3 4 5 6 7 8 9		.	0 1 2
		0	. . . O . . . . . .		0	O . .
		1	. . . O O O . . . .		1	O O O
	*/
	J: {
		states: [][][]bool{
			grid([]int{1, 0, 0}, []int{1, 1, 1}, []int{0, 0, 0}),
			grid([]int{0, 1, 1}, []int{0, 1, 0}, []int{0, 1, 0}),
			grid([]int{0, 0, 0}, []int{1, 1, 1}, []int{0, 0, 1}),
			grid([]int{0, 1, 0}, []int{0, 1, 0}, []int{1, 1, 0}),
		},
		color: "blue",
	},
	/*
		.	0 1 2 3 4 5 6 7 8 9		.	0 1 2
		0	. . . . . O . . . .		0	. . O
		1	. . . O O O . . . .		1	O O O
	*/
	L: {
		states: [][][]bool{
			grid([]int{0, 0, 1}, []int{1, 1, 1}, []int{0, 0, 0}),
			grid([]int{0, 1, 0}, []int{0, 1, 0}, []int{0, 1, 1}),
			grid([]int{0, 0, 0}, []int{1, 1, 1}, []int{1, 0, 0}),
			grid([]int{1, 1, 0}, []int{0, 1, 0}, []int{0, 1, 0}),
		},
		color: "orange",
	},
	/*
		.	0 1 2 3 4 5 6 7 8 9		.	0 1
		0	. . . . O O . . . .		0	O O
		1	. . . . O O . . . .		1	O O
	*/
	O: {
		states: [][][]bool{
			grid([]int{1, 1}, []int{1, 1}),
		},
		color: "yellow",
	},
	/*
		.	0 1 2 3 4 5 6 7 8 9		.	0 1 2
		0	. . . . O O . . . .		0	. O O
		1	. . . O O . . . . .		1	O O .
	*/
	S: {
		states: [][][]bool{
			grid([]int{0, 1, 1}, []int{1, 1, 0}, []int{0, 0, 0}),
			grid([]int{0, 1, 0}, []int{0, 1, 1}, []int{0, 0, 1}),
			grid([]int{0, 0, 0}, []int{0, 1, 1}, []int{1, 1, 0}),
			grid([]int{1, 0, 0}, []int{1, 1, 0}, []int{0, 1, 0}),
		},
		color: "green",
	},
	/*
		.	0 1 2 3 4 5 6 7 8 9		.	0 1 2
		0	. . . . O . . . . .		0	. O .
		1	. . . O O O . . . .		1	O O O
	*/
	T: {
		states: [][][]bool{
			grid([]int{0, 1, 0}, []int{1, 1, 1}, []int{0, 0, 0}),
			grid([]int{0, 1, 0}, []int{0, 1, 1}, []int{0, 1, 0}),
			grid([]int{0, 0, 0}, []int{1, 1, 1}, []int{0, 1, 0}),
			grid([]int{0, 1, 0}, []int{1, 1, 0}, []int{0, 1, 0}),
		},
		color: "magenta",
	},
	/*
		.	0 1 2 3 4 5 6 7 8 9		.	0 1 2
		0	. . . O O . . . . .		0	O O .
		1	. . . . O O . . . .		1	. O O
	*/
	Z: {
		states: [][][]bool{
			grid([]int{1, 1, 0}, []int{0, 1, 1}, []int{0, 0, 0}),
			grid([]int{0, 0, 1}, []int{0, 1, 1}, []int{0, 1, 0}),
			grid([]int{0, 0, 0}, []int{1, 1, 0}, []int{0, 1, 1}),
			grid([]int{0, 1, 0}, []int{1, 1, 0}, []int{1, 0, 0}),
		},
		color: "red",
	},
}

// Color returns the color tag of the shape. Renderers decide what it looks like.
func (s Shape) Color() string { return catalog[s].color }

// Cells returns the cells of the spawn state of s relative to the top left
// corner of their bounding box.
func (s Shape) Cells() []Point {
	if _, ok := catalog[s]; !ok {
		return nil
	}
	cells, _, _ := trimmed(s)
	return cells
}

// Tetromino is the active piece. States is shared with the catalog and must
// not be modified.
type Tetromino struct {
	Shape  Shape
	States [][][]bool
	State  int
	X, Y   int
}

// newTetromino returns a tetromino of shape s in state 0 at its spawn
// location on a board with the given play width.
func newTetromino(s Shape, width int) *Tetromino {
	e := catalog[s]
	size := len(e.states[0][0])
	return &Tetromino{
		Shape:  s,
		States: e.states,
		X:      (width - size) / 2,
		Y:      e.spawnY,
	}
}

// Grid returns the matrix of the current rotation state.
func (t *Tetromino) Grid() [][]bool { return t.States[t.State] }

// Cells returns the board coordinates of every occupied cell shifted by
// dx, dy.
func (t *Tetromino) Cells(dx, dy int) []Point {
	var cells []Point
	for iy, r := range t.Grid() {
		for ix, c := range r {
			if c {
				cells = append(cells, Point{X: t.X + ix + dx, Y: t.Y + iy + dy})
			}
		}
	}
	return cells
}

func (t *Tetromino) copy() *Tetromino {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

// Point is a board coordinate; X grows to the right and Y grows downward.
type Point struct {
	X, Y int
}

// trimmed returns the cells of state 0 of shape s relative to the top left
// corner of their bounding box, plus the box width and height.
func trimmed(s Shape) (cells []Point, w, h int) {
	g := catalog[s].states[0]
	minX, minY, maxX, maxY := len(g), len(g), -1, -1
	for y, r := range g {
		for x, c := range r {
			if !c {
				continue
			}
			minX, maxX = min(minX, x), max(maxX, x)
			minY, maxY = min(minY, y), max(maxY, y)
		}
	}
	for y, r := range g {
		for x, c := range r {
			if c {
				cells = append(cells, Point{X: x - minX, Y: y - minY})
			}
		}
	}
	return cells, maxX - minX + 1, maxY - minY + 1
}
