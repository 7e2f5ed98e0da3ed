package client

import (
	_ "embed"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"text/template"

	"shoptris/tetris"
)

const (
	// ASCII colors.
	Cyan    = "36"
	Blue    = "34"
	Orange  = "38;5;214"
	Yellow  = "33"
	Green   = "32"
	Red     = "31"
	Magenta = "35"
	Gray    = "90"

	resetPos    = "\033[H"    // Reset cursor position to 0,0
	clearScreen = "\033[2J"   // Clear the whole screen
	hideCursor  = "\033[?25l" // Hide the cursor while playing
	showCursor  = "\033[?25h"
)

//go:embed "layout.tmpl"
var layout string

// colorMap translates the color tags of the shapes.
var colorMap = map[string]string{
	"cyan":    Cyan,
	"blue":    Blue,
	"orange":  Orange,
	"yellow":  Yellow,
	"green":   Green,
	"red":     Red,
	"magenta": Magenta,
}

var (
	emptyCell  = "  "
	ghostCell  = "[]"
	lockedCell = "\x1b[7m[]\x1b[0m"
	wallCell   = fmt.Sprintf("\x1b[%sm##\x1b[0m", Gray)
)

func block(s tetris.Shape) string {
	return fmt.Sprintf("\x1b[7m\x1b[%sm[]\x1b[0m", colorMap[s.Color()])
}

type templateData struct {
	Game    *tetris.Snapshot
	NoGhost bool
}

type render struct {
	writer   io.Writer
	logger   *slog.Logger
	template *template.Template
	*templateData
}

func newRender(l *slog.Logger, noGhost bool) (*render, error) {
	tmp, err := loadTemplate()
	if err != nil {
		return nil, fmt.Errorf("failed to load template: %w", err)
	}
	return &render{
		writer:       os.Stdout,
		logger:       l,
		template:     tmp,
		templateData: &templateData{NoGhost: noGhost},
	}, nil
}

func (r *render) lobby(msg []string) {
	if r.Game == nil {
		// the first lobby shows a fresh board behind the message.
		r.local(tetris.NewTestTetris(tetris.J).Snapshot())
	}
	const row, col, width = 8, 6, 36
	line := "+" + strings.Repeat("-", width) + "+"
	fmt.Fprintf(r.writer, "\033[%d;%dH%s", row, col, line)
	for i, m := range append([]string{""}, append(msg, "")...) {
		pad := max(width-len(m), 0)
		text := strings.Repeat(" ", pad/2) + m + strings.Repeat(" ", pad-pad/2)
		fmt.Fprintf(r.writer, "\033[%d;%dH|%s|", row+1+i, col, text)
	}
	fmt.Fprintf(r.writer, "\033[%d;%dH%s", row+len(msg)+3, col, line)
}

func (r *render) local(s *tetris.Snapshot) {
	r.Game = s
	fmt.Fprint(r.writer, resetPos)
	if err := r.template.Execute(r.writer, r.templateData); err != nil {
		r.logger.Error("unable to execute template in local()", slog.String("error", err.Error()))
	}
	if s != nil && s.GameOver {
		r.lobby(gameOver(s))
	}
}

func (r *render) reset() { fmt.Fprint(r.writer, clearScreen+hideCursor) }

func defaultLobby() []string {
	return []string{"Welcome to Shoptris", "", "(p)lay   (q)uit"}
}

func gameOver(s *tetris.Snapshot) []string {
	return []string{
		"Game Over :)",
		fmt.Sprintf("score %d   lines %d", s.Score, s.Lines),
		"",
		"(p)lay   (q)uit",
	}
}

func loadTemplate() (*template.Template, error) {
	funcMap := template.FuncMap{
		"board": board,
		"side":  side,
		"bold":  func(s string) string { return "\033[1m" + s + "\033[0m" },
	}

	// we use the console raw so new lines don't automatically transform into carriage return
	// to fix that we add a carriage return to every new line in the layout.
	return template.New("layout").Funcs(funcMap).Parse(strings.ReplaceAll(layout, "\n", "\r\n"))
}

// cells renders every visible cell of the board, the buffer rows excluded.
// The shop region is drawn next to the play field, blank while closed.
func cells(d *templateData) [][]string {
	if d == nil || d.Game == nil {
		return nil
	}
	s := d.Game
	cols := s.Width + s.ShopWidth
	rendered := make([][]string, s.Height-tetris.BufferRows)
	for y := range rendered {
		rendered[y] = make([]string, cols)
		for x := range cols {
			out := emptyCell
			switch s.Cells[y+tetris.BufferRows][x] {
			case tetris.Locked:
				out = lockedCell
			case tetris.Wall:
				out = wallCell
			}
			rendered[y][x] = out
		}
	}

	put := func(p tetris.Point, v string) {
		y := p.Y - tetris.BufferRows
		if y >= 0 && y < len(rendered) && p.X >= 0 && p.X < cols {
			rendered[y][p.X] = v
		}
	}
	if t := s.Tetromino; t != nil {
		if !d.NoGhost {
			for _, p := range t.Cells(0, s.GhostY-t.Y) {
				put(p, ghostCell)
			}
		}
		for _, p := range t.Cells(0, 0) {
			put(p, block(t.Shape))
		}
	}
	return rendered
}

// board returns the framed rows of the screen.
func board(d *templateData) []string {
	grid := cells(d)
	if grid == nil {
		return nil
	}
	s := d.Game
	border := "+" + strings.Repeat("--", s.Width) + "+"
	if s.ShopWidth > 0 {
		border += strings.Repeat("--", s.ShopWidth) + "+"
	}
	rows := []string{border}
	for _, r := range grid {
		row := "|" + strings.Join(r[:s.Width], "") + "|"
		if s.ShopWidth > 0 {
			row += strings.Join(r[s.Width:], "") + "|"
		}
		rows = append(rows, row)
	}
	return append(rows, border)
}

// side returns the panel next to the board, one entry per board row.
func side(d *templateData) []string {
	var lines []string
	if d != nil && d.Game != nil {
		s := d.Game
		lines = append(lines, "  NEXT")
		lines = append(lines, preview(s.Next)...)
		lines = append(lines, "", "  HOLD")
		lines = append(lines, preview(s.Held)...)
		lines = append(lines,
			"",
			fmt.Sprintf("  Score   %-8d", s.Score),
			fmt.Sprintf("  Lines   %-8d", s.Lines),
			fmt.Sprintf("  Level   %-8d", s.Level),
			fmt.Sprintf("  Gravity %-8s", s.Gravity),
			"",
		)
		if s.ShopOpen {
			lines = append(lines, "  SHOP OPEN ")
			for _, slot := range s.Slots {
				mark := " "
				if slot.Completed {
					mark = "x"
				}
				lines = append(lines, fmt.Sprintf("  [%s] %s     ", mark, slot.Shape))
			}
		} else {
			lines = append(lines, "            ")
		}
	}
	// blank out whatever an earlier frame left behind.
	for len(lines) < len(board(d)) {
		lines = append(lines, strings.Repeat(" ", 18))
	}
	return lines
}

// preview draws a shape in a 4x2 box.
func preview(s tetris.Shape) []string {
	rows := [2][4]string{}
	for y := range rows {
		for x := range rows[y] {
			rows[y][x] = emptyCell
		}
	}
	for _, p := range s.Cells() {
		if p.Y < 2 && p.X < 4 {
			rows[p.Y][p.X] = block(s)
		}
	}
	return []string{
		"  " + strings.Join(rows[0][:], ""),
		"  " + strings.Join(rows[1][:], ""),
	}
}
