package tetris

import (
	"math"
	"time"
)

var linePoints = map[int]int{1: 100, 2: 200, 3: 400, 4: 800}

// gravityDecay applied once per 10 lines brings the interval close to 1ms by
// level 29.
var gravityDecay = math.Pow(0.007, 1.0/29)

const minGravity = time.Millisecond

// Progression tracks lines, score, level and the normal play gravity.
type Progression struct {
	Lines   int
	Score   int
	Level   int
	Gravity time.Duration
}

func newProgression(gravity time.Duration) *Progression {
	return &Progression{Level: 1, Gravity: gravity}
}

// OnLinesCleared adds n cleared lines and reports whether the gravity
// interval changed.
func (p *Progression) OnLinesCleared(n int) bool {
	if n <= 0 {
		return false
	}
	before := p.Lines / 10
	p.Lines += n
	p.Score += linePoints[min(n, 4)]
	p.Level = p.Lines/10 + 1

	changed := false
	for range p.Lines/10 - before {
		p.Gravity = decay(p.Gravity)
		changed = true
	}
	return changed
}

func decay(g time.Duration) time.Duration {
	ms := math.Floor(float64(g.Milliseconds()) * gravityDecay)
	return max(time.Duration(ms)*time.Millisecond, minGravity)
}
