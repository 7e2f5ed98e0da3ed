package tetris

import (
	"math/rand/v2"
	"slices"
)

// bag is a 7-bag randomizer: every run between refills serves each shape
// once, and the first shape of a run never repeats the last one served
// unless there's no alternative.
type bag struct {
	bag  []Shape
	last Shape
	rng  *rand.Rand
}

func newBag(rng *rand.Rand) *bag {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	b := &bag{rng: rng}
	b.refill()
	return b
}

func (b *bag) refill() {
	b.bag = slices.Clone(Shapes)
	b.rng.Shuffle(len(b.bag), func(i, j int) {
		b.bag[i], b.bag[j] = b.bag[j], b.bag[i]
	})
}

func (b *bag) pop() Shape {
	s := b.bag[len(b.bag)-1]
	b.bag = b.bag[:len(b.bag)-1]
	return s
}

func (b *bag) draw() Shape {
	if len(b.bag) == 0 {
		b.refill()
	}
	s := b.pop()
	if s == b.last && len(b.bag) > 0 {
		b.bag = slices.Insert(b.bag, 0, s)
		s = b.pop()
	}
	b.last = s
	return s
}
