package tetris

import (
	"math/rand/v2"
	"reflect"
	"testing"
)

func TestOutline(t *testing.T) {
	cells, w, h := trimmed(T)
	if w != 3 || h != 2 {
		t.Fatalf("wanted a 3x2 box, got %dx%d", w, h)
	}
	// .	-1 0 1 2 3
	// 0	 . . O . .
	// 1	 W O O O W
	// 2	 W W W W W
	want := []Point{{-1, 1}, {0, 2}, {-1, 2}, {1, 2}, {2, 2}, {3, 1}, {3, 2}}
	if got := outline(cells); !reflect.DeepEqual(got, want) {
		t.Errorf("wanted %v, got %v", want, got)
	}
}

func TestShopOpen(t *testing.T) {
	for seed := range uint64(30) {
		o := DefaultOptions()
		rng := rand.New(rand.NewPCG(seed, 9))
		b := NewBoard(o.Width, o.Height, o.ShopWidth)
		s := newShop(&o, rng)

		if s.update(b, 2) {
			t.Fatal("wanted the shop to stay closed at level 2")
		}
		if !s.update(b, 3) || !s.active || !b.ShopOpen() {
			t.Fatal("wanted the shop to open at level 3")
		}

		slots := s.list()
		if len(slots) == 0 || len(slots) > o.ShopSlots {
			t.Fatalf("seed %d: wanted 1 to %d slots, got %d", seed, o.ShopSlots, len(slots))
		}
		taken := make(map[Point]bool)
		for _, slot := range slots {
			if slot.Origin.Y < o.ShopBandTop || slot.Origin.Y > o.ShopBandBottom {
				t.Errorf("seed %d: slot %v starts outside the band", seed, slot.Shape)
			}
			for _, p := range append(slot.absCells(), slot.Walls...) {
				if p.X <= o.Width || p.X >= o.Width+o.ShopWidth-1 || p.Y >= o.Height {
					t.Errorf("seed %d: slot %v has cell %v outside the shop", seed, slot.Shape, p)
				}
				if taken[p] {
					t.Errorf("seed %d: slots overlap at %v", seed, p)
				}
				taken[p] = true
			}
			for _, p := range slot.Walls {
				if b.Cell(p.X, p.Y) != Wall {
					t.Errorf("seed %d: wanted a wall at %v", seed, p)
				}
			}
			for _, p := range slot.absCells() {
				if b.Cell(p.X, p.Y) != Empty {
					t.Errorf("seed %d: wanted the slot cell %v to be empty", seed, p)
				}
			}
		}

		if s.update(b, 3) {
			t.Error("wanted a second update at the same level to do nothing")
		}
		if !s.update(b, 4) || s.active || b.ShopOpen() {
			t.Fatal("wanted the shop to close at level 4")
		}
		if len(s.list()) != 0 {
			t.Error("wanted no slots once the shop is closed")
		}
		for x := o.Width; x < o.Width+o.ShopWidth; x++ {
			for y := range o.Height {
				if b.Cell(x, y) != Empty {
					t.Fatalf("seed %d: wanted the shop region to be empty, got %v at (%d, %d)", seed, b.Cell(x, y), x, y)
				}
			}
		}
	}
}

// shopWithSlot opens the shop of tt with a single slot of the given shape.
func shopWithSlot(tt *Tetris, shape Shape, origin Point) *ShopSlot {
	cells, w, _ := trimmed(shape)
	slot := &ShopSlot{Shape: shape, Origin: origin, Cells: cells, Width: w + 2}
	slot.Walls = outline(slot.absCells())
	tt.shop.active = true
	tt.board.OpenShop(tt.opts.ShopBandBottom)
	tt.board.MarkOutline(slot.Walls)
	tt.shop.slots.Put(0, slot)
	tt.shop.count = 1
	return slot
}

func TestShopPurchase(t *testing.T) {
	t.Run("filling a slot buys it and frees its region", func(t *testing.T) {
		tt := NewTestTetris(T)
		shopWithSlot(tt, T, Point{X: 12, Y: 5})
		tt.piece.X = 12

		events := tt.Tick(t0, Input{Pressed: []Action{HardDrop}})
		want := []Event{{Kind: EventShopSlotCompleted, Shape: T}}
		if !reflect.DeepEqual(events, want) {
			t.Errorf("wanted %v, got %v", want, events)
		}
		for x := tt.opts.Width; x < tt.opts.Width+tt.opts.ShopWidth; x++ {
			for y := range tt.opts.Height {
				if tt.board.Cell(x, y) != Empty {
					t.Fatalf("wanted the slot region to be empty, got %v at (%d, %d)", tt.board.Cell(x, y), x, y)
				}
			}
		}
		if slots := tt.ShopSlots(); len(slots) != 1 || !slots[0].Completed {
			t.Errorf("wanted the slot to be completed, got %v", slots)
		}
	})

	t.Run("a partially filled slot stays", func(t *testing.T) {
		tt := NewTestTetris(O)
		slot := shopWithSlot(tt, T, Point{X: 12, Y: 5})
		tt.piece.X = 12

		if events := tt.Tick(t0, Input{Pressed: []Action{HardDrop}}); len(events) != 0 {
			t.Errorf("wanted no events, got %v", events)
		}
		for _, p := range slot.Walls {
			if tt.board.Cell(p.X, p.Y) != Wall {
				t.Errorf("wanted the wall at %v to stay", p)
			}
		}
	})

	t.Run("pieces can't sink under the shop depth", func(t *testing.T) {
		tt := NewTestTetris(I)
		shopWithSlot(tt, T, Point{X: 12, Y: 5})
		tt.piece.X = 24

		tt.Tick(t0, Input{Pressed: []Action{HardDrop}})
		// I state 0 fills row Y+1 of its box
		for x := 24; x < 28; x++ {
			if tt.board.Cell(x, tt.opts.ShopBandBottom+1) != Locked {
				t.Errorf("wanted the I to rest at the shop depth, column %d is %v", x, tt.board.Cell(x, tt.opts.ShopBandBottom+1))
			}
		}
	})
}
