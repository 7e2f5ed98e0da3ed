package proto

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"time"

	"google.golang.org/protobuf/types/known/structpb"

	"shoptris/tetris"
)

const (
	FieldSession = "session"
	FieldKind    = "kind"
	FieldLines   = "lines"
	FieldScore   = "score"
	FieldLevel   = "level"
	FieldGravity = "gravity_ms"
	FieldShape   = "shape"
)

var (
	ErrUnknownKind  = errors.New("unknown event kind")
	ErrMissingField = errors.New("missing field")
	ErrBadValue     = errors.New("bad value")
)

// fields lists the values every kind carries on the wire.
var fields = map[tetris.EventKind][]string{
	tetris.EventLinesCleared:      {FieldLines},
	tetris.EventScoreChanged:      {FieldScore},
	tetris.EventLevelChanged:      {FieldLevel},
	tetris.EventGravityChanged:    {FieldGravity},
	tetris.EventShopOpened:        {FieldLevel},
	tetris.EventShopClosed:        {FieldLevel},
	tetris.EventShopSlotCompleted: {FieldShape},
	tetris.EventGameOver:          {FieldScore, FieldLines},
}

// EncodeEvent returns the wire form of e for the given session.
func EncodeEvent(session string, e tetris.Event) (*structpb.Struct, error) {
	want, ok := fields[e.Kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, e.Kind)
	}
	m := map[string]any{
		FieldSession: session,
		FieldKind:    string(e.Kind),
	}
	for _, f := range want {
		switch f {
		case FieldLines:
			m[f] = e.Lines
		case FieldScore:
			m[f] = e.Score
		case FieldLevel:
			m[f] = e.Level
		case FieldGravity:
			m[f] = e.Gravity.Milliseconds()
		case FieldShape:
			m[f] = string(e.Shape)
		}
	}
	s, err := structpb.NewStruct(m)
	if err != nil {
		return nil, fmt.Errorf("encoding %s event: %w", e.Kind, err)
	}
	return s, nil
}

// DecodeEvent parses the wire form of an event and returns its session.
func DecodeEvent(s *structpb.Struct) (string, tetris.Event, error) {
	f := s.GetFields()
	kind := tetris.EventKind(f[FieldKind].GetStringValue())
	want, ok := fields[kind]
	if !ok {
		return "", tetris.Event{}, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}

	e := tetris.Event{Kind: kind}
	for _, name := range want {
		v, ok := f[name]
		if !ok {
			return "", tetris.Event{}, fmt.Errorf("%w %q in %s event", ErrMissingField, name, kind)
		}
		if name == FieldShape {
			shape := tetris.Shape(v.GetStringValue())
			if !slices.Contains(tetris.Shapes, shape) {
				return "", tetris.Event{}, fmt.Errorf("%w: shape %q", ErrBadValue, v.GetStringValue())
			}
			e.Shape = shape
			continue
		}
		n, err := count(v)
		if err != nil {
			return "", tetris.Event{}, fmt.Errorf("field %q in %s event: %w", name, kind, err)
		}
		switch name {
		case FieldLines:
			e.Lines = n
		case FieldScore:
			e.Score = n
		case FieldLevel:
			e.Level = n
		case FieldGravity:
			e.Gravity = time.Duration(n) * time.Millisecond
		}
	}
	return f[FieldSession].GetStringValue(), e, nil
}

// count reads a non negative whole number.
func count(v *structpb.Value) (int, error) {
	nv, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok {
		return 0, fmt.Errorf("%w: not a number", ErrBadValue)
	}
	n := nv.NumberValue
	if n < 0 || n != math.Trunc(n) || n > math.MaxInt32 {
		return 0, fmt.Errorf("%w: %v", ErrBadValue, n)
	}
	return int(n), nil
}
