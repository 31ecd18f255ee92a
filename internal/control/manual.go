package control

import "github.com/san-kum/fieldsim/internal/dynamo"

// Manual reports whatever position was last set on it.
// Used for live user interaction, where mouse events call Set.
type Manual struct {
	cur dynamo.Vec2
}

func NewManual(at dynamo.Vec2) *Manual {
	return &Manual{cur: at}
}

// Set updates the pointer position.
func (m *Manual) Set(p dynamo.Vec2) { m.cur = p }

// Nudge moves the pointer by d.
func (m *Manual) Nudge(d dynamo.Vec2) { m.cur = m.cur.Add(d) }

func (m *Manual) Position(int, dynamo.Vec2) dynamo.Vec2 { return m.cur }
