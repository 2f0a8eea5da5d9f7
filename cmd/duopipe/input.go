package main

import (
	"sync"
	"time"

	"github.com/taigrr/duopipe/pkg/render"
)

// keyHold is how long a key counts as held after its last press. Most
// terminals only report presses, repeated while the key is down.
const keyHold = 150 * time.Millisecond

type moveKey int

const (
	keyForward moveKey = iota
	keyBack
	keyLeft
	keyRight
	moveKeys
)

// inputAccumulator collects terminal events between frames. The event
// goroutine writes to it and the frame loop drains it with Snapshot.
type inputAccumulator struct {
	mu sync.Mutex

	pressed [moveKeys]time.Time
	fast    time.Time

	left, right bool
	hasPointer  bool
	lastX       int
	lastY       int
	dx, dy      float64
}

// Press records a movement key press.
func (a *inputAccumulator) Press(k moveKey, fast bool, now time.Time) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.pressed[k] = now
	if fast {
		a.fast = now
	}
}

// Release forgets a movement key, for terminals that report releases.
func (a *inputAccumulator) Release(k moveKey) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.pressed[k] = time.Time{}
}

// Button records a pointer button change at cell (x, y).
func (a *inputAccumulator) Button(left, right bool, x, y int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.left, a.right = left, right
	a.lastX, a.lastY, a.hasPointer = x, y, true
}

// Buttons returns the held pointer buttons.
func (a *inputAccumulator) Buttons() (left, right bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.left, a.right
}

// Motion accumulates pointer movement to cell (x, y).
func (a *inputAccumulator) Motion(x, y int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.hasPointer {
		a.dx += float64(x - a.lastX)
		a.dy += float64(y - a.lastY)
	}
	a.lastX, a.lastY, a.hasPointer = x, y, true
}

// Snapshot returns the input for one frame and resets the pointer deltas.
func (a *inputAccumulator) Snapshot(now time.Time) render.InputState {
	a.mu.Lock()
	defer a.mu.Unlock()

	held := func(t time.Time) bool {
		return !t.IsZero() && now.Sub(t) < keyHold
	}
	in := render.InputState{
		Forward:     held(a.pressed[keyForward]),
		Back:        held(a.pressed[keyBack]),
		Left:        held(a.pressed[keyLeft]),
		Right:       held(a.pressed[keyRight]),
		Fast:        held(a.fast),
		MouseDX:     a.dx,
		MouseDY:     a.dy,
		LeftButton:  a.left,
		RightButton: a.right,
	}
	a.dx, a.dy = 0, 0
	return in
}
