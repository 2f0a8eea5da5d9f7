package scene

import "github.com/charmbracelet/harmonica"

// Turntable spins the scene around the vertical axis. Starting and
// stopping ease the speed in and out with a critically damped spring.
type Turntable struct {
	Angle float64 // Radians
	Speed float64 // Radians per second at full spin

	velocity float64
	accel    float64 // Spring velocity of the velocity
	spring   harmonica.Spring
}

// NewTurntable creates a stopped turntable stepping at fps frames per
// second.
func NewTurntable(fps int) *Turntable {
	return &Turntable{
		Speed:  1,
		spring: harmonica.NewSpring(harmonica.FPS(max(1, fps)), 4.0, 1.0),
	}
}

// Update advances one frame of dt seconds, spinning up when on and down
// otherwise.
func (t *Turntable) Update(dt float64, on bool) {
	target := 0.0
	if on {
		target = t.Speed
	}
	t.velocity, t.accel = t.spring.Update(t.velocity, t.accel, target)
	t.Angle += t.velocity * dt
}

// Velocity returns the current angular speed.
func (t *Turntable) Velocity() float64 {
	return t.velocity
}
