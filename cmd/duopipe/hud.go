package main

import (
	"fmt"
	"image/color"
	"time"

	uv "github.com/charmbracelet/ultraviolet"
	"github.com/taigrr/duopipe/pkg/render"
	"github.com/taigrr/duopipe/pkg/scene"
)

var (
	hudBg    = color.RGBA{0, 0, 0, 255}
	hudWhite = color.RGBA{255, 255, 255, 255}
	hudGreen = color.RGBA{80, 250, 120, 255}
	hudCyan  = color.RGBA{90, 220, 240, 255}
)

// HUD renders an overlay with the frame rate and the pipeline toggles.
type HUD struct {
	Visible bool

	fps       float64
	fpsFrames int
	fpsTime   time.Time
}

// NewHUD creates a hidden HUD.
func NewHUD(now time.Time) *HUD {
	return &HUD{fpsTime: now}
}

// Tick counts a frame. It reports true once per second, when the frame
// rate is updated.
func (h *HUD) Tick(now time.Time) bool {
	h.fpsFrames++
	elapsed := now.Sub(h.fpsTime)
	if elapsed < time.Second {
		return false
	}
	h.fps = float64(h.fpsFrames) / elapsed.Seconds()
	h.fpsFrames = 0
	h.fpsTime = now
	return true
}

// FPS returns the last measured frame rate.
func (h *HUD) FPS() float64 { return h.fps }

// lines returns the top and bottom status lines.
func (h *HUD) lines(r *scene.Renderer) (top, bottom string) {
	st := r.Stats()
	top = fmt.Sprintf(" %.0f FPS  %s  %d tris  %d px ",
		h.fps, r.Scene().Name, r.Scene().Mesh.TriangleCount(), st.FragmentsWritten)

	check := func(on bool) string {
		if on {
			return "[x]"
		}
		return "[ ]"
	}
	bottom = fmt.Sprintf(" E:%s  C:%s  F:%s  %s R:rotate  %s T:fire  %s X:wire ",
		r.Mode(), r.Cull(), r.Filter(),
		check(r.Rotating()), check(r.FireVisible()), check(r.Wireframe()))
	return top, bottom
}

// Draw writes the overlay onto scr when visible.
func (h *HUD) Draw(scr uv.Screen, r *scene.Renderer) {
	if !h.Visible {
		return
	}
	bounds := scr.Bounds()
	top, bottom := h.lines(r)

	render.DrawText(scr, bounds.Min.X, bounds.Min.Y, top, hudGreen, hudBg)
	fg := hudWhite
	if r.Mode() == render.Hardware {
		fg = hudCyan
	}
	render.DrawText(scr, bounds.Min.X, bounds.Max.Y-1, bottom, fg, hudBg)
}
