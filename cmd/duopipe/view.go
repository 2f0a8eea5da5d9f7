package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	uv "github.com/charmbracelet/ultraviolet"
	"github.com/spf13/cobra"
	"github.com/taigrr/duopipe/pkg/config"
	"github.com/taigrr/duopipe/pkg/render"
	"github.com/taigrr/duopipe/pkg/scene"
)

// pointerScale converts terminal cells to the pointer units the camera
// expects.
const pointerScale = 8

func newViewCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "view",
		Short: "Open the interactive terminal viewer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}

			// The terminal belongs to the viewer, so logs go to a file.
			logFile, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
			if err != nil {
				return fmt.Errorf("open log file: %w", err)
			}
			defer logFile.Close()

			return runViewer(cmd.Context(), cfg, newLogger(logFile, cfg))
		},
	}
}

// viewer holds the state shared by the frame loop.
type viewer struct {
	term     *uv.Terminal
	renderer *scene.Renderer
	logger   *slog.Logger
	hud      *HUD
	input    *inputAccumulator
	actions  chan func()
	resize   chan uv.WindowSizeEvent
}

func runViewer(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	term := uv.DefaultTerminal()

	width, height, err := term.GetSize()
	if err != nil {
		return fmt.Errorf("get terminal size: %w", err)
	}

	// Two pixel rows per terminal cell.
	r, fb, err := setup(cfg, logger, width, height*2)
	if err != nil {
		return err
	}

	if err := term.Start(); err != nil {
		return fmt.Errorf("start terminal: %w", err)
	}
	term.EnterAltScreen()
	term.HideCursor()
	term.Resize(width, height)

	// Enable any-event mouse tracking in SGR mode.
	fmt.Fprint(os.Stdout, "\x1b[?1003h")
	fmt.Fprint(os.Stdout, "\x1b[?1006h")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	v := &viewer{
		term:     term,
		renderer: r,
		logger:   logger,
		hud:      NewHUD(time.Now()),
		input:    &inputAccumulator{},
		actions:  make(chan func(), 16),
		resize:   make(chan uv.WindowSizeEvent, 1),
	}
	go v.pumpEvents(cancel)

	err = v.loop(ctx, fb, cfg.FPS)

	fmt.Fprint(os.Stdout, "\x1b[?1003l")
	fmt.Fprint(os.Stdout, "\x1b[?1006l")
	term.ExitAltScreen()
	term.ShowCursor()
	shutdownCtx, done := context.WithTimeout(context.Background(), time.Second)
	defer done()
	if serr := term.Shutdown(shutdownCtx); serr != nil && err == nil {
		logger.Warn("terminal shutdown", "error", serr)
	}
	return err
}

// pumpEvents translates terminal events into input and actions. Renderer
// state is only touched by the frame loop, through v.actions.
func (v *viewer) pumpEvents(cancel context.CancelFunc) {
	r := v.renderer
	for ev := range v.term.Events() {
		now := time.Now()
		switch ev := ev.(type) {
		case uv.WindowSizeEvent:
			select {
			case <-v.resize:
			default:
			}
			v.resize <- ev

		case uv.KeyPressEvent:
			switch {
			case ev.MatchString("escape", "ctrl+c"):
				cancel()
				return
			case ev.MatchString("w", "up"):
				v.input.Press(keyForward, false, now)
			case ev.MatchString("s", "down"):
				v.input.Press(keyBack, false, now)
			case ev.MatchString("a", "left"):
				v.input.Press(keyLeft, false, now)
			case ev.MatchString("d", "right"):
				v.input.Press(keyRight, false, now)
			case ev.MatchString("shift+w", "W", "shift+up"):
				v.input.Press(keyForward, true, now)
			case ev.MatchString("shift+s", "S", "shift+down"):
				v.input.Press(keyBack, true, now)
			case ev.MatchString("shift+a", "A", "shift+left"):
				v.input.Press(keyLeft, true, now)
			case ev.MatchString("shift+d", "D", "shift+right"):
				v.input.Press(keyRight, true, now)
			case ev.MatchString("e"):
				v.send(r.ToggleMode)
			case ev.MatchString("r"):
				v.send(r.ToggleRotation)
			case ev.MatchString("c"):
				v.send(r.ToggleCull)
			case ev.MatchString("f"):
				v.send(r.ToggleFilter)
			case ev.MatchString("t"):
				v.send(r.ToggleFire)
			case ev.MatchString("x"):
				v.send(r.ToggleWireframe)
			case ev.MatchString("?", "shift+/"):
				v.send(func() { v.hud.Visible = !v.hud.Visible })
			}

		case uv.KeyReleaseEvent:
			switch {
			case ev.MatchString("w", "up", "shift+w", "W"):
				v.input.Release(keyForward)
			case ev.MatchString("s", "down", "shift+s", "S"):
				v.input.Release(keyBack)
			case ev.MatchString("a", "left", "shift+a", "A"):
				v.input.Release(keyLeft)
			case ev.MatchString("d", "right", "shift+d", "D"):
				v.input.Release(keyRight)
			}

		case uv.MouseClickEvent:
			left, right := v.input.Buttons()
			switch ev.Button {
			case uv.MouseLeft:
				left = true
			case uv.MouseRight:
				right = true
			}
			v.input.Button(left, right, ev.X, ev.Y)

		case uv.MouseReleaseEvent:
			left, right := v.input.Buttons()
			switch ev.Button {
			case uv.MouseLeft:
				left = false
			case uv.MouseRight:
				right = false
			default:
				left, right = false, false
			}
			v.input.Button(left, right, ev.X, ev.Y)

		case uv.MouseMotionEvent:
			v.input.Motion(ev.X, ev.Y)
		}
	}
}

func (v *viewer) send(f func()) {
	select {
	case v.actions <- f:
	default:
		v.logger.Debug("input dropped, frame loop busy")
	}
}

func (v *viewer) loop(ctx context.Context, fb *render.Framebuffer, fps int) error {
	target := time.Second / time.Duration(max(1, fps))
	last := time.Now()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-v.resize:
			v.term.Erase()
			if err := v.term.Resize(ev.Width, ev.Height); err != nil {
				return fmt.Errorf("resize terminal: %w", err)
			}
			fb.Resize(ev.Width, ev.Height*2)
			v.renderer.SetSize(ev.Width, ev.Height*2)
		default:
		}
		v.drainActions()

		now := time.Now()
		dt := min(now.Sub(last).Seconds(), 0.1)
		last = now

		if err := v.renderer.Render(fb); err != nil {
			return err
		}
		fb.Draw(v.term, v.term.Bounds())
		v.hud.Draw(v.term, v.renderer)
		if err := v.term.Display(); err != nil {
			return fmt.Errorf("display: %w", err)
		}

		if v.hud.Tick(now) {
			v.logger.Debug("frame rate", "fps", v.hud.FPS(), "mode", v.renderer.Mode())
		}

		in := v.input.Snapshot(now)
		in.MouseDX *= pointerScale
		in.MouseDY *= pointerScale
		v.renderer.Update(dt, in)

		if elapsed := time.Since(now); elapsed < target {
			time.Sleep(target - elapsed)
		}
	}
}

func (v *viewer) drainActions() {
	for {
		select {
		case f := <-v.actions:
			f()
		default:
			return
		}
	}
}
