package main

import (
	"bytes"
	"context"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taigrr/duopipe/pkg/config"
	"github.com/taigrr/duopipe/pkg/render"
	"github.com/taigrr/duopipe/pkg/scene"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "duopipe.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

const smallConfig = `
width: 64
height: 48
pipeline:
  workers: 2
`

func TestOptionsLoad(t *testing.T) {
	path := writeConfig(t, smallConfig+"mode: hardware\n")

	tests := []struct {
		name    string
		opts    options
		check   func(t *testing.T, cfg config.Config)
		wantErr string
	}{
		{
			name: "defaults",
			check: func(t *testing.T, cfg config.Config) {
				assert.Equal(t, config.Default().Width, cfg.Width)
				assert.Equal(t, render.Software, cfg.Mode)
			},
		},
		{
			name: "file",
			opts: options{configPath: path},
			check: func(t *testing.T, cfg config.Config) {
				assert.Equal(t, 64, cfg.Width)
				assert.Equal(t, render.Hardware, cfg.Mode)
			},
		},
		{
			name: "flags override file",
			opts: options{configPath: path, mode: "software", cull: "none", logLevel: "debug"},
			check: func(t *testing.T, cfg config.Config) {
				assert.Equal(t, render.Software, cfg.Mode)
				assert.Equal(t, render.CullNone, cfg.Cull)
				assert.Equal(t, slog.LevelDebug, cfg.Log.Level)
			},
		},
		{name: "bad mode", opts: options{mode: "vulkan"}, wantErr: "--mode"},
		{name: "bad cull", opts: options{cull: "sideways"}, wantErr: "--cull"},
		{name: "bad level", opts: options{logLevel: "loud"}, wantErr: "--log-level"},
		{name: "missing file", opts: options{configPath: filepath.Join(t.TempDir(), "nope.yaml")}, wantErr: "read config"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := tt.opts.load()
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			tt.check(t, cfg)
		})
	}
}

func TestInputAccumulator(t *testing.T) {
	t0 := time.Now()

	t.Run("keys expire", func(t *testing.T) {
		var a inputAccumulator
		a.Press(keyForward, true, t0)
		a.Press(keyLeft, false, t0)

		in := a.Snapshot(t0.Add(keyHold / 2))
		assert.True(t, in.Forward)
		assert.True(t, in.Left)
		assert.True(t, in.Fast)
		assert.False(t, in.Back)

		in = a.Snapshot(t0.Add(2 * keyHold))
		assert.False(t, in.Forward)
		assert.False(t, in.Left)
		assert.False(t, in.Fast)
	})

	t.Run("release", func(t *testing.T) {
		var a inputAccumulator
		a.Press(keyRight, false, t0)
		a.Release(keyRight)
		assert.False(t, a.Snapshot(t0).Right)
	})

	t.Run("pointer deltas reset", func(t *testing.T) {
		var a inputAccumulator
		a.Motion(10, 10) // first position only
		a.Button(true, false, 10, 10)
		a.Motion(13, 8)
		a.Motion(15, 9)

		in := a.Snapshot(t0)
		assert.Equal(t, 5.0, in.MouseDX)
		assert.Equal(t, -1.0, in.MouseDY)
		assert.True(t, in.LeftButton)
		assert.False(t, in.RightButton)

		in = a.Snapshot(t0)
		assert.Zero(t, in.MouseDX)
		assert.Zero(t, in.MouseDY)
		assert.True(t, in.LeftButton)

		left, right := a.Buttons()
		assert.True(t, left)
		assert.False(t, right)
	})
}

func TestHUD(t *testing.T) {
	t0 := time.Now()
	h := NewHUD(t0)
	assert.False(t, h.Visible)

	for i := 1; i < 30; i++ {
		assert.False(t, h.Tick(t0.Add(time.Duration(i)*10*time.Millisecond)))
	}
	assert.True(t, h.Tick(t0.Add(time.Second)))
	assert.InDelta(t, 30.0, h.FPS(), 1e-9)

	cfg := config.Default()
	cfg.Width, cfg.Height = 32, 24
	r, err := scene.NewRenderer(scene.Procedural(), cfg, slog.New(slog.DiscardHandler))
	require.NoError(t, err)

	top, bottom := h.lines(r)
	assert.Contains(t, top, "30 FPS")
	assert.Contains(t, top, "procedural")
	assert.Contains(t, bottom, "E:software")
	assert.Contains(t, bottom, "C:back")
	assert.Contains(t, bottom, "[ ] R:rotate")

	r.ToggleRotation()
	r.ToggleMode()
	_, bottom = h.lines(r)
	assert.Contains(t, bottom, "E:hardware")
	assert.Contains(t, bottom, "[x] R:rotate")
}

func execute(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(&out)
	root.SetErr(&out)
	require.NoError(t, root.ExecuteContext(context.Background()), out.String())
	return out.String()
}

func TestSnapshotCommand(t *testing.T) {
	for _, mode := range []string{"software", "hardware"} {
		t.Run(mode, func(t *testing.T) {
			path := writeConfig(t, smallConfig)
			output := filepath.Join(t.TempDir(), "frame.png")

			logs := execute(t, "snapshot", "--config", path, "--mode", mode, "-o", output, "--frames", "3")
			assert.Contains(t, logs, "snapshot written")
			assert.Contains(t, logs, "mode="+mode)

			f, err := os.Open(output)
			require.NoError(t, err)
			defer f.Close()
			img, err := png.Decode(f)
			require.NoError(t, err)
			assert.Equal(t, 64, img.Bounds().Dx())
			assert.Equal(t, 48, img.Bounds().Dy())
		})
	}
}

func TestBenchCommand(t *testing.T) {
	path := writeConfig(t, smallConfig)
	logs := execute(t, "bench", "--config", path, "-n", "2")
	assert.Contains(t, logs, "bench finished")
	assert.True(t, strings.Contains(logs, "frames=2"), logs)
}
