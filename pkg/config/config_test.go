package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taigrr/duopipe/pkg/render"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, render.RGB(0x19, 0x19, 0x19), cfg.BackgroundColor())
	assert.Equal(t, Vec3{0, 0, -50}, cfg.World.Translation)
	assert.Equal(t, render.Software, cfg.Mode)
	assert.False(t, cfg.Fire)
	assert.False(t, cfg.Rotate)
	assert.False(t, cfg.Pipeline.NormalsAsDirections, "normals keep the world translation")
	assert.InDelta(t, 1, cfg.Pipeline.VisibilityScale, 0)

	l := cfg.SceneLight()
	assert.InDelta(t, 1, l.Direction.Len(), 1e-12)
	assert.InDelta(t, 7, l.Intensity, 0)
	assert.InDelta(t, 1, l.Color.R, 1e-9)
}

func TestLoad(t *testing.T) {
	const yamlDoc = `
width: 64
height: 48
mode: hardware
cull: front
filter: anisotropic
fire: true
rotate: true
background: "#ff0000"
world:
  translation: [1, 2, 3]
light:
  color: "00ff00"
pipeline:
  workers: 4
  perspective_varyings: true
log:
  level: debug
`
	const tomlDoc = `
width = 64
height = 48
mode = "hardware"
cull = "front"
filter = "anisotropic"
fire = true
rotate = true
background = "#ff0000"

[world]
translation = [1.0, 2.0, 3.0]

[light]
color = "00ff00"

[pipeline]
workers = 4
perspective_varyings = true

[log]
level = "debug"
`

	tests := []struct {
		name string
		file string
		doc  string
	}{
		{"yaml", "scene.yaml", yamlDoc},
		{"yml", "scene.yml", yamlDoc},
		{"toml", "scene.toml", tomlDoc},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(writeFile(t, tt.file, tt.doc))
			require.NoError(t, err)

			assert.Equal(t, 64, cfg.Width)
			assert.Equal(t, 48, cfg.Height)
			assert.Equal(t, render.Hardware, cfg.Mode)
			assert.Equal(t, render.CullFront, cfg.Cull)
			assert.Equal(t, render.FilterAnisotropic, cfg.Filter)
			assert.True(t, cfg.Fire)
			assert.True(t, cfg.Rotate)
			assert.Equal(t, "duopipe.log", cfg.Log.File, "unset keys keep defaults")
			assert.Equal(t, render.RGB(255, 0, 0), cfg.BackgroundColor())
			assert.Equal(t, Vec3{1, 2, 3}, cfg.World.Translation)
			assert.InDelta(t, 1, cfg.SceneLight().Color.G, 1e-9)
			assert.InDelta(t, 0, cfg.SceneLight().Color.R, 1e-9)
			assert.Equal(t, 4, cfg.Pipeline.Workers)
			assert.True(t, cfg.Pipeline.PerspectiveVaryings)
			assert.Equal(t, slog.LevelDebug, cfg.Log.Level)
			assert.InDelta(t, 45, cfg.Camera.FOV, 0)
		})
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		file string
		doc  string
		is   error
	}{
		{"unknown extension", "scene.json", `{}`, ErrUnknownFormat},
		{"bad mode", "scene.yaml", "mode: vulkan\n", nil},
		{"bad cull", "scene.toml", "cull = \"sideways\"\n", nil},
		{"bad size", "scene.yaml", "width: 0\n", ErrInvalid},
		{"bad background", "scene.yaml", "background: \"#zzz\"\n", ErrInvalid},
		{"bad clip planes", "scene.yaml", "camera:\n  near: 10\n  far: 1\n", ErrInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, tt.file, tt.doc))
			require.Error(t, err)
			if tt.is != nil {
				assert.ErrorIs(t, err, tt.is)
			}
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestValidateCollectsAll(t *testing.T) {
	cfg := Default()
	cfg.FPS = 0
	cfg.Pipeline.VisibilityScale = 0
	cfg.Light.Direction = Vec3{}

	err := cfg.Validate()
	require.ErrorIs(t, err, ErrInvalid)
	assert.Contains(t, err.Error(), "fps 0")
	assert.Contains(t, err.Error(), "visibility scale 0")
	assert.Contains(t, err.Error(), "light direction is zero")
}
