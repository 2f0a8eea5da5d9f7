// Package config loads viewer settings from YAML or TOML files.
package config

import (
	"errors"
	"fmt"
	"image/color"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/pelletier/go-toml/v2"
	"github.com/taigrr/duopipe/pkg/math3d"
	"github.com/taigrr/duopipe/pkg/render"
	"gopkg.in/yaml.v3"
)

var (
	// ErrUnknownFormat is returned by Load for extensions other than
	// .yaml, .yml and .toml.
	ErrUnknownFormat = errors.New("unknown config format")
	// ErrInvalid is wrapped by every Validate failure.
	ErrInvalid = errors.New("invalid config")
)

// Vec3 is a vector written as a three element list.
type Vec3 [3]float64

// Vec returns v as a math3d vector.
func (v Vec3) Vec() math3d.Vec3 { return math3d.V3(v[0], v[1], v[2]) }

// Config is the full set of viewer settings.
type Config struct {
	Width      int    `yaml:"width" toml:"width"`
	Height     int    `yaml:"height" toml:"height"`
	FPS        int    `yaml:"fps" toml:"fps"`
	Background string `yaml:"background" toml:"background"`

	Mode   render.PipelineMode `yaml:"mode" toml:"mode"`
	Cull   render.CullMode     `yaml:"cull" toml:"cull"`
	Filter render.FilterMode   `yaml:"filter" toml:"filter"`
	Fire   bool                `yaml:"fire" toml:"fire"`
	Rotate bool                `yaml:"rotate" toml:"rotate"`

	Assets   Assets   `yaml:"assets" toml:"assets"`
	World    World    `yaml:"world" toml:"world"`
	Camera   Camera   `yaml:"camera" toml:"camera"`
	Light    Light    `yaml:"light" toml:"light"`
	Pipeline Pipeline `yaml:"pipeline" toml:"pipeline"`
	Log      Log      `yaml:"log" toml:"log"`
}

// Assets names the files of the scene. An empty Mesh selects the
// procedural scene.
type Assets struct {
	Mesh string `yaml:"mesh" toml:"mesh"`
	Fire string `yaml:"fire" toml:"fire"`

	Diffuse  string `yaml:"diffuse" toml:"diffuse"`
	Normal   string `yaml:"normal" toml:"normal"`
	Specular string `yaml:"specular" toml:"specular"`
	Gloss    string `yaml:"gloss" toml:"gloss"`

	FireDiffuse string `yaml:"fire_diffuse" toml:"fire_diffuse"`

	// TextureMaxSize downscales larger textures; 0 keeps them as is.
	TextureMaxSize int `yaml:"texture_max_size" toml:"texture_max_size"`
}

// World places the scene.
type World struct {
	Translation Vec3 `yaml:"translation" toml:"translation"`
}

// Camera configures the fly camera. Angles are in degrees.
type Camera struct {
	Position       Vec3    `yaml:"position" toml:"position"`
	FOV            float64 `yaml:"fov" toml:"fov"`
	Near           float64 `yaml:"near" toml:"near"`
	Far            float64 `yaml:"far" toml:"far"`
	MoveSpeed      float64 `yaml:"move_speed" toml:"move_speed"`
	FastMultiplier float64 `yaml:"fast_multiplier" toml:"fast_multiplier"`
	DollySpeed     float64 `yaml:"dolly_speed" toml:"dolly_speed"`
	RotateSpeed    float64 `yaml:"rotate_speed" toml:"rotate_speed"`
}

// Light configures the directional light and material constants.
type Light struct {
	Direction Vec3    `yaml:"direction" toml:"direction"`
	Color     string  `yaml:"color" toml:"color"`
	Intensity float64 `yaml:"intensity" toml:"intensity"`
	Ambient   float64 `yaml:"ambient" toml:"ambient"`
	Shininess float64 `yaml:"shininess" toml:"shininess"`
}

// Pipeline tunes the software pipeline.
type Pipeline struct {
	VisibilityScale     float64 `yaml:"visibility_scale" toml:"visibility_scale"`
	Workers             int     `yaml:"workers" toml:"workers"`
	NormalsAsDirections bool    `yaml:"normals_as_directions" toml:"normals_as_directions"`
	PerspectiveVaryings bool    `yaml:"perspective_varyings" toml:"perspective_varyings"`
}

// Log configures logging.
type Log struct {
	Level slog.Level `yaml:"level" toml:"level"`
	File  string     `yaml:"file" toml:"file"`
}

// Default returns the built-in settings.
func Default() Config {
	light := render.DefaultLight()
	return Config{
		Width:      640,
		Height:     480,
		FPS:        30,
		Background: "#191919",
		Mode:       render.Software,
		Cull:       render.CullBack,
		Filter:     render.FilterPoint,
		World:      World{Translation: Vec3{0, 0, -50}},
		Camera: Camera{
			FOV:            45,
			Near:           0.1,
			Far:            100,
			MoveSpeed:      10,
			FastMultiplier: 2.5,
			DollySpeed:     2,
			RotateSpeed:    0.1,
		},
		Light: Light{
			Direction: Vec3{light.Direction.X, light.Direction.Y, light.Direction.Z},
			Color:     "#ffffff",
			Intensity: light.Intensity,
			Ambient:   0.025,
			Shininess: 25,
		},
		Pipeline: Pipeline{VisibilityScale: 1, Workers: runtime.GOMAXPROCS(0)},
		Log:      Log{Level: slog.LevelInfo, File: "duopipe.log"},
	}
}

// Load reads path over the defaults, choosing the decoder by extension,
// and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	case ".toml":
		err = toml.Unmarshal(data, &cfg)
	default:
		return cfg, fmt.Errorf("%w: %q", ErrUnknownFormat, ext)
	}
	if err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks ranges and color strings.
func (c Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
		}
	}

	check(c.Width > 0 && c.Height > 0, "size %dx%d", c.Width, c.Height)
	check(c.FPS > 0, "fps %d", c.FPS)
	check(c.Camera.FOV > 0 && c.Camera.FOV < 180, "camera fov %g", c.Camera.FOV)
	check(c.Camera.Near > 0 && c.Camera.Far > c.Camera.Near, "clip planes %g..%g", c.Camera.Near, c.Camera.Far)
	check(c.Light.Direction.Vec().LenSq() > 0, "light direction is zero")
	check(c.Pipeline.VisibilityScale > 0, "visibility scale %g", c.Pipeline.VisibilityScale)
	check(c.Pipeline.Workers >= 0, "workers %d", c.Pipeline.Workers)
	check(c.Assets.TextureMaxSize >= 0, "texture max size %d", c.Assets.TextureMaxSize)

	if _, err := parseHex(c.Background); err != nil {
		errs = append(errs, fmt.Errorf("%w: background: %w", ErrInvalid, err))
	}
	if _, err := parseHex(c.Light.Color); err != nil {
		errs = append(errs, fmt.Errorf("%w: light color: %w", ErrInvalid, err))
	}
	return errors.Join(errs...)
}

// BackgroundColor returns the parsed clear color.
func (c Config) BackgroundColor() color.RGBA {
	bg, err := parseHex(c.Background)
	if err != nil {
		return render.RGB(0x19, 0x19, 0x19)
	}
	r, g, b := bg.RGB255()
	return render.RGB(r, g, b)
}

// SceneLight returns the light described by the config.
func (c Config) SceneLight() render.Light {
	l := render.Light{
		Direction: c.Light.Direction.Vec().Normalize(),
		Color:     render.Gray(1),
		Intensity: c.Light.Intensity,
	}
	if col, err := parseHex(c.Light.Color); err == nil {
		l.Color = render.C3(col.R, col.G, col.B)
	}
	return l
}

func parseHex(s string) (colorful.Color, error) {
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	return colorful.Hex(s)
}
