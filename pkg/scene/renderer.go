package scene

import (
	"fmt"
	"image/color"
	"log/slog"
	"math"

	"github.com/taigrr/duopipe/pkg/config"
	"github.com/taigrr/duopipe/pkg/gpu"
	"github.com/taigrr/duopipe/pkg/math3d"
	"github.com/taigrr/duopipe/pkg/render"
)

// Renderer owns the camera, the toggles and both pipelines. It is not
// safe for concurrent use; the frame loop calls it from one goroutine.
type Renderer struct {
	scene  *Scene
	camera *render.Camera

	mode      render.PipelineMode
	cull      render.CullMode
	filter    render.FilterMode
	fire      bool
	rotating  bool
	wireframe bool

	translation math3d.Vec3
	turntable   *Turntable
	background  color.RGBA

	// Software pipeline
	stage  *render.ProjectionStage
	rast   *render.Rasterizer
	shader *render.PixelShader
	wire   *render.Wireframe

	// Hardware pipeline
	device   *gpu.Recorder
	pipeline *gpu.Pipeline
	replay   *gpu.Replayer

	logger *slog.Logger
}

// NewRenderer binds sc to both pipelines with the settings of cfg. A nil
// logger uses slog.Default().
func NewRenderer(sc *Scene, cfg config.Config, logger *slog.Logger) (*Renderer, error) {
	if logger == nil {
		logger = slog.Default()
	}

	cam := render.NewCamera(cfg.Camera.Position.Vec(), cfg.Camera.FOV, float64(cfg.Width)/float64(cfg.Height))
	cam.SetClipPlanes(cfg.Camera.Near, cfg.Camera.Far)
	cam.MoveSpeed = cfg.Camera.MoveSpeed
	cam.FastMultiplier = cfg.Camera.FastMultiplier
	cam.DollySpeed = cfg.Camera.DollySpeed
	cam.RotateSpeed = cfg.Camera.RotateSpeed * math.Pi / 180

	stage := render.NewProjectionStage()
	stage.VisibilityScale = cfg.Pipeline.VisibilityScale
	stage.NormalsAsDirections = cfg.Pipeline.NormalsAsDirections

	rast := render.NewRasterizer(nil)
	rast.Workers = cfg.Pipeline.Workers
	rast.PerspectiveVaryings = cfg.Pipeline.PerspectiveVaryings

	shader := render.NewPixelShader(sc.Maps.Diffuse, sc.Maps.Normal, sc.Maps.Specular, sc.Maps.Gloss)
	shader.Light = cfg.SceneLight()
	shader.Shininess = cfg.Light.Shininess
	shader.Ambient = render.Gray(cfg.Light.Ambient)

	dev := gpu.NewRecorder(1, logger)
	main, err := gpu.Bind(dev, sc.Mesh, false, sc.Maps)
	if err != nil {
		return nil, fmt.Errorf("bind mesh: %w", err)
	}
	var fire *gpu.Binding
	if sc.Fire != nil {
		fire, err = gpu.Bind(dev, sc.Fire, true, gpu.Maps{Diffuse: sc.FireMap})
		if err != nil {
			return nil, fmt.Errorf("bind fire mesh: %w", err)
		}
	}
	replay := gpu.NewReplayer(dev)
	replay.Rasterizer.Workers = cfg.Pipeline.Workers
	replay.Rasterizer.PerspectiveVaryings = cfg.Pipeline.PerspectiveVaryings
	replay.Light, replay.Shininess, replay.Ambient = shader.Light, shader.Shininess, shader.Ambient

	return &Renderer{
		scene:       sc,
		camera:      cam,
		mode:        cfg.Mode,
		cull:        cfg.Cull,
		filter:      cfg.Filter,
		fire:        cfg.Fire,
		rotating:    cfg.Rotate,
		translation: cfg.World.Translation.Vec(),
		turntable:   NewTurntable(cfg.FPS),
		background:  cfg.BackgroundColor(),
		stage:       stage,
		rast:        rast,
		shader:      shader,
		wire:        render.NewWireframe(render.ColorGreen),
		device:      dev,
		pipeline:    gpu.NewPipeline(dev, main, fire),
		replay:      replay,
		logger:      logger,
	}, nil
}

// Camera returns the scene camera.
func (r *Renderer) Camera() *render.Camera { return r.camera }

// Scene returns the rendered scene.
func (r *Renderer) Scene() *Scene { return r.scene }

// Mode returns the active pipeline.
func (r *Renderer) Mode() render.PipelineMode { return r.mode }

// Cull returns the face culling mode.
func (r *Renderer) Cull() render.CullMode { return r.cull }

// Filter returns the hardware texture filter.
func (r *Renderer) Filter() render.FilterMode { return r.filter }

// FireVisible reports whether the fire mesh is drawn.
func (r *Renderer) FireVisible() bool { return r.fire }

// Rotating reports whether the turntable is switched on.
func (r *Renderer) Rotating() bool { return r.rotating }

// Wireframe reports whether the wireframe overlay is drawn.
func (r *Renderer) Wireframe() bool { return r.wireframe }

// Device returns the recording device behind the hardware pipeline.
func (r *Renderer) Device() *gpu.Recorder { return r.device }

// Stats returns the software rasterizer counters of the last frame.
func (r *Renderer) Stats() render.Stats {
	if r.mode == render.Hardware {
		return r.replay.Rasterizer.Stats
	}
	return r.rast.Stats
}

// ToggleMode switches between the hardware and software pipelines.
func (r *Renderer) ToggleMode() {
	r.mode = r.mode.Next()
	r.logger.Info("render mode changed", "mode", r.mode)
}

// ToggleCull cycles back, front and no culling.
func (r *Renderer) ToggleCull() {
	r.cull = r.cull.Next()
	r.logger.Info("cull mode changed", "mode", r.cull)
}

// ToggleFilter cycles the texture filter. It only acts in hardware
// mode; the software sampler is always nearest.
func (r *Renderer) ToggleFilter() {
	if r.mode != render.Hardware {
		return
	}
	r.filter = r.filter.Next()
	r.logger.Info("sample state changed", "filter", r.filter)
}

// ToggleFire shows or hides the fire mesh. It only acts in hardware
// mode.
func (r *Renderer) ToggleFire() {
	if r.mode != render.Hardware {
		return
	}
	r.fire = !r.fire
	r.logger.Info("fire mesh toggled", "visible", r.fire)
}

// ToggleRotation starts or stops the turntable.
func (r *Renderer) ToggleRotation() {
	r.rotating = !r.rotating
	r.logger.Info("rotation toggled", "rotating", r.rotating)
}

// ToggleWireframe shows or hides the triangle edge overlay.
func (r *Renderer) ToggleWireframe() {
	r.wireframe = !r.wireframe
	r.logger.Info("wireframe toggled", "visible", r.wireframe)
}

// SetSize matches the camera aspect ratio to a width x height target.
func (r *Renderer) SetSize(width, height int) {
	if width > 0 && height > 0 {
		r.camera.SetAspect(float64(width) / float64(height))
	}
}

// Update advances the camera and the turntable by one frame.
func (r *Renderer) Update(dt float64, in render.InputState) {
	r.camera.Update(dt, in)
	r.turntable.Update(dt, r.rotating)
}

// World returns the world matrix of the scene: the turntable rotation
// followed by the configured translation.
func (r *Renderer) World() math3d.Mat4 {
	return math3d.Translate(r.translation).Mul(math3d.RotateY(r.turntable.Angle))
}

// Render draws one frame of the active pipeline into fb.
func (r *Renderer) Render(fb *render.Framebuffer) error {
	world := r.World()

	var err error
	if r.mode == render.Hardware {
		err = r.renderHardware(fb, world)
	} else {
		err = r.renderSoftware(fb, world)
	}
	if err != nil {
		return err
	}

	if r.wireframe {
		buf := r.stage.Run(r.scene.Mesh, world, r.camera, r.mode)
		r.wire.Draw(fb, buf, r.scene.Mesh.Indices)
	}
	return nil
}

func (r *Renderer) renderHardware(fb *render.Framebuffer, world math3d.Mat4) error {
	err := r.pipeline.Render(gpu.FrameState{
		Camera: r.camera,
		World:  world,
		Filter: r.filter,
		Cull:   r.cull,
		Fire:   r.fire,
		Clear:  r.background,
	})
	if err != nil {
		return fmt.Errorf("hardware frame: %w", err)
	}

	r.replay.Rasterizer.ResetStats()
	if err := r.replay.Replay(fb); err != nil {
		return fmt.Errorf("hardware frame: %w", err)
	}
	return nil
}

func (r *Renderer) renderSoftware(fb *render.Framebuffer, world math3d.Mat4) error {
	fb.Clear(r.background)
	r.rast.SetSurface(fb)
	r.rast.Cull = r.cull
	r.rast.ResetStats()

	mesh := r.scene.Mesh
	if render.MeshVisible(mesh, world, r.camera, render.Software, r.stage.VisibilityScale) {
		buf := r.stage.Run(mesh, world, r.camera, render.Software)
		if err := r.rast.Draw(buf, mesh.Indices, r.shader); err != nil {
			return fmt.Errorf("software frame: %w", err)
		}
	}

	// Depth is reset after the pass, ready for the next frame.
	r.rast.EndFrame()
	return nil
}
