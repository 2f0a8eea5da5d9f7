// duopipe renders a textured, lit mesh through a hardware pipeline
// contract or a CPU rasterizer, in the terminal or to PNG.
//
// Controls (view):
//
//	W/A/S/D     - Move (hold shift to move faster)
//	Left drag   - Dolly and yaw
//	Right drag  - Pitch and yaw
//	Both drag   - Pan vertically
//	E           - Toggle hardware / software pipeline
//	R           - Toggle rotation
//	C           - Cycle cull mode (back, front, none)
//	F           - Cycle texture filter (hardware only)
//	T           - Toggle fire mesh (hardware only)
//	X           - Toggle wireframe overlay
//	?           - Toggle HUD overlay
//	Esc         - Quit
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"syscall"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
	"github.com/taigrr/duopipe/pkg/config"
	"github.com/taigrr/duopipe/pkg/render"
	"github.com/taigrr/duopipe/pkg/scene"
)

var version = "dev"

// options are the global flags.
type options struct {
	configPath string
	logLevel   string
	mode       string
	cull       string
}

func main() {
	if err := fang.Execute(
		context.Background(),
		newRootCmd(),
		fang.WithVersion(version),
		fang.WithNotifySignal(os.Interrupt, syscall.SIGTERM),
	); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:   "duopipe",
		Short: "Render a textured, lit mesh on the GPU contract or the CPU",
		Long: `duopipe renders a normal-mapped mesh through one of two pipelines:
a hardware pipeline that records its draw calls, and a software
rasterizer. With no assets configured it renders a procedural scene.`,
		SilenceUsage: true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "config file (.yaml, .yml or .toml)")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	flags.StringVar(&opts.mode, "mode", "", "pipeline (hardware, software)")
	flags.StringVar(&opts.cull, "cull", "", "cull mode (back, front, none)")

	root.AddCommand(
		newViewCmd(opts),
		newSnapshotCmd(opts),
		newBenchCmd(opts),
	)
	return root
}

// load resolves the config file and flag overrides.
func (o *options) load() (config.Config, error) {
	cfg := config.Default()
	if o.configPath != "" {
		var err error
		if cfg, err = config.Load(o.configPath); err != nil {
			return cfg, err
		}
	}

	if o.logLevel != "" {
		if err := cfg.Log.Level.UnmarshalText([]byte(o.logLevel)); err != nil {
			return cfg, fmt.Errorf("--log-level: %w", err)
		}
	}
	if o.mode != "" {
		if err := cfg.Mode.UnmarshalText([]byte(o.mode)); err != nil {
			return cfg, fmt.Errorf("--mode: %w", err)
		}
	}
	if o.cull != "" {
		if err := cfg.Cull.UnmarshalText([]byte(o.cull)); err != nil {
			return cfg, fmt.Errorf("--cull: %w", err)
		}
	}
	return cfg, nil
}

// newLogger creates a text logger at the configured level.
func newLogger(w io.Writer, cfg config.Config) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: cfg.Log.Level}))
}

// setup loads the scene and builds a renderer for a width x height target.
func setup(cfg config.Config, logger *slog.Logger, width, height int) (*scene.Renderer, *render.Framebuffer, error) {
	sc, err := scene.Load(cfg.Assets)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("scene loaded",
		"name", sc.Name,
		"vertices", sc.Mesh.VertexCount(),
		"triangles", sc.Mesh.TriangleCount(),
		"fire", sc.Fire != nil,
	)

	r, err := scene.NewRenderer(sc, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	r.SetSize(width, height)
	return r, render.NewFramebuffer(width, height), nil
}
