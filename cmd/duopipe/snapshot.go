package main

import (
	"github.com/spf13/cobra"
	"github.com/taigrr/duopipe/pkg/render"
)

func newSnapshotCmd(opts *options) *cobra.Command {
	var (
		output string
		frames int
	)
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Render one frame to a PNG file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			logger := newLogger(cmd.ErrOrStderr(), cfg)

			r, fb, err := setup(cfg, logger, cfg.Width, cfg.Height)
			if err != nil {
				return err
			}

			// Let the turntable run before the captured frame.
			dt := 1 / float64(cfg.FPS)
			for range frames {
				r.Update(dt, render.InputState{})
			}

			if err := r.Render(fb); err != nil {
				return err
			}
			if err := fb.SavePNG(output); err != nil {
				return err
			}

			st := r.Stats()
			logger.Info("snapshot written",
				"path", output,
				"mode", r.Mode(),
				"triangles", st.Triangles,
				"fragments", st.FragmentsWritten,
			)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "duopipe.png", "output PNG path")
	cmd.Flags().IntVar(&frames, "frames", 0, "frames to simulate before capturing")
	return cmd
}
