package main

import (
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/taigrr/duopipe/pkg/render"
)

func newBenchCmd(opts *options) *cobra.Command {
	var frames int
	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Render frames off-screen and report the average frame time",
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

			bar := progressbar.NewOptions(frames,
				progressbar.OptionSetDescription("rendering "+r.Mode().String()),
				progressbar.OptionSetWriter(cmd.ErrOrStderr()),
				progressbar.OptionShowCount(),
				progressbar.OptionClearOnFinish(),
			)
			defer bar.Close()

			var (
				total     time.Duration
				fragments int
			)
			dt := 1 / float64(cfg.FPS)
			for range frames {
				if err := cmd.Context().Err(); err != nil {
					return err
				}
				start := time.Now()
				if err := r.Render(fb); err != nil {
					return err
				}
				total += time.Since(start)
				fragments += r.Stats().FragmentsWritten

				r.Update(dt, render.InputState{})
				_ = bar.Add(1)
			}

			if frames > 0 {
				avg := total / time.Duration(frames)
				logger.Info("bench finished",
					"mode", r.Mode(),
					"frames", frames,
					"avg", avg,
					"fps", float64(time.Second)/float64(max(avg, 1)),
					"fragments_per_frame", fragments/frames,
				)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&frames, "frames", "n", 100, "number of frames to render")
	return cmd
}
