package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"benchcat/internal/config"
	"benchcat/internal/frame"
	"benchcat/internal/workflow"
)

func newCropCommand(ctx *commandContext) *cobra.Command {
	cropCmd := &cobra.Command{
		Use:   "crop",
		Short: "Crop videos to a fixed box",
	}
	cropCmd.AddCommand(&cobra.Command{
		Use:   "motionpro [dir]",
		Short: "Crop MotionPro.mp4 in every MC-Bench scene to MotionPro_cropped.mp4",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _ := ctx.ensureConfig()
			root := datasetDir(args, 0, cfg.Paths.MCBenchDir, "MC-Bench")
			return ctx.runWorkflow(cmd, func(r *workflow.Runner) (workflow.Report, error) {
				return r.CropMotionPro(cmd.Context(), root)
			})
		},
	})
	cropCmd.AddCommand(newCropFileCommand(ctx))
	return cropCmd
}

func newCropFileCommand(ctx *commandContext) *cobra.Command {
	var output string
	var spec frame.CropSpec
	var auto bool

	cmd := &cobra.Command{
		Use:   "file <input>",
		Short: "Crop a single video",
		Long: "Crop a single video. Negative --x/--y count from the right/bottom edge;\n" +
			"a zero --w/--h extends to the frame edge. --auto selects the MotionPro box.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if output == "" {
				return errors.New("--output is required")
			}
			if auto {
				for _, name := range []string{"x", "y", "w", "h"} {
					if cmd.Flags().Changed(name) {
						return fmt.Errorf("--auto cannot be combined with --%s", name)
					}
				}
			}
			input, err := config.ExpandPath(args[0])
			if err != nil {
				return err
			}
			dst, err := config.ExpandPath(output)
			if err != nil {
				return err
			}
			var box *frame.CropSpec
			if !auto {
				box = &spec
			}
			return ctx.runWorkflow(cmd, func(r *workflow.Runner) (workflow.Report, error) {
				return r.CropFile(cmd.Context(), input, dst, box)
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Destination video")
	cmd.Flags().IntVar(&spec.X, "x", 0, "Left offset (negative counts from the right edge)")
	cmd.Flags().IntVar(&spec.Y, "y", 0, "Top offset (negative counts from the bottom edge)")
	cmd.Flags().IntVar(&spec.W, "w", 0, "Width (0 extends to the right edge)")
	cmd.Flags().IntVar(&spec.H, "h", 0, "Height (0 extends to the bottom edge)")
	cmd.Flags().BoolVar(&auto, "auto", false, "Use the MotionPro box for the source height")
	return cmd
}
