package main

import (
	"errors"

	"github.com/spf13/cobra"

	"benchcat/internal/config"
	"benchcat/internal/workflow"
)

func newConcatCommand(ctx *commandContext) *cobra.Command {
	concatCmd := &cobra.Command{
		Use:   "concat",
		Short: "Concatenate videos side by side",
	}
	concatCmd.AddCommand(&cobra.Command{
		Use:   "mcbench [dir]",
		Short: "Warped | Ours_SVD | Drag_Anything | SGI2V | MotionPro_cropped per scene",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _ := ctx.ensureConfig()
			root := datasetDir(args, 0, cfg.Paths.MCBenchDir, "MC-Bench")
			return ctx.runWorkflow(cmd, func(r *workflow.Runner) (workflow.Report, error) {
				return r.ConcatMCBench(cmd.Context(), root)
			})
		},
	})
	concatCmd.AddCommand(&cobra.Command{
		Use:   "dl3dv [dir]",
		Short: "Warped | Ours | GWTF | GroundTruth per scene",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _ := ctx.ensureConfig()
			root := datasetDir(args, 0, cfg.Paths.DL3DVDir, "DL3DV")
			return ctx.runWorkflow(cmd, func(r *workflow.Runner) (workflow.Report, error) {
				return r.ConcatDL3DV(cmd.Context(), root)
			})
		},
	})
	concatCmd.AddCommand(newConcatUserCommand(ctx))
	concatCmd.AddCommand(newConcatFilesCommand(ctx))
	return concatCmd
}

func newConcatUserCommand(ctx *commandContext) *cobra.Command {
	var noSlowdown bool
	cmd := &cobra.Command{
		Use:   "user [camera-dir] [object-dir]",
		Short: "Pair warped/ours renders and concatenate each pair",
		Args:  cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _ := ctx.ensureConfig()
			camera := datasetDir(args, 0, cfg.Paths.UserCameraDir, "UserCameraControl")
			object := datasetDir(args, 1, cfg.Paths.UserObjectDir, "UserObjectControl")
			return ctx.runWorkflow(cmd, func(r *workflow.Runner) (workflow.Report, error) {
				if noSlowdown {
					r.Settings.UserCameraSlowdown = false
				}
				return r.ConcatUser(cmd.Context(), camera, object)
			})
		},
	}
	cmd.Flags().BoolVar(&noSlowdown, "no-slowdown", false, "Do not duplicate frames for camera-control pairs")
	return cmd
}

func newConcatFilesCommand(ctx *commandContext) *cobra.Command {
	var output string
	var height int
	var slowdown bool

	cmd := &cobra.Command{
		Use:   "files <input>...",
		Short: "Concatenate the given videos left to right",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if output == "" {
				return errors.New("--output is required")
			}
			dst, err := config.ExpandPath(output)
			if err != nil {
				return err
			}
			inputs := make([]string, len(args))
			for i, arg := range args {
				if inputs[i], err = config.ExpandPath(arg); err != nil {
					return err
				}
			}
			return ctx.runWorkflow(cmd, func(r *workflow.Runner) (workflow.Report, error) {
				if height > 0 {
					r.Settings.TargetHeight = height
				}
				return r.ConcatFiles(cmd.Context(), inputs, dst, slowdown)
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Destination video")
	cmd.Flags().IntVar(&height, "height", 0, "Target height (defaults to concat.target_height)")
	cmd.Flags().BoolVar(&slowdown, "slowdown", false, "Write every composed frame twice")
	return cmd
}
