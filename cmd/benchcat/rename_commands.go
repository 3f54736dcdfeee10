package main

import (
	"github.com/spf13/cobra"

	"benchcat/internal/workflow"
)

func newRenameCommand(ctx *commandContext) *cobra.Command {
	renameCmd := &cobra.Command{
		Use:   "rename",
		Short: "Normalize raw method output names",
	}
	renameCmd.AddCommand(&cobra.Command{
		Use:   "dl3dv [dir]",
		Short: "Rename DL3DV outputs to GroundTruth/GWTF/Ours/Warped",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _ := ctx.ensureConfig()
			root := datasetDir(args, 0, cfg.Paths.DL3DVDir, "DL3DV")
			return ctx.runWorkflow(cmd, func(r *workflow.Runner) (workflow.Report, error) {
				return r.RenameDL3DV(cmd.Context(), root)
			})
		},
	})
	renameCmd.AddCommand(&cobra.Command{
		Use:   "mcbench [dir]",
		Short: "Replace MC-Bench *.mp4 directories with the video they contain",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _ := ctx.ensureConfig()
			root := datasetDir(args, 0, cfg.Paths.MCBenchDir, "MC-Bench")
			return ctx.runWorkflow(cmd, func(r *workflow.Runner) (workflow.Report, error) {
				return r.FlattenMCBench(cmd.Context(), root)
			})
		},
	})
	return renameCmd
}
