package main

import (
	"github.com/spf13/cobra"

	"benchcat/internal/workflow"
)

func newReencodeCommand(ctx *commandContext) *cobra.Command {
	var overwrite bool
	cmd := &cobra.Command{
		Use:   "reencode [root]",
		Short: "Re-encode every *concatenated.mp4 below root as H.264 for browsers",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _ := ctx.ensureConfig()
			root := datasetDir(args, 0, cfg.Paths.ReencodeRoot, ".")
			return ctx.runWorkflow(cmd, func(r *workflow.Runner) (workflow.Report, error) {
				if overwrite {
					r.Settings.Overwrite = true
				}
				return r.Reencode(cmd.Context(), root)
			})
		},
	}
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace existing *_fixed.mp4 outputs")
	return cmd
}
