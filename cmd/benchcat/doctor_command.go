package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"benchcat/internal/deps"
	"benchcat/internal/preflight"
)

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check external tools and configured directories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := cfg.EnsureStateDir(); err != nil {
				return err
			}

			headers := []string{"Check", "Status", "Detail"}
			var rows [][]string
			healthy := true

			for _, status := range preflight.CheckSystemDeps(cfg) {
				detail := status.Detail
				if status.Available {
					if version, err := deps.Version(cmd.Context(), status.Command); err == nil {
						detail = version
					} else {
						detail = status.Command
					}
				} else if !status.Optional {
					healthy = false
				}
				rows = append(rows, []string{status.Name, statusLabel(status.Available, status.Optional), detail})
			}

			checks := preflight.RunAll(cmd.Context(), cfg)
			checks = append(checks, preflight.CheckEncoders(cmd.Context(), cfg)...)
			for _, check := range checks {
				rows = append(rows, []string{check.Name, statusLabel(check.Passed, check.Optional), check.Detail})
			}
			if !preflight.AllPassed(checks) {
				healthy = false
			}

			fmt.Fprintln(cmd.OutOrStdout(), renderTable(headers, rows, nil))
			if !healthy {
				return errors.New("doctor found problems")
			}
			return nil
		},
	}
}

func statusLabel(ok, optional bool) string {
	switch {
	case ok:
		return "ok"
	case optional:
		return "warn"
	default:
		return "FAIL"
	}
}
