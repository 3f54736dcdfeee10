package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"benchcat/internal/workflow"
)

func (c *commandContext) renderReport(cmd *cobra.Command, report workflow.Report) error {
	if c.jsonOutput() {
		return writeJSON(cmd, report)
	}
	out := cmd.OutOrStdout()
	if len(report.Items) > 0 {
		fmt.Fprintln(out, renderItems(report.Items))
	}
	fmt.Fprintln(out, summaryLine(report))
	if failures := report.Failures(); len(failures) > 0 {
		fmt.Fprintf(out, "Failures (%d):\n", len(failures))
		for _, it := range failures {
			fmt.Fprintf(out, "  - %s: %s\n", it.Item, it.Error)
		}
	}
	return nil
}

func renderItems(items []workflow.ItemResult) string {
	headers := []string{"Item", "Action", "Status", "Frames", "Size", "Detail"}
	rows := make([][]string, 0, len(items))
	for _, it := range items {
		rows = append(rows, []string{
			it.Item,
			it.Action,
			string(it.Status),
			framesCell(it.Frames),
			sizeCell(it.Bytes),
			itemDetail(it),
		})
	}
	return renderTable(headers, rows, []columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignLeft})
}

func framesCell(frames int) string {
	if frames == 0 {
		return ""
	}
	return strconv.Itoa(frames)
}

func sizeCell(size int64) string {
	if size <= 0 {
		return ""
	}
	return humanize.Bytes(uint64(size))
}

func itemDetail(it workflow.ItemResult) string {
	switch it.Status {
	case workflow.StatusFailed:
		return it.ErrorCode
	case workflow.StatusSkipped, workflow.StatusUnmatched:
		return it.Message
	}
	if len(it.Diagnostics) > 0 {
		return strings.Join(it.Diagnostics, "; ")
	}
	return ""
}

func summaryLine(report workflow.Report) string {
	s := report.Summary
	parts := []string{fmt.Sprintf("%d succeeded", s.Succeeded)}
	if s.Skipped > 0 {
		parts = append(parts, fmt.Sprintf("%d skipped", s.Skipped))
	}
	if s.Unmatched > 0 {
		parts = append(parts, fmt.Sprintf("%d unmatched", s.Unmatched))
	}
	parts = append(parts, fmt.Sprintf("%d failed", s.Failed))
	return fmt.Sprintf("%s: %s in %s (run %s)",
		report.Workflow, strings.Join(parts, ", "), report.Duration().Round(100*time.Millisecond), shortID(report.RunID))
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
