package workflow

import "time"

// Status is the outcome of one report item.
type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusSkipped   Status = "skipped"
	StatusFailed    Status = "failed"
	// StatusUnmatched marks clips the pair matcher could not place.
	StatusUnmatched Status = "unmatched"
)

// Workflow names recorded on reports.
const (
	NameRenameDL3DV    = "rename-dl3dv"
	NameFlattenMCBench = "rename-mcbench"
	NameCropMotionPro  = "crop-motionpro"
	NameCropFile       = "crop-file"
	NameConcatMCBench  = "concat-mcbench"
	NameConcatDL3DV    = "concat-dl3dv"
	NameConcatUser     = "concat-user"
	NameConcatFiles    = "concat-files"
	NameReencode       = "reencode"
)

// ItemResult records one unit of work.
type ItemResult struct {
	Item        string   `json:"item"`
	Action      string   `json:"action"`
	Status      Status   `json:"status"`
	Sources     []string `json:"sources,omitempty"`
	Output      string   `json:"output,omitempty"`
	Frames      int      `json:"frames,omitempty"`
	Width       int      `json:"width,omitempty"`
	Height      int      `json:"height,omitempty"`
	Bytes       int64    `json:"bytes,omitempty"`
	Message     string   `json:"message,omitempty"`
	ErrorCode   string   `json:"error_code,omitempty"`
	Error       string   `json:"error,omitempty"`
	Diagnostics []string `json:"diagnostics,omitempty"`
}

// Summary counts items per status.
type Summary struct {
	Succeeded int `json:"succeeded"`
	Skipped   int `json:"skipped"`
	Failed    int `json:"failed"`
	Unmatched int `json:"unmatched"`
}

// Total is the number of counted items.
func (s Summary) Total() int {
	return s.Succeeded + s.Skipped + s.Failed + s.Unmatched
}

// Report is the ordered outcome log of one workflow run.
type Report struct {
	RunID      string       `json:"run_id"`
	Workflow   string       `json:"workflow"`
	Roots      []string     `json:"roots"`
	StartedAt  time.Time    `json:"started_at"`
	FinishedAt time.Time    `json:"finished_at"`
	Summary    Summary      `json:"summary"`
	Items      []ItemResult `json:"items"`
}

func (r *Report) add(item ItemResult) {
	r.Items = append(r.Items, item)
}

// Finalize normalizes timestamps to UTC and recomputes the summary from the
// items. Item order is processing order and is left untouched.
func (r *Report) Finalize() {
	r.StartedAt = r.StartedAt.UTC()
	r.FinishedAt = r.FinishedAt.UTC()
	var s Summary
	for _, it := range r.Items {
		switch it.Status {
		case StatusSucceeded:
			s.Succeeded++
		case StatusSkipped:
			s.Skipped++
		case StatusFailed:
			s.Failed++
		case StatusUnmatched:
			s.Unmatched++
		}
	}
	r.Summary = s
}

// Failures returns the failed items in order.
func (r Report) Failures() []ItemResult {
	var out []ItemResult
	for _, it := range r.Items {
		if it.Status == StatusFailed {
			out = append(out, it)
		}
	}
	return out
}

// OK reports whether no item failed.
func (r Report) OK() bool {
	return r.Summary.Failed == 0
}

// FramesWritten sums frames over all items.
func (r Report) FramesWritten() int {
	total := 0
	for _, it := range r.Items {
		total += it.Frames
	}
	return total
}

// Duration is the wall time of the run.
func (r Report) Duration() time.Duration {
	if r.FinishedAt.Before(r.StartedAt) {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
