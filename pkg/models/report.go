package models

import (
	"time"
)

// Step names an external tool invocation
type Step string

// Step constants
const (
	StepDetect    Step = "detect"
	StepTranscode Step = "transcode"
	StepPackage   Step = "package"
	StepPublish   Step = "publish"
)

// StepResult is the outcome of a single step. A non-nil Err means the step
// failed and the run continued past it.
type StepResult struct {
	Step     Step          `json:"step"`
	Variant  *Variant      `json:"variant,omitempty"`
	Path     string        `json:"path,omitempty"`
	Duration time.Duration `json:"duration"`
	Err      error         `json:"-"`
}

// Failed reports whether the step failed
func (s StepResult) Failed() bool {
	return s.Err != nil
}

// Report collects every step of one run
type Report struct {
	RunID      string       `json:"run_id"`
	Input      string       `json:"input"`
	Range      DynamicRange `json:"range"`
	StartedAt  time.Time    `json:"started_at"`
	FinishedAt time.Time    `json:"finished_at"`
	Steps      []StepResult `json:"steps"`
	Published  int          `json:"published"`
}

// NewReport starts a report for an input
func NewReport(runID, input string) *Report {
	return &Report{
		RunID:     runID,
		Input:     input,
		Range:     RangeSDR,
		StartedAt: time.Now(),
		Steps:     make([]StepResult, 0),
	}
}

// Add appends a step result
func (r *Report) Add(res StepResult) {
	r.Steps = append(r.Steps, res)
}

// Finish stamps the end time
func (r *Report) Finish() {
	r.FinishedAt = time.Now()
}

// Count returns the number of recorded steps of a kind
func (r *Report) Count(step Step) int {
	n := 0
	for _, s := range r.Steps {
		if s.Step == step {
			n++
		}
	}
	return n
}

// Failures returns the failed steps in order
func (r *Report) Failures() []StepResult {
	var failed []StepResult
	for _, s := range r.Steps {
		if s.Failed() {
			failed = append(failed, s)
		}
	}
	return failed
}

// Succeeded reports whether every step succeeded
func (r *Report) Succeeded() bool {
	return len(r.Failures()) == 0
}

// Duration returns the wall time of the run
func (r *Report) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return time.Since(r.StartedAt)
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
