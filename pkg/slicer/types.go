package slicer

import "time"

// JobState is the lifecycle state of a slice job.
//
// At most one job may be in a non-idle state across the whole process.
type JobState string

const (
	JobStateIdle        JobState = "idle"
	JobStateAdmitted    JobState = "admitted"
	JobStateProvisioned JobState = "provisioned"
	JobStateRunning     JobState = "running"
	JobStateSucceeded   JobState = "succeeded"
	JobStateFailed      JobState = "failed"
	JobStateTimedOut    JobState = "timed_out"
)

// Job is the ephemeral record of the currently admitted slice job. It is
// never persisted or queued; its fields are cleared when the job ends.
type Job struct {
	ID      string
	Model   string
	Started time.Time
	State   JobState
}

// Status is the observational snapshot returned to status queries.
type Status struct {
	Busy    bool      `json:"busy"`
	Model   string    `json:"model,omitempty"`
	Started time.Time `json:"started,omitzero"`
}

// Request describes one slice submission.
type Request struct {
	// ModelName is the uploaded model's original filename. Its extension
	// must be .stl or .3mf.
	ModelName string

	// Model is the uploaded model content.
	Model []byte

	// Printer, Process and Filament name stored profiles. All three must
	// exist before a job is admitted.
	Printer  string
	Process  string
	Filament string

	// Orient asks the engine to auto-orient the model.
	Orient bool

	// BedType selects a build plate by its exact engine name. Values
	// outside the accepted set are silently omitted from the invocation.
	BedType string
}

// Result is a completed slice's artifact plus diagnostics.
type Result struct {
	// GCodeName is the produced machine-instruction file's name.
	GCodeName string

	// GCode is the full artifact content.
	GCode []byte

	// Elapsed is the wall-clock duration from admission to completion.
	Elapsed time.Duration

	// StdoutExcerpt is at most 500 characters of engine stdout with
	// newlines flattened, suitable for a response header.
	StdoutExcerpt string
}
