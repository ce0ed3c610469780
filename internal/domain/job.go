package domain

import (
	"database/sql"
	"time"
)

type JobStatus string

const (
	JobStatusQueued     JobStatus = "queued"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// Terminal reports whether the status admits no further transitions.
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// Progress milestones. Advisory only; status is the authoritative signal.
const (
	ProgressQueued            = 0
	ProgressDownloadStarted   = 10
	ProgressDownloadComplete  = 40
	ProgressTranscodeStarted  = 50
	ProgressTranscodeComplete = 90
	ProgressDone              = 100
)

// Job tracks one asynchronous pipeline invocation.
type Job struct {
	ID          string
	Status      JobStatus
	Progress    int
	CallbackURL string
	Request     AssemblyRequest
	Result      *AssemblyResult
	ErrorKind   Kind
	ErrorMsg    string
	CreatedAt   time.Time
	StartedAt   sql.NullTime
	CompletedAt sql.NullTime
}
