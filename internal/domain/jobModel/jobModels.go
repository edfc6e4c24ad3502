package jobModel

import (
	"context"
	"time"
)

type JobStatus string
type InternalStatus string

const (
	JobStatusQueued   JobStatus = "QUEUED"
	JobStatusRunning  JobStatus = "RUNNING"
	JobStatusComplete JobStatus = "COMPLETE"
	JobStatusError    JobStatus = "Error"

	IngestAccepted  InternalStatus = "Accepted"
	IngestFiles     InternalStatus = "PerFileProcessing"
	IngestBatches   InternalStatus = "PerChunkBatchProcessing"
	IngestFinalized InternalStatus = "DocumentFinalized"
	Error           InternalStatus = "Error"
)

// FileRef is one entry of the ingest payload, a path relative to the
// worker's local data directory.
type FileRef struct {
	Path string `json:"path"`
}

// ChunkOptions carries the caller-supplied chunking overrides. Zero values
// fall back to the configured defaults.
type ChunkOptions struct {
	ChunkTokens   int `json:"chunkTokens,omitempty"`
	OverlapTokens int `json:"overlapTokens,omitempty"`
	MinTokens     int `json:"minTokens,omitempty"`
}

// Summary is the terminal record of one ingest run. SkippedFiles and
// FailedBatches count work the run dropped, not rolled back - committed
// upserts stay committed.
type Summary struct {
	Documents     int `json:"documents"`
	Chunks        int `json:"chunks"`
	SkippedFiles  int `json:"skipped_files"`
	FailedBatches int `json:"failed_batches"`
}

type Job struct {
	Id          string         `json:"id"`
	TraceId     string         `json:"trace_id"`
	Files       []FileRef      `json:"files"`
	Options     ChunkOptions   `json:"options"`
	Summary     Summary        `json:"summary"`
	Error       JobError       `json:"error,omitempty"`
	CreatedTime time.Time      `json:"created_time"`
	EndTime     time.Time      `json:"end_time,omitempty"`
	Status      JobStatus      `json:"status"`
	CurrentStep InternalStatus `json:"current_step"`
}

type JobError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Retry   bool   `json:"retry"`
}

type JobStore interface {
	GetJob(ctx context.Context, jobId string) (Job, bool)
	SaveJob(ctx context.Context, job Job) error
	DeleteJob(ctx context.Context, jobID string)
}
