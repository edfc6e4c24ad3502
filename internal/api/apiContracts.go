package api

import "time"

// requests---------------------

type IngestRequest struct {
	JobId   string         `json:"jobId"`
	Files   []IngestFile   `json:"files"`
	Options *IngestOptions `json:"options,omitempty"`
}

type IngestFile struct {
	Path string `json:"path"`
}

type IngestOptions struct {
	ChunkTokens   int `json:"chunkTokens,omitempty"`
	OverlapTokens int `json:"overlapTokens,omitempty"`
	MinTokens     int `json:"minTokens,omitempty"`
}

type FinalizeRequest struct {
	JobId   string      `json:"jobId"`
	Summary interface{} `json:"summary"`
}

// responses--------------------

type IngestAccepted struct {
	JobId  string `json:"jobId"`
	Status string `json:"status"`
}

type FinalizeAck struct {
	Status string `json:"status"`
}

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

const (
	ErrCodeUnauthorized   = "unauthorized"
	ErrCodeInvalidRequest = "invalid_request"
)

type JobStatusResponse struct {
	Id        string      `json:"id"`
	Status    string      `json:"status"`
	Step      string      `json:"current_step"`
	Summary   *JobSummary `json:"summary,omitempty"`
	Error     *JobError   `json:"error,omitempty"`
	StartTime time.Time   `json:"start_time"`
	EndTime   time.Time   `json:"end_time,omitempty"`
}

type JobSummary struct {
	Documents     int `json:"documents"`
	Chunks        int `json:"chunks"`
	SkippedFiles  int `json:"skipped_files"`
	FailedBatches int `json:"failed_batches"`
}

type JobError struct {
	Code    int    `json:"code" example:"400"`
	Message string `json:"message" example:"Job not found"`
	Retry   bool   `json:"can_retry" example:"false"`
}
