package adapter

import (
	"github.com/findrightpeople/worker/internal/api"
	"github.com/findrightpeople/worker/internal/domain/jobModel"
)

func ToAccepted(jobId string) api.IngestAccepted {
	return api.IngestAccepted{
		JobId:  jobId,
		Status: "processing",
	}
}

func ToStatusResponse(job jobModel.Job) api.JobStatusResponse {

	var errorPtr *api.JobError
	if job.Error.Message != "" || job.Error.Code != 0 {
		errorPtr = &api.JobError{
			Code:    job.Error.Code,
			Message: job.Error.Message,
			Retry:   job.Error.Retry,
		}
	}

	var summaryPtr *api.JobSummary
	if job.Status == jobModel.JobStatusComplete || job.Status == jobModel.JobStatusError {
		summaryPtr = &api.JobSummary{
			Documents:     job.Summary.Documents,
			Chunks:        job.Summary.Chunks,
			SkippedFiles:  job.Summary.SkippedFiles,
			FailedBatches: job.Summary.FailedBatches,
		}
	}

	return api.JobStatusResponse{
		Id:        job.Id,
		Status:    string(job.Status),
		Step:      string(job.CurrentStep),
		Summary:   summaryPtr,
		Error:     errorPtr,
		StartTime: job.CreatedTime,
		EndTime:   job.EndTime,
	}
}

func ToJobOptions(opts *api.IngestOptions) jobModel.ChunkOptions {
	if opts == nil {
		return jobModel.ChunkOptions{}
	}
	return jobModel.ChunkOptions{
		ChunkTokens:   opts.ChunkTokens,
		OverlapTokens: opts.OverlapTokens,
		MinTokens:     opts.MinTokens,
	}
}
