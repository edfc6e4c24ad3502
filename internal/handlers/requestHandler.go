package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/findrightpeople/worker/internal/adapter"
	"github.com/findrightpeople/worker/internal/adapter/utils"
	"github.com/findrightpeople/worker/internal/api"
	"github.com/findrightpeople/worker/internal/domain/jobModel"
	"github.com/findrightpeople/worker/pkg/logger_i"
)

var logRH *logger_i.Logger

func GetHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// IngestHandler accepts a signed ingest job and returns 202 immediately; the
// signature was already verified against the raw body by the middleware.
// Processing happens on the worker pool, failures past this point surface in
// logs and the job record, not to this caller.
func IngestHandler(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, api.ErrCodeInvalidRequest, "unreadable body")
		return
	}
	defer r.Body.Close()

	var requestData api.IngestRequest
	if err := json.Unmarshal(body, &requestData); err != nil {
		logRH.Warn("Bad ingest request", "error", err)
		WriteErrorResponse(w, http.StatusBadRequest, api.ErrCodeInvalidRequest, "invalid JSON")
		return
	}

	files, validationErr := validateIngestPayload(requestData)
	if validationErr != "" {
		logRH.Warn("Bad ingest request", "reason", validationErr)
		WriteErrorResponse(w, http.StatusBadRequest, api.ErrCodeInvalidRequest, validationErr)
		return
	}

	newJob := jobModel.Job{
		Id:      strings.TrimSpace(requestData.JobId),
		TraceId: traceIdFromContext(r.Context()),
		Files:   files,
		Options: adapter.ToJobOptions(requestData.Options),
	}
	if newJob.TraceId == "" {
		newJob.TraceId = utils.GetNewUUID()
	}

	logRH.Info("Ingest webhook accepted", "jobId", newJob.Id, "fileCount", len(files), "traceId", newJob.TraceId)
	CreateNewJob(newJob)
	writeJsonResponse(w, http.StatusAccepted, adapter.ToAccepted(newJob.Id))
}

// FinalizeHandler acknowledges a signed job summary from an upstream
// coordinator and logs it.
func FinalizeHandler(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, api.ErrCodeInvalidRequest, "unreadable body")
		return
	}
	defer r.Body.Close()

	var requestData api.FinalizeRequest
	if err := json.Unmarshal(body, &requestData); err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, api.ErrCodeInvalidRequest, "invalid JSON")
		return
	}
	if strings.TrimSpace(requestData.JobId) == "" {
		WriteErrorResponse(w, http.StatusBadRequest, api.ErrCodeInvalidRequest, "jobId is required")
		return
	}
	if requestData.Summary == nil {
		WriteErrorResponse(w, http.StatusBadRequest, api.ErrCodeInvalidRequest, "summary is required")
		return
	}

	logRH.Info("Ingest finalize ok", "jobId", requestData.JobId, "summary", requestData.Summary,
		"traceId", traceIdFromContext(r.Context()))
	writeJsonResponse(w, http.StatusOK, api.FinalizeAck{Status: "ok"})
}

func GetStatusHandler(w http.ResponseWriter, r *http.Request) {
	idString := utils.GetChiURLParam(r, "id")
	if idString == "" {
		WriteErrorResponse(w, http.StatusNotFound, api.ErrCodeInvalidRequest, "Job not found")
		return
	}

	result, isFound := GetJobStatus(idString, traceIdFromContext(r.Context()))
	if !isFound {
		WriteErrorResponse(w, http.StatusNotFound, api.ErrCodeInvalidRequest, "Job not found")
		return
	}

	writeJsonResponse(w, http.StatusOK, adapter.ToStatusResponse(result))
}

func validateIngestPayload(requestData api.IngestRequest) ([]jobModel.FileRef, string) {
	if strings.TrimSpace(requestData.JobId) == "" {
		return nil, "jobId is required"
	}
	if len(requestData.Files) == 0 {
		return nil, "files must be a non-empty list"
	}

	files := make([]jobModel.FileRef, 0, len(requestData.Files))
	for _, f := range requestData.Files {
		p := strings.TrimSpace(f.Path)
		if p == "" {
			return nil, "file.path must be a non-empty string"
		}
		files = append(files, jobModel.FileRef{Path: p})
	}
	return files, ""
}
