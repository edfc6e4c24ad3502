package handlers

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/findrightpeople/worker/internal/config"
	"github.com/findrightpeople/worker/internal/domain/jobModel"
	"github.com/findrightpeople/worker/internal/job"
	"github.com/findrightpeople/worker/internal/metrics"
	"github.com/findrightpeople/worker/pkg/logger_i"
)

var (
	handlerInstance *JobHandler //private singleton
	once            sync.Once
	logJH           *logger_i.Logger
)

type JobHandler struct {
	service *job.Service
}

func InitJobHandler(jobService *job.Service) {
	once.Do(func() {
		handlerInstance = &JobHandler{service: jobService}

		logJH = logger_i.NewLogger("JobHandler")
		logRH = logger_i.NewLogger("RequestHandler")
		logJH.Info("Starting job handler")
	})

}

func CreateNewJob(newJob jobModel.Job) {
	logJH.Info("Queueing ingest job", "traceId", newJob.TraceId, "jobId", newJob.Id, "fileCount", len(newJob.Files))
	handlerInstance.pushToJobChannel(newJob)
}

func GetJobStatus(id string, traceId string) (result jobModel.Job, isFound bool) {
	ctxC := context.WithValue(context.Background(), config.TRACE_ID_KEY, traceId)
	if handlerInstance != nil {
		return handlerInstance.service.JobStore.GetJob(ctxC, id)
	}
	return result, false
}

// private methods
func (h *JobHandler) pushToJobChannel(newJob jobModel.Job) {

	newJob.CreatedTime = time.Now()
	newJob.Status = jobModel.JobStatusQueued
	newJob.CurrentStep = jobModel.IngestAccepted

	//metrics
	metrics.IncrementJobsInQueue()

	h.service.JobChannel <- newJob //blocking send so a flood backs up at the endpoint instead of in memory
	logJH.Info("Created new job", "jobId", newJob.Id)

	// Ingestion involves batch embedding calls that can take a while, so
	// every ingest job asks the dispatcher for a worker. Idle workers
	// retire on their own.
	atomic.AddInt64(&h.service.RequestCount, 1)
	metrics.StartDispatcherSignalCount() //metrics
	h.service.DispatcherChannel <- true
}
