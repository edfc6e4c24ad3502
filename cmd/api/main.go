package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/findrightpeople/worker/internal/config"
	"github.com/findrightpeople/worker/internal/data/store"
	jobmodel "github.com/findrightpeople/worker/internal/domain/jobModel"
	"github.com/findrightpeople/worker/internal/embedding"
	"github.com/findrightpeople/worker/internal/embedding/googleEmbedding"
	"github.com/findrightpeople/worker/internal/embedding/openaiEmbedding"
	"github.com/findrightpeople/worker/internal/extract"
	"github.com/findrightpeople/worker/internal/graphdb/neo4jDB"
	"github.com/findrightpeople/worker/internal/handlers"
	"github.com/findrightpeople/worker/internal/ingest"
	"github.com/findrightpeople/worker/internal/job"
	"github.com/findrightpeople/worker/internal/server"
	"github.com/findrightpeople/worker/internal/worker"
	"github.com/findrightpeople/worker/pkg/logger_i"
)

var (
	listenAddr        string
	requestCount      int64
	stopWorkerChannel chan bool
	workerWaitGroup   sync.WaitGroup
)

func main() {

	logger_i.Init()
	var logger = logger_i.NewLogger("main")

	//config
	flag.StringVar(&listenAddr, "listen-addr", config.ServerListenAddr, "server listen address")
	flag.Parse()

	// Every inbound webhook is HMAC checked, a missing secret would let the
	// server run while rejecting every request.
	if config.SigningSecret() == "" {
		logger.Error("WORKER_SIGNING_SECRET is not set. Shutting down.")
		os.Exit(1)
	}

	//init buffered job channel
	jobChannel := make(chan jobmodel.Job, config.BufferLimit)
	dispatcherChannel := make(chan bool, 1)
	stopWorkerChannel = make(chan bool, 1)

	serviceContext, closeExternalServices := context.WithCancel(context.Background())
	defer closeExternalServices()

	//init job service and job store
	serviceConfig := job.ServiceConfig{
		JobChannel:        jobChannel,
		RequestCount:      requestCount,
		DispatcherChannel: dispatcherChannel,
	}
	logger.Info("Starting job service")

	if redisJobStore := store.GetRedisJobStore(serviceContext); redisJobStore != nil {
		serviceConfig.JobStore = redisJobStore
	} else {
		logger.Error("Redis job store is offline, falling back to in-memory store")
		serviceConfig.JobStore = store.InitInMemoryJobStore()
	}
	service := job.InitJobService(serviceConfig)

	reader, err := ingest.NewLocalReader(config.LocalDataDir())
	if err != nil {
		logger.Error("Local data directory is unusable. Shutting down.", "dir", config.LocalDataDir(), "error", err)
		os.Exit(1)
	}

	graphDB, err := neo4jDB.NewClient(serviceContext)
	if err != nil {
		logger.Error("Neo4j is unreachable. Shutting down.", "error", err)
		os.Exit(1)
	}
	if err := graphDB.EnsureSchema(serviceContext); err != nil {
		logger.Error("Could not ensure graph schema. Shutting down.", "error", err)
		os.Exit(1)
	}

	embeddingService := selectEmbedder(serviceContext)
	if embeddingService == nil {
		logger.Error("Embedding service failed to initialize. Shutting down.", "provider", config.EmbedProvider())
		os.Exit(1)
	}

	logger.Info("Capabilities",
		"dataDir", config.LocalDataDir(),
		"extensions", reader.SupportedExtensions(),
		"embedProvider", config.EmbedProvider(),
		"batchSize", config.EmbedBatchSize)

	ingestService := ingest.NewService(reader, extract.NewNaivePersons(), embeddingService, graphDB)

	handlers.InitJobHandler(service)

	//init worker pool
	worker.InitServices(service, ingestService)
	worker.InitWorkerPool(stopWorkerChannel, &workerWaitGroup)

	//server handling
	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)
	stopExecution := make(chan bool, 1)

	shutdownParams := server.ShutdownParams{
		GracefulShutdown: gracefulShutdown,
		StopExecution:    stopExecution,
		WorkerStop:       stopWorkerChannel,
		Group:            &workerWaitGroup,
		CloseServices:    closeExternalServices,
	}
	go server.ShutDownHandler(shutdownParams)
	go server.CreateServer(listenAddr)

	<-stopExecution
	_ = graphDB.Close(context.Background())
	logger.Info("Server stopped")
}

func selectEmbedder(ctx context.Context) embedding.Embedder {
	switch config.EmbedProvider() {
	case config.EmbedProviderGoogle:
		return googleEmbedding.GetGoogleEmbeddingClient(ctx, config.GoogleEmbedModelDefault, config.GoogleAPIKey())
	default:
		return openaiEmbedding.GetOpenAIEmbeddingClient(ctx, config.OpenAIEmbedModel(), config.OpenAIAPIKey())
	}
}
