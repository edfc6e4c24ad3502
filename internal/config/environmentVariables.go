package config

import (
	"log/slog"
	"os"
	"time"
)

const (
	IS_PROD        = false
	LOG_LEVEL_PROD = slog.LevelInfo
	TRACE_ID_KEY   = "traceId"

	RATE_LIMIT_PER_SECOND       = 2
	BURST_RATE_LIMIT_PER_SECOND = 5

	//webhook signing
	//signature = hex(HMAC-SHA256(secret, "{timestamp}." + rawBody))
	SignatureSkewSeconds int64 = 300 // +/- 5 minutes of clock drift tolerated

	//chunking defaults - tokens are approximated as chars/4
	DefaultChunkTokens   = 600
	DefaultOverlapTokens = 80
	DefaultMinTokens     = 80
	TokenCharRatio       = 4

	//embeddings
	EmbedBatchSize                  = 64
	OpenAIEmbedModelDefault         = "text-embedding-3-small"
	GoogleEmbedModelDefault         = "gemini-embedding-001"
	EmbeddingOutputDimensions int32 = 1536
	EmbedProviderOpenAI             = "openai"
	EmbedProviderGoogle             = "google"

	MaxWorkerCount    int64 = 10
	MinWorkerCount    int64 = 1
	IdleWorkerTimeout       = 1 * time.Minute

	//serverTimeouts
	ReadTimeout            = 5 * time.Second
	WriteTimeout           = 10 * time.Second
	IdleTimeout            = 120 * time.Second
	ShutdownContextTimeout = 10 * time.Second

	//server listening port
	ServerListenAddr = ":3000"

	//job requests buffer limit
	BufferLimit = 100

	//graph store
	Neo4jDatabase         = "neo4j"
	Neo4jConnectTimeout   = 10 * time.Second
	BackfillPageSizeLimit = 500

	//local dataset
	DefaultLocalDataDir = "Test Data"

	//redis
	redisHost     = "127.0.0.1"
	redisPort     = "6379"
	RedisAddr     = redisHost + ":" + redisPort
	RedisPassword = ""

	//redis has 16 DB we can use
	RedisJobStore = 0

	//redis timeouts
	RedisJobStoreTTL = 24 * time.Hour
)

// Secrets and endpoints come from the environment, the constants above are
// compile-time tuning. An empty return means the variable is unset.

func SigningSecret() string {
	return os.Getenv("WORKER_SIGNING_SECRET")
}

func LocalDataDir() string {
	if dir := os.Getenv("WORKER_LOCAL_DATA_DIR"); dir != "" {
		return dir
	}
	return DefaultLocalDataDir
}

func Neo4jURI() string {
	return os.Getenv("NEO4J_URI")
}

func Neo4jUser() string {
	if u := os.Getenv("NEO4J_USERNAME"); u != "" {
		return u
	}
	return os.Getenv("NEO4J_USER")
}

func Neo4jPassword() string {
	return os.Getenv("NEO4J_PASSWORD")
}

func EmbedProvider() string {
	if p := os.Getenv("EMBED_PROVIDER"); p != "" {
		return p
	}
	return EmbedProviderOpenAI
}

func OpenAIAPIKey() string {
	return os.Getenv("OPENAI_API_KEY")
}

func OpenAIEmbedModel() string {
	if m := os.Getenv("OPENAI_EMBED_MODEL"); m != "" {
		return m
	}
	return OpenAIEmbedModelDefault
}

func GoogleAPIKey() string {
	return os.Getenv("GOOGLE_API_KEY")
}
