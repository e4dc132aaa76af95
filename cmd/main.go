package main

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"koatrip-agent/handler"
	"koatrip-agent/internal/integrations/genai"
	"koatrip-agent/internal/itinerary"
	"koatrip-agent/internal/logger"
	"koatrip-agent/internal/repository"
	"koatrip-agent/internal/storage"
	"koatrip-agent/internal/usecase"
)

func main() {
	// ---- Configuration (read only here) ----
	_ = godotenv.Load()

	apiKey := mustEnv("OPENAI_API_KEY")
	model := envStr("OPENAI_MODEL", "gpt-4o-mini")
	baseURL := os.Getenv("OPENAI_BASE_URL")
	addr := envStr("LISTEN_ADDR", ":8080")
	logMode := envStr("LOG_MODE", "dev")
	storageDriver := envStr("STORAGE_DRIVER", "file")
	dataDir := envStr("DATA_DIR", "./data")
	sqlitePath := envStr("SQLITE_PATH", "./data/koatrip.db")
	saveDebounceMS := envInt("SAVE_DEBOUNCE_MS", 2000)
	structuredReplies := envBool("STRUCTURED_REPLIES", false)

	log, err := logger.New(logMode)
	if err != nil {
		slog.Error("failed to create logger", "err", err)
		os.Exit(1)
	}
	defer log.Sync()

	// ---- Storage ----
	blob, err := newBlobStore(storageDriver, dataDir, sqlitePath)
	if err != nil {
		slog.Error("failed to create blob store", "err", err)
		os.Exit(1)
	}
	chatStore, err := repository.NewChatStore(blob, log)
	if err != nil {
		slog.Error("failed to create chat store", "err", err)
		os.Exit(1)
	}
	tripStore, err := repository.NewTripStore(blob, log)
	if err != nil {
		slog.Error("failed to create trip store", "err", err)
		os.Exit(1)
	}

	// ---- LLM client ----
	genaiOpts := []genai.Option{genai.WithBaseURL(baseURL)}
	if structuredReplies {
		genaiOpts = append(genaiOpts, genai.WithResponseSchema(itinerary.Schema()))
	}
	streamer, err := genai.NewClient(apiKey, model, log, genaiOpts...)
	if err != nil {
		slog.Error("failed to create genai client", "err", err)
		os.Exit(1)
	}

	// ---- Services ----
	parser := itinerary.NewParser(log)
	flow, err := usecase.NewSaveFlow(parser, tripStore, chatStore, log)
	if err != nil {
		slog.Error("failed to create save flow", "err", err)
		os.Exit(1)
	}
	session, err := usecase.NewSession(streamer, chatStore, flow, log,
		usecase.WithSaveDelay(time.Duration(saveDebounceMS)*time.Millisecond))
	if err != nil {
		slog.Error("failed to create session", "err", err)
		os.Exit(1)
	}

	// ---- HTTP ----
	h, err := handler.NewHandler(streamer, session, chatStore, tripStore, log)
	if err != nil {
		slog.Error("failed to create handler", "err", err)
		os.Exit(1)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(cors.Default())
	h.Register(engine)

	log.Info("koatrip agent listening", "addr", addr, "storage", storageDriver)
	if err := engine.Run(addr); err != nil {
		log.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

func newBlobStore(driver, dataDir, sqlitePath string) (storage.Blob, error) {
	if driver == "sqlite" {
		return storage.NewSQLiteStore(sqlitePath)
	}
	return storage.NewFileStore(dataDir)
}

func mustEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		slog.Error("required environment variable is not set", "key", key)
		os.Exit(1)
	}
	return v
}

func envStr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func envBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}
