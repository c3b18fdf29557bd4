package server

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/lumina-ai/lumina/config"
	"github.com/lumina-ai/lumina/internal/chat"
	"github.com/lumina-ai/lumina/internal/chunker"
	"github.com/lumina-ai/lumina/internal/embedding"
	"github.com/lumina-ai/lumina/internal/ingest"
	"github.com/lumina-ai/lumina/internal/retrieve"
	"github.com/lumina-ai/lumina/internal/store"
	"github.com/lumina-ai/lumina/internal/vectorstore"
	"github.com/lumina-ai/lumina/internal/vectorstore/memory"
	"github.com/lumina-ai/lumina/internal/vectorstore/pinecone"
	"github.com/lumina-ai/lumina/provider"
	"github.com/lumina-ai/lumina/tools/web_fetch"
)

// response is the envelope every API handler returns.
type response struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

func ok(c echo.Context, data interface{}, message string) error {
	return c.JSON(http.StatusOK, response{Success: true, Message: message, Data: data})
}

func created(c echo.Context, data interface{}, message string) error {
	return c.JSON(http.StatusCreated, response{Success: true, Message: message, Data: data})
}

func health(c echo.Context) error {
	return ok(c, map[string]string{"status": "healthy", "service": "lumina-sales-agent"}, "Service is running normally")
}

// Run wires the full service and blocks serving HTTP on cfg.General.Listen.
func Run(cfg *config.Config) error {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	baseLogger := log.New(log.Writer(), "[HTTP] ", log.LstdFlags)
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		code := http.StatusInternalServerError
		msg := err.Error()
		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
			if he.Message != nil {
				msg = fmt.Sprint(he.Message)
			}
		}
		req := c.Request()
		baseLogger.Printf("%d %s %s from %s: %v", code, req.Method, req.URL.Path, c.RealIP(), err)
		if !c.Response().Committed {
			_ = c.JSON(code, response{Success: false, Message: msg})
		}
	}
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Content-Type"},
	}))

	e.GET("/healthz", health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	ctx := context.Background()

	if err := Migrate("file://migrations", cfg.Storage.Postgres.DSN(), "up", 0); err != nil {
		baseLogger.Printf("migrations not applied: %v", err)
	}

	st, err := store.NewWithDSN(ctx, cfg.Storage.Postgres.DSN())
	if err != nil {
		return fmt.Errorf("connecting to postgres: %w", err)
	}

	llm, err := provider.NewProvider(cfg.LLM)
	if err != nil {
		return err
	}
	embedder, err := embedding.New(llm, cfg.LLM.EmbeddingDimensions)
	if err != nil {
		return err
	}

	vectors, err := buildVectorStore(cfg.Vector)
	if err != nil {
		return err
	}

	fetcher, err := web_fetch.NewFetcher(web_fetch.ChromedpFetcherType, cfg.Fetch.Timeout, cfg.Fetch.UserAgent)
	if err != nil {
		return err
	}
	splitter := chunker.New(cfg.Chunking.MaxSize, cfg.Chunking.Overlap)
	pipeline, err := ingest.NewPipeline(fetcher, splitter, embedder, vectors,
		log.New(log.Writer(), "[INGEST] ", log.LstdFlags))
	if err != nil {
		return err
	}

	retriever := retrieve.New(embedder, vectors, cfg.Retrieval.TopK)
	orch, err := chat.NewOrchestrator(st, retriever, llm, cfg.Chat.HistoryWindow,
		log.New(log.Writer(), "[CHAT] ", log.LstdFlags))
	if err != nil {
		return err
	}

	api := e.Group("/api")
	api.GET("/health", health)
	NewChatHandler(orch).Register(api)
	NewIngestHandler(pipeline, st).Register(api)
	NewLeadsHandler(st).Register(api)
	NewIndexHandler(vectors).Register(api)

	if cfg.Scheduler.Enabled {
		var rdb *redis.Client
		if addr := cfg.Storage.Redis.Addr(); addr != "" {
			rdb = redis.NewClient(&redis.Options{
				Addr:     addr,
				Password: cfg.Storage.Redis.Password,
				DB:       cfg.Storage.Redis.DB,
			})
		}
		sched := &Scheduler{
			Store:    st,
			Pipeline: pipeline,
			Rdb:      rdb,
			Interval: cfg.Scheduler.Interval,
			Stop:     make(chan struct{}),
			Logger:   log.New(log.Writer(), "[SCHED] ", log.LstdFlags),
		}
		sched.Start()
		defer close(sched.Stop)
	}

	return e.Start(cfg.General.Listen)
}

func buildVectorStore(cfg config.VectorConfig) (vectorstore.Store, error) {
	switch cfg.Backend {
	case "memory":
		return memory.NewStore()
	case "pinecone":
		return pinecone.NewStore(pinecone.Config{
			Host:    cfg.Pinecone.Host,
			APIKey:  cfg.Pinecone.APIKey,
			Timeout: cfg.Pinecone.Timeout,
		}), nil
	default:
		return nil, fmt.Errorf("unknown vector backend %q", cfg.Backend)
	}
}
