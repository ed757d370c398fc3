package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"zote/internal/auth"
	"zote/internal/config"
	"zote/internal/domain/repositories"
	repo "zote/internal/domain/repositories/filetree"
	"zote/internal/handler"
	"zote/internal/middleware"
	"zote/internal/repository/memory"
	"zote/internal/repository/postgres"
	postgresFiletree "zote/internal/repository/postgres/filetree"
	serviceFiletree "zote/internal/service/filetree"

	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	cfg := config.Load()

	logOutput, closeLog, err := config.LogWriter(cfg)
	if err != nil {
		log.Fatalf("Failed to set up log file: %v", err)
	}
	defer closeLog()

	logger := config.NewLogger(cfg, logOutput)
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"table_prefix", cfg.TablePrefix,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Storage: postgres when configured, in-memory only in dev
	var (
		nodeRepo  repo.NodeRepository
		txManager repositories.TransactionManager
	)
	if cfg.DatabaseURL != "" {
		pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to create connection pool: %v", err)
		}
		defer pool.Close()

		logger.Info("database connected",
			"max_conns", postgres.MaxConns,
			"min_conns", postgres.MinConns,
		)

		tables := postgres.NewTableNames(cfg.TablePrefix)
		if err := postgres.EnsureSchema(ctx, pool, tables); err != nil {
			log.Fatalf("Failed to ensure schema: %v", err)
		}

		repoConfig := &postgres.RepositoryConfig{
			Pool:   pool,
			Tables: tables,
			Logger: logger,
		}
		nodeRepo = postgresFiletree.NewNodeRepository(repoConfig)
		txManager = postgres.NewTransactionManager(pool, logger)
	} else {
		if !cfg.IsDev() {
			log.Fatalf("DATABASE_URL is required outside dev")
		}
		memRepo := memory.NewNodeRepository()
		nodeRepo = memRepo
		txManager = memory.NewTransactionManager(memRepo)
		logger.Warn("DATABASE_URL not set, using in-memory storage (data is lost on restart)")
	}

	treeService := serviceFiletree.NewTreeService(nodeRepo, logger)
	nodeService := serviceFiletree.NewNodeService(nodeRepo, txManager, logger)

	treeHandler := handler.NewTreeHandler(treeService, logger)
	nodeHandler := handler.NewNodeHandler(nodeService, logger)

	logger.Info("services initialized")

	// Create HTTP router (Go 1.22+ enhanced patterns)
	mux := http.NewServeMux()
	handler.Register(mux, treeHandler, nodeHandler)

	// Auth: JWKS verification, or a fixed dev user when no JWKS is configured
	var authMiddleware func(http.Handler) http.Handler
	if cfg.JWKSURL != "" {
		jwtVerifier, err := auth.NewJWTVerifier(ctx, cfg.JWKSURL, logger)
		if err != nil {
			log.Fatalf("Failed to create JWT verifier: %v", err)
		}
		defer jwtVerifier.Close()
		authMiddleware = middleware.AuthMiddleware(jwtVerifier)
	} else {
		if !cfg.IsDev() {
			log.Fatalf("JWKS_URL is required outside dev")
		}
		logger.Warn("DEBUG MODE: JWKS_URL not set, every request runs as the dev user (NEVER use in production!)",
			"user_id", cfg.DevUserID,
		)
		authMiddleware = middleware.DevAuthMiddleware(cfg.DevUserID)
	}

	// Apply middleware in reverse order (they wrap each other)
	// Order: CORS → RequestLog → Recovery → Auth → Routes
	var h http.Handler = mux
	h = authMiddleware(h)
	h = middleware.Recovery(logger)(h)
	h = middleware.RequestLog(logger)(h)

	// CORS - Must be before auth to handle OPTIONS pre-flight requests
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
	})
	h = corsHandler.Handler(h)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
}
