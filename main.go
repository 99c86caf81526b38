package main

import (
	"encoding/json"
	stdlog "log"
	"net/http"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/username/mpesaviz/backend/src/config"
	"github.com/username/mpesaviz/backend/src/database"
	"github.com/username/mpesaviz/backend/src/extractor"
	"github.com/username/mpesaviz/backend/src/handlers"
	"github.com/username/mpesaviz/backend/src/ledger"
	"github.com/username/mpesaviz/backend/src/logger"
	"github.com/username/mpesaviz/backend/src/services"
	"golang.org/x/time/rate"
)

var limiter = rate.NewLimiter(rate.Every(100*time.Millisecond), 30)

func rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Allow() {
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
			logger.L.Warn("Rate limit exceeded",
				"method", r.Method,
				"path", r.URL.Path,
				"remoteAddr", r.RemoteAddr)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		allowedOrigins := map[string]bool{
			"http://localhost:3000": true,
			"http://localhost:5173": true,
		}

		if allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE")
			w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Accept-Encoding, Authorization, X-Requested-With, If-None-Match")
			w.Header().Set("Access-Control-Expose-Headers", "ETag")
		} else if origin == "" {
			w.Header().Set("Access-Control-Allow-Origin", "*")
		}

		if r.Method == "OPTIONS" {
			logger.L.Debug("Handling OPTIONS preflight request", "path", r.URL.Path, "origin", origin)
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func main() {
	config.LoadConfig()
	logger.InitLogger(config.Cfg.LogLevel)
	logger.L.Info("M-Pesa Viz backend server starting...")

	logger.L.Info("Initializing database...", "path", config.Cfg.DatabasePath)
	database.InitDB(config.Cfg.DatabasePath)
	statementStore := database.NewStatementStore(database.DB)
	logger.L.Info("Database initialized successfully.")

	logger.L.Info("Initializing analytics cache...")
	analyticsCache := cache.New(services.DefaultCacheExpiration, services.CacheCleanupInterval)

	logger.L.Info("Initializing services and handlers...")
	builder := ledger.NewBuilder(config.Cfg.SummaryTolerance)
	statementService := services.NewStatementService(builder, analyticsCache)
	extractorClient := extractor.NewClient(config.Cfg.ExtractorURL, config.Cfg.ExtractorRequestTimeout)
	coordinator := services.NewCoordinator(
		extractorClient,
		statementService,
		statementStore,
		config.Cfg.StatementSlot,
		config.Cfg.JobWaitTimeout,
		config.Cfg.JobRetention,
	)

	uploadHandler := handlers.NewUploadHandler(coordinator)
	callbackHandler := handlers.NewCallbackHandler(coordinator)
	jobHandler := handlers.NewJobHandler(coordinator)
	statementHandler := handlers.NewStatementHandler(statementStore, statementService)
	exportHandler := handlers.NewExportHandler(statementStore)

	logger.L.Info("Configuring routes...")
	rootMux := http.NewServeMux()
	apiRouter := http.NewServeMux()

	apiRouter.HandleFunc("POST /api/upload", uploadHandler.HandleUpload)
	apiRouter.HandleFunc("POST /api/extractor/events", callbackHandler.HandleEvent)

	apiRouter.HandleFunc("GET /api/jobs/{token}", jobHandler.HandleGetJob)
	apiRouter.HandleFunc("GET /api/jobs/{token}/result", jobHandler.HandleGetJobResult)
	apiRouter.HandleFunc("DELETE /api/jobs/{token}", jobHandler.HandleReleaseJob)

	apiRouter.HandleFunc("GET /api/statement", statementHandler.HandleGetStatement)
	apiRouter.HandleFunc("GET /api/statement/summary", statementHandler.HandleGetSummary)
	apiRouter.HandleFunc("GET /api/statement/transactions", statementHandler.HandleGetTransactions)
	apiRouter.HandleFunc("GET /api/statement/overview", statementHandler.HandleGetOverview)
	apiRouter.HandleFunc("GET /api/statement/fees", statementHandler.HandleGetFees)
	apiRouter.HandleFunc("GET /api/statement/trends", statementHandler.HandleGetTrends)
	apiRouter.HandleFunc("GET /api/statement/recipients", statementHandler.HandleGetRecipients)
	apiRouter.HandleFunc("GET /api/statement/recurring", statementHandler.HandleGetRecurring)
	apiRouter.HandleFunc("DELETE /api/statement", statementHandler.HandleDeleteStatement)

	apiRouter.HandleFunc("GET /api/export/csv", exportHandler.HandleExportCSV)
	apiRouter.HandleFunc("GET /api/export/json", exportHandler.HandleExportJSON)

	rootMux.Handle("/api/", apiRouter)

	rootMux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" && r.Method == http.MethodGet {
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]string{"message": "M-Pesa Viz backend is running"})
		} else {
			if !strings.HasPrefix(r.URL.Path, "/api/") {
				logger.L.Warn("Root level path not found", "method", r.Method, "path", r.URL.Path)
				http.NotFound(w, r)
			}
		}
	})

	logger.L.Info("Applying global middleware...")
	finalHandler := enableCORS(rateLimitMiddleware(rootMux))

	serverAddr := ":" + config.Cfg.Port
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      finalHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second, // result long-polls hold the response open
		IdleTimeout:  60 * time.Second,
	}

	logger.L.Info("Server starting", "address", serverAddr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.L.Error("Failed to start server", "error", err)
		stdlog.Fatalf("Failed to start server: %v", err)
	} else if err == http.ErrServerClosed {
		logger.L.Info("Server stopped gracefully.")
	}
}
