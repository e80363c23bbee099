package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"expensetracker/backend/internal/api/handlers"
	"expensetracker/backend/internal/api/middleware"
	"expensetracker/backend/internal/category"
	"expensetracker/backend/internal/expense"
	"expensetracker/backend/internal/gcs"
	"expensetracker/backend/internal/logger"
	"expensetracker/backend/internal/pipeline"
	"expensetracker/backend/internal/store/mongo"
)

func main() {
	// Parse command-line flags
	var (
		port     = flag.String("port", "8080", "HTTP server port")
		bucket   = flag.String("bucket", os.Getenv("GCS_BUCKET"), "GCS bucket holding uploaded statements (or set GCS_BUCKET env)")
		mongoURI = flag.String("mongo-uri", envOr("MONGODB_URI", "mongodb://localhost:27017"), "MongoDB connection URI (or set MONGODB_URI env)")
		dbName   = flag.String("db", envOr("MONGODB_DB", "transaction_db"), "MongoDB database name (or set MONGODB_DB env)")
	)
	flag.Parse()

	// Initialize logger
	log := logger.New()

	ctx := context.Background()

	// Connect to MongoDB
	db, err := mongo.Connect(ctx, *mongoURI, *dbName)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to MongoDB")
	}
	defer db.Close(ctx)

	if err := db.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to create indexes")
	}

	categoryRepo := db.Categories()
	expenseRepo := db.Expenses()
	historyRepo := db.History()

	// Blob storage for uploaded statement files
	if *bucket == "" {
		log.Warn().Msg("No GCS bucket configured - statement processing will be disabled")
	}
	blobs, err := gcs.NewClient(ctx, *bucket)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create storage client")
	}
	defer blobs.Close()

	// Wire the pipeline and the application service
	resolver := category.NewResolver(categoryRepo, historyRepo)
	processor := pipeline.NewProcessor(blobs, resolver, log)
	svc := expense.NewService(processor, expenseRepo, categoryRepo, historyRepo, log)

	// Initialize handlers
	expensesHandler := handlers.NewExpensesHandler(svc, log)
	categoriesHandler := handlers.NewCategoriesHandler(svc, log)
	historyHandler := handlers.NewHistoryHandler(svc, log)

	// Create router
	mux := http.NewServeMux()

	mux.HandleFunc("/api/expenses/process", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			expensesHandler.Process(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/expenses/save", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			expensesHandler.Save(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/expenses/pivot/monthly", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			expensesHandler.MonthlyPivot(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/expenses/pivot/yearly", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			expensesHandler.YearlyPivot(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/expenses/pivot/consolidated", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			expensesHandler.ConsolidatedPivot(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/categories", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			categoriesHandler.List(w, r)
		case http.MethodPost:
			categoriesHandler.Replace(w, r)
		default:
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/history", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			historyHandler.List(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	// Health check endpoint
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// Apply middleware
	handler := middleware.Recovery(log)(
		middleware.Logger(log)(
			middleware.RequestID(
				middleware.CORS(
					middleware.UserIdentity(mux),
				),
			),
		),
	)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + *port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Str("port", *port).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
