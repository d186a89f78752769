package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/liamwears/popcorn/internal/config"
	"github.com/liamwears/popcorn/internal/database"
	"github.com/liamwears/popcorn/internal/handlers"
	"github.com/liamwears/popcorn/internal/middleware"
	"github.com/liamwears/popcorn/internal/services"
	"github.com/liamwears/popcorn/internal/ui"
	"golang.org/x/sync/errgroup"
	"gopkg.in/natefinch/lumberjack.v2"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := newLogger(cfg)

	// Check for migrate command
	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		direction := "up"
		if len(os.Args) > 2 {
			direction = os.Args[2]
		}
		runMigrations(cfg, logger, direction)
		return
	}

	logger.Printf("Starting Popcorn server in %s mode", cfg.Server.Env)

	ctx := context.Background()

	// Initialize database connection
	db, err := database.New(ctx, database.Config{
		URL: cfg.Database.URL,
	}, logger)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Initialize Redis connection
	redisClient, err := database.NewRedisClient(ctx, database.RedisConfig{
		Addr:     cfg.RedisAddr(),
		Password: cfg.Redis.Password,
		DB:       0,
		TLS:      cfg.Redis.TLS,
	}, logger)
	if err != nil {
		logger.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()

	// Initialize session store
	sessionStore := database.NewSessionStore(redisClient.Client, cfg.Session.TTL, logger)

	// Initialize services
	omdbService := services.NewOMDBService(services.OMDBConfig{
		APIKey:  cfg.OMDB.APIKey,
		BaseURL: cfg.OMDB.BaseURL,
	})
	watchlistService := services.NewWatchlistService(db.Pool)

	manager := ui.NewManager(omdbService, watchlistService, sessionStore, ui.SessionConfig{
		DefaultQuery: cfg.Session.DefaultQuery,
		MaxRating:    cfg.Session.MaxRating,
		IdleTimeout:  cfg.Session.IdleTimeout,
	}, logger)

	// Initialize middleware
	sessions := middleware.NewSessionMiddleware(manager, "popcorn_session", cfg.Session.TTL, cfg.IsProduction(), logger)

	// Initialize renderer
	renderer, err := handlers.NewRenderer(logger)
	if err != nil {
		logger.Fatalf("Failed to initialize renderer: %v", err)
	}

	// Initialize handlers
	movieHandler := handlers.NewMovieHandler(logger)
	pageHandler := handlers.NewPageHandler(manager.Config(), renderer, logger)

	// Set up HTTP router with logging
	mux := http.NewServeMux()

	// Page routes
	mux.Handle("GET /{$}", sessions.RequireSession(http.HandlerFunc(pageHandler.Index)))

	// Session API routes
	mux.Handle("GET /api/state", sessions.RequireSession(http.HandlerFunc(movieHandler.State)))
	mux.Handle("PUT /api/query", sessions.RequireSession(http.HandlerFunc(movieHandler.SetQuery)))
	mux.Handle("POST /api/movies/{id}/select", sessions.RequireSession(http.HandlerFunc(movieHandler.Select)))
	mux.Handle("POST /api/detail/close", sessions.RequireSession(http.HandlerFunc(movieHandler.Close)))
	mux.Handle("POST /api/detail/rating", sessions.RequireSession(http.HandlerFunc(movieHandler.Rating)))
	mux.Handle("POST /api/detail/add", sessions.RequireSession(http.HandlerFunc(movieHandler.Add)))
	mux.Handle("DELETE /api/watched/{id}", sessions.RequireSession(http.HandlerFunc(movieHandler.Remove)))
	mux.Handle("GET /api/watched/summary", sessions.RequireSession(http.HandlerFunc(movieHandler.Summary)))
	mux.Handle("POST /api/keys", sessions.RequireSession(http.HandlerFunc(movieHandler.Key)))

	// Serve static files
	fs := http.FileServer(http.Dir("internal/static"))
	mux.Handle("/static/", http.StripPrefix("/static/", fs))

	// Health check endpoint
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		var dbErr, redisErr error
		var g errgroup.Group
		g.Go(func() error {
			dbErr = db.Health(r.Context())
			return nil
		})
		g.Go(func() error {
			redisErr = redisClient.Health(r.Context())
			return nil
		})
		g.Wait()

		if dbErr != nil || redisErr != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			fmt.Fprintf(w, `{"status":"unhealthy","database":"%s","redis":"%s"}`, status(dbErr), status(redisErr))
			return
		}

		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"status":"ok","database":"up","redis":"up","sessions":%d}`, manager.Len())
	})

	// Wrap with logging middleware
	handler := middleware.Logger(logger)(mux)

	// Create HTTP server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Printf("Server listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Println("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Printf("Server forced to shutdown: %v", err)
	}

	// Stop in-flight OMDb fetches before the pools go away
	manager.Shutdown()

	logger.Println("Server exited")
}

func status(err error) string {
	if err != nil {
		return "down"
	}
	return "up"
}

// newLogger writes to stdout, and to a rotated file when LOG_FILE is set
func newLogger(cfg *config.Config) *log.Logger {
	var out io.Writer = os.Stdout
	if cfg.Log.File != "" {
		out = io.MultiWriter(os.Stdout, &lumberjack.Logger{
			Filename:   cfg.Log.File,
			MaxSize:    cfg.Log.MaxSizeMB,
			MaxBackups: 3,
			MaxAge:     28,
		})
	}
	return log.New(out, "[popcorn] ", log.LstdFlags|log.Lshortfile)
}

// runMigrations applies or rolls back database migrations
func runMigrations(cfg *config.Config, logger *log.Logger, direction string) {
	ctx := context.Background()

	db, err := database.New(ctx, database.Config{
		URL: cfg.Database.URL,
	}, logger)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	migrator := database.NewMigrator(db.Pool, logger)

	switch direction {
	case "up":
		err = migrator.Up(ctx)
	case "down":
		err = migrator.Down(ctx)
	default:
		logger.Fatalf("Unknown migrate direction %q (want up or down)", direction)
	}
	if err != nil {
		logger.Fatalf("Failed to run migrations: %v", err)
	}

	logger.Println("Migrations completed successfully")
}
