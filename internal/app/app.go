package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"library-services/internal/api"
	"library-services/internal/config"
	"library-services/internal/remote"
	"library-services/internal/storage"
	"library-services/internal/storage/pg"
	"library-services/internal/storage/stubs"
)

// database bundles the three entity stores; both the postgres and the
// mock implementation satisfy it.
type database interface {
	storage.BookStorage
	storage.UserStorage
	storage.TransactionStorage
}

// App represents one running service instance
type App struct {
	config *config.Config
	logger *zap.Logger
	db     database
	server *http.Server
}

// New creates and initializes a service instance for the given service
func New(service config.Service) (*App, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg, err := config.LoadFromEnv(service)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	logger = logger.With(zap.String("service", string(service)))

	app := &App{config: cfg, logger: logger}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}
	app.initHTTPServer()

	return app, nil
}

// initDatabase connects the service to its database
func (a *App) initDatabase() error {
	if a.config.UseMockDB {
		a.logger.Info("Using mock database")
		a.db = stubs.NewMockDB()
		return nil
	}

	a.logger.Info("Connecting to PostgreSQL",
		zap.String("host", a.config.PostgresHost),
		zap.Int("port", a.config.PostgresPort),
		zap.String("database", a.config.PostgresDatabase),
		zap.Bool("tls", a.config.PostgresUseTLS),
	)

	db, err := pg.NewPostgresDB(
		a.config.PostgresHost,
		a.config.PostgresPort,
		a.config.PostgresDatabase,
		a.config.PostgresUser,
		a.config.PostgresPassword,
		a.config.PostgresUseTLS,
	)
	if err != nil {
		return fmt.Errorf("failed to connect to postgres: %w", err)
	}

	a.db = db
	return nil
}

// initHTTPServer builds the mux for the configured service
func (a *App) initHTTPServer() {
	mux := http.NewServeMux()

	// Health check endpoint
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "OK")
	})

	switch a.config.Service {
	case config.ServiceBookStore:
		api.NewBookHandler(a.db, a.logger).RegisterRoutes(mux)
	case config.ServiceUserStore:
		api.NewUserHandler(a.db, a.logger).RegisterRoutes(mux)
	case config.ServiceTransactions:
		users := remote.NewUserClient(a.config.UserServiceURL, a.config.RemoteTimeout, a.logger)
		books := remote.NewBookClient(a.config.BookServiceURL, a.config.RemoteTimeout, a.logger)
		api.NewTransactionHandler(a.db, users, books, a.logger).RegisterRoutes(mux)
	}

	a.server = &http.Server{
		Addr:        ":" + a.config.HTTPPort,
		Handler:     api.RequestLogging(a.logger, mux),
		ReadTimeout: 10 * time.Second,
		// Write timeout must cover the two sequential remote lookups
		// of the transactions service, each bounded by RemoteTimeout.
		WriteTimeout: 90 * time.Second,
	}
}

// Run starts the HTTP server and blocks until shutdown
func (a *App) Run() error {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		a.logger.Info("Starting HTTP server", zap.String("port", a.config.HTTPPort))
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return fmt.Errorf("HTTP server error: %w", err)
	case <-sigChan:
	}

	a.logger.Info("Shutting down...")
	return a.Shutdown()
}

// Shutdown gracefully drains the server and closes the database
func (a *App) Shutdown() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("HTTP server shutdown error", zap.Error(err))
	}

	if err := a.db.Close(); err != nil {
		a.logger.Error("Error closing database", zap.Error(err))
		return err
	}

	a.logger.Info("Shutdown complete")
	return nil
}
