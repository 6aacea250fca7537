package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Service identifies which of the three binaries a config is loaded for
type Service string

const (
	ServiceBookStore    Service = "bookstore"
	ServiceUserStore    Service = "userstore"
	ServiceTransactions Service = "transactions"
)

// Config holds the configuration of one service instance
type Config struct {
	Service  Service
	HTTPPort string

	// PostgreSQL configuration
	PostgresHost     string
	PostgresPort     int
	PostgresDatabase string
	PostgresUser     string
	PostgresPassword string
	PostgresUseTLS   bool

	UseMockDB bool

	// Remote service configuration (transactions service only)
	UserServiceURL string
	BookServiceURL string
	RemoteTimeout  time.Duration
}

// LoadFromEnv loads configuration from environment variables and
// validates the fields the given service requires
func LoadFromEnv(service Service) (*Config, error) {
	config := &Config{Service: service}

	config.HTTPPort = os.Getenv("HTTP_PORT")
	if config.HTTPPort == "" {
		config.HTTPPort = "8080"
	}

	// Use Mock DB (default: false)
	config.UseMockDB = os.Getenv("USE_MOCK_DB") == "true"

	// PostgreSQL configuration (required if not using mock)
	if !config.UseMockDB {
		config.PostgresHost = os.Getenv("POSTGRES_HOST")
		if config.PostgresHost == "" {
			return nil, fmt.Errorf("POSTGRES_HOST is required when USE_MOCK_DB is not set")
		}

		portStr := os.Getenv("POSTGRES_PORT")
		if portStr == "" {
			config.PostgresPort = 5432
		} else {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return nil, fmt.Errorf("invalid POSTGRES_PORT: %w", err)
			}
			config.PostgresPort = port
		}

		config.PostgresDatabase = os.Getenv("POSTGRES_DATABASE")
		if config.PostgresDatabase == "" {
			config.PostgresDatabase = string(service)
		}

		config.PostgresUser = os.Getenv("POSTGRES_USER")
		if config.PostgresUser == "" {
			config.PostgresUser = "postgres"
		}

		config.PostgresPassword = os.Getenv("POSTGRES_PASSWORD")
		// Password is optional, can be empty

		config.PostgresUseTLS = os.Getenv("POSTGRES_USE_TLS") == "true"
	}

	// Remote lookup configuration (required by the transactions service)
	if service == ServiceTransactions {
		config.UserServiceURL = os.Getenv("USER_SERVICE_URL")
		if config.UserServiceURL == "" {
			return nil, fmt.Errorf("USER_SERVICE_URL is required for the transactions service")
		}

		config.BookServiceURL = os.Getenv("BOOK_SERVICE_URL")
		if config.BookServiceURL == "" {
			return nil, fmt.Errorf("BOOK_SERVICE_URL is required for the transactions service")
		}

		timeoutStr := os.Getenv("REMOTE_TIMEOUT_SECONDS")
		if timeoutStr == "" {
			config.RemoteTimeout = 30 * time.Second
		} else {
			seconds, err := strconv.Atoi(timeoutStr)
			if err != nil || seconds <= 0 {
				return nil, fmt.Errorf("invalid REMOTE_TIMEOUT_SECONDS: %s", timeoutStr)
			}
			config.RemoteTimeout = time.Duration(seconds) * time.Second
		}
	}

	return config, nil
}
