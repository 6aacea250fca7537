package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"library-services/internal/models"
)

// ErrNotFound signals that the remote service answered and the record
// does not exist.
var ErrNotFound = errors.New("remote record not found")

// ErrUnavailable signals a transport failure or an unexpected status
// from the remote service. Distinct from ErrNotFound so callers never
// mistake an outage for a missing record.
var ErrUnavailable = errors.New("remote service unavailable")

var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

// UserLookup resolves a user id against the user store service
type UserLookup interface {
	GetUser(ctx context.Context, id int64) (*models.User, error)
}

// BookLookup resolves a book id against the book store service
type BookLookup interface {
	GetBook(ctx context.Context, id int64) (*models.Book, error)
}

// envelope mirrors the response wrapper of the sibling services
type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

func newClient(baseURL string, timeout time.Duration, logger *zap.Logger) client {
	return client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// getJSON fetches path and unmarshals the envelope's data into out.
// A 404 maps to ErrNotFound; any transport error or other non-2xx
// status maps to ErrUnavailable.
func (c client) getJSON(ctx context.Context, path string, out interface{}) error {
	url := c.baseURL + path

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to build request for %s: %w", url, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("Remote lookup failed", zap.String("url", url), zap.Error(err))
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		c.logger.Warn("Remote lookup returned unexpected status",
			zap.String("url", url),
			zap.Int("status", resp.StatusCode),
		)
		return fmt.Errorf("%w: unexpected status %d", ErrUnavailable, resp.StatusCode)
	}

	var env envelope
	if err := jsonAPI.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("%w: malformed response: %v", ErrUnavailable, err)
	}
	if err := jsonAPI.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("%w: malformed record: %v", ErrUnavailable, err)
	}
	return nil
}

// UserClient looks up users in the user store service over HTTP
type UserClient struct {
	client
}

// NewUserClient creates a user lookup client with a fixed request timeout
func NewUserClient(baseURL string, timeout time.Duration, logger *zap.Logger) *UserClient {
	return &UserClient{client: newClient(baseURL, timeout, logger)}
}

// GetUser fetches the user with the given id from the user store
func (c *UserClient) GetUser(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	if err := c.getJSON(ctx, fmt.Sprintf("/api/users/%d", id), &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// BookClient looks up books in the book store service over HTTP
type BookClient struct {
	client
}

// NewBookClient creates a book lookup client with a fixed request timeout
func NewBookClient(baseURL string, timeout time.Duration, logger *zap.Logger) *BookClient {
	return &BookClient{client: newClient(baseURL, timeout, logger)}
}

// GetBook fetches the book with the given id from the book store
func (c *BookClient) GetBook(ctx context.Context, id int64) (*models.Book, error) {
	var book models.Book
	if err := c.getJSON(ctx, fmt.Sprintf("/api/books/%d", id), &book); err != nil {
		return nil, err
	}
	return &book, nil
}
