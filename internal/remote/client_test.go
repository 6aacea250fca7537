package remote

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestUserClient_GetUser(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/users/3", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"Success","message":"user found","data":{"id":3,"firstName":"Ada","lastName":"Lovelace","email":"ada@example.com"}}`))
	}))
	defer srv.Close()

	client := NewUserClient(srv.URL, 5*time.Second, zap.NewNop())
	user, err := client.GetUser(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, int64(3), user.ID)
	assert.Equal(t, "Ada", user.FirstName)
}

func TestBookClient_GetBook(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/books/8", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"Success","message":"book found","data":{"id":8,"title":"Dune","author":"Herbert"}}`))
	}))
	defer srv.Close()

	client := NewBookClient(srv.URL, 5*time.Second, zap.NewNop())
	book, err := client.GetBook(context.Background(), 8)
	require.NoError(t, err)
	assert.Equal(t, "Dune", book.Title)
}

func TestClient_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"status":"Error","message":"user not found"}`))
	}))
	defer srv.Close()

	client := NewUserClient(srv.URL, 5*time.Second, zap.NewNop())
	_, err := client.GetUser(context.Background(), 99)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestClient_ServerErrorIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewUserClient(srv.URL, 5*time.Second, zap.NewNop())
	_, err := client.GetUser(context.Background(), 1)
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestClient_TransportErrorIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // nothing listening anymore

	client := NewBookClient(srv.URL, time.Second, zap.NewNop())
	_, err := client.GetBook(context.Background(), 1)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestClient_MalformedBodyIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	client := NewUserClient(srv.URL, 5*time.Second, zap.NewNop())
	_, err := client.GetUser(context.Background(), 1)
	assert.ErrorIs(t, err, ErrUnavailable)
}
