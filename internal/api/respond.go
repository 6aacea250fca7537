package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	jsoniter "github.com/json-iterator/go"

	"library-services/internal/storage"
)

var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

// Status tags an envelope as a success or an error response
type Status string

const (
	StatusSuccess Status = "Success"
	StatusError   Status = "Error"
)

// Envelope is the uniform response wrapper returned by every endpoint
type Envelope struct {
	Status  Status      `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func writeJSON(w http.ResponseWriter, code int, env Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = jsonAPI.NewEncoder(w).Encode(env)
}

func writeSuccess(w http.ResponseWriter, code int, message string, data interface{}) {
	writeJSON(w, code, Envelope{Status: StatusSuccess, Message: message, Data: data})
}

func writeError(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, Envelope{Status: StatusError, Message: message})
}

// pathID parses the {id} segment of the request path
func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}

// updateFailure maps a storage update error to an HTTP status and
// message. On a write conflict it re-checks existence: a record that
// disappeared underneath the update is reported as not found, a record
// that still exists means a genuine concurrent modification.
func updateFailure(ctx context.Context, err error, id int64, exists func(context.Context, int64) (bool, error)) (int, string) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound, "record not found"
	case errors.Is(err, storage.ErrConflict):
		ok, checkErr := exists(ctx, id)
		if checkErr == nil && !ok {
			return http.StatusNotFound, "record not found"
		}
		return http.StatusInternalServerError, "concurrent modification detected"
	default:
		return http.StatusInternalServerError, "failed to update record"
	}
}
