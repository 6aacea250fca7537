package api

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"library-services/internal/models"
	"library-services/internal/storage"
)

// UserHandler serves the REST surface of the user store service
type UserHandler struct {
	store  storage.UserStorage
	logger *zap.Logger
}

// NewUserHandler creates a user handler backed by the given storage
func NewUserHandler(store storage.UserStorage, logger *zap.Logger) *UserHandler {
	return &UserHandler{store: store, logger: logger}
}

// RegisterRoutes registers the user endpoints on the provided mux
func (h *UserHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/users", h.list)
	mux.HandleFunc("GET /api/users/{id}", h.get)
	mux.HandleFunc("POST /api/users", h.create)
	mux.HandleFunc("PUT /api/users/{id}", h.update)
	mux.HandleFunc("DELETE /api/users/{id}", h.delete)
}

func (h *UserHandler) list(w http.ResponseWriter, r *http.Request) {
	users, err := h.store.ListUsers(r.Context())
	if err != nil {
		h.logger.Error("Failed to list users", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to list users")
		return
	}
	if users == nil {
		users = []models.User{}
	}
	writeSuccess(w, http.StatusOK, "users listed", users)
}

func (h *UserHandler) get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	user, err := h.store.GetUser(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		h.logger.Error("Failed to get user", zap.Int64("id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to get user")
		return
	}
	writeSuccess(w, http.StatusOK, "user found", user)
}

func (h *UserHandler) create(w http.ResponseWriter, r *http.Request) {
	var user models.User
	if err := jsonAPI.NewDecoder(r.Body).Decode(&user); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	// TODO: hash passwords before storing
	created, err := h.store.CreateUser(r.Context(), user)
	if err != nil {
		h.logger.Error("Failed to create user", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to create user")
		return
	}

	h.logger.Info("User created", zap.Int64("id", created.ID), zap.String("email", created.Email))
	writeSuccess(w, http.StatusCreated, "user created", created)
}

func (h *UserHandler) update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	var user models.User
	if err := jsonAPI.NewDecoder(r.Body).Decode(&user); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if id != user.ID {
		writeError(w, http.StatusBadRequest, "path id does not match body id")
		return
	}

	updated, err := h.store.UpdateUser(r.Context(), user)
	if err != nil {
		code, msg := updateFailure(r.Context(), err, id, h.store.UserExists)
		if code == http.StatusInternalServerError {
			h.logger.Error("Failed to update user", zap.Int64("id", id), zap.Error(err))
		}
		writeError(w, code, msg)
		return
	}
	writeSuccess(w, http.StatusOK, "user updated", updated)
}

func (h *UserHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	if err := h.store.DeleteUser(r.Context(), id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		h.logger.Error("Failed to delete user", zap.Int64("id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to delete user")
		return
	}

	h.logger.Info("User deleted", zap.Int64("id", id))
	writeSuccess(w, http.StatusOK, "user deleted", nil)
}
