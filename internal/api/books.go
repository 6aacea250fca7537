package api

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"library-services/internal/models"
	"library-services/internal/storage"
)

// BookHandler serves the REST surface of the book store service
type BookHandler struct {
	store  storage.BookStorage
	logger *zap.Logger
}

// NewBookHandler creates a book handler backed by the given storage
func NewBookHandler(store storage.BookStorage, logger *zap.Logger) *BookHandler {
	return &BookHandler{store: store, logger: logger}
}

// RegisterRoutes registers the book endpoints on the provided mux
func (h *BookHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/books", h.list)
	mux.HandleFunc("GET /api/books/{id}", h.get)
	mux.HandleFunc("POST /api/books", h.create)
	mux.HandleFunc("PUT /api/books/{id}", h.update)
	mux.HandleFunc("DELETE /api/books/{id}", h.delete)
}

func (h *BookHandler) list(w http.ResponseWriter, r *http.Request) {
	books, err := h.store.ListBooks(r.Context())
	if err != nil {
		h.logger.Error("Failed to list books", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to list books")
		return
	}
	if books == nil {
		books = []models.Book{}
	}
	writeSuccess(w, http.StatusOK, "books listed", books)
}

func (h *BookHandler) get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid book id")
		return
	}

	book, err := h.store.GetBook(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "book not found")
			return
		}
		h.logger.Error("Failed to get book", zap.Int64("id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to get book")
		return
	}
	writeSuccess(w, http.StatusOK, "book found", book)
}

func (h *BookHandler) create(w http.ResponseWriter, r *http.Request) {
	var book models.Book
	if err := jsonAPI.NewDecoder(r.Body).Decode(&book); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if book.Title == "" || book.Author == "" {
		writeError(w, http.StatusBadRequest, "title and author are required")
		return
	}

	created, err := h.store.CreateBook(r.Context(), book)
	if err != nil {
		h.logger.Error("Failed to create book", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to create book")
		return
	}

	h.logger.Info("Book created", zap.Int64("id", created.ID), zap.String("title", created.Title))
	writeSuccess(w, http.StatusCreated, "book created", created)
}

func (h *BookHandler) update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid book id")
		return
	}

	var book models.Book
	if err := jsonAPI.NewDecoder(r.Body).Decode(&book); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if id != book.ID {
		writeError(w, http.StatusBadRequest, "path id does not match body id")
		return
	}
	if book.Title == "" || book.Author == "" {
		writeError(w, http.StatusBadRequest, "title and author are required")
		return
	}

	updated, err := h.store.UpdateBook(r.Context(), book)
	if err != nil {
		code, msg := updateFailure(r.Context(), err, id, h.store.BookExists)
		if code == http.StatusInternalServerError {
			h.logger.Error("Failed to update book", zap.Int64("id", id), zap.Error(err))
		}
		writeError(w, code, msg)
		return
	}
	writeSuccess(w, http.StatusOK, "book updated", updated)
}

func (h *BookHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid book id")
		return
	}

	if err := h.store.DeleteBook(r.Context(), id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "book not found")
			return
		}
		h.logger.Error("Failed to delete book", zap.Int64("id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to delete book")
		return
	}

	h.logger.Info("Book deleted", zap.Int64("id", id))
	writeSuccess(w, http.StatusOK, "book deleted", nil)
}
