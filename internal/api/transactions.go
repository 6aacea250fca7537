package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"library-services/internal/models"
	"library-services/internal/remote"
	"library-services/internal/storage"
)

// TransactionHandler serves the REST surface of the transactions
// service. Writes validate the referenced user and book against the
// sibling services before touching local storage; the read path
// re-resolves both references live.
type TransactionHandler struct {
	store  storage.TransactionStorage
	users  remote.UserLookup
	books  remote.BookLookup
	logger *zap.Logger
}

// NewTransactionHandler creates a transaction handler with its storage
// and the two remote lookup capabilities injected
func NewTransactionHandler(store storage.TransactionStorage, users remote.UserLookup, books remote.BookLookup, logger *zap.Logger) *TransactionHandler {
	return &TransactionHandler{store: store, users: users, books: books, logger: logger}
}

// RegisterRoutes registers the transaction endpoints on the provided mux
func (h *TransactionHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/transactions", h.list)
	mux.HandleFunc("GET /api/transactions/{id}", h.get)
	mux.HandleFunc("POST /api/transactions", h.create)
	mux.HandleFunc("PUT /api/transactions/{id}", h.update)
	mux.HandleFunc("DELETE /api/transactions/{id}", h.delete)
}

// resolveRefs looks up the referenced user and book, sequentially and
// in that order. It returns the resolved snapshots, or an HTTP status
// and message when validation fails: 400 naming every missing
// reference, 502 when either service cannot be reached.
func (h *TransactionHandler) resolveRefs(ctx context.Context, userID, bookID int64) (*models.User, *models.Book, int, string) {
	var missing []string

	user, err := h.users.GetUser(ctx, userID)
	if err != nil {
		if !errors.Is(err, remote.ErrNotFound) {
			h.logger.Error("User lookup failed", zap.Int64("user_id", userID), zap.Error(err))
			return nil, nil, http.StatusBadGateway, "user service unreachable"
		}
		missing = append(missing, fmt.Sprintf("user %d not found", userID))
	}

	book, err := h.books.GetBook(ctx, bookID)
	if err != nil {
		if !errors.Is(err, remote.ErrNotFound) {
			h.logger.Error("Book lookup failed", zap.Int64("book_id", bookID), zap.Error(err))
			return nil, nil, http.StatusBadGateway, "book service unreachable"
		}
		missing = append(missing, fmt.Sprintf("book %d not found", bookID))
	}

	if len(missing) > 0 {
		return nil, nil, http.StatusBadRequest, strings.Join(missing, "; ")
	}
	return user, book, 0, ""
}

func (h *TransactionHandler) list(w http.ResponseWriter, r *http.Request) {
	txs, err := h.store.ListTransactions(r.Context())
	if err != nil {
		h.logger.Error("Failed to list transactions", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to list transactions")
		return
	}
	if txs == nil {
		txs = []models.Transaction{}
	}
	writeSuccess(w, http.StatusOK, "transactions listed", txs)
}

func (h *TransactionHandler) get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid transaction id")
		return
	}

	tx, err := h.store.GetTransaction(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "transaction not found")
			return
		}
		h.logger.Error("Failed to get transaction", zap.Int64("id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to get transaction")
		return
	}

	// A transaction is only readable while both of its references
	// still resolve.
	user, book, code, msg := h.resolveRefs(r.Context(), tx.UserID, tx.BookID)
	if code != 0 {
		if code == http.StatusBadRequest {
			code = http.StatusNotFound
		}
		writeError(w, code, msg)
		return
	}

	writeSuccess(w, http.StatusOK, "transaction found", models.TransactionDetail{
		Transaction: tx,
		User:        user,
		Book:        book,
	})
}

func (h *TransactionHandler) create(w http.ResponseWriter, r *http.Request) {
	var tx models.Transaction
	if err := jsonAPI.NewDecoder(r.Body).Decode(&tx); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if tx.UserID <= 0 || tx.BookID <= 0 {
		writeError(w, http.StatusBadRequest, "userId and bookId are required")
		return
	}

	user, book, code, msg := h.resolveRefs(r.Context(), tx.UserID, tx.BookID)
	if code != 0 {
		writeError(w, code, msg)
		return
	}

	created, err := h.store.CreateTransaction(r.Context(), tx)
	if err != nil {
		h.logger.Error("Failed to create transaction", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to create transaction")
		return
	}

	h.logger.Info("Transaction created",
		zap.Int64("id", created.TransactionID),
		zap.Int64("user_id", created.UserID),
		zap.Int64("book_id", created.BookID),
	)

	// The embedded snapshots are the ones fetched during validation,
	// not re-fetched after the write.
	writeSuccess(w, http.StatusCreated, "transaction created", models.TransactionDetail{
		Transaction: created,
		User:        user,
		Book:        book,
	})
}

func (h *TransactionHandler) update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid transaction id")
		return
	}

	var tx models.Transaction
	if err := jsonAPI.NewDecoder(r.Body).Decode(&tx); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if tx.UserID <= 0 || tx.BookID <= 0 {
		writeError(w, http.StatusBadRequest, "userId and bookId are required")
		return
	}

	// References are validated before the id match is considered.
	user, book, code, msg := h.resolveRefs(r.Context(), tx.UserID, tx.BookID)
	if code != 0 {
		writeError(w, code, msg)
		return
	}
	if id != tx.TransactionID {
		writeError(w, http.StatusBadRequest, "path id does not match body id")
		return
	}

	updated, err := h.store.UpdateTransaction(r.Context(), tx)
	if err != nil {
		code, msg := updateFailure(r.Context(), err, id, h.store.TransactionExists)
		if code == http.StatusInternalServerError {
			h.logger.Error("Failed to update transaction", zap.Int64("id", id), zap.Error(err))
		}
		writeError(w, code, msg)
		return
	}

	writeSuccess(w, http.StatusOK, "transaction updated", models.TransactionDetail{
		Transaction: updated,
		User:        user,
		Book:        book,
	})
}

func (h *TransactionHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid transaction id")
		return
	}

	// Delete is local-only; no remote validation.
	if err := h.store.DeleteTransaction(r.Context(), id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "transaction not found")
			return
		}
		h.logger.Error("Failed to delete transaction", zap.Int64("id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to delete transaction")
		return
	}

	h.logger.Info("Transaction deleted", zap.Int64("id", id))
	writeSuccess(w, http.StatusOK, "transaction deleted", nil)
}
