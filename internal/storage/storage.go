package storage

import (
	"context"
	"errors"

	"library-services/internal/models"
)

// ErrNotFound is returned when a record with the requested id does not exist.
var ErrNotFound = errors.New("record not found")

// ErrConflict is returned when the store detects a concurrent
// modification during an update. Callers re-check existence to decide
// between not-found and a fatal conflict.
var ErrConflict = errors.New("write conflict")

// BookStorage defines the persistence operations of the book store service
type BookStorage interface {
	ListBooks(ctx context.Context) ([]models.Book, error)
	GetBook(ctx context.Context, id int64) (models.Book, error)
	CreateBook(ctx context.Context, book models.Book) (models.Book, error)
	UpdateBook(ctx context.Context, book models.Book) (models.Book, error)
	DeleteBook(ctx context.Context, id int64) error
	BookExists(ctx context.Context, id int64) (bool, error)

	Close() error
}

// UserStorage defines the persistence operations of the user store service
type UserStorage interface {
	ListUsers(ctx context.Context) ([]models.User, error)
	GetUser(ctx context.Context, id int64) (models.User, error)
	CreateUser(ctx context.Context, user models.User) (models.User, error)
	UpdateUser(ctx context.Context, user models.User) (models.User, error)
	DeleteUser(ctx context.Context, id int64) error
	UserExists(ctx context.Context, id int64) (bool, error)

	Close() error
}

// TransactionStorage defines the persistence operations of the transactions service
type TransactionStorage interface {
	ListTransactions(ctx context.Context) ([]models.Transaction, error)
	GetTransaction(ctx context.Context, id int64) (models.Transaction, error)
	CreateTransaction(ctx context.Context, tx models.Transaction) (models.Transaction, error)
	UpdateTransaction(ctx context.Context, tx models.Transaction) (models.Transaction, error)
	DeleteTransaction(ctx context.Context, id int64) error
	TransactionExists(ctx context.Context, id int64) (bool, error)

	Close() error
}
