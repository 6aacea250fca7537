package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib" // database/sql driver
	"github.com/jmoiron/sqlx"

	"library-services/internal/models"
	"library-services/internal/storage"
)

var dialect = goqu.Dialect("postgres")

// PostgresDB implements the storage interfaces on top of PostgreSQL.
// A single type carries all three entity stores; each service binary
// connects to its own database and only uses its own slice.
type PostgresDB struct {
	db *sqlx.DB
}

// NewPostgresDB opens a PostgreSQL connection and verifies it with a ping
func NewPostgresDB(host string, port int, database, user, password string, useTLS bool) (*PostgresDB, error) {
	sslMode := "disable"
	if useTLS {
		sslMode = "require"
	}

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		user, password, host, port, database, sslMode)

	db, err := sqlx.Connect("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	return &PostgresDB{db: db}, nil
}

// Close closes the database connection
func (p *PostgresDB) Close() error {
	if p.db != nil {
		return p.db.Close()
	}
	return nil
}

// mapWriteError translates postgres serialization and deadlock failures
// (SQLSTATE 40001, 40P01) into storage.ErrConflict.
func mapWriteError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001", "40P01":
			return fmt.Errorf("%w: %s", storage.ErrConflict, pgErr.Code)
		}
	}
	return err
}

func (p *PostgresDB) exists(ctx context.Context, table string, idCol string, id int64) (bool, error) {
	query, args, err := dialect.From(table).
		Select(goqu.COUNT(goqu.Star())).
		Where(goqu.C(idCol).Eq(id)).
		Prepared(true).ToSQL()
	if err != nil {
		return false, fmt.Errorf("failed to build exists query: %w", err)
	}

	var count int
	if err := p.db.GetContext(ctx, &count, query, args...); err != nil {
		return false, fmt.Errorf("failed to check existence in %s: %w", table, err)
	}
	return count > 0, nil
}

func (p *PostgresDB) deleteByID(ctx context.Context, table string, idCol string, id int64) error {
	query, args, err := dialect.Delete(table).
		Where(goqu.C(idCol).Eq(id)).
		Prepared(true).ToSQL()
	if err != nil {
		return fmt.Errorf("failed to build delete query: %w", err)
	}

	res, err := p.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to delete from %s: %w", table, err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if rows == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// --- Books ---

// ListBooks returns all books ordered by id
func (p *PostgresDB) ListBooks(ctx context.Context) ([]models.Book, error) {
	query, args, err := dialect.From("books").
		Select("id", "title", "author", "year_published", "genre", "version").
		Order(goqu.I("id").Asc()).
		Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("failed to build list query: %w", err)
	}

	var books []models.Book
	if err := p.db.SelectContext(ctx, &books, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list books: %w", err)
	}
	return books, nil
}

// GetBook returns the book with the given id or storage.ErrNotFound
func (p *PostgresDB) GetBook(ctx context.Context, id int64) (models.Book, error) {
	query, args, err := dialect.From("books").
		Select("id", "title", "author", "year_published", "genre", "version").
		Where(goqu.C("id").Eq(id)).
		Prepared(true).ToSQL()
	if err != nil {
		return models.Book{}, fmt.Errorf("failed to build get query: %w", err)
	}

	var book models.Book
	if err := p.db.GetContext(ctx, &book, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Book{}, storage.ErrNotFound
		}
		return models.Book{}, fmt.Errorf("failed to get book: %w", err)
	}
	return book, nil
}

// CreateBook inserts a new book and returns it with the assigned id
func (p *PostgresDB) CreateBook(ctx context.Context, book models.Book) (models.Book, error) {
	query, args, err := dialect.Insert("books").
		Rows(goqu.Record{
			"title":          book.Title,
			"author":         book.Author,
			"year_published": book.YearPublished,
			"genre":          book.Genre,
		}).
		Returning("id", "version").
		Prepared(true).ToSQL()
	if err != nil {
		return models.Book{}, fmt.Errorf("failed to build insert query: %w", err)
	}

	if err := p.db.QueryRowxContext(ctx, query, args...).Scan(&book.ID, &book.Version); err != nil {
		return models.Book{}, fmt.Errorf("failed to create book: %w", err)
	}
	return book, nil
}

// UpdateBook overwrites the book's fields and bumps its version.
// Returns storage.ErrNotFound if no row matched, storage.ErrConflict
// if postgres reports a concurrent-write failure.
func (p *PostgresDB) UpdateBook(ctx context.Context, book models.Book) (models.Book, error) {
	query, args, err := dialect.Update("books").
		Set(goqu.Record{
			"title":          book.Title,
			"author":         book.Author,
			"year_published": book.YearPublished,
			"genre":          book.Genre,
			"version":        goqu.L("version + 1"),
		}).
		Where(goqu.C("id").Eq(book.ID)).
		Returning("version").
		Prepared(true).ToSQL()
	if err != nil {
		return models.Book{}, fmt.Errorf("failed to build update query: %w", err)
	}

	if err := p.db.QueryRowxContext(ctx, query, args...).Scan(&book.Version); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Book{}, storage.ErrNotFound
		}
		return models.Book{}, mapWriteError(err)
	}
	return book, nil
}

// DeleteBook removes the book with the given id or returns storage.ErrNotFound
func (p *PostgresDB) DeleteBook(ctx context.Context, id int64) error {
	return p.deleteByID(ctx, "books", "id", id)
}

// BookExists reports whether a book with the given id exists
func (p *PostgresDB) BookExists(ctx context.Context, id int64) (bool, error) {
	return p.exists(ctx, "books", "id", id)
}

// --- Users ---

// ListUsers returns all users ordered by id
func (p *PostgresDB) ListUsers(ctx context.Context) ([]models.User, error) {
	query, args, err := dialect.From("users").
		Select("id", "first_name", "last_name", "email", "password", "version").
		Order(goqu.I("id").Asc()).
		Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("failed to build list query: %w", err)
	}

	var users []models.User
	if err := p.db.SelectContext(ctx, &users, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// GetUser returns the user with the given id or storage.ErrNotFound
func (p *PostgresDB) GetUser(ctx context.Context, id int64) (models.User, error) {
	query, args, err := dialect.From("users").
		Select("id", "first_name", "last_name", "email", "password", "version").
		Where(goqu.C("id").Eq(id)).
		Prepared(true).ToSQL()
	if err != nil {
		return models.User{}, fmt.Errorf("failed to build get query: %w", err)
	}

	var user models.User
	if err := p.db.GetContext(ctx, &user, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, storage.ErrNotFound
		}
		return models.User{}, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// CreateUser inserts a new user and returns it with the assigned id
func (p *PostgresDB) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	query, args, err := dialect.Insert("users").
		Rows(goqu.Record{
			"first_name": user.FirstName,
			"last_name":  user.LastName,
			"email":      user.Email,
			"password":   user.Password,
		}).
		Returning("id", "version").
		Prepared(true).ToSQL()
	if err != nil {
		return models.User{}, fmt.Errorf("failed to build insert query: %w", err)
	}

	if err := p.db.QueryRowxContext(ctx, query, args...).Scan(&user.ID, &user.Version); err != nil {
		return models.User{}, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// UpdateUser overwrites the user's fields and bumps its version
func (p *PostgresDB) UpdateUser(ctx context.Context, user models.User) (models.User, error) {
	query, args, err := dialect.Update("users").
		Set(goqu.Record{
			"first_name": user.FirstName,
			"last_name":  user.LastName,
			"email":      user.Email,
			"password":   user.Password,
			"version":    goqu.L("version + 1"),
		}).
		Where(goqu.C("id").Eq(user.ID)).
		Returning("version").
		Prepared(true).ToSQL()
	if err != nil {
		return models.User{}, fmt.Errorf("failed to build update query: %w", err)
	}

	if err := p.db.QueryRowxContext(ctx, query, args...).Scan(&user.Version); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, storage.ErrNotFound
		}
		return models.User{}, mapWriteError(err)
	}
	return user, nil
}

// DeleteUser removes the user with the given id or returns storage.ErrNotFound
func (p *PostgresDB) DeleteUser(ctx context.Context, id int64) error {
	return p.deleteByID(ctx, "users", "id", id)
}

// UserExists reports whether a user with the given id exists
func (p *PostgresDB) UserExists(ctx context.Context, id int64) (bool, error) {
	return p.exists(ctx, "users", "id", id)
}

// --- Transactions ---

// ListTransactions returns all transactions ordered by id
func (p *PostgresDB) ListTransactions(ctx context.Context) ([]models.Transaction, error) {
	query, args, err := dialect.From("transactions").
		Select("transaction_id", "user_id", "book_id", "borrowed_date", "returned_date", "status", "version").
		Order(goqu.I("transaction_id").Asc()).
		Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("failed to build list query: %w", err)
	}

	var txs []models.Transaction
	if err := p.db.SelectContext(ctx, &txs, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return txs, nil
}

// GetTransaction returns the transaction with the given id or storage.ErrNotFound
func (p *PostgresDB) GetTransaction(ctx context.Context, id int64) (models.Transaction, error) {
	query, args, err := dialect.From("transactions").
		Select("transaction_id", "user_id", "book_id", "borrowed_date", "returned_date", "status", "version").
		Where(goqu.C("transaction_id").Eq(id)).
		Prepared(true).ToSQL()
	if err != nil {
		return models.Transaction{}, fmt.Errorf("failed to build get query: %w", err)
	}

	var tx models.Transaction
	if err := p.db.GetContext(ctx, &tx, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Transaction{}, storage.ErrNotFound
		}
		return models.Transaction{}, fmt.Errorf("failed to get transaction: %w", err)
	}
	return tx, nil
}

// CreateTransaction inserts a new transaction and returns it with the assigned id
func (p *PostgresDB) CreateTransaction(ctx context.Context, tx models.Transaction) (models.Transaction, error) {
	query, args, err := dialect.Insert("transactions").
		Rows(goqu.Record{
			"user_id":       tx.UserID,
			"book_id":       tx.BookID,
			"borrowed_date": tx.BorrowedDate,
			"returned_date": tx.ReturnedDate,
			"status":        tx.Status,
		}).
		Returning("transaction_id", "version").
		Prepared(true).ToSQL()
	if err != nil {
		return models.Transaction{}, fmt.Errorf("failed to build insert query: %w", err)
	}

	if err := p.db.QueryRowxContext(ctx, query, args...).Scan(&tx.TransactionID, &tx.Version); err != nil {
		return models.Transaction{}, fmt.Errorf("failed to create transaction: %w", err)
	}
	return tx, nil
}

// UpdateTransaction overwrites the transaction's fields and bumps its version
func (p *PostgresDB) UpdateTransaction(ctx context.Context, tx models.Transaction) (models.Transaction, error) {
	query, args, err := dialect.Update("transactions").
		Set(goqu.Record{
			"user_id":       tx.UserID,
			"book_id":       tx.BookID,
			"borrowed_date": tx.BorrowedDate,
			"returned_date": tx.ReturnedDate,
			"status":        tx.Status,
			"version":       goqu.L("version + 1"),
		}).
		Where(goqu.C("transaction_id").Eq(tx.TransactionID)).
		Returning("version").
		Prepared(true).ToSQL()
	if err != nil {
		return models.Transaction{}, fmt.Errorf("failed to build update query: %w", err)
	}

	if err := p.db.QueryRowxContext(ctx, query, args...).Scan(&tx.Version); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Transaction{}, storage.ErrNotFound
		}
		return models.Transaction{}, mapWriteError(err)
	}
	return tx, nil
}

// DeleteTransaction removes the transaction with the given id or returns storage.ErrNotFound
func (p *PostgresDB) DeleteTransaction(ctx context.Context, id int64) error {
	return p.deleteByID(ctx, "transactions", "transaction_id", id)
}

// TransactionExists reports whether a transaction with the given id exists
func (p *PostgresDB) TransactionExists(ctx context.Context, id int64) (bool, error) {
	return p.exists(ctx, "transactions", "transaction_id", id)
}
