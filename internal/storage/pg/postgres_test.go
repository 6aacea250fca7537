package pg

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	postgresTC "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"library-services/internal/models"
	"library-services/internal/storage"
)

// createTables sets up the three entity tables for tests
func createTables(ctx context.Context, db *PostgresDB) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS books (
			id BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
			title TEXT NOT NULL,
			author TEXT NOT NULL,
			year_published INT NOT NULL DEFAULT 0,
			genre TEXT NOT NULL DEFAULT '',
			version BIGINT NOT NULL DEFAULT 1
		)`,
		`CREATE TABLE IF NOT EXISTS users (
			id BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
			first_name TEXT NOT NULL DEFAULT '',
			last_name TEXT NOT NULL DEFAULT '',
			email TEXT NOT NULL DEFAULT '',
			password TEXT NOT NULL DEFAULT '',
			version BIGINT NOT NULL DEFAULT 1
		)`,
		`CREATE TABLE IF NOT EXISTS transactions (
			transaction_id BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
			user_id BIGINT NOT NULL,
			book_id BIGINT NOT NULL,
			borrowed_date TIMESTAMPTZ NOT NULL,
			returned_date TIMESTAMPTZ,
			status TEXT NOT NULL DEFAULT '',
			version BIGINT NOT NULL DEFAULT 1
		)`,
	}
	for _, stmt := range statements {
		if _, err := db.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// setupTestDB starts a postgres container and connects to it
func setupTestDB(t *testing.T) (*PostgresDB, func()) {
	if testing.Short() {
		t.Skip("skipping container-backed test in short mode")
	}

	ctx := context.Background()

	pgContainer, err := postgresTC.Run(ctx,
		"postgres:16-alpine",
		postgresTC.WithDatabase("library"),
		postgresTC.WithUsername("postgres"),
		postgresTC.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err, "Failed to start postgres container")

	host, err := pgContainer.Host(ctx)
	require.NoError(t, err)

	port, err := pgContainer.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	db, err := NewPostgresDB(host, port.Int(), "library", "postgres", "postgres", false)
	require.NoError(t, err, "Failed to connect to postgres")

	err = createTables(ctx, db)
	require.NoError(t, err, "Failed to create tables")

	cleanup := func() {
		db.Close()
		pgContainer.Terminate(ctx)
	}

	return db, cleanup
}

func TestPostgresDB_BookCRUD(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	created, err := db.CreateBook(ctx, models.Book{
		Title:         "Dune",
		Author:        "Herbert",
		YearPublished: 1965,
		Genre:         "Sci-Fi",
	})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Equal(t, int64(1), created.Version)

	fetched, err := db.GetBook(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, fetched)

	created.Title = "Dune Messiah"
	updated, err := db.UpdateBook(ctx, created)
	require.NoError(t, err)
	assert.Equal(t, int64(2), updated.Version)

	fetched, err = db.GetBook(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Dune Messiah", fetched.Title)

	books, err := db.ListBooks(ctx)
	require.NoError(t, err)
	assert.Len(t, books, 1)

	exists, err := db.BookExists(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, db.DeleteBook(ctx, created.ID))

	_, err = db.GetBook(ctx, created.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.ErrorIs(t, db.DeleteBook(ctx, created.ID), storage.ErrNotFound)
}

func TestPostgresDB_UpdateMissing(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	_, err := db.UpdateBook(ctx, models.Book{ID: 4242, Title: "Dune", Author: "Herbert"})
	assert.ErrorIs(t, err, storage.ErrNotFound)

	_, err = db.UpdateUser(ctx, models.User{ID: 4242})
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestPostgresDB_UserCRUD(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	created, err := db.CreateUser(ctx, models.User{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
		Password:  "s3cret",
	})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)

	created.Email = "countess@example.com"
	updated, err := db.UpdateUser(ctx, created)
	require.NoError(t, err)
	assert.Equal(t, int64(2), updated.Version)

	users, err := db.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "countess@example.com", users[0].Email)

	require.NoError(t, db.DeleteUser(ctx, created.ID))
	exists, err := db.UserExists(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestPostgresDB_TransactionCRUD(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	borrowed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	created, err := db.CreateTransaction(ctx, models.Transaction{
		UserID:       1,
		BookID:       2,
		BorrowedDate: borrowed,
		Status:       "Borrowed",
	})
	require.NoError(t, err)
	assert.NotZero(t, created.TransactionID)

	fetched, err := db.GetTransaction(ctx, created.TransactionID)
	require.NoError(t, err)
	assert.True(t, borrowed.Equal(fetched.BorrowedDate))
	assert.Nil(t, fetched.ReturnedDate)

	returned := borrowed.AddDate(0, 0, 7)
	fetched.ReturnedDate = &returned
	fetched.Status = "Returned"
	updated, err := db.UpdateTransaction(ctx, fetched)
	require.NoError(t, err)
	assert.Equal(t, int64(2), updated.Version)

	fetched, err = db.GetTransaction(ctx, created.TransactionID)
	require.NoError(t, err)
	require.NotNil(t, fetched.ReturnedDate)
	assert.True(t, returned.Equal(*fetched.ReturnedDate))
	assert.Equal(t, "Returned", fetched.Status)

	require.NoError(t, db.DeleteTransaction(ctx, created.TransactionID))
	_, err = db.GetTransaction(ctx, created.TransactionID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
