package stubs

import (
	"context"
	"sort"
	"sync"

	"library-services/internal/models"
	"library-services/internal/storage"
)

// MockDB is an in-memory implementation of the storage interfaces for
// testing and local development (USE_MOCK_DB mode)
type MockDB struct {
	mu           sync.RWMutex
	books        map[int64]models.Book
	users        map[int64]models.User
	transactions map[int64]models.Transaction

	nextBookID        int64
	nextUserID        int64
	nextTransactionID int64

	// FailUpdatesWith, when set, is returned by every update call.
	// Used to exercise the conflict-fallback path in handler tests.
	FailUpdatesWith error
}

// NewMockDB creates a new empty mock database
func NewMockDB() *MockDB {
	return &MockDB{
		books:        make(map[int64]models.Book),
		users:        make(map[int64]models.User),
		transactions: make(map[int64]models.Transaction),
	}
}

// Close is a no-op for the mock database
func (m *MockDB) Close() error {
	return nil
}

// --- Books ---

func (m *MockDB) ListBooks(ctx context.Context) ([]models.Book, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	books := make([]models.Book, 0, len(m.books))
	for _, b := range m.books {
		books = append(books, b)
	}
	sort.Slice(books, func(i, j int) bool { return books[i].ID < books[j].ID })
	return books, nil
}

func (m *MockDB) GetBook(ctx context.Context, id int64) (models.Book, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	book, ok := m.books[id]
	if !ok {
		return models.Book{}, storage.ErrNotFound
	}
	return book, nil
}

func (m *MockDB) CreateBook(ctx context.Context, book models.Book) (models.Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextBookID++
	book.ID = m.nextBookID
	book.Version = 1
	m.books[book.ID] = book
	return book, nil
}

func (m *MockDB) UpdateBook(ctx context.Context, book models.Book) (models.Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailUpdatesWith != nil {
		return models.Book{}, m.FailUpdatesWith
	}

	existing, ok := m.books[book.ID]
	if !ok {
		return models.Book{}, storage.ErrNotFound
	}
	book.Version = existing.Version + 1
	m.books[book.ID] = book
	return book, nil
}

func (m *MockDB) DeleteBook(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.books[id]; !ok {
		return storage.ErrNotFound
	}
	delete(m.books, id)
	return nil
}

func (m *MockDB) BookExists(ctx context.Context, id int64) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.books[id]
	return ok, nil
}

// --- Users ---

func (m *MockDB) ListUsers(ctx context.Context) ([]models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	users := make([]models.User, 0, len(m.users))
	for _, u := range m.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (m *MockDB) GetUser(ctx context.Context, id int64) (models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	user, ok := m.users[id]
	if !ok {
		return models.User{}, storage.ErrNotFound
	}
	return user, nil
}

func (m *MockDB) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextUserID++
	user.ID = m.nextUserID
	user.Version = 1
	m.users[user.ID] = user
	return user, nil
}

func (m *MockDB) UpdateUser(ctx context.Context, user models.User) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailUpdatesWith != nil {
		return models.User{}, m.FailUpdatesWith
	}

	existing, ok := m.users[user.ID]
	if !ok {
		return models.User{}, storage.ErrNotFound
	}
	user.Version = existing.Version + 1
	m.users[user.ID] = user
	return user, nil
}

func (m *MockDB) DeleteUser(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[id]; !ok {
		return storage.ErrNotFound
	}
	delete(m.users, id)
	return nil
}

func (m *MockDB) UserExists(ctx context.Context, id int64) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.users[id]
	return ok, nil
}

// --- Transactions ---

func (m *MockDB) ListTransactions(ctx context.Context) ([]models.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	txs := make([]models.Transaction, 0, len(m.transactions))
	for _, t := range m.transactions {
		txs = append(txs, t)
	}
	sort.Slice(txs, func(i, j int) bool { return txs[i].TransactionID < txs[j].TransactionID })
	return txs, nil
}

func (m *MockDB) GetTransaction(ctx context.Context, id int64) (models.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	tx, ok := m.transactions[id]
	if !ok {
		return models.Transaction{}, storage.ErrNotFound
	}
	return tx, nil
}

func (m *MockDB) CreateTransaction(ctx context.Context, tx models.Transaction) (models.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextTransactionID++
	tx.TransactionID = m.nextTransactionID
	tx.Version = 1
	m.transactions[tx.TransactionID] = tx
	return tx, nil
}

func (m *MockDB) UpdateTransaction(ctx context.Context, tx models.Transaction) (models.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailUpdatesWith != nil {
		return models.Transaction{}, m.FailUpdatesWith
	}

	existing, ok := m.transactions[tx.TransactionID]
	if !ok {
		return models.Transaction{}, storage.ErrNotFound
	}
	tx.Version = existing.Version + 1
	m.transactions[tx.TransactionID] = tx
	return tx, nil
}

func (m *MockDB) DeleteTransaction(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.transactions[id]; !ok {
		return storage.ErrNotFound
	}
	delete(m.transactions, id)
	return nil
}

func (m *MockDB) TransactionExists(ctx context.Context, id int64) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.transactions[id]
	return ok, nil
}
