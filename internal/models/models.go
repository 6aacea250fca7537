package models

import "time"

// Book represents a book owned by the book store service
type Book struct {
	ID            int64  `json:"id" db:"id"`
	Title         string `json:"title" db:"title"`
	Author        string `json:"author" db:"author"`
	YearPublished int    `json:"yearPublished" db:"year_published"`
	Genre         string `json:"genre,omitempty" db:"genre"`

	// Version is the optimistic-concurrency token, bumped on every update.
	// Not part of the API surface.
	Version int64 `json:"-" db:"version"`
}

// User represents a library member owned by the user store service.
// Password is stored as received; see the hashing TODO in the user
// handler.
type User struct {
	ID        int64  `json:"id" db:"id"`
	FirstName string `json:"firstName" db:"first_name"`
	LastName  string `json:"lastName" db:"last_name"`
	Email     string `json:"email" db:"email"`
	Password  string `json:"password" db:"password"`

	Version int64 `json:"-" db:"version"`
}

// Transaction represents a borrow/return event owned by the
// transactions service. UserID and BookID reference records in the
// user store and book store and are validated remotely before writes.
type Transaction struct {
	TransactionID int64      `json:"transactionId" db:"transaction_id"`
	UserID        int64      `json:"userId" db:"user_id"`
	BookID        int64      `json:"bookId" db:"book_id"`
	BorrowedDate  time.Time  `json:"borrowedDate" db:"borrowed_date"`
	ReturnedDate  *time.Time `json:"returnedDate" db:"returned_date"`
	Status        string     `json:"status" db:"status"` // e.g. "Borrowed", "Returned"

	Version int64 `json:"-" db:"version"`
}

// TransactionDetail is the read/create response shape of the
// transactions service: the transaction plus the referenced user and
// book as resolved at the time the response was built.
type TransactionDetail struct {
	Transaction
	User *User `json:"user"`
	Book *Book `json:"book"`
}
