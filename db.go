package bookden

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"github.com/oklog/ulid/v2"
)

type UserRow struct {
	Username       string    `db:"username"`
	Email          string    `db:"email"`
	PasswordDigest string    `db:"password_digest"`
	IsAdmin        bool      `db:"is_admin"`
	CreatedAt      time.Time `db:"created_at"`
}

type BookRow struct {
	ISBN          string `db:"isbn"`
	Title         string `db:"title"`
	Author        string `db:"author"`
	Publisher     string `db:"publisher"`
	PageCount     int    `db:"page_count"`
	YearPublished int    `db:"year_published"`
	Genre         string `db:"genre"`
}

type FolderRow struct {
	ID            string    `db:"id"`
	OwnerUsername string    `db:"owner_username"`
	Name          string    `db:"name"`
	CreatedAt     time.Time `db:"created_at"`
}

type FolderEntryRow struct {
	FolderID string `db:"folder_id"`
	BookISBN string `db:"book_isbn"`
}

type CommentRow struct {
	ID        string    `db:"id"`
	BookISBN  string    `db:"book_isbn"`
	Username  string    `db:"username"`
	Content   string    `db:"content"`
	CreatedAt time.Time `db:"created_at"`
}

type RatingRow struct {
	ID       string `db:"id"`
	BookISBN string `db:"book_isbn"`
	Username string `db:"username"`
	Rating   int    `db:"rating"`
}

type connOrTx interface {
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// ConnectDB opens the MySQL pool described by cfg.
func ConnectDB(cfg Config) (*sqlx.DB, error) {
	return sqlx.Open("mysql", cfg.DSN())
}

func newID() string {
	return ulid.Make().String()
}

// isDuplicateEntry reports whether err is a MySQL unique-key violation. The
// pre-insert existence checks give the friendly error; this catches the race
// where two requests pass the check together and the constraint fires.
func isDuplicateEntry(err error) bool {
	var merr *mysql.MySQLError
	return errors.As(err, &merr) && merr.Number == 1062
}
