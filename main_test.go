package bookden

import (
	"context"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
)

// Tests run against in-memory SQLite; production uses MySQL through the same
// sqlx surface. The schema mirrors migrations/0001_init.up.sql.
const testSchema = `
CREATE TABLE users (
  username        TEXT PRIMARY KEY,
  email           TEXT NOT NULL,
  password_digest TEXT NOT NULL,
  is_admin        BOOLEAN NOT NULL DEFAULT 0,
  created_at      TIMESTAMP NOT NULL
);
CREATE TABLE books (
  isbn           TEXT PRIMARY KEY,
  title          TEXT NOT NULL,
  author         TEXT NOT NULL,
  publisher      TEXT NOT NULL,
  page_count     INTEGER NOT NULL,
  year_published INTEGER NOT NULL,
  genre          TEXT NOT NULL
);
CREATE TABLE folders (
  id             TEXT PRIMARY KEY,
  owner_username TEXT NOT NULL,
  name           TEXT NOT NULL,
  created_at     TIMESTAMP NOT NULL,
  UNIQUE (owner_username, name)
);
CREATE TABLE folders_to_books (
  folder_id TEXT NOT NULL,
  book_isbn TEXT NOT NULL,
  PRIMARY KEY (folder_id, book_isbn)
);
CREATE TABLE comments (
  id         TEXT PRIMARY KEY,
  book_isbn  TEXT NOT NULL,
  username   TEXT NOT NULL,
  content    TEXT NOT NULL,
  created_at TIMESTAMP NOT NULL
);
CREATE TABLE ratings (
  id        TEXT PRIMARY KEY,
  book_isbn TEXT NOT NULL,
  username  TEXT NOT NULL,
  rating    INTEGER NOT NULL,
  UNIQUE (username, book_isbn)
);
`

func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := sqlx.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(testSchema)
	require.NoError(t, err)
	return db
}

func mustCreateUser(t *testing.T, db connOrTx, username string) {
	t.Helper()
	err := createUser(context.Background(), db, username, username+"@example.com", "opensesame", false, time.Now())
	require.NoError(t, err)
}

func mustCreateBook(t *testing.T, db connOrTx, isbn, title string) {
	t.Helper()
	err := createBook(context.Background(), db, BookRow{
		ISBN:          isbn,
		Title:         title,
		Author:        "Author",
		Publisher:     "Publisher",
		PageCount:     300,
		YearPublished: 2001,
		Genre:         "Fiction",
	})
	require.NoError(t, err)
}

func mustCreateFolder(t *testing.T, db connOrTx, owner, name string) *FolderRow {
	t.Helper()
	folder, err := createFolder(context.Background(), db, owner, name, time.Now())
	require.NoError(t, err)
	return folder
}

func countRows(t *testing.T, db connOrTx, query string, args ...interface{}) int {
	t.Helper()
	var n int
	require.NoError(t, db.GetContext(context.Background(), &n, query, args...))
	return n
}
