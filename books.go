package bookden

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

func getBookByISBN(ctx context.Context, db connOrTx, isbn string) (*BookRow, error) {
	var row BookRow
	if err := db.GetContext(ctx, &row, "SELECT * FROM books WHERE `isbn` = ?", isbn); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error Get book by isbn=%s: %w", isbn, err)
	}
	return &row, nil
}

func createBook(ctx context.Context, db connOrTx, book BookRow) error {
	existing, err := getBookByISBN(ctx, db, book.ISBN)
	if err != nil {
		return err
	}
	if existing != nil {
		return ErrBookExists
	}

	if _, err := db.ExecContext(
		ctx,
		"INSERT INTO books (`isbn`, `title`, `author`, `publisher`, `page_count`, `year_published`, `genre`) VALUES (?, ?, ?, ?, ?, ?, ?)",
		book.ISBN, book.Title, book.Author, book.Publisher, book.PageCount, book.YearPublished, book.Genre,
	); err != nil {
		if isDuplicateEntry(err) {
			return ErrBookExists
		}
		return fmt.Errorf("error Insert book by isbn=%s: %w", book.ISBN, err)
	}
	return nil
}

// listBooks returns one page of the catalog in title order. Ties on title
// fall back to isbn so the order is stable across pages.
func listBooks(ctx context.Context, db connOrTx, skip, limit int) ([]BookRow, error) {
	if skip < 0 {
		skip = 0
	}
	if limit < 0 {
		limit = 0
	}
	books := []BookRow{}
	if err := db.SelectContext(
		ctx,
		&books,
		"SELECT * FROM books ORDER BY `title`, `isbn` LIMIT ? OFFSET ?",
		limit, skip,
	); err != nil {
		return nil, fmt.Errorf("error Select books by skip=%d, limit=%d: %w", skip, limit, err)
	}
	return books, nil
}

// deleteBook removes the book and every row referencing it. Child rows go
// first so a failure can only leave orphaned children, never a book whose
// references dangle. Callers run it inside a transaction.
func deleteBook(ctx context.Context, db connOrTx, isbn string) error {
	book, err := getBookByISBN(ctx, db, isbn)
	if err != nil {
		return err
	}
	if book == nil {
		return ErrBookNotFound
	}

	if _, err := db.ExecContext(
		ctx,
		"DELETE FROM comments WHERE `book_isbn` = ?",
		isbn,
	); err != nil {
		return fmt.Errorf("error Delete comments by book_isbn=%s: %w", isbn, err)
	}
	if _, err := db.ExecContext(
		ctx,
		"DELETE FROM ratings WHERE `book_isbn` = ?",
		isbn,
	); err != nil {
		return fmt.Errorf("error Delete ratings by book_isbn=%s: %w", isbn, err)
	}
	if _, err := db.ExecContext(
		ctx,
		"DELETE FROM folders_to_books WHERE `book_isbn` = ?",
		isbn,
	); err != nil {
		return fmt.Errorf("error Delete folders_to_books by book_isbn=%s: %w", isbn, err)
	}
	if _, err := db.ExecContext(
		ctx,
		"DELETE FROM books WHERE `isbn` = ?",
		isbn,
	); err != nil {
		return fmt.Errorf("error Delete book by isbn=%s: %w", isbn, err)
	}
	return nil
}
