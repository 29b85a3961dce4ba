package bookden

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

func addComment(ctx context.Context, db connOrTx, isbn, username, content string, createdAt time.Time) (*CommentRow, error) {
	book, err := getBookByISBN(ctx, db, isbn)
	if err != nil {
		return nil, err
	}
	if book == nil {
		return nil, ErrBookNotFound
	}

	exists, err := userExists(ctx, db, username)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrUserNotFound
	}

	row := CommentRow{
		ID:        newID(),
		BookISBN:  isbn,
		Username:  username,
		Content:   content,
		CreatedAt: createdAt,
	}
	if _, err := db.ExecContext(
		ctx,
		"INSERT INTO comments (`id`, `book_isbn`, `username`, `content`, `created_at`) VALUES (?, ?, ?, ?, ?)",
		row.ID, row.BookISBN, row.Username, row.Content, row.CreatedAt,
	); err != nil {
		return nil, fmt.Errorf("error Insert comment by book_isbn=%s, username=%s: %w", isbn, username, err)
	}
	return &row, nil
}

func deleteComment(ctx context.Context, db connOrTx, id string) error {
	var row CommentRow
	if err := db.GetContext(ctx, &row, "SELECT * FROM comments WHERE `id` = ?", id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrCommentNotFound
		}
		return fmt.Errorf("error Get comment by id=%s: %w", id, err)
	}

	if _, err := db.ExecContext(ctx, "DELETE FROM comments WHERE `id` = ?", id); err != nil {
		return fmt.Errorf("error Delete comment by id=%s: %w", id, err)
	}
	return nil
}

// addRating records a rating. A user rates a given book at most once.
func addRating(ctx context.Context, db connOrTx, isbn, username string, value int) (*RatingRow, error) {
	exists, err := userExists(ctx, db, username)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrUserNotFound
	}

	book, err := getBookByISBN(ctx, db, isbn)
	if err != nil {
		return nil, err
	}
	if book == nil {
		return nil, ErrBookNotFound
	}

	var existing RatingRow
	err = db.GetContext(
		ctx,
		&existing,
		"SELECT * FROM ratings WHERE `username` = ? AND `book_isbn` = ?",
		username, isbn,
	)
	if err == nil {
		return nil, ErrAlreadyRated
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("error Get rating by username=%s, book_isbn=%s: %w", username, isbn, err)
	}

	row := RatingRow{
		ID:       newID(),
		BookISBN: isbn,
		Username: username,
		Rating:   value,
	}
	if _, err := db.ExecContext(
		ctx,
		"INSERT INTO ratings (`id`, `book_isbn`, `username`, `rating`) VALUES (?, ?, ?, ?)",
		row.ID, row.BookISBN, row.Username, row.Rating,
	); err != nil {
		if isDuplicateEntry(err) {
			return nil, ErrAlreadyRated
		}
		return nil, fmt.Errorf("error Insert rating by book_isbn=%s, username=%s: %w", isbn, username, err)
	}
	return &row, nil
}

// RatingStats aggregates the ratings of one book.
type RatingStats struct {
	Sum     int
	Votes   int
	Average float64
}

func averageRating(ctx context.Context, db connOrTx, isbn string) (*RatingStats, error) {
	var agg struct {
		Total int `db:"total"`
		Votes int `db:"votes"`
	}
	if err := db.GetContext(
		ctx,
		&agg,
		"SELECT COALESCE(SUM(`rating`), 0) AS total, COUNT(*) AS votes FROM ratings WHERE `book_isbn` = ?",
		isbn,
	); err != nil {
		return nil, fmt.Errorf("error Get rating stats by book_isbn=%s: %w", isbn, err)
	}
	if agg.Votes == 0 {
		return nil, ErrNoRatings
	}
	return &RatingStats{
		Sum:     agg.Total,
		Votes:   agg.Votes,
		Average: float64(agg.Total) / float64(agg.Votes),
	}, nil
}
