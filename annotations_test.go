package bookden

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddComment(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	mustCreateUser(t, db, "alice")
	mustCreateBook(t, db, "isbn-1", "Dune")

	_, err := addComment(ctx, db, "isbn-9", "alice", "hello", time.Now())
	assert.ErrorIs(t, err, ErrBookNotFound)

	_, err = addComment(ctx, db, "isbn-1", "nobody", "hello", time.Now())
	assert.ErrorIs(t, err, ErrUserNotFound)

	first, err := addComment(ctx, db, "isbn-1", "alice", "a classic", time.Now())
	require.NoError(t, err)
	// many comments per user per book are allowed
	second, err := addComment(ctx, db, "isbn-1", "alice", "still a classic", time.Now())
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	assert.Equal(t, 2, countRows(t, db, "SELECT COUNT(*) FROM comments WHERE book_isbn = ?", "isbn-1"))
}

func TestDeleteComment(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	mustCreateUser(t, db, "alice")
	mustCreateBook(t, db, "isbn-1", "Dune")

	comment, err := addComment(ctx, db, "isbn-1", "alice", "a classic", time.Now())
	require.NoError(t, err)

	require.NoError(t, deleteComment(ctx, db, comment.ID))
	assert.Zero(t, countRows(t, db, "SELECT COUNT(*) FROM comments WHERE id = ?", comment.ID))

	assert.ErrorIs(t, deleteComment(ctx, db, comment.ID), ErrCommentNotFound)
}

func TestAddRatingOncePerUser(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	mustCreateUser(t, db, "alice")
	mustCreateUser(t, db, "bob")
	mustCreateBook(t, db, "isbn-1", "Dune")
	mustCreateBook(t, db, "isbn-2", "Hyperion")

	_, err := addRating(ctx, db, "isbn-1", "nobody", 5)
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = addRating(ctx, db, "isbn-9", "alice", 5)
	assert.ErrorIs(t, err, ErrBookNotFound)

	_, err = addRating(ctx, db, "isbn-1", "alice", 5)
	require.NoError(t, err)

	_, err = addRating(ctx, db, "isbn-1", "alice", 3)
	assert.ErrorIs(t, err, ErrAlreadyRated)

	// other users and other books are unconstrained
	_, err = addRating(ctx, db, "isbn-1", "bob", 4)
	require.NoError(t, err)
	_, err = addRating(ctx, db, "isbn-2", "alice", 2)
	require.NoError(t, err)
}

func TestAverageRating(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	mustCreateUser(t, db, "alice")
	mustCreateUser(t, db, "bob")
	mustCreateUser(t, db, "carol")
	mustCreateBook(t, db, "isbn-1", "Dune")

	_, err := averageRating(ctx, db, "isbn-1")
	assert.ErrorIs(t, err, ErrNoRatings)

	for username, value := range map[string]int{"alice": 3, "bob": 4, "carol": 5} {
		_, err := addRating(ctx, db, "isbn-1", username, value)
		require.NoError(t, err)
	}

	stats, err := averageRating(ctx, db, "isbn-1")
	require.NoError(t, err)
	assert.Equal(t, 12, stats.Sum)
	assert.Equal(t, 3, stats.Votes)
	assert.InDelta(t, 4.0, stats.Average, 0.0001)
}
