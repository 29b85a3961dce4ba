package bookden

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateBookConflict(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	mustCreateBook(t, db, "9780441013593", "Dune")
	err := createBook(ctx, db, BookRow{ISBN: "9780441013593", Title: "Dune Again"})
	assert.ErrorIs(t, err, ErrBookExists)
}

func TestListBooksPagination(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	// inserted out of title order on purpose
	mustCreateBook(t, db, "isbn-c", "Cryptonomicon")
	mustCreateBook(t, db, "isbn-a", "Anathem")
	mustCreateBook(t, db, "isbn-b", "Bluets")

	page, err := listBooks(ctx, db, 0, 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "Anathem", page[0].Title)
	assert.Equal(t, "Bluets", page[1].Title)

	page, err = listBooks(ctx, db, 2, 2)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "Cryptonomicon", page[0].Title)

	page, err = listBooks(ctx, db, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, page)

	page, err = listBooks(ctx, db, 10, 2)
	require.NoError(t, err)
	assert.Empty(t, page)
}

func TestDeleteBookCascades(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	mustCreateUser(t, db, "alice")
	mustCreateUser(t, db, "bob")
	mustCreateBook(t, db, "9780441013593", "Dune")
	mustCreateBook(t, db, "9780553283686", "Hyperion")

	mustCreateFolder(t, db, "alice", "to-read")
	mustCreateFolder(t, db, "bob", "favorites")
	require.NoError(t, addBookToFolder(ctx, db, "alice", "to-read", "9780441013593"))
	require.NoError(t, addBookToFolder(ctx, db, "bob", "favorites", "9780441013593"))
	require.NoError(t, addBookToFolder(ctx, db, "bob", "favorites", "9780553283686"))

	for _, username := range []string{"alice", "bob"} {
		_, err := addComment(ctx, db, "9780441013593", username, "comment", time.Now())
		require.NoError(t, err)
		_, err = addRating(ctx, db, "9780441013593", username, 4)
		require.NoError(t, err)
	}
	_, err := addComment(ctx, db, "9780553283686", "bob", "keeper", time.Now())
	require.NoError(t, err)

	require.NoError(t, deleteBook(ctx, db, "9780441013593"))

	assert.Zero(t, countRows(t, db, "SELECT COUNT(*) FROM books WHERE isbn = ?", "9780441013593"))
	assert.Zero(t, countRows(t, db, "SELECT COUNT(*) FROM comments WHERE book_isbn = ?", "9780441013593"))
	assert.Zero(t, countRows(t, db, "SELECT COUNT(*) FROM ratings WHERE book_isbn = ?", "9780441013593"))
	assert.Zero(t, countRows(t, db, "SELECT COUNT(*) FROM folders_to_books WHERE book_isbn = ?", "9780441013593"))

	// the other book is untouched
	assert.Equal(t, 1, countRows(t, db, "SELECT COUNT(*) FROM books WHERE isbn = ?", "9780553283686"))
	assert.Equal(t, 1, countRows(t, db, "SELECT COUNT(*) FROM comments WHERE book_isbn = ?", "9780553283686"))
	assert.Equal(t, 1, countRows(t, db, "SELECT COUNT(*) FROM folders_to_books WHERE book_isbn = ?", "9780553283686"))

	assert.ErrorIs(t, deleteBook(ctx, db, "9780441013593"), ErrBookNotFound)
}
