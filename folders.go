package bookden

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

func getFolderByName(ctx context.Context, db connOrTx, owner, name string) (*FolderRow, error) {
	var row FolderRow
	if err := db.GetContext(
		ctx,
		&row,
		"SELECT * FROM folders WHERE `owner_username` = ? AND `name` = ?",
		owner, name,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error Get folder by owner_username=%s, name=%s: %w", owner, name, err)
	}
	return &row, nil
}

func getFolderByID(ctx context.Context, db connOrTx, owner, id string) (*FolderRow, error) {
	var row FolderRow
	if err := db.GetContext(
		ctx,
		&row,
		"SELECT * FROM folders WHERE `id` = ? AND `owner_username` = ?",
		id, owner,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error Get folder by id=%s, owner_username=%s: %w", id, owner, err)
	}
	return &row, nil
}

func getFolderEntry(ctx context.Context, db connOrTx, folderID, isbn string) (*FolderEntryRow, error) {
	var row FolderEntryRow
	if err := db.GetContext(
		ctx,
		&row,
		"SELECT * FROM folders_to_books WHERE `folder_id` = ? AND `book_isbn` = ?",
		folderID, isbn,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error Get folder entry by folder_id=%s, book_isbn=%s: %w", folderID, isbn, err)
	}
	return &row, nil
}

func insertFolderEntry(ctx context.Context, db connOrTx, folderID, isbn string) error {
	if _, err := db.ExecContext(
		ctx,
		"INSERT INTO folders_to_books (`folder_id`, `book_isbn`) VALUES (?, ?)",
		folderID, isbn,
	); err != nil {
		if isDuplicateEntry(err) {
			return ErrBookAlreadyInFolder
		}
		return fmt.Errorf("error Insert folder entry by folder_id=%s, book_isbn=%s: %w", folderID, isbn, err)
	}
	return nil
}

// createFolder makes a new folder for owner. Folder names are unique per
// owner, not globally.
func createFolder(ctx context.Context, db connOrTx, owner, name string, createdAt time.Time) (*FolderRow, error) {
	existing, err := getFolderByName(ctx, db, owner, name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrFolderExists
	}

	row := FolderRow{
		ID:            newID(),
		OwnerUsername: owner,
		Name:          name,
		CreatedAt:     createdAt,
	}
	if _, err := db.ExecContext(
		ctx,
		"INSERT INTO folders (`id`, `owner_username`, `name`, `created_at`) VALUES (?, ?, ?, ?)",
		row.ID, row.OwnerUsername, row.Name, row.CreatedAt,
	); err != nil {
		if isDuplicateEntry(err) {
			return nil, ErrFolderExists
		}
		return nil, fmt.Errorf("error Insert folder by owner_username=%s, name=%s: %w", owner, name, err)
	}
	return &row, nil
}

// deleteFolder removes the folder's entries first, then the folder itself.
func deleteFolder(ctx context.Context, db connOrTx, owner, name string) error {
	folder, err := getFolderByName(ctx, db, owner, name)
	if err != nil {
		return err
	}
	if folder == nil {
		return ErrFolderNotFound
	}

	if _, err := db.ExecContext(
		ctx,
		"DELETE FROM folders_to_books WHERE `folder_id` = ?",
		folder.ID,
	); err != nil {
		return fmt.Errorf("error Delete folders_to_books by folder_id=%s: %w", folder.ID, err)
	}
	if _, err := db.ExecContext(
		ctx,
		"DELETE FROM folders WHERE `id` = ?",
		folder.ID,
	); err != nil {
		return fmt.Errorf("error Delete folder by id=%s: %w", folder.ID, err)
	}
	return nil
}

func listFolders(ctx context.Context, db connOrTx, owner string) ([]FolderRow, error) {
	exists, err := userExists(ctx, db, owner)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrUserNotFound
	}

	folders := []FolderRow{}
	if err := db.SelectContext(
		ctx,
		&folders,
		"SELECT * FROM folders WHERE `owner_username` = ? ORDER BY `name`",
		owner,
	); err != nil {
		return nil, fmt.Errorf("error Select folders by owner_username=%s: %w", owner, err)
	}
	return folders, nil
}

func addBookToFolder(ctx context.Context, db connOrTx, owner, folderName, isbn string) error {
	exists, err := userExists(ctx, db, owner)
	if err != nil {
		return err
	}
	if !exists {
		return ErrUserNotFound
	}

	folder, err := getFolderByName(ctx, db, owner, folderName)
	if err != nil {
		return err
	}
	if folder == nil {
		return ErrFolderNotFound
	}

	book, err := getBookByISBN(ctx, db, isbn)
	if err != nil {
		return err
	}
	if book == nil {
		return ErrBookNotFound
	}

	entry, err := getFolderEntry(ctx, db, folder.ID, isbn)
	if err != nil {
		return err
	}
	if entry != nil {
		return ErrBookAlreadyInFolder
	}

	return insertFolderEntry(ctx, db, folder.ID, isbn)
}

func removeBookFromFolder(ctx context.Context, db connOrTx, owner, folderID, isbn string) error {
	exists, err := userExists(ctx, db, owner)
	if err != nil {
		return err
	}
	if !exists {
		return ErrUserNotFound
	}

	folder, err := getFolderByID(ctx, db, owner, folderID)
	if err != nil {
		return err
	}
	if folder == nil {
		return ErrFolderNotFound
	}

	entry, err := getFolderEntry(ctx, db, folder.ID, isbn)
	if err != nil {
		return err
	}
	if entry == nil {
		return ErrEntryNotFound
	}

	if _, err := db.ExecContext(
		ctx,
		"DELETE FROM folders_to_books WHERE `folder_id` = ? AND `book_isbn` = ?",
		folder.ID, isbn,
	); err != nil {
		return fmt.Errorf("error Delete folder entry by folder_id=%s, book_isbn=%s: %w", folder.ID, isbn, err)
	}
	return nil
}

// listFolderBooks returns the books in the folder, empty when the folder has
// no entries.
func listFolderBooks(ctx context.Context, db connOrTx, owner, folderName string) ([]BookRow, error) {
	exists, err := userExists(ctx, db, owner)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrUserNotFound
	}

	folder, err := getFolderByName(ctx, db, owner, folderName)
	if err != nil {
		return nil, err
	}
	if folder == nil {
		return nil, ErrFolderNotFound
	}

	books := []BookRow{}
	if err := db.SelectContext(
		ctx,
		&books,
		"SELECT b.* FROM books b JOIN folders_to_books fb ON fb.book_isbn = b.isbn WHERE fb.folder_id = ? ORDER BY b.title, b.isbn",
		folder.ID,
	); err != nil {
		return nil, fmt.Errorf("error Select folder books by folder_id=%s: %w", folder.ID, err)
	}
	return books, nil
}

// moveBook moves a membership between two folders of the same owner. The
// insert into the destination runs before the delete from the source, with no
// surrounding transaction: an interruption between the steps leaves the book
// in both folders rather than in neither.
func moveBook(ctx context.Context, db connOrTx, owner, isbn, fromFolderID, toFolderID string) error {
	exists, err := userExists(ctx, db, owner)
	if err != nil {
		return err
	}
	if !exists {
		return ErrUserNotFound
	}

	from, err := getFolderByID(ctx, db, owner, fromFolderID)
	if err != nil {
		return err
	}
	if from == nil {
		return ErrSourceFolderNotFound
	}

	to, err := getFolderByID(ctx, db, owner, toFolderID)
	if err != nil {
		return err
	}
	if to == nil {
		return ErrDestinationFolderNotFound
	}

	book, err := getBookByISBN(ctx, db, isbn)
	if err != nil {
		return err
	}
	if book == nil {
		return ErrBookNotFound
	}

	entry, err := getFolderEntry(ctx, db, from.ID, isbn)
	if err != nil {
		return err
	}
	if entry == nil {
		return ErrEntryNotFound
	}

	destEntry, err := getFolderEntry(ctx, db, to.ID, isbn)
	if err != nil {
		return err
	}
	if destEntry == nil {
		if err := insertFolderEntry(ctx, db, to.ID, isbn); err != nil {
			return err
		}
	}

	if _, err := db.ExecContext(
		ctx,
		"DELETE FROM folders_to_books WHERE `folder_id` = ? AND `book_isbn` = ?",
		from.ID, isbn,
	); err != nil {
		return fmt.Errorf("error Delete folder entry by folder_id=%s, book_isbn=%s: %w", from.ID, isbn, err)
	}
	return nil
}
