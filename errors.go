package bookden

import "errors"

// Every service operation fails with one of these. Handlers dispatch on them
// with errors.Is; anything else is a server error.
var (
	ErrUserNotFound  = errors.New("user not found")
	ErrUserExists    = errors.New("user already exists")
	ErrWrongPassword = errors.New("wrong password")

	ErrBookNotFound = errors.New("book not found")
	ErrBookExists   = errors.New("book already exists")

	ErrFolderNotFound            = errors.New("folder not found")
	ErrFolderExists              = errors.New("folder already exists")
	ErrSourceFolderNotFound      = errors.New("source folder not found")
	ErrDestinationFolderNotFound = errors.New("destination folder not found")
	ErrEntryNotFound             = errors.New("book not in folder")
	ErrBookAlreadyInFolder       = errors.New("book already in folder")

	ErrCommentNotFound = errors.New("comment not found")
	ErrAlreadyRated    = errors.New("book already rated by user")
	ErrNoRatings       = errors.New("no ratings for book")
)
