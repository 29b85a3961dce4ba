package bookden

import "time"

// API essential types

type User struct {
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	IsAdmin   bool      `json:"is_admin"`
	CreatedAt time.Time `json:"created_at"`
}

type Book struct {
	ISBN          string `json:"isbn"`
	Title         string `json:"title"`
	Author        string `json:"author"`
	Publisher     string `json:"publisher"`
	PageCount     int    `json:"page_count"`
	YearPublished int    `json:"year_published"`
	Genre         string `json:"genre"`
}

type Folder struct {
	ID            string `json:"id"`
	OwnerUsername string `json:"owner_username"`
	Name          string `json:"name"`
}

func userFromRow(row UserRow) User {
	return User{
		Username:  row.Username,
		Email:     row.Email,
		IsAdmin:   row.IsAdmin,
		CreatedAt: row.CreatedAt,
	}
}

func bookFromRow(row BookRow) Book {
	return Book(row)
}

func booksFromRows(rows []BookRow) []Book {
	books := make([]Book, 0, len(rows))
	for _, row := range rows {
		books = append(books, bookFromRow(row))
	}
	return books
}

func folderFromRow(row FolderRow) Folder {
	return Folder{
		ID:            row.ID,
		OwnerUsername: row.OwnerUsername,
		Name:          row.Name,
	}
}

// API request types

type CreateUserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Admin    int    `json:"admin"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type CreateBookRequest struct {
	ISBN          string `json:"isbn"`
	Title         string `json:"title"`
	Author        string `json:"author"`
	Publisher     string `json:"publisher"`
	PageCount     int    `json:"page_count"`
	YearPublished int    `json:"year_published"`
	Genre         string `json:"genre"`
}

type AddCommentRequest struct {
	BookISBN  string `json:"book_isbn"`
	Username  string `json:"username"`
	Content   string `json:"content"`
	Timestamp int64  `json:"timestamp"`
}

type CreateFolderRequest struct {
	Username string `json:"username"`
	Folder   string `json:"folder"`
}

type DeleteFolderRequest struct {
	Username string `json:"username"`
	Folder   string `json:"folder"`
}

type AddBookToFolderRequest struct {
	Username string `json:"username"`
	Folder   string `json:"folder"`
	BookISBN string `json:"book_isbn"`
}

type RemoveBookFromFolderRequest struct {
	Username string `json:"username"`
	FolderID string `json:"folder_id"`
	BookISBN string `json:"book_isbn"`
}

type MoveBookRequest struct {
	Username     string `json:"username"`
	ISBN         string `json:"isbn"`
	FromFolderID string `json:"from_folder_id"`
	ToFolderID   string `json:"to_folder_id"`
}

type AddRatingRequest struct {
	BookISBN string `json:"book_isbn"`
	Username string `json:"username"`
	Rating   int    `json:"rating"`
}

// API response types

type BasicResponse struct {
	Result bool    `json:"result"`
	Status int     `json:"status"`
	Error  *string `json:"error,omitempty"`
}

type TokenResponse struct {
	Token string `json:"token"`
}

type CreateFolderResponse struct {
	BasicResponse
	FolderID string `json:"folder_id"`
}

type AddCommentResponse struct {
	BasicResponse
	CommentID string `json:"comment_id"`
}

type RatingStatsResponse struct {
	Rating  int     `json:"rating"`
	Votes   int     `json:"votes"`
	Average float64 `json:"average"`
}
