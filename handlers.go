package bookden

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/labstack/echo/v4"
)

// Server holds the request-scoped collaborators: the store pool and the token
// service. Handlers acquire a connection per request and release it on every
// exit path.
type Server struct {
	db     *sqlx.DB
	tokens *TokenService
}

func NewServer(db *sqlx.DB, tokens *TokenService) *Server {
	return &Server{db: db, tokens: tokens}
}

func (s *Server) RegisterRoutes(e *echo.Echo) {
	e.POST("/users/", s.createUserHandler)
	e.GET("/user/:username", s.getUserHandler)
	e.DELETE("/user/:username", s.deleteUserHandler)
	e.GET("/users/login/", s.loginHandler)
	e.GET("/users/token/refresh/:token", s.refreshTokenHandler)

	e.POST("/book/", s.createBookHandler)
	e.GET("/books/", s.listBooksHandler)
	e.GET("/book/:isbn", s.getBookHandler)
	e.DELETE("/book/:isbn", s.deleteBookHandler)

	e.POST("/comments/", s.addCommentHandler)
	e.DELETE("/comments/:id", s.deleteCommentHandler)

	e.POST("/folder/create/", s.createFolderHandler)
	e.DELETE("/folder/delete/", s.deleteFolderHandler)
	e.GET("/folder/get/:username", s.listFoldersHandler)
	e.POST("/folder/book/add/", s.addBookToFolderHandler)
	e.DELETE("/folder/book/delete/", s.removeBookFromFolderHandler)
	e.GET("/folder/book/get/:folder/:username", s.listFolderBooksHandler)
	e.POST("/folder/book/move/", s.moveBookHandler)

	e.POST("/ratings/", s.addRatingHandler)
	e.GET("/ratings/:isbn", s.averageRatingHandler)
}

func errorResponse(c echo.Context, code int, message string) error {
	c.Logger().Debugf("error: status=%d, message=%s", code, message)

	body := BasicResponse{
		Result: false,
		Status: code,
		Error:  &message,
	}
	if err := c.JSON(code, body); err != nil {
		return fmt.Errorf("error returns JSON at errorResponse: %w", err)
	}
	return nil
}

func okResponse(c echo.Context) error {
	return c.JSON(http.StatusOK, BasicResponse{Result: true, Status: 200})
}

// POST /users/

func (s *Server) createUserHandler(c echo.Context) error {
	var req CreateUserRequest
	if err := c.Bind(&req); err != nil {
		c.Logger().Errorf("error Bind request to CreateUserRequest: %s", err)
		return errorResponse(c, 500, "failed to create user")
	}
	if req.Username == "" || 25 < len(req.Username) {
		return errorResponse(c, 400, "bad username")
	}
	if req.Password == "" {
		return errorResponse(c, 400, "bad password")
	}

	ctx := c.Request().Context()
	conn, err := s.db.Connx(ctx)
	if err != nil {
		c.Logger().Errorf("error db.Connx: %s", err)
		return errorResponse(c, 500, "failed to create user")
	}
	defer conn.Close()

	if err := createUser(ctx, conn, req.Username, req.Email, req.Password, req.Admin != 0, time.Now()); err != nil {
		if errors.Is(err, ErrUserExists) {
			return errorResponse(c, 409, "user already exists")
		}
		c.Logger().Errorf("error createUser: %s", err)
		return errorResponse(c, 500, "failed to create user")
	}

	return c.JSON(http.StatusCreated, BasicResponse{Result: true, Status: 201})
}

// GET /user/:username

func (s *Server) getUserHandler(c echo.Context) error {
	username := c.Param("username")

	ctx := c.Request().Context()
	conn, err := s.db.Connx(ctx)
	if err != nil {
		c.Logger().Errorf("error db.Connx: %s", err)
		return errorResponse(c, 500, "failed to fetch user")
	}
	defer conn.Close()

	user, err := getUserByUsername(ctx, conn, username)
	if err != nil {
		c.Logger().Errorf("error getUserByUsername: %s", err)
		return errorResponse(c, 500, "failed to fetch user")
	}
	if user == nil {
		return errorResponse(c, 404, "user not found")
	}

	return c.JSON(http.StatusOK, userFromRow(*user))
}

// DELETE /user/:username

func (s *Server) deleteUserHandler(c echo.Context) error {
	username := c.Param("username")

	ctx := c.Request().Context()
	conn, err := s.db.Connx(ctx)
	if err != nil {
		c.Logger().Errorf("error db.Connx: %s", err)
		return errorResponse(c, 500, "failed to delete user")
	}
	defer conn.Close()

	tx, err := conn.BeginTxx(ctx, nil)
	if err != nil {
		c.Logger().Errorf("error conn.BeginTxx: %s", err)
		return errorResponse(c, 500, "failed to delete user")
	}
	if err := deleteUser(ctx, tx, username); err != nil {
		tx.Rollback()
		if errors.Is(err, ErrUserNotFound) {
			return errorResponse(c, 404, "user not found")
		}
		c.Logger().Errorf("error deleteUser: %s", err)
		return errorResponse(c, 500, "failed to delete user")
	}
	if err := tx.Commit(); err != nil {
		c.Logger().Errorf("error tx.Commit: %s", err)
		return errorResponse(c, 500, "failed to delete user")
	}

	return okResponse(c)
}

// GET /users/login/

func (s *Server) loginHandler(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		c.Logger().Errorf("error Bind request to LoginRequest: %s", err)
		return errorResponse(c, 500, "failed to login (server error)")
	}

	ctx := c.Request().Context()
	conn, err := s.db.Connx(ctx)
	if err != nil {
		c.Logger().Errorf("error db.Connx: %s", err)
		return errorResponse(c, 500, "failed to login (server error)")
	}
	defer conn.Close()

	user, err := authenticateUser(ctx, conn, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) || errors.Is(err, ErrWrongPassword) {
			return errorResponse(c, 404, "username or password is incorrect")
		}
		c.Logger().Errorf("error authenticateUser: %s", err)
		return errorResponse(c, 500, "failed to login (server error)")
	}

	token, err := s.tokens.Issue(user.Username, user.IsAdmin)
	if err != nil {
		c.Logger().Errorf("error tokens.Issue: %s", err)
		return errorResponse(c, 500, "failed to login (server error)")
	}

	return c.JSON(http.StatusOK, TokenResponse{Token: token})
}

// GET /users/token/refresh/:token

func (s *Server) refreshTokenHandler(c echo.Context) error {
	fresh, status, err := s.tokens.Refresh(c.Param("token"))
	if err != nil {
		c.Logger().Errorf("error tokens.Refresh: %s", err)
		return errorResponse(c, 500, "failed to refresh token")
	}
	switch status {
	case TokenValid:
		return c.JSON(http.StatusOK, TokenResponse{Token: fresh})
	case TokenExpired:
		c.Logger().Debugf("refresh of expired token")
	default:
		c.Logger().Debugf("refresh of invalid token")
	}
	return c.JSON(http.StatusOK, struct{}{})
}

// POST /book/

func (s *Server) createBookHandler(c echo.Context) error {
	var req CreateBookRequest
	if err := c.Bind(&req); err != nil {
		c.Logger().Errorf("error Bind request to CreateBookRequest: %s", err)
		return errorResponse(c, 500, "failed to create book")
	}
	if req.ISBN == "" || 14 < len(req.ISBN) {
		return errorResponse(c, 400, "bad isbn")
	}

	ctx := c.Request().Context()
	conn, err := s.db.Connx(ctx)
	if err != nil {
		c.Logger().Errorf("error db.Connx: %s", err)
		return errorResponse(c, 500, "failed to create book")
	}
	defer conn.Close()

	if err := createBook(ctx, conn, BookRow(req)); err != nil {
		if errors.Is(err, ErrBookExists) {
			return errorResponse(c, 409, "book already exists")
		}
		c.Logger().Errorf("error createBook: %s", err)
		return errorResponse(c, 500, "failed to create book")
	}

	return okResponse(c)
}

// GET /books/?skip&limit

func (s *Server) listBooksHandler(c echo.Context) error {
	skip := 0
	if v := c.QueryParam("skip"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return errorResponse(c, 400, "bad skip")
		}
		skip = n
	}
	limit := 50
	if v := c.QueryParam("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return errorResponse(c, 400, "bad limit")
		}
		limit = n
	}

	ctx := c.Request().Context()
	conn, err := s.db.Connx(ctx)
	if err != nil {
		c.Logger().Errorf("error db.Connx: %s", err)
		return errorResponse(c, 500, "failed to list books")
	}
	defer conn.Close()

	books, err := listBooks(ctx, conn, skip, limit)
	if err != nil {
		c.Logger().Errorf("error listBooks: %s", err)
		return errorResponse(c, 500, "failed to list books")
	}

	return c.JSON(http.StatusOK, booksFromRows(books))
}

// GET /book/:isbn

func (s *Server) getBookHandler(c echo.Context) error {
	isbn := c.Param("isbn")

	ctx := c.Request().Context()
	conn, err := s.db.Connx(ctx)
	if err != nil {
		c.Logger().Errorf("error db.Connx: %s", err)
		return errorResponse(c, 500, "failed to fetch book")
	}
	defer conn.Close()

	book, err := getBookByISBN(ctx, conn, isbn)
	if err != nil {
		c.Logger().Errorf("error getBookByISBN: %s", err)
		return errorResponse(c, 500, "failed to fetch book")
	}
	if book == nil {
		return c.JSON(http.StatusOK, nil)
	}

	return c.JSON(http.StatusOK, bookFromRow(*book))
}

// DELETE /book/:isbn

func (s *Server) deleteBookHandler(c echo.Context) error {
	isbn := c.Param("isbn")

	ctx := c.Request().Context()
	conn, err := s.db.Connx(ctx)
	if err != nil {
		c.Logger().Errorf("error db.Connx: %s", err)
		return errorResponse(c, 500, "failed to delete book")
	}
	defer conn.Close()

	tx, err := conn.BeginTxx(ctx, nil)
	if err != nil {
		c.Logger().Errorf("error conn.BeginTxx: %s", err)
		return errorResponse(c, 500, "failed to delete book")
	}
	if err := deleteBook(ctx, tx, isbn); err != nil {
		tx.Rollback()
		if errors.Is(err, ErrBookNotFound) {
			return errorResponse(c, 404, "book not found")
		}
		c.Logger().Errorf("error deleteBook: %s", err)
		return errorResponse(c, 500, "failed to delete book")
	}
	if err := tx.Commit(); err != nil {
		c.Logger().Errorf("error tx.Commit: %s", err)
		return errorResponse(c, 500, "failed to delete book")
	}

	return okResponse(c)
}

// POST /comments/

func (s *Server) addCommentHandler(c echo.Context) error {
	var req AddCommentRequest
	if err := c.Bind(&req); err != nil {
		c.Logger().Errorf("error Bind request to AddCommentRequest: %s", err)
		return errorResponse(c, 500, "failed to add comment")
	}

	createdAt := time.Now()
	if req.Timestamp > 0 {
		createdAt = time.Unix(req.Timestamp, 0)
	}

	ctx := c.Request().Context()
	conn, err := s.db.Connx(ctx)
	if err != nil {
		c.Logger().Errorf("error db.Connx: %s", err)
		return errorResponse(c, 500, "failed to add comment")
	}
	defer conn.Close()

	comment, err := addComment(ctx, conn, req.BookISBN, req.Username, req.Content, createdAt)
	if err != nil {
		if errors.Is(err, ErrBookNotFound) {
			return errorResponse(c, 404, "book not found")
		}
		if errors.Is(err, ErrUserNotFound) {
			return errorResponse(c, 404, "user not found")
		}
		c.Logger().Errorf("error addComment: %s", err)
		return errorResponse(c, 500, "failed to add comment")
	}

	return c.JSON(http.StatusOK, AddCommentResponse{
		BasicResponse: BasicResponse{Result: true, Status: 200},
		CommentID:     comment.ID,
	})
}

// DELETE /comments/:id

func (s *Server) deleteCommentHandler(c echo.Context) error {
	id := c.Param("id")

	ctx := c.Request().Context()
	conn, err := s.db.Connx(ctx)
	if err != nil {
		c.Logger().Errorf("error db.Connx: %s", err)
		return errorResponse(c, 500, "failed to delete comment")
	}
	defer conn.Close()

	if err := deleteComment(ctx, conn, id); err != nil {
		if errors.Is(err, ErrCommentNotFound) {
			return errorResponse(c, 404, "comment not found")
		}
		c.Logger().Errorf("error deleteComment: %s", err)
		return errorResponse(c, 500, "failed to delete comment")
	}

	return okResponse(c)
}

// POST /folder/create/

func (s *Server) createFolderHandler(c echo.Context) error {
	var req CreateFolderRequest
	if err := c.Bind(&req); err != nil {
		c.Logger().Errorf("error Bind request to CreateFolderRequest: %s", err)
		return errorResponse(c, 500, "failed to create folder")
	}
	if req.Folder == "" {
		return errorResponse(c, 400, "bad folder name")
	}

	ctx := c.Request().Context()
	conn, err := s.db.Connx(ctx)
	if err != nil {
		c.Logger().Errorf("error db.Connx: %s", err)
		return errorResponse(c, 500, "failed to create folder")
	}
	defer conn.Close()

	folder, err := createFolder(ctx, conn, req.Username, req.Folder, time.Now())
	if err != nil {
		if errors.Is(err, ErrFolderExists) {
			return errorResponse(c, 409, "folder already exists")
		}
		c.Logger().Errorf("error createFolder: %s", err)
		return errorResponse(c, 500, "failed to create folder")
	}

	return c.JSON(http.StatusOK, CreateFolderResponse{
		BasicResponse: BasicResponse{Result: true, Status: 200},
		FolderID:      folder.ID,
	})
}

// DELETE /folder/delete/

func (s *Server) deleteFolderHandler(c echo.Context) error {
	var req DeleteFolderRequest
	if err := c.Bind(&req); err != nil {
		c.Logger().Errorf("error Bind request to DeleteFolderRequest: %s", err)
		return errorResponse(c, 500, "failed to delete folder")
	}

	ctx := c.Request().Context()
	conn, err := s.db.Connx(ctx)
	if err != nil {
		c.Logger().Errorf("error db.Connx: %s", err)
		return errorResponse(c, 500, "failed to delete folder")
	}
	defer conn.Close()

	tx, err := conn.BeginTxx(ctx, nil)
	if err != nil {
		c.Logger().Errorf("error conn.BeginTxx: %s", err)
		return errorResponse(c, 500, "failed to delete folder")
	}
	if err := deleteFolder(ctx, tx, req.Username, req.Folder); err != nil {
		tx.Rollback()
		if errors.Is(err, ErrFolderNotFound) {
			return errorResponse(c, 404, "folder not found")
		}
		c.Logger().Errorf("error deleteFolder: %s", err)
		return errorResponse(c, 500, "failed to delete folder")
	}
	if err := tx.Commit(); err != nil {
		c.Logger().Errorf("error tx.Commit: %s", err)
		return errorResponse(c, 500, "failed to delete folder")
	}

	return okResponse(c)
}

// GET /folder/get/:username

func (s *Server) listFoldersHandler(c echo.Context) error {
	username := c.Param("username")

	ctx := c.Request().Context()
	conn, err := s.db.Connx(ctx)
	if err != nil {
		c.Logger().Errorf("error db.Connx: %s", err)
		return errorResponse(c, 500, "failed to list folders")
	}
	defer conn.Close()

	folders, err := listFolders(ctx, conn, username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return errorResponse(c, 404, "user not found")
		}
		c.Logger().Errorf("error listFolders: %s", err)
		return errorResponse(c, 500, "failed to list folders")
	}

	result := make([]Folder, 0, len(folders))
	for _, row := range folders {
		result = append(result, folderFromRow(row))
	}
	return c.JSON(http.StatusOK, result)
}

// POST /folder/book/add/

func (s *Server) addBookToFolderHandler(c echo.Context) error {
	var req AddBookToFolderRequest
	if err := c.Bind(&req); err != nil {
		c.Logger().Errorf("error Bind request to AddBookToFolderRequest: %s", err)
		return errorResponse(c, 500, "failed to add book to folder")
	}

	ctx := c.Request().Context()
	conn, err := s.db.Connx(ctx)
	if err != nil {
		c.Logger().Errorf("error db.Connx: %s", err)
		return errorResponse(c, 500, "failed to add book to folder")
	}
	defer conn.Close()

	if err := addBookToFolder(ctx, conn, req.Username, req.Folder, req.BookISBN); err != nil {
		switch {
		case errors.Is(err, ErrUserNotFound):
			return errorResponse(c, 404, "user not found")
		case errors.Is(err, ErrFolderNotFound):
			return errorResponse(c, 404, "folder not found")
		case errors.Is(err, ErrBookNotFound):
			return errorResponse(c, 404, "book not found")
		case errors.Is(err, ErrBookAlreadyInFolder):
			return errorResponse(c, 409, "book already in folder")
		}
		c.Logger().Errorf("error addBookToFolder: %s", err)
		return errorResponse(c, 500, "failed to add book to folder")
	}

	return okResponse(c)
}

// DELETE /folder/book/delete/

func (s *Server) removeBookFromFolderHandler(c echo.Context) error {
	var req RemoveBookFromFolderRequest
	if err := c.Bind(&req); err != nil {
		c.Logger().Errorf("error Bind request to RemoveBookFromFolderRequest: %s", err)
		return errorResponse(c, 500, "failed to remove book from folder")
	}

	ctx := c.Request().Context()
	conn, err := s.db.Connx(ctx)
	if err != nil {
		c.Logger().Errorf("error db.Connx: %s", err)
		return errorResponse(c, 500, "failed to remove book from folder")
	}
	defer conn.Close()

	if err := removeBookFromFolder(ctx, conn, req.Username, req.FolderID, req.BookISBN); err != nil {
		switch {
		case errors.Is(err, ErrUserNotFound):
			return errorResponse(c, 404, "user not found")
		case errors.Is(err, ErrFolderNotFound):
			return errorResponse(c, 404, "folder not found")
		case errors.Is(err, ErrEntryNotFound):
			return errorResponse(c, 404, "book not in folder")
		}
		c.Logger().Errorf("error removeBookFromFolder: %s", err)
		return errorResponse(c, 500, "failed to remove book from folder")
	}

	return okResponse(c)
}

// GET /folder/book/get/:folder/:username

func (s *Server) listFolderBooksHandler(c echo.Context) error {
	folderName := c.Param("folder")
	username := c.Param("username")

	ctx := c.Request().Context()
	conn, err := s.db.Connx(ctx)
	if err != nil {
		c.Logger().Errorf("error db.Connx: %s", err)
		return errorResponse(c, 500, "failed to list folder books")
	}
	defer conn.Close()

	books, err := listFolderBooks(ctx, conn, username, folderName)
	if err != nil {
		switch {
		case errors.Is(err, ErrUserNotFound):
			return errorResponse(c, 404, "user not found")
		case errors.Is(err, ErrFolderNotFound):
			return errorResponse(c, 404, "folder not found")
		}
		c.Logger().Errorf("error listFolderBooks: %s", err)
		return errorResponse(c, 500, "failed to list folder books")
	}

	return c.JSON(http.StatusOK, booksFromRows(books))
}

// POST /folder/book/move/

func (s *Server) moveBookHandler(c echo.Context) error {
	var req MoveBookRequest
	if err := c.Bind(&req); err != nil {
		c.Logger().Errorf("error Bind request to MoveBookRequest: %s", err)
		return errorResponse(c, 500, "failed to move book")
	}

	ctx := c.Request().Context()
	conn, err := s.db.Connx(ctx)
	if err != nil {
		c.Logger().Errorf("error db.Connx: %s", err)
		return errorResponse(c, 500, "failed to move book")
	}
	defer conn.Close()

	if err := moveBook(ctx, conn, req.Username, req.ISBN, req.FromFolderID, req.ToFolderID); err != nil {
		switch {
		case errors.Is(err, ErrUserNotFound):
			return errorResponse(c, 404, "user not found")
		case errors.Is(err, ErrSourceFolderNotFound):
			return errorResponse(c, 404, "source folder not found")
		case errors.Is(err, ErrDestinationFolderNotFound):
			return errorResponse(c, 404, "destination folder not found")
		case errors.Is(err, ErrBookNotFound):
			return errorResponse(c, 404, "book not found")
		case errors.Is(err, ErrEntryNotFound):
			return errorResponse(c, 404, "book not in source folder")
		}
		c.Logger().Errorf("error moveBook: %s", err)
		return errorResponse(c, 500, "failed to move book")
	}

	return okResponse(c)
}

// POST /ratings/

func (s *Server) addRatingHandler(c echo.Context) error {
	var req AddRatingRequest
	if err := c.Bind(&req); err != nil {
		c.Logger().Errorf("error Bind request to AddRatingRequest: %s", err)
		return errorResponse(c, 500, "failed to add rating")
	}

	ctx := c.Request().Context()
	conn, err := s.db.Connx(ctx)
	if err != nil {
		c.Logger().Errorf("error db.Connx: %s", err)
		return errorResponse(c, 500, "failed to add rating")
	}
	defer conn.Close()

	if _, err := addRating(ctx, conn, req.BookISBN, req.Username, req.Rating); err != nil {
		switch {
		case errors.Is(err, ErrUserNotFound):
			return errorResponse(c, 404, "user not found")
		case errors.Is(err, ErrBookNotFound):
			return errorResponse(c, 404, "book not found")
		case errors.Is(err, ErrAlreadyRated):
			return errorResponse(c, 409, "user already rated this book")
		}
		c.Logger().Errorf("error addRating: %s", err)
		return errorResponse(c, 500, "failed to add rating")
	}

	return okResponse(c)
}

// GET /ratings/:isbn

func (s *Server) averageRatingHandler(c echo.Context) error {
	isbn := c.Param("isbn")

	ctx := c.Request().Context()
	conn, err := s.db.Connx(ctx)
	if err != nil {
		c.Logger().Errorf("error db.Connx: %s", err)
		return errorResponse(c, 500, "failed to fetch ratings")
	}
	defer conn.Close()

	stats, err := averageRating(ctx, conn, isbn)
	if err != nil {
		if errors.Is(err, ErrNoRatings) {
			return errorResponse(c, 404, "no ratings exist for this book")
		}
		c.Logger().Errorf("error averageRating: %s", err)
		return errorResponse(c, 500, "failed to fetch ratings")
	}

	return c.JSON(http.StatusOK, RatingStatsResponse{
		Rating:  stats.Sum,
		Votes:   stats.Votes,
		Average: stats.Average,
	})
}
