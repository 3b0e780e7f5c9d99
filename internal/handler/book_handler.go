package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"librarydesk/internal/errors"
	"librarydesk/internal/model"
	"librarydesk/internal/service"
)

// BookHandler serves the catalog.
type BookHandler struct {
	catalog service.CatalogService
}

// NewBookHandler creates a new book handler.
func NewBookHandler(catalog service.CatalogService) *BookHandler {
	return &BookHandler{catalog: catalog}
}

// CreateBookRequest represents a new catalog entry. TotalCopies of zero means the default of 3.
type CreateBookRequest struct {
	Title       string `json:"title" validate:"required,max=255"`
	Author      string `json:"author" validate:"required,max=255"`
	Publisher   string `json:"publisher" validate:"max=255"`
	PublishDate string `json:"publish_date" validate:"omitempty,datetime=2006-01-02"`
	Price       string `json:"price" validate:"omitempty,numeric"`
	TotalCopies int    `json:"total_copies" validate:"gte=0"`
	Category    string `json:"category" validate:"max=100"`
	ISBN        string `json:"isbn" validate:"max=20"`
}

// UpdateBookRequest carries the mutable catalog fields. Omitted fields are unchanged.
type UpdateBookRequest struct {
	Title       *string `json:"title"`
	Author      *string `json:"author" validate:"omitempty,max=255"`
	Publisher   *string `json:"publisher" validate:"omitempty,max=255"`
	PublishDate *string `json:"publish_date" validate:"omitempty,datetime=2006-01-02"`
	Price       *string `json:"price" validate:"omitempty,numeric"`
}

// AdminBookView is a book with the number of copies currently out on loan.
type AdminBookView struct {
	model.Book
	Borrowed int `json:"borrowed"`
}

func parsePrice(v string) (decimal.Decimal, error) {
	if v == "" {
		return decimal.Zero, nil
	}
	p, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.Zero, echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid price",
			Code:  "VALIDATION_ERROR",
		})
	}
	return p, nil
}

// ListBooks godoc
// @Summary List books
// @Description Returns books with at least one copy available, or every book with all=true.
// @Tags books
// @Produce json
// @Security BearerAuth
// @Param all query bool false "Include books with no copies available"
// @Success 200 {array} model.Book
// @Failure 401 {object} errors.ErrorResponse
// @Failure 503 {object} errors.ErrorResponse
// @Router /books [get]
func (h *BookHandler) ListBooks(c echo.Context) error {
	var (
		books []model.Book
		err   error
	)
	if c.QueryParam("all") == "true" {
		books, err = h.catalog.ListBooks(c.Request().Context())
	} else {
		books, err = h.catalog.ListAvailable(c.Request().Context())
	}
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, books)
}

// Search godoc
// @Summary Search books
// @Description Matches the keyword against id, title, author and publisher.
// @Tags books
// @Produce json
// @Security BearerAuth
// @Param q query string false "Keyword"
// @Success 200 {array} model.Book
// @Failure 401 {object} errors.ErrorResponse
// @Failure 503 {object} errors.ErrorResponse
// @Router /books/search [get]
func (h *BookHandler) Search(c echo.Context) error {
	books, err := h.catalog.Search(c.Request().Context(), c.QueryParam("q"))
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, books)
}

// GetBook godoc
// @Summary Get book by ID
// @Tags books
// @Produce json
// @Security BearerAuth
// @Param id path int true "Book ID"
// @Success 200 {object} model.Book
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /books/{id} [get]
func (h *BookHandler) GetBook(c echo.Context) error {
	id, err := bookIDParam(c)
	if err != nil {
		return err
	}
	book, err := h.catalog.GetBook(c.Request().Context(), id)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, book)
}

// ListAllBooks godoc
// @Summary List every book with borrowed counts
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {array} AdminBookView
// @Failure 403 {object} errors.ErrorResponse
// @Router /admin/books [get]
func (h *BookHandler) ListAllBooks(c echo.Context) error {
	books, err := h.catalog.ListBooks(c.Request().Context())
	if err != nil {
		return mapError(err)
	}
	views := make([]AdminBookView, 0, len(books))
	for _, b := range books {
		views = append(views, AdminBookView{Book: b, Borrowed: b.Borrowed()})
	}
	return c.JSON(http.StatusOK, views)
}

// CreateBook godoc
// @Summary Add a book to the catalog
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateBookRequest true "Book data"
// @Success 201 {object} model.Book
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /admin/books [post]
func (h *BookHandler) CreateBook(c echo.Context) error {
	var req CreateBookRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	price, err := parsePrice(req.Price)
	if err != nil {
		return err
	}

	book, err := h.catalog.AddBook(c.Request().Context(), &model.Book{
		Title:       req.Title,
		Author:      req.Author,
		Publisher:   req.Publisher,
		PublishDate: req.PublishDate,
		Price:       price,
		TotalCopies: req.TotalCopies,
		Category:    req.Category,
		ISBN:        req.ISBN,
	})
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusCreated, book)
}

// UpdateBook godoc
// @Summary Modify a book
// @Description Author, publisher, publish date and price may change. The title is fixed.
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Book ID"
// @Param request body UpdateBookRequest true "Fields to change"
// @Success 200 {object} model.Book
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /admin/books/{id} [put]
func (h *BookHandler) UpdateBook(c echo.Context) error {
	id, err := bookIDParam(c)
	if err != nil {
		return err
	}
	var req UpdateBookRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if req.Title != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "title cannot be changed",
			Code:  "VALIDATION_ERROR",
		})
	}

	upd := model.BookUpdate{
		Author:      req.Author,
		Publisher:   req.Publisher,
		PublishDate: req.PublishDate,
	}
	if req.Price != nil {
		if *req.Price == "" {
			return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
				Error: "price cannot be empty",
				Code:  "VALIDATION_ERROR",
			})
		}
		price, err := parsePrice(*req.Price)
		if err != nil {
			return err
		}
		upd.Price = &price
	}

	book, err := h.catalog.ModifyBook(c.Request().Context(), id, upd)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, book)
}

// DeleteBook godoc
// @Summary Delete a book and its loan records
// @Tags admin
// @Security BearerAuth
// @Param id path int true "Book ID"
// @Success 204
// @Failure 404 {object} errors.ErrorResponse
// @Router /admin/books/{id} [delete]
func (h *BookHandler) DeleteBook(c echo.Context) error {
	id, err := bookIDParam(c)
	if err != nil {
		return err
	}
	if err := h.catalog.DeleteBook(c.Request().Context(), id); err != nil {
		return mapError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
