package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"librarydesk/internal/service"
)

// LoanHandler exposes the loan ledger.
type LoanHandler struct {
	ledger service.LedgerService
}

// NewLoanHandler creates a new loan handler.
func NewLoanHandler(ledger service.LedgerService) *LoanHandler {
	return &LoanHandler{ledger: ledger}
}

// LoanRequest names the book to borrow or return.
type LoanRequest struct {
	BookID int64 `json:"book_id" validate:"required,gt=0"`
}

// Borrow godoc
// @Summary Borrow a book
// @Tags loans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body LoanRequest true "Book to borrow"
// @Success 201 {object} model.Loan
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Failure 503 {object} errors.ErrorResponse
// @Router /loans/borrow [post]
func (h *LoanHandler) Borrow(c echo.Context) error {
	claims, err := currentClaims(c)
	if err != nil {
		return err
	}
	var req LoanRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	loan, err := h.ledger.Borrow(c.Request().Context(), claims.Username, req.BookID)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusCreated, loan)
}

// Return godoc
// @Summary Return a borrowed book
// @Tags loans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body LoanRequest true "Book to return"
// @Success 200 {object} model.Loan
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 503 {object} errors.ErrorResponse
// @Router /loans/return [post]
func (h *LoanHandler) Return(c echo.Context) error {
	claims, err := currentClaims(c)
	if err != nil {
		return err
	}
	var req LoanRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	loan, err := h.ledger.Return(c.Request().Context(), claims.Username, req.BookID)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, loan)
}

// MyLoans godoc
// @Summary List my open loans
// @Description Each loan is tagged normal or overdue.
// @Tags loans
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.LoanView
// @Router /loans [get]
func (h *LoanHandler) MyLoans(c echo.Context) error {
	claims, err := currentClaims(c)
	if err != nil {
		return err
	}
	views, err := h.ledger.Loans(c.Request().Context(), claims.Username)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, views)
}

// History godoc
// @Summary List all my loans including returned ones
// @Tags loans
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.LoanView
// @Router /loans/history [get]
func (h *LoanHandler) History(c echo.Context) error {
	claims, err := currentClaims(c)
	if err != nil {
		return err
	}
	views, err := h.ledger.History(c.Request().Context(), claims.Username)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, views)
}

// Eligibility godoc
// @Summary Check whether I may borrow now
// @Tags loans
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.Eligibility
// @Router /loans/eligibility [get]
func (h *LoanHandler) Eligibility(c echo.Context) error {
	claims, err := currentClaims(c)
	if err != nil {
		return err
	}
	el, err := h.ledger.Eligibility(c.Request().Context(), claims.Username)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, el)
}

// Overdue godoc
// @Summary List every overdue loan
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.LoanView
// @Failure 403 {object} errors.ErrorResponse
// @Router /admin/loans/overdue [get]
func (h *LoanHandler) Overdue(c echo.Context) error {
	views, err := h.ledger.Overdue(c.Request().Context())
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, views)
}

// UserLoans godoc
// @Summary List a user's open loans
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param username path string true "Username"
// @Success 200 {array} model.LoanView
// @Failure 404 {object} errors.ErrorResponse
// @Router /admin/users/{username}/loans [get]
func (h *LoanHandler) UserLoans(c echo.Context) error {
	views, err := h.ledger.Loans(c.Request().Context(), c.Param("username"))
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, views)
}
