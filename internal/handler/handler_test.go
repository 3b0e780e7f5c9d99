package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/mock"

	"librarydesk/internal/auth"
	"librarydesk/internal/model"
)

type testValidator struct {
	v *validator.Validate
}

func (tv *testValidator) Validate(i interface{}) error {
	return tv.v.Struct(i)
}

func newContext(method, path, body string, username string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = &testValidator{v: validator.New()}
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if username != "" {
		c.Set("user", &jwt.Token{Claims: &auth.Claims{Username: username, Role: model.RoleUser, Kind: auth.KindAccess}})
	}
	return c, rec
}

func httpStatus(err error) int {
	if he, ok := err.(*echo.HTTPError); ok {
		return he.Code
	}
	return http.StatusOK
}

// MockLedgerService is a mock implementation of service.LedgerService.
type MockLedgerService struct {
	mock.Mock
}

func (m *MockLedgerService) Borrow(ctx context.Context, username string, bookID int64) (*model.Loan, error) {
	args := m.Called(ctx, username, bookID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Loan), args.Error(1)
}

func (m *MockLedgerService) Return(ctx context.Context, username string, bookID int64) (*model.Loan, error) {
	args := m.Called(ctx, username, bookID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Loan), args.Error(1)
}

func (m *MockLedgerService) Loans(ctx context.Context, username string) ([]model.LoanView, error) {
	args := m.Called(ctx, username)
	return args.Get(0).([]model.LoanView), args.Error(1)
}

func (m *MockLedgerService) History(ctx context.Context, username string) ([]model.LoanView, error) {
	args := m.Called(ctx, username)
	return args.Get(0).([]model.LoanView), args.Error(1)
}

func (m *MockLedgerService) Eligibility(ctx context.Context, username string) (*model.Eligibility, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Eligibility), args.Error(1)
}

func (m *MockLedgerService) Overdue(ctx context.Context) ([]model.LoanView, error) {
	args := m.Called(ctx)
	return args.Get(0).([]model.LoanView), args.Error(1)
}

// MockCatalogService is a mock implementation of service.CatalogService.
type MockCatalogService struct {
	mock.Mock
}

func (m *MockCatalogService) AddBook(ctx context.Context, book *model.Book) (*model.Book, error) {
	args := m.Called(ctx, book)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Book), args.Error(1)
}

func (m *MockCatalogService) GetBook(ctx context.Context, id int64) (*model.Book, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Book), args.Error(1)
}

func (m *MockCatalogService) ModifyBook(ctx context.Context, id int64, upd model.BookUpdate) (*model.Book, error) {
	args := m.Called(ctx, id, upd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Book), args.Error(1)
}

func (m *MockCatalogService) DeleteBook(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockCatalogService) ListBooks(ctx context.Context) ([]model.Book, error) {
	args := m.Called(ctx)
	return args.Get(0).([]model.Book), args.Error(1)
}

func (m *MockCatalogService) ListAvailable(ctx context.Context) ([]model.Book, error) {
	args := m.Called(ctx)
	return args.Get(0).([]model.Book), args.Error(1)
}

func (m *MockCatalogService) Search(ctx context.Context, keyword string) ([]model.Book, error) {
	args := m.Called(ctx, keyword)
	return args.Get(0).([]model.Book), args.Error(1)
}
