package handler

import (
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"librarydesk/internal/errors"
	"librarydesk/internal/model"
)

func TestBookHandler_CreateBook(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		setupMock      func(*MockCatalogService)
		expectedStatus int
	}{
		{
			name: "success",
			body: `{"title": "Dune", "author": "Frank Herbert", "price": "9.99", "publish_date": "1965-08-01"}`,
			setupMock: func(m *MockCatalogService) {
				m.On("AddBook", mock.Anything, mock.MatchedBy(func(b *model.Book) bool {
					return b.Title == "Dune" && b.Price.Equal(decimal.RequireFromString("9.99"))
				})).Return(&model.Book{ID: 1, Title: "Dune", TotalCopies: 3, AvailableCopies: 3}, nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "missing author",
			body:           `{"title": "Dune"}`,
			setupMock:      func(m *MockCatalogService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "bad date",
			body:           `{"title": "Dune", "author": "Frank Herbert", "publish_date": "08/01/1965"}`,
			setupMock:      func(m *MockCatalogService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "negative copies",
			body:           `{"title": "Dune", "author": "Frank Herbert", "total_copies": -1}`,
			setupMock:      func(m *MockCatalogService) {},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			catalog := new(MockCatalogService)
			tt.setupMock(catalog)
			h := NewBookHandler(catalog)
			c, rec := newContext(http.MethodPost, "/api/admin/books", tt.body, "admin")

			err := h.CreateBook(c)

			if tt.expectedStatus == http.StatusCreated {
				assert.NoError(t, err)
				assert.Equal(t, tt.expectedStatus, rec.Code)
			} else {
				assert.Equal(t, tt.expectedStatus, httpStatus(err))
			}
			catalog.AssertExpectations(t)
		})
	}
}

func TestBookHandler_UpdateBookRejectsTitle(t *testing.T) {
	catalog := new(MockCatalogService)
	h := NewBookHandler(catalog)
	c, _ := newContext(http.MethodPut, "/api/admin/books/1", `{"title": "Other"}`, "admin")
	c.SetParamNames("id")
	c.SetParamValues("1")

	err := h.UpdateBook(c)

	assert.Equal(t, http.StatusBadRequest, httpStatus(err))
	catalog.AssertNotCalled(t, "ModifyBook", mock.Anything, mock.Anything, mock.Anything)
}

func TestBookHandler_UpdateBookRejectsEmptyPrice(t *testing.T) {
	catalog := new(MockCatalogService)
	h := NewBookHandler(catalog)
	c, _ := newContext(http.MethodPut, "/api/admin/books/1", `{"price": ""}`, "admin")
	c.SetParamNames("id")
	c.SetParamValues("1")

	err := h.UpdateBook(c)

	assert.Equal(t, http.StatusBadRequest, httpStatus(err))
	catalog.AssertNotCalled(t, "ModifyBook", mock.Anything, mock.Anything, mock.Anything)
}

func TestBookHandler_UpdateBookNothingToUpdate(t *testing.T) {
	catalog := new(MockCatalogService)
	catalog.On("ModifyBook", mock.Anything, int64(1), model.BookUpdate{}).Return(nil, errors.ErrNothingToUpdate)
	h := NewBookHandler(catalog)
	c, _ := newContext(http.MethodPut, "/api/admin/books/1", `{}`, "admin")
	c.SetParamNames("id")
	c.SetParamValues("1")

	err := h.UpdateBook(c)

	assert.Equal(t, http.StatusBadRequest, httpStatus(err))
	catalog.AssertExpectations(t)
}

func TestBookHandler_GetBook(t *testing.T) {
	catalog := new(MockCatalogService)
	catalog.On("GetBook", mock.Anything, int64(9)).Return(nil, errors.ErrBookNotFound)
	h := NewBookHandler(catalog)

	c, _ := newContext(http.MethodGet, "/api/books/9", "", "alice")
	c.SetParamNames("id")
	c.SetParamValues("9")
	assert.Equal(t, http.StatusNotFound, httpStatus(h.GetBook(c)))

	c, _ = newContext(http.MethodGet, "/api/books/abc", "", "alice")
	c.SetParamNames("id")
	c.SetParamValues("abc")
	assert.Equal(t, http.StatusBadRequest, httpStatus(h.GetBook(c)))

	catalog.AssertExpectations(t)
}

func TestBookHandler_ListBooksAvailableByDefault(t *testing.T) {
	catalog := new(MockCatalogService)
	catalog.On("ListAvailable", mock.Anything).Return([]model.Book{{ID: 1, Title: "Emma"}}, nil)
	catalog.On("ListBooks", mock.Anything).Return([]model.Book{{ID: 1, Title: "Emma"}, {ID: 2, Title: "Dune"}}, nil)
	h := NewBookHandler(catalog)

	c, rec := newContext(http.MethodGet, "/api/books", "", "alice")
	assert.NoError(t, h.ListBooks(c))
	assert.NotContains(t, rec.Body.String(), "Dune")

	c, rec = newContext(http.MethodGet, "/api/books?all=true", "", "alice")
	assert.NoError(t, h.ListBooks(c))
	assert.Contains(t, rec.Body.String(), "Dune")

	catalog.AssertExpectations(t)
}
