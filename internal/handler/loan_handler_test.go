package handler

import (
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"librarydesk/internal/errors"
	"librarydesk/internal/model"
)

func TestLoanHandler_Borrow(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		username       string
		setupMock      func(*MockLedgerService)
		expectedStatus int
	}{
		{
			name:     "success",
			body:     `{"book_id": 7}`,
			username: "alice",
			setupMock: func(m *MockLedgerService) {
				m.On("Borrow", mock.Anything, "alice", int64(7)).Return(&model.Loan{
					ID: uuid.New(), UserID: "alice", BookID: 7, DueAt: time.Now().Add(time.Hour),
				}, nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "missing book id",
			body:           `{}`,
			username:       "alice",
			setupMock:      func(m *MockLedgerService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "malformed body",
			body:           `{"book_id": "seven"`,
			username:       "alice",
			setupMock:      func(m *MockLedgerService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "no token",
			body:           `{"book_id": 7}`,
			setupMock:      func(m *MockLedgerService) {},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:     "overdue blocked",
			body:     `{"book_id": 7}`,
			username: "alice",
			setupMock: func(m *MockLedgerService) {
				m.On("Borrow", mock.Anything, "alice", int64(7)).Return(nil, errors.ErrOverdueBlocked)
			},
			expectedStatus: http.StatusForbidden,
		},
		{
			name:     "store unavailable",
			body:     `{"book_id": 7}`,
			username: "alice",
			setupMock: func(m *MockLedgerService) {
				m.On("Borrow", mock.Anything, "alice", int64(7)).Return(nil, errors.Store("create loan", assert.AnError))
			},
			expectedStatus: http.StatusServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ledger := new(MockLedgerService)
			tt.setupMock(ledger)
			h := NewLoanHandler(ledger)
			c, rec := newContext(http.MethodPost, "/api/loans/borrow", tt.body, tt.username)

			err := h.Borrow(c)

			if tt.expectedStatus == http.StatusCreated {
				assert.NoError(t, err)
				assert.Equal(t, tt.expectedStatus, rec.Code)
			} else {
				assert.Error(t, err)
				assert.Equal(t, tt.expectedStatus, httpStatus(err))
			}
			ledger.AssertExpectations(t)
		})
	}
}

func TestLoanHandler_Return_NoOpenLoan(t *testing.T) {
	ledger := new(MockLedgerService)
	ledger.On("Return", mock.Anything, "bob", int64(3)).Return(nil, errors.ErrNoOpenLoan)
	h := NewLoanHandler(ledger)
	c, _ := newContext(http.MethodPost, "/api/loans/return", `{"book_id": 3}`, "bob")

	err := h.Return(c)

	assert.Equal(t, http.StatusNotFound, httpStatus(err))
	ledger.AssertExpectations(t)
}

func TestLoanHandler_UserLoansUsesPathParam(t *testing.T) {
	ledger := new(MockLedgerService)
	ledger.On("Loans", mock.Anything, "carol").Return([]model.LoanView{{UserID: "carol", BookID: 1}}, nil)
	h := NewLoanHandler(ledger)
	c, rec := newContext(http.MethodGet, "/api/admin/users/carol/loans", "", "admin")
	c.SetParamNames("username")
	c.SetParamValues("carol")

	err := h.UserLoans(c)

	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"user_id":"carol"`)
	ledger.AssertExpectations(t)
}
