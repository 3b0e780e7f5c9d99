package commands

import (
	"bytes"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"librarydesk/internal/model"
)

func TestParseCatalog_DefaultCatalog(t *testing.T) {
	books, err := parseCatalog(defaultCatalog)
	require.NoError(t, err)
	require.Len(t, books, 20)

	first := books[0].toModel()
	assert.NotEmpty(t, first.Title)
	assert.Equal(t, 3, first.TotalCopies)
	assert.Equal(t, "89.9", first.Price.String())
}

func TestParseCatalog_Invalid(t *testing.T) {
	_, err := parseCatalog([]byte(`{"title": "not an array"}`))
	assert.Error(t, err)
}

func TestPrintLoans_Table(t *testing.T) {
	var buf bytes.Buffer
	due := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)

	err := printLoans(&buf, []model.LoanView{{
		LoanID: uuid.New(),
		UserID: "alice",
		BookID: 7,
		Title:  "Clean Code",
		DueAt:  due,
		Status: model.LoanStatusOverdue,
	}})

	require.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, "USER")
	assert.Contains(t, out, "alice")
	assert.Contains(t, out, "2024-01-10")
	assert.Contains(t, out, "overdue")
}

func TestPrintLoans_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printLoans(&buf, nil))
	assert.Contains(t, buf.String(), "no overdue loans")
}
