package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"librarydesk/internal/cache"
	"librarydesk/internal/errors"
	"librarydesk/internal/model"
	"librarydesk/internal/repository"
)

const (
	bookCacheTTL       = 5 * time.Minute
	defaultTotalCopies = 3
	publishDateLayout  = "2006-01-02"
)

func bookCacheKey(id int64) string {
	return fmt.Sprintf("book:%d", id)
}

// CatalogService manages the book catalog.
type CatalogService interface {
	AddBook(ctx context.Context, book *model.Book) (*model.Book, error)
	GetBook(ctx context.Context, id int64) (*model.Book, error)
	ModifyBook(ctx context.Context, id int64, upd model.BookUpdate) (*model.Book, error)
	DeleteBook(ctx context.Context, id int64) error
	ListBooks(ctx context.Context) ([]model.Book, error)
	ListAvailable(ctx context.Context) ([]model.Book, error)
	Search(ctx context.Context, keyword string) ([]model.Book, error)
}

type catalogService struct {
	store repository.Store
	cache *cache.Client
}

// NewCatalogService builds a CatalogService with store and cache.
func NewCatalogService(store repository.Store, cache *cache.Client) CatalogService {
	return &catalogService{store: store, cache: cache}
}

// AddBook validates and inserts a new book with every copy on the shelf.
func (s *catalogService) AddBook(ctx context.Context, book *model.Book) (*model.Book, error) {
	book.Title = strings.TrimSpace(book.Title)
	book.Author = strings.TrimSpace(book.Author)
	if book.Title == "" {
		return nil, fmt.Errorf("%w: title is required", errors.ErrInvalidBook)
	}
	if book.Author == "" {
		return nil, fmt.Errorf("%w: author is required", errors.ErrInvalidBook)
	}
	if book.TotalCopies < 0 {
		return nil, fmt.Errorf("%w: total copies must not be negative", errors.ErrInvalidBook)
	}
	if book.TotalCopies == 0 {
		book.TotalCopies = defaultTotalCopies
	}
	if err := validatePublishDate(book.PublishDate); err != nil {
		return nil, err
	}
	if err := validatePrice(book.Price); err != nil {
		return nil, err
	}
	book.ID = 0
	book.AvailableCopies = book.TotalCopies

	if err := s.store.Books().Create(ctx, book); err != nil {
		return nil, err
	}
	log.Printf("catalog: added book id=%d title=%q copies=%d", book.ID, book.Title, book.TotalCopies)
	return book, nil
}

func (s *catalogService) GetBook(ctx context.Context, id int64) (*model.Book, error) {
	var cached model.Book
	if s.cache.GetJSON(ctx, bookCacheKey(id), &cached) {
		return &cached, nil
	}

	book, err := s.store.Books().FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.cache.SetJSON(ctx, bookCacheKey(id), book, bookCacheTTL)
	return book, nil
}

// ModifyBook changes author, publisher, publish date or price. Title and copy counts never change here.
func (s *catalogService) ModifyBook(ctx context.Context, id int64, upd model.BookUpdate) (*model.Book, error) {
	if upd.Author != nil {
		author := strings.TrimSpace(*upd.Author)
		if author == "" {
			return nil, fmt.Errorf("%w: author is required", errors.ErrInvalidBook)
		}
		upd.Author = &author
	}
	if upd.PublishDate != nil {
		if err := validatePublishDate(*upd.PublishDate); err != nil {
			return nil, err
		}
	}
	if upd.Price != nil {
		if err := validatePrice(*upd.Price); err != nil {
			return nil, err
		}
	}
	if err := s.store.Books().Update(ctx, id, upd); err != nil {
		return nil, err
	}
	_ = s.cache.Delete(ctx, bookCacheKey(id))
	return s.store.Books().FindByID(ctx, id)
}

// DeleteBook removes the book and its loan records together.
func (s *catalogService) DeleteBook(ctx context.Context, id int64) error {
	err := s.store.WithTransaction(ctx, func(ctx context.Context, tx repository.Store) error {
		if _, err := tx.Books().FindByIDForUpdate(ctx, id); err != nil {
			return err
		}
		if err := tx.Loans().DeleteByBook(ctx, id); err != nil {
			return err
		}
		return tx.Books().Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	_ = s.cache.Delete(ctx, bookCacheKey(id))
	log.Printf("catalog: deleted book id=%d", id)
	return nil
}

func (s *catalogService) ListBooks(ctx context.Context) ([]model.Book, error) {
	return s.store.Books().List(ctx)
}

func (s *catalogService) ListAvailable(ctx context.Context) ([]model.Book, error) {
	return s.store.Books().ListAvailable(ctx)
}

func (s *catalogService) Search(ctx context.Context, keyword string) ([]model.Book, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return s.store.Books().List(ctx)
	}
	return s.store.Books().Search(ctx, keyword)
}

func validatePublishDate(v string) error {
	if v == "" {
		return nil
	}
	if _, err := time.Parse(publishDateLayout, v); err != nil {
		return fmt.Errorf("%w: publish date must be YYYY-MM-DD", errors.ErrInvalidBook)
	}
	return nil
}

func validatePrice(p decimal.Decimal) error {
	if p.IsNegative() {
		return fmt.Errorf("%w: price must not be negative", errors.ErrInvalidBook)
	}
	return nil
}
