package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"librarydesk/internal/cache"
	apperrors "librarydesk/internal/errors"
	"librarydesk/internal/events"
	"librarydesk/internal/model"
	"librarydesk/internal/repository"
)

// LedgerService governs borrowing and returning of book copies.
type LedgerService interface {
	Borrow(ctx context.Context, username string, bookID int64) (*model.Loan, error)
	Return(ctx context.Context, username string, bookID int64) (*model.Loan, error)
	Loans(ctx context.Context, username string) ([]model.LoanView, error)
	History(ctx context.Context, username string) ([]model.LoanView, error)
	Eligibility(ctx context.Context, username string) (*model.Eligibility, error)
	Overdue(ctx context.Context) ([]model.LoanView, error)
}

// LedgerOption customizes a ledger service.
type LedgerOption func(*ledgerService)

// WithClock replaces time.Now as the ledger's source of the current time.
func WithClock(now func() time.Time) LedgerOption {
	return func(s *ledgerService) { s.now = now }
}

type ledgerService struct {
	store     repository.Store
	cache     *cache.Client
	publisher events.Publisher
	policy    Policy
	now       func() time.Time
	// Per-user and per-book mutexes. Entries are never evicted: one small
	// mutex per distinct user and book seen by this process.
	mutexes sync.Map
}

// NewLedgerService creates a new ledger service.
func NewLedgerService(
	store repository.Store,
	cache *cache.Client,
	publisher events.Publisher,
	policy Policy,
	opts ...LedgerOption,
) LedgerService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	s := &ledgerService{
		store:     store,
		cache:     cache,
		publisher: publisher,
		policy:    policy,
		now:       func() time.Time { return time.Now().UTC().Truncate(time.Second) },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// getMutex returns a mutex for a lock key.
func (s *ledgerService) getMutex(key string) *sync.Mutex {
	value, _ := s.mutexes.LoadOrStore(key, &sync.Mutex{})
	return value.(*sync.Mutex)
}

// lock takes the user lock, then the book lock, and returns the release func.
func (s *ledgerService) lock(username string, bookID int64) func() {
	userMu := s.getMutex("user:" + username)
	bookMu := s.getMutex(fmt.Sprintf("book:%d", bookID))
	userMu.Lock()
	bookMu.Lock()
	return func() {
		bookMu.Unlock()
		userMu.Unlock()
	}
}

// Borrow creates an open loan and takes one copy off the shelf in a single transaction.
func (s *ledgerService) Borrow(ctx context.Context, username string, bookID int64) (*model.Loan, error) {
	unlock := s.lock(username, bookID)
	defer unlock()

	now := s.now()
	var (
		loan  *model.Loan
		title string
	)
	err := s.store.WithTransaction(ctx, func(ctx context.Context, tx repository.Store) error {
		// User row first, then book row, in every ledger transaction.
		user, err := tx.Users().FindByUsernameForUpdate(ctx, username)
		if err != nil {
			return err
		}

		facts := borrowFacts{
			limit:          s.policy.limitFor(user),
			allowDuplicate: s.policy.AllowDuplicateLoans,
		}
		if facts.overdueLoans, err = tx.Loans().CountOverdue(ctx, username, now); err != nil {
			return err
		}
		facts.book, err = tx.Books().FindByIDForUpdate(ctx, bookID)
		if err != nil && !errors.Is(err, apperrors.ErrBookNotFound) {
			return err
		}
		if facts.openLoans, err = tx.Loans().CountOpen(ctx, username); err != nil {
			return err
		}
		if !facts.allowDuplicate {
			_, err := tx.Loans().FindOpen(ctx, username, bookID)
			switch {
			case err == nil:
				facts.holdsBook = true
			case !errors.Is(err, apperrors.ErrNoOpenLoan):
				return err
			}
		}

		if err := decideBorrow(facts); err != nil {
			return err
		}

		loan = &model.Loan{
			UserID:     username,
			BookID:     bookID,
			BorrowedAt: now,
			DueAt:      now.Add(s.policy.LoanPeriod),
		}
		if err := tx.Loans().Create(ctx, loan); err != nil {
			return err
		}
		if err := tx.Books().AdjustAvailable(ctx, bookID, -1); err != nil {
			if errors.Is(err, apperrors.ErrCopyCountInvariant) {
				return apperrors.ErrNoCopiesAvailable
			}
			return err
		}
		title = facts.book.Title
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("ledger: borrow user=%s book=%d loan=%s due=%s", username, bookID, loan.ID, loan.DueAt.Format(time.RFC3339))
	s.afterCommit(ctx, events.TypeLoanBorrowed, loan, title, now)
	return loan, nil
}

// Return closes the user's oldest open loan on the book and puts the copy back.
func (s *ledgerService) Return(ctx context.Context, username string, bookID int64) (*model.Loan, error) {
	unlock := s.lock(username, bookID)
	defer unlock()

	now := s.now()
	var (
		loan  *model.Loan
		title string
	)
	err := s.store.WithTransaction(ctx, func(ctx context.Context, tx repository.Store) error {
		if _, err := tx.Users().FindByUsernameForUpdate(ctx, username); err != nil {
			return err
		}
		open, err := tx.Loans().FindOpen(ctx, username, bookID)
		if err != nil {
			return err
		}
		book, err := tx.Books().FindByIDForUpdate(ctx, bookID)
		if err != nil {
			return err
		}
		if err := tx.Loans().Close(ctx, open.ID, now); err != nil {
			return err
		}
		if err := tx.Books().AdjustAvailable(ctx, bookID, 1); err != nil {
			return err
		}
		returned := now
		open.ReturnedAt = &returned
		loan, title = open, book.Title
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("ledger: return user=%s book=%d loan=%s", username, bookID, loan.ID)
	s.afterCommit(ctx, events.TypeLoanReturned, loan, title, now)
	return loan, nil
}

// afterCommit drops the cached book and publishes the loan event. Neither can fail the operation.
func (s *ledgerService) afterCommit(ctx context.Context, kind string, loan *model.Loan, title string, now time.Time) {
	_ = s.cache.Delete(ctx, bookCacheKey(loan.BookID))
	if err := s.publisher.Publish(ctx, events.NewLoanEvent(kind, loan, title, now)); err != nil {
		log.Printf("ledger: publish %s loan=%s: %v", kind, loan.ID, err)
	}
}

// Loans lists the user's open loans tagged normal or overdue.
func (s *ledgerService) Loans(ctx context.Context, username string) ([]model.LoanView, error) {
	if _, err := s.store.Users().FindByUsername(ctx, username); err != nil {
		return nil, err
	}
	loans, err := s.store.Loans().ListOpenByUser(ctx, username)
	if err != nil {
		return nil, err
	}
	return s.views(ctx, loans)
}

// History lists every loan of the user, open and returned.
func (s *ledgerService) History(ctx context.Context, username string) ([]model.LoanView, error) {
	if _, err := s.store.Users().FindByUsername(ctx, username); err != nil {
		return nil, err
	}
	loans, err := s.store.Loans().ListByUser(ctx, username)
	if err != nil {
		return nil, err
	}
	return s.views(ctx, loans)
}

func (s *ledgerService) Eligibility(ctx context.Context, username string) (*model.Eligibility, error) {
	user, err := s.store.Users().FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	now := s.now()
	open, err := s.store.Loans().CountOpen(ctx, username)
	if err != nil {
		return nil, err
	}
	overdue, err := s.store.Loans().CountOverdue(ctx, username, now)
	if err != nil {
		return nil, err
	}
	limit := s.policy.limitFor(user)
	return &model.Eligibility{
		Username:     username,
		OpenLoans:    int(open),
		OverdueLoans: int(overdue),
		MaxBorrow:    limit,
		CanBorrow:    overdue == 0 && open < int64(limit),
	}, nil
}

// Overdue lists every overdue open loan across users, most overdue first.
func (s *ledgerService) Overdue(ctx context.Context) ([]model.LoanView, error) {
	loans, err := s.store.Loans().ListOverdue(ctx, s.now())
	if err != nil {
		return nil, err
	}
	return s.views(ctx, loans)
}

func (s *ledgerService) views(ctx context.Context, loans []model.Loan) ([]model.LoanView, error) {
	ids := make([]int64, 0, len(loans))
	seen := make(map[int64]bool, len(loans))
	for _, l := range loans {
		if !seen[l.BookID] {
			seen[l.BookID] = true
			ids = append(ids, l.BookID)
		}
	}
	books, err := s.store.Books().FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]*model.Book, len(books))
	for i := range books {
		byID[books[i].ID] = &books[i]
	}

	now := s.now()
	out := make([]model.LoanView, 0, len(loans))
	for _, l := range loans {
		out = append(out, model.NewLoanView(l, byID[l.BookID], now))
	}
	return out, nil
}
