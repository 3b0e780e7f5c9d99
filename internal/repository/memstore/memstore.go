// Package memstore is an in-process repository.Store for tests and local runs.
// Each Store value owns its data; nothing is shared between instances.
package memstore

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	apperrors "librarydesk/internal/errors"
	"librarydesk/internal/model"
	"librarydesk/internal/repository"
)

// Operation names accepted by FailOn.
const (
	OpCreateBook      = "books.create"
	OpAdjustAvailable = "books.adjust_available"
	OpDeleteBook      = "books.delete"
	OpCreateLoan      = "loans.create"
	OpCloseLoan       = "loans.close"
	OpFindUser        = "users.find"
)

type state struct {
	books      map[int64]model.Book
	users      map[string]model.User
	loans      []model.Loan
	nextBookID int64
	nextUserID uint
}

func newState() *state {
	return &state{
		books: make(map[int64]model.Book),
		users: make(map[string]model.User),
	}
}

func (s *state) clone() *state {
	c := &state{
		books:      make(map[int64]model.Book, len(s.books)),
		users:      make(map[string]model.User, len(s.users)),
		loans:      make([]model.Loan, len(s.loans)),
		nextBookID: s.nextBookID,
		nextUserID: s.nextUserID,
	}
	for k, v := range s.books {
		c.books[k] = v
	}
	for k, v := range s.users {
		c.users[k] = v
	}
	copy(c.loans, s.loans)
	return c
}

type root struct {
	mu     sync.Mutex
	state  *state
	faults map[string]error
}

// Store keeps books, users and loans in memory behind a single mutex.
// WithTransaction works on a copy and publishes it only when fn succeeds.
type Store struct {
	root *root
	tx   *state
}

var _ repository.Store = (*Store)(nil)

// New returns an empty store.
func New() *Store {
	return &Store{root: &root{state: newState(), faults: make(map[string]error)}}
}

// FailOn makes every later call of op return err. A nil err clears the fault.
func (s *Store) FailOn(op string, err error) {
	s.root.mu.Lock()
	defer s.root.mu.Unlock()
	if err == nil {
		delete(s.root.faults, op)
		return
	}
	s.root.faults[op] = err
}

// fault is called with the lock held.
func (s *Store) fault(op string) error {
	if err, ok := s.root.faults[op]; ok {
		return apperrors.Store(op, err)
	}
	return nil
}

// do runs fn against the transaction state, or under the store lock outside a transaction.
func (s *Store) do(fn func(st *state) error) error {
	if s.tx != nil {
		return fn(s.tx)
	}
	s.root.mu.Lock()
	defer s.root.mu.Unlock()
	return fn(s.root.state)
}

func (s *Store) Books() repository.BookRepository { return &books{s} }
func (s *Store) Users() repository.UserRepository { return &users{s} }
func (s *Store) Loans() repository.LoanRepository { return &loans{s} }

// WithTransaction serializes transactions on the store lock.
func (s *Store) WithTransaction(ctx context.Context, fn func(ctx context.Context, tx repository.Store) error) error {
	if s.tx != nil {
		return fn(ctx, s)
	}
	s.root.mu.Lock()
	defer s.root.mu.Unlock()

	work := s.root.state.clone()
	if err := fn(ctx, &Store{root: s.root, tx: work}); err != nil {
		return err
	}
	s.root.state = work
	return nil
}

type books struct{ s *Store }

func (r *books) Create(_ context.Context, book *model.Book) error {
	return r.s.do(func(st *state) error {
		if err := r.s.fault(OpCreateBook); err != nil {
			return err
		}
		st.nextBookID++
		now := time.Now().UTC()
		book.ID = st.nextBookID
		book.CreatedAt, book.UpdatedAt = now, now
		st.books[book.ID] = *book
		return nil
	})
}

func (r *books) FindByID(_ context.Context, id int64) (*model.Book, error) {
	var out *model.Book
	err := r.s.do(func(st *state) error {
		b, ok := st.books[id]
		if !ok {
			return apperrors.ErrBookNotFound
		}
		out = &b
		return nil
	})
	return out, err
}

// FindByIDForUpdate needs no extra lock: transactions already hold the store lock.
func (r *books) FindByIDForUpdate(ctx context.Context, id int64) (*model.Book, error) {
	return r.FindByID(ctx, id)
}

func (r *books) FindByIDs(_ context.Context, ids []int64) ([]model.Book, error) {
	var out []model.Book
	err := r.s.do(func(st *state) error {
		for _, id := range ids {
			if b, ok := st.books[id]; ok {
				out = append(out, b)
			}
		}
		return nil
	})
	return out, err
}

func (r *books) Update(_ context.Context, id int64, upd model.BookUpdate) error {
	if upd.Empty() {
		return apperrors.ErrNothingToUpdate
	}
	return r.s.do(func(st *state) error {
		b, ok := st.books[id]
		if !ok {
			return apperrors.ErrBookNotFound
		}
		upd.Apply(&b)
		b.UpdatedAt = time.Now().UTC()
		st.books[id] = b
		return nil
	})
}

func (r *books) AdjustAvailable(_ context.Context, id int64, delta int) error {
	return r.s.do(func(st *state) error {
		if err := r.s.fault(OpAdjustAvailable); err != nil {
			return err
		}
		b, ok := st.books[id]
		if !ok {
			return apperrors.ErrBookNotFound
		}
		next := b.AvailableCopies + delta
		if next < 0 || next > b.TotalCopies {
			return apperrors.ErrCopyCountInvariant
		}
		b.AvailableCopies = next
		st.books[id] = b
		return nil
	})
}

func (r *books) Delete(_ context.Context, id int64) error {
	return r.s.do(func(st *state) error {
		if err := r.s.fault(OpDeleteBook); err != nil {
			return err
		}
		if _, ok := st.books[id]; !ok {
			return apperrors.ErrBookNotFound
		}
		delete(st.books, id)
		return nil
	})
}

func (r *books) List(_ context.Context) ([]model.Book, error) {
	return r.filter(func(model.Book) bool { return true })
}

func (r *books) ListAvailable(_ context.Context) ([]model.Book, error) {
	return r.filter(func(b model.Book) bool { return b.AvailableCopies > 0 })
}

func (r *books) Search(_ context.Context, keyword string) ([]model.Book, error) {
	kw := strings.ToLower(keyword)
	id, idErr := strconv.ParseInt(keyword, 10, 64)
	return r.filter(func(b model.Book) bool {
		if idErr == nil && b.ID == id {
			return true
		}
		return strings.Contains(strings.ToLower(b.Title), kw) ||
			strings.Contains(strings.ToLower(b.Author), kw) ||
			strings.Contains(strings.ToLower(b.Publisher), kw)
	})
}

func (r *books) filter(keep func(model.Book) bool) ([]model.Book, error) {
	var out []model.Book
	err := r.s.do(func(st *state) error {
		for _, b := range st.books {
			if keep(b) {
				out = append(out, b)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, err
}

type users struct{ s *Store }

func (r *users) Create(_ context.Context, user *model.User) error {
	return r.s.do(func(st *state) error {
		if _, ok := st.users[user.Username]; ok {
			return apperrors.ErrUserAlreadyExists
		}
		st.nextUserID++
		now := time.Now().UTC()
		user.ID = st.nextUserID
		user.CreatedAt, user.UpdatedAt = now, now
		st.users[user.Username] = *user
		return nil
	})
}

func (r *users) FindByUsername(_ context.Context, username string) (*model.User, error) {
	var out *model.User
	err := r.s.do(func(st *state) error {
		if err := r.s.fault(OpFindUser); err != nil {
			return err
		}
		u, ok := st.users[username]
		if !ok {
			return apperrors.ErrUserNotFound
		}
		out = &u
		return nil
	})
	return out, err
}

// FindByUsernameForUpdate needs no extra lock: transactions already hold the store lock.
func (r *users) FindByUsernameForUpdate(ctx context.Context, username string) (*model.User, error) {
	return r.FindByUsername(ctx, username)
}

func (r *users) Exists(_ context.Context, username string) (bool, error) {
	var found bool
	err := r.s.do(func(st *state) error {
		_, found = st.users[username]
		return nil
	})
	return found, err
}

func (r *users) List(_ context.Context) ([]model.User, error) {
	var out []model.User
	err := r.s.do(func(st *state) error {
		for _, u := range st.users {
			out = append(out, u)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, err
}

type loans struct{ s *Store }

func (r *loans) Create(_ context.Context, loan *model.Loan) error {
	return r.s.do(func(st *state) error {
		if err := r.s.fault(OpCreateLoan); err != nil {
			return err
		}
		if loan.ID == uuid.Nil {
			loan.ID = uuid.New()
		}
		st.loans = append(st.loans, *loan)
		return nil
	})
}

func (r *loans) FindOpen(_ context.Context, username string, bookID int64) (*model.Loan, error) {
	var out *model.Loan
	err := r.s.do(func(st *state) error {
		for _, l := range st.loans {
			if l.UserID != username || l.BookID != bookID || !l.IsOpen() {
				continue
			}
			if out == nil || l.BorrowedAt.Before(out.BorrowedAt) {
				found := l
				out = &found
			}
		}
		if out == nil {
			return apperrors.ErrNoOpenLoan
		}
		return nil
	})
	return out, err
}

func (r *loans) Close(_ context.Context, id uuid.UUID, at time.Time) error {
	return r.s.do(func(st *state) error {
		if err := r.s.fault(OpCloseLoan); err != nil {
			return err
		}
		for i := range st.loans {
			if st.loans[i].ID == id && st.loans[i].IsOpen() {
				returned := at
				st.loans[i].ReturnedAt = &returned
				return nil
			}
		}
		return apperrors.ErrNoOpenLoan
	})
}

func (r *loans) CountOpen(ctx context.Context, username string) (int64, error) {
	open, err := r.ListOpenByUser(ctx, username)
	return int64(len(open)), err
}

func (r *loans) CountOverdue(_ context.Context, username string, now time.Time) (int64, error) {
	matched, err := r.filter(func(l model.Loan) bool { return l.UserID == username && l.IsOverdue(now) })
	return int64(len(matched)), err
}

func (r *loans) ListOpenByUser(_ context.Context, username string) ([]model.Loan, error) {
	return r.filter(func(l model.Loan) bool { return l.UserID == username && l.IsOpen() })
}

func (r *loans) ListByUser(_ context.Context, username string) ([]model.Loan, error) {
	return r.filter(func(l model.Loan) bool { return l.UserID == username })
}

func (r *loans) ListOverdue(_ context.Context, now time.Time) ([]model.Loan, error) {
	out, err := r.filter(func(l model.Loan) bool { return l.IsOverdue(now) })
	sort.SliceStable(out, func(i, j int) bool { return out[i].DueAt.Before(out[j].DueAt) })
	return out, err
}

func (r *loans) DeleteByBook(_ context.Context, bookID int64) error {
	return r.s.do(func(st *state) error {
		kept := st.loans[:0]
		for _, l := range st.loans {
			if l.BookID != bookID {
				kept = append(kept, l)
			}
		}
		st.loans = kept
		return nil
	})
}

// filter returns matches in insertion order, which is also borrow order.
func (r *loans) filter(keep func(model.Loan) bool) ([]model.Loan, error) {
	var out []model.Loan
	err := r.s.do(func(st *state) error {
		for _, l := range st.loans {
			if keep(l) {
				out = append(out, l)
			}
		}
		return nil
	})
	return out, err
}
