package mongostore

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	apperrors "librarydesk/internal/errors"
	"librarydesk/internal/model"
)

type loans struct{ s *Store }

func (r *loans) coll() *mongo.Collection {
	return r.s.db.Collection(loansCollection)
}

func (r *loans) Create(ctx context.Context, loan *model.Loan) error {
	if loan.ID == uuid.Nil {
		loan.ID = uuid.New()
	}
	if _, err := r.coll().InsertOne(ctx, newLoanDocument(loan)); err != nil {
		return apperrors.Store("create loan", err)
	}
	return nil
}

func (r *loans) FindOpen(ctx context.Context, username string, bookID int64) (*model.Loan, error) {
	var doc loanDocument
	err := r.coll().FindOne(ctx,
		bson.M{"user_id": username, "book_id": bookID, "returned_at": nil},
		options.FindOne().SetSort(bson.D{{Key: "borrowed_at", Value: 1}}),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.ErrNoOpenLoan
		}
		return nil, apperrors.Store("find open loan", err)
	}
	l := doc.model()
	return &l, nil
}

func (r *loans) Close(ctx context.Context, id uuid.UUID, at time.Time) error {
	res, err := r.coll().UpdateOne(ctx,
		bson.M{"_id": id.String(), "returned_at": nil},
		bson.M{"$set": bson.M{"returned_at": at}},
	)
	if err != nil {
		return apperrors.Store("close loan", err)
	}
	if res.MatchedCount == 0 {
		return apperrors.ErrNoOpenLoan
	}
	return nil
}

func (r *loans) CountOpen(ctx context.Context, username string) (int64, error) {
	n, err := r.coll().CountDocuments(ctx, bson.M{"user_id": username, "returned_at": nil})
	return n, apperrors.Store("count open loans", err)
}

func (r *loans) CountOverdue(ctx context.Context, username string, now time.Time) (int64, error) {
	n, err := r.coll().CountDocuments(ctx, bson.M{
		"user_id":     username,
		"returned_at": nil,
		"due_at":      bson.M{"$lt": now},
	})
	return n, apperrors.Store("count overdue loans", err)
}

func (r *loans) ListOpenByUser(ctx context.Context, username string) ([]model.Loan, error) {
	return r.find(ctx, "list open loans", bson.M{"user_id": username, "returned_at": nil}, "borrowed_at")
}

func (r *loans) ListByUser(ctx context.Context, username string) ([]model.Loan, error) {
	return r.find(ctx, "list loans", bson.M{"user_id": username}, "borrowed_at")
}

func (r *loans) ListOverdue(ctx context.Context, now time.Time) ([]model.Loan, error) {
	return r.find(ctx, "list overdue loans", bson.M{"returned_at": nil, "due_at": bson.M{"$lt": now}}, "due_at")
}

func (r *loans) DeleteByBook(ctx context.Context, bookID int64) error {
	_, err := r.coll().DeleteMany(ctx, bson.M{"book_id": bookID})
	return apperrors.Store("delete loans", err)
}

func (r *loans) find(ctx context.Context, op string, filter interface{}, sortKey string) ([]model.Loan, error) {
	cur, err := r.coll().Find(ctx, filter, options.Find().SetSort(bson.D{{Key: sortKey, Value: 1}}))
	if err != nil {
		return nil, apperrors.Store(op, err)
	}
	var docs []loanDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, apperrors.Store(op, err)
	}
	out := make([]model.Loan, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.model())
	}
	return out, nil
}
