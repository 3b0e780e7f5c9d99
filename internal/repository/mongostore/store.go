// Package mongostore implements repository.Store on MongoDB.
package mongostore

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	apperrors "librarydesk/internal/errors"
	"librarydesk/internal/repository"
)

const (
	booksCollection    = "books"
	usersCollection    = "users"
	loansCollection    = "loans"
	countersCollection = "counters"
)

// Store binds the repositories to one database. Operations join the session
// transaction carried by ctx, so the same Store serves inside and outside
// WithTransaction.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

var _ repository.Store = (*Store)(nil)

// New returns a Store over database name.
func New(client *mongo.Client, name string) *Store {
	return &Store{client: client, db: client.Database(name)}
}

func (s *Store) Books() repository.BookRepository { return &books{s} }
func (s *Store) Users() repository.UserRepository { return &users{s} }
func (s *Store) Loans() repository.LoanRepository { return &loans{s} }

// EnsureIndexes creates the unique username index and the loan lookup indexes.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	if _, err := s.db.Collection(usersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		return fmt.Errorf("users index: %w", err)
	}
	if _, err := s.db.Collection(loansCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "returned_at", Value: 1}}},
		{Keys: bson.D{{Key: "book_id", Value: 1}}},
		{Keys: bson.D{{Key: "due_at", Value: 1}}},
	}); err != nil {
		return fmt.Errorf("loans indexes: %w", err)
	}
	return nil
}

// Drop removes every collection of the store.
func (s *Store) Drop(ctx context.Context) error {
	return s.db.Drop(ctx)
}

// WithTransaction runs fn in a session transaction. The driver may call fn
// again on transient transaction errors.
func (s *Store) WithTransaction(ctx context.Context, fn func(ctx context.Context, tx repository.Store) error) error {
	if mongo.SessionFromContext(ctx) != nil {
		return fn(ctx, s)
	}
	session, err := s.client.StartSession()
	if err != nil {
		return apperrors.Store("start session", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc, s)
	})
	if err != nil && isDriverError(err) {
		return apperrors.Store("transaction", err)
	}
	return err
}

// nextSequence atomically increments and returns the counter name.
func (s *Store) nextSequence(ctx context.Context, name string) (int64, error) {
	var out struct {
		Seq int64 `bson:"seq"`
	}
	err := s.db.Collection(countersCollection).FindOneAndUpdate(ctx,
		bson.M{"_id": name},
		bson.M{"$inc": bson.M{"seq": 1}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&out)
	if err != nil {
		return 0, apperrors.Store("next "+name+" id", err)
	}
	return out.Seq, nil
}

// isDriverError reports whether err came from the driver or the server
// rather than from fn's business checks.
func isDriverError(err error) bool {
	var serverErr mongo.ServerError
	return errors.As(err, &serverErr) || mongo.IsNetworkError(err) || mongo.IsTimeout(err)
}
