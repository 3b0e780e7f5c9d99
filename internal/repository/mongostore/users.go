package mongostore

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	apperrors "librarydesk/internal/errors"
	"librarydesk/internal/model"
)

type users struct{ s *Store }

func (r *users) coll() *mongo.Collection {
	return r.s.db.Collection(usersCollection)
}

func (r *users) Create(ctx context.Context, user *model.User) error {
	seq, err := r.s.nextSequence(ctx, usersCollection)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	user.ID = uint(seq)
	user.CreatedAt, user.UpdatedAt = now, now
	if _, err := r.coll().InsertOne(ctx, newUserDocument(user)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperrors.ErrUserAlreadyExists
		}
		return apperrors.Store("create user", err)
	}
	return nil
}

func (r *users) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	var doc userDocument
	if err := r.coll().FindOne(ctx, bson.M{"username": username}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Store("find user", err)
	}
	u := doc.model()
	return &u, nil
}

// FindByUsernameForUpdate bumps the user's version so two transactions
// borrowing for the same user conflict even when they touch different books.
func (r *users) FindByUsernameForUpdate(ctx context.Context, username string) (*model.User, error) {
	var doc userDocument
	err := r.coll().FindOneAndUpdate(ctx,
		bson.M{"username": username},
		bson.M{"$inc": bson.M{"version": 1}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Store("lock user", err)
	}
	u := doc.model()
	return &u, nil
}

func (r *users) Exists(ctx context.Context, username string) (bool, error) {
	n, err := r.coll().CountDocuments(ctx, bson.M{"username": username}, options.Count().SetLimit(1))
	if err != nil {
		return false, apperrors.Store("check user", err)
	}
	return n > 0, nil
}

func (r *users) List(ctx context.Context) ([]model.User, error) {
	cur, err := r.coll().Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "username", Value: 1}}))
	if err != nil {
		return nil, apperrors.Store("list users", err)
	}
	var docs []userDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, apperrors.Store("list users", err)
	}
	out := make([]model.User, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.model())
	}
	return out, nil
}
