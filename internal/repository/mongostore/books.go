package mongostore

import (
	"context"
	"errors"
	"regexp"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	apperrors "librarydesk/internal/errors"
	"librarydesk/internal/model"
)

type books struct{ s *Store }

func (r *books) coll() *mongo.Collection {
	return r.s.db.Collection(booksCollection)
}

func (r *books) Create(ctx context.Context, book *model.Book) error {
	id, err := r.s.nextSequence(ctx, booksCollection)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	book.ID = id
	book.CreatedAt, book.UpdatedAt = now, now
	if _, err := r.coll().InsertOne(ctx, newBookDocument(book)); err != nil {
		return apperrors.Store("create book", err)
	}
	return nil
}

func (r *books) FindByID(ctx context.Context, id int64) (*model.Book, error) {
	var doc bookDocument
	if err := r.coll().FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		return nil, bookErr("find book", err)
	}
	b := doc.model()
	return &b, nil
}

// FindByIDForUpdate bumps the document version so a concurrent transaction
// touching the same book hits a write conflict.
func (r *books) FindByIDForUpdate(ctx context.Context, id int64) (*model.Book, error) {
	var doc bookDocument
	err := r.coll().FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$inc": bson.M{"version": 1}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		return nil, bookErr("lock book", err)
	}
	b := doc.model()
	return &b, nil
}

func (r *books) FindByIDs(ctx context.Context, ids []int64) ([]model.Book, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return r.find(ctx, "find books", bson.M{"_id": bson.M{"$in": ids}})
}

func (r *books) Update(ctx context.Context, id int64, upd model.BookUpdate) error {
	if upd.Empty() {
		return apperrors.ErrNothingToUpdate
	}
	set := bson.M{"updated_at": time.Now().UTC()}
	for k, v := range upd.Columns() {
		set[k] = v
	}
	if upd.Price != nil {
		set["price"] = toDecimal128(*upd.Price)
	}
	res, err := r.coll().UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return apperrors.Store("update book", err)
	}
	if res.MatchedCount == 0 {
		return apperrors.ErrBookNotFound
	}
	return nil
}

// AdjustAvailable matches only when the new count stays within [0, total_copies].
func (r *books) AdjustAvailable(ctx context.Context, id int64, delta int) error {
	next := bson.M{"$add": bson.A{"$available_copies", delta}}
	filter := bson.M{
		"_id": id,
		"$expr": bson.M{"$and": bson.A{
			bson.M{"$gte": bson.A{next, 0}},
			bson.M{"$lte": bson.A{next, "$total_copies"}},
		}},
	}
	update := bson.M{
		"$inc": bson.M{"available_copies": delta},
		"$set": bson.M{"updated_at": time.Now().UTC()},
	}
	res, err := r.coll().UpdateOne(ctx, filter, update)
	if err != nil {
		return apperrors.Store("adjust available copies", err)
	}
	if res.MatchedCount == 0 {
		return apperrors.ErrCopyCountInvariant
	}
	return nil
}

func (r *books) Delete(ctx context.Context, id int64) error {
	res, err := r.coll().DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return apperrors.Store("delete book", err)
	}
	if res.DeletedCount == 0 {
		return apperrors.ErrBookNotFound
	}
	return nil
}

func (r *books) List(ctx context.Context) ([]model.Book, error) {
	return r.find(ctx, "list books", bson.M{})
}

func (r *books) ListAvailable(ctx context.Context) ([]model.Book, error) {
	return r.find(ctx, "list available books", bson.M{"available_copies": bson.M{"$gt": 0}})
}

func (r *books) Search(ctx context.Context, keyword string) ([]model.Book, error) {
	re := primitive.Regex{Pattern: regexp.QuoteMeta(keyword), Options: "i"}
	or := bson.A{
		bson.M{"title": re},
		bson.M{"author": re},
		bson.M{"publisher": re},
	}
	if id, err := strconv.ParseInt(keyword, 10, 64); err == nil {
		or = append(or, bson.M{"_id": id})
	}
	return r.find(ctx, "search books", bson.M{"$or": or})
}

func (r *books) find(ctx context.Context, op string, filter interface{}) ([]model.Book, error) {
	cur, err := r.coll().Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, apperrors.Store(op, err)
	}
	var docs []bookDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, apperrors.Store(op, err)
	}
	out := make([]model.Book, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.model())
	}
	return out, nil
}

func bookErr(op string, err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return apperrors.ErrBookNotFound
	}
	return apperrors.Store(op, err)
}
