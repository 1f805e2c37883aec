package letters

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/letterwriter/letterwriter/internal/apperr"
)

// Repository provides letter persistence operations. Ownership is enforced
// one level up, in the service; repositories only know ids.
type Repository interface {
	Insert(ctx context.Context, l *Letter) (*Letter, error)
	FindByID(ctx context.Context, id string) (*Letter, error)
	FindByOwner(ctx context.Context, ownerID string) ([]*Letter, error)
	Update(ctx context.Context, id, title, content string, isDraft bool) (*Letter, error)
	Delete(ctx context.Context, id string) error
	SetGoogleDocID(ctx context.Context, id, docID string) error
}

// MongoRepository implements Repository using a Mongo collection
type MongoRepository struct {
	col *mongo.Collection
}

func NewMongoRepository(col *mongo.Collection) *MongoRepository {
	return &MongoRepository{col: col}
}

func (r *MongoRepository) Insert(ctx context.Context, l *Letter) (*Letter, error) {
	now := time.Now().UTC()
	l.ID = primitive.NewObjectID().Hex()
	l.CreatedAt = now
	l.UpdatedAt = now
	if _, err := r.col.InsertOne(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}

func (r *MongoRepository) FindByID(ctx context.Context, id string) (*Letter, error) {
	var l Letter
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&l); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return &l, nil
}

func (r *MongoRepository) FindByOwner(ctx context.Context, ownerID string) ([]*Letter, error) {
	cur, err := r.col.Find(ctx, bson.M{"userId": ownerID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []*Letter{}
	for cur.Next(ctx) {
		var l Letter
		if err := cur.Decode(&l); err != nil {
			return nil, err
		}
		out = append(out, &l)
	}
	return out, cur.Err()
}

func (r *MongoRepository) Update(ctx context.Context, id, title, content string, isDraft bool) (*Letter, error) {
	set := bson.M{
		"title":     title,
		"content":   content,
		"isDraft":   isDraft,
		"updatedAt": time.Now().UTC(),
	}
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return nil, err
	}
	if res.MatchedCount == 0 {
		return nil, apperr.ErrNotFound
	}
	return r.FindByID(ctx, id)
}

func (r *MongoRepository) Delete(ctx context.Context, id string) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

func (r *MongoRepository) SetGoogleDocID(ctx context.Context, id, docID string) error {
	set := bson.M{"googleDocId": docID, "updatedAt": time.Now().UTC()}
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return apperr.ErrNotFound
	}
	return nil
}
