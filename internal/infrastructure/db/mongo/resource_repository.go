package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/medrez/residency-api/internal/core/domain"
)

const (
	fieldID        = "_id"
	fieldCreatedAt = "created_at"
	fieldUpdatedAt = "updated_at"
)

// ResourceRepository stores every scheduling kind in its own collection.
type ResourceRepository struct {
	db *mongo.Database
}

func NewResourceRepository(db *mongo.Database) *ResourceRepository {
	return &ResourceRepository{db: db}
}

func (r *ResourceRepository) col(kind domain.ResourceKind) *mongo.Collection {
	return r.db.Collection(kind.Collection())
}

// List returns the newest resources first.
func (r *ResourceRepository) List(ctx context.Context, kind domain.ResourceKind, limit int) ([]*domain.Resource, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: fieldCreatedAt, Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cur, err := r.col(kind).Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", kind, err)
	}
	defer cur.Close(ctx)

	var docs []bson.M
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("list %s: decode: %w", kind, err)
	}

	out := make([]*domain.Resource, 0, len(docs))
	for _, d := range docs {
		out = append(out, fromBSON(kind, d))
	}
	return out, nil
}

func (r *ResourceRepository) Get(ctx context.Context, kind domain.ResourceKind, id string) (*domain.Resource, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var d bson.M
	if err := r.col(kind).FindOne(ctx, bson.M{fieldID: oid}).Decode(&d); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrResourceNotFound
		}
		return nil, fmt.Errorf("get %s: %w", kind, err)
	}
	return fromBSON(kind, d), nil
}

func (r *ResourceRepository) Create(ctx context.Context, res *domain.Resource) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := bson.M{}
	for k, v := range res.Fields {
		doc[k] = v
	}
	doc[fieldCreatedAt] = res.CreatedAt.UTC()
	doc[fieldUpdatedAt] = res.UpdatedAt.UTC()

	ins, err := r.col(res.Kind).InsertOne(ctx, doc)
	if err != nil {
		return "", fmt.Errorf("insert %s: %w", res.Kind, err)
	}
	oid, ok := ins.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", fmt.Errorf("insert %s: unexpected id type %T", res.Kind, ins.InsertedID)
	}
	return oid.Hex(), nil
}

// Update applies res.Fields with $set, mirroring a partial update.
func (r *ResourceRepository) Update(ctx context.Context, res *domain.Resource) (*domain.Resource, error) {
	oid, err := primitive.ObjectIDFromHex(res.ID)
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	set := bson.M{fieldUpdatedAt: res.UpdatedAt.UTC()}
	for k, v := range res.Fields {
		set[k] = v
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var d bson.M
	err = r.col(res.Kind).FindOneAndUpdate(ctx, bson.M{fieldID: oid}, bson.M{"$set": set}, opts).Decode(&d)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrResourceNotFound
		}
		return nil, fmt.Errorf("update %s: %w", res.Kind, err)
	}
	return fromBSON(res.Kind, d), nil
}

func (r *ResourceRepository) Delete(ctx context.Context, kind domain.ResourceKind, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrInvalidID
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col(kind).DeleteOne(ctx, bson.M{fieldID: oid})
	if err != nil {
		return fmt.Errorf("delete %s: %w", kind, err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrResourceNotFound
	}
	return nil
}

// EnsureIndexes adds a created_at index to every resource collection.
func (r *ResourceRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	for _, kind := range domain.ResourceKinds {
		idx := mongo.IndexModel{Keys: bson.D{{Key: fieldCreatedAt, Value: -1}}}
		if _, err := r.col(kind).Indexes().CreateOne(ctx, idx); err != nil {
			return fmt.Errorf("%s: %w", kind, err)
		}
	}
	return nil
}

func fromBSON(kind domain.ResourceKind, d bson.M) *domain.Resource {
	res := &domain.Resource{Kind: kind, Fields: domain.Document{}}
	for k, v := range d {
		switch k {
		case fieldID:
			if oid, ok := v.(primitive.ObjectID); ok {
				res.ID = oid.Hex()
			} else {
				res.ID = fmt.Sprint(v)
			}
		case fieldCreatedAt:
			res.CreatedAt = toTime(v)
		case fieldUpdatedAt:
			res.UpdatedAt = toTime(v)
		default:
			res.Fields[k] = v
		}
	}
	return res
}

func toTime(v any) time.Time {
	switch t := v.(type) {
	case primitive.DateTime:
		return t.Time().UTC()
	case time.Time:
		return t.UTC()
	default:
		return time.Time{}
	}
}
