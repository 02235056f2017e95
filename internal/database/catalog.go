package database

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"storefront/internal/models"
)

// CategoryStore persists catalog categories.
type CategoryStore struct {
	coll *mongo.Collection
	now  func() time.Time
}

func NewCategoryStore(db *mongo.Database) *CategoryStore {
	return &CategoryStore{coll: db.Collection(categoriesCollection), now: time.Now}
}

func (s *CategoryStore) Create(ctx context.Context, c *models.Category) error {
	c.ID = primitive.NewObjectID()
	c.CreatedAt = s.now().UTC()
	if _, err := s.coll.InsertOne(ctx, c); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("insert category: %w", err)
	}
	return nil
}

func (s *CategoryStore) List(ctx context.Context) ([]models.Category, error) {
	cur, err := s.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("find categories: %w", err)
	}
	out := []models.Category{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode categories: %w", err)
	}
	return out, nil
}

func (s *CategoryStore) Get(ctx context.Context, id string) (*models.Category, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	var c models.Category
	err = s.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find category: %w", err)
	}
	return &c, nil
}

// Update sets name and description and returns the updated category.
func (s *CategoryStore) Update(ctx context.Context, id, name, description string) (*models.Category, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	var c models.Category
	err = s.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": bson.M{"name": name, "description": description}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&c)
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return nil, ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return nil, ErrDuplicate
	case err != nil:
		return nil, fmt.Errorf("update category: %w", err)
	}
	return &c, nil
}

func (s *CategoryStore) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, s.coll, id)
}

// ProductStore persists catalog products.
type ProductStore struct {
	coll *mongo.Collection
}

func NewProductStore(db *mongo.Database) *ProductStore {
	return &ProductStore{coll: db.Collection(productsCollection)}
}

func (s *ProductStore) Create(ctx context.Context, p *models.Product) error {
	p.ID = primitive.NewObjectID()
	if _, err := s.coll.InsertOne(ctx, p); err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// List returns one page of products (page is 1-based) and the total count.
func (s *ProductStore) List(ctx context.Context, page, limit int64) ([]models.Product, int64, error) {
	opts := options.Find().SetSkip((page - 1) * limit).SetLimit(limit)
	products, err := s.find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}
	return products, total, nil
}

// ProductFilter narrows Search. Query matches titles case-insensitively;
// nil bounds are open.
type ProductFilter struct {
	Query    string
	MinPrice *float64
	MaxPrice *float64
}

func (s *ProductStore) Search(ctx context.Context, f ProductFilter) ([]models.Product, error) {
	filter := bson.M{}
	if f.Query != "" {
		filter["title"] = primitive.Regex{Pattern: regexp.QuoteMeta(f.Query), Options: "i"}
	}
	if f.MinPrice != nil || f.MaxPrice != nil {
		price := bson.M{}
		if f.MinPrice != nil {
			price["$gte"] = *f.MinPrice
		}
		if f.MaxPrice != nil {
			price["$lte"] = *f.MaxPrice
		}
		filter["price"] = price
	}
	return s.find(ctx, filter)
}

func (s *ProductStore) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, s.coll, id)
}

func (s *ProductStore) find(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]models.Product, error) {
	cur, err := s.coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, fmt.Errorf("find products: %w", err)
	}
	out := []models.Product{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode products: %w", err)
	}
	return out, nil
}

func deleteByID(ctx context.Context, coll *mongo.Collection, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}
	res, err := coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete from %s: %w", coll.Name(), err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
