package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/lalaba/merchant-app/internal/core/domain"
)

// Layout of businesses/{uid}/...: one profile document per merchant keyed by
// uid, with categories, products and services in sibling collections carrying
// a uid field.
const (
	collectionBusinesses = "businesses"
	collectionCategories = "business_categories"
	collectionProducts   = "business_products"
	collectionServices   = "business_services"
)

type businessDoc struct {
	UID       string               `bson:"_id"`
	Details   *domain.BusinessInfo `bson:"details"`
	UpdatedAt time.Time            `bson:"updatedAt"`
}

type BusinessRepository struct {
	db *mongo.Database
}

func NewBusinessRepository(db *mongo.Database) *BusinessRepository {
	return &BusinessRepository{db: db}
}

// Info returns nil, nil when the merchant has no profile.
func (r *BusinessRepository) Info(ctx context.Context, uid string) (*domain.BusinessInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc businessDoc
	err := r.db.Collection(collectionBusinesses).FindOne(ctx, bson.M{"_id": uid}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("find business %s: %w", uid, err)
	}
	return doc.Details, nil
}

// SetupComplete reports the profile's status flag. A missing profile is
// incomplete.
func (r *BusinessRepository) SetupComplete(ctx context.Context, uid string) (bool, error) {
	info, err := r.Info(ctx, uid)
	if err != nil {
		return false, err
	}
	return info != nil && info.Status, nil
}

func (r *BusinessRepository) Categories(ctx context.Context, uid string) ([]domain.Category, error) {
	out := make([]domain.Category, 0)
	err := r.findAll(ctx, collectionCategories, uid, bson.D{{Key: "sortOrder", Value: 1}}, &out)
	return out, err
}

func (r *BusinessRepository) Products(ctx context.Context, uid string) ([]domain.Product, error) {
	out := make([]domain.Product, 0)
	err := r.findAll(ctx, collectionProducts, uid, bson.D{{Key: "createdAt", Value: 1}}, &out)
	return out, err
}

func (r *BusinessRepository) Services(ctx context.Context, uid string) ([]domain.Service, error) {
	out := make([]domain.Service, 0)
	err := r.findAll(ctx, collectionServices, uid, bson.D{{Key: "name", Value: 1}}, &out)
	return out, err
}

func (r *BusinessRepository) findAll(ctx context.Context, collection, uid string, sort bson.D, out any) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.db.Collection(collection).Find(ctx, bson.M{"uid": uid}, options.Find().SetSort(sort))
	if err != nil {
		return fmt.Errorf("find %s: %w", collection, err)
	}
	if err := cur.All(ctx, out); err != nil {
		return fmt.Errorf("decode %s: %w", collection, err)
	}
	return nil
}

// EnsureIndexes creates the uid lookup indexes on the business collections.
func (r *BusinessRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	for _, c := range []string{collectionCategories, collectionProducts, collectionServices} {
		_, err := r.db.Collection(c).Indexes().CreateOne(ctx, mongo.IndexModel{Keys: bson.D{{Key: "uid", Value: 1}}})
		if err != nil {
			return fmt.Errorf("index %s: %w", c, err)
		}
	}
	return nil
}
