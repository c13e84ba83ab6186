package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/duwalace/App-Rango-sub000/apperrors"
	"github.com/duwalace/App-Rango-sub000/database"
	"github.com/duwalace/App-Rango-sub000/models"
)

// PromotionRepository defines the persistence operations for promotions.
type PromotionRepository interface {
	Create(ctx context.Context, promo *models.Promotion) error
	FindByID(ctx context.Context, id string) (*models.Promotion, error)
	FindByStore(ctx context.Context, storeID string) ([]models.Promotion, error)
	SetActive(ctx context.Context, id string, active bool) error
	// IncrementUsage bumps the usage counter, honoring the usage limit when
	// one is set (0 means unlimited).
	IncrementUsage(ctx context.Context, id string) error
}

type mongoPromotionRepo struct {
	coll *mongo.Collection
}

// NewPromotionRepository creates a PromotionRepository backed by the
// promotions collection.
func NewPromotionRepository(db *mongo.Database) PromotionRepository {
	return &mongoPromotionRepo{coll: db.Collection(database.PromotionsCollection)}
}

func (r *mongoPromotionRepo) Create(ctx context.Context, promo *models.Promotion) error {
	_, err := r.coll.InsertOne(ctx, promo)
	return err
}

func (r *mongoPromotionRepo) FindByID(ctx context.Context, id string) (*models.Promotion, error) {
	var promo models.Promotion
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&promo)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, &apperrors.NotFoundError{Resource: "promotion", ID: id}
	}
	if err != nil {
		return nil, err
	}
	return &promo, nil
}

func (r *mongoPromotionRepo) FindByStore(ctx context.Context, storeID string) ([]models.Promotion, error) {
	cursor, err := r.coll.Find(ctx, bson.M{"store_id": storeID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	promos := []models.Promotion{}
	if err := cursor.All(ctx, &promos); err != nil {
		return nil, err
	}
	return promos, nil
}

func (r *mongoPromotionRepo) SetActive(ctx context.Context, id string, active bool) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"is_active": active, "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return &apperrors.NotFoundError{Resource: "promotion", ID: id}
	}
	return nil
}

func (r *mongoPromotionRepo) IncrementUsage(ctx context.Context, id string) error {
	filter := bson.M{
		"_id": id,
		"$or": bson.A{
			bson.M{"usage_limit": 0},
			bson.M{"$expr": bson.M{"$lt": bson.A{"$usage_count", "$usage_limit"}}},
		},
	}
	res, err := r.coll.UpdateOne(ctx, filter, bson.M{
		"$inc": bson.M{"usage_count": 1},
		"$set": bson.M{"updated_at": time.Now().UTC()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		count, err := r.coll.CountDocuments(ctx, bson.M{"_id": id})
		if err != nil {
			return err
		}
		if count == 0 {
			return &apperrors.NotFoundError{Resource: "promotion", ID: id}
		}
		return &apperrors.ConflictError{
			Resource: "promotion",
			ID:       id,
			Message:  "usage limit reached",
		}
	}
	return nil
}
