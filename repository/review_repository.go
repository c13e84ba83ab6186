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

// ReviewRepository defines the persistence operations for customer reviews.
type ReviewRepository interface {
	Create(ctx context.Context, review *models.Review) error
	FindByID(ctx context.Context, id string) (*models.Review, error)
	FindByOrderID(ctx context.Context, orderID string) (*models.Review, error)
	FindByStore(ctx context.Context, storeID string) ([]models.Review, error)
	// SetResponse stores the store's reply. It only succeeds while the
	// review has no response yet; a reply is written once.
	SetResponse(ctx context.Context, id, response string) error
	IncrementHelpful(ctx context.Context, id string) error
	Watch(ctx context.Context) (<-chan ChangeEvent, <-chan error, error)
}

type mongoReviewRepo struct {
	coll *mongo.Collection
}

// NewReviewRepository creates a ReviewRepository backed by the reviews collection.
func NewReviewRepository(db *mongo.Database) ReviewRepository {
	return &mongoReviewRepo{coll: db.Collection(database.ReviewsCollection)}
}

func (r *mongoReviewRepo) Create(ctx context.Context, review *models.Review) error {
	_, err := r.coll.InsertOne(ctx, review)
	return err
}

func (r *mongoReviewRepo) FindByID(ctx context.Context, id string) (*models.Review, error) {
	var review models.Review
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&review)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, &apperrors.NotFoundError{Resource: "review", ID: id}
	}
	if err != nil {
		return nil, err
	}
	return &review, nil
}

func (r *mongoReviewRepo) FindByOrderID(ctx context.Context, orderID string) (*models.Review, error) {
	var review models.Review
	err := r.coll.FindOne(ctx, bson.M{"order_id": orderID}).Decode(&review)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, &apperrors.NotFoundError{Resource: "review for order", ID: orderID}
	}
	if err != nil {
		return nil, err
	}
	return &review, nil
}

func (r *mongoReviewRepo) FindByStore(ctx context.Context, storeID string) ([]models.Review, error) {
	cursor, err := r.coll.Find(ctx, bson.M{"store_id": storeID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	reviews := []models.Review{}
	if err := cursor.All(ctx, &reviews); err != nil {
		return nil, err
	}
	return reviews, nil
}

func (r *mongoReviewRepo) SetResponse(ctx context.Context, id, response string) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id, "response": bson.M{"$in": bson.A{nil, ""}}},
		bson.M{"$set": bson.M{"response": response, "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		count, err := r.coll.CountDocuments(ctx, bson.M{"_id": id})
		if err != nil {
			return err
		}
		if count == 0 {
			return &apperrors.NotFoundError{Resource: "review", ID: id}
		}
		return &apperrors.ConflictError{
			Resource: "review",
			ID:       id,
			Message:  "review already has a response",
		}
	}
	return nil
}

func (r *mongoReviewRepo) IncrementHelpful(ctx context.Context, id string) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{
			"$inc": bson.M{"helpful": 1},
			"$set": bson.M{"updated_at": time.Now().UTC()},
		},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return &apperrors.NotFoundError{Resource: "review", ID: id}
	}
	return nil
}

func (r *mongoReviewRepo) Watch(ctx context.Context) (<-chan ChangeEvent, <-chan error, error) {
	return watchCollection(ctx, r.coll)
}
