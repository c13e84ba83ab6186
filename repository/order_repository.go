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

// OrderRepository defines the persistence operations the order core needs.
type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, id string) (*models.Order, error)
	// FindByStore returns the store's orders, optionally restricted to a
	// status set. Results are unsorted: compound filter+sort is pushed to
	// the caller so no composite index is required on the store.
	FindByStore(ctx context.Context, storeID string, statuses []models.OrderStatus) ([]models.Order, error)
	// UpdateStatus is a compare-and-swap on the current status: the write
	// only lands if the order is still in `from` when it reaches the store.
	UpdateStatus(ctx context.Context, id string, from, to models.OrderStatus) error
	SetTracking(ctx context.Context, id string, tracking *models.DeliveryTracking) error
	UpdateTracking(ctx context.Context, id string, status models.DeliveryStatus, location *models.GeoPoint) error
	Watch(ctx context.Context) (<-chan ChangeEvent, <-chan error, error)
}

type mongoOrderRepo struct {
	coll *mongo.Collection
}

// NewOrderRepository creates an OrderRepository backed by the orders collection.
func NewOrderRepository(db *mongo.Database) OrderRepository {
	return &mongoOrderRepo{coll: db.Collection(database.OrdersCollection)}
}

func (r *mongoOrderRepo) Create(ctx context.Context, order *models.Order) error {
	_, err := r.coll.InsertOne(ctx, order)
	return err
}

func (r *mongoOrderRepo) FindByID(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&order)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, &apperrors.NotFoundError{Resource: "order", ID: id}
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *mongoOrderRepo) FindByStore(ctx context.Context, storeID string, statuses []models.OrderStatus) ([]models.Order, error) {
	filter := bson.M{"store_id": storeID}
	if len(statuses) > 0 {
		filter["status"] = bson.M{"$in": statuses}
	}

	cursor, err := r.coll.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	orders := []models.Order{}
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *mongoOrderRepo) UpdateStatus(ctx context.Context, id string, from, to models.OrderStatus) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id, "status": from},
		bson.M{"$set": bson.M{"status": to, "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		// Either the order is gone or another client moved it first.
		count, err := r.coll.CountDocuments(ctx, bson.M{"_id": id})
		if err != nil {
			return err
		}
		if count == 0 {
			return &apperrors.NotFoundError{Resource: "order", ID: id}
		}
		return &apperrors.ConflictError{
			Resource: "order",
			ID:       id,
			Message:  "status changed concurrently, transition not applied",
		}
	}
	return nil
}

func (r *mongoOrderRepo) SetTracking(ctx context.Context, id string, tracking *models.DeliveryTracking) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"tracking": tracking, "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return &apperrors.NotFoundError{Resource: "order", ID: id}
	}
	return nil
}

func (r *mongoOrderRepo) UpdateTracking(ctx context.Context, id string, status models.DeliveryStatus, location *models.GeoPoint) error {
	set := bson.M{"updated_at": time.Now().UTC()}
	if status != "" {
		set["tracking.status"] = status
		if status == models.DeliveryPickedUp {
			set["tracking.picked_up_at"] = time.Now().UTC()
		}
	}
	if location != nil {
		set["tracking.location"] = location
	}

	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id, "tracking": bson.M{"$ne": nil}},
		bson.M{"$set": set},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return &apperrors.NotFoundError{Resource: "order tracking", ID: id}
	}
	return nil
}

func (r *mongoOrderRepo) Watch(ctx context.Context) (<-chan ChangeEvent, <-chan error, error) {
	return watchCollection(ctx, r.coll)
}
