package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
)

// ChangeEvent is one mutation observed on a watched collection. Subscribers
// re-query their filtered view on every event rather than patching deltas.
type ChangeEvent struct {
	Collection    string
	OperationType string
	DocumentID    string
}

// watchCollection opens a change stream on coll and pumps events into a
// channel until the context is cancelled or the stream fails. A stream
// failure is reported on the error channel and ends the pump; the caller is
// expected to surface it and stop emitting snapshots.
func watchCollection(ctx context.Context, coll *mongo.Collection) (<-chan ChangeEvent, <-chan error, error) {
	stream, err := coll.Watch(ctx, mongo.Pipeline{})
	if err != nil {
		return nil, nil, err
	}

	events := make(chan ChangeEvent)
	errs := make(chan error, 1)

	go func() {
		defer close(events)
		defer stream.Close(context.Background())

		for stream.Next(ctx) {
			var change struct {
				OperationType string `bson:"operationType"`
				DocumentKey   struct {
					ID string `bson:"_id"`
				} `bson:"documentKey"`
			}
			if err := stream.Decode(&change); err != nil {
				errs <- err
				return
			}
			select {
			case events <- ChangeEvent{
				Collection:    coll.Name(),
				OperationType: change.OperationType,
				DocumentID:    change.DocumentKey.ID,
			}:
			case <-ctx.Done():
				return
			}
		}
		if err := stream.Err(); err != nil && ctx.Err() == nil {
			errs <- err
		}
	}()

	return events, errs, nil
}
