package repositories

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
)

// withTransaction runs fn inside a MongoDB transaction. Conflicting
// concurrent writers abort and are retried by the driver within its own
// bounded window, so a read-modify-write sequence inside fn behaves as a
// single compare-and-swap against the store.
func withTransaction(ctx context.Context, client *mongo.Client, fn func(sc mongo.SessionContext) error) error {
	session, err := client.StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}
