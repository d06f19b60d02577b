package database

import (
	"context"
	"fmt"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// ConnectMongo connects to MongoDB and confirms the connection with a ping.
// The ping is retried a few times so a store that is still starting does not
// abort the process; a store that stays unreachable is an error.
func ConnectMongo(ctx context.Context, uri string, timeout time.Duration, log *logrus.Entry) (*mongo.Client, error) {
	opts := options.Client().
		ApplyURI(uri).
		SetConnectTimeout(timeout).
		SetServerSelectionTimeout(timeout)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	err = retry.Do(
		func() error {
			pingCtx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()
			return client.Ping(pingCtx, readpref.Primary())
		},
		retry.Context(ctx),
		retry.Attempts(3),
		retry.Delay(time.Second),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			log.WithError(err).WithField("attempt", n+1).Warn("MongoDB ping failed, retrying")
		}),
	)
	if err != nil {
		if derr := client.Disconnect(context.Background()); derr != nil {
			log.WithError(derr).Warn("Failed to disconnect from mongodb")
		}
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	log.Info("Successfully connected to MongoDB")
	return client, nil
}
