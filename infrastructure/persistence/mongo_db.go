package persistence

import (
	"context"
	"fmt"
	"time"

	"postpilot/infrastructure/configuration"
	"postpilot/infrastructure/logger"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// NewMongoDb connects to the optional MongoDB used for the execution audit
// archive. Returns nil without error when no Mongo host is configured; the
// callers treat a nil database as "archive disabled".
func NewMongoDb() (*mongo.Database, error) {
	cfg := configuration.C.Database.Mongo
	if cfg.Host == "" {
		logger.GetLogger().Info("Mongo host not configured, execution audit archive disabled")
		return nil, nil
	}

	uri := fmt.Sprintf("mongodb://%s:%s", cfg.Host, cfg.Port)
	if cfg.User != "" {
		uri = fmt.Sprintf("mongodb://%s:%s@%s:%s", cfg.User, cfg.Password, cfg.Host, cfg.Port)
	}

	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	name := cfg.Name
	if name == "" {
		name = "postpilot"
	}
	return client.Database(name), nil
}
