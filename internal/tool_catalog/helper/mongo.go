package helper

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"tool-catalog/pkg/apperr"
	"tool-catalog/pkg/config"
)

// Stores is the Mongo-backed persistence for every catalog entity.
type Stores struct {
	Client    *mongo.Client
	DB        *mongo.Database
	Tools     *mongo.Collection // tools
	Versions  *mongo.Collection // tool_versions
	Questions *mongo.Collection // survey_questions
	Reports   *mongo.Collection // reports
	Site      *mongo.Collection // site_content
}

// Connect dials Mongo, pings it and makes sure the indexes exist.
func Connect(ctx context.Context, cfg config.MongoConfig) (*Stores, error) {
	clientOpts := options.Client().ApplyURI("mongodb://" + cfg.Host)
	if cfg.Username != "" {
		clientOpts.SetAuth(options.Credential{
			Username:   cfg.Username,
			Password:   cfg.Password,
			AuthSource: cfg.AuthSource,
		})
	}

	cli, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err = cli.Ping(ctx, nil); err != nil {
		_ = cli.Disconnect(ctx)
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	s := NewStores(cli, cli.Database(cfg.DBName))
	if err := s.ensureIndexes(ctx); err != nil {
		_ = cli.Disconnect(ctx)
		return nil, err
	}
	return s, nil
}

func NewStores(cli *mongo.Client, db *mongo.Database) *Stores {
	return &Stores{
		Client:    cli,
		DB:        db,
		Tools:     db.Collection("tools"),
		Versions:  db.Collection("tool_versions"),
		Questions: db.Collection("survey_questions"),
		Reports:   db.Collection("reports"),
		Site:      db.Collection("site_content"),
	}
}

func (s *Stores) Close(ctx context.Context) error {
	return s.Client.Disconnect(ctx)
}

func (s *Stores) ensureIndexes(ctx context.Context) error {
	// tools: slug is the public URL key and must stay unique
	_, err := s.Tools.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "slug", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "metadata.importId", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "category", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("create tool indexes: %w", err)
	}
	_, err = s.Versions.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "active", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "updatedAt", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("create version indexes: %w", err)
	}
	return nil
}

var errNoDocuments = mongo.ErrNoDocuments

// storeErr maps driver errors onto the apperr taxonomy.
func storeErr(resource, id string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return apperr.NewNotFoundError(resource, id)
	case mongo.IsDuplicateKeyError(err):
		return apperr.Conflict(fmt.Sprintf("%s %s", resource, id), err)
	default:
		return fmt.Errorf("%s %s: %w", resource, id, err)
	}
}

func decodeAll[T any](ctx context.Context, cur *mongo.Cursor) ([]T, error) {
	defer func(cur *mongo.Cursor, ctx context.Context) {
		_ = cur.Close(ctx)
	}(cur, ctx)

	out := []T{}
	for cur.Next(ctx) {
		var v T
		if err := cur.Decode(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, cur.Err()
}
