package helper

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"tool-catalog/internal/tool_catalog/model"
)

func (s *Stores) CreateVersion(ctx context.Context, v *model.ToolVersion) error {
	_, err := s.Versions.InsertOne(ctx, v)
	return storeErr("version", v.ID, err)
}

func (s *Stores) UpdateVersion(ctx context.Context, v *model.ToolVersion) error {
	res, err := s.Versions.ReplaceOne(ctx, bson.M{"_id": v.ID}, v)
	if err != nil {
		return storeErr("version", v.ID, err)
	}
	if res.MatchedCount == 0 {
		return storeErr("version", v.ID, errNoDocuments)
	}
	return nil
}

// ActivateVersion makes id the only active version.
func (s *Stores) ActivateVersion(ctx context.Context, id string) error {
	now := time.Now().UTC()
	_, err := s.Versions.UpdateMany(ctx,
		bson.M{"_id": bson.M{"$ne": id}, "active": true},
		bson.M{"$set": bson.M{"active": false, "updatedAt": now}})
	if err != nil {
		return storeErr("version", id, err)
	}
	res, err := s.Versions.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"active": true, "updatedAt": now}})
	if err != nil {
		return storeErr("version", id, err)
	}
	if res.MatchedCount == 0 {
		return storeErr("version", id, errNoDocuments)
	}
	return nil
}

func (s *Stores) ListVersions(ctx context.Context) ([]model.ToolVersion, error) {
	cur, err := s.Versions.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, storeErr("versions", "", err)
	}
	return decodeAll[model.ToolVersion](ctx, cur)
}

// FailStaleVersions marks versions still processing since before cutoff as failed.
func (s *Stores) FailStaleVersions(ctx context.Context, cutoff time.Time, reason string) (int64, error) {
	res, err := s.Versions.UpdateMany(ctx,
		bson.M{"status": model.VersionProcessing, "updatedAt": bson.M{"$lt": cutoff}},
		bson.M{"$set": bson.M{
			"status":         model.VersionFailed,
			"metadata.error": reason,
			"updatedAt":      time.Now().UTC(),
		}})
	if err != nil {
		return 0, storeErr("versions", "", err)
	}
	return res.ModifiedCount, nil
}
