package helper

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"tool-catalog/internal/tool_catalog/model"
)

func (s *Stores) ListTools(ctx context.Context) ([]model.Tool, error) {
	cur, err := s.Tools.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, storeErr("tools", "", err)
	}
	return decodeAll[model.Tool](ctx, cur)
}

func (s *Stores) ToolBySlug(ctx context.Context, slug string) (*model.Tool, error) {
	var t model.Tool
	if err := s.Tools.FindOne(ctx, bson.M{"slug": slug}).Decode(&t); err != nil {
		return nil, storeErr("tool", slug, err)
	}
	return &t, nil
}

func (s *Stores) ToolByID(ctx context.Context, id string) (*model.Tool, error) {
	var t model.Tool
	if err := s.Tools.FindOne(ctx, bson.M{"_id": id}).Decode(&t); err != nil {
		return nil, storeErr("tool", id, err)
	}
	return &t, nil
}

// ToolsByIDs returns the tools in the order of ids; unknown ids are skipped.
func (s *Stores) ToolsByIDs(ctx context.Context, ids []string) ([]model.Tool, error) {
	cur, err := s.Tools.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, storeErr("tools", "", err)
	}
	found, err := decodeAll[model.Tool](ctx, cur)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]model.Tool, len(found))
	for _, t := range found {
		byID[t.ID] = t
	}
	out := make([]model.Tool, 0, len(ids))
	for _, id := range ids {
		if t, ok := byID[id]; ok {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *Stores) InsertTool(ctx context.Context, t *model.Tool) error {
	_, err := s.Tools.InsertOne(ctx, t)
	return storeErr("tool", t.Slug, err)
}

// UpdateTool replaces the stored document with t.
func (s *Stores) UpdateTool(ctx context.Context, t *model.Tool) error {
	res, err := s.Tools.ReplaceOne(ctx, bson.M{"_id": t.ID}, t)
	if err != nil {
		return storeErr("tool", t.Slug, err)
	}
	if res.MatchedCount == 0 {
		return storeErr("tool", t.ID, errNoDocuments)
	}
	return nil
}

// PatchTool applies the admin-editable flags; nil fields are left alone.
func (s *Stores) PatchTool(ctx context.Context, id string, status *model.ToolStatus, featured *bool) (*model.Tool, error) {
	set := bson.M{"updatedAt": time.Now().UTC()}
	if status != nil {
		set["status"] = *status
	}
	if featured != nil {
		set["featured"] = *featured
	}
	var t model.Tool
	err := s.Tools.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&t)
	if err != nil {
		return nil, storeErr("tool", id, err)
	}
	return &t, nil
}
