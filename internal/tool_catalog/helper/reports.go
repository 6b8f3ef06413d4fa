package helper

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"tool-catalog/internal/tool_catalog/model"
)

func (s *Stores) ListReports(ctx context.Context, publishedOnly bool) ([]model.ReportMetadata, error) {
	filter := bson.M{}
	if publishedOnly {
		filter["published"] = true
	}
	cur, err := s.Reports.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "updatedAt", Value: -1}}))
	if err != nil {
		return nil, storeErr("reports", "", err)
	}
	return decodeAll[model.ReportMetadata](ctx, cur)
}

func (s *Stores) Report(ctx context.Context, toolID string) (*model.ReportMetadata, error) {
	var r model.ReportMetadata
	if err := s.Reports.FindOne(ctx, bson.M{"_id": toolID}).Decode(&r); err != nil {
		return nil, storeErr("report", toolID, err)
	}
	return &r, nil
}

func (s *Stores) SaveReport(ctx context.Context, r *model.ReportMetadata) error {
	_, err := s.Reports.ReplaceOne(ctx, bson.M{"_id": r.ToolID}, r, options.Replace().SetUpsert(true))
	return storeErr("report", r.ToolID, err)
}

func (s *Stores) SetReportPublished(ctx context.Context, toolID string, published bool) (*model.ReportMetadata, error) {
	var r model.ReportMetadata
	err := s.Reports.FindOneAndUpdate(ctx, bson.M{"_id": toolID},
		bson.M{"$set": bson.M{"published": published, "updatedAt": time.Now().UTC()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&r)
	if err != nil {
		return nil, storeErr("report", toolID, err)
	}
	return &r, nil
}

func (s *Stores) SiteContent(ctx context.Context, key string) (*model.SiteContent, error) {
	var c model.SiteContent
	if err := s.Site.FindOne(ctx, bson.M{"_id": key}).Decode(&c); err != nil {
		return nil, storeErr("site content", key, err)
	}
	return &c, nil
}

func (s *Stores) SaveSiteContent(ctx context.Context, c *model.SiteContent) error {
	_, err := s.Site.ReplaceOne(ctx, bson.M{"_id": c.Key}, c, options.Replace().SetUpsert(true))
	return storeErr("site content", c.Key, err)
}
