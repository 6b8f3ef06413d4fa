package helper

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"tool-catalog/internal/tool_catalog/model"
)

func (s *Stores) ListQuestions(ctx context.Context) ([]model.SurveyQuestion, error) {
	cur, err := s.Questions.Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "sort_order", Value: 1}, {Key: "_id", Value: 1}}))
	if err != nil {
		return nil, storeErr("questions", "", err)
	}
	return decodeAll[model.SurveyQuestion](ctx, cur)
}

func (s *Stores) Question(ctx context.Context, code string) (*model.SurveyQuestion, error) {
	var q model.SurveyQuestion
	if err := s.Questions.FindOne(ctx, bson.M{"_id": code}).Decode(&q); err != nil {
		return nil, storeErr("question", code, err)
	}
	return &q, nil
}

func (s *Stores) InsertQuestion(ctx context.Context, q *model.SurveyQuestion) error {
	_, err := s.Questions.InsertOne(ctx, q)
	return storeErr("question", q.Code, err)
}

func (s *Stores) SaveQuestion(ctx context.Context, q *model.SurveyQuestion) error {
	_, err := s.Questions.ReplaceOne(ctx, bson.M{"_id": q.Code}, q, options.Replace().SetUpsert(true))
	return storeErr("question", q.Code, err)
}
