package importer

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"tool-catalog/internal/tool_catalog/model"
	"tool-catalog/internal/tool_catalog/sheet"
)

// registerQuestions creates a SurveyQuestion for each coded header seen for the
// first time. Existing questions belong to the admins and are left untouched.
func (imp *Importer) registerQuestions(ctx context.Context, headers []string) error {
	known, err := imp.Store.ListQuestions(ctx)
	if err != nil {
		return fmt.Errorf("load questions: %w", err)
	}
	codes := make(map[string]bool, len(known))
	for _, q := range known {
		codes[q.Code] = true
	}

	for _, raw := range headers {
		h := sheet.ParseHeader(raw)
		if h.Code == "" || codes[h.Code] {
			continue
		}
		codes[h.Code] = true

		order, _ := strconv.Atoi(h.Code)
		now := imp.Now()
		q := &model.SurveyQuestion{
			Code:          h.Code,
			Text:          h.Label,
			Type:          model.QuestionSurvey,
			ForComparison: includedInComparison(raw),
			SortOrder:     order,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if err := imp.Store.InsertQuestion(ctx, q); err != nil {
			return fmt.Errorf("register question %s: %w", h.Code, err)
		}
		imp.Log.Info("Registered survey question",
			zap.String("code", q.Code),
			zap.String("text", q.Text),
			zap.Bool("forComparison", q.ForComparison),
		)
	}
	return nil
}
