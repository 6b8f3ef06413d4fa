package mapping

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tool-catalog/internal/tool_catalog/model"
)

func TestResolveAppliesMetadataMappings(t *testing.T) {
	tool := &model.Tool{
		Name:   "Acme",
		Vendor: "Acme Inc",
		RawRow: map[string]string{
			"Product [001]":          "Acme Studio",
			"Company [002]":          "",
			"Home page [003]":        "https://acme.test",
			"Primary category [004]": "Analytics",
		},
	}
	questions := []model.SurveyQuestion{
		{Code: "001", Type: model.QuestionMetadata, TargetField: model.FieldName},
		{Code: "002", Type: model.QuestionMetadata, TargetField: model.FieldVendor},
		{Code: "003", Type: model.QuestionMetadata, TargetField: model.FieldWebsite},
		{Code: "004", Type: model.QuestionSurvey, ForComparison: true},
	}

	d := Resolve(tool, questions)
	assert.Equal(t, "Acme Studio", d.Name)
	assert.Equal(t, "Acme Inc", d.Vendor, "empty mapped cell keeps the stored value")
	assert.Equal(t, "https://acme.test", d.Website)
	assert.Equal(t, "Analytics", d.Category, "label fallback finds the category column")
}

func TestResolveCategoryFallbackSkipsSecondary(t *testing.T) {
	tool := &model.Tool{RawRow: map[string]string{
		"Secondary category [005]": "Reporting",
		"Category":                 "BI",
	}}

	d := Resolve(tool, nil)
	assert.Equal(t, "BI", d.Category)
	assert.Equal(t, "Reporting", d.SecondaryCategory)

	d = Resolve(&model.Tool{RawRow: map[string]string{"Sub-category": "Dashboards"}}, nil)
	assert.Empty(t, d.Category)
	assert.Equal(t, "Dashboards", d.SecondaryCategory)
}

func TestResolveMappingWinsOverStoredCategory(t *testing.T) {
	tool := &model.Tool{
		Category: "Old",
		RawRow:   map[string]string{"Main area [007]": "New", "2nd category [008]": "Side"},
	}
	questions := []model.SurveyQuestion{
		{Code: "007", Type: model.QuestionMetadata, TargetField: model.FieldCategory},
	}

	d := Resolve(tool, questions)
	assert.Equal(t, "New", d.Category)
	assert.Equal(t, "Side", d.SecondaryCategory)
}

func TestResolveWithoutSnapshot(t *testing.T) {
	tool := &model.Tool{Name: "Solo", Category: "X"}
	assert.Equal(t, Display{Name: "Solo", Category: "X"}, Resolve(tool, nil))
}

func TestBuildComparison(t *testing.T) {
	tools := []model.Tool{
		{ID: "a", Slug: "acme", Name: "Acme", ComparisonData: map[string]string{
			"Pricing Model [010]": "Usage",
			"Integrations [011]":  "Slack; Teams ;",
			"Hidden [012]":        "x",
			"Notes":               "fast",
		}},
		{ID: "b", Slug: "beta", Name: "Beta", ComparisonData: map[string]string{
			"Pricing Model [010]": "Flat",
		}},
	}
	questions := []model.SurveyQuestion{
		{Code: "011", Text: "Integrations", Type: model.QuestionSurvey, ForComparison: true, MultipleChoice: true, SortOrder: 1},
		{Code: "010", Text: "Pricing model", Type: model.QuestionSurvey, ForComparison: true, SortOrder: 1},
		{Code: "012", Text: "Hidden", Type: model.QuestionSurvey, ForComparison: false},
		{Code: "013", Text: "Unanswered", Type: model.QuestionSurvey, ForComparison: true},
	}

	tbl := BuildComparison(tools, questions)
	require.Len(t, tbl.Tools, 2)
	assert.Equal(t, "acme", tbl.Tools[0].Slug)

	require.Len(t, tbl.Rows, 3)
	assert.Equal(t, "010", tbl.Rows[0].Code)
	assert.Equal(t, [][]string{{"Usage"}, {"Flat"}}, tbl.Rows[0].Cells)
	assert.Equal(t, "011", tbl.Rows[1].Code)
	assert.Equal(t, [][]string{{"Slack", "Teams"}, {}}, tbl.Rows[1].Cells)
	assert.Equal(t, "Notes", tbl.Rows[2].Question)
	assert.Equal(t, [][]string{{"fast"}, {}}, tbl.Rows[2].Cells)
}
