package model

import "time"

type QuestionType string

const (
	QuestionMetadata QuestionType = "metadata"
	QuestionSurvey   QuestionType = "survey"
)

// Tool fields a metadata question may target.
const (
	FieldName              = "name"
	FieldVendor            = "vendor"
	FieldWebsite           = "website"
	FieldCategory          = "category"
	FieldSecondaryCategory = "secondaryCategory"
)

func ValidTargetField(f string) bool {
	switch f {
	case FieldName, FieldVendor, FieldWebsite, FieldCategory, FieldSecondaryCategory:
		return true
	}
	return false
}

// SurveyQuestion binds a coded column ("Label [004]") to a tool field or a comparison row.
type SurveyQuestion struct {
	Code           string       `bson:"_id" json:"code"`
	Text           string       `bson:"text" json:"text"`
	Type           QuestionType `bson:"type" json:"type"`
	TargetField    string       `bson:"target_field,omitempty" json:"targetField,omitempty"`
	ForComparison  bool         `bson:"for_comparison" json:"forComparison"`
	MultipleChoice bool         `bson:"multiple_choice" json:"multipleChoice"`
	SupportiveText string       `bson:"supportive_text,omitempty" json:"supportiveText,omitempty"`
	SortOrder      int          `bson:"sort_order" json:"sortOrder"`
	CreatedAt      time.Time    `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time    `bson:"updatedAt" json:"updatedAt"`
}

// Normalize enforces the type invariants: metadata questions never feed the
// comparison view, survey questions never target a tool field.
func (q *SurveyQuestion) Normalize() {
	switch q.Type {
	case QuestionMetadata:
		q.ForComparison = false
		q.MultipleChoice = false
	default:
		q.Type = QuestionSurvey
		q.TargetField = ""
	}
}
