package mapping

import (
	"sort"
	"strings"

	"tool-catalog/internal/tool_catalog/model"
	"tool-catalog/internal/tool_catalog/sheet"
)

// MultiValueSeparator splits multiple-choice answers.
const MultiValueSeparator = ";"

type ToolColumn struct {
	ID      string `json:"id"`
	Slug    string `json:"slug"`
	Name    string `json:"name"`
	Vendor  string `json:"vendor"`
	Summary string `json:"summary"`
}

type Row struct {
	Code           string     `json:"code,omitempty"`
	Question       string     `json:"question"`
	SupportiveText string     `json:"supportiveText,omitempty"`
	MultipleChoice bool       `json:"multipleChoice"`
	Cells          [][]string `json:"cells"` // one entry per tool column
}

// Table is the side-by-side comparison of a set of tools.
type Table struct {
	Tools []ToolColumn `json:"tools"`
	Rows  []Row        `json:"rows"`
}

// BuildComparison lays tools out against the comparison questions, ordered by sort
// order then code. Uncoded comparison keys and keys whose code has no question
// follow alphabetically. Rows without any value are left out.
func BuildComparison(tools []model.Tool, questions []model.SurveyQuestion) Table {
	var tbl Table
	for i := range tools {
		d := Resolve(&tools[i], questions)
		tbl.Tools = append(tbl.Tools, ToolColumn{
			ID:      tools[i].ID,
			Slug:    tools[i].Slug,
			Name:    d.Name,
			Vendor:  d.Vendor,
			Summary: tools[i].Summary,
		})
	}

	known := make(map[string]bool, len(questions))
	var rows []model.SurveyQuestion
	for _, q := range questions {
		known[q.Code] = true
		if q.Type == model.QuestionSurvey && q.ForComparison {
			rows = append(rows, q)
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].SortOrder != rows[j].SortOrder {
			return rows[i].SortOrder < rows[j].SortOrder
		}
		return rows[i].Code < rows[j].Code
	})

	for _, q := range rows {
		r := Row{Code: q.Code, Question: q.Text, SupportiveText: q.SupportiveText, MultipleChoice: q.MultipleChoice}
		r.Cells = cells(tools, func(data map[string]string) string {
			for k, v := range data {
				if sheet.CodeOf(k) == q.Code {
					return v
				}
			}
			return ""
		}, q.MultipleChoice)
		if hasValue(r.Cells) {
			tbl.Rows = append(tbl.Rows, r)
		}
	}

	extra := make(map[string]bool)
	for i := range tools {
		for k := range tools[i].ComparisonData {
			if c := sheet.CodeOf(k); c == "" || !known[c] {
				extra[k] = true
			}
		}
	}
	keys := make([]string, 0, len(extra))
	for k := range extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		r := Row{Question: k}
		r.Cells = cells(tools, func(data map[string]string) string { return data[k] }, false)
		if hasValue(r.Cells) {
			tbl.Rows = append(tbl.Rows, r)
		}
	}
	return tbl
}

func cells(tools []model.Tool, pick func(map[string]string) string, multi bool) [][]string {
	out := make([][]string, len(tools))
	for i := range tools {
		v := strings.TrimSpace(pick(tools[i].ComparisonData))
		if v == "" {
			out[i] = []string{}
			continue
		}
		if !multi {
			out[i] = []string{v}
			continue
		}
		parts := []string{}
		for _, p := range strings.Split(v, MultiValueSeparator) {
			if p = strings.TrimSpace(p); p != "" {
				parts = append(parts, p)
			}
		}
		out[i] = parts
	}
	return out
}

func hasValue(cs [][]string) bool {
	for _, c := range cs {
		if len(c) > 0 {
			return true
		}
	}
	return false
}
