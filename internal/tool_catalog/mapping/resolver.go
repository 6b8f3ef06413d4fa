// Package mapping applies the current SurveyQuestion mappings to stored tools at read time,
// so remapping a column changes what is displayed without a re-import.
package mapping

import (
	"regexp"
	"sort"
	"strings"

	"tool-catalog/internal/tool_catalog/model"
	"tool-catalog/internal/tool_catalog/sheet"
)

// Display holds the read-time display fields of a tool.
type Display struct {
	Name              string `json:"name"`
	Vendor            string `json:"vendor"`
	Website           string `json:"website"`
	Category          string `json:"category"`
	SecondaryCategory string `json:"secondaryCategory,omitempty"`
}

var fieldSetters = map[string]func(*Display, string){
	model.FieldName:              func(d *Display, v string) { d.Name = v },
	model.FieldVendor:            func(d *Display, v string) { d.Vendor = v },
	model.FieldWebsite:           func(d *Display, v string) { d.Website = v },
	model.FieldCategory:          func(d *Display, v string) { d.Category = v },
	model.FieldSecondaryCategory: func(d *Display, v string) { d.SecondaryCategory = v },
}

var (
	categoryLabel  = regexp.MustCompile(`(?i)categor`)
	secondaryLabel = regexp.MustCompile(`(?i)(secondary|2nd|sub)[\s-]*categor`)
)

// Resolve recomputes t's display fields from its raw row snapshot using the metadata
// questions in questions. Columns labelled "...categor..." are a fallback for
// category and secondary category when no mapping filled them.
func Resolve(t *model.Tool, questions []model.SurveyQuestion) Display {
	d := Display{
		Name:              t.Name,
		Vendor:            t.Vendor,
		Website:           t.Website,
		Category:          t.Category,
		SecondaryCategory: t.SecondaryCategory,
	}
	raw := t.RawRow
	if len(raw) == 0 {
		return d
	}
	keys := sortedKeys(raw)

	for _, q := range questions {
		if q.Type != model.QuestionMetadata || q.TargetField == "" {
			continue
		}
		set, ok := fieldSetters[q.TargetField]
		if !ok {
			continue
		}
		for _, k := range keys {
			if sheet.CodeOf(k) != q.Code {
				continue
			}
			if v := strings.TrimSpace(raw[k]); v != "" {
				set(&d, v)
			}
			break
		}
	}

	if d.Category == "" {
		d.Category = findByLabel(raw, keys, func(label string) bool {
			return categoryLabel.MatchString(label) && !secondaryLabel.MatchString(label)
		})
	}
	if d.SecondaryCategory == "" {
		d.SecondaryCategory = findByLabel(raw, keys, secondaryLabel.MatchString)
	}
	return d
}

func findByLabel(raw map[string]string, keys []string, match func(string) bool) string {
	for _, k := range keys {
		if !match(sheet.LabelOf(k)) {
			continue
		}
		if v := strings.TrimSpace(raw[k]); v != "" {
			return v
		}
	}
	return ""
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
