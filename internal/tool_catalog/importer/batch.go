package importer

import (
	"fmt"

	"tool-catalog/internal/tool_catalog/model"
	"tool-catalog/internal/tool_catalog/sheet"
)

const untitledTool = "Untitled Tool"

// Header candidates, matched with sheet.Lookup.
var (
	idColumns      = []string{"ID", "id"}
	nameColumns    = []string{"Tool name", "Name", "name"}
	summaryColumns = []string{"Summary", "Description"}
)

// coreKeys are normalized keys that never land in comparison data unless the
// column carries a compare prefix.
var coreKeys = map[string]bool{
	"id":                 true,
	"tool name":          true,
	"name":               true,
	"vendor":             true,
	"summary":            true,
	"description":        true,
	"category":           true,
	"website":            true,
	"timestamp":          true,
	"email":              true,
	"email address":      true,
	"start time":         true,
	"completion time":    true,
	"last modified time": true,
}

// batch owns the lookup state of one run. The indexes reflect the catalog at the
// start of the run; minted tracks slugs handed out to new tools in this run.
type batch struct {
	byImportID map[string]*model.Tool
	bySlug     map[string]*model.Tool
	minted     map[string]bool
	seenIDs    map[string]bool
}

func newBatch(tools []model.Tool) *batch {
	b := &batch{
		byImportID: make(map[string]*model.Tool, len(tools)),
		bySlug:     make(map[string]*model.Tool, len(tools)),
		minted:     make(map[string]bool),
		seenIDs:    make(map[string]bool),
	}
	for i := range tools {
		t := &tools[i]
		if id := t.ImportID(); id != "" {
			b.byImportID[id] = t
		}
		b.bySlug[t.Slug] = t
	}
	return b
}

// rowPlan is everything decided about a row before anything is written.
type rowPlan struct {
	index    int
	importID string
	name     string
	slug     string
	existing *model.Tool

	vendor   string
	category string
	website  string
	summary  string

	needsNarrative bool
	comparison     map[string]string
	metadata       map[string]any
	raw            map[string]string
}

// plan reports false for rows that cannot be reconciled: no identifier, or an
// identifier already used by an earlier row of the same file.
func (b *batch) plan(index int, row sheet.Row, opts Options) (*rowPlan, bool) {
	id, ok := sheet.Lookup(row, idColumns...)
	if !ok || b.seenIDs[id] {
		return nil, false
	}
	b.seenIDs[id] = true

	name, ok := sheet.Lookup(row, nameColumns...)
	if !ok {
		name = untitledTool
	}
	p := &rowPlan{
		index:      index,
		importID:   id,
		name:       name,
		slug:       sheet.Slugify(name),
		comparison: comparisonData(row),
		raw:        make(map[string]string, len(row)),
		metadata:   map[string]any{model.MetaImportID: id},
	}
	p.vendor, _ = sheet.Lookup(row, "Vendor")
	p.category, _ = sheet.Lookup(row, "Category")
	p.website, _ = sheet.Lookup(row, "Website")
	for k, v := range row {
		p.raw[k] = v
		p.metadata[k] = v
	}

	p.existing = b.byImportID[id]
	if p.existing == nil {
		p.existing = b.bySlug[p.slug]
	}

	switch summary, ok := sheet.Lookup(row, summaryColumns...); {
	case ok:
		p.summary = summary
	case p.existing != nil && p.existing.Summary != "" && !opts.RegenerateNarratives:
		p.summary = p.existing.Summary
	default:
		p.needsNarrative = true
	}
	return p, true
}

// comparisonData keeps every non-empty column that is not a core field, under its
// original header. A compare prefix always includes the column, with the prefix
// removed from the key.
func comparisonData(row sheet.Row) map[string]string {
	out := make(map[string]string)
	for k, v := range row {
		if sheet.IsEmpty(v) {
			continue
		}
		h := sheet.ParseHeader(k)
		switch {
		case h.Compare:
			out[h.Key] = v
		case !coreKeys[sheet.NormalizeKey(k)]:
			out[k] = v
		}
	}
	return out
}

// includedInComparison reports whether a header's column would be kept by comparisonData.
func includedInComparison(header string) bool {
	return sheet.ParseHeader(header).Compare || !coreKeys[sheet.NormalizeKey(header)]
}

// mintSlug returns base, or base-2, base-3, ... avoiding slugs that existed
// before the run and slugs minted earlier in it.
func (b *batch) mintSlug(base string) string {
	slug := base
	for n := 2; b.bySlug[slug] != nil || b.minted[slug]; n++ {
		slug = fmt.Sprintf("%s-%d", base, n)
	}
	b.minted[slug] = true
	return slug
}

// fill copies the row's attributes onto t. Slug, ID, timestamps and the featured
// flag are the caller's business.
func (p *rowPlan) fill(t *model.Tool, versionID string) {
	t.Name = p.name
	t.Vendor = p.vendor
	t.Category = p.category
	t.Website = p.website
	t.Summary = p.summary
	t.Status = model.ToolPublished
	t.RawRow = p.raw
	t.ComparisonData = p.comparison
	t.Metadata = p.metadata
	t.VersionID = versionID
}
