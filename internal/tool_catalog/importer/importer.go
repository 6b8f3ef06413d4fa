// Package importer reconciles an uploaded catalog spreadsheet with the stored tools.
//
// A run decodes the first worksheet, plans every row against the catalog as it was
// when the run started, generates missing summaries on a bounded worker pool, then
// writes rows strictly in file order so slug collisions resolve deterministically.
package importer

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"tool-catalog/internal/tool_catalog/cache"
	"tool-catalog/internal/tool_catalog/model"
	"tool-catalog/internal/tool_catalog/narrative"
	"tool-catalog/internal/tool_catalog/sheet"
)

// Store is the persistence the pipeline writes through.
type Store interface {
	ListTools(ctx context.Context) ([]model.Tool, error)
	InsertTool(ctx context.Context, t *model.Tool) error
	UpdateTool(ctx context.Context, t *model.Tool) error

	CreateVersion(ctx context.Context, v *model.ToolVersion) error
	UpdateVersion(ctx context.Context, v *model.ToolVersion) error
	ActivateVersion(ctx context.Context, id string) error

	ListQuestions(ctx context.Context) ([]model.SurveyQuestion, error)
	InsertQuestion(ctx context.Context, q *model.SurveyQuestion) error
}

type Options struct {
	// RegenerateNarratives asks the generator for a new summary even when the
	// matched tool already has one.
	RegenerateNarratives bool
}

// Result summarizes one run.
type Result struct {
	VersionID string `json:"versionId"`
	Rows      int    `json:"rows"`
	Columns   int    `json:"columns"`
	Created   int    `json:"created"`
	Updated   int    `json:"updated"`
	Skipped   int    `json:"skipped"`
}

type Importer struct {
	Log       *zap.Logger
	Store     Store
	Cache     cache.Cache
	Narrative narrative.Generator // nil disables summary generation
	Workers   int

	Now   func() time.Time
	NewID func() string
}

func New(log *zap.Logger, store Store, c cache.Cache, gen narrative.Generator, workers int) *Importer {
	if workers <= 0 {
		workers = 1
	}
	return &Importer{
		Log:       log,
		Store:     store,
		Cache:     c,
		Narrative: gen,
		Workers:   workers,
		Now:       func() time.Time { return time.Now().UTC() },
		NewID:     uuid.NewString,
	}
}

// Run imports buf under label. Decoding problems are returned before anything is
// written. A storage error stops the run; rows written before it stay written and
// the version is marked failed.
func (imp *Importer) Run(ctx context.Context, buf []byte, label string, opts Options) (*Result, error) {
	sh, err := sheet.Decode(buf)
	if err != nil {
		return nil, err
	}

	now := imp.Now()
	version := &model.ToolVersion{
		ID:            imp.NewID(),
		Label:         label,
		Status:        model.VersionProcessing,
		ColumnCount:   len(sh.Headers),
		RowCount:      len(sh.Rows),
		ColumnMapping: identityMapping(sh.Headers),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := imp.Store.CreateVersion(ctx, version); err != nil {
		return nil, fmt.Errorf("create version: %w", err)
	}

	res := &Result{VersionID: version.ID, Rows: len(sh.Rows), Columns: len(sh.Headers)}
	imp.Log.Info("Import started",
		zap.String("versionId", version.ID),
		zap.String("label", label),
		zap.Int("rows", res.Rows),
		zap.Int("columns", res.Columns),
		zap.Bool("regenerateNarratives", opts.RegenerateNarratives),
	)

	if err := imp.process(ctx, sh, version, opts, res); err != nil {
		imp.fail(ctx, version, res, err)
		return res, fmt.Errorf("import %q: %w", label, err)
	}

	imp.Log.Info("Import finished",
		zap.String("versionId", version.ID),
		zap.Int("created", res.Created),
		zap.Int("updated", res.Updated),
		zap.Int("skipped", res.Skipped),
	)
	return res, nil
}

func (imp *Importer) process(ctx context.Context, sh *sheet.Sheet, version *model.ToolVersion, opts Options, res *Result) error {
	if err := imp.registerQuestions(ctx, sh.Headers); err != nil {
		return err
	}

	existing, err := imp.Store.ListTools(ctx)
	if err != nil {
		return fmt.Errorf("load tools: %w", err)
	}
	b := newBatch(existing)

	plans := make([]*rowPlan, 0, len(sh.Rows))
	for i, row := range sh.Rows {
		p, ok := b.plan(i, row, opts)
		if !ok {
			res.Skipped++
			continue
		}
		plans = append(plans, p)
	}
	if res.Skipped > 0 {
		imp.Log.Warn("Rows skipped",
			zap.String("versionId", version.ID),
			zap.Int("skipped", res.Skipped),
		)
	}

	imp.generateNarratives(ctx, plans)

	for _, p := range plans {
		created, err := imp.apply(ctx, b, p, version.ID)
		if err != nil {
			return fmt.Errorf("row %d (id %s): %w", p.index+2, p.importID, err)
		}
		if created {
			res.Created++
		} else {
			res.Updated++
		}
	}

	version.Status = model.VersionReady
	version.Active = true
	version.UpdatedAt = imp.Now()
	version.Metadata = map[string]any{
		"updated": res.Updated,
		"created": res.Created,
		"skipped": res.Skipped,
	}
	if err := imp.Store.UpdateVersion(ctx, version); err != nil {
		return fmt.Errorf("finish version: %w", err)
	}
	if err := imp.Store.ActivateVersion(ctx, version.ID); err != nil {
		return fmt.Errorf("activate version: %w", err)
	}

	imp.invalidate(ctx)
	return nil
}

// apply writes one planned row. Matched tools keep their slug and creation time.
func (imp *Importer) apply(ctx context.Context, b *batch, p *rowPlan, versionID string) (bool, error) {
	now := imp.Now()
	if p.existing != nil {
		t := *p.existing
		p.fill(&t, versionID)
		t.Slug = p.existing.Slug
		t.CreatedAt = p.existing.CreatedAt
		t.UpdatedAt = now
		if err := imp.Store.UpdateTool(ctx, &t); err != nil {
			return false, err
		}
		return false, nil
	}

	t := model.Tool{
		ID:        imp.NewID(),
		Slug:      b.mintSlug(p.slug),
		CreatedAt: now,
		UpdatedAt: now,
	}
	p.fill(&t, versionID)
	if err := imp.Store.InsertTool(ctx, &t); err != nil {
		return false, err
	}
	return true, nil
}

func (imp *Importer) fail(ctx context.Context, version *model.ToolVersion, res *Result, cause error) {
	imp.Log.Error("Import failed",
		zap.String("versionId", version.ID),
		zap.Int("created", res.Created),
		zap.Int("updated", res.Updated),
		zap.Error(cause),
	)
	version.Status = model.VersionFailed
	version.UpdatedAt = imp.Now()
	version.Metadata = map[string]any{
		"updated": res.Updated,
		"created": res.Created,
		"skipped": res.Skipped,
		"error":   cause.Error(),
	}
	if err := imp.Store.UpdateVersion(ctx, version); err != nil {
		imp.Log.Error("Failed to mark version failed", zap.String("versionId", version.ID), zap.Error(err))
	}
	// rows written before the failure are live
	if res.Created+res.Updated > 0 {
		imp.invalidate(ctx)
	}
}

func (imp *Importer) invalidate(ctx context.Context) {
	if imp.Cache == nil {
		return
	}
	if err := imp.Cache.Invalidate(ctx, cache.CatalogViews...); err != nil {
		imp.Log.Warn("Failed to invalidate cached views", zap.Error(err))
	}
}

func identityMapping(headers []string) map[string]string {
	m := make(map[string]string, len(headers))
	for _, h := range headers {
		m[h] = h
	}
	return m
}
