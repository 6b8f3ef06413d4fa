package importer

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"tool-catalog/internal/tool_catalog/narrative"
)

// generateNarratives fills the summary of every plan that needs one. At most
// imp.Workers generator calls run at once. Generator errors leave the summary empty.
func (imp *Importer) generateNarratives(ctx context.Context, plans []*rowPlan) {
	if imp.Narrative == nil {
		return
	}

	var g errgroup.Group
	g.SetLimit(imp.Workers)
	for _, p := range plans {
		if !p.needsNarrative {
			continue
		}
		g.Go(func() error {
			text, err := imp.Narrative.Summarize(ctx, narrative.Input{
				Name:     p.name,
				Vendor:   p.vendor,
				Category: p.category,
				Website:  p.website,
				Fields:   p.comparison,
			})
			if err != nil {
				imp.Log.Warn("Summary generation failed, leaving summary empty",
					zap.String("importId", p.importID),
					zap.String("tool", p.name),
					zap.Error(err),
				)
				return nil
			}
			if text != "" {
				p.summary = text
			}
			return nil
		})
	}
	_ = g.Wait()
}
