package api

import (
	"context"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"tool-catalog/internal/tool_catalog/cache"
	"tool-catalog/internal/tool_catalog/mapping"
	"tool-catalog/internal/tool_catalog/model"
	"tool-catalog/pkg/apperr"
)

const (
	minCompare = 2
	maxCompare = 4
)

// ToolView is a tool with its display fields resolved against the current mappings.
type ToolView struct {
	ID   string `json:"id"`
	Slug string `json:"slug"`
	mapping.Display
	Summary        string            `json:"summary"`
	Status         model.ToolStatus  `json:"status"`
	Featured       bool              `json:"featured"`
	ComparisonData map[string]string `json:"comparisonData"`
	UpdatedAt      time.Time         `json:"updatedAt"`
}

func toView(t *model.Tool, questions []model.SurveyQuestion) ToolView {
	return ToolView{
		ID:             t.ID,
		Slug:           t.Slug,
		Display:        mapping.Resolve(t, questions),
		Summary:        t.Summary,
		Status:         t.Status,
		Featured:       t.Featured,
		ComparisonData: t.ComparisonData,
		UpdatedAt:      t.UpdatedAt,
	}
}

// toolViews resolves tools; publishedOnly drops drafts and archived tools.
func (s *Server) toolViews(ctx context.Context, publishedOnly bool) ([]ToolView, error) {
	tools, err := s.Stores.ListTools(ctx)
	if err != nil {
		return nil, err
	}
	questions, err := s.Stores.ListQuestions(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]ToolView, 0, len(tools))
	for i := range tools {
		if publishedOnly && tools[i].Status != model.ToolPublished {
			continue
		}
		out = append(out, toView(&tools[i], questions))
	}
	return out, nil
}

func (s *Server) listTools(c *gin.Context) {
	all, err := cached(c, s, cache.KeyTools, func() ([]ToolView, error) {
		return s.toolViews(c, true)
	})
	if err != nil {
		s.fail(c, err)
		return
	}

	filtered := filterTools(all, c.Query("q"), c.Query("category"), c.Query("vendor"), c.Query("featured") == "true")
	sortTools(filtered, c.DefaultQuery("sort", "name"))

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page <= 0 {
		page = 1
	}
	if limit <= 0 || limit > 200 {
		limit = 20
	}
	start := (page - 1) * limit
	if start > len(filtered) {
		start = len(filtered)
	}
	end := start + limit
	if end > len(filtered) {
		end = len(filtered)
	}

	c.JSON(http.StatusOK, gin.H{
		"total": len(filtered),
		"data":  filtered[start:end],
		"page":  page,
		"limit": limit,
	})
}

func filterTools(in []ToolView, q, category, vendor string, featuredOnly bool) []ToolView {
	q = strings.ToLower(strings.TrimSpace(q))
	out := make([]ToolView, 0, len(in))
	for _, t := range in {
		if featuredOnly && !t.Featured {
			continue
		}
		if category != "" && !strings.EqualFold(t.Category, category) && !strings.EqualFold(t.SecondaryCategory, category) {
			continue
		}
		if vendor != "" && !strings.EqualFold(t.Vendor, vendor) {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(t.Name+" "+t.Vendor+" "+t.Summary), q) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// sortTools orders by name (default), -name, vendor or updated (newest first).
func sortTools(ts []ToolView, by string) {
	less := func(i, j int) bool { return strings.ToLower(ts[i].Name) < strings.ToLower(ts[j].Name) }
	switch by {
	case "-name":
		less = func(i, j int) bool { return strings.ToLower(ts[i].Name) > strings.ToLower(ts[j].Name) }
	case "vendor":
		less = func(i, j int) bool {
			vi, vj := strings.ToLower(ts[i].Vendor), strings.ToLower(ts[j].Vendor)
			if vi != vj {
				return vi < vj
			}
			return strings.ToLower(ts[i].Name) < strings.ToLower(ts[j].Name)
		}
	case "updated":
		less = func(i, j int) bool { return ts[i].UpdatedAt.After(ts[j].UpdatedAt) }
	}
	sort.SliceStable(ts, less)
}

func (s *Server) getTool(c *gin.Context) {
	slug := c.Param("slug")
	t, err := s.Stores.ToolBySlug(c, slug)
	if err != nil {
		s.fail(c, err)
		return
	}
	if t.Status != model.ToolPublished {
		s.fail(c, apperr.NewNotFoundError("tool", slug))
		return
	}
	questions, err := s.Stores.ListQuestions(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": toView(t, questions)})
}

func (s *Server) compare(c *gin.Context) {
	ids := parseIDs(c.Query("ids"))
	if len(ids) < minCompare || len(ids) > maxCompare {
		s.fail(c, apperr.NewValidationError("ids", "select between 2 and 4 tools"))
		return
	}
	// Columns follow id order so every ordering of the same set renders identically.
	sort.Strings(ids)

	tbl, err := cached(c, s, cache.CompareKey(ids), func() (mapping.Table, error) {
		tools, err := s.Stores.ToolsByIDs(c, ids)
		if err != nil {
			return mapping.Table{}, err
		}
		published := make(map[string]bool, len(tools))
		for _, t := range tools {
			if t.Status == model.ToolPublished {
				published[t.ID] = true
			}
		}
		for _, id := range ids {
			if !published[id] {
				return mapping.Table{}, apperr.NewNotFoundError("tool", id)
			}
		}
		questions, err := s.Stores.ListQuestions(c)
		if err != nil {
			return mapping.Table{}, err
		}
		return mapping.BuildComparison(tools, questions), nil
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": tbl})
}

// parseIDs splits a comma list, dropping blanks and repeats.
func parseIDs(raw string) []string {
	seen := map[string]bool{}
	var out []string
	for _, id := range strings.Split(raw, ",") {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
