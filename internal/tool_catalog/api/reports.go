package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"tool-catalog/internal/tool_catalog/cache"
	"tool-catalog/internal/tool_catalog/model"
	"tool-catalog/pkg/apperr"
)

// ReportView is a published report joined with the tool it describes.
type ReportView struct {
	model.ReportMetadata
	ToolSlug string `json:"toolSlug"`
	ToolName string `json:"toolName"`
}

func (s *Server) listReports(c *gin.Context) {
	views, err := cached(c, s, cache.KeyReports, func() ([]ReportView, error) {
		reports, err := s.Stores.ListReports(c, true)
		if err != nil {
			return nil, err
		}
		ids := make([]string, 0, len(reports))
		for _, r := range reports {
			ids = append(ids, r.ToolID)
		}
		tools, err := s.Stores.ToolsByIDs(c, ids)
		if err != nil {
			return nil, err
		}
		byID := make(map[string]*model.Tool, len(tools))
		for i := range tools {
			byID[tools[i].ID] = &tools[i]
		}
		out := make([]ReportView, 0, len(reports))
		for _, r := range reports {
			t, ok := byID[r.ToolID]
			if !ok || t.Status != model.ToolPublished {
				continue
			}
			out = append(out, ReportView{ReportMetadata: r, ToolSlug: t.Slug, ToolName: t.Name})
		}
		return out, nil
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"total": len(views), "data": views})
}

func (s *Server) getReport(c *gin.Context) {
	slug := c.Param("slug")
	t, err := s.Stores.ToolBySlug(c, slug)
	if err != nil {
		s.fail(c, err)
		return
	}
	if t.Status != model.ToolPublished {
		s.fail(c, apperr.NewNotFoundError("report", slug))
		return
	}
	r, err := s.Stores.Report(c, t.ID)
	if err != nil {
		s.fail(c, err)
		return
	}
	if !r.Published {
		s.fail(c, apperr.NewNotFoundError("report", slug))
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": ReportView{ReportMetadata: *r, ToolSlug: t.Slug, ToolName: t.Name}})
}

func (s *Server) getLanding(c *gin.Context) {
	sc, err := s.Stores.SiteContent(c, model.LandingKey)
	if errors.Is(err, apperr.ErrNotFound) {
		sc, err = &model.SiteContent{Key: model.LandingKey}, nil
	}
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": sc})
}

type landingRequest struct {
	HeroTitle    string `json:"heroTitle"`
	HeroSubtitle string `json:"heroSubtitle"`
	Body         string `json:"body"`
}

func (s *Server) putLanding(c *gin.Context) {
	var req landingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, apperr.NewValidationError("body", err.Error()))
		return
	}
	sc := &model.SiteContent{
		Key:          model.LandingKey,
		HeroTitle:    strings.TrimSpace(req.HeroTitle),
		HeroSubtitle: strings.TrimSpace(req.HeroSubtitle),
		Body:         req.Body,
		UpdatedAt:    time.Now().UTC(),
	}
	if err := s.Stores.SaveSiteContent(c, sc); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": sc})
}

type reportRequest struct {
	Title    string   `json:"title"`
	Ingress  string   `json:"ingress"`
	Findings []string `json:"findings"`
	PDFURL   string   `json:"pdfUrl"`
}

// putReport creates or replaces the report for a tool. Publication state is
// changed only through publishReport.
func (s *Server) putReport(c *gin.Context) {
	toolID := c.Param("toolId")
	var req reportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, apperr.NewValidationError("body", err.Error()))
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		s.fail(c, apperr.NewValidationError("title", "title is required"))
		return
	}
	if _, err := s.Stores.ToolByID(c, toolID); err != nil {
		s.fail(c, err)
		return
	}

	now := time.Now().UTC()
	r := &model.ReportMetadata{
		ToolID:    toolID,
		Title:     strings.TrimSpace(req.Title),
		Ingress:   req.Ingress,
		Findings:  compact(req.Findings),
		PDFURL:    strings.TrimSpace(req.PDFURL),
		CreatedAt: now,
		UpdatedAt: now,
	}
	existing, err := s.Stores.Report(c, toolID)
	switch {
	case err == nil:
		r.Published = existing.Published
		r.CreatedAt = existing.CreatedAt
	case !errors.Is(err, apperr.ErrNotFound):
		s.fail(c, err)
		return
	}

	if err := s.Stores.SaveReport(c, r); err != nil {
		s.fail(c, err)
		return
	}
	s.invalidate(c, cache.KeyReports)
	c.JSON(http.StatusOK, gin.H{"data": r})
}

func (s *Server) publishReport(c *gin.Context) {
	var req struct {
		Published *bool `json:"published"`
	}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			s.fail(c, apperr.NewValidationError("body", err.Error()))
			return
		}
	}
	published := true
	if req.Published != nil {
		published = *req.Published
	}

	r, err := s.Stores.SetReportPublished(c, c.Param("toolId"), published)
	if err != nil {
		s.fail(c, err)
		return
	}
	s.invalidate(c, cache.KeyReports)
	c.JSON(http.StatusOK, gin.H{"data": r})
}

// compact trims findings and drops blank ones, keeping order.
func compact(in []string) []string {
	out := make([]string, 0, len(in))
	for _, f := range in {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}
