package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tool-catalog/internal/middleware/logger"
	"tool-catalog/internal/tool_catalog/cache"
	"tool-catalog/internal/tool_catalog/importer"
	"tool-catalog/internal/tool_catalog/model"
	"tool-catalog/pkg/apperr"
)

// Catalog is the persistence the HTTP surface reads and edits through.
type Catalog interface {
	ListTools(ctx context.Context) ([]model.Tool, error)
	ToolBySlug(ctx context.Context, slug string) (*model.Tool, error)
	ToolByID(ctx context.Context, id string) (*model.Tool, error)
	ToolsByIDs(ctx context.Context, ids []string) ([]model.Tool, error)
	PatchTool(ctx context.Context, id string, status *model.ToolStatus, featured *bool) (*model.Tool, error)

	ListVersions(ctx context.Context) ([]model.ToolVersion, error)

	ListQuestions(ctx context.Context) ([]model.SurveyQuestion, error)
	Question(ctx context.Context, code string) (*model.SurveyQuestion, error)
	SaveQuestion(ctx context.Context, q *model.SurveyQuestion) error

	ListReports(ctx context.Context, publishedOnly bool) ([]model.ReportMetadata, error)
	Report(ctx context.Context, toolID string) (*model.ReportMetadata, error)
	SaveReport(ctx context.Context, r *model.ReportMetadata) error
	SetReportPublished(ctx context.Context, toolID string, published bool) (*model.ReportMetadata, error)

	SiteContent(ctx context.Context, key string) (*model.SiteContent, error)
	SaveSiteContent(ctx context.Context, c *model.SiteContent) error
}

// Importer runs one spreadsheet import.
type Importer interface {
	Run(ctx context.Context, buf []byte, label string, opts importer.Options) (*importer.Result, error)
}

type Server struct {
	Log            *zap.Logger
	Stores         Catalog
	Cache          cache.Cache
	Importer       Importer
	MaxUploadBytes int64
}

func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(logger.GinLogger(s.Log), gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	r.GET("/tools", s.listTools) // ?q=&category=&vendor=&featured=&sort=&page=1&limit=20
	r.GET("/tools/:slug", s.getTool)
	r.GET("/compare", s.compare) // ?ids=a,b,c
	r.GET("/reports", s.listReports)
	r.GET("/reports/:slug", s.getReport)
	r.GET("/landing", s.getLanding)

	admin := r.Group("/admin")
	admin.POST("/imports", s.importSheet)
	admin.GET("/versions", s.listVersions)
	admin.GET("/tools", s.adminListTools)
	admin.PATCH("/tools/:id", s.patchTool)
	admin.GET("/questions", s.listQuestions)
	admin.PUT("/questions/:code", s.updateQuestion)
	admin.PUT("/landing", s.putLanding)
	admin.PUT("/reports/:toolId", s.putReport)
	admin.POST("/reports/:toolId/publish", s.publishReport)
	return r
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// fail writes the error envelope with a status derived from the apperr taxonomy.
func (s *Server) fail(c *gin.Context, err error) {
	status, body := errorResponse(err)
	_ = c.Error(err)
	c.JSON(status, gin.H{"error": body})
}

func errorResponse(err error) (int, apiError) {
	status, code := http.StatusInternalServerError, "internal"
	switch {
	case errors.Is(err, apperr.ErrInvalidInput):
		status, code = http.StatusBadRequest, "invalid_input"
	case errors.Is(err, apperr.ErrNotFound):
		status, code = http.StatusNotFound, "not_found"
	case errors.Is(err, apperr.ErrConflict):
		status, code = http.StatusConflict, "conflict"
	}
	return status, apiError{Code: code, Message: err.Error()}
}

// cached loads key into dst, or builds it and stores it. Cache errors only cost a rebuild.
func cached[T any](ctx context.Context, s *Server, key string, build func() (T, error)) (T, error) {
	var v T
	if s.Cache != nil {
		ok, err := s.Cache.Get(ctx, key, &v)
		if err == nil && ok {
			return v, nil
		}
		if err != nil {
			s.Log.Warn("Cache read failed", zap.String("key", key), zap.Error(err))
		}
	}
	v, err := build()
	if err != nil {
		return v, err
	}
	if s.Cache != nil {
		if err := s.Cache.Set(ctx, key, v); err != nil {
			s.Log.Warn("Cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return v, nil
}

func (s *Server) invalidate(ctx context.Context, keys ...string) {
	if s.Cache == nil {
		return
	}
	if err := s.Cache.Invalidate(ctx, keys...); err != nil {
		s.Log.Warn("Failed to invalidate cached views", zap.Strings("keys", keys), zap.Error(err))
	}
}
