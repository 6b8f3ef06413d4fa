package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tool-catalog/internal/tool_catalog/cache"
	"tool-catalog/internal/tool_catalog/importer"
	"tool-catalog/internal/tool_catalog/model"
	"tool-catalog/pkg/apperr"
)

func (s *Server) importSheet(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		s.fail(c, apperr.NewValidationError("file", "a spreadsheet upload is required"))
		return
	}
	if s.MaxUploadBytes > 0 && fh.Size > s.MaxUploadBytes {
		s.fail(c, apperr.NewValidationError("file", fmt.Sprintf("upload exceeds %d bytes", s.MaxUploadBytes)))
		return
	}
	f, err := fh.Open()
	if err != nil {
		s.fail(c, apperr.NewValidationError("file", "upload could not be read"))
		return
	}
	defer f.Close()
	buf, err := io.ReadAll(f)
	if err != nil {
		s.fail(c, apperr.NewValidationError("file", "upload could not be read"))
		return
	}

	regenerate, _ := strconv.ParseBool(c.PostForm("regenerateNarratives"))
	label := strings.TrimSpace(c.PostForm("label"))
	if label == "" {
		label = fh.Filename
	}

	// The run continues if the client goes away.
	res, err := s.Importer.Run(context.WithoutCancel(c.Request.Context()), buf, label,
		importer.Options{RegenerateNarratives: regenerate})
	if err != nil {
		s.Log.Error("Import failed", zap.String("label", label), zap.Error(err))
		if res == nil {
			s.fail(c, err)
			return
		}
		// Rows written before the failure stay written; report them with the error.
		status, body := errorResponse(err)
		_ = c.Error(err)
		c.JSON(status, gin.H{
			"success":   false,
			"error":     body,
			"versionId": res.VersionID,
			"rows":      res.Rows,
			"columns":   res.Columns,
			"created":   res.Created,
			"updated":   res.Updated,
			"skipped":   res.Skipped,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"versionId": res.VersionID,
		"rows":      res.Rows,
		"columns":   res.Columns,
		"created":   res.Created,
		"updated":   res.Updated,
		"skipped":   res.Skipped,
	})
}

func (s *Server) listVersions(c *gin.Context) {
	vs, err := s.Stores.ListVersions(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": vs})
}

func (s *Server) adminListTools(c *gin.Context) {
	all, err := cached(c, s, cache.KeyAdminTools, func() ([]ToolView, error) {
		return s.toolViews(c, false)
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"total": len(all), "data": all})
}

type patchToolRequest struct {
	Status   *model.ToolStatus `json:"status"`
	Featured *bool             `json:"featured"`
}

func (s *Server) patchTool(c *gin.Context) {
	var req patchToolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, apperr.NewValidationError("body", err.Error()))
		return
	}
	if req.Status == nil && req.Featured == nil {
		s.fail(c, apperr.NewValidationError("body", "nothing to update"))
		return
	}
	if req.Status != nil && !req.Status.Valid() {
		s.fail(c, apperr.NewValidationError("status", fmt.Sprintf("unknown status %q", *req.Status)))
		return
	}

	t, err := s.Stores.PatchTool(c, c.Param("id"), req.Status, req.Featured)
	if err != nil {
		s.fail(c, err)
		return
	}
	s.invalidate(c, cache.CatalogViews...)
	c.JSON(http.StatusOK, gin.H{"data": t})
}

func (s *Server) listQuestions(c *gin.Context) {
	qs, err := s.Stores.ListQuestions(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": qs})
}

type questionRequest struct {
	Text           *string             `json:"text"`
	Type           *model.QuestionType `json:"type"`
	TargetField    *string             `json:"targetField"`
	ForComparison  *bool               `json:"forComparison"`
	MultipleChoice *bool               `json:"multipleChoice"`
	SupportiveText *string             `json:"supportiveText"`
	SortOrder      *int                `json:"sortOrder"`
}

// updateQuestion edits the mapping of an already registered code. Codes enter the
// catalog through imports only.
func (s *Server) updateQuestion(c *gin.Context) {
	code := c.Param("code")
	var req questionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, apperr.NewValidationError("body", err.Error()))
		return
	}
	q, err := s.Stores.Question(c, code)
	if err != nil {
		s.fail(c, err)
		return
	}

	if req.Text != nil {
		q.Text = strings.TrimSpace(*req.Text)
	}
	if req.Type != nil {
		if *req.Type != model.QuestionMetadata && *req.Type != model.QuestionSurvey {
			s.fail(c, apperr.NewValidationError("type", fmt.Sprintf("unknown question type %q", *req.Type)))
			return
		}
		q.Type = *req.Type
	}
	if req.TargetField != nil {
		q.TargetField = *req.TargetField
	}
	if req.ForComparison != nil {
		q.ForComparison = *req.ForComparison
	}
	if req.MultipleChoice != nil {
		q.MultipleChoice = *req.MultipleChoice
	}
	if req.SupportiveText != nil {
		q.SupportiveText = *req.SupportiveText
	}
	if req.SortOrder != nil {
		q.SortOrder = *req.SortOrder
	}
	if q.Type == model.QuestionMetadata && q.TargetField != "" && !model.ValidTargetField(q.TargetField) {
		s.fail(c, apperr.NewValidationError("targetField", fmt.Sprintf("unknown target field %q", q.TargetField)))
		return
	}

	q.Normalize()
	q.UpdatedAt = time.Now().UTC()
	if err := s.Stores.SaveQuestion(c, q); err != nil {
		s.fail(c, err)
		return
	}
	s.invalidate(c, cache.CatalogViews...)
	c.JSON(http.StatusOK, gin.H{"data": q})
}
