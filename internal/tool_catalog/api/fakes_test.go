package api

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"tool-catalog/internal/tool_catalog/cache"
	"tool-catalog/internal/tool_catalog/importer"
	"tool-catalog/internal/tool_catalog/model"
	"tool-catalog/pkg/apperr"
)

type fakeCatalog struct {
	mu        sync.Mutex
	tools     map[string]model.Tool
	versions  []model.ToolVersion
	questions map[string]model.SurveyQuestion
	reports   map[string]model.ReportMetadata
	site      map[string]model.SiteContent

	listToolCalls int
	byIDsCalls    int
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		tools:     map[string]model.Tool{},
		questions: map[string]model.SurveyQuestion{},
		reports:   map[string]model.ReportMetadata{},
		site:      map[string]model.SiteContent{},
	}
}

func (f *fakeCatalog) addTool(t model.Tool) {
	if t.Status == "" {
		t.Status = model.ToolPublished
	}
	f.tools[t.ID] = t
}

func (f *fakeCatalog) ListTools(context.Context) ([]model.Tool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listToolCalls++
	out := make([]model.Tool, 0, len(f.tools))
	for _, t := range f.tools {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeCatalog) ToolBySlug(_ context.Context, slug string) (*model.Tool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.tools {
		if t.Slug == slug {
			return &t, nil
		}
	}
	return nil, apperr.NewNotFoundError("tool", slug)
}

func (f *fakeCatalog) ToolByID(_ context.Context, id string) (*model.Tool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tools[id]
	if !ok {
		return nil, apperr.NewNotFoundError("tool", id)
	}
	return &t, nil
}

func (f *fakeCatalog) ToolsByIDs(_ context.Context, ids []string) ([]model.Tool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byIDsCalls++
	var out []model.Tool
	for _, id := range ids {
		if t, ok := f.tools[id]; ok {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeCatalog) PatchTool(_ context.Context, id string, status *model.ToolStatus, featured *bool) (*model.Tool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tools[id]
	if !ok {
		return nil, apperr.NewNotFoundError("tool", id)
	}
	if status != nil {
		t.Status = *status
	}
	if featured != nil {
		t.Featured = *featured
	}
	f.tools[id] = t
	return &t, nil
}

func (f *fakeCatalog) ListVersions(context.Context) ([]model.ToolVersion, error) {
	return f.versions, nil
}

func (f *fakeCatalog) ListQuestions(context.Context) ([]model.SurveyQuestion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.SurveyQuestion, 0, len(f.questions))
	for _, q := range f.questions {
		out = append(out, q)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (f *fakeCatalog) Question(_ context.Context, code string) (*model.SurveyQuestion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	q, ok := f.questions[code]
	if !ok {
		return nil, apperr.NewNotFoundError("question", code)
	}
	return &q, nil
}

func (f *fakeCatalog) SaveQuestion(_ context.Context, q *model.SurveyQuestion) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.questions[q.Code] = *q
	return nil
}

func (f *fakeCatalog) ListReports(_ context.Context, publishedOnly bool) ([]model.ReportMetadata, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.ReportMetadata
	for _, r := range f.reports {
		if publishedOnly && !r.Published {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ToolID < out[j].ToolID })
	return out, nil
}

func (f *fakeCatalog) Report(_ context.Context, toolID string) (*model.ReportMetadata, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.reports[toolID]
	if !ok {
		return nil, apperr.NewNotFoundError("report", toolID)
	}
	return &r, nil
}

func (f *fakeCatalog) SaveReport(_ context.Context, r *model.ReportMetadata) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reports[r.ToolID] = *r
	return nil
}

func (f *fakeCatalog) SetReportPublished(_ context.Context, toolID string, published bool) (*model.ReportMetadata, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.reports[toolID]
	if !ok {
		return nil, apperr.NewNotFoundError("report", toolID)
	}
	r.Published = published
	r.UpdatedAt = time.Now()
	f.reports[toolID] = r
	return &r, nil
}

func (f *fakeCatalog) SiteContent(_ context.Context, key string) (*model.SiteContent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.site[key]
	if !ok {
		return nil, apperr.NewNotFoundError("site content", key)
	}
	return &c, nil
}

func (f *fakeCatalog) SaveSiteContent(_ context.Context, c *model.SiteContent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.site[c.Key] = *c
	return nil
}

type fakeImporter struct {
	calls  int
	buf    []byte
	label  string
	opts   importer.Options
	ctxErr error
	result *importer.Result
	err    error
	// partial returns result alongside err, like a run that failed after writing rows.
	partial bool
}

func (f *fakeImporter) Run(ctx context.Context, buf []byte, label string, opts importer.Options) (*importer.Result, error) {
	f.calls++
	f.buf, f.label, f.opts, f.ctxErr = buf, label, opts, ctx.Err()
	if f.err != nil && !f.partial {
		return nil, f.err
	}
	return f.result, f.err
}

type harness struct {
	catalog  *fakeCatalog
	importer *fakeImporter
	cache    *cache.Memory
	router   *gin.Engine
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	gin.SetMode(gin.TestMode)
	h := &harness{
		catalog:  newFakeCatalog(),
		importer: &fakeImporter{result: &importer.Result{VersionID: "v1"}},
		cache:    cache.NewMemory(time.Minute),
	}
	s := &Server{
		Log:            zap.NewNop(),
		Stores:         h.catalog,
		Cache:          h.cache,
		Importer:       h.importer,
		MaxUploadBytes: 1 << 20,
	}
	h.router = s.Router()
	return h
}

func (h *harness) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	return w
}

func (h *harness) upload(t *testing.T, fields map[string]string, filename string, content []byte) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if filename != "" {
		fw, err := mw.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = fw.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/admin/imports", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

type envelope[T any] struct {
	Data  T        `json:"data"`
	Total int      `json:"total"`
	Page  int      `json:"page"`
	Limit int      `json:"limit"`
	Error apiError `json:"error"`
}
