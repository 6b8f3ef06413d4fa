package importer

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"tool-catalog/internal/tool_catalog/model"
	"tool-catalog/internal/tool_catalog/narrative"
)

var errStoreDown = errors.New("store down")

type fakeStore struct {
	mu        sync.Mutex
	tools     map[string]model.Tool
	versions  map[string]model.ToolVersion
	questions map[string]model.SurveyQuestion

	// failInsertAfter makes InsertTool fail once this many inserts succeeded; <0 disables.
	failInsertAfter int
	inserts         int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		tools:           map[string]model.Tool{},
		versions:        map[string]model.ToolVersion{},
		questions:       map[string]model.SurveyQuestion{},
		failInsertAfter: -1,
	}
}

func (s *fakeStore) ListTools(context.Context) ([]model.Tool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Tool, 0, len(s.tools))
	for _, t := range s.tools {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slug < out[j].Slug })
	return out, nil
}

func (s *fakeStore) InsertTool(_ context.Context, t *model.Tool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failInsertAfter >= 0 && s.inserts >= s.failInsertAfter {
		return errStoreDown
	}
	for _, existing := range s.tools {
		if existing.Slug == t.Slug {
			return fmt.Errorf("duplicate slug %s", t.Slug)
		}
	}
	s.inserts++
	s.tools[t.ID] = *t
	return nil
}

func (s *fakeStore) UpdateTool(_ context.Context, t *model.Tool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tools[t.ID]; !ok {
		return fmt.Errorf("tool %s missing", t.ID)
	}
	s.tools[t.ID] = *t
	return nil
}

func (s *fakeStore) CreateVersion(_ context.Context, v *model.ToolVersion) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.versions[v.ID] = *v
	return nil
}

func (s *fakeStore) UpdateVersion(_ context.Context, v *model.ToolVersion) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.versions[v.ID] = *v
	return nil
}

func (s *fakeStore) ActivateVersion(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range s.versions {
		v.Active = k == id
		s.versions[k] = v
	}
	return nil
}

func (s *fakeStore) ListQuestions(context.Context) ([]model.SurveyQuestion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.SurveyQuestion, 0, len(s.questions))
	for _, q := range s.questions {
		out = append(out, q)
	}
	return out, nil
}

func (s *fakeStore) InsertQuestion(_ context.Context, q *model.SurveyQuestion) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.questions[q.Code]; ok {
		return fmt.Errorf("duplicate question %s", q.Code)
	}
	s.questions[q.Code] = *q
	return nil
}

func (s *fakeStore) bySlug(t *testing.T, slug string) model.Tool {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, tool := range s.tools {
		if tool.Slug == slug {
			return tool
		}
	}
	t.Fatalf("no tool with slug %q", slug)
	return model.Tool{}
}

func (s *fakeStore) slugs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []string{}
	for _, t := range s.tools {
		out = append(out, t.Slug)
	}
	sort.Strings(out)
	return out
}

// fakeGenerator returns "summary of <name>" unless err is set.
type fakeGenerator struct {
	err   error
	delay time.Duration

	calls    atomic.Int32
	inFlight atomic.Int32
	maxSeen  atomic.Int32
}

func (g *fakeGenerator) Summarize(_ context.Context, in narrative.Input) (string, error) {
	g.calls.Add(1)
	n := g.inFlight.Add(1)
	defer g.inFlight.Add(-1)
	for {
		m := g.maxSeen.Load()
		if n <= m || g.maxSeen.CompareAndSwap(m, n) {
			break
		}
	}
	if g.delay > 0 {
		time.Sleep(g.delay)
	}
	if g.err != nil {
		return "", g.err
	}
	return "summary of " + in.Name, nil
}

func workbook(t *testing.T, rows ...[]any) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	for i, r := range rows {
		require.NoError(t, f.SetSheetRow("Sheet1", fmt.Sprintf("A%d", i+1), &r))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}
