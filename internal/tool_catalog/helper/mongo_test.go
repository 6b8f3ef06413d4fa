package helper

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tool-catalog/internal/tool_catalog/model"
	"tool-catalog/pkg/apperr"
	"tool-catalog/pkg/config"
)

// testStores connects to MONGO_TEST_HOST and uses a throwaway database.
func testStores(t *testing.T) *Stores {
	t.Helper()
	host := os.Getenv("MONGO_TEST_HOST")
	if host == "" {
		t.Skip("MONGO_TEST_HOST not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s, err := Connect(ctx, config.MongoConfig{Host: host, DBName: "toolcat_test_" + uuid.NewString()[:8]})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = s.DB.Drop(context.Background())
		_ = s.Close(context.Background())
	})
	return s
}

func TestToolRoundTripAndSlugUniqueness(t *testing.T) {
	s := testStores(t)
	ctx := context.Background()

	tool := &model.Tool{
		ID:             uuid.NewString(),
		Slug:           "acme",
		Name:           "Acme",
		Status:         model.ToolPublished,
		ComparisonData: map[string]string{"Pricing Model [010]": "Usage"},
		Metadata:       map[string]any{model.MetaImportID: "1"},
		CreatedAt:      time.Now().UTC().Truncate(time.Millisecond),
	}
	require.NoError(t, s.InsertTool(ctx, tool))

	got, err := s.ToolBySlug(ctx, "acme")
	require.NoError(t, err)
	assert.Equal(t, "1", got.ImportID())
	assert.Equal(t, "Usage", got.ComparisonData["Pricing Model [010]"])

	dup := *tool
	dup.ID = uuid.NewString()
	err = s.InsertTool(ctx, &dup)
	assert.True(t, errors.Is(err, apperr.ErrConflict))

	_, err = s.ToolBySlug(ctx, "missing")
	assert.True(t, errors.Is(err, apperr.ErrNotFound))

	featured := true
	patched, err := s.PatchTool(ctx, tool.ID, nil, &featured)
	require.NoError(t, err)
	assert.True(t, patched.Featured)
	assert.Equal(t, model.ToolPublished, patched.Status)
}

func TestActivateVersionIsExclusive(t *testing.T) {
	s := testStores(t)
	ctx := context.Background()

	old := time.Now().UTC().Add(-time.Hour)
	a := &model.ToolVersion{ID: "a", Status: model.VersionReady, Active: true, CreatedAt: old, UpdatedAt: old}
	b := &model.ToolVersion{ID: "b", Status: model.VersionProcessing, CreatedAt: old, UpdatedAt: old}
	require.NoError(t, s.CreateVersion(ctx, a))
	require.NoError(t, s.CreateVersion(ctx, b))

	n, err := s.FailStaleVersions(ctx, time.Now().UTC().Add(-time.Minute), "stale")
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	require.NoError(t, s.ActivateVersion(ctx, "b"))
	versions, err := s.ListVersions(ctx)
	require.NoError(t, err)
	active := map[string]bool{}
	for _, v := range versions {
		active[v.ID] = v.Active
	}
	assert.Equal(t, map[string]bool{"a": false, "b": true}, active)
}
