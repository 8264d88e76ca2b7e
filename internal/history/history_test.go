package history

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestAppendAssignsID(t *testing.T) {
	s := openTestStore(t)

	rec, err := s.Append(context.Background(), Record{
		Resource:   "ecs-composex",
		RecipeHash: "abc",
		Platforms:  []string{"linux/amd64"},
		Status:     "success",
		Duration:   3 * time.Second,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, rec.ID)
	assert.False(t, rec.CreatedAt.IsZero())
}

func TestRecentOrdering(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	for i, status := range []string{"success", "failed", "success"} {
		_, err := s.Append(ctx, Record{
			Resource:   "app",
			RecipeHash: "h",
			Platforms:  []string{"linux/amd64"},
			Status:     status,
			CreatedAt:  base.Add(time.Duration(i) * time.Minute),
			Artifacts:  []string{"dist/image.tar"},
		})
		require.NoError(t, err)
	}

	records, err := s.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, records, 2)

	// Newest first.
	assert.Equal(t, "success", records[0].Status)
	assert.Equal(t, "failed", records[1].Status)
	assert.True(t, records[0].CreatedAt.After(records[1].CreatedAt))
	assert.Equal(t, []string{"dist/image.tar"}, records[0].Artifacts)
	assert.Equal(t, []string{"linux/amd64"}, records[0].Platforms)
}

func TestRecentDefaultLimit(t *testing.T) {
	s := openTestStore(t)

	records, err := s.Recent(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, records)
}
