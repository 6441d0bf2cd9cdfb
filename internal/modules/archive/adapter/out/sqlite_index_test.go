package out_test

import (
	"context"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	archiveout "chamberlog/internal/modules/archive/adapter/out"
	"chamberlog/internal/modules/archive/domain"
)

func TestSQLiteSnapshotIndexUpsertListRemove(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	index, err := archiveout.NewSQLiteSnapshotIndex(filepath.Join(t.TempDir(), ".chamberlog", "chamberlog.db"))
	require.NoError(t, err)

	base := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	require.NoError(t, index.Upsert(ctx, domain.Summary{SessionID: "1-26", SavedAt: base, EventCount: 2}))
	require.NoError(t, index.Upsert(ctx, domain.Summary{SessionID: "2-26", SavedAt: base.Add(time.Hour), Totals: map[string]string{"tiempo_hipoxia": "00:04:30"}}))
	require.NoError(t, index.Upsert(ctx, domain.Summary{SessionID: "1-26", SavedAt: base.Add(2 * time.Hour), EventCount: 5}))

	all, err := index.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "1-26", all[0].SessionID)
	assert.Equal(t, 5, all[0].EventCount)
	assert.Equal(t, "00:04:30", all[1].Totals["tiempo_hipoxia"])

	filtered, err := index.List(ctx, "2-")
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, "2-26", filtered[0].SessionID)

	removed, err := index.Remove(ctx, "1-26")
	require.NoError(t, err)
	assert.True(t, removed)
	removed, err = index.Remove(ctx, "1-26")
	require.NoError(t, err)
	assert.False(t, removed)

	require.NoError(t, index.Reset(ctx))
	all, err = index.List(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestSQLiteSnapshotIndexQueryMatchesWildcardsLiterally(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	index, err := archiveout.NewSQLiteSnapshotIndex(filepath.Join(t.TempDir(), "chamberlog.db"))
	require.NoError(t, err)
	defer index.(io.Closer).Close()

	saved := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	for _, id := range []string{"12-26", "1_a", "50%off"} {
		require.NoError(t, index.Upsert(ctx, domain.Summary{SessionID: id, SavedAt: saved}))
	}

	cases := map[string][]string{
		"1_": {"1_a"},
		"%":  {"50%off"},
		"1":  {"12-26", "1_a"},
	}
	for query, want := range cases {
		rows, err := index.List(ctx, query)
		require.NoError(t, err, query)
		got := make([]string, 0, len(rows))
		for _, row := range rows {
			got = append(got, row.SessionID)
		}
		assert.ElementsMatch(t, want, got, query)
	}
}
