package out_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	timelineout "chamberlog/internal/modules/timeline/adapter/out"
	"chamberlog/internal/modules/timeline/domain"
	apperrors "chamberlog/internal/platform/errors"
)

func TestFileCurrentSessionStore(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := timelineout.NewFileCurrentSessionStore(filepath.Join(t.TempDir(), ".chamberlog", "current-session.json"))

	_, err := store.LoadCurrent(ctx)
	require.ErrorIs(t, err, apperrors.ErrNoCurrentSession)

	opened := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	require.NoError(t, store.SaveCurrent(ctx, domain.CurrentSession{SessionID: "12-26", OpenedAt: opened}))
	current, err := store.LoadCurrent(ctx)
	require.NoError(t, err)
	assert.Equal(t, "12-26", current.SessionID)
	assert.True(t, current.OpenedAt.Equal(opened))

	require.NoError(t, store.ClearCurrent(ctx))
	require.NoError(t, store.ClearCurrent(ctx))
	_, err = store.LoadCurrent(ctx)
	require.ErrorIs(t, err, apperrors.ErrNoCurrentSession)
}
