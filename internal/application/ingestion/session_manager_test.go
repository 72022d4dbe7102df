package ingestion

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/integration"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSessionManager_Lifecycle(t *testing.T) {
	ctx := context.Background()
	repo := newMemSessions()
	m := NewSessionManager(repo, zap.NewNop())

	cfg := integration.RunConfig{SourcePlatform: integration.PlatformEbay, BatchSize: 10, DefaultCurrency: "GBP"}
	session, err := m.Start(ctx, cfg)
	require.NoError(t, err)

	stored, err := m.Get(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, integration.SessionStatusPending, stored.Status)
	assert.Equal(t, cfg, stored.Config)

	require.NoError(t, m.Begin(ctx, session))
	stored, _ = m.Get(ctx, session.ID)
	assert.Equal(t, integration.SessionStatusProcessing, stored.Status)

	require.NoError(t, m.RecordOutcome(ctx, session.ID, integration.OutcomeSucceeded))
	require.NoError(t, m.RecordOutcome(ctx, session.ID, integration.OutcomeFailed))
	require.NoError(t, m.RecordOutcome(ctx, session.ID, integration.OutcomeSucceeded))

	final, err := m.Complete(ctx, session)
	require.NoError(t, err)
	assert.Equal(t, integration.SessionStatusCompleted, final.Status)
	assert.Equal(t, 3, final.Processed)
	assert.Equal(t, 2, final.Succeeded)
	assert.Equal(t, 1, final.Failed)
	assert.NotNil(t, final.CompletedAt)

	_, err = m.Complete(ctx, session)
	assert.ErrorIs(t, err, shared.ErrInvalidState)
}

func TestSessionManager_BeginTwice(t *testing.T) {
	ctx := context.Background()
	m := NewSessionManager(newMemSessions(), zap.NewNop())

	session, err := m.Start(ctx, integration.RunConfig{SourcePlatform: integration.PlatformEbay})
	require.NoError(t, err)
	require.NoError(t, m.Begin(ctx, session))

	assert.ErrorIs(t, m.Begin(ctx, session), shared.ErrInvalidState)
}

func TestSessionManager_RecordOutcomeUnknownSession(t *testing.T) {
	m := NewSessionManager(newMemSessions(), zap.NewNop())

	err := m.RecordOutcome(context.Background(), uuid.New(), integration.OutcomeSucceeded)

	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestSessionManager_Recent(t *testing.T) {
	ctx := context.Background()
	repo := newMemSessions()
	m := NewSessionManager(repo, zap.NewNop())

	var ids []uuid.UUID
	for i := 0; i < 3; i++ {
		s, err := m.Start(ctx, integration.RunConfig{SourcePlatform: integration.PlatformShopify})
		require.NoError(t, err)
		// distinct start times, newest last
		row := repo.rows[s.ID]
		row.StartedAt = row.StartedAt.Add(time.Duration(i) * time.Minute)
		repo.rows[s.ID] = row
		ids = append(ids, s.ID)
	}

	recent, err := m.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, ids[2], recent[0].ID)
	assert.Equal(t, ids[1], recent[1].ID)

	all, err := m.Recent(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}
