package ingestion

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/integration"
	"go.uber.org/zap"
)

// SessionManager drives the lifecycle of ingestion sessions:
// pending -> processing -> completed.
type SessionManager struct {
	repo   integration.ImportSessionRepository
	logger *zap.Logger
}

// NewSessionManager creates a SessionManager
func NewSessionManager(repo integration.ImportSessionRepository, logger *zap.Logger) *SessionManager {
	return &SessionManager{repo: repo, logger: logger}
}

// Start persists a pending session carrying cfg verbatim
func (m *SessionManager) Start(ctx context.Context, cfg integration.RunConfig) (*integration.ImportSession, error) {
	session, err := integration.NewImportSession(cfg)
	if err != nil {
		return nil, err
	}
	if err := m.repo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("create import session: %w", err)
	}
	m.logger.Info("Import session started",
		zap.String("session_id", session.ID.String()),
		zap.String("platform", string(session.SourcePlatform)),
		zap.Int("batch_size", cfg.BatchSize),
		zap.String("product_type", string(cfg.ProductType)),
	)
	return session, nil
}

// Begin marks a pending session as processing
func (m *SessionManager) Begin(ctx context.Context, session *integration.ImportSession) error {
	if err := session.StartProcessing(); err != nil {
		return err
	}
	if err := m.repo.UpdateStatus(ctx, session); err != nil {
		return fmt.Errorf("mark session %s processing: %w", session.ID, err)
	}
	return nil
}

// RecordOutcome counts one processed candidate
func (m *SessionManager) RecordOutcome(ctx context.Context, id uuid.UUID, outcome integration.SessionOutcome) error {
	if err := m.repo.IncrementCounters(ctx, id, outcome); err != nil {
		return fmt.Errorf("update session %s counters: %w", id, err)
	}
	return nil
}

// Complete marks the session completed and returns it with the final
// counters as stored.
func (m *SessionManager) Complete(ctx context.Context, session *integration.ImportSession) (*integration.ImportSession, error) {
	if err := session.Complete(); err != nil {
		return nil, err
	}
	if err := m.repo.UpdateStatus(ctx, session); err != nil {
		return nil, fmt.Errorf("complete session %s: %w", session.ID, err)
	}
	final, err := m.repo.FindByID(ctx, session.ID)
	if err != nil {
		return nil, fmt.Errorf("reload session %s: %w", session.ID, err)
	}
	m.logger.Info("Import session completed",
		zap.String("session_id", final.ID.String()),
		zap.Int("processed", final.Processed),
		zap.Int("succeeded", final.Succeeded),
		zap.Int("failed", final.Failed),
	)
	return final, nil
}

// Get returns a session by id
func (m *SessionManager) Get(ctx context.Context, id uuid.UUID) (*integration.ImportSession, error) {
	return m.repo.FindByID(ctx, id)
}

// Recent returns the newest sessions, at most limit
func (m *SessionManager) Recent(ctx context.Context, limit int) ([]*integration.ImportSession, error) {
	if limit <= 0 {
		limit = 20
	}
	return m.repo.FindRecent(ctx, limit)
}
