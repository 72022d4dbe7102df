package quality

import (
	"context"
	"errors"
	"fmt"

	"github.com/storefront/backend/internal/domain/quality"
	"github.com/storefront/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// SettingsService reads and edits the stored quality-control settings.
// When nothing is stored the built-in defaults apply.
type SettingsService struct {
	repo     quality.SettingsRepository
	defaults quality.Settings
	logger   *zap.Logger
}

// NewSettingsService creates a SettingsService
func NewSettingsService(repo quality.SettingsRepository, defaults quality.Settings, logger *zap.Logger) *SettingsService {
	return &SettingsService{repo: repo, defaults: defaults, logger: logger}
}

// Defaults returns the built-in settings
func (s *SettingsService) Defaults() quality.Settings {
	return s.defaults
}

// Current returns the stored settings or the defaults
func (s *SettingsService) Current(ctx context.Context) (quality.Settings, error) {
	stored, err := s.repo.Load(ctx)
	if errors.Is(err, shared.ErrNotFound) {
		return s.defaults, nil
	}
	if err != nil {
		return quality.Settings{}, fmt.Errorf("load quality settings: %w", err)
	}
	return *stored, nil
}

// Save validates and stores settings
func (s *SettingsService) Save(ctx context.Context, settings quality.Settings) error {
	if err := settings.Validate(); err != nil {
		return err
	}
	if err := s.repo.Save(ctx, settings); err != nil {
		return fmt.Errorf("save quality settings: %w", err)
	}
	s.logger.Info("Quality settings saved",
		zap.Bool("strict_mode", settings.Content.StrictMode),
		zap.String("duplicate_strategy", settings.Duplicate.Strategy),
		zap.Float64("historical_weight", settings.HistoricalWeight),
	)
	return nil
}

// Reset drops stored settings and returns the defaults now in effect
func (s *SettingsService) Reset(ctx context.Context) (quality.Settings, error) {
	if err := s.repo.Delete(ctx); err != nil {
		return quality.Settings{}, fmt.Errorf("reset quality settings: %w", err)
	}
	s.logger.Info("Quality settings reset to defaults")
	return s.defaults, nil
}
