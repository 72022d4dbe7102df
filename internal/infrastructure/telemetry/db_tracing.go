package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBTracingConfig controls gorm query tracing
type DBTracingConfig struct {
	Enabled         bool
	IncludeVars     bool // include bound query variables in spans; development only
	SlowQueryThresh time.Duration
	DBName          string
}

// DefaultDBTracingConfig returns tracing disabled with a 200ms slow threshold
func DefaultDBTracingConfig() DBTracingConfig {
	return DBTracingConfig{
		SlowQueryThresh: 200 * time.Millisecond,
		DBName:          "storefront",
	}
}

type queryStartKey struct{}

// RegisterDBTracing installs otelgorm plus a slow query marker on db
func RegisterDBTracing(db *gorm.DB, cfg DBTracingConfig, logger *zap.Logger) error {
	if !cfg.Enabled {
		return nil
	}
	opts := []otelgorm.Option{otelgorm.WithDBName(cfg.DBName)}
	if !cfg.IncludeVars {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}

	before := func(tx *gorm.DB) {
		if tx.Statement.Context != nil {
			tx.Statement.Context = context.WithValue(tx.Statement.Context, queryStartKey{}, time.Now())
		}
	}
	after := slowQueryMarker(cfg.SlowQueryThresh)

	cb := db.Callback()
	for _, err := range []error{
		cb.Create().Before("gorm:create").Register("storefront:query_start_create", before),
		cb.Query().Before("gorm:query").Register("storefront:query_start_query", before),
		cb.Update().Before("gorm:update").Register("storefront:query_start_update", before),
		cb.Delete().Before("gorm:delete").Register("storefront:query_start_delete", before),
		cb.Raw().Before("gorm:raw").Register("storefront:query_start_raw", before),
		cb.Create().After("gorm:create").Register("storefront:slow_query_create", after),
		cb.Query().After("gorm:query").Register("storefront:slow_query_query", after),
		cb.Update().After("gorm:update").Register("storefront:slow_query_update", after),
		cb.Delete().After("gorm:delete").Register("storefront:slow_query_delete", after),
		cb.Raw().After("gorm:raw").Register("storefront:slow_query_raw", after),
	} {
		if err != nil {
			return err
		}
	}

	logger.Info("Database tracing enabled",
		zap.Bool("include_vars", cfg.IncludeVars),
		zap.Duration("slow_query_threshold", cfg.SlowQueryThresh),
	)
	return nil
}

func slowQueryMarker(threshold time.Duration) func(*gorm.DB) {
	return func(tx *gorm.DB) {
		ctx := tx.Statement.Context
		if ctx == nil {
			return
		}
		span := trace.SpanFromContext(ctx)
		if !span.IsRecording() {
			return
		}
		if tx.Error != nil && !errors.Is(tx.Error, gorm.ErrRecordNotFound) {
			RecordError(span, tx.Error)
		}
		start, ok := ctx.Value(queryStartKey{}).(time.Time)
		if !ok {
			return
		}
		if elapsed := time.Since(start); elapsed > threshold {
			span.SetAttributes(
				attribute.Bool("db.slow_query", true),
				attribute.Int64("db.query_duration_ms", elapsed.Milliseconds()),
			)
		}
	}
}
