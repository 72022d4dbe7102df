// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain entities to keep the domain layer pure and free
// from ORM concerns.
//
// Structure:
// - base.go: shared id/timestamp columns
// - catalog.go: admitted products, categories, category mappings
// - quality.go: quality metrics and the stored quality settings
// - integration.go: import sessions and sync log entries
package models
