package models

import (
	"time"

	"github.com/google/uuid"
)

// BaseModel provides the id and creation time of append-mostly tables
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `gorm:"not null;index"`
}
