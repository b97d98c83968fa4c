package model

import (
	"time"
)

// BaseModel contains common fields for all models
type BaseModel struct {
	ID        int       `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt time.Time `gorm:"autoCreateTime;not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime;not null" json:"updated_at"`
}

// Stamp sets both timestamps to now, so that a fresh row has
// created_at == updated_at.
func (b *BaseModel) Stamp(now time.Time) {
	b.CreatedAt = now
	b.UpdatedAt = now
}
