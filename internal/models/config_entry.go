package models

import "time"

// ConfigEntry is one path-keyed configuration value
type ConfigEntry struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	Path      string    `gorm:"uniqueIndex;size:255;not null" json:"path"`
	Value     string    `gorm:"type:text" json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (ConfigEntry) TableName() string {
	return "config_entries"
}
