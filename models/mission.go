// models/mission.go
package models

import (
	"time"

	"gorm.io/gorm"
)

// Mission difficulty levels — fixed vocabulary, also keys the XP table.
const (
	LevelRookie       = "Rookie"
	LevelIntermediate = "Intermediate"
	LevelAdvanced     = "Advanced"
	LevelExpert       = "Expert"
)

// Mission statuses. Transitions only move forward:
// available → claimed → completed.
const (
	MissionStatusAvailable = "available"
	MissionStatusClaimed   = "claimed"
	MissionStatusCompleted = "completed"
)

func ValidLevel(level string) bool {
	switch level {
	case LevelRookie, LevelIntermediate, LevelAdvanced, LevelExpert:
		return true
	}
	return false
}

type Mission struct {
	ID          string   `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	Title       string   `json:"title" gorm:"not null"`
	Slug        string   `json:"slug" gorm:"index"`
	Description string   `json:"description" gorm:"type:text"`
	Repository  string   `json:"repository" gorm:"not null"`
	Tags        []string `json:"tags" gorm:"serializer:json"`

	Level          string  `json:"level" gorm:"not null"`
	EstimatedHours float64 `json:"estimated_hours"`
	Reward         float64 `json:"reward" gorm:"not null;default:0"`

	// The claim coordinator is the only writer of this field after creation.
	Status string `json:"status" gorm:"not null;default:'available';index"`

	CreatedBy string `json:"created_by" gorm:"index;not null"`

	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// MissionListItem is the list projection: mission fields plus the
// mirrored creator profile joined in by the registry.
type MissionListItem struct {
	Mission
	Creator *CreatorInfo `json:"created_by_user,omitempty"`
}

type CreatorInfo struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url,omitempty"`
}
