// models/claim.go
package models

import "time"

// Claim statuses. A mission has at most one claim in pending or
// completed at any time; rejected claims release the mission.
const (
	ClaimStatusPending   = "pending"
	ClaimStatusCompleted = "completed"
	ClaimStatusRejected  = "rejected"
)

// Claim = a user's exclusive hold on a mission, backed by a PR link.
type Claim struct {
	ID        string `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	MissionID string `json:"mission_id" gorm:"index;not null"`
	UserID    string `json:"user_id" gorm:"index;not null"`
	PRLink    string `json:"pr_link" gorm:"not null"`
	Status    string `json:"status" gorm:"not null;default:'pending';index"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// ActiveMission is the stats projection of a pending claim joined
// with its mission's display fields.
type ActiveMission struct {
	Claim
	MissionTitle  string  `json:"mission_title"`
	MissionLevel  string  `json:"mission_level"`
	MissionReward float64 `json:"mission_reward"`
}
