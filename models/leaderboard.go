// models/leaderboard.go
package models

import "time"

// LeaderboardEntry is a denormalized snapshot of a user's derived
// stats, rebuilt on a schedule from the claim history. Never written
// on the request path.
type LeaderboardEntry struct {
	UserID            string    `json:"user_id" gorm:"primaryKey"`
	Name              string    `json:"name"`
	CompletedMissions int       `json:"completed_missions"`
	TotalEarnings     float64   `json:"total_earnings"`
	ExperiencePoints  int64     `json:"experience_points" gorm:"index"`
	Level             int       `json:"level"`
	RefreshedAt       time.Time `json:"refreshed_at"`
}
