// services/stats_service.go
package services

import (
	"context"
	"fmt"

	"mission-board-system/models"
	"mission-board-system/store"
)

// Base XP per completed mission, keyed by mission level. Fixed policy,
// not configurable at call time.
var xpByLevel = map[string]int64{
	models.LevelRookie:       100,
	models.LevelIntermediate: 200,
	models.LevelAdvanced:     300,
	models.LevelExpert:       400,
}

const defaultXP = 100

const xpPerLevel = 1000

// UserStats is the derived reputation ledger for one user.
type UserStats struct {
	CompletedMissions int64                  `json:"completedMissions"`
	ActiveMissions    []models.ActiveMission `json:"activeMissions"`
	TotalEarnings     float64                `json:"totalEarnings"`
	ExperiencePoints  int64                  `json:"experiencePoints"`
	Level             int                    `json:"level"`
}

// StatsService derives user statistics from the immutable claim
// history. Pure reads; never takes the mission row lock, so it cannot
// block or be blocked by claim attempts.
type StatsService struct {
	Store store.Store
}

func NewStatsService(st store.Store) *StatsService {
	return &StatsService{Store: st}
}

// ComputeStats returns the stats for userID. ErrNotFound when the user
// has no mirrored profile; ErrStoreUnavailable on read failure.
func (s *StatsService) ComputeStats(ctx context.Context, userID string) (*UserStats, error) {
	if _, err := s.Store.GetUserMirror(ctx, userID); err != nil {
		if err == store.ErrNotFound {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	completed, err := s.Store.ListClaimsByUser(ctx, userID, models.ClaimStatusCompleted)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	pending, err := s.Store.ListClaimsByUser(ctx, userID, models.ClaimStatusPending)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	missionIDs := make([]string, 0, len(completed)+len(pending))
	for _, c := range completed {
		missionIDs = append(missionIDs, c.MissionID)
	}
	for _, c := range pending {
		missionIDs = append(missionIDs, c.MissionID)
	}
	missions, err := s.Store.GetMissionsByIDs(ctx, missionIDs)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	stats := &UserStats{
		CompletedMissions: int64(len(completed)),
		ActiveMissions:    make([]models.ActiveMission, 0, len(pending)),
	}

	for _, c := range completed {
		m, ok := missions[c.MissionID]
		if !ok {
			// A claim without its mission breaks the atomic-write
			// invariant; surface it as an infrastructure fault.
			return nil, fmt.Errorf("%w: claim %s references missing mission %s", ErrStoreUnavailable, c.ID, c.MissionID)
		}
		stats.TotalEarnings += m.Reward
		stats.ExperiencePoints += xpForLevel(m.Level)
	}

	for _, c := range pending {
		m, ok := missions[c.MissionID]
		if !ok {
			return nil, fmt.Errorf("%w: claim %s references missing mission %s", ErrStoreUnavailable, c.ID, c.MissionID)
		}
		stats.ActiveMissions = append(stats.ActiveMissions, models.ActiveMission{
			Claim:         c,
			MissionTitle:  m.Title,
			MissionLevel:  m.Level,
			MissionReward: m.Reward,
		})
	}

	stats.Level = LevelForXP(stats.ExperiencePoints)
	return stats, nil
}

func xpForLevel(missionLevel string) int64 {
	if xp, ok := xpByLevel[missionLevel]; ok {
		return xp
	}
	return defaultXP
}

// LevelForXP: every 1000 XP is a new level, starting at 1.
func LevelForXP(xp int64) int {
	return int(xp/xpPerLevel) + 1
}
