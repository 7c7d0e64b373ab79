// services/leaderboard_service.go
package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"mission-board-system/models"
	"mission-board-system/store"
)

// LeaderboardService maintains the denormalized stats snapshot. It
// only reads the claim history and rewrites leaderboard_entries, so a
// slightly stale board never blocks a claim.
type LeaderboardService struct {
	Store store.Store
	Stats *StatsService
}

func NewLeaderboardService(st store.Store, stats *StatsService) *LeaderboardService {
	return &LeaderboardService{Store: st, Stats: stats}
}

// Rebuild recomputes every mirrored user's stats and replaces the
// snapshot in one shot.
func (s *LeaderboardService) Rebuild(ctx context.Context) error {
	users, err := s.Store.ListUserMirrors(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	now := time.Now()
	entries := make([]models.LeaderboardEntry, 0, len(users))
	for _, u := range users {
		stats, err := s.Stats.ComputeStats(ctx, u.ID)
		if err != nil {
			return err
		}
		entries = append(entries, models.LeaderboardEntry{
			UserID:            u.ID,
			Name:              u.Name,
			CompletedMissions: int(stats.CompletedMissions),
			TotalEarnings:     stats.TotalEarnings,
			ExperiencePoints:  stats.ExperiencePoints,
			Level:             stats.Level,
			RefreshedAt:       now,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].ExperiencePoints > entries[j].ExperiencePoints
	})

	if err := s.Store.ReplaceLeaderboard(ctx, entries); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

func (s *LeaderboardService) Top(ctx context.Context, limit int) ([]models.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = 20
	}
	entries, err := s.Store.ListLeaderboard(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return entries, nil
}
