// services/leaderboard_service_test.go
package services

import (
	"context"
	"testing"

	"mission-board-system/models"
	"mission-board-system/store"
)

func TestLeaderboardRebuild(t *testing.T) {
	st := store.NewMemoryStore()
	stats := NewStatsService(st)
	svc := NewLeaderboardService(st, stats)
	ctx := context.Background()

	mirrorUser(t, st, "user-1", "Ada")
	mirrorUser(t, st, "user-2", "Grace")

	// Ada: one Expert completion (400 XP, 300 earnings).
	a := seedMission(t, st, models.MissionStatusCompleted, models.LevelExpert, 300)
	seedClaim(t, st, a.ID, "user-1", models.ClaimStatusCompleted)
	// Grace: two Rookie completions (200 XP, 100 earnings).
	for i := 0; i < 2; i++ {
		m := seedMission(t, st, models.MissionStatusCompleted, models.LevelRookie, 50)
		seedClaim(t, st, m.ID, "user-2", models.ClaimStatusCompleted)
	}

	if err := svc.Rebuild(ctx); err != nil {
		t.Fatalf("Rebuild: %v", err)
	}

	top, err := svc.Top(ctx, 10)
	if err != nil {
		t.Fatalf("Top: %v", err)
	}
	if len(top) != 2 {
		t.Fatalf("len = %d, want 2", len(top))
	}
	if top[0].UserID != "user-1" || top[0].ExperiencePoints != 400 {
		t.Errorf("first = %s/%d, want user-1/400", top[0].UserID, top[0].ExperiencePoints)
	}
	if top[1].UserID != "user-2" || top[1].ExperiencePoints != 200 || top[1].CompletedMissions != 2 {
		t.Errorf("second = %+v, want user-2 with 200 XP and 2 completions", top[1])
	}

	limited, _ := svc.Top(ctx, 1)
	if len(limited) != 1 || limited[0].UserID != "user-1" {
		t.Errorf("limit 1: got %d entries", len(limited))
	}
}
