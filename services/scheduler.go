// services/scheduler.go
package services

import (
	"context"
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// StartLeaderboardScheduler refreshes the leaderboard snapshot every
// interval. Claim traffic never waits on this.
func (s *LeaderboardService) StartLeaderboardScheduler(interval time.Duration) {
	sched, _ := gocron.NewScheduler()
	sched.Start()

	_, _ = sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			if err := s.Rebuild(context.Background()); err != nil {
				log.Printf("[Leaderboard] rebuild failed: %v", err)
				return
			}
			log.Printf("✅ Leaderboard refreshed")
		}),
	)
}
