// services/claim_service_test.go
package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"mission-board-system/models"
	"mission-board-system/store"

	"github.com/google/uuid"
)

func seedMission(t *testing.T, st *store.MemoryStore, status, level string, reward float64) *models.Mission {
	t.Helper()
	m := &models.Mission{
		ID:             uuid.NewString(),
		Title:          "Fix flaky integration tests",
		Repository:     "https://github.com/acme/widgets",
		Level:          level,
		EstimatedHours: 4,
		Reward:         reward,
		Status:         status,
		CreatedBy:      "poster-1",
	}
	if err := st.InsertMission(context.Background(), m); err != nil {
		t.Fatalf("seed mission: %v", err)
	}
	return m
}

func pendingClaimsFor(t *testing.T, st *store.MemoryStore, missionID string) []models.Claim {
	t.Helper()
	claims, err := st.ListClaimsByStatus(context.Background(), models.ClaimStatusPending)
	if err != nil {
		t.Fatalf("list claims: %v", err)
	}
	var out []models.Claim
	for _, c := range claims {
		if c.MissionID == missionID {
			out = append(out, c)
		}
	}
	return out
}

func TestClaimMission_Success(t *testing.T) {
	st := store.NewMemoryStore()
	svc := NewClaimService(st)
	m := seedMission(t, st, models.MissionStatusAvailable, models.LevelRookie, 50)

	claim, err := svc.ClaimMission(context.Background(), m.ID, "user-1", "https://github.com/acme/widgets/pull/7")
	if err != nil {
		t.Fatalf("ClaimMission: %v", err)
	}
	if claim.Status != models.ClaimStatusPending {
		t.Errorf("claim status = %q, want pending", claim.Status)
	}
	if claim.UserID != "user-1" || claim.MissionID != m.ID {
		t.Errorf("claim references %s/%s, want user-1/%s", claim.UserID, claim.MissionID, m.ID)
	}

	got, err := st.GetMission(context.Background(), m.ID)
	if err != nil {
		t.Fatalf("GetMission: %v", err)
	}
	if got.Status != models.MissionStatusClaimed {
		t.Errorf("mission status = %q, want claimed", got.Status)
	}
	if n := len(pendingClaimsFor(t, st, m.ID)); n != 1 {
		t.Errorf("pending claims = %d, want 1", n)
	}
}

func TestClaimMission_MutualExclusion(t *testing.T) {
	st := store.NewMemoryStore()
	svc := NewClaimService(st)
	m := seedMission(t, st, models.MissionStatusAvailable, models.LevelAdvanced, 150)

	const numClaimers = 32
	var wg sync.WaitGroup
	var wins, conflicts atomic.Int32

	for i := 0; i < numClaimers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			userID := fmt.Sprintf("user-%d", n)
			prLink := fmt.Sprintf("https://github.com/acme/widgets/pull/%d", n)
			_, err := svc.ClaimMission(context.Background(), m.ID, userID, prLink)
			switch {
			case err == nil:
				wins.Add(1)
			case errors.Is(err, ErrConflict):
				conflicts.Add(1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	if wins.Load() != 1 {
		t.Errorf("winners = %d, want exactly 1", wins.Load())
	}
	if conflicts.Load() != numClaimers-1 {
		t.Errorf("conflicts = %d, want %d", conflicts.Load(), numClaimers-1)
	}
	if n := len(pendingClaimsFor(t, st, m.ID)); n != 1 {
		t.Errorf("pending claims after swarm = %d, want 1", n)
	}
}

func TestClaimMission_IdempotentRejection(t *testing.T) {
	st := store.NewMemoryStore()
	svc := NewClaimService(st)

	for _, status := range []string{models.MissionStatusClaimed, models.MissionStatusCompleted} {
		m := seedMission(t, st, status, models.LevelRookie, 50)

		// Repeated attempts from several callers, including a retry by
		// the same user, all conflict and never add a claim row.
		for _, user := range []string{"user-1", "user-2", "user-1"} {
			_, err := svc.ClaimMission(context.Background(), m.ID, user, "https://github.com/acme/widgets/pull/1")
			if !errors.Is(err, ErrConflict) {
				t.Errorf("status %s, user %s: err = %v, want ErrConflict", status, user, err)
			}
		}
		if n := len(pendingClaimsFor(t, st, m.ID)); n != 0 {
			t.Errorf("status %s: pending claims = %d, want 0", status, n)
		}
	}
}

func TestClaimMission_NotFound(t *testing.T) {
	st := store.NewMemoryStore()
	svc := NewClaimService(st)

	_, err := svc.ClaimMission(context.Background(), uuid.NewString(), "user-1", "https://github.com/acme/widgets/pull/1")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestClaimMission_ValidationBeforeStore(t *testing.T) {
	st := store.NewMemoryStore()
	svc := NewClaimService(st)
	m := seedMission(t, st, models.MissionStatusAvailable, models.LevelRookie, 50)

	for _, prLink := range []string{"", "   ", "not-a-url", "ftp://example.com/pr/1"} {
		_, err := svc.ClaimMission(context.Background(), m.ID, "user-1", prLink)
		if !errors.Is(err, ErrValidation) {
			t.Errorf("prLink %q: err = %v, want ErrValidation", prLink, err)
		}
	}

	// Zero writes: mission untouched, no claim rows.
	got, _ := st.GetMission(context.Background(), m.ID)
	if got.Status != models.MissionStatusAvailable {
		t.Errorf("mission status = %q, want available", got.Status)
	}
	if n := len(pendingClaimsFor(t, st, m.ID)); n != 0 {
		t.Errorf("pending claims = %d, want 0", n)
	}
}

func TestClaimMission_InsertFailureRollsBack(t *testing.T) {
	st := store.NewMemoryStore()
	svc := NewClaimService(st)
	m := seedMission(t, st, models.MissionStatusAvailable, models.LevelRookie, 50)

	st.FailNextInsertClaim(errors.New("connection reset"))

	_, err := svc.ClaimMission(context.Background(), m.ID, "user-1", "https://github.com/acme/widgets/pull/1")
	if !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("err = %v, want ErrStoreUnavailable", err)
	}

	// The status flip must have rolled back with the failed insert: no
	// claimed mission without a claim, and the mission is claimable again.
	got, _ := st.GetMission(context.Background(), m.ID)
	if got.Status != models.MissionStatusAvailable {
		t.Errorf("mission status = %q, want available after rollback", got.Status)
	}
	if _, err := svc.ClaimMission(context.Background(), m.ID, "user-2", "https://github.com/acme/widgets/pull/2"); err != nil {
		t.Errorf("retry after rollback: %v", err)
	}
}

func TestReviewClaim_Completed(t *testing.T) {
	st := store.NewMemoryStore()
	svc := NewClaimService(st)
	m := seedMission(t, st, models.MissionStatusAvailable, models.LevelExpert, 400)

	claim, err := svc.ClaimMission(context.Background(), m.ID, "user-1", "https://github.com/acme/widgets/pull/1")
	if err != nil {
		t.Fatalf("ClaimMission: %v", err)
	}

	if err := svc.ReviewClaim(context.Background(), claim.ID, models.ClaimStatusCompleted); err != nil {
		t.Fatalf("ReviewClaim: %v", err)
	}

	got, _ := st.GetMission(context.Background(), m.ID)
	if got.Status != models.MissionStatusCompleted {
		t.Errorf("mission status = %q, want completed", got.Status)
	}

	// A settled claim cannot be reviewed again.
	if err := svc.ReviewClaim(context.Background(), claim.ID, models.ClaimStatusRejected); !errors.Is(err, ErrConflict) {
		t.Errorf("second review err = %v, want ErrConflict", err)
	}
}

func TestReviewClaim_RejectedReleasesMission(t *testing.T) {
	st := store.NewMemoryStore()
	svc := NewClaimService(st)
	m := seedMission(t, st, models.MissionStatusAvailable, models.LevelRookie, 50)

	claim, err := svc.ClaimMission(context.Background(), m.ID, "user-1", "https://github.com/acme/widgets/pull/1")
	if err != nil {
		t.Fatalf("ClaimMission: %v", err)
	}

	if err := svc.ReviewClaim(context.Background(), claim.ID, models.ClaimStatusRejected); err != nil {
		t.Fatalf("ReviewClaim: %v", err)
	}

	got, _ := st.GetMission(context.Background(), m.ID)
	if got.Status != models.MissionStatusAvailable {
		t.Errorf("mission status = %q, want available after rejection", got.Status)
	}

	// Someone else can now claim it.
	if _, err := svc.ClaimMission(context.Background(), m.ID, "user-2", "https://github.com/acme/widgets/pull/2"); err != nil {
		t.Errorf("claim after rejection: %v", err)
	}
}

func TestReviewClaim_BadInput(t *testing.T) {
	st := store.NewMemoryStore()
	svc := NewClaimService(st)

	if err := svc.ReviewClaim(context.Background(), uuid.NewString(), "approved"); !errors.Is(err, ErrValidation) {
		t.Errorf("bad verdict err = %v, want ErrValidation", err)
	}
	if err := svc.ReviewClaim(context.Background(), uuid.NewString(), models.ClaimStatusCompleted); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing claim err = %v, want ErrNotFound", err)
	}
}
