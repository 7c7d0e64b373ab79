// store/memory_test.go
package store

import (
	"context"
	"errors"
	"testing"

	"mission-board-system/models"
)

func TestTryTransitionToClaimed(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()

	m := &models.Mission{Title: "t", Status: models.MissionStatusAvailable}
	if err := st.InsertMission(ctx, m); err != nil {
		t.Fatalf("insert: %v", err)
	}

	ok, err := st.TryTransitionToClaimed(ctx, m.ID)
	if err != nil || !ok {
		t.Fatalf("first transition ok=%v err=%v, want true/nil", ok, err)
	}
	// Already claimed: compare-and-set must refuse.
	ok, err = st.TryTransitionToClaimed(ctx, m.ID)
	if err != nil || ok {
		t.Errorf("second transition ok=%v err=%v, want false/nil", ok, err)
	}
	// Unknown id: also zero rows, no error.
	ok, err = st.TryTransitionToClaimed(ctx, "nope")
	if err != nil || ok {
		t.Errorf("unknown id ok=%v err=%v, want false/nil", ok, err)
	}

	got, _ := st.GetMission(ctx, m.ID)
	if got.Status != models.MissionStatusClaimed {
		t.Errorf("status = %q, want claimed", got.Status)
	}
}

func TestInTransaction_RollbackDiscardsWrites(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()

	m := &models.Mission{Title: "t", Status: models.MissionStatusAvailable}
	if err := st.InsertMission(ctx, m); err != nil {
		t.Fatalf("insert: %v", err)
	}

	boom := errors.New("boom")
	err := st.InTransaction(ctx, func(tx Store) error {
		if ok, err := tx.TryTransitionToClaimed(ctx, m.ID); err != nil || !ok {
			t.Fatalf("transition inside tx: ok=%v err=%v", ok, err)
		}
		if err := tx.InsertClaim(ctx, &models.Claim{MissionID: m.ID, UserID: "u", PRLink: "x", Status: models.ClaimStatusPending}); err != nil {
			t.Fatalf("insert claim inside tx: %v", err)
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}

	got, _ := st.GetMission(ctx, m.ID)
	if got.Status != models.MissionStatusAvailable {
		t.Errorf("status = %q, want available after rollback", got.Status)
	}
	claims, _ := st.ListClaimsByStatus(ctx, models.ClaimStatusPending)
	if len(claims) != 0 {
		t.Errorf("claims = %d, want 0 after rollback", len(claims))
	}
}

func TestInTransaction_CommitPublishesWrites(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()

	m := &models.Mission{Title: "t", Status: models.MissionStatusAvailable}
	if err := st.InsertMission(ctx, m); err != nil {
		t.Fatalf("insert: %v", err)
	}

	err := st.InTransaction(ctx, func(tx Store) error {
		if _, err := tx.TryTransitionToClaimed(ctx, m.ID); err != nil {
			return err
		}
		return tx.InsertClaim(ctx, &models.Claim{MissionID: m.ID, UserID: "u", PRLink: "x", Status: models.ClaimStatusPending})
	})
	if err != nil {
		t.Fatalf("tx: %v", err)
	}

	got, _ := st.GetMission(ctx, m.ID)
	if got.Status != models.MissionStatusClaimed {
		t.Errorf("status = %q, want claimed", got.Status)
	}
	claims, _ := st.ListClaimsByStatus(ctx, models.ClaimStatusPending)
	if len(claims) != 1 {
		t.Errorf("claims = %d, want 1", len(claims))
	}
}

func TestUpdateClaimStatus_NotFound(t *testing.T) {
	st := NewMemoryStore()
	if err := st.UpdateClaimStatus(context.Background(), "nope", models.ClaimStatusCompleted); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}
