// services/claim_service.go
package services

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strings"

	"mission-board-system/models"
	"mission-board-system/store"

	"github.com/google/uuid"
)

// ClaimService coordinates the mission claim transition. The only
// decision point for "who got the mission" is the conditional UPDATE
// inside one transaction — there is no read-then-decide step, so
// concurrent claimers from any number of processes race on the row
// itself and exactly one wins.
type ClaimService struct {
	Store store.Store
}

func NewClaimService(st store.Store) *ClaimService {
	return &ClaimService{Store: st}
}

// ClaimMission moves missionID from available to claimed and records
// userID's pending claim with prLink, atomically. Errors:
// ErrValidation (bad PR link, before any store access), ErrNotFound
// (no such mission), ErrConflict (mission already claimed/completed),
// ErrStoreUnavailable (infrastructure; safe to retry).
func (s *ClaimService) ClaimMission(ctx context.Context, missionID, userID, prLink string) (*models.Claim, error) {
	if err := validatePRLink(prLink); err != nil {
		return nil, err
	}
	if missionID == "" || userID == "" {
		return nil, fmt.Errorf("%w: missing mission or user id", ErrValidation)
	}

	claim := &models.Claim{
		ID:        uuid.NewString(),
		MissionID: missionID,
		UserID:    userID,
		PRLink:    prLink,
		Status:    models.ClaimStatusPending,
	}

	err := s.Store.InTransaction(ctx, func(tx store.Store) error {
		ok, err := tx.TryTransitionToClaimed(ctx, missionID)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
		if !ok {
			// Zero rows: either the mission does not exist or it is
			// past available. Read only to pick the right error.
			if _, err := tx.GetMission(ctx, missionID); err != nil {
				if err == store.ErrNotFound {
					return ErrNotFound
				}
				return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
			}
			return ErrConflict
		}
		if err := tx.InsertClaim(ctx, claim); err != nil {
			// Aborts the transaction; the status flip rolls back too.
			return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("✅ [CLAIM] mission %s claimed by %s (claim %s)", missionID, userID, claim.ID)
	return claim, nil
}

// ReviewClaim is the entry point for the external review process:
// verdict is completed or rejected. Completed also advances the
// mission to completed; rejected returns it to available so someone
// else can claim. Both rows move in one transaction.
func (s *ClaimService) ReviewClaim(ctx context.Context, claimID, verdict string) error {
	if verdict != models.ClaimStatusCompleted && verdict != models.ClaimStatusRejected {
		return fmt.Errorf("%w: verdict must be %q or %q", ErrValidation,
			models.ClaimStatusCompleted, models.ClaimStatusRejected)
	}

	err := s.Store.InTransaction(ctx, func(tx store.Store) error {
		claim, err := tx.GetClaimForUpdate(ctx, claimID)
		if err != nil {
			if err == store.ErrNotFound {
				return ErrNotFound
			}
			return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
		if claim.Status != models.ClaimStatusPending {
			return ErrConflict
		}
		if err := tx.UpdateClaimStatus(ctx, claimID, verdict); err != nil {
			return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}

		missionTo := models.MissionStatusCompleted
		if verdict == models.ClaimStatusRejected {
			missionTo = models.MissionStatusAvailable
		}
		ok, err := tx.UpdateMissionStatus(ctx, claim.MissionID, models.MissionStatusClaimed, missionTo)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
		if !ok {
			// A pending claim implies a claimed mission; anything else
			// is a consistency fault and must not half-apply.
			return fmt.Errorf("%w: mission %s not in claimed status", ErrStoreUnavailable, claim.MissionID)
		}
		return nil
	})
	if err != nil {
		return err
	}

	log.Printf("📋 [REVIEW] claim %s marked %s", claimID, verdict)
	return nil
}

func validatePRLink(prLink string) error {
	trimmed := strings.TrimSpace(prLink)
	if trimmed == "" {
		return fmt.Errorf("%w: pull request URL is required", ErrValidation)
	}
	u, err := url.Parse(trimmed)
	if err != nil || !u.IsAbs() || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: pull request URL must be a valid http(s) URL", ErrValidation)
	}
	return nil
}
