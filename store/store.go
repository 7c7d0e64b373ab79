// store/store.go
package store

import (
	"context"
	"errors"

	"mission-board-system/models"
)

// ErrNotFound is returned by single-row reads when no row matches.
var ErrNotFound = errors.New("record not found")

// MissionFilter narrows ListMissions. Zero values mean "no filter".
type MissionFilter struct {
	Status string
	Level  string
}

// Store is the explicit persistence handle passed into every service.
// The conditional transitions (TryTransitionToClaimed,
// UpdateMissionStatus) are compare-and-set: they apply only if the row
// is currently in the expected status, and report whether they did.
type Store interface {
	// InTransaction runs fn against a transactional view of the store.
	// If fn returns an error nothing fn wrote becomes visible.
	InTransaction(ctx context.Context, fn func(tx Store) error) error

	GetMission(ctx context.Context, id string) (*models.Mission, error)
	GetMissionForUpdate(ctx context.Context, id string) (*models.Mission, error)
	InsertMission(ctx context.Context, m *models.Mission) error
	ListMissions(ctx context.Context, f MissionFilter) ([]models.Mission, error)
	GetMissionsByIDs(ctx context.Context, ids []string) (map[string]models.Mission, error)
	TryTransitionToClaimed(ctx context.Context, missionID string) (bool, error)
	UpdateMissionStatus(ctx context.Context, missionID, from, to string) (bool, error)

	InsertClaim(ctx context.Context, c *models.Claim) error
	GetClaimForUpdate(ctx context.Context, id string) (*models.Claim, error)
	ListClaimsByUser(ctx context.Context, userID, status string) ([]models.Claim, error)
	CountClaimsByUserAndStatus(ctx context.Context, userID, status string) (int64, error)
	ListClaimsByStatus(ctx context.Context, status string) ([]models.Claim, error)
	UpdateClaimStatus(ctx context.Context, claimID, status string) error

	GetUserMirror(ctx context.Context, id string) (*models.UserMirror, error)
	UpsertUserMirrors(ctx context.Context, mirrors []models.UserMirror) error
	ListUserMirrors(ctx context.Context) ([]models.UserMirror, error)

	ReplaceLeaderboard(ctx context.Context, entries []models.LeaderboardEntry) error
	ListLeaderboard(ctx context.Context, limit int) ([]models.LeaderboardEntry, error)
}
