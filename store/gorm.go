// store/gorm.go
package store

import (
	"context"
	"errors"

	"mission-board-system/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore is the Postgres-backed Store. The compare-and-set methods
// lean on a single conditional UPDATE so the database row lock is the
// serialization point — there is no read-then-decide window.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) InTransaction(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx})
	})
}

func (s *GormStore) GetMission(ctx context.Context, id string) (*models.Mission, error) {
	var m models.Mission
	if err := s.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, mapErr(err)
	}
	return &m, nil
}

func (s *GormStore) GetMissionForUpdate(ctx context.Context, id string) (*models.Mission, error) {
	var m models.Mission
	err := s.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&m, "id = ?", id).Error
	if err != nil {
		return nil, mapErr(err)
	}
	return &m, nil
}

func (s *GormStore) InsertMission(ctx context.Context, m *models.Mission) error {
	return s.db.WithContext(ctx).Create(m).Error
}

func (s *GormStore) ListMissions(ctx context.Context, f MissionFilter) ([]models.Mission, error) {
	q := s.db.WithContext(ctx).Model(&models.Mission{}).Order("created_at DESC")
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Level != "" {
		q = q.Where("level = ?", f.Level)
	}
	var missions []models.Mission
	if err := q.Find(&missions).Error; err != nil {
		return nil, err
	}
	return missions, nil
}

func (s *GormStore) GetMissionsByIDs(ctx context.Context, ids []string) (map[string]models.Mission, error) {
	out := make(map[string]models.Mission, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var missions []models.Mission
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&missions).Error; err != nil {
		return nil, err
	}
	for _, m := range missions {
		out[m.ID] = m
	}
	return out, nil
}

// TryTransitionToClaimed is the claim path's sole arbiter: the UPDATE
// only applies while the row still reads 'available', so under
// concurrent claims exactly one caller sees RowsAffected == 1.
func (s *GormStore) TryTransitionToClaimed(ctx context.Context, missionID string) (bool, error) {
	return s.UpdateMissionStatus(ctx, missionID, models.MissionStatusAvailable, models.MissionStatusClaimed)
}

func (s *GormStore) UpdateMissionStatus(ctx context.Context, missionID, from, to string) (bool, error) {
	res := s.db.WithContext(ctx).
		Model(&models.Mission{}).
		Where("id = ? AND status = ?", missionID, from).
		Update("status", to)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (s *GormStore) InsertClaim(ctx context.Context, c *models.Claim) error {
	return s.db.WithContext(ctx).Create(c).Error
}

func (s *GormStore) GetClaimForUpdate(ctx context.Context, id string) (*models.Claim, error) {
	var c models.Claim
	err := s.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&c, "id = ?", id).Error
	if err != nil {
		return nil, mapErr(err)
	}
	return &c, nil
}

func (s *GormStore) ListClaimsByUser(ctx context.Context, userID, status string) ([]models.Claim, error) {
	var claims []models.Claim
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, status).
		Order("created_at DESC").
		Find(&claims).Error
	if err != nil {
		return nil, err
	}
	return claims, nil
}

func (s *GormStore) CountClaimsByUserAndStatus(ctx context.Context, userID, status string) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.Claim{}).
		Where("user_id = ? AND status = ?", userID, status).
		Count(&count).Error
	return count, err
}

func (s *GormStore) ListClaimsByStatus(ctx context.Context, status string) ([]models.Claim, error) {
	var claims []models.Claim
	err := s.db.WithContext(ctx).
		Where("status = ?", status).
		Order("created_at ASC").
		Find(&claims).Error
	if err != nil {
		return nil, err
	}
	return claims, nil
}

func (s *GormStore) UpdateClaimStatus(ctx context.Context, claimID, status string) error {
	res := s.db.WithContext(ctx).
		Model(&models.Claim{}).
		Where("id = ?", claimID).
		Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) GetUserMirror(ctx context.Context, id string) (*models.UserMirror, error) {
	var u models.UserMirror
	if err := s.db.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, mapErr(err)
	}
	return &u, nil
}

func (s *GormStore) UpsertUserMirrors(ctx context.Context, mirrors []models.UserMirror) error {
	if len(mirrors) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(&mirrors).Error
}

func (s *GormStore) ListUserMirrors(ctx context.Context) ([]models.UserMirror, error) {
	var users []models.UserMirror
	if err := s.db.WithContext(ctx).Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (s *GormStore) ReplaceLeaderboard(ctx context.Context, entries []models.LeaderboardEntry) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&models.LeaderboardEntry{}).Error; err != nil {
			return err
		}
		if len(entries) == 0 {
			return nil
		}
		return tx.Create(&entries).Error
	})
}

func (s *GormStore) ListLeaderboard(ctx context.Context, limit int) ([]models.LeaderboardEntry, error) {
	var entries []models.LeaderboardEntry
	err := s.db.WithContext(ctx).
		Order("experience_points DESC").
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func mapErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
