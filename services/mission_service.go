// services/mission_service.go
package services

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"mission-board-system/models"
	"mission-board-system/store"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

// MissionService is the thin mission registry: create, list, read.
// It never touches mission status after creation — that belongs to the
// claim coordinator and the review path.
type MissionService struct {
	Store store.Store
}

func NewMissionService(st store.Store) *MissionService {
	return &MissionService{Store: st}
}

// CreateMissionInput mirrors the posting form.
type CreateMissionInput struct {
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	Repository     string   `json:"repository"`
	Tags           []string `json:"tags"`
	Level          string   `json:"level"`
	EstimatedHours float64  `json:"estimatedHours"`
	Reward         float64  `json:"reward"`
}

// MissionFilters narrows ListMissions. Level and status go to the
// store; tag and free-text search are applied here, the way the
// original board filtered.
type MissionFilters struct {
	Level  string
	Tag    string
	Search string
}

func (s *MissionService) CreateMission(ctx context.Context, createdBy string, in CreateMissionInput) (*models.Mission, error) {
	if err := validateMissionInput(in); err != nil {
		return nil, err
	}

	m := &models.Mission{
		ID:             uuid.NewString(),
		Title:          strings.TrimSpace(in.Title),
		Slug:           slug.Make(in.Title),
		Description:    in.Description,
		Repository:     in.Repository,
		Tags:           in.Tags,
		Level:          in.Level,
		EstimatedHours: in.EstimatedHours,
		Reward:         in.Reward,
		Status:         models.MissionStatusAvailable,
		CreatedBy:      createdBy,
	}

	if err := s.Store.InsertMission(ctx, m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return m, nil
}

func (s *MissionService) GetMission(ctx context.Context, id string) (*models.Mission, error) {
	m, err := s.Store.GetMission(ctx, id)
	if err != nil {
		if err == store.ErrNotFound {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return m, nil
}

// ListMissions returns missions newest first with the mirrored creator
// profile joined in.
func (s *MissionService) ListMissions(ctx context.Context, f MissionFilters) ([]models.MissionListItem, error) {
	missions, err := s.Store.ListMissions(ctx, store.MissionFilter{Level: f.Level})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	items := make([]models.MissionListItem, 0, len(missions))
	for _, m := range missions {
		if f.Tag != "" && !hasTag(m.Tags, f.Tag) {
			continue
		}
		if f.Search != "" && !matchesSearch(m, f.Search) {
			continue
		}
		item := models.MissionListItem{Mission: m}
		if u, err := s.Store.GetUserMirror(ctx, m.CreatedBy); err == nil {
			item.Creator = &models.CreatorInfo{ID: u.ID, Name: u.Name, AvatarURL: u.AvatarURL}
		}
		items = append(items, item)
	}
	return items, nil
}

func validateMissionInput(in CreateMissionInput) error {
	if strings.TrimSpace(in.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrValidation)
	}
	if strings.TrimSpace(in.Repository) == "" {
		return fmt.Errorf("%w: repository is required", ErrValidation)
	}
	if u, err := url.Parse(in.Repository); err != nil || !u.IsAbs() || u.Host == "" {
		return fmt.Errorf("%w: repository must be a valid URL", ErrValidation)
	}
	if !models.ValidLevel(in.Level) {
		return fmt.Errorf("%w: level must be one of Rookie, Intermediate, Advanced, Expert", ErrValidation)
	}
	if in.EstimatedHours <= 0 {
		return fmt.Errorf("%w: estimated hours must be positive", ErrValidation)
	}
	if in.Reward < 0 {
		return fmt.Errorf("%w: reward cannot be negative", ErrValidation)
	}
	return nil
}

func hasTag(tags []string, want string) bool {
	for _, t := range tags {
		if strings.EqualFold(t, want) {
			return true
		}
	}
	return false
}

func matchesSearch(m models.Mission, q string) bool {
	q = strings.ToLower(q)
	if strings.Contains(strings.ToLower(m.Title), q) {
		return true
	}
	for _, t := range m.Tags {
		if strings.Contains(strings.ToLower(t), q) {
			return true
		}
	}
	return false
}
