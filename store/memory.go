// store/memory.go
package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"mission-board-system/models"

	"github.com/google/uuid"
)

// MemoryStore is an in-memory Store for tests and local runs. Its
// transactions are clone-and-swap: InTransaction copies the state,
// runs fn against the copy, and publishes it only when fn succeeds, so
// a failed transaction leaves nothing behind — same contract as the
// Postgres store, at the cost of serializing transactions on one lock.
type MemoryStore struct {
	mu sync.RWMutex
	st *memState

	insertClaimErr error // one-shot failure injection
}

func NewMemoryStore() *MemoryStore {
	m := &MemoryStore{
		st: &memState{
			missions: make(map[string]models.Mission),
			claims:   make(map[string]models.Claim),
			mirrors:  make(map[string]models.UserMirror),
		},
	}
	m.st.takeInsertClaimErr = m.takeInsertClaimErr
	return m
}

// FailNextInsertClaim makes the next InsertClaim (top-level or inside
// a transaction) fail with err. Test hook for the atomicity property.
func (m *MemoryStore) FailNextInsertClaim(err error) {
	m.insertClaimErr = err
}

func (m *MemoryStore) takeInsertClaimErr() error {
	err := m.insertClaimErr
	m.insertClaimErr = nil
	return err
}

func (m *MemoryStore) InTransaction(ctx context.Context, fn func(tx Store) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := m.st.clone()
	if err := fn(clone); err != nil {
		return err
	}
	m.st = clone
	return nil
}

func (m *MemoryStore) read(fn func(st *memState) error) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return fn(m.st)
}

func (m *MemoryStore) write(fn func(st *memState) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(m.st)
}

func (m *MemoryStore) GetMission(ctx context.Context, id string) (out *models.Mission, err error) {
	err = m.read(func(st *memState) error { out, err = st.GetMission(ctx, id); return err })
	return
}

func (m *MemoryStore) GetMissionForUpdate(ctx context.Context, id string) (out *models.Mission, err error) {
	err = m.read(func(st *memState) error { out, err = st.GetMissionForUpdate(ctx, id); return err })
	return
}

func (m *MemoryStore) InsertMission(ctx context.Context, mi *models.Mission) error {
	return m.write(func(st *memState) error { return st.InsertMission(ctx, mi) })
}

func (m *MemoryStore) ListMissions(ctx context.Context, f MissionFilter) (out []models.Mission, err error) {
	err = m.read(func(st *memState) error { out, err = st.ListMissions(ctx, f); return err })
	return
}

func (m *MemoryStore) GetMissionsByIDs(ctx context.Context, ids []string) (out map[string]models.Mission, err error) {
	err = m.read(func(st *memState) error { out, err = st.GetMissionsByIDs(ctx, ids); return err })
	return
}

func (m *MemoryStore) TryTransitionToClaimed(ctx context.Context, missionID string) (ok bool, err error) {
	err = m.write(func(st *memState) error { ok, err = st.TryTransitionToClaimed(ctx, missionID); return err })
	return
}

func (m *MemoryStore) UpdateMissionStatus(ctx context.Context, missionID, from, to string) (ok bool, err error) {
	err = m.write(func(st *memState) error { ok, err = st.UpdateMissionStatus(ctx, missionID, from, to); return err })
	return
}

func (m *MemoryStore) InsertClaim(ctx context.Context, c *models.Claim) error {
	return m.write(func(st *memState) error { return st.InsertClaim(ctx, c) })
}

func (m *MemoryStore) GetClaimForUpdate(ctx context.Context, id string) (out *models.Claim, err error) {
	err = m.read(func(st *memState) error { out, err = st.GetClaimForUpdate(ctx, id); return err })
	return
}

func (m *MemoryStore) ListClaimsByUser(ctx context.Context, userID, status string) (out []models.Claim, err error) {
	err = m.read(func(st *memState) error { out, err = st.ListClaimsByUser(ctx, userID, status); return err })
	return
}

func (m *MemoryStore) CountClaimsByUserAndStatus(ctx context.Context, userID, status string) (n int64, err error) {
	err = m.read(func(st *memState) error { n, err = st.CountClaimsByUserAndStatus(ctx, userID, status); return err })
	return
}

func (m *MemoryStore) ListClaimsByStatus(ctx context.Context, status string) (out []models.Claim, err error) {
	err = m.read(func(st *memState) error { out, err = st.ListClaimsByStatus(ctx, status); return err })
	return
}

func (m *MemoryStore) UpdateClaimStatus(ctx context.Context, claimID, status string) error {
	return m.write(func(st *memState) error { return st.UpdateClaimStatus(ctx, claimID, status) })
}

func (m *MemoryStore) GetUserMirror(ctx context.Context, id string) (out *models.UserMirror, err error) {
	err = m.read(func(st *memState) error { out, err = st.GetUserMirror(ctx, id); return err })
	return
}

func (m *MemoryStore) UpsertUserMirrors(ctx context.Context, mirrors []models.UserMirror) error {
	return m.write(func(st *memState) error { return st.UpsertUserMirrors(ctx, mirrors) })
}

func (m *MemoryStore) ListUserMirrors(ctx context.Context) (out []models.UserMirror, err error) {
	err = m.read(func(st *memState) error { out, err = st.ListUserMirrors(ctx); return err })
	return
}

func (m *MemoryStore) ReplaceLeaderboard(ctx context.Context, entries []models.LeaderboardEntry) error {
	return m.write(func(st *memState) error { return st.ReplaceLeaderboard(ctx, entries) })
}

func (m *MemoryStore) ListLeaderboard(ctx context.Context, limit int) (out []models.LeaderboardEntry, err error) {
	err = m.read(func(st *memState) error { out, err = st.ListLeaderboard(ctx, limit); return err })
	return
}

// memState holds the actual data. It also implements Store (without
// locking) so it can serve as the transactional view handed to fn.
type memState struct {
	missions map[string]models.Mission
	claims   map[string]models.Claim
	mirrors  map[string]models.UserMirror

	missionOrder []string
	claimOrder   []string
	leaderboard  []models.LeaderboardEntry

	takeInsertClaimErr func() error
}

func (st *memState) clone() *memState {
	c := &memState{
		missions:           make(map[string]models.Mission, len(st.missions)),
		claims:             make(map[string]models.Claim, len(st.claims)),
		mirrors:            make(map[string]models.UserMirror, len(st.mirrors)),
		missionOrder:       append([]string(nil), st.missionOrder...),
		claimOrder:         append([]string(nil), st.claimOrder...),
		leaderboard:        append([]models.LeaderboardEntry(nil), st.leaderboard...),
		takeInsertClaimErr: st.takeInsertClaimErr,
	}
	for k, v := range st.missions {
		c.missions[k] = v
	}
	for k, v := range st.claims {
		c.claims[k] = v
	}
	for k, v := range st.mirrors {
		c.mirrors[k] = v
	}
	return c
}

// InTransaction on a transactional view joins the enclosing transaction.
func (st *memState) InTransaction(ctx context.Context, fn func(tx Store) error) error {
	return fn(st)
}

func (st *memState) GetMission(ctx context.Context, id string) (*models.Mission, error) {
	m, ok := st.missions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &m, nil
}

func (st *memState) GetMissionForUpdate(ctx context.Context, id string) (*models.Mission, error) {
	return st.GetMission(ctx, id)
}

func (st *memState) InsertMission(ctx context.Context, m *models.Mission) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}
	st.missions[m.ID] = *m
	st.missionOrder = append(st.missionOrder, m.ID)
	return nil
}

func (st *memState) ListMissions(ctx context.Context, f MissionFilter) ([]models.Mission, error) {
	out := make([]models.Mission, 0, len(st.missionOrder))
	// newest first
	for i := len(st.missionOrder) - 1; i >= 0; i-- {
		m := st.missions[st.missionOrder[i]]
		if f.Status != "" && m.Status != f.Status {
			continue
		}
		if f.Level != "" && m.Level != f.Level {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

func (st *memState) GetMissionsByIDs(ctx context.Context, ids []string) (map[string]models.Mission, error) {
	out := make(map[string]models.Mission, len(ids))
	for _, id := range ids {
		if m, ok := st.missions[id]; ok {
			out[id] = m
		}
	}
	return out, nil
}

func (st *memState) TryTransitionToClaimed(ctx context.Context, missionID string) (bool, error) {
	return st.UpdateMissionStatus(ctx, missionID, models.MissionStatusAvailable, models.MissionStatusClaimed)
}

func (st *memState) UpdateMissionStatus(ctx context.Context, missionID, from, to string) (bool, error) {
	m, ok := st.missions[missionID]
	if !ok || m.Status != from {
		return false, nil
	}
	m.Status = to
	st.missions[missionID] = m
	return true, nil
}

func (st *memState) InsertClaim(ctx context.Context, c *models.Claim) error {
	if st.takeInsertClaimErr != nil {
		if err := st.takeInsertClaimErr(); err != nil {
			return err
		}
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	st.claims[c.ID] = *c
	st.claimOrder = append(st.claimOrder, c.ID)
	return nil
}

func (st *memState) GetClaimForUpdate(ctx context.Context, id string) (*models.Claim, error) {
	c, ok := st.claims[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &c, nil
}

func (st *memState) ListClaimsByUser(ctx context.Context, userID, status string) ([]models.Claim, error) {
	var out []models.Claim
	for i := len(st.claimOrder) - 1; i >= 0; i-- {
		c := st.claims[st.claimOrder[i]]
		if c.UserID == userID && c.Status == status {
			out = append(out, c)
		}
	}
	return out, nil
}

func (st *memState) CountClaimsByUserAndStatus(ctx context.Context, userID, status string) (int64, error) {
	var n int64
	for _, c := range st.claims {
		if c.UserID == userID && c.Status == status {
			n++
		}
	}
	return n, nil
}

func (st *memState) ListClaimsByStatus(ctx context.Context, status string) ([]models.Claim, error) {
	var out []models.Claim
	for _, id := range st.claimOrder {
		c := st.claims[id]
		if c.Status == status {
			out = append(out, c)
		}
	}
	return out, nil
}

func (st *memState) UpdateClaimStatus(ctx context.Context, claimID, status string) error {
	c, ok := st.claims[claimID]
	if !ok {
		return ErrNotFound
	}
	c.Status = status
	st.claims[claimID] = c
	return nil
}

func (st *memState) GetUserMirror(ctx context.Context, id string) (*models.UserMirror, error) {
	u, ok := st.mirrors[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (st *memState) UpsertUserMirrors(ctx context.Context, mirrors []models.UserMirror) error {
	for _, u := range mirrors {
		st.mirrors[u.ID] = u
	}
	return nil
}

func (st *memState) ListUserMirrors(ctx context.Context) ([]models.UserMirror, error) {
	out := make([]models.UserMirror, 0, len(st.mirrors))
	for _, u := range st.mirrors {
		out = append(out, u)
	}
	return out, nil
}

func (st *memState) ReplaceLeaderboard(ctx context.Context, entries []models.LeaderboardEntry) error {
	st.leaderboard = append([]models.LeaderboardEntry(nil), entries...)
	return nil
}

func (st *memState) ListLeaderboard(ctx context.Context, limit int) ([]models.LeaderboardEntry, error) {
	out := append([]models.LeaderboardEntry(nil), st.leaderboard...)
	sort.Slice(out, func(i, j int) bool { return out[i].ExperiencePoints > out[j].ExperiencePoints })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
