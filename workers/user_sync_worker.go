// workers/user_sync_worker.go
package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"mission-board-system/models"
	"mission-board-system/store"
	"mission-board-system/utils"
)

// ProfileFromAuthService matches the JSON the auth service returns for
// public profiles.
type ProfileFromAuthService struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	AvatarURL string    `json:"avatar_url"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ProfileChangesResponse struct {
	Users []ProfileFromAuthService `json:"users"`
}

// UserSyncWorker mirrors auth-service profiles into user_mirrors so
// mission lists can join creator info and stats lookups can resolve
// user ids locally.
type UserSyncWorker struct {
	store        store.Store
	interval     time.Duration
	baseURL      string
	endpointPath string
	serviceToken string
	httpClient   *http.Client

	lastSync time.Time
}

func NewUserSyncWorker(st store.Store, authServiceBaseURL, endpointPath, serviceToken string, interval time.Duration) *UserSyncWorker {
	if interval <= 0 {
		interval = 1 * time.Minute
	}
	return &UserSyncWorker{
		store:        st,
		interval:     interval,
		baseURL:      authServiceBaseURL,
		endpointPath: endpointPath,
		serviceToken: serviceToken,
		httpClient:   utils.HTTPClient,
	}
}

func (w *UserSyncWorker) Start(ctx context.Context) {
	log.Println("🔁 Starting User Sync Worker (auth-service → user_mirrors)…")
	go w.run(ctx)
}

func (w *UserSyncWorker) run(ctx context.Context) {
	// Initial backfill from the beginning of time
	if err := w.syncBatch(ctx, time.Time{}); err != nil {
		log.Printf("⚠️ Initial profile sync failed: %v", err)
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := w.syncBatch(ctx, w.lastSync); err != nil {
				log.Printf("❌ Profile sync batch failed: %v", err)
			}
		case <-ctx.Done():
			log.Println("⏹️ User Sync Worker stopped")
			return
		}
	}
}

// syncBatch fetches profile changes since the given time and upserts
// them into user_mirrors.
func (w *UserSyncWorker) syncBatch(ctx context.Context, since time.Time) error {
	sinceStr := since.UTC().Format(time.RFC3339)

	base, err := url.Parse(w.baseURL)
	if err != nil {
		return fmt.Errorf("invalid auth service URL '%s': %w", w.baseURL, err)
	}

	endpointURL := base.JoinPath(w.endpointPath)
	q := endpointURL.Query()
	q.Set("since", sinceStr)
	endpointURL.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, "GET", endpointURL.String(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-Service-Token", w.serviceToken)

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request to auth service failed: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("auth service non-200 response: %d — %s", resp.StatusCode, string(body))
	}

	var response ProfileChangesResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return fmt.Errorf("failed to decode auth service response: %w", err)
	}

	if len(response.Users) == 0 {
		return nil
	}

	now := time.Now()
	mirrors := make([]models.UserMirror, 0, len(response.Users))
	for _, u := range response.Users {
		mirrors = append(mirrors, models.UserMirror{
			ID:        u.ID,
			Name:      u.Name,
			AvatarURL: u.AvatarURL,
			SyncedAt:  now,
		})
		if u.UpdatedAt.After(w.lastSync) {
			w.lastSync = u.UpdatedAt
		}
	}

	if err := w.store.UpsertUserMirrors(ctx, mirrors); err != nil {
		return fmt.Errorf("failed to upsert user mirrors: %w", err)
	}

	log.Printf("[SYNC] ✅ Mirrored %d profile(s) since %s", len(mirrors), sinceStr)
	return nil
}
