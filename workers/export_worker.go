// workers/export_worker.go
package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"mission-board-system/models"
	"mission-board-system/store"
	"mission-board-system/utils"

	"github.com/go-co-op/gocron/v2"
)

// ExportWorker periodically serializes completed claims and uploads
// the snapshot to object storage for ops reporting.
type ExportWorker struct {
	store store.Store
}

func NewExportWorker(st store.Store) *ExportWorker {
	return &ExportWorker{store: st}
}

// Start schedules the export job. Claims traffic is untouched — this
// is read-only over the claim history.
func (w *ExportWorker) Start(interval time.Duration) {
	sched, _ := gocron.NewScheduler()
	sched.Start()

	_, _ = sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			if err := w.ExportCompletedClaims(context.Background()); err != nil {
				log.Printf("[Export] failed: %v", err)
			}
		}),
	)
}

func (w *ExportWorker) ExportCompletedClaims(ctx context.Context) error {
	claims, err := w.store.ListClaimsByStatus(ctx, models.ClaimStatusCompleted)
	if err != nil {
		return fmt.Errorf("failed to list completed claims: %w", err)
	}

	payload, err := json.Marshal(claims)
	if err != nil {
		return fmt.Errorf("failed to marshal claims: %w", err)
	}

	key := fmt.Sprintf("exports/claims-%s.json", time.Now().UTC().Format("2006-01-02"))
	if err := utils.UploadBytesToS3(ctx, key, payload, "application/json"); err != nil {
		return err
	}

	log.Printf("✅ [Export] Uploaded %d completed claim(s) to %s", len(claims), key)
	return nil
}
