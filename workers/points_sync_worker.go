// workers/points_sync_worker.go
package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"time"

	"picks-backend/models"
	"picks-backend/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PointsSyncClient pulls points-earning events (referrals, shares, streaks)
// from the rewards-earning service and credits user balances. The dedupe key
// is the upstream event id, so replaying a window is harmless.
type PointsSyncClient struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
	DB         *gorm.DB
}

func NewPointsSyncClient(db *gorm.DB) *PointsSyncClient {
	baseURL := os.Getenv("REWARDS_SERVICE_URL")
	if baseURL == "" {
		log.Fatal("REWARDS_SERVICE_URL environment variable is required")
	}
	token := os.Getenv("PICKS_SERVICE_TOKEN")
	if token == "" {
		log.Fatal("PICKS_SERVICE_TOKEN environment variable is required for points sync")
	}

	return &PointsSyncClient{
		BaseURL:    baseURL,
		Token:      token,
		DB:         db,
		HTTPClient: utils.HTTPClient,
	}
}

// earnEvent matches the JSON shape of the rewards-earning service feed.
type earnEvent struct {
	EventID        string    `json:"event_id"`
	ExternalUserID string    `json:"user_id"`
	Points         int64     `json:"points"`
	Reason         string    `json:"reason"`
	OccurredAt     time.Time `json:"occurred_at"`
}

func (c *PointsSyncClient) GetNewEarnEvents(ctx context.Context, since time.Time) ([]earnEvent, error) {
	since = since.UTC()

	u, err := url.Parse(fmt.Sprintf("%s/api/v1/internal/points-events", c.BaseURL))
	if err != nil {
		return nil, fmt.Errorf("failed to parse base URL: %w", err)
	}

	q := u.Query()
	q.Set("since", since.Format(time.RFC3339))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, "GET", u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("X-Service-Token", c.Token)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call rewards service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("rewards service returned status %d: %s", resp.StatusCode, string(body))
	}

	var response struct {
		Events []earnEvent `json:"events"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode rewards service response: %w", err)
	}

	return response.Events, nil
}

// creditEvent inserts the mirror row and credits the balance in one
// transaction. A duplicate event id inserts nothing and credits nothing.
func (c *PointsSyncClient) creditEvent(ev earnEvent) error {
	return c.DB.Transaction(func(tx *gorm.DB) error {
		insert := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "event_id"}},
			DoNothing: true,
		}).Create(&models.PointsEvent{
			ID:             uuid.NewString(),
			EventID:        ev.EventID,
			ExternalUserID: ev.ExternalUserID,
			Points:         ev.Points,
			Reason:         ev.Reason,
			OccurredAt:     ev.OccurredAt,
		})
		if insert.Error != nil {
			return insert.Error
		}
		if insert.RowsAffected == 0 {
			// Already mirrored — balance was credited when it first arrived.
			return nil
		}

		var ent models.Entitlement
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("external_user_id = ?", ev.ExternalUserID).
			First(&ent).Error
		if err == gorm.ErrRecordNotFound {
			ent = models.Entitlement{
				ID:             uuid.NewString(),
				ExternalUserID: ev.ExternalUserID,
				BaseTier:       models.TierFree,
				CurrentTier:    models.TierFree,
			}
			if err := tx.Create(&ent).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}

		ent.RewardPointsBalance += ev.Points
		ent.RewardPointsLifetime += ev.Points
		return tx.Save(&ent).Error
	})
}

// PollPointsEvents polls the rewards-earning service and credits balances.
func PollPointsEvents(ctx context.Context, client *PointsSyncClient, pollInterval time.Duration) {
	log.Println("Starting points event polling...")
	lastSyncTime := time.Now().UTC().Add(-24 * time.Hour)

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Points event polling stopped.")
			return
		case <-ticker.C:
			pollTime := time.Now().UTC()

			events, err := client.GetNewEarnEvents(ctx, lastSyncTime)
			if err != nil {
				log.Printf("❌ Error polling points events: %v", err)
				continue
			}

			if len(events) == 0 {
				lastSyncTime = pollTime
				continue
			}

			credited := 0
			failed := 0
			for _, ev := range events {
				if err := client.creditEvent(ev); err != nil {
					log.Printf("❌ Failed to credit event %s for user %s: %v", ev.EventID, ev.ExternalUserID, err)
					failed++
					continue
				}
				credited++
			}

			if failed > 0 {
				// Keep the window — failed events get retried next tick, the
				// dedupe insert makes replays of the credited ones no-ops.
				log.Printf("⚠️ Credited %d event(s), %d failed — retrying window next tick", credited, failed)
				continue
			}

			lastSyncTime = pollTime
			log.Printf("✅ Credited %d points event(s).", credited)
		}
	}
}
