package plansync

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/voyago/voyago/internal/core/domain"
)

// Client implements ports.PlanSyncer against the remote daily-plan
// store's HTTP upsert endpoint. Any 2xx status is success. There is no
// retry here; callers decide what a failed sync means.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a sync client for the given base URL.
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

type upsertRequest struct {
	UserID      string `json:"user_id"`
	PlaceID     string `json:"place_id"`
	DailyPlanID string `json:"daily_plan_id"`
}

// UpsertAssignment posts one assignment to the remote store.
func (c *Client) UpsertAssignment(ctx context.Context, a *domain.PlanAssignment) error {
	body, err := json.Marshal(upsertRequest{
		UserID:      a.UserID,
		PlaceID:     a.PlaceID,
		DailyPlanID: a.DateKey,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.baseURL+"/v1/plans/entries", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("plan sync request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return fmt.Errorf("plan sync: status %d: %s", resp.StatusCode, snippet)
	}
	return nil
}
