// Package caretaker implements an unattended steward for a running commons.
// It observes state through the public API, triages it with fixed rules and
// acts through the same player endpoints a person would use.
package caretaker

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/talgya/commons/internal/community"
	"github.com/talgya/commons/internal/events"
)

// Snapshot holds everything collected during one observation.
type Snapshot struct {
	Status   StatusView
	Events   EventsView
	SelfCare []SelfCareView
}

// StatusView mirrors GET /api/v1/status.
type StatusView struct {
	Status         string            `json:"status"`
	Scale          community.Scale   `json:"scale"`
	Supplies       community.Amounts `json:"supplies"`
	Needs          community.Amounts `json:"needs"`
	Priority       community.Amounts `json:"priority"`
	CheckInReady   bool              `json:"check_in_ready"`
	EventPending   bool              `json:"event_pending"`
	NeedDirections map[string]string `json:"need_directions"`
}

// EventsView mirrors the parts of GET /api/v1/events the caretaker reads.
type EventsView struct {
	Current *CurrentEvent `json:"current"`
}

type CurrentEvent struct {
	ID      events.ID     `json:"id"`
	Title   string        `json:"title"`
	Choices []EventChoice `json:"choices"`
}

type EventChoice struct {
	ID      events.ChoiceID `json:"id"`
	Label   string          `json:"label"`
	Effect  events.Effect   `json:"effect"`
	Summary string          `json:"summary"`
}

// SelfCareView mirrors items from GET /api/v1/selfcare.
type SelfCareView struct {
	ID        community.SelfCareID `json:"id"`
	Category  community.Category   `json:"category"`
	Bonus     float64              `json:"bonus"`
	Available bool                 `json:"available"`
}

// Observer fetches state from the API.
type Observer struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewObserver creates an Observer targeting the given API base URL.
func NewObserver(baseURL string) *Observer {
	return &Observer{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Observe fetches status, events and self-care.
func (o *Observer) Observe(ctx context.Context) (*Snapshot, error) {
	snap := &Snapshot{}

	if err := o.fetchJSON(ctx, "/api/v1/status", &snap.Status); err != nil {
		return nil, fmt.Errorf("fetch status: %w", err)
	}
	if err := o.fetchJSON(ctx, "/api/v1/events", &snap.Events); err != nil {
		return nil, fmt.Errorf("fetch events: %w", err)
	}
	if err := o.fetchJSON(ctx, "/api/v1/selfcare", &snap.SelfCare); err != nil {
		return nil, fmt.Errorf("fetch selfcare: %w", err)
	}
	return snap, nil
}

// Ready reports whether the API answers its status endpoint.
func (o *Observer) Ready(ctx context.Context) bool {
	var v StatusView
	return o.fetchJSON(ctx, "/api/v1/status", &v) == nil
}

// fetchJSON GETs a path and decodes the JSON response into target.
func (o *Observer) fetchJSON(ctx context.Context, path string, target any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.BaseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	resp, err := o.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("GET %s returned %d: %s", path, resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
