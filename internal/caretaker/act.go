package caretaker

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// ErrNotApplied means the server rejected a step as not applicable, usually
// because the state moved on since the observation.
var ErrNotApplied = errors.New("step not applied")

// Actor executes plan steps against the player endpoints.
type Actor struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewActor creates an Actor targeting the given API base URL.
func NewActor(baseURL string) *Actor {
	return &Actor{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Do posts one step.
func (a *Actor) Do(ctx context.Context, step Step) error {
	var body io.Reader = http.NoBody
	if step.Body != nil {
		b, err := json.Marshal(step.Body)
		if err != nil {
			return fmt.Errorf("marshal step: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.BaseURL+step.Path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("POST %s: %w", step.Path, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return nil
	case http.StatusConflict:
		return ErrNotApplied
	default:
		msg, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("POST %s returned %d: %s", step.Path, resp.StatusCode, bytes.TrimSpace(msg))
	}
}

// Execute runs every step in order. Steps the server declines are skipped;
// the first transport or server error stops the run.
func (a *Actor) Execute(ctx context.Context, plan Plan) (applied int, err error) {
	for _, step := range plan.Steps {
		err := a.Do(ctx, step)
		switch {
		case errors.Is(err, ErrNotApplied):
			slog.Debug("step skipped", "path", step.Path, "reason", step.Reason)
		case err != nil:
			return applied, err
		default:
			applied++
			slog.Info("step applied", "path", step.Path, "reason", step.Reason)
		}
	}
	return applied, nil
}

// Cycle observes, triages and acts once.
func Cycle(ctx context.Context, o *Observer, a *Actor) (Plan, int, error) {
	snap, err := o.Observe(ctx)
	if err != nil {
		return Plan{}, 0, fmt.Errorf("observe: %w", err)
	}
	plan := Triage(snap)
	applied, err := a.Execute(ctx, plan)
	return plan, applied, err
}
