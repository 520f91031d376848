// Package api serves the community over HTTP.
// GET endpoints read the live state. POST endpoints apply player actions and
// are rate limited per client. Admin endpoints require a bearer token.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/talgya/commons/internal/community"
	"github.com/talgya/commons/internal/engine"
	"github.com/talgya/commons/internal/events"
	"github.com/talgya/commons/internal/growth"
)

// Server serves one Simulation over HTTP.
type Server struct {
	Sim      *engine.Simulation
	Port     int
	AdminKey string       // Bearer token for admin endpoints. Empty = admin disabled.
	Limiter  *RateLimiter // Applied to player actions. Nil = unlimited.
	Hub      *Hub         // Feeds /api/v1/stream. Nil = streaming disabled.

	streamConns int32
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Reads.
	mux.HandleFunc("/api/v1/state", getOnly(s.handleState))
	mux.HandleFunc("/api/v1/status", getOnly(s.handleStatus))
	mux.HandleFunc("/api/v1/events", getOnly(s.handleEvents))
	mux.HandleFunc("/api/v1/growth", getOnly(s.handleGrowth))
	mux.HandleFunc("/api/v1/legacy", getOnly(s.handleLegacy))
	mux.HandleFunc("/api/v1/trades", getOnly(s.handleTrades))
	mux.HandleFunc("/api/v1/stream", getOnly(s.handleStream))

	// Player actions.
	act := func(h http.HandlerFunc) http.HandlerFunc {
		return postOnly(RateLimitMiddleware(s.Limiter, h))
	}
	mux.HandleFunc("/api/v1/selfcare", s.handleSelfCare(act(s.handleCompleteSelfCare)))
	mux.HandleFunc("/api/v1/priority", act(s.handlePriority))
	mux.HandleFunc("/api/v1/trade", act(s.handleTrade))
	mux.HandleFunc("/api/v1/upgrade", act(s.handleUpgrade))
	mux.HandleFunc("/api/v1/help", act(s.handleHelp))
	mux.HandleFunc("/api/v1/checkin", act(s.handleCheckIn))
	mux.HandleFunc("/api/v1/events/resolve", act(s.handleResolveEvent))
	mux.HandleFunc("/api/v1/growth/choose", act(s.handleChooseGrowth))
	mux.HandleFunc("/api/v1/prestige/preview", act(s.handlePrestigePreview))
	mux.HandleFunc("/api/v1/prestige/cancel", act(s.handlePrestigeCancel))
	mux.HandleFunc("/api/v1/prestige/commit", act(s.handlePrestigeCommit))
	mux.HandleFunc("/api/v1/legacy/rename", act(s.handleLegacyRename))
	mux.HandleFunc("/api/v1/legacy/note", act(s.handleLegacyNote))
	mux.HandleFunc("/api/v1/legacy/pin", act(s.handleLegacyPin))
	mux.HandleFunc("/api/v1/reset", act(s.handleReset))

	// Admin endpoints (POST, require bearer token).
	mux.HandleFunc("/api/v1/admin/event", postOnly(s.adminOnly(s.handleTriggerEvent)))
	mux.HandleFunc("/api/v1/admin/supplies", postOnly(s.adminOnly(s.handleAddSupplies)))

	return corsMiddleware(mux)
}

// Run serves the API until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", s.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	slog.Info("HTTP API starting", "addr", addr, "admin_auth", s.AdminKey != "", "rate_limited", s.Limiter != nil)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// corsMiddleware adds CORS headers for allowed frontend origins.
// CORS_ORIGINS adds a comma-separated list to the localhost dev servers.
func corsMiddleware(next http.Handler) http.Handler {
	allowedOrigins := map[string]bool{
		"http://localhost:5173": true,
		"http://localhost:3000": true,
	}
	if env := os.Getenv("CORS_ORIGINS"); env != "" {
		for _, origin := range strings.Split(env, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				allowedOrigins[origin] = true
			}
		}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func getOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		next(w, r)
	}
}

func postOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		next(w, r)
	}
}

// checkBearerToken returns true if the request has a valid admin bearer token.
func (s *Server) checkBearerToken(r *http.Request) bool {
	auth := r.Header.Get("Authorization")
	return strings.HasPrefix(auth, "Bearer ") && strings.TrimPrefix(auth, "Bearer ") == s.AdminKey
}

func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.AdminKey == "" {
			http.Error(w, "admin endpoints disabled (no COMMONS_ADMIN_KEY set)", http.StatusForbidden)
			return
		}
		if !s.checkBearerToken(r) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

// decodeBody reads a JSON request body into v. It writes a 400 and returns
// false on malformed input.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(v); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return false
	}
	return true
}

// respond writes the updated state, or 409 when the action did not apply.
func (s *Server) respond(w http.ResponseWriter, applied bool) {
	if !applied {
		http.Error(w, "action not applicable", http.StatusConflict)
		return
	}
	writeJSON(w, s.Sim.Snapshot())
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Sim.Snapshot())
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	st := s.Sim.Snapshot()
	now := s.Sim.Now()

	status := map[string]any{
		"status":          st.Status,
		"scale":           st.Scale,
		"scale_label":     st.Scale.Label(),
		"members":         st.Scale.Tier().Members,
		"supplies":        st.Supplies,
		"needs":           st.Needs,
		"priority":        st.Priority,
		"volunteer_time":  st.VolunteerTime,
		"investment":      st.Investment,
		"prestige_stars":  st.PrestigeStars,
		"need_directions": engine.NeedDirections(st.Rolling.NeedTrend),
		"can_prestige":    engine.CanPrestige(st),
		"check_in_ready":  engine.CheckInEligible(st, now),
		"event_pending":   st.CurrentEventID != "",
	}
	if next, ok := st.Scale.Next(); ok {
		status["next_scale"] = next
		status["next_requirement"] = community.RequiredInvestment(next, st.PrestigeStars)
	}
	if !st.LastUnsustainableAt.IsZero() {
		at := st.LastUnsustainableAt.Add(engine.GracePeriod(st.DowngradeCount))
		status["downgrade_at"] = at
		status["downgrade_in"] = humanize.RelTime(at, now, "ago", "from now")
	}
	writeJSON(w, status)
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	st := s.Sim.Snapshot()

	resp := map[string]any{
		"log":     st.EventLog,
		"catalog": events.Catalog(),
	}
	if e, ok := engine.CurrentEvent(st); ok {
		choices := make([]map[string]any, 0, len(e.Choices))
		for _, c := range e.Choices {
			choices = append(choices, map[string]any{
				"id":      c.ID,
				"label":   c.Label,
				"effect":  c.Effect,
				"summary": events.Describe(c.Effect),
			})
		}
		resp["current"] = map[string]any{
			"id":      e.ID,
			"title":   e.Title,
			"body":    e.Body,
			"choices": choices,
		}
	}
	writeJSON(w, resp)
}

func (s *Server) handleGrowth(w http.ResponseWriter, r *http.Request) {
	st := s.Sim.Snapshot()

	resp := map[string]any{
		"decisions":        growth.Decisions(),
		"selections":       growth.Records(st.Selections),
		"profile":          st.Profile(),
		"values":           st.Values.Active(),
		"identity_summary": growth.IdentitySummary(st.Values),
	}
	if d, ok := growth.Find(st.PendingDecision); ok {
		resp["pending"] = d
	}
	writeJSON(w, resp)
}

func (s *Server) handleLegacy(w http.ResponseWriter, r *http.Request) {
	st := s.Sim.Snapshot()
	writeJSON(w, map[string]any{
		"prestige_stars":   st.PrestigeStars,
		"runs":             st.LegacyRuns,
		"pinned":           st.PinnedLegacyRunID,
		"pending_prestige": st.PendingPrestige,
		"can_prestige":     engine.CanPrestige(st),
	})
}

func (s *Server) handleTrades(w http.ResponseWriter, r *http.Request) {
	st := s.Sim.Snapshot()
	out := make([]map[string]any, 0, 4)
	for _, t := range community.Trades() {
		out = append(out, map[string]any{
			"key":        t.Key,
			"label":      t.Label,
			"from":       t.From,
			"to":         t.To,
			"cost":       t.Cost,
			"gain":       t.Gain,
			"affordable": st.Supplies.Get(t.From) >= t.Cost,
		})
	}
	writeJSON(w, out)
}

// handleSelfCare lists the catalog with cooldowns on GET and hands POST to complete.
func (s *Server) handleSelfCare(complete http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			complete(w, r)
			return
		}
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		st := s.Sim.Snapshot()
		now := s.Sim.Now()
		actions := community.SelfCareActions()
		out := make([]map[string]any, 0, len(actions))
		for _, a := range actions {
			remaining := engine.SelfCareRemaining(st, a.ID, now)
			out = append(out, map[string]any{
				"id":                a.ID,
				"label":             a.Label,
				"category":          a.Category,
				"bonus":             a.Bonus,
				"available":         remaining == 0,
				"remaining_seconds": int(remaining.Seconds()),
			})
		}
		writeJSON(w, out)
	}
}

func (s *Server) handleCompleteSelfCare(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID community.SelfCareID `json:"id"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	s.respond(w, s.Sim.SelfCare(req.ID))
}

func (s *Server) handlePriority(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Category community.Category `json:"category"`
		Value    float64            `json:"value"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	s.respond(w, s.Sim.SetPriority(req.Category, req.Value))
}

func (s *Server) handleTrade(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Option string `json:"option"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	opt, ok := community.ParseTradeOption(req.Option)
	if !ok {
		http.Error(w, "unknown trade option", http.StatusBadRequest)
		return
	}
	s.respond(w, s.Sim.Trade(opt))
}

func (s *Server) handleUpgrade(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Scale community.Scale `json:"scale"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	s.respond(w, s.Sim.Upgrade(req.Scale))
}

func (s *Server) handleHelp(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Category community.Category `json:"category"`
		All      bool               `json:"all"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	s.respond(w, s.Sim.Help(req.Category, req.All))
}

func (s *Server) handleCheckIn(w http.ResponseWriter, r *http.Request) {
	s.respond(w, s.Sim.CheckIn())
}

func (s *Server) handleResolveEvent(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Choice events.ChoiceID `json:"choice"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	s.respond(w, s.Sim.ResolveEvent(r.Context(), req.Choice))
}

func (s *Server) handleChooseGrowth(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Decision growth.DecisionID `json:"decision"`
		Choice   growth.ChoiceKey  `json:"choice"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	s.respond(w, s.Sim.ChooseGrowth(r.Context(), req.Decision, req.Choice))
}

func (s *Server) handlePrestigePreview(w http.ResponseWriter, r *http.Request) {
	summary, ok := s.Sim.PreviewPrestige()
	if !ok {
		http.Error(w, "prestige not available", http.StatusConflict)
		return
	}
	writeJSON(w, summary)
}

func (s *Server) handlePrestigeCancel(w http.ResponseWriter, r *http.Request) {
	s.Sim.CancelPrestige()
	writeJSON(w, s.Sim.Snapshot())
}

func (s *Server) handlePrestigeCommit(w http.ResponseWriter, r *http.Request) {
	s.respond(w, s.Sim.CommitPrestige(r.Context()))
}

type legacyRequest struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Note  string `json:"note"`
}

func (s *Server) handleLegacyRename(w http.ResponseWriter, r *http.Request) {
	var req legacyRequest
	if !decodeBody(w, r, &req) {
		return
	}
	s.respond(w, s.Sim.RenameLegacyRun(r.Context(), req.ID, req.Label))
}

func (s *Server) handleLegacyNote(w http.ResponseWriter, r *http.Request) {
	var req legacyRequest
	if !decodeBody(w, r, &req) {
		return
	}
	s.respond(w, s.Sim.SetLegacyNote(r.Context(), req.ID, req.Note))
}

func (s *Server) handleLegacyPin(w http.ResponseWriter, r *http.Request) {
	var req legacyRequest
	if !decodeBody(w, r, &req) {
		return
	}
	s.respond(w, s.Sim.PinLegacyRun(r.Context(), req.ID))
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if err := s.Sim.Reset(r.Context()); err != nil {
		// The in-memory reset already happened; only the stored copy lingers.
		slog.Warn("reset: clearing save failed", "error", err)
	}
	writeJSON(w, s.Sim.Snapshot())
}

func (s *Server) handleTriggerEvent(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID events.ID `json:"id"`
	}
	if r.ContentLength != 0 && !decodeBody(w, r, &req) {
		return
	}
	applied := s.Sim.TriggerEvent(r.Context(), req.ID)
	if applied {
		slog.Info("admin: event triggered", "event", string(s.Sim.Snapshot().CurrentEventID))
	}
	s.respond(w, applied)
}

func (s *Server) handleAddSupplies(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Amount float64 `json:"amount"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	applied := s.Sim.AddSupplies(req.Amount)
	if applied {
		slog.Info("admin: supplies added", "amount", req.Amount)
	}
	s.respond(w, applied)
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		slog.Debug("write response", "error", err)
	}
}
