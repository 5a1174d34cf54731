// Package api serves the session intent mirror and read-only views of the
// local animation over HTTP. Control requests need a bearer token when a
// control key is configured.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/talgya/torus/internal/display"
	"github.com/talgya/torus/internal/engine"
	"github.com/talgya/torus/internal/persistence"
	"github.com/talgya/torus/internal/session"
	"github.com/talgya/torus/internal/torus"
)

const maxBodyBytes = 64 << 10

// Journal is the read side of the intent journal.
type Journal interface {
	RecentIntents(ctx context.Context, limit int) ([]persistence.IntentRecord, error)
}

// Server serves the mirror and the animation state over HTTP.
type Server struct {
	Mirror      *session.Mirror
	Eng         *engine.Engine // optional local animation
	Journal     Journal        // optional
	Port        int
	ControlKey  string   // Bearer token for POST intents. Empty = open.
	CORSOrigins []string // extra allowed origins besides localhost dev servers

	// FrameLimiter bounds on-demand rasterization per client. Nil uses the default.
	FrameLimiter *RateLimiter

	httpServer *http.Server
}

// Handler builds the routing table.
func (s *Server) Handler() http.Handler {
	limiter := s.FrameLimiter
	if limiter == nil {
		limiter = NewRateLimiter(120, time.Minute)
	}

	mux := http.NewServeMux()

	// Intent mirror: POST changes intent, GET reads it back.
	mux.HandleFunc("/api/run-torus", s.handleRunTorus)

	// Read-only views.
	mux.HandleFunc("/api/v1/status", getOnly(s.handleStatus))
	mux.HandleFunc("/api/v1/frame", getOnly(RateLimitMiddleware(limiter, s.handleFrame)))
	mux.HandleFunc("/api/v1/journal", getOnly(s.handleJournal))

	return corsMiddleware(s.CORSOrigins, mux)
}

// Start begins serving the HTTP API in a goroutine.
func (s *Server) Start() {
	addr := fmt.Sprintf(":%d", s.Port)
	slog.Info("HTTP API starting", "addr", addr, "control_auth", s.ControlKey != "", "journal", s.Journal != nil)

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server error", "error", err)
		}
	}()
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// corsMiddleware adds CORS headers for allowed frontend origins.
// Localhost dev servers are always allowed.
func corsMiddleware(extra []string, next http.Handler) http.Handler {
	allowedOrigins := map[string]bool{
		"http://localhost:3000": true,
		"http://localhost:5173": true,
	}
	for _, origin := range extra {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			allowedOrigins[origin] = true
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

// getOnly rejects every method but GET before next runs.
func getOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		next(w, r)
	}
}

// authorized reports whether the request carries the control key, if one is set.
func (s *Server) authorized(r *http.Request) bool {
	if s.ControlKey == "" {
		return true
	}
	auth := r.Header.Get("Authorization")
	return strings.HasPrefix(auth, "Bearer ") && strings.TrimPrefix(auth, "Bearer ") == s.ControlKey
}

// stateView is the GET /api/run-torus body.
type stateView struct {
	GameState session.State `json:"game_state"`
	Message   string        `json:"message"`
}

func (s *Server) handleRunTorus(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, stateView{GameState: s.Mirror.Snapshot(), Message: session.MsgStatus})

	case http.MethodPost:
		if !s.authorized(r) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		var in session.Intent
		body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
		if err := json.NewDecoder(body).Decode(&in); err != nil {
			slog.Warn("malformed intent", "error", err)
			writeJSON(w, session.Response{Success: false, Message: "Server error: " + err.Error()})
			return
		}
		writeJSON(w, s.Mirror.Handle(r.Context(), in))

	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if s.Eng == nil {
		http.Error(w, "no local animation", http.StatusServiceUnavailable)
		return
	}
	st := s.Eng.Status()
	writeJSON(w, map[string]any{
		"animation": st,
		"label":     display.FrameLabel(st.Frame),
	})
}

type cellView struct {
	Col   int    `json:"col"`
	Row   int    `json:"row"`
	Glyph string `json:"glyph"`
	Color string `json:"color"`
}

type frameView struct {
	Width  int        `json:"width"`
	Height int        `json:"height"`
	AngleA float64    `json:"angle_a"`
	AngleB float64    `json:"angle_b"`
	Filled int        `json:"filled"`
	Rows   []string   `json:"rows"`
	Cells  []cellView `json:"cells"`
}

// handleFrame rasterizes a single frame for the given angles.
// Query: a, b (default a/2), intensity (default 0.5), hue, palette, w, h, format=text|json.
func (s *Server) handleFrame(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	floatParam := func(name string, def float64) (float64, error) {
		v := q.Get(name)
		if v == "" {
			return def, nil
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, fmt.Errorf("%s: %w", name, err)
		}
		return f, nil
	}
	intParam := func(name string, def, lo, hi int) (int, error) {
		v := q.Get(name)
		if v == "" {
			return def, nil
		}
		n, err := strconv.Atoi(v)
		if err != nil || n < lo || n > hi {
			return 0, fmt.Errorf("%s must be an integer in [%d, %d]", name, lo, hi)
		}
		return n, nil
	}

	a, err := floatParam("a", 0)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	b, err := floatParam("b", a*0.5)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	intensity, err := floatParam("intensity", 0.5)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	hue, err := floatParam("hue", 0)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	rast := torus.NewRasterizer()
	if name := q.Get("palette"); name != "" {
		p, err := torus.ParsePalette(name)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		rast.Palette = p
	}
	if rast.Geometry.Width, err = intParam("w", rast.Geometry.Width, 1, 240); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if rast.Geometry.Height, err = intParam("h", rast.Geometry.Height, 1, 120); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	f := rast.Render(torus.Params{AngleA: a, AngleB: b, Intensity: intensity, Hue: hue})

	if q.Get("format") == "text" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		fmt.Fprintln(w, f.String())
		return
	}

	view := frameView{
		Width:  f.Width,
		Height: f.Height,
		AngleA: f.AngleA,
		AngleB: f.AngleB,
		Filled: f.Filled(),
		Rows:   f.Lines(),
		Cells:  make([]cellView, 0, f.Filled()),
	}
	for row := 0; row < f.Height; row++ {
		for col := 0; col < f.Width; col++ {
			c := f.At(col, row)
			if !c.Filled() {
				continue
			}
			view.Cells = append(view.Cells, cellView{Col: col, Row: row, Glyph: string(c.Glyph), Color: c.Color.Hex()})
		}
	}
	writeJSON(w, view)
}

type intentView struct {
	persistence.IntentRecord
	CreatedAt string `json:"created_at"`
	Age       string `json:"age"`
}

func (s *Server) handleJournal(w http.ResponseWriter, r *http.Request) {
	if s.Journal == nil {
		http.Error(w, "journal disabled", http.StatusServiceUnavailable)
		return
	}
	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}

	records, err := s.Journal.RecentIntents(r.Context(), limit)
	if err != nil {
		slog.Error("journal read failed", "error", err)
		http.Error(w, "journal read failed", http.StatusInternalServerError)
		return
	}

	views := make([]intentView, 0, len(records))
	for _, rec := range records {
		at := rec.CreatedAt()
		views = append(views, intentView{
			IntentRecord: rec,
			CreatedAt:    at.UTC().Format(time.RFC3339),
			Age:          humanize.Time(at),
		})
	}
	writeJSON(w, views)
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(data)
}
