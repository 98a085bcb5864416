package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/vladimirvolkov/penalty/internal/config"
	"github.com/vladimirvolkov/penalty/internal/game"
	"github.com/vladimirvolkov/penalty/internal/middleware"
	"github.com/vladimirvolkov/penalty/internal/ws"
)

// securityHeaders wraps a handler with common security response headers.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "no-referrer")
		w.Header().Set("Content-Security-Policy",
			"default-src 'self'; script-src 'self'; style-src 'self' 'unsafe-inline'; connect-src 'self' ws: wss:; img-src 'self' data:")
		next.ServeHTTP(w, r)
	})
}

// GameManager starts one practice session per accepted connection.
type GameManager struct {
	hub     *ws.Hub
	presets *config.Presets
	ctx     context.Context

	// seed > 0 makes every session replay the same keeper decisions, offset
	// by the session number.
	seed     int64
	sessions atomic.Int64
}

func (gm *GameManager) CreateSession(conn *ws.Conn) error {
	cfg, err := gm.presets.Lookup(conn.Preset)
	if err != nil {
		return err
	}
	n := gm.sessions.Add(1)
	var seed int64
	if gm.seed != 0 {
		seed = gm.seed + n - 1
	}

	session := game.NewSession(conn, cfg, game.NewRandomSource(seed))
	session.Start(gm.ctx)
	go func() {
		<-session.Done()
		conn.Close()
		gm.hub.SessionEnded()
	}()
	return nil
}

type healthResponse struct {
	ws.HubStats
	TrackedIPs int `json:"trackedIPs"`
}

type presetsResponse struct {
	Default string   `json:"default"`
	Presets []string `json:"presets"`
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write response: %v", err)
	}
}

func newMux(hub *ws.Hub, limiter *middleware.IPRateLimiter, presets *config.Presets, staticDir string) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", hub.HandleWS)

	// Health / stats endpoint
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, healthResponse{HubStats: hub.Stats(), TrackedIPs: limiter.Tracked()})
	})

	mux.HandleFunc("/presets", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, presetsResponse{Default: presets.Default(), Presets: presets.Names()})
	})

	// Static files with no-cache headers (prevents stale JS in browser)
	fs := http.FileServer(http.Dir(staticDir))
	mux.Handle("/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
		w.Header().Set("Pragma", "no-cache")
		w.Header().Set("Expires", "0")
		fs.ServeHTTP(w, r)
	}))
	return mux
}

func loadPresets(cfg config.Server) (*config.Presets, error) {
	presets := config.NewPresets()
	if cfg.PresetFile != "" {
		if err := presets.LoadFile(cfg.PresetFile); err != nil {
			return nil, err
		}
	}
	if cfg.Preset != "" {
		if err := presets.SetDefault(cfg.Preset); err != nil {
			return nil, err
		}
	}
	return presets, nil
}

func main() {
	// Write logs to stdout so the host doesn't mark them as errors
	log.SetOutput(os.Stdout)

	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	presets, err := loadPresets(cfg)
	if err != nil {
		log.Fatalf("presets: %v", err)
	}

	limiter := middleware.NewIPRateLimiter(cfg.MaxConnsPerIP, cfg.MsgRate, cfg.MsgWindow)
	defer limiter.Close()

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	manager := &GameManager{presets: presets, ctx: ctx, seed: cfg.Seed}
	hub := ws.NewHub(manager, limiter, cfg.AllowedOrigins)
	hub.SetMaxSessions(cfg.MaxSessions)
	manager.hub = hub

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           securityHeaders(newMux(hub, limiter, presets, cfg.StaticDir)),
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 16, // 64KB
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Println("shutting down...")
		stop()
		server.Close()
	}()

	log.Printf("penalty server starting on :%s (preset %s, presets %v)", cfg.Port, presets.Default(), presets.Names())
	log.Printf("serving static files from %s", cfg.StaticDir)
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("server error: %v", err)
	}
	log.Println("server stopped")
}
