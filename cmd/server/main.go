package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"example.com/minigame_lobby/internal/config"
	"example.com/minigame_lobby/internal/logger"
	"example.com/minigame_lobby/internal/room"
	"example.com/minigame_lobby/internal/ws"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		l := logger.New("info", false)
		l.Fatal().Err(err).Msg("bad configuration")
	}
	log := logger.New(cfg.LogLevel, cfg.LogPretty)
	if !cfg.DotEnv {
		log.Debug().Msg("no .env file found")
	}

	srv, hub := newServer(cfg, log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info().Str("port", cfg.Port).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("listen failed")
		}
	}()

	<-ctx.Done()
	log.Info().Int("clients", hub.Clients()).Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("shutdown")
	}
}

// newServer wires the hub and room registry behind the HTTP handler.
func newServer(cfg config.Config, log zerolog.Logger) (*http.Server, *ws.Hub) {
	hub := ws.NewHub(ws.Options{
		AllowOrigins: cfg.OriginAllowlist,
		PingInterval: cfg.PingInterval,
		SendBuffer:   cfg.SendBuffer,
		Logger:       log.With().Str("component", "ws").Logger(),
	})
	reg := room.NewRegistry(hub,
		room.WithDefaultRoom(cfg.DefaultRoom),
		room.WithLogger(log.With().Str("component", "rooms").Logger()),
	)
	hub.Bind(reg)

	return &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           cors(cfg.OriginAllowlist, newMux(cfg, hub)),
		ReadHeaderTimeout: 10 * time.Second,
	}, hub
}

func newMux(cfg config.Config, hub *ws.Hub) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", hub.ServeWS)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if cfg.StaticDir != "" {
		mux.Handle("/", http.FileServer(http.Dir(cfg.StaticDir)))
	}
	return mux
}

func cors(allow []string, next http.Handler) http.Handler {
	allowSet := map[string]struct{}{}
	for _, a := range allow {
		if a != "" {
			allowSet[a] = struct{}{}
		}
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" {
			if _, ok := allowSet[origin]; ok {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Vary", "Origin")
			}
		}
		if r.Method == http.MethodOptions {
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
