package server

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

// NewMux serves the websocket endpoint at /ws and a plain health check.
func NewMux(room *Room) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", Handler(room))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})
	return mux
}

// Serve runs room and an HTTP server on addr until ctx is cancelled or one of
// them fails.
func Serve(ctx context.Context, addr string, room *Room) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           NewMux(room),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return room.Run(ctx)
	})
	g.Go(func() error {
		log.Printf("listening on %s (ws endpoint: /ws)", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
