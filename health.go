package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// startHealthServer serves liveness and metrics endpoints. Hosting
// platforms probe the bound PORT to decide the instance is up.
func startHealthServer(ctx context.Context, port int) {
	r := chi.NewRouter()
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		InfoLogger.Printf("Health server listening on :%d", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			ErrorLogger.Printf("Health server stopped: %v", err)
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
}

// startKeepalive pings the public URL every five minutes so free-tier
// hosts do not idle the instance out.
func startKeepalive(ctx context.Context, publicURL string) {
	client := &http.Client{Timeout: 8 * time.Second}

	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				req, err := http.NewRequestWithContext(ctx, http.MethodGet, publicURL, nil)
				if err != nil {
					ErrorLogger.Printf("Keepalive request error: %v", err)
					continue
				}
				resp, err := client.Do(req)
				if err != nil {
					ErrorLogger.Printf("Keepalive ping failed: %v", err)
					continue
				}
				_ = resp.Body.Close()
			}
		}
	}()
}
