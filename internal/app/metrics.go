package app

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"
)

// serveMetrics listens on metrics.addr and serves /metrics in the
// background. Listen errors are returned; serve errors are logged.
func (a *App) serveMetrics() error {
	ln, err := net.Listen("tcp", a.Config.Metrics.Addr)
	if err != nil {
		return err
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", a.Metrics.Handler())
	a.metricsServer = &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	a.metricsAddr = ln.Addr().String()
	go func() {
		if err := a.metricsServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Warn("Metrics server stopped", slog.String("error", err.Error()))
		}
	}()
	a.log.Info("Serving metrics", slog.String("addr", a.metricsAddr))
	return nil
}

// MetricsAddr returns the bound metrics address, or "" when not serving.
func (a *App) MetricsAddr() string {
	if a.metricsServer == nil {
		return ""
	}
	return a.metricsAddr
}

func (a *App) stopMetrics() error {
	if a.metricsServer == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return a.metricsServer.Shutdown(ctx)
}
