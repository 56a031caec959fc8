package observability

import (
	"context"
	"net/http"

	"github.com/comfforts/logger"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const DEFAULT_METRICS_ADDR = ":9464"

type InitOptions struct {
	MetricsAddr   string // e.g. ":9464"
	MetricsHandle string // defaults to "/metrics"
}

// Serve exposes the process's prometheus metrics for scraping. Returns the
// server's shutdown func.
func Serve(ctx context.Context, opt InitOptions) (shutdown func(context.Context) error, err error) {
	l, err := logger.LoggerFromContext(ctx)
	if err != nil {
		l = logger.GetSlogLogger()
	}

	if opt.MetricsAddr == "" {
		opt.MetricsAddr = DEFAULT_METRICS_ADDR
	}
	if opt.MetricsHandle == "" {
		opt.MetricsHandle = "/metrics"
	}

	mux := http.NewServeMux()
	mux.Handle(opt.MetricsHandle, promhttp.Handler())

	srv := &http.Server{
		Addr:    opt.MetricsAddr,
		Handler: mux,
	}

	go func() {
		l.Info("prometheus metrics serving", "address", opt.MetricsAddr, "handle", opt.MetricsHandle)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			l.Error("metrics server error", "error", err.Error())
		}
	}()

	return srv.Shutdown, nil
}
