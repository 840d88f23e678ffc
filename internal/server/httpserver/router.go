package httpserver

import (
	"net/http"

	"github.com/yndnr/atomstore/internal/server/httpserver/handler"
	"github.com/yndnr/atomstore/internal/telemetry/logger"
	"github.com/yndnr/atomstore/internal/telemetry/metric"
)

// RouterConfig holds configuration for the HTTP router.
type RouterConfig struct {
	Handler *handler.Handler

	// Metrics, when set, records request metrics and serves /metrics.
	Metrics *metric.Registry

	Logger logger.Logger
}

// NewRouter mounts the API handler and the metrics endpoint behind the
// common middleware chain: RequestID -> Recover -> Observe.
func NewRouter(cfg RouterConfig) http.Handler {
	log := cfg.Logger
	if log == nil {
		log = logger.Default()
	}

	mux := http.NewServeMux()
	mux.Handle("/", cfg.Handler)
	if cfg.Metrics != nil {
		mux.Handle("GET /metrics", cfg.Metrics.Handler())
	}

	return Chain(mux,
		RequestID(log),
		Recover(),
		Observe(cfg.Metrics),
	)
}
