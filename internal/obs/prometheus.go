package obs

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"payengine/internal/domain"
	"payengine/internal/engine"
)

// PromSink counts rejected/ignored records by kind and reason on its own
// prometheus registry.
type PromSink struct {
	registry *prometheus.Registry
	outcomes *prometheus.CounterVec
	logger   *slog.Logger
}

// NewPromSink creates a sink with a fresh registry.
func NewPromSink(logger *slog.Logger) *PromSink {
	if logger == nil {
		logger = slog.Default()
	}

	registry := prometheus.NewRegistry()

	return &PromSink{
		registry: registry,
		outcomes: promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
			Name: "records_not_applied_total",
			Help: "Records rejected or ignored by the engine, by kind and reason",
		}, []string{"status", "kind", "reason"}),
		logger: logger,
	}
}

func (p *PromSink) Record(out engine.Outcome, kind domain.Kind, client domain.ClientID, tx domain.TxID) {
	p.outcomes.WithLabelValues(out.Status.String(), kind.String(), out.Reason.String()).Inc()
}

// Handler exposes the sink's registry.
func (p *PromSink) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

// StartServer serves /metrics on addr in the background.
func (p *PromSink) StartServer(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", p.Handler())

	server := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	go func() {
		p.logger.Info("starting metrics server", slog.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			p.logger.Error("metrics server failed", slog.Any("error", err))
		}
	}()

	return server
}
