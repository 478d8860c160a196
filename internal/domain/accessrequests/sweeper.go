package accessrequests

import (
	"context"
	"time"

	"medisync-hub/internal/platform/logger"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const DefaultSweepInterval = time.Minute

var (
	sweepRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "medisync_access_sweep_runs_total",
		Help: "Ejecuciones del sweep de expiración por resultado",
	}, []string{"result"}) // result: ok, skipped, error

	sweepExpired = promauto.NewCounter(prometheus.CounterOpts{
		Name: "medisync_access_requests_expired_total",
		Help: "Solicitudes pasadas de approved a expired por el sweep",
	})

	sweepDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "medisync_access_sweep_duration_seconds",
		Help:    "Duración del sweep de expiración",
		Buckets: prometheus.DefBuckets,
	})
)

// Sweeper corre SweepExpired periódicamente. El status expired es cosmético:
// la autorización real la decide HasActiveAccess.
type Sweeper struct {
	svc      *Service
	interval time.Duration
	log      logger.Logger

	cancel context.CancelFunc
	done   chan struct{}
}

func NewSweeper(svc *Service, interval time.Duration, log logger.Logger) *Sweeper {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	return &Sweeper{
		svc:      svc,
		interval: interval,
		log:      log.With(map[string]any{"component": "access_sweeper"}),
	}
}

// Start lanza la goroutine. Se llama una sola vez.
func (sw *Sweeper) Start(ctx context.Context) {
	ctx, sw.cancel = context.WithCancel(ctx)
	sw.done = make(chan struct{})

	go func() {
		defer close(sw.done)

		sw.log.Info("expiry sweep started", map[string]any{"interval": sw.interval.String()})

		ticker := time.NewTicker(sw.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				sw.log.Info("expiry sweep stopped", nil)
				return
			case <-ticker.C:
				sw.RunOnce(ctx)
			}
		}
	}()
}

// Stop cancela la goroutine y espera a que termine.
func (sw *Sweeper) Stop() {
	if sw.cancel != nil {
		sw.cancel()
	}
	if sw.done != nil {
		<-sw.done
	}
}

// RunOnce ejecuta un sweep y devuelve cuántas solicitudes expiró.
func (sw *Sweeper) RunOnce(ctx context.Context) int {
	start := time.Now()
	expired, skipped, err := sw.svc.SweepExpired(ctx)
	sweepDuration.Observe(time.Since(start).Seconds())

	switch {
	case err != nil:
		sweepRuns.WithLabelValues("error").Inc()
		sw.log.Error("expiry sweep failed", map[string]any{"error": err.Error()})
		return 0
	case skipped:
		sweepRuns.WithLabelValues("skipped").Inc()
		sw.log.Debug("expiry sweep skipped: previous run still active", nil)
		return 0
	}

	sweepRuns.WithLabelValues("ok").Inc()
	sweepExpired.Add(float64(len(expired)))
	if len(expired) > 0 {
		ids := make([]string, 0, len(expired))
		for _, r := range expired {
			ids = append(ids, r.ID)
		}
		sw.log.Info("access requests expired", map[string]any{"count": len(expired), "ids": ids})
	}
	return len(expired)
}
