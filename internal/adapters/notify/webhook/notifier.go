package webhook

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"medisync-hub/internal/platform/httpclient"
	"medisync-hub/internal/platform/logger"
	"medisync-hub/internal/ports/notify"
)

var ErrNotConfigured = errors.New("webhook url not configured")

const (
	DefaultQueueSize = 256
	defaultTimeout   = 5 * time.Second
)

var deliveriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "medisync_notify_deliveries_total",
	Help: "Entregas de notificaciones por webhook, por resultado.",
}, []string{"result"})

type Config struct {
	URL    string
	APIKey string

	// Si está vacío, se usa "X-Api-Key".
	APIKeyHeader string

	Timeout   time.Duration
	QueueSize int

	// Reintentos ante 429/5xx o error de red.
	Retries int
}

// Notifier publica eventos por HTTP POST desde una goroutine propia.
// Notify nunca bloquea: con la cola llena el evento se descarta.
type Notifier struct {
	client  *httpclient.Client
	url     string
	headers map[string]string
	log     logger.Logger

	mu     sync.RWMutex
	closed bool
	queue  chan notify.Event
	done   chan struct{}
}

func New(cfg Config, log logger.Logger) (*Notifier, error) {
	url := strings.TrimSpace(cfg.URL)
	if url == "" {
		return nil, ErrNotConfigured
	}
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return nil, errors.New("webhook url must be absolute http(s)")
	}
	if log == nil {
		log = logger.Nop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	size := cfg.QueueSize
	if size <= 0 {
		size = DefaultQueueSize
	}

	headers := map[string]string{}
	if key := strings.TrimSpace(cfg.APIKey); key != "" {
		h := strings.TrimSpace(cfg.APIKeyHeader)
		if h == "" {
			h = "X-Api-Key"
		}
		headers[h] = key
	}

	client := httpclient.New(timeout)
	client.Retries = cfg.Retries

	n := &Notifier{
		client:  client,
		url:     url,
		headers: headers,
		log:     log.With(map[string]any{"component": "notify_webhook"}),
		queue:   make(chan notify.Event, size),
		done:    make(chan struct{}),
	}
	go n.run()
	return n, nil
}

func (n *Notifier) Notify(_ context.Context, e notify.Event) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	if n.closed {
		deliveriesTotal.WithLabelValues("dropped").Inc()
		return
	}

	select {
	case n.queue <- e:
	default:
		deliveriesTotal.WithLabelValues("dropped").Inc()
		n.log.Warn("notification queue full, event dropped", map[string]any{
			"event":      string(e.Type),
			"request_id": e.RequestID,
		})
	}
}

// Close deja de aceptar eventos y espera a que se entreguen los encolados
// o a que ctx venza.
func (n *Notifier) Close(ctx context.Context) error {
	n.mu.Lock()
	if !n.closed {
		n.closed = true
		close(n.queue)
	}
	n.mu.Unlock()

	select {
	case <-n.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (n *Notifier) run() {
	defer close(n.done)
	for e := range n.queue {
		n.deliver(e)
	}
}

func (n *Notifier) deliver(e notify.Event) {
	// el timeout por intento lo impone el http.Client
	err := n.client.DoJSON(context.Background(), httpclient.Request{
		Method:  http.MethodPost,
		Path:    n.url,
		Headers: n.headers,
		Body:    e,
	}, nil)
	if err != nil {
		deliveriesTotal.WithLabelValues("failed").Inc()
		n.log.Error("webhook delivery failed", map[string]any{
			"event":      string(e.Type),
			"request_id": e.RequestID,
			"error":      err.Error(),
		})
		return
	}
	deliveriesTotal.WithLabelValues("delivered").Inc()
}
