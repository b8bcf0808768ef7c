// Package alert dispatches pipeline alerts asynchronously: a bounded queue
// feeds one consumer that appends each alert to the history ring and fans it
// out to streaming subscribers.
package alert

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/madhava-cloud/gateway/internal/domain"
	"github.com/madhava-cloud/gateway/internal/metrics"
)

// DefaultQueueSize bounds the dispatch queue when none is configured.
const DefaultQueueSize = 256

// dispatchTimeout bounds the history write for a single alert.
const dispatchTimeout = 5 * time.Second

// Manager owns the alert queue. Notify never blocks: when the queue is full
// the alert is dropped and counted, because alerting must never apply
// back-pressure to the query path.
type Manager struct {
	history History
	hub     *Hub
	log     *zap.Logger

	queue chan domain.Alert
	done  chan struct{}
	once  sync.Once
}

// NewManager creates the manager and starts its consumer goroutine.
func NewManager(history History, hub *Hub, log *zap.Logger, queueSize int) *Manager {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	m := &Manager{
		history: history,
		hub:     hub,
		log:     log,
		queue:   make(chan domain.Alert, queueSize),
		done:    make(chan struct{}),
	}
	go m.run()
	return m
}

// Notify enqueues an alert for dispatch. Never blocks.
func (m *Manager) Notify(a domain.Alert) {
	select {
	case m.queue <- a:
		metrics.AlertsQueuedTotal.Inc()
	default:
		metrics.AlertsDroppedTotal.Inc()
		m.log.Warn("alert queue full, dropping alert",
			zap.String("category", a.Category),
			zap.String("id", a.ID),
		)
	}
}

// Close stops intake, drains the queue, and waits for the consumer to finish.
func (m *Manager) Close() {
	m.once.Do(func() {
		close(m.queue)
		<-m.done
	})
}

func (m *Manager) run() {
	defer close(m.done)

	for a := range m.queue {
		m.dispatch(a)
	}
}

func (m *Manager) dispatch(a domain.Alert) {
	ctx, cancel := context.WithTimeout(context.Background(), dispatchTimeout)
	defer cancel()

	if err := m.history.Append(ctx, a); err != nil {
		m.log.Error("failed to persist alert",
			zap.String("id", a.ID),
			zap.Error(err),
		)
	}

	m.hub.Broadcast(a)
}
