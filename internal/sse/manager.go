package sse

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/listenupapp/readinglog/internal/domain"
	"github.com/listenupapp/readinglog/internal/id"
	"github.com/listenupapp/readinglog/internal/logger"
	"github.com/listenupapp/readinglog/internal/metrics"
)

const (
	queueSize         = 256
	clientBufferSize  = 64
	heartbeatInterval = 30 * time.Second
)

// Client is one connected event stream.
type Client struct {
	ConnectedAt time.Time
	EventChan   chan Event
	Done        chan struct{}
	ID          string

	// types is nil when the client takes every event type.
	types []EventType
}

// Wants reports whether the client subscribed to t. Heartbeats always pass.
func (c *Client) Wants(t EventType) bool {
	return t == EventHeartbeat || c.types == nil || slices.Contains(c.types, t)
}

// Types returns the subscribed event types, or nil for all.
func (c *Client) Types() []EventType {
	return slices.Clone(c.types)
}

// Manager fans shelf events and notifications out to connected clients.
// Emit never blocks: a full queue or a slow client drops the event.
type Manager struct {
	logger  *slog.Logger
	metrics *metrics.Metrics

	mu      sync.RWMutex
	clients map[string]*Client

	queue chan Event
	seq   atomic.Uint64
	wg    sync.WaitGroup

	// closedMu guards closed and the close of queue.
	closedMu sync.RWMutex
	closed   bool
}

// NewManager creates a Manager. Call Start to begin delivery.
func NewManager(log *slog.Logger, m *metrics.Metrics) *Manager {
	return &Manager{
		logger:  logger.OrDiscard(log),
		metrics: m,
		clients: make(map[string]*Client),
		queue:   make(chan Event, queueSize),
	}
}

// Start launches the delivery loop and returns. The loop runs until ctx is
// done or Shutdown closes the queue; Shutdown waits for it to exit.
func (m *Manager) Start(ctx context.Context) {
	m.wg.Add(1)
	go m.run(ctx)
}

func (m *Manager) run(ctx context.Context) {
	defer m.wg.Done()

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	m.logger.Info("event stream started")
	for {
		select {
		case event, ok := <-m.queue:
			if !ok {
				return
			}
			m.broadcast(event)
		case <-heartbeat.C:
			m.broadcast(NewHeartbeatEvent())
		case <-ctx.Done():
			m.logger.Info("event stream stopped")
			m.closeAllClients()
			return
		}
	}
}

// Shutdown stops accepting events, delivers what is queued, and disconnects
// every client. Calling it again is a no-op.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.closedMu.Lock()
	if m.closed {
		m.closedMu.Unlock()
		return nil
	}
	m.closed = true
	close(m.queue)
	m.closedMu.Unlock()

	drained := make(chan struct{})
	go func() {
		for event := range m.queue {
			m.broadcast(event)
		}
		close(drained)
	}()

	select {
	case <-drained:
	case <-ctx.Done():
		m.logger.Warn("event stream shutdown timed out, queued events dropped")
	}

	m.wg.Wait()
	m.closeAllClients()
	return nil
}

func (m *Manager) broadcast(event Event) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var delivered, dropped int
	for _, c := range m.clients {
		if !c.Wants(event.Type) {
			continue
		}
		select {
		case c.EventChan <- event:
			delivered++
		default:
			dropped++
			m.logger.Warn("client too slow, event dropped",
				slog.String("client_id", c.ID),
				slog.String("event_type", string(event.Type)))
		}
	}

	if event.Type != EventHeartbeat {
		m.logger.Debug("event delivered",
			slog.String("event_type", string(event.Type)),
			slog.Uint64("event_id", event.ID),
			slog.Int("delivered", delivered),
			slog.Int("dropped", dropped))
	}
}

// Connect registers a client for the given event types; none means all.
func (m *Manager) Connect(types ...EventType) (*Client, error) {
	clientID, err := id.Generate(id.PrefixClient)
	if err != nil {
		return nil, err
	}

	c := &Client{
		ID:          clientID,
		EventChan:   make(chan Event, clientBufferSize),
		Done:        make(chan struct{}),
		ConnectedAt: time.Now(),
	}
	if len(types) > 0 {
		c.types = slices.Clone(types)
	}

	m.mu.Lock()
	m.clients[c.ID] = c
	n := len(m.clients)
	m.mu.Unlock()

	m.metrics.SetSSEClients(n)
	m.logger.Info("event client connected",
		slog.String("client_id", clientID),
		slog.Int("subscribed_types", len(types)),
		slog.Int("clients", n))
	return c, nil
}

// Disconnect removes a client and closes its channels. Unknown IDs are ignored.
func (m *Manager) Disconnect(clientID string) {
	m.mu.Lock()
	c, ok := m.clients[clientID]
	if ok {
		delete(m.clients, clientID)
	}
	n := len(m.clients)
	m.mu.Unlock()
	if !ok {
		return
	}

	close(c.Done)
	close(c.EventChan)

	m.metrics.SetSSEClients(n)
	m.logger.Info("event client disconnected",
		slog.String("client_id", clientID),
		slog.Duration("connected_for", time.Since(c.ConnectedAt)),
		slog.Int("clients", n))
}

// Emit queues an Event and stamps it with the next sequence number. Values
// of any other type are logged and dropped.
func (m *Manager) Emit(event any) {
	evt, ok := event.(Event)
	if !ok {
		m.logger.Error("emit called with a non-event value")
		return
	}

	m.closedMu.RLock()
	defer m.closedMu.RUnlock()
	if m.closed {
		return
	}

	evt.ID = m.seq.Add(1)
	select {
	case m.queue <- evt:
	default:
		m.logger.Error("event queue full, event dropped",
			slog.String("event_type", string(evt.Type)))
	}
}

// Notify implements the notifier used by services: the toast goes out as a
// notification event.
func (m *Manager) Notify(n domain.Notification) {
	m.metrics.IncNotification(string(n.Variant))
	m.Emit(NewNotificationEvent(n))
}

// ClientCount returns the number of connected clients.
func (m *Manager) ClientCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.clients)
}

func (m *Manager) closeAllClients() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, c := range m.clients {
		close(c.Done)
		close(c.EventChan)
	}
	clear(m.clients)
	m.metrics.SetSSEClients(0)
}
