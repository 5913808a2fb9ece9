package sse

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	domainerrors "github.com/listenupapp/readinglog/internal/errors"
	"github.com/listenupapp/readinglog/internal/http/response"
	"github.com/listenupapp/readinglog/internal/logger"
)

const writeTimeout = 60 * time.Second

// Handler handles SSE connections at GET /api/v1/events.
type Handler struct {
	manager *Manager
	logger  *slog.Logger
}

// NewHandler creates a new SSE Handler.
func NewHandler(manager *Manager, log *slog.Logger) *Handler {
	return &Handler{
		manager: manager,
		logger:  logger.OrDiscard(log),
	}
}

// ServeHTTP streams events until the client leaves or the manager closes it.
// The optional types query parameter narrows the subscription, e.g.
// ?types=notification for a toast-only client.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		response.MethodNotAllowed(w, h.logger)
		return
	}
	ctx := r.Context()
	if ctx.Err() != nil {
		return
	}

	types, err := ParseEventTypes(r.URL.Query().Get("types"))
	if err != nil {
		response.HandleError(w, domainerrors.Validation(err.Error()), h.logger)
		return
	}

	rc := http.NewResponseController(w)
	header := w.Header()
	header.Set("Content-Type", "text/event-stream")
	header.Set("Cache-Control", "no-cache")
	header.Set("Connection", "keep-alive")
	header.Set("X-Accel-Buffering", "no")
	if err := rc.Flush(); err != nil {
		h.logger.Error("response writer cannot stream", slog.String("error", err.Error()))
		response.InternalError(w, "streaming not supported", h.logger)
		return
	}

	client, err := h.manager.Connect(types...)
	if err != nil {
		response.HandleError(w, err, h.logger)
		return
	}
	defer h.manager.Disconnect(client.ID)

	log := h.logger.With(slog.String("client_id", client.ID))
	hello := Event{Type: EventConnected, Data: map[string]any{
		"clientId": client.ID,
		"types":    client.Types(),
	}}
	if err := h.sendEvent(w, rc, hello); err != nil {
		log.Debug("client left before the first event", slog.String("error", err.Error()))
		return
	}

	for {
		select {
		case <-ctx.Done():
			log.Debug("client went away")
			return
		case <-client.Done:
			return
		case event, ok := <-client.EventChan:
			if !ok {
				return
			}
			if err := h.sendEvent(w, rc, event); err != nil {
				log.Debug("write failed, closing stream", slog.String("error", err.Error()))
				return
			}
		}
	}
}

// sendEvent writes one text/event-stream frame and flushes it. The data line
// is the whole Event so clients see the type, timestamp, and id in JSON too.
func (h *Handler) sendEvent(w http.ResponseWriter, rc *http.ResponseController, e Event) error {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	var frame bytes.Buffer
	if e.ID > 0 {
		fmt.Fprintf(&frame, "id: %d\n", e.ID)
	}
	fmt.Fprintf(&frame, "event: %s\ndata: %s\n\n", e.Type, payload)

	if _, err := w.Write(frame.Bytes()); err != nil {
		return err
	}
	if err := rc.Flush(); err != nil {
		return err
	}

	// Each successful write pushes the deadline out so a hung client times out.
	if err := rc.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		h.logger.Debug("write deadline not supported", slog.String("error", err.Error()))
	}
	return nil
}
