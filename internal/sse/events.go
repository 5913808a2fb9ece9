// Package sse streams notifications and shelf changes to connected clients
// as Server-Sent Events.
package sse

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/listenupapp/readinglog/internal/domain"
)

// EventType represents the type of SSE Event.
type EventType string

const (
	// EventNotification carries a user-facing toast.
	EventNotification EventType = "notification"

	// EventBookAdded is sent when a book joins the shelf.
	EventBookAdded EventType = "book.added"
	// EventBookUpdated is sent on any other change to a shelf book.
	EventBookUpdated EventType = "book.updated"
	// EventBookCompleted is sent when a book transitions to completed.
	EventBookCompleted EventType = "book.completed"

	// EventReviewSaved is sent when a review is appended.
	EventReviewSaved EventType = "review.saved"

	// EventConnected is the first frame of every stream.
	EventConnected EventType = "connected"

	// EventHeartbeat represents a connection keepalive event.
	EventHeartbeat EventType = "heartbeat"
)

// Event represents an SSE event to be sent to clients.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
	Type      EventType `json:"type"`
	// ID is assigned by the Manager; heartbeats carry zero.
	ID uint64 `json:"id,omitempty"`
}

var subscribable = []EventType{
	EventNotification,
	EventBookAdded,
	EventBookUpdated,
	EventBookCompleted,
	EventReviewSaved,
}

// ParseEventTypes parses a comma-separated subscription list such as
// "notification,book.completed". An empty list means every type.
func ParseEventTypes(s string) ([]EventType, error) {
	var types []EventType
	for _, raw := range strings.Split(s, ",") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		t := EventType(raw)
		if !slices.Contains(subscribable, t) {
			return nil, fmt.Errorf("unknown event type %q", raw)
		}
		if !slices.Contains(types, t) {
			types = append(types, t)
		}
	}
	return types, nil
}

// BookEventData is the data payload for book events.
type BookEventData struct {
	Book *domain.Book `json:"book"`
}

// ReviewEventData is the data payload for review events.
type ReviewEventData struct {
	Review *domain.Review `json:"review"`
}

// HeartbeatEventData is the data payload for heartbeat events.
type HeartbeatEventData struct {
	ServerTime time.Time `json:"serverTime"`
}

// NewNotificationEvent creates a notification event.
func NewNotificationEvent(n domain.Notification) Event {
	return Event{
		Type:      EventNotification,
		Data:      n,
		Timestamp: time.Now(),
	}
}

// NewBookAddedEvent creates a book.added event.
func NewBookAddedEvent(book *domain.Book) Event {
	return Event{
		Type:      EventBookAdded,
		Data:      BookEventData{Book: book},
		Timestamp: time.Now(),
	}
}

// NewBookUpdatedEvent creates a book.updated event.
func NewBookUpdatedEvent(book *domain.Book) Event {
	return Event{
		Type:      EventBookUpdated,
		Data:      BookEventData{Book: book},
		Timestamp: time.Now(),
	}
}

// NewBookCompletedEvent creates a book.completed event.
func NewBookCompletedEvent(book *domain.Book) Event {
	return Event{
		Type:      EventBookCompleted,
		Data:      BookEventData{Book: book},
		Timestamp: time.Now(),
	}
}

// NewReviewSavedEvent creates a review.saved event.
func NewReviewSavedEvent(review *domain.Review) Event {
	return Event{
		Type:      EventReviewSaved,
		Data:      ReviewEventData{Review: review},
		Timestamp: time.Now(),
	}
}

// NewHeartbeatEvent creates a heartbeat event.
func NewHeartbeatEvent() Event {
	now := time.Now()
	return Event{
		Type:      EventHeartbeat,
		Data:      HeartbeatEventData{ServerTime: now},
		Timestamp: now,
	}
}
