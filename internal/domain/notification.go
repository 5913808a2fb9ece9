package domain

import "time"

// Variant is the visual style of a notification.
type Variant string

// Notification variants.
const (
	VariantDefault     Variant = "default"
	VariantSuccess     Variant = "success"
	VariantDestructive Variant = "destructive"
)

// Notification is a fire-and-forget, user-facing message (a "toast").
type Notification struct {
	CreatedAt   time.Time `json:"createdAt"`
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Variant     Variant   `json:"variant"`
}
