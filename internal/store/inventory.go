package store

import (
	"context"
	"strings"
)

// Collection names reported by Inventory.
const (
	CollectionBookshelf = "bookshelf"
	CollectionReviews   = "reviews"
	CollectionDrafts    = "drafts"
	CollectionHistory   = "history"
	CollectionOther     = "other"
)

// CollectionUsage is how many keys and bytes a collection occupies.
type CollectionUsage struct {
	Name  string `json:"name"`
	Keys  int    `json:"keys"`
	Bytes int    `json:"bytes"`
}

// Inventory walks every key in the backend and groups them by collection.
// The result is ordered bookshelf, reviews, drafts, history, other.
func (s *Store) Inventory(ctx context.Context) ([]CollectionUsage, error) {
	keys, err := s.backend.Keys(ctx, "")
	if err != nil {
		return nil, storageError(err, "list", "")
	}

	order := []string{CollectionBookshelf, CollectionReviews, CollectionDrafts, CollectionHistory, CollectionOther}
	usage := make(map[string]*CollectionUsage, len(order))
	for _, name := range order {
		usage[name] = &CollectionUsage{Name: name}
	}

	for _, key := range keys {
		value, err := s.backend.Get(ctx, key)
		if err != nil {
			return nil, storageError(err, "read", key)
		}
		u := usage[collectionOf(key)]
		u.Keys++
		u.Bytes += len(value)
	}

	out := make([]CollectionUsage, 0, len(order))
	for _, name := range order {
		out = append(out, *usage[name])
	}
	return out, nil
}

func collectionOf(key string) string {
	switch {
	case key == keyBookshelf:
		return CollectionBookshelf
	case strings.HasPrefix(key, prefixReviews):
		return CollectionReviews
	case strings.HasPrefix(key, prefixDraft):
		return CollectionDrafts
	case strings.HasPrefix(key, prefixHistory):
		return CollectionHistory
	default:
		return CollectionOther
	}
}
