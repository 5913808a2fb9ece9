package store

// Keys of the serialized collections. These names are the storage contract
// and must not change.
const (
	keyBookshelf  = "bookshelf"
	prefixReviews = "reviews_"
	prefixDraft   = "review-draft-"
	prefixHistory = "history_"
)

func reviewsKey(bookID string) string { return prefixReviews + bookID }

func draftKey(bookID string) string { return prefixDraft + bookID }

func historyKey(bookID string) string { return prefixHistory + bookID }
