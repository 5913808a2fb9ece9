package providers

import "time"

const (
	// shutdownTimeout is the maximum time to wait for graceful shutdown of services.
	shutdownTimeout = 30 * time.Second

	// reindexTimeout bounds the startup rebuild of the search index.
	reindexTimeout = 2 * time.Minute
)
