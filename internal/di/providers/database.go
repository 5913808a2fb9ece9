package providers

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/samber/do/v2"

	"github.com/listenupapp/readinglog/internal/config"
	"github.com/listenupapp/readinglog/internal/logger"
	"github.com/listenupapp/readinglog/internal/metrics"
	"github.com/listenupapp/readinglog/internal/sse"
	"github.com/listenupapp/readinglog/internal/store"
	"github.com/listenupapp/readinglog/internal/store/sqlite"
)

// SSEManagerHandle wraps the SSE manager with its context for lifecycle management.
type SSEManagerHandle struct {
	*sse.Manager
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (h *SSEManagerHandle) Shutdown() error {
	h.cancel()
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Manager.Shutdown(ctx)
}

// ProvideSSEManager provides the server-sent events manager. It is also the
// notifier that delivers toasts to connected clients.
func ProvideSSEManager(i do.Injector) (*SSEManagerHandle, error) {
	log := do.MustInvoke[*logger.Logger](i)
	m := do.MustInvoke[*metrics.Metrics](i)

	manager := sse.NewManager(log.Logger, m)

	ctx, cancel := context.WithCancel(context.Background())
	manager.Start(ctx)

	log.Info("SSE manager started")

	return &SSEManagerHandle{
		Manager: manager,
		cancel:  cancel,
	}, nil
}

// StoreHandle wraps the store with shutdown capability.
type StoreHandle struct {
	*store.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore opens the configured key-value backend.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	backend, err := OpenBackend(cfg.Storage, log)
	if err != nil {
		return nil, err
	}

	return &StoreHandle{Store: store.New(backend, log.Logger)}, nil
}

// OpenBackend opens the backend named by cfg.Backend under cfg.DataPath.
func OpenBackend(cfg config.StorageConfig, log *logger.Logger) (store.Backend, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		log.Warn("Using in-memory storage; nothing survives a restart")
		return store.NewMemoryBackend(), nil

	case config.BackendSQLite:
		if err := os.MkdirAll(cfg.DataPath, 0o755); err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
		return sqlite.Open(filepath.Join(cfg.DataPath, "readinglog.db"), log.Logger)

	case config.BackendBadger:
		dbPath := filepath.Join(cfg.DataPath, "db")
		backend, err := store.OpenBadger(dbPath, log.Logger)
		if err != nil {
			return nil, err
		}
		log.Info("Database initialized", "path", dbPath)
		return backend, nil

	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
