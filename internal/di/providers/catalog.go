package providers

import (
	"github.com/samber/do/v2"

	"github.com/listenupapp/readinglog/internal/catalog"
	"github.com/listenupapp/readinglog/internal/config"
	"github.com/listenupapp/readinglog/internal/generator"
	"github.com/listenupapp/readinglog/internal/logger"
	"github.com/listenupapp/readinglog/internal/metrics"
)

// ProvideCatalogProvider provides the configured book catalog.
func ProvideCatalogProvider(i do.Injector) (catalog.Provider, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	m := do.MustInvoke[*metrics.Metrics](i)

	if cfg.Catalog.Provider == config.ProviderGoogleBooks {
		client, err := catalog.NewGoogleBooks(catalog.GoogleBooksConfig{
			Logger:    log.Logger,
			Metrics:   m,
			BaseURL:   cfg.Catalog.BaseURL,
			APIKey:    cfg.Catalog.APIKey,
			CacheSize: cfg.Catalog.CacheSize,
		})
		if err != nil {
			return nil, err
		}
		log.Info("Google Books catalog configured", "url", cfg.Catalog.BaseURL)
		return client, nil
	}

	return catalog.NewMemoryCatalog(
		catalog.WithLatency(cfg.Catalog.Latency),
		catalog.WithLogger(log.Logger),
	), nil
}

// ProvideCatalogSearcher provides the cancel-and-replace search front end.
func ProvideCatalogSearcher(i do.Injector) (*catalog.Searcher, error) {
	provider := do.MustInvoke[catalog.Provider](i)
	log := do.MustInvoke[*logger.Logger](i)
	m := do.MustInvoke[*metrics.Metrics](i)

	return catalog.NewSearcher(provider, log.Logger, m), nil
}

// ProvideGenerator provides the review text generator.
func ProvideGenerator(i do.Injector) (generator.Generator, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	return generator.NewTemplateGenerator(cfg.Generator.Latency, log.Logger), nil
}
