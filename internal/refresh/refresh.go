package refresh

import (
	"context"
	"time"

	"paydash.app/cloud/internal/logger"
	"paydash.app/cloud/models"
	"paydash.app/cloud/storage"
)

// CatalogSource is the subset of the provider client the refresher needs.
type CatalogSource interface {
	Catalog(ctx context.Context) ([]models.CatalogItem, error)
}

// Refresher keeps a catalog snapshot in storage so the catalog page can
// still render when the provider is unreachable.
type Refresher struct {
	Source   CatalogSource
	Storage  storage.Storage
	Interval time.Duration
}

// Run refreshes the snapshot once immediately and then on every tick
// until the context is canceled. Fetch failures are logged and the loop
// keeps going; the previous snapshot stays in place.
func (r *Refresher) Run(ctx context.Context) {
	r.refresh(ctx)

	ticker := time.NewTicker(r.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Catalog refresher stopped")
			return
		case <-ticker.C:
			r.refresh(ctx)
		}
	}
}

func (r *Refresher) refresh(ctx context.Context) {
	items, err := r.Source.Catalog(ctx)
	if err != nil && len(items) == 0 {
		logger.Warn("Catalog refresh failed", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	if err != nil {
		// Partial catalog: keep what resolved, note what did not.
		logger.Warn("Catalog refresh incomplete", map[string]interface{}{
			"error": err.Error(),
			"items": len(items),
		})
	}

	if err := r.Storage.ReplaceCatalog(ctx, items); err != nil {
		logger.Error("Failed to store catalog snapshot", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}

	logger.Debug("Catalog snapshot refreshed", map[string]interface{}{
		"items": len(items),
	})
}
