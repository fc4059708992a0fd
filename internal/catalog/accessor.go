package catalog

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/serenelion/Earth-Care-Food-Company/internal/domain"
)

// Lister is the slice of the backend client the accessor needs.
type Lister interface {
	ListProducts(ctx context.Context) (json.RawMessage, error)
}

// Accessor fetches the purchasable catalog. It never fails its callers: any
// backend, cache or decode problem degrades to an empty list with a diagnostic
// log line. Callers own the loading and empty-state presentation.
type Accessor struct {
	backend Lister
	cache   Cache // optional
	sfg     singleflight.Group
	log     *logrus.Logger
}

func NewAccessor(backend Lister, cache Cache, log *logrus.Logger) *Accessor {
	return &Accessor{
		backend: backend,
		cache:   cache,
		log:     log,
	}
}

// Products returns the current catalog, collapsing concurrent fetches into one
// backend call.
func (a *Accessor) Products(ctx context.Context) []domain.Product {
	v, err, _ := a.sfg.Do(cacheKey, func() (interface{}, error) {
		if a.cache != nil {
			products, errGet := a.cache.Get(ctx)
			if errGet == nil {
				return products, nil
			}
			if !errors.Is(errGet, ErrCacheMiss) {
				a.log.WithError(errGet).Warn("catalog cache get failed")
			}
		}

		raw, errList := a.backend.ListProducts(ctx)
		if errList != nil {
			return nil, errList
		}

		products, errNorm := normalize(raw)
		if errNorm != nil {
			return nil, errNorm
		}

		if a.cache != nil {
			go func() {
				if errSet := a.cache.Set(context.Background(), products); errSet != nil {
					a.log.WithError(errSet).Warn("catalog cache set failed")
				}
			}()
		}

		return products, nil
	})

	if err != nil {
		a.log.WithError(err).Error("failed to fetch catalog")
		return []domain.Product{}
	}

	products := v.([]domain.Product)
	if products == nil {
		return []domain.Product{}
	}
	return products
}

// Product looks up a single catalog entry by id.
func (a *Accessor) Product(ctx context.Context, id string) (domain.Product, bool) {
	for _, p := range a.Products(ctx) {
		if p.ID == id {
			return p, true
		}
	}
	return domain.Product{}, false
}

// normalize accepts both listing shapes the backend produces: a bare array or
// an envelope with a results key.
func normalize(raw json.RawMessage) ([]domain.Product, error) {
	var bare []domain.Product
	if err := json.Unmarshal(raw, &bare); err == nil {
		return bare, nil
	}

	var envelope struct {
		Results []domain.Product `json:"results"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, err
	}
	return envelope.Results, nil
}
