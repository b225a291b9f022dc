package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/snap2code/creditledger/internal/domain"
	"github.com/snap2code/creditledger/internal/usecase"
)

const (
	packageListKey = "packages:active"
	packageListTTL = 5 * time.Minute
)

// CachedPackageRepository wraps a PackageRepository with a read-through cache
// for the active-package list. The catalog changes rarely and is read on
// every pricing-page load.
type CachedPackageRepository struct {
	inner usecase.PackageRepository
	cache usecase.Cache
}

// NewCachedPackageRepository creates a new CachedPackageRepository.
func NewCachedPackageRepository(inner usecase.PackageRepository, cache usecase.Cache) *CachedPackageRepository {
	return &CachedPackageRepository{
		inner: inner,
		cache: cache,
	}
}

// GetByCode retrieves a package by its code. Lookups by code go straight to
// the database; they sit on the purchase path where staleness matters.
func (r *CachedPackageRepository) GetByCode(ctx context.Context, code string) (*domain.Package, error) {
	return r.inner.GetByCode(ctx, code)
}

// ListActive lists active packages, served from cache when possible.
func (r *CachedPackageRepository) ListActive(ctx context.Context) ([]*domain.Package, error) {
	if data, err := r.cache.Get(ctx, packageListKey); err == nil {
		var packages []*domain.Package
		if err := json.Unmarshal(data, &packages); err == nil {
			return packages, nil
		}
	}

	packages, err := r.inner.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(packages); err == nil {
		// Cache write failures are invisible to callers.
		_ = r.cache.Set(ctx, packageListKey, data, packageListTTL)
	}

	return packages, nil
}

// Invalidate drops the cached package list.
func (r *CachedPackageRepository) Invalidate(ctx context.Context) error {
	return r.cache.Delete(ctx, packageListKey)
}
