package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"storefront-service/internal/models"
	"storefront-service/internal/repository"

	"go.uber.org/zap"
)

const (
	notFoundMarker = "notfound"
	notFoundTTL    = time.Minute
)

// CachedProductRepo кэширует карточки товаров по id поверх ProductRepo.
// Списки не кэшируются: фильтров много, а витрина и так читает их редко.
type CachedProductRepo struct {
	repo  repository.ProductRepo
	store Store
	ttl   time.Duration
	log   *zap.Logger
}

var _ repository.ProductRepo = (*CachedProductRepo)(nil)

func NewCachedProductRepo(repo repository.ProductRepo, store Store, ttl time.Duration, log *zap.Logger) *CachedProductRepo {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &CachedProductRepo{repo: repo, store: store, ttl: ttl, log: log}
}

func productKey(id uint) string { return fmt.Sprintf("product:%d", id) }

// lookup: (товар, найден в кэше). Отметка notfound возвращает (nil, true).
func (c *CachedProductRepo) lookup(ctx context.Context, id uint) (*models.Product, bool) {
	data, err := c.store.Get(ctx, productKey(id))
	switch {
	case err == nil:
		if data == notFoundMarker {
			return nil, true
		}
		var p models.Product
		if err := json.Unmarshal([]byte(data), &p); err != nil {
			c.log.Warn("failed to unmarshal cached product, continuing with DB", zap.Uint("product_id", id), zap.Error(err))
			return nil, false
		}
		return &p, true
	case errors.Is(err, ErrMiss):
		return nil, false
	default:
		c.log.Warn("cache error, continuing with DB", zap.Error(err))
		return nil, false
	}
}

func (c *CachedProductRepo) remember(ctx context.Context, p *models.Product) {
	data, err := json.Marshal(p)
	if err != nil {
		c.log.Warn("failed to marshal product", zap.Uint("product_id", p.ID), zap.Error(err))
		return
	}
	if err := c.store.Set(ctx, productKey(p.ID), data, c.ttl); err != nil {
		c.log.Warn("failed to cache product", zap.Uint("product_id", p.ID), zap.Error(err))
	}
}

func (c *CachedProductRepo) rememberMissing(ctx context.Context, id uint) {
	if err := c.store.Set(ctx, productKey(id), notFoundMarker, notFoundTTL); err != nil {
		c.log.Warn("failed to cache notfound", zap.Uint("product_id", id), zap.Error(err))
	}
}

func (c *CachedProductRepo) invalidate(ctx context.Context, id uint) {
	if err := c.store.Del(ctx, productKey(id)); err != nil {
		c.log.Warn("failed to delete product cache", zap.Uint("product_id", id), zap.Error(err))
	}
}

func (c *CachedProductRepo) GetByID(ctx context.Context, id uint) (*models.Product, error) {
	if p, ok := c.lookup(ctx, id); ok {
		return p, nil
	}

	p, err := c.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		c.rememberMissing(ctx, id)
		return nil, nil
	}
	c.remember(ctx, p)
	return p, nil
}

func (c *CachedProductRepo) BatchGetByIDs(ctx context.Context, ids []uint) ([]models.Product, error) {
	out := make([]models.Product, 0, len(ids))
	var misses []uint
	for _, id := range ids {
		p, ok := c.lookup(ctx, id)
		if !ok {
			misses = append(misses, id)
			continue
		}
		if p != nil {
			out = append(out, *p)
		}
	}
	if len(misses) == 0 {
		return out, nil
	}

	loaded, err := c.repo.BatchGetByIDs(ctx, misses)
	if err != nil {
		return nil, err
	}
	found := make(map[uint]struct{}, len(loaded))
	for i := range loaded {
		found[loaded[i].ID] = struct{}{}
		c.remember(ctx, &loaded[i])
		out = append(out, loaded[i])
	}
	for _, id := range misses {
		if _, ok := found[id]; !ok {
			c.rememberMissing(ctx, id)
		}
	}
	return out, nil
}

func (c *CachedProductRepo) List(ctx context.Context, f repository.ProductListFilter) ([]models.Product, int64, error) {
	return c.repo.List(ctx, f)
}

func (c *CachedProductRepo) Create(ctx context.Context, p *models.Product) error {
	if err := c.repo.Create(ctx, p); err != nil {
		return err
	}
	// могла остаться отметка notfound
	c.invalidate(ctx, p.ID)
	return nil
}

func (c *CachedProductRepo) UpdateFields(ctx context.Context, id uint, fields map[string]any) error {
	c.invalidate(ctx, id)
	if err := c.repo.UpdateFields(ctx, id, fields); err != nil {
		return err
	}
	c.invalidate(ctx, id)
	return nil
}
