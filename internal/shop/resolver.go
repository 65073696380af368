// Package shop resolves the rotating coin shop: the current rotation
// descriptor joined against the item catalog, in a deterministic sort order.
package shop

import (
	"context"
	"sort"

	"arena_companion/internal/models"
	"arena_companion/internal/pkg/logger"
)

// RotationBackend is the subset of the game platform client that serves the
// rotation descriptor.
type RotationBackend interface {
	GetCoinShopRotation(ctx context.Context) (models.ShopRotation, error)
}

// ItemResolver resolves item ids into normalized items.
type ItemResolver interface {
	Resolve(ctx context.Context, ids []string) ([]models.Item, error)
}

// Resolver produces the resolved, sorted coin shop.
type Resolver struct {
	backend RotationBackend
	items   ItemResolver
	log     *logger.Logger
}

// NewResolver creates a shop resolver.
func NewResolver(backend RotationBackend, items ItemResolver, l *logger.Logger) *Resolver {
	return &Resolver{backend: backend, items: items, log: l}
}

// Current fetches the rotation descriptor and then resolves its item ids, in
// that strict order: items are never requested before the id list is known.
// An empty rotation yields an empty item list without a wasted request.
func (r *Resolver) Current(ctx context.Context) (models.ResolvedShop, error) {
	rotation, err := r.backend.GetCoinShopRotation(ctx)
	if err != nil {
		return models.ResolvedShop{}, err
	}

	if len(rotation.ItemIDs) == 0 {
		return models.ResolvedShop{Items: []models.Item{}, ExpirationDate: rotation.ExpirationDate}, nil
	}

	items, err := r.items.Resolve(ctx, rotation.ItemIDs)
	if err != nil {
		return models.ResolvedShop{}, err
	}

	sortItems(items)
	return models.ResolvedShop{Items: items, ExpirationDate: rotation.ExpirationDate}, nil
}

// sortItems orders items ascending by coin price, a missing price sorting as
// zero, with the category name as tiebreak.
func sortItems(items []models.Item) {
	sort.SliceStable(items, func(i, j int) bool {
		left, right := coinPriceOrZero(items[i]), coinPriceOrZero(items[j])
		if left != right {
			return left < right
		}
		return items[i].Category < items[j].Category
	})
}

func coinPriceOrZero(item models.Item) int {
	if item.CoinPrice == nil {
		return 0
	}
	return *item.CoinPrice
}
