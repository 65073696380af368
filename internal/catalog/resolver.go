// Package catalog resolves item ids into normalized shop items. The game
// backend enforces a fixed per-request item limit, so requested ids are
// partitioned into bounded batches fetched concurrently and reassembled in
// input order.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"arena_companion/internal/models"
	"arena_companion/internal/pkg/logger"
	"arena_companion/internal/pkg/querycache"

	"golang.org/x/sync/errgroup"
)

// BatchLimit matches the catalog endpoint's server-side maximum of item ids
// per request.
const BatchLimit = 9

// ErrUnknownRarity indicates a backend rarity value outside the closed lookup
// table. An unmapped value is a data error, not something to paper over.
var ErrUnknownRarity = errors.New("catalog: unknown rarity value")

// rarityByValue is the closed mapping from the backend's integer rarity
// values to domain rarities.
var rarityByValue = map[int]models.Rarity{
	0: models.RarityCommon,
	1: models.RarityUncommon,
	2: models.RarityRare,
	3: models.RarityEpic,
	4: models.RarityLegendary,
}

// valueByRarity is the inverse of rarityByValue.
var valueByRarity = map[models.Rarity]int{
	models.RarityCommon:    0,
	models.RarityUncommon:  1,
	models.RarityRare:      2,
	models.RarityEpic:      3,
	models.RarityLegendary: 4,
}

// ItemsBackend is the subset of the game platform client used to fetch items.
type ItemsBackend interface {
	GetItems(ctx context.Context, ids []string) ([]models.ItemDTO, error)
}

// Resolver fetches and normalizes catalog items.
type Resolver struct {
	backend    ItemsBackend
	cache      *querycache.Cache
	cdnBaseURL string
	log        *logger.Logger
}

// NewResolver creates a catalog resolver. Resolved results are cached in the
// query cache, which the session layer purges on logout.
func NewResolver(backend ItemsBackend, cache *querycache.Cache, cdnBaseURL string, l *logger.Logger) *Resolver {
	return &Resolver{backend: backend, cache: cache, cdnBaseURL: cdnBaseURL, log: l}
}

// Resolve returns normalized items for the given ids, in the exact order the
// ids were requested, regardless of per-batch completion order. If any batch
// fails the whole resolution fails and yields no items: a half-populated shop
// is worse than a loading state. Empty input short-circuits without any
// network call.
func (r *Resolver) Resolve(ctx context.Context, ids []string) ([]models.Item, error) {
	if len(ids) == 0 {
		return []models.Item{}, nil
	}

	key := cacheKey(ids)
	if cached, ok := r.cache.Get(key); ok {
		return cached.([]models.Item), nil
	}

	batches := partition(ids, BatchLimit)
	resolved := make([][]models.Item, len(batches))

	group, groupCtx := errgroup.WithContext(ctx)
	for i, batch := range batches {
		i, batch := i, batch
		group.Go(func() error {
			dtos, err := r.backend.GetItems(groupCtx, batch)
			if err != nil {
				return err
			}
			items, err := r.normalizeBatch(batch, dtos)
			if err != nil {
				return err
			}
			resolved[i] = items
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	items := make([]models.Item, 0, len(ids))
	for _, batch := range resolved {
		items = append(items, batch...)
	}

	r.cache.Set(key, items)
	return items, nil
}

// normalizeBatch orders a batch's items by the requested id order. Ids the
// backend did not return are skipped.
func (r *Resolver) normalizeBatch(ids []string, dtos []models.ItemDTO) ([]models.Item, error) {
	byID := make(map[string]models.ItemDTO, len(dtos))
	for _, dto := range dtos {
		byID[dto.ID] = dto
	}

	items := make([]models.Item, 0, len(ids))
	for _, id := range ids {
		dto, ok := byID[id]
		if !ok {
			continue
		}
		item, err := r.Normalize(dto)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

// Normalize maps a wire DTO onto the uniform item shape. Price is looked up by
// scanning the price-option list for the well-known currency ids, taking the
// first matching amount; absence means the item is not purchasable in that
// currency. The image URL is synthesized from the category and the
// server-provided friendly id.
func (r *Resolver) Normalize(dto models.ItemDTO) (models.Item, error) {
	rarity, ok := rarityByValue[dto.Rarity]
	if !ok {
		return models.Item{}, fmt.Errorf("%w: %d", ErrUnknownRarity, dto.Rarity)
	}

	return models.Item{
		ID:        dto.ID,
		Name:      dto.Title,
		Category:  models.Category(dto.ContentType),
		Rarity:    rarity,
		CoinPrice: priceFor(dto.PriceOptions, models.CoinsCurrencyID),
		BuckPrice: priceFor(dto.PriceOptions, models.BucksCurrencyID),
		ImageURL:  fmt.Sprintf("%s/%s/%s.png", r.cdnBaseURL, dto.ContentType, dto.FriendlyID),
	}, nil
}

// Denormalize maps a normalized item back onto the wire DTO shape. The friendly
// id is recovered from the synthesized image URL.
func (r *Resolver) Denormalize(item models.Item) models.ItemDTO {
	options := make([]models.PriceOptionDTO, 0, 2)
	if item.CoinPrice != nil {
		options = append(options, models.PriceOptionDTO{CurrencyID: models.CoinsCurrencyID, Amount: *item.CoinPrice})
	}
	if item.BuckPrice != nil {
		options = append(options, models.PriceOptionDTO{CurrencyID: models.BucksCurrencyID, Amount: *item.BuckPrice})
	}

	return models.ItemDTO{
		ID:           item.ID,
		Title:        item.Name,
		FriendlyID:   friendlyIDFromURL(item.ImageURL),
		ContentType:  string(item.Category),
		Rarity:       valueByRarity[item.Rarity],
		PriceOptions: options,
	}
}

func friendlyIDFromURL(imageURL string) string {
	slash := strings.LastIndex(imageURL, "/")
	if slash < 0 {
		return ""
	}
	return strings.TrimSuffix(imageURL[slash+1:], ".png")
}

func priceFor(options []models.PriceOptionDTO, currencyID string) *int {
	for _, option := range options {
		if option.CurrencyID == currencyID {
			amount := option.Amount
			return &amount
		}
	}
	return nil
}

func partition(ids []string, size int) [][]string {
	batches := make([][]string, 0, (len(ids)+size-1)/size)
	for start := 0; start < len(ids); start += size {
		end := start + size
		if end > len(ids) {
			end = len(ids)
		}
		batches = append(batches, ids[start:end])
	}
	return batches
}

func cacheKey(ids []string) string {
	return "items:" + strings.Join(ids, ",")
}
