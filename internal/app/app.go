// Package app provides the core application logic of the companion app.
// It composes the session store, the auth service, and the shop, catalog,
// leaderboard, and e-sports resolvers behind one surface consumed by the CLI.
package app

import (
	"context"
	"errors"

	"arena_companion/internal/auth"
	"arena_companion/internal/catalog"
	"arena_companion/internal/leaderboard"
	"arena_companion/internal/models"
	"arena_companion/internal/pkg/logger"
	"arena_companion/internal/ranked"
	"arena_companion/internal/session"
	"arena_companion/internal/shop"
)

// Predefined errors for purchase requests.
var (
	// ErrUnknownItem indicates the requested item does not exist in the catalog.
	ErrUnknownItem = errors.New("app: unknown item")
	// ErrItemNotPurchasable indicates the item carries no price in the
	// requested currency.
	ErrItemNotPurchasable = errors.New("app: item not purchasable in requested currency")
)

// GameBackend is the subset of the game platform client used directly by the
// app layer (everything else goes through the resolvers).
type GameBackend interface {
	SearchItems(ctx context.Context, search string, category models.Category) ([]models.ItemDTO, error)
	PurchaseItem(ctx context.Context, itemID, currencyID string, price int) (models.PurchaseReceipt, error)
	GetInventory(ctx context.Context) ([]models.InventoryEntry, error)
	SendRecoveryEmail(ctx context.Context, email string) error
}

// StatsBackend is the subset of the community stats client used by the app layer.
type StatsBackend interface {
	PlayerRating(ctx context.Context, steamID string) (models.PlayerRating, error)
}

// EsportsBackend is the e-sports client surface used by the app layer.
type EsportsBackend interface {
	Tournaments(ctx context.Context) ([]models.Tournament, error)
	PowerRankings(ctx context.Context, region string) ([]models.RankingEntry, error)
}

// PlayerProfile pairs a player's rating summary with the derived ranked tier.
type PlayerProfile struct {
	Rating models.PlayerRating
	Tier   ranked.Tier
}

// Deps aggregates the dependencies required to construct an App.
type Deps struct {
	Session      *session.Store
	Auth         *auth.Service
	Shop         *shop.Resolver
	Catalog      *catalog.Resolver
	Leaderboards *leaderboard.Aggregator
	Game         GameBackend
	Stats        StatsBackend
	Esports      EsportsBackend
	Log          *logger.Logger
}

// App encapsulates the application logic and dependencies required to process
// requests.
type App struct {
	session      *session.Store
	auth         *auth.Service
	shop         *shop.Resolver
	catalog      *catalog.Resolver
	leaderboards *leaderboard.Aggregator
	game         GameBackend
	stats        StatsBackend
	esports      EsportsBackend
	log          *logger.Logger
}

// NewApp creates and returns a new instance of App with the provided dependencies.
func NewApp(deps Deps) *App {
	return &App{
		session:      deps.Session,
		auth:         deps.Auth,
		shop:         deps.Shop,
		catalog:      deps.Catalog,
		leaderboards: deps.Leaderboards,
		game:         deps.Game,
		stats:        deps.Stats,
		esports:      deps.Esports,
		log:          deps.Log,
	}
}

// SessionState reports the current session store state.
func (app *App) SessionState() session.State {
	return app.session.State()
}

// ProcessLogin authenticates and persists the resulting session.
func (app *App) ProcessLogin(ctx context.Context, email, password string) error {
	return app.auth.Login(ctx, email, password)
}

// ProcessLogout clears the session and all cached query data.
func (app *App) ProcessLogout(ctx context.Context) error {
	return app.auth.Logout(ctx)
}

// ProcessShop resolves the current coin shop rotation into sorted items.
func (app *App) ProcessShop(ctx context.Context) (models.ResolvedShop, error) {
	return app.shop.Current(ctx)
}

// ProcessLeaderboard retrieves all entries of the named leaderboard.
func (app *App) ProcessLeaderboard(ctx context.Context, board string) ([]models.LeaderboardEntry, error) {
	return app.leaderboards.All(ctx, board)
}

// ProcessTournaments lists e-sports tournaments.
func (app *App) ProcessTournaments(ctx context.Context) ([]models.Tournament, error) {
	return app.esports.Tournaments(ctx)
}

// ProcessRankings lists the e-sports power rankings for a region.
func (app *App) ProcessRankings(ctx context.Context, region string) ([]models.RankingEntry, error) {
	return app.esports.PowerRankings(ctx, region)
}

// ProcessSearch runs a free-text catalog search, optionally filtered by
// category, and normalizes the matching items.
func (app *App) ProcessSearch(ctx context.Context, search string, category models.Category) ([]models.Item, error) {
	dtos, err := app.game.SearchItems(ctx, search, category)
	if err != nil {
		return nil, err
	}

	items := make([]models.Item, 0, len(dtos))
	for _, dto := range dtos {
		item, err := app.catalog.Normalize(dto)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

// ProcessBuy resolves the item, picks its price in the requested currency, and
// performs the purchase against the game backend.
func (app *App) ProcessBuy(ctx context.Context, itemID, currencyID string) (models.PurchaseReceipt, error) {
	items, err := app.catalog.Resolve(ctx, []string{itemID})
	if err != nil {
		return models.PurchaseReceipt{}, err
	}
	if len(items) == 0 {
		return models.PurchaseReceipt{}, ErrUnknownItem
	}

	item := items[0]
	var price *int
	switch currencyID {
	case models.CoinsCurrencyID:
		price = item.CoinPrice
	case models.BucksCurrencyID:
		price = item.BuckPrice
	}
	if price == nil {
		return models.PurchaseReceipt{}, ErrItemNotPurchasable
	}

	return app.game.PurchaseItem(ctx, itemID, currencyID, *price)
}

// ProcessBalances returns the player's currency balances, in coins, bucks,
// medals order. Currencies absent from the inventory report a zero amount.
func (app *App) ProcessBalances(ctx context.Context) ([]models.InventoryEntry, error) {
	inventory, err := app.game.GetInventory(ctx)
	if err != nil {
		return nil, err
	}

	amounts := make(map[string]int, len(inventory))
	for _, entry := range inventory {
		amounts[entry.ID] = entry.Amount
	}

	currencyIDs := []string{models.CoinsCurrencyID, models.BucksCurrencyID, models.MedalsCurrencyID}
	balances := make([]models.InventoryEntry, 0, len(currencyIDs))
	for _, id := range currencyIDs {
		balances = append(balances, models.InventoryEntry{ID: id, Amount: amounts[id]})
	}
	return balances, nil
}

// ProcessProfile retrieves a player's rating summary and derives the ranked tier.
func (app *App) ProcessProfile(ctx context.Context, steamID string) (PlayerProfile, error) {
	rating, err := app.stats.PlayerRating(ctx, steamID)
	if err != nil {
		return PlayerProfile{}, err
	}
	return PlayerProfile{Rating: rating, Tier: ranked.TierFor(rating.Rating)}, nil
}

// ProcessRecovery asks the game backend to send an account recovery email.
func (app *App) ProcessRecovery(ctx context.Context, email string) error {
	return app.game.SendRecoveryEmail(ctx, email)
}
