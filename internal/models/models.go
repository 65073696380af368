// Package models defines the data structures used throughout the application.
// It includes the persisted session record, normalized shop items, inventory
// entries, shop rotations, leaderboard entries, and the wire-level DTOs sent by
// the game platform backend.
package models

import "time"

// Well-known currency item identifiers. Currency balances are ordinary
// inventory entries keyed by these constant ids, not a separate type.
const (
	CoinsCurrencyID  = "currency_coins"
	BucksCurrencyID  = "currency_bucks"
	MedalsCurrencyID = "currency_medals"
)

// Session represents the authentication session issued by the game backend.
// It is persisted wholesale as a single record on device storage; absence of
// the record means logged out.
type Session struct {
	EntityToken    string    `json:"entityToken"`
	ExpirationDate time.Time `json:"expirationDate"`
}

// ValidAt reports whether the session's expiration date is strictly in the
// future at the given instant. Validity is recomputed on every call, never
// cached as a boolean.
func (s Session) ValidAt(now time.Time) bool {
	return s.ExpirationDate.After(now)
}

// ShouldRenewAt reports whether the session is still valid but has less than
// threshold of its lifetime remaining, meaning a proactive token renewal is due.
func (s Session) ShouldRenewAt(now time.Time, threshold time.Duration) bool {
	return s.ValidAt(now) && s.ExpirationDate.Sub(now) < threshold
}

// Rarity is the domain rarity of an item, derived from the integer rarity
// value sent by the backend. The backend never sends rarity as a string.
type Rarity string

// Known rarities, from most to least common.
const (
	RarityCommon    Rarity = "Common"
	RarityUncommon  Rarity = "Uncommon"
	RarityRare      Rarity = "Rare"
	RarityEpic      Rarity = "Epic"
	RarityLegendary Rarity = "Legendary"
)

// Category is the content category an item belongs to. The backend transmits
// it as the item's content type string.
type Category string

// Known item categories.
const (
	CategoryLegend     Category = "legends"
	CategoryWeaponSkin Category = "weapon_skins"
	CategoryEmote      Category = "emotes"
	CategoryColor      Category = "colors"
	CategoryPodium     Category = "podiums"
)

// Item is a normalized shop item. Prices are optional; a nil price means the
// item is not purchasable in that currency.
type Item struct {
	ID        string
	Name      string
	Category  Category
	Rarity    Rarity
	CoinPrice *int
	BuckPrice *int
	ImageURL  string
}

// InventoryEntry represents one entry of the player's inventory, including
// currency balances (see the currency id constants above).
type InventoryEntry struct {
	ID     string `json:"id"`
	Amount int    `json:"amount"`
}

// ShopRotation describes the server-controlled, time-boxed set of item ids
// currently purchasable in the coin shop.
type ShopRotation struct {
	ItemIDs        []string
	ExpirationDate time.Time
}

// ResolvedShop is a ShopRotation joined against the item catalog.
type ResolvedShop struct {
	Items          []Item
	ExpirationDate time.Time
}

// PurchaseReceipt is returned by the game backend after a successful purchase.
type PurchaseReceipt struct {
	TransactionID string `json:"TransactionId"`
}

// LeaderboardEntry is one row of a community leaderboard.
type LeaderboardEntry struct {
	SteamID        string
	DisplayName    string
	Position       int
	StatisticValue int
}

// LeaderboardPage is a single page of a paginated leaderboard, carrying the
// backend's authoritative total entry count and the inclusive end offset of
// the page just returned.
type LeaderboardPage struct {
	Entries   []LeaderboardEntry
	Total     int
	EndOffset int
}

// PlayerRating is a player's ranked rating summary from the community stats
// backend.
type PlayerRating struct {
	SteamID     string
	DisplayName string
	Rating      int
	PeakRating  int
	Games       int
	Wins        int
}

// Tournament is an e-sports tournament listing.
type Tournament struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Region    string    `json:"region"`
	StartsAt  time.Time `json:"startsAt"`
	PrizePool int       `json:"prizePool"`
}

// RankingEntry is one row of the e-sports power rankings.
type RankingEntry struct {
	Position   int    `json:"position"`
	PlayerName string `json:"player"`
	Region     string `json:"region"`
	Points     int    `json:"points"`
}

// ItemDTO is the wire shape of a catalog item as sent by the game backend.
type ItemDTO struct {
	ID           string           `json:"Id"`
	Title        string           `json:"Title"`
	FriendlyID   string           `json:"FriendlyId"`
	ContentType  string           `json:"ContentType"`
	Rarity       int              `json:"Rarity"`
	PriceOptions []PriceOptionDTO `json:"PriceOptions"`
}

// PriceOptionDTO is one purchase option of a catalog item. An item carries one
// option per currency it can be bought with.
type PriceOptionDTO struct {
	CurrencyID string `json:"CurrencyId"`
	Amount     int    `json:"Amount"`
}
