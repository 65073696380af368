// Package game implements the client for the authenticated game platform
// backend. It encodes that backend's response envelope ({"data": ...}), its
// entity-token auth header, and its 401 failure mapping, on top of the shared
// httpclient factory.
package game

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"arena_companion/internal/models"
	"arena_companion/internal/pkg/httpclient"
	"arena_companion/internal/pkg/logger"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

var (
	// ErrUnauthorized indicates the backend rejected the entity token. The
	// persisted session has already been cleared by the time this is returned.
	ErrUnauthorized = errors.New("game: unauthorized")
	// ErrTooManyItemIDs indicates a catalog request exceeding the server-side
	// per-request item limit.
	ErrTooManyItemIDs = errors.New("game: too many item ids in one request")
)

// MaxItemsPerRequest is the maximum number of item ids the catalog endpoint
// accepts per call.
const MaxItemsPerRequest = 9

// defaultTokenLifetime is assumed when the backend omits a token expiration.
const defaultTokenLifetime = 24 * time.Hour

// TokenSource supplies the current entity token and reacts to the backend
// revoking it. Implemented by the session store.
type TokenSource interface {
	// Token returns the entity token if a currently valid session exists.
	Token() (string, bool)

	// Invalidate clears the persisted session after the backend reported the
	// token as no longer acceptable.
	Invalidate(ctx context.Context) error
}

// Client is the game platform API client.
type Client struct {
	http    *httpclient.Client
	tokens  TokenSource
	titleID int
	log     *logger.Logger
}

// BaseURL derives the backend base URL from the numeric title identifier.
func BaseURL(titleID int) string {
	return fmt.Sprintf("https://title-%d.api.arenabrawl.net", titleID)
}

// NewClient creates a game platform client. The token source may legally
// report no token; unauthenticated calls (login itself) go through the same
// client without an X-EntityToken header.
func NewClient(baseURL string, titleID int, tokens TokenSource, l *logger.Logger) (*Client, error) {
	c := &Client{tokens: tokens, titleID: titleID, log: l}

	hc, err := httpclient.New(baseURL,
		httpclient.WithHeaders(http.Header{"Content-Type": {"application/json"}}),
		httpclient.WithHeaderHook(c.attachToken),
		httpclient.WithResponseHandler(c.handleResponse),
		httpclient.WithHTTPClient(&http.Client{
			Timeout:   30 * time.Second,
			Transport: l.WithLogging(nil),
		}),
	)
	if err != nil {
		return nil, err
	}

	c.http = hc
	return c, nil
}

// attachToken adds the X-EntityToken header when a valid session token exists.
func (c *Client) attachToken(h http.Header) {
	if token, ok := c.tokens.Token(); ok {
		h.Set("X-EntityToken", token)
	}
}

// handleResponse maps the backend's failure modes and unwraps the optional
// data envelope. A 401 clears the persisted session: this is the single path
// by which the client self-heals from a token revoked or expired server-side
// while the session still looked valid locally.
func (c *Client) handleResponse(resp *http.Response) ([]byte, error) {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("game: read body: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		if err := c.tokens.Invalidate(resp.Request.Context()); err != nil {
			c.log.Warn("failed to clear session after 401", zap.Error(err))
		}
		return nil, ErrUnauthorized
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: status %d", httpclient.ErrRequestFailed, resp.StatusCode)
	}

	if data := gjson.GetBytes(body, "data"); data.Exists() {
		return []byte(data.Raw), nil
	}
	return body, nil
}

// entityTokenDTO is the wire shape of a freshly issued entity token.
type entityTokenDTO struct {
	EntityToken     string    `json:"EntityToken"`
	TokenExpiration time.Time `json:"TokenExpiration"`
}

func sessionFromToken(dto entityTokenDTO) models.Session {
	expiration := dto.TokenExpiration
	if expiration.IsZero() {
		expiration = time.Now().Add(defaultTokenLifetime)
	}
	return models.Session{EntityToken: dto.EntityToken, ExpirationDate: expiration}
}

// LoginWithEmail authenticates with email and password and returns the issued
// session. The title id accompanies the request body.
func (c *Client) LoginWithEmail(ctx context.Context, email, password string) (models.Session, error) {
	request := struct {
		TitleID  int    `json:"TitleId"`
		Email    string `json:"Email"`
		Password string `json:"Password"`
	}{TitleID: c.titleID, Email: email, Password: password}

	payload, err := c.http.Post(ctx, "Client/LoginWithEmailAddress", nil, request)
	if err != nil {
		return models.Session{}, err
	}

	var response struct {
		EntityToken entityTokenDTO `json:"EntityToken"`
	}
	if err := json.Unmarshal(payload, &response); err != nil {
		return models.Session{}, fmt.Errorf("game: decode login response: %w", err)
	}
	return sessionFromToken(response.EntityToken), nil
}

// RenewEntityToken exchanges the current (still valid) token for a fresh one.
func (c *Client) RenewEntityToken(ctx context.Context) (models.Session, error) {
	payload, err := c.http.Post(ctx, "Client/GetEntityToken", nil, struct{}{})
	if err != nil {
		return models.Session{}, err
	}

	var token entityTokenDTO
	if err := json.Unmarshal(payload, &token); err != nil {
		return models.Session{}, fmt.Errorf("game: decode entity token: %w", err)
	}
	return sessionFromToken(token), nil
}

// GetItems fetches catalog items by id. The backend enforces a maximum of
// MaxItemsPerRequest ids per call; callers needing more must batch.
func (c *Client) GetItems(ctx context.Context, ids []string) ([]models.ItemDTO, error) {
	if len(ids) > MaxItemsPerRequest {
		return nil, fmt.Errorf("%w: %d > %d", ErrTooManyItemIDs, len(ids), MaxItemsPerRequest)
	}

	request := struct {
		IDs []string `json:"Ids"`
	}{IDs: ids}

	payload, err := c.http.Post(ctx, "Catalog/GetItems", nil, request)
	if err != nil {
		return nil, err
	}

	var response struct {
		Items []models.ItemDTO `json:"Items"`
	}
	if err := json.Unmarshal(payload, &response); err != nil {
		return nil, fmt.Errorf("game: decode items: %w", err)
	}
	return response.Items, nil
}

// SearchItems runs a free-text catalog search, optionally filtered by category.
func (c *Client) SearchItems(ctx context.Context, search string, category models.Category) ([]models.ItemDTO, error) {
	request := struct {
		Search string `json:"Search"`
		Filter string `json:"Filter,omitempty"`
	}{Search: search, Filter: string(category)}

	payload, err := c.http.Post(ctx, "Catalog/SearchItems", nil, request)
	if err != nil {
		return nil, err
	}

	var response struct {
		Items []models.ItemDTO `json:"Items"`
	}
	if err := json.Unmarshal(payload, &response); err != nil {
		return nil, fmt.Errorf("game: decode search results: %w", err)
	}
	return response.Items, nil
}

// GetCoinShopRotation fetches the current rotation descriptor of the coin shop.
func (c *Client) GetCoinShopRotation(ctx context.Context) (models.ShopRotation, error) {
	payload, err := c.http.Post(ctx, "Catalog/GetStoreRotation", nil, struct{}{})
	if err != nil {
		return models.ShopRotation{}, err
	}

	var response struct {
		ItemIDs        []string  `json:"ItemIds"`
		ExpirationDate time.Time `json:"ExpirationDate"`
	}
	if err := json.Unmarshal(payload, &response); err != nil {
		return models.ShopRotation{}, fmt.Errorf("game: decode rotation: %w", err)
	}
	return models.ShopRotation{ItemIDs: response.ItemIDs, ExpirationDate: response.ExpirationDate}, nil
}

// PurchaseItem buys one item with the given currency at the given price.
func (c *Client) PurchaseItem(ctx context.Context, itemID, currencyID string, price int) (models.PurchaseReceipt, error) {
	request := struct {
		ItemID     string `json:"ItemId"`
		CurrencyID string `json:"CurrencyId"`
		Price      int    `json:"Price"`
	}{ItemID: itemID, CurrencyID: currencyID, Price: price}

	payload, err := c.http.Post(ctx, "Catalog/PurchaseInventoryItems", nil, request)
	if err != nil {
		return models.PurchaseReceipt{}, err
	}

	var receipt models.PurchaseReceipt
	if err := json.Unmarshal(payload, &receipt); err != nil {
		return models.PurchaseReceipt{}, fmt.Errorf("game: decode receipt: %w", err)
	}
	return receipt, nil
}

// GetInventory returns the player's inventory entries. Currency balances are
// inventory entries keyed by the well-known currency ids.
func (c *Client) GetInventory(ctx context.Context) ([]models.InventoryEntry, error) {
	payload, err := c.http.Post(ctx, "Inventory/GetInventoryItems", nil, struct{}{})
	if err != nil {
		return nil, err
	}

	var response struct {
		Items []struct {
			ID     string `json:"Id"`
			Amount int    `json:"Amount"`
		} `json:"Items"`
	}
	if err := json.Unmarshal(payload, &response); err != nil {
		return nil, fmt.Errorf("game: decode inventory: %w", err)
	}

	entries := make([]models.InventoryEntry, 0, len(response.Items))
	for _, item := range response.Items {
		entries = append(entries, models.InventoryEntry{ID: item.ID, Amount: item.Amount})
	}
	return entries, nil
}

// SendRecoveryEmail asks the backend to send an account recovery email.
func (c *Client) SendRecoveryEmail(ctx context.Context, email string) error {
	request := struct {
		TitleID int    `json:"TitleId"`
		Email   string `json:"Email"`
	}{TitleID: c.titleID, Email: email}

	_, err := c.http.Post(ctx, "Client/SendAccountRecoveryEmail", nil, request)
	return err
}
