// Package esports implements the client for the unauthenticated e-sports
// backend. The backend speaks flat JSON with no envelope, so the generic
// factory contract is all it needs.
package esports

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"arena_companion/internal/models"
	"arena_companion/internal/pkg/httpclient"
	"arena_companion/internal/pkg/logger"
)

// Client is the e-sports API client.
type Client struct {
	http *httpclient.Client
	log  *logger.Logger
}

// NewClient creates an e-sports client bound to baseURL.
func NewClient(baseURL string, l *logger.Logger) (*Client, error) {
	hc, err := httpclient.New(baseURL,
		httpclient.WithHTTPClient(&http.Client{
			Timeout:   30 * time.Second,
			Transport: l.WithLogging(nil),
		}),
	)
	if err != nil {
		return nil, err
	}
	return &Client{http: hc, log: l}, nil
}

// Tournaments lists upcoming and running tournaments.
func (c *Client) Tournaments(ctx context.Context) ([]models.Tournament, error) {
	body, err := c.http.Get(ctx, "tournaments", nil)
	if err != nil {
		return nil, err
	}

	var tournaments []models.Tournament
	if err := json.Unmarshal(body, &tournaments); err != nil {
		return nil, fmt.Errorf("esports: decode tournaments: %w", err)
	}
	return tournaments, nil
}

// PowerRankings lists the current power rankings for a region.
func (c *Client) PowerRankings(ctx context.Context, region string) ([]models.RankingEntry, error) {
	query := url.Values{"region": {region}}

	body, err := c.http.Get(ctx, "rankings", query)
	if err != nil {
		return nil, err
	}

	var rankings []models.RankingEntry
	if err := json.Unmarshal(body, &rankings); err != nil {
		return nil, fmt.Errorf("esports: decode rankings: %w", err)
	}
	return rankings, nil
}
