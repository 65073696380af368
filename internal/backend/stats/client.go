// Package stats implements the client for the unauthenticated community stats
// backend. Every request asks for XML output via a fixed query parameter, and
// responses may or may not be wrapped in a <response> envelope element.
package stats

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"arena_companion/internal/models"
	"arena_companion/internal/pkg/httpclient"
	"arena_companion/internal/pkg/logger"
)

// Client is the community stats API client.
type Client struct {
	http *httpclient.Client
	log  *logger.Logger
}

// NewClient creates a community stats client bound to baseURL.
func NewClient(baseURL string, l *logger.Logger) (*Client, error) {
	hc, err := httpclient.New(baseURL,
		httpclient.WithQuery(url.Values{"xml": {"1"}}),
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

// decode unmarshals an XML payload into v, first unwrapping the optional
// <response> envelope element when present. The payload fields sit directly
// under the envelope, so the inner XML has no single root of its own and gets
// a synthetic one before unmarshalling.
func decode(body []byte, v any) error {
	var envelope struct {
		XMLName xml.Name
		Inner   []byte `xml:",innerxml"`
	}
	if err := xml.Unmarshal(body, &envelope); err != nil {
		return fmt.Errorf("stats: decode response: %w", err)
	}

	payload := body
	if envelope.XMLName.Local == "response" {
		payload = []byte("<payload>" + string(envelope.Inner) + "</payload>")
	}
	if err := xml.Unmarshal(payload, v); err != nil {
		return fmt.Errorf("stats: decode response payload: %w", err)
	}
	return nil
}

type leaderboardEntryXML struct {
	SteamID  string `xml:"steamId"`
	Name     string `xml:"name"`
	Position int    `xml:"position"`
	Value    int    `xml:"value"`
}

type leaderboardPageXML struct {
	Total     int                   `xml:"total"`
	EndOffset int                   `xml:"endOffset"`
	Entries   []leaderboardEntryXML `xml:"entries>entry"`
}

// LeaderboardPage fetches one page of the named leaderboard starting at
// startOffset. The returned page carries the backend's authoritative total and
// the inclusive end offset of the page, which drives pagination.
func (c *Client) LeaderboardPage(ctx context.Context, board string, startOffset int) (models.LeaderboardPage, error) {
	query := url.Values{"start": {strconv.Itoa(startOffset)}}

	body, err := c.http.Get(ctx, "leaderboards/"+board, query)
	if err != nil {
		return models.LeaderboardPage{}, err
	}

	var page leaderboardPageXML
	if err := decode(body, &page); err != nil {
		return models.LeaderboardPage{}, err
	}

	entries := make([]models.LeaderboardEntry, 0, len(page.Entries))
	for _, entry := range page.Entries {
		entries = append(entries, models.LeaderboardEntry{
			SteamID:        entry.SteamID,
			DisplayName:    entry.Name,
			Position:       entry.Position,
			StatisticValue: entry.Value,
		})
	}
	return models.LeaderboardPage{Entries: entries, Total: page.Total, EndOffset: page.EndOffset}, nil
}

type playerRatingXML struct {
	SteamID    string `xml:"steamId"`
	Name       string `xml:"name"`
	Rating     int    `xml:"rating"`
	PeakRating int    `xml:"peakRating"`
	Games      int    `xml:"games"`
	Wins       int    `xml:"wins"`
}

// PlayerRating fetches a player's ranked rating summary.
func (c *Client) PlayerRating(ctx context.Context, steamID string) (models.PlayerRating, error) {
	body, err := c.http.Get(ctx, "players/"+steamID+"/rating", nil)
	if err != nil {
		return models.PlayerRating{}, err
	}

	var rating playerRatingXML
	if err := decode(body, &rating); err != nil {
		return models.PlayerRating{}, err
	}
	return models.PlayerRating{
		SteamID:     rating.SteamID,
		DisplayName: rating.Name,
		Rating:      rating.Rating,
		PeakRating:  rating.PeakRating,
		Games:       rating.Games,
		Wins:        rating.Wins,
	}, nil
}
