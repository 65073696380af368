package game

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"arena_companion/internal/models"
	"arena_companion/internal/pkg/httpclient"
	"arena_companion/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTokens is a TokenSource backed by plain fields.
type fakeTokens struct {
	token       string
	valid       bool
	invalidated bool
}

func (f *fakeTokens) Token() (string, bool) {
	if !f.valid {
		return "", false
	}
	return f.token, true
}

func (f *fakeTokens) Invalidate(ctx context.Context) error {
	f.valid = false
	f.invalidated = true
	return nil
}

func newTestClient(t *testing.T, serverURL string, tokens TokenSource) *Client {
	t.Helper()
	l, err := logger.CreateLogger("error")
	require.NoError(t, err)

	client, err := NewClient(serverURL, 4207, tokens, l)
	require.NoError(t, err)
	return client
}

func TestLoginWithEmailUnwrapsEnvelope(t *testing.T) {
	expiration := time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/Client/LoginWithEmailAddress", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body struct {
			TitleID  int    `json:"TitleId"`
			Email    string `json:"Email"`
			Password string `json:"Password"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, 4207, body.TitleID)
		assert.Equal(t, "player@example.com", body.Email)

		fmt.Fprintf(w, `{"data":{"EntityToken":{"EntityToken":"tok-1","TokenExpiration":%q}}}`,
			expiration.Format(time.RFC3339))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, &fakeTokens{})

	session, err := client.LoginWithEmail(context.Background(), "player@example.com", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, "tok-1", session.EntityToken)
	assert.True(t, expiration.Equal(session.ExpirationDate))
}

func TestTokenHeaderAttachedOnlyWhenValid(t *testing.T) {
	var gotHeaders []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeaders = append(gotHeaders, r.Header.Get("X-EntityToken"))
		w.Write([]byte(`{"data":{"Items":[]}}`))
	}))
	defer server.Close()

	tokens := &fakeTokens{token: "tok-2", valid: true}
	client := newTestClient(t, server.URL, tokens)

	_, err := client.GetItems(context.Background(), []string{"item-1"})
	require.NoError(t, err)

	tokens.valid = false
	_, err = client.GetItems(context.Background(), []string{"item-1"})
	require.NoError(t, err)

	require.Len(t, gotHeaders, 2)
	assert.Equal(t, "tok-2", gotHeaders[0])
	assert.Empty(t, gotHeaders[1], "no header must be sent without a valid session")
}

func TestUnauthorizedClearsSession(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	tokens := &fakeTokens{token: "revoked", valid: true}
	client := newTestClient(t, server.URL, tokens)

	_, err := client.GetItems(context.Background(), []string{"item-1"})
	assert.True(t, errors.Is(err, ErrUnauthorized))
	assert.True(t, tokens.invalidated, "a 401 must clear the persisted session")
	assert.False(t, tokens.valid)
}

func TestGenericBackendFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	tokens := &fakeTokens{}
	client := newTestClient(t, server.URL, tokens)

	_, err := client.GetItems(context.Background(), []string{"item-1"})
	assert.True(t, errors.Is(err, httpclient.ErrRequestFailed))
	assert.False(t, tokens.invalidated, "only 401 clears the session")
}

func TestGetItemsRejectsOversizedRequest(t *testing.T) {
	client := newTestClient(t, "http://localhost", &fakeTokens{})

	ids := make([]string, MaxItemsPerRequest+1)
	for i := range ids {
		ids[i] = fmt.Sprintf("item-%d", i)
	}

	_, err := client.GetItems(context.Background(), ids)
	assert.True(t, errors.Is(err, ErrTooManyItemIDs))
}

func TestEnvelopeIsOptional(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// No data wrapper; the body is the payload.
		w.Write([]byte(`{"Items":[{"Id":"item-1","Title":"Raven Talon"}]}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, &fakeTokens{})

	items, err := client.GetItems(context.Background(), []string{"item-1"})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, models.ItemDTO{ID: "item-1", Title: "Raven Talon"}, items[0])
}

func TestSearchItemsSendsQueryAndFilter(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/Catalog/SearchItems", r.URL.Path)

		var body struct {
			Search string `json:"Search"`
			Filter string `json:"Filter"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "raven", body.Search)
		assert.Equal(t, "weapon_skins", body.Filter)

		w.Write([]byte(`{"data":{"Items":[{"Id":"item-1","Title":"Raven Talon"},{"Id":"item-2","Title":"Raven Shade"}]}}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, &fakeTokens{})

	items, err := client.SearchItems(context.Background(), "raven", models.CategoryWeaponSkin)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "item-1", items[0].ID)
	assert.Equal(t, "Raven Shade", items[1].Title)
}

func TestGetCoinShopRotation(t *testing.T) {
	expiration := time.Date(2030, 6, 1, 0, 0, 0, 0, time.UTC)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/Catalog/GetStoreRotation", r.URL.Path)
		fmt.Fprintf(w, `{"data":{"ItemIds":["a","b"],"ExpirationDate":%q}}`, expiration.Format(time.RFC3339))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, &fakeTokens{})

	rotation, err := client.GetCoinShopRotation(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, rotation.ItemIDs)
	assert.True(t, expiration.Equal(rotation.ExpirationDate))
}
