package integrations

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"sync"
	"testing"
	"time"

	"arena_companion/internal/app"
	"arena_companion/internal/auth"
	"arena_companion/internal/backend/game"
	"arena_companion/internal/backend/stats"
	"arena_companion/internal/catalog"
	"arena_companion/internal/leaderboard"
	"arena_companion/internal/models"
	"arena_companion/internal/pkg/logger"
	"arena_companion/internal/pkg/querycache"
	"arena_companion/internal/session"
	"arena_companion/internal/shop"
	"arena_companion/internal/storage"

	"github.com/stretchr/testify/suite"
)

const testTitleID = 4207

// fakeGameServer mimics the game platform backend: JSON data envelope,
// X-EntityToken header auth, and the catalog/rotation/login endpoints.
type fakeGameServer struct {
	mu          sync.Mutex
	items       map[string]models.ItemDTO
	rotationIDs []string
	itemBatches [][]string
	tokensSeen  []string
}

func (f *fakeGameServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.tokensSeen = append(f.tokensSeen, r.Header.Get("X-EntityToken"))
	f.mu.Unlock()

	respond := func(data any) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"data": data})
	}

	switch r.URL.Path {
	case "/Client/LoginWithEmailAddress":
		respond(map[string]any{
			"EntityToken": map[string]any{
				"EntityToken":     "integration-token",
				"TokenExpiration": time.Now().Add(24 * time.Hour).Format(time.RFC3339),
			},
		})

	case "/Catalog/GetStoreRotation":
		respond(map[string]any{
			"ItemIds":        f.rotationIDs,
			"ExpirationDate": time.Now().Add(6 * time.Hour).Format(time.RFC3339),
		})

	case "/Catalog/GetItems":
		var request struct {
			IDs []string `json:"Ids"`
		}
		json.NewDecoder(r.Body).Decode(&request)

		f.mu.Lock()
		f.itemBatches = append(f.itemBatches, request.IDs)
		f.mu.Unlock()

		dtos := make([]models.ItemDTO, 0, len(request.IDs))
		for _, id := range request.IDs {
			dtos = append(dtos, f.items[id])
		}
		respond(map[string]any{"Items": dtos})

	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (f *fakeGameServer) batchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.itemBatches)
}

func (f *fakeGameServer) lastToken() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.tokensSeen[len(f.tokensSeen)-1]
}

// fakeStatsServer serves an XML leaderboard of 250 entries in pages of 100,
// wrapped in the optional response envelope.
type fakeStatsServer struct {
	mu      sync.Mutex
	total   int
	offsets []int
}

func (f *fakeStatsServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start, _ := strconv.Atoi(r.URL.Query().Get("start"))

	f.mu.Lock()
	f.offsets = append(f.offsets, start)
	f.mu.Unlock()

	end := start + 100
	if end > f.total {
		end = f.total
	}

	fmt.Fprint(w, "<response>")
	fmt.Fprintf(w, "<total>%d</total><endOffset>%d</endOffset><entries>", f.total, end-1)
	for i := start; i < end; i++ {
		fmt.Fprintf(w, "<entry><steamId>7656%04d</steamId><name>player-%d</name><position>%d</position><value>%d</value></entry>",
			i, i, i+1, 3000-i)
	}
	fmt.Fprint(w, "</entries></response>")
}

type IntegrationTestSuite struct {
	suite.Suite
	gameBackend  *fakeGameServer
	statsBackend *fakeStatsServer
	gameServer   *httptest.Server
	statsServer  *httptest.Server
	db           *storage.SQLite
	sessionStore *session.Store
	companion    *app.App
}

func (s *IntegrationTestSuite) SetupSuite() {
	var l *logger.Logger
	var err error
	if l, err = logger.CreateLogger("error"); err != nil {
		log.Fatal("Failed to create logger:", err)
	}

	s.gameBackend = &fakeGameServer{
		items:       map[string]models.ItemDTO{},
		rotationIDs: make([]string, 12),
	}
	for i := 0; i < 12; i++ {
		id := fmt.Sprintf("item-%02d", i)
		s.gameBackend.rotationIDs[i] = id
		s.gameBackend.items[id] = models.ItemDTO{
			ID:          id,
			Title:       "Item " + id,
			FriendlyID:  "friendly-" + id,
			ContentType: string(models.CategoryWeaponSkin),
			Rarity:      i % 5,
			PriceOptions: []models.PriceOptionDTO{
				{CurrencyID: models.CoinsCurrencyID, Amount: (12 - i) * 100},
			},
		}
	}
	s.statsBackend = &fakeStatsServer{total: 250}

	s.gameServer = httptest.NewServer(s.gameBackend)
	s.statsServer = httptest.NewServer(s.statsBackend)

	s.db, err = storage.NewSQLite(filepath.Join(s.T().TempDir(), "companion.db"), l)
	s.Require().NoError(err, "Error opening test storage")

	cache, err := querycache.New(querycache.DefaultSize)
	s.Require().NoError(err)

	s.sessionStore = session.NewStore(s.db, cache, l)
	s.Require().NoError(s.sessionStore.Load(context.Background()))

	gameClient, err := game.NewClient(s.gameServer.URL, testTitleID, s.sessionStore, l)
	s.Require().NoError(err)
	statsClient, err := stats.NewClient(s.statsServer.URL, l)
	s.Require().NoError(err)

	catalogResolver := catalog.NewResolver(gameClient, cache, "https://cdn.arenabrawl.net", l)

	s.companion = app.NewApp(app.Deps{
		Session:      s.sessionStore,
		Auth:         auth.NewService(s.sessionStore, gameClient, l),
		Shop:         shop.NewResolver(gameClient, catalogResolver, l),
		Catalog:      catalogResolver,
		Leaderboards: leaderboard.NewAggregator(statsClient, l),
		Game:         gameClient,
		Stats:        statsClient,
		Log:          l,
	})
}

func (s *IntegrationTestSuite) TearDownSuite() {
	s.gameServer.Close()
	s.statsServer.Close()
	s.db.Close()
}

func (s *IntegrationTestSuite) TestLoginShopLogout() {
	ctx := context.Background()

	err := s.companion.ProcessLogin(ctx, "player@example.com", "password")
	s.Require().NoError(err, "Error logging in")
	s.Require().Equal(session.StateValid, s.companion.SessionState())

	resolved, err := s.companion.ProcessShop(ctx)
	s.Require().NoError(err, "Error resolving the shop rotation")
	s.Require().Len(resolved.Items, 12)

	// 12 rotation items split into batches of at most 9.
	s.Require().Equal(2, s.gameBackend.batchCount(), "Expected two catalog batches for 12 items")
	for _, batch := range s.gameBackend.itemBatches {
		s.Require().LessOrEqual(len(batch), game.MaxItemsPerRequest)
	}
	s.Require().Equal("integration-token", s.gameBackend.lastToken(), "Catalog requests must carry the entity token")

	// Prices descend with the item index, so the sorted shop reverses it.
	for i := 1; i < len(resolved.Items); i++ {
		previous, current := resolved.Items[i-1], resolved.Items[i]
		s.Require().NotNil(previous.CoinPrice)
		s.Require().NotNil(current.CoinPrice)
		s.Require().LessOrEqual(*previous.CoinPrice, *current.CoinPrice, "Shop items must be sorted by coin price ascending")
	}

	// A repeated shop resolution is served from the query cache.
	_, err = s.companion.ProcessShop(ctx)
	s.Require().NoError(err)
	s.Require().Equal(2, s.gameBackend.batchCount(), "Repeated resolution must not refetch the catalog")

	err = s.companion.ProcessLogout(ctx)
	s.Require().NoError(err, "Error logging out")
	s.Require().Equal(session.StateAbsent, s.companion.SessionState())

	// Logout purged the cache and dropped the token.
	_, err = s.companion.ProcessShop(ctx)
	s.Require().NoError(err)
	s.Require().Equal(4, s.gameBackend.batchCount(), "Logout must purge cached catalog responses")
	s.Require().Empty(s.gameBackend.lastToken(), "No entity token may be sent after logout")
}

func (s *IntegrationTestSuite) TestSessionSurvivesRestart() {
	ctx := context.Background()

	s.Require().NoError(s.companion.ProcessLogin(ctx, "player@example.com", "password"))

	var l *logger.Logger
	l, err := logger.CreateLogger("error")
	s.Require().NoError(err)

	cache, err := querycache.New(querycache.DefaultSize)
	s.Require().NoError(err)

	// A fresh store over the same storage hydrates the persisted session.
	restarted := session.NewStore(s.db, cache, l)
	s.Require().NoError(restarted.Load(ctx))
	s.Require().True(restarted.Hydrated())
	s.Require().Equal(session.StateValid, restarted.State())

	current, ok := restarted.Session()
	s.Require().True(ok)
	s.Require().Equal("integration-token", current.EntityToken)
}

func (s *IntegrationTestSuite) TestLeaderboardPagination() {
	entries, err := s.companion.ProcessLeaderboard(context.Background(), "1v1")
	s.Require().NoError(err, "Error aggregating the leaderboard")

	s.Require().Len(entries, 250)
	s.Require().Equal([]int{0, 100, 200}, s.statsBackend.offsets, "Each page must resume at the previous end offset plus one")
	s.Require().Equal("player-0", entries[0].DisplayName)
	s.Require().Equal(250, entries[249].Position)
}

func TestIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(IntegrationTestSuite))
}
