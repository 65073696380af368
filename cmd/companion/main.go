package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"arena_companion/internal/app"
	"arena_companion/internal/auth"
	"arena_companion/internal/backend/esports"
	"arena_companion/internal/backend/game"
	"arena_companion/internal/backend/stats"
	"arena_companion/internal/catalog"
	"arena_companion/internal/config"
	"arena_companion/internal/leaderboard"
	"arena_companion/internal/models"
	"arena_companion/internal/pkg/logger"
	"arena_companion/internal/pkg/querycache"
	"arena_companion/internal/session"
	"arena_companion/internal/shop"
	"arena_companion/internal/storage"
)

const usage = `usage: companion <command> [flags]

commands:
  login        -email -password   authenticate and persist the session
  logout                          clear the persisted session
  whoami                          show the current session state
  shop                            show the current coin shop rotation
  search       -query -category   search the item catalog
  buy          -item -currency    purchase an item (currency: coins|bucks)
  balances                        show currency balances
  leaderboard  -board             dump a community leaderboard
  profile      -steam-id          show a player's ranked profile
  tournaments                     list e-sports tournaments
  rankings     -region            list e-sports power rankings
  recover      -email             request an account recovery email
`

func main() {
	var l *logger.Logger
	var err error
	if l, err = logger.CreateLogger(config.LogLevel); err != nil {
		log.Fatal("Failed to create logger:", err)
	}

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	store, err := storage.NewSQLite(config.StoragePath, l)
	if err != nil {
		log.Fatal(err)
	}
	defer store.Close()

	cache, err := querycache.New(querycache.DefaultSize)
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sessionStore := session.NewStore(store, cache, l)
	if err := sessionStore.Load(ctx); err != nil {
		log.Fatal(err)
	}

	gameClient, err := game.NewClient(config.GameAPIBaseURL, config.TitleID, sessionStore, l)
	if err != nil {
		log.Fatal(err)
	}
	statsClient, err := stats.NewClient(config.StatsAPIBaseURL, l)
	if err != nil {
		log.Fatal(err)
	}
	esportsClient, err := esports.NewClient(config.EsportsAPIBaseURL, l)
	if err != nil {
		log.Fatal(err)
	}

	authService := auth.NewService(sessionStore, gameClient, l)
	catalogResolver := catalog.NewResolver(gameClient, cache, config.CDNBaseURL, l)
	shopResolver := shop.NewResolver(gameClient, catalogResolver, l)
	leaderboards := leaderboard.NewAggregator(statsClient, l)

	companion := app.NewApp(app.Deps{
		Session:      sessionStore,
		Auth:         authService,
		Shop:         shopResolver,
		Catalog:      catalogResolver,
		Leaderboards: leaderboards,
		Game:         gameClient,
		Stats:        statsClient,
		Esports:      esportsClient,
		Log:          l,
	})

	go authService.Run(ctx)

	if err := dispatch(ctx, companion, os.Args[1], os.Args[2:]); err != nil {
		log.Fatal(err)
	}
}

func dispatch(ctx context.Context, companion *app.App, command string, args []string) error {
	switch command {
	case "login":
		fs := flag.NewFlagSet("login", flag.ExitOnError)
		email := fs.String("email", "", "account email")
		password := fs.String("password", "", "account password")
		fs.Parse(args)
		if err := companion.ProcessLogin(ctx, *email, *password); err != nil {
			return err
		}
		fmt.Println("logged in")
		return nil

	case "logout":
		if err := companion.ProcessLogout(ctx); err != nil {
			return err
		}
		fmt.Println("logged out")
		return nil

	case "whoami":
		fmt.Printf("session: %s\n", companion.SessionState())
		return nil

	case "shop":
		resolved, err := companion.ProcessShop(ctx)
		if err != nil {
			return err
		}
		return printJSON(resolved)

	case "search":
		fs := flag.NewFlagSet("search", flag.ExitOnError)
		query := fs.String("query", "", "search text")
		category := fs.String("category", "", "optional category filter")
		fs.Parse(args)
		items, err := companion.ProcessSearch(ctx, *query, models.Category(*category))
		if err != nil {
			return err
		}
		return printJSON(items)

	case "buy":
		fs := flag.NewFlagSet("buy", flag.ExitOnError)
		item := fs.String("item", "", "item id")
		currency := fs.String("currency", "coins", "currency (coins|bucks)")
		fs.Parse(args)
		currencyID := models.CoinsCurrencyID
		if *currency == "bucks" {
			currencyID = models.BucksCurrencyID
		}
		receipt, err := companion.ProcessBuy(ctx, *item, currencyID)
		if err != nil {
			return err
		}
		return printJSON(receipt)

	case "balances":
		balances, err := companion.ProcessBalances(ctx)
		if err != nil {
			return err
		}
		return printJSON(balances)

	case "leaderboard":
		fs := flag.NewFlagSet("leaderboard", flag.ExitOnError)
		board := fs.String("board", "1v1", "leaderboard name")
		fs.Parse(args)
		entries, err := companion.ProcessLeaderboard(ctx, *board)
		if err != nil {
			return err
		}
		return printJSON(entries)

	case "profile":
		fs := flag.NewFlagSet("profile", flag.ExitOnError)
		steamID := fs.String("steam-id", "", "player steam id")
		fs.Parse(args)
		profile, err := companion.ProcessProfile(ctx, *steamID)
		if err != nil {
			return err
		}
		return printJSON(profile)

	case "tournaments":
		tournaments, err := companion.ProcessTournaments(ctx)
		if err != nil {
			return err
		}
		return printJSON(tournaments)

	case "rankings":
		fs := flag.NewFlagSet("rankings", flag.ExitOnError)
		region := fs.String("region", "eu", "ranking region")
		fs.Parse(args)
		rankings, err := companion.ProcessRankings(ctx, *region)
		if err != nil {
			return err
		}
		return printJSON(rankings)

	case "recover":
		fs := flag.NewFlagSet("recover", flag.ExitOnError)
		email := fs.String("email", "", "account email")
		fs.Parse(args)
		if err := companion.ProcessRecovery(ctx, *email); err != nil {
			return err
		}
		fmt.Println("recovery email requested")
		return nil

	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
		return nil
	}
}

func printJSON(v any) error {
	encoded, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(encoded))
	return nil
}
