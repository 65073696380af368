package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// defaultTitleID identifies the game title against the game platform backend.
const defaultTitleID = 4207

var (
	LogLevel          string
	TitleID           int
	GameAPIBaseURL    string
	StatsAPIBaseURL   string
	EsportsAPIBaseURL string
	CDNBaseURL        string
	StoragePath       string
)

func init() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using default values")
	}

	LogLevel = os.Getenv("LOG_LEVEL")
	if LogLevel == "" {
		LogLevel = "info"
	}

	TitleID = defaultTitleID
	if raw := os.Getenv("COMPANION_TITLE_ID"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil {
			log.Println("Invalid COMPANION_TITLE_ID, using default title id")
		} else {
			TitleID = id
		}
	}

	GameAPIBaseURL = os.Getenv("COMPANION_GAME_API_URL")
	if GameAPIBaseURL == "" {
		GameAPIBaseURL = fmt.Sprintf("https://title-%d.api.arenabrawl.net", TitleID)
	}

	StatsAPIBaseURL = os.Getenv("COMPANION_STATS_API_URL")
	if StatsAPIBaseURL == "" {
		StatsAPIBaseURL = "https://stats.arenabrawl.net/api"
	}

	EsportsAPIBaseURL = os.Getenv("COMPANION_ESPORTS_API_URL")
	if EsportsAPIBaseURL == "" {
		EsportsAPIBaseURL = "https://circuit.arenabrawl.gg/api/v1"
	}

	CDNBaseURL = os.Getenv("COMPANION_CDN_URL")
	if CDNBaseURL == "" {
		CDNBaseURL = "https://cdn.arenabrawl.net"
	}

	StoragePath = os.Getenv("COMPANION_STORAGE_PATH")
	if StoragePath == "" {
		StoragePath = "companion.db"
	}
}
