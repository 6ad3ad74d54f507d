package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// Config holds everything loaded at process start. It is read-only for the
// lifetime of the bot.
type Config struct {
	// Discord Bot
	DiscordToken string

	// Discord OAuth2
	DiscordClientID     string
	DiscordClientSecret string
	DiscordRedirectURI  string

	// Web Server
	WebBind      string
	WebUIBaseURL string

	// Session
	JWTSecret string

	// DataDir is where the flat JSON stores live.
	DataDir string

	Features Features
}

// Features is the config.json document: fee schedule plus per-feature blocks.
type Features struct {
	Defaults  Defaults     `json:"defaults"`
	ShowBoard ShowBoardCfg `json:"showBoard"`
	Listings  ListingsCfg  `json:"listings"`
	Hits      HitsCfg      `json:"hits"`
}

type Defaults struct {
	Platform PlatformCfg `json:"platform"`
	Shipping PerSpotCfg  `json:"shipping"`
	Supplies PerSpotCfg  `json:"supplies"`
}

type PlatformCfg struct {
	FeeRate float64 `json:"feeRate"`
	TxFee   float64 `json:"txFee"`
}

type PerSpotCfg struct {
	PerSpot float64 `json:"perSpot"`
}

type ShowBoardCfg struct {
	ForumChannelID string `json:"forumChannelId"`
}

type ListingsCfg struct {
	TradeChannelID string `json:"tradeChannelId"`
	ProRoleName    string `json:"proRoleName"`
	StandardLimit  int    `json:"standardLimit"`
	ProLimit       int    `json:"proLimit"`
}

type HitsCfg struct {
	HitsChannelID string `json:"hitsChannelId"`
}

// FeeSchedule is the validated slice of config the calculation engine sees.
type FeeSchedule struct {
	FeeRate       float64
	TxFeePerSpot  float64
	ShipPerSpot   float64
	SupplyPerSpot float64
}

// FeeSchedule extracts the fee schedule from the loaded feature config.
func (c *Config) FeeSchedule() FeeSchedule {
	return FeeSchedule{
		FeeRate:       c.Features.Defaults.Platform.FeeRate,
		TxFeePerSpot:  c.Features.Defaults.Platform.TxFee,
		ShipPerSpot:   c.Features.Defaults.Shipping.PerSpot,
		SupplyPerSpot: c.Features.Defaults.Supplies.PerSpot,
	}
}

func Load() (*Config, error) {
	// Load environment variables from .env if present (non-fatal if missing)
	_ = godotenv.Load()

	cfg := &Config{
		DiscordToken:        os.Getenv("DISCORD_TOKEN"),
		DiscordClientID:     os.Getenv("DISCORD_CLIENT_ID"),
		DiscordClientSecret: os.Getenv("DISCORD_CLIENT_SECRET"),
		DiscordRedirectURI:  getEnvDefault("DISCORD_REDIRECT_URI", "http://localhost:3000/api/auth/callback"),
		WebBind:             getEnvDefault("WEB_BIND", "0.0.0.0:3000"),
		JWTSecret:           getEnvDefault("JWT_SECRET", "dev-only-change-me"),
		DataDir:             getEnvDefault("DATA_DIR", "data"),
	}

	cfg.WebUIBaseURL = extractBaseURL(cfg.DiscordRedirectURI)

	if cfg.DiscordToken == "" {
		return nil, fmt.Errorf("DISCORD_TOKEN is required")
	}
	if cfg.DiscordClientID == "" {
		return nil, fmt.Errorf("DISCORD_CLIENT_ID is required")
	}
	if cfg.DiscordClientSecret == "" {
		return nil, fmt.Errorf("DISCORD_CLIENT_SECRET is required")
	}

	features, err := loadFeatures(getEnvDefault("CONFIG_FILE", "config.json"))
	if err != nil {
		return nil, err
	}
	cfg.Features = *features

	return cfg, nil
}

func loadFeatures(path string) (*Features, error) {
	raw, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var f Features
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	if f.Listings.ProRoleName == "" {
		f.Listings.ProRoleName = "Collective Pro"
	}
	if f.Listings.StandardLimit == 0 {
		f.Listings.StandardLimit = 3
	}
	if f.Listings.ProLimit == 0 {
		f.Listings.ProLimit = 10
	}

	if err := validateFeatures(&f); err != nil {
		return nil, err
	}
	return &f, nil
}

// validateFeatures enforces the calculation engine's documented precondition:
// feeRate must stay in [0, 1) or the break-even division degenerates.
func validateFeatures(f *Features) error {
	p := f.Defaults.Platform
	if p.FeeRate < 0 || p.FeeRate >= 1 {
		return fmt.Errorf("defaults.platform.feeRate must be in [0, 1), got %v", p.FeeRate)
	}
	if p.TxFee < 0 {
		return fmt.Errorf("defaults.platform.txFee must not be negative, got %v", p.TxFee)
	}
	if f.Defaults.Shipping.PerSpot < 0 {
		return fmt.Errorf("defaults.shipping.perSpot must not be negative, got %v", f.Defaults.Shipping.PerSpot)
	}
	if f.Defaults.Supplies.PerSpot < 0 {
		return fmt.Errorf("defaults.supplies.perSpot must not be negative, got %v", f.Defaults.Supplies.PerSpot)
	}
	if f.Listings.StandardLimit < 0 || f.Listings.ProLimit < 0 {
		return fmt.Errorf("listings limits must not be negative")
	}
	return nil
}

func getEnvDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func extractBaseURL(redirectURI string) string {
	// e.g., "http://localhost:3000/api/auth/callback" -> "http://localhost:3000"
	parsed, err := url.Parse(redirectURI)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return "http://localhost:3000"
	}

	return fmt.Sprintf("%s://%s", parsed.Scheme, parsed.Host)
}
