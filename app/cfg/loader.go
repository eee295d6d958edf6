package cfg

import (
	"cmp"
	"fmt"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Storage configuration
	DBPath string `long:"db-path" env:"DB_PATH" default:"./data/proveit.db" description:"Path to the sqlite database file"`

	// Application configuration
	Port         string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	SourcesFile  string `long:"sources-file" env:"SOURCES_FILE" default:"./sources.yml" description:"Path to the source registry file"`
	APIAccessKey string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for authentication (optional)"`

	// External collaborators
	GenAIURL  string `long:"genai-url" env:"GENAI_URL" default:"https://generativelanguage.googleapis.com/v1beta/models/gemini-2.0-flash:generateContent" description:"Generative endpoint for claim verdicts"`
	GenAIKey  string `long:"genai-key" env:"GENAI_KEY" description:"API key for the generative endpoint (optional; verdicts disabled without it)"`
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"ProveIt/1.0" description:"User agent string for HTTP requests"`

	// Application metadata
	Timezone string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, America/New_York)"`
	Debug    bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	// Optional .env bootstrap; absence is not an error
	_ = godotenv.Load()

	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		DBPath:       raw.DBPath,
		Port:         raw.Port,
		SourcesFile:  raw.SourcesFile,
		APIAccessKey: raw.APIAccessKey,
		GenAIURL:     raw.GenAIURL,
		GenAIKey:     raw.GenAIKey,
		UserAgent:    raw.UserAgent,
		Timezone:     raw.Timezone,
		Debug:        raw.Debug,
		Version:      GetVersion(),
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
		}
	}
	return nil
}
