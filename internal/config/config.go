package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Server     ServerConfig
	Dataset    DatasetConfig
	PostgreSQL PostgreSQLConfig
	Search     SearchConfig
	Profiles   ProfilesConfig
	OpenAI     OpenAIConfig
	Voice      VoiceConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Env            string
	Host           string
	Port           int
	AllowedOrigins []string
}

// DatasetConfig selects where the property inventory is loaded from.
type DatasetConfig struct {
	Source string // xlsx, csv or postgres
	Path   string // file path for xlsx/csv sources
	Table  string // table name for the postgres source
}

// PostgreSQLConfig holds PostgreSQL connection settings for the postgres
// dataset source. A full DSN wins over the discrete fields.
type PostgreSQLConfig struct {
	DSN                string
	Host               string
	Port               int
	User               string
	Password           string
	Database           string
	SSLMode            string
	MaxConnections     int
	MaxIdleConnections int
}

// SearchConfig holds result limits for the search flows.
type SearchConfig struct {
	DefaultLimit int // engine default when the caller asks for nothing
	MaxLimit     int // hard cap on caller-provided limits
	CardLimit    int // property cards returned with a chat reply
	CompactLimit int // compact card view for the active funnel
}

// ProfilesConfig holds user profile persistence settings.
type ProfilesConfig struct {
	Backend     string // file or badger
	Path        string // JSON document path for the file backend
	BadgerDir   string // database directory for the badger backend
	DefaultUser string // user id assumed when a request carries none
}

// OpenAIConfig holds settings for the OpenAI-compatible chat API. The
// defaults point at Gemini's compatibility endpoint; any compatible base
// URL works.
type OpenAIConfig struct {
	APIKey          string
	APIBase         string
	ChatModel       string
	ChatTemperature float64
	ChatTopP        float64
	ChatMaxTokens   int
	ChatExtraBody   string // JSON object merged into the request body
	Timeout         int    // seconds
	Enabled         bool
}

// VoiceConfig holds telephony and realtime transcription settings.
type VoiceConfig struct {
	Enabled       bool
	AssemblyAIKey string
	SampleRate    int
	StreamScheme  string // ws or wss, used when building the TwiML stream URL
	DialNumber    string // number the inbound call is bridged to
	CallerID      string
	TranscriptLog string
	Workers       int // transcript pipeline pool size
}

// Load reads configuration from the environment, with an optional .env file.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()

	v.SetDefault("ENV", "development")
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", 8080)
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")

	v.SetDefault("DATASET_SOURCE", "xlsx")
	v.SetDefault("DATASET_PATH", "banglore_pools.xlsx")
	v.SetDefault("DATASET_TABLE", "properties")

	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("PG_DSN", "")
	v.SetDefault("PG_HOST", "localhost")
	v.SetDefault("PG_PORT", 5432)
	v.SetDefault("PG_USER", "postgres")
	v.SetDefault("PG_PASSWORD", "")
	v.SetDefault("PG_DATABASE", "property_search")
	v.SetDefault("PG_SSLMODE", "disable")
	v.SetDefault("PG_MAX_CONNECTIONS", 25)
	v.SetDefault("PG_MAX_IDLE_CONNECTIONS", 5)

	v.SetDefault("SEARCH_DEFAULT_LIMIT", 20)
	v.SetDefault("SEARCH_MAX_LIMIT", 100)
	v.SetDefault("SEARCH_CARD_LIMIT", 12)
	v.SetDefault("SEARCH_COMPACT_LIMIT", 6)

	v.SetDefault("PROFILE_BACKEND", "file")
	v.SetDefault("PROFILE_PATH", "data/profiles.json")
	v.SetDefault("PROFILE_BADGER_DIR", "data/profiles.badger")
	v.SetDefault("PROFILE_DEFAULT_USER", "user_001")

	v.SetDefault("OPENAI_API_KEY", "")
	v.SetDefault("OPENAI_API_BASE", "https://generativelanguage.googleapis.com/v1beta/openai")
	v.SetDefault("OPENAI_CHAT_MODEL", "gemini-2.5-flash")
	v.SetDefault("OPENAI_CHAT_TEMPERATURE", 0.2)
	v.SetDefault("OPENAI_CHAT_TOP_P", 0.7)
	v.SetDefault("OPENAI_CHAT_MAX_TOKENS", 2048)
	v.SetDefault("OPENAI_CHAT_EXTRA_BODY", "")
	v.SetDefault("OPENAI_TIMEOUT", 30)

	v.SetDefault("VOICE_ENABLED", false)
	v.SetDefault("ASSEMBLYAI_API_KEY", "")
	v.SetDefault("VOICE_SAMPLE_RATE", 8000)
	v.SetDefault("VOICE_STREAM_SCHEME", "wss")
	v.SetDefault("VOICE_DIAL_NUMBER", "")
	v.SetDefault("VOICE_CALLER_ID", "")
	v.SetDefault("VOICE_TRANSCRIPT_LOG", "data/transcripts.log")
	v.SetDefault("VOICE_WORKERS", 2)

	v.AutomaticEnv()

	cfg := &Config{
		Server: ServerConfig{
			Env:            v.GetString("ENV"),
			Host:           v.GetString("SERVER_HOST"),
			Port:           v.GetInt("SERVER_PORT"),
			AllowedOrigins: parseOrigins(v.GetString("CORS_ALLOWED_ORIGINS")),
		},
		Dataset: DatasetConfig{
			Source: strings.ToLower(v.GetString("DATASET_SOURCE")),
			Path:   v.GetString("DATASET_PATH"),
			Table:  v.GetString("DATASET_TABLE"),
		},
		PostgreSQL: PostgreSQLConfig{
			DSN:                firstNonEmpty(v.GetString("DATABASE_URL"), v.GetString("PG_DSN")),
			Host:               v.GetString("PG_HOST"),
			Port:               v.GetInt("PG_PORT"),
			User:               v.GetString("PG_USER"),
			Password:           v.GetString("PG_PASSWORD"),
			Database:           v.GetString("PG_DATABASE"),
			SSLMode:            v.GetString("PG_SSLMODE"),
			MaxConnections:     v.GetInt("PG_MAX_CONNECTIONS"),
			MaxIdleConnections: v.GetInt("PG_MAX_IDLE_CONNECTIONS"),
		},
		Search: SearchConfig{
			DefaultLimit: v.GetInt("SEARCH_DEFAULT_LIMIT"),
			MaxLimit:     v.GetInt("SEARCH_MAX_LIMIT"),
			CardLimit:    v.GetInt("SEARCH_CARD_LIMIT"),
			CompactLimit: v.GetInt("SEARCH_COMPACT_LIMIT"),
		},
		Profiles: ProfilesConfig{
			Backend:     strings.ToLower(v.GetString("PROFILE_BACKEND")),
			Path:        v.GetString("PROFILE_PATH"),
			BadgerDir:   v.GetString("PROFILE_BADGER_DIR"),
			DefaultUser: v.GetString("PROFILE_DEFAULT_USER"),
		},
		OpenAI: OpenAIConfig{
			APIKey:          v.GetString("OPENAI_API_KEY"),
			APIBase:         v.GetString("OPENAI_API_BASE"),
			ChatModel:       v.GetString("OPENAI_CHAT_MODEL"),
			ChatTemperature: v.GetFloat64("OPENAI_CHAT_TEMPERATURE"),
			ChatTopP:        v.GetFloat64("OPENAI_CHAT_TOP_P"),
			ChatMaxTokens:   v.GetInt("OPENAI_CHAT_MAX_TOKENS"),
			ChatExtraBody:   v.GetString("OPENAI_CHAT_EXTRA_BODY"),
			Timeout:         v.GetInt("OPENAI_TIMEOUT"),
			Enabled:         v.GetString("OPENAI_API_KEY") != "",
		},
		Voice: VoiceConfig{
			Enabled:       v.GetBool("VOICE_ENABLED"),
			AssemblyAIKey: v.GetString("ASSEMBLYAI_API_KEY"),
			SampleRate:    v.GetInt("VOICE_SAMPLE_RATE"),
			StreamScheme:  v.GetString("VOICE_STREAM_SCHEME"),
			DialNumber:    v.GetString("VOICE_DIAL_NUMBER"),
			CallerID:      v.GetString("VOICE_CALLER_ID"),
			TranscriptLog: v.GetString("VOICE_TRANSCRIPT_LOG"),
			Workers:       v.GetInt("VOICE_WORKERS"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that the loaded configuration is usable.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	switch c.Dataset.Source {
	case "xlsx", "csv":
		if c.Dataset.Path == "" {
			return fmt.Errorf("DATASET_PATH is required for the %s source", c.Dataset.Source)
		}
	case "postgres":
		if c.PostgreSQL.DSN == "" && c.PostgreSQL.Database == "" {
			return fmt.Errorf("postgres dataset source needs DATABASE_URL or PG_DATABASE")
		}
		if c.Dataset.Table == "" {
			return fmt.Errorf("DATASET_TABLE is required for the postgres source")
		}
	default:
		return fmt.Errorf("unknown dataset source: %q", c.Dataset.Source)
	}

	if c.Search.DefaultLimit < 1 {
		return fmt.Errorf("SEARCH_DEFAULT_LIMIT must be positive")
	}
	if c.Search.MaxLimit < c.Search.DefaultLimit {
		return fmt.Errorf("SEARCH_MAX_LIMIT must be at least SEARCH_DEFAULT_LIMIT")
	}
	if c.Search.CardLimit < 1 || c.Search.CompactLimit < 1 {
		return fmt.Errorf("card limits must be positive")
	}

	switch c.Profiles.Backend {
	case "file", "badger":
	default:
		return fmt.Errorf("unknown profile backend: %q", c.Profiles.Backend)
	}

	if c.Voice.Enabled {
		if c.Voice.AssemblyAIKey == "" {
			return fmt.Errorf("ASSEMBLYAI_API_KEY is required when voice is enabled")
		}
		if c.Voice.DialNumber == "" {
			return fmt.Errorf("VOICE_DIAL_NUMBER is required when voice is enabled")
		}
		if c.Voice.Workers < 1 {
			return fmt.Errorf("VOICE_WORKERS must be positive")
		}
	}

	return nil
}

// GetPostgreSQLDSN returns the PostgreSQL connection string, assembling one
// from the discrete fields when no full DSN was provided.
func (c *Config) GetPostgreSQLDSN() string {
	if c.PostgreSQL.DSN != "" {
		return c.PostgreSQL.DSN
	}

	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.PostgreSQL.Host,
		c.PostgreSQL.Port,
		c.PostgreSQL.User,
		c.PostgreSQL.Password,
		c.PostgreSQL.Database,
		c.PostgreSQL.SSLMode,
	)
}

func parseOrigins(raw string) []string {
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
