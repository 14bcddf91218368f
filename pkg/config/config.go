package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Schedule  ScheduleConfig  `mapstructure:"schedule"`
	Content   ContentConfig   `mapstructure:"content"`
	Validator ValidatorConfig `mapstructure:"validator"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Publisher PublisherConfig `mapstructure:"publisher"`
	Database  DatabaseConfig  `mapstructure:"database"`
	OpenAI    OpenAIConfig    `mapstructure:"openai"`
	DryRun    bool            `mapstructure:"dry_run"`
}

type ScheduleConfig struct {
	PostsPerWeek int     `mapstructure:"posts_per_week"`
	MinGapHours  float64 `mapstructure:"min_gap_hours"`
	// StartHour/EndHour bound the daily window posts may land in (UTC).
	StartHour       int   `mapstructure:"start_hour"`
	EndHour         int   `mapstructure:"end_hour"`
	TickSeconds     int   `mapstructure:"tick_seconds"`
	Seed            int64 `mapstructure:"seed"`
	PlanRetryBudget int   `mapstructure:"plan_retry_budget"`
}

type ContentConfig struct {
	DataDir           string `mapstructure:"data_dir"`
	MaxHashtags       int    `mapstructure:"max_hashtags"`
	RecentTopics      int    `mapstructure:"recent_topics"`
	RenderAttempts    int    `mapstructure:"render_attempts"`
	DuplicateLookback int    `mapstructure:"duplicate_lookback"`
}

type ValidatorConfig struct {
	MaxLength   int      `mapstructure:"max_length"`
	MaxHashtags int      `mapstructure:"max_hashtags"`
	Blocklist   []string `mapstructure:"blocklist"`
}

type RateLimitConfig struct {
	Capacity    int     `mapstructure:"capacity"`
	PeriodHours float64 `mapstructure:"period_hours"`
}

type PublisherConfig struct {
	// Platform selects the publisher implementation: "x" or "telegram".
	Platform       string `mapstructure:"platform"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	BearerToken    string `mapstructure:"bearer_token"`
	TelegramToken  string `mapstructure:"telegram_token"`
	TelegramChatID int64  `mapstructure:"telegram_chat_id"`
}

type DatabaseConfig struct {
	Driver   string `mapstructure:"driver"` // memory, sqlite or postgres
	Path     string `mapstructure:"path"`   // sqlite file path
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

type OpenAIConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	APIKey      string  `mapstructure:"api_key"`
	Model       string  `mapstructure:"model"`
	MaxTokens   int     `mapstructure:"max_tokens"`
	Temperature float64 `mapstructure:"temperature"`
}

func parseDatabaseURL(dbURL string) (DatabaseConfig, error) {
	u, err := url.Parse(dbURL)
	if err != nil {
		return DatabaseConfig{}, err
	}

	password, _ := u.User.Password()
	port := 5432 // default PostgreSQL port
	if u.Port() != "" {
		fmt.Sscanf(u.Port(), "%d", &port)
	}

	// Remove leading slash from path to get database name
	dbName := strings.TrimPrefix(u.Path, "/")

	return DatabaseConfig{
		Driver:   "postgres",
		Host:     u.Hostname(),
		Port:     port,
		User:     u.User.Username(),
		Password: password,
		DBName:   dbName,
		SSLMode:  "disable",
	}, nil
}

func LoadConfig(path string) (*Config, error) {
	v := viper.New()

	// Set default values
	v.SetDefault("schedule.posts_per_week", 2)
	v.SetDefault("schedule.min_gap_hours", 24.0)
	v.SetDefault("schedule.start_hour", 9)
	v.SetDefault("schedule.end_hour", 21)
	v.SetDefault("schedule.tick_seconds", 60)
	v.SetDefault("schedule.seed", 0)
	v.SetDefault("schedule.plan_retry_budget", 100)
	v.SetDefault("content.data_dir", "data")
	v.SetDefault("content.max_hashtags", 3)
	v.SetDefault("content.recent_topics", 10)
	v.SetDefault("content.render_attempts", 5)
	v.SetDefault("content.duplicate_lookback", 50)
	v.SetDefault("validator.max_length", 280)
	v.SetDefault("validator.max_hashtags", 5)
	v.SetDefault("rate_limit.capacity", 2)
	v.SetDefault("rate_limit.period_hours", 168.0)
	v.SetDefault("publisher.platform", "x")
	v.SetDefault("publisher.timeout_seconds", 30)
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "storage/history.db")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("openai.enabled", false)
	v.SetDefault("openai.model", "gpt-3.5-turbo")
	v.SetDefault("openai.max_tokens", 120)
	v.SetDefault("openai.temperature", 0.7)
	v.SetDefault("dry_run", false)

	// Enable environment variable support
	v.AutomaticEnv()

	// Read the config file
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	// Check for DATABASE_URL environment variable
	if dbURL := v.GetString("DATABASE_URL"); dbURL != "" {
		dbConfig, err := parseDatabaseURL(dbURL)
		if err != nil {
			return nil, fmt.Errorf("failed to parse DATABASE_URL: %v", err)
		}
		config.Database = dbConfig
	}

	// Get other environment variables
	if token := v.GetString("TWITTER_BEARER_TOKEN"); token != "" {
		config.Publisher.BearerToken = token
	}

	if token := v.GetString("TELEGRAM_TOKEN"); token != "" {
		config.Publisher.TelegramToken = token
	}

	if apiKey := v.GetString("OPENAI_API_KEY"); apiKey != "" {
		config.OpenAI.APIKey = apiKey
	}

	if v.GetBool("DRY_RUN") {
		config.DryRun = true
	}

	return &config, nil
}
