package adapter

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/viper"
	"golang.org/x/text/language"
)

// ErrMissingCredentials indicates a required external credential is not configured
var ErrMissingCredentials = errors.New("missing required credentials")

// Config holds all application configuration
type Config struct {
	Telegram  TelegramConfig  `mapstructure:"telegram"`
	TMDB      TMDBConfig      `mapstructure:"tmdb"`
	Translate TranslateConfig `mapstructure:"translate"`
	Discovery DiscoveryConfig `mapstructure:"discovery"`
	Random    RandomConfig    `mapstructure:"random"`
	Schedule  ScheduleConfig  `mapstructure:"schedule"`
	Store     StoreConfig     `mapstructure:"store"`
	Server    ServerConfig    `mapstructure:"server"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// TelegramConfig holds chat platform settings
type TelegramConfig struct {
	Token       string        `mapstructure:"token"`
	PollTimeout time.Duration `mapstructure:"poll_timeout"` // Long-polling window
	MaxRoutines int           `mapstructure:"max_routines"` // Concurrent update handlers
}

// TMDBConfig holds catalog API settings
type TMDBConfig struct {
	APIKey        string        `mapstructure:"api_key"`
	BaseURL       string        `mapstructure:"base_url"`
	ImageBaseURL  string        `mapstructure:"image_base_url"`
	PosterSize    string        `mapstructure:"poster_size"`    // e.g. "w780"
	Language      string        `mapstructure:"language"`       // Search result language
	GenreLanguage string        `mapstructure:"genre_language"` // Genre taxonomy language
	Timeout       time.Duration `mapstructure:"timeout"`
	ReleaseType   int           `mapstructure:"release_type"` // 4 = digital
}

// TranslateConfig holds synopsis translation settings
type TranslateConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	Target      string        `mapstructure:"target"` // BCP 47 tag, e.g. "ru"
	Endpoint    string        `mapstructure:"endpoint"`
	Timeout     time.Duration `mapstructure:"timeout"`
	MinInterval time.Duration `mapstructure:"min_interval"` // Gap between consecutive translations
}

// DiscoveryConfig holds release search settings
type DiscoveryConfig struct {
	PrimaryRegion   string  `mapstructure:"primary_region"`
	FallbackRegion  string  `mapstructure:"fallback_region"`
	Timezone        string  `mapstructure:"timezone"` // Defines "today"
	TodayLimit      int     `mapstructure:"today_limit"`
	NextLimit       int     `mapstructure:"next_limit"`
	HistoryLimit    int     `mapstructure:"history_limit"`
	HorizonDays     int     `mapstructure:"horizon_days"`
	MinVotes        int     `mapstructure:"min_votes"`
	RandomMinRating float64 `mapstructure:"random_min_rating"`
	RandomMinVotes  int     `mapstructure:"random_min_votes"`
	PageCap         int     `mapstructure:"page_cap"`    // Deepest page the catalog serves
	Concurrency     int     `mapstructure:"concurrency"` // Parallel enrichments per batch
}

// RandomConfig holds the random-pick chooser settings
type RandomConfig struct {
	MovieGenres        []string `mapstructure:"movie_genres"`  // Chooser genres, by localized name
	SeriesGenres       []string `mapstructure:"series_genres"` // Chooser genres, by localized name
	AnimationGenreName string   `mapstructure:"animation_genre_name"`
	AnimationGenreID   int      `mapstructure:"animation_genre_id"` // Used when the name does not resolve
	AnimeKeywordID     int      `mapstructure:"anime_keyword_id"`
}

// ScheduleConfig holds the daily broadcast settings
type ScheduleConfig struct {
	Enabled           bool          `mapstructure:"enabled"`
	Timezone          string        `mapstructure:"timezone"`
	MovieAt           string        `mapstructure:"movie_at"`  // "HH:MM"
	SeriesAt          string        `mapstructure:"series_at"` // "HH:MM"
	BroadcastInterval time.Duration `mapstructure:"broadcast_interval"`
	SendAttempts      uint          `mapstructure:"send_attempts"`
}

// StoreConfig holds durable state settings
type StoreConfig struct {
	Path     string `mapstructure:"path"` // Empty = memory only
	MaxLists int    `mapstructure:"max_lists"`
}

// ServerConfig holds the health/stats HTTP listener settings
type ServerConfig struct {
	Addr string `mapstructure:"addr"` // Empty disables the listener
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	File       string `mapstructure:"file"`
	Level      string `mapstructure:"level"`
	Stdout     bool   `mapstructure:"stdout"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Telegram: TelegramConfig{
			PollTimeout: 10 * time.Second,
			MaxRoutines: 50,
		},
		TMDB: TMDBConfig{
			BaseURL:       "https://api.themoviedb.org/3",
			ImageBaseURL:  "https://image.tmdb.org/t/p",
			PosterSize:    "w780",
			Language:      "en-US",
			GenreLanguage: "ru-RU",
			Timeout:       20 * time.Second,
			ReleaseType:   4,
		},
		Translate: TranslateConfig{
			Enabled:     true,
			Target:      "ru",
			Endpoint:    "https://translate.googleapis.com/translate_a/single",
			Timeout:     15 * time.Second,
			MinInterval: 400 * time.Millisecond,
		},
		Discovery: DiscoveryConfig{
			PrimaryRegion:   "RU",
			FallbackRegion:  "US",
			Timezone:        "UTC",
			TodayLimit:      5,
			NextLimit:       5,
			HistoryLimit:    3,
			HorizonDays:     90,
			MinVotes:        10,
			RandomMinRating: 7.5,
			RandomMinVotes:  150,
			PageCap:         500,
			Concurrency:     2,
		},
		Random: RandomConfig{
			MovieGenres: []string{
				"Боевик", "Комедия", "Ужасы", "Фантастика", "Триллер",
				"Драма", "Приключения", "Фэнтези", "Детектив", "Криминал",
			},
			SeriesGenres: []string{
				"Боевик и Приключения", "Комедия", "Драма", "Sci-Fi & Fantasy",
				"Детектив", "Криминал", "Для детей", "Документальный",
			},
			AnimationGenreName: "Мультфильм",
			AnimationGenreID:   16,
			AnimeKeywordID:     210024,
		},
		Schedule: ScheduleConfig{
			Enabled:           true,
			Timezone:          "Europe/Moscow",
			MovieAt:           "14:00",
			SeriesAt:          "14:05",
			BroadcastInterval: time.Second,
			SendAttempts:      3,
		},
		Store: StoreConfig{
			Path:     defaultStorePath(),
			MaxLists: 1000,
		},
		Logging: LoggingConfig{
			File:       defaultLogPath(),
			Level:      "INFO",
			Stdout:     true,
			MaxSizeMB:  20,
			MaxBackups: 5,
			MaxAgeDays: 30,
		},
	}
}

// defaultDataPath returns the default data directory for the current OS
func defaultDataPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "releasebot")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "releasebot")
	}
}

// defaultLogPath returns the default log file path for the current OS
func defaultLogPath() string {
	return filepath.Join(defaultDataPath(), "releasebot.log")
}

// defaultStorePath returns the default state database path for the current OS
func defaultStorePath() string {
	return filepath.Join(defaultDataPath(), "state.db")
}

// defaultConfigPath returns the default config directory for the current OS
func defaultConfigPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "releasebot")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "releasebot")
	}
}

// envBindings maps config keys to the environment variables that may set them.
// Credentials keep their conventional bare names.
var envBindings = map[string][]string{
	"telegram.token":   {"TELEGRAM_BOT_TOKEN", "RELEASEBOT_TELEGRAM_TOKEN"},
	"tmdb.api_key":     {"TMDB_API_KEY", "RELEASEBOT_TMDB_API_KEY"},
	"store.path":       {"RELEASEBOT_STORE_PATH"},
	"server.addr":      {"RELEASEBOT_SERVER_ADDR"},
	"logging.level":    {"RELEASEBOT_LOGGING_LEVEL"},
	"logging.file":     {"RELEASEBOT_LOGGING_FILE"},
	"schedule.enabled": {"RELEASEBOT_SCHEDULE_ENABLED"},
}

// LoadConfig loads configuration from file and environment.
// An empty path searches the default config directory and the working directory.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(defaultConfigPath())
		v.AddConfigPath(".")
	}

	// Environment variable overrides
	v.SetEnvPrefix("RELEASEBOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, envs := range envBindings {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return nil, fmt.Errorf("error binding env for %s: %w", key, err)
		}
	}

	// Read config file if it exists
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, use defaults
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	return cfg, nil
}

// Validate checks the settings the bot cannot start without
func (c *Config) Validate() error {
	var missing []string
	if strings.TrimSpace(c.Telegram.Token) == "" {
		missing = append(missing, "TELEGRAM_BOT_TOKEN")
	}
	if strings.TrimSpace(c.TMDB.APIKey) == "" {
		missing = append(missing, "TMDB_API_KEY")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingCredentials, strings.Join(missing, ", "))
	}

	if _, err := c.Schedule.Location(); err != nil {
		return err
	}
	if _, err := c.Discovery.Location(); err != nil {
		return err
	}
	if _, err := ParseClock(c.Schedule.MovieAt); err != nil {
		return fmt.Errorf("schedule.movie_at: %w", err)
	}
	if _, err := ParseClock(c.Schedule.SeriesAt); err != nil {
		return fmt.Errorf("schedule.series_at: %w", err)
	}
	if c.Translate.Enabled {
		if _, err := language.Parse(c.Translate.Target); err != nil {
			return fmt.Errorf("translate.target %q: %w", c.Translate.Target, err)
		}
	}
	if c.Discovery.HorizonDays < 0 {
		return fmt.Errorf("discovery.horizon_days must not be negative")
	}
	return nil
}

// Location returns the time zone the daily jobs run in
func (s ScheduleConfig) Location() (*time.Location, error) {
	return loadLocation("schedule.timezone", s.Timezone)
}

// Location returns the time zone that defines "today" for searches
func (d DiscoveryConfig) Location() (*time.Location, error) {
	return loadLocation("discovery.timezone", d.Timezone)
}

func loadLocation(key, name string) (*time.Location, error) {
	if name == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("%s %q: %w", key, name, err)
	}
	return loc, nil
}

// Clock is a wall-clock time of day
type Clock struct {
	Hour   int
	Minute int
}

// String formats the clock as HH:MM
func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// ParseClock parses an "HH:MM" time of day
func ParseClock(s string) (Clock, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return Clock{}, fmt.Errorf("invalid time of day %q: %w", s, err)
	}
	return Clock{Hour: t.Hour(), Minute: t.Minute()}, nil
}
