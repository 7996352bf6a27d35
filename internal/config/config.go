package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

var ErrMissingEnvironmentVariables = errors.New("missing required environment variables")

// Config holds application configuration loaded from files and environment variables.
type Config struct {
	Env              string  `mapstructure:"env"`      // current application environment (local, dev, production etc)
	TelegramAPIToken string  `mapstructure:"-"`        // Telegram API token loaded from environment
	Bank             Bank    `mapstructure:"bank"`     // question bank source
	Quiz             Quiz    `mapstructure:"quiz"`     // quiz session parameters
	Exam             Exam    `mapstructure:"exam"`     // exam-mode guard toggles
	Storage          string  `mapstructure:"storage"`  // quiz state storage: "memory" or "postgres"
	DB               DB      `mapstructure:"database"` // database configuration section
	HTTP             HTTP    `mapstructure:"http"`     // HTTP API section
}

// Bank points at the question bank. URL wins when both are set.
type Bank struct {
	URL  string `mapstructure:"url"`  // published questions.json URL
	Path string `mapstructure:"path"` // local JSON deck, used when URL is empty
}

// Quiz contains the session parameters.
type Quiz struct {
	QuestionTime     time.Duration `mapstructure:"question_time"`     // countdown per question
	NegativeMark     float64       `mapstructure:"negative_mark"`     // penalty per wrong answer
	MaxAttempts      int           `mapstructure:"max_attempts"`      // daily session cap
	RotationStride   int           `mapstructure:"rotation_stride"`   // pool rotation advance per session
	WarningThreshold time.Duration `mapstructure:"warning_threshold"` // sustained warning below this remaining time
	DangerThreshold  time.Duration `mapstructure:"danger_threshold"`  // fire-once danger cue below this remaining time
}

// Exam contains the best-effort anti-cheat toggles.
type Exam struct {
	BlockContextMenu    bool `mapstructure:"block_context_menu"`
	TerminateOnHidden   bool `mapstructure:"terminate_on_hidden"`
	BlockZoom           bool `mapstructure:"block_zoom"`
	TerminateOnDevtools bool `mapstructure:"terminate_on_devtools"`
	ExitShowsReport     bool `mapstructure:"exit_shows_report"` // reuse the report for exited sessions instead of the thank-you screen
}

// DB contains database-related configuration parameters.
type DB struct {
	URL             string        `mapstructure:"-"`                 // database connection string loaded from environment
	MaxConnections  int           `mapstructure:"max_connections"`   // maximum number of open connections in the pool
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"` // maximum lifetime of a single connection
}

// HTTP contains the API server parameters.
type HTTP struct {
	Addr string `mapstructure:"addr"` // listen address for the report/signal API
}

// DSN returns the database connection string if it is configured.
func (db DB) DSN() (string, error) {
	if db.URL == "" {
		return "", ErrMissingEnvironmentVariables
	}
	return db.URL, nil
}

// Load reads configuration from config files and environment variables.
func Load() (*Config, error) {
	// Initialize Viper instance and base config options.
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")

	// Set default values for configuration keys.
	v.SetDefault("env", "local")
	v.SetDefault("bank.url", "https://cdn.jsdelivr.net/gh/yousafkhamza/devops-mcq-assets@main/questions.json")
	v.SetDefault("quiz.question_time", "120s")
	v.SetDefault("quiz.negative_mark", 0.25)
	v.SetDefault("quiz.max_attempts", 3)
	v.SetDefault("quiz.rotation_stride", 10)
	v.SetDefault("quiz.warning_threshold", "30s")
	v.SetDefault("quiz.danger_threshold", "10s")
	v.SetDefault("exam.block_context_menu", true)
	v.SetDefault("exam.terminate_on_hidden", true)
	v.SetDefault("exam.block_zoom", true)
	v.SetDefault("exam.terminate_on_devtools", true)
	v.SetDefault("exam.exit_shows_report", false)
	v.SetDefault("storage", "memory")
	v.SetDefault("database.max_connections", 20)
	v.SetDefault("database.max_conn_lifetime", "30s")
	v.SetDefault("http.addr", ":8080")

	// Configure environment variable handling and key mapping.
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_")) // map nested keys to ENV style names
	v.AutomaticEnv()

	// Bind explicit environment variables to configuration keys.
	_ = v.BindEnv("telegram_api_token", "TELEGRAM_API_TOKEN")
	_ = v.BindEnv("database_url", "DATABASE_URL")
	_ = v.BindEnv("env", "APP_ENV")

	// Try to read configuration file if present.
	if err := v.ReadInConfig(); err != nil {
		var fileLookupErr viper.ConfigFileNotFoundError
		if !errors.As(err, &fileLookupErr) {
			return nil, fmt.Errorf("error loading config file: %w", err)
		}
	}

	// Unmarshal configuration into strongly typed struct.
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	// Load sensitive values from environment variables.
	cfg.TelegramAPIToken = v.GetString("telegram_api_token")
	if cfg.TelegramAPIToken == "" {
		return nil, ErrMissingEnvironmentVariables
	}

	// The database URL is only required for the postgres storage backend.
	cfg.DB.URL = v.GetString("database_url")
	if cfg.Storage == "postgres" && cfg.DB.URL == "" {
		return nil, ErrMissingEnvironmentVariables
	}

	return &cfg, nil
}
