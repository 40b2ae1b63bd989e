package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type HTTPConfig struct {
	Port         string        `mapstructure:"port"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

type RoutingConfig struct {
	BaseURL string `mapstructure:"base_url"`
}

type WeatherConfig struct {
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`
}

type PredictionConfig struct {
	URL string `mapstructure:"url"`
}

type EngineConfig struct {
	DebounceWindow    time.Duration `mapstructure:"debounce_window"`
	PredictionRetries int           `mapstructure:"prediction_retries"`
	CallTimeout       time.Duration `mapstructure:"call_timeout"`
	TimeZone          string        `mapstructure:"time_zone"`
}

type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

type DatabaseConfig struct {
	URL string `mapstructure:"url"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Config is the service configuration. Empty Redis, Kafka or database
// settings disable the corresponding adapter.
type Config struct {
	HTTP       HTTPConfig       `mapstructure:"http"`
	Routing    RoutingConfig    `mapstructure:"routing"`
	Weather    WeatherConfig    `mapstructure:"weather"`
	Prediction PredictionConfig `mapstructure:"prediction"`
	Engine     EngineConfig     `mapstructure:"engine"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Kafka      KafkaConfig      `mapstructure:"kafka"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Log        LogConfig        `mapstructure:"log"`
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("http.port", "8080")
	v.SetDefault("http.write_timeout", 30*time.Second)
	v.SetDefault("routing.base_url", "http://router.project-osrm.org")
	v.SetDefault("weather.base_url", "https://api.openweathermap.org")
	v.SetDefault("prediction.url", "http://localhost:5000/predict_duration")
	v.SetDefault("engine.debounce_window", 5*time.Second)
	v.SetDefault("engine.prediction_retries", 2)
	v.SetDefault("engine.call_timeout", 5*time.Second)
	v.SetDefault("engine.time_zone", "Local")
	v.SetDefault("redis.ttl", 10*time.Minute)
	v.SetDefault("kafka.topic", "route-forecasts")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// Load reads .env (if present), the optional config file and the environment.
// Environment keys use underscores, e.g. ENGINE_DEBOUNCE_WINDOW=3s.
func Load(v *viper.Viper, cfgFile string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load config: read .env: %w", err)
	}

	SetDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("load config: read %q: %w", cfgFile, err)
		}
	}

	// AutomaticEnv only applies to keys viper already knows about.
	for _, key := range []string{"weather.api_key", "redis.addr", "redis.password", "redis.db", "kafka.brokers", "database.url"} {
		_ = v.BindEnv(key)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("load config: decode: %w", err)
	}

	// KAFKA_BROKERS arrives as one comma-separated string.
	if len(cfg.Kafka.Brokers) == 1 && strings.Contains(cfg.Kafka.Brokers[0], ",") {
		cfg.Kafka.Brokers = strings.Split(cfg.Kafka.Brokers[0], ",")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	return &cfg, nil
}

// Validate checks engine invariants.
func (c *Config) Validate() error {
	if c.Engine.DebounceWindow <= 0 {
		return errors.New("engine.debounce_window must be positive")
	}
	if c.Engine.PredictionRetries < 0 {
		return errors.New("engine.prediction_retries must not be negative")
	}
	if c.Engine.CallTimeout <= 0 {
		return errors.New("engine.call_timeout must be positive")
	}
	if strings.TrimSpace(c.Routing.BaseURL) == "" {
		return errors.New("routing.base_url is required")
	}
	return nil
}

// Location resolves engine.time_zone, used to derive the hour of day for predictions.
func (c *Config) Location() (*time.Location, error) {
	if c.Engine.TimeZone == "" || c.Engine.TimeZone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Engine.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("engine.time_zone: %w", err)
	}
	return loc, nil
}
