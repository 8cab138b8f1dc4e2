package config

import (
	"fmt"
	"fxetl/internal/rates"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Provider struct {
	Name    string `mapstructure:"name"`
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
}

type HTTPClient struct {
	TimeoutSeconds        int `mapstructure:"timeout_seconds"`
	MaxAttempts           int `mapstructure:"max_attempts"`
	BackoffInitialSeconds int `mapstructure:"backoff_initial_seconds"`
	BackoffMaxSeconds     int `mapstructure:"backoff_max_seconds"`
}

type Pipeline struct {
	Base          string   `mapstructure:"base"`
	BatchSize     int      `mapstructure:"batch_size"`
	MaxWindowDays int      `mapstructure:"max_window_days"`
	Symbols       []string `mapstructure:"symbols"`
}

type Countries struct {
	BaseURL string `mapstructure:"base_url"`
}

type Output struct {
	BronzeDir   string `mapstructure:"bronze_dir"`
	SilverDir   string `mapstructure:"silver_dir"`
	GoldDir     string `mapstructure:"gold_dir"`
	Format      string `mapstructure:"format"`
	Compression string `mapstructure:"compression"`
	PartitionBy string `mapstructure:"partition_by"`
	Overwrite   bool   `mapstructure:"overwrite"`
}

type Warehouse struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Pass     string `mapstructure:"pass"`
	Name     string `mapstructure:"name"`
	MaxConns int32  `mapstructure:"max_conns"`
}

func (w *Warehouse) GetConnectionStr() string {
	return fmt.Sprintf(
		"user=%s password=%s host=%s port=%s dbname=%s sslmode=disable",
		w.User, w.Pass, w.Host, w.Port, w.Name,
	)
}

type Logging struct {
	Level string `mapstructure:"level"`
}

type AppConfig struct {
	Provider   Provider   `mapstructure:"provider"`
	HTTPClient HTTPClient `mapstructure:"http_client"`
	Pipeline   Pipeline   `mapstructure:"pipeline"`
	Countries  Countries  `mapstructure:"countries"`
	Output     Output     `mapstructure:"output"`
	Warehouse  Warehouse  `mapstructure:"warehouse"`
	Logging    Logging    `mapstructure:"logging"`
}

func (cfg *AppConfig) validate() error {
	if _, ok := rates.CanonicalProvider(cfg.Provider.Name); !ok {
		return fmt.Errorf("unknown exchange provider %q", cfg.Provider.Name)
	}
	if cfg.Warehouse.Enabled {
		if cfg.Warehouse.Host == "" || cfg.Warehouse.User == "" || cfg.Warehouse.Name == "" {
			return fmt.Errorf("warehouse is enabled but host/user/name are not fully set")
		}
	}
	return nil
}

// Init loads configuration from the given yaml file (config.yaml when
// path is empty), layered under environment variables and defaults. A
// missing default config file is fine; a missing explicit one is not.
func Init(path string) (*AppConfig, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	explicit := path != ""
	if path == "" {
		path = "config.yaml"
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		if explicit || !os.IsNotExist(err) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetDefault("http_client.timeout_seconds", 30)
	v.SetDefault("http_client.max_attempts", 5)
	v.SetDefault("http_client.backoff_initial_seconds", 1)
	v.SetDefault("http_client.backoff_max_seconds", 8)

	v.SetDefault("pipeline.base", "USD")
	v.SetDefault("pipeline.batch_size", 20)
	v.SetDefault("pipeline.max_window_days", 365)

	v.SetDefault("output.bronze_dir", "data/bronze")
	v.SetDefault("output.silver_dir", "data/silver")
	v.SetDefault("output.gold_dir", "data/gold")
	v.SetDefault("output.format", "parquet")
	v.SetDefault("output.compression", "snappy")
	v.SetDefault("output.partition_by", "region")

	v.SetDefault("warehouse.port", "5432")
	v.SetDefault("warehouse.max_conns", 10)

	v.SetDefault("logging.level", "info")

	// provider env vars
	_ = v.BindEnv("provider.name", "EXCHANGE_PROVIDER")
	_ = v.BindEnv("provider.api_key", "EXCHANGERATE_API_KEY")

	// http client env vars
	_ = v.BindEnv("http_client.timeout_seconds", "HTTP_TIMEOUT")

	// warehouse env vars
	_ = v.BindEnv("warehouse.host", "DB_HOST")
	_ = v.BindEnv("warehouse.port", "DB_PORT")
	_ = v.BindEnv("warehouse.user", "DB_USER")
	_ = v.BindEnv("warehouse.pass", "DB_PASS")
	_ = v.BindEnv("warehouse.name", "DB_NAME")
	_ = v.BindEnv("warehouse.max_conns", "DB_MAX_CONNS")

	// logging env vars
	_ = v.BindEnv("logging.level", "LOG_LEVEL")

	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}
