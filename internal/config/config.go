package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Store    StoreConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Printer  PrinterConfig
	Log      LogConfig
}

type ServerConfig struct {
	Port int
}

type StoreConfig struct {
	// Driver selects the Ledger Store backend: "mysql" or "memory".
	Driver string
}

type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
}

type PrinterConfig struct {
	BaseDelay       time.Duration
	AttemptDelay    time.Duration
	BackoffUnit     time.Duration
	OfflineCooldown time.Duration
	JobTimeout      time.Duration
	MaxRetries      int
	OfflineRate     float64
	FailureRate     float64
}

type LogConfig struct {
	Level  string
	Format string
}

func Load() (*Config, error) {
	viper.AutomaticEnv()

	viper.SetDefault("SERVER_PORT", 8080)
	viper.SetDefault("STORE_DRIVER", "mysql")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", 3306)
	viper.SetDefault("DB_USER", "barista")
	viper.SetDefault("DB_PASSWORD", "secret")
	viper.SetDefault("DB_NAME", "cafe")
	viper.SetDefault("DB_MAX_OPEN_CONNS", 25)
	viper.SetDefault("DB_MAX_IDLE_CONNS", 5)
	viper.SetDefault("DB_CONN_MAX_LIFETIME", "5m")
	viper.SetDefault("REDIS_ENABLED", false)
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("PRINTER_BASE_DELAY", "2s")
	viper.SetDefault("PRINTER_ATTEMPT_DELAY", "500ms")
	viper.SetDefault("PRINTER_BACKOFF_UNIT", "1s")
	viper.SetDefault("PRINTER_OFFLINE_COOLDOWN", "5s")
	viper.SetDefault("PRINTER_JOB_TIMEOUT", "30s")
	viper.SetDefault("PRINTER_MAX_RETRIES", 3)
	viper.SetDefault("PRINTER_OFFLINE_RATE", 0.05)
	viper.SetDefault("PRINTER_FAILURE_RATE", 0.15)
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LOG_FORMAT", "json")

	connMaxLifetime, err := time.ParseDuration(viper.GetString("DB_CONN_MAX_LIFETIME"))
	if err != nil {
		return nil, err
	}

	printer := PrinterConfig{
		MaxRetries:  viper.GetInt("PRINTER_MAX_RETRIES"),
		OfflineRate: viper.GetFloat64("PRINTER_OFFLINE_RATE"),
		FailureRate: viper.GetFloat64("PRINTER_FAILURE_RATE"),
	}
	for _, d := range []struct {
		key  string
		dest *time.Duration
	}{
		{"PRINTER_BASE_DELAY", &printer.BaseDelay},
		{"PRINTER_ATTEMPT_DELAY", &printer.AttemptDelay},
		{"PRINTER_BACKOFF_UNIT", &printer.BackoffUnit},
		{"PRINTER_OFFLINE_COOLDOWN", &printer.OfflineCooldown},
		{"PRINTER_JOB_TIMEOUT", &printer.JobTimeout},
	} {
		v, err := time.ParseDuration(viper.GetString(d.key))
		if err != nil {
			return nil, err
		}
		*d.dest = v
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: viper.GetInt("SERVER_PORT"),
		},
		Store: StoreConfig{
			Driver: viper.GetString("STORE_DRIVER"),
		},
		Database: DatabaseConfig{
			Host:            viper.GetString("DB_HOST"),
			Port:            viper.GetInt("DB_PORT"),
			User:            viper.GetString("DB_USER"),
			Password:        viper.GetString("DB_PASSWORD"),
			Name:            viper.GetString("DB_NAME"),
			MaxOpenConns:    viper.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    viper.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: connMaxLifetime,
		},
		Redis: RedisConfig{
			Enabled:  viper.GetBool("REDIS_ENABLED"),
			Addr:     viper.GetString("REDIS_ADDR"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		Printer: printer,
		Log: LogConfig{
			Level:  viper.GetString("LOG_LEVEL"),
			Format: viper.GetString("LOG_FORMAT"),
		},
	}

	return cfg, nil
}
