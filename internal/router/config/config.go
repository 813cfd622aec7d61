package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"time"

	"github.com/senyabanana/lawyer-service/internal/models"

	"github.com/spf13/viper"
)

// Драйверы хранилища.
const (
	PostgresDriver = "postgres"
	MemoryDriver   = "memory"
)

// Config - структура для хранения конфигураций приложения
type Config struct {
	ServerAddress  string        `mapstructure:"SERVER_ADDRESS"`
	RequestTimeout time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	GRPCHealthAddr string        `mapstructure:"GRPC_HEALTH_ADDR"`
	LogLevel       string        `mapstructure:"LOG_LEVEL"`

	StorageDriver string `mapstructure:"STORAGE_DRIVER"`
	PostgresConn  string `mapstructure:"POSTGRES_CONN"`
	PostgresUser  string `mapstructure:"POSTGRES_USERNAME"`
	PostgresPass  string `mapstructure:"POSTGRES_PASSWORD"`
	PostgresHost  string `mapstructure:"POSTGRES_HOST"`
	PostgresPort  string `mapstructure:"POSTGRES_PORT"`
	PostgresDB    string `mapstructure:"POSTGRES_DATABASE"`
	PostgresSSL   string `mapstructure:"POSTGRES_SSLMODE"`
	MigrationURL  string `mapstructure:"MIGRATION_URL"`

	DBMaxConns         int32         `mapstructure:"DB_MAX_CONNS"`
	DBMinConns         int32         `mapstructure:"DB_MIN_CONNS"`
	DBStatementTimeout time.Duration `mapstructure:"DB_STATEMENT_TIMEOUT"`

	TxTimeout      time.Duration `mapstructure:"TX_TIMEOUT"`
	TxMaxAttempts  int           `mapstructure:"TX_MAX_ATTEMPTS"`
	TxRetryBackoff time.Duration `mapstructure:"TX_RETRY_BACKOFF"`

	RedisURL      string `mapstructure:"REDIS_URL"`
	EventsChannel string `mapstructure:"EVENTS_CHANNEL"`

	EndJobPolicy string `mapstructure:"END_JOB_POLICY"`
}

var keys = []string{
	"SERVER_ADDRESS", "REQUEST_TIMEOUT", "GRPC_HEALTH_ADDR", "LOG_LEVEL",
	"STORAGE_DRIVER", "POSTGRES_CONN", "POSTGRES_USERNAME", "POSTGRES_PASSWORD",
	"POSTGRES_HOST", "POSTGRES_PORT", "POSTGRES_DATABASE", "POSTGRES_SSLMODE", "MIGRATION_URL",
	"DB_MAX_CONNS", "DB_MIN_CONNS", "DB_STATEMENT_TIMEOUT",
	"TX_TIMEOUT", "TX_MAX_ATTEMPTS", "TX_RETRY_BACKOFF",
	"REDIS_URL", "EVENTS_CHANNEL", "END_JOB_POLICY",
}

// LoadConfig загружает конфигурацию из файла app.env в каталоге path.
// Переменные окружения имеют приоритет над файлом, файл может отсутствовать.
func LoadConfig(path string) (cfg Config, err error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("app")
	v.SetConfigType("env")

	v.SetDefault("SERVER_ADDRESS", ":8080")
	v.SetDefault("REQUEST_TIMEOUT", 5*time.Second)
	v.SetDefault("GRPC_HEALTH_ADDR", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("STORAGE_DRIVER", PostgresDriver)
	v.SetDefault("POSTGRES_PORT", "5432")
	v.SetDefault("POSTGRES_SSLMODE", "disable")
	v.SetDefault("MIGRATION_URL", "file://migrations")
	v.SetDefault("DB_MAX_CONNS", 10)
	v.SetDefault("DB_MIN_CONNS", 1)
	v.SetDefault("DB_STATEMENT_TIMEOUT", 0)
	v.SetDefault("TX_TIMEOUT", 3*time.Second)
	v.SetDefault("TX_MAX_ATTEMPTS", 3)
	v.SetDefault("TX_RETRY_BACKOFF", 50*time.Millisecond)
	v.SetDefault("EVENTS_CHANNEL", "lawyer-service.events")
	v.SetDefault("END_JOB_POLICY", string(models.EndByAssignee))

	// Unmarshal видит переменные окружения только для известных ключей.
	for _, key := range keys {
		if err = v.BindEnv(key); err != nil {
			return
		}
	}
	v.AutomaticEnv()

	if err = v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return
		}
	}
	if err = v.Unmarshal(&cfg); err != nil {
		return
	}
	if cfg.PostgresConn == "" && cfg.PostgresHost != "" {
		cfg.PostgresConn = cfg.postgresDSN()
	}
	err = cfg.Validate()
	return
}

// Validate проверяет согласованность конфигурации.
func (c Config) Validate() error {
	if _, err := models.ParseEndJobPolicy(c.EndJobPolicy); err != nil {
		return err
	}
	if c.TxMaxAttempts < 1 {
		return fmt.Errorf("TX_MAX_ATTEMPTS must be positive, got %d", c.TxMaxAttempts)
	}

	switch c.StorageDriver {
	case MemoryDriver:
		return nil
	case PostgresDriver:
		if c.PostgresConn == "" {
			return errors.New("POSTGRES_CONN or POSTGRES_HOST is required for the postgres storage driver")
		}
		return nil
	}
	return fmt.Errorf("unknown storage driver %q", c.StorageDriver)
}

// postgresDSN собирает строку подключения из POSTGRES_HOST, POSTGRES_PORT и остальных частей.
func (c Config) postgresDSN() string {
	dsn := url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(c.PostgresHost, c.PostgresPort),
		Path:   "/" + c.PostgresDB,
	}
	if c.PostgresUser != "" {
		dsn.User = url.UserPassword(c.PostgresUser, c.PostgresPass)
	}
	if c.PostgresSSL != "" {
		dsn.RawQuery = url.Values{"sslmode": {c.PostgresSSL}}.Encode()
	}
	return dsn.String()
}
