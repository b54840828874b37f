package config

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	HTTPAddress      string `mapstructure:"http_address"`
	RPCAddress       string `mapstructure:"rpc_address"`
	MetricsNamespace string `mapstructure:"metrics_namespace"`
	// HeartbeatSeconds is how long a connection may stay silent before it is dropped.
	HeartbeatSeconds int `mapstructure:"heartbeat_seconds"`
}

type DatabaseConfig struct {
	// Driver selects the round recorder: "gorm", "sql" or "none".
	Driver   string         `mapstructure:"driver"`
	Postgres PostgresConfig `mapstructure:"postgres"`
	// Writers is the number of background goroutines draining persistence jobs.
	Writers int `mapstructure:"writers"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.http_address", ":8080")
	v.SetDefault("server.rpc_address", ":8081")
	v.SetDefault("server.metrics_namespace", "teenpatti")
	v.SetDefault("server.heartbeat_seconds", 60)
	v.SetDefault("database.driver", "none")
	v.SetDefault("database.writers", 2)
	v.SetDefault("database.postgres.host", "localhost")
	v.SetDefault("database.postgres.port", 5432)
	v.SetDefault("database.postgres.user", "postgres")
	v.SetDefault("database.postgres.password", "")
	v.SetDefault("database.postgres.dbname", "teenpatti")
	v.SetDefault("log.level", "info")
}

// LoadConfig reads config.yaml from path. A .env file in the same directory,
// when present, is loaded into the environment first so that
// DATABASE_POSTGRES_PASSWORD and friends can override the file.
func LoadConfig(path string) (config *Config, err error) {
	if err = godotenv.Load(filepath.Join(path, ".env")); err != nil && !errors.Is(err, os.ErrNotExist) {
		return
	}

	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.SetEnvKeyReplacer(envReplacer)
	v.AutomaticEnv()
	setDefaults(v)

	if err = v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return
		}
		err = nil
	}

	err = v.Unmarshal(&config)
	return
}
