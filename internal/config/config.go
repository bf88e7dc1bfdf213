package config

import (
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	LogLevel    string `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	HTTPPort    string `yaml:"http-port" env:"HTTP_PORT" env-default:"9090"`
	SocketPort  string `yaml:"socket-port" env:"SOCKET_PORT" env-default:"8080"`
	CatalogPath string `yaml:"catalog-path" env:"CATALOG_PATH" env-default:""`
	Redis       Redis  `yaml:"redis"`
	Match       Match  `yaml:"match"`
}

type Redis struct {
	Host     string `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port     string `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
	Password string `yaml:"password" env:"REDIS_PASSWORD" env-default:""`
	DB       int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
}

// Match holds the matchmaking constants.
type Match struct {
	StartDelay    time.Duration `yaml:"start-delay" env:"MATCH_START_DELAY" env-default:"21s"`
	ReapInterval  time.Duration `yaml:"reap-interval" env:"MATCH_REAP_INTERVAL" env-default:"30s"`
	DefaultRating int           `yaml:"default-rating" env:"MATCH_DEFAULT_RATING" env-default:"1000"`
	SendBuffer    int           `yaml:"send-buffer" env:"MATCH_SEND_BUFFER" env-default:"64"`
}

// MustLoad - load all configurations in config.yml file. CONFIG_PATH overrides path.
func MustLoad(path string) *Config {
	config, err := Load(path)
	if err != nil {
		panic(err)
	}

	return config
}

func Load(path string) (*Config, error) {
	if override := os.Getenv("CONFIG_PATH"); override != "" {
		path = override
	}

	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		return nil, fmt.Errorf("unable to load config file: %w", err)
	}

	return config, nil
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}
