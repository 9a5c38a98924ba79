package sharehub

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/pelletier/go-toml/v2"
)

func LoadConfig(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config: %w", err)
	}
	defer file.Close()

	var cfg Config
	if err = toml.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type Config struct {
	Log     LogConfig     `toml:"log"`
	Web     WebConfig     `toml:"web"`
	DB      DBConfig      `toml:"db"`
	Storage StorageConfig `toml:"storage"`
	Notify  NotifyConfig  `toml:"notify"`
	Auth    AuthConfig    `toml:"auth"`
}

type LogConfig struct {
	Level     slog.Level `toml:"level"`
	Format    string     `toml:"format"`
	AddSource bool       `toml:"add_source"`
}

type WebConfig struct {
	Host         string `toml:"host"`
	Port         int    `toml:"port"`
	AllowOrigins string `toml:"allow_origins"`
}

type DBConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	Database string `toml:"database"`
	PoolSize int    `toml:"pool_size"`
}

type StorageConfig struct {
	Key    string `toml:"key"`
	Secret string `toml:"secret"`
	Region string `toml:"region"`
	Bucket string `toml:"bucket"`
	Root   string `toml:"root"`
}

type NotifyConfig struct {
	Enabled  bool   `toml:"enabled"`
	Region   string `toml:"region"`
	Key      string `toml:"key"`
	Secret   string `toml:"secret"`
	TopicARN string `toml:"topic_arn"`
}

// AuthConfig controls identity resolution. AllowUnverifiedIdentity enables the
// legacy compatibility shim that accepts a caller-supplied user id when no bearer
// token is present. It is off unless a deployment explicitly opts in.
type AuthConfig struct {
	AllowUnverifiedIdentity bool `toml:"allow_unverified_identity"`
}
