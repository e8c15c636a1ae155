package config

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"
)

// PostgresConfig holds connection settings for a shared-database install.
type PostgresConfig struct {
	Host     string `json:"host"`
	Port     string `json:"port"`
	Username string `json:"username"`
	Password string `json:"password"`
	Database string `json:"database"`
}

// StorageConfig selects and configures the durable save backend.
type StorageConfig struct {
	Type     string         `json:"type"` // sqlite, postgres or memory
	Path     string         `json:"path"` // sqlite file path; empty means in-memory
	Postgres PostgresConfig `json:"postgres"`
}

// Config is the resolved engine configuration.
type Config struct {
	LogLevel        string        `json:"logLevel"`
	SaveKey         string        `json:"saveKey"`
	DefaultCampaign string        `json:"defaultCampaign"`
	Storage         StorageConfig `json:"storage"`
}

// Load reads configuration from an optional JSON file in configDir and sets
// default values. A missing config file is not an error; the engine must be
// able to boot on defaults alone.
func Load(configDir string) (*Config, error) {
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("saveKey", "three_kingdoms_tactics_save")
	viper.SetDefault("defaultCampaign", "liubei")

	viper.SetDefault("storage.type", "sqlite")
	viper.SetDefault("storage.path", "./progression.db")

	viper.SetDefault("storage.postgres.host", "localhost")
	viper.SetDefault("storage.postgres.port", "5432")
	viper.SetDefault("storage.postgres.username", "postgres")
	viper.SetDefault("storage.postgres.password", "postgres")
	viper.SetDefault("storage.postgres.database", "tactics")

	viper.SetConfigName("progression.cfg.json")
	viper.AddConfigPath(configDir)
	viper.SetConfigType("json")

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	return &Config{
		LogLevel:        viper.GetString("logLevel"),
		SaveKey:         viper.GetString("saveKey"),
		DefaultCampaign: viper.GetString("defaultCampaign"),
		Storage: StorageConfig{
			Type: viper.GetString("storage.type"),
			Path: viper.GetString("storage.path"),
			Postgres: PostgresConfig{
				Host:     viper.GetString("storage.postgres.host"),
				Port:     viper.GetString("storage.postgres.port"),
				Username: viper.GetString("storage.postgres.username"),
				Password: viper.GetString("storage.postgres.password"),
				Database: viper.GetString("storage.postgres.database"),
			},
		},
	}, nil
}
