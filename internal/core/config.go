package core

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/go-playground/validator"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/jo-hoe/picturedrop/internal/backend/database"
	"github.com/jo-hoe/picturedrop/internal/backend/imageformat"
)

// DefaultPort matches the port the landing page was historically served on.
const DefaultPort = 5000

type HiveConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port" validate:"gte=0,lte=65535"`
	Auth     string `yaml:"auth" validate:"omitempty,oneof=NONE NOSASL LDAP CUSTOM KERBEROS"`
	Database string `yaml:"database"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

type Database struct {
	Type             string     `yaml:"type" validate:"required,oneof=sqlite postgres hive redis"`
	ConnectionString string     `yaml:"connectionString"`
	Hive             HiveConfig `yaml:"hive"`
}

type UploadConfig struct {
	// MaxBytes limits the upload size; zero disables the limit.
	MaxBytes int64 `yaml:"maxBytes" validate:"gte=0"`
	// AllowedFormats restricts uploads to the listed image formats; empty allows any payload.
	AllowedFormats []string `yaml:"allowedFormats"`
}

type ServiceConfig struct {
	Port     int          `yaml:"port" validate:"gte=0,lte=65535"`
	Database Database     `yaml:"database"`
	Upload   UploadConfig `yaml:"upload"`
}

// LoadConfig loads configuration from the specified YAML file.
// ${VAR} references are expanded from the environment, optionally seeded from a .env file.
func LoadConfig(configPath string) (*ServiceConfig, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", "error", err)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	var config ServiceConfig
	err = yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &config)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", configPath, err)
	}

	if config.Port == 0 {
		config.Port = DefaultPort
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

func validateConfig(config *ServiceConfig) error {
	if err := validator.New().Struct(config); err != nil {
		return err
	}

	switch config.Database.Type {
	case database.TypeHive:
		if config.Database.Hive.Host == "" {
			return errors.New("database.hive.host is required for hive")
		}
	default:
		if config.Database.ConnectionString == "" {
			return fmt.Errorf("database.connectionString is required for %s", config.Database.Type)
		}
	}

	for i, format := range config.Upload.AllowedFormats {
		if !imageformat.IsKnown(format) {
			return fmt.Errorf("upload.allowedFormats[%d]: unknown format %q", i, format)
		}
	}

	return nil
}

func (c *ServiceConfig) hiveConfig() database.HiveConfig {
	return database.HiveConfig{
		Host:     c.Database.Hive.Host,
		Port:     c.Database.Hive.Port,
		Auth:     c.Database.Hive.Auth,
		Database: c.Database.Hive.Database,
		Username: c.Database.Hive.Username,
		Password: c.Database.Hive.Password,
	}
}
