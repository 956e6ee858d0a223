package config

import (
	"crypto/rand"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	fileName  = "config"
	fileType  = "yaml"
	envPrefix = "SHORTY"
)

// Config is the resolved runtime configuration
type Config struct {
	Dir               string
	File              string
	StorageDir        string
	StorageDriver     string
	DatabaseURL       string
	Port              int
	BaseURL           string
	NotFoundURL       string
	SessionSecret     string
	RegistrationDelay time.Duration
	LogLevel          string
	AppEnv            string

	v              *viper.Viper
	derivedBaseURL bool
}

// DefaultDir is ~/.config/shorty
func DefaultDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".config", "shorty"), nil
}

func fileViper(dir string) *viper.Viper {
	v := viper.New()
	v.SetConfigType(fileType)
	v.SetConfigName(fileName)
	v.AddConfigPath(dir)
	return v
}

func newViper(dir string) *viper.Viper {
	v := fileViper(dir)

	// SHORTY_PORT overrides port, and so on
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	v.SetDefault("storage_driver", "json")
	v.SetDefault("port", 8080)
	v.SetDefault("registration_delay", "1s")
	v.SetDefault("log_level", "info")
	v.SetDefault("app_env", "local")
	return v
}

func readConfig(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("reading config file: %w", err)
		}
	}
	return nil
}

// Load reads config.yaml from dir, then the environment (including a .env
// file in the working directory), creating dir and the storage directory.
// Without a configured session_secret a random one is generated and saved.
func Load(dir string) (*Config, error) {
	// A missing .env is normal outside development
	_ = godotenv.Load()

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating config directory: %w", err)
	}

	v := newViper(dir)
	if err := readConfig(v); err != nil {
		return nil, err
	}

	// Storage lives next to the config unless told otherwise
	v.SetDefault("storage_dir", dir)

	c := &Config{
		Dir:               dir,
		File:              v.ConfigFileUsed(),
		StorageDir:        v.GetString("storage_dir"),
		StorageDriver:     v.GetString("storage_driver"),
		DatabaseURL:       v.GetString("database_url"),
		Port:              v.GetInt("port"),
		BaseURL:           v.GetString("base_url"),
		NotFoundURL:       v.GetString("not_found_url"),
		SessionSecret:     v.GetString("session_secret"),
		RegistrationDelay: v.GetDuration("registration_delay"),
		LogLevel:          v.GetString("log_level"),
		AppEnv:            v.GetString("app_env"),
		v:                 v,
	}
	if c.BaseURL == "" {
		c.BaseURL = fmt.Sprintf("http://localhost:%d", c.Port)
		c.derivedBaseURL = true
	}
	if c.Port <= 0 || c.Port > 65535 {
		return nil, fmt.Errorf("invalid port %d", c.Port)
	}
	if c.RegistrationDelay < 0 {
		return nil, fmt.Errorf("invalid registration_delay %s", c.RegistrationDelay)
	}

	if c.SessionSecret == "" {
		c.SessionSecret = rand.Text()
		file, err := persist(dir, "session_secret", c.SessionSecret)
		if err != nil {
			return nil, fmt.Errorf("saving session secret: %w", err)
		}
		v.Set("session_secret", c.SessionSecret)
		c.File = file
	}

	if err := os.MkdirAll(c.StorageDir, 0755); err != nil {
		return nil, fmt.Errorf("creating storage directory: %w", err)
	}
	return c, nil
}

// SetPort overrides the port, moving a derived base URL along with it
func (c *Config) SetPort(port int) {
	c.Port = port
	if c.derivedBaseURL {
		c.BaseURL = fmt.Sprintf("http://localhost:%d", port)
	}
}

// Settings returns every resolved key, for display
func (c *Config) Settings() map[string]any {
	return c.v.AllSettings()
}

// SetStorageDir persists storage_dir in dir's config file and returns the
// absolute path that was stored.
func SetStorageDir(dir, path string) (string, error) {
	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("converting to absolute path: %w", err)
		}
		path = absPath
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating config directory: %w", err)
	}

	if _, err := persist(dir, "storage_dir", path); err != nil {
		return "", err
	}
	return path, nil
}

// persist sets key in dir's config file, creating the file when missing,
// and returns the file's path. Keys from the environment are not written.
func persist(dir, key, value string) (string, error) {
	v := fileViper(dir)
	if err := readConfig(v); err != nil {
		return "", err
	}

	v.Set(key, value)

	if err := v.WriteConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return "", fmt.Errorf("writing config: %w", err)
		}
		// Config file doesn't exist yet
		file := filepath.Join(dir, fileName+"."+fileType)
		if err := v.SafeWriteConfigAs(file); err != nil {
			return "", fmt.Errorf("writing config: %w", err)
		}
		return file, nil
	}
	return v.ConfigFileUsed(), nil
}
