// notebook/config/config.go
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/vinizap/lumi/notebook/compression"
	"github.com/vinizap/lumi/notebook/crypt"
)

type Config struct {
	Port        string `yaml:"port"`
	Token       string `yaml:"token"`
	LogLevel    string `yaml:"log_level"`
	Compression int    `yaml:"compression"`
	Cipher      uint8  `yaml:"cipher"`
	Hash        uint8  `yaml:"hash"`
	SecureHash  uint8  `yaml:"secure_hash"`
}

func Default() *Config {
	return &Config{
		Port:        "8080",
		Token:       "dev",
		LogLevel:    "info",
		Compression: compression.LevelDefault,
		Cipher:      crypt.CipherNone,
	}
}

// Load builds the configuration from defaults, a .env file in the working
// directory, the YAML file at path (or $LUMI_CONFIG) and LUMI_* variables,
// later sources winning. A missing .env or default config file is ignored;
// a missing explicit path is an error.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := Default()
	explicit := path != ""
	if !explicit {
		path = os.Getenv("LUMI_CONFIG")
	}
	if path != "" {
		if err := cfg.readFile(path); err != nil {
			if explicit || !errors.Is(err, fs.ErrNotExist) {
				return nil, err
			}
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) readFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("LUMI_PORT"); v != "" {
		c.Port = v
	}
	if v := os.Getenv("LUMI_TOKEN"); v != "" {
		c.Token = v
	}
	if v := os.Getenv("LUMI_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("LUMI_COMPRESSION"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("LUMI_COMPRESSION: %w", err)
		}
		c.Compression = n
	}
	if v := os.Getenv("LUMI_CIPHER"); v != "" {
		n, err := strconv.ParseUint(v, 10, 8)
		if err != nil {
			return fmt.Errorf("LUMI_CIPHER: %w", err)
		}
		c.Cipher = uint8(n)
	}
	return nil
}

// Validate rejects settings the codec would refuse at save time.
func (c *Config) Validate() error {
	if !compression.ValidLevel(c.Compression) {
		return fmt.Errorf("compression %d: %w", c.Compression, compression.ErrLevel)
	}
	if c.Cipher != crypt.CipherNone && !crypt.IsCipherSupported(c.Cipher) {
		return fmt.Errorf("cipher %d: %w", c.Cipher, crypt.ErrUnsupportedAlgorithm)
	}
	if !crypt.IsHashSupported(c.Hash) {
		return fmt.Errorf("hash %d: %w", c.Hash, crypt.ErrUnsupportedAlgorithm)
	}
	if !crypt.IsSecureHashSupported(c.SecureHash) {
		return fmt.Errorf("secure hash %d: %w", c.SecureHash, crypt.ErrUnsupportedAlgorithm)
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	return nil
}

// Level returns the configured log level, info when unset.
func (c *Config) Level() zerolog.Level {
	l, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil || l == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return l
}
