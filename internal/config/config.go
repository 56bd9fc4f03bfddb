// Package config loads the web app configuration from an optional YAML file
// with environment overrides. Environment always wins so deployments can
// tweak a container without rebuilding the config file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the full runtime configuration.
type Config struct {
	Addr         string `yaml:"addr"`
	TemplatesDir string `yaml:"templates_dir"`
	PublicDir    string `yaml:"public_dir"`
	Dev          bool   `yaml:"dev"`
	Env          string `yaml:"env"` // "prod" hardens cookies

	API     APIConfig     `yaml:"api"`
	Gallery GalleryConfig `yaml:"gallery"`
}

// APIConfig addresses the backend services. Drives and users URLs fall back
// to the cars URL. An empty cars URL switches the app to seeded static data.
type APIConfig struct {
	CarsBaseURL   string `yaml:"cars_base_url"`
	DrivesBaseURL string `yaml:"drives_base_url"`
	UsersBaseURL  string `yaml:"users_base_url"`
}

// GalleryConfig tunes the batched image enrichment.
type GalleryConfig struct {
	Concurrency int `yaml:"concurrency"`
	PauseMS     int `yaml:"pause_ms"`
}

// Default returns the built-in configuration.
func Default() Config {
	// Port resolution: MOTORLINE_WEB_PORT, then PORT, else 8080.
	port := os.Getenv("MOTORLINE_WEB_PORT")
	if port == "" {
		port = os.Getenv("PORT")
	}
	if port == "" {
		port = "8080"
	}
	return Config{
		Addr:         ":" + port,
		TemplatesDir: "templates",
		PublicDir:    "public",
		Gallery: GalleryConfig{
			Concurrency: 8,
			PauseMS:     50,
		},
	}
}

// Load builds the configuration from defaults, then the YAML file at path
// (missing file is fine), then environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// optional file
		case err != nil:
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
			}
		}
	}

	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	setString(&cfg.Addr, "MOTORLINE_WEB_ADDR")
	setString(&cfg.TemplatesDir, "MOTORLINE_WEB_TEMPLATES")
	setString(&cfg.PublicDir, "MOTORLINE_WEB_PUBLIC")
	setString(&cfg.Env, "MOTORLINE_WEB_ENV")
	setString(&cfg.API.CarsBaseURL, "MOTORLINE_WEB_API_BASE_URL")
	setString(&cfg.API.DrivesBaseURL, "MOTORLINE_WEB_DRIVES_BASE_URL")
	setString(&cfg.API.UsersBaseURL, "MOTORLINE_WEB_USERS_BASE_URL")
	setInt(&cfg.Gallery.Concurrency, "MOTORLINE_WEB_GALLERY_CONCURRENCY")
	setInt(&cfg.Gallery.PauseMS, "MOTORLINE_WEB_GALLERY_PAUSE_MS")
	if v := os.Getenv("MOTORLINE_WEB_DEV"); v != "" {
		cfg.Dev = v != "0" && !strings.EqualFold(v, "false")
	}
}

func setString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			*dst = n
		}
	}
}

// Prod reports whether the deployment environment is production.
func (c Config) Prod() bool {
	return strings.EqualFold(strings.TrimSpace(c.Env), "prod")
}
