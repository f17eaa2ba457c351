package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// fileConfig holds the non-secret settings that may live in a YAML file.
// Secrets (JWT secret, passwords) are environment-only.
type fileConfig struct {
	Env                 string   `yaml:"env"`
	Port                int      `yaml:"port"`
	Store               string   `yaml:"store"`
	DBMaxConns          int      `yaml:"db_max_conns"`
	SQLitePath          string   `yaml:"sqlite_path"`
	JWTAccessTTLMinutes int      `yaml:"jwt_access_ttl_minutes"`
	RedisAddr           string   `yaml:"redis_addr"`
	RedisDB             int      `yaml:"redis_db"`
	CacheTTLSeconds     int      `yaml:"cache_ttl_seconds"`
	CORSOrigins         []string `yaml:"cors_origins"`
	OTELEndpoint        string   `yaml:"otel_endpoint"`
	OTELSampleRatio     float64  `yaml:"otel_sample_ratio"`
	MaxBodyBytes        int      `yaml:"max_body_bytes"`
}

func loadFile(path string) (fileConfig, error) {
	var fc fileConfig
	if path == "" {
		return fc, nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return fc, fmt.Errorf("read config file: %w", err)
	}

	if err := yaml.Unmarshal(b, &fc); err != nil {
		return fc, fmt.Errorf("parse config file %s: %w", path, err)
	}

	return fc, nil
}
