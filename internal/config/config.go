package config

import (
	"fmt"
	"os"
	"strconv"
)

type DBConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	SSLMode         string
	TimeZone        string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifeTime int // minutes
}

type AppConfig struct {
	HTTPAddr string
	// IANA zone for the "is this booking in the past" check and the
	// cancellation window.
	TimeZone string
	// Bound on post-commit side effects (emails, calendar calls), seconds.
	SideEffectTimeoutSec int
}

func LoadDBConfig() (*DBConfig, error) {
	cfg := &DBConfig{
		Host:            getEnv("DB_HOST", "postgres"),
		User:            getEnv("DB_USER", "booking"),
		Password:        getEnv("DB_PASSWORD", "booking"),
		Name:            getEnv("DB_NAME", "booking_db"),
		SSLMode:         getEnv("DB_SSLMODE", "disable"),
		TimeZone:        getEnv("DB_TIMEZONE", "UTC"),
		Port:            getEnvInt("DB_PORT", 5432),
		MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 10),
		MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
		ConnMaxLifeTime: getEnvInt("DB_CONN_MAX_LIFETIME_MIN", 30),
	}

	if cfg.Host == "" || cfg.User == "" || cfg.Name == "" {
		return nil, fmt.Errorf("invalid DB config: host/user/name must not be empty")
	}

	return cfg, nil
}

func LoadAppConfig() *AppConfig {
	return &AppConfig{
		HTTPAddr:             getEnv("HTTP_ADDR", ":8080"),
		TimeZone:             getEnv("APP_TIMEZONE", "UTC"),
		SideEffectTimeoutSec: getEnvInt("SIDE_EFFECT_TIMEOUT_SEC", 5),
	}
}

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}
