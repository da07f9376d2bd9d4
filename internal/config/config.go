// Package config reads runtime settings from the environment.
package config

import (
	"errors"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

const (
	EnvDevelopment = "development"

	devMongoURI  = "mongodb://localhost:27017"
	devJWTSecret = "medicare-dev-secret"
)

type Config struct {
	Env               string
	MongoURI          string
	MongoDatabase     string
	JWTSecret         string
	Port              string
	CORSOrigins       []string
	RazorpayKeyID     string
	RazorpayKeySecret string
	TextbeltAPIKey    string
	SentryDSN         string
	LogLevel          string
}

// Load reads .env (when present) and then the process environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		logrus.Debug("no .env file found, relying on environment variables")
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a lookup function. Development gets local
// defaults for the database and the signing secret; other environments
// must set them explicitly.
func FromEnv(getenv func(string) string) *Config {
	cfg := &Config{
		Env:               getOr(getenv, "APP_ENV", EnvDevelopment),
		MongoURI:          getenv("MONGODB_URI"),
		MongoDatabase:     getOr(getenv, "MONGODB_DATABASE", "MediCareDb"),
		JWTSecret:         getenv("JWT_SECRET"),
		Port:              getOr(getenv, "PORT", getOr(getenv, "API_PORT", "8080")),
		CORSOrigins:       splitList(getOr(getenv, "CORS_ORIGINS", "http://localhost:3000")),
		RazorpayKeyID:     getenv("RAZORPAY_KEY_ID"),
		RazorpayKeySecret: getenv("RAZORPAY_KEY_SECRET"),
		TextbeltAPIKey:    getenv("TEXTBELT_API_KEY"),
		SentryDSN:         getenv("SENTRY_DSN"),
		LogLevel:          getOr(getenv, "LOG_LEVEL", "info"),
	}
	if cfg.IsDevelopment() {
		if cfg.MongoURI == "" {
			cfg.MongoURI = devMongoURI
		}
		if cfg.JWTSecret == "" {
			cfg.JWTSecret = devJWTSecret
		}
	}
	return cfg
}

func (c *Config) IsDevelopment() bool {
	return c.Env == EnvDevelopment
}

// Validate fails when a production deployment is missing required secrets.
func (c *Config) Validate() error {
	var errs []error
	if c.MongoURI == "" {
		errs = append(errs, errors.New("MONGODB_URI is required"))
	}
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	} else if !c.IsDevelopment() && c.JWTSecret == devJWTSecret {
		errs = append(errs, errors.New("JWT_SECRET must not use the development default"))
	}
	return errors.Join(errs...)
}

// PaymentsEnabled reports whether Razorpay credentials are present.
func (c *Config) PaymentsEnabled() bool {
	return c.RazorpayKeyID != "" && c.RazorpayKeySecret != ""
}

func getOr(getenv func(string) string, key, fallback string) string {
	if v := strings.TrimSpace(getenv(key)); v != "" {
		return v
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
