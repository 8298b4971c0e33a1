// Package config loads service configuration from the environment, with an
// optional YAML file for the clinical rule thresholds.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vm799/Diabetes-Data-Analytics-Platform/internal/rules"
)

type Config struct {
	BindAddr        string        // e.g. ":8080"
	RedisAddr       string        // empty means in-memory report store
	RedisDB         int
	KafkaBrokers    []string // empty means findings publishing disabled
	KafkaTopic      string   // e.g. "trutrend.findings"
	ReportTTL       time.Duration
	ShutdownTimeout time.Duration
	ThresholdsFile  string // optional YAML overriding rule thresholds
}

func FromEnv() Config {
	bind := os.Getenv("TRUTREND_BIND_ADDR")
	if bind == "" {
		bind = ":8080"
	}
	topic := os.Getenv("KAFKA_FINDINGS_TOPIC")
	if topic == "" {
		topic = "trutrend.findings"
	}
	var brokers []string
	if s := os.Getenv("KAFKA_BROKERS"); s != "" {
		for _, b := range strings.Split(s, ",") {
			if b = strings.TrimSpace(b); b != "" {
				brokers = append(brokers, b)
			}
		}
	}
	ttl := 24 * time.Hour
	if s := os.Getenv("REPORT_TTL"); s != "" {
		if d, err := time.ParseDuration(s); err == nil && d > 0 {
			ttl = d
		}
	}
	shutdown := 10 * time.Second
	if s := os.Getenv("SHUTDOWN_TIMEOUT"); s != "" {
		if d, err := time.ParseDuration(s); err == nil && d > 0 {
			shutdown = d
		}
	}
	return Config{
		BindAddr:        bind,
		RedisAddr:       os.Getenv("REDIS_ADDR"),
		RedisDB:         0,
		KafkaBrokers:    brokers,
		KafkaTopic:      topic,
		ReportTTL:       ttl,
		ShutdownTimeout: shutdown,
		ThresholdsFile:  os.Getenv("TRUTREND_THRESHOLDS_FILE"),
	}
}

// LoadThresholds returns the default rule thresholds, overlaid with any
// values set in the YAML file at path. An empty path yields the defaults.
func LoadThresholds(path string) (rules.Thresholds, error) {
	th := rules.DefaultThresholds()
	if path == "" {
		return th, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return th, fmt.Errorf("read thresholds file: %w", err)
	}
	if err := yaml.Unmarshal(raw, &th); err != nil {
		return th, fmt.Errorf("parse thresholds file: %w", err)
	}
	if err := validateThresholds(th); err != nil {
		return th, err
	}
	return th, nil
}

func validateThresholds(th rules.Thresholds) error {
	switch {
	case th.PostprandialGlucoseMgDL <= 0:
		return fmt.Errorf("postprandial glucose threshold must be positive, got %.1f", th.PostprandialGlucoseMgDL)
	case th.PostprandialWindowMin <= 0:
		return fmt.Errorf("postprandial window must be positive, got %d", th.PostprandialWindowMin)
	case th.CarbBucketGrams <= 0:
		return fmt.Errorf("carb bucket size must be positive, got %.1f", th.CarbBucketGrams)
	case th.CarbMinMeals < 1:
		return fmt.Errorf("carb minimum meal count must be at least 1, got %d", th.CarbMinMeals)
	}
	return nil
}
