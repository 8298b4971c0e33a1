package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("TRUTREND_BIND_ADDR", "")
	t.Setenv("KAFKA_BROKERS", "")
	t.Setenv("REPORT_TTL", "")

	cfg := FromEnv()
	if cfg.BindAddr != ":8080" {
		t.Fatalf("expected default bind addr, got %q", cfg.BindAddr)
	}
	if cfg.KafkaBrokers != nil {
		t.Fatalf("expected no brokers by default, got %v", cfg.KafkaBrokers)
	}
	if cfg.ReportTTL != 24*time.Hour {
		t.Fatalf("expected 24h report TTL, got %s", cfg.ReportTTL)
	}
	if cfg.KafkaTopic != "trutrend.findings" {
		t.Fatalf("expected default topic, got %q", cfg.KafkaTopic)
	}
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("TRUTREND_BIND_ADDR", ":9999")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092")
	t.Setenv("REPORT_TTL", "90m")

	cfg := FromEnv()
	if cfg.BindAddr != ":9999" {
		t.Fatalf("bind addr override not applied: %q", cfg.BindAddr)
	}
	if len(cfg.KafkaBrokers) != 2 || cfg.KafkaBrokers[1] != "kafka-2:9092" {
		t.Fatalf("broker list not parsed: %v", cfg.KafkaBrokers)
	}
	if cfg.ReportTTL != 90*time.Minute {
		t.Fatalf("TTL override not applied: %s", cfg.ReportTTL)
	}
}

func TestFromEnvIgnoresBadTTL(t *testing.T) {
	t.Setenv("REPORT_TTL", "not-a-duration")
	if cfg := FromEnv(); cfg.ReportTTL != 24*time.Hour {
		t.Fatalf("bad TTL must fall back to default, got %s", cfg.ReportTTL)
	}
}

func TestLoadThresholdsDefaults(t *testing.T) {
	th, err := LoadThresholds("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if th.PostprandialGlucoseMgDL != 180 || th.CarbMinMeals != 3 {
		t.Fatalf("defaults not returned: %+v", th)
	}
}

func TestLoadThresholdsOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "thresholds.yaml")
	body := "postprandial_glucose_mg_dl: 170\ncarb_min_meals: 4\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	th, err := LoadThresholds(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if th.PostprandialGlucoseMgDL != 170 {
		t.Fatalf("override not applied: %.1f", th.PostprandialGlucoseMgDL)
	}
	if th.CarbMinMeals != 4 {
		t.Fatalf("override not applied: %d", th.CarbMinMeals)
	}
	// Untouched fields keep their defaults.
	if th.MistimedDelayMin != 10 {
		t.Fatalf("default lost on overlay: %.1f", th.MistimedDelayMin)
	}
}

func TestLoadThresholdsRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "thresholds.yaml")
	if err := os.WriteFile(path, []byte("carb_bucket_grams: -5\n"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	if _, err := LoadThresholds(path); err == nil {
		t.Fatalf("expected validation error for negative bucket size")
	}
}

func TestLoadThresholdsMissingFile(t *testing.T) {
	if _, err := LoadThresholds(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
