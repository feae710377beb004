package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.ServiceName != "quorum" {
		t.Fatalf("expected default service name, got %s", cfg.ServiceName)
	}
	if cfg.HTTPPort != "8080" {
		t.Fatalf("expected default port, got %s", cfg.HTTPPort)
	}
	if cfg.SessionDeadline != 5*time.Minute {
		t.Fatalf("expected default deadline 5m, got %v", cfg.SessionDeadline)
	}
	if cfg.TimeoutApprovalRatio != 0.7 || cfg.ConditionalEnergyRatio != 1.2 {
		t.Fatalf("unexpected ratio defaults %f/%f", cfg.TimeoutApprovalRatio, cfg.ConditionalEnergyRatio)
	}
	if !cfg.EnableOutboxRelay || !cfg.EnableDeadlineSweeper {
		t.Fatalf("expected worker loops enabled by default")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SERVICE_NAME", "quorum-staging")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("KAFKA_BROKERS", "broker-1:9092, broker-2:9092")
	t.Setenv("APPROVAL_SESSION_DEADLINE", "90s")
	t.Setenv("APPROVAL_TIMEOUT_RATIO", "0.5")
	t.Setenv("ENABLE_OUTBOX_RELAY", "false")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.ServiceName != "quorum-staging" || cfg.HTTPPort != "9090" {
		t.Fatalf("unexpected overrides %+v", cfg)
	}
	if len(cfg.KafkaBrokers) != 2 || cfg.KafkaBrokers[1] != "broker-2:9092" {
		t.Fatalf("unexpected brokers %v", cfg.KafkaBrokers)
	}
	if cfg.SessionDeadline != 90*time.Second || cfg.TimeoutApprovalRatio != 0.5 {
		t.Fatalf("unexpected tunables %+v", cfg)
	}
	if cfg.EnableOutboxRelay {
		t.Fatalf("expected relay disabled")
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("APPROVAL_SESSION_DEADLINE", "soon")
	t.Setenv("APPROVAL_TIMEOUT_RATIO", "-1")
	t.Setenv("ENABLE_DEADLINE_SWEEPER", "maybe")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.SessionDeadline != 5*time.Minute || cfg.TimeoutApprovalRatio != 0.7 {
		t.Fatalf("expected fallbacks for bad values, got %+v", cfg)
	}
	if !cfg.EnableDeadlineSweeper {
		t.Fatalf("expected fallback true for unparseable flag")
	}
}
