package config

import (
	"testing"
	"time"
)

func TestLoadAppliesDefaultsWithoutConfigFile(t *testing.T) {
	t.Setenv("CODEXEC_KAFKA_SCRIPTS_TOPIC", "")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Kafka.ScriptsTopic != "scripts" {
		t.Fatalf("expected default scripts topic, got %q", cfg.Kafka.ScriptsTopic)
	}
	if cfg.Kafka.ResultsTopic != "script-results" {
		t.Fatalf("expected default results topic, got %q", cfg.Kafka.ResultsTopic)
	}
	if cfg.Kafka.GroupID != "codexec-runner" {
		t.Fatalf("expected default group id, got %q", cfg.Kafka.GroupID)
	}
	if cfg.DockerBinary != "docker" {
		t.Fatalf("expected default docker binary, got %q", cfg.DockerBinary)
	}
	if cfg.DedupTTL != 10*time.Second {
		t.Fatalf("expected default dedup ttl, got %v", cfg.DedupTTL)
	}
	if cfg.MaxParallel <= 0 {
		t.Fatalf("expected positive default max parallel, got %d", cfg.MaxParallel)
	}
}

func TestLoadHonorsEnvironmentOverrides(t *testing.T) {
	t.Setenv("CODEXEC_KAFKA_SCRIPTS_TOPIC", "custom-scripts")
	t.Setenv("CODEXEC_MAX_PARALLEL", "7")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Kafka.ScriptsTopic != "custom-scripts" {
		t.Fatalf("expected env override for scripts topic, got %q", cfg.Kafka.ScriptsTopic)
	}
	if cfg.MaxParallel != 7 {
		t.Fatalf("expected env override for max parallel, got %d", cfg.MaxParallel)
	}
}

func TestLoadRejectsMissingConfigFile(t *testing.T) {
	if _, err := Load("/nonexistent/codexecd.yaml"); err == nil {
		t.Fatalf("expected error for missing config file")
	}
}
