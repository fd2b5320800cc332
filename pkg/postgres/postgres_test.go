package postgres

import (
	"testing"
	"time"
)

func TestParseConfigAppliesOptions(t *testing.T) {
	cfg, err := ParseConfig("postgres://u:p@localhost:5432/finforge?sslmode=disable",
		WithMaxConns(7), WithMinConns(2), WithConnLifetimes(time.Minute, time.Hour))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.MaxConns != 7 || cfg.MinConns != 2 {
		t.Fatalf("conns=%d/%d", cfg.MaxConns, cfg.MinConns)
	}
	if cfg.MaxConnIdleTime != time.Minute || cfg.MaxConnLifetime != time.Hour {
		t.Fatalf("lifetimes=%v/%v", cfg.MaxConnIdleTime, cfg.MaxConnLifetime)
	}
	if cfg.ConnConfig.Database != "finforge" {
		t.Fatalf("database=%q", cfg.ConnConfig.Database)
	}
}

func TestParseConfigErrors(t *testing.T) {
	if _, err := ParseConfig(""); err == nil {
		t.Fatalf("expected error for empty dsn")
	}
	if _, err := ParseConfig("postgres://u:p@localhost:notaport/db"); err == nil {
		t.Fatalf("expected error for bad dsn")
	}
}
