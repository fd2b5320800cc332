package clickhouse

import (
	"context"
	"testing"
	"time"

	ch "github.com/ClickHouse/clickhouse-go/v2"
)

func TestBuildOptions(t *testing.T) {
	cfg := defaultConfig()
	for _, opt := range []ClientOption{
		WithHost("ch.local"),
		WithPort(8123),
		WithDatabase("finforge"),
		WithCredentials("svc", "secret"),
		WithHTTP(true),
		WithMaxExecutionTime(30 * time.Second),
	} {
		opt(cfg)
	}

	opts := buildOptions(cfg)
	if len(opts.Addr) != 1 || opts.Addr[0] != "ch.local:8123" {
		t.Fatalf("unexpected addr %v", opts.Addr)
	}
	if opts.Auth.Database != "finforge" || opts.Auth.Username != "svc" || opts.Auth.Password != "secret" {
		t.Fatalf("unexpected auth %+v", opts.Auth)
	}
	if opts.Protocol != ch.HTTP {
		t.Fatalf("expected http protocol")
	}
	if opts.Settings["max_execution_time"] != 30 {
		t.Fatalf("unexpected settings %v", opts.Settings)
	}
}

func TestNewClientRequiresHost(t *testing.T) {
	if _, err := NewClient(context.Background()); err == nil {
		t.Fatalf("expected error without host")
	}
}

func TestConfigValidation(t *testing.T) {
	cfg := defaultConfig()
	WithHost("ch.local")(cfg)
	WithPort(0)(cfg)
	if err := cfg.validate(); err == nil {
		t.Fatalf("expected port error")
	}

	cfg = defaultConfig()
	WithHost("ch.local")(cfg)
	WithMaxConnections(4, 8)(cfg)
	WithCompression(true)(cfg)
	if err := cfg.validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if cfg.MaxIdleConns != 4 {
		t.Fatalf("idle connections must be capped at open, got %d", cfg.MaxIdleConns)
	}
	opts := buildOptions(cfg)
	if opts.Compression == nil || opts.Compression.Method != ch.CompressionLZ4 {
		t.Fatalf("expected lz4 compression")
	}
	if opts.Protocol != ch.Native || opts.Addr[0] != "ch.local:9000" {
		t.Fatalf("unexpected protocol/addr %v %v", opts.Protocol, opts.Addr)
	}
}
