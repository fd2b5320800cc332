package config

import (
	"strings"
	"testing"
	"time"
)

func TestParseAppliesDefaults(t *testing.T) {
	c, err := Parse([]byte("environment: test\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if c.Server.Port != 8080 || c.Catalog.Backend != "memory" || c.Generator.DefaultHorizonDays != 30 {
		t.Fatalf("defaults not applied: %+v", c.Server)
	}
	if c.Cache.TTL != 24*time.Hour || c.Scheduler.PrewarmSpec != "0 5 0 * * *" {
		t.Fatalf("unexpected cache/scheduler defaults")
	}
	if c.Queue.Workers != 2 || c.Queue.Prefix != "finforge:queue" {
		t.Fatalf("unexpected queue defaults %+v", c.Queue)
	}
	if len(c.Kafka.Brokers) != 1 || c.Kafka.Brokers[0] != "localhost:9092" {
		t.Fatalf("unexpected brokers %v", c.Kafka.Brokers)
	}
}

func TestParseOverridesAndInstruments(t *testing.T) {
	doc := `
environment: prod
server: {port: 9090}
catalog:
  instruments:
    - {symbol: AAPL, current_price: 175.43, beta: 1.2}
`
	c, err := Parse([]byte(doc))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if c.Server.Port != 9090 || c.Server.ReadTimeout != 10*time.Second {
		t.Fatalf("override lost defaults: %+v", c.Server)
	}
	if len(c.Catalog.Instruments) != 1 || c.Catalog.Instruments[0].Beta != 1.2 {
		t.Fatalf("unexpected instruments %+v", c.Catalog.Instruments)
	}
}

func TestValidate(t *testing.T) {
	cases := map[string]string{
		"backend":    "environment: x\ncatalog: {backend: mongo}\n",
		"postgres":   "environment: x\ncatalog: {backend: postgres}\n",
		"instrument": "environment: x\ncatalog: {instruments: [{symbol: A, current_price: 0}]}\n",
		"finnhub":    "environment: x\nfinnhub: {enabled: true}\n",
		"horizon":    "environment: x\ngenerator: {default_horizon_days: -1}\n",
		"queue":      "environment: x\nqueue: {enabled: true}\n",
	}
	for name, doc := range cases {
		if _, err := Parse([]byte(doc)); err == nil {
			t.Errorf("%s: expected validation error", name)
		}
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("SYMBOLS", "AAPL, TSLA,")
	t.Setenv("REDIS_ADDR", "cache:6380")
	t.Setenv("HTTP_PORT", "7000")
	c, _ := Parse([]byte("environment: x\n"))
	c.applyEnv()
	if strings.Join(c.Finnhub.Symbols, ",") != "AAPL,TSLA" {
		t.Fatalf("unexpected symbols %v", c.Finnhub.Symbols)
	}
	if !c.Cache.Redis.Enabled || c.Cache.Redis.Host != "cache" || c.Cache.Redis.Port != 6380 {
		t.Fatalf("unexpected redis %+v", c.Cache.Redis)
	}
	if c.Server.Port != 7000 {
		t.Fatalf("unexpected port %d", c.Server.Port)
	}
}
