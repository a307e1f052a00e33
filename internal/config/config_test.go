package config

import (
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.TimeLimit != 60*time.Second {
		t.Fatalf("expected default time limit of 60s, got %v", cfg.TimeLimit)
	}
	if cfg.LocalServerAddress.Host != "*localhost" {
		t.Fatalf("expected default loopback bind *localhost, got %q", cfg.LocalServerAddress.Host)
	}
}

func TestDecodeOverridesDefaults(t *testing.T) {
	cfg, err := Decode(map[string]interface{}{
		"address": map[string]interface{}{
			"host": "news.example.com",
			"port": 119,
		},
		"group":      "local.test",
		"time_limit": "30s",
	})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Address.Host != "news.example.com" || cfg.Address.Port != 119 {
		t.Fatalf("got %#v", cfg.Address)
	}
	if cfg.TimeLimit != 30*time.Second {
		t.Fatalf("expected time_limit 30s, got %v", cfg.TimeLimit)
	}
	// Fields not present in raw keep their Default() value.
	if cfg.TriggerTimeout != 10*time.Second {
		t.Fatalf("expected default trigger_timeout to survive, got %v", cfg.TriggerTimeout)
	}
}

func TestTestArg(t *testing.T) {
	cfg := Default()
	if _, ok := cfg.TestArg("post_retrieve", "group"); ok {
		t.Fatal("expected no override before SetTestArg")
	}
	cfg.SetTestArg("post_retrieve", "group", "local.other")
	v, ok := cfg.TestArg("post_retrieve", "group")
	if !ok || v != "local.other" {
		t.Fatalf("got %q, %v", v, ok)
	}
}
