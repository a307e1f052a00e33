// Package config holds the harness's resolved configuration record.
package config

import (
	"fmt"
	"time"

	"github.com/mitchellh/mapstructure"
)

// Address is a (host, port) pair, used for both the subject server and the
// loopback peering server's bind address.
type Address struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

func (a Address) String() string {
	return fmt.Sprintf("%s:%d", a.Host, a.Port)
}

// Config is every option the harness recognises: subject address, loopback
// peer address, posting identity, time limits, credentials, and per-test
// argument overrides.
type Config struct {
	Address Address `mapstructure:"address"`

	Group     string `mapstructure:"group"`
	Hierarchy string `mapstructure:"hierarchy"`

	Email  string `mapstructure:"email"`
	Domain string `mapstructure:"domain"`

	LocalServerAddress Address `mapstructure:"local_server_address"`

	TimeLimit time.Duration `mapstructure:"time_limit"`

	Trigger        string        `mapstructure:"trigger"`
	TriggerTimeout time.Duration `mapstructure:"trigger_timeout"`

	NNRPUser     string `mapstructure:"nnrp_user"`
	NNRPPassword string `mapstructure:"nnrp_password"`
	NNTPUser     string `mapstructure:"nntp_user"`
	NNTPPassword string `mapstructure:"nntp_password"`

	// Args carries --arg test:key=value overrides, keyed by test name then argument key.
	Args map[string]map[string]string `mapstructure:"-"`
}

// Default returns a Config with the harness's baseline defaults: the
// loopback bind address, a 60s propagation time limit, and a 10s trigger
// timeout, matching the original harness's defaults.
func Default() *Config {
	return &Config{
		LocalServerAddress: Address{Host: "*localhost", Port: 1119},
		Group:              "local.test",
		Hierarchy:          "local",
		Email:              "test@test.invalid",
		Domain:             "test.invalid",
		TimeLimit:          60 * time.Second,
		TriggerTimeout:     10 * time.Second,
		Args:               make(map[string]map[string]string),
	}
}

// Decode merges raw (typically parsed from YAML/JSON/a flat map of CLI
// flags) into a fresh Config seeded with Default, using mapstructure so the
// harness never duplicates a hand-rolled field-by-field decoder.
func Decode(raw map[string]interface{}) (*Config, error) {
	cfg := Default()

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           cfg,
		WeaklyTypedInput: true,
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
	})
	if err != nil {
		return nil, fmt.Errorf("building config decoder: %w", err)
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, fmt.Errorf("decoding configuration: %w", err)
	}
	return cfg, nil
}

// TestArg looks up a per-test --arg override, returning ("", false) when
// none was supplied.
func (c *Config) TestArg(test, key string) (string, bool) {
	if c.Args == nil {
		return "", false
	}
	v, ok := c.Args[test][key]
	return v, ok
}

// SetTestArg installs a --arg test:key=value override.
func (c *Config) SetTestArg(test, key, value string) {
	if c.Args == nil {
		c.Args = make(map[string]map[string]string)
	}
	if c.Args[test] == nil {
		c.Args[test] = make(map[string]string)
	}
	c.Args[test][key] = value
}
