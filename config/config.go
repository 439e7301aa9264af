// Package config centralises client configuration for the Chiliz REST and stream clients.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// TradeRulesBehaviour selects how order parameters are checked against symbol filters.
type TradeRulesBehaviour string

const (
	// TradeRulesNone disables trade-rule checks entirely.
	TradeRulesNone TradeRulesBehaviour = "none"
	// TradeRulesThrowError rejects orders violating any filter.
	TradeRulesThrowError TradeRulesBehaviour = "throw_error"
	// TradeRulesAutoComply clamps order parameters to the nearest allowed values.
	TradeRulesAutoComply TradeRulesBehaviour = "auto_comply"
)

// Credentials captures API credentials used for signed requests.
type Credentials struct {
	APIKey    string `yaml:"api_key"`
	APISecret string `yaml:"api_secret"`
}

// fileOptions mirrors Options with string durations for YAML decoding.
type fileOptions struct {
	RESTBaseURL  string      `yaml:"rest_base_url"`
	WebsocketURL string      `yaml:"websocket_url"`
	Credentials  Credentials `yaml:"credentials"`

	AutoTimestamp           *bool  `yaml:"auto_timestamp"`
	TimestampRecalcInterval string `yaml:"timestamp_recalc_interval"`
	TimestampOffset         string `yaml:"timestamp_offset"`
	ReceiveWindow           string `yaml:"receive_window"`

	TradeRules               string `yaml:"trade_rules"`
	TradeRulesUpdateInterval string `yaml:"trade_rules_update_interval"`

	HTTPTimeout string `yaml:"http_timeout"`
}

// Configured reports whether both key and secret are present.
func (c Credentials) Configured() bool {
	return strings.TrimSpace(c.APIKey) != "" && strings.TrimSpace(c.APISecret) != ""
}

// Options aggregates transport, credential and policy configuration for a client.
//
// Options are threaded explicitly into constructors; there is no mutable
// process-wide default.
type Options struct {
	RESTBaseURL  string
	WebsocketURL string
	Credentials  Credentials

	// AutoTimestamp enables server-time synchronisation for signed requests.
	AutoTimestamp           bool
	TimestampRecalcInterval time.Duration
	// TimestampOffset is a fixed adjustment applied to every generated timestamp,
	// independent of the measured server offset.
	TimestampOffset time.Duration
	ReceiveWindow   time.Duration

	TradeRules               TradeRulesBehaviour
	TradeRulesUpdateInterval time.Duration

	HTTPTimeout time.Duration
}

// Default returns the default client configuration.
func Default() Options {
	return Options{
		RESTBaseURL:              "https://api.chiliz.net",
		WebsocketURL:             "wss://wsapi.chiliz.net/openapi/quote/ws/v1",
		Credentials:              Credentials{},
		AutoTimestamp:            true,
		TimestampRecalcInterval:  3 * time.Hour,
		TimestampOffset:          0,
		ReceiveWindow:            5 * time.Second,
		TradeRules:               TradeRulesNone,
		TradeRulesUpdateInterval: 60 * time.Minute,
		HTTPTimeout:              10 * time.Second,
	}
}

// FromEnv loads configuration values from environment variables, overriding defaults.
func FromEnv() Options {
	opts := Default()
	if v := strings.TrimSpace(os.Getenv("CHILIZ_REST_URL")); v != "" {
		opts.RESTBaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv("CHILIZ_WS_URL")); v != "" {
		opts.WebsocketURL = v
	}
	if v := strings.TrimSpace(os.Getenv("CHILIZ_API_KEY")); v != "" {
		opts.Credentials.APIKey = v
	}
	if v := strings.TrimSpace(os.Getenv("CHILIZ_API_SECRET")); v != "" {
		opts.Credentials.APISecret = v
	}
	if v := strings.TrimSpace(os.Getenv("CHILIZ_TRADE_RULES")); v != "" {
		opts.TradeRules = TradeRulesBehaviour(v)
	}
	return opts
}

// FromFile loads configuration from a YAML document, overriding defaults.
func FromFile(path string) (Options, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Options{}, fmt.Errorf("read config file: %w", err)
	}
	var file fileOptions
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return Options{}, fmt.Errorf("parse config file: %w", err)
	}

	opts := Default()
	if v := strings.TrimSpace(file.RESTBaseURL); v != "" {
		opts.RESTBaseURL = v
	}
	if v := strings.TrimSpace(file.WebsocketURL); v != "" {
		opts.WebsocketURL = v
	}
	if file.Credentials.APIKey != "" {
		opts.Credentials.APIKey = file.Credentials.APIKey
	}
	if file.Credentials.APISecret != "" {
		opts.Credentials.APISecret = file.Credentials.APISecret
	}
	if file.AutoTimestamp != nil {
		opts.AutoTimestamp = *file.AutoTimestamp
	}
	if v := strings.TrimSpace(file.TradeRules); v != "" {
		opts.TradeRules = TradeRulesBehaviour(v)
	}
	durations := []struct {
		raw  string
		name string
		dst  *time.Duration
	}{
		{file.TimestampRecalcInterval, "timestamp_recalc_interval", &opts.TimestampRecalcInterval},
		{file.TimestampOffset, "timestamp_offset", &opts.TimestampOffset},
		{file.ReceiveWindow, "receive_window", &opts.ReceiveWindow},
		{file.TradeRulesUpdateInterval, "trade_rules_update_interval", &opts.TradeRulesUpdateInterval},
		{file.HTTPTimeout, "http_timeout", &opts.HTTPTimeout},
	}
	for _, d := range durations {
		if strings.TrimSpace(d.raw) == "" {
			continue
		}
		dur, err := time.ParseDuration(strings.TrimSpace(d.raw))
		if err != nil {
			return Options{}, fmt.Errorf("parse config %s: %w", d.name, err)
		}
		*d.dst = dur
	}

	if err := opts.Validate(); err != nil {
		return Options{}, err
	}
	return opts, nil
}

// Validate checks the configuration for internally inconsistent values.
func (o Options) Validate() error {
	if strings.TrimSpace(o.RESTBaseURL) == "" {
		return fmt.Errorf("config: rest base URL required")
	}
	switch o.TradeRules {
	case TradeRulesNone, TradeRulesThrowError, TradeRulesAutoComply:
	default:
		return fmt.Errorf("config: unknown trade rules behaviour %q", o.TradeRules)
	}
	if o.TimestampRecalcInterval < 0 || o.TradeRulesUpdateInterval < 0 {
		return fmt.Errorf("config: refresh intervals must be non-negative")
	}
	if o.HTTPTimeout < 0 {
		return fmt.Errorf("config: http timeout must be non-negative")
	}
	return nil
}
