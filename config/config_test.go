package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDefaultValidates(t *testing.T) {
	opts := Default()
	require.NoError(t, opts.Validate())
	require.Equal(t, TradeRulesNone, opts.TradeRules)
	require.Equal(t, 5*time.Second, opts.ReceiveWindow)
	require.False(t, opts.Credentials.Configured())
}

func TestFromFileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "chiliz.yaml")
	doc := []byte(`
rest_base_url: https://example.test
credentials:
  api_key: key-1
  api_secret: secret-1
trade_rules: auto_comply
receive_window: 2s
`)
	require.NoError(t, os.WriteFile(path, doc, 0o600))

	opts, err := FromFile(path)
	require.NoError(t, err)
	require.Equal(t, "https://example.test", opts.RESTBaseURL)
	require.True(t, opts.Credentials.Configured())
	require.Equal(t, TradeRulesAutoComply, opts.TradeRules)
	require.Equal(t, 2*time.Second, opts.ReceiveWindow)
	// Untouched keys keep their defaults.
	require.Equal(t, "wss://wsapi.chiliz.net/openapi/quote/ws/v1", opts.WebsocketURL)
}

func TestFromFileRejectsBadBehaviour(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "chiliz.yaml")
	require.NoError(t, os.WriteFile(path, []byte("trade_rules: explode"), 0o600))

	_, err := FromFile(path)
	require.Error(t, err)
}

func TestFromEnv(t *testing.T) {
	t.Setenv("CHILIZ_API_KEY", "env-key")
	t.Setenv("CHILIZ_API_SECRET", "env-secret")
	t.Setenv("CHILIZ_TRADE_RULES", string(TradeRulesThrowError))

	opts := FromEnv()
	require.True(t, opts.Credentials.Configured())
	require.Equal(t, TradeRulesThrowError, opts.TradeRules)
}
