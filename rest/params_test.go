package rest

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParamsEncodeKeepsInsertionOrder(t *testing.T) {
	p := NewParams().
		Set("symbol", "ETHUSDT").
		Set("side", "BUY").
		Set("type", "LIMIT")
	require.Equal(t, "symbol=ETHUSDT&side=BUY&type=LIMIT", p.Encode())
}

func TestParamsRepeatedKeys(t *testing.T) {
	p := NewParams().Set("symbol", "A").Set("symbol", "B")
	require.Equal(t, "symbol=A&symbol=B", p.Encode())
}

func TestParamsEscaping(t *testing.T) {
	p := NewParams().Set("note", "a b&c")
	require.Equal(t, "note=a+b%26c", p.Encode())
}

func TestParamsOptional(t *testing.T) {
	p := NewParams().SetOptional("symbol", "").SetOptional("limit", "5")
	require.Equal(t, "limit=5", p.Encode())
	require.Equal(t, 1, p.Len())
}

func TestSignPayload(t *testing.T) {
	payload := "symbol=ETHUSDT&side=BUY&type=LIMIT&timeInForce=GTC&quantity=1&price=0.1&recvWindow=5000&timestamp=1499827319559"
	secret := "NhqPtmdSJYdKjVHjA7PZj4Mge3R5YNiP1e3UZjInClVN65XAbvqqM6A7H5fATj0j"
	require.Equal(t,
		"041f68f4431a5b3e9f02b92b9c2b906bd69229a5b72337f125fc48ad22058642",
		signPayload(payload, secret))
}

func TestSignPayloadLowercaseHex(t *testing.T) {
	got := signPayload("timestamp=1595563200000", "secret")
	require.Equal(t, "9e1320e5206c79603073a940b346375ebe88496597efd0463a457e0c915e3747", got)
}
