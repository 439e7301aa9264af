package schema

import (
	"testing"

	json "github.com/goccy/go-json"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

const symbolFiltersDoc = `[
  {"filterType":"PRICE_FILTER","minPrice":"0.01","maxPrice":"100000.00","tickSize":"0.01"},
  {"filterType":"LOT_SIZE","minQty":"0.001","maxQty":"100000.00","stepSize":"0.001"},
  {"filterType":"MIN_NOTIONAL","minNotional":"10"},
  {"filterType":"MAX_NUM_ORDERS","limit":100},
  {"filterType":"ICEBERG_PARTS","limit":10}
]`

func TestFilterSetDecode(t *testing.T) {
	var fs FilterSet
	require.NoError(t, json.Unmarshal([]byte(symbolFiltersDoc), &fs))
	require.Len(t, fs, 5)

	price, ok := fs.Price()
	require.True(t, ok)
	require.True(t, price.TickSize.Equal(decimal.RequireFromString("0.01")))

	lot, ok := fs.LotSize()
	require.True(t, ok)
	require.True(t, lot.StepSize.Equal(decimal.RequireFromString("0.001")))

	notional, ok := fs.MinNotional()
	require.True(t, ok)
	require.True(t, notional.MinNotional.Equal(decimal.NewFromInt(10)))
}

func TestFilterSetKeepsFirstPerTag(t *testing.T) {
	doc := `[
	  {"filterType":"MIN_NOTIONAL","minNotional":"10"},
	  {"filterType":"MIN_NOTIONAL","minNotional":"99"}
	]`
	var fs FilterSet
	require.NoError(t, json.Unmarshal([]byte(doc), &fs))
	require.Len(t, fs, 1)

	notional, ok := fs.MinNotional()
	require.True(t, ok)
	require.True(t, notional.MinNotional.Equal(decimal.NewFromInt(10)))
}

func TestFilterSetUnknownTag(t *testing.T) {
	var fs FilterSet
	err := json.Unmarshal([]byte(`[{"filterType":"PERCENT_PRICE","multiplierUp":"5"}]`), &fs)
	require.Error(t, err)
}

func TestFilterSetEncodeRestoresTag(t *testing.T) {
	fs := FilterSet{MaxOrdersFilter{Limit: 100}}
	raw, err := json.Marshal(fs)
	require.NoError(t, err)

	var decoded FilterSet
	require.NoError(t, json.Unmarshal(raw, &decoded))
	require.Len(t, decoded, 1)
	require.Equal(t, MaxOrdersFilter{Limit: 100}, decoded[0])
}
