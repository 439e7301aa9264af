package schema

import (
	json "github.com/goccy/go-json"
	"github.com/shopspring/decimal"
)

// SymbolFilter is one trading constraint attached to a symbol. The concrete
// type follows the filterType tag on the wire.
type SymbolFilter interface {
	FilterType() SymbolFilterType
}

// PriceFilter bounds order prices and their tick granularity.
type PriceFilter struct {
	MinPrice decimal.Decimal `json:"minPrice"`
	MaxPrice decimal.Decimal `json:"maxPrice"`
	TickSize decimal.Decimal `json:"tickSize"`
}

// FilterType reports the filter's wire tag.
func (PriceFilter) FilterType() SymbolFilterType { return FilterPrice }

// LotSizeFilter bounds order quantities and their step granularity.
type LotSizeFilter struct {
	MinQuantity decimal.Decimal `json:"minQty"`
	MaxQuantity decimal.Decimal `json:"maxQty"`
	StepSize    decimal.Decimal `json:"stepSize"`
}

// FilterType reports the filter's wire tag.
func (LotSizeFilter) FilterType() SymbolFilterType { return FilterLotSize }

// MinNotionalFilter sets the minimum order value in quote currency.
type MinNotionalFilter struct {
	MinNotional decimal.Decimal `json:"minNotional"`
}

// FilterType reports the filter's wire tag.
func (MinNotionalFilter) FilterType() SymbolFilterType { return FilterMinNotional }

// MaxOrdersFilter caps the open orders a symbol accepts per account.
type MaxOrdersFilter struct {
	Limit int `json:"limit"`
}

// FilterType reports the filter's wire tag.
func (MaxOrdersFilter) FilterType() SymbolFilterType { return FilterMaxOrders }

// MaxAlgoOrdersFilter caps the open algorithmic orders a symbol accepts.
type MaxAlgoOrdersFilter struct {
	Limit int `json:"maxNumAlgoOrders"`
}

// FilterType reports the filter's wire tag.
func (MaxAlgoOrdersFilter) FilterType() SymbolFilterType { return FilterMaxAlgoOrders }

// IcebergPartsFilter caps the parts of an iceberg order.
type IcebergPartsFilter struct {
	Limit int `json:"limit"`
}

// FilterType reports the filter's wire tag.
func (IcebergPartsFilter) FilterType() SymbolFilterType { return FilterIcebergParts }

// FilterSet is the filter list of one symbol. Decoding keeps the first filter
// seen per tag and retains wire order.
type FilterSet []SymbolFilter

// UnmarshalJSON decodes a heterogeneous filter array by switching on each
// element's filterType tag. Unknown tags fail decoding.
func (fs *FilterSet) UnmarshalJSON(data []byte) error {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return err
	}
	out := make(FilterSet, 0, len(raws))
	seen := make(map[SymbolFilterType]bool, len(raws))
	for _, raw := range raws {
		var tag struct {
			FilterType SymbolFilterType `json:"filterType"`
		}
		if err := json.Unmarshal(raw, &tag); err != nil {
			return err
		}
		if seen[tag.FilterType] {
			continue
		}
		var f SymbolFilter
		var err error
		switch tag.FilterType {
		case FilterPrice:
			var v PriceFilter
			err = json.Unmarshal(raw, &v)
			f = v
		case FilterLotSize:
			var v LotSizeFilter
			err = json.Unmarshal(raw, &v)
			f = v
		case FilterMinNotional:
			var v MinNotionalFilter
			err = json.Unmarshal(raw, &v)
			f = v
		case FilterMaxOrders:
			var v MaxOrdersFilter
			err = json.Unmarshal(raw, &v)
			f = v
		case FilterMaxAlgoOrders:
			var v MaxAlgoOrdersFilter
			err = json.Unmarshal(raw, &v)
			f = v
		case FilterIcebergParts:
			var v IcebergPartsFilter
			err = json.Unmarshal(raw, &v)
			f = v
		}
		if err != nil {
			return err
		}
		seen[tag.FilterType] = true
		out = append(out, f)
	}
	*fs = out
	return nil
}

// MarshalJSON encodes each filter with its filterType tag restored.
func (fs FilterSet) MarshalJSON() ([]byte, error) {
	out := make([]map[string]any, 0, len(fs))
	for _, f := range fs {
		body, err := json.Marshal(f)
		if err != nil {
			return nil, err
		}
		m := map[string]any{}
		if err := json.Unmarshal(body, &m); err != nil {
			return nil, err
		}
		m["filterType"] = f.FilterType().String()
		out = append(out, m)
	}
	return json.Marshal(out)
}

// Price returns the symbol's price filter, if present.
func (fs FilterSet) Price() (PriceFilter, bool) {
	for _, f := range fs {
		if v, ok := f.(PriceFilter); ok {
			return v, true
		}
	}
	return PriceFilter{}, false
}

// LotSize returns the symbol's lot size filter, if present.
func (fs FilterSet) LotSize() (LotSizeFilter, bool) {
	for _, f := range fs {
		if v, ok := f.(LotSizeFilter); ok {
			return v, true
		}
	}
	return LotSizeFilter{}, false
}

// MinNotional returns the symbol's minimum notional filter, if present.
func (fs FilterSet) MinNotional() (MinNotionalFilter, bool) {
	for _, f := range fs {
		if v, ok := f.(MinNotionalFilter); ok {
			return v, true
		}
	}
	return MinNotionalFilter{}, false
}
