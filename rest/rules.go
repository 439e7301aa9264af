package rest

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/coachpo/chiliz/config"
	"github.com/coachpo/chiliz/errs"
	"github.com/coachpo/chiliz/internal/observability"
	"github.com/coachpo/chiliz/schema"
)

// metadataFetch loads the broker metadata the rule engine validates against.
type metadataFetch func(ctx context.Context) (schema.ExchangeInfo, error)

// ruleEngine validates order quantity and price against the symbol filters
// published by the exchange. Behaviour selects between rejecting violations
// and adjusting values to the nearest legal ones.
type ruleEngine struct {
	mu sync.Mutex

	behaviour config.TradeRulesBehaviour
	ttl       time.Duration
	fetch     metadataFetch
	clock     func() time.Time

	info    schema.ExchangeInfo
	fetched time.Time
	loaded  bool
}

func newRuleEngine(behaviour config.TradeRulesBehaviour, ttl time.Duration, fetch metadataFetch, clock func() time.Time) *ruleEngine {
	if clock == nil {
		clock = time.Now
	}
	return &ruleEngine{behaviour: behaviour, ttl: ttl, fetch: fetch, clock: clock}
}

func (r *ruleEngine) symbol(ctx context.Context, name string) (schema.Symbol, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.loaded || r.clock().Sub(r.fetched) > r.ttl {
		info, err := r.fetch(ctx)
		if err != nil {
			if !r.loaded {
				return schema.Symbol{}, errs.New(errs.CodeMetadataUnavailable,
					errs.WithMessage("unable to load broker metadata for trade rule validation"),
					errs.WithCause(err))
			}
			// Keep serving the stale snapshot if a refresh fails.
			observability.Log().Warn("broker metadata refresh failed",
				observability.F("error", err.Error()))
		} else {
			r.info = info
			r.fetched = r.clock()
			r.loaded = true
		}
	}
	sym, ok := r.info.Symbol(name)
	if !ok {
		return schema.Symbol{}, errs.New(errs.CodeUnknownSymbol,
			errs.WithMessage("symbol "+name+" not present in broker metadata"))
	}
	return sym, nil
}

// apply validates and, in auto-comply mode, adjusts quantity and price in
// place. A nil price skips the price and notional checks.
func (r *ruleEngine) apply(ctx context.Context, symbol string, quantity *decimal.Decimal, price *decimal.Decimal) error {
	if r.behaviour == config.TradeRulesNone {
		return nil
	}
	sym, err := r.symbol(ctx, symbol)
	if err != nil {
		return err
	}
	comply := r.behaviour == config.TradeRulesAutoComply

	if lot, ok := sym.LotSizeFilter(); ok && quantity != nil {
		adjusted := clampStep(*quantity, lot.MinQuantity, lot.MaxQuantity, lot.StepSize)
		if !adjusted.Equal(*quantity) {
			if !comply {
				return errs.New(errs.CodeLotSize,
					errs.WithMessage("quantity "+quantity.String()+" violates lot size, closest legal value is "+adjusted.String()))
			}
			observability.Log().Info("quantity adjusted to lot size",
				observability.F("symbol", symbol),
				observability.F("from", quantity.String()),
				observability.F("to", adjusted.String()))
			*quantity = adjusted
		}
	}

	if price != nil {
		if pf, ok := sym.PriceFilter(); ok {
			// The range only binds when both ends are set; a lone bound
			// means the filter is not configured for this symbol.
			if pf.MinPrice.IsPositive() && pf.MaxPrice.IsPositive() {
				bounded := clampRange(*price, pf.MinPrice, pf.MaxPrice)
				if !bounded.Equal(*price) {
					if !comply {
						return errs.New(errs.CodePriceRange,
							errs.WithMessage("price "+price.String()+" outside allowed range ["+pf.MinPrice.String()+", "+pf.MaxPrice.String()+"]"))
					}
					observability.Log().Info("price clamped to range",
						observability.F("symbol", symbol),
						observability.F("from", price.String()),
						observability.F("to", bounded.String()))
					*price = bounded
				}
			}
			floored := floorTick(*price, pf.TickSize)
			if !floored.Equal(*price) {
				if !comply {
					return errs.New(errs.CodePriceTick,
						errs.WithMessage("price "+price.String()+" not a multiple of tick size "+pf.TickSize.String()))
				}
				observability.Log().Info("price floored to tick size",
					observability.F("symbol", symbol),
					observability.F("from", price.String()),
					observability.F("to", floored.String()))
				*price = floored
			}
		}

		// The minimum notional can never be met by shrinking an order, so
		// it rejects in auto-comply mode too.
		if mn, ok := sym.MinNotionalFilter(); ok && quantity != nil {
			notional := quantity.Mul(*price)
			if notional.LessThan(mn.MinNotional) {
				return errs.New(errs.CodeMinNotional,
					errs.WithMessage("order value "+notional.String()+" below minimum notional "+mn.MinNotional.String()))
			}
		}
	}
	return nil
}

// clampStep bounds v to [min, max] and rounds it to the nearest multiple of
// step, stepping back inside the bounds if rounding left them.
func clampStep(v, min, max, step decimal.Decimal) decimal.Decimal {
	out := clampRange(v, min, max)
	if step.IsPositive() {
		out = out.Div(step).Round(0).Mul(step)
		if out.LessThan(min) {
			out = out.Add(step)
		}
		if out.GreaterThan(max) {
			out = out.Sub(step)
		}
	}
	return out
}

func clampRange(v, min, max decimal.Decimal) decimal.Decimal {
	if min.IsPositive() && v.LessThan(min) {
		return min
	}
	if max.IsPositive() && v.GreaterThan(max) {
		return max
	}
	return v
}

// floorTick rounds v down to a multiple of tick. Rounding down never raises
// a buy above the intended price.
func floorTick(v, tick decimal.Decimal) decimal.Decimal {
	if !tick.IsPositive() {
		return v
	}
	return v.Div(tick).Floor().Mul(tick)
}
