package bank

import (
	"github.com/shopspring/decimal"
)

// RateSource supplies the fiat equivalent recorded in ledger entry
// metadata. Rate discovery itself is someone else's problem; the core
// only passes the converted values through.
type RateSource interface {
	SatsToFiat(sats Amount) decimal.Decimal
}

var satsPerBTC = decimal.NewFromInt(1e8)

// FixedRate is a RateSource with a constant fiat price per BTC.
// Used when no live price feed is configured (rate 0 disables the
// fiat columns entirely).
type FixedRate struct {
	FiatPerBTC decimal.Decimal
}

func (r FixedRate) SatsToFiat(sats Amount) decimal.Decimal {
	if r.FiatPerBTC.IsZero() {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(sats)).Mul(r.FiatPerBTC).Div(satsPerBTC)
}

// CurrencyEquivalent fills the fiat fields of an EntryMeta for an
// amount that includes the given fee.
func CurrencyEquivalent(rates RateSource, sats Amount, fee Amount) (fiat, fiatFee decimal.Decimal) {
	return rates.SatsToFiat(sats), rates.SatsToFiat(fee)
}
