package bank

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestEntryBalanced(t *testing.T) {
	meta := EntryMeta{Currency: "BTC", Type: EntryOnchainOnUs}
	e := NewEntry("x").
		Credit("Liabilities:Customer:b", 1000, meta).
		Debit("Liabilities:Customer:a", 1000, meta)
	if !e.Balanced() {
		t.Fatal("balanced entry reported unbalanced")
	}

	e = NewEntry("x").
		Credit("Liabilities:Customer:b", 1000, meta).
		Debit("Liabilities:Customer:a", 999, meta)
	if e.Balanced() {
		t.Fatal("unbalanced entry reported balanced")
	}

	if NewEntry("empty").Balanced() {
		t.Fatal("empty entry reported balanced")
	}

	e = NewEntry("x").
		Credit("Liabilities:Customer:b", -5, meta).
		Debit("Liabilities:Customer:a", -5, meta)
	if e.Balanced() {
		t.Fatal("negative legs reported balanced")
	}
}

func TestFixedRate(t *testing.T) {
	r := FixedRate{FiatPerBTC: decimal.NewFromInt(60000)}
	// 0.5 BTC at 60000 = 30000
	if got := r.SatsToFiat(50_000_000); !got.Equal(decimal.NewFromInt(30000)) {
		t.Fatalf("want 30000, got %s", got)
	}

	zero := FixedRate{}
	if !zero.SatsToFiat(12345).IsZero() {
		t.Fatal("zero rate must disable fiat conversion")
	}
}
