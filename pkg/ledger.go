package bank

import (
	"time"

	"github.com/shopspring/decimal"
)

// Ledger entry types posted by the settlement core.
const (
	EntryOnchainPayment = "onchain_payment" // external withdrawal
	EntryOnchainOnUs    = "onchain_on_us"   // internal transfer, no broadcast
	EntryOnchainReceipt = "onchain_receipt" // confirmed deposit
)

// HotWalletPath is the house accounting path for the shared on-chain
// hot wallet. Withdrawals credit it, deposits debit it.
const HotWalletPath = "Assets:HotWallet"

// CustomerPath returns the ledger account path for a customer account.
func CustomerPath(accountID string) string {
	return "Liabilities:Customer:" + accountID
}

// Ledger is the double-entry ledger store consumed by the settlement
// core. It is the single source of truth for customer balances.
//
// Commit is atomic: either every leg of the entry is posted or none
// is. The store enforces the double-entry invariant (credits == debits)
// and rejects unbalanced entries; the core never re-proves it.
type Ledger interface {
	// Balance returns the current balance of an account path:
	// sum of credits minus sum of debits, in satoshis.
	Balance(accountPath string) (Amount, error)
	// FindEntry reports whether an entry of the given type and
	// transaction ID has already been posted against accountPath.
	// This is the idempotency guard for deposit reconciliation.
	FindEntry(accountPath string, entryType string, txid string) (bool, error)
	// Commit atomically posts all legs of the entry.
	Commit(e *Entry) error
	// SumDebitsSince returns the total debited from accountPath by
	// entries of the given types posted at or after since. Backs the
	// trailing-24h volume limits.
	SumDebitsSince(accountPath string, entryTypes []string, since time.Time) (Amount, error)
	// ListEntries pages through an account's posted legs, newest
	// first. next_cursor == 0 means final page.
	ListEntries(accountPath string, cursor int, limit int) (items []EntryRecord, next_cursor int, err error)
}

// EntryRecord is one posted leg as seen from one account's history.
// Amount is positive for credits and negative for debits.
type EntryRecord struct {
	Created  time.Time `json:"created"`
	Memo     string    `json:"memo,omitempty"`
	Type     string    `json:"type"`
	TxID     string    `json:"txid,omitempty"`
	Pending  bool      `json:"pending"`
	Fee      Amount    `json:"fee"`
	Amount   Amount    `json:"amount"`
	Currency string    `json:"currency"`
}

// EntryMeta is carried on every leg of a posted entry.
type EntryMeta struct {
	Currency       string          // always "BTC" for this core
	Type           string          // one of the Entry* constants
	TxID           string          // chain transaction, if any
	Pending        bool            // true until confirmed on-chain
	Fee            Amount          // chain fee included in the amount
	Fiat           decimal.Decimal // fiat equivalent of the amount
	FiatFee        decimal.Decimal // fiat equivalent of the fee
	PayeeAddresses []Address       // destination addresses, if known
}

// Leg is one debit or credit of a balanced entry.
type Leg struct {
	AccountPath string
	Amount      Amount // non-negative
	Debit       bool   // false = credit
	Meta        EntryMeta
}

// Entry is a balanced set of legs built with Credit/Debit and posted
// with Ledger.Commit.
type Entry struct {
	Memo    string
	Created time.Time
	Legs    []Leg
}

func NewEntry(memo string) *Entry {
	return &Entry{Memo: memo, Created: time.Now()}
}

func (e *Entry) Credit(accountPath string, amount Amount, meta EntryMeta) *Entry {
	e.Legs = append(e.Legs, Leg{AccountPath: accountPath, Amount: amount, Debit: false, Meta: meta})
	return e
}

func (e *Entry) Debit(accountPath string, amount Amount, meta EntryMeta) *Entry {
	e.Legs = append(e.Legs, Leg{AccountPath: accountPath, Amount: amount, Debit: true, Meta: meta})
	return e
}

// Balanced reports whether credits equal debits and no leg is negative.
func (e *Entry) Balanced() bool {
	var credits, debits Amount
	for _, leg := range e.Legs {
		if leg.Amount < 0 {
			return false
		}
		if leg.Debit {
			debits += leg.Amount
		} else {
			credits += leg.Amount
		}
	}
	return credits == debits && len(e.Legs) > 0
}
