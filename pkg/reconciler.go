package bank

import (
	"log"
	"time"
)

// Reconciler makes sure every confirmed deposit to an account's
// addresses has exactly one onchain_receipt ledger credit. It shares
// the per-account lock domain with Payer, so a deposit credit and a
// withdrawal debit on the same account never interleave.
type Reconciler struct {
	store  Store
	ledger Ledger
	node   L1
	lock   AccountLock
	rates  RateSource
	bus    MessageBus
	config Config
}

func NewReconciler(store Store, ledger Ledger, node L1, lock AccountLock, rates RateSource, bus MessageBus, config Config) Reconciler {
	return Reconciler{store: store, ledger: ledger, node: node, lock: lock, rates: rates, bus: bus, config: config}
}

func (r Reconciler) confirmationsNeeded() int64 {
	if n := r.config.SatBank.ConfirmationsNeeded; n > 0 {
		return n
	}
	return 2
}

func (r Reconciler) lockTimeout() time.Duration {
	secs := r.config.SatBank.LockTimeoutSeconds
	if secs <= 0 {
		secs = 30
	}
	return time.Duration(secs) * time.Second
}

// ReconcileConfirmedDeposits scans the node's incoming transactions
// and posts a ledger credit for every confirmed deposit to one of the
// account's addresses that has not been credited yet. Idempotent: the
// ledger lookup is the guard, so running it twice (or concurrently
// with itself, serialized by the lock) posts nothing twice.
//
// This is deliberately a full re-scan on every run rather than an
// incremental cursor; redundant lookups are cheap at expected volumes
// and the reasoning stays simple.
func (r Reconciler) ReconcileConfirmedDeposits(foreignID string) error {
	acc, err := r.store.GetAccount(foreignID)
	if err != nil {
		return err
	}
	// No address was ever issued, so no deposit can exist;
	// skip the node round-trip.
	if len(acc.Addresses) == 0 {
		return nil
	}

	matched, err := r.matchedDeposits(acc, true)
	if err != nil {
		return err
	}
	if len(matched) == 0 {
		return nil
	}

	lease, err := r.lock.Acquire(acc.ID, r.lockTimeout())
	if err != nil {
		return err
	}
	defer r.lock.Release(lease)

	owned := acc.AddressSet()
	for _, tx := range matched {
		found, err := r.ledger.FindEntry(acc.AccountPath(), EntryOnchainReceipt, tx.TxID)
		if err != nil {
			return err
		}
		if found {
			continue // already credited
		}

		outputs, err := r.node.DecodeTransaction(tx.RawHex)
		if err != nil {
			return NewErr(UnknownError, "unable to decode transaction %s: %v", tx.TxID, err)
		}
		sats := AmountOnOutputs(outputs, owned)
		addresses := OwnedAddressesOnOutputs(outputs, owned)

		// The per-output sum can never exceed what the node reports
		// for the whole transaction. If it does, decoding or matching
		// is broken and crediting anything would corrupt the ledger.
		if sats > tx.Amount {
			err := NewErr(Inconsistency,
				"attributed %d sats exceeds reported %d for txn %s (account %s)",
				sats, tx.Amount, tx.TxID, acc.ForeignID)
			log.Printf("Reconciler: FATAL: %v\n", err)
			r.bus.Send(SYS_ERR, err.Error())
			return err
		}
		if sats == 0 {
			continue // none of the outputs are actually ours
		}

		fiat, fiatFee := CurrencyEquivalent(r.rates, sats, 0)
		meta := EntryMeta{
			Currency:       "BTC",
			Type:           EntryOnchainReceipt,
			TxID:           tx.TxID,
			Pending:        false,
			Fee:            0,
			Fiat:           fiat,
			FiatFee:        fiatFee,
			PayeeAddresses: addresses,
		}
		entry := NewEntry("").
			Credit(acc.AccountPath(), sats, meta).
			Debit(HotWalletPath, sats, meta)
		if err := r.ledger.Commit(entry); err != nil {
			return err
		}

		log.Printf("Reconciler: credited deposit: %s %d sats txid %s\n", acc.ForeignID, sats, tx.TxID)
		r.bus.Send(ACC_DEPOSIT_CONFIRMED, DepositConfirmed{
			ForeignID: acc.ForeignID, TxID: tx.TxID, Amount: sats, Addresses: addresses,
		})
	}
	return nil
}

// PendingDeposit is an incoming transaction that has been seen but not
// confirmed enough to credit. Informational only: never posted, never
// locked over.
type PendingDeposit struct {
	TxID       string    `json:"txid"`
	Amount     Amount    `json:"amount"`
	Addresses  []Address `json:"addresses"`
	ObservedAt time.Time `json:"observed_at"`
}

// ListPendingDeposits returns the account's unconfirmed incoming
// deposits with per-output attributed values.
func (r Reconciler) ListPendingDeposits(foreignID string) ([]PendingDeposit, error) {
	acc, err := r.store.GetAccount(foreignID)
	if err != nil {
		return nil, err
	}
	if len(acc.Addresses) == 0 {
		return []PendingDeposit{}, nil
	}
	matched, err := r.matchedDeposits(acc, false)
	if err != nil {
		return nil, err
	}
	owned := acc.AddressSet()
	pending := []PendingDeposit{}
	for _, tx := range matched {
		outputs, err := r.node.DecodeTransaction(tx.RawHex)
		if err != nil {
			return nil, NewErr(UnknownError, "unable to decode transaction %s: %v", tx.TxID, err)
		}
		sats := AmountOnOutputs(outputs, owned)
		if sats == 0 {
			continue
		}
		pending = append(pending, PendingDeposit{
			TxID:       tx.TxID,
			Amount:     sats,
			Addresses:  OwnedAddressesOnOutputs(outputs, owned),
			ObservedAt: tx.CreatedAt,
		})
	}
	return pending, nil
}

// AccountHistory merges unconfirmed deposits (first, as transient
// pending records) with the account's posted ledger entries.
func (r Reconciler) AccountHistory(foreignID string, cursor int, limit int) ([]EntryRecord, int, error) {
	acc, err := r.store.GetAccount(foreignID)
	if err != nil {
		return nil, 0, err
	}
	items := []EntryRecord{}
	if cursor == 0 {
		pending, err := r.ListPendingDeposits(foreignID)
		if err != nil {
			return nil, 0, err
		}
		for _, dep := range pending {
			items = append(items, EntryRecord{
				Created:  dep.ObservedAt,
				Memo:     "pending",
				Type:     EntryOnchainReceipt,
				TxID:     dep.TxID,
				Pending:  true,
				Amount:   dep.Amount,
				Currency: "BTC",
			})
		}
	}
	posted, next, err := r.ledger.ListEntries(acc.AccountPath(), cursor, limit)
	if err != nil {
		return nil, 0, err
	}
	return append(items, posted...), next, nil
}

// matchedDeposits lists incoming transactions on the wanted side of
// the confirmation threshold whose reported output addresses touch the
// account. The match here is coarse (transaction-level address list);
// exact per-account values always come from per-output attribution.
func (r Reconciler) matchedDeposits(acc Account, confirmed bool) ([]ChainTxn, error) {
	incoming, err := r.node.ListTransactions(true)
	if err != nil {
		return nil, NewErr(NotAvailable, "unable to list incoming transactions: %v", err)
	}
	need := r.confirmationsNeeded()
	owned := acc.AddressSet()
	var matched []ChainTxn
	for _, tx := range incoming {
		if confirmed != (tx.Confirmations >= need) {
			continue
		}
		for _, addr := range tx.OutputAddresses {
			if owned.Contains(addr) {
				matched = append(matched, tx)
				break
			}
		}
	}
	return matched, nil
}
