package bank

import (
	"log"
	"time"
)

// After a successful broadcast the node may not list the transaction
// immediately; the fee lookup retries before falling back to the
// estimate. The broadcast already happened, so giving up entirely is
// not an option: a pending entry must be posted either way.
const (
	feeLookupRetries = 10
	feeLookupDelay   = 500 * time.Millisecond
)

// Payer executes outgoing on-chain withdrawals from customer balances,
// including the on-us short-circuit for destinations that belong to
// another account of this service.
//
// Every balance-affecting step runs inside the per-account lock, so a
// payment and a concurrent deposit reconciliation on the same account
// always observe each other's ledger commits.
type Payer struct {
	store  Store
	ledger Ledger
	node   L1
	lock   AccountLock
	limits LimitPolicy
	rates  RateSource
	bus    MessageBus
	config Config
}

func NewPayer(store Store, ledger Ledger, node L1, lock AccountLock, limits LimitPolicy, rates RateSource, bus MessageBus, config Config) Payer {
	return Payer{store: store, ledger: ledger, node: node, lock: lock, limits: limits, rates: rates, bus: bus, config: config}
}

func (p Payer) lockTimeout() time.Duration {
	secs := p.config.SatBank.LockTimeoutSeconds
	if secs <= 0 {
		secs = 30
	}
	return time.Duration(secs) * time.Second
}

// PayToAddress pays amount satoshis from the account's ledger balance
// to a chain address. If the address belongs to another account of
// this service the payment settles purely in the ledger; otherwise it
// is broadcast from the hot wallet and posted as a pending withdrawal.
func (p Payer) PayToAddress(foreignID string, payTo Address, amount Amount, memo string) error {
	if amount <= 0 {
		return NewErr(BadRequest, "amount must be positive: %d", amount)
	}
	acc, err := p.store.GetAccount(foreignID)
	if err != nil {
		return err
	}

	lease, err := p.lock.Acquire(acc.ID, p.lockTimeout())
	if err != nil {
		return err
	}
	defer p.lock.Release(lease)

	// Balance check before the fee is known: cheap early rejection.
	// Re-checked below once the fee estimate is in.
	balance, err := p.ledger.Balance(acc.AccountPath())
	if err != nil {
		return err
	}
	if balance < amount {
		return NewErr(InsufficientBalance, "balance is too low: have %d, need %d", balance, amount)
	}

	payee, err := p.store.FindAccountByAddress(payTo)
	if err == nil {
		return p.payOnUs(acc, payee, payTo, amount, memo)
	}
	if !IsNotFoundError(err) {
		return err
	}

	return p.payExternal(acc, payTo, amount, memo, balance)
}

// payOnUs settles a payment to another account of this service with a
// single balanced ledger entry. No chain broadcast, no fee.
func (p Payer) payOnUs(payer Account, payee Account, payTo Address, amount Amount, memo string) error {
	if err := p.limits.CheckOnUsLimit(payer, amount); err != nil {
		return err
	}
	if payee.ID == payer.ID {
		return NewErr(SelfPayment, "account %s tried to pay itself", payer.ForeignID)
	}

	fiat, fiatFee := CurrencyEquivalent(p.rates, amount, 0)
	meta := EntryMeta{
		Currency:       "BTC",
		Type:           EntryOnchainOnUs,
		Pending:        false,
		Fee:            0,
		Fiat:           fiat,
		FiatFee:        fiatFee,
		PayeeAddresses: []Address{payTo},
	}
	entry := NewEntry(memo).
		Credit(payee.AccountPath(), amount, meta).
		Debit(payer.AccountPath(), amount, meta)
	if err := p.ledger.Commit(entry); err != nil {
		return err
	}

	log.Printf("Payer: on-us payment: %s -> %s %d sats\n", payer.ForeignID, payee.ForeignID, amount)
	p.bus.Send(ACC_ON_US_TRANSFER, PaymentSent{
		ForeignID: payer.ForeignID, PayTo: payTo, Amount: amount, OnUs: true,
	})
	return nil
}

// payExternal broadcasts a withdrawal from the hot wallet and posts a
// pending onchain_payment debit for amount + actual network fee.
func (p Payer) payExternal(acc Account, payTo Address, amount Amount, memo string, balance Amount) error {
	if err := p.limits.WithdrawalEligible(acc); err != nil {
		return err
	}
	if err := p.limits.CheckWithdrawalLimit(acc, amount); err != nil {
		return err
	}

	estimatedFee, err := p.node.EstimateFee(payTo, amount)
	if err != nil {
		// nothing has been mutated yet; safe for the caller to retry
		return NewErr(NotAvailable, "unable to estimate fee for on-chain payment: %v", err)
	}

	onChainBalance, err := p.node.ChainBalance()
	if err != nil {
		return NewErr(NotAvailable, "unable to read hot-wallet balance: %v", err)
	}
	if onChainBalance < amount+estimatedFee {
		// Not a user problem: the shared hot wallet cannot cover the
		// send and needs manual rebalancing. Fail closed.
		err := NewErr(InsufficientLiquidity,
			"insufficient on-chain balance in the hot wallet: have %d, need %d; rebalancing is needed",
			onChainBalance, amount+estimatedFee)
		log.Printf("Payer: FATAL: %v\n", err)
		p.bus.Send(SYS_ERR, err.Error())
		return err
	}

	// The fee was unknown at the first balance check.
	if balance < amount+estimatedFee {
		return NewErr(InsufficientBalance, "balance is too low: have %d, need %d", balance, amount+estimatedFee)
	}

	txid, err := p.node.SendToAddress(payTo, amount)
	if err != nil {
		// No funds moved; report as a plain payment failure.
		return NewErr(BroadcastFailed, "unable to broadcast payment: %v", err)
	}

	// The broadcast was the one irreversible step. Whatever happens
	// from here, a ledger entry must be posted.
	fee := p.lookupActualFee(txid, estimatedFee)

	sats := amount + fee
	fiat, fiatFee := CurrencyEquivalent(p.rates, sats, fee)
	meta := EntryMeta{
		Currency: "BTC",
		Type:     EntryOnchainPayment,
		TxID:     txid,
		Pending:  true, // until confirmed on-chain
		Fee:      fee,
		Fiat:     fiat,
		FiatFee:  fiatFee,
	}
	entry := NewEntry(memo).
		Credit(HotWalletPath, sats, meta).
		Debit(acc.AccountPath(), sats, meta)
	if err := p.ledger.Commit(entry); err != nil {
		// Funds have left the hot wallet without a ledger record.
		// Operator intervention required.
		log.Printf("Payer: FATAL: ledger commit failed after broadcast %s: %v\n", txid, err)
		p.bus.Send(SYS_ERR, "ledger commit failed after broadcast "+txid+": "+err.Error())
		return NewErr(DBConflict, "ledger commit failed after broadcast %s: %v", txid, err)
	}

	log.Printf("Payer: on-chain payment: %s -> %s %d sats (fee %d) txid %s\n",
		acc.ForeignID, payTo, amount, fee, txid)
	p.bus.Send(ACC_PAYMENT_SENT, PaymentSent{
		ForeignID: acc.ForeignID, PayTo: payTo, Amount: amount, Fee: fee, TxID: txid,
	})
	return nil
}

// lookupActualFee reads the network fee the node actually charged for
// a just-broadcast transaction from its outgoing transaction list.
// The transaction may not be visible immediately, so retry with a
// short delay; on exhaustion fall back to the estimate so a pending
// entry is always posted.
func (p Payer) lookupActualFee(txid string, estimate Amount) Amount {
	for i := 0; i < feeLookupRetries; i++ {
		txns, err := p.node.ListTransactions(false)
		if err == nil {
			for _, tx := range txns {
				if tx.TxID == txid {
					return tx.Fee
				}
			}
		}
		time.Sleep(feeLookupDelay)
	}
	log.Printf("Payer: txn %s not yet listed by the node, posting with estimated fee %d\n", txid, estimate)
	return estimate
}

// NewDepositAddress has the node issue a fresh address and binds it to
// the account. The binding is permanent: deposit attribution and the
// on-us check both rely on an address having exactly one owner.
func (p Payer) NewDepositAddress(foreignID string) (Address, error) {
	acc, err := p.store.GetAccount(foreignID)
	if err != nil {
		return "", err
	}
	addr, err := p.node.NewAddress()
	if err != nil {
		return "", NewErr(NotAvailable, "unable to obtain a new address from the node: %v", err)
	}
	if err := p.store.AppendAddress(acc.ID, addr); err != nil {
		return "", err
	}
	p.bus.Send(ACC_ADDRESS_ISSUED, map[string]any{"foreign_id": foreignID, "address": addr})
	return addr, nil
}

// LastDepositAddress returns the account's most recent deposit
// address, issuing the first one on demand.
func (p Payer) LastDepositAddress(foreignID string) (Address, error) {
	acc, err := p.store.GetAccount(foreignID)
	if err != nil {
		return "", err
	}
	if last := acc.LastAddress(); last != "" {
		return last, nil
	}
	return p.NewDepositAddress(foreignID)
}
