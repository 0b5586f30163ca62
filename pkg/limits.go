package bank

import (
	"strconv"
	"time"
)

// LimitPolicy enforces per-tier volume caps over a trailing 24-hour
// window, and the new-account withdrawal hold. It is an external
// collaborator as far as the settlement core is concerned; the default
// implementation below reads caps from Config and realized volume from
// the ledger.
type LimitPolicy interface {
	// CheckOnUsLimit returns a LimitExceeded error if paying amount
	// internally would take the account past its tier's daily cap.
	CheckOnUsLimit(acc Account, amount Amount) error
	// CheckWithdrawalLimit is the same check for external withdrawals.
	CheckWithdrawalLimit(acc Account, amount Amount) error
	// WithdrawalEligible returns an AccountTooNew error if the account
	// is too recent to withdraw on-chain.
	WithdrawalEligible(acc Account) error
}

// ConfigLimits is the default LimitPolicy: caps come from the Limits
// section of the config file, keyed by account level; used volume is
// summed from ledger debits in the last 24 hours.
type ConfigLimits struct {
	Ledger Ledger
	Config Config
	Now    func() time.Time // nil means time.Now
}

func NewConfigLimits(ledger Ledger, conf Config) ConfigLimits {
	return ConfigLimits{Ledger: ledger, Config: conf}
}

func (l ConfigLimits) now() time.Time {
	if l.Now != nil {
		return l.Now()
	}
	return time.Now()
}

func (l ConfigLimits) CheckOnUsLimit(acc Account, amount Amount) error {
	cap, capped := l.Config.Limits.OnUs[strconv.Itoa(acc.Level)]
	if !capped {
		return nil
	}
	return l.checkCap(acc, amount, Amount(cap), []string{EntryOnchainOnUs}, "on-us transfer")
}

func (l ConfigLimits) CheckWithdrawalLimit(acc Account, amount Amount) error {
	cap, capped := l.Config.Limits.Withdrawal[strconv.Itoa(acc.Level)]
	if !capped {
		return nil
	}
	return l.checkCap(acc, amount, Amount(cap), []string{EntryOnchainPayment}, "withdrawal")
}

func (l ConfigLimits) checkCap(acc Account, amount Amount, cap Amount, types []string, what string) error {
	windowStart := l.now().Add(-24 * time.Hour)
	used, err := l.Ledger.SumDebitsSince(acc.AccountPath(), types, windowStart)
	if err != nil {
		return err
	}
	if used+amount > cap {
		return NewErr(LimitExceeded, "cannot %s more than %d sats in 24 hours (level %d)", what, cap, acc.Level)
	}
	return nil
}

func (l ConfigLimits) WithdrawalEligible(acc Account) error {
	minAge := time.Duration(l.Config.SatBank.WithdrawalMinAgeHours) * time.Hour
	if !acc.OldEnoughForWithdrawal(minAge, l.now()) {
		return NewErr(AccountTooNew, "new accounts have to wait %s before withdrawing", minAge)
	}
	return nil
}
