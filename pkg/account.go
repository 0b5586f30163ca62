package bank

import "time"

// Account is a single customer account managed by SatBank.
//
// The settlement core reads accounts and appends deposit addresses;
// everything else about the account (tier, creation) belongs to the
// account-management side of the Store.
type Account struct {
	ID        string    // internal account ID (ledger key)
	ForeignID string    // 3rd-party ID used by the operator's systems
	Level     int       // account tier, drives limit policy
	Created   time.Time // account creation time
	// Addresses previously issued to this account, oldest first.
	// Append-only; an address maps to exactly one account forever.
	Addresses []Address
}

// AccountPath is this account's key in the double-entry ledger.
func (a Account) AccountPath() string {
	return CustomerPath(a.ID)
}

// OldEnoughForWithdrawal reports whether the account has existed for
// at least minAge. Fresh accounts cannot withdraw on-chain; this slows
// down hit-and-run abuse of stolen payment credentials.
func (a Account) OldEnoughForWithdrawal(minAge time.Duration, now time.Time) bool {
	return now.Sub(a.Created) >= minAge
}

// LastAddress returns the most recently issued deposit address,
// or "" if none has been issued yet.
func (a Account) LastAddress() Address {
	if len(a.Addresses) == 0 {
		return ""
	}
	return a.Addresses[len(a.Addresses)-1]
}

// AddressSet is a membership index over an account's issued addresses,
// used to attribute transaction outputs to the account.
type AddressSet map[Address]struct{}

func (a Account) AddressSet() AddressSet {
	set := make(AddressSet, len(a.Addresses))
	for _, addr := range a.Addresses {
		set[addr] = struct{}{}
	}
	return set
}

func (s AddressSet) Contains(addr Address) bool {
	_, ok := s[addr]
	return ok
}

// GetPublicInfo gets those parts of the Account that are safe
// to expose to the outside world.
func (a Account) GetPublicInfo() AccountPublic {
	return AccountPublic{ForeignID: a.ForeignID, Level: a.Level, DepositAddress: a.LastAddress()}
}

type AccountPublic struct {
	ForeignID      string  `json:"foreign_id"`
	Level          int     `json:"level"`
	DepositAddress Address `json:"deposit_address"`
}
