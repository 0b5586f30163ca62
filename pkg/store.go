package bank

type Store interface {
	// CreateAccount stores a new account.
	CreateAccount(account Account) error
	// GetAccount returns the account with the given ForeignID.
	GetAccount(foreignID string) (Account, error)
	// GetAccountByID returns the account with the given internal ID.
	GetAccountByID(id string) (Account, error)
	// FindAccountByAddress is the address ownership index: it returns
	// the one account the deposit address was issued to, or a NotFound
	// error. Payments use it for the on-us check; reconciliation uses
	// it (via Account.AddressSet) to attribute outputs.
	FindAccountByAddress(addr Address) (Account, error)
	// AppendAddress records a newly issued deposit address against an
	// account. Fails with AlreadyExists if the address is already
	// bound to any account (addresses are never reused).
	AppendAddress(accountID string, addr Address) error
	// ListAccountIDs pages through all account IDs for background
	// sweeps. next_cursor == 0 means final page.
	ListAccountIDs(cursor int, limit int) (ids []string, next_cursor int, err error)
}
