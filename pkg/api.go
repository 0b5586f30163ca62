package bank

// API is the façade the web layer talks to. It owns no business logic
// of its own: payments go through Payer, deposit reconciliation goes
// through Reconciler, account records live in the Store.
type API struct {
	Store      Store
	Ledger     Ledger
	Payer      Payer
	Reconciler Reconciler
	bus        MessageBus
	config     Config
}

func NewAPI(store Store, ledger Ledger, payer Payer, rec Reconciler, bus MessageBus, config Config) API {
	return API{Store: store, Ledger: ledger, Payer: payer, Reconciler: rec, bus: bus, config: config}
}

func (a API) CreateAccount(foreignID string, level int, upsert bool) (AccountPublic, error) {
	acc, err := a.Store.GetAccount(foreignID)
	if err == nil {
		if upsert {
			return acc.GetPublicInfo(), nil
		}
		return AccountPublic{}, NewErr(AlreadyExists, "account already exists: %s", foreignID)
	}
	if !IsNotFoundError(err) {
		return AccountPublic{}, err
	}
	account := Account{
		ID:        generateID(),
		ForeignID: foreignID,
		Level:     level,
	}
	err = a.Store.CreateAccount(account)
	if err != nil {
		return AccountPublic{}, err
	}
	a.bus.Send(ACC_CREATED, account.GetPublicInfo())
	return account.GetPublicInfo(), nil
}

func (a API) GetAccount(foreignID string) (AccountPublic, error) {
	acc, err := a.Store.GetAccount(foreignID)
	if err != nil {
		return AccountPublic{}, err
	}
	return acc.GetPublicInfo(), nil
}

type BalanceResponse struct {
	ForeignID string `json:"foreign_id"`
	Balance   Amount `json:"balance"`
}

func (a API) GetBalance(foreignID string) (BalanceResponse, error) {
	acc, err := a.Store.GetAccount(foreignID)
	if err != nil {
		return BalanceResponse{}, err
	}
	bal, err := a.Ledger.Balance(acc.AccountPath())
	if err != nil {
		return BalanceResponse{}, err
	}
	return BalanceResponse{ForeignID: foreignID, Balance: bal}, nil
}

type PayRequest struct {
	To     Address `json:"to"`
	Amount Amount  `json:"amount"`
	Memo   string  `json:"memo"`
}

func (a API) Pay(foreignID string, request PayRequest) error {
	return a.Payer.PayToAddress(foreignID, request.To, request.Amount, request.Memo)
}

func (a API) Reconcile(foreignID string) error {
	return a.Reconciler.ReconcileConfirmedDeposits(foreignID)
}

func (a API) PendingDeposits(foreignID string) ([]PendingDeposit, error) {
	return a.Reconciler.ListPendingDeposits(foreignID)
}

type HistoryResponse struct {
	Items  []EntryRecord `json:"items"`
	Cursor int           `json:"cursor"`
}

func (a API) History(foreignID string, cursor int, limit int) (HistoryResponse, error) {
	items, next, err := a.Reconciler.AccountHistory(foreignID, cursor, limit)
	if err != nil {
		return HistoryResponse{}, err
	}
	if items == nil {
		items = []EntryRecord{} // encoded as '[]' in JSON
	}
	return HistoryResponse{Items: items, Cursor: next}, nil
}

func (a API) NewDepositAddress(foreignID string) (Address, error) {
	return a.Payer.NewDepositAddress(foreignID)
}

func (a API) DepositAddress(foreignID string) (Address, error) {
	return a.Payer.LastDepositAddress(foreignID)
}
