package store

import (
	"testing"
	"time"

	bank "github.com/satbank/satbank/pkg"
)

const addr1 bank.Address = "1Axxxxxxxxxxxxxxxxxxxxxxxxxxxxxxx1"
const addr2 bank.Address = "1Axxxxxxxxxxxxxxxxxxxxxxxxxxxxxxx2"

func openStore(t *testing.T) SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("open sqlite store: %v", err)
	}
	t.Cleanup(s.Close)
	return s
}

func receiptMeta(txid string) bank.EntryMeta {
	return bank.EntryMeta{Currency: "BTC", Type: bank.EntryOnchainReceipt, TxID: txid}
}

func TestStoreAccounts(t *testing.T) {
	s := openStore(t)

	acc := bank.Account{ID: "id-1", ForeignID: "alice", Level: 2, Addresses: []bank.Address{addr1}}
	if err := s.CreateAccount(acc); err != nil {
		t.Fatalf("CreateAccount: %v", err)
	}
	err := s.CreateAccount(bank.Account{ID: "id-other", ForeignID: "alice"})
	if !bank.IsAlreadyExistsError(err) {
		t.Fatalf("duplicate foreign ID: want already-exists, got %v", err)
	}

	got, err := s.GetAccount("alice")
	if err != nil {
		t.Fatalf("GetAccount: %v", err)
	}
	if got.ID != "id-1" || got.Level != 2 || len(got.Addresses) != 1 || got.Addresses[0] != addr1 {
		t.Fatalf("wrong account: %+v", got)
	}

	got, err = s.GetAccountByID("id-1")
	if err != nil || got.ForeignID != "alice" {
		t.Fatalf("GetAccountByID: %+v %v", got, err)
	}

	_, err = s.GetAccount("nobody")
	if !bank.IsNotFoundError(err) {
		t.Fatalf("want not-found, got %v", err)
	}
}

func TestStoreAddressOwnership(t *testing.T) {
	s := openStore(t)
	if err := s.CreateAccount(bank.Account{ID: "id-1", ForeignID: "alice"}); err != nil {
		t.Fatalf("CreateAccount: %v", err)
	}
	if err := s.CreateAccount(bank.Account{ID: "id-2", ForeignID: "bob"}); err != nil {
		t.Fatalf("CreateAccount: %v", err)
	}

	if err := s.AppendAddress("id-1", addr1); err != nil {
		t.Fatalf("AppendAddress: %v", err)
	}
	// an address belongs to exactly one account, forever
	err := s.AppendAddress("id-2", addr1)
	if !bank.IsAlreadyExistsError(err) {
		t.Fatalf("rebinding an address: want already-exists, got %v", err)
	}

	acc, err := s.FindAccountByAddress(addr1)
	if err != nil || acc.ForeignID != "alice" {
		t.Fatalf("FindAccountByAddress: %+v %v", acc, err)
	}
	_, err = s.FindAccountByAddress(addr2)
	if !bank.IsNotFoundError(err) {
		t.Fatalf("unknown address: want not-found, got %v", err)
	}

	// addresses come back oldest first
	if err := s.AppendAddress("id-1", addr2); err != nil {
		t.Fatalf("AppendAddress: %v", err)
	}
	acc, err = s.GetAccount("alice")
	if err != nil || len(acc.Addresses) != 2 || acc.LastAddress() != addr2 {
		t.Fatalf("address order: %+v %v", acc.Addresses, err)
	}
}

func TestLedgerCommitAndBalance(t *testing.T) {
	s := openStore(t)
	aPath := bank.CustomerPath("id-1")

	e := bank.NewEntry("deposit").
		Credit(aPath, 50000, receiptMeta("tx-1")).
		Debit(bank.HotWalletPath, 50000, receiptMeta("tx-1"))
	if err := s.Commit(e); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	bal, err := s.Balance(aPath)
	if err != nil || bal != 50000 {
		t.Fatalf("Balance: want 50000, got %d (%v)", bal, err)
	}
	bal, err = s.Balance(bank.HotWalletPath)
	if err != nil || bal != -50000 {
		t.Fatalf("hot wallet: want -50000, got %d (%v)", bal, err)
	}

	// debit the customer back down
	meta := bank.EntryMeta{Currency: "BTC", Type: bank.EntryOnchainPayment, TxID: "tx-2", Pending: true}
	e = bank.NewEntry("withdrawal").
		Credit(bank.HotWalletPath, 20000, meta).
		Debit(aPath, 20000, meta)
	if err := s.Commit(e); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	bal, err = s.Balance(aPath)
	if err != nil || bal != 30000 {
		t.Fatalf("Balance: want 30000, got %d (%v)", bal, err)
	}

	// unknown path is an empty account, not an error
	bal, err = s.Balance(bank.CustomerPath("ghost"))
	if err != nil || bal != 0 {
		t.Fatalf("empty path: want 0, got %d (%v)", bal, err)
	}
}

func TestLedgerRejectsUnbalancedEntry(t *testing.T) {
	s := openStore(t)
	aPath := bank.CustomerPath("id-1")

	e := bank.NewEntry("bad").
		Credit(aPath, 50000, receiptMeta("tx-1")).
		Debit(bank.HotWalletPath, 40000, receiptMeta("tx-1"))
	err := s.Commit(e)
	if !bank.IsError(err, bank.BadRequest) {
		t.Fatalf("want bad-request, got %v", err)
	}
	// nothing was written
	bal, err := s.Balance(aPath)
	if err != nil || bal != 0 {
		t.Fatalf("partial write: balance %d (%v)", bal, err)
	}
}

func TestLedgerFindEntry(t *testing.T) {
	s := openStore(t)
	aPath := bank.CustomerPath("id-1")

	found, err := s.FindEntry(aPath, bank.EntryOnchainReceipt, "tx-1")
	if err != nil || found {
		t.Fatalf("empty ledger: found=%v err=%v", found, err)
	}

	e := bank.NewEntry("").
		Credit(aPath, 50000, receiptMeta("tx-1")).
		Debit(bank.HotWalletPath, 50000, receiptMeta("tx-1"))
	if err := s.Commit(e); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	found, err = s.FindEntry(aPath, bank.EntryOnchainReceipt, "tx-1")
	if err != nil || !found {
		t.Fatalf("posted entry: found=%v err=%v", found, err)
	}
	// type and txid both have to match
	found, _ = s.FindEntry(aPath, bank.EntryOnchainPayment, "tx-1")
	if found {
		t.Fatal("found with the wrong entry type")
	}
	found, _ = s.FindEntry(aPath, bank.EntryOnchainReceipt, "tx-2")
	if found {
		t.Fatal("found with the wrong txid")
	}
	found, _ = s.FindEntry(bank.CustomerPath("id-2"), bank.EntryOnchainReceipt, "tx-1")
	if found {
		t.Fatal("found on the wrong account path")
	}
}

func TestLedgerSumDebitsSince(t *testing.T) {
	s := openStore(t)
	aPath := bank.CustomerPath("id-1")
	meta := bank.EntryMeta{Currency: "BTC", Type: bank.EntryOnchainPayment, TxID: "tx-1", Pending: true}

	old := bank.NewEntry("old withdrawal").
		Credit(bank.HotWalletPath, 7000, meta).
		Debit(aPath, 7000, meta)
	old.Created = time.Now().Add(-48 * time.Hour)
	if err := s.Commit(old); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	recent := bank.NewEntry("recent withdrawal").
		Credit(bank.HotWalletPath, 5000, meta).
		Debit(aPath, 5000, meta)
	if err := s.Commit(recent); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	onUs := bank.EntryMeta{Currency: "BTC", Type: bank.EntryOnchainOnUs}
	internal := bank.NewEntry("on-us").
		Credit(bank.CustomerPath("id-2"), 3000, onUs).
		Debit(aPath, 3000, onUs)
	if err := s.Commit(internal); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	since := time.Now().Add(-24 * time.Hour)
	sum, err := s.SumDebitsSince(aPath, []string{bank.EntryOnchainPayment}, since)
	if err != nil || sum != 5000 {
		t.Fatalf("payments in window: want 5000, got %d (%v)", sum, err)
	}
	sum, err = s.SumDebitsSince(aPath, []string{bank.EntryOnchainOnUs}, since)
	if err != nil || sum != 3000 {
		t.Fatalf("on-us in window: want 3000, got %d (%v)", sum, err)
	}
	sum, err = s.SumDebitsSince(aPath, nil, since)
	if err != nil || sum != 0 {
		t.Fatalf("no types: want 0, got %d (%v)", sum, err)
	}
}

func TestLedgerListEntriesPagination(t *testing.T) {
	s := openStore(t)
	aPath := bank.CustomerPath("id-1")
	for i, txid := range []string{"tx-1", "tx-2", "tx-3"} {
		e := bank.NewEntry("").
			Credit(aPath, bank.Amount(1000*(i+1)), receiptMeta(txid)).
			Debit(bank.HotWalletPath, bank.Amount(1000*(i+1)), receiptMeta(txid))
		if err := s.Commit(e); err != nil {
			t.Fatalf("Commit: %v", err)
		}
	}

	// newest first
	items, cursor, err := s.ListEntries(aPath, 0, 2)
	if err != nil {
		t.Fatalf("ListEntries: %v", err)
	}
	if len(items) != 2 || items[0].TxID != "tx-3" || items[1].TxID != "tx-2" {
		t.Fatalf("first page: %+v", items)
	}
	if cursor == 0 {
		t.Fatal("want a continuation cursor")
	}
	if items[0].Amount != 3000 {
		t.Fatalf("credit amount should be positive: %d", items[0].Amount)
	}

	items, cursor, err = s.ListEntries(aPath, cursor, 2)
	if err != nil {
		t.Fatalf("ListEntries: %v", err)
	}
	if len(items) != 1 || items[0].TxID != "tx-1" {
		t.Fatalf("second page: %+v", items)
	}
	if cursor != 0 {
		t.Fatalf("want final page, got cursor %d", cursor)
	}
}

func TestLedgerListEntriesSignsDebits(t *testing.T) {
	s := openStore(t)
	aPath := bank.CustomerPath("id-1")
	meta := bank.EntryMeta{Currency: "BTC", Type: bank.EntryOnchainPayment, TxID: "tx-1", Fee: 600, Pending: true}
	e := bank.NewEntry("withdrawal").
		Credit(bank.HotWalletPath, 10600, meta).
		Debit(aPath, 10600, meta)
	if err := s.Commit(e); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	items, _, err := s.ListEntries(aPath, 0, 10)
	if err != nil || len(items) != 1 {
		t.Fatalf("ListEntries: %+v %v", items, err)
	}
	rec := items[0]
	if rec.Amount != -10600 {
		t.Fatalf("debit amount should be negative: %d", rec.Amount)
	}
	if rec.Fee != 600 || !rec.Pending || rec.Type != bank.EntryOnchainPayment {
		t.Fatalf("wrong record: %+v", rec)
	}
}

func TestStoreListAccountIDs(t *testing.T) {
	s := openStore(t)
	for _, id := range []string{"id-1", "id-2", "id-3"} {
		if err := s.CreateAccount(bank.Account{ID: id, ForeignID: "f-" + id}); err != nil {
			t.Fatalf("CreateAccount: %v", err)
		}
	}

	ids, cursor, err := s.ListAccountIDs(0, 2)
	if err != nil || len(ids) != 2 {
		t.Fatalf("first page: %v %v", ids, err)
	}
	if cursor == 0 {
		t.Fatal("want a continuation cursor")
	}
	ids, cursor, err = s.ListAccountIDs(cursor, 2)
	if err != nil || len(ids) != 1 || ids[0] != "id-3" {
		t.Fatalf("second page: %v %v", ids, err)
	}
	if cursor != 0 {
		t.Fatalf("want final page, got cursor %d", cursor)
	}
}
