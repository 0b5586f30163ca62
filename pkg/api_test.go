package bank_test

import (
	"testing"

	bank "github.com/satbank/satbank/pkg"
)

func newAPI(r *rig) bank.API {
	return bank.NewAPI(r.db, r.db, r.payer, r.rec, r.bus, r.conf)
}

func TestAPICreateAccount(t *testing.T) {
	r := newRig(t)
	api := newAPI(r)

	acc, err := api.CreateAccount("merchant-1", 1, false)
	if err != nil {
		t.Fatalf("CreateAccount: %v", err)
	}
	if acc.ForeignID != "merchant-1" || acc.Level != 1 {
		t.Fatalf("wrong account: %+v", acc)
	}

	_, err = api.CreateAccount("merchant-1", 1, false)
	if !bank.IsError(err, bank.AlreadyExists) {
		t.Fatalf("want already-exists, got %v", err)
	}

	// upsert returns the existing account instead
	again, err := api.CreateAccount("merchant-1", 1, true)
	if err != nil {
		t.Fatalf("upsert CreateAccount: %v", err)
	}
	if again.ForeignID != acc.ForeignID {
		t.Fatalf("upsert returned a different account: %+v", again)
	}
}

func TestAPIGetBalance(t *testing.T) {
	r := newRig(t)
	api := newAPI(r)
	alice := r.addAccount(t, "alice")

	resp, err := api.GetBalance("alice")
	if err != nil {
		t.Fatalf("GetBalance: %v", err)
	}
	if resp.Balance != 0 {
		t.Fatalf("fresh account balance: want 0, got %d", resp.Balance)
	}

	r.fund(t, alice, 12345)
	resp, err = api.GetBalance("alice")
	if err != nil {
		t.Fatalf("GetBalance: %v", err)
	}
	if resp.Balance != 12345 {
		t.Fatalf("funded balance: want 12345, got %d", resp.Balance)
	}

	_, err = api.GetBalance("nobody")
	if !bank.IsNotFoundError(err) {
		t.Fatalf("want not-found, got %v", err)
	}
}

func TestAPIHistoryEncodesEmptyPage(t *testing.T) {
	r := newRig(t)
	api := newAPI(r)
	r.addAccount(t, "alice")

	resp, err := api.History("alice", 0, 10)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if resp.Items == nil || len(resp.Items) != 0 {
		t.Fatalf("empty history must be an empty slice: %+v", resp.Items)
	}
	if resp.Cursor != 0 {
		t.Fatalf("want cursor 0, got %d", resp.Cursor)
	}
}

func TestAPIDepositAddress(t *testing.T) {
	r := newRig(t)
	api := newAPI(r)
	r.addAccount(t, "alice")
	r.node.NewAddrs = []bank.Address{addrA, addrB}

	// first call issues on demand
	got, err := api.DepositAddress("alice")
	if err != nil {
		t.Fatalf("DepositAddress: %v", err)
	}
	if got != addrA {
		t.Fatalf("want %s, got %s", addrA, got)
	}

	// explicit rotation issues a fresh one
	next, err := api.NewDepositAddress("alice")
	if err != nil {
		t.Fatalf("NewDepositAddress: %v", err)
	}
	if next != addrB {
		t.Fatalf("want %s, got %s", addrB, next)
	}
	last, err := api.DepositAddress("alice")
	if err != nil || last != addrB {
		t.Fatalf("latest address: want %s, got %s (%v)", addrB, last, err)
	}
}
