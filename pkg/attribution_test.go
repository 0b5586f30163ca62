package bank

import "testing"

func TestAmountOnOutputs(t *testing.T) {
	owned := AddressSet{"a1": {}, "a2": {}}
	outputs := []TxOut{
		{Value: 30000, Addresses: []Address{"a1"}},
		{Value: 20000, Addresses: []Address{"someone-else"}},
		{Value: 5000, Addresses: []Address{"a2"}},
	}
	if got := AmountOnOutputs(outputs, owned); got != 35000 {
		t.Fatalf("want 35000, got %d", got)
	}
}

// A transaction paying two accounts must never hand either of them the
// transaction total.
func TestAmountOnOutputsIsPerAccount(t *testing.T) {
	a := AddressSet{"a1": {}}
	b := AddressSet{"b1": {}}
	outputs := []TxOut{
		{Value: 30000, Addresses: []Address{"a1"}},
		{Value: 20000, Addresses: []Address{"b1"}},
	}
	if got := AmountOnOutputs(outputs, a); got != 30000 {
		t.Fatalf("account a: want 30000, got %d", got)
	}
	if got := AmountOnOutputs(outputs, b); got != 20000 {
		t.Fatalf("account b: want 20000, got %d", got)
	}
}

func TestAmountOnOutputsCountsOutputOnce(t *testing.T) {
	// a multisig-style output listing two owned addresses still
	// contributes its value once
	owned := AddressSet{"a1": {}, "a2": {}}
	outputs := []TxOut{{Value: 10000, Addresses: []Address{"a1", "a2"}}}
	if got := AmountOnOutputs(outputs, owned); got != 10000 {
		t.Fatalf("want 10000, got %d", got)
	}
}

func TestOwnedAddressesOnOutputs(t *testing.T) {
	owned := AddressSet{"a1": {}, "a2": {}}
	outputs := []TxOut{
		{Value: 1, Addresses: []Address{"a2"}},
		{Value: 2, Addresses: []Address{"x"}},
		{Value: 3, Addresses: []Address{"a1"}},
		{Value: 4, Addresses: []Address{"a2"}}, // repeat
	}
	got := OwnedAddressesOnOutputs(outputs, owned)
	if len(got) != 2 || got[0] != "a2" || got[1] != "a1" {
		t.Fatalf("want [a2 a1], got %v", got)
	}
}
