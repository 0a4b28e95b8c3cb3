package domain

import (
	"encoding/json"
	"testing"
)

func TestRecordKinds(t *testing.T) {
	records := []Record{
		Deposit{BaseRecord: BaseRecord{Tx: 1, Client: 2}},
		Withdrawal{BaseRecord: BaseRecord{Tx: 1, Client: 2}},
		Dispute{BaseRecord: BaseRecord{Tx: 1, Client: 2}},
		Resolve{BaseRecord: BaseRecord{Tx: 1, Client: 2}},
		Chargeback{BaseRecord: BaseRecord{Tx: 1, Client: 2}},
	}
	want := []Kind{KindDeposit, KindWithdrawal, KindDispute, KindResolve, KindChargeback}

	for i, rec := range records {
		if rec.GetKind() != want[i] {
			t.Errorf("record %d: kind %s, want %s", i, rec.GetKind(), want[i])
		}
		if rec.GetTx() != 1 || rec.GetClient() != 2 {
			t.Errorf("record %d: base fields lost", i)
		}
	}
}

func TestDepositJSONRoundTrip(t *testing.T) {
	dep := Deposit{BaseRecord: BaseRecord{Tx: 7, Client: 3}, Amount: 3_1400}

	data, err := json.Marshal(dep)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var back Deposit
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if back != dep {
		t.Errorf("round trip: %+v != %+v", back, dep)
	}
}

func TestAccountTotal(t *testing.T) {
	a := &Account{Available: 10_0000, Held: 5_0000}
	if a.Total() != 15_0000 {
		t.Errorf("total = %d, want 150000", a.Total())
	}
}
