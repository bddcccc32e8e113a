package statementvault

import (
	"testing"
)

func presentedBill(t *testing.T, v *Vault) *ObfuscatedView {
	t.Helper()
	st := &Statement{
		Type: PayloadTypeBillStatement,
		Bill: &BillStatement{
			StatementID:    "stmt-1",
			AmountDue:      "1540.50",
			DueDate:        "2026-09-15",
			ConsumerName:   "A. Customer",
			ConsumerNumber: "C-9981",
		},
	}
	view, err := v.Present(st)
	if err != nil {
		t.Fatalf("Present() error = %v", err)
	}
	return view
}

func TestPresentShadowsSensitiveFields(t *testing.T) {
	t.Parallel()
	v := newTestVault(t)
	view := presentedBill(t, v)

	if view.Type != PayloadTypeBillStatement {
		t.Errorf("view type = %v", view.Type)
	}
	amount := view.Field("amountDue")
	if amount == nil {
		t.Fatal("amountDue not presented")
	}
	if amount.Display != "1540.50" {
		t.Errorf("Display = %q, want plaintext", amount.Display)
	}
	if amount.Shadow == "" || amount.Shadow == amount.Display {
		t.Errorf("Shadow = %q, want obfuscated value", amount.Shadow)
	}
	if !v.defense.HasCachedStatement() {
		t.Error("statement not cached after Present()")
	}
}

func TestVerifyField(t *testing.T) {
	t.Parallel()
	v := newTestVault(t)
	view := presentedBill(t, v)
	f := view.Field("amountDue")

	if !v.VerifyField(f.Name, f.Display, f.Shadow) {
		t.Error("VerifyField() = false for untouched field")
	}
	if v.defense.AccessAttempts() != 0 {
		t.Errorf("attempts = %d after clean verify", v.defense.AccessAttempts())
	}

	if v.VerifyField(f.Name, "9999.99", f.Shadow) {
		t.Error("VerifyField() = true for altered display value")
	}
	if v.VerifyField(f.Name, f.Display, "") {
		t.Error("VerifyField() = true for missing shadow")
	}
	if v.defense.AccessAttempts() != 2 {
		t.Errorf("attempts = %d, want 2", v.defense.AccessAttempts())
	}
}

func TestAccessAttemptThreshold(t *testing.T) {
	t.Parallel()
	v := newTestVault(t, WithAccessAttemptThreshold(3))
	presentedBill(t, v)

	before := v.defense.SessionFingerprint()

	for i := 0; i < 3; i++ {
		v.RaiseAccessSignal("probe")
	}
	if !v.defense.HasCachedStatement() {
		t.Fatal("statement cleared before threshold crossed")
	}

	// Crossing the threshold clears the cache and rotates the session.
	v.RaiseAccessSignal("probe")
	if v.defense.HasCachedStatement() {
		t.Error("statement still cached after threshold crossed")
	}
	if v.defense.AccessAttempts() != 0 {
		t.Errorf("attempts = %d, want reset to 0", v.defense.AccessAttempts())
	}
	if after := v.defense.SessionFingerprint(); after == before {
		t.Error("session fingerprint unchanged after rotation")
	}
}

func TestShadowsInvalidAfterRotation(t *testing.T) {
	t.Parallel()
	v := newTestVault(t, WithAccessAttemptThreshold(1))
	view := presentedBill(t, v)
	f := view.Field("amountDue")

	v.RaiseAccessSignal("probe")
	v.RaiseAccessSignal("probe")

	if v.VerifyField(f.Name, f.Display, f.Shadow) {
		t.Error("VerifyField() = true for shadow issued before rotation")
	}
}

func TestNotifyBackgroundedClears(t *testing.T) {
	t.Parallel()
	v := newTestVault(t)
	presentedBill(t, v)

	v.NotifyBackgrounded()
	if v.defense.HasCachedStatement() {
		t.Error("statement still cached after backgrounding")
	}
}

func TestPresentResetsAttempts(t *testing.T) {
	t.Parallel()
	v := newTestVault(t)
	presentedBill(t, v)
	v.RaiseAccessSignal("probe")
	presentedBill(t, v)
	if v.defense.AccessAttempts() != 0 {
		t.Errorf("attempts = %d after fresh Present(), want 0", v.defense.AccessAttempts())
	}
}

func TestCloseTearsDownDefense(t *testing.T) {
	t.Parallel()
	v := newTestVault(t)
	presentedBill(t, v)

	if err := v.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if v.defense.HasCachedStatement() {
		t.Error("statement still cached after Close()")
	}
}
