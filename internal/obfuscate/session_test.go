package obfuscate

import (
	"testing"
)

func TestSession_ApplyReveal(t *testing.T) {
	t.Parallel()
	session, err := NewSession()
	if err != nil {
		t.Fatalf("NewSession() error = %v", err)
	}

	tests := []struct {
		name  string
		value string
	}{
		{"amount", "199.00"},
		{"identifier", "STMT123"},
		{"name", "A. Consumer"},
		{"empty", ""},
		{"non-ascii", "Ægir Ó Brien"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shadow := session.Apply(tt.value)
			if tt.value != "" && shadow == tt.value {
				t.Error("shadow equals literal value")
			}

			got, err := session.Reveal(shadow)
			if err != nil {
				t.Fatalf("Reveal() error = %v", err)
			}
			if got != tt.value {
				t.Errorf("Reveal() = %q, want %q", got, tt.value)
			}
		})
	}
}

func TestSession_RevealMalformed(t *testing.T) {
	t.Parallel()
	session, err := NewSession()
	if err != nil {
		t.Fatal(err)
	}

	if _, err := session.Reveal("not base64 !!!"); err == nil {
		t.Error("expected error for malformed shadow value")
	}
}

func TestSession_Rotate(t *testing.T) {
	t.Parallel()
	session, err := NewSession()
	if err != nil {
		t.Fatal(err)
	}

	before := session.Fingerprint()
	shadowBefore := session.Apply("199.00")

	if err := session.Rotate(); err != nil {
		t.Fatalf("Rotate() error = %v", err)
	}

	if session.Fingerprint() == before {
		t.Error("fingerprint unchanged after rotation")
	}
	if session.Apply("199.00") == shadowBefore {
		t.Error("same shadow produced after rotation")
	}
}

func TestSession_ClearPassesThrough(t *testing.T) {
	t.Parallel()
	session, err := NewSession()
	if err != nil {
		t.Fatal(err)
	}

	session.Clear()

	if got := session.Apply("199.00"); got != "199.00" {
		t.Errorf("Apply() on cleared session = %q, want passthrough", got)
	}
	if got, err := session.Reveal("199.00"); err != nil || got != "199.00" {
		t.Errorf("Reveal() on cleared session = %q, %v, want passthrough", got, err)
	}
	if session.Fingerprint() != "" {
		t.Error("cleared session still reports a fingerprint")
	}

	// Rotation reactivates the session with a fresh key.
	if err := session.Rotate(); err != nil {
		t.Fatal(err)
	}
	if session.Fingerprint() == "" {
		t.Error("rotated session has no fingerprint")
	}
	if session.Apply("199.00") == "199.00" {
		t.Error("rotated session passes values through")
	}
}

func TestSession_KeysDifferAcrossSessions(t *testing.T) {
	t.Parallel()
	a, err := NewSession()
	if err != nil {
		t.Fatal(err)
	}
	b, err := NewSession()
	if err != nil {
		t.Fatal(err)
	}

	if a.Fingerprint() == b.Fingerprint() {
		t.Error("two sessions derived the same key")
	}
}
