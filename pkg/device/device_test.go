package device

import (
	"bytes"
	"testing"
)

func TestFingerprintPersistsAcrossOpens(t *testing.T) {
	base := t.TempDir()

	store, err := NewStore(base, 1000)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	fp, err := store.Fingerprint()
	if err != nil {
		t.Fatalf("Fingerprint: %v", err)
	}
	if fp.DeviceID == "" || fp.Serial == "" {
		t.Fatalf("generated fingerprint incomplete: %+v", fp)
	}

	// Reopening the store yields the same identity.
	store2, err := NewStore(base, 1000)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	fp2, err := store2.Fingerprint()
	if err != nil {
		t.Fatalf("Fingerprint: %v", err)
	}
	if fp2.DeviceID != fp.DeviceID || fp2.Serial != fp.Serial {
		t.Errorf("fingerprint changed across opens: %+v != %+v", fp2, fp)
	}
}

func TestFingerprintPerAccount(t *testing.T) {
	base := t.TempDir()

	a, _ := NewStore(base, 1000)
	b, _ := NewStore(base, 2000)
	fpA, err := a.Fingerprint()
	if err != nil {
		t.Fatalf("Fingerprint: %v", err)
	}
	fpB, err := b.Fingerprint()
	if err != nil {
		t.Fatalf("Fingerprint: %v", err)
	}
	if fpA.DeviceID == fpB.DeviceID {
		t.Error("two accounts share a device identity")
	}
}

func TestTokenRoundTrip(t *testing.T) {
	store, err := NewStore(t.TempDir(), 1000)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	if tok, err := store.Token(); err != nil || tok != nil {
		t.Errorf("Token on empty store = %x, %v; want nil, nil", tok, err)
	}

	token := []byte{0x01, 0x02, 0x03}
	if err := store.SaveToken(token); err != nil {
		t.Fatalf("SaveToken: %v", err)
	}
	got, err := store.Token()
	if err != nil {
		t.Fatalf("Token: %v", err)
	}
	if !bytes.Equal(got, token) {
		t.Errorf("Token = %x, want %x", got, token)
	}

	if err := store.ClearToken(); err != nil {
		t.Fatalf("ClearToken: %v", err)
	}
	if tok, err := store.Token(); err != nil || tok != nil {
		t.Errorf("Token after clear = %x, %v; want nil, nil", tok, err)
	}
}
