package crypto

import (
	"bytes"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"testing"
)

func TestDecrypt_RoundTrip(t *testing.T) {
	t.Parallel()
	device, err := GenerateKeyPair()
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name      string
		plaintext string
	}{
		{"bill statement", `{"statementId":"STMT123","amountDue":"199.00"}`},
		{"payment history", `{"consumerNumber":"C-9","payments":[{"amount":"50.00"}]}`},
		{"empty object", `{}`},
		{"non-ascii", `{"consumerName":"Ægir Ó Brien"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, err := Encrypt([]byte(tt.plaintext), device.PublicKeySPKI)
			if err != nil {
				t.Fatalf("Encrypt() error = %v", err)
			}

			got, err := Decrypt(env, device)
			if err != nil {
				t.Fatalf("Decrypt() error = %v", err)
			}

			if string(got) != tt.plaintext {
				t.Errorf("Decrypt() = %q, want %q", got, tt.plaintext)
			}
		})
	}
}

func TestDecrypt_ZeroIV(t *testing.T) {
	t.Parallel()
	device, err := GenerateKeyPair()
	if err != nil {
		t.Fatal(err)
	}

	// The reference scenario pins the payload IV to 12 zero bytes,
	// base64 "AAAAAAAAAAAAAAAA".
	iv, err := base64.StdEncoding.DecodeString("AAAAAAAAAAAAAAAA")
	if err != nil {
		t.Fatal(err)
	}
	if len(iv) != AESNonceSize {
		t.Fatalf("decoded IV is %d bytes, want %d", len(iv), AESNonceSize)
	}

	plaintext := `{"statementId":"STMT123","amountDue":"199.00"}`
	env, err := EncryptWithIV([]byte(plaintext), device.PublicKeySPKI, iv)
	if err != nil {
		t.Fatal(err)
	}

	if !bytes.Equal(env.IV, iv) {
		t.Error("envelope does not carry the pinned IV")
	}

	got, err := Decrypt(env, device)
	if err != nil {
		t.Fatalf("Decrypt() error = %v", err)
	}
	if string(got) != plaintext {
		t.Errorf("Decrypt() = %q, want %q", got, plaintext)
	}
}

func TestDecrypt_WrongDeviceKey(t *testing.T) {
	t.Parallel()
	device, err := GenerateKeyPair()
	if err != nil {
		t.Fatal(err)
	}

	env, err := Encrypt([]byte(`{"statementId":"STMT123"}`), device.PublicKeySPKI)
	if err != nil {
		t.Fatal(err)
	}

	// A freshly generated, unrelated pair must fail at the unwrap stage,
	// never return wrong plaintext.
	other, err := GenerateKeyPair()
	if err != nil {
		t.Fatal(err)
	}

	_, err = Decrypt(env, other)
	if !errors.Is(err, ErrUnwrapFailed) {
		t.Errorf("Decrypt() error = %v, want ErrUnwrapFailed", err)
	}
}

func TestDecrypt_BitFlips(t *testing.T) {
	t.Parallel()
	device, err := GenerateKeyPair()
	if err != nil {
		t.Fatal(err)
	}

	makeEnv := func(t *testing.T) *EncryptedStatement {
		t.Helper()
		env, err := Encrypt([]byte(`{"statementId":"STMT123","amountDue":"199.00"}`), device.PublicKeySPKI)
		if err != nil {
			t.Fatal(err)
		}
		return env
	}

	tests := []struct {
		name    string
		corrupt func(*EncryptedStatement)
		want    error
	}{
		{
			"flip bit in wrappedDek",
			func(e *EncryptedStatement) { e.WrappedDEK[0] ^= 0x01 },
			ErrUnwrapFailed,
		},
		{
			"flip bit in wrappedDek tag",
			func(e *EncryptedStatement) { e.WrappedDEK[len(e.WrappedDEK)-1] ^= 0x80 },
			ErrUnwrapFailed,
		},
		{
			"flip bit in payload",
			func(e *EncryptedStatement) { e.EncryptedPayload[0] ^= 0x01 },
			ErrPayloadDecryptFailed,
		},
		{
			"flip bit in payload tag",
			func(e *EncryptedStatement) { e.EncryptedPayload[len(e.EncryptedPayload)-1] ^= 0x01 },
			ErrPayloadDecryptFailed,
		},
		{
			"flip bit in iv",
			func(e *EncryptedStatement) { e.IV[3] ^= 0x10 },
			ErrPayloadDecryptFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := makeEnv(t)
			tt.corrupt(env)

			_, err := Decrypt(env, device)
			if !errors.Is(err, tt.want) {
				t.Errorf("Decrypt() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestDecrypt_MalformedSenderKey(t *testing.T) {
	t.Parallel()
	device, err := GenerateKeyPair()
	if err != nil {
		t.Fatal(err)
	}

	env, err := Encrypt([]byte(`{}`), device.PublicKeySPKI)
	if err != nil {
		t.Fatal(err)
	}
	env.SenderPublicKey = []byte("not an SPKI key")

	_, err = Decrypt(env, device)
	if !errors.Is(err, ErrKeyImportFailed) {
		t.Errorf("Decrypt() error = %v, want ErrKeyImportFailed", err)
	}
}

func TestDeriveWrapMaterial(t *testing.T) {
	t.Parallel()
	secret := bytes.Repeat([]byte{0xAB}, SharedSecretSize)

	key, iv := deriveWrapMaterial(secret)

	if !bytes.Equal(key, secret[:WrappingKeySize]) {
		t.Error("wrapping key is not the first 32 bytes of the shared secret")
	}

	digest := sha256.Sum256(secret)
	if !bytes.Equal(iv, digest[:WrapIVSize]) {
		t.Error("wrap IV is not SHA-256(secret)[0:12]")
	}

	// Derivation is deterministic per secret.
	key2, iv2 := deriveWrapMaterial(secret)
	if !bytes.Equal(key, key2) || !bytes.Equal(iv, iv2) {
		t.Error("derivation not deterministic")
	}

	// Mutating returned material must not touch the secret.
	key[0] ^= 0xFF
	if secret[0] != 0xAB {
		t.Error("derived key aliases the shared secret")
	}
}

func TestDecrypt_SecretVariesPerSender(t *testing.T) {
	t.Parallel()
	device, err := GenerateKeyPair()
	if err != nil {
		t.Fatal(err)
	}

	// Two envelopes for the same plaintext must differ in every
	// ciphertext field because the ephemeral sender key differs.
	a, err := Encrypt([]byte(`{"statementId":"STMT123"}`), device.PublicKeySPKI)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Encrypt([]byte(`{"statementId":"STMT123"}`), device.PublicKeySPKI)
	if err != nil {
		t.Fatal(err)
	}

	if bytes.Equal(a.SenderPublicKey, b.SenderPublicKey) {
		t.Error("ephemeral sender keys repeated")
	}
	if bytes.Equal(a.WrappedDEK, b.WrappedDEK) {
		t.Error("wrapped DEKs repeated across envelopes")
	}
}
