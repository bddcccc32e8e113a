// Command testhelper exercises the vault from the command line. It exists
// for cross-SDK interoperability testing: envelopes produced by one
// implementation are decrypted by another.
//
// Configuration comes from the environment (a .env file is loaded when
// present): STATEMENTVAULT_BASE_URL, STATEMENTVAULT_CONSUMER_ID,
// STATEMENTVAULT_DEVICE_ID, and TESTHELPER_KEYSTORE for the key store
// path.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/joho/godotenv"

	statementvault "github.com/statementvault/vault-go"
	"github.com/statementvault/vault-go/internal/crypto"
)

func main() {
	if len(os.Args) < 2 {
		fatal("usage: testhelper <gen-keypair|encrypt-statement|decrypt-statement|register> [args]")
	}

	godotenv.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	switch os.Args[1] {
	case "gen-keypair":
		genKeyPair(ctx)
	case "encrypt-statement":
		if len(os.Args) < 3 {
			fatal("usage: testhelper encrypt-statement <recipient-public-key-b64> < statement.json")
		}
		encryptStatement(os.Args[2])
	case "decrypt-statement":
		if len(os.Args) < 3 {
			fatal("usage: testhelper decrypt-statement <payload-type> < envelope.json")
		}
		decryptStatement(ctx, statementvault.PayloadType(os.Args[2]))
	case "register":
		register(ctx)
	default:
		fatal("unknown command: %s", os.Args[1])
	}
}

func newVault() *statementvault.Vault {
	opts := []statementvault.Option{statementvault.WithAutoRegister(false)}
	if path := os.Getenv("TESTHELPER_KEYSTORE"); path != "" {
		opts = append(opts, statementvault.WithKeyStorePath(path))
	}
	v, err := statementvault.New(opts...)
	if err != nil {
		fatal("create vault: %v", err)
	}
	return v
}

func genKeyPair(ctx context.Context) {
	v := newVault()
	defer v.Close()

	key, err := v.EnsureKeyPair(ctx)
	if err != nil {
		fatal("ensure key pair: %v", err)
	}

	emit(map[string]string{
		"publicKey": key.PublicKeyBase64,
		"createdAt": key.CreatedAt.Format(time.RFC3339),
		"algs":      crypto.AlgsCiphersuite,
	})
}

func encryptStatement(recipientB64 string) {
	spki, err := crypto.DecodeBase64(recipientB64)
	if err != nil {
		fatal("decode recipient key: %v", err)
	}
	plaintext, err := io.ReadAll(os.Stdin)
	if err != nil {
		fatal("read stdin: %v", err)
	}

	enc, err := crypto.Encrypt(plaintext, spki)
	if err != nil {
		fatal("encrypt: %v", err)
	}

	emit(map[string]string{
		"encryptedPayload": crypto.ToBase64(enc.EncryptedPayload),
		"wrappedDek":       crypto.ToBase64(enc.WrappedDEK),
		"iv":               crypto.ToBase64(enc.IV),
		"senderPublicKey":  crypto.ToBase64(enc.SenderPublicKey),
	})
}

func decryptStatement(ctx context.Context, payloadType statementvault.PayloadType) {
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		fatal("read stdin: %v", err)
	}

	var env statementvault.EncryptedEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		fatal("parse envelope: %v", err)
	}
	if env.PayloadType == "" {
		env.PayloadType = payloadType
	}

	v := newVault()
	defer v.Close()

	st, err := v.ProcessEncryptedStatement(ctx, &env)
	if err != nil {
		fatal("decrypt: %v (%s)", err, statementvault.UserFacingMessage(err))
	}

	switch st.Type {
	case statementvault.PayloadTypePaymentHistory:
		emit(st.History)
	default:
		emit(st.Bill)
	}
}

func register(ctx context.Context) {
	v := newVault()
	defer v.Close()

	result, err := v.AnnouncePublicKey(ctx)
	if err != nil {
		fatal("register: %v", err)
	}
	emit(map[string]any{
		"success":  result.Success,
		"attempts": result.Attempts,
	})
}

func emit(v any) {
	if err := json.NewEncoder(os.Stdout).Encode(v); err != nil {
		fatal("encode output: %v", err)
	}
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
