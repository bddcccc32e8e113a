// Package statementvault implements the isolated execution context that
// lets a low-trust host application display encrypted financial statements
// without access to the plaintext or the device private key.
//
// The host transports opaque encrypted envelopes; the Vault holds the
// device's P-256 key pair, runs the hybrid decryption protocol (ECDH key
// agreement plus two layered AES-256-GCM decryptions), and hands back a
// typed statement. A rendering defense layer shadows the decrypted fields
// against casual exfiltration once they must be drawn on screen.
//
// Basic usage:
//
//	vault, err := statementvault.New(
//	    statementvault.WithKeyStorePath("/data/keys.db"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer vault.Close()
//
//	// Ensure the device key pair exists (generates on first run).
//	key, err := vault.EnsureKeyPair(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println("device public key:", key.PublicKeyBase64)
//
//	// Decrypt an envelope supplied by the host.
//	statement, err := vault.ProcessEncryptedStatement(ctx, envelope)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Present it through the rendering defense layer.
//	view, err := vault.Present(statement)
package statementvault
