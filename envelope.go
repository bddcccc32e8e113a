package statementvault

import (
	"time"
)

// PayloadType identifies the statement variant carried by an envelope.
type PayloadType string

const (
	// PayloadTypeBillStatement is a bill (or card) statement payload.
	PayloadTypeBillStatement PayloadType = "BILL_STATEMENT"
	// PayloadTypePaymentHistory is a payment history payload.
	PayloadTypePaymentHistory PayloadType = "PAYMENT_HISTORY"
)

// EncryptedEnvelope is the opaque bundle the host transports. All binary
// fields are base64-encoded. Envelopes are externally supplied and
// immutable; they are validated non-empty before use.
type EncryptedEnvelope struct {
	// EncryptedPayload is the AES-256-GCM ciphertext of the statement.
	EncryptedPayload string `json:"encryptedPayload"`
	// WrappedDek is the DEK encrypted under the key derived from the
	// ECDH agreement.
	WrappedDek string `json:"wrappedDek"`
	// IV is the 12-byte payload nonce.
	IV string `json:"iv"`
	// SenderPublicKey is the sender's ephemeral P-256 key, SPKI encoded.
	SenderPublicKey string `json:"senderPublicKey"`
	// PayloadType selects the statement variant.
	PayloadType PayloadType `json:"payloadType"`
	// Expiry is epoch milliseconds; zero means no expiry.
	Expiry int64 `json:"expiry,omitempty"`
}

// Validate checks that every required field is present and the payload
// type is known. It returns a *ValidationError naming the offending fields.
func (e *EncryptedEnvelope) Validate() error {
	var missing []string

	if e.EncryptedPayload == "" {
		missing = append(missing, "encryptedPayload")
	}
	if e.WrappedDek == "" {
		missing = append(missing, "wrappedDek")
	}
	if e.IV == "" {
		missing = append(missing, "iv")
	}
	if e.SenderPublicKey == "" {
		missing = append(missing, "senderPublicKey")
	}
	switch e.PayloadType {
	case PayloadTypeBillStatement, PayloadTypePaymentHistory:
	case "":
		missing = append(missing, "payloadType")
	default:
		missing = append(missing, "payloadType (unknown value)")
	}

	if len(missing) > 0 {
		return &ValidationError{Missing: missing}
	}
	return nil
}

// ExpiresAt returns the expiry time, or the zero time when the envelope
// carries none.
func (e *EncryptedEnvelope) ExpiresAt() time.Time {
	if e.Expiry == 0 {
		return time.Time{}
	}
	return time.UnixMilli(e.Expiry)
}

// IsExpired reports whether the envelope's expiry has passed at the given
// time. Envelopes without an expiry never expire.
func (e *EncryptedEnvelope) IsExpired(now time.Time) bool {
	return e.Expiry != 0 && now.After(e.ExpiresAt())
}
