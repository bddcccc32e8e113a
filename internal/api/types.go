package api

// RegisterDeviceRequest is the POST /device/register request body.
type RegisterDeviceRequest struct {
	ConsumerID      string `json:"consumerId"`
	DeviceID        string `json:"deviceId"`
	DevicePublicKey string `json:"devicePublicKey"`
}

// RegisterDeviceResponse is the POST /device/register response body.
// Re-registering the same device updates the stored key rather than
// duplicating it, so Success is true on repeat announcements.
type RegisterDeviceResponse struct {
	Success bool `json:"success"`
}

// StatementRequest is the request body for the statement fetch endpoints.
type StatementRequest struct {
	StatementID string `json:"statementId"`
	ConsumerID  string `json:"consumerId"`
	DeviceID    string `json:"deviceId"`
	Category    string `json:"category,omitempty"`
}

// EnvelopeResponse is the statement fetch response: exactly an encrypted
// envelope. All binary fields are base64.
type EnvelopeResponse struct {
	EncryptedPayload string `json:"encryptedPayload"`
	WrappedDek       string `json:"wrappedDek"`
	IV               string `json:"iv"`
	SenderPublicKey  string `json:"senderPublicKey"`
	// Expiry is epoch milliseconds; zero means no expiry.
	Expiry int64 `json:"expiry,omitempty"`
}
