package api

import (
	"context"
	"net/http"
)

// RegisterDevice announces the device public key to the backend. The
// backend upserts, so the call is idempotent. Exactly one request is sent;
// the registration handshake drives its own attempt loop.
func (c *Client) RegisterDevice(ctx context.Context, req *RegisterDeviceRequest) (*RegisterDeviceResponse, error) {
	var result RegisterDeviceResponse
	if err := c.DoOnce(ctx, http.MethodPost, "/device/register", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// FetchBillStatement requests an encrypted bill statement envelope for
// this device.
func (c *Client) FetchBillStatement(ctx context.Context, req *StatementRequest) (*EnvelopeResponse, error) {
	var result EnvelopeResponse
	if err := c.Do(ctx, http.MethodPost, "/bill-statement/encrypt", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// FetchPaymentHistory requests an encrypted payment history envelope for
// this device.
func (c *Client) FetchPaymentHistory(ctx context.Context, req *StatementRequest) (*EnvelopeResponse, error) {
	var result EnvelopeResponse
	if err := c.Do(ctx, http.MethodPost, "/payment-history/encrypt", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
