package statementvault

import (
	"encoding/json"
	"fmt"
)

// BillStatement is the default statement variant. Card statements use the
// same shape with the nested transaction list populated.
type BillStatement struct {
	StatementID    string            `json:"statementId"`
	AmountDue      string            `json:"amountDue"`
	DueDate        string            `json:"dueDate,omitempty"`
	BillDate       string            `json:"billDate,omitempty"`
	BillMonth      string            `json:"billMonth,omitempty"`
	ConsumerName   string            `json:"consumerName,omitempty"`
	ConsumerNumber string            `json:"consumerNumber,omitempty"`
	BillerName     string            `json:"billerName,omitempty"`
	Category       string            `json:"category,omitempty"`
	Consumption    *ConsumptionStats `json:"consumption,omitempty"`
	Transactions   []Transaction     `json:"transactions,omitempty"`
}

// ConsumptionStats carries usage figures for metered bills.
type ConsumptionStats struct {
	UnitsConsumed   string `json:"unitsConsumed,omitempty"`
	PreviousReading string `json:"previousReading,omitempty"`
	CurrentReading  string `json:"currentReading,omitempty"`
}

// Transaction is a single card-statement line item.
type Transaction struct {
	Date        string `json:"date"`
	Description string `json:"description,omitempty"`
	Amount      string `json:"amount"`
	Type        string `json:"type,omitempty"` // DEBIT or CREDIT
}

// PaymentHistory is the payment-history statement variant. Payments keep
// the order in which the backend emitted them.
type PaymentHistory struct {
	ConsumerNumber string        `json:"consumerNumber,omitempty"`
	BillerName     string        `json:"billerName,omitempty"`
	Payments       []PaymentItem `json:"payments"`
}

// PaymentItem is a single payment record.
type PaymentItem struct {
	Amount        string `json:"amount"`
	Date          string `json:"date"`
	Mode          string `json:"mode,omitempty"`
	Status        string `json:"status,omitempty"`
	ReceiptNumber string `json:"receiptNumber,omitempty"`
}

// Statement is a decrypted statement: exactly one variant is set,
// selected by Type. Produced once per successful decryption and owned by
// the caller for the remainder of the render cycle.
type Statement struct {
	Type    PayloadType
	Bill    *BillStatement
	History *PaymentHistory
}

// parseStatement maps decrypted plaintext to the variant named by the
// envelope's payload type.
func parseStatement(plaintext []byte, payloadType PayloadType) (*Statement, error) {
	switch payloadType {
	case PayloadTypePaymentHistory:
		var history PaymentHistory
		if err := json.Unmarshal(plaintext, &history); err != nil {
			return nil, &DecryptionError{Stage: StageParse, Err: err}
		}
		if history.Payments == nil {
			return nil, &DecryptionError{Stage: StageParse,
				Err: fmt.Errorf("payment history has no payments list")}
		}
		return &Statement{Type: PayloadTypePaymentHistory, History: &history}, nil

	default:
		var bill BillStatement
		if err := json.Unmarshal(plaintext, &bill); err != nil {
			return nil, &DecryptionError{Stage: StageParse, Err: err}
		}
		if bill.StatementID == "" {
			return nil, &DecryptionError{Stage: StageParse,
				Err: fmt.Errorf("bill statement has no statementId")}
		}
		return &Statement{Type: PayloadTypeBillStatement, Bill: &bill}, nil
	}
}

// fieldValue is a named sensitive field extracted for presentation.
type fieldValue struct {
	name  string
	value string
}

// sensitiveFields enumerates every field classified as sensitive: monetary
// amounts, identifiers, names, dates, and statuses. Empty fields are
// skipped; there is nothing to shadow.
func (s *Statement) sensitiveFields() []fieldValue {
	var fields []fieldValue
	add := func(name, value string) {
		if value != "" {
			fields = append(fields, fieldValue{name: name, value: value})
		}
	}

	if s.Bill != nil {
		b := s.Bill
		add("statementId", b.StatementID)
		add("amountDue", b.AmountDue)
		add("dueDate", b.DueDate)
		add("billDate", b.BillDate)
		add("billMonth", b.BillMonth)
		add("consumerName", b.ConsumerName)
		add("consumerNumber", b.ConsumerNumber)
		add("billerName", b.BillerName)
		if b.Consumption != nil {
			add("consumption.unitsConsumed", b.Consumption.UnitsConsumed)
			add("consumption.previousReading", b.Consumption.PreviousReading)
			add("consumption.currentReading", b.Consumption.CurrentReading)
		}
		for i, tx := range b.Transactions {
			add(fmt.Sprintf("transactions[%d].date", i), tx.Date)
			add(fmt.Sprintf("transactions[%d].description", i), tx.Description)
			add(fmt.Sprintf("transactions[%d].amount", i), tx.Amount)
		}
	}

	if s.History != nil {
		h := s.History
		add("consumerNumber", h.ConsumerNumber)
		add("billerName", h.BillerName)
		for i, p := range h.Payments {
			add(fmt.Sprintf("payments[%d].amount", i), p.Amount)
			add(fmt.Sprintf("payments[%d].date", i), p.Date)
			add(fmt.Sprintf("payments[%d].status", i), p.Status)
			add(fmt.Sprintf("payments[%d].receiptNumber", i), p.ReceiptNumber)
		}
	}

	return fields
}
