package domain

import "time"

// PaymentStatus of the registration fee
type PaymentStatus string

const (
	PaymentUnpaid PaymentStatus = "unpaid"
	// PaymentPending is part of the stored shape but no operation enters it
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
)

// PaymentInfo is the fee state embedded in a UserRecord.
// Status is paid exactly when PaidDate and TransactionID are both set.
type PaymentInfo struct {
	Status        PaymentStatus `json:"status"`
	Amount        float64       `json:"amount"`
	Currency      string        `json:"currency"`
	DueDate       time.Time     `json:"dueDate"`
	PaidDate      *time.Time    `json:"paidDate,omitempty"`
	TransactionID string        `json:"transactionId,omitempty"`
	InvoiceURL    string        `json:"invoiceUrl,omitempty"`
}

// IsPaid reports whether the fee has been settled
func (p *PaymentInfo) IsPaid() bool {
	return p != nil && p.Status == PaymentPaid && p.PaidDate != nil && p.TransactionID != ""
}

// ChargeRequest is sent to a payment provider
type ChargeRequest struct {
	ParticipantID string
	Email         string
	Amount        float64
	Currency      string
}

// PaymentReceipt is returned by a successful charge
type PaymentReceipt struct {
	TransactionID string
	PaidAt        time.Time
	InvoiceURL    string
}
