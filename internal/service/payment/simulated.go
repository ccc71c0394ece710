package payment

import (
	"context"
	"crypto/rand"
	"fmt"
	"time"

	"loc-portal/internal/domain"
	"loc-portal/internal/service"
	"loc-portal/pkg/errors"
	"loc-portal/pkg/logger"
)

const transactionAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// SimulatedProvider approves every charge after a fixed processing delay
type SimulatedProvider struct {
	latency time.Duration
	logger  *logger.Logger
	now     func() time.Time
}

func NewSimulatedProvider(latency time.Duration, logger *logger.Logger) service.PaymentProvider {
	return &SimulatedProvider{latency: latency, logger: logger, now: time.Now}
}

// Charge waits out the processing delay, honoring cancellation
func (p *SimulatedProvider) Charge(ctx context.Context, req domain.ChargeRequest) (*domain.PaymentReceipt, error) {
	if req.Amount <= 0 || req.Currency == "" {
		return nil, errors.NewValidationError("Invalid charge amount", map[string]interface{}{
			"amount":   req.Amount,
			"currency": req.Currency,
		})
	}

	if p.latency > 0 {
		timer := time.NewTimer(p.latency)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	txn, err := NewTransactionID()
	if err != nil {
		return nil, errors.NewInternalError("Failed to generate transaction id", err)
	}

	p.logger.WithFields(map[string]interface{}{
		"participant_id": req.ParticipantID,
		"transaction_id": txn,
		"amount":         req.Amount,
		"currency":       req.Currency,
	}).Info("Simulated charge approved")

	return &domain.PaymentReceipt{
		TransactionID: txn,
		PaidAt:        p.now(),
		InvoiceURL:    "/api/dashboard/payment/invoice/" + txn,
	}, nil
}

// NewTransactionID returns TXN- followed by 8 characters from [A-Z0-9]
func NewTransactionID() (string, error) {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	for i, b := range buf {
		buf[i] = transactionAlphabet[int(b)%len(transactionAlphabet)]
	}
	return "TXN-" + string(buf), nil
}
