package service

import (
	"context"

	"github.com/nexapay/nexapay-backend/internal/app/model"
	"github.com/nexapay/nexapay-backend/pkg/logger"
)

// External collaborator contracts. The webhook processor drives these as
// side effects; their failures are logged per side effect and never fail a
// status transition that already committed.

// Mailer dispatches outbound mail, fire-and-forget.
type Mailer interface {
	Send(to, subject, body string) error
}

// PointsService credits rewards, idempotent by source reference.
type PointsService interface {
	CreditVerificationBonus(userID uint, sourceRef string) error
}

// AccountProvisioner creates downstream blockchain accounts.
type AccountProvisioner interface {
	CreateBlockchainAccount(ctx context.Context, userID uint) error
}

// DepositMonitor continues, fails or holds a monitored deposit by the
// vendor's transaction id.
type DepositMonitor interface {
	ContinueDeposit(ctx context.Context, txnID string) error
	FailDeposit(ctx context.Context, txnID string) error
	HoldDeposit(ctx context.Context, txnID string) error
}

// WalletProvisioner creates currency wallets, idempotent per (user, currency).
type WalletProvisioner interface {
	ProvisionDefaultWallets(userID uint) error
}

// Notifier records user-facing verification outcome notifications.
type Notifier interface {
	NotifyApproved(user *model.User) error
	NotifyRejected(user *model.User, reasons []string) error
	NotifyResubmission(user *model.User, reasons, corrections []string) error
}

// Logging no-op implementations used until the real collaborators are wired.

type LogMailer struct{}

func (LogMailer) Send(to, subject, body string) error {
	logger.Info("Mail dispatch (noop)", map[string]interface{}{
		"to":      to,
		"subject": subject,
	})
	return nil
}

type LogPointsService struct{}

func (LogPointsService) CreditVerificationBonus(userID uint, sourceRef string) error {
	logger.Info("Points credit (noop)", map[string]interface{}{
		"user_id":    userID,
		"source_ref": sourceRef,
	})
	return nil
}

type LogAccountProvisioner struct{}

func (LogAccountProvisioner) CreateBlockchainAccount(ctx context.Context, userID uint) error {
	logger.Info("Blockchain account creation (noop)", map[string]interface{}{
		"user_id": userID,
	})
	return nil
}

type LogDepositMonitor struct{}

func (LogDepositMonitor) ContinueDeposit(ctx context.Context, txnID string) error {
	logger.Info("Deposit continuation (noop)", map[string]interface{}{"txn_id": txnID})
	return nil
}

func (LogDepositMonitor) FailDeposit(ctx context.Context, txnID string) error {
	logger.Info("Deposit failure (noop)", map[string]interface{}{"txn_id": txnID})
	return nil
}

func (LogDepositMonitor) HoldDeposit(ctx context.Context, txnID string) error {
	logger.Info("Deposit hold (noop)", map[string]interface{}{"txn_id": txnID})
	return nil
}
