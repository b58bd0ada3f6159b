package service

import (
	"github.com/nexapay/nexapay-backend/internal/app/model"
	"github.com/nexapay/nexapay-backend/internal/app/repository"
	"github.com/nexapay/nexapay-backend/pkg/logger"
)

// defaultCurrencies are the wallets opened for every newly verified user.
var defaultCurrencies = []string{"NGN", "USDC"}

// WalletService provisions and lists user wallets.
type WalletService interface {
	WalletProvisioner

	ListWallets(userID uint) ([]model.Wallet, error)
}

type walletService struct {
	walletRepo repository.WalletRepository
}

func NewWalletService(walletRepo repository.WalletRepository) WalletService {
	return &walletService{walletRepo: walletRepo}
}

// ProvisionDefaultWallets opens the default currency wallets. Idempotent:
// re-running after a partial failure only creates what is missing.
func (s *walletService) ProvisionDefaultWallets(userID uint) error {
	for _, currency := range defaultCurrencies {
		if _, err := s.walletRepo.EnsureWallet(userID, currency); err != nil {
			return err
		}
	}
	logger.Info("Provisioned default wallets", map[string]interface{}{
		"user_id":    userID,
		"currencies": defaultCurrencies,
	})
	return nil
}

func (s *walletService) ListWallets(userID uint) ([]model.Wallet, error) {
	return s.walletRepo.FindByUser(userID)
}
