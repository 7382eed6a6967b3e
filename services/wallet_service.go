// services/wallet_service.go
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/khelarena/khelarena_backend/repositories"
	"github.com/khelarena/khelarena_backend/utils"
)

// WalletRepo is the persistence contract for wallets. Credit upserts;
// Debit is conditional on balance >= amount and returns
// repositories.ErrInsufficientBalance when nothing matched; CreditExisting
// refuses to create a wallet and returns repositories.ErrNotFound.
type WalletRepo interface {
	Credit(ctx context.Context, phone string, amount int64) (int64, error)
	CreditExisting(ctx context.Context, phone string, amount int64) (int64, error)
	Debit(ctx context.Context, phone string, amount int64) (int64, error)
	Balance(ctx context.Context, phone string) (int64, error)
}

// WalletService is the sole mutator of wallet balances
type WalletService struct {
	wallets WalletRepo
}

// NewWalletService creates a wallet service over the given repository
func NewWalletService(wallets WalletRepo) *WalletService {
	return &WalletService{wallets: wallets}
}

// Credit adds amount to the phone's wallet, creating it at zero first if
// absent. Amount must be positive.
func (s *WalletService) Credit(ctx context.Context, phone string, amount int64) (int64, error) {
	phone, err := utils.SanitizePhone(phone)
	if err != nil {
		return 0, ErrInvalidPhone()
	}
	if amount <= 0 {
		return 0, fmt.Errorf("credit amount must be positive, got %d", amount)
	}
	return s.wallets.Credit(ctx, phone, amount)
}

// AddPrize credits prize money to an existing wallet only
func (s *WalletService) AddPrize(ctx context.Context, phone string, prize int64) (int64, error) {
	phone, err := utils.SanitizePhone(phone)
	if err != nil {
		return 0, ErrInvalidPhone()
	}
	if prize <= 0 {
		return 0, fmt.Errorf("prize amount must be positive, got %d", prize)
	}
	balance, err := s.wallets.CreditExisting(ctx, phone, prize)
	if errors.Is(err, repositories.ErrNotFound) {
		return 0, ErrWalletNotFound()
	}
	return balance, err
}

// Debit subtracts amount from the phone's wallet. The repository applies
// the amount only when the balance covers it, so a rejected debit leaves
// the balance untouched and no negative balance ever persists.
func (s *WalletService) Debit(ctx context.Context, phone string, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, fmt.Errorf("debit amount must be positive, got %d", amount)
	}
	balance, err := s.wallets.Debit(ctx, phone, amount)
	if errors.Is(err, repositories.ErrInsufficientBalance) {
		return 0, ErrInsufficientBalance()
	}
	return balance, err
}

// Balance reads the phone's balance; an absent wallet reads as zero
func (s *WalletService) Balance(ctx context.Context, phone string) (int64, error) {
	phone, err := utils.SanitizePhone(phone)
	if err != nil {
		return 0, ErrInvalidPhone()
	}
	return s.wallets.Balance(ctx, phone)
}
