package services

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khelarena/khelarena_backend/repositories"
)

// memWalletRepo is an in-memory WalletRepo with the same conditional
// semantics as the Mongo implementation.
type memWalletRepo struct {
	mu       sync.Mutex
	balances map[string]int64
	debitErr error
}

func newMemWalletRepo() *memWalletRepo {
	return &memWalletRepo{balances: make(map[string]int64)}
}

func (r *memWalletRepo) Credit(ctx context.Context, phone string, amount int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.balances[phone] += amount
	return r.balances[phone], nil
}

func (r *memWalletRepo) CreditExisting(ctx context.Context, phone string, amount int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.balances[phone]; !ok {
		return 0, repositories.ErrNotFound
	}
	r.balances[phone] += amount
	return r.balances[phone], nil
}

func (r *memWalletRepo) Debit(ctx context.Context, phone string, amount int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.debitErr != nil {
		return 0, r.debitErr
	}
	if r.balances[phone] < amount {
		return 0, repositories.ErrInsufficientBalance
	}
	r.balances[phone] -= amount
	return r.balances[phone], nil
}

func (r *memWalletRepo) Balance(ctx context.Context, phone string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.balances[phone], nil
}

func TestWalletCreditAndBalance(t *testing.T) {
	svc := NewWalletService(newMemWalletRepo())
	ctx := context.Background()

	balance, err := svc.Credit(ctx, "9876543210", 500)
	require.NoError(t, err)
	assert.Equal(t, int64(500), balance)

	balance, err = svc.Credit(ctx, "9876543210", 250)
	require.NoError(t, err)
	assert.Equal(t, int64(750), balance)

	balance, err = svc.Balance(ctx, "9123456789")
	require.NoError(t, err)
	assert.Equal(t, int64(0), balance, "absent wallet reads as zero")
}

func TestWalletCreditRejectsNonPositive(t *testing.T) {
	svc := NewWalletService(newMemWalletRepo())

	_, err := svc.Credit(context.Background(), "9876543210", 0)
	assert.Error(t, err)
	_, err = svc.Credit(context.Background(), "9876543210", -100)
	assert.Error(t, err)
}

func TestWalletDebit(t *testing.T) {
	repo := newMemWalletRepo()
	svc := NewWalletService(repo)
	ctx := context.Background()

	_, err := svc.Credit(ctx, "9876543210", 500)
	require.NoError(t, err)

	balance, err := svc.Debit(ctx, "9876543210", 200)
	require.NoError(t, err)
	assert.Equal(t, int64(300), balance)

	// Overdraft is rejected and the balance is untouched
	_, err = svc.Debit(ctx, "9876543210", 301)
	assert.Equal(t, CodeInsufficientBalance, appCode(t, err))

	balance, err = svc.Balance(ctx, "9876543210")
	require.NoError(t, err)
	assert.Equal(t, int64(300), balance)

	// Exact balance debits to zero
	balance, err = svc.Debit(ctx, "9876543210", 300)
	require.NoError(t, err)
	assert.Equal(t, int64(0), balance)
}

func TestWalletAddPrize(t *testing.T) {
	repo := newMemWalletRepo()
	svc := NewWalletService(repo)
	ctx := context.Background()

	// Prize to a phone with no wallet is refused, never auto-created
	_, err := svc.AddPrize(ctx, "9876543210", 1000)
	assert.Equal(t, CodeWalletNotFound, appCode(t, err))

	_, err = svc.Credit(ctx, "9876543210", 100)
	require.NoError(t, err)

	balance, err := svc.AddPrize(ctx, "9876543210", 1000)
	require.NoError(t, err)
	assert.Equal(t, int64(1100), balance)
}

func TestWalletInvalidPhone(t *testing.T) {
	svc := NewWalletService(newMemWalletRepo())

	_, err := svc.Credit(context.Background(), "12345", 100)
	assert.Equal(t, CodeInvalidPhone, appCode(t, err))

	_, err = svc.Balance(context.Background(), "abc")
	assert.Equal(t, CodeInvalidPhone, appCode(t, err))
}
