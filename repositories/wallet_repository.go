package repositories

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/khelarena/khelarena_backend/config"
	"github.com/khelarena/khelarena_backend/models"
)

// WalletRepository persists wallets keyed by canonical phone. Balance
// changes go through conditional atomic updates so the non-negative
// invariant holds without reading first.
type WalletRepository struct {
	collection *mongo.Collection
}

// NewWalletRepository creates a wallet repository
func NewWalletRepository(db *mongo.Client) *WalletRepository {
	return &WalletRepository{
		collection: config.GetCollection(db, "wallets"),
	}
}

// Credit adds amount to the phone's wallet, creating it if absent, and
// returns the new balance.
func (r *WalletRepository) Credit(ctx context.Context, phone string, amount int64) (int64, error) {
	now := time.Now()
	update := bson.M{
		"$inc": bson.M{"balance": amount},
		"$set": bson.M{"updatedAt": now},
		"$setOnInsert": bson.M{
			"phone":     phone,
			"createdAt": now,
		},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	var wallet models.Wallet
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"phone": phone}, update, opts).Decode(&wallet)
	if err != nil {
		return 0, err
	}
	return wallet.Balance, nil
}

// CreditExisting adds amount to an existing wallet only, returning
// ErrNotFound when the phone has no wallet.
func (r *WalletRepository) CreditExisting(ctx context.Context, phone string, amount int64) (int64, error) {
	update := bson.M{
		"$inc": bson.M{"balance": amount},
		"$set": bson.M{"updatedAt": time.Now()},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var wallet models.Wallet
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"phone": phone}, update, opts).Decode(&wallet)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, err
	}
	return wallet.Balance, nil
}

// Debit subtracts amount when the balance covers it. The filter carries
// the invariant: a wallet is matched only when balance >= amount, so the
// update is atomic and a short wallet is rejected with
// ErrInsufficientBalance and no mutation.
func (r *WalletRepository) Debit(ctx context.Context, phone string, amount int64) (int64, error) {
	filter := bson.M{
		"phone":   phone,
		"balance": bson.M{"$gte": amount},
	}
	update := bson.M{
		"$inc": bson.M{"balance": -amount},
		"$set": bson.M{"updatedAt": time.Now()},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var wallet models.Wallet
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&wallet)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return 0, ErrInsufficientBalance
	}
	if err != nil {
		return 0, err
	}
	return wallet.Balance, nil
}

// Balance reads the phone's balance; an absent wallet reads as zero
func (r *WalletRepository) Balance(ctx context.Context, phone string) (int64, error) {
	var wallet models.Wallet
	err := r.collection.FindOne(ctx, bson.M{"phone": phone}).Decode(&wallet)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return wallet.Balance, nil
}
