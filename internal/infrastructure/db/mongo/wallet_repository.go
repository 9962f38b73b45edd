package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/lalaba/merchant-app/internal/core/domain"
)

const collectionWallets = "wallets"

type WalletRepository struct {
	col *mongo.Collection
}

func NewWalletRepository(db *mongo.Database) *WalletRepository {
	return &WalletRepository{col: db.Collection(collectionWallets)}
}

// Find returns nil, nil when the merchant has no wallet.
func (r *WalletRepository) Find(ctx context.Context, merchantID string) (*domain.Wallet, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var w domain.Wallet
	if err := r.col.FindOne(ctx, bson.M{"_id": merchantID}).Decode(&w); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("find wallet: %w", err)
	}
	return &w, nil
}
