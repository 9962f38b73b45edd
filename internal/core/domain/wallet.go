package domain

import "time"

type WalletTransaction struct {
	Label     string    `json:"label" bson:"label"`
	To        string    `json:"to" bson:"to"`
	Amount    float64   `json:"amount" bson:"amount"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}

// Wallet is the merchant balance view.
type Wallet struct {
	MerchantID   string              `json:"merchantId" bson:"_id"`
	Balance      float64             `json:"balance" bson:"balance"`
	Currency     string              `json:"currency" bson:"currency"`
	Verified     bool                `json:"verified" bson:"verified"`
	Transactions []WalletTransaction `json:"transactions" bson:"transactions"`
}
