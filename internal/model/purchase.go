package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Purchase records a confirmed on-chain payment credited as likes.
type Purchase struct {
	TxRef      string          `json:"txRef"`
	AccountID  string          `json:"accountId"`
	LikeAmount decimal.Decimal `json:"likeAmount"`
	CreatedAt  time.Time       `json:"createdAt"`
}

// Bundle is a purchasable package of likes. AmountBaseUnits is the price in
// the token's smallest unit, as sent to the token contract.
type Bundle struct {
	Likes           int    `json:"likes"`
	USDCPrice       string `json:"usdcPrice"`
	AmountBaseUnits string `json:"amountBaseUnits"`
	TokenContract   string `json:"tokenContract"`
	ChainID         int    `json:"chainId"`
}

// PurchaseRequest is the API request body for confirming a purchase.
type PurchaseRequest struct {
	TxRef      string `json:"txRef"`
	LikeAmount int    `json:"likeAmount"`
}

// PurchaseResult is returned from a confirmation. Duplicate is set when the
// reference had already been credited to the same account.
type PurchaseResult struct {
	LikeBalance decimal.Decimal `json:"likeBalance"`
	Duplicate   bool            `json:"duplicate"`
}

// PurchaseEvent is the confirmed-transfer event emitted by the payment layer.
type PurchaseEvent struct {
	PayerAccountID string `json:"payerAccountId"`
	Amount         int    `json:"amount"`
	TxRef          string `json:"txRef"`
}
