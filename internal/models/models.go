package models

import (
	"time"
)

// BalanceSnapshot records the account balance at one tracker run.
type BalanceSnapshot struct {
	ID      uint      `json:"id" gorm:"primaryKey"`
	RunID   string    `json:"run_id" gorm:"uniqueIndex;not null"`
	Balance int64     `json:"balance"` // cents
	TakenAt time.Time `json:"taken_at" gorm:"index"`
}

// OrderSnapshot records one of the account's open buy orders at one
// tracker run. OrderCreatedAt is kept as CSFloat sends it (ISO 8601).
type OrderSnapshot struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	RunID          string    `json:"run_id" gorm:"index;not null"`
	OrderID        string    `json:"order_id" gorm:"not null"`
	MarketHashName string    `json:"market_hash_name" gorm:"not null"`
	Quantity       int       `json:"quantity"`
	Price          int64     `json:"price"` // cents
	OrderCreatedAt string    `json:"order_created_at"`
	TakenAt        time.Time `json:"taken_at"`
}
