package models

import "time"

// ExpiryStatus classifies how close a stock item is to its expiry date.
type ExpiryStatus string

const (
	ExpiryGood    ExpiryStatus = "good"
	ExpiryNear    ExpiryStatus = "nearExpiry"
	ExpiryExpired ExpiryStatus = "expired"
)

// NearExpiryWindow is how far ahead of now an item counts as near expiry.
const NearExpiryWindow = 7 * 24 * time.Hour

// StockItem is one inventory position: quantity on hand and its cost basis.
type StockItem struct {
	ID         string     `bson:"_id,omitempty" json:"id"`
	UserID     string     `bson:"userId" json:"userId"`
	ItemName   string     `bson:"itemName" json:"itemName"`
	CostPrice  float64    `bson:"costPrice" json:"costPrice"`
	Quantity   int        `bson:"quantity" json:"quantity"`
	ExpiryDate *time.Time `bson:"expiryDate,omitempty" json:"expiryDate,omitempty"`
	CreatedAt  time.Time  `bson:"createdAt" json:"createdAt"`
}

// ClassifyExpiry returns the expiry status of an item relative to now. Items without
// an expiry date are always good.
func ClassifyExpiry(item StockItem, now time.Time) ExpiryStatus {
	return classifyExpiryDate(item.ExpiryDate, now)
}

func classifyExpiryDate(expiry *time.Time, now time.Time) ExpiryStatus {
	if expiry == nil {
		return ExpiryGood
	}
	if expiry.Before(now) {
		return ExpiryExpired
	}
	if !expiry.After(now.Add(NearExpiryWindow)) {
		return ExpiryNear
	}
	return ExpiryGood
}
