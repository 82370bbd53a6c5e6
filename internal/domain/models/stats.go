package models

import "time"

// Stats is the read-side summary for one owner at one point in time.
type Stats struct {
	TotalProfit      float64 `bson:"totalProfit" json:"totalProfit"`
	ProfitableDeals  int     `bson:"profitableDeals" json:"profitableDeals"`
	LossDeals        int     `bson:"lossDeals" json:"lossDeals"`
	NearExpiryItems  int     `bson:"nearExpiryItems" json:"nearExpiryItems"`
	ExpiredItems     int     `bson:"expiredItems" json:"expiredItems"`
	TotalPendingDues float64 `bson:"totalPendingDues" json:"totalPendingDues"`
	OverdueDues      int     `bson:"overdueDues" json:"overdueDues"`
}

// StatsSnapshot is a Stats record persisted by the daily reporting job.
type StatsSnapshot struct {
	UserID    string    `bson:"userId" json:"userId"`
	Date      time.Time `bson:"date" json:"date"`
	Stats     Stats     `bson:"stats" json:"stats"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}
