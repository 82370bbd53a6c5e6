package models

import "time"

// DueStatus marks whether an outstanding balance is still open.
type DueStatus string

const (
	DuePending DueStatus = "pending"
	DuePaid    DueStatus = "paid"
)

// Due is an outstanding customer balance, created either manually or by the sale
// processor when a sale is not fully paid. RemainingAmount is nil on documents written
// before partial payments existed; Remaining falls back to Amount for those.
type Due struct {
	ID              string     `bson:"_id,omitempty" json:"id"`
	UserID          string     `bson:"userId" json:"userId"`
	TransactionID   string     `bson:"transactionId,omitempty" json:"transactionId,omitempty"`
	CustomerName    string     `bson:"customerName" json:"customerName"`
	CustomerEmail   string     `bson:"customerEmail,omitempty" json:"customerEmail,omitempty"`
	Description     string     `bson:"description,omitempty" json:"description,omitempty"`
	Amount          float64    `bson:"amount" json:"amount"`
	RemainingAmount *float64   `bson:"remainingAmount,omitempty" json:"remainingAmount,omitempty"`
	Status          DueStatus  `bson:"status" json:"status"`
	DueDate         time.Time  `bson:"dueDate" json:"dueDate"`
	CreatedAt       time.Time  `bson:"createdAt" json:"createdAt"`
	PaidAt          *time.Time `bson:"paidAt,omitempty" json:"paidAt,omitempty"`
	LastPayment     float64    `bson:"lastPayment,omitempty" json:"lastPayment,omitempty"`
	LastPaymentDate *time.Time `bson:"lastPaymentDate,omitempty" json:"lastPaymentDate,omitempty"`
}

// Remaining returns the open balance of the due.
func (d Due) Remaining() float64 {
	if d.RemainingAmount != nil {
		return *d.RemainingAmount
	}
	return d.Amount
}

// CustomerKey returns the grouping key for this due's customer.
func (d Due) CustomerKey() string {
	return CustomerKey(d.CustomerName, d.CustomerEmail)
}

// DueUpdate is a partial-field update against a due document. Nil fields are left
// untouched by the store.
type DueUpdate struct {
	Status          *DueStatus
	RemainingAmount *float64
	PaidAt          *time.Time
	LastPayment     *float64
	LastPaymentDate *time.Time
}
