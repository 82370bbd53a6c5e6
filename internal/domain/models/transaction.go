package models

import "time"

// PaymentStatus marks whether a sale was settled in full at transaction time.
type PaymentStatus string

const (
	PaymentPaid    PaymentStatus = "paid"
	PaymentPartial PaymentStatus = "partial"
)

// TransactionItem is one line of a multi-item sale, with its derived profit.
type TransactionItem struct {
	ItemName     string  `bson:"itemName" json:"itemName"`
	CostPrice    float64 `bson:"costPrice" json:"costPrice"`
	SellingPrice float64 `bson:"sellingPrice" json:"sellingPrice"`
	Quantity     int     `bson:"quantity" json:"quantity"`
	Profit       float64 `bson:"profit" json:"profit"`
}

// Transaction is an immutable sale (or loss) record. Single-item sales fill the
// top-level item fields; multi-item sales carry Items and the top-level fields hold
// the aggregates. Profit is always the transaction total.
type Transaction struct {
	ID              string            `bson:"_id,omitempty" json:"id"`
	UserID          string            `bson:"userId" json:"userId"`
	RequestID       string            `bson:"requestId,omitempty" json:"requestId,omitempty"`
	ItemName        string            `bson:"itemName,omitempty" json:"itemName,omitempty"`
	Items           []TransactionItem `bson:"items,omitempty" json:"items,omitempty"`
	CostPrice       float64           `bson:"costPrice" json:"costPrice"`
	SellingPrice    float64           `bson:"sellingPrice" json:"sellingPrice"`
	Quantity        int               `bson:"quantity" json:"quantity"`
	Profit          float64           `bson:"profit" json:"profit"`
	TotalAmount     float64           `bson:"totalAmount" json:"totalAmount"`
	AmountPaid      float64           `bson:"amountPaid" json:"amountPaid"`
	DueAmount       float64           `bson:"dueAmount" json:"dueAmount"`
	PaymentStatus   PaymentStatus     `bson:"paymentStatus" json:"paymentStatus"`
	TransactionDate time.Time         `bson:"transactionDate" json:"transactionDate"`
	ExpiryDate      *time.Time        `bson:"expiryDate,omitempty" json:"expiryDate,omitempty"`
	Reason          string            `bson:"reason,omitempty" json:"reason,omitempty"`
	CustomerName    string            `bson:"customerName,omitempty" json:"customerName,omitempty"`
	CustomerEmail   string            `bson:"customerEmail,omitempty" json:"customerEmail,omitempty"`
	CreatedAt       time.Time         `bson:"createdAt" json:"createdAt"`
}

// SaleLine is one requested line of a sale before resolution against stock.
type SaleLine struct {
	ItemName     string  `json:"itemName" binding:"required"`
	Quantity     int     `json:"quantity" binding:"required"`
	SellingPrice float64 `json:"sellingPrice"`
}

// SaleRequest is the full input of the sale processor. RequestID lets a client retry
// an ambiguous failure without double-booking the sale.
type SaleRequest struct {
	RequestID     string     `json:"requestId"`
	CustomerName  string     `json:"customerName"`
	CustomerEmail string     `json:"customerEmail"`
	Lines         []SaleLine `json:"lines" binding:"required"`
	AmountPaid    float64    `json:"amountPaid"`
	DueDate       *time.Time `json:"dueDate,omitempty"`
}

// SaleResult reports everything a sale changed, so callers can update their own view
// of the ledgers without re-querying the store.
type SaleResult struct {
	Transaction Transaction `json:"transaction"`
	Due         *Due        `json:"due,omitempty"`
	Stock       []StockItem `json:"stock"`
	Replayed    bool        `json:"replayed,omitempty"`
}
