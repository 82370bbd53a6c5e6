package models

import "errors"

// ErrInsufficientStock indicates a sale line asked for more units than the item holds.
var ErrInsufficientStock = errors.New("insufficient stock")

// ErrOverpayment indicates the amount paid exceeds the sale total.
var ErrOverpayment = errors.New("amount paid exceeds total amount")

// ErrInvalidPaymentAmount indicates a payment that is non-positive or larger than the
// remaining balance it is applied against.
var ErrInvalidPaymentAmount = errors.New("invalid payment amount")

// ErrInvalidQuantity indicates a quantity adjustment below zero.
var ErrInvalidQuantity = errors.New("invalid quantity")

// ErrNotFound indicates the referenced item or due does not exist for this owner.
var ErrNotFound = errors.New("not found")

// ErrPersistence indicates the document store call itself failed.
var ErrPersistence = errors.New("persistence failure")
