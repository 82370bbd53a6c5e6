package models

import "strings"

// UnknownCustomer is the grouping key for dues with no usable customer identity.
const UnknownCustomer = "Unknown"

// CustomerKey derives the stable key used to group and settle a customer's dues:
// email when present, else name, else UnknownCustomer. Email is lowercased so the
// same address entered with different casing joins to one customer.
func CustomerKey(name, email string) string {
	if e := strings.TrimSpace(email); e != "" {
		return strings.ToLower(e)
	}
	if n := strings.TrimSpace(name); n != "" {
		return n
	}
	return UnknownCustomer
}
