package main

import (
	"fmt"
	"strings"
)

var (
	validOrderTypes = map[string]bool{
		"MARKET": true, "LIMIT": true, "SL": true, "SL-M": true,
	}
	validTransactionTypes = map[string]bool{"BUY": true, "SELL": true}
	validProducts         = map[string]bool{"I": true, "D": true}
	validValidities       = map[string]bool{"DAY": true, "IOC": true}
	validSegments         = map[string]bool{
		"NSE_EQ": true, "BSE_EQ": true, "NSE_FO": true,
	}
)

// Validator checks order and quote requests the way the real broker
// would, so client-side bugs surface in development.
type Validator struct{}

func NewValidator() *Validator {
	return &Validator{}
}

// ValidateOrder enforces the broker's order constraints.
func (v *Validator) ValidateOrder(o *orderRecord) error {
	if o.InstrumentToken == "" {
		return fmt.Errorf("instrument_token is required")
	}
	if o.Quantity <= 0 {
		return fmt.Errorf("quantity must be positive, got %d", o.Quantity)
	}
	if !validOrderTypes[o.OrderType] {
		return fmt.Errorf("invalid order_type %q", o.OrderType)
	}
	if !validTransactionTypes[o.TransactionType] {
		return fmt.Errorf("invalid transaction_type %q", o.TransactionType)
	}
	if !validProducts[o.Product] {
		return fmt.Errorf("invalid product %q", o.Product)
	}
	if o.Validity != "" && !validValidities[o.Validity] {
		return fmt.Errorf("invalid validity %q", o.Validity)
	}
	if o.OrderType == "LIMIT" && o.Price <= 0 {
		return fmt.Errorf("price is required for LIMIT orders")
	}
	if (o.OrderType == "SL" || o.OrderType == "SL-M") && o.TriggerPrice <= 0 {
		return fmt.Errorf("trigger_price is required for %s orders", o.OrderType)
	}
	return nil
}

// ValidateInstrumentKey parses "SEGMENT|IDENTIFIER" keys. The
// identifier doubles as the symbol in the mock feed.
func (v *Validator) ValidateInstrumentKey(key string) (string, string, error) {
	if key == "" {
		return "", "", fmt.Errorf("instrument_key is required")
	}
	segment, ident, found := strings.Cut(key, "|")
	if !found || ident == "" {
		return "", "", fmt.Errorf("malformed instrument_key %q", key)
	}
	if !validSegments[segment] {
		return "", "", fmt.Errorf("unknown segment %q", segment)
	}
	return key, ident, nil
}
