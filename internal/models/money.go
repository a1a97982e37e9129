package models

import "fmt"

// CurrencyCode identifies one of the storefront currencies. Amounts in
// different currencies are never summed together; aggregation keeps one
// accumulator per code.
type CurrencyCode string

const (
	CurrencySAR CurrencyCode = "SAR"
	CurrencyYER CurrencyCode = "YER"
)

// SupportedCurrencies lists every code reports aggregate over, in a fixed
// order so output stays deterministic.
var SupportedCurrencies = []CurrencyCode{CurrencySAR, CurrencyYER}

func ParseCurrencyCode(code string) (CurrencyCode, error) {
	switch CurrencyCode(code) {
	case CurrencySAR, CurrencyYER:
		return CurrencyCode(code), nil
	}
	return "", fmt.Errorf("unsupported currency code %q", code)
}

func (c CurrencyCode) IsSupported() bool {
	_, err := ParseCurrencyCode(string(c))
	return err == nil
}

// Currency is the denormalized currency record embedded on products.
type Currency struct {
	Code CurrencyCode `bson:"code" json:"code"`
	Name string       `bson:"name" json:"name"`
}

// Money is an amount tagged with its currency.
type Money struct {
	Amount   Amount       `bson:"amount" json:"amount"`
	Currency CurrencyCode `bson:"currency" json:"currency"`
}

func (m Money) MulQuantity(quantity int) Money {
	return Money{Amount: m.Amount.MulQuantity(quantity), Currency: m.Currency}
}
