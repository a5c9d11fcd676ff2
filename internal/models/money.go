package models

import (
	"errors"
	"fmt"
)

// ErrCurrencyMismatch is returned when amounts in different currencies
// would be combined. Mixed-currency inputs are a defect upstream and are
// never silently summed.
var ErrCurrencyMismatch = errors.New("currency mismatch")

// Money is the single price representation used past the search-service
// boundary. Downstream code never branches on shape.
type Money struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

// IsZero reports whether the value carries no amount and no currency.
func (m Money) IsZero() bool {
	return m.Amount == 0 && m.Currency == ""
}

// Add returns m + other. A zero value on either side adopts the other
// side's currency; otherwise currencies must match.
func (m Money) Add(other Money) (Money, error) {
	if m.IsZero() {
		return other, nil
	}
	if other.IsZero() {
		return m, nil
	}
	if m.Currency != other.Currency {
		return Money{}, fmt.Errorf("%w: %s vs %s", ErrCurrencyMismatch, m.Currency, other.Currency)
	}
	return Money{Amount: m.Amount + other.Amount, Currency: m.Currency}, nil
}

// Times returns m multiplied by n.
func (m Money) Times(n int) Money {
	return Money{Amount: m.Amount * float64(n), Currency: m.Currency}
}

func (m Money) String() string {
	return fmt.Sprintf("%.2f %s", m.Amount, m.Currency)
}
