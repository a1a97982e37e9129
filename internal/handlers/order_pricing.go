package handlers

import (
	"fmt"

	"souq/internal/models"
)

// resolvedPrice is the price snapshot captured for one cart line. UnitPrice
// is what the customer is charged; OriginalPrice is always the list price and
// feeds the discount-margin profit figure on the dashboard.
type resolvedPrice struct {
	UnitPrice       models.Amount
	OriginalPrice   models.Amount
	DiscountApplied bool
}

// resolveLinePrice picks the discount price when the discount is flagged
// valid, otherwise the list price. Client-submitted prices are never trusted;
// this runs server-side inside the placement transaction.
func resolveLinePrice(p models.Product) resolvedPrice {
	if p.HasValidDiscount() {
		return resolvedPrice{
			UnitPrice:       p.Discount.Price,
			OriginalPrice:   p.Price,
			DiscountApplied: true,
		}
	}
	return resolvedPrice{
		UnitPrice:     p.Price,
		OriginalPrice: p.Price,
	}
}

// validateDiscount checks an admin-submitted discount against the product's
// list price before it is stored.
func validateDiscount(price models.Amount, discount *models.Discount) error {
	if discount == nil {
		return nil
	}
	if !discount.Price.IsPositive() {
		return fmt.Errorf("discount price must be greater than 0")
	}
	if !discount.Price.LessThan(price) {
		return fmt.Errorf("discount price must be less than price")
	}
	return nil
}
