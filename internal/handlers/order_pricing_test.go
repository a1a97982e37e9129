package handlers

import (
	"testing"

	"souq/internal/models"
)

func amount(t *testing.T, value string) models.Amount {
	t.Helper()
	a, err := models.NewAmount(value)
	if err != nil {
		t.Fatalf("invalid test amount %q: %v", value, err)
	}
	return a
}

func TestResolveLinePriceWithoutDiscount(t *testing.T) {
	product := models.Product{
		Price:    amount(t, "100"),
		Currency: models.Currency{Code: models.CurrencySAR},
	}

	resolved := resolveLinePrice(product)
	if !resolved.UnitPrice.Equal(amount(t, "100")) {
		t.Fatalf("expected unit price 100, got %s", resolved.UnitPrice)
	}
	if !resolved.OriginalPrice.Equal(amount(t, "100")) {
		t.Fatalf("expected original price 100, got %s", resolved.OriginalPrice)
	}
	if resolved.DiscountApplied {
		t.Fatal("expected discountApplied=false")
	}
}

func TestResolveLinePriceWithValidDiscount(t *testing.T) {
	product := models.Product{
		Price:    amount(t, "100"),
		Discount: &models.Discount{Price: amount(t, "80"), IsValid: true},
		Currency: models.Currency{Code: models.CurrencySAR},
	}

	resolved := resolveLinePrice(product)
	if !resolved.UnitPrice.Equal(amount(t, "80")) {
		t.Fatalf("expected discounted unit price 80, got %s", resolved.UnitPrice)
	}
	if !resolved.OriginalPrice.Equal(amount(t, "100")) {
		t.Fatalf("original price must stay at list price 100, got %s", resolved.OriginalPrice)
	}
	if !resolved.DiscountApplied {
		t.Fatal("expected discountApplied=true")
	}
}

func TestResolveLinePriceIgnoresInvalidDiscount(t *testing.T) {
	product := models.Product{
		Price:    amount(t, "100"),
		Discount: &models.Discount{Price: amount(t, "80"), IsValid: false},
	}

	resolved := resolveLinePrice(product)
	if !resolved.UnitPrice.Equal(amount(t, "100")) {
		t.Fatalf("expected list price 100 when discount invalid, got %s", resolved.UnitPrice)
	}
	if resolved.DiscountApplied {
		t.Fatal("expected discountApplied=false when discount invalid")
	}
}

func TestValidateDiscount(t *testing.T) {
	price := amount(t, "100")

	if err := validateDiscount(price, nil); err != nil {
		t.Fatalf("nil discount must be valid: %v", err)
	}
	if err := validateDiscount(price, &models.Discount{Price: amount(t, "0")}); err == nil {
		t.Fatal("expected error for zero discount price")
	}
	for _, value := range []string{"100", "120"} {
		if err := validateDiscount(price, &models.Discount{Price: amount(t, value)}); err == nil {
			t.Fatalf("expected error for discount price %s", value)
		}
	}
	if err := validateDiscount(price, &models.Discount{Price: amount(t, "99.99")}); err != nil {
		t.Fatalf("expected discount below price to pass: %v", err)
	}
}
