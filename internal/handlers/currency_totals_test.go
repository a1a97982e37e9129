package handlers

import (
	"testing"
	"time"

	"souq/internal/models"
)

func deliveredOrder(t *testing.T, createdAt time.Time, lines ...models.OrderLine) models.Order {
	t.Helper()
	return models.Order{
		Status:    models.StatusDelivered,
		Lines:     lines,
		CreatedAt: createdAt,
	}
}

func line(t *testing.T, code models.CurrencyCode, unit, original string, qty int) models.OrderLine {
	t.Helper()
	return models.OrderLine{
		Quantity:          qty,
		UnitPrice:         models.Money{Amount: amount(t, unit), Currency: code},
		OriginalUnitPrice: models.Money{Amount: amount(t, original), Currency: code},
	}
}

func TestOrderCurrencyTotalsKeepsCurrenciesApart(t *testing.T) {
	order := deliveredOrder(t, time.Now(),
		line(t, models.CurrencySAR, "100", "100", 2),
		line(t, models.CurrencyYER, "500", "500", 1),
	)

	totals := orderCurrencyTotals(order)
	if !totals[models.CurrencySAR].Equal(amount(t, "200")) {
		t.Fatalf("expected SAR total 200, got %s", totals[models.CurrencySAR])
	}
	if !totals[models.CurrencyYER].Equal(amount(t, "500")) {
		t.Fatalf("expected YER total 500, got %s", totals[models.CurrencyYER])
	}
}

func TestAggregateDeliveredRevenueAndProfit(t *testing.T) {
	// P2 scenario: list price 100, discount price 80, one unit.
	order := deliveredOrder(t, time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC),
		line(t, models.CurrencySAR, "80", "100", 1),
	)

	totals, monthly := aggregateDelivered([]models.Order{order})

	if !totals[models.CurrencySAR].Revenue.Equal(amount(t, "80")) {
		t.Fatalf("expected SAR revenue 80, got %s", totals[models.CurrencySAR].Revenue)
	}
	if !totals[models.CurrencySAR].Profit.Equal(amount(t, "20")) {
		t.Fatalf("expected SAR profit 20, got %s", totals[models.CurrencySAR].Profit)
	}

	march := monthly[2].Currencies[models.CurrencySAR]
	if !march.Sales.Equal(amount(t, "80")) || !march.Profit.Equal(amount(t, "20")) {
		t.Fatalf("expected March bucket sales=80 profit=20, got sales=%s profit=%s", march.Sales, march.Profit)
	}

	// All other months stay zero.
	for i, bucket := range monthly {
		if i == 2 {
			continue
		}
		if !bucket.Currencies[models.CurrencySAR].Sales.IsZero() {
			t.Fatalf("expected month %d to be empty", i)
		}
	}
}

func TestAggregateDeliveredNeverSumsAcrossCurrencies(t *testing.T) {
	createdAt := time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)
	orders := []models.Order{
		deliveredOrder(t, createdAt, line(t, models.CurrencySAR, "100", "100", 2)),
		deliveredOrder(t, createdAt, line(t, models.CurrencyYER, "3000", "3500", 1)),
	}

	totals, _ := aggregateDelivered(orders)

	if !totals[models.CurrencySAR].Revenue.Equal(amount(t, "200")) {
		t.Fatalf("expected SAR revenue 200, got %s", totals[models.CurrencySAR].Revenue)
	}
	if !totals[models.CurrencyYER].Revenue.Equal(amount(t, "3000")) {
		t.Fatalf("expected YER revenue 3000, got %s", totals[models.CurrencyYER].Revenue)
	}
	if !totals[models.CurrencyYER].Profit.Equal(amount(t, "500")) {
		t.Fatalf("expected YER profit 500, got %s", totals[models.CurrencyYER].Profit)
	}
}

func TestAggregateDeliveredSkipsUnknownCurrencies(t *testing.T) {
	order := deliveredOrder(t, time.Now(),
		line(t, models.CurrencyCode("USD"), "100", "100", 5),
		line(t, models.CurrencySAR, "10", "10", 1),
	)

	totals, _ := aggregateDelivered([]models.Order{order})

	if !totals[models.CurrencySAR].Revenue.Equal(amount(t, "10")) {
		t.Fatalf("expected SAR revenue 10, got %s", totals[models.CurrencySAR].Revenue)
	}
	if _, ok := totals[models.CurrencyCode("USD")]; ok {
		t.Fatal("unknown currency must not create a bucket")
	}
}

func TestAggregateDeliveredDecimalPrecision(t *testing.T) {
	// Many 0.1-sized lines must sum exactly, with no float drift.
	lines := make([]models.OrderLine, 0, 10)
	for i := 0; i < 10; i++ {
		lines = append(lines, line(t, models.CurrencySAR, "0.1", "0.1", 1))
	}
	order := deliveredOrder(t, time.Now(), lines...)

	totals, _ := aggregateDelivered([]models.Order{order})
	if !totals[models.CurrencySAR].Revenue.Equal(amount(t, "1")) {
		t.Fatalf("expected exactly 1, got %s", totals[models.CurrencySAR].Revenue)
	}
}
