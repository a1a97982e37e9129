package handlers

import (
	"souq/internal/models"
)

// currencyFigures is one realized-revenue bucket. Profit here is the
// discount-adjusted margin (list price minus charged price), not true
// cost-of-goods margin.
type currencyFigures struct {
	Revenue models.Amount `json:"revenue"`
	Profit  models.Amount `json:"profit"`
}

type monthlyFigures struct {
	Sales  models.Amount `json:"sales"`
	Profit models.Amount `json:"profit"`
}

// monthBucket is one calendar month of the dashboard series, keyed on order
// creation time (index 0-11), not delivery time.
type monthBucket struct {
	Month      int                                    `json:"month"`
	Currencies map[models.CurrencyCode]monthlyFigures `json:"currencies"`
}

// orderCurrencyTotals sums an order's line totals per currency. Amounts in
// different currencies are never added together.
func orderCurrencyTotals(order models.Order) map[models.CurrencyCode]models.Amount {
	totals := make(map[models.CurrencyCode]models.Amount, len(models.SupportedCurrencies))
	for _, code := range models.SupportedCurrencies {
		totals[code] = models.ZeroAmount()
	}
	for _, line := range order.Lines {
		code := line.UnitPrice.Currency
		if !code.IsSupported() {
			continue
		}
		totals[code] = totals[code].Add(line.UnitPrice.Amount.MulQuantity(line.Quantity))
	}
	return totals
}

// aggregateDelivered rolls a set of orders (callers pass delivered orders
// only) into per-currency revenue/profit totals and a twelve-month series.
// Lines with an unknown currency code are skipped rather than failing the
// whole report.
func aggregateDelivered(orders []models.Order) (map[models.CurrencyCode]currencyFigures, []monthBucket) {
	totals := make(map[models.CurrencyCode]currencyFigures, len(models.SupportedCurrencies))
	for _, code := range models.SupportedCurrencies {
		totals[code] = currencyFigures{Revenue: models.ZeroAmount(), Profit: models.ZeroAmount()}
	}

	months := make([]monthBucket, 12)
	for i := range months {
		months[i].Month = i
		months[i].Currencies = make(map[models.CurrencyCode]monthlyFigures, len(models.SupportedCurrencies))
		for _, code := range models.SupportedCurrencies {
			months[i].Currencies[code] = monthlyFigures{Sales: models.ZeroAmount(), Profit: models.ZeroAmount()}
		}
	}

	for _, order := range orders {
		monthIndex := int(order.CreatedAt.Month()) - 1
		for _, line := range order.Lines {
			code := line.UnitPrice.Currency
			if !code.IsSupported() {
				continue
			}

			revenue := line.UnitPrice.Amount.MulQuantity(line.Quantity)
			profit := line.OriginalUnitPrice.Amount.Sub(line.UnitPrice.Amount).MulQuantity(line.Quantity)

			bucket := totals[code]
			bucket.Revenue = bucket.Revenue.Add(revenue)
			bucket.Profit = bucket.Profit.Add(profit)
			totals[code] = bucket

			monthly := months[monthIndex].Currencies[code]
			monthly.Sales = monthly.Sales.Add(revenue)
			monthly.Profit = monthly.Profit.Add(profit)
			months[monthIndex].Currencies[code] = monthly
		}
	}

	return totals, months
}
