package cart

import (
	"github.com/shopspring/decimal"
	"storefront/internal/config"
	"storefront/internal/domain"
)

// Pricing holds the constants used to derive cart totals.
type Pricing struct {
	TaxRate               decimal.Decimal
	FreeShippingThreshold decimal.Decimal
	FlatShipping          decimal.Decimal
}

// DefaultPricing is a flat 10% tax with free shipping strictly above 100.
func DefaultPricing() Pricing {
	return Pricing{
		TaxRate:               decimal.RequireFromString("0.10"),
		FreeShippingThreshold: decimal.NewFromInt(100),
		FlatShipping:          decimal.NewFromInt(10),
	}
}

// PricingFromConfig maps environment pricing onto the cart's Pricing.
func PricingFromConfig(c config.PricingConfig) Pricing {
	return Pricing{
		TaxRate:               c.TaxRate,
		FreeShippingThreshold: c.FreeShippingThreshold,
		FlatShipping:          c.FlatShipping,
	}
}

// Totals are derived from the line items on every call and never stored.
type Totals struct {
	ItemCount  int
	Subtotal   decimal.Decimal
	Tax        decimal.Decimal
	Shipping   decimal.Decimal
	GrandTotal decimal.Decimal
}

// ComputeTotals derives the monetary figures for items. OriginalPrice is
// display-only and never contributes.
func ComputeTotals(items []domain.LineItem, p Pricing) Totals {
	var count int
	subtotal := decimal.Zero
	for _, item := range items {
		count += item.Quantity
		subtotal = subtotal.Add(item.Total())
	}

	shipping := p.FlatShipping
	if subtotal.GreaterThan(p.FreeShippingThreshold) {
		shipping = decimal.Zero
	}
	tax := subtotal.Mul(p.TaxRate)

	return Totals{
		ItemCount:  count,
		Subtotal:   subtotal,
		Tax:        tax,
		Shipping:   shipping,
		GrandTotal: subtotal.Add(tax).Add(shipping),
	}
}
