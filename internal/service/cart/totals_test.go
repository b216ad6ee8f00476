package cart

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"storefront/internal/config"
	"storefront/internal/domain"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func requireDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	require.Truef(t, dec(want).Equal(got), "expected %s, got %s", want, got)
}

func TestComputeTotals_MixedCart(t *testing.T) {
	items := []domain.LineItem{
		{ProductID: "A", UnitPrice: dec("50"), Quantity: 1, Variant: domain.Variant{Size: "9", Color: "black"}},
		{ProductID: "B", UnitPrice: dec("60"), Quantity: 2},
	}
	totals := ComputeTotals(items, DefaultPricing())

	require.Equal(t, 3, totals.ItemCount)
	requireDecimal(t, "170", totals.Subtotal)
	requireDecimal(t, "17.0", totals.Tax)
	requireDecimal(t, "0", totals.Shipping)
	requireDecimal(t, "187.0", totals.GrandTotal)
}

func TestComputeTotals_ShippingThresholdIsStrict(t *testing.T) {
	items := []domain.LineItem{{ProductID: "A", UnitPrice: dec("25.00"), Quantity: 4}}
	totals := ComputeTotals(items, DefaultPricing())

	requireDecimal(t, "100", totals.Subtotal)
	requireDecimal(t, "10", totals.Shipping)
	requireDecimal(t, "120", totals.GrandTotal)

	items[0].UnitPrice = dec("25.01")
	totals = ComputeTotals(items, DefaultPricing())
	requireDecimal(t, "0", totals.Shipping)
}

func TestComputeTotals_IgnoresOriginalPrice(t *testing.T) {
	orig := dec("999")
	items := []domain.LineItem{{ProductID: "A", UnitPrice: dec("19.99"), OriginalPrice: &orig, Quantity: 3}}
	totals := ComputeTotals(items, DefaultPricing())

	requireDecimal(t, "59.97", totals.Subtotal)
	requireDecimal(t, "5.997", totals.Tax)
	requireDecimal(t, "10", totals.Shipping)
	requireDecimal(t, "75.967", totals.GrandTotal)
}

func TestComputeTotals_EmptyCart(t *testing.T) {
	totals := ComputeTotals(nil, DefaultPricing())
	require.Zero(t, totals.ItemCount)
	requireDecimal(t, "0", totals.Subtotal)
	requireDecimal(t, "0", totals.Tax)
	requireDecimal(t, "10", totals.Shipping)
	requireDecimal(t, "10", totals.GrandTotal)
}

func TestComputeTotals_CustomPricing(t *testing.T) {
	p := Pricing{TaxRate: dec("0.2"), FreeShippingThreshold: dec("50"), FlatShipping: dec("4.5")}
	items := []domain.LineItem{{ProductID: "A", UnitPrice: dec("20"), Quantity: 2}}
	totals := ComputeTotals(items, p)

	requireDecimal(t, "8", totals.Tax)
	requireDecimal(t, "4.5", totals.Shipping)
	requireDecimal(t, "52.5", totals.GrandTotal)
}

func TestPricingFromConfig(t *testing.T) {
	p := PricingFromConfig(config.PricingConfig{
		TaxRate:               dec("0.2"),
		FreeShippingThreshold: dec("50"),
		FlatShipping:          dec("5"),
	})
	totals := ComputeTotals([]domain.LineItem{{ProductID: "A", UnitPrice: dec("10"), Quantity: 1}}, p)

	requireDecimal(t, "2", totals.Tax)
	requireDecimal(t, "5", totals.Shipping)
}
