package domain

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// PricingConfig holds the store-wide shipping and tax settings.
type PricingConfig struct {
	FreeShippingThreshold decimal.Decimal
	FlatShippingFee       decimal.Decimal
	TaxRatePercent        decimal.Decimal
}

func DefaultPricing() PricingConfig {
	return PricingConfig{
		FreeShippingThreshold: decimal.NewFromInt(1000),
		FlatShippingFee:       decimal.NewFromInt(50),
		TaxRatePercent:        decimal.NewFromInt(8),
	}
}

// EffectivePrice is the sale price when one is set and positive, otherwise the list price.
func EffectivePrice(price decimal.Decimal, sale *decimal.Decimal) decimal.Decimal {
	if sale != nil && sale.IsPositive() {
		return *sale
	}
	return price
}

// Shipping returns the shipping charge for a subtotal. An empty cart ships free.
func (p PricingConfig) Shipping(subtotal decimal.Decimal, itemCount int) decimal.Decimal {
	if itemCount == 0 || subtotal.GreaterThanOrEqual(p.FreeShippingThreshold) {
		return decimal.Zero
	}
	return Round2(p.FlatShippingFee)
}

// Tax applies only to the subtotal; shipping is not taxed.
func (p PricingConfig) Tax(subtotal decimal.Decimal) decimal.Decimal {
	return Round2(subtotal.Mul(p.TaxRatePercent).Div(hundred))
}

// Compute fills in each line total and returns the cart totals.
func (p PricingConfig) Compute(items []CartItem) CartTotals {
	subtotal := decimal.Zero
	count := 0
	for i := range items {
		items[i].LineTotal = Round2(items[i].UnitPrice.Mul(decimal.NewFromInt(int64(items[i].Quantity))))
		subtotal = subtotal.Add(items[i].LineTotal)
		count += items[i].Quantity
	}

	shipping := p.Shipping(subtotal, count)
	tax := p.Tax(subtotal)
	return CartTotals{
		ItemCount: count,
		Subtotal:  Round2(subtotal),
		Shipping:  shipping,
		Tax:       tax,
		Total:     Round2(subtotal.Add(shipping).Add(tax)),
	}
}
