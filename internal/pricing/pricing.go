// Package pricing resolves the effective per-unit price of a product
// configuration. It is pure: all inputs, including the evaluation time,
// come from the caller.
package pricing

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"catalog-service/internal/models"
)

// ErrNoPrice is returned when neither the variant nor the product carries a
// price.
var ErrNoPrice = errors.New("pricing: no price set on product or variant")

var oneHundred = decimal.NewFromInt(100)

// DiscountActive reports whether the product's time-boxed discount applies
// at the given instant. An absent bound is unbounded on that side.
func DiscountActive(p *models.Product, now time.Time) bool {
	if p.DiscountPercent == nil || *p.DiscountPercent <= 0 {
		return false
	}
	if p.DiscountStartDate != nil && now.Before(*p.DiscountStartDate) {
		return false
	}
	if p.DiscountEndDate != nil && now.After(*p.DiscountEndDate) {
		return false
	}
	return true
}

// EffectiveUnitPrice computes the final per-unit price in whole currency
// units. Stacking order: variant override else base price, then the
// time-boxed discount, then the quantity discount, rounding to the nearest
// whole unit after each discount step.
//
// The time-boxed discount only applies when the unit price comes from the
// product's base price; a variant price override is never time-discounted.
func EffectiveUnitPrice(p *models.Product, v *models.ProductVariant, quantity int, now time.Time) (int64, error) {
	var unit decimal.Decimal
	fromVariant := v != nil && v.Price != nil
	switch {
	case fromVariant:
		unit = *v.Price
	case p.Price != nil:
		unit = *p.Price
	default:
		return 0, ErrNoPrice
	}

	if !fromVariant && DiscountActive(p, now) {
		factor := decimal.NewFromFloat(100 - *p.DiscountPercent).Div(oneHundred)
		unit = unit.Mul(factor).Round(0)
	}

	if quantityDiscountApplies(p, quantity) {
		factor := decimal.NewFromFloat(100 - *p.QuantityDiscountPercent).Div(oneHundred)
		unit = unit.Mul(factor)
	}

	return unit.Round(0).IntPart(), nil
}

func quantityDiscountApplies(p *models.Product, quantity int) bool {
	if p.MinQuantityDiscount == nil || *p.MinQuantityDiscount <= 0 {
		return false
	}
	if p.QuantityDiscountPercent == nil || *p.QuantityDiscountPercent <= 0 {
		return false
	}
	return quantity >= *p.MinQuantityDiscount
}
