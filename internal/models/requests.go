package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateProductRequest represents a request to create a new product
type CreateProductRequest struct {
	Name                    string           `json:"name" binding:"required"`
	Slug                    *string          `json:"slug,omitempty"`
	SKU                     string           `json:"sku" binding:"required"`
	Description             *string          `json:"description,omitempty"`
	Type                    ProductType      `json:"type" binding:"required,oneof=INSTRUMENT ACCESSORY"`
	RegisterTag             *string          `json:"registerTag,omitempty"`
	Price                   *decimal.Decimal `json:"price,omitempty"`
	StockQuantity           *int             `json:"stockQuantity,omitempty"`
	IsFeatured              *bool            `json:"isFeatured,omitempty"`
	DiscountPercent         *float64         `json:"discountPercent,omitempty"`
	DiscountStartDate       *time.Time       `json:"discountStartDate,omitempty"`
	DiscountEndDate         *time.Time       `json:"discountEndDate,omitempty"`
	MinQuantityDiscount     *int             `json:"minQuantityDiscount,omitempty"`
	QuantityDiscountPercent *float64         `json:"quantityDiscountPercent,omitempty"`
	ImageURL                *string          `json:"imageUrl,omitempty"`
}

// UpdateProductRequest represents scalar product field updates. Nil fields
// are left untouched.
type UpdateProductRequest struct {
	Name                    *string          `json:"name,omitempty"`
	Slug                    *string          `json:"slug,omitempty"`
	SKU                     *string          `json:"sku,omitempty"`
	Description             *string          `json:"description,omitempty"`
	Type                    *ProductType     `json:"type,omitempty"`
	RegisterTag             *string          `json:"registerTag,omitempty"`
	Price                   *decimal.Decimal `json:"price,omitempty"`
	StockQuantity           *int             `json:"stockQuantity,omitempty"`
	IsActive                *bool            `json:"isActive,omitempty"`
	IsFeatured              *bool            `json:"isFeatured,omitempty"`
	DiscountPercent         *float64         `json:"discountPercent,omitempty"`
	DiscountStartDate       *time.Time       `json:"discountStartDate,omitempty"`
	DiscountEndDate         *time.Time       `json:"discountEndDate,omitempty"`
	MinQuantityDiscount     *int             `json:"minQuantityDiscount,omitempty"`
	QuantityDiscountPercent *float64         `json:"quantityDiscountPercent,omitempty"`
	ImageURL                *string          `json:"imageUrl,omitempty"`
}

// VariantDescriptor describes one desired variant in a reconciliation
// submission. A nil ID means a new variant; a known ID means an in-place
// update of that row.
type VariantDescriptor struct {
	ID            *uuid.UUID       `json:"id,omitempty"`
	BrandID       *uuid.UUID       `json:"brandId,omitempty"`
	Size          *string          `json:"size,omitempty"`
	Model         *string          `json:"model,omitempty"`
	Material      *string          `json:"material,omitempty"`
	SKU           string           `json:"sku" binding:"required"`
	Price         *decimal.Decimal `json:"price,omitempty"`
	StockQuantity int              `json:"stockQuantity" binding:"min=0"`
	ImageURL      *string          `json:"imageUrl,omitempty"`
}

// ReconcileVariantsRequest carries the full desired variant list for a
// product, plus optional scalar product updates, applied as one atomic unit.
// Every live variant absent from Variants is retired.
type ReconcileVariantsRequest struct {
	Product  *UpdateProductRequest `json:"product,omitempty"`
	Variants []VariantDescriptor   `json:"variants"`
}

// BulkPriceUpdateRequest applies a signed percentage change across a
// filtered set of products that carry a base price.
type BulkPriceUpdateRequest struct {
	PercentChange float64      `json:"percentChange" binding:"required"`
	Reason        *string      `json:"reason,omitempty"`
	Type          *ProductType `json:"type,omitempty"`
	ProductIDs    []uuid.UUID  `json:"productIds,omitempty"`
}

// StockDeductLine is one order line to decrement stock for. When VariantID
// is nil the product's own stock is decremented instead.
type StockDeductLine struct {
	ProductID uuid.UUID  `json:"productId" binding:"required"`
	VariantID *uuid.UUID `json:"variantId,omitempty"`
	Quantity  int        `json:"quantity" binding:"required,min=1"`
}

// StockDeductRequest is sent by the orders collaborator on the
// PENDING -> CONFIRMED transition of an order.
type StockDeductRequest struct {
	Lines  []StockDeductLine `json:"lines" binding:"required,min=1,dive"`
	Reason *string           `json:"reason,omitempty"`
}

// SelectionRequest is the shopper's current (possibly partial) selection,
// one optional value per dimension.
type SelectionRequest struct {
	Brand    *string `json:"brand,omitempty"`
	Size     *string `json:"size,omitempty"`
	Model    *string `json:"model,omitempty"`
	Material *string `json:"material,omitempty"`
	Quantity *int    `json:"quantity,omitempty"`
}

// ListProductsRequest holds list filters parsed from query parameters.
type ListProductsRequest struct {
	Type       *ProductType
	IsActive   *bool
	IsFeatured *bool
	Query      *string
	Page       int
	Limit      int
}

// ExportProductsRequest selects what the xlsx export includes.
type ExportProductsRequest struct {
	IncludeVariants     bool `json:"includeVariants"`
	IncludeRetired      bool `json:"includeRetired"`
	IncludePriceHistory bool `json:"includePriceHistory"`
}
