package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ProductType represents the kind of goods a product belongs to
type ProductType string

const (
	ProductTypeInstrument ProductType = "INSTRUMENT"
	ProductTypeAccessory  ProductType = "ACCESSORY"
)

// Product represents a sellable product entity.
// Base price and base stock are only authoritative while the product has no
// variants; once variants exist, price/stock resolution happens per variant.
type Product struct {
	ID          uuid.UUID   `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	TenantID    string      `json:"tenantId" gorm:"not null;index:idx_products_tenant_id;index:idx_products_tenant_sku,unique;index:idx_products_tenant_slug,unique"`
	Slug        *string     `json:"slug,omitempty" gorm:"index:idx_products_tenant_slug,unique"`
	SKU         string      `json:"sku" gorm:"not null;index:idx_products_tenant_sku,unique"`
	Name        string      `json:"name" gorm:"not null"`
	Description *string     `json:"description,omitempty"`
	Type        ProductType `json:"type" gorm:"not null;default:'INSTRUMENT';index"`
	RegisterTag *string     `json:"registerTag,omitempty" gorm:"index"`

	// Price is nullable: a product may carry no price of its own when every
	// purchasable configuration prices through a variant override.
	Price *decimal.Decimal `json:"price,omitempty" gorm:"type:decimal(12,2)"`
	// StockQuantity is only consulted when the product has no variants.
	StockQuantity int `json:"stockQuantity" gorm:"not null;default:0"`

	IsActive   bool `json:"isActive" gorm:"not null;default:true;index"`
	IsFeatured bool `json:"isFeatured" gorm:"not null;default:false"`

	// Time-boxed discount window. Either bound may be nil (unbounded).
	DiscountPercent   *float64   `json:"discountPercent,omitempty"`
	DiscountStartDate *time.Time `json:"discountStartDate,omitempty"`
	DiscountEndDate   *time.Time `json:"discountEndDate,omitempty"`

	// Quantity discount, applied on top of the time-discounted price.
	MinQuantityDiscount     *int     `json:"minQuantityDiscount,omitempty"`
	QuantityDiscountPercent *float64 `json:"quantityDiscountPercent,omitempty"`

	ImageURL *string `json:"imageUrl,omitempty"`

	Variants []*ProductVariant `json:"variants,omitempty" gorm:"foreignKey:ProductID"`

	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
	DeletedAt *gorm.DeletedAt `json:"deletedAt,omitempty" gorm:"index"`
	CreatedBy *string         `json:"createdBy,omitempty"`
	UpdatedBy *string         `json:"updatedBy,omitempty"`
}

// HasVariants reports whether any variant rows are loaded for the product.
func (p *Product) HasVariants() bool {
	return len(p.Variants) > 0
}

// InStock reports whether the product's own stock is positive. Only
// meaningful for variant-less products.
func (p *Product) InStock() bool {
	return p.StockQuantity > 0
}

// ProductVariant represents one concretely purchasable configuration of a
// product. Rows are created, updated and retired exclusively by variant
// reconciliation; stock is additionally moved by the stock ledger.
// A retired variant (is_active=false) keeps its id and sku indefinitely so
// historical order lines stay joinable.
type ProductVariant struct {
	ID         uuid.UUID  `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	ProductID  uuid.UUID  `json:"productId" gorm:"type:uuid;not null;index;index:idx_variants_product_key"`
	BrandID    *uuid.UUID `json:"brandId,omitempty" gorm:"type:uuid;index"`
	Size       *string    `json:"size,omitempty"`
	Model      *string    `json:"model,omitempty"`
	Material   *string    `json:"material,omitempty"`
	SKU        string     `json:"sku" gorm:"not null;unique"`
	VariantKey string     `json:"variantKey" gorm:"not null;index:idx_variants_product_key"`

	// Price overrides the product base price when non-nil.
	Price         *decimal.Decimal `json:"price,omitempty" gorm:"type:decimal(12,2)"`
	StockQuantity int              `json:"stockQuantity" gorm:"not null;default:0"`

	ImageURL *string `json:"imageUrl,omitempty"`
	IsActive bool    `json:"isActive" gorm:"not null;default:true;index"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// InStock reports whether the variant currently holds positive stock.
func (v *ProductVariant) InStock() bool {
	return v.StockQuantity > 0
}

// Brand is a read-only dependency of this service, owned by the brands
// collaborator. Rows are looked up for labeling and filtering only.
type Brand struct {
	ID         uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	TenantID   string    `json:"tenantId" gorm:"not null;index"`
	Slug       string    `json:"slug" gorm:"not null"`
	Name       string    `json:"name" gorm:"not null"`
	LogoURL    *string   `json:"logoUrl,omitempty"`
	WebsiteURL *string   `json:"websiteUrl,omitempty"`
	IsActive   bool      `json:"isActive" gorm:"not null;default:true"`
}

// PriceHistory records one bulk repricing of one product. Rows are
// append-only and never mutated after creation; their creation order is the
// audit trail.
type PriceHistory struct {
	ID            uuid.UUID       `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	TenantID      string          `json:"tenantId" gorm:"not null;index"`
	ProductID     uuid.UUID       `json:"productId" gorm:"type:uuid;not null;index"`
	OldPrice      decimal.Decimal `json:"oldPrice" gorm:"type:decimal(12,2);not null"`
	NewPrice      decimal.Decimal `json:"newPrice" gorm:"type:decimal(12,2);not null"`
	ChangePercent float64         `json:"changePercent" gorm:"not null"`
	Reason        *string         `json:"reason,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// TableName returns the table name for the Product model
func (Product) TableName() string {
	return "products"
}

// TableName returns the table name for the ProductVariant model
func (ProductVariant) TableName() string {
	return "product_variants"
}

// TableName returns the table name for the Brand model
func (Brand) TableName() string {
	return "brands"
}

// TableName returns the table name for the PriceHistory model
func (PriceHistory) TableName() string {
	return "price_history"
}
