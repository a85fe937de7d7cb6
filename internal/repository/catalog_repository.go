package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Tesseract-Nexus/go-shared/cache"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"catalog-service/internal/models"
)

// Cache TTL constants
const (
	ProductCacheTTL  = 5 * time.Minute
	VariantsCacheTTL = 2 * time.Minute // variant sets change with every reconciliation
	BrandCacheTTL    = 30 * time.Minute
)

// ErrInsufficientStock is returned when a conditional stock decrement finds
// less stock than the requested quantity.
var ErrInsufficientStock = errors.New("insufficient stock")

// CatalogRepositoryInterface abstracts catalog persistence so services can
// be tested without a database and so transactional units can run against a
// transaction-bound repository.
type CatalogRepositoryInterface interface {
	WithTransaction(fn func(txRepo CatalogRepositoryInterface) error) error

	CreateProduct(tenantID string, product *models.Product) error
	GetProductByID(tenantID string, productID uuid.UUID, includeVariants bool) (*models.Product, error)
	ListProducts(tenantID string, req *models.ListProductsRequest) ([]models.Product, int64, error)
	UpdateProductFields(tenantID string, productID uuid.UUID, updates map[string]interface{}) error
	DeleteProduct(tenantID string, productID uuid.UUID) error

	GetVariants(tenantID string, productID uuid.UUID, onlyActive bool) ([]models.ProductVariant, error)
	GetVariantByID(tenantID string, variantID uuid.UUID) (*models.ProductVariant, error)
	CreateVariant(variant *models.ProductVariant) error
	UpdateVariant(variant *models.ProductVariant) error
	RetireVariants(productID uuid.UUID, variantIDs []uuid.UUID) error

	DecrementProductStock(tenantID string, productID uuid.UUID, quantity int) error
	DecrementVariantStock(tenantID string, variantID uuid.UUID, quantity int) error

	ListRepriceableProducts(tenantID string, productType *models.ProductType, productIDs []uuid.UUID) ([]models.Product, error)
	UpdateProductPrice(tenantID string, productID uuid.UUID, newPrice decimal.Decimal) error
	AppendPriceHistory(entry *models.PriceHistory) error
	ListPriceHistory(tenantID string, productID uuid.UUID, page, limit int) ([]models.PriceHistory, int64, error)

	GetBrandByID(tenantID string, brandID uuid.UUID) (*models.Brand, error)
	ListBrands(tenantID string) ([]models.Brand, error)
	GetBrandNames(tenantID string, brandIDs []uuid.UUID) (map[uuid.UUID]string, error)
}

type CatalogRepository struct {
	db    *gorm.DB
	redis *redis.Client
	cache *cache.CacheLayer
}

var _ CatalogRepositoryInterface = (*CatalogRepository)(nil)

func NewCatalogRepository(db *gorm.DB, redisClient *redis.Client) *CatalogRepository {
	repo := &CatalogRepository{
		db:    db,
		redis: redisClient,
	}

	if redisClient != nil {
		cacheConfig := cache.CacheConfig{
			L1Enabled:  true,
			L1MaxItems: 5000,
			L1TTL:      30 * time.Second,
			DefaultTTL: ProductCacheTTL,
			KeyPrefix:  "tesseract:catalog:",
		}
		repo.cache = cache.NewCacheLayerFromClient(redisClient, cacheConfig)
	}

	return repo
}

// WithTransaction runs fn against a transaction-bound repository. Any error
// rolls back every write made inside fn.
func (r *CatalogRepository) WithTransaction(fn func(txRepo CatalogRepositoryInterface) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		txRepo := &CatalogRepository{db: tx, redis: r.redis, cache: r.cache}
		return fn(txRepo)
	})
}

// invalidateProductCaches invalidates all caches related to a product
func (r *CatalogRepository) invalidateProductCaches(ctx context.Context, tenantID string, productID uuid.UUID) {
	if r.cache == nil {
		return
	}
	productKey := fmt.Sprintf("product:%s:%s", tenantID, productID.String())
	_ = r.cache.Delete(ctx, productKey+":true", productKey+":false")
	_ = r.cache.DeletePattern(ctx, fmt.Sprintf("variants:%s:%s:*", tenantID, productID.String()))
	_ = r.cache.DeletePattern(ctx, fmt.Sprintf("products:list:%s:*", tenantID))
}

// Product operations

// CreateProduct creates a new product
func (r *CatalogRepository) CreateProduct(tenantID string, product *models.Product) error {
	product.TenantID = tenantID
	product.CreatedAt = time.Now()
	product.UpdatedAt = time.Now()

	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}

	// Generate slug from name if not provided, suffixed for uniqueness
	if product.Slug == nil || *product.Slug == "" {
		uniqueSlug := fmt.Sprintf("%s-%s", generateSlug(product.Name), product.ID.String()[:8])
		product.Slug = &uniqueSlug
	}

	err := r.db.Create(product).Error
	if err == nil && r.cache != nil {
		_ = r.cache.DeletePattern(context.Background(), fmt.Sprintf("products:list:%s:*", tenantID))
	}
	return err
}

// GetProductByID retrieves a product by ID with caching
func (r *CatalogRepository) GetProductByID(tenantID string, productID uuid.UUID, includeVariants bool) (*models.Product, error) {
	ctx := context.Background()
	cacheKey := fmt.Sprintf("product:%s:%s:%v", tenantID, productID.String(), includeVariants)

	if r.redis != nil {
		val, err := r.redis.Get(ctx, cacheKey).Result()
		if err == nil {
			var product models.Product
			if err := json.Unmarshal([]byte(val), &product); err == nil {
				return &product, nil
			}
		}
	}

	var product models.Product
	query := r.db.Where("tenant_id = ? AND id = ?", tenantID, productID)
	if includeVariants {
		query = query.Preload("Variants")
	}
	if err := query.First(&product).Error; err != nil {
		return nil, err
	}

	if r.redis != nil {
		data, err := json.Marshal(product)
		if err == nil {
			r.redis.Set(ctx, cacheKey, data, ProductCacheTTL)
		}
	}

	return &product, nil
}

// ListProducts retrieves products with filters and pagination
func (r *CatalogRepository) ListProducts(tenantID string, req *models.ListProductsRequest) ([]models.Product, int64, error) {
	var products []models.Product
	var total int64

	query := r.db.Model(&models.Product{}).Where("tenant_id = ?", tenantID)

	if req.Type != nil {
		query = query.Where("type = ?", *req.Type)
	}
	if req.IsActive != nil {
		query = query.Where("is_active = ?", *req.IsActive)
	}
	if req.IsFeatured != nil {
		query = query.Where("is_featured = ?", *req.IsFeatured)
	}
	if req.Query != nil && *req.Query != "" {
		term := "%" + strings.ToLower(strings.TrimSpace(*req.Query)) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(sku) LIKE ?", term, term)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (req.Page - 1) * req.Limit
	if err := query.Order("created_at DESC").Offset(offset).Limit(req.Limit).Find(&products).Error; err != nil {
		return nil, 0, err
	}

	return products, total, nil
}

// UpdateProductFields applies a partial column update to a product
func (r *CatalogRepository) UpdateProductFields(tenantID string, productID uuid.UUID, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now()

	result := r.db.Model(&models.Product{}).
		Where("tenant_id = ? AND id = ?", tenantID, productID).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	r.invalidateProductCaches(context.Background(), tenantID, productID)
	return nil
}

// DeleteProduct soft deletes a product
func (r *CatalogRepository) DeleteProduct(tenantID string, productID uuid.UUID) error {
	err := r.db.Where("tenant_id = ? AND id = ?", tenantID, productID).
		Delete(&models.Product{}).Error

	if err == nil {
		r.invalidateProductCaches(context.Background(), tenantID, productID)
	}
	return err
}

// Variant operations

// tenantProductIDs scopes variant queries to the tenant's products.
func (r *CatalogRepository) tenantProductIDs(tenantID string) *gorm.DB {
	return r.db.Model(&models.Product{}).Select("id").Where("tenant_id = ?", tenantID)
}

// GetVariants retrieves the variants of a product, optionally restricted to
// the live (is_active) set, with caching.
func (r *CatalogRepository) GetVariants(tenantID string, productID uuid.UUID, onlyActive bool) ([]models.ProductVariant, error) {
	ctx := context.Background()
	cacheKey := fmt.Sprintf("variants:%s:%s:%v", tenantID, productID.String(), onlyActive)

	if r.redis != nil {
		val, err := r.redis.Get(ctx, cacheKey).Result()
		if err == nil {
			var variants []models.ProductVariant
			if err := json.Unmarshal([]byte(val), &variants); err == nil {
				return variants, nil
			}
		}
	}

	query := r.db.Where("product_id = ?", productID).
		Where("product_id IN (?)", r.tenantProductIDs(tenantID))
	if onlyActive {
		query = query.Where("is_active = ?", true)
	}

	var variants []models.ProductVariant
	if err := query.Order("created_at ASC").Find(&variants).Error; err != nil {
		return nil, err
	}

	if r.redis != nil {
		data, err := json.Marshal(variants)
		if err == nil {
			r.redis.Set(ctx, cacheKey, data, VariantsCacheTTL)
		}
	}

	return variants, nil
}

// GetVariantByID retrieves one variant, active or retired
func (r *CatalogRepository) GetVariantByID(tenantID string, variantID uuid.UUID) (*models.ProductVariant, error) {
	var variant models.ProductVariant
	err := r.db.Where("id = ?", variantID).
		Where("product_id IN (?)", r.tenantProductIDs(tenantID)).
		First(&variant).Error
	if err != nil {
		return nil, err
	}
	return &variant, nil
}

// CreateVariant inserts a new variant row
func (r *CatalogRepository) CreateVariant(variant *models.ProductVariant) error {
	if variant.ID == uuid.Nil {
		variant.ID = uuid.New()
	}
	variant.CreatedAt = time.Now()
	variant.UpdatedAt = time.Now()
	return r.db.Create(variant).Error
}

// UpdateVariant saves all columns of an existing variant row
func (r *CatalogRepository) UpdateVariant(variant *models.ProductVariant) error {
	variant.UpdatedAt = time.Now()
	return r.db.Model(variant).Select("*").Omit("id", "created_at").Updates(variant).Error
}

// RetireVariants flips is_active off for the given variants of a product.
// Rows are never deleted: retired variants stay joinable from historical
// order lines.
func (r *CatalogRepository) RetireVariants(productID uuid.UUID, variantIDs []uuid.UUID) error {
	if len(variantIDs) == 0 {
		return nil
	}
	return r.db.Model(&models.ProductVariant{}).
		Where("product_id = ? AND id IN ?", productID, variantIDs).
		Updates(map[string]interface{}{
			"is_active":  false,
			"updated_at": time.Now(),
		}).Error
}

// Stock operations

// DecrementProductStock atomically decrements a product's own stock. The
// guard keeps the quantity from going negative; when it would, no row
// matches and ErrInsufficientStock is returned.
func (r *CatalogRepository) DecrementProductStock(tenantID string, productID uuid.UUID, quantity int) error {
	result := r.db.Model(&models.Product{}).
		Where("tenant_id = ? AND id = ? AND stock_quantity >= ?", tenantID, productID, quantity).
		Updates(map[string]interface{}{
			"stock_quantity": gorm.Expr("stock_quantity - ?", quantity),
			"updated_at":     time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("product %s: %w", productID, ErrInsufficientStock)
	}

	r.invalidateProductCaches(context.Background(), tenantID, productID)
	return nil
}

// DecrementVariantStock atomically decrements a variant's stock with the
// same non-negative guard.
func (r *CatalogRepository) DecrementVariantStock(tenantID string, variantID uuid.UUID, quantity int) error {
	result := r.db.Model(&models.ProductVariant{}).
		Where("id = ? AND stock_quantity >= ?", variantID, quantity).
		Where("product_id IN (?)", r.tenantProductIDs(tenantID)).
		Updates(map[string]interface{}{
			"stock_quantity": gorm.Expr("stock_quantity - ?", quantity),
			"updated_at":     time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("variant %s: %w", variantID, ErrInsufficientStock)
	}

	if r.cache != nil {
		_ = r.cache.DeletePattern(context.Background(), fmt.Sprintf("variants:%s:*", tenantID))
	}
	return nil
}

// Price operations

// ListRepriceableProducts selects the non-deleted products with a non-null
// base price that match the optional type and id filters.
func (r *CatalogRepository) ListRepriceableProducts(tenantID string, productType *models.ProductType, productIDs []uuid.UUID) ([]models.Product, error) {
	query := r.db.Where("tenant_id = ? AND price IS NOT NULL", tenantID)
	if productType != nil {
		query = query.Where("type = ?", *productType)
	}
	if len(productIDs) > 0 {
		query = query.Where("id IN ?", productIDs)
	}

	var products []models.Product
	if err := query.Order("created_at ASC").Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// UpdateProductPrice writes a new base price
func (r *CatalogRepository) UpdateProductPrice(tenantID string, productID uuid.UUID, newPrice decimal.Decimal) error {
	result := r.db.Model(&models.Product{}).
		Where("tenant_id = ? AND id = ?", tenantID, productID).
		Updates(map[string]interface{}{
			"price":      newPrice,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	r.invalidateProductCaches(context.Background(), tenantID, productID)
	return nil
}

// AppendPriceHistory inserts one immutable audit row
func (r *CatalogRepository) AppendPriceHistory(entry *models.PriceHistory) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	entry.CreatedAt = time.Now()
	return r.db.Create(entry).Error
}

// ListPriceHistory returns a product's audit rows in creation order
func (r *CatalogRepository) ListPriceHistory(tenantID string, productID uuid.UUID, page, limit int) ([]models.PriceHistory, int64, error) {
	var entries []models.PriceHistory
	var total int64

	query := r.db.Model(&models.PriceHistory{}).
		Where("tenant_id = ? AND product_id = ?", tenantID, productID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := query.Order("created_at ASC").Offset(offset).Limit(limit).Find(&entries).Error; err != nil {
		return nil, 0, err
	}

	return entries, total, nil
}

// Brand operations (read-only)

// GetBrandByID retrieves a brand with caching
func (r *CatalogRepository) GetBrandByID(tenantID string, brandID uuid.UUID) (*models.Brand, error) {
	ctx := context.Background()
	cacheKey := fmt.Sprintf("brand:%s:%s", tenantID, brandID.String())

	if r.redis != nil {
		val, err := r.redis.Get(ctx, cacheKey).Result()
		if err == nil {
			var brand models.Brand
			if err := json.Unmarshal([]byte(val), &brand); err == nil {
				return &brand, nil
			}
		}
	}

	var brand models.Brand
	if err := r.db.Where("tenant_id = ? AND id = ?", tenantID, brandID).First(&brand).Error; err != nil {
		return nil, err
	}

	if r.redis != nil {
		data, err := json.Marshal(brand)
		if err == nil {
			r.redis.Set(ctx, cacheKey, data, BrandCacheTTL)
		}
	}

	return &brand, nil
}

// ListBrands returns the tenant's active brands
func (r *CatalogRepository) ListBrands(tenantID string) ([]models.Brand, error) {
	var brands []models.Brand
	err := r.db.Where("tenant_id = ? AND is_active = ?", tenantID, true).
		Order("name ASC").Find(&brands).Error
	if err != nil {
		return nil, err
	}
	return brands, nil
}

// GetBrandNames resolves brand display names for a set of ids in one query
func (r *CatalogRepository) GetBrandNames(tenantID string, brandIDs []uuid.UUID) (map[uuid.UUID]string, error) {
	names := make(map[uuid.UUID]string, len(brandIDs))
	if len(brandIDs) == 0 {
		return names, nil
	}

	var brands []models.Brand
	err := r.db.Select("id", "name").
		Where("tenant_id = ? AND id IN ?", tenantID, brandIDs).
		Find(&brands).Error
	if err != nil {
		return nil, err
	}

	for _, b := range brands {
		names[b.ID] = b.Name
	}
	return names, nil
}

// generateSlug converts a product name into a URL-safe slug
func generateSlug(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	var b strings.Builder
	lastDash := false
	for _, r := range slug {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash && b.Len() > 0 {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
