package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"catalog-service/internal/middleware"
	"catalog-service/internal/models"
	"catalog-service/internal/pricing"
	"catalog-service/internal/repository"
	"catalog-service/internal/selection"
)

// StorefrontHandler serves the public storefront API: product browsing, the
// progressive variant selector and effective price resolution. No auth, only
// tenant context.
type StorefrontHandler struct {
	repo repository.CatalogRepositoryInterface
}

func NewStorefrontHandler(repo repository.CatalogRepositoryInterface) *StorefrontHandler {
	return &StorefrontHandler{repo: repo}
}

// SelectionData is the selector state returned to the storefront after each
// interaction.
type SelectionData struct {
	State           selection.State        `json:"state"`
	Levels          []selection.Level      `json:"levels"`
	ResolvedVariant *selection.PoolVariant `json:"resolvedVariant,omitempty"`
	PriceRange      selection.PriceRange   `json:"priceRange"`
	AllOutOfStock   bool                   `json:"allOutOfStock"`
}

// SelectionResponse wraps SelectionData in the standard envelope.
type SelectionResponse struct {
	Success bool          `json:"success"`
	Data    SelectionData `json:"data"`
}

// PoolData is the available pool for a product: live, in-stock variants
// projected onto the selectable dimensions.
type PoolData struct {
	Pool          []selection.PoolVariant `json:"pool"`
	AllOutOfStock bool                    `json:"allOutOfStock"`
}

// PoolResponse wraps PoolData in the standard envelope.
type PoolResponse struct {
	Success bool     `json:"success"`
	Data    PoolData `json:"data"`
}

// GetProducts lists active products for public browsing
func (h *StorefrontHandler) GetProducts(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)

	req := parseListRequest(c)
	active := true
	req.IsActive = &active

	products, total, err := h.repo.ListProducts(tenantID, req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "FETCH_FAILED",
				Message: "Failed to retrieve products",
			},
		})
		return
	}

	c.JSON(http.StatusOK, models.ProductListResponse{
		Success:    true,
		Data:       products,
		Pagination: paginationFor(req.Page, req.Limit, total),
	})
}

// GetProduct retrieves a single active product
func (h *StorefrontHandler) GetProduct(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)

	productID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	product, err := h.repo.GetProductByID(tenantID, productID, true)
	if err != nil || !product.IsActive {
		productNotFound(c)
		return
	}

	c.JSON(http.StatusOK, models.ProductResponse{
		Success: true,
		Data:    product,
	})
}

// GetAvailablePool returns the product's live, in-stock variants projected
// onto the selectable dimensions, with effective unit prices
func (h *StorefrontHandler) GetAvailablePool(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)

	productID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	product, err := h.repo.GetProductByID(tenantID, productID, false)
	if err != nil || !product.IsActive {
		productNotFound(c)
		return
	}

	pool, allOut, err := h.buildPool(tenantID, product, 1, time.Now())
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "FETCH_FAILED",
				Message: "Failed to build variant pool",
			},
		})
		return
	}

	c.JSON(http.StatusOK, PoolResponse{
		Success: true,
		Data: PoolData{
			Pool:          pool,
			AllOutOfStock: allOut,
		},
	})
}

// Select runs the progressive selector against the product's available pool.
// Variant-less products bypass the engine and answer with the base price.
func (h *StorefrontHandler) Select(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)

	productID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req models.SelectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validationError(c, err)
		return
	}

	quantity := 1
	if req.Quantity != nil && *req.Quantity > 0 {
		quantity = *req.Quantity
	}

	product, err := h.repo.GetProductByID(tenantID, productID, false)
	if err != nil || !product.IsActive {
		productNotFound(c)
		return
	}

	now := time.Now()
	pool, allOut, err := h.buildPool(tenantID, product, quantity, now)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "SELECTION_FAILED",
				Message: "Failed to build variant pool",
			},
		})
		return
	}

	// Products without variants skip the selector entirely.
	if pool == nil && !allOut {
		data := SelectionData{AllOutOfStock: !product.InStock()}
		if price, perr := pricing.EffectiveUnitPrice(product, nil, quantity, now); perr == nil {
			data.PriceRange = selection.PriceRange{Min: price, Max: price}
		}
		c.JSON(http.StatusOK, SelectionResponse{Success: true, Data: data})
		return
	}

	result := selection.Reduce(pool, selection.State{
		Brand:    req.Brand,
		Size:     req.Size,
		Model:    req.Model,
		Material: req.Material,
	})

	c.JSON(http.StatusOK, SelectionResponse{
		Success: true,
		Data: SelectionData{
			State:           result.State,
			Levels:          result.Levels,
			ResolvedVariant: result.Resolved,
			PriceRange:      result.PriceRange,
			AllOutOfStock:   allOut,
		},
	})
}

// GetEffectivePrice resolves the unit price for one configuration at the
// current time and quantity
func (h *StorefrontHandler) GetEffectivePrice(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)

	productID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	quantity, _ := strconv.Atoi(c.DefaultQuery("quantity", "1"))
	if quantity < 1 {
		quantity = 1
	}

	product, err := h.repo.GetProductByID(tenantID, productID, false)
	if err != nil || !product.IsActive {
		productNotFound(c)
		return
	}

	var variant *models.ProductVariant
	if variantIDStr := c.Query("variantId"); variantIDStr != "" {
		variantID, err := uuid.Parse(variantIDStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Success: false,
				Error: models.Error{
					Code:    "INVALID_ID",
					Message: "Invalid variantId format",
				},
			})
			return
		}
		variant, err = h.repo.GetVariantByID(tenantID, variantID)
		if err != nil || variant.ProductID != productID || !variant.IsActive {
			c.JSON(http.StatusNotFound, models.ErrorResponse{
				Success: false,
				Error: models.Error{
					Code:    "NOT_FOUND",
					Message: "Variant not found",
				},
			})
			return
		}
	}

	price, err := pricing.EffectiveUnitPrice(product, variant, quantity, time.Now())
	if err != nil {
		if errors.Is(err, pricing.ErrNoPrice) {
			c.JSON(http.StatusUnprocessableEntity, models.ErrorResponse{
				Success: false,
				Error: models.Error{
					Code:    "NO_PRICE",
					Message: "No price configured for this configuration",
				},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "PRICE_RESOLUTION_FAILED",
				Message: "Failed to resolve price",
			},
		})
		return
	}

	c.JSON(http.StatusOK, models.EffectivePriceResponse{
		Success: true,
		Data: models.EffectivePriceData{
			Price:    price,
			Quantity: quantity,
		},
	})
}

// buildPool loads the product's live variants and projects the in-stock
// ones onto the selectable dimensions with precomputed effective prices.
//
// Returns (nil, false, nil) for a variant-less product and (empty, true,
// nil) when every live variant is out of stock.
func (h *StorefrontHandler) buildPool(tenantID string, product *models.Product, quantity int, now time.Time) ([]selection.PoolVariant, bool, error) {
	variants, err := h.repo.GetVariants(tenantID, product.ID, true)
	if err != nil {
		return nil, false, err
	}
	if len(variants) == 0 {
		return nil, false, nil
	}

	brandIDs := make([]uuid.UUID, 0, len(variants))
	seen := make(map[uuid.UUID]struct{})
	for _, v := range variants {
		if v.BrandID == nil {
			continue
		}
		if _, ok := seen[*v.BrandID]; ok {
			continue
		}
		seen[*v.BrandID] = struct{}{}
		brandIDs = append(brandIDs, *v.BrandID)
	}

	brandNames := map[uuid.UUID]string{}
	if len(brandIDs) > 0 {
		brandNames, err = h.repo.GetBrandNames(tenantID, brandIDs)
		if err != nil {
			return nil, false, err
		}
	}

	pool := make([]selection.PoolVariant, 0, len(variants))
	for i := range variants {
		v := &variants[i]
		if v.StockQuantity <= 0 {
			continue
		}

		price, perr := pricing.EffectiveUnitPrice(product, v, quantity, now)
		if perr != nil {
			// Unpriced configurations are not sellable.
			continue
		}

		values := make(map[selection.Dimension]string)
		if v.BrandID != nil {
			if name, ok := brandNames[*v.BrandID]; ok {
				values[selection.DimensionBrand] = name
			}
		}
		if v.Size != nil && *v.Size != "" {
			values[selection.DimensionSize] = *v.Size
		}
		if v.Model != nil && *v.Model != "" {
			values[selection.DimensionModel] = *v.Model
		}
		if v.Material != nil && *v.Material != "" {
			values[selection.DimensionMaterial] = *v.Material
		}

		pool = append(pool, selection.PoolVariant{
			VariantID: v.ID,
			Values:    values,
			Price:     price,
		})
	}

	return pool, len(pool) == 0, nil
}
