package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"catalog-service/internal/clients"
	"catalog-service/internal/events"
	"catalog-service/internal/middleware"
	"catalog-service/internal/models"
	"catalog-service/internal/repository"
	"catalog-service/internal/services"
)

// CatalogHandler serves the admin catalog API: product CRUD, variant
// reconciliation, price history, bulk repricing and stock deduction.
type CatalogHandler struct {
	repo             repository.CatalogRepositoryInterface
	reconcileService *services.ReconcileService
	bulkPriceService *services.BulkPriceService
	stockService     *services.StockService
	brandsClient     *clients.BrandsClient
	eventsPublisher  *events.Publisher
}

func NewCatalogHandler(
	repo repository.CatalogRepositoryInterface,
	reconcileService *services.ReconcileService,
	bulkPriceService *services.BulkPriceService,
	stockService *services.StockService,
	eventsPublisher *events.Publisher,
) *CatalogHandler {
	return &CatalogHandler{
		repo:             repo,
		reconcileService: reconcileService,
		bulkPriceService: bulkPriceService,
		stockService:     stockService,
		brandsClient:     clients.NewBrandsClient(),
		eventsPublisher:  eventsPublisher,
	}
}

// CreateProduct creates a new product
func (h *CatalogHandler) CreateProduct(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)
	userID := c.GetString("user_id")

	var req models.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validationError(c, err)
		return
	}

	product := &models.Product{
		Name:                    req.Name,
		Slug:                    req.Slug,
		SKU:                     req.SKU,
		Description:             req.Description,
		Type:                    req.Type,
		RegisterTag:             req.RegisterTag,
		Price:                   req.Price,
		IsActive:                true,
		DiscountPercent:         req.DiscountPercent,
		DiscountStartDate:       req.DiscountStartDate,
		DiscountEndDate:         req.DiscountEndDate,
		MinQuantityDiscount:     req.MinQuantityDiscount,
		QuantityDiscountPercent: req.QuantityDiscountPercent,
		ImageURL:                req.ImageURL,
	}
	if req.StockQuantity != nil {
		product.StockQuantity = *req.StockQuantity
	}
	if req.IsFeatured != nil {
		product.IsFeatured = *req.IsFeatured
	}
	if userID != "" {
		product.CreatedBy = stringPtr(userID)
		product.UpdatedBy = stringPtr(userID)
	}

	if err := h.repo.CreateProduct(tenantID, product); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "CREATION_FAILED",
				Message: "Failed to create product",
				Details: map[string]interface{}{"error": err.Error()},
			},
		})
		return
	}

	if h.eventsPublisher != nil {
		_ = h.eventsPublisher.PublishProductCreated(c.Request.Context(), product, tenantID)
	}

	c.JSON(http.StatusCreated, models.ProductResponse{
		Success: true,
		Data:    product,
		Message: stringPtr("Product created successfully"),
	})
}

// GetProducts retrieves products list with filtering and pagination
func (h *CatalogHandler) GetProducts(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)

	req := parseListRequest(c)

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

// GetProduct retrieves a single product by ID
func (h *CatalogHandler) GetProduct(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)

	productID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	includeVariants := c.DefaultQuery("includeVariants", "true") == "true"

	product, err := h.repo.GetProductByID(tenantID, productID, includeVariants)
	if err != nil {
		productNotFound(c)
		return
	}

	c.JSON(http.StatusOK, models.ProductResponse{
		Success: true,
		Data:    product,
	})
}

// UpdateProduct updates scalar product fields
func (h *CatalogHandler) UpdateProduct(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)

	productID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req models.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validationError(c, err)
		return
	}

	updates := services.ProductUpdateColumns(&req)
	if err := h.repo.UpdateProductFields(tenantID, productID, updates); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			productNotFound(c)
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "UPDATE_FAILED",
				Message: "Failed to update product",
			},
		})
		return
	}

	product, err := h.repo.GetProductByID(tenantID, productID, false)
	if err != nil {
		productNotFound(c)
		return
	}

	if h.eventsPublisher != nil {
		changed := make([]string, 0, len(updates))
		for field := range updates {
			changed = append(changed, field)
		}
		_ = h.eventsPublisher.PublishProductUpdated(c.Request.Context(), product, changed, tenantID)
	}

	c.JSON(http.StatusOK, models.ProductResponse{
		Success: true,
		Data:    product,
		Message: stringPtr("Product updated successfully"),
	})
}

// DeleteProduct soft deletes a product
func (h *CatalogHandler) DeleteProduct(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)

	productID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	product, err := h.repo.GetProductByID(tenantID, productID, false)
	if err != nil {
		productNotFound(c)
		return
	}

	if err := h.repo.DeleteProduct(tenantID, productID); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "DELETE_FAILED",
				Message: "Failed to delete product",
			},
		})
		return
	}

	if h.eventsPublisher != nil {
		_ = h.eventsPublisher.PublishProductDeleted(c.Request.Context(), product, tenantID)
	}

	c.JSON(http.StatusOK, models.SuccessResponse{
		Success: true,
		Message: stringPtr("Product deleted successfully"),
	})
}

// ReconcileVariants replaces a product's variant set with the submitted
// desired list: absent variants are retired, known ids updated in place,
// new descriptors created, all atomically with the product's own fields.
func (h *CatalogHandler) ReconcileVariants(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)

	productID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req models.ReconcileVariantsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validationError(c, err)
		return
	}

	live, retired, err := h.reconcileService.ReconcileVariants(tenantID, productID, &req)
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			productNotFound(c)
		case errors.Is(err, services.ErrMissingSKU),
			errors.Is(err, services.ErrVariantNotOwned),
			errors.Is(err, services.ErrDuplicateVariantKey):
			c.JSON(http.StatusUnprocessableEntity, models.ErrorResponse{
				Success: false,
				Error: models.Error{
					Code:    "RECONCILE_REJECTED",
					Message: err.Error(),
					Field:   "variants",
				},
			})
		default:
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{
				Success: false,
				Error: models.Error{
					Code:    "RECONCILE_FAILED",
					Message: "Failed to reconcile variants",
					Details: map[string]interface{}{"error": err.Error()},
				},
			})
		}
		return
	}

	if h.eventsPublisher != nil {
		if product, err := h.repo.GetProductByID(tenantID, productID, false); err == nil {
			_ = h.eventsPublisher.PublishVariantsReconciled(c.Request.Context(), product, len(live), retired, tenantID)
		}
	}

	c.JSON(http.StatusOK, models.ReconcileVariantsResponse{
		Success: true,
		Data:    live,
		Retired: retired,
	})
}

// GetVariants lists a product's variants; retired rows are included only on
// request
func (h *CatalogHandler) GetVariants(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)

	productID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	includeRetired := c.DefaultQuery("includeRetired", "false") == "true"

	variants, err := h.repo.GetVariants(tenantID, productID, !includeRetired)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "FETCH_FAILED",
				Message: "Failed to retrieve variants",
			},
		})
		return
	}

	c.JSON(http.StatusOK, models.VariantListResponse{
		Success: true,
		Data:    variants,
	})
}

// GetPriceHistory lists a product's price change audit trail, newest first
func (h *CatalogHandler) GetPriceHistory(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)

	productID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	page, limit := parsePagination(c)

	history, total, err := h.repo.ListPriceHistory(tenantID, productID, page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "FETCH_FAILED",
				Message: "Failed to retrieve price history",
			},
		})
		return
	}

	c.JSON(http.StatusOK, models.PriceHistoryListResponse{
		Success:    true,
		Data:       history,
		Pagination: paginationFor(page, limit, total),
	})
}

// BulkPriceUpdate applies a signed percentage change across the selected
// products, with per-product partial success
func (h *CatalogHandler) BulkPriceUpdate(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)

	var req models.BulkPriceUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validationError(c, err)
		return
	}

	resp, err := h.bulkPriceService.BulkPriceUpdate(tenantID, &req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "BULK_PRICE_FAILED",
				Message: "Failed to apply bulk price update",
				Details: map[string]interface{}{"error": err.Error()},
			},
		})
		return
	}

	if h.eventsPublisher != nil {
		for _, item := range resp.Results {
			if !item.Success {
				continue
			}
			if product, perr := h.repo.GetProductByID(tenantID, item.ProductID, false); perr == nil {
				_ = h.eventsPublisher.PublishPriceChanged(c.Request.Context(), product, *item.OldPrice, *item.NewPrice, tenantID)
			}
		}
	}

	c.JSON(http.StatusOK, resp)
}

// DeductStock decrements stock for a confirmed order's lines as one atomic
// batch; any line short of stock rejects the whole request
func (h *CatalogHandler) DeductStock(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)

	var req models.StockDeductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validationError(c, err)
		return
	}

	if err := h.stockService.DeductStock(tenantID, &req); err != nil {
		if errors.Is(err, repository.ErrInsufficientStock) {
			c.JSON(http.StatusConflict, models.ErrorResponse{
				Success: false,
				Error: models.Error{
					Code:    "INSUFFICIENT_STOCK",
					Message: err.Error(),
				},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "STOCK_DEDUCTION_FAILED",
				Message: "Failed to deduct stock",
				Details: map[string]interface{}{"error": err.Error()},
			},
		})
		return
	}

	c.JSON(http.StatusOK, models.SuccessResponse{
		Success: true,
		Message: stringPtr("Stock deducted successfully"),
	})
}

// GetBrands lists the tenant's brands
func (h *CatalogHandler) GetBrands(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)

	brands, err := h.repo.ListBrands(tenantID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "FETCH_FAILED",
				Message: "Failed to retrieve brands",
			},
		})
		return
	}

	c.JSON(http.StatusOK, models.BrandListResponse{
		Success: true,
		Data:    brands,
	})
}

// GetBrand retrieves a single brand
func (h *CatalogHandler) GetBrand(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)

	brandID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	brand, err := h.repo.GetBrandByID(tenantID, brandID)
	if err != nil {
		// Not synced locally yet; fall back to brands-service.
		if h.brandsClient != nil {
			if remote, rerr := h.brandsClient.GetBrandByID(tenantID, brandID.String()); rerr == nil {
				if id, perr := uuid.Parse(remote.ID); perr == nil {
					c.JSON(http.StatusOK, models.BrandResponse{
						Success: true,
						Data: &models.Brand{
							ID:         id,
							TenantID:   remote.TenantID,
							Slug:       remote.Slug,
							Name:       remote.Name,
							LogoURL:    remote.LogoURL,
							WebsiteURL: remote.WebsiteURL,
							IsActive:   remote.IsActive,
						},
					})
					return
				}
			}
		}
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "NOT_FOUND",
				Message: "Brand not found",
			},
		})
		return
	}

	c.JSON(http.StatusOK, models.BrandResponse{
		Success: true,
		Data:    brand,
	})
}

func parseListRequest(c *gin.Context) *models.ListProductsRequest {
	page, limit := parsePagination(c)

	req := &models.ListProductsRequest{
		Page:  page,
		Limit: limit,
	}

	if search := c.Query("search"); search != "" {
		req.Query = &search
	}
	if typ := c.Query("type"); typ != "" {
		pt := models.ProductType(typ)
		req.Type = &pt
	}
	if isActive := c.Query("isActive"); isActive != "" {
		active := isActive == "true"
		req.IsActive = &active
	}
	if isFeatured := c.Query("isFeatured"); isFeatured != "" {
		featured := isFeatured == "true"
		req.IsFeatured = &featured
	}

	return req
}

func parsePagination(c *gin.Context) (page, limit int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))

	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return page, limit
}

func paginationFor(page, limit int, total int64) *models.PaginationInfo {
	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return &models.PaginationInfo{
		Page:        page,
		Limit:       limit,
		Total:       total,
		TotalPages:  totalPages,
		HasNext:     page < totalPages,
		HasPrevious: page > 1,
	}
}

func parseIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "INVALID_ID",
				Message: "Invalid " + name + " format",
			},
		})
		return uuid.Nil, false
	}
	return id, true
}

func productNotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, models.ErrorResponse{
		Success: false,
		Error: models.Error{
			Code:    "NOT_FOUND",
			Message: "Product not found",
		},
	})
}

func validationError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, models.ErrorResponse{
		Success: false,
		Error: models.Error{
			Code:    "VALIDATION_ERROR",
			Message: err.Error(),
		},
	})
}

func stringPtr(s string) *string {
	return &s
}
