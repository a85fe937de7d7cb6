package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"catalog-service/internal/models"
	"catalog-service/internal/repository"
	"catalog-service/internal/variantkey"
)

var (
	// ErrMissingSKU rejects a variant descriptor without a sku.
	ErrMissingSKU = errors.New("variant sku is required")
	// ErrVariantNotOwned rejects a descriptor naming an id that does not
	// belong to the product being reconciled.
	ErrVariantNotOwned = errors.New("variant id does not belong to product")
	// ErrDuplicateVariantKey rejects a submission in which two descriptors
	// normalize to the same configuration.
	ErrDuplicateVariantKey = errors.New("duplicate variant configuration in submission")
)

// ReconcileService synchronizes a product's stored variant set with an
// administrator-submitted desired set, atomically with the product's own
// scalar fields.
type ReconcileService struct {
	repo   repository.CatalogRepositoryInterface
	logger *logrus.Entry
}

func NewReconcileService(repo repository.CatalogRepositoryInterface, logger *logrus.Logger) *ReconcileService {
	return &ReconcileService{
		repo:   repo,
		logger: logger.WithField("component", "reconcile-service"),
	}
}

// ReconcileVariants applies the full desired variant list for a product.
//
// Every existing variant absent from the submission is retired in place
// (is_active=false, all other fields untouched); descriptors naming a known
// id update that row in place; the rest become new rows. All writes,
// including the product scalar updates, happen in one transaction, so a
// failure leaves the prior state fully intact.
//
// Returns the live variant set after the call and the ids retired by it.
func (s *ReconcileService) ReconcileVariants(tenantID string, productID uuid.UUID, req *models.ReconcileVariantsRequest) ([]models.ProductVariant, []uuid.UUID, error) {
	product, err := s.repo.GetProductByID(tenantID, productID, false)
	if err != nil {
		return nil, nil, err
	}

	existing, err := s.repo.GetVariants(tenantID, productID, false)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load existing variants: %w", err)
	}
	existingByID := make(map[uuid.UUID]*models.ProductVariant, len(existing))
	for i := range existing {
		existingByID[existing[i].ID] = &existing[i]
	}

	// Validate the whole submission before any transaction opens.
	submittedIDs := make(map[uuid.UUID]struct{}, len(req.Variants))
	seenKeys := make(map[string]struct{}, len(req.Variants))
	for i := range req.Variants {
		desc := &req.Variants[i]
		if desc.SKU == "" {
			return nil, nil, fmt.Errorf("variant %d: %w", i, ErrMissingSKU)
		}
		if desc.ID != nil {
			if _, ok := existingByID[*desc.ID]; !ok {
				return nil, nil, fmt.Errorf("variant %d (%s): %w", i, desc.ID, ErrVariantNotOwned)
			}
			submittedIDs[*desc.ID] = struct{}{}
		}
		key := variantkey.Compute(productID, desc.BrandID, desc.Size, desc.Model, desc.Material)
		if _, dup := seenKeys[key]; dup {
			return nil, nil, fmt.Errorf("variant %d (%s): %w", i, key, ErrDuplicateVariantKey)
		}
		seenKeys[key] = struct{}{}
	}

	// Live variants absent from the submission get retired, not removed.
	retired := make([]uuid.UUID, 0)
	for _, v := range existing {
		if !v.IsActive {
			continue
		}
		if _, ok := submittedIDs[v.ID]; !ok {
			retired = append(retired, v.ID)
		}
	}

	updates := ProductUpdateColumns(req.Product)

	err = s.repo.WithTransaction(func(tx repository.CatalogRepositoryInterface) error {
		if err := tx.RetireVariants(productID, retired); err != nil {
			return fmt.Errorf("failed to retire variants: %w", err)
		}

		for i := range req.Variants {
			desc := &req.Variants[i]
			key := variantkey.Compute(productID, desc.BrandID, desc.Size, desc.Model, desc.Material)

			if desc.ID != nil {
				row := existingByID[*desc.ID]
				row.BrandID = desc.BrandID
				row.Size = desc.Size
				row.Model = desc.Model
				row.Material = desc.Material
				row.SKU = desc.SKU
				row.VariantKey = key
				row.Price = desc.Price
				row.StockQuantity = desc.StockQuantity
				row.ImageURL = desc.ImageURL
				row.IsActive = true
				if err := tx.UpdateVariant(row); err != nil {
					return fmt.Errorf("failed to update variant %s: %w", row.ID, err)
				}
				continue
			}

			variant := &models.ProductVariant{
				ProductID:     productID,
				BrandID:       desc.BrandID,
				Size:          desc.Size,
				Model:         desc.Model,
				Material:      desc.Material,
				SKU:           desc.SKU,
				VariantKey:    key,
				Price:         desc.Price,
				StockQuantity: desc.StockQuantity,
				ImageURL:      desc.ImageURL,
				IsActive:      true,
			}
			if err := tx.CreateVariant(variant); err != nil {
				return fmt.Errorf("failed to create variant %s: %w", desc.SKU, err)
			}
		}

		// Always touch the product row so updated_at moves with the variant
		// set and the product caches invalidate together with it.
		if err := tx.UpdateProductFields(tenantID, productID, updates); err != nil {
			return fmt.Errorf("failed to update product fields: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"tenant_id":  tenantID,
		"product_id": productID,
		"product":    product.Name,
		"submitted":  len(req.Variants),
		"retired":    len(retired),
	}).Info("Variant set reconciled")

	live, err := s.repo.GetVariants(tenantID, productID, true)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load live variants: %w", err)
	}
	return live, retired, nil
}

// ProductUpdateColumns converts optional scalar product updates into a
// partial column map. Nil request fields are left untouched.
func ProductUpdateColumns(req *models.UpdateProductRequest) map[string]interface{} {
	updates := make(map[string]interface{})
	if req == nil {
		return updates
	}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Slug != nil {
		updates["slug"] = *req.Slug
	}
	if req.SKU != nil {
		updates["sku"] = *req.SKU
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Type != nil {
		updates["type"] = *req.Type
	}
	if req.RegisterTag != nil {
		updates["register_tag"] = *req.RegisterTag
	}
	if req.Price != nil {
		updates["price"] = *req.Price
	}
	if req.StockQuantity != nil {
		updates["stock_quantity"] = *req.StockQuantity
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if req.IsFeatured != nil {
		updates["is_featured"] = *req.IsFeatured
	}
	if req.DiscountPercent != nil {
		updates["discount_percent"] = *req.DiscountPercent
	}
	if req.DiscountStartDate != nil {
		updates["discount_start_date"] = *req.DiscountStartDate
	}
	if req.DiscountEndDate != nil {
		updates["discount_end_date"] = *req.DiscountEndDate
	}
	if req.MinQuantityDiscount != nil {
		updates["min_quantity_discount"] = *req.MinQuantityDiscount
	}
	if req.QuantityDiscountPercent != nil {
		updates["quantity_discount_percent"] = *req.QuantityDiscountPercent
	}
	if req.ImageURL != nil {
		updates["image_url"] = *req.ImageURL
	}
	return updates
}
