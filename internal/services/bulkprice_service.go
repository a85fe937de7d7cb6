package services

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"catalog-service/internal/models"
	"catalog-service/internal/repository"
)

// BulkPriceService applies percentage price changes across product
// selections, writing an audit row per change.
type BulkPriceService struct {
	repo   repository.CatalogRepositoryInterface
	logger *logrus.Entry
}

func NewBulkPriceService(repo repository.CatalogRepositoryInterface, logger *logrus.Logger) *BulkPriceService {
	return &BulkPriceService{
		repo:   repo,
		logger: logger.WithField("component", "bulkprice-service"),
	}
}

// BulkPriceUpdate reprices every active, priced product matching the request
// filter by the signed percentage. Each product is repriced in its own
// transaction together with its price history row, so one failing product
// does not roll back the others; failures are reported per item.
func (s *BulkPriceService) BulkPriceUpdate(tenantID string, req *models.BulkPriceUpdateRequest) (*models.BulkPriceUpdateResponse, error) {
	products, err := s.repo.ListRepriceableProducts(tenantID, req.Type, req.ProductIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to list products for repricing: %w", err)
	}

	factor := decimal.NewFromFloat(1 + req.PercentChange/100)

	resp := &models.BulkPriceUpdateResponse{
		Success:    true,
		TotalCount: len(products),
		Results:    make([]models.BulkPriceResultItem, 0, len(products)),
	}

	for i := range products {
		p := &products[i]
		oldPrice := *p.Price
		newPrice := oldPrice.Mul(factor).Round(0)
		if newPrice.IsNegative() {
			newPrice = decimal.Zero
		}

		err := s.repo.WithTransaction(func(tx repository.CatalogRepositoryInterface) error {
			if err := tx.UpdateProductPrice(tenantID, p.ID, newPrice); err != nil {
				return err
			}
			history := &models.PriceHistory{
				TenantID:      tenantID,
				ProductID:     p.ID,
				OldPrice:      oldPrice,
				NewPrice:      newPrice,
				ChangePercent: req.PercentChange,
				Reason:        req.Reason,
			}
			return tx.AppendPriceHistory(history)
		})

		item := models.BulkPriceResultItem{ProductID: p.ID}
		if err != nil {
			s.logger.WithFields(logrus.Fields{
				"tenant_id":  tenantID,
				"product_id": p.ID,
			}).WithError(err).Error("Failed to reprice product")
			item.Error = &models.Error{Code: "PRICE_UPDATE_FAILED", Message: err.Error()}
			resp.FailedCount++
		} else {
			item.Success = true
			item.OldPrice = &oldPrice
			item.NewPrice = &newPrice
			resp.UpdatedCount++
		}
		resp.Results = append(resp.Results, item)
	}

	s.logger.WithFields(logrus.Fields{
		"tenant_id":      tenantID,
		"percent_change": req.PercentChange,
		"total":          resp.TotalCount,
		"updated":        resp.UpdatedCount,
		"failed":         resp.FailedCount,
	}).Info("Bulk price update finished")

	return resp, nil
}
