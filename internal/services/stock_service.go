package services

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"catalog-service/internal/models"
	"catalog-service/internal/repository"
)

// StockService decrements product and variant stock for confirmed orders.
type StockService struct {
	repo   repository.CatalogRepositoryInterface
	logger *logrus.Entry
}

func NewStockService(repo repository.CatalogRepositoryInterface, logger *logrus.Logger) *StockService {
	return &StockService{
		repo:   repo,
		logger: logger.WithField("component", "stock-service"),
	}
}

// DeductStock decrements stock for every line in one transaction. Lines with
// a variant id hit the variant row; the rest hit the product row. Any line
// short of stock aborts the whole batch with repository.ErrInsufficientStock,
// so an order never partially deducts.
func (s *StockService) DeductStock(tenantID string, req *models.StockDeductRequest) error {
	err := s.repo.WithTransaction(func(tx repository.CatalogRepositoryInterface) error {
		for i, line := range req.Lines {
			var err error
			if line.VariantID != nil {
				err = tx.DecrementVariantStock(tenantID, *line.VariantID, line.Quantity)
			} else {
				err = tx.DecrementProductStock(tenantID, line.ProductID, line.Quantity)
			}
			if err != nil {
				return fmt.Errorf("line %d (product %s): %w", i, line.ProductID, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.WithFields(logrus.Fields{
		"tenant_id": tenantID,
		"lines":     len(req.Lines),
	}).Info("Stock deducted")
	return nil
}
