package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"catalog-service/internal/models"
	"catalog-service/internal/repository"
)

func TestDeductStock(t *testing.T) {
	productID := uuid.New()
	variantProductID := uuid.New()
	variantID := uuid.New()

	repo := new(MockCatalogRepository)
	repo.On("WithTransaction", mock.Anything).Return(nil)
	repo.On("DecrementProductStock", testTenant, productID, 2).Return(nil)
	repo.On("DecrementVariantStock", testTenant, variantID, 1).Return(nil)

	svc := NewStockService(repo, testLogger())
	err := svc.DeductStock(testTenant, &models.StockDeductRequest{
		Lines: []models.StockDeductLine{
			{ProductID: productID, Quantity: 2},
			{ProductID: variantProductID, VariantID: &variantID, Quantity: 1},
		},
	})

	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestDeductStockInsufficientAbortsBatch(t *testing.T) {
	productID := uuid.New()
	otherID := uuid.New()

	repo := new(MockCatalogRepository)
	repo.On("WithTransaction", mock.Anything).Return(nil)
	repo.On("DecrementProductStock", testTenant, productID, 5).
		Return(repository.ErrInsufficientStock)

	svc := NewStockService(repo, testLogger())
	err := svc.DeductStock(testTenant, &models.StockDeductRequest{
		Lines: []models.StockDeductLine{
			{ProductID: productID, Quantity: 5},
			{ProductID: otherID, Quantity: 1},
		},
	})

	assert.ErrorIs(t, err, repository.ErrInsufficientStock)
	// The failing line aborts the transaction before later lines run.
	repo.AssertNotCalled(t, "DecrementProductStock", testTenant, otherID, 1)
}
