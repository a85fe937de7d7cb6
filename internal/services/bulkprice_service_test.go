package services

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"catalog-service/internal/models"
)

func price(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

func decimalEq(v int64) interface{} {
	return mock.MatchedBy(func(d decimal.Decimal) bool {
		return d.Equal(decimal.NewFromInt(v))
	})
}

func TestBulkPriceUpdate(t *testing.T) {
	p1 := models.Product{ID: uuid.New(), Name: "Snare", Price: price(1000)}
	p2 := models.Product{ID: uuid.New(), Name: "Ride", Price: price(555)}

	repo := new(MockCatalogRepository)
	repo.On("ListRepriceableProducts", testTenant, (*models.ProductType)(nil), []uuid.UUID(nil)).
		Return([]models.Product{p1, p2}, nil)
	repo.On("WithTransaction", mock.Anything).Return(nil)
	repo.On("UpdateProductPrice", testTenant, p1.ID, decimalEq(1100)).Return(nil)
	// 555 * 1.10 = 610.5, rounded half away from zero to 611.
	repo.On("UpdateProductPrice", testTenant, p2.ID, decimalEq(611)).Return(nil)
	repo.On("AppendPriceHistory", mock.MatchedBy(func(h *models.PriceHistory) bool {
		return h.TenantID == testTenant && h.ChangePercent == 10 &&
			h.OldPrice.Equal(decimal.NewFromInt(1000)) && h.NewPrice.Equal(decimal.NewFromInt(1100))
	})).Return(nil)
	repo.On("AppendPriceHistory", mock.MatchedBy(func(h *models.PriceHistory) bool {
		return h.OldPrice.Equal(decimal.NewFromInt(555)) && h.NewPrice.Equal(decimal.NewFromInt(611))
	})).Return(nil)

	svc := NewBulkPriceService(repo, testLogger())
	resp, err := svc.BulkPriceUpdate(testTenant, &models.BulkPriceUpdateRequest{PercentChange: 10})

	require.NoError(t, err)
	assert.Equal(t, 2, resp.TotalCount)
	assert.Equal(t, 2, resp.UpdatedCount)
	assert.Equal(t, 0, resp.FailedCount)
	require.Len(t, resp.Results, 2)
	assert.True(t, resp.Results[0].Success)
	assert.True(t, resp.Results[1].Success)
	repo.AssertExpectations(t)
}

func TestBulkPriceUpdatePartialFailure(t *testing.T) {
	p1 := models.Product{ID: uuid.New(), Name: "Snare", Price: price(1000)}
	p2 := models.Product{ID: uuid.New(), Name: "Ride", Price: price(2000)}

	repo := new(MockCatalogRepository)
	repo.On("ListRepriceableProducts", testTenant, (*models.ProductType)(nil), []uuid.UUID(nil)).
		Return([]models.Product{p1, p2}, nil)
	repo.On("WithTransaction", mock.Anything).Return(nil)
	repo.On("UpdateProductPrice", testTenant, p1.ID, mock.Anything).Return(errors.New("deadlock"))
	repo.On("UpdateProductPrice", testTenant, p2.ID, decimalEq(1900)).Return(nil)
	repo.On("AppendPriceHistory", mock.MatchedBy(func(h *models.PriceHistory) bool {
		return h.ProductID == p2.ID && h.ChangePercent == -5
	})).Return(nil)

	svc := NewBulkPriceService(repo, testLogger())
	resp, err := svc.BulkPriceUpdate(testTenant, &models.BulkPriceUpdateRequest{PercentChange: -5})

	require.NoError(t, err)
	assert.Equal(t, 2, resp.TotalCount)
	assert.Equal(t, 1, resp.UpdatedCount)
	assert.Equal(t, 1, resp.FailedCount)

	require.Len(t, resp.Results, 2)
	require.NotNil(t, resp.Results[0].Error)
	assert.False(t, resp.Results[0].Success)
	assert.True(t, resp.Results[1].Success)
	// The failed product keeps its price and writes no history row.
	repo.AssertNumberOfCalls(t, "AppendPriceHistory", 1)
}

func TestBulkPriceUpdateClampsAtZero(t *testing.T) {
	p := models.Product{ID: uuid.New(), Name: "Sticks", Price: price(100)}

	repo := new(MockCatalogRepository)
	repo.On("ListRepriceableProducts", testTenant, (*models.ProductType)(nil), []uuid.UUID(nil)).
		Return([]models.Product{p}, nil)
	repo.On("WithTransaction", mock.Anything).Return(nil)
	repo.On("UpdateProductPrice", testTenant, p.ID, decimalEq(0)).Return(nil)
	repo.On("AppendPriceHistory", mock.Anything).Return(nil)

	svc := NewBulkPriceService(repo, testLogger())
	resp, err := svc.BulkPriceUpdate(testTenant, &models.BulkPriceUpdateRequest{PercentChange: -150})

	require.NoError(t, err)
	assert.Equal(t, 1, resp.UpdatedCount)
	repo.AssertExpectations(t)
}

func TestBulkPriceUpdateFiltersForwarded(t *testing.T) {
	instrument := models.ProductTypeInstrument
	ids := []uuid.UUID{uuid.New()}

	repo := new(MockCatalogRepository)
	repo.On("ListRepriceableProducts", testTenant, &instrument, ids).
		Return([]models.Product{}, nil)

	svc := NewBulkPriceService(repo, testLogger())
	resp, err := svc.BulkPriceUpdate(testTenant, &models.BulkPriceUpdateRequest{
		PercentChange: 3,
		Type:          &instrument,
		ProductIDs:    ids,
	})

	require.NoError(t, err)
	assert.Equal(t, 0, resp.TotalCount)
	repo.AssertExpectations(t)
}
