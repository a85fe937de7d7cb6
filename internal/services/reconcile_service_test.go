package services

import (
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"catalog-service/internal/models"
)

const testTenant = "tenant-a"

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func strPtr(s string) *string { return &s }

func TestReconcileVariants(t *testing.T) {
	productID := uuid.New()
	keepID := uuid.New()
	dropID := uuid.New()

	existing := []models.ProductVariant{
		{ID: keepID, ProductID: productID, SKU: "SNR-13", Size: strPtr(`13"`), IsActive: true},
		{ID: dropID, ProductID: productID, SKU: "SNR-14", Size: strPtr(`14"`), IsActive: true},
	}

	repo := new(MockCatalogRepository)
	repo.On("GetProductByID", testTenant, productID, false).Return(&models.Product{ID: productID, Name: "Snare"}, nil)
	repo.On("GetVariants", testTenant, productID, false).Return(existing, nil)
	repo.On("WithTransaction", mock.Anything).Return(nil)
	repo.On("RetireVariants", productID, []uuid.UUID{dropID}).Return(nil)
	repo.On("UpdateVariant", mock.MatchedBy(func(v *models.ProductVariant) bool {
		return v.ID == keepID && v.IsActive && v.SKU == "SNR-13B" && v.VariantKey != ""
	})).Return(nil)
	repo.On("CreateVariant", mock.MatchedBy(func(v *models.ProductVariant) bool {
		return v.ProductID == productID && v.SKU == "SNR-15" && v.IsActive && v.VariantKey != ""
	})).Return(nil)
	repo.On("UpdateProductFields", testTenant, productID, mock.Anything).Return(nil)
	repo.On("GetVariants", testTenant, productID, true).Return([]models.ProductVariant{
		{ID: keepID, SKU: "SNR-13B", IsActive: true},
		{ProductID: productID, SKU: "SNR-15", IsActive: true},
	}, nil)

	svc := NewReconcileService(repo, testLogger())
	live, retired, err := svc.ReconcileVariants(testTenant, productID, &models.ReconcileVariantsRequest{
		Variants: []models.VariantDescriptor{
			{ID: &keepID, SKU: "SNR-13B", Size: strPtr(`13"`)},
			{SKU: "SNR-15", Size: strPtr(`15"`)},
		},
	})

	require.NoError(t, err)
	assert.Len(t, live, 2)
	assert.Equal(t, []uuid.UUID{dropID}, retired)
	repo.AssertExpectations(t)
}

func TestReconcileVariantsEmptySubmissionRetiresAll(t *testing.T) {
	productID := uuid.New()
	v1 := uuid.New()
	v2 := uuid.New()

	repo := new(MockCatalogRepository)
	repo.On("GetProductByID", testTenant, productID, false).Return(&models.Product{ID: productID}, nil)
	repo.On("GetVariants", testTenant, productID, false).Return([]models.ProductVariant{
		{ID: v1, IsActive: true},
		{ID: v2, IsActive: true},
	}, nil)
	repo.On("WithTransaction", mock.Anything).Return(nil)
	repo.On("RetireVariants", productID, []uuid.UUID{v1, v2}).Return(nil)
	repo.On("UpdateProductFields", testTenant, productID, mock.Anything).Return(nil)
	repo.On("GetVariants", testTenant, productID, true).Return([]models.ProductVariant{}, nil)

	svc := NewReconcileService(repo, testLogger())
	live, retired, err := svc.ReconcileVariants(testTenant, productID, &models.ReconcileVariantsRequest{})

	require.NoError(t, err)
	assert.Empty(t, live)
	assert.Equal(t, []uuid.UUID{v1, v2}, retired)
	repo.AssertNotCalled(t, "CreateVariant", mock.Anything)
}

func TestReconcileVariantsAlreadyRetiredStayRetired(t *testing.T) {
	productID := uuid.New()
	retiredID := uuid.New()

	repo := new(MockCatalogRepository)
	repo.On("GetProductByID", testTenant, productID, false).Return(&models.Product{ID: productID}, nil)
	repo.On("GetVariants", testTenant, productID, false).Return([]models.ProductVariant{
		{ID: retiredID, IsActive: false},
	}, nil)
	repo.On("WithTransaction", mock.Anything).Return(nil)
	// A variant retired by an earlier call is not re-reported as retired.
	repo.On("RetireVariants", productID, []uuid.UUID{}).Return(nil)
	repo.On("UpdateProductFields", testTenant, productID, mock.Anything).Return(nil)
	repo.On("GetVariants", testTenant, productID, true).Return([]models.ProductVariant{}, nil)

	svc := NewReconcileService(repo, testLogger())
	_, retired, err := svc.ReconcileVariants(testTenant, productID, &models.ReconcileVariantsRequest{})

	require.NoError(t, err)
	assert.Empty(t, retired)
	repo.AssertExpectations(t)
}

func TestReconcileVariantsResurrectsRetiredByID(t *testing.T) {
	productID := uuid.New()
	retiredID := uuid.New()

	repo := new(MockCatalogRepository)
	repo.On("GetProductByID", testTenant, productID, false).Return(&models.Product{ID: productID}, nil)
	repo.On("GetVariants", testTenant, productID, false).Return([]models.ProductVariant{
		{ID: retiredID, SKU: "CYM-20", IsActive: false},
	}, nil)
	repo.On("WithTransaction", mock.Anything).Return(nil)
	repo.On("RetireVariants", productID, []uuid.UUID{}).Return(nil)
	repo.On("UpdateVariant", mock.MatchedBy(func(v *models.ProductVariant) bool {
		return v.ID == retiredID && v.IsActive
	})).Return(nil)
	repo.On("UpdateProductFields", testTenant, productID, mock.Anything).Return(nil)
	repo.On("GetVariants", testTenant, productID, true).Return([]models.ProductVariant{
		{ID: retiredID, SKU: "CYM-20", IsActive: true},
	}, nil)

	svc := NewReconcileService(repo, testLogger())
	live, retired, err := svc.ReconcileVariants(testTenant, productID, &models.ReconcileVariantsRequest{
		Variants: []models.VariantDescriptor{
			{ID: &retiredID, SKU: "CYM-20", Size: strPtr(`20"`)},
		},
	})

	require.NoError(t, err)
	require.Len(t, live, 1)
	assert.True(t, live[0].IsActive)
	assert.Empty(t, retired)
}

func TestReconcileVariantsRejectsUnknownID(t *testing.T) {
	productID := uuid.New()
	foreignID := uuid.New()

	repo := new(MockCatalogRepository)
	repo.On("GetProductByID", testTenant, productID, false).Return(&models.Product{ID: productID}, nil)
	repo.On("GetVariants", testTenant, productID, false).Return([]models.ProductVariant{}, nil)

	svc := NewReconcileService(repo, testLogger())
	_, _, err := svc.ReconcileVariants(testTenant, productID, &models.ReconcileVariantsRequest{
		Variants: []models.VariantDescriptor{
			{ID: &foreignID, SKU: "X-1"},
		},
	})

	assert.ErrorIs(t, err, ErrVariantNotOwned)
	repo.AssertNotCalled(t, "WithTransaction", mock.Anything)
}

func TestReconcileVariantsRejectsDuplicateConfiguration(t *testing.T) {
	productID := uuid.New()

	repo := new(MockCatalogRepository)
	repo.On("GetProductByID", testTenant, productID, false).Return(&models.Product{ID: productID}, nil)
	repo.On("GetVariants", testTenant, productID, false).Return([]models.ProductVariant{}, nil)

	svc := NewReconcileService(repo, testLogger())
	// Same configuration after normalization, despite surface differences.
	_, _, err := svc.ReconcileVariants(testTenant, productID, &models.ReconcileVariantsRequest{
		Variants: []models.VariantDescriptor{
			{SKU: "A-1", Size: strPtr(`14"`)},
			{SKU: "A-2", Size: strPtr(` 14" `)},
		},
	})

	assert.ErrorIs(t, err, ErrDuplicateVariantKey)
	repo.AssertNotCalled(t, "WithTransaction", mock.Anything)
}

func TestReconcileVariantsRejectsMissingSKU(t *testing.T) {
	productID := uuid.New()

	repo := new(MockCatalogRepository)
	repo.On("GetProductByID", testTenant, productID, false).Return(&models.Product{ID: productID}, nil)
	repo.On("GetVariants", testTenant, productID, false).Return([]models.ProductVariant{}, nil)

	svc := NewReconcileService(repo, testLogger())
	_, _, err := svc.ReconcileVariants(testTenant, productID, &models.ReconcileVariantsRequest{
		Variants: []models.VariantDescriptor{{Size: strPtr(`14"`)}},
	})

	assert.ErrorIs(t, err, ErrMissingSKU)
	repo.AssertNotCalled(t, "WithTransaction", mock.Anything)
}

func TestProductUpdateColumns(t *testing.T) {
	active := false
	req := &models.UpdateProductRequest{
		Name:     strPtr("Ride Cymbal"),
		IsActive: &active,
	}

	updates := ProductUpdateColumns(req)

	assert.Equal(t, map[string]interface{}{
		"name":      "Ride Cymbal",
		"is_active": false,
	}, updates)
	assert.Empty(t, ProductUpdateColumns(nil))
}
