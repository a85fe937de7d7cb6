package services

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"catalog-service/internal/models"
	"catalog-service/internal/repository"
)

// MockCatalogRepository is a testify mock of the catalog repository.
type MockCatalogRepository struct {
	mock.Mock
}

var _ repository.CatalogRepositoryInterface = (*MockCatalogRepository)(nil)

// WithTransaction runs fn against the mock itself unless an error was
// stubbed, so transactional calls can be asserted like any other.
func (m *MockCatalogRepository) WithTransaction(fn func(txRepo repository.CatalogRepositoryInterface) error) error {
	args := m.Called(fn)
	if err := args.Error(0); err != nil {
		return err
	}
	return fn(m)
}

func (m *MockCatalogRepository) CreateProduct(tenantID string, product *models.Product) error {
	args := m.Called(tenantID, product)
	return args.Error(0)
}

func (m *MockCatalogRepository) GetProductByID(tenantID string, productID uuid.UUID, includeVariants bool) (*models.Product, error) {
	args := m.Called(tenantID, productID, includeVariants)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockCatalogRepository) ListProducts(tenantID string, req *models.ListProductsRequest) ([]models.Product, int64, error) {
	args := m.Called(tenantID, req)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]models.Product), args.Get(1).(int64), args.Error(2)
}

func (m *MockCatalogRepository) UpdateProductFields(tenantID string, productID uuid.UUID, updates map[string]interface{}) error {
	args := m.Called(tenantID, productID, updates)
	return args.Error(0)
}

func (m *MockCatalogRepository) DeleteProduct(tenantID string, productID uuid.UUID) error {
	args := m.Called(tenantID, productID)
	return args.Error(0)
}

func (m *MockCatalogRepository) GetVariants(tenantID string, productID uuid.UUID, onlyActive bool) ([]models.ProductVariant, error) {
	args := m.Called(tenantID, productID, onlyActive)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ProductVariant), args.Error(1)
}

func (m *MockCatalogRepository) GetVariantByID(tenantID string, variantID uuid.UUID) (*models.ProductVariant, error) {
	args := m.Called(tenantID, variantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ProductVariant), args.Error(1)
}

func (m *MockCatalogRepository) CreateVariant(variant *models.ProductVariant) error {
	args := m.Called(variant)
	return args.Error(0)
}

func (m *MockCatalogRepository) UpdateVariant(variant *models.ProductVariant) error {
	args := m.Called(variant)
	return args.Error(0)
}

func (m *MockCatalogRepository) RetireVariants(productID uuid.UUID, variantIDs []uuid.UUID) error {
	args := m.Called(productID, variantIDs)
	return args.Error(0)
}

func (m *MockCatalogRepository) DecrementProductStock(tenantID string, productID uuid.UUID, quantity int) error {
	args := m.Called(tenantID, productID, quantity)
	return args.Error(0)
}

func (m *MockCatalogRepository) DecrementVariantStock(tenantID string, variantID uuid.UUID, quantity int) error {
	args := m.Called(tenantID, variantID, quantity)
	return args.Error(0)
}

func (m *MockCatalogRepository) ListRepriceableProducts(tenantID string, productType *models.ProductType, productIDs []uuid.UUID) ([]models.Product, error) {
	args := m.Called(tenantID, productType, productIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Product), args.Error(1)
}

func (m *MockCatalogRepository) UpdateProductPrice(tenantID string, productID uuid.UUID, newPrice decimal.Decimal) error {
	args := m.Called(tenantID, productID, newPrice)
	return args.Error(0)
}

func (m *MockCatalogRepository) AppendPriceHistory(entry *models.PriceHistory) error {
	args := m.Called(entry)
	return args.Error(0)
}

func (m *MockCatalogRepository) ListPriceHistory(tenantID string, productID uuid.UUID, page, limit int) ([]models.PriceHistory, int64, error) {
	args := m.Called(tenantID, productID, page, limit)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]models.PriceHistory), args.Get(1).(int64), args.Error(2)
}

func (m *MockCatalogRepository) GetBrandByID(tenantID string, brandID uuid.UUID) (*models.Brand, error) {
	args := m.Called(tenantID, brandID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Brand), args.Error(1)
}

func (m *MockCatalogRepository) ListBrands(tenantID string) ([]models.Brand, error) {
	args := m.Called(tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Brand), args.Error(1)
}

func (m *MockCatalogRepository) GetBrandNames(tenantID string, brandIDs []uuid.UUID) (map[uuid.UUID]string, error) {
	args := m.Called(tenantID, brandIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[uuid.UUID]string), args.Error(1)
}
