package repository

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockRepository(t *testing.T) (*CatalogRepository, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	return NewCatalogRepository(db, nil), mock
}

func TestGetBrandNames(t *testing.T) {
	repo, mock := newMockRepository(t)

	brandA := uuid.New()
	brandB := uuid.New()

	mock.ExpectQuery(`SELECT "id","name" FROM "brands"`).
		WithArgs("tenant-a", brandA, brandB).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).
			AddRow(brandA.String(), "Zildjian").
			AddRow(brandB.String(), "Sabian"))

	names, err := repo.GetBrandNames("tenant-a", []uuid.UUID{brandA, brandB})
	require.NoError(t, err)
	assert.Equal(t, "Zildjian", names[brandA])
	assert.Equal(t, "Sabian", names[brandB])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetBrandNamesEmptyInput(t *testing.T) {
	repo, mock := newMockRepository(t)

	// No ids means no query at all.
	names, err := repo.GetBrandNames("tenant-a", nil)
	require.NoError(t, err)
	assert.Empty(t, names)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetVariantByIDNotFound(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery(`SELECT \* FROM "product_variants"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.GetVariantByID("tenant-a", uuid.New())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListRepriceableProductsFiltersNullPrices(t *testing.T) {
	repo, mock := newMockRepository(t)

	productID := uuid.New()

	mock.ExpectQuery(`SELECT \* FROM "products" WHERE \(tenant_id = \$1 AND price IS NOT NULL\)`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "tenant_id", "name", "price"}).
			AddRow(productID.String(), "tenant-a", "Snare", "1000"))

	products, err := repo.ListRepriceableProducts("tenant-a", nil, nil)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, productID, products[0].ID)
	require.NotNil(t, products[0].Price)
	assert.Equal(t, "1000", products[0].Price.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRetireVariantsEmptyListIsNoOp(t *testing.T) {
	repo, mock := newMockRepository(t)

	err := repo.RetireVariants(uuid.New(), nil)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGenerateSlug(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Pearl Masters Maple", "pearl-masters-maple"},
		{`14" Snare (Brass)`, "14-snare-brass"},
		{"  Ride   Cymbal  ", "ride-cymbal"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, generateSlug(tt.name))
	}
}
