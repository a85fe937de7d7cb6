package variantkey

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"lowercases", "Maple", "maple"},
		{"strips diacritics", "Érable Flammé", "erable-flamme"},
		{"collapses punctuation runs", `14" x 6.5"`, "14-x-6-5"},
		{"trims separators", "  walnut  ", "walnut"},
		{"empty maps to sentinel", "", EmptyToken},
		{"only punctuation maps to sentinel", `--- "" ---`, EmptyToken},
		{"mixed case with inner spaces", "Vintage  Bronze B20", "vintage-bronze-b20"},
		{"digits preserved", "12", "12"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.input))
		})
	}
}

func TestNormalizePtr(t *testing.T) {
	assert.Equal(t, EmptyToken, NormalizePtr(nil))

	v := "Brass"
	assert.Equal(t, "brass", NormalizePtr(&v))
}

func TestComputeIsDeterministic(t *testing.T) {
	productID := uuid.MustParse("11111111-1111-1111-1111-111111111111")
	brandID := uuid.MustParse("22222222-2222-2222-2222-222222222222")

	size1, size2 := `14"`, ` 14` // same size, different client formatting
	model1, model2 := "Custom Dark", "CUSTOM  DARK"
	material := "B20 Bronze"

	key1 := Compute(productID, &brandID, &size1, &model1, &material)
	key2 := Compute(productID, &brandID, &size2, &model2, &material)
	assert.Equal(t, key1, key2)
	assert.Equal(t,
		"11111111-1111-1111-1111-111111111111|22222222-2222-2222-2222-222222222222|14|custom-dark|b20-bronze",
		key1)
}

func TestComputeEmptyDimensions(t *testing.T) {
	productID := uuid.MustParse("11111111-1111-1111-1111-111111111111")

	key := Compute(productID, nil, nil, nil, nil)
	assert.Equal(t, "11111111-1111-1111-1111-111111111111|-|-|-|-", key)
}

func TestComputeDistinguishesConfigurations(t *testing.T) {
	productID := uuid.New()
	brandID := uuid.New()
	sizeA, sizeB := `12"`, `14"`

	keyA := Compute(productID, &brandID, &sizeA, nil, nil)
	keyB := Compute(productID, &brandID, &sizeB, nil, nil)
	assert.NotEqual(t, keyA, keyB)
}
