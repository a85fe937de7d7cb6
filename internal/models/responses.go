package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ErrorResponse struct {
	Success   bool   `json:"success"`
	Error     Error  `json:"error"`
	Timestamp string `json:"timestamp,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

type Error struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Field   string                 `json:"field,omitempty"`
	Details map[string]interface{} `json:"details,omitempty"`
}

type SuccessResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message *string     `json:"message,omitempty"`
}

type PaginationInfo struct {
	Page        int   `json:"page"`
	Limit       int   `json:"limit"`
	Total       int64 `json:"total"`
	TotalPages  int   `json:"totalPages"`
	HasNext     bool  `json:"hasNext"`
	HasPrevious bool  `json:"hasPrevious"`
}

type ProductResponse struct {
	Success bool     `json:"success"`
	Data    *Product `json:"data"`
	Message *string  `json:"message,omitempty"`
}

type ProductListResponse struct {
	Success    bool            `json:"success"`
	Data       []Product       `json:"data"`
	Pagination *PaginationInfo `json:"pagination"`
}

type VariantListResponse struct {
	Success bool             `json:"success"`
	Data    []ProductVariant `json:"data"`
}

type BrandListResponse struct {
	Success bool    `json:"success"`
	Data    []Brand `json:"data"`
}

type BrandResponse struct {
	Success bool   `json:"success"`
	Data    *Brand `json:"data"`
}

type PriceHistoryListResponse struct {
	Success    bool            `json:"success"`
	Data       []PriceHistory  `json:"data"`
	Pagination *PaginationInfo `json:"pagination"`
}

// ReconcileVariantsResponse reports the live set after reconciliation plus
// the ids retired by this call.
type ReconcileVariantsResponse struct {
	Success bool             `json:"success"`
	Data    []ProductVariant `json:"data"`
	Retired []uuid.UUID      `json:"retired"`
	Message *string          `json:"message,omitempty"`
}

// BulkPriceResultItem reports the outcome for a single product in a bulk
// price update.
type BulkPriceResultItem struct {
	ProductID uuid.UUID        `json:"productId"`
	Success   bool             `json:"success"`
	OldPrice  *decimal.Decimal `json:"oldPrice,omitempty"`
	NewPrice  *decimal.Decimal `json:"newPrice,omitempty"`
	Error     *Error           `json:"error,omitempty"`
}

// BulkPriceUpdateResponse follows the partial-success bulk pattern: one
// result per selected product, counts reflecting successes only.
type BulkPriceUpdateResponse struct {
	Success      bool                  `json:"success"`
	TotalCount   int                   `json:"totalCount"`
	UpdatedCount int                   `json:"updatedCount"`
	FailedCount  int                   `json:"failedCount"`
	Results      []BulkPriceResultItem `json:"results"`
}

// EffectivePriceData is the resolved price for one configuration.
type EffectivePriceData struct {
	Price    int64 `json:"price"`
	Quantity int   `json:"quantity"`
}

type EffectivePriceResponse struct {
	Success bool               `json:"success"`
	Data    EffectivePriceData `json:"data"`
}
