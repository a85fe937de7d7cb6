package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	"catalog-service/internal/middleware"
	"catalog-service/internal/models"
	"catalog-service/internal/repository"
)

const exportPageSize = 500

// ExportHandler generates xlsx exports of the catalog
type ExportHandler struct {
	repo repository.CatalogRepositoryInterface
}

func NewExportHandler(repo repository.CatalogRepositoryInterface) *ExportHandler {
	return &ExportHandler{repo: repo}
}

// ExportProducts writes the tenant's catalog to an xlsx download: a
// Products sheet, optionally a Variants sheet and a PriceHistory sheet
// POST /api/v1/products/export
func (h *ExportHandler) ExportProducts(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)

	var req models.ExportProductsRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			validationError(c, err)
			return
		}
	}

	products, err := h.collectProducts(tenantID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "EXPORT_FAILED",
				Message: "Failed to collect products for export",
			},
		})
		return
	}

	f := excelize.NewFile()
	defer f.Close()

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})

	if err := h.writeProductsSheet(f, headerStyle, products); err != nil {
		exportWriteFailed(c, err)
		return
	}

	if req.IncludeVariants {
		if err := h.writeVariantsSheet(f, headerStyle, tenantID, products, req.IncludeRetired); err != nil {
			exportWriteFailed(c, err)
			return
		}
	}

	if req.IncludePriceHistory {
		if err := h.writePriceHistorySheet(f, headerStyle, tenantID, products); err != nil {
			exportWriteFailed(c, err)
			return
		}
	}

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", "attachment; filename=catalog_export.xlsx")

	_ = f.Write(c.Writer)
}

func (h *ExportHandler) collectProducts(tenantID string) ([]models.Product, error) {
	all := make([]models.Product, 0)
	page := 1
	for {
		products, total, err := h.repo.ListProducts(tenantID, &models.ListProductsRequest{
			Page:  page,
			Limit: exportPageSize,
		})
		if err != nil {
			return nil, err
		}
		all = append(all, products...)
		if int64(len(all)) >= total || len(products) == 0 {
			return all, nil
		}
		page++
	}
}

func (h *ExportHandler) writeProductsSheet(f *excelize.File, headerStyle int, products []models.Product) error {
	const sheet = "Products"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"ID", "SKU", "Name", "Type", "Price", "Stock", "Active", "Featured", "Discount %", "Discount Start", "Discount End", "Created At"}
	if err := writeHeaderRow(f, sheet, headers, headerStyle); err != nil {
		return err
	}

	for i, p := range products {
		row := i + 2
		price := ""
		if p.Price != nil {
			price = p.Price.String()
		}
		discount := ""
		if p.DiscountPercent != nil {
			discount = formatFloat(*p.DiscountPercent)
		}
		values := []interface{}{
			p.ID.String(), p.SKU, p.Name, string(p.Type), price, p.StockQuantity,
			p.IsActive, p.IsFeatured, discount,
			formatTimePtr(p.DiscountStartDate), formatTimePtr(p.DiscountEndDate),
			p.CreatedAt.Format(time.RFC3339),
		}
		if err := writeRow(f, sheet, row, values); err != nil {
			return err
		}
	}
	return nil
}

func (h *ExportHandler) writeVariantsSheet(f *excelize.File, headerStyle int, tenantID string, products []models.Product, includeRetired bool) error {
	const sheet = "Variants"
	f.NewSheet(sheet)

	headers := []string{"ID", "Product SKU", "SKU", "Variant Key", "Size", "Model", "Material", "Price Override", "Stock", "Active"}
	if err := writeHeaderRow(f, sheet, headers, headerStyle); err != nil {
		return err
	}

	row := 2
	for _, p := range products {
		variants, err := h.repo.GetVariants(tenantID, p.ID, !includeRetired)
		if err != nil {
			return err
		}
		for _, v := range variants {
			price := ""
			if v.Price != nil {
				price = v.Price.String()
			}
			values := []interface{}{
				v.ID.String(), p.SKU, v.SKU, v.VariantKey,
				deref(v.Size), deref(v.Model), deref(v.Material),
				price, v.StockQuantity, v.IsActive,
			}
			if err := writeRow(f, sheet, row, values); err != nil {
				return err
			}
			row++
		}
	}
	return nil
}

func (h *ExportHandler) writePriceHistorySheet(f *excelize.File, headerStyle int, tenantID string, products []models.Product) error {
	const sheet = "PriceHistory"
	f.NewSheet(sheet)

	headers := []string{"Product SKU", "Old Price", "New Price", "Change %", "Reason", "Changed At"}
	if err := writeHeaderRow(f, sheet, headers, headerStyle); err != nil {
		return err
	}

	row := 2
	for _, p := range products {
		page := 1
		for {
			history, total, err := h.repo.ListPriceHistory(tenantID, p.ID, page, exportPageSize)
			if err != nil {
				return err
			}
			for _, entry := range history {
				values := []interface{}{
					p.SKU, entry.OldPrice.String(), entry.NewPrice.String(),
					formatFloat(entry.ChangePercent), deref(entry.Reason),
					entry.CreatedAt.Format(time.RFC3339),
				}
				if err := writeRow(f, sheet, row, values); err != nil {
					return err
				}
				row++
			}
			if int64(page*exportPageSize) >= total || len(history) == 0 {
				break
			}
			page++
		}
	}
	return nil
}

func writeHeaderRow(f *excelize.File, sheet string, headers []string, style int) error {
	for i, header := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return err
		}
		_ = f.SetCellStyle(sheet, cell, cell, style)

		colName, _ := excelize.ColumnNumberToName(i + 1)
		_ = f.SetColWidth(sheet, colName, colName, 20)
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	for i, value := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, value); err != nil {
			return err
		}
	}
	return nil
}

func exportWriteFailed(c *gin.Context, err error) {
	c.JSON(http.StatusInternalServerError, models.ErrorResponse{
		Success: false,
		Error: models.Error{
			Code:    "EXPORT_FAILED",
			Message: "Failed to generate export file",
			Details: map[string]interface{}{"error": err.Error()},
		},
	})
}

func formatTimePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
