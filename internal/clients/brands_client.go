package clients

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

// BrandsClient handles communication with the brands-service. The catalog
// keeps a read-only local copy of brands; this client covers lookups for
// brands that have not been synced yet.
type BrandsClient struct {
	baseURL    string
	httpClient *http.Client
}

// Brand represents a brand from brands-service
type Brand struct {
	ID         string  `json:"id"`
	TenantID   string  `json:"tenantId"`
	Slug       string  `json:"slug"`
	Name       string  `json:"name"`
	LogoURL    *string `json:"logoUrl,omitempty"`
	WebsiteURL *string `json:"websiteUrl,omitempty"`
	IsActive   bool    `json:"isActive"`
}

// BrandResponse from brands-service
type BrandResponse struct {
	Success bool    `json:"success"`
	Data    *Brand  `json:"data,omitempty"`
	Message *string `json:"message,omitempty"`
}

// NewBrandsClient creates a new brands client
func NewBrandsClient() *BrandsClient {
	baseURL := os.Getenv("BRANDS_SERVICE_URL")
	if baseURL == "" {
		baseURL = "http://brands-service:8080"
	}

	return &BrandsClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// GetBrandByID fetches a single brand from brands-service
func (c *BrandsClient) GetBrandByID(tenantID, brandID string) (*Brand, error) {
	url := fmt.Sprintf("%s/api/v1/brands/%s", c.baseURL, brandID)

	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-Tenant-ID", tenantID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("brands-service request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("brand %s not found", brandID)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("brands-service returned %d: %s", resp.StatusCode, string(body))
	}

	var brandResp BrandResponse
	if err := json.NewDecoder(resp.Body).Decode(&brandResp); err != nil {
		return nil, fmt.Errorf("failed to decode brand response: %w", err)
	}
	if !brandResp.Success || brandResp.Data == nil {
		return nil, fmt.Errorf("brand %s not found", brandID)
	}

	return brandResp.Data, nil
}
