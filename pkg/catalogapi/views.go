package catalogapi

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

// TrackViewRequest records one product detail view against an anonymous
// session.
type TrackViewRequest struct {
	Type      string `json:"type"`
	ProductID string `json:"productId"`
	SessionID string `json:"sessionId"`
}

// TrackView records a detail view upstream. Callers treat failures as
// non-fatal.
func (c *Client) TrackView(ctx context.Context, req TrackViewRequest) error {
	return c.sendJSON(ctx, http.MethodPost, "track_view", "views/track", req, "", nil)
}

// MostViewed fetches the globally most viewed products across both families.
func (c *Client) MostViewed(ctx context.Context, limit int) ([]ProductSummary, error) {
	values := url.Values{}
	if limit > 0 {
		values.Set("limit", strconv.Itoa(limit))
	}
	var products []ProductSummary
	if err := c.getJSON(ctx, "most_viewed", "views/recommendations/most-viewed", values, "", &products); err != nil {
		return nil, err
	}
	return products, nil
}

// SimilarParams narrows a similar-products lookup. At least one of Category
// or Brand must be set; the service layer enforces that before calling.
type SimilarParams struct {
	ProductID   string
	ProductType string
	Category    string
	Brand       string
	Limit       int
}

// Similar fetches products related by category or brand. The upstream
// excludes the product identified by productId/productType itself.
func (c *Client) Similar(ctx context.Context, params SimilarParams) ([]ProductSummary, error) {
	values := url.Values{}
	if params.ProductID != "" {
		values.Set("productId", params.ProductID)
	}
	if params.ProductType != "" {
		values.Set("productType", params.ProductType)
	}
	if params.Category != "" {
		values.Set("category", params.Category)
	}
	if params.Brand != "" {
		values.Set("brand", params.Brand)
	}
	if params.Limit > 0 {
		values.Set("limit", strconv.Itoa(params.Limit))
	}
	var products []ProductSummary
	if err := c.getJSON(ctx, "similar", "views/recommendations/similar", values, "", &products); err != nil {
		return nil, err
	}
	return products, nil
}
