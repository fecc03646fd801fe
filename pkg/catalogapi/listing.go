package catalogapi

import (
	"context"
	"net/url"
	"strconv"

	"github.com/electrohogar/storefront-backend/pkg/querystate"
)

// ListParams shapes a listing request: the canonical query state plus the
// fixed page size.
type ListParams struct {
	State querystate.QueryState
	Limit int
}

func (p ListParams) values() url.Values {
	values := p.State.Apply(url.Values{})
	// The upstream expects page explicitly even for page 1.
	page := p.State.Page
	if page < 1 {
		page = 1
	}
	values.Set(querystate.ParamPage, strconv.Itoa(page))
	if p.Limit > 0 {
		values.Set("limit", strconv.Itoa(p.Limit))
	}
	return values
}

// List fetches one page of a family's catalog.
func (c *Client) List(ctx context.Context, family Family, params ListParams) (ListingResult, error) {
	var result ListingResult
	if err := c.getJSON(ctx, "listing", string(family), params.values(), "", &result); err != nil {
		return ListingResult{}, err
	}
	if result.Data == nil {
		result.Data = []ProductSummary{}
	}
	return result, nil
}

// GetBySlug fetches the full product record; ErrNotFound on unknown slugs.
func (c *Client) GetBySlug(ctx context.Context, family Family, slug string) (*Product, error) {
	var product Product
	if err := c.getJSON(ctx, "detail", string(family)+"/slug/"+url.PathEscape(slug), nil, "", &product); err != nil {
		return nil, err
	}
	return &product, nil
}

// Categories returns the family's category filter options.
func (c *Client) Categories(ctx context.Context, family Family) ([]string, error) {
	var categories []string
	if err := c.getJSON(ctx, "categories", string(family)+"/config/categories", nil, "", &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

// Brands returns the family's brand filter options.
func (c *Client) Brands(ctx context.Context, family Family) ([]string, error) {
	var brands []string
	if err := c.getJSON(ctx, "brands", string(family)+"/config/brands", nil, "", &brands); err != nil {
		return nil, err
	}
	return brands, nil
}
