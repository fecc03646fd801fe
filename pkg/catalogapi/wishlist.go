package catalogapi

import (
	"context"
	"net/http"
	"net/url"
)

// WishlistAddRequest identifies the product to put on the caller's wishlist.
type WishlistAddRequest struct {
	ProductID   string `json:"productId"`
	ProductType string `json:"productType"`
}

// WishlistList fetches the authenticated user's wishlist rows.
func (c *Client) WishlistList(ctx context.Context, bearer string) ([]WishlistEntry, error) {
	var entries []WishlistEntry
	if err := c.getJSON(ctx, "wishlist_list", "wishlist", nil, bearer, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// WishlistAdd adds a product; ErrConflict when the product is already listed.
func (c *Client) WishlistAdd(ctx context.Context, bearer string, req WishlistAddRequest) (*WishlistEntry, error) {
	var entry WishlistEntry
	if err := c.sendJSON(ctx, http.MethodPost, "wishlist_add", "wishlist", req, bearer, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

// WishlistRemove deletes one wishlist row by its server-assigned entry id.
func (c *Client) WishlistRemove(ctx context.Context, bearer, entryID, productType string) error {
	path := "wishlist/" + url.PathEscape(entryID)
	values := url.Values{}
	values.Set("productType", productType)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.buildURL(path, values), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+bearer)
	return c.do(req, "wishlist_remove", nil)
}
