package catalogapi

import (
	"context"
	"net/url"
	"strconv"
)

// Suggestions fetches typeahead rows for a partial query.
func (c *Client) Suggestions(ctx context.Context, query string, limit int) ([]Suggestion, error) {
	values := url.Values{}
	values.Set("q", query)
	if limit > 0 {
		values.Set("limit", strconv.Itoa(limit))
	}
	var suggestions []Suggestion
	if err := c.getJSON(ctx, "suggestions", "search/suggestions", values, "", &suggestions); err != nil {
		return nil, err
	}
	return suggestions, nil
}

type spellcheckResponse struct {
	Suggestion *string `json:"suggestion"`
}

// Spellcheck asks the upstream for a corrected spelling of a query that
// produced no suggestions. The upstream answers {"suggestion": string|null};
// empty string means no correction available.
func (c *Client) Spellcheck(ctx context.Context, query string) (string, error) {
	values := url.Values{}
	values.Set("q", query)
	var resp spellcheckResponse
	if err := c.getJSON(ctx, "spellcheck", "search/spellcheck", values, "", &resp); err != nil {
		return "", err
	}
	if resp.Suggestion == nil {
		return "", nil
	}
	return *resp.Suggestion, nil
}

// Search runs the full cross-family search used on explicit submit.
func (c *Client) Search(ctx context.Context, query string) (SearchResult, error) {
	values := url.Values{}
	values.Set("q", query)
	var result SearchResult
	if err := c.getJSON(ctx, "search", "search", values, "", &result); err != nil {
		return SearchResult{}, err
	}
	if result.Electrodomesticos == nil {
		result.Electrodomesticos = []ProductSummary{}
	}
	if result.Repuestos == nil {
		result.Repuestos = []ProductSummary{}
	}
	if result.SearchTerm == "" {
		result.SearchTerm = query
	}
	return result, nil
}
