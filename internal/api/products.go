package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/foodiex/go_checkout/internal/domain"
	"golang.org/x/sync/singleflight"
)

// ProductAPI talks to the external product catalog. Lookups by id are
// collapsed with singleflight: a burst of add-to-cart calls for the same
// product costs one backend round trip.
type ProductAPI struct {
	client *Client
	sfg    singleflight.Group
}

func NewProductAPI(client *Client) *ProductAPI {
	return &ProductAPI{client: client}
}

type productJSON struct {
	ID          string  `json:"_id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
	Image       string  `json:"image"`
	Available   bool    `json:"available"`
}

type ProductFilters struct {
	Category string
	Search   string
}

// Get fetches one product. Prices always come from here, never from the
// client, so cart totals cannot be forged.
func (a *ProductAPI) Get(ctx context.Context, productID string) (*domain.Product, error) {
	v, err, _ := a.sfg.Do(productID, func() (interface{}, error) {
		var resp productJSON
		if errDo := a.client.doJSON(ctx, http.MethodGet, "/api/products/"+productID, "", nil, &resp); errDo != nil {
			return nil, errDo
		}
		product := convertProduct(resp)
		return &product, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.Product), nil
}

// List fetches the catalog, optionally filtered.
func (a *ProductAPI) List(ctx context.Context, filters ProductFilters) ([]domain.Product, error) {
	query := url.Values{}
	if filters.Category != "" {
		query.Set("category", filters.Category)
	}
	if filters.Search != "" {
		query.Set("search", filters.Search)
	}

	path := "/api/products"
	if encoded := query.Encode(); encoded != "" {
		path += "?" + encoded
	}

	var resp []productJSON
	if err := a.client.doJSON(ctx, http.MethodGet, path, "", nil, &resp); err != nil {
		return nil, err
	}

	products := make([]domain.Product, 0, len(resp))
	for _, p := range resp {
		products = append(products, convertProduct(p))
	}
	return products, nil
}

func convertProduct(p productJSON) domain.Product {
	return domain.Product{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Category:    p.Category,
		ImageRef:    p.Image,
		Available:   p.Available,
	}
}
