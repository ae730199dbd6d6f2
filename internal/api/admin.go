package api

import (
	"context"
	"net/http"

	"github.com/foodiex/go_checkout/internal/domain"
)

// AdminAPI talks to the order-management endpoints. Consumed only by the
// admin poller and the admin handlers; never part of the checkout path.
type AdminAPI struct {
	client *Client
}

func NewAdminAPI(client *Client) *AdminAPI {
	return &AdminAPI{client: client}
}

func (a *AdminAPI) ListOrders(ctx context.Context, credential string) ([]domain.Order, error) {
	var resp []orderJSON
	if err := a.client.doJSON(ctx, http.MethodGet, "/api/admin/orders", credential, nil, &resp); err != nil {
		return nil, err
	}

	orders := make([]domain.Order, 0, len(resp))
	for _, o := range resp {
		orders = append(orders, convertOrder(o))
	}
	return orders, nil
}

type updateStatusJSON struct {
	Status string `json:"status"`
}

func (a *AdminAPI) UpdateOrderStatus(ctx context.Context, credential, orderID, status string) error {
	req := updateStatusJSON{Status: status}
	return a.client.doJSON(ctx, http.MethodPut, "/api/admin/orders/"+orderID+"/status", credential, req, nil)
}
