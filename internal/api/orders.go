package api

import (
	"context"
	"net/http"
	"time"

	"github.com/foodiex/go_checkout/internal/checkout"
	"github.com/foodiex/go_checkout/internal/domain"
)

// OrderAPI talks to the external order endpoints. It implements
// checkout.OrderPlacer.
type OrderAPI struct {
	client *Client
}

func NewOrderAPI(client *Client) *OrderAPI {
	return &OrderAPI{client: client}
}

// Wire shapes follow the backend contract (camelCase, mongo-style ids).

type orderProductJSON struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type shippingAddressJSON struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Street     string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
}

type createOrderJSON struct {
	Products        []orderProductJSON  `json:"products"`
	ShippingAddress shippingAddressJSON `json:"shippingAddress"`
	PaymentMethod   string              `json:"paymentMethod"`
	IdempotencyKey  string              `json:"idempotencyKey"`
}

type orderItemJSON struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
}

type orderJSON struct {
	ID        string          `json:"_id"`
	UserID    string          `json:"user"`
	Items     []orderItemJSON `json:"products"`
	Total     float64         `json:"totalPrice"`
	Status    string          `json:"status"`
	CreatedAt time.Time       `json:"createdAt"`
}

// Create submits the order and returns the backend-assigned identifier.
// Only the payment method discriminator is serialized.
func (a *OrderAPI) Create(ctx context.Context, credential string, sub checkout.OrderSubmission) (string, error) {
	products := make([]orderProductJSON, 0, len(sub.Products))
	for _, p := range sub.Products {
		products = append(products, orderProductJSON{ProductID: p.ProductID, Quantity: p.Quantity})
	}

	req := createOrderJSON{
		Products: products,
		ShippingAddress: shippingAddressJSON{
			Name:       sub.Address.Name,
			Email:      sub.Address.Email,
			Phone:      sub.Address.Phone,
			Street:     sub.Address.Street,
			City:       sub.Address.City,
			PostalCode: sub.Address.PostalCode,
		},
		PaymentMethod:  string(sub.PaymentMethod),
		IdempotencyKey: sub.IdempotencyKey,
	}

	var resp orderJSON
	if err := a.client.doJSON(ctx, http.MethodPost, "/api/orders", credential, req, &resp); err != nil {
		return "", err
	}
	return resp.ID, nil
}

// Get fetches a single order owned by the credential's user.
func (a *OrderAPI) Get(ctx context.Context, credential, orderID string) (*domain.Order, error) {
	var resp orderJSON
	if err := a.client.doJSON(ctx, http.MethodGet, "/api/orders/"+orderID, credential, nil, &resp); err != nil {
		return nil, err
	}
	order := convertOrder(resp)
	return &order, nil
}

// ListMine fetches the credential owner's order history.
func (a *OrderAPI) ListMine(ctx context.Context, credential string) ([]domain.Order, error) {
	var resp []orderJSON
	if err := a.client.doJSON(ctx, http.MethodGet, "/api/orders", credential, nil, &resp); err != nil {
		return nil, err
	}

	orders := make([]domain.Order, 0, len(resp))
	for _, o := range resp {
		orders = append(orders, convertOrder(o))
	}
	return orders, nil
}

func convertOrder(o orderJSON) domain.Order {
	items := make([]domain.OrderItem, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, domain.OrderItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			Quantity:  item.Quantity,
			UnitPrice: item.Price,
		})
	}
	return domain.Order{
		ID:        o.ID,
		UserID:    o.UserID,
		Items:     items,
		Total:     o.Total,
		Status:    o.Status,
		CreatedAt: o.CreatedAt,
	}
}
