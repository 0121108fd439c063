package orders

import (
	"context"
	"net/http"

	"github.com/BuyBridge/shopcore/internal/apiclient"
	"github.com/BuyBridge/shopcore/internal/models"
	"github.com/pkg/errors"
)

const (
	PayWithWallet  = "wallet"
	PayWithGateway = "gateway"
)

type Service struct {
	api *apiclient.Client
}

func New(api *apiclient.Client) *Service {
	return &Service{api: api}
}

func (s *Service) List(ctx context.Context) ([]*models.Order, error) {
	resp := s.api.Do(ctx, http.MethodGet, "/orders", nil, nil)
	var out []*models.Order
	if err := resp.Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, id string) (*models.Order, error) {
	if id == "" {
		return nil, errors.New("order id is required")
	}
	resp := s.api.Do(ctx, http.MethodGet, "/orders/"+id, nil, nil)
	var out models.Order
	if err := resp.Decode(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Pay запускает оплату кошельком или внешним шлюзом. Сам шлюз — внешний
// коллаборатор, клиент только передаёт выбранный способ.
func (s *Service) Pay(ctx context.Context, orderID, kind string) (*models.Order, error) {
	if orderID == "" {
		return nil, errors.New("order id is required")
	}
	if kind != PayWithWallet && kind != PayWithGateway {
		return nil, errors.Errorf("unknown payment kind %q", kind)
	}

	resp := s.api.Do(ctx, http.MethodPost, "/orders/"+orderID+"/pay", map[string]any{
		"kind": kind,
	}, nil)
	var out models.Order
	if err := resp.Decode(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Service) Shipments(ctx context.Context, orderID string) ([]*models.Shipment, error) {
	if orderID == "" {
		return nil, errors.New("order id is required")
	}
	resp := s.api.Do(ctx, http.MethodGet, "/orders/"+orderID+"/shipments", nil, nil)
	var out []*models.Shipment
	if err := resp.Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}
