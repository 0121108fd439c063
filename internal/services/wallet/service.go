package wallet

import (
	"context"
	"net/http"

	"github.com/BuyBridge/shopcore/internal/apiclient"
	"github.com/BuyBridge/shopcore/internal/models"
	"github.com/pkg/errors"
)

type Service struct {
	api *apiclient.Client
}

func New(api *apiclient.Client) *Service {
	return &Service{api: api}
}

func (s *Service) Balance(ctx context.Context) (*models.WalletBalance, error) {
	resp := s.api.Do(ctx, http.MethodGet, "/wallet/balance", nil, nil)
	var out models.WalletBalance
	if err := resp.Decode(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Service) Transactions(ctx context.Context) ([]*models.WalletTransaction, error) {
	resp := s.api.Do(ctx, http.MethodGet, "/wallet/transactions", nil, nil)
	var out []*models.WalletTransaction
	if err := resp.Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) TopUp(ctx context.Context, cents int64, currency string) (*models.WalletTransaction, error) {
	if cents <= 0 {
		return nil, errors.New("top-up amount must be positive")
	}
	if currency == "" {
		return nil, errors.New("currency is required")
	}

	resp := s.api.Do(ctx, http.MethodPost, "/wallet/topup", map[string]any{
		"cents":    cents,
		"currency": currency,
	}, nil)
	var out models.WalletTransaction
	if err := resp.Decode(&out); err != nil {
		return nil, err
	}
	return &out, nil
}
