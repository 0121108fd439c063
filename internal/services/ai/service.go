package ai

import (
	"context"
	"net/http"

	"github.com/BuyBridge/shopcore/internal/apiclient"
	"github.com/BuyBridge/shopcore/internal/models"
	"github.com/pkg/errors"
)

// Service — подсказки по ссылке на товар. Ходит по AI-префиксу,
// то есть без bearer-токена: эндпоинт доступен и до логина.
type Service struct {
	api *apiclient.Client
}

func New(api *apiclient.Client) *Service {
	return &Service{api: api}
}

func (s *Service) ExtractProduct(ctx context.Context, link string) (*models.ProductInfo, error) {
	if link == "" {
		return nil, errors.New("product link is required")
	}

	resp := s.api.Do(ctx, http.MethodPost, "/ai/extract", map[string]any{
		"link": link,
	}, nil)
	var out models.ProductInfo
	if err := resp.Decode(&out); err != nil {
		return nil, err
	}
	return &out, nil
}
