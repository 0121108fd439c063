package requests

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/BuyBridge/shopcore/internal/apiclient"
	"github.com/BuyBridge/shopcore/internal/models"
	"github.com/BuyBridge/shopcore/internal/status"
	"github.com/pkg/errors"
)

type Service struct {
	api *apiclient.Client
}

func New(api *apiclient.Client) *Service {
	return &Service{api: api}
}

func (s *Service) Create(ctx context.Context, in models.RequestCreateInput) (*models.PurchaseRequest, error) {
	if in.Title == "" {
		return nil, errors.New("title is required")
	}
	if in.Type == "" {
		return nil, errors.New("type is required")
	}
	if in.Quantity <= 0 {
		in.Quantity = 1
	}

	resp := s.api.Do(ctx, http.MethodPost, "/requests", in, nil)
	var out models.PurchaseRequest
	if err := resp.Decode(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Service) List(ctx context.Context, page, perPage int) ([]*models.PurchaseRequest, error) {
	q := url.Values{}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if perPage > 0 {
		q.Set("perPage", strconv.Itoa(perPage))
	}

	resp := s.api.Do(ctx, http.MethodGet, "/requests", nil, q)
	var out []*models.PurchaseRequest
	if err := resp.Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, id string) (*models.PurchaseRequest, error) {
	if id == "" {
		return nil, errors.New("request id is required")
	}
	resp := s.api.Do(ctx, http.MethodGet, "/requests/"+id, nil, nil)
	var out models.PurchaseRequest
	if err := resp.Decode(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Update доступен только пока заявка редактируема; проверка — клиентская
// вежливость, финальное слово за бэкендом.
func (s *Service) Update(ctx context.Context, req *models.PurchaseRequest, in models.RequestUpdateInput) (*models.PurchaseRequest, error) {
	if req == nil || req.ID == "" {
		return nil, errors.New("request is required")
	}
	if !status.CanEdit(req.Status) {
		return nil, errors.Errorf("request in status %q cannot be edited", req.Status)
	}

	resp := s.api.Do(ctx, http.MethodPatch, "/requests/"+req.ID, in, nil)
	var out models.PurchaseRequest
	if err := resp.Decode(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Service) Cancel(ctx context.Context, req *models.PurchaseRequest) (*models.PurchaseRequest, error) {
	if req == nil || req.ID == "" {
		return nil, errors.New("request is required")
	}
	if !status.CanCancel(req.Status) {
		return nil, errors.Errorf("request in status %q cannot be cancelled", req.Status)
	}

	resp := s.api.Do(ctx, http.MethodPost, "/requests/"+req.ID+"/cancel", nil, nil)
	var out models.PurchaseRequest
	if err := resp.Decode(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Service) Quotation(ctx context.Context, requestID string) (*models.Quotation, error) {
	if requestID == "" {
		return nil, errors.New("request id is required")
	}
	resp := s.api.Do(ctx, http.MethodGet, "/requests/"+requestID+"/quotation", nil, nil)
	var out models.Quotation
	if err := resp.Decode(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Service) ConfirmQuotation(ctx context.Context, requestID string) (*models.PurchaseRequest, error) {
	if requestID == "" {
		return nil, errors.New("request id is required")
	}
	resp := s.api.Do(ctx, http.MethodPost, "/requests/"+requestID+"/quotation/confirm", nil, nil)
	var out models.PurchaseRequest
	if err := resp.Decode(&out); err != nil {
		return nil, err
	}
	return &out, nil
}
