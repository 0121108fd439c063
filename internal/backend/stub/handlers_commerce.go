package stub

import (
	"net/http"
	"sort"
	"time"

	"github.com/BuyBridge/shopcore/internal/models"
	"github.com/BuyBridge/shopcore/internal/status"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

func (s *Server) handleCreateRequest(w http.ResponseWriter, r *http.Request) {
	var in models.RequestCreateInput
	if err := readJSON(r, &in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "bad json"})
		return
	}
	if in.Title == "" || in.Type == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "title and type are required"})
		return
	}
	if in.Quantity <= 0 {
		in.Quantity = 1
	}

	now := time.Now().UTC()
	req := &models.PurchaseRequest{
		ID:          "req-" + uuid.NewString(),
		UserID:      s.user.ID,
		Type:        in.Type,
		Status:      status.Pending,
		Title:       in.Title,
		Description: in.Description,
		ProductLink: in.ProductLink,
		Quantity:    in.Quantity,
		BudgetCents: in.BudgetCents,
		Currency:    in.Currency,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	s.mu.Lock()
	s.requests[req.ID] = req
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, req)
}

func (s *Server) handleListRequests(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	out := make([]*models.PurchaseRequest, 0, len(s.requests))
	for _, req := range s.requests {
		out = append(out, req)
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetRequest(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	req, ok := s.requests[chi.URLParam(r, "id")]
	s.mu.Unlock()
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "request not found"})
		return
	}
	writeJSON(w, http.StatusOK, req)
}

func (s *Server) handleUpdateRequest(w http.ResponseWriter, r *http.Request) {
	var in models.RequestUpdateInput
	if err := readJSON(r, &in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "bad json"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	req, ok := s.requests[chi.URLParam(r, "id")]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "request not found"})
		return
	}
	if !status.CanEdit(req.Status) {
		writeJSON(w, http.StatusConflict, map[string]string{"message": "request is not editable"})
		return
	}

	if in.Title != nil {
		req.Title = *in.Title
	}
	if in.Description != nil {
		req.Description = *in.Description
	}
	if in.ProductLink != nil {
		req.ProductLink = *in.ProductLink
	}
	if in.Quantity != nil && *in.Quantity > 0 {
		req.Quantity = *in.Quantity
	}
	if in.BudgetCents != nil {
		req.BudgetCents = *in.BudgetCents
	}
	req.UpdatedAt = time.Now().UTC()
	writeJSON(w, http.StatusOK, req)
}

func (s *Server) handleCancelRequest(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	req, ok := s.requests[chi.URLParam(r, "id")]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "request not found"})
		return
	}
	if !status.CanCancel(req.Status) {
		writeJSON(w, http.StatusConflict, map[string]string{"message": "request is not cancellable"})
		return
	}

	now := time.Now().UTC()
	req.Status = status.Cancelled
	req.CancelledAt = &now
	req.UpdatedAt = now
	writeJSON(w, http.StatusOK, req)
}

func (s *Server) handleQuotation(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	q, ok := s.quotes[chi.URLParam(r, "id")]
	s.mu.Unlock()
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "quotation not found"})
		return
	}
	writeJSON(w, http.StatusOK, q)
}

// Подтверждение сметы двигает заявку quoted -> confirmed и рождает заказ.
func (s *Server) handleConfirmQuotation(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := chi.URLParam(r, "id")
	req, ok := s.requests[id]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "request not found"})
		return
	}
	q, ok := s.quotes[id]
	if !ok || !status.CanPay(req.Status) {
		writeJSON(w, http.StatusConflict, map[string]string{"message": "request has no payable quotation"})
		return
	}

	now := time.Now().UTC()
	req.Status = status.Confirmed
	req.QuotationID = &q.ID
	req.UpdatedAt = now

	order := &models.Order{
		ID:         "ord-" + uuid.NewString(),
		RequestID:  req.ID,
		UserID:     s.user.ID,
		Status:     status.Confirmed,
		TotalCents: q.TotalCents,
		Currency:   q.Currency,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	s.orders[order.ID] = order
	writeJSON(w, http.StatusOK, req)
}

func (s *Server) handleListOrders(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	out := make([]*models.Order, 0, len(s.orders))
	for _, o := range s.orders {
		out = append(out, o)
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	o, ok := s.orders[chi.URLParam(r, "id")]
	s.mu.Unlock()
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "order not found"})
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (s *Server) handlePayOrder(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Kind string `json:"kind"`
	}
	if err := readJSON(r, &in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "bad json"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[chi.URLParam(r, "id")]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "order not found"})
		return
	}
	if o.PaidAt != nil {
		writeJSON(w, http.StatusConflict, map[string]string{"message": "order already paid"})
		return
	}

	switch in.Kind {
	case "wallet":
		if s.walletCents < o.TotalCents {
			writeJSON(w, http.StatusConflict, map[string]string{"message": "insufficient wallet balance"})
			return
		}
		s.walletCents -= o.TotalCents
		s.txs = append(s.txs, &models.WalletTransaction{
			ID: "tx-" + uuid.NewString(), OrderID: o.ID, Kind: "payment",
			Cents: -o.TotalCents, Currency: o.Currency, CreatedAt: time.Now().UTC(),
		})
	case "gateway":
		// внешний шлюз не эмулируем, платёж считается прошедшим
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "unknown payment kind"})
		return
	}

	now := time.Now().UTC()
	o.Status = status.Paid
	o.PaidAt = &now
	o.PaymentKind = in.Kind
	o.UpdatedAt = now

	if req, ok := s.requests[o.RequestID]; ok {
		req.Status = status.Paid
		req.UpdatedAt = now
	}
	writeJSON(w, http.StatusOK, o)
}

func (s *Server) handleShipments(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := chi.URLParam(r, "id")
	if _, ok := s.orders[id]; !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "order not found"})
		return
	}
	out := s.shipments[id]
	if out == nil {
		out = []*models.Shipment{}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleBalance(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, models.WalletBalance{Cents: s.walletCents, Currency: s.currency})
}

func (s *Server) handleTransactions(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.txs
	if out == nil {
		out = []*models.WalletTransaction{}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleTopUp(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Cents    int64  `json:"cents"`
		Currency string `json:"currency"`
	}
	if err := readJSON(r, &in); err != nil || in.Cents <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "positive cents required"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.walletCents += in.Cents
	tx := &models.WalletTransaction{
		ID: "tx-" + uuid.NewString(), Kind: "topup",
		Cents: in.Cents, Currency: s.currency, CreatedAt: time.Now().UTC(),
	}
	s.txs = append(s.txs, tx)
	writeJSON(w, http.StatusCreated, tx)
}
