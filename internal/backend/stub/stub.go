package stub

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/BuyBridge/shopcore/internal/models"
	"github.com/BuyBridge/shopcore/internal/status"
	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Server — фейковый бэкенд для локальной разработки и интеграционных тестов
// клиента. Состояние в памяти, токены настоящие (HS256), поэтому на нём
// можно гонять и refresh-ветку, и матрицу ретраев через инъекцию сбоев.
type Server struct {
	mu sync.Mutex

	secret    []byte
	accessTTL time.Duration

	user     models.User
	password string

	refreshTokens map[string]struct{}

	requests  map[string]*models.PurchaseRequest
	quotes    map[string]*models.Quotation // по requestID
	orders    map[string]*models.Order
	shipments map[string][]*models.Shipment

	walletCents int64
	currency    string
	txs         []*models.WalletTransaction

	// инъекция сбоев: следующие failLeft запросов к API отвечают failStatus
	failStatus int
	failLeft   int
}

func New() *Server {
	s := &Server{
		secret:        []byte("stub-secret"),
		accessTTL:     15 * time.Minute,
		user:          models.User{ID: "u-demo", Email: "demo@shopcore.dev", Name: "Demo User", Country: "DE"},
		password:      "letmein",
		refreshTokens: map[string]struct{}{},
		requests:      map[string]*models.PurchaseRequest{},
		quotes:        map[string]*models.Quotation{},
		orders:        map[string]*models.Order{},
		shipments:     map[string][]*models.Shipment{},
		walletCents:   50_00,
		currency:      "EUR",
	}
	s.seed()
	return s
}

// WithAccessTTL укорачивает жизнь access-токена (нужно тестам refresh-ветки).
func (s *Server) WithAccessTTL(ttl time.Duration) *Server {
	if ttl > 0 {
		s.mu.Lock()
		s.accessTTL = ttl
		s.mu.Unlock()
	}
	return s
}

// FailNext заставляет следующие n запросов к защищённым и открытым ручкам
// (кроме /auth/*) отвечать кодом httpStatus.
func (s *Server) FailNext(httpStatus, n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failStatus = httpStatus
	s.failLeft = n
}

func (s *Server) seed() {
	now := time.Now().UTC()
	r1 := &models.PurchaseRequest{
		ID: "req-" + uuid.NewString(), UserID: s.user.ID,
		Type: status.TypeWithLink, Status: status.Quoted,
		Title: "Keychron K6 Pro", ProductLink: "https://shop.example/k6pro",
		Quantity: 1, Currency: "EUR", CreatedAt: now, UpdatedAt: now,
	}
	s.requests[r1.ID] = r1
	s.quotes[r1.ID] = &models.Quotation{
		ID: "q-" + uuid.NewString(), RequestID: r1.ID,
		ItemCents: 95_00, ServiceCents: 9_50, ShippingCents: 12_00, TotalCents: 116_50,
		Currency: "EUR", ExpiresAt: now.Add(72 * time.Hour), CreatedAt: now,
	}

	r2 := &models.PurchaseRequest{
		ID: "req-" + uuid.NewString(), UserID: s.user.ID,
		Type: status.TypeManual, Status: status.Pending,
		Title: "Local pharmacy balm", Quantity: 2, Currency: "EUR",
		CreatedAt: now, UpdatedAt: now,
	}
	s.requests[r2.ID] = r2
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(s.faultMiddleware)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	})

	r.Post("/auth/login", s.handleLogin)
	r.Post("/auth/refresh", s.handleRefresh)
	r.Post("/auth/logout", s.handleLogout)

	// AI-неймспейс намеренно без авторизации — как у настоящего бэкенда
	r.Post("/ai/extract", s.handleExtract)

	r.Group(func(r chi.Router) {
		r.Use(s.authMiddleware)

		r.Get("/users/me", s.handleProfile)
		r.Patch("/users/me", s.handleUpdateProfile)

		r.Post("/requests", s.handleCreateRequest)
		r.Get("/requests", s.handleListRequests)
		r.Get("/requests/{id}", s.handleGetRequest)
		r.Patch("/requests/{id}", s.handleUpdateRequest)
		r.Post("/requests/{id}/cancel", s.handleCancelRequest)
		r.Get("/requests/{id}/quotation", s.handleQuotation)
		r.Post("/requests/{id}/quotation/confirm", s.handleConfirmQuotation)

		r.Get("/orders", s.handleListOrders)
		r.Get("/orders/{id}", s.handleGetOrder)
		r.Post("/orders/{id}/pay", s.handlePayOrder)
		r.Get("/orders/{id}/shipments", s.handleShipments)

		r.Get("/wallet/balance", s.handleBalance)
		r.Get("/wallet/transactions", s.handleTransactions)
		r.Post("/wallet/topup", s.handleTopUp)
	})

	return r
}

func (s *Server) faultMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/auth/") {
			s.mu.Lock()
			inject := s.failLeft > 0
			st := s.failStatus
			if inject {
				s.failLeft--
			}
			s.mu.Unlock()
			if inject {
				writeJSON(w, st, map[string]string{"message": "injected failure"})
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := r.Header.Get("Authorization")
		if !strings.HasPrefix(h, "Bearer ") {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "missing bearer token"})
			return
		}
		tok := strings.TrimPrefix(h, "Bearer ")
		claims := jwt.RegisteredClaims{}
		_, err := jwt.ParseWithClaims(tok, &claims, func(*jwt.Token) (any, error) {
			return s.secret, nil
		})
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "invalid token"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func readJSON(r *http.Request, out any) error {
	return json.NewDecoder(r.Body).Decode(out)
}
