package stub

import (
	"net/http"
	"time"

	"github.com/BuyBridge/shopcore/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

func (s *Server) issueTokens() (access, refresh string, err error) {
	now := time.Now().UTC()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   s.user.ID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
	})
	access, err = tok.SignedString(s.secret)
	if err != nil {
		return "", "", err
	}
	refresh = "rt-" + uuid.NewString()
	s.refreshTokens[refresh] = struct{}{}
	return access, refresh, nil
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := readJSON(r, &in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "bad json"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if in.Email != s.user.Email || in.Password != s.password {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "invalid credentials"})
		return
	}

	access, refresh, err := s.issueTokens()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"accessToken":  access,
		"refreshToken": refresh,
		"user":         s.user,
	})
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var in struct {
		RefreshToken string `json:"refreshToken"`
	}
	if err := readJSON(r, &in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "bad json"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.refreshTokens[in.RefreshToken]; !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "unknown refresh token"})
		return
	}
	// refresh-токены одноразовые
	delete(s.refreshTokens, in.RefreshToken)

	access, refresh, err := s.issueTokens()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"accessToken":  access,
		"refreshToken": refresh,
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	s.refreshTokens = map[string]struct{}{}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleProfile(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, s.user)
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var patch models.User
	if err := readJSON(r, &patch); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "bad json"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if patch.Name != "" {
		s.user.Name = patch.Name
	}
	if patch.Phone != "" {
		s.user.Phone = patch.Phone
	}
	if patch.Country != "" {
		s.user.Country = patch.Country
	}
	if patch.AvatarURL != "" {
		s.user.AvatarURL = patch.AvatarURL
	}
	writeJSON(w, http.StatusOK, s.user)
}

func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Link string `json:"link"`
	}
	if err := readJSON(r, &in); err != nil || in.Link == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "link is required"})
		return
	}
	// детерминированная заглушка извлечения
	writeJSON(w, http.StatusOK, models.ProductInfo{
		Title:      "Extracted product",
		Merchant:   "shop.example",
		PriceCents: 99_00,
		Currency:   "EUR",
	})
}
