package auth

import (
	"context"
	"net/http"

	"github.com/BuyBridge/shopcore/internal/apiclient"
	"github.com/BuyBridge/shopcore/internal/models"
	"github.com/BuyBridge/shopcore/internal/session"
	"github.com/pkg/errors"
)

// Service — авторизация и профиль. Единственный сервис, который пишет в сессию
// напрямую: логин/выход других слоёв не касаются.
type Service struct {
	api  *apiclient.Client
	sess *session.Store
}

func New(api *apiclient.Client, sess *session.Store) *Service {
	return &Service{api: api, sess: sess}
}

type loginResponse struct {
	models.Credentials
	User models.User `json:"user"`
}

func (s *Service) Login(ctx context.Context, email, password string) (*models.User, error) {
	if email == "" || password == "" {
		return nil, errors.New("email and password are required")
	}

	resp := s.api.Do(ctx, http.MethodPost, "/auth/login", map[string]any{
		"email":    email,
		"password": password,
	}, nil)

	var out loginResponse
	if err := resp.Decode(&out); err != nil {
		return nil, err
	}
	if err := s.sess.LoginSucceeded(out.AccessToken, out.RefreshToken, &out.User); err != nil {
		return nil, err
	}
	return &out.User, nil
}

func (s *Service) Logout(ctx context.Context) {
	// бэкенд уведомляем по возможности, локальная сессия чистится всегда
	_ = s.api.Do(ctx, http.MethodPost, "/auth/logout", nil, nil)
	s.sess.SignOut()
}

func (s *Service) Profile(ctx context.Context) (*models.User, error) {
	resp := s.api.Do(ctx, http.MethodGet, "/users/me", nil, nil)

	var out models.User
	if err := resp.Decode(&out); err != nil {
		return nil, err
	}
	s.sess.MergeProfile(out)
	return &out, nil
}

func (s *Service) UpdateProfile(ctx context.Context, patch models.User) (*models.User, error) {
	resp := s.api.Do(ctx, http.MethodPatch, "/users/me", patch, nil)

	var out models.User
	if err := resp.Decode(&out); err != nil {
		return nil, err
	}
	s.sess.MergeProfile(out)
	return &out, nil
}
