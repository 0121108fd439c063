package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// tokenExpired читает exp из самого токена без проверки подписи: клиенту подпись
// недоступна, ему важен только срок. Нечитаемый токен считаем живым — пусть
// окончательное слово остаётся за сервером.
func tokenExpired(token string, now time.Time) bool {
	parser := jwt.NewParser()
	claims := jwt.RegisteredClaims{}
	if _, _, err := parser.ParseUnverified(token, &claims); err != nil {
		return false
	}
	if claims.ExpiresAt == nil {
		return false
	}
	return !claims.ExpiresAt.Time.After(now)
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type refreshResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// tryRefresh обменивает refresh-токен на свежую пару и кладёт её в сессию.
// Любой сбой — тихий: вызов продолжится с тем токеном, какой есть,
// принудительный разлогин случается только по 403 от сервера.
func (c *Client) tryRefresh(ctx context.Context, refreshToken string) {
	if refreshToken == "" {
		return
	}

	b, err := json.Marshal(refreshRequest{RefreshToken: refreshToken})
	if err != nil {
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+c.refreshPath, bytes.NewReader(b))
	if err != nil {
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		slog.Debug("token refresh failed", "error", err.Error())
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		slog.Debug("token refresh rejected", "status", resp.StatusCode)
		return
	}

	var out refreshResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil || out.AccessToken == "" {
		return
	}
	if err := c.sess.TokensRefreshed(out.AccessToken, out.RefreshToken); err != nil {
		slog.Debug("persist refreshed tokens", "error", err.Error())
	}
}
