package apiclient

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/BuyBridge/shopcore/internal/session"
	"github.com/google/uuid"
)

const (
	defaultTimeout  = 300 * time.Second
	defaultAIPrefix = "/ai/"
	retryBackoff    = 500 * time.Millisecond
)

// Session — то, что клиенту нужно от стора сессии. Явная зависимость вместо
// глобального стейта, чтобы клиент тестировался без всего приложения.
type Session interface {
	State() session.Snapshot
	TokensRefreshed(access, refresh string) error
	Invalidate()
	SetOnline(online bool)
}

// Client — единственная точка исходящего HTTP-трафика к бэкенду.
// Отвечает за bearer-заголовок, refresh протухшего токена, политику повторов
// и нормализацию любого исхода в Response.
type Client struct {
	baseURL     string
	aiPrefix    string
	refreshPath string
	timeout     time.Duration
	httpc       *http.Client
	sess        Session

	now   func() time.Time
	sleep func(time.Duration)
}

type Option func(*Client)

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

func WithAIPrefix(prefix string) Option {
	return func(c *Client) {
		if prefix != "" {
			c.aiPrefix = prefix
		}
	}
}

func WithRefreshPath(path string) Option {
	return func(c *Client) {
		if path != "" {
			c.refreshPath = path
		}
	}
}

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.httpc = h
		}
	}
}

func New(baseURL string, sess Session, opts ...Option) *Client {
	c := &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		aiPrefix:    defaultAIPrefix,
		refreshPath: "/auth/refresh",
		timeout:     defaultTimeout,
		// таймаут держим на контексте попытки, а не на http.Client,
		// чтобы каждый ретрай получал свежее окно
		httpc: &http.Client{},
		sess:  sess,
		now:   time.Now,
		sleep: time.Sleep,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Do выполняет вызов бэкенда и никогда не возвращает go-ошибку: любой сбой
// приходит в Response.Error, чтобы вызывающий слой ветвился без паник и throw.
func (c *Client) Do(ctx context.Context, method, path string, body any, query url.Values) Response {
	payload, contentType, err := encodeBody(body)
	if err != nil {
		return errResponse(http.StatusInternalServerError, []byte(err.Error()))
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	headers := http.Header{}
	if contentType != "" {
		headers.Set("Content-Type", contentType)
	}
	headers.Set("X-Request-ID", uuid.NewString())

	// AI-пути ходят без авторизации
	if !strings.HasPrefix(path, c.aiPrefix) {
		c.resolveAuth(ctx, headers)
	}

	var last Response
	for attempt := 1; attempt <= 2; attempt++ {
		if attempt > 1 {
			// линейный backoff: номер_ретрая × 500мс
			c.sleep(time.Duration(attempt-1) * retryBackoff)
		}

		resp, retryable := c.attempt(ctx, method, target, payload, headers)
		last = resp
		if resp.OK() || !retryable || attempt == 2 {
			break
		}
	}
	return last
}

// resolveAuth подставляет bearer-токен; протухший по exp токен сначала
// пытаемся обменять, свежая пара попадает и в сессию, и в заголовок.
func (c *Client) resolveAuth(ctx context.Context, headers http.Header) {
	st := c.sess.State()
	if st.AccessToken == "" {
		return
	}
	if tokenExpired(st.AccessToken, c.now()) {
		c.tryRefresh(ctx, st.RefreshToken)
		st = c.sess.State()
	}
	headers.Set("Authorization", "Bearer "+st.AccessToken)
}

// attempt делает одну попытку и сообщает, имеет ли смысл ретрай.
func (c *Client) attempt(ctx context.Context, method, target string, payload []byte, headers http.Header) (Response, bool) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var bodyReader io.Reader
	if payload != nil {
		bodyReader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(attemptCtx, method, target, bodyReader)
	if err != nil {
		return errResponse(http.StatusInternalServerError, []byte(err.Error())), false
	}
	req.Header = headers.Clone()

	resp, err := c.httpc.Do(req)
	if err != nil {
		// ответа не было вовсе — транспортная ошибка, наружу уходит 500
		online := c.sess.State().Online
		if !online {
			// офлайн фиксируем как процессный флаг и не ретраим
			c.sess.SetOnline(false)
		}
		return errResponse(http.StatusInternalServerError, []byte(err.Error())), online
	}
	defer resp.Body.Close()

	raw, readErr := io.ReadAll(resp.Body)
	if readErr != nil {
		raw = []byte(readErr.Error())
	}

	if resp.StatusCode == http.StatusForbidden {
		// 403 трактуем как умершую сессию: разлогин fire-and-forget,
		// вызывающий при этом получает обычный {error} и событие из стора
		go c.sess.Invalidate()
		return errResponse(resp.StatusCode, raw), false
	}

	if resp.StatusCode/100 == 2 {
		return Response{Data: raw}, false
	}

	if retryableStatus(resp.StatusCode) {
		slog.Debug("retryable api failure", "status", resp.StatusCode, "url", target)
		return errResponse(resp.StatusCode, raw), true
	}
	return errResponse(resp.StatusCode, raw), false
}
