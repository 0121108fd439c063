package trackingmore

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/time/rate"
)

// В отличие от apiclient этот модуль возвращает типизированные ошибки:
// вызывающие экраны показывают их текст как есть.
var (
	ErrInvalidAPIKey = errors.New("tracking API key is missing or invalid")
	ErrRateLimited   = errors.New("tracking provider rate limit exceeded, try again later")
	ErrTimeout       = errors.New("tracking provider timed out")
	ErrNetwork       = errors.New("tracking provider is unreachable")

	errNotFound = errors.New("tracking record not found")
)

type Tracking struct {
	TrackingNumber string       `json:"tracking_number"`
	CarrierCode    string       `json:"carrier_code"`
	Status         string       `json:"delivery_status"`
	LatestEvent    string       `json:"latest_event,omitempty"`
	LatestTime     string       `json:"latest_checkpoint_time,omitempty"`
	Checkpoints    []Checkpoint `json:"origin_info,omitempty"`
}

type Checkpoint struct {
	Time     string `json:"checkpoint_date"`
	Message  string `json:"tracking_detail"`
	Location string `json:"location,omitempty"`
}

type Client struct {
	baseURL string
	apiKey  string
	httpc   *http.Client
	limiter *rate.Limiter
}

func New(baseURL, apiKey string, perMinute int) *Client {
	if baseURL == "" {
		baseURL = "https://api.trackingmore.com"
	}
	if perMinute <= 0 {
		perMinute = 60
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpc: &http.Client{
			Timeout: 10 * time.Second,
		},
		limiter: rate.NewLimiter(rate.Limit(float64(perMinute)/60.0), perMinute),
	}
}

type meta struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type getResp struct {
	Meta meta       `json:"meta"`
	Data []Tracking `json:"data"`
}

type createResp struct {
	Meta meta `json:"meta"`
}

// GetTracking возвращает запись по трек-номеру. Записи не кэшируются —
// каждый вызов ходит к провайдеру. Если записи у провайдера ещё нет,
// она создаётся и GET повторяется ровно один раз.
func (c *Client) GetTracking(ctx context.Context, trackingNumber, carrierCode string) (*Tracking, error) {
	if trackingNumber == "" {
		return nil, errors.New("tracking number is required")
	}
	carrier := DetectCarrier(trackingNumber)
	if carrier == "" {
		carrier = carrierCode
	}
	if carrier == "" {
		return nil, errors.New("carrier could not be detected and none was supplied")
	}

	t, err := c.get(ctx, trackingNumber)
	if err == nil {
		return t, nil
	}
	if !errors.Is(err, errNotFound) {
		return nil, err
	}

	// самолечение: записи нет — создаём и повторяем GET один раз
	if err := c.create(ctx, trackingNumber, carrier); err != nil {
		return nil, err
	}
	return c.get(ctx, trackingNumber)
}

func (c *Client) get(ctx context.Context, trackingNumber string) (*Tracking, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, errors.Wrap(err, "rate limiter")
	}

	u := c.baseURL + "/v4/trackings/get?" + url.Values{"tracking_numbers": {trackingNumber}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, errors.Wrap(err, "new request")
	}
	req.Header.Set("Tracking-Api-Key", c.apiKey)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, classifyTransport(err)
	}
	defer resp.Body.Close()

	if err := classifyHTTP(resp.StatusCode); err != nil {
		return nil, err
	}

	var out getResp
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, errors.Wrap(err, "decode get response")
	}
	if err := classifyMeta(out.Meta); err != nil {
		return nil, err
	}
	if len(out.Data) == 0 {
		return nil, errNotFound
	}
	return &out.Data[0], nil
}

func (c *Client) create(ctx context.Context, trackingNumber, carrierCode string) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return errors.Wrap(err, "rate limiter")
	}

	body, err := json.Marshal(map[string]string{
		"tracking_number": trackingNumber,
		"carrier_code":    carrierCode,
	})
	if err != nil {
		return errors.Wrap(err, "marshal create body")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v4/trackings/create", bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "new request")
	}
	req.Header.Set("Tracking-Api-Key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return classifyTransport(err)
	}
	defer resp.Body.Close()

	if err := classifyHTTP(resp.StatusCode); err != nil {
		return err
	}

	var out createResp
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return errors.Wrap(err, "decode create response")
	}
	// 4016 — "already exists", для нас это тоже успех
	if out.Meta.Code == 4016 {
		return nil
	}
	return classifyMeta(out.Meta)
}

func classifyTransport(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return ErrTimeout
	}
	return errors.Wrap(ErrNetwork, err.Error())
}

func classifyHTTP(status int) error {
	switch {
	case status == http.StatusUnauthorized:
		return ErrInvalidAPIKey
	case status == http.StatusTooManyRequests:
		return ErrRateLimited
	case status/100 == 2:
		return nil
	case status/100 == 5:
		return errors.Wrapf(ErrNetwork, "provider http %d", status)
	}
	return errors.Errorf("tracking provider http %d", status)
}

// Коды TrackingMore в meta: 200/201 — успех, 401/4011 — ключ, 4029 — лимит,
// 4031 — записи ещё нет.
func classifyMeta(m meta) error {
	switch m.Code {
	case 200, 201:
		return nil
	case 401, 4011:
		return ErrInvalidAPIKey
	case 429, 4029:
		return ErrRateLimited
	case 4031:
		return errNotFound
	}
	return errors.Errorf("tracking provider error %d: %s", m.Code, m.Message)
}
