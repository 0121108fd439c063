package trackingmore

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDetectCarrier(t *testing.T) {
	require.Equal(t, "sf-express", DetectCarrier("SF123456789012"))
	require.Equal(t, "yto", DetectCarrier("YT1234567890123"))
	require.Equal(t, "jtexpress", DetectCarrier("JT1234567890"))
	require.Equal(t, "china-ems", DetectCarrier("EA123456789CN"))
	require.Equal(t, "sf-express", DetectCarrier("  sf123456789012  "))
	require.Equal(t, "", DetectCarrier("1Z999AA10123456784"))
	require.Equal(t, "", DetectCarrier(""))
}

func TestGetTracking_OK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v4/trackings/get", r.URL.Path)
		require.Equal(t, "k", r.Header.Get("Tracking-Api-Key"))
		require.Equal(t, "SF123456789012", r.URL.Query().Get("tracking_numbers"))
		_ = json.NewEncoder(w).Encode(getResp{
			Meta: meta{Code: 200},
			Data: []Tracking{{TrackingNumber: "SF123456789012", CarrierCode: "sf-express", Status: "transit"}},
		})
	}))
	defer srv.Close()

	c := New(srv.URL, "k", 600)
	tr, err := c.GetTracking(context.Background(), "SF123456789012", "")
	require.NoError(t, err)
	require.Equal(t, "transit", tr.Status)
}

func TestGetTracking_SelfHealCreateThenRetry(t *testing.T) {
	var gets, creates int
	var createdBody map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v4/trackings/get":
			gets++
			if creates == 0 {
				_ = json.NewEncoder(w).Encode(getResp{Meta: meta{Code: 4031, Message: "not found"}})
				return
			}
			_ = json.NewEncoder(w).Encode(getResp{
				Meta: meta{Code: 200},
				Data: []Tracking{{TrackingNumber: "JT1234567890", Status: "pickup"}},
			})
		case "/v4/trackings/create":
			creates++
			require.NoError(t, json.NewDecoder(r.Body).Decode(&createdBody))
			_ = json.NewEncoder(w).Encode(createResp{Meta: meta{Code: 201}})
		}
	}))
	defer srv.Close()

	c := New(srv.URL, "k", 600)
	tr, err := c.GetTracking(context.Background(), "JT1234567890", "ignored-hint")
	require.NoError(t, err)
	require.Equal(t, "pickup", tr.Status)
	require.Equal(t, 2, gets)
	require.Equal(t, 1, creates)
	// паттерн выиграл у подсказки вызывающего
	require.Equal(t, "jtexpress", createdBody["carrier_code"])
	require.Equal(t, "JT1234567890", createdBody["tracking_number"])
}

func TestGetTracking_CarrierHintFallback(t *testing.T) {
	var createdBody map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v4/trackings/get":
			if createdBody == nil {
				_ = json.NewEncoder(w).Encode(getResp{Meta: meta{Code: 4031}})
				return
			}
			_ = json.NewEncoder(w).Encode(getResp{Meta: meta{Code: 200}, Data: []Tracking{{Status: "transit"}}})
		case "/v4/trackings/create":
			require.NoError(t, json.NewDecoder(r.Body).Decode(&createdBody))
			_ = json.NewEncoder(w).Encode(createResp{Meta: meta{Code: 201}})
		}
	}))
	defer srv.Close()

	c := New(srv.URL, "k", 600)
	_, err := c.GetTracking(context.Background(), "1Z999AA10123456784", "ups")
	require.NoError(t, err)
	require.Equal(t, "ups", createdBody["carrier_code"])
}

func TestGetTracking_NoCarrierAtAll(t *testing.T) {
	c := New("http://unused", "k", 600)
	_, err := c.GetTracking(context.Background(), "1Z999AA10123456784", "")
	require.Error(t, err)
}

func TestGetTracking_ErrorClassification(t *testing.T) {
	cases := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{"http 401", http.StatusUnauthorized, "", ErrInvalidAPIKey},
		{"http 429", http.StatusTooManyRequests, "", ErrRateLimited},
		{"meta 4011", http.StatusOK, `{"meta":{"code":4011}}`, ErrInvalidAPIKey},
		{"meta 4029", http.StatusOK, `{"meta":{"code":4029}}`, ErrRateLimited},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				if tc.body != "" {
					_, _ = w.Write([]byte(tc.body))
				}
			}))
			defer srv.Close()

			c := New(srv.URL, "k", 600)
			_, err := c.GetTracking(context.Background(), "SF123456789012", "")
			require.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestGetTracking_NetworkError(t *testing.T) {
	c := New("http://127.0.0.1:1", "k", 600)
	_, err := c.GetTracking(context.Background(), "SF123456789012", "")
	require.Error(t, err)
	require.ErrorIs(t, err, ErrNetwork)
}

func TestCreate_AlreadyExistsIsSuccess(t *testing.T) {
	var gets int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v4/trackings/get":
			gets++
			if gets == 1 {
				_ = json.NewEncoder(w).Encode(getResp{Meta: meta{Code: 4031}})
				return
			}
			_ = json.NewEncoder(w).Encode(getResp{Meta: meta{Code: 200}, Data: []Tracking{{Status: "delivered"}}})
		case "/v4/trackings/create":
			_ = json.NewEncoder(w).Encode(createResp{Meta: meta{Code: 4016, Message: "already exists"}})
		}
	}))
	defer srv.Close()

	c := New(srv.URL, "k", 600)
	tr, err := c.GetTracking(context.Background(), "SF123456789012", "")
	require.NoError(t, err)
	require.Equal(t, "delivered", tr.Status)
}
