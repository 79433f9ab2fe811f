package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finassist/fin/internal/keyring"
)

func TestNewClient(t *testing.T) {
	client := NewClient("https://fin.example.com/", "cookie-123")

	assert.Equal(t, "https://fin.example.com", client.BaseURL)
	assert.Equal(t, "cookie-123", client.Session())
	assert.NotNil(t, client.HTTPClient())
}

func TestNewClient_NoTimeout(t *testing.T) {
	client := NewClient("https://fin.example.com", "")

	assert.Zero(t, client.HTTPClient().Timeout)
}

func TestClient_WithTimeout(t *testing.T) {
	client := NewClient("https://fin.example.com", "").WithTimeout(5 * time.Second)
	assert.Equal(t, 5*time.Second, client.HTTPClient().Timeout)

	client.WithTimeout(-time.Second)
	assert.Equal(t, 5*time.Second, client.HTTPClient().Timeout)

	client.WithTimeout(0)
	assert.Zero(t, client.HTTPClient().Timeout)
}

func TestClient_SlowAnswerIsAwaited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"response": "Report ready"}`))
	}))
	defer server.Close()

	resp, err := NewClient(server.URL, "cookie").WithTimeout(0).SendChat(context.Background(), "report")

	require.NoError(t, err)
	assert.Equal(t, "Report ready", resp.Response)
}

func TestClient_Get_SendsSessionAndRequestID(t *testing.T) {
	var cookie, requestID string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/portfolio/metrics", r.URL.Path)
		if c, err := r.Cookie(SessionCookie); err == nil {
			cookie = c.Value
		}
		requestID = r.Header.Get("X-Request-ID")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient(server.URL, "my-session")
	resp, err := client.Get(context.Background(), "/api/portfolio/metrics")

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode())
	assert.Equal(t, "my-session", cookie)
	assert.Len(t, requestID, 36)
}

func TestClient_Get_NoSessionNoCookie(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, err := r.Cookie(SessionCookie)
		assert.ErrorIs(t, err, http.ErrNoCookie)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	_, err := NewClient(server.URL, "").Get(context.Background(), "/")
	require.NoError(t, err)
}

func TestClient_GetWithParams(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1Y", r.URL.Query().Get("timeframe"))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	_, err := NewClient(server.URL, "s").GetWithParams(context.Background(), "/api/portfolio/history",
		map[string]string{"timeframe": "1Y"})
	require.NoError(t, err)
}

func TestClient_Post_JSONBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body ChatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "hello", body.Message)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	_, err := NewClient(server.URL, "s").Post(context.Background(), "/chat", ChatRequest{Message: "hello"})
	require.NoError(t, err)
}

func TestClient_RefreshedSessionCookieIsKept(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: SessionCookie, Value: "rotated"})
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient(server.URL, "original")
	_, err := client.Get(context.Background(), "/api/portfolio/metrics")

	require.NoError(t, err)
	assert.Equal(t, "rotated", client.Session())
}

func TestClient_DoesNotFollowRedirects(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/login" {
			t.Error("redirect was followed")
		}
		http.Redirect(w, r, "/login", http.StatusFound)
	}))
	defer server.Close()

	resp, err := NewClient(server.URL, "expired").Get(context.Background(), "/api/portfolio/metrics")

	require.NoError(t, err)
	assert.Equal(t, http.StatusFound, resp.StatusCode())
}

func TestClient_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	_, err := NewClient(server.URL, "s").Get(context.Background(), "/chat")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "request failed")
}

func TestClient_RecordsMetrics(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	defer server.Close()

	reg := prometheus.NewRegistry()
	client := NewClient(server.URL, "s").WithMetrics(NewRequestMetrics(reg))

	_, err := client.Get(context.Background(), "/api/portfolio/orders")
	require.NoError(t, err)
	_, err = client.Get(context.Background(), "/api/portfolio/orders")
	require.NoError(t, err)

	families, err := reg.Gather()
	require.NoError(t, err)

	var total float64
	for _, mf := range families {
		if mf.GetName() != "fin_api_requests_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			labels := map[string]string{}
			for _, lp := range m.GetLabel() {
				labels[lp.GetName()] = lp.GetValue()
			}
			assert.Equal(t, "/api/portfolio/orders", labels["path"])
			assert.Equal(t, "418", labels["code"])
			total += m.GetCounter().GetValue()
		}
	}
	assert.Equal(t, 2.0, total)
}

func TestNewClientWithSession(t *testing.T) {
	t.Run("from keyring", func(t *testing.T) {
		store := keyring.NewMockStore()
		require.NoError(t, store.Set(keyring.KeySession, "stored"))

		client, err := NewClientWithSession(store, "https://fin.example.com")

		require.NoError(t, err)
		assert.Equal(t, "stored", client.Session())
	})

	t.Run("not logged in", func(t *testing.T) {
		_, err := NewClientWithSession(keyring.NewMockStore(), "https://fin.example.com")
		assert.ErrorIs(t, err, ErrNotLoggedIn)
	})

	t.Run("keyring failure", func(t *testing.T) {
		store := keyring.NewMockStore().WithGetError(errors.New("locked"))

		_, err := NewClientWithSession(store, "https://fin.example.com")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to retrieve session")
	})
}
