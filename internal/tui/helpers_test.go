package tui

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/finassist/fin/internal/api"
	"github.com/finassist/fin/internal/bus"
)

// backend is a fake assistant server. Every endpoint answers with a canned
// body unless a handler is registered for its path.
type backend struct {
	*httptest.Server

	mu       sync.Mutex
	handlers map[string]http.HandlerFunc
	requests []recordedRequest
}

type recordedRequest struct {
	Path  string
	Query string
	Body  string
}

var cannedResponses = map[string]string{
	"/chat":                         `{"response": "Hello! How can I help?"}`,
	"/chat/clear":                   `{"status": "success"}`,
	"/api/portfolio/performance":    `{"response": "Here is your report"}`,
	"/api/store_alpaca_credentials": `{"message": "Credentials saved", "metrics": {"Total Value": "$1,000.00", "Daily Change": "+1.5%", "Cash Available": "500", "Buying Power": "1000"}}`,
	"/api/portfolio/metrics":        `{"metrics": {"Total Value": "$12,345.67", "Daily Change": "-0.5%", "Cash Available": "$1,000.00", "Buying Power": "$2,000.00"}}`,
	"/api/portfolio/history":        `{"timestamp": [1700000000, 1700003600, 1700007200], "equity": [100, 110, 105], "profit_loss_pct": [0, 0.1, 0.05]}`,
	"/api/portfolio/positions":      `{"positions": [{"symbol": "AAPL", "qty": "10", "market_value": "1500", "unrealized_pl": "100", "unrealized_plpc": "0.07", "current_price": "150", "avg_entry_price": "140"}, {"symbol": "DUST", "qty": "0.001", "market_value": "0.005"}]}`,
	"/api/portfolio/orders":         `{"orders": [{"id": "o1", "symbol": "AAPL", "side": "buy", "type": "market", "qty": "10", "filled_qty": "10", "filled_avg_price": "150", "status": "filled", "submitted_at": "2024-01-02T15:04:05Z", "filled_at": "2024-01-02T15:04:06Z"}]}`,
	"/api/portfolio/trade":          `{"message": "Order placed", "order_id": "o2"}`,
	"/api/portfolio/analysis":       `{"symbol": "AAPL", "current_price": 150.25, "indicators": {"change_24h": -1.2, "volume": 1234567}}`,
	"/api/user/important-info":      `{"success": true, "data": [{"content": "House worth $300k", "type": "real_estate", "updated_at": "2024-01-02T10:00:00Z"}, {"content": "Retire at 60", "type": "goals", "updated_at": ""}]}`,
}

func newBackend(t *testing.T) *backend {
	t.Helper()
	b := &backend{handlers: make(map[string]http.HandlerFunc)}
	b.Server = httptest.NewServer(http.HandlerFunc(b.serve))
	t.Cleanup(b.Close)
	return b
}

func (b *backend) serve(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	b.mu.Lock()
	b.requests = append(b.requests, recordedRequest{Path: r.URL.Path, Query: r.URL.RawQuery, Body: string(body)})
	h := b.handlers[r.URL.Path]
	b.mu.Unlock()

	if h != nil {
		h(w, r)
		return
	}
	canned, ok := cannedResponses[r.URL.Path]
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = io.WriteString(w, canned)
}

// handle overrides the answer for path.
func (b *backend) handle(path string, h http.HandlerFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[path] = h
}

// respond makes path answer with status and body.
func (b *backend) respond(path string, status int, body string) {
	b.handle(path, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	})
}

// requestsTo returns the recorded requests for path.
func (b *backend) requestsTo(path string) []recordedRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []recordedRequest
	for _, r := range b.requests {
		if r.Path == path {
			out = append(out, r)
		}
	}
	return out
}

// chatMessages returns the messages posted to /chat.
func (b *backend) chatMessages(t *testing.T) []string {
	t.Helper()
	var out []string
	for _, r := range b.requestsTo("/chat") {
		var req api.ChatRequest
		if err := json.Unmarshal([]byte(r.Body), &req); err != nil {
			t.Fatalf("bad chat body %q: %v", r.Body, err)
		}
		out = append(out, req.Message)
	}
	return out
}

func (b *backend) client() *api.Client {
	return api.NewClient(b.URL, "test-session")
}

func testOptions(t *testing.T) Options {
	t.Helper()
	return Options{
		RefreshInterval: time.Hour,
		ProgressDelay:   time.Millisecond,
		DownloadDir:     t.TempDir(),
		Location:        time.UTC,
		ConfigPath:      "",
	}.withDefaults()
}

func testBus() *bus.Bus[tea.Cmd] {
	return bus.New[tea.Cmd]()
}

// cmdTimeout bounds how long runCmd waits for a single command. Timer
// commands such as refresh ticks never finish in time and are dropped.
const cmdTimeout = 300 * time.Millisecond

// runCmd executes cmd, expanding batches, and returns the produced messages.
func runCmd(t *testing.T, cmd tea.Cmd) []tea.Msg {
	t.Helper()
	if cmd == nil {
		return nil
	}

	done := make(chan tea.Msg, 1)
	go func() { done <- cmd() }()

	select {
	case msg := <-done:
		if batch, ok := msg.(tea.BatchMsg); ok {
			var out []tea.Msg
			for _, c := range batch {
				out = append(out, runCmd(t, c)...)
			}
			return out
		}
		if msg == nil {
			return nil
		}
		return []tea.Msg{msg}
	case <-time.After(cmdTimeout):
		return nil
	}
}

// findMsg returns the first message of type T.
func findMsg[T tea.Msg](msgs []tea.Msg) (T, bool) {
	for _, m := range msgs {
		if v, ok := m.(T); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}
