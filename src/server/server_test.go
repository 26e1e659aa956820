package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"market-watchlist/src/helpers"
	"market-watchlist/src/logger"
	"market-watchlist/src/models"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeService struct {
	mu         sync.Mutex
	selection  []string
	expanded   string
	timeframes map[string]models.MTimeframe
	prefs      models.MPreferences
	refreshErr error
	refreshes  int
}

func newFakeService() *fakeService {
	return &fakeService{timeframes: map[string]models.MTimeframe{}, prefs: models.DefaultPreferences()}
}

func (f *fakeService) Add(symbol string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if strings.TrimSpace(symbol) == "" || symbol == "BAD" {
		return helpers.NewValidationError("symbol cannot be empty")
	}
	f.selection = append(f.selection, symbol)
	return nil
}

func (f *fakeService) Remove(symbol string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := f.selection[:0]
	for _, s := range f.selection {
		if s != symbol {
			out = append(out, s)
		}
	}
	f.selection = out
	return nil
}

func (f *fakeService) tracked(symbol string) bool {
	for _, s := range f.selection {
		if s == symbol {
			return true
		}
	}
	return false
}

func (f *fakeService) Toggle(symbol string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.tracked(symbol) {
		return false, helpers.NewValidationError("symbol " + symbol + " is not tracked")
	}
	if f.expanded == symbol {
		f.expanded = ""
		return false, nil
	}
	f.expanded = symbol
	return true, nil
}

func (f *fakeService) SetTimeframe(symbol string, tf models.MTimeframe) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.tracked(symbol) {
		return helpers.NewValidationError("symbol " + symbol + " is not tracked")
	}
	f.timeframes[symbol] = tf
	return nil
}

func (f *fakeService) ToggleChartType(symbol string) (string, error) {
	return models.ChartLine, nil
}

func (f *fakeService) Search(query string) []models.MAssetView {
	if query == "" {
		return []models.MAssetView{}
	}
	return []models.MAssetView{{Symbol: strings.ToUpper(query) + "USD"}}
}

func (f *fakeService) View() models.MDashboardView {
	f.mu.Lock()
	defer f.mu.Unlock()
	return models.MDashboardView{
		Status:      models.StatusLive,
		Generation:  uint64(f.refreshes + 1),
		Selection:   append([]string{}, f.selection...),
		Expanded:    f.expanded,
		Preferences: f.prefs,
	}
}

func (f *fakeService) Preferences() models.MPreferences {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.prefs
}

func (f *fakeService) SetPreferences(prefs models.MPreferences) error {
	if prefs.Theme != "light" && prefs.Theme != "dark" {
		return helpers.NewValidationError("unknown theme")
	}
	f.mu.Lock()
	f.prefs = prefs
	f.mu.Unlock()
	return nil
}

func (f *fakeService) Refresh(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refreshes++
	return f.refreshErr
}

// -----------------------------------------------------------------------------

func newTestServer(t *testing.T) (*APIServer, *fakeService) {
	t.Helper()
	cfg := &models.MConfig{Host: "127.0.0.1", Port: 8090, LogLevel: "CRITICAL"}
	svc := newFakeService()
	return NewAPIServer(cfg, svc, logger.NewLogger(cfg, "ServerTest")), svc
}

func do(t *testing.T, s *APIServer, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

// -----------------------------------------------------------------------------

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/api/health", "")

	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[map[string]interface{}](t, rec)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, models.StatusLive, body["feed_status"])
}

func TestWatchlistRoutes(t *testing.T) {
	s, svc := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/api/watchlist/EURUSD", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"EURUSD"}, decode[models.MDashboardView](t, rec).Selection)

	rec = do(t, s, http.MethodPost, "/api/expand/EURUSD", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"symbol":"EURUSD","expanded":true}`, rec.Body.String())

	rec = do(t, s, http.MethodDelete, "/api/watchlist/EURUSD", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, svc.View().Selection)
}

func TestBadInputIs400(t *testing.T) {
	s, _ := newTestServer(t)

	testCases := []struct {
		method, target, body string
	}{
		{http.MethodPost, "/api/watchlist/BAD", ""},
		{http.MethodPost, "/api/expand/UNKNOWN", ""},
		{http.MethodPut, "/api/chart/EURUSD?timeframe=M5", ""},
		{http.MethodPut, "/api/chart/UNKNOWN?timeframe=H1", ""},
		{http.MethodPut, "/api/preferences", `{"theme":`},
		{http.MethodPut, "/api/preferences", `{"theme":"neon","fontSize":16,"language":"en"}`},
	}
	for _, tc := range testCases {
		t.Run(tc.method+" "+tc.target, func(t *testing.T) {
			rec := do(t, s, tc.method, tc.target, tc.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.NotEmpty(t, decode[map[string]string](t, rec)["error"])
		})
	}
}

func TestChartRoutes(t *testing.T) {
	s, svc := newTestServer(t)
	require.NoError(t, svc.Add("EURUSD"))

	rec := do(t, s, http.MethodPut, "/api/chart/EURUSD?timeframe=h1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.TimeframeH1, svc.timeframes["EURUSD"])

	rec = do(t, s, http.MethodPost, "/api/chart/EURUSD/type", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"symbol":"EURUSD","chart_type":"line"}`, rec.Body.String())
}

func TestSearchRoute(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/api/assets?q=eur", "")

	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[map[string][]models.MAssetView](t, rec)
	require.Len(t, body["assets"], 1)
	assert.Equal(t, "EURUSD", body["assets"][0].Symbol)
}

func TestPreferencesRoutes(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/api/preferences", "")
	assert.JSONEq(t, `{"theme":"light","fontSize":16,"language":"fr"}`, rec.Body.String())

	rec = do(t, s, http.MethodPut, "/api/preferences", `{"theme":"dark","fontSize":18,"language":"en"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"theme":"dark","fontSize":18,"language":"en"}`, rec.Body.String())
}

func TestRefreshRoute(t *testing.T) {
	s, svc := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/api/refresh", "")
	require.Equal(t, http.StatusOK, rec.Code)

	svc.refreshErr = helpers.NewTransientFetchError("GET /assets", errors.New("refused"))
	rec = do(t, s, http.MethodPost, "/api/refresh", "")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	s, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodOptions, "/api/watchlist/EURUSD", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()

	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
}

// -----------------------------------------------------------------------------

func dialWS(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	return conn
}

func TestWebSocketReceivesBroadcasts(t *testing.T) {
	s, _ := newTestServer(t)
	go s.handleWebsockets()
	defer s.Stop()
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	s.Broadcast(models.MDashboardView{Status: models.StatusLoading, Generation: 0})

	conn := dialWS(t, srv)
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	var first models.MDashboardView
	require.NoError(t, conn.ReadJSON(&first))
	assert.Equal(t, models.StatusLoading, first.Status)

	s.Broadcast(models.MDashboardView{Status: models.StatusLive, Generation: 7})
	var second models.MDashboardView
	require.NoError(t, conn.ReadJSON(&second))
	assert.Equal(t, uint64(7), second.Generation)
}

func TestWebSocketRefreshCommand(t *testing.T) {
	s, svc := newTestServer(t)
	go s.handleWebsockets()
	defer s.Stop()
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	conn := dialWS(t, srv)
	defer conn.Close()
	require.Eventually(t, func() bool {
		s.stateMutex.RLock()
		defer s.stateMutex.RUnlock()
		return len(s.clients) == 1
	}, time.Second, time.Millisecond)

	require.NoError(t, conn.WriteJSON(MClientCommand{Command: "refresh"}))
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	var view models.MDashboardView
	require.NoError(t, conn.ReadJSON(&view))
	assert.Equal(t, uint64(2), view.Generation)
	assert.Equal(t, 1, svc.refreshes)
}

func TestSlowClientIsDropped(t *testing.T) {
	s, _ := newTestServer(t)
	go s.handleWebsockets()
	defer s.Stop()

	slow := &Client{id: "slow", hub: s, send: make(chan models.MDashboardView)}
	s.register <- slow

	s.Broadcast(models.MDashboardView{Generation: 1})

	require.Eventually(t, func() bool {
		s.stateMutex.RLock()
		defer s.stateMutex.RUnlock()
		_, ok := s.clients[slow]
		return !ok
	}, time.Second, time.Millisecond)
	_, open := <-slow.send
	assert.False(t, open)
}
