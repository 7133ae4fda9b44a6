package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"FinSignal/internal/domain/models"
	"FinSignal/internal/repository"
	"FinSignal/internal/services/analytics"
	"FinSignal/internal/usecase"

	"github.com/labstack/echo/v4"
)

type envelope struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type listData struct {
	Rows  json.RawMessage `json:"rows"`
	Total int64           `json:"total"`
}

type stubGenerator struct{ err error }

func (s stubGenerator) GenerateSignal(context.Context, string, string) (models.Signal, error) {
	return models.Signal{}, s.err
}

func newTestEcho(t *testing.T) (*echo.Echo, *repository.MemoryStore) {
	t.Helper()
	store := repository.NewMemoryStore()
	gen := usecase.NewSignalGenerator(store, store, analytics.DefaultPolicy())
	e := echo.New()
	NewSignalsEchoHandler(nil, gen, usecase.NewSignalQueries(store), nil).RegisterRoutes(e)
	NewPricesEchoHandler(nil, usecase.NewPriceRecorder(store, nil)).RegisterRoutes(e)
	NewTokensEchoHandler(nil, store).RegisterRoutes(e)
	return e, store
}

func do(t *testing.T, e *echo.Echo, method, target, body string) (int, envelope) {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("%s %s: decode %q: %v", method, target, rec.Body.String(), err)
	}
	return rec.Code, env
}

func TestGenerateAndFetchSignal(t *testing.T) {
	e, _ := newTestEcho(t)

	code, env := do(t, e, http.MethodPost, "/api/signals", `{"symbol":"btc"}`)
	if code != http.StatusCreated || env.Status != http.StatusCreated {
		t.Fatalf("generate code=%d body=%s", code, env.Data)
	}
	var created models.Signal
	if err := json.Unmarshal(env.Data, &created); err != nil {
		t.Fatalf("decode signal: %v", err)
	}
	if created.TokenSymbol != "BTC" || created.Timeframe != "3D" || created.SignalType != models.SignalHold {
		t.Fatalf("created=%+v", created)
	}
	if len(created.Reasons) == 0 {
		t.Fatalf("empty history must explain itself")
	}

	code, env = do(t, e, http.MethodGet, "/api/signals/"+created.ID, "")
	if code != http.StatusOK {
		t.Fatalf("get code=%d", code)
	}
	var fetched models.Signal
	_ = json.Unmarshal(env.Data, &fetched)
	if fetched.ID != created.ID || !fetched.CreatedAt.Equal(created.CreatedAt) {
		t.Fatalf("fetched=%+v", fetched)
	}

	code, env = do(t, e, http.MethodGet, "/api/signals?symbol=btc&limit=5", "")
	var list listData
	_ = json.Unmarshal(env.Data, &list)
	if code != http.StatusOK || list.Total != 1 {
		t.Fatalf("list code=%d total=%d", code, list.Total)
	}
}

func TestSignalErrorsMapToStatuses(t *testing.T) {
	e, _ := newTestEcho(t)

	if code, _ := do(t, e, http.MethodGet, "/api/signals/does-not-exist", ""); code != http.StatusNotFound {
		t.Fatalf("unknown id code=%d", code)
	}
	if code, _ := do(t, e, http.MethodPost, "/api/signals", `{"timeframe":"1D"}`); code != http.StatusBadRequest {
		t.Fatalf("missing symbol code=%d", code)
	}
	if code, _ := do(t, e, http.MethodPost, "/api/signals", `{"symbol":"BTC","timeframe":"3Q"}`); code != http.StatusBadRequest {
		t.Fatalf("bad timeframe code=%d", code)
	}
	if code, _ := do(t, e, http.MethodGet, "/api/signals?limit=500", ""); code != http.StatusBadRequest {
		t.Fatalf("limit above max code=%d", code)
	}

	cases := []struct {
		err  error
		want int
	}{
		{&models.DataUnavailableError{Source: "price_history", Err: errors.New("down")}, http.StatusServiceUnavailable},
		{models.ErrGenerationInFlight, http.StatusConflict},
		{errors.New("unexpected"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		e := echo.New()
		NewSignalsEchoHandler(nil, stubGenerator{tc.err}, nil, nil).RegisterRoutes(e)
		if code, _ := do(t, e, http.MethodPost, "/api/signals", `{"symbol":"BTC"}`); code != tc.want {
			t.Fatalf("%v: code=%d want %d", tc.err, code, tc.want)
		}
	}
}

func TestStoreAndReadPrices(t *testing.T) {
	e, _ := newTestEcho(t)
	day := time.Now().UTC().Add(-24 * time.Hour).Truncate(time.Second)

	body := `{"symbol":"eth","points":[
		{"timestamp":"` + day.Format(time.RFC3339) + `","open_price":10,"high_price":12,"low_price":9,"close_price":11,"volume":100},
		{"timestamp":"` + day.Format(time.RFC3339) + `","open_price":10,"high_price":12,"low_price":9,"close_price":11}
	]}`
	code, env := do(t, e, http.MethodPost, "/api/prices", body)
	if code != http.StatusCreated {
		t.Fatalf("store code=%d body=%s", code, env.Data)
	}
	var counts map[string]int
	_ = json.Unmarshal(env.Data, &counts)
	if counts["inserted"] != 1 || counts["received"] != 2 {
		t.Fatalf("counts=%v", counts)
	}

	code, env = do(t, e, http.MethodGet, "/api/prices?symbol=ETH", "")
	var list listData
	_ = json.Unmarshal(env.Data, &list)
	if code != http.StatusOK || list.Total != 1 {
		t.Fatalf("history code=%d total=%d", code, list.Total)
	}

	bad := `{"symbol":"eth","points":[{"timestamp":"soon","open_price":1,"high_price":1,"low_price":1,"close_price":1}]}`
	if code, _ := do(t, e, http.MethodPost, "/api/prices", bad); code != http.StatusBadRequest {
		t.Fatalf("bad timestamp code=%d", code)
	}
	neg := `{"symbol":"eth","points":[{"timestamp":"2024-01-01","open_price":1,"high_price":1,"low_price":1,"close_price":-1}]}`
	if code, _ := do(t, e, http.MethodPost, "/api/prices", neg); code != http.StatusBadRequest {
		t.Fatalf("negative close code=%d", code)
	}
}

func TestListTokens(t *testing.T) {
	e, store := newTestEcho(t)
	store.AddTokens(
		models.Token{Symbol: "sol", Name: "Solana", IsActive: true},
		models.Token{Symbol: "eth", Name: "Ethereum", MarketCap: models.Float(4e11), IsActive: true},
		models.Token{Symbol: "old", Name: "Retired", MarketCap: models.Float(9e12)},
		models.Token{Symbol: "btc", Name: "Bitcoin", MarketCap: models.Float(1.3e12), IsActive: true},
	)

	code, env := do(t, e, http.MethodGet, "/api/tokens", "")
	if code != http.StatusOK {
		t.Fatalf("tokens code=%d body=%s", code, env.Data)
	}
	var list listData
	if err := json.Unmarshal(env.Data, &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	var tokens []models.Token
	if err := json.Unmarshal(list.Rows, &tokens); err != nil {
		t.Fatalf("decode tokens: %v", err)
	}
	if list.Total != 3 || len(tokens) != 3 {
		t.Fatalf("total=%d tokens=%+v", list.Total, tokens)
	}
	for i, want := range []string{"BTC", "ETH", "SOL"} {
		if tokens[i].Symbol != want {
			t.Fatalf("tokens[%d]=%s want %s", i, tokens[i].Symbol, want)
		}
	}
	if tokens[2].MarketCap != nil || tokens[0].ID == "" {
		t.Fatalf("unexpected token fields %+v", tokens)
	}
}
