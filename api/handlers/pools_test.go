package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/openalpha/prize-savings/api"
	"github.com/openalpha/prize-savings/api/handlers"
	"github.com/openalpha/prize-savings/api/types"
)

func newHandler() *handlers.PoolHandler {
	return handlers.NewPoolHandler(api.NewMockService())
}

func doGet(t *testing.T, h http.HandlerFunc, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func TestHandlePools(t *testing.T) {
	h := newHandler()

	rec := doGet(t, h.HandlePools, "/v1/pools")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var body struct {
		Pools []*types.PoolSummary `json:"pools"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Pools) != 2 {
		t.Errorf("pools = %d, want 2", len(body.Pools))
	}
}

func TestHandlePoolsMethodNotAllowed(t *testing.T) {
	h := newHandler()

	req := httptest.NewRequest(http.MethodPost, "/v1/pools", nil)
	rec := httptest.NewRecorder()
	h.HandlePools(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusMethodNotAllowed)
	}
}

func TestHandlePool(t *testing.T) {
	h := newHandler()

	tests := []struct {
		name       string
		path       string
		wantStatus int
	}{
		{"existing pool", "/v1/pools/1", http.StatusOK},
		{"unknown pool", "/v1/pools/999", http.StatusNotFound},
		{"bad pool id", "/v1/pools/abc", http.StatusBadRequest},
		{"unknown endpoint", "/v1/pools/1/history", http.StatusNotFound},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := doGet(t, h.HandlePool, tc.path)
			if rec.Code != tc.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tc.wantStatus)
			}
		})
	}

	rec := doGet(t, h.HandlePool, "/v1/pools/1")
	var pool types.PoolSummary
	if err := json.Unmarshal(rec.Body.Bytes(), &pool); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if pool.PoolID != 1 {
		t.Errorf("pool_id = %d, want 1", pool.PoolID)
	}
	if pool.Denom != "uusdc" {
		t.Errorf("denom = %s, want uusdc", pool.Denom)
	}
}

func TestHandlePoolDraws(t *testing.T) {
	h := newHandler()

	rec := doGet(t, h.HandlePool, "/v1/pools/1/draws")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var body struct {
		Draws []*types.DrawRecord `json:"draws"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Draws) != 2 {
		t.Fatalf("draws = %d, want 2", len(body.Draws))
	}
	if body.Draws[0].RoundID != 8 {
		t.Errorf("newest round = %d, want 8", body.Draws[0].RoundID)
	}

	rec = doGet(t, h.HandlePool, "/v1/pools/1/draws?limit=1")
	body.Draws = nil
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Draws) != 1 {
		t.Errorf("limited draws = %d, want 1", len(body.Draws))
	}
}

func TestHandleDrawStatus(t *testing.T) {
	h := newHandler()

	// Pool 2 is seeded mid-draw
	rec := doGet(t, h.HandlePool, "/v1/pools/2/draw-status")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var status types.DrawStatus
	if err := json.Unmarshal(rec.Body.Bytes(), &status); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !status.RandomnessPending {
		t.Error("expected randomness_pending")
	}

	// Pool 1 has no draw in flight
	rec = doGet(t, h.HandlePool, "/v1/pools/1/draw-status")
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestHandlePosition(t *testing.T) {
	h := newHandler()

	addr := "cosmos1qypqxpq9qcrsszg2pvxq6rs0zqg3yyc5lzv7xu"
	rec := doGet(t, h.HandlePool, "/v1/pools/1/position/"+addr)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var pos types.PositionSummary
	if err := json.Unmarshal(rec.Body.Bytes(), &pos); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if pos.Owner != addr {
		t.Errorf("owner = %s, want %s", pos.Owner, addr)
	}

	rec = doGet(t, h.HandlePool, "/v1/pools/1/position/")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestHandleUserPools(t *testing.T) {
	h := newHandler()

	rec := doGet(t, h.HandleUserPools, "/v1/users/cosmos1qypqxpq9qcrsszg2pvxq6rs0zqg3yyc5lzv7xu/pools")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var body struct {
		Address string   `json:"address"`
		Pools   []uint64 `json:"pools"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Pools) != 1 || body.Pools[0] != 1 {
		t.Errorf("pools = %v, want [1]", body.Pools)
	}

	rec = doGet(t, h.HandleUserPools, "/v1/users/pools")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}
