package relay

import (
	"context"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/quantfi/flasharb/business/execution/domain"
	"github.com/quantfi/flasharb/internal/apperror"
	"github.com/quantfi/flasharb/internal/logger"
)

func testRequest() *domain.SettlementRequest {
	return &domain.SettlementRequest{
		RouteID:           "CPOOL0001:CPOOL0002",
		AttemptID:         "a1",
		Contract:          "CCONTRACT",
		LoanPool:          "CLOANPOOL",
		BorrowToken:       "stellar:CUSDC000",
		IntermediateToken: "stellar:native",
		Amount:            big.NewInt(1000000),
		BuyVenue:          "soroswap",
		BuyPool:           "CPOOL0001",
		SellVenue:         "aquarius",
		SellPool:          "CPOOL0002",
		MinProfitBps:      50,
		MaxSlippageBps:    100,
		BuiltAt:           time.Now(),
	}
}

func newClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	c, err := NewClient(Config{BaseURL: baseURL, Timeout: time.Second}, logger.Discard())
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	return c
}

func TestClient_SubmitSettled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/settlements" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}

		var req domain.SettlementRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		if req.RouteID != "CPOOL0001:CPOOL0002" || req.Amount.Int64() != 1000000 {
			t.Errorf("relay received wrong payload: %+v", req)
		}

		json.NewEncoder(w).Encode(map[string]string{
			"status":    "settled",
			"reference": "tx-feedface",
		})
	}))
	defer server.Close()

	ref, err := newClient(t, server.URL).Submit(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if ref != "tx-feedface" {
		t.Errorf("reference = %s, want tx-feedface", ref)
	}
}

func TestClient_SubmitRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{
			"status": "rejected",
			"error":  "slippage exceeded",
		})
	}))
	defer server.Close()

	_, err := newClient(t, server.URL).Submit(context.Background(), testRequest())
	if !apperror.HasCode(err, apperror.CodeSettlementFailed) {
		t.Errorf("expected CodeSettlementFailed, got %v", err)
	}
}

func TestClient_SubmitServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "internal error", http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := newClient(t, server.URL).Submit(context.Background(), testRequest())
	if !apperror.HasCode(err, apperror.CodeSettlementFailed) {
		t.Errorf("expected CodeSettlementFailed, got %v", err)
	}
}
