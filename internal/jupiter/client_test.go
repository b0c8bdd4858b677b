package jupiter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestClient_GetQuote(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/quote" {
			t.Errorf("expected path /quote, got %s", r.URL.Path)
		}

		q := r.URL.Query()
		if q.Get("inputMint") != "mintA" {
			t.Errorf("inputMint mismatch: %s", q.Get("inputMint"))
		}
		if q.Get("outputMint") != "mintB" {
			t.Errorf("outputMint mismatch: %s", q.Get("outputMint"))
		}
		if q.Get("amount") != "1000000" {
			t.Errorf("amount mismatch: %s", q.Get("amount"))
		}
		if q.Get("slippageBps") != "50" {
			t.Errorf("slippageBps mismatch: %s", q.Get("slippageBps"))
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"inputMint":"mintA","outputMint":"mintB","outAmount":"2000000","routePlan":[]}`))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	quote, err := client.GetQuote(context.Background(), "mintA", "mintB", 1000000, 50)
	if err != nil {
		t.Fatalf("GetQuote: %v", err)
	}

	if quote.OutAmount != 2000000 {
		t.Errorf("expected outAmount 2000000, got %f", quote.OutAmount)
	}
	if !strings.Contains(string(quote.Raw), `"routePlan"`) {
		t.Error("expected raw payload to carry the full quote body")
	}
}

func TestClient_GetQuote_NumericOutAmount(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"outAmount":2500000}`))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	quote, err := client.GetQuote(context.Background(), "a", "b", 1000000, 50)
	if err != nil {
		t.Fatalf("GetQuote: %v", err)
	}
	if quote.OutAmount != 2500000 {
		t.Errorf("expected outAmount 2500000, got %f", quote.OutAmount)
	}
}

func TestClient_GetQuote_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"No route found"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	_, err := client.GetQuote(context.Background(), "a", "b", 1, 50)
	if err == nil {
		t.Fatal("expected error for non-200 response")
	}
	if !strings.Contains(err.Error(), "No route found") {
		t.Errorf("expected upstream message in error, got: %v", err)
	}
}

func TestClient_BuildSwap(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/swap" {
			t.Errorf("expected path /swap, got %s", r.URL.Path)
		}
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}

		var req map[string]json.RawMessage
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if string(req["userPublicKey"]) != `"wallet1"` {
			t.Errorf("userPublicKey mismatch: %s", req["userPublicKey"])
		}
		if string(req["wrapAndUnwrapSol"]) != "true" {
			t.Errorf("wrapAndUnwrapSol mismatch: %s", req["wrapAndUnwrapSol"])
		}
		if !strings.Contains(string(req["quoteResponse"]), `"outAmount"`) {
			t.Error("expected quoteResponse to carry the raw quote")
		}

		w.Write([]byte(`{"swapTransaction":"AQACAw=="}`))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	quote := &Quote{OutAmount: 2000000, Raw: json.RawMessage(`{"outAmount":"2000000"}`)}

	tx, err := client.BuildSwap(context.Background(), quote, "wallet1")
	if err != nil {
		t.Fatalf("BuildSwap: %v", err)
	}
	if tx != "AQACAw==" {
		t.Errorf("expected swapTransaction AQACAw==, got %s", tx)
	}
}

func TestClient_BuildSwap_MissingTransaction(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	quote := &Quote{Raw: json.RawMessage(`{}`)}

	_, err := client.BuildSwap(context.Background(), quote, "wallet1")
	if err == nil {
		t.Fatal("expected error for missing swapTransaction")
	}
}
