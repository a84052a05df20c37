package chain

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestGatewayIssueIdentity(t *testing.T) {
	var received IssueRequest
	gatewaySrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/identities" {
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Fatalf("decode error: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"txRef": "0xfeed"})
	}))
	defer gatewaySrv.Close()

	gateway := NewGateway(gatewaySrv.URL, 5*time.Second)
	txRef, err := gateway.IssueIdentity(context.Background(), IssueRequest{
		TouristWallet:   "0x8ba1f109551bD432803012645Ac136ddd64DBA72",
		KYCHash:         "0xabc",
		ItineraryHash:   "0xdef",
		DurationSeconds: 604800,
	})
	if err != nil {
		t.Fatalf("issue error: %v", err)
	}
	if txRef != "0xfeed" {
		t.Fatalf("expected txRef 0xfeed, got %s", txRef)
	}
	if received.KYCHash != "0xabc" || received.DurationSeconds != 604800 {
		t.Fatalf("unexpected forwarded payload: %+v", received)
	}
}

func TestGatewayErrorMessagePreserved(t *testing.T) {
	gatewaySrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadGateway)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "nonce too low"})
	}))
	defer gatewaySrv.Close()

	gateway := NewGateway(gatewaySrv.URL, 5*time.Second)
	_, err := gateway.IssueIdentity(context.Background(), IssueRequest{})
	var chainErr *Error
	if !errors.As(err, &chainErr) {
		t.Fatalf("expected chain.Error, got %v", err)
	}
	if chainErr.Message != "nonce too low" {
		t.Fatalf("expected gateway message, got %q", chainErr.Message)
	}
	if chainErr.Timeout {
		t.Fatalf("did not expect a timeout error")
	}
}

func TestGatewayTimeout(t *testing.T) {
	release := make(chan struct{})
	gatewaySrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		<-release
		w.WriteHeader(http.StatusOK)
	}))
	defer func() {
		close(release)
		gatewaySrv.Close()
	}()

	gateway := NewGateway(gatewaySrv.URL, 50*time.Millisecond)
	_, err := gateway.IssueIdentity(context.Background(), IssueRequest{})
	var chainErr *Error
	if !errors.As(err, &chainErr) {
		t.Fatalf("expected chain.Error, got %v", err)
	}
	if !chainErr.Timeout {
		t.Fatalf("expected timeout to be flagged, got %+v", chainErr)
	}
}

func TestGatewayGetIdentityInfo(t *testing.T) {
	gatewaySrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/identities/0xabc" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(IdentityInfo{TouristWallet: "0xabc", Active: true, ValidUntil: 1700000000})
	}))
	defer gatewaySrv.Close()

	gateway := NewGateway(gatewaySrv.URL, 5*time.Second)
	info, err := gateway.GetIdentityInfo(context.Background(), "0xabc")
	if err != nil {
		t.Fatalf("info error: %v", err)
	}
	if !info.Active || info.ValidUntil != 1700000000 {
		t.Fatalf("unexpected identity info: %+v", info)
	}
}
