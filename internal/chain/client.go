// Package chain talks to the external chain gateway that executes identity
// issuance on the ledger. The gateway is a black box: gas, nonces, and
// confirmation tracking are its problem, and calls are never retried here.
package chain

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

type IssueRequest struct {
	TouristWallet    string `json:"touristWallet"`
	KYCHash          string `json:"kycHash"`
	ItineraryHash    string `json:"itineraryHash"`
	EmergencyContact string `json:"emergencyContact"`
	DurationSeconds  int64  `json:"durationSeconds"`
}

type IdentityInfo struct {
	TouristWallet string `json:"touristWallet"`
	KYCHash       string `json:"kycHash"`
	ItineraryHash string `json:"itineraryHash"`
	ValidUntil    int64  `json:"validUntil"`
	Active        bool   `json:"active"`
}

type Client interface {
	IssueIdentity(ctx context.Context, req IssueRequest) (string, error)
	GetIdentityInfo(ctx context.Context, touristWallet string) (IdentityInfo, error)
}

// Error is terminal for the request that triggered it. When Timeout is set
// the underlying chain call may still land; that ambiguity is inherent and
// is surfaced to the caller instead of hidden.
type Error struct {
	Message string
	Timeout bool
}

func (e *Error) Error() string {
	return e.Message
}

type Gateway struct {
	baseURL string
	client  *http.Client
	timeout time.Duration
}

func NewGateway(baseURL string, timeout time.Duration) *Gateway {
	return &Gateway{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{},
		timeout: timeout,
	}
}

func (g *Gateway) IssueIdentity(ctx context.Context, req IssueRequest) (string, error) {
	var resp struct {
		TxRef string `json:"txRef"`
	}
	if err := g.do(ctx, http.MethodPost, "/identities", req, &resp); err != nil {
		return "", err
	}
	if resp.TxRef == "" {
		return "", &Error{Message: "chain gateway returned no transaction reference"}
	}
	return resp.TxRef, nil
}

func (g *Gateway) GetIdentityInfo(ctx context.Context, touristWallet string) (IdentityInfo, error) {
	var info IdentityInfo
	err := g.do(ctx, http.MethodGet, "/identities/"+url.PathEscape(touristWallet), nil, &info)
	return info, err
}

func (g *Gateway) do(ctx context.Context, method, path string, body, out interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	var payload io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return &Error{Message: fmt.Sprintf("chain request encode failed: %v", err)}
		}
		payload = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, payload)
	if err != nil {
		return &Error{Message: fmt.Sprintf("chain request build failed: %v", err)}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := g.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return &Error{
				Message: "chain gateway timed out; the transaction may still be submitted",
				Timeout: true,
			}
		}
		return &Error{Message: fmt.Sprintf("chain gateway unreachable: %v", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var gatewayErr struct {
			Error string `json:"error"`
		}
		message := fmt.Sprintf("chain gateway returned status %d", resp.StatusCode)
		if decodeErr := json.NewDecoder(resp.Body).Decode(&gatewayErr); decodeErr == nil && gatewayErr.Error != "" {
			message = gatewayErr.Error
		}
		return &Error{Message: message}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return &Error{Message: fmt.Sprintf("chain response decode failed: %v", err)}
		}
	}
	return nil
}
