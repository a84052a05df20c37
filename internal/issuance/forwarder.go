package issuance

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vishesh2305/SafeTour/internal/auth"
	"github.com/vishesh2305/SafeTour/internal/chain"
	"github.com/vishesh2305/SafeTour/internal/crypto"
	"github.com/vishesh2305/SafeTour/internal/model"
	"github.com/vishesh2305/SafeTour/internal/repository"
)

const (
	ErrForbidden      = "forbidden"
	ErrInvalidPayload = "invalid_payload"
	ErrServerError    = "server_error"
)

const secondsPerDay = 24 * 60 * 60

var walletPattern = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)

type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Code
}

type Payload struct {
	TouristAddress   string
	KYCData          map[string]string
	ItineraryHash    string
	EmergencyContact string
	DurationDays     int
}

type Forwarder struct {
	chain    chain.Client
	receipts repository.ReceiptStore
}

func NewForwarder(chainClient chain.Client, receipts repository.ReceiptStore) *Forwarder {
	return &Forwarder{chain: chainClient, receipts: receipts}
}

// RequestIssuance forwards one admin-authorized issuance request as exactly
// one chain call. Only the KYC digest crosses to the gateway, never the raw
// KYC payload. Repeated identical requests produce repeated chain
// transactions; deduplication is the gateway's responsibility.
func (f *Forwarder) RequestIssuance(ctx context.Context, claims *auth.Claims, payload Payload) (model.Receipt, error) {
	if !auth.Authorized(claims, model.RoleAdmin) {
		return model.Receipt{}, &Error{Code: ErrForbidden, Message: "identity issuance requires the admin role"}
	}
	if err := validatePayload(payload); err != nil {
		return model.Receipt{}, err
	}

	kycHash, err := crypto.KYCDigest(payload.KYCData)
	if err != nil {
		return model.Receipt{}, &Error{Code: ErrServerError, Message: "failed to hash kyc data"}
	}

	txRef, err := f.chain.IssueIdentity(ctx, chain.IssueRequest{
		TouristWallet:    payload.TouristAddress,
		KYCHash:          kycHash,
		ItineraryHash:    payload.ItineraryHash,
		EmergencyContact: payload.EmergencyContact,
		DurationSeconds:  int64(payload.DurationDays) * secondsPerDay,
	})
	if err != nil {
		return model.Receipt{}, err
	}

	receipt := model.Receipt{
		RequestID:     uuid.NewString(),
		ChainTxRef:    txRef,
		TouristWallet: payload.TouristAddress,
		RequestedBy:   claims.UserID,
		CreatedAt:     time.Now().UTC(),
	}
	if err := f.receipts.CreateReceipt(ctx, receipt); err != nil {
		return model.Receipt{}, &Error{Code: ErrServerError, Message: "chain call submitted but receipt could not be recorded"}
	}
	return receipt, nil
}

// IdentityInfo is an admin read-through to the gateway's identity lookup.
func (f *Forwarder) IdentityInfo(ctx context.Context, claims *auth.Claims, touristWallet string) (chain.IdentityInfo, error) {
	if !auth.Authorized(claims, model.RoleAdmin) {
		return chain.IdentityInfo{}, &Error{Code: ErrForbidden, Message: "identity lookup requires the admin role"}
	}
	if !walletPattern.MatchString(touristWallet) {
		return chain.IdentityInfo{}, &Error{Code: ErrInvalidPayload, Message: "malformed wallet address"}
	}
	return f.chain.GetIdentityInfo(ctx, touristWallet)
}

func validatePayload(payload Payload) error {
	if !walletPattern.MatchString(payload.TouristAddress) {
		return &Error{Code: ErrInvalidPayload, Message: "malformed tourist wallet address"}
	}
	if payload.DurationDays <= 0 {
		return &Error{Code: ErrInvalidPayload, Message: "durationDays must be a positive integer"}
	}
	if len(payload.KYCData) == 0 {
		return &Error{Code: ErrInvalidPayload, Message: "kycData is required"}
	}
	if strings.TrimSpace(payload.ItineraryHash) == "" {
		return &Error{Code: ErrInvalidPayload, Message: "itineraryHash is required"}
	}
	if strings.TrimSpace(payload.EmergencyContact) == "" {
		return &Error{Code: ErrInvalidPayload, Message: "emergencyContact is required"}
	}
	return nil
}
