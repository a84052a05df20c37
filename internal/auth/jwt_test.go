package auth

import (
	"testing"
	"time"

	"github.com/vishesh2305/SafeTour/internal/model"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	token, err := NewAccessToken("secret", "issuer", time.Minute, Claims{
		UserID: "user-1",
		Role:   model.RoleTourist,
	})
	if err != nil {
		t.Fatalf("token error: %v", err)
	}

	claims, err := ParseToken("secret", token)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if claims.UserID != "user-1" || claims.Role != model.RoleTourist {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestAccessTokenWrongSecret(t *testing.T) {
	token, err := NewAccessToken("secret", "issuer", time.Minute, Claims{
		UserID: "user-1",
		Role:   model.RoleAdmin,
	})
	if err != nil {
		t.Fatalf("token error: %v", err)
	}
	if _, err := ParseToken("other-secret", token); err == nil {
		t.Fatalf("expected signature mismatch to fail verification")
	}
}

func TestAccessTokenExpiry(t *testing.T) {
	token, err := NewAccessToken("secret", "issuer", -2*time.Second, Claims{
		UserID: "user-1",
		Role:   model.RoleTourist,
	})
	if err != nil {
		t.Fatalf("token error: %v", err)
	}
	if _, err := ParseToken("secret", token); err == nil {
		t.Fatalf("expected expired token to fail verification")
	}
}

func TestAccessTokenMalformed(t *testing.T) {
	if _, err := ParseToken("secret", "not.a.token"); err == nil {
		t.Fatalf("expected malformed token to fail verification")
	}
}

func TestAuthorized(t *testing.T) {
	admin := &Claims{UserID: "a", Role: model.RoleAdmin}
	police := &Claims{UserID: "p", Role: model.RolePolice}
	tourist := &Claims{UserID: "t", Role: model.RoleTourist}

	if !Authorized(admin, model.RoleAdmin) {
		t.Fatalf("expected admin to be authorized for admin operations")
	}
	if Authorized(tourist, model.RoleAdmin, model.RolePolice) {
		t.Fatalf("expected tourist to be denied responder operations")
	}
	if !IsResponder(police) || !IsResponder(admin) {
		t.Fatalf("expected admin and police to be responders")
	}
	if IsResponder(tourist) {
		t.Fatalf("expected tourist not to be a responder")
	}
	if Authorized(nil, model.RoleAdmin) {
		t.Fatalf("expected nil claims to be denied")
	}
}
