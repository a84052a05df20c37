package alerts

import (
	"context"
	"errors"
	"testing"

	"github.com/vishesh2305/SafeTour/internal/auth"
	"github.com/vishesh2305/SafeTour/internal/model"
	"github.com/vishesh2305/SafeTour/internal/repository"
)

func TestCreateValidatesLocation(t *testing.T) {
	store := repository.NewMemory()
	ctx := context.Background()

	if _, err := Create(ctx, store, "u1", 13.5, -200); !hasCode(err, ErrInvalidLocation) {
		t.Fatalf("expected invalid_location for longitude -200, got %v", err)
	}
	if _, err := Create(ctx, store, "u1", 91, 100.2); !hasCode(err, ErrInvalidLocation) {
		t.Fatalf("expected invalid_location for latitude 91, got %v", err)
	}

	alert, err := Create(ctx, store, "u1", 13.5, 100.2)
	if err != nil {
		t.Fatalf("create error: %v", err)
	}
	if alert.Status != model.AlertActive {
		t.Fatalf("expected new alert to be active, got %s", alert.Status)
	}
	if alert.ID == "" || alert.CreatedAt.IsZero() {
		t.Fatalf("expected generated id and timestamp, got %+v", alert)
	}
}

func TestListActiveNewestFirst(t *testing.T) {
	store := repository.NewMemory()
	ctx := context.Background()

	first, err := Create(ctx, store, "u1", 10, 10)
	if err != nil {
		t.Fatalf("create error: %v", err)
	}
	second, err := Create(ctx, store, "u2", 20, 20)
	if err != nil {
		t.Fatalf("create error: %v", err)
	}

	active, err := ListActive(ctx, store)
	if err != nil {
		t.Fatalf("list error: %v", err)
	}
	if len(active) != 2 {
		t.Fatalf("expected 2 active alerts, got %d", len(active))
	}
	if active[0].ID != second.ID || active[1].ID != first.ID {
		t.Fatalf("expected newest-first ordering, got %s then %s", active[0].ID, active[1].ID)
	}
}

func TestResolveTransitions(t *testing.T) {
	store := repository.NewMemory()
	ctx := context.Background()
	police := &auth.Claims{UserID: "officer-1", Role: model.RolePolice}

	alert, err := Create(ctx, store, "u1", 13.5, 100.2)
	if err != nil {
		t.Fatalf("create error: %v", err)
	}

	resolved, err := Resolve(ctx, store, alert.ID, police)
	if err != nil {
		t.Fatalf("resolve error: %v", err)
	}
	if resolved.Status != model.AlertResolved {
		t.Fatalf("expected resolved status, got %s", resolved.Status)
	}
	if resolved.ResolvedBy == nil || *resolved.ResolvedBy != "officer-1" {
		t.Fatalf("expected resolver to be recorded, got %+v", resolved)
	}

	// Second resolve is idempotent and returns the same record.
	again, err := Resolve(ctx, store, alert.ID, police)
	if err != nil {
		t.Fatalf("second resolve error: %v", err)
	}
	if again.Status != model.AlertResolved || again.ID != resolved.ID {
		t.Fatalf("expected identical resolved record, got %+v", again)
	}

	// Resolved alerts drop out of the active listing but are never deleted.
	active, err := ListActive(ctx, store)
	if err != nil {
		t.Fatalf("list error: %v", err)
	}
	if len(active) != 0 {
		t.Fatalf("expected no active alerts, got %d", len(active))
	}
	if _, err := store.GetAlert(ctx, alert.ID); err != nil {
		t.Fatalf("expected resolved alert to remain stored, got %v", err)
	}
}

func TestResolveDenied(t *testing.T) {
	store := repository.NewMemory()
	ctx := context.Background()
	tourist := &auth.Claims{UserID: "t1", Role: model.RoleTourist}
	admin := &auth.Claims{UserID: "a1", Role: model.RoleAdmin}

	alert, err := Create(ctx, store, "u1", 13.5, 100.2)
	if err != nil {
		t.Fatalf("create error: %v", err)
	}

	if _, err := Resolve(ctx, store, alert.ID, tourist); !hasCode(err, ErrForbidden) {
		t.Fatalf("expected forbidden for tourist resolver, got %v", err)
	}
	if _, err := Resolve(ctx, store, "missing-id", admin); !hasCode(err, ErrAlertNotFound) {
		t.Fatalf("expected alert_not_found, got %v", err)
	}
}

func hasCode(err error, code string) bool {
	var opErr *Error
	return errors.As(err, &opErr) && opErr.Code == code
}
