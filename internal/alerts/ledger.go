package alerts

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/vishesh2305/SafeTour/internal/auth"
	"github.com/vishesh2305/SafeTour/internal/model"
	"github.com/vishesh2305/SafeTour/internal/repository"
)

const (
	ErrInvalidLocation = "invalid_location"
	ErrAlertNotFound   = "alert_not_found"
	ErrForbidden       = "forbidden"
	ErrServerError     = "server_error"
)

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

// Create records a panic alert for the owning identity. Alerts always start
// active and are never deleted.
func Create(ctx context.Context, store repository.AlertStore, ownerID string, latitude, longitude float64) (model.Alert, error) {
	if latitude < -90 || latitude > 90 {
		return model.Alert{}, &Error{Code: ErrInvalidLocation, Message: "latitude must be between -90 and 90"}
	}
	if longitude < -180 || longitude > 180 {
		return model.Alert{}, &Error{Code: ErrInvalidLocation, Message: "longitude must be between -180 and 180"}
	}

	alert := model.Alert{
		ID:        uuid.NewString(),
		UserID:    ownerID,
		Latitude:  latitude,
		Longitude: longitude,
		Status:    model.AlertActive,
		CreatedAt: time.Now().UTC(),
	}
	if err := store.CreateAlert(ctx, alert); err != nil {
		return model.Alert{}, &Error{Code: ErrServerError, Message: "failed to record alert"}
	}
	return alert, nil
}

func ListActive(ctx context.Context, store repository.AlertStore) ([]model.Alert, error) {
	alerts, err := store.ListActiveAlerts(ctx)
	if err != nil {
		return nil, &Error{Code: ErrServerError, Message: "failed to list alerts"}
	}
	return alerts, nil
}

// Resolve transitions an alert from active to resolved. Resolving an
// already-resolved alert is a no-op that returns the current record.
func Resolve(ctx context.Context, store repository.AlertStore, alertID string, resolver *auth.Claims) (model.Alert, error) {
	if !auth.IsResponder(resolver) {
		return model.Alert{}, &Error{Code: ErrForbidden, Message: "only admin or police may resolve alerts"}
	}

	alert, err := store.GetAlert(ctx, alertID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.Alert{}, &Error{Code: ErrAlertNotFound, Message: "unknown alert id"}
		}
		return model.Alert{}, &Error{Code: ErrServerError, Message: "failed to load alert"}
	}
	if alert.Status == model.AlertResolved {
		return alert, nil
	}

	if err := store.MarkAlertResolved(ctx, alertID, resolver.UserID, time.Now().UTC()); err != nil {
		// A concurrent resolver may have won the transition; the record
		// itself still exists.
		if errors.Is(err, repository.ErrNotFound) {
			if current, getErr := store.GetAlert(ctx, alertID); getErr == nil {
				return current, nil
			}
		}
		return model.Alert{}, &Error{Code: ErrServerError, Message: "failed to resolve alert"}
	}

	resolved, err := store.GetAlert(ctx, alertID)
	if err != nil {
		return model.Alert{}, &Error{Code: ErrServerError, Message: "failed to load alert"}
	}
	return resolved, nil
}
