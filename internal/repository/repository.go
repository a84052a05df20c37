package repository

import (
	"context"
	"errors"
	"time"

	"github.com/vishesh2305/SafeTour/internal/model"
)

var (
	ErrNotFound       = errors.New("record not found")
	ErrDuplicateEmail = errors.New("email already registered")
)

type UserStore interface {
	CreateUser(ctx context.Context, user model.User) error
	GetUserByEmail(ctx context.Context, email string) (model.User, error)
	GetUserByID(ctx context.Context, userID string) (model.User, error)
}

type AlertStore interface {
	CreateAlert(ctx context.Context, alert model.Alert) error
	GetAlert(ctx context.Context, alertID string) (model.Alert, error)
	ListActiveAlerts(ctx context.Context) ([]model.Alert, error)
	MarkAlertResolved(ctx context.Context, alertID, resolvedBy string, resolvedAt time.Time) error
}

type ReceiptStore interface {
	CreateReceipt(ctx context.Context, receipt model.Receipt) error
	ListReceipts(ctx context.Context, limit int) ([]model.Receipt, error)
}

// Backend is what the HTTP server needs from persistence. The postgres Store
// serves production, the in-memory Memory serves tests.
type Backend interface {
	UserStore
	AlertStore
	ReceiptStore
}
