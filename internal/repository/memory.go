package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/vishesh2305/SafeTour/internal/model"
)

// Memory implements Backend on process-local maps. Tests run against it so
// the domain logic can be exercised without a database.
type Memory struct {
	mu       sync.RWMutex
	users    map[string]model.User
	byEmail  map[string]string
	alerts   map[string]model.Alert
	receipts []model.Receipt
}

func NewMemory() *Memory {
	return &Memory{
		users:   make(map[string]model.User),
		byEmail: make(map[string]string),
		alerts:  make(map[string]model.Alert),
	}
}

func (m *Memory) CreateUser(_ context.Context, user model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := strings.ToLower(user.Email)
	if _, exists := m.byEmail[key]; exists {
		return ErrDuplicateEmail
	}
	m.users[user.ID] = user
	m.byEmail[key] = user.ID
	return nil
}

func (m *Memory) GetUserByEmail(_ context.Context, email string) (model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	userID, ok := m.byEmail[strings.ToLower(email)]
	if !ok {
		return model.User{}, ErrNotFound
	}
	return m.users[userID], nil
}

func (m *Memory) GetUserByID(_ context.Context, userID string) (model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	user, ok := m.users[userID]
	if !ok {
		return model.User{}, ErrNotFound
	}
	return user, nil
}

func (m *Memory) CreateAlert(_ context.Context, alert model.Alert) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.alerts[alert.ID] = alert
	return nil
}

func (m *Memory) GetAlert(_ context.Context, alertID string) (model.Alert, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	alert, ok := m.alerts[alertID]
	if !ok {
		return model.Alert{}, ErrNotFound
	}
	return alert, nil
}

func (m *Memory) ListActiveAlerts(_ context.Context) ([]model.Alert, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	alerts := []model.Alert{}
	for _, alert := range m.alerts {
		if alert.Status == model.AlertActive {
			alerts = append(alerts, alert)
		}
	}
	sort.Slice(alerts, func(i, j int) bool {
		return alerts[i].CreatedAt.After(alerts[j].CreatedAt)
	})
	return alerts, nil
}

func (m *Memory) MarkAlertResolved(_ context.Context, alertID, resolvedBy string, resolvedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	alert, ok := m.alerts[alertID]
	if !ok || alert.Status != model.AlertActive {
		return ErrNotFound
	}
	alert.Status = model.AlertResolved
	alert.ResolvedAt = &resolvedAt
	alert.ResolvedBy = &resolvedBy
	m.alerts[alertID] = alert
	return nil
}

func (m *Memory) CreateReceipt(_ context.Context, receipt model.Receipt) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.receipts = append(m.receipts, receipt)
	return nil
}

func (m *Memory) ListReceipts(_ context.Context, limit int) ([]model.Receipt, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	receipts := make([]model.Receipt, len(m.receipts))
	copy(receipts, m.receipts)
	sort.Slice(receipts, func(i, j int) bool {
		return receipts[i].CreatedAt.After(receipts[j].CreatedAt)
	})
	if limit > 0 && len(receipts) > limit {
		receipts = receipts[:limit]
	}
	return receipts, nil
}
