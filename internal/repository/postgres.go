package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vishesh2305/SafeTour/internal/model"
)

type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) CreateUser(ctx context.Context, user model.User) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO users (id, email, password_hash, wallet_address, role, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, user.ID, user.Email, user.PasswordHash, user.WalletAddress, user.Role, user.CreatedAt)
	if isUniqueViolation(err) {
		return ErrDuplicateEmail
	}
	return err
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (model.User, error) {
	var user model.User
	row := s.pool.QueryRow(ctx, `
		SELECT id, email, password_hash, wallet_address, role, created_at
		FROM users
		WHERE email = $1
	`, email)
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.WalletAddress,
		&user.Role,
		&user.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.User{}, ErrNotFound
	}
	return user, err
}

func (s *Store) GetUserByID(ctx context.Context, userID string) (model.User, error) {
	var user model.User
	row := s.pool.QueryRow(ctx, `
		SELECT id, email, password_hash, wallet_address, role, created_at
		FROM users
		WHERE id = $1
	`, userID)
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.WalletAddress,
		&user.Role,
		&user.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.User{}, ErrNotFound
	}
	return user, err
}

func (s *Store) CreateAlert(ctx context.Context, alert model.Alert) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO alerts (id, user_id, latitude, longitude, status, created_at, resolved_at, resolved_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, alert.ID, alert.UserID, alert.Latitude, alert.Longitude, alert.Status, alert.CreatedAt, alert.ResolvedAt, alert.ResolvedBy)
	return err
}

func (s *Store) GetAlert(ctx context.Context, alertID string) (model.Alert, error) {
	var alert model.Alert
	row := s.pool.QueryRow(ctx, `
		SELECT id, user_id, latitude, longitude, status, created_at, resolved_at, resolved_by
		FROM alerts
		WHERE id = $1
	`, alertID)
	err := row.Scan(
		&alert.ID,
		&alert.UserID,
		&alert.Latitude,
		&alert.Longitude,
		&alert.Status,
		&alert.CreatedAt,
		&alert.ResolvedAt,
		&alert.ResolvedBy,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Alert{}, ErrNotFound
	}
	return alert, err
}

func (s *Store) ListActiveAlerts(ctx context.Context) ([]model.Alert, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, user_id, latitude, longitude, status, created_at, resolved_at, resolved_by
		FROM alerts
		WHERE status = $1
		ORDER BY created_at DESC
	`, model.AlertActive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	alerts := []model.Alert{}
	for rows.Next() {
		var alert model.Alert
		if err := rows.Scan(
			&alert.ID,
			&alert.UserID,
			&alert.Latitude,
			&alert.Longitude,
			&alert.Status,
			&alert.CreatedAt,
			&alert.ResolvedAt,
			&alert.ResolvedBy,
		); err != nil {
			return nil, err
		}
		alerts = append(alerts, alert)
	}
	return alerts, rows.Err()
}

func (s *Store) MarkAlertResolved(ctx context.Context, alertID, resolvedBy string, resolvedAt time.Time) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE alerts
		SET status = $1, resolved_at = $2, resolved_by = $3
		WHERE id = $4 AND status = $5
	`, model.AlertResolved, resolvedAt, resolvedBy, alertID, model.AlertActive)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) CreateReceipt(ctx context.Context, receipt model.Receipt) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO issuance_receipts (request_id, chain_tx_ref, tourist_wallet, requested_by, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, receipt.RequestID, receipt.ChainTxRef, receipt.TouristWallet, receipt.RequestedBy, receipt.CreatedAt)
	return err
}

func (s *Store) ListReceipts(ctx context.Context, limit int) ([]model.Receipt, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT request_id, chain_tx_ref, tourist_wallet, requested_by, created_at
		FROM issuance_receipts
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	receipts := []model.Receipt{}
	for rows.Next() {
		var receipt model.Receipt
		if err := rows.Scan(
			&receipt.RequestID,
			&receipt.ChainTxRef,
			&receipt.TouristWallet,
			&receipt.RequestedBy,
			&receipt.CreatedAt,
		); err != nil {
			return nil, err
		}
		receipts = append(receipts, receipt)
	}
	return receipts, rows.Err()
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
