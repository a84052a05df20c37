package model

import "time"

type Role string

const (
	RoleTourist Role = "tourist"
	RoleAdmin   Role = "admin"
	RolePolice  Role = "police"
)

type AlertStatus string

const (
	AlertActive   AlertStatus = "active"
	AlertResolved AlertStatus = "resolved"
)

type User struct {
	ID            string
	Email         string
	PasswordHash  string
	WalletAddress *string
	Role          Role
	CreatedAt     time.Time
}

type Alert struct {
	ID         string
	UserID     string
	Latitude   float64
	Longitude  float64
	Status     AlertStatus
	CreatedAt  time.Time
	ResolvedAt *time.Time
	ResolvedBy *string
}

// Receipt links an accepted issuance request to the chain gateway's
// transaction reference. Receipts are append-only audit records.
type Receipt struct {
	RequestID     string
	ChainTxRef    string
	TouristWallet string
	RequestedBy   string
	CreatedAt     time.Time
}
